package catalog

import (
	"context"
	"strings"

	"github.com/labstack/echo/v4"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/hotelprocure/procure/internal/catalog"
	"github.com/hotelprocure/procure/internal/config"
	"github.com/hotelprocure/procure/internal/dto"
	"github.com/hotelprocure/procure/internal/entity"
	"github.com/hotelprocure/procure/internal/presentation/http/request"
	"github.com/hotelprocure/procure/internal/presentation/http/response"
)

var httpTracer = otel.Tracer("github.com/hotelprocure/procure/transport/http/catalog")

// Service is the catalog behaviour the handler exposes.
type Service interface {
	Categories(ctx context.Context) ([]catalog.Summary, error)
	Products(ctx context.Context, categoryID int64, search string) ([]*entity.Product, error)
	Product(ctx context.Context, id int64) (*entity.Product, error)
}

// Handler exposes the product catalog over HTTP.
type Handler struct {
	svc      Service
	currency string
}

// NewHandler constructs a catalog Handler.
func NewHandler(svc Service, cfg config.Config) *Handler {
	return &Handler{svc: svc, currency: cfg.Ordering.Currency}
}

// Register routes with provided Echo instance.
func Register(e *echo.Echo, h *Handler) {
	g := e.Group("/api/products")
	g.GET("", h.products)
	g.GET("/categories", h.categories)
	g.GET("/:id", h.product)
}

func (h *Handler) products(c echo.Context) error {
	b := response.New(c)

	categoryID, err := request.QueryID(c, "category")
	if err != nil {
		return b.WithError(err).Build()
	}
	search := strings.TrimSpace(c.QueryParam("search"))

	ctx, span := httpTracer.Start(c.Request().Context(), "products.list", trace.WithAttributes(
		attribute.Int64("catalog.category_id", categoryID),
		attribute.String("catalog.search", search),
	))
	defer span.End()

	products, err := h.svc.Products(ctx, categoryID, search)
	if err != nil {
		return b.WithError(err).Build()
	}
	return b.WithData(dto.NewProductListResponse(products, h.currency)).Build()
}

func (h *Handler) categories(c echo.Context) error {
	b := response.New(c)

	ctx, span := httpTracer.Start(c.Request().Context(), "products.categories")
	defer span.End()

	tree, err := h.svc.Categories(ctx)
	if err != nil {
		return b.WithError(err).Build()
	}
	return b.WithData(dto.CategoriesResponse{Categories: tree}).Build()
}

func (h *Handler) product(c echo.Context) error {
	b := response.New(c)

	id, err := request.PathID(c, "id")
	if err != nil {
		return b.WithError(err).Build()
	}

	ctx, span := httpTracer.Start(c.Request().Context(), "products.get", trace.WithAttributes(attribute.Int64("product.id", id)))
	defer span.End()

	product, err := h.svc.Product(ctx, id)
	if err != nil {
		return b.WithError(err).Build()
	}
	return b.WithData(dto.NewProductResponse(product, h.currency)).Build()
}
