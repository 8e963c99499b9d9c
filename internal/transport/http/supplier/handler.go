package supplier

import (
	"context"
	"fmt"

	"github.com/labstack/echo/v4"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/hotelprocure/procure/internal/dto"
	"github.com/hotelprocure/procure/internal/entity"
	"github.com/hotelprocure/procure/internal/presentation/http/identity"
	"github.com/hotelprocure/procure/internal/presentation/http/request"
	"github.com/hotelprocure/procure/internal/presentation/http/response"
	service "github.com/hotelprocure/procure/internal/service/supplier"
)

var httpTracer = otel.Tracer("github.com/hotelprocure/procure/transport/http/supplier")

// Service is the supplier behaviour the handler exposes.
type Service interface {
	List(ctx context.Context) ([]*entity.Supplier, service.Stats, error)
	Get(ctx context.Context, id int64) (*entity.Supplier, error)
	Create(ctx context.Context, actorID int64, in service.CreateInput) (*entity.Supplier, error)
	Sync(ctx context.Context, actorID, id int64) (*entity.Supplier, error)
}

// Handler exposes suppliers over HTTP.
type Handler struct {
	svc Service
}

// NewHandler constructs a supplier Handler.
func NewHandler(svc Service) *Handler {
	return &Handler{svc: svc}
}

// Register routes with provided Echo instance.
func Register(e *echo.Echo, h *Handler) {
	g := e.Group("/api/suppliers")
	g.GET("", h.list)
	g.POST("", h.create)
	g.GET("/:id", h.get)
	g.POST("/:id/sync", h.sync)
}

func (h *Handler) list(c echo.Context) error {
	b := response.New(c)

	ctx, span := httpTracer.Start(c.Request().Context(), "suppliers.list")
	defer span.End()

	suppliers, stats, err := h.svc.List(ctx)
	if err != nil {
		return b.WithError(err).Build()
	}
	return b.WithData(dto.NewSupplierListResponse(suppliers, stats)).Build()
}

func (h *Handler) get(c echo.Context) error {
	b := response.New(c)

	id, err := request.PathID(c, "id")
	if err != nil {
		return b.WithError(err).Build()
	}

	ctx, span := httpTracer.Start(c.Request().Context(), "suppliers.get", trace.WithAttributes(attribute.Int64("supplier.id", id)))
	defer span.End()

	sup, err := h.svc.Get(ctx, id)
	if err != nil {
		return b.WithError(err).Build()
	}
	return b.WithData(dto.NewSupplierResponse(sup)).Build()
}

func (h *Handler) create(c echo.Context) error {
	b := response.New(c)

	var payload struct {
		Name        string `json:"name"`
		Category    string `json:"category"`
		APIEndpoint string `json:"apiEndpoint"`
	}
	if err := request.Bind(c, &payload); err != nil {
		return b.WithError(err).Build()
	}

	ctx, span := httpTracer.Start(c.Request().Context(), "suppliers.create")
	defer span.End()

	sup, err := h.svc.Create(ctx, identity.ActorID(c), service.CreateInput{
		Name:        payload.Name,
		Category:    payload.Category,
		APIEndpoint: payload.APIEndpoint,
	})
	if err != nil {
		return b.WithError(err).Build()
	}
	return b.Created(fmt.Sprintf("/api/suppliers/%d", sup.ID), dto.NewSupplierResponse(sup)).Build()
}

func (h *Handler) sync(c echo.Context) error {
	b := response.New(c)

	id, err := request.PathID(c, "id")
	if err != nil {
		return b.WithError(err).Build()
	}

	ctx, span := httpTracer.Start(c.Request().Context(), "suppliers.sync", trace.WithAttributes(attribute.Int64("supplier.id", id)))
	defer span.End()

	sup, err := h.svc.Sync(ctx, identity.ActorID(c), id)
	if err != nil {
		return b.WithError(err).Build()
	}
	return b.WithData(dto.NewSupplierResponse(sup)).Build()
}
