package cart

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
	service "github.com/hotelprocure/procure/internal/service/cart"
)

var httpTracer = otel.Tracer("github.com/hotelprocure/procure/transport/http/cart")

// Service is the cart behaviour the handler exposes.
type Service interface {
	Get(ctx context.Context, userID int64) (*service.View, error)
	Add(ctx context.Context, userID, offerID int64, quantity int) (*service.View, error)
	Update(ctx context.Context, userID, offerID int64, quantity int) (*service.View, error)
	Remove(ctx context.Context, userID, offerID int64) (*service.View, error)
	Clear(ctx context.Context, userID int64) error
	Checkout(ctx context.Context, userID int64, in service.CheckoutInput) (*entity.Order, error)
}

// Handler exposes the acting user's cart over HTTP.
type Handler struct {
	svc Service
}

// NewHandler constructs a cart Handler.
func NewHandler(svc Service) *Handler {
	return &Handler{svc: svc}
}

// Register routes with provided Echo instance.
func Register(e *echo.Echo, h *Handler) {
	g := e.Group("/api/cart")
	g.GET("", h.get)
	g.POST("/add", h.add)
	g.PUT("/update", h.update)
	g.DELETE("/remove/:offerId", h.remove)
	g.DELETE("/clear", h.clear)
	g.POST("/checkout", h.checkout)
}

type linePayload struct {
	ProductOfferID int64 `json:"productOfferId"`
	Quantity       *int  `json:"quantity"`
}

func (p linePayload) quantity() int {
	if p.Quantity == nil {
		return 1
	}
	return *p.Quantity
}

func (h *Handler) get(c echo.Context) error {
	b := response.New(c)

	ctx, span := httpTracer.Start(c.Request().Context(), "cart.get")
	defer span.End()

	view, err := h.svc.Get(ctx, identity.ActorID(c))
	if err != nil {
		return b.WithError(err).Build()
	}
	return b.WithData(dto.NewCartResponse(view)).Build()
}

func (h *Handler) add(c echo.Context) error {
	b := response.New(c)

	var payload linePayload
	if err := request.Bind(c, &payload); err != nil {
		return b.WithError(err).Build()
	}

	ctx, span := httpTracer.Start(c.Request().Context(), "cart.add", trace.WithAttributes(attribute.Int64("offer.id", payload.ProductOfferID)))
	defer span.End()

	view, err := h.svc.Add(ctx, identity.ActorID(c), payload.ProductOfferID, payload.quantity())
	if err != nil {
		return b.WithError(err).Build()
	}
	return b.WithData(dto.NewCartResponse(view)).Build()
}

func (h *Handler) update(c echo.Context) error {
	b := response.New(c)

	var payload linePayload
	if err := request.Bind(c, &payload); err != nil {
		return b.WithError(err).Build()
	}

	ctx, span := httpTracer.Start(c.Request().Context(), "cart.update", trace.WithAttributes(attribute.Int64("offer.id", payload.ProductOfferID)))
	defer span.End()

	view, err := h.svc.Update(ctx, identity.ActorID(c), payload.ProductOfferID, payload.quantity())
	if err != nil {
		return b.WithError(err).Build()
	}
	return b.WithData(dto.NewCartResponse(view)).Build()
}

func (h *Handler) remove(c echo.Context) error {
	b := response.New(c)

	offerID, err := request.PathID(c, "offerId")
	if err != nil {
		return b.WithError(err).Build()
	}

	ctx, span := httpTracer.Start(c.Request().Context(), "cart.remove", trace.WithAttributes(attribute.Int64("offer.id", offerID)))
	defer span.End()

	view, err := h.svc.Remove(ctx, identity.ActorID(c), offerID)
	if err != nil {
		return b.WithError(err).Build()
	}
	return b.WithData(dto.NewCartResponse(view)).Build()
}

func (h *Handler) clear(c echo.Context) error {
	b := response.New(c)

	ctx, span := httpTracer.Start(c.Request().Context(), "cart.clear")
	defer span.End()

	if err := h.svc.Clear(ctx, identity.ActorID(c)); err != nil {
		return b.WithError(err).Build()
	}
	return b.WithData(dto.NewCartResponse(nil)).Build()
}

func (h *Handler) checkout(c echo.Context) error {
	b := response.New(c)

	var payload struct {
		BranchID int64  `json:"branchId"`
		Priority string `json:"priority"`
		Note     string `json:"note"`
	}
	if err := request.Bind(c, &payload); err != nil {
		return b.WithError(err).Build()
	}

	ctx, span := httpTracer.Start(c.Request().Context(), "cart.checkout", trace.WithAttributes(attribute.Int64("order.branch_id", payload.BranchID)))
	defer span.End()

	order, err := h.svc.Checkout(ctx, identity.ActorID(c), service.CheckoutInput{
		BranchID: payload.BranchID,
		Priority: payload.Priority,
		Note:     payload.Note,
	})
	if err != nil {
		return b.WithError(err).Build()
	}
	return b.Created(fmt.Sprintf("/api/orders/%d", order.ID), dto.NewOrderResponse(order)).Build()
}
