package order

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
	service "github.com/hotelprocure/procure/internal/service/order"
)

var httpTracer = otel.Tracer("github.com/hotelprocure/procure/transport/http/order")

// Service is the order behaviour the handler exposes.
type Service interface {
	Create(ctx context.Context, actorID int64, in service.CreateInput) (*entity.Order, error)
	Get(ctx context.Context, id int64) (*entity.Order, error)
	ListMine(ctx context.Context, actorID int64, status string) ([]*entity.Order, error)
	Pending(ctx context.Context) ([]*entity.Order, error)
	Submit(ctx context.Context, actorID, id int64) (*entity.Order, error)
	Approve(ctx context.Context, actorID, id int64) (*entity.Order, error)
	Reject(ctx context.Context, actorID, id int64) (*entity.Order, error)
}

// Handler exposes order endpoints over HTTP.
type Handler struct {
	svc Service
}

// NewHandler constructs an order Handler.
func NewHandler(svc Service) *Handler {
	return &Handler{svc: svc}
}

// Register routes with provided Echo group.
func Register(e *echo.Echo, h *Handler) {
	g := e.Group("/api/orders")
	g.GET("", h.list)
	g.GET("/pending", h.pending)
	g.POST("", h.create)
	g.GET("/:id", h.getByID)
	g.POST("/:id/submit", h.transition("orders.submit", h.svc.Submit))
	g.POST("/:id/approve", h.transition("orders.approve", h.svc.Approve))
	g.POST("/:id/reject", h.transition("orders.reject", h.svc.Reject))
}

func (h *Handler) list(c echo.Context) error {
	b := response.New(c)
	status := c.QueryParam("status")

	ctx, span := httpTracer.Start(c.Request().Context(), "orders.list", trace.WithAttributes(attribute.String("order.status", status)))
	defer span.End()

	orders, err := h.svc.ListMine(ctx, identity.ActorID(c), status)
	if err != nil {
		return b.WithError(err).Build()
	}
	return b.WithData(dto.NewOrderListResponse(orders)).Build()
}

func (h *Handler) pending(c echo.Context) error {
	b := response.New(c)

	ctx, span := httpTracer.Start(c.Request().Context(), "orders.pending")
	defer span.End()

	orders, err := h.svc.Pending(ctx)
	if err != nil {
		return b.WithError(err).Build()
	}
	return b.WithData(dto.NewOrderListResponse(orders)).Build()
}

func (h *Handler) getByID(c echo.Context) error {
	b := response.New(c)

	id, err := request.PathID(c, "id")
	if err != nil {
		return b.WithError(err).Build()
	}

	ctx, span := httpTracer.Start(c.Request().Context(), "orders.getByID", trace.WithAttributes(attribute.Int64("order.id", id)))
	defer span.End()

	order, err := h.svc.Get(ctx, id)
	if err != nil {
		return b.WithError(err).Build()
	}

	return b.WithData(dto.NewOrderResponse(order)).Build()
}

type itemPayload struct {
	ProductOfferID int64 `json:"productOfferId"`
	Quantity       int   `json:"quantity"`
}

type createPayload struct {
	BranchID int64         `json:"branchId"`
	Items    []itemPayload `json:"items"`
	Priority string        `json:"priority"`
	Note     string        `json:"note"`
}

func (h *Handler) create(c echo.Context) error {
	b := response.New(c)

	var payload createPayload
	if err := request.Bind(c, &payload); err != nil {
		return b.WithError(err).Build()
	}

	in := service.CreateInput{
		BranchID: payload.BranchID,
		Priority: payload.Priority,
		Note:     payload.Note,
		Items:    make([]service.ItemInput, 0, len(payload.Items)),
	}
	for _, item := range payload.Items {
		in.Items = append(in.Items, service.ItemInput{OfferID: item.ProductOfferID, Quantity: item.Quantity})
	}

	ctx, span := httpTracer.Start(c.Request().Context(), "orders.create")
	span.SetAttributes(
		attribute.Int64("order.branch_id", payload.BranchID),
		attribute.Int("order.items", len(payload.Items)),
	)
	defer span.End()

	order, err := h.svc.Create(ctx, identity.ActorID(c), in)
	if err != nil {
		return b.WithError(err).Build()
	}

	return b.Created(fmt.Sprintf("/api/orders/%d", order.ID), dto.NewOrderResponse(order)).Build()
}

type transitionFunc func(ctx context.Context, actorID, id int64) (*entity.Order, error)

func (h *Handler) transition(name string, apply transitionFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		b := response.New(c)

		id, err := request.PathID(c, "id")
		if err != nil {
			return b.WithError(err).Build()
		}

		ctx, span := httpTracer.Start(c.Request().Context(), name, trace.WithAttributes(attribute.Int64("order.id", id)))
		defer span.End()

		order, err := apply(ctx, identity.ActorID(c), id)
		if err != nil {
			return b.WithError(err).Build()
		}
		return b.WithData(dto.NewOrderResponse(order)).Build()
	}
}
