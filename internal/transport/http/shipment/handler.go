package shipment

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
	service "github.com/hotelprocure/procure/internal/service/shipment"
)

var httpTracer = otel.Tracer("github.com/hotelprocure/procure/transport/http/shipment")

// Service is the shipment behaviour the handler exposes.
type Service interface {
	List(ctx context.Context) ([]*entity.Shipment, error)
	Create(ctx context.Context, actorID int64, in service.CreateInput) (*entity.Shipment, error)
	Update(ctx context.Context, actorID, id int64, in service.UpdateInput) (*entity.Shipment, error)
	Deliver(ctx context.Context, actorID, id int64) (*entity.Shipment, error)
}

// Handler exposes shipments over HTTP.
type Handler struct {
	svc Service
}

// NewHandler constructs a shipment Handler.
func NewHandler(svc Service) *Handler {
	return &Handler{svc: svc}
}

// Register routes with provided Echo instance.
func Register(e *echo.Echo, h *Handler) {
	g := e.Group("/api/shipments")
	g.GET("", h.list)
	g.POST("", h.create)
	g.PUT("/:id", h.update)
	g.PUT("/:id/deliver", h.deliver)
}

func (h *Handler) list(c echo.Context) error {
	b := response.New(c)

	ctx, span := httpTracer.Start(c.Request().Context(), "shipments.list")
	defer span.End()

	shipments, err := h.svc.List(ctx)
	if err != nil {
		return b.WithError(err).Build()
	}
	return b.WithData(dto.NewShipmentListResponse(shipments)).Build()
}

func (h *Handler) create(c echo.Context) error {
	b := response.New(c)

	var payload struct {
		OrderID        int64  `json:"orderId"`
		OrderNumber    string `json:"orderNumber"`
		TrackingNumber string `json:"trackingNumber"`
	}
	if err := request.Bind(c, &payload); err != nil {
		return b.WithError(err).Build()
	}

	ctx, span := httpTracer.Start(c.Request().Context(), "shipments.create", trace.WithAttributes(attribute.Int64("order.id", payload.OrderID)))
	defer span.End()

	sh, err := h.svc.Create(ctx, identity.ActorID(c), service.CreateInput{
		OrderID:        payload.OrderID,
		OrderNumber:    payload.OrderNumber,
		TrackingNumber: payload.TrackingNumber,
	})
	if err != nil {
		return b.WithError(err).Build()
	}
	return b.Created(fmt.Sprintf("/api/shipments/%d", sh.ID), dto.NewShipmentResponse(sh)).Build()
}

func (h *Handler) update(c echo.Context) error {
	b := response.New(c)

	id, err := request.PathID(c, "id")
	if err != nil {
		return b.WithError(err).Build()
	}
	var payload struct {
		OrderNumber    string `json:"orderNumber"`
		TrackingNumber string `json:"trackingNumber"`
	}
	if err := request.Bind(c, &payload); err != nil {
		return b.WithError(err).Build()
	}

	ctx, span := httpTracer.Start(c.Request().Context(), "shipments.update", trace.WithAttributes(attribute.Int64("shipment.id", id)))
	defer span.End()

	sh, err := h.svc.Update(ctx, identity.ActorID(c), id, service.UpdateInput{
		OrderNumber:    payload.OrderNumber,
		TrackingNumber: payload.TrackingNumber,
	})
	if err != nil {
		return b.WithError(err).Build()
	}
	return b.WithData(dto.NewShipmentResponse(sh)).Build()
}

func (h *Handler) deliver(c echo.Context) error {
	b := response.New(c)

	id, err := request.PathID(c, "id")
	if err != nil {
		return b.WithError(err).Build()
	}

	ctx, span := httpTracer.Start(c.Request().Context(), "shipments.deliver", trace.WithAttributes(attribute.Int64("shipment.id", id)))
	defer span.End()

	sh, err := h.svc.Deliver(ctx, identity.ActorID(c), id)
	if err != nil {
		return b.WithError(err).Build()
	}
	return b.WithData(dto.NewShipmentResponse(sh)).Build()
}
