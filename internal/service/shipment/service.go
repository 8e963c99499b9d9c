package shipment

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/hotelprocure/procure/internal/entity"
	repo "github.com/hotelprocure/procure/internal/repository/shipment"
	"github.com/hotelprocure/procure/pkg/errorbank"
)

var serviceTracer = otel.Tracer("github.com/hotelprocure/procure/service/shipment")

// Repository persists shipments.
type Repository interface {
	List(ctx context.Context) ([]*entity.Shipment, error)
	GetByID(ctx context.Context, id int64) (*entity.Shipment, error)
	Create(ctx context.Context, sh *entity.Shipment) error
	Update(ctx context.Context, sh *entity.Shipment) error
}

// Orders applies the shipment-driven order transitions.
type Orders interface {
	Get(ctx context.Context, id int64) (*entity.Order, error)
	MarkOrdered(ctx context.Context, actorID, id int64) (*entity.Order, error)
	MarkDelivered(ctx context.Context, actorID, id int64) (*entity.Order, error)
}

// CreateInput describes a new shipment.
type CreateInput struct {
	OrderID        int64
	OrderNumber    string
	TrackingNumber string
}

// UpdateInput carries the editable shipment references. Empty values are left unchanged.
type UpdateInput struct {
	OrderNumber    string
	TrackingNumber string
}

// Service tracks deliveries of approved orders.
type Service struct {
	repo   Repository
	orders Orders
	logger *zap.Logger
	now    func() time.Time
}

// Params defines dependencies for constructing Service.
type Params struct {
	fx.In

	Repository Repository
	Orders     Orders
	Logger     *zap.Logger
}

// NewService wires the shipment service.
func NewService(p Params) *Service {
	logger := p.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		repo:   p.Repository,
		orders: p.Orders,
		logger: logger,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

// List returns shipments newest first.
func (s *Service) List(ctx context.Context) ([]*entity.Shipment, error) {
	ctx, span := serviceTracer.Start(ctx, "ShipmentService.List")
	defer span.End()

	shipments, err := s.repo.List(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "repository error")
		return nil, errorbank.Internal("failed to list shipments", errorbank.WithCause(err))
	}
	return shipments, nil
}

// Create opens a shipment for an approved order. The order number defaults to the order's own.
func (s *Service) Create(ctx context.Context, actorID int64, in CreateInput) (*entity.Shipment, error) {
	ctx, span := serviceTracer.Start(ctx, "ShipmentService.Create", trace.WithAttributes(attribute.Int64("order.id", in.OrderID)))
	defer span.End()

	if actorID == 0 {
		return nil, errorbank.Unauthorized("acting user is required")
	}
	if in.OrderID <= 0 {
		return nil, errorbank.BadRequest("orderId is required")
	}
	order, err := s.orders.Get(ctx, in.OrderID)
	if err != nil {
		return nil, err
	}
	if order.Status != entity.StatusApproved {
		return nil, errorbank.InvalidTransition("only approved orders can be shipped",
			errorbank.WithDetail("status", string(order.Status)))
	}

	sh := &entity.Shipment{
		OrderID:        order.ID,
		Order:          order,
		OrderNumber:    strings.TrimSpace(in.OrderNumber),
		TrackingNumber: strings.TrimSpace(in.TrackingNumber),
		CreatedAt:      s.now(),
	}
	if sh.OrderNumber == "" {
		sh.OrderNumber = order.OrderNumber
	}
	if err := s.repo.Create(ctx, sh); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "repository error")
		return nil, errorbank.Internal("failed to create shipment", errorbank.WithCause(err))
	}
	s.logger.Info("shipment created",
		zap.Int64("shipment_id", sh.ID),
		zap.Int64("order_id", order.ID),
		zap.Int64("actor_id", actorID),
	)
	return sh, nil
}

func (s *Service) load(ctx context.Context, span trace.Span, id int64) (*entity.Shipment, error) {
	sh, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, errorbank.NotFound("shipment not found")
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, "repository error")
		return nil, errorbank.Internal("failed to load shipment", errorbank.WithCause(err))
	}
	return sh, nil
}

// Update edits the shipment references and marks its order as ordered unless it was already delivered.
func (s *Service) Update(ctx context.Context, actorID, id int64, in UpdateInput) (*entity.Shipment, error) {
	ctx, span := serviceTracer.Start(ctx, "ShipmentService.Update", trace.WithAttributes(attribute.Int64("shipment.id", id)))
	defer span.End()

	if actorID == 0 {
		return nil, errorbank.Unauthorized("acting user is required")
	}
	sh, err := s.load(ctx, span, id)
	if err != nil {
		return nil, err
	}

	order, err := s.orders.Get(ctx, sh.OrderID)
	if err != nil {
		return nil, err
	}
	// a delivered order keeps its status; only the references change
	if order.Status != entity.StatusDelivered {
		order, err = s.orders.MarkOrdered(ctx, actorID, sh.OrderID)
		if err != nil {
			return nil, err
		}
	}
	if v := strings.TrimSpace(in.OrderNumber); v != "" {
		sh.OrderNumber = v
	}
	if v := strings.TrimSpace(in.TrackingNumber); v != "" {
		sh.TrackingNumber = v
	}
	now := s.now()
	sh.UpdatedAt = &now
	sh.Order = order
	if err := s.repo.Update(ctx, sh); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "repository error")
		return nil, errorbank.Internal("failed to update shipment", errorbank.WithCause(err))
	}
	return sh, nil
}

// Deliver records delivery and marks the order delivered.
func (s *Service) Deliver(ctx context.Context, actorID, id int64) (*entity.Shipment, error) {
	ctx, span := serviceTracer.Start(ctx, "ShipmentService.Deliver", trace.WithAttributes(attribute.Int64("shipment.id", id)))
	defer span.End()

	if actorID == 0 {
		return nil, errorbank.Unauthorized("acting user is required")
	}
	sh, err := s.load(ctx, span, id)
	if err != nil {
		return nil, err
	}
	if sh.DeliveredAt != nil {
		return sh, nil
	}

	// the order may already be delivered when an earlier attempt failed to save the shipment
	order, err := s.orders.Get(ctx, sh.OrderID)
	if err != nil {
		return nil, err
	}
	if order.Status != entity.StatusDelivered {
		order, err = s.orders.MarkDelivered(ctx, actorID, sh.OrderID)
		if err != nil {
			return nil, err
		}
	}
	now := s.now()
	sh.DeliveredAt = &now
	sh.UpdatedAt = &now
	sh.Order = order
	if err := s.repo.Update(ctx, sh); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "repository error")
		return nil, errorbank.Internal("failed to update shipment", errorbank.WithCause(err))
	}
	s.logger.Info("shipment delivered", zap.Int64("shipment_id", sh.ID), zap.Int64("order_id", sh.OrderID))
	return sh, nil
}
