package order

import (
	"context"
	"errors"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/hotelprocure/procure/internal/config"
	"github.com/hotelprocure/procure/internal/entity"
	"github.com/hotelprocure/procure/internal/messaging"
	repo "github.com/hotelprocure/procure/internal/repository/order"
	orgrepo "github.com/hotelprocure/procure/internal/repository/organization"
	"github.com/hotelprocure/procure/pkg/errorbank"
)

var (
	serviceTracer = otel.Tracer("github.com/hotelprocure/procure/service/order")
	serviceMeter  = otel.Meter("github.com/hotelprocure/procure/service/order")
)

// Repository is the persistence the service needs.
type Repository interface {
	Create(ctx context.Context, order *entity.Order) error
	GetByID(ctx context.Context, id int64) (*entity.Order, error)
	List(ctx context.Context, f repo.Filter) ([]*entity.Order, error)
	UpdateStatus(ctx context.Context, order *entity.Order, from entity.OrderStatus) error
}

// Offers resolves product offers by id.
type Offers interface {
	OffersByIDs(ctx context.Context, ids []int64) (map[int64]*entity.ProductOffer, error)
}

// Directory resolves users and branches.
type Directory interface {
	GetUser(ctx context.Context, id int64) (*entity.User, error)
	GetBranch(ctx context.Context, id int64) (*entity.Branch, error)
}

// Numbers allocates order numbers.
type Numbers interface {
	Next(ctx context.Context, year int) (string, error)
	Resync(ctx context.Context, year int) error
}

// ItemInput is one requested line.
type ItemInput struct {
	OfferID  int64
	Quantity int
}

// CreateInput describes a new order.
type CreateInput struct {
	BranchID int64
	Items    []ItemInput
	Priority string
	Note     string
}

// Service encapsulates the order lifecycle.
type Service struct {
	repo      Repository
	offers    Offers
	directory Directory
	numbers   Numbers
	logger    *zap.Logger
	publisher messaging.Client
	messaging messagingConfig
	retries   int
	currency  string
	location  *time.Location
	now       func() time.Time

	created     metric.Int64Counter
	transitions metric.Int64Counter
}

// messagingConfig contains messaging specific knobs we care about.
type messagingConfig struct {
	enabled bool
}

// Params defines dependencies for constructing Service.
type Params struct {
	fx.In

	Repository Repository
	Offers     Offers
	Directory  Directory
	Numbers    Numbers
	Config     config.Config
	Logger     *zap.Logger
	Publisher  messaging.Client
}

// NewService wires a new Service instance.
func NewService(p Params) (*Service, error) {
	created, err := serviceMeter.Int64Counter("procure.orders.created",
		metric.WithDescription("Orders persisted"))
	if err != nil {
		return nil, err
	}
	transitions, err := serviceMeter.Int64Counter("procure.orders.transitions",
		metric.WithDescription("Order lifecycle transitions applied"))
	if err != nil {
		return nil, err
	}

	logger := p.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	loc := p.Config.Reports.Location
	if loc == nil {
		loc = time.UTC
	}
	return &Service{
		repo:        p.Repository,
		offers:      p.Offers,
		directory:   p.Directory,
		numbers:     p.Numbers,
		logger:      logger,
		publisher:   p.Publisher,
		messaging:   messagingConfig{enabled: p.Config.Messaging.Enabled},
		retries:     p.Config.Ordering.AllocationRetries,
		currency:    p.Config.Ordering.Currency,
		location:    loc,
		now:         func() time.Time { return time.Now().UTC() },
		created:     created,
		transitions: transitions,
	}, nil
}

// Create validates input, snapshots offer prices and persists a draft order under a fresh number.
// Unknown offer ids are skipped.
func (s *Service) Create(ctx context.Context, actorID int64, in CreateInput) (*entity.Order, error) {
	ctx, span := serviceTracer.Start(ctx, "OrderService.Create", trace.WithAttributes(
		attribute.Int64("order.branch_id", in.BranchID),
		attribute.Int("order.requested_items", len(in.Items)),
	))
	defer span.End()

	if actorID == 0 {
		return nil, errorbank.Unauthorized("acting user is required")
	}
	if in.BranchID == 0 {
		return nil, errorbank.BadRequest("branchId is required")
	}
	if len(in.Items) == 0 {
		return nil, errorbank.BadRequest("items must not be empty")
	}
	priority, err := entity.ParsePriority(in.Priority)
	if err != nil {
		return nil, errorbank.BadRequest(err.Error(), errorbank.WithDetail("priority", in.Priority))
	}
	ids := make([]int64, 0, len(in.Items))
	for i, item := range in.Items {
		if item.Quantity < 0 {
			return nil, errorbank.BadRequest("quantity must be positive", errorbank.WithDetail("item", i))
		}
		ids = append(ids, item.OfferID)
	}

	creator, err := s.directory.GetUser(ctx, actorID)
	if err != nil {
		return nil, s.lookupError(span, err)
	}
	branch, err := s.directory.GetBranch(ctx, in.BranchID)
	if err != nil {
		return nil, s.lookupError(span, err)
	}
	offers, err := s.offers.OffersByIDs(ctx, ids)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "offer lookup failed")
		return nil, errorbank.Internal("failed to load offers", errorbank.WithCause(err))
	}

	now := s.now()
	order := entity.NewOrder(branch, creator, priority, s.currency, now)
	order.Note = in.Note
	for _, item := range in.Items {
		offer, ok := offers[item.OfferID]
		if !ok {
			s.logger.Debug("skipping unknown offer", zap.Int64("offer_id", item.OfferID))
			continue
		}
		qty := item.Quantity
		if qty == 0 {
			qty = 1
		}
		order.AddItem(offer, qty)
	}
	if order.ItemCount() == 0 {
		return nil, errorbank.BadRequest("none of the requested offers exist")
	}

	if err := s.persist(ctx, order, now.In(s.location).Year()); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "persist failed")
		return nil, err
	}
	span.SetAttributes(attribute.String("order.number", order.OrderNumber))
	s.created.Add(ctx, 1)
	s.publish(ctx, messaging.EventOrderCreated, order)
	return order, nil
}

// persist inserts order under a freshly allocated number, resyncing the counter and retrying
// when the number is already taken.
func (s *Service) persist(ctx context.Context, order *entity.Order, year int) error {
	attempts := s.retries
	if attempts < 1 {
		attempts = 1
	}
	for attempt := 1; attempt <= attempts; attempt++ {
		number, err := s.numbers.Next(ctx, year)
		if err != nil {
			return errorbank.Internal("failed to allocate order number", errorbank.WithCause(err))
		}
		order.OrderNumber = number

		err = s.repo.Create(ctx, order)
		if err == nil {
			return nil
		}
		if !errors.Is(err, repo.ErrDuplicateNumber) {
			return errorbank.Internal("failed to create order", errorbank.WithCause(err))
		}
		s.logger.Warn("order number collision",
			zap.String("order_number", number),
			zap.Int("attempt", attempt),
		)
		if err := s.numbers.Resync(ctx, year); err != nil {
			return errorbank.Internal("failed to resync order numbers", errorbank.WithCause(err))
		}
	}
	return errorbank.Conflict("could not allocate a unique order number",
		errorbank.WithDetail("attempts", attempts))
}

// Get retrieves an order with its items.
func (s *Service) Get(ctx context.Context, id int64) (*entity.Order, error) {
	ctx, span := serviceTracer.Start(ctx, "OrderService.Get", trace.WithAttributes(attribute.Int64("order.id", id)))
	defer span.End()

	order, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, errorbank.NotFound("order not found")
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, "repository error")
		return nil, errorbank.Internal("failed to load order", errorbank.WithCause(err))
	}
	return order, nil
}

// ListMine returns the acting user's orders, optionally filtered by status.
func (s *Service) ListMine(ctx context.Context, actorID int64, status string) ([]*entity.Order, error) {
	ctx, span := serviceTracer.Start(ctx, "OrderService.ListMine", trace.WithAttributes(attribute.String("order.status", status)))
	defer span.End()

	if actorID == 0 {
		return nil, errorbank.Unauthorized("acting user is required")
	}
	st := entity.OrderStatus(status)
	if status != "" && !st.Valid() {
		return nil, errorbank.BadRequest("unknown order status", errorbank.WithDetail("status", status))
	}
	orders, err := s.repo.List(ctx, repo.Filter{CreatedByID: actorID, Status: st, WithItems: true})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "repository error")
		return nil, errorbank.Internal("failed to list orders", errorbank.WithCause(err))
	}
	return orders, nil
}

// Pending returns submitted orders awaiting approval, most urgent first.
func (s *Service) Pending(ctx context.Context) ([]*entity.Order, error) {
	ctx, span := serviceTracer.Start(ctx, "OrderService.Pending")
	defer span.End()

	orders, err := s.repo.List(ctx, repo.Filter{Status: entity.StatusSubmitted, WithItems: true})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "repository error")
		return nil, errorbank.Internal("failed to list pending orders", errorbank.WithCause(err))
	}
	entity.SortPendingApproval(orders)
	return orders, nil
}

// Submit moves a draft order to submitted.
func (s *Service) Submit(ctx context.Context, actorID, id int64) (*entity.Order, error) {
	return s.transition(ctx, actorID, id, entity.ActionSubmit, messaging.EventOrderSubmitted,
		func(o *entity.Order, _ *entity.User, now time.Time) error { return o.Submit(now) })
}

// Approve moves a submitted order to approved on behalf of the acting user.
func (s *Service) Approve(ctx context.Context, actorID, id int64) (*entity.Order, error) {
	return s.transition(ctx, actorID, id, entity.ActionApprove, messaging.EventOrderApproved,
		func(o *entity.Order, actor *entity.User, now time.Time) error { return o.Approve(actor, now) })
}

// Reject moves a submitted order to rejected.
func (s *Service) Reject(ctx context.Context, actorID, id int64) (*entity.Order, error) {
	return s.transition(ctx, actorID, id, entity.ActionReject, messaging.EventOrderRejected,
		func(o *entity.Order, _ *entity.User, _ time.Time) error { return o.Reject() })
}

// MarkOrdered records that an approved order was handed to shipping.
func (s *Service) MarkOrdered(ctx context.Context, actorID, id int64) (*entity.Order, error) {
	return s.transition(ctx, actorID, id, entity.ActionOrder, messaging.EventOrderOrdered,
		func(o *entity.Order, _ *entity.User, _ time.Time) error { return o.MarkOrdered() })
}

// MarkDelivered records delivery of an approved or ordered order.
func (s *Service) MarkDelivered(ctx context.Context, actorID, id int64) (*entity.Order, error) {
	return s.transition(ctx, actorID, id, entity.ActionDeliver, messaging.EventShipmentDelivered,
		func(o *entity.Order, _ *entity.User, _ time.Time) error { return o.MarkDelivered() })
}

type transitionFunc func(o *entity.Order, actor *entity.User, now time.Time) error

func (s *Service) transition(ctx context.Context, actorID, id int64, action, event string, apply transitionFunc) (*entity.Order, error) {
	ctx, span := serviceTracer.Start(ctx, "OrderService.Transition", trace.WithAttributes(
		attribute.Int64("order.id", id),
		attribute.String("order.action", action),
	))
	defer span.End()

	if actorID == 0 {
		return nil, errorbank.Unauthorized("acting user is required")
	}
	actor, err := s.directory.GetUser(ctx, actorID)
	if err != nil {
		return nil, s.lookupError(span, err)
	}
	order, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	from := order.Status
	if err := apply(order, actor, s.now()); err != nil {
		if errors.Is(err, entity.ErrInvalidTransition) {
			return nil, errorbank.InvalidTransition(err.Error(),
				errorbank.WithDetail("status", string(from)),
				errorbank.WithDetail("action", action),
			)
		}
		return nil, errorbank.BadRequest(err.Error())
	}
	if order.Status == from {
		return order, nil
	}

	if err := s.repo.UpdateStatus(ctx, order, from); err != nil {
		if errors.Is(err, repo.ErrStale) {
			return nil, errorbank.Conflict("order was modified concurrently", errorbank.WithDetail("action", action))
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, "repository error")
		return nil, errorbank.Internal("failed to update order", errorbank.WithCause(err))
	}

	s.transitions.Add(ctx, 1, metric.WithAttributes(attribute.String("action", action)))
	s.logger.Info("order transitioned",
		zap.Int64("order_id", order.ID),
		zap.String("order_number", order.OrderNumber),
		zap.String("from", string(from)),
		zap.String("to", string(order.Status)),
		zap.Int64("actor_id", actorID),
	)
	s.publish(ctx, event, order)
	return order, nil
}

func (s *Service) lookupError(span trace.Span, err error) error {
	switch {
	case errors.Is(err, orgrepo.ErrUserNotFound):
		return errorbank.Unauthorized("unknown acting user")
	case errors.Is(err, orgrepo.ErrBranchNotFound):
		return errorbank.NotFound("branch not found")
	default:
		span.RecordError(err)
		span.SetStatus(codes.Error, "lookup failed")
		return errorbank.Internal("failed to load order context", errorbank.WithCause(err))
	}
}

func (s *Service) publish(ctx context.Context, eventType string, order *entity.Order) {
	if !s.messaging.enabled || s.publisher == nil {
		return
	}
	event := messaging.NewOrderEvent(eventType, s.now())
	event.OrderID = order.ID
	event.OrderNumber = order.OrderNumber
	event.Status = string(order.Status)
	event.BranchID = order.BranchID
	event.SupplierIDs = order.SupplierIDs()
	event.TotalAmount = order.TotalAmount.String()

	msg, err := event.Encode()
	if err != nil {
		s.logger.Error("encode order event", zap.String("type", eventType), zap.Error(err))
		return
	}
	if err := s.publisher.Publish(ctx, msg); err != nil {
		s.logger.Warn("publish order event",
			zap.String("type", eventType),
			zap.Int64("order_id", order.ID),
			zap.Error(err),
		)
	}
}
