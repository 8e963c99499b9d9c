package supplier

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
	repo "github.com/hotelprocure/procure/internal/repository/supplier"
	"github.com/hotelprocure/procure/pkg/errorbank"
)

var serviceTracer = otel.Tracer("github.com/hotelprocure/procure/service/supplier")

// orderWindow is the trailing period ordersPerMonth counts over.
const orderWindow = 30 * 24 * time.Hour

// Repository persists suppliers.
type Repository interface {
	List(ctx context.Context) ([]*entity.Supplier, error)
	GetByID(ctx context.Context, id int64) (*entity.Supplier, error)
	Create(ctx context.Context, s *entity.Supplier) error
	UpdateSync(ctx context.Context, s *entity.Supplier) error
	UpdateCounters(ctx context.Context, id int64, productCount, ordersPerMonth int) error
}

// Offers counts a supplier's listed offers.
type Offers interface {
	CountActiveOffers(ctx context.Context, supplierID int64) (int, error)
}

// Orders counts a supplier's recent orders.
type Orders interface {
	CountForSupplierSince(ctx context.Context, supplierID int64, since time.Time) (int, error)
}

// Stats summarises supplier health.
type Stats struct {
	Active     int
	WithErrors int
	Total      int
}

// CreateInput describes a new supplier.
type CreateInput struct {
	Name        string
	Category    string
	APIEndpoint string
}

// Service manages suppliers and their stored counters.
type Service struct {
	repo   Repository
	offers Offers
	orders Orders
	logger *zap.Logger
	now    func() time.Time
}

// Params defines dependencies for constructing Service.
type Params struct {
	fx.In

	Repository Repository
	Offers     Offers
	Orders     Orders
	Logger     *zap.Logger
}

// NewService wires the supplier service.
func NewService(p Params) *Service {
	logger := p.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		repo:   p.Repository,
		offers: p.Offers,
		orders: p.Orders,
		logger: logger,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

// List returns all suppliers with status counts.
func (s *Service) List(ctx context.Context) ([]*entity.Supplier, Stats, error) {
	ctx, span := serviceTracer.Start(ctx, "SupplierService.List")
	defer span.End()

	suppliers, err := s.repo.List(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "repository error")
		return nil, Stats{}, errorbank.Internal("failed to list suppliers", errorbank.WithCause(err))
	}
	stats := Stats{Total: len(suppliers)}
	for _, sup := range suppliers {
		switch sup.Status {
		case entity.SupplierActive:
			stats.Active++
		case entity.SupplierError:
			stats.WithErrors++
		}
	}
	return suppliers, stats, nil
}

// Get loads one supplier.
func (s *Service) Get(ctx context.Context, id int64) (*entity.Supplier, error) {
	ctx, span := serviceTracer.Start(ctx, "SupplierService.Get", trace.WithAttributes(attribute.Int64("supplier.id", id)))
	defer span.End()

	sup, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, errorbank.NotFound("supplier not found")
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, "repository error")
		return nil, errorbank.Internal("failed to load supplier", errorbank.WithCause(err))
	}
	return sup, nil
}

// Create registers an active supplier.
func (s *Service) Create(ctx context.Context, actorID int64, in CreateInput) (*entity.Supplier, error) {
	ctx, span := serviceTracer.Start(ctx, "SupplierService.Create")
	defer span.End()

	if actorID == 0 {
		return nil, errorbank.Unauthorized("acting user is required")
	}
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, errorbank.BadRequest("name is required")
	}
	sup := &entity.Supplier{
		Name:        name,
		Category:    strings.TrimSpace(in.Category),
		APIEndpoint: strings.TrimSpace(in.APIEndpoint),
		Status:      entity.SupplierActive,
	}
	if err := s.repo.Create(ctx, sup); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "repository error")
		return nil, errorbank.Internal("failed to create supplier", errorbank.WithCause(err))
	}
	s.logger.Info("supplier created", zap.Int64("supplier_id", sup.ID), zap.String("name", sup.Name), zap.Int64("actor_id", actorID))
	return sup, nil
}

func (s *Service) counters(ctx context.Context, id int64) (products, orders int, err error) {
	products, err = s.offers.CountActiveOffers(ctx, id)
	if err != nil {
		return 0, 0, err
	}
	orders, err = s.orders.CountForSupplierSince(ctx, id, s.now().Add(-orderWindow))
	if err != nil {
		return 0, 0, err
	}
	return products, orders, nil
}

// RefreshCounters recomputes productCount (active offers) and ordersPerMonth
// (orders over the trailing 30 days) for a supplier.
func (s *Service) RefreshCounters(ctx context.Context, id int64) error {
	ctx, span := serviceTracer.Start(ctx, "SupplierService.RefreshCounters", trace.WithAttributes(attribute.Int64("supplier.id", id)))
	defer span.End()

	products, orders, err := s.counters(ctx, id)
	if err == nil {
		err = s.repo.UpdateCounters(ctx, id, products, orders)
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "refresh failed")
		return err
	}
	return nil
}

// Sync refreshes the supplier's counters and marks it active. A failed refresh
// leaves the supplier in error status.
func (s *Service) Sync(ctx context.Context, actorID, id int64) (*entity.Supplier, error) {
	ctx, span := serviceTracer.Start(ctx, "SupplierService.Sync", trace.WithAttributes(attribute.Int64("supplier.id", id)))
	defer span.End()

	if actorID == 0 {
		return nil, errorbank.Unauthorized("acting user is required")
	}
	sup, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	products, orders, err := s.counters(ctx, id)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "sync failed")
		sup.Status = entity.SupplierError
		if saveErr := s.repo.UpdateSync(ctx, sup); saveErr != nil {
			s.logger.Error("mark supplier errored", zap.Int64("supplier_id", id), zap.Error(saveErr))
		}
		return nil, errorbank.Internal("supplier sync failed", errorbank.WithCause(err))
	}

	now := s.now()
	sup.ProductCount = products
	sup.OrdersPerMonth = orders
	sup.Status = entity.SupplierActive
	sup.LastSyncAt = &now
	if err := s.repo.UpdateSync(ctx, sup); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "repository error")
		return nil, errorbank.Internal("failed to save supplier", errorbank.WithCause(err))
	}
	return sup, nil
}
