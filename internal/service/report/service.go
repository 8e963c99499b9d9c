package report

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/hotelprocure/procure/internal/config"
	"github.com/hotelprocure/procure/internal/entity"
	"github.com/hotelprocure/procure/internal/report"
	repo "github.com/hotelprocure/procure/internal/repository/order"
	"github.com/hotelprocure/procure/pkg/errorbank"
	"github.com/hotelprocure/procure/pkg/money"
)

var serviceTracer = otel.Tracer("github.com/hotelprocure/procure/service/report")

const recentOrders = 5

// Repository is the order persistence reports read from.
type Repository interface {
	List(ctx context.Context, f repo.Filter) ([]*entity.Order, error)
	CountByStatus(ctx context.Context) (map[entity.OrderStatus]int, error)
	TotalAmount(ctx context.Context) (money.Money, error)
}

// DashboardStats are the headline dashboard figures.
type DashboardStats struct {
	TotalOrders     int
	TotalAmount     money.Money
	PendingApproval int
	ApprovedToday   int
	UrgentOrders    int
}

// Dashboard is the landing page summary.
type Dashboard struct {
	Stats    DashboardStats
	ByStatus map[entity.OrderStatus]int
	Recent   []*entity.Order
	Pending  []*entity.Order
}

// Service builds reports and the dashboard.
type Service struct {
	repo   Repository
	logger *zap.Logger
	opts   report.Options
	now    func() time.Time
}

// Params defines dependencies for constructing Service.
type Params struct {
	fx.In

	Repository Repository
	Config     config.Config
	Logger     *zap.Logger
}

// NewService wires the report service.
func NewService(p Params) (*Service, error) {
	rate := money.Zero()
	if p.Config.Reports.SavingsRate != "" {
		parsed, err := money.Parse(p.Config.Reports.SavingsRate)
		if err != nil {
			return nil, err
		}
		rate = parsed
	}
	return &Service{
		repo:   p.Repository,
		logger: p.Logger,
		opts: report.Options{
			Location:    p.Config.Reports.Location,
			TopProducts: p.Config.Reports.TopProducts,
			Months:      p.Config.Reports.Months,
			SavingsRate: rate,
		},
		now: time.Now,
	}, nil
}

func (s *Service) location() *time.Location {
	if s.opts.Location == nil {
		return time.UTC
	}
	return s.opts.Location
}

// Report aggregates orders created within the optional YYYY-MM-DD window.
func (s *Service) Report(ctx context.Context, from, to string) (report.Result, error) {
	ctx, span := serviceTracer.Start(ctx, "ReportService.Report", trace.WithAttributes(
		attribute.String("report.from", from),
		attribute.String("report.to", to),
	))
	defer span.End()

	start, end, err := report.Window(from, to, s.location())
	if err != nil {
		return report.Result{}, errorbank.BadRequest(err.Error())
	}
	orders, err := s.repo.List(ctx, repo.Filter{From: start, To: end, WithItems: true})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "repository error")
		return report.Result{}, errorbank.Internal("failed to load orders", errorbank.WithCause(err))
	}

	opts := s.opts
	opts.Now = s.now()
	return report.Build(orders, opts), nil
}

// Dashboard summarises order volume and the approval queue.
func (s *Service) Dashboard(ctx context.Context) (*Dashboard, error) {
	ctx, span := serviceTracer.Start(ctx, "ReportService.Dashboard")
	defer span.End()

	fail := func(err error) (*Dashboard, error) {
		span.RecordError(err)
		span.SetStatus(codes.Error, "repository error")
		return nil, errorbank.Internal("failed to build dashboard", errorbank.WithCause(err))
	}

	counts, err := s.repo.CountByStatus(ctx)
	if err != nil {
		return fail(err)
	}
	total, err := s.repo.TotalAmount(ctx)
	if err != nil {
		return fail(err)
	}
	recent, err := s.repo.List(ctx, repo.Filter{Limit: recentOrders, WithItems: true})
	if err != nil {
		return fail(err)
	}
	pending, err := s.repo.List(ctx, repo.Filter{Status: entity.StatusSubmitted, WithItems: true})
	if err != nil {
		return fail(err)
	}
	entity.SortPendingApproval(pending)

	now := s.now().In(s.location())
	midnight := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, s.location())
	approvedToday, err := s.repo.List(ctx, repo.Filter{ApprovedFrom: &midnight})
	if err != nil {
		return fail(err)
	}

	d := &Dashboard{
		ByStatus: counts,
		Recent:   recent,
		Pending:  pending,
		Stats: DashboardStats{
			TotalAmount:     total,
			PendingApproval: counts[entity.StatusSubmitted],
			ApprovedToday:   len(approvedToday),
		},
	}
	for _, n := range counts {
		d.Stats.TotalOrders += n
	}
	for _, o := range pending {
		if o.Priority == entity.PriorityHigh {
			d.Stats.UrgentOrders++
		}
	}
	return d, nil
}
