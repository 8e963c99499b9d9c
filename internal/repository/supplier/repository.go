package supplier

import (
	"context"
	"database/sql"
	"errors"

	"github.com/uptrace/bun"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/hotelprocure/procure/internal/database"
	"github.com/hotelprocure/procure/internal/entity"
)

var repoTracer = otel.Tracer("github.com/hotelprocure/procure/repository/supplier")

// ErrNotFound is returned when a supplier is missing.
var ErrNotFound = errors.New("supplier not found")

// Repository persists suppliers.
type Repository struct {
	writer *bun.DB
	reader *bun.DB
}

// NewRepository wires the repository on the configured connections.
func NewRepository(conns *database.Connections) *Repository {
	return &Repository{writer: conns.Writer, reader: conns.Reader}
}

// List returns all suppliers by name.
func (r *Repository) List(ctx context.Context) ([]*entity.Supplier, error) {
	ctx, span := repoTracer.Start(ctx, "SupplierRepository.List")
	defer span.End()

	suppliers := make([]*entity.Supplier, 0)
	if err := r.reader.NewSelect().Model(&suppliers).OrderExpr("s.name ASC, s.id ASC").Scan(ctx); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "select failed")
		return nil, err
	}
	return suppliers, nil
}

// GetByID loads a supplier.
func (r *Repository) GetByID(ctx context.Context, id int64) (*entity.Supplier, error) {
	ctx, span := repoTracer.Start(ctx, "SupplierRepository.GetByID", trace.WithAttributes(attribute.Int64("supplier.id", id)))
	defer span.End()

	s := new(entity.Supplier)
	err := r.reader.NewSelect().Model(s).Where("s.id = ?", id).Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		span.SetStatus(codes.Error, "not found")
		return nil, ErrNotFound
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "select failed")
		return nil, err
	}
	return s, nil
}

// Create inserts a supplier.
func (r *Repository) Create(ctx context.Context, s *entity.Supplier) error {
	ctx, span := repoTracer.Start(ctx, "SupplierRepository.Create", trace.WithAttributes(attribute.String("supplier.name", s.Name)))
	defer span.End()

	if _, err := r.writer.NewInsert().Model(s).Exec(ctx); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "insert failed")
		return err
	}
	return nil
}

// UpdateSync writes the sync status, timestamp and counters.
func (r *Repository) UpdateSync(ctx context.Context, s *entity.Supplier) error {
	ctx, span := repoTracer.Start(ctx, "SupplierRepository.UpdateSync", trace.WithAttributes(attribute.Int64("supplier.id", s.ID)))
	defer span.End()

	_, err := r.writer.NewUpdate().
		Model(s).
		Column("status", "last_sync_at", "product_count", "orders_per_month").
		WherePK().
		Exec(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "update failed")
		return err
	}
	return nil
}

// UpdateCounters writes only the denormalized counters.
func (r *Repository) UpdateCounters(ctx context.Context, id int64, productCount, ordersPerMonth int) error {
	ctx, span := repoTracer.Start(ctx, "SupplierRepository.UpdateCounters", trace.WithAttributes(attribute.Int64("supplier.id", id)))
	defer span.End()

	_, err := r.writer.NewUpdate().
		Model((*entity.Supplier)(nil)).
		Set("product_count = ?", productCount).
		Set("orders_per_month = ?", ordersPerMonth).
		Where("id = ?", id).
		Exec(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "update failed")
		return err
	}
	return nil
}
