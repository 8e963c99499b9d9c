package shipment

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

var repoTracer = otel.Tracer("github.com/hotelprocure/procure/repository/shipment")

// ErrNotFound is returned when a shipment is missing.
var ErrNotFound = errors.New("shipment not found")

// Repository persists shipments.
type Repository struct {
	writer *bun.DB
	reader *bun.DB
}

// NewRepository wires the repository on the configured connections.
func NewRepository(conns *database.Connections) *Repository {
	return &Repository{writer: conns.Writer, reader: conns.Reader}
}

func withOrder(q *bun.SelectQuery) *bun.SelectQuery {
	return q.Relation("Order").Relation("Order.Branch")
}

// List returns shipments newest first with their orders.
func (r *Repository) List(ctx context.Context) ([]*entity.Shipment, error) {
	ctx, span := repoTracer.Start(ctx, "ShipmentRepository.List")
	defer span.End()

	shipments := make([]*entity.Shipment, 0)
	if err := withOrder(r.reader.NewSelect().Model(&shipments)).OrderExpr("sh.created_at DESC, sh.id DESC").Scan(ctx); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "select failed")
		return nil, err
	}
	return shipments, nil
}

// GetByID loads a shipment with its order.
func (r *Repository) GetByID(ctx context.Context, id int64) (*entity.Shipment, error) {
	ctx, span := repoTracer.Start(ctx, "ShipmentRepository.GetByID", trace.WithAttributes(attribute.Int64("shipment.id", id)))
	defer span.End()

	sh := new(entity.Shipment)
	err := withOrder(r.reader.NewSelect().Model(sh)).Where("sh.id = ?", id).Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		span.SetStatus(codes.Error, "not found")
		return nil, ErrNotFound
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "select failed")
		return nil, err
	}
	return sh, nil
}

// Create inserts a shipment.
func (r *Repository) Create(ctx context.Context, sh *entity.Shipment) error {
	ctx, span := repoTracer.Start(ctx, "ShipmentRepository.Create", trace.WithAttributes(attribute.Int64("order.id", sh.OrderID)))
	defer span.End()

	if _, err := r.writer.NewInsert().Model(sh).Exec(ctx); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "insert failed")
		return err
	}
	return nil
}

// Update writes the mutable columns.
func (r *Repository) Update(ctx context.Context, sh *entity.Shipment) error {
	ctx, span := repoTracer.Start(ctx, "ShipmentRepository.Update", trace.WithAttributes(attribute.Int64("shipment.id", sh.ID)))
	defer span.End()

	_, err := r.writer.NewUpdate().
		Model(sh).
		Column("order_number", "tracking_number", "updated_at", "delivered_at").
		WherePK().
		Exec(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "update failed")
		return err
	}
	return nil
}
