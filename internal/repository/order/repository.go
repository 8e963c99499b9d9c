package order

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/uptrace/bun"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/hotelprocure/procure/internal/database"
	"github.com/hotelprocure/procure/internal/entity"
	"github.com/hotelprocure/procure/pkg/money"
)

var repoTracer = otel.Tracer("github.com/hotelprocure/procure/repository/order")

var (
	// ErrNotFound is returned when an order is missing.
	ErrNotFound = errors.New("order not found")
	// ErrDuplicateNumber is returned when the order number is already taken.
	ErrDuplicateNumber = errors.New("order number already exists")
	// ErrStale is returned when the order left the expected status before the update landed.
	ErrStale = errors.New("order status changed concurrently")
)

// Filter narrows List. Zero fields are ignored.
type Filter struct {
	CreatedByID  int64
	Status       entity.OrderStatus
	From         *time.Time
	To           *time.Time
	ApprovedFrom *time.Time
	Limit        int
	// WithItems loads items with their offers, products and suppliers.
	WithItems bool
}

// Repository encapsulates read/write access for orders.
type Repository struct {
	writer *bun.DB
	reader *bun.DB
}

// NewRepository wires a repository backed by configured database connections.
func NewRepository(conns *database.Connections) *Repository {
	return &Repository{
		writer: conns.Writer,
		reader: conns.Reader,
	}
}

func fail(span trace.Span, err error, msg string) {
	span.RecordError(err)
	span.SetStatus(codes.Error, msg)
}

// Create persists an order and its items in one transaction.
func (r *Repository) Create(ctx context.Context, order *entity.Order) error {
	if order == nil {
		return errors.New("nil order")
	}
	ctx, span := repoTracer.Start(ctx, "OrderRepository.Create", trace.WithAttributes(
		attribute.String("order.number", order.OrderNumber),
		attribute.Int("order.items", len(order.Items)),
	))
	defer span.End()

	err := r.writer.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		if _, err := tx.NewInsert().Model(order).Exec(ctx); err != nil {
			return err
		}
		if len(order.Items) == 0 {
			return nil
		}
		for _, item := range order.Items {
			item.OrderID = order.ID
		}
		_, err := tx.NewInsert().Model(&order.Items).Exec(ctx)
		return err
	})
	if database.IsUniqueViolation(err) {
		span.SetStatus(codes.Error, "duplicate order number")
		order.ID = 0
		return ErrDuplicateNumber
	}
	if err != nil {
		fail(span, err, "insert failed")
		order.ID = 0
	}
	return err
}

func (r *Repository) withRelations(q *bun.SelectQuery, items bool) *bun.SelectQuery {
	q = q.Relation("Branch").
		Relation("Branch.Organization").
		Relation("CreatedBy").
		Relation("ApprovedBy")
	if items {
		q = q.Relation("Items", func(q *bun.SelectQuery) *bun.SelectQuery {
			return q.OrderExpr("oi.id ASC")
		}).
			Relation("Items.ProductOffer").
			Relation("Items.ProductOffer.Product").
			Relation("Items.ProductOffer.Supplier")
	}
	return q
}

// GetByID fetches an order with its branch, users and items.
func (r *Repository) GetByID(ctx context.Context, id int64) (*entity.Order, error) {
	ctx, span := repoTracer.Start(ctx, "OrderRepository.GetByID", trace.WithAttributes(attribute.Int64("order.id", id)))
	defer span.End()

	order := new(entity.Order)
	err := r.withRelations(r.reader.NewSelect().Model(order), true).
		Where("o.id = ?", id).
		Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		span.SetStatus(codes.Error, "not found")
		return nil, ErrNotFound
	}
	if err != nil {
		fail(span, err, "select failed")
		return nil, err
	}
	return order, nil
}

// List returns orders matching f, newest first.
func (r *Repository) List(ctx context.Context, f Filter) ([]*entity.Order, error) {
	ctx, span := repoTracer.Start(ctx, "OrderRepository.List", trace.WithAttributes(
		attribute.String("order.status", string(f.Status)),
		attribute.Int64("order.created_by", f.CreatedByID),
	))
	defer span.End()

	orders := make([]*entity.Order, 0)
	q := r.withRelations(r.reader.NewSelect().Model(&orders), f.WithItems)
	if f.CreatedByID != 0 {
		q = q.Where("o.created_by_id = ?", f.CreatedByID)
	}
	if f.Status != "" {
		q = q.Where("o.status = ?", string(f.Status))
	}
	if f.From != nil {
		q = q.Where("o.created_at >= ?", *f.From)
	}
	if f.To != nil {
		q = q.Where("o.created_at <= ?", *f.To)
	}
	if f.ApprovedFrom != nil {
		q = q.Where("o.approved_at >= ?", *f.ApprovedFrom)
	}
	if f.Limit > 0 {
		q = q.Limit(f.Limit)
	}
	if err := q.OrderExpr("o.created_at DESC, o.id DESC").Scan(ctx); err != nil {
		fail(span, err, "select failed")
		return nil, err
	}
	return orders, nil
}

// CountByStatus returns the number of orders per status.
func (r *Repository) CountByStatus(ctx context.Context) (map[entity.OrderStatus]int, error) {
	ctx, span := repoTracer.Start(ctx, "OrderRepository.CountByStatus")
	defer span.End()

	var rows []struct {
		Status string `bun:"status"`
		Count  int    `bun:"count"`
	}
	err := r.reader.NewSelect().
		Model((*entity.Order)(nil)).
		ColumnExpr("o.status AS status").
		ColumnExpr("COUNT(*) AS count").
		GroupExpr("o.status").
		Scan(ctx, &rows)
	if err != nil {
		fail(span, err, "select failed")
		return nil, err
	}
	counts := make(map[entity.OrderStatus]int, len(rows))
	for _, row := range rows {
		counts[entity.OrderStatus(row.Status)] = row.Count
	}
	return counts, nil
}

// TotalAmount sums the totals of all orders.
func (r *Repository) TotalAmount(ctx context.Context) (money.Money, error) {
	ctx, span := repoTracer.Start(ctx, "OrderRepository.TotalAmount")
	defer span.End()

	var total money.Money
	err := r.reader.NewSelect().
		Model((*entity.Order)(nil)).
		ColumnExpr("COALESCE(SUM(o.total_amount), 0)").
		Scan(ctx, &total)
	if err != nil {
		fail(span, err, "select failed")
		return money.Zero(), err
	}
	return total, nil
}

// UpdateStatus writes the lifecycle columns of order, provided the stored status is still from.
func (r *Repository) UpdateStatus(ctx context.Context, order *entity.Order, from entity.OrderStatus) error {
	ctx, span := repoTracer.Start(ctx, "OrderRepository.UpdateStatus", trace.WithAttributes(
		attribute.Int64("order.id", order.ID),
		attribute.String("order.from", string(from)),
		attribute.String("order.to", string(order.Status)),
	))
	defer span.End()

	res, err := r.writer.NewUpdate().
		Model(order).
		Column("status", "submitted_at", "approved_at", "approved_by_id").
		WherePK().
		Where("status = ?", string(from)).
		Exec(ctx)
	if err != nil {
		fail(span, err, "update failed")
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		span.SetStatus(codes.Error, "stale")
		return ErrStale
	}
	return nil
}

// LatestNumber returns the most recently inserted order number starting with prefix.
func (r *Repository) LatestNumber(ctx context.Context, prefix string) (string, error) {
	ctx, span := repoTracer.Start(ctx, "OrderRepository.LatestNumber", trace.WithAttributes(attribute.String("order.prefix", prefix)))
	defer span.End()

	var number string
	err := r.writer.NewSelect().
		Model((*entity.Order)(nil)).
		ColumnExpr("o.order_number").
		Where("o.order_number LIKE ?", prefix+"%").
		OrderExpr("o.id DESC").
		Limit(1).
		Scan(ctx, &number)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		fail(span, err, "select failed")
		return "", err
	}
	return number, nil
}

// CountForSupplierSince counts orders created at or after since that contain an offer of the supplier.
func (r *Repository) CountForSupplierSince(ctx context.Context, supplierID int64, since time.Time) (int, error) {
	ctx, span := repoTracer.Start(ctx, "OrderRepository.CountForSupplierSince", trace.WithAttributes(attribute.Int64("supplier.id", supplierID)))
	defer span.End()

	count, err := r.reader.NewSelect().
		Model((*entity.Order)(nil)).
		Where("o.created_at >= ?", since).
		Where("EXISTS (SELECT 1 FROM order_items AS oi JOIN product_offers AS po ON po.id = oi.product_offer_id WHERE oi.order_id = o.id AND po.supplier_id = ?)", supplierID).
		Count(ctx)
	if err != nil {
		fail(span, err, "count failed")
		return 0, err
	}
	return count, nil
}
