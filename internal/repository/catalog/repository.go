package catalog

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/uptrace/bun"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/hotelprocure/procure/internal/database"
	"github.com/hotelprocure/procure/internal/entity"
)

var repoTracer = otel.Tracer("github.com/hotelprocure/procure/repository/catalog")

// ErrNotFound is returned when a product is missing.
var ErrNotFound = errors.New("product not found")

// ProductFilter narrows ListProducts. Empty fields are ignored.
type ProductFilter struct {
	CategoryIDs []int64
	Search      string
}

// Repository reads categories, products and offers.
type Repository struct {
	reader *bun.DB
}

// NewRepository wires the catalog repository on the read connection.
func NewRepository(conns *database.Connections) *Repository {
	return &Repository{reader: conns.Reader}
}

// ListCategories returns every category in insertion order.
func (r *Repository) ListCategories(ctx context.Context) ([]*entity.Category, error) {
	ctx, span := repoTracer.Start(ctx, "CatalogRepository.ListCategories")
	defer span.End()

	categories := make([]*entity.Category, 0)
	if err := r.reader.NewSelect().Model(&categories).OrderExpr("c.id ASC").Scan(ctx); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "select failed")
		return nil, err
	}
	return categories, nil
}

// DirectProductCounts maps category id to the number of products assigned directly to it.
func (r *Repository) DirectProductCounts(ctx context.Context) (map[int64]int, error) {
	ctx, span := repoTracer.Start(ctx, "CatalogRepository.DirectProductCounts")
	defer span.End()

	var rows []struct {
		CategoryID int64 `bun:"category_id"`
		Count      int   `bun:"count"`
	}
	err := r.reader.NewSelect().
		Model((*entity.Product)(nil)).
		ColumnExpr("p.category_id AS category_id").
		ColumnExpr("COUNT(*) AS count").
		GroupExpr("p.category_id").
		Scan(ctx, &rows)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "select failed")
		return nil, err
	}
	counts := make(map[int64]int, len(rows))
	for _, row := range rows {
		counts[row.CategoryID] = row.Count
	}
	return counts, nil
}

func withOffers(q *bun.SelectQuery) *bun.SelectQuery {
	return q.Relation("Offers", func(q *bun.SelectQuery) *bun.SelectQuery {
		return q.OrderExpr("po.id ASC")
	}).Relation("Offers.Supplier")
}

// ListProducts returns products ordered by name, with offers and their suppliers.
func (r *Repository) ListProducts(ctx context.Context, f ProductFilter) ([]*entity.Product, error) {
	ctx, span := repoTracer.Start(ctx, "CatalogRepository.ListProducts", trace.WithAttributes(
		attribute.Int("catalog.categories", len(f.CategoryIDs)),
		attribute.String("catalog.search", f.Search),
	))
	defer span.End()

	products := make([]*entity.Product, 0)
	q := withOffers(r.reader.NewSelect().Model(&products)).Relation("Category")
	if len(f.CategoryIDs) > 0 {
		q = q.Where("p.category_id IN (?)", bun.In(f.CategoryIDs))
	}
	if search := strings.TrimSpace(f.Search); search != "" {
		pattern := "%" + strings.ToLower(search) + "%"
		q = q.WhereGroup(" AND ", func(q *bun.SelectQuery) *bun.SelectQuery {
			return q.Where("LOWER(p.name) LIKE ?", pattern).
				WhereOr("LOWER(p.description) LIKE ?", pattern)
		})
	}
	if err := q.OrderExpr("p.name ASC, p.id ASC").Scan(ctx); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "select failed")
		return nil, err
	}
	return products, nil
}

// GetProduct loads a product with its category and offers.
func (r *Repository) GetProduct(ctx context.Context, id int64) (*entity.Product, error) {
	ctx, span := repoTracer.Start(ctx, "CatalogRepository.GetProduct", trace.WithAttributes(attribute.Int64("product.id", id)))
	defer span.End()

	product := new(entity.Product)
	err := withOffers(r.reader.NewSelect().Model(product)).
		Relation("Category").
		Where("p.id = ?", id).
		Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		span.SetStatus(codes.Error, "not found")
		return nil, ErrNotFound
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "select failed")
		return nil, err
	}
	return product, nil
}

// OffersByIDs loads offers with product and supplier, keyed by id. Unknown ids are absent.
func (r *Repository) OffersByIDs(ctx context.Context, ids []int64) (map[int64]*entity.ProductOffer, error) {
	ctx, span := repoTracer.Start(ctx, "CatalogRepository.OffersByIDs", trace.WithAttributes(attribute.Int("offer.count", len(ids))))
	defer span.End()

	out := make(map[int64]*entity.ProductOffer, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	offers := make([]*entity.ProductOffer, 0, len(ids))
	err := r.reader.NewSelect().
		Model(&offers).
		Relation("Product").
		Relation("Supplier").
		Where("po.id IN (?)", bun.In(ids)).
		Scan(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "select failed")
		return nil, err
	}
	for _, o := range offers {
		out[o.ID] = o
	}
	return out, nil
}

// CountActiveOffers counts the active offers a supplier lists.
func (r *Repository) CountActiveOffers(ctx context.Context, supplierID int64) (int, error) {
	ctx, span := repoTracer.Start(ctx, "CatalogRepository.CountActiveOffers", trace.WithAttributes(attribute.Int64("supplier.id", supplierID)))
	defer span.End()

	n, err := r.reader.NewSelect().
		Model((*entity.ProductOffer)(nil)).
		Where("po.supplier_id = ?", supplierID).
		Where("po.is_active = ?", true).
		Count(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "count failed")
		return 0, err
	}
	return n, nil
}
