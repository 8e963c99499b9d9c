package catalog

import (
	"context"
	"errors"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/hotelprocure/procure/internal/catalog"
	"github.com/hotelprocure/procure/internal/entity"
	repo "github.com/hotelprocure/procure/internal/repository/catalog"
	"github.com/hotelprocure/procure/pkg/errorbank"
)

var serviceTracer = otel.Tracer("github.com/hotelprocure/procure/service/catalog")

// Repository is the catalog persistence the service reads from.
type Repository interface {
	ListCategories(ctx context.Context) ([]*entity.Category, error)
	DirectProductCounts(ctx context.Context) (map[int64]int, error)
	ListProducts(ctx context.Context, f repo.ProductFilter) ([]*entity.Product, error)
	GetProduct(ctx context.Context, id int64) (*entity.Product, error)
}

// Service serves the product catalog.
type Service struct {
	repo   Repository
	logger *zap.Logger
}

// Params defines dependencies for constructing Service.
type Params struct {
	fx.In

	Repository Repository
	Logger     *zap.Logger
}

// NewService wires the catalog service.
func NewService(p Params) *Service {
	return &Service{repo: p.Repository, logger: p.Logger}
}

func (s *Service) tree(ctx context.Context) (*catalog.Tree, error) {
	categories, err := s.repo.ListCategories(ctx)
	if err != nil {
		return nil, err
	}
	counts, err := s.repo.DirectProductCounts(ctx)
	if err != nil {
		return nil, err
	}
	return catalog.NewTree(categories, counts), nil
}

// Categories returns the category tree with recursive product counts.
func (s *Service) Categories(ctx context.Context) ([]catalog.Summary, error) {
	ctx, span := serviceTracer.Start(ctx, "CatalogService.Categories")
	defer span.End()

	tree, err := s.tree(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "repository error")
		return nil, errorbank.Internal("failed to load categories", errorbank.WithCause(err))
	}
	return tree.Roots(), nil
}

// Products lists products, optionally restricted to a category and its subcategories
// and to a case-insensitive search over name and description.
func (s *Service) Products(ctx context.Context, categoryID int64, search string) ([]*entity.Product, error) {
	ctx, span := serviceTracer.Start(ctx, "CatalogService.Products", trace.WithAttributes(
		attribute.Int64("catalog.category_id", categoryID),
	))
	defer span.End()

	filter := repo.ProductFilter{Search: search}
	if categoryID > 0 {
		tree, err := s.tree(ctx)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "repository error")
			return nil, errorbank.Internal("failed to load categories", errorbank.WithCause(err))
		}
		filter.CategoryIDs = tree.DescendantIDs(categoryID)
	}

	products, err := s.repo.ListProducts(ctx, filter)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "repository error")
		return nil, errorbank.Internal("failed to list products", errorbank.WithCause(err))
	}
	return products, nil
}

// Product returns a single product with its offers.
func (s *Service) Product(ctx context.Context, id int64) (*entity.Product, error) {
	ctx, span := serviceTracer.Start(ctx, "CatalogService.Product", trace.WithAttributes(attribute.Int64("product.id", id)))
	defer span.End()

	product, err := s.repo.GetProduct(ctx, id)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, errorbank.NotFound("product not found")
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, "repository error")
		return nil, errorbank.Internal("failed to load product", errorbank.WithCause(err))
	}
	return product, nil
}
