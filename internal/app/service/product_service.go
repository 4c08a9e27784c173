package service

import (
	"context"
	"log/slog"
	"math/rand/v2"
	"slices"
	"strings"

	"github.com/mrops-br/restyle-storefront/internal/app/dto"
	"github.com/mrops-br/restyle-storefront/internal/domain"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

const (
	homeLaneSize        = 8
	DefaultRelatedLimit = 4
)

var categories = []string{
	"outerwear",
	"dresses",
	"tops",
	"bottoms",
	"shoes",
	"accessories",
	"knitwear",
	"jewelry",
	"one-piece",
}

// ProductService handles catalog use cases
type ProductService struct {
	repo              domain.ProductRepository
	tracer            trace.Tracer
	logger            *slog.Logger
	productOperations metric.Int64Counter
	searchResults     metric.Int64Histogram
}

// NewProductService creates a new product service
func NewProductService(
	repo domain.ProductRepository,
	tracer trace.Tracer,
	meter metric.Meter,
	logger *slog.Logger,
) *ProductService {
	productOperations, _ := meter.Int64Counter(
		"products.operations",
		metric.WithDescription("Total number of product operations"),
	)

	searchResults, _ := meter.Int64Histogram(
		"products.search.results",
		metric.WithDescription("Number of products returned by a search"),
		metric.WithUnit("{product}"),
	)

	return &ProductService{
		repo:              repo,
		tracer:            tracer,
		logger:            logger,
		productOperations: productOperations,
		searchResults:     searchResults,
	}
}

// Categories returns the browsable categories
func (s *ProductService) Categories() []string {
	return slices.Clone(categories)
}

// GetProduct retrieves a product by ID
func (s *ProductService) GetProduct(ctx context.Context, id int) (*domain.Product, error) {
	ctx, span := s.tracer.Start(ctx, "ProductService.GetProduct")
	defer span.End()

	span.SetAttributes(attribute.Int("product.id", id))

	product, err := s.repo.FindByID(ctx, id)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "Product not found")
		s.logger.WarnContext(ctx, "Product not found",
			slog.Int("product_id", id),
		)
		s.record(ctx, "read", "not_found")
		return nil, err
	}

	s.record(ctx, "read", "success")
	span.SetStatus(codes.Ok, "Product retrieved successfully")
	return product, nil
}

// ListProducts retrieves the full catalog in catalog order
func (s *ProductService) ListProducts(ctx context.Context) ([]*domain.Product, error) {
	ctx, span := s.tracer.Start(ctx, "ProductService.ListProducts")
	defer span.End()

	products, err := s.repo.FindAll(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "Failed to retrieve products")
		s.logger.ErrorContext(ctx, "Failed to list products",
			slog.String("error", err.Error()),
		)
		s.record(ctx, "list", "failure")
		return nil, err
	}

	span.SetAttributes(attribute.Int("product.count", len(products)))
	s.record(ctx, "list", "success")
	span.SetStatus(codes.Ok, "Products listed successfully")
	return products, nil
}

// SearchProducts filters and sorts the catalog. A product matches the free
// text query when any term occurs in its searchable text.
func (s *ProductService) SearchProducts(ctx context.Context, req dto.SearchRequest) ([]*domain.Product, error) {
	ctx, span := s.tracer.Start(ctx, "ProductService.SearchProducts")
	defer span.End()

	span.SetAttributes(
		attribute.String("search.query", req.Query),
		attribute.String("search.category", req.Category),
		attribute.String("search.sort", req.Sort),
	)

	all, err := s.repo.FindAll(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "Failed to retrieve products")
		s.record(ctx, "search", "failure")
		return nil, err
	}

	terms := req.Terms()

	products := make([]*domain.Product, 0, len(all))
	for _, p := range all {
		if len(terms) > 0 && !p.MatchesAnyTerm(terms) {
			continue
		}
		if req.Category != "" && !strings.EqualFold(p.Category, req.Category) {
			continue
		}
		if req.MinPrice != nil && p.Price < *req.MinPrice {
			continue
		}
		if req.MaxPrice != nil && p.Price > *req.MaxPrice {
			continue
		}
		products = append(products, p)
	}

	sortProducts(products, req.Sort)

	span.SetAttributes(attribute.Int("product.count", len(products)))
	s.searchResults.Record(ctx, int64(len(products)))
	s.record(ctx, "search", "success")

	s.logger.DebugContext(ctx, "Products searched",
		slog.String("query", req.Query),
		slog.String("category", req.Category),
		slog.Int("count", len(products)),
	)

	span.SetStatus(codes.Ok, "Products searched successfully")
	return products, nil
}

func sortProducts(products []*domain.Product, order string) {
	switch order {
	case dto.SortPriceAsc:
		slices.SortStableFunc(products, func(a, b *domain.Product) int {
			return cmpFloat(a.Price, b.Price)
		})
	case dto.SortPriceDesc:
		slices.SortStableFunc(products, func(a, b *domain.Product) int {
			return cmpFloat(b.Price, a.Price)
		})
	case dto.SortNewest:
		// ids grow with listing age
		slices.SortStableFunc(products, func(a, b *domain.Product) int {
			return b.ID - a.ID
		})
	}
}

func cmpFloat(a, b float64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}

// RelatedProducts returns up to limit other products from the same category
func (s *ProductService) RelatedProducts(ctx context.Context, product *domain.Product, limit int) ([]*domain.Product, error) {
	ctx, span := s.tracer.Start(ctx, "ProductService.RelatedProducts")
	defer span.End()

	if limit <= 0 {
		limit = DefaultRelatedLimit
	}

	all, err := s.repo.FindAll(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "Failed to retrieve products")
		return nil, err
	}

	related := make([]*domain.Product, 0, limit)
	for _, p := range all {
		if len(related) == limit {
			break
		}
		if p.ID != product.ID && p.Category == product.Category {
			related = append(related, p)
		}
	}

	span.SetAttributes(attribute.Int("product.count", len(related)))
	return related, nil
}

// HomeSections builds the featured, new arrival and popular lanes
func (s *ProductService) HomeSections(ctx context.Context) (*dto.HomeSections, error) {
	ctx, span := s.tracer.Start(ctx, "ProductService.HomeSections")
	defer span.End()

	all, err := s.repo.FindAll(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "Failed to retrieve products")
		return nil, err
	}

	return &dto.HomeSections{
		Featured:    slices.Clone(all[:min(homeLaneSize, len(all))]),
		NewArrivals: randomPicks(all, homeLaneSize),
		Popular:     randomPicks(all, homeLaneSize),
	}, nil
}

func randomPicks(products []*domain.Product, n int) []*domain.Product {
	shuffled := slices.Clone(products)
	rand.Shuffle(len(shuffled), func(i, j int) {
		shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
	})
	return shuffled[:min(n, len(shuffled))]
}

// FavoriteProducts resolves favorite ids to catalog records in catalog order.
// Ids missing from the catalog are skipped.
func (s *ProductService) FavoriteProducts(ctx context.Context, set domain.FavoriteSet) ([]*domain.Product, error) {
	ctx, span := s.tracer.Start(ctx, "ProductService.FavoriteProducts")
	defer span.End()

	span.SetAttributes(attribute.Int("favorites.count", set.Len()))
	if set.Len() == 0 {
		return []*domain.Product{}, nil
	}

	all, err := s.repo.FindAll(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "Failed to retrieve products")
		return nil, err
	}

	products := make([]*domain.Product, 0, set.Len())
	for _, p := range all {
		if set.Contains(p.ID) {
			products = append(products, p)
		}
	}

	if skipped := set.Len() - len(products); skipped > 0 {
		s.logger.DebugContext(ctx, "Favorite ids missing from catalog",
			slog.Int("skipped", skipped),
		)
	}

	return products, nil
}

func (s *ProductService) record(ctx context.Context, operation, result string) {
	s.productOperations.Add(ctx, 1,
		metric.WithAttributes(
			attribute.String("operation", operation),
			attribute.String("result", result),
		),
	)
}
