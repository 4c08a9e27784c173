package service

import (
	"context"
	"errors"
	"log/slog"

	"github.com/mrops-br/restyle-storefront/internal/app/dto"
	"github.com/mrops-br/restyle-storefront/internal/app/favorites"
	"github.com/mrops-br/restyle-storefront/internal/domain"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

// FavoritesService applies favorites mutations coming from HTTP to the
// visitor's store found in the request context.
type FavoritesService struct {
	repo                domain.ProductRepository
	tracer              trace.Tracer
	logger              *slog.Logger
	favoritesOperations metric.Int64Counter
}

// NewFavoritesService creates a new favorites service
func NewFavoritesService(
	repo domain.ProductRepository,
	tracer trace.Tracer,
	meter metric.Meter,
	logger *slog.Logger,
) *FavoritesService {
	favoritesOperations, _ := meter.Int64Counter(
		"favorites.operations",
		metric.WithDescription("Total number of favorites operations"),
	)

	return &FavoritesService{
		repo:                repo,
		tracer:              tracer,
		logger:              logger,
		favoritesOperations: favoritesOperations,
	}
}

// List returns the visitor's favorite ids
func (s *FavoritesService) List(ctx context.Context) *dto.FavoritesResponse {
	return &dto.FavoritesResponse{Favorites: favorites.FromContext(ctx).IDs()}
}

// Count returns how many favorite ids resolve to catalog products. Ids
// dropped from the catalog stay in the store until removed but are not
// counted.
func (s *FavoritesService) Count(ctx context.Context) (int, error) {
	set := favorites.FromContext(ctx).Snapshot()
	if set.Len() == 0 {
		return 0, nil
	}

	all, err := s.repo.FindAll(ctx)
	if err != nil {
		return 0, err
	}

	count := 0
	for _, p := range all {
		if set.Contains(p.ID) {
			count++
		}
	}
	return count, nil
}

// Toggle flips membership. Only the adding direction requires a catalog
// product.
func (s *FavoritesService) Toggle(ctx context.Context, id int) (*dto.ToggleFavoriteResponse, error) {
	adds := !favorites.FromContext(ctx).IsFavorite(id)
	return s.apply(ctx, "toggle", id, adds, func(f domain.Favorites) { f.ToggleFavorite(id) })
}

// Add marks a catalog product as favorite
func (s *FavoritesService) Add(ctx context.Context, id int) (*dto.ToggleFavoriteResponse, error) {
	return s.apply(ctx, "add", id, true, func(f domain.Favorites) { f.AddFavorite(id) })
}

// Remove unmarks any id, including ids no longer in the catalog
func (s *FavoritesService) Remove(ctx context.Context, id int) (*dto.ToggleFavoriteResponse, error) {
	return s.apply(ctx, "remove", id, false, func(f domain.Favorites) { f.RemoveFavorite(id) })
}

func (s *FavoritesService) apply(
	ctx context.Context,
	operation string,
	id int,
	adds bool,
	mutate func(domain.Favorites),
) (*dto.ToggleFavoriteResponse, error) {
	ctx, span := s.tracer.Start(ctx, "FavoritesService."+operation)
	defer span.End()

	span.SetAttributes(
		attribute.Int("product.id", id),
		attribute.String("favorites.operation", operation),
	)

	if adds {
		if _, err := s.repo.FindByID(ctx, id); err != nil {
			span.RecordError(err)
			if errors.Is(err, domain.ErrProductNotFound) {
				span.SetStatus(codes.Error, "Product not found")
				s.logger.WarnContext(ctx, "Favorites operation on unknown product",
					slog.String("operation", operation),
					slog.Int("product_id", id),
				)
				s.record(ctx, operation, "not_found")
			} else {
				span.SetStatus(codes.Error, "Failed to look up product")
				s.logger.ErrorContext(ctx, "Failed to look up product",
					slog.String("operation", operation),
					slog.Int("product_id", id),
					slog.String("error", err.Error()),
				)
				s.record(ctx, operation, "failure")
			}
			return nil, err
		}
	}

	store := favorites.FromContext(ctx)
	mutate(store)
	favorite := store.IsFavorite(id)

	s.record(ctx, operation, "success")
	s.logger.InfoContext(ctx, "Favorites updated",
		slog.String("operation", operation),
		slog.Int("product_id", id),
		slog.Bool("favorite", favorite),
	)

	span.SetAttributes(attribute.Bool("favorites.member", favorite))
	span.SetStatus(codes.Ok, "Favorites updated")
	return &dto.ToggleFavoriteResponse{
		ID:        id,
		Favorite:  favorite,
		Favorites: store.IDs(),
	}, nil
}

func (s *FavoritesService) record(ctx context.Context, operation, result string) {
	s.favoritesOperations.Add(ctx, 1,
		metric.WithAttributes(
			attribute.String("operation", operation),
			attribute.String("result", result),
		),
	)
}
