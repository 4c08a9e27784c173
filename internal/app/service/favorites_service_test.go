package service

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	metricnoop "go.opentelemetry.io/otel/metric/noop"
	tracenoop "go.opentelemetry.io/otel/trace/noop"

	"github.com/mrops-br/restyle-storefront/internal/app/favorites"
	"github.com/mrops-br/restyle-storefront/internal/domain"
)

func newTestFavoritesService() *FavoritesService {
	return NewFavoritesService(
		testCatalog(),
		tracenoop.NewTracerProvider().Tracer("test"),
		metricnoop.NewMeterProvider().Meter("test"),
		slog.New(slog.NewTextHandler(io.Discard, nil)),
	)
}

func storeContext() (context.Context, *favorites.Store) {
	store := favorites.NewStore(slog.New(slog.NewTextHandler(io.Discard, nil)))
	store.Hydrate(favorites.NewMemorySlot())
	return favorites.NewContext(context.Background(), store), store
}

func TestFavoritesService_Toggle(t *testing.T) {
	svc := newTestFavoritesService()
	ctx, store := storeContext()

	resp, err := svc.Toggle(ctx, 2)
	require.NoError(t, err)
	assert.True(t, resp.Favorite)
	assert.Equal(t, []int{2}, resp.Favorites)
	assert.True(t, store.IsFavorite(2))

	resp, err = svc.Toggle(ctx, 2)
	require.NoError(t, err)
	assert.False(t, resp.Favorite)
	assert.Empty(t, resp.Favorites)
}

func TestFavoritesService_AddRemove(t *testing.T) {
	svc := newTestFavoritesService()
	ctx, _ := storeContext()

	_, err := svc.Add(ctx, 1)
	require.NoError(t, err)
	resp, err := svc.Add(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, []int{1}, resp.Favorites)

	resp, err = svc.Remove(ctx, 3)
	require.NoError(t, err)
	assert.False(t, resp.Favorite)
	assert.Equal(t, []int{1}, svc.List(ctx).Favorites)
}

func TestFavoritesService_UnknownProduct(t *testing.T) {
	svc := newTestFavoritesService()
	ctx, store := storeContext()

	_, err := svc.Toggle(ctx, 404)
	assert.ErrorIs(t, err, domain.ErrProductNotFound)
	assert.False(t, store.IsFavorite(404))
}

func TestFavoritesService_WithoutStoreInContext(t *testing.T) {
	svc := newTestFavoritesService()

	resp, err := svc.Toggle(context.Background(), 1)
	require.NoError(t, err)
	assert.True(t, resp.Favorite)
	assert.Empty(t, svc.List(context.Background()).Favorites)
}

func TestFavoritesService_RemovesIdsMissingFromCatalog(t *testing.T) {
	svc := newTestFavoritesService()
	ctx, store := storeContext()
	store.AddFavorite(1)
	store.AddFavorite(404)

	count, err := svc.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	resp, err := svc.Remove(ctx, 404)
	require.NoError(t, err)
	assert.Equal(t, []int{1}, resp.Favorites)

	store.AddFavorite(405)
	resp, err = svc.Toggle(ctx, 405)
	require.NoError(t, err)
	assert.False(t, resp.Favorite)
	assert.Equal(t, []int{1}, resp.Favorites)
}

type failingRepository struct{}

var errCatalogDown = errors.New("catalog unavailable")

func (failingRepository) FindByID(context.Context, int) (*domain.Product, error) {
	return nil, errCatalogDown
}

func (failingRepository) FindAll(context.Context) ([]*domain.Product, error) {
	return nil, errCatalogDown
}

func TestFavoritesService_CatalogFailure(t *testing.T) {
	svc := NewFavoritesService(
		failingRepository{},
		tracenoop.NewTracerProvider().Tracer("test"),
		metricnoop.NewMeterProvider().Meter("test"),
		slog.New(slog.NewTextHandler(io.Discard, nil)),
	)
	ctx, store := storeContext()

	_, err := svc.Add(ctx, 1)
	assert.ErrorIs(t, err, errCatalogDown)
	assert.NotErrorIs(t, err, domain.ErrProductNotFound)
	assert.False(t, store.IsFavorite(1))

	// removal never consults the catalog
	store.AddFavorite(2)
	_, err = svc.Remove(ctx, 2)
	require.NoError(t, err)
	assert.False(t, store.IsFavorite(2))

	_, err = svc.Count(ctx)
	assert.ErrorIs(t, err, errCatalogDown)
}
