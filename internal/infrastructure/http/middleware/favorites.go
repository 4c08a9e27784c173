package middleware

import (
	"log/slog"
	"net/http"

	"go.opentelemetry.io/otel/metric"

	"github.com/mrops-br/restyle-storefront/internal/app/favorites"
	"github.com/mrops-br/restyle-storefront/internal/domain"
	"github.com/mrops-br/restyle-storefront/internal/infrastructure/config"
	"github.com/mrops-br/restyle-storefront/internal/infrastructure/storage/cookie"
)

// Favorites binds a favorites store to every request. The store is hydrated
// from the visitor's favorites cookie, or stays memory-only when persistence
// is disabled.
func Favorites(cfg *config.FavoritesConfig, meter metric.Meter, logger *slog.Logger) func(next http.Handler) http.Handler {
	setSize, err := meter.Int64Histogram(
		"favorites.set.size",
		metric.WithDescription("Size of the visitor's favorites set after a change"),
		metric.WithUnit("{product}"),
	)
	if err != nil {
		logger.Warn("Failed to create favorites.set.size histogram",
			slog.String("error", err.Error()),
		)
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()

			store := favorites.NewStore(logger.With(slog.String("component", "favorites")))
			if setSize != nil {
				unsubscribe := store.Subscribe(func(set domain.FavoriteSet) {
					setSize.Record(ctx, int64(set.Len()))
				})
				defer unsubscribe()
			}

			store.Hydrate(slotFor(cfg, w, r))

			next.ServeHTTP(w, r.WithContext(favorites.NewContext(ctx, store)))
		})
	}
}

func slotFor(cfg *config.FavoritesConfig, w http.ResponseWriter, r *http.Request) favorites.Slot {
	if !cfg.Persist {
		return favorites.UnavailableSlot{}
	}
	return cookie.NewSlot(w, r, cookie.Options{
		Path:   "/",
		MaxAge: cfg.CookieMaxAge,
		Secure: cfg.CookieSecure,
	})
}
