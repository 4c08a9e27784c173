package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/mrops-br/restyle-storefront/internal/app/favorites"
	"github.com/mrops-br/restyle-storefront/internal/domain"
	"github.com/mrops-br/restyle-storefront/internal/infrastructure/auth"
	"github.com/mrops-br/restyle-storefront/internal/infrastructure/http/view"
)

var errInvalidID = errors.New("product id must be a positive integer")

// productID reads the {id} URL parameter
func productID(r *http.Request) (int, error) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil || id <= 0 {
		return 0, errInvalidID
	}
	return id, nil
}

// favoriteCounter counts the favorites that still resolve to catalog products
type favoriteCounter interface {
	Count(ctx context.Context) (int, error)
}

// newPage fills the data shared by every template from the request context
func newPage(r *http.Request, counter favoriteCounter, title string, data any) *view.Page {
	store := favorites.FromContext(r.Context())
	count, err := counter.Count(r.Context())
	if err != nil {
		// catalog unavailable, show the raw count
		count = len(store.IDs())
	}
	return &view.Page{
		Title:         title,
		Path:          r.URL.RequestURI(),
		User:          auth.UserFromContext(r.Context()),
		Favorites:     store,
		FavoriteCount: count,
		Data:          data,
	}
}

func render(w http.ResponseWriter, r *http.Request, renderer *view.Renderer, logger *slog.Logger, status int, name string, page *view.Page) {
	if err := renderer.Render(w, status, name, page); err != nil {
		logger.ErrorContext(r.Context(), "Failed to render page",
			slog.String("page", name),
			slog.String("error", err.Error()),
		)
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
	}
}

// localTarget accepts only same-origin paths so redirects cannot leave the site
func localTarget(raw string) (string, bool) {
	if raw == "" || !strings.HasPrefix(raw, "/") || strings.HasPrefix(raw, "//") || strings.HasPrefix(raw, "/\\") {
		return "", false
	}
	u, err := url.Parse(raw)
	if err != nil || u.Scheme != "" || u.Host != "" {
		return "", false
	}
	return u.RequestURI(), true
}

// returnTarget picks where a form post goes back to: the explicit field,
// then a same-host Referer, then fallback.
func returnTarget(r *http.Request, field, fallback string) string {
	if target, ok := localTarget(r.PostFormValue(field)); ok {
		return target
	}
	if ref, err := url.Parse(r.Referer()); err == nil && ref.Host == r.Host {
		if target, ok := localTarget(ref.RequestURI()); ok {
			return target
		}
	}
	return fallback
}

func isNotFound(err error) bool {
	return errors.Is(err, domain.ErrProductNotFound)
}
