package handler

import (
	"log/slog"
	"net/http"

	"github.com/mrops-br/restyle-storefront/internal/app/dto"
	"github.com/mrops-br/restyle-storefront/internal/app/favorites"
	"github.com/mrops-br/restyle-storefront/internal/app/service"
	"github.com/mrops-br/restyle-storefront/internal/infrastructure/http/view"
)

// PageHandler renders the HTML storefront
type PageHandler struct {
	products  *service.ProductService
	favorites *service.FavoritesService
	renderer  *view.Renderer
	logger    *slog.Logger
}

// NewPageHandler creates a new page handler
func NewPageHandler(
	products *service.ProductService,
	favoritesService *service.FavoritesService,
	renderer *view.Renderer,
	logger *slog.Logger,
) *PageHandler {
	return &PageHandler{
		products:  products,
		favorites: favoritesService,
		renderer:  renderer,
		logger:    logger,
	}
}

// Home handles GET /
func (h *PageHandler) Home(w http.ResponseWriter, r *http.Request) {
	sections, err := h.products.HomeSections(r.Context())
	if err != nil {
		h.serverError(w, r, err)
		return
	}

	h.render(w, r, http.StatusOK, view.PageHome, newPage(r, h.favorites, "", view.HomeData{
		Sections:   sections,
		Categories: h.products.Categories(),
	}))
}

// Search handles GET /search
func (h *PageHandler) Search(w http.ResponseWriter, r *http.Request) {
	req := dto.SearchRequestFromQuery(r.URL.Query())

	products, err := h.products.SearchProducts(r.Context(), req)
	if err != nil {
		h.serverError(w, r, err)
		return
	}

	h.render(w, r, http.StatusOK, view.PageSearch, newPage(r, h.favorites, "Browse", view.SearchData{
		Request:    req,
		Categories: h.products.Categories(),
		Products:   products,
	}))
}

// Product handles GET /products/{id}. Unknown or malformed ids get the
// not-found page.
func (h *PageHandler) Product(w http.ResponseWriter, r *http.Request) {
	id, err := productID(r)
	if err != nil {
		h.NotFound(w, r)
		return
	}

	product, err := h.products.GetProduct(r.Context(), id)
	if isNotFound(err) {
		h.NotFound(w, r)
		return
	}
	if err != nil {
		h.serverError(w, r, err)
		return
	}

	related, err := h.products.RelatedProducts(r.Context(), product, service.DefaultRelatedLimit)
	if err != nil {
		h.serverError(w, r, err)
		return
	}

	h.render(w, r, http.StatusOK, view.PageProduct, newPage(r, h.favorites, product.Title, view.ProductData{
		Product: product,
		Related: related,
	}))
}

// Favorites handles GET /favorites
func (h *PageHandler) Favorites(w http.ResponseWriter, r *http.Request) {
	products, err := h.products.FavoriteProducts(r.Context(), favorites.FromContext(r.Context()).Snapshot())
	if err != nil {
		h.serverError(w, r, err)
		return
	}

	h.render(w, r, http.StatusOK, view.PageFavorites, newPage(r, h.favorites, "Favorites", view.ProductListData{Products: products}))
}

// Account handles GET /account. Routed behind RequireSession.
func (h *PageHandler) Account(w http.ResponseWriter, r *http.Request) {
	products, err := h.products.FavoriteProducts(r.Context(), favorites.FromContext(r.Context()).Snapshot())
	if err != nil {
		h.serverError(w, r, err)
		return
	}

	h.render(w, r, http.StatusOK, view.PageAccount, newPage(r, h.favorites, "My Account", view.ProductListData{Products: products}))
}

// ToggleFavorite handles the POST /favorites/{id}/toggle form and sends the
// visitor back to the page they came from.
func (h *PageHandler) ToggleFavorite(w http.ResponseWriter, r *http.Request) {
	id, err := productID(r)
	if err != nil {
		h.NotFound(w, r)
		return
	}

	if _, err := h.favorites.Toggle(r.Context(), id); err != nil {
		if isNotFound(err) {
			h.NotFound(w, r)
		} else {
			h.serverError(w, r, err)
		}
		return
	}

	http.Redirect(w, r, returnTarget(r, "return", "/"), http.StatusSeeOther)
}

// NotFound renders the not-found page with status 404
func (h *PageHandler) NotFound(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, http.StatusNotFound, view.PageNotFound, newPage(r, h.favorites, "Not Found", nil))
}

func (h *PageHandler) render(w http.ResponseWriter, r *http.Request, status int, name string, page *view.Page) {
	render(w, r, h.renderer, h.logger, status, name, page)
}

func (h *PageHandler) serverError(w http.ResponseWriter, r *http.Request, err error) {
	h.logger.ErrorContext(r.Context(), "Request failed",
		slog.String("error", err.Error()),
	)
	http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
}
