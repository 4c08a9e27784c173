package handler

import (
	"log/slog"
	"net/http"

	"github.com/mrops-br/restyle-storefront/internal/app/dto"
	"github.com/mrops-br/restyle-storefront/internal/app/service"
	"github.com/mrops-br/restyle-storefront/internal/domain"
	"github.com/mrops-br/restyle-storefront/internal/infrastructure/http/response"
)

// ProductHandler serves the catalog JSON API
type ProductHandler struct {
	service *service.ProductService
	logger  *slog.Logger
}

// NewProductHandler creates a new product handler
func NewProductHandler(service *service.ProductService, logger *slog.Logger) *ProductHandler {
	return &ProductHandler{
		service: service,
		logger:  logger,
	}
}

// ListProducts handles GET /api/products. Search parameters are optional.
func (h *ProductHandler) ListProducts(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	var (
		products []*domain.Product
		err      error
	)
	if len(query) == 0 {
		products, err = h.service.ListProducts(r.Context())
	} else {
		products, err = h.service.SearchProducts(r.Context(), dto.SearchRequestFromQuery(query))
	}
	if err != nil {
		response.Error(w, http.StatusInternalServerError, err)
		return
	}

	response.JSON(w, http.StatusOK, dto.ToProductResponseList(products))
}

// GetProduct handles GET /api/products/{id}
func (h *ProductHandler) GetProduct(w http.ResponseWriter, r *http.Request) {
	id, err := productID(r)
	if err != nil {
		response.Error(w, http.StatusBadRequest, err)
		return
	}

	product, err := h.service.GetProduct(r.Context(), id)
	if err != nil {
		if isNotFound(err) {
			response.Error(w, http.StatusNotFound, err)
		} else {
			response.Error(w, http.StatusInternalServerError, err)
		}
		return
	}

	response.JSON(w, http.StatusOK, dto.ToProductResponse(product))
}
