package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/mrops-br/restyle-storefront/internal/app/dto"
	"github.com/mrops-br/restyle-storefront/internal/app/service"
	"github.com/mrops-br/restyle-storefront/internal/infrastructure/http/response"
)

// FavoritesHandler serves the favorites JSON API
type FavoritesHandler struct {
	service *service.FavoritesService
	logger  *slog.Logger
}

// NewFavoritesHandler creates a new favorites handler
func NewFavoritesHandler(service *service.FavoritesService, logger *slog.Logger) *FavoritesHandler {
	return &FavoritesHandler{
		service: service,
		logger:  logger,
	}
}

// List handles GET /api/favorites
func (h *FavoritesHandler) List(w http.ResponseWriter, r *http.Request) {
	response.JSON(w, http.StatusOK, h.service.List(r.Context()))
}

// Toggle handles POST /api/favorites/{id}/toggle
func (h *FavoritesHandler) Toggle(w http.ResponseWriter, r *http.Request) {
	h.apply(w, r, h.service.Toggle)
}

// Add handles PUT /api/favorites/{id}
func (h *FavoritesHandler) Add(w http.ResponseWriter, r *http.Request) {
	h.apply(w, r, h.service.Add)
}

// Remove handles DELETE /api/favorites/{id}
func (h *FavoritesHandler) Remove(w http.ResponseWriter, r *http.Request) {
	h.apply(w, r, h.service.Remove)
}

func (h *FavoritesHandler) apply(
	w http.ResponseWriter,
	r *http.Request,
	op func(context.Context, int) (*dto.ToggleFavoriteResponse, error),
) {
	id, err := productID(r)
	if err != nil {
		response.Error(w, http.StatusBadRequest, err)
		return
	}

	result, err := op(r.Context(), id)
	if err != nil {
		if isNotFound(err) {
			response.Error(w, http.StatusNotFound, err)
		} else {
			response.Error(w, http.StatusInternalServerError, err)
		}
		return
	}

	response.JSON(w, http.StatusOK, result)
}
