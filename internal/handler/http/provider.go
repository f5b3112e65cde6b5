package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/SUII07/EasyHome-sub000/internal/service"
	"github.com/SUII07/EasyHome-sub000/pkg/httputil"
)

// ProviderHandler handles HTTP requests for provider discovery endpoints.
type ProviderHandler struct {
	dispatch *service.DispatchService
	reviews  *service.ReviewService
	logger   *slog.Logger
}

// NewProviderHandler creates a new provider HTTP handler.
func NewProviderHandler(dispatch *service.DispatchService, reviews *service.ReviewService, logger *slog.Logger) *ProviderHandler {
	return &ProviderHandler{
		dispatch: dispatch,
		reviews:  reviews,
		logger:   logger,
	}
}

// FindProviders handles GET /api/v1/providers
func (h *ProviderHandler) FindProviders(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	category := q.Get("category")
	if category == "" {
		httputil.WriteJSON(w, http.StatusBadRequest, httputil.Response{
			Error: &httputil.ErrorResponse{Code: "INVALID_PARAMETER", Message: "category query parameter is required"},
		})
		return
	}

	emergency := q.Get("emergency") == "true"

	matches, err := h.dispatch.FindProviders(r.Context(), category, q.Get("location"), emergency)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: matches})
}

// ListProviderReviews handles GET /api/v1/providers/{id}/reviews
func (h *ProviderHandler) ListProviderReviews(w http.ResponseWriter, r *http.Request) {
	id, ok := httputil.ParseUUID(w, chi.URLParam(r, "id"))
	if !ok {
		return
	}

	page, perPage, ok := parsePagination(w, r)
	if !ok {
		return
	}

	reviews, total, err := h.reviews.ListByProvider(r.Context(), id.String(), page, perPage)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.NewPaginatedResponse(reviews, total, page, perPage))
}
