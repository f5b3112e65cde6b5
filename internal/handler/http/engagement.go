package http

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/SUII07/EasyHome-sub000/internal/service"
	"github.com/SUII07/EasyHome-sub000/pkg/httputil"
	"github.com/SUII07/EasyHome-sub000/pkg/middleware"
	"github.com/SUII07/EasyHome-sub000/pkg/validator"
)

// EngagementHandler handles HTTP requests for engagement endpoints.
type EngagementHandler struct {
	engagements *service.EngagementService
	reviews     *service.ReviewService
	logger      *slog.Logger
}

// NewEngagementHandler creates a new engagement HTTP handler.
func NewEngagementHandler(engagements *service.EngagementService, reviews *service.ReviewService, logger *slog.Logger) *EngagementHandler {
	return &EngagementHandler{
		engagements: engagements,
		reviews:     reviews,
		logger:      logger,
	}
}

// --- Request DTOs ---

// CreateEngagementRequest is the JSON request body for creating an engagement.
type CreateEngagementRequest struct {
	ProviderID  string `json:"provider_id" validate:"required,uuid"`
	Category    string `json:"category" validate:"required"`
	IsEmergency bool   `json:"is_emergency"`
	Notes       string `json:"notes" validate:"max=2000"`
}

// RespondRequest is the JSON request body for the provider's decision.
type RespondRequest struct {
	Decision string `json:"decision" validate:"required,oneof=accepted declined"`
}

// SubmitReviewRequest is the JSON request body for reviewing a completed engagement.
type SubmitReviewRequest struct {
	Rating  int    `json:"rating" validate:"required,gte=1,lte=5"`
	Comment string `json:"comment" validate:"max=2000"`
}

// --- Handlers ---

// CreateEngagement handles POST /api/v1/engagements
func (h *EngagementHandler) CreateEngagement(w http.ResponseWriter, r *http.Request) {
	// Limit request body to 1MB to prevent DoS via large payloads.
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)

	var req CreateEngagementRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteJSON(w, http.StatusBadRequest, httputil.Response{
			Error: &httputil.ErrorResponse{Code: "INVALID_INPUT", Message: "invalid request body: " + err.Error()},
		})
		return
	}

	if err := validator.Validate(req); err != nil {
		httputil.WriteValidationError(w, err)
		return
	}

	customerID := middleware.ActorIDFromContext(r.Context())

	engagement, err := h.engagements.Create(r.Context(), customerID, service.CreateEngagementInput{
		ProviderID:  req.ProviderID,
		Category:    req.Category,
		IsEmergency: req.IsEmergency,
		Notes:       req.Notes,
	})
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusCreated, httputil.Response{Data: engagement})
}

// RespondToEngagement handles POST /api/v1/engagements/{id}/respond
func (h *EngagementHandler) RespondToEngagement(w http.ResponseWriter, r *http.Request) {
	id, ok := httputil.ParseUUID(w, chi.URLParam(r, "id"))
	if !ok {
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)

	var req RespondRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteJSON(w, http.StatusBadRequest, httputil.Response{
			Error: &httputil.ErrorResponse{Code: "INVALID_INPUT", Message: "invalid request body: " + err.Error()},
		})
		return
	}

	if err := validator.Validate(req); err != nil {
		httputil.WriteValidationError(w, err)
		return
	}

	callerID := middleware.ActorIDFromContext(r.Context())

	engagement, err := h.engagements.Respond(r.Context(), id.String(), callerID, req.Decision)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: engagement})
}

// CompleteEngagement handles POST /api/v1/engagements/{id}/complete
func (h *EngagementHandler) CompleteEngagement(w http.ResponseWriter, r *http.Request) {
	id, ok := httputil.ParseUUID(w, chi.URLParam(r, "id"))
	if !ok {
		return
	}

	callerID := middleware.ActorIDFromContext(r.Context())

	engagement, err := h.engagements.Complete(r.Context(), id.String(), callerID)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: engagement})
}

// CancelEngagement handles POST /api/v1/engagements/{id}/cancel
func (h *EngagementHandler) CancelEngagement(w http.ResponseWriter, r *http.Request) {
	id, ok := httputil.ParseUUID(w, chi.URLParam(r, "id"))
	if !ok {
		return
	}

	callerID := middleware.ActorIDFromContext(r.Context())

	engagement, err := h.engagements.Cancel(r.Context(), id.String(), callerID)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: engagement})
}

// GetEngagement handles GET /api/v1/engagements/{id}
func (h *EngagementHandler) GetEngagement(w http.ResponseWriter, r *http.Request) {
	id, ok := httputil.ParseUUID(w, chi.URLParam(r, "id"))
	if !ok {
		return
	}

	callerID := middleware.ActorIDFromContext(r.Context())
	callerRole := middleware.RoleFromContext(r.Context())

	engagement, err := h.engagements.Get(r.Context(), id.String(), callerID, callerRole)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: engagement})
}

// ListEngagements handles GET /api/v1/engagements
func (h *EngagementHandler) ListEngagements(w http.ResponseWriter, r *http.Request) {
	page, perPage, ok := parsePagination(w, r)
	if !ok {
		return
	}

	var status *string
	if v := r.URL.Query().Get("status"); v != "" {
		status = &v
	}

	callerID := middleware.ActorIDFromContext(r.Context())
	callerRole := middleware.RoleFromContext(r.Context())

	engagements, total, err := h.engagements.List(r.Context(), callerID, callerRole, status, page, perPage)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.NewPaginatedResponse(engagements, total, page, perPage))
}

// SubmitReview handles POST /api/v1/engagements/{id}/review
func (h *EngagementHandler) SubmitReview(w http.ResponseWriter, r *http.Request) {
	id, ok := httputil.ParseUUID(w, chi.URLParam(r, "id"))
	if !ok {
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)

	var req SubmitReviewRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteJSON(w, http.StatusBadRequest, httputil.Response{
			Error: &httputil.ErrorResponse{Code: "INVALID_INPUT", Message: "invalid request body: " + err.Error()},
		})
		return
	}

	if err := validator.Validate(req); err != nil {
		httputil.WriteValidationError(w, err)
		return
	}

	callerID := middleware.ActorIDFromContext(r.Context())

	summary, err := h.reviews.Submit(r.Context(), callerID, service.SubmitReviewInput{
		EngagementID: id.String(),
		Rating:       req.Rating,
		Comment:      req.Comment,
	})
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusCreated, httputil.Response{Data: summary})
}

// parsePagination reads page/per_page query parameters with the usual bounds.
func parsePagination(w http.ResponseWriter, r *http.Request) (page, perPage int, ok bool) {
	page, perPage = 1, 20

	if v := r.URL.Query().Get("page"); v != "" {
		p, err := strconv.Atoi(v)
		if err != nil || p < 1 {
			httputil.WriteJSON(w, http.StatusBadRequest, httputil.Response{
				Error: &httputil.ErrorResponse{Code: "INVALID_PARAMETER", Message: "page must be a valid positive integer"},
			})
			return 0, 0, false
		}
		page = p
	}
	if v := r.URL.Query().Get("per_page"); v != "" {
		pp, err := strconv.Atoi(v)
		if err != nil || pp < 1 || pp > 100 {
			httputil.WriteJSON(w, http.StatusBadRequest, httputil.Response{
				Error: &httputil.ErrorResponse{Code: "INVALID_PARAMETER", Message: "per_page must be a valid integer between 1 and 100"},
			})
			return 0, 0, false
		}
		perPage = pp
	}

	return page, perPage, true
}
