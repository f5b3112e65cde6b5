package http

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/SUII07/EasyHome-sub000/internal/domain"
	"github.com/SUII07/EasyHome-sub000/internal/event"
	"github.com/SUII07/EasyHome-sub000/internal/repository"
	"github.com/SUII07/EasyHome-sub000/internal/service"
	"github.com/SUII07/EasyHome-sub000/pkg/apperrors"
	"github.com/SUII07/EasyHome-sub000/pkg/health"
	"github.com/SUII07/EasyHome-sub000/pkg/httputil"
	"github.com/SUII07/EasyHome-sub000/pkg/middleware"
)

// Fixed identifiers used across the handler tests.
const (
	customerID   = "0c7f98f0-33f4-4c27-b1a4-6e695fcd3401"
	providerID   = "550e8400-e29b-41d4-a716-446655440001"
	engagementID = "7c9e6679-7425-40de-944b-e07fc1f90ae7"
)

// --- Mock Repositories ---

type mockActorRepository struct {
	mock.Mock
}

func (m *mockActorRepository) GetByID(ctx context.Context, id string) (*domain.Actor, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Actor), args.Error(1)
}

func (m *mockActorRepository) ListProviders(ctx context.Context, category string) ([]domain.Actor, error) {
	args := m.Called(ctx, category)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Actor), args.Error(1)
}

type mockEngagementRepository struct {
	mock.Mock
}

func (m *mockEngagementRepository) Create(ctx context.Context, e *domain.Engagement) error {
	args := m.Called(ctx, e)
	return args.Error(0)
}

func (m *mockEngagementRepository) GetByID(ctx context.Context, id string) (*domain.Engagement, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Engagement), args.Error(1)
}

func (m *mockEngagementRepository) List(ctx context.Context, filter repository.EngagementFilter) ([]domain.Engagement, int, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]domain.Engagement), args.Int(1), args.Error(2)
}

func (m *mockEngagementRepository) UpdateStatus(ctx context.Context, id, fromStatus, toStatus string, completedAt *time.Time) error {
	args := m.Called(ctx, id, fromStatus, toStatus, completedAt)
	return args.Error(0)
}

type mockReviewRepository struct {
	mock.Mock
}

func (m *mockReviewRepository) Submit(ctx context.Context, review *domain.Review) (*domain.ReputationSummary, error) {
	args := m.Called(ctx, review)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ReputationSummary), args.Error(1)
}

func (m *mockReviewRepository) ListByProvider(ctx context.Context, providerID string, page, perPage int) ([]domain.Review, int, error) {
	args := m.Called(ctx, providerID, page, perPage)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]domain.Review), args.Int(1), args.Error(2)
}

// --- Test Helpers ---

type testRepos struct {
	actors      *mockActorRepository
	engagements *mockEngagementRepository
	reviews     *mockReviewRepository
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
}

// allowAllThrottle never denies; throttle behavior has its own tests.
type allowAllThrottle struct{}

func (allowAllThrottle) Allow(context.Context, string) (bool, error) { return true, nil }

// testTokenValidator resolves the fixed test tokens to identity claims.
func testTokenValidator(token string) (*middleware.Claims, error) {
	switch token {
	case "customer-token":
		return &middleware.Claims{ActorID: customerID, Role: domain.RoleCustomer}, nil
	case "provider-token":
		return &middleware.Claims{ActorID: providerID, Role: domain.RoleProvider}, nil
	default:
		return nil, fmt.Errorf("unknown token")
	}
}

// setupRouter wires the production router against mock repositories.
func setupRouter(repos testRepos) http.Handler {
	log := testLogger()
	publisher := event.NopPublisher{}

	return NewRouter(RouterConfig{
		Engagements:     service.NewEngagementService(repos.actors, repos.engagements, publisher, log),
		Dispatch:        service.NewDispatchService(repos.actors, domain.NewAreaTokenMatcher(), log),
		Reviews:         service.NewReviewService(repos.actors, repos.engagements, repos.reviews, publisher, log),
		Health:          health.NewHandler(),
		TokenValidator:  testTokenValidator,
		BookingThrottle: allowAllThrottle{},
		Logger:          log,
		PprofCIDRs:      []string{"127.0.0.1/32"},
		RequestTimeout:  30 * time.Second,
	})
}

func newRepos() testRepos {
	return testRepos{
		actors:      new(mockActorRepository),
		engagements: new(mockEngagementRepository),
		reviews:     new(mockReviewRepository),
	}
}

func doJSON(router http.Handler, method, path, token string, body []byte) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func decodeResponse(t *testing.T, rec *httptest.ResponseRecorder) httputil.Response {
	t.Helper()
	var resp httputil.Response
	err := json.NewDecoder(rec.Body).Decode(&resp)
	require.NoError(t, err)
	return resp
}

func testProvider() *domain.Actor {
	return &domain.Actor{
		ID:                 providerID,
		Role:               domain.RoleProvider,
		FullName:           "Ram Thapa",
		Category:           domain.CategoryPlumbing,
		HourlyRate:         65,
		ServiceArea:        "Baneshwor, Kathmandu",
		Available:          true,
		VerificationStatus: domain.VerificationApproved,
		ExperienceYears:    7,
		Rating:             4.5,
		TotalReviews:       12,
	}
}

func testEngagement(status string) *domain.Engagement {
	now := time.Now().UTC()
	return &domain.Engagement{
		ID:         engagementID,
		CustomerID: customerID,
		ProviderID: providerID,
		Category:   domain.CategoryPlumbing,
		Price:      65,
		Status:     status,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
}

// --- Auth Tests ---

func TestAPI_MissingTokenUnauthorized(t *testing.T) {
	router := setupRouter(newRepos())

	rec := doJSON(router, http.MethodGet, "/api/v1/engagements", "", nil)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAPI_BadTokenUnauthorized(t *testing.T) {
	router := setupRouter(newRepos())

	rec := doJSON(router, http.MethodGet, "/api/v1/engagements", "bogus", nil)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

// --- CreateEngagement Tests ---

func TestCreateEngagement_Created(t *testing.T) {
	repos := newRepos()
	router := setupRouter(repos)

	repos.actors.On("GetByID", mock.Anything, providerID).Return(testProvider(), nil)
	repos.engagements.On("Create", mock.Anything, mock.AnythingOfType("*domain.Engagement")).Return(nil)

	body, _ := json.Marshal(CreateEngagementRequest{
		ProviderID: providerID,
		Category:   domain.CategoryPlumbing,
		Notes:      "leaking sink",
	})

	rec := doJSON(router, http.MethodPost, "/api/v1/engagements", "customer-token", body)

	assert.Equal(t, http.StatusCreated, rec.Code)
	resp := decodeResponse(t, rec)
	require.NotNil(t, resp.Data)
	data := resp.Data.(map[string]any)
	assert.Equal(t, customerID, data["customer_id"])
	assert.Equal(t, "pending", data["status"])
	assert.Equal(t, 65.0, data["price"])
}

func TestCreateEngagement_ProviderRoleForbidden(t *testing.T) {
	router := setupRouter(newRepos())

	body, _ := json.Marshal(CreateEngagementRequest{
		ProviderID: providerID,
		Category:   domain.CategoryPlumbing,
	})

	rec := doJSON(router, http.MethodPost, "/api/v1/engagements", "provider-token", body)

	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestCreateEngagement_InvalidBody(t *testing.T) {
	router := setupRouter(newRepos())

	rec := doJSON(router, http.MethodPost, "/api/v1/engagements", "customer-token", []byte("{not json"))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCreateEngagement_MissingProviderID(t *testing.T) {
	router := setupRouter(newRepos())

	body, _ := json.Marshal(CreateEngagementRequest{Category: domain.CategoryPlumbing})

	rec := doJSON(router, http.MethodPost, "/api/v1/engagements", "customer-token", body)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	resp := decodeResponse(t, rec)
	require.NotNil(t, resp.Error)
	assert.Equal(t, "VALIDATION_ERROR", resp.Error.Code)
}

func TestCreateEngagement_UnknownCategory(t *testing.T) {
	router := setupRouter(newRepos())

	body, _ := json.Marshal(CreateEngagementRequest{
		ProviderID: providerID,
		Category:   "locksmith",
	})

	rec := doJSON(router, http.MethodPost, "/api/v1/engagements", "customer-token", body)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	resp := decodeResponse(t, rec)
	require.NotNil(t, resp.Error)
	assert.Equal(t, "INVALID_CATEGORY", resp.Error.Code)
}

func TestCreateEngagement_ProviderUnavailable(t *testing.T) {
	repos := newRepos()
	router := setupRouter(repos)

	busy := testProvider()
	busy.Available = false
	repos.actors.On("GetByID", mock.Anything, providerID).Return(busy, nil)

	body, _ := json.Marshal(CreateEngagementRequest{
		ProviderID: providerID,
		Category:   domain.CategoryPlumbing,
	})

	rec := doJSON(router, http.MethodPost, "/api/v1/engagements", "customer-token", body)

	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	resp := decodeResponse(t, rec)
	require.NotNil(t, resp.Error)
	assert.Equal(t, "PROVIDER_UNAVAILABLE", resp.Error.Code)
}

func TestCreateEngagement_WrongContentType(t *testing.T) {
	router := setupRouter(newRepos())

	req := httptest.NewRequest(http.MethodPost, "/api/v1/engagements", bytes.NewReader([]byte("provider_id=x")))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Authorization", "Bearer customer-token")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnsupportedMediaType, rec.Code)
}

// --- Respond Tests ---

func TestRespondToEngagement_Accepted(t *testing.T) {
	repos := newRepos()
	router := setupRouter(repos)

	repos.engagements.On("GetByID", mock.Anything, engagementID).Return(testEngagement(domain.EngagementStatusPending), nil)
	repos.engagements.On("UpdateStatus", mock.Anything, engagementID, domain.EngagementStatusPending, domain.EngagementStatusAccepted, (*time.Time)(nil)).Return(nil)

	body, _ := json.Marshal(RespondRequest{Decision: "accepted"})

	rec := doJSON(router, http.MethodPost, "/api/v1/engagements/"+engagementID+"/respond", "provider-token", body)

	assert.Equal(t, http.StatusOK, rec.Code)
	resp := decodeResponse(t, rec)
	data := resp.Data.(map[string]any)
	assert.Equal(t, "accepted", data["status"])
}

func TestRespondToEngagement_CustomerRoleForbidden(t *testing.T) {
	router := setupRouter(newRepos())

	body, _ := json.Marshal(RespondRequest{Decision: "accepted"})

	rec := doJSON(router, http.MethodPost, "/api/v1/engagements/"+engagementID+"/respond", "customer-token", body)

	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestRespondToEngagement_InvalidDecision(t *testing.T) {
	router := setupRouter(newRepos())

	body, _ := json.Marshal(RespondRequest{Decision: "maybe"})

	rec := doJSON(router, http.MethodPost, "/api/v1/engagements/"+engagementID+"/respond", "provider-token", body)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRespondToEngagement_NotPendingConflict(t *testing.T) {
	repos := newRepos()
	router := setupRouter(repos)

	repos.engagements.On("GetByID", mock.Anything, engagementID).Return(testEngagement(domain.EngagementStatusAccepted), nil)

	body, _ := json.Marshal(RespondRequest{Decision: "accepted"})

	rec := doJSON(router, http.MethodPost, "/api/v1/engagements/"+engagementID+"/respond", "provider-token", body)

	assert.Equal(t, http.StatusConflict, rec.Code)
	resp := decodeResponse(t, rec)
	require.NotNil(t, resp.Error)
	assert.Equal(t, "INVALID_TRANSITION", resp.Error.Code)
}

func TestRespondToEngagement_NotFound(t *testing.T) {
	repos := newRepos()
	router := setupRouter(repos)

	repos.engagements.On("GetByID", mock.Anything, engagementID).Return(nil, apperrors.ErrNotFound)

	body, _ := json.Marshal(RespondRequest{Decision: "declined"})

	rec := doJSON(router, http.MethodPost, "/api/v1/engagements/"+engagementID+"/respond", "provider-token", body)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

// --- Complete / Cancel Tests ---

func TestCompleteEngagement_OK(t *testing.T) {
	repos := newRepos()
	router := setupRouter(repos)

	repos.engagements.On("GetByID", mock.Anything, engagementID).Return(testEngagement(domain.EngagementStatusAccepted), nil)
	repos.engagements.On("UpdateStatus", mock.Anything, engagementID, domain.EngagementStatusAccepted, domain.EngagementStatusCompleted, mock.AnythingOfType("*time.Time")).Return(nil)

	rec := doJSON(router, http.MethodPost, "/api/v1/engagements/"+engagementID+"/complete", "provider-token", []byte("{}"))

	assert.Equal(t, http.StatusOK, rec.Code)
	resp := decodeResponse(t, rec)
	data := resp.Data.(map[string]any)
	assert.Equal(t, "completed", data["status"])
	assert.NotEmpty(t, data["completed_at"])
}

func TestCancelEngagement_ByCustomerOK(t *testing.T) {
	repos := newRepos()
	router := setupRouter(repos)

	repos.engagements.On("GetByID", mock.Anything, engagementID).Return(testEngagement(domain.EngagementStatusAccepted), nil)
	repos.engagements.On("UpdateStatus", mock.Anything, engagementID, domain.EngagementStatusAccepted, domain.EngagementStatusCanceled, (*time.Time)(nil)).Return(nil)

	rec := doJSON(router, http.MethodPost, "/api/v1/engagements/"+engagementID+"/cancel", "customer-token", []byte("{}"))

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestCancelEngagement_FromPendingConflict(t *testing.T) {
	repos := newRepos()
	router := setupRouter(repos)

	repos.engagements.On("GetByID", mock.Anything, engagementID).Return(testEngagement(domain.EngagementStatusPending), nil)

	rec := doJSON(router, http.MethodPost, "/api/v1/engagements/"+engagementID+"/cancel", "customer-token", []byte("{}"))

	assert.Equal(t, http.StatusConflict, rec.Code)
}

// --- Get / List Tests ---

func TestGetEngagement_OK(t *testing.T) {
	repos := newRepos()
	router := setupRouter(repos)

	repos.engagements.On("GetByID", mock.Anything, engagementID).Return(testEngagement(domain.EngagementStatusPending), nil)

	rec := doJSON(router, http.MethodGet, "/api/v1/engagements/"+engagementID, "customer-token", nil)

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestGetEngagement_BadUUID(t *testing.T) {
	router := setupRouter(newRepos())

	rec := doJSON(router, http.MethodGet, "/api/v1/engagements/not-a-uuid", "customer-token", nil)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestListEngagements_CustomerScoped(t *testing.T) {
	repos := newRepos()
	router := setupRouter(repos)

	repos.engagements.On("List", mock.Anything, mock.MatchedBy(func(f repository.EngagementFilter) bool {
		return f.CustomerID != nil && *f.CustomerID == customerID
	})).Return([]domain.Engagement{*testEngagement(domain.EngagementStatusPending)}, 1, nil)

	rec := doJSON(router, http.MethodGet, "/api/v1/engagements", "customer-token", nil)

	assert.Equal(t, http.StatusOK, rec.Code)
	var resp httputil.PaginatedResponse[domain.Engagement]
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, 1, resp.TotalCount)
	require.Len(t, resp.Data, 1)
	assert.Equal(t, engagementID, resp.Data[0].ID)
}

func TestListEngagements_BadPage(t *testing.T) {
	router := setupRouter(newRepos())

	rec := doJSON(router, http.MethodGet, "/api/v1/engagements?page=zero", "customer-token", nil)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

// --- SubmitReview Tests ---

func TestSubmitReview_Created(t *testing.T) {
	repos := newRepos()
	router := setupRouter(repos)

	completed := testEngagement(domain.EngagementStatusCompleted)
	now := time.Now().UTC()
	completed.CompletedAt = &now

	repos.engagements.On("GetByID", mock.Anything, engagementID).Return(completed, nil)
	repos.actors.On("GetByID", mock.Anything, customerID).Return(&domain.Actor{
		ID: customerID, Role: domain.RoleCustomer, FullName: "Sita Karki",
	}, nil)
	repos.reviews.On("Submit", mock.Anything, mock.AnythingOfType("*domain.Review")).
		Return(&domain.ReputationSummary{ProviderID: providerID, Rating: 4.6, TotalReviews: 13}, nil)

	body, _ := json.Marshal(SubmitReviewRequest{Rating: 5, Comment: "great work"})

	rec := doJSON(router, http.MethodPost, "/api/v1/engagements/"+engagementID+"/review", "customer-token", body)

	assert.Equal(t, http.StatusCreated, rec.Code)
	resp := decodeResponse(t, rec)
	data := resp.Data.(map[string]any)
	assert.Equal(t, 4.6, data["rating"])
	assert.Equal(t, 13.0, data["total_reviews"])
}

func TestSubmitReview_RatingOutOfRange(t *testing.T) {
	router := setupRouter(newRepos())

	body, _ := json.Marshal(SubmitReviewRequest{Rating: 6})

	rec := doJSON(router, http.MethodPost, "/api/v1/engagements/"+engagementID+"/review", "customer-token", body)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSubmitReview_AlreadyReviewedConflict(t *testing.T) {
	repos := newRepos()
	router := setupRouter(repos)

	reviewed := testEngagement(domain.EngagementStatusCompleted)
	reviewID := "bb40cbcf-6a86-4b6d-bd2b-d7e4f1a57b01"
	reviewed.ReviewID = &reviewID
	repos.engagements.On("GetByID", mock.Anything, engagementID).Return(reviewed, nil)

	body, _ := json.Marshal(SubmitReviewRequest{Rating: 4})

	rec := doJSON(router, http.MethodPost, "/api/v1/engagements/"+engagementID+"/review", "customer-token", body)

	assert.Equal(t, http.StatusConflict, rec.Code)
	resp := decodeResponse(t, rec)
	require.NotNil(t, resp.Error)
	assert.Equal(t, "ALREADY_REVIEWED", resp.Error.Code)
}

func TestSubmitReview_ProviderRoleForbidden(t *testing.T) {
	router := setupRouter(newRepos())

	body, _ := json.Marshal(SubmitReviewRequest{Rating: 5})

	rec := doJSON(router, http.MethodPost, "/api/v1/engagements/"+engagementID+"/review", "provider-token", body)

	assert.Equal(t, http.StatusForbidden, rec.Code)
}

// --- Health Tests ---

func TestHealthLive_NoAuthRequired(t *testing.T) {
	router := setupRouter(newRepos())

	req := httptest.NewRequest(http.MethodGet, "/health/live", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
}
