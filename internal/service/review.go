package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/SUII07/EasyHome-sub000/internal/domain"
	"github.com/SUII07/EasyHome-sub000/internal/event"
	"github.com/SUII07/EasyHome-sub000/internal/repository"
	"github.com/SUII07/EasyHome-sub000/pkg/apperrors"
)

// SubmitReviewInput carries a customer's review of a completed engagement.
type SubmitReviewInput struct {
	EngagementID string
	Rating       int
	Comment      string
}

// ReviewService owns review submission and the provider reputation that is
// recomputed with every accepted review.
type ReviewService struct {
	actors      repository.ActorRepository
	engagements repository.EngagementRepository
	reviews     repository.ReviewRepository
	publisher   event.Publisher
	logger      *slog.Logger
}

// NewReviewService creates a new review service.
func NewReviewService(
	actors repository.ActorRepository,
	engagements repository.EngagementRepository,
	reviews repository.ReviewRepository,
	publisher event.Publisher,
	logger *slog.Logger,
) *ReviewService {
	return &ReviewService{
		actors:      actors,
		engagements: engagements,
		reviews:     reviews,
		publisher:   publisher,
		logger:      logger,
	}
}

// Submit records a review against a completed, not-yet-reviewed engagement and
// returns the provider's recomputed reputation. Only the engagement's customer
// may review. The precondition checks here give callers a precise error; the
// conditional update inside the repository re-checks them atomically, so a
// concurrent duplicate still fails even when both requests pass this gate.
func (s *ReviewService) Submit(ctx context.Context, callerID string, input SubmitReviewInput) (*domain.ReputationSummary, error) {
	if !domain.IsValidRating(input.Rating) {
		return nil, apperrors.InvalidInput(fmt.Sprintf("rating must be between %d and %d", domain.MinRating, domain.MaxRating))
	}

	e, err := s.engagements.GetByID(ctx, input.EngagementID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, apperrors.NotFound("engagement", input.EngagementID)
		}
		return nil, fmt.Errorf("get engagement: %w", err)
	}

	if callerID != e.CustomerID {
		return nil, apperrors.Forbidden("only the engagement's customer may submit a review")
	}
	if e.Status != domain.EngagementStatusCompleted {
		return nil, apperrors.NotEligible(fmt.Sprintf("engagement is %s, only completed engagements can be reviewed", e.Status))
	}
	if e.ReviewID != nil {
		return nil, apperrors.AlreadyReviewed(e.ID)
	}

	reviewer, err := s.actors.GetByID(ctx, callerID)
	if err != nil {
		return nil, fmt.Errorf("get reviewer: %w", err)
	}

	review := &domain.Review{
		ID:           uuid.New().String(),
		EngagementID: e.ID,
		ProviderID:   e.ProviderID,
		Rating:       input.Rating,
		Comment:      input.Comment,
		ReviewerName: reviewer.FullName,
		CreatedAt:    time.Now().UTC(),
	}

	summary, err := s.reviews.Submit(ctx, review)
	if err != nil {
		if errors.Is(err, apperrors.ErrConflict) {
			return nil, apperrors.AlreadyReviewed(e.ID)
		}
		return nil, fmt.Errorf("submit review: %w", err)
	}

	s.logger.InfoContext(ctx, "review submitted",
		slog.String("review_id", review.ID),
		slog.String("engagement_id", e.ID),
		slog.String("provider_id", e.ProviderID),
		slog.Int("rating", review.Rating),
		slog.Float64("new_rating", summary.Rating),
	)

	s.publisher.ReviewSubmitted(ctx, review, summary)

	return summary, nil
}

// ListByProvider returns a provider's reviews, newest first.
func (s *ReviewService) ListByProvider(ctx context.Context, providerID string, page, perPage int) ([]domain.Review, int, error) {
	actor, err := s.actors.GetByID(ctx, providerID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, 0, apperrors.NotFound("provider", providerID)
		}
		return nil, 0, fmt.Errorf("get provider: %w", err)
	}
	if !actor.IsProvider() {
		return nil, 0, apperrors.NotFound("provider", providerID)
	}

	reviews, total, err := s.reviews.ListByProvider(ctx, providerID, page, perPage)
	if err != nil {
		return nil, 0, fmt.Errorf("list reviews: %w", err)
	}

	return reviews, total, nil
}
