package repository

import (
	"context"
	"time"

	"github.com/SUII07/EasyHome-sub000/internal/domain"
)

// EngagementFilter defines filter criteria for listing engagements.
type EngagementFilter struct {
	CustomerID *string
	ProviderID *string
	Status     *string
	Page       int
	PerPage    int
}

// ActorRepository defines the interface for actor (customer/provider/admin)
// persistence. It is the single identity store keyed by id with a role field;
// there is no per-role collection to probe.
type ActorRepository interface {
	// GetByID retrieves an actor by its unique identifier.
	GetByID(ctx context.Context, id string) (*domain.Actor, error)

	// ListProviders returns approved, available providers in the given
	// category, ordered by rating descending, experience descending, then id
	// ascending for a deterministic tie-break.
	ListProviders(ctx context.Context, category string) ([]domain.Actor, error)
}

// EngagementRepository defines the interface for engagement persistence.
// Status mutations are compare-and-swap on the expected current status so
// that concurrent transition attempts on the same engagement serialize: one
// wins, the rest observe a conflict.
type EngagementRepository interface {
	// Create inserts a new engagement.
	Create(ctx context.Context, e *domain.Engagement) error

	// GetByID retrieves an engagement by its unique identifier.
	GetByID(ctx context.Context, id string) (*domain.Engagement, error)

	// List returns engagements matching the given filter along with the total count.
	List(ctx context.Context, filter EngagementFilter) ([]domain.Engagement, int, error)

	// UpdateStatus transitions the engagement from the expected current status
	// to the new one, optionally stamping a completion time. Returns
	// apperrors.ErrConflict if the row is no longer in the expected status.
	UpdateStatus(ctx context.Context, id, fromStatus, toStatus string, completedAt *time.Time) error
}

// ReviewRepository defines the interface for review persistence and the
// atomic reputation recomputation that accompanies every submission.
type ReviewRepository interface {
	// Submit atomically links the review to its engagement (guarding the
	// one-review-per-engagement invariant with a conditional update), inserts
	// the review, and recomputes the provider's rating and review count from
	// the full review set. Returns apperrors.ErrConflict if the engagement
	// was reviewed concurrently.
	Submit(ctx context.Context, review *domain.Review) (*domain.ReputationSummary, error)

	// ListByProvider returns a provider's reviews, newest first, with the total count.
	ListByProvider(ctx context.Context, providerID string, page, perPage int) ([]domain.Review, int, error)
}
