package domain

import "time"

// Review rating bounds.
const (
	MinRating = 1
	MaxRating = 5
)

// Review belongs to exactly one engagement; an engagement is rated at most
// once. Reviews are append-only and immutable once created.
type Review struct {
	ID           string    `json:"id"`
	EngagementID string    `json:"engagement_id"`
	ProviderID   string    `json:"provider_id"`
	Rating       int       `json:"rating"`
	Comment      string    `json:"comment,omitempty"`
	ReviewerName string    `json:"reviewer_name"`
	CreatedAt    time.Time `json:"created_at"`
}

// ReputationSummary is a provider's aggregate rating, recomputed from the
// authoritative review set on every submission.
type ReputationSummary struct {
	ProviderID   string  `json:"provider_id"`
	Rating       float64 `json:"rating"`
	TotalReviews int     `json:"total_reviews"`
}

// IsValidRating checks that a rating is within the 1-5 range.
func IsValidRating(rating int) bool {
	return rating >= MinRating && rating <= MaxRating
}
