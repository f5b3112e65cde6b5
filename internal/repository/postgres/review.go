package postgres

import (
	"context"
	"fmt"

	"github.com/SUII07/EasyHome-sub000/internal/domain"
	"github.com/SUII07/EasyHome-sub000/pkg/apperrors"
	"github.com/SUII07/EasyHome-sub000/pkg/database"
)

// ReviewRepository implements repository.ReviewRepository using PostgreSQL.
type ReviewRepository struct {
	pool database.DBTX
}

// NewReviewRepository creates a new PostgreSQL-backed review repository.
func NewReviewRepository(pool database.DBTX) *ReviewRepository {
	return &ReviewRepository{pool: pool}
}

// Submit links the review to its engagement, inserts it, and recomputes the
// provider's reputation, all in one transaction. The conditional UPDATE on
// review_id guards the one-review-per-engagement invariant under concurrency:
// of two racing submissions, exactly one matches the NULL review_id row.
// The rating is recomputed as an aggregate over the full review set rather
// than maintained incrementally, so floating-point drift cannot accumulate.
func (r *ReviewRepository) Submit(ctx context.Context, review *domain.Review) (*domain.ReputationSummary, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	linkQuery := `
		UPDATE engagements
		SET review_id = $2, updated_at = $3
		WHERE id = $1 AND status = $4 AND review_id IS NULL`

	tag, err := tx.Exec(ctx, linkQuery,
		review.EngagementID,
		review.ID,
		review.CreatedAt,
		domain.EngagementStatusCompleted,
	)
	if err != nil {
		return nil, fmt.Errorf("link review to engagement: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return nil, apperrors.ErrConflict
	}

	insertQuery := `
		INSERT INTO reviews (id, engagement_id, provider_id, rating, comment, reviewer_name, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`

	_, err = tx.Exec(ctx, insertQuery,
		review.ID,
		review.EngagementID,
		review.ProviderID,
		review.Rating,
		review.Comment,
		review.ReviewerName,
		review.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("insert review: %w", err)
	}

	recomputeQuery := `
		UPDATE actors
		SET rating = agg.avg_rating, total_reviews = agg.review_count, updated_at = $2
		FROM (
			SELECT COALESCE(AVG(rating), 0) AS avg_rating, COUNT(*) AS review_count
			FROM reviews
			WHERE provider_id = $1
		) AS agg
		WHERE id = $1
		RETURNING rating, total_reviews`

	var summary domain.ReputationSummary
	summary.ProviderID = review.ProviderID
	if err := tx.QueryRow(ctx, recomputeQuery, review.ProviderID, review.CreatedAt).
		Scan(&summary.Rating, &summary.TotalReviews); err != nil {
		return nil, fmt.Errorf("recompute provider reputation: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit transaction: %w", err)
	}

	return &summary, nil
}

// ListByProvider returns a provider's reviews, newest first, with the total count.
func (r *ReviewRepository) ListByProvider(ctx context.Context, providerID string, page, perPage int) ([]domain.Review, int, error) {
	limit := perPage
	if limit <= 0 {
		limit = 20
	}
	offset := 0
	if page > 1 {
		offset = (page - 1) * limit
	}

	query := `
		SELECT id, engagement_id, provider_id, rating, comment, reviewer_name, created_at,
			   count(*) OVER() AS total_count
		FROM reviews
		WHERE provider_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3`

	rows, err := r.pool.Query(ctx, query, providerID, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("list reviews: %w", err)
	}
	defer rows.Close()

	var totalCount int
	reviews := make([]domain.Review, 0)

	for rows.Next() {
		var rv domain.Review
		if err := rows.Scan(
			&rv.ID,
			&rv.EngagementID,
			&rv.ProviderID,
			&rv.Rating,
			&rv.Comment,
			&rv.ReviewerName,
			&rv.CreatedAt,
			&totalCount,
		); err != nil {
			return nil, 0, fmt.Errorf("scan review row: %w", err)
		}
		reviews = append(reviews, rv)
	}

	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate review rows: %w", err)
	}

	return reviews, totalCount, nil
}
