package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/SUII07/EasyHome-sub000/internal/domain"
	"github.com/SUII07/EasyHome-sub000/internal/repository"
	"github.com/SUII07/EasyHome-sub000/pkg/apperrors"
	"github.com/SUII07/EasyHome-sub000/pkg/database"
)

// EngagementRepository implements repository.EngagementRepository using PostgreSQL.
type EngagementRepository struct {
	pool database.DBTX
}

// NewEngagementRepository creates a new PostgreSQL-backed engagement repository.
func NewEngagementRepository(pool database.DBTX) *EngagementRepository {
	return &EngagementRepository{pool: pool}
}

const engagementColumns = `id, customer_id, provider_id, category, is_emergency, price,
		notes, status, review_id, created_at, updated_at, completed_at`

func scanEngagement(row pgx.Row) (*domain.Engagement, error) {
	var e domain.Engagement
	err := row.Scan(
		&e.ID,
		&e.CustomerID,
		&e.ProviderID,
		&e.Category,
		&e.IsEmergency,
		&e.Price,
		&e.Notes,
		&e.Status,
		&e.ReviewID,
		&e.CreatedAt,
		&e.UpdatedAt,
		&e.CompletedAt,
	)
	if err != nil {
		return nil, err
	}
	return &e, nil
}

// Create inserts a new engagement.
func (r *EngagementRepository) Create(ctx context.Context, e *domain.Engagement) error {
	query := `
		INSERT INTO engagements (id, customer_id, provider_id, category, is_emergency, price, notes, status, review_id, created_at, updated_at, completed_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`

	_, err := r.pool.Exec(ctx, query,
		e.ID,
		e.CustomerID,
		e.ProviderID,
		e.Category,
		e.IsEmergency,
		e.Price,
		e.Notes,
		e.Status,
		e.ReviewID,
		e.CreatedAt,
		e.UpdatedAt,
		e.CompletedAt,
	)
	if err != nil {
		return fmt.Errorf("insert engagement: %w", err)
	}

	return nil
}

// GetByID retrieves an engagement by its ID.
func (r *EngagementRepository) GetByID(ctx context.Context, id string) (*domain.Engagement, error) {
	query := fmt.Sprintf(`SELECT %s FROM engagements WHERE id = $1`, engagementColumns)

	e, err := scanEngagement(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("scan engagement: %w", err)
	}

	return e, nil
}

// List returns engagements matching the given filter with the total count.
func (r *EngagementRepository) List(ctx context.Context, filter repository.EngagementFilter) ([]domain.Engagement, int, error) {
	var (
		conditions []string
		args       []any
		argIndex   = 1
	)

	if filter.CustomerID != nil {
		conditions = append(conditions, fmt.Sprintf("customer_id = $%d", argIndex))
		args = append(args, *filter.CustomerID)
		argIndex++
	}

	if filter.ProviderID != nil {
		conditions = append(conditions, fmt.Sprintf("provider_id = $%d", argIndex))
		args = append(args, *filter.ProviderID)
		argIndex++
	}

	if filter.Status != nil {
		conditions = append(conditions, fmt.Sprintf("status = $%d", argIndex))
		args = append(args, *filter.Status)
		argIndex++
	}

	whereClause := ""
	if len(conditions) > 0 {
		whereClause = "WHERE " + strings.Join(conditions, " AND ")
	}

	// count(*) OVER() yields the total in the same query as the page.
	query := fmt.Sprintf(`
		SELECT %s, count(*) OVER() AS total_count
		FROM engagements
		%s
		ORDER BY created_at DESC
		LIMIT $%d OFFSET $%d`,
		engagementColumns, whereClause, argIndex, argIndex+1,
	)

	limit := filter.PerPage
	if limit <= 0 {
		limit = 20
	}
	offset := 0
	if filter.Page > 1 {
		offset = (filter.Page - 1) * limit
	}

	args = append(args, limit, offset)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list engagements: %w", err)
	}
	defer rows.Close()

	var totalCount int
	engagements := make([]domain.Engagement, 0)

	for rows.Next() {
		var e domain.Engagement
		if err := rows.Scan(
			&e.ID,
			&e.CustomerID,
			&e.ProviderID,
			&e.Category,
			&e.IsEmergency,
			&e.Price,
			&e.Notes,
			&e.Status,
			&e.ReviewID,
			&e.CreatedAt,
			&e.UpdatedAt,
			&e.CompletedAt,
			&totalCount,
		); err != nil {
			return nil, 0, fmt.Errorf("scan engagement row: %w", err)
		}
		engagements = append(engagements, e)
	}

	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate engagement rows: %w", err)
	}

	return engagements, totalCount, nil
}

// UpdateStatus transitions the engagement with a compare-and-swap on the
// expected current status. When two transition attempts race, the UPDATE
// matches zero rows for the loser, which surfaces as ErrConflict.
func (r *EngagementRepository) UpdateStatus(ctx context.Context, id, fromStatus, toStatus string, completedAt *time.Time) error {
	query := `
		UPDATE engagements
		SET status = $3, updated_at = $4, completed_at = COALESCE($5, completed_at)
		WHERE id = $1 AND status = $2`

	tag, err := r.pool.Exec(ctx, query, id, fromStatus, toStatus, time.Now().UTC(), completedAt)
	if err != nil {
		return fmt.Errorf("update engagement status: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return apperrors.ErrConflict
	}

	return nil
}
