package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/SUII07/EasyHome-sub000/internal/domain"
	"github.com/SUII07/EasyHome-sub000/pkg/apperrors"
	"github.com/SUII07/EasyHome-sub000/pkg/database"
)

// ActorRepository implements repository.ActorRepository using PostgreSQL.
type ActorRepository struct {
	pool database.DBTX
}

// NewActorRepository creates a new PostgreSQL-backed actor repository.
func NewActorRepository(pool database.DBTX) *ActorRepository {
	return &ActorRepository{pool: pool}
}

const actorColumns = `id, role, full_name, email, phone, address, latitude, longitude,
		category, hourly_rate, service_area, available, verification_status,
		experience_years, rating, total_reviews, created_at, updated_at`

func scanActor(row pgx.Row) (*domain.Actor, error) {
	var a domain.Actor
	err := row.Scan(
		&a.ID,
		&a.Role,
		&a.FullName,
		&a.Email,
		&a.Phone,
		&a.Address,
		&a.Latitude,
		&a.Longitude,
		&a.Category,
		&a.HourlyRate,
		&a.ServiceArea,
		&a.Available,
		&a.VerificationStatus,
		&a.ExperienceYears,
		&a.Rating,
		&a.TotalReviews,
		&a.CreatedAt,
		&a.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &a, nil
}

// GetByID retrieves an actor by its ID.
func (r *ActorRepository) GetByID(ctx context.Context, id string) (*domain.Actor, error) {
	query := fmt.Sprintf(`SELECT %s FROM actors WHERE id = $1`, actorColumns)

	a, err := scanActor(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("scan actor: %w", err)
	}

	return a, nil
}

// ListProviders returns approved, available providers in the given category,
// ordered by rating descending, then experience descending, then id ascending
// so ties break deterministically.
func (r *ActorRepository) ListProviders(ctx context.Context, category string) ([]domain.Actor, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM actors
		WHERE role = $1
		  AND category = $2
		  AND available = TRUE
		  AND verification_status = $3
		ORDER BY rating DESC, experience_years DESC, id ASC`, actorColumns)

	rows, err := r.pool.Query(ctx, query, domain.RoleProvider, category, domain.VerificationApproved)
	if err != nil {
		return nil, fmt.Errorf("list providers: %w", err)
	}
	defer rows.Close()

	providers := make([]domain.Actor, 0)
	for rows.Next() {
		a, err := scanActor(rows)
		if err != nil {
			return nil, fmt.Errorf("scan provider row: %w", err)
		}
		providers = append(providers, *a)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate provider rows: %w", err)
	}

	return providers, nil
}
