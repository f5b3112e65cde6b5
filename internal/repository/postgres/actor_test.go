package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	pgxmock "github.com/pashagolub/pgxmock/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/SUII07/EasyHome-sub000/internal/domain"
	"github.com/SUII07/EasyHome-sub000/pkg/apperrors"
	"github.com/SUII07/EasyHome-sub000/pkg/database"
)

func newTestActorRepo(t *testing.T) (*ActorRepository, pgxmock.PgxPoolIface) {
	t.Helper()
	mock, err := database.NewMockPool()
	require.NoError(t, err)
	repo := NewActorRepository(mock)
	return repo, mock
}

var actorCols = []string{
	"id", "role", "full_name", "email", "phone", "address", "latitude", "longitude",
	"category", "hourly_rate", "service_area", "available", "verification_status",
	"experience_years", "rating", "total_reviews", "created_at", "updated_at",
}

func sampleProvider() *domain.Actor {
	now := time.Now().UTC().Truncate(time.Microsecond)
	return &domain.Actor{
		ID:                 "prov-001",
		Role:               domain.RoleProvider,
		FullName:           "Ram Thapa",
		Email:              "ram@example.com",
		Phone:              "9800000001",
		Address:            "Baneshwor, Kathmandu",
		Category:           domain.CategoryPlumbing,
		HourlyRate:         65,
		ServiceArea:        "Baneshwor, Kathmandu",
		Available:          true,
		VerificationStatus: domain.VerificationApproved,
		ExperienceYears:    7,
		Rating:             4.5,
		TotalReviews:       12,
		CreatedAt:          now,
		UpdatedAt:          now,
	}
}

func actorRow(a *domain.Actor) *pgxmock.Rows {
	return pgxmock.NewRows(actorCols).AddRow(
		a.ID, a.Role, a.FullName, a.Email, a.Phone, a.Address, a.Latitude, a.Longitude,
		a.Category, a.HourlyRate, a.ServiceArea, a.Available, a.VerificationStatus,
		a.ExperienceYears, a.Rating, a.TotalReviews, a.CreatedAt, a.UpdatedAt,
	)
}

func TestActorRepository_GetByID_Success(t *testing.T) {
	repo, mock := newTestActorRepo(t)
	defer mock.Close()

	a := sampleProvider()

	mock.ExpectQuery("SELECT (.+) FROM actors WHERE id").
		WithArgs(a.ID).
		WillReturnRows(actorRow(a))

	got, err := repo.GetByID(context.Background(), a.ID)

	require.NoError(t, err)
	assert.Equal(t, a.ID, got.ID)
	assert.Equal(t, domain.RoleProvider, got.Role)
	assert.Equal(t, 4.5, got.Rating)
	assert.True(t, got.Available)
}

func TestActorRepository_GetByID_NotFound(t *testing.T) {
	repo, mock := newTestActorRepo(t)
	defer mock.Close()

	mock.ExpectQuery("SELECT (.+) FROM actors WHERE id").
		WithArgs("missing").
		WillReturnError(pgx.ErrNoRows)

	_, err := repo.GetByID(context.Background(), "missing")

	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestActorRepository_ListProviders_Success(t *testing.T) {
	repo, mock := newTestActorRepo(t)
	defer mock.Close()

	first := sampleProvider()
	second := sampleProvider()
	second.ID = "prov-002"
	second.Rating = 3.8

	rows := pgxmock.NewRows(actorCols)
	for _, a := range []*domain.Actor{first, second} {
		rows.AddRow(
			a.ID, a.Role, a.FullName, a.Email, a.Phone, a.Address, a.Latitude, a.Longitude,
			a.Category, a.HourlyRate, a.ServiceArea, a.Available, a.VerificationStatus,
			a.ExperienceYears, a.Rating, a.TotalReviews, a.CreatedAt, a.UpdatedAt,
		)
	}

	mock.ExpectQuery("SELECT (.+) FROM actors").
		WithArgs(domain.RoleProvider, domain.CategoryPlumbing, domain.VerificationApproved).
		WillReturnRows(rows)

	got, err := repo.ListProviders(context.Background(), domain.CategoryPlumbing)

	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "prov-001", got[0].ID)
	assert.Equal(t, "prov-002", got[1].ID)
}

func TestActorRepository_ListProviders_Empty(t *testing.T) {
	repo, mock := newTestActorRepo(t)
	defer mock.Close()

	mock.ExpectQuery("SELECT (.+) FROM actors").
		WithArgs(domain.RoleProvider, domain.CategoryGardening, domain.VerificationApproved).
		WillReturnRows(pgxmock.NewRows(actorCols))

	got, err := repo.ListProviders(context.Background(), domain.CategoryGardening)

	require.NoError(t, err)
	assert.Empty(t, got)
}
