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

// CreateEngagementInput carries the customer's request for a new engagement.
type CreateEngagementInput struct {
	ProviderID  string
	Category    string
	IsEmergency bool
	Notes       string
}

// EngagementService owns the engagement lifecycle: creation with its
// eligibility checks and price fixing, and the status transitions afterwards.
type EngagementService struct {
	actors      repository.ActorRepository
	engagements repository.EngagementRepository
	publisher   event.Publisher
	logger      *slog.Logger
}

// NewEngagementService creates a new engagement service.
func NewEngagementService(
	actors repository.ActorRepository,
	engagements repository.EngagementRepository,
	publisher event.Publisher,
	logger *slog.Logger,
) *EngagementService {
	return &EngagementService{
		actors:      actors,
		engagements: engagements,
		publisher:   publisher,
		logger:      logger,
	}
}

// Create validates the provider's eligibility, fixes the contractual price,
// and persists a new pending engagement. The price is the provider's declared
// hourly rate, raised by the category's emergency multiplier for emergency
// requests, and never changes afterwards.
func (s *EngagementService) Create(ctx context.Context, customerID string, input CreateEngagementInput) (*domain.Engagement, error) {
	if !domain.IsValidCategory(input.Category) {
		return nil, apperrors.InvalidCategory(input.Category)
	}

	provider, err := s.actors.GetByID(ctx, input.ProviderID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, apperrors.ProviderUnavailable(fmt.Sprintf("provider %s does not exist", input.ProviderID))
		}
		return nil, fmt.Errorf("get provider: %w", err)
	}

	if !provider.CanServe(input.Category) {
		return nil, apperrors.ProviderUnavailable(
			fmt.Sprintf("provider %s cannot take %s work right now", provider.ID, input.Category))
	}

	now := time.Now().UTC()
	e := &domain.Engagement{
		ID:          uuid.New().String(),
		CustomerID:  customerID,
		ProviderID:  provider.ID,
		Category:    input.Category,
		IsEmergency: input.IsEmergency,
		Price:       domain.BookingPrice(provider.HourlyRate, input.Category, input.IsEmergency),
		Notes:       input.Notes,
		Status:      domain.EngagementStatusPending,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.engagements.Create(ctx, e); err != nil {
		return nil, fmt.Errorf("create engagement: %w", err)
	}

	s.logger.InfoContext(ctx, "engagement created",
		slog.String("engagement_id", e.ID),
		slog.String("provider_id", e.ProviderID),
		slog.String("category", e.Category),
		slog.Bool("is_emergency", e.IsEmergency),
	)

	s.publisher.EngagementCreated(ctx, e)

	return e, nil
}

// Respond records the provider's decision on a pending engagement. Only the
// engagement's provider may respond, and only with accepted or declined.
func (s *EngagementService) Respond(ctx context.Context, engagementID, callerID, decision string) (*domain.Engagement, error) {
	if decision != domain.EngagementStatusAccepted && decision != domain.EngagementStatusDeclined {
		return nil, apperrors.InvalidInput(fmt.Sprintf("decision must be %q or %q", domain.EngagementStatusAccepted, domain.EngagementStatusDeclined))
	}

	e, err := s.engagements.GetByID(ctx, engagementID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, apperrors.NotFound("engagement", engagementID)
		}
		return nil, fmt.Errorf("get engagement: %w", err)
	}

	if callerID != e.ProviderID {
		return nil, apperrors.Forbidden("only the engagement's provider may respond")
	}

	updated, err := s.transition(ctx, e, decision, nil)
	if err != nil {
		return nil, err
	}

	s.publisher.EngagementResponded(ctx, updated)

	return updated, nil
}

// Complete marks an accepted engagement as done and stamps the completion
// time. Only the engagement's provider may complete it.
func (s *EngagementService) Complete(ctx context.Context, engagementID, callerID string) (*domain.Engagement, error) {
	e, err := s.engagements.GetByID(ctx, engagementID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, apperrors.NotFound("engagement", engagementID)
		}
		return nil, fmt.Errorf("get engagement: %w", err)
	}

	if callerID != e.ProviderID {
		return nil, apperrors.Forbidden("only the engagement's provider may complete it")
	}

	completedAt := time.Now().UTC()
	updated, err := s.transition(ctx, e, domain.EngagementStatusCompleted, &completedAt)
	if err != nil {
		return nil, err
	}

	s.publisher.EngagementCompleted(ctx, updated)

	return updated, nil
}

// Cancel moves an accepted engagement to canceled. Either party may cancel.
func (s *EngagementService) Cancel(ctx context.Context, engagementID, callerID string) (*domain.Engagement, error) {
	e, err := s.engagements.GetByID(ctx, engagementID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, apperrors.NotFound("engagement", engagementID)
		}
		return nil, fmt.Errorf("get engagement: %w", err)
	}

	if !e.IsParty(callerID) {
		return nil, apperrors.Forbidden("only the engagement's customer or provider may cancel it")
	}

	updated, err := s.transition(ctx, e, domain.EngagementStatusCanceled, nil)
	if err != nil {
		return nil, err
	}

	s.publisher.EngagementCanceled(ctx, updated)

	return updated, nil
}

// transition applies a status change through the compare-and-swap repository
// update. Losing a race against a concurrent transition surfaces exactly like
// an illegal transition: the caller's requested change was not legal from the
// state the row ended up in.
func (s *EngagementService) transition(ctx context.Context, e *domain.Engagement, target string, completedAt *time.Time) (*domain.Engagement, error) {
	if !e.CanTransitionTo(target) {
		return nil, apperrors.InvalidTransition(e.Status, target)
	}

	if err := s.engagements.UpdateStatus(ctx, e.ID, e.Status, target, completedAt); err != nil {
		if errors.Is(err, apperrors.ErrConflict) {
			return nil, apperrors.InvalidTransition(e.Status, target)
		}
		return nil, fmt.Errorf("update engagement status: %w", err)
	}

	s.logger.InfoContext(ctx, "engagement transitioned",
		slog.String("engagement_id", e.ID),
		slog.String("from", e.Status),
		slog.String("to", target),
	)

	updated := *e
	updated.Status = target
	updated.UpdatedAt = time.Now().UTC()
	updated.CompletedAt = completedAt

	return &updated, nil
}

// Get returns an engagement to one of its parties or an admin.
func (s *EngagementService) Get(ctx context.Context, engagementID, callerID, callerRole string) (*domain.Engagement, error) {
	e, err := s.engagements.GetByID(ctx, engagementID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, apperrors.NotFound("engagement", engagementID)
		}
		return nil, fmt.Errorf("get engagement: %w", err)
	}

	if callerRole != domain.RoleAdmin && !e.IsParty(callerID) {
		return nil, apperrors.Forbidden("engagement is only visible to its parties")
	}

	return e, nil
}

// List returns the caller's engagements. Customers and providers are pinned to
// their own side of the relationship; admins see everything.
func (s *EngagementService) List(ctx context.Context, callerID, callerRole string, status *string, page, perPage int) ([]domain.Engagement, int, error) {
	filter := repository.EngagementFilter{
		Status:  status,
		Page:    page,
		PerPage: perPage,
	}

	switch callerRole {
	case domain.RoleCustomer:
		filter.CustomerID = &callerID
	case domain.RoleProvider:
		filter.ProviderID = &callerID
	case domain.RoleAdmin:
		// No ownership filter.
	default:
		return nil, 0, apperrors.Forbidden("unknown role")
	}

	engagements, total, err := s.engagements.List(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("list engagements: %w", err)
	}

	return engagements, total, nil
}
