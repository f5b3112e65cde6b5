package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/SUII07/EasyHome-sub000/internal/domain"
	"github.com/SUII07/EasyHome-sub000/internal/repository"
	"github.com/SUII07/EasyHome-sub000/pkg/apperrors"
)

// ProviderMatch is one dispatch candidate together with the advisory price
// estimate shown during discovery. The estimate is not the booking price.
type ProviderMatch struct {
	Provider domain.Actor `json:"provider"`
	Estimate float64      `json:"estimate"`
}

// DispatchService finds providers for a service request. Normal requests get a
// lenient locality filter; emergency requests get the stricter token-based
// address match so only providers actually covering the area are offered.
type DispatchService struct {
	actors  repository.ActorRepository
	matcher domain.AddressMatcher
	logger  *slog.Logger
}

// NewDispatchService creates a new dispatch service.
func NewDispatchService(actors repository.ActorRepository, matcher domain.AddressMatcher, logger *slog.Logger) *DispatchService {
	return &DispatchService{actors: actors, matcher: matcher, logger: logger}
}

// FindProviders returns eligible providers for the category, ordered by rating
// then experience, with a discovery estimate attached to each. Zero matches is
// a success with an empty list, never an error.
func (s *DispatchService) FindProviders(ctx context.Context, category, location string, emergency bool) ([]ProviderMatch, error) {
	if !domain.IsValidCategory(category) {
		return nil, apperrors.InvalidCategory(category)
	}

	candidates, err := s.actors.ListProviders(ctx, category)
	if err != nil {
		return nil, fmt.Errorf("list providers: %w", err)
	}

	matches := make([]ProviderMatch, 0, len(candidates))
	for _, p := range candidates {
		if location != "" && !s.coversLocation(p, location, emergency) {
			continue
		}
		matches = append(matches, ProviderMatch{
			Provider: p,
			Estimate: domain.EstimatePrice(category, p.Rating, p.TotalReviews, p.ExperienceYears),
		})
	}

	s.logger.DebugContext(ctx, "providers matched",
		slog.String("category", category),
		slog.Bool("emergency", emergency),
		slog.Int("candidates", len(candidates)),
		slog.Int("matches", len(matches)),
	)

	return matches, nil
}

// coversLocation applies the mode-specific locality filter. Emergency requests
// go through the token matcher; normal requests use a plain case-insensitive
// substring check in either direction.
func (s *DispatchService) coversLocation(p domain.Actor, location string, emergency bool) bool {
	if emergency {
		return s.matcher.Matches(location, p.ServiceArea)
	}

	loc := strings.ToLower(strings.TrimSpace(location))
	area := strings.ToLower(strings.TrimSpace(p.ServiceArea))
	if loc == "" || area == "" {
		return false
	}
	return strings.Contains(area, loc) || strings.Contains(loc, area)
}
