package domain

import "time"

// Engagement status constants.
const (
	EngagementStatusPending   = "pending"
	EngagementStatusAccepted  = "accepted"
	EngagementStatusCompleted = "completed"
	EngagementStatusDeclined  = "declined"
	EngagementStatusCanceled  = "canceled"
)

// Engagement is a single customer-provider service request, normal or
// emergency, tracked from creation to a terminal state. The price is fixed at
// creation time and never changes afterwards; the record is never deleted.
type Engagement struct {
	ID          string     `json:"id"`
	CustomerID  string     `json:"customer_id"`
	ProviderID  string     `json:"provider_id"`
	Category    string     `json:"category"`
	IsEmergency bool       `json:"is_emergency"`
	Price       float64    `json:"price"`
	Notes       string     `json:"notes,omitempty"`
	Status      string     `json:"status"`
	ReviewID    *string    `json:"review_id,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
}

// ValidEngagementStatuses returns all valid engagement statuses.
func ValidEngagementStatuses() []string {
	return []string{
		EngagementStatusPending,
		EngagementStatusAccepted,
		EngagementStatusCompleted,
		EngagementStatusDeclined,
		EngagementStatusCanceled,
	}
}

// IsValidEngagementStatus checks if a status string is valid.
func IsValidEngagementStatus(status string) bool {
	for _, s := range ValidEngagementStatuses() {
		if s == status {
			return true
		}
	}
	return false
}

// AllowedTransitions defines which status transitions are legal. The table is
// total: every (state, target) pair not listed here is rejected, never
// silently ignored. Pending engagements have no automatic expiry; the provider
// must explicitly decline.
func AllowedTransitions() map[string][]string {
	return map[string][]string{
		EngagementStatusPending:   {EngagementStatusAccepted, EngagementStatusDeclined},
		EngagementStatusAccepted:  {EngagementStatusCompleted, EngagementStatusCanceled},
		EngagementStatusCompleted: {},
		EngagementStatusDeclined:  {},
		EngagementStatusCanceled:  {},
	}
}

// CanTransitionTo checks if the engagement can transition to the target status.
func (e *Engagement) CanTransitionTo(target string) bool {
	allowed, ok := AllowedTransitions()[e.Status]
	if !ok {
		return false
	}
	for _, s := range allowed {
		if s == target {
			return true
		}
	}
	return false
}

// IsTerminal reports whether the engagement has reached a terminal status.
func (e *Engagement) IsTerminal() bool {
	switch e.Status {
	case EngagementStatusCompleted, EngagementStatusDeclined, EngagementStatusCanceled:
		return true
	}
	return false
}

// IsParty reports whether the given actor is the engagement's customer or
// provider. Engagements are exclusively owned by this pair; nobody else may
// mutate them.
func (e *Engagement) IsParty(actorID string) bool {
	return actorID == e.CustomerID || actorID == e.ProviderID
}
