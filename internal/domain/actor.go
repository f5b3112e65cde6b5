package domain

import "time"

// Role constants define the allowed actor roles.
const (
	RoleCustomer = "customer"
	RoleProvider = "provider"
	RoleAdmin    = "admin"
)

// Verification status constants for providers.
const (
	VerificationPending  = "pending"
	VerificationApproved = "approved"
	VerificationRejected = "rejected"
)

// Actor is a single polymorphic identity record. Customers, providers, and
// admins share one shape with a role tag; provider-only fields are zero-valued
// for other roles.
type Actor struct {
	ID       string `json:"id"`
	Role     string `json:"role"`
	FullName string `json:"full_name"`
	Email    string `json:"email"`
	Phone    string `json:"phone,omitempty"`

	// Address is free text, optionally geocoded.
	Address   string   `json:"address,omitempty"`
	Latitude  *float64 `json:"latitude,omitempty"`
	Longitude *float64 `json:"longitude,omitempty"`

	// Provider fields.
	Category           string  `json:"category,omitempty"`
	HourlyRate         float64 `json:"hourly_rate,omitempty"`
	ServiceArea        string  `json:"service_area,omitempty"`
	Available          bool    `json:"available"`
	VerificationStatus string  `json:"verification_status,omitempty"`
	ExperienceYears    int     `json:"experience_years"`

	// Reputation fields, mutated only by the review flow.
	// Rating is always the arithmetic mean of all recorded review ratings;
	// TotalReviews always equals the review count.
	Rating       float64 `json:"rating"`
	TotalReviews int     `json:"total_reviews"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ValidRoles returns the set of valid actor roles.
func ValidRoles() []string {
	return []string{RoleCustomer, RoleProvider, RoleAdmin}
}

// IsValidRole checks whether the given role string is a valid actor role.
func IsValidRole(role string) bool {
	for _, r := range ValidRoles() {
		if r == role {
			return true
		}
	}
	return false
}

// IsProvider reports whether the actor is a service provider.
func (a *Actor) IsProvider() bool {
	return a.Role == RoleProvider
}

// CanServe reports whether the provider is eligible to take on work in the
// given category: available, approved, and offering that category.
func (a *Actor) CanServe(category string) bool {
	return a.IsProvider() &&
		a.Available &&
		a.VerificationStatus == VerificationApproved &&
		a.Category == category
}
