package domain

import "math"

// Service category constants. The set is fixed; anything else is rejected
// before dispatch or pricing runs.
const (
	CategoryPlumbing        = "plumbing"
	CategoryElectrician     = "electrician"
	CategoryPainting        = "painting"
	CategoryCarpentry       = "carpentry"
	CategoryCleaning        = "cleaning"
	CategoryGardening       = "gardening"
	CategoryApplianceRepair = "appliance_repair"
)

const (
	defaultBasePrice           = 50
	defaultEmergencyMultiplier = 1.5

	// neutralRating substitutes for providers with no reviews yet so a new
	// provider's estimate is neither inflated nor penalized.
	neutralRating = 3.0
)

var basePrices = map[string]float64{
	CategoryPlumbing:        65,
	CategoryElectrician:     70,
	CategoryPainting:        55,
	CategoryCarpentry:       60,
	CategoryCleaning:        40,
	CategoryGardening:       45,
	CategoryApplianceRepair: 75,
}

var emergencyMultipliers = map[string]float64{
	CategoryPlumbing:        1.5,
	CategoryElectrician:     1.5,
	CategoryPainting:        1.3,
	CategoryCarpentry:       1.4,
	CategoryCleaning:        1.3,
	CategoryGardening:       1.3,
	CategoryApplianceRepair: 1.4,
}

// ValidCategories returns all valid service categories.
func ValidCategories() []string {
	return []string{
		CategoryPlumbing,
		CategoryElectrician,
		CategoryPainting,
		CategoryCarpentry,
		CategoryCleaning,
		CategoryGardening,
		CategoryApplianceRepair,
	}
}

// IsValidCategory checks if a category string is one of the fixed set.
func IsValidCategory(category string) bool {
	_, ok := basePrices[category]
	return ok
}

// BasePrice returns the per-category base price, falling back to a default
// for unknown categories.
func BasePrice(category string) float64 {
	if p, ok := basePrices[category]; ok {
		return p
	}
	return defaultBasePrice
}

// EmergencyMultiplier returns the per-category emergency rate multiplier,
// falling back to 1.5 for unknown categories.
func EmergencyMultiplier(category string) float64 {
	if m, ok := emergencyMultipliers[category]; ok {
		return m
	}
	return defaultEmergencyMultiplier
}

// EstimatePrice computes the advisory discovery-time estimate for a provider:
//
//	round(basePrice * (rating/3) * (1 + experience/10))
//
// A provider with no reviews is priced at the neutral rating of 3. This is a
// display figure only; the contractual price is fixed by BookingPrice at
// engagement creation and the two must not be unified.
func EstimatePrice(category string, rating float64, totalReviews, experienceYears int) float64 {
	r := rating
	if totalReviews == 0 {
		r = neutralRating
	}
	estimate := BasePrice(category) * (r / neutralRating) * (1 + float64(experienceYears)/10)
	return math.Round(estimate)
}

// BookingPrice computes the binding price fixed on the engagement at creation:
// the provider's declared hourly rate, raised by the category's emergency
// multiplier for emergency requests. The fractional value is kept as-is.
func BookingPrice(hourlyRate float64, category string, isEmergency bool) float64 {
	if !isEmergency {
		return hourlyRate
	}
	return hourlyRate * EmergencyMultiplier(category)
}
