package domain

import "strings"

// AddressMatcher decides whether a requested service location and a provider's
// declared service area refer to the same locality. It sits behind an
// interface so the token heuristic can later be swapped for a real
// geocoding-distance comparison without touching dispatch control flow.
type AddressMatcher interface {
	Matches(requested, declared string) bool
}

// AreaTokenMatcher matches free-text addresses by comparing their
// comma-separated tokens (area, then city) leniently: two tokens are
// compatible when either contains the other, which tolerates the punctuation
// and abbreviation drift of free-text addresses ("Baneshwor" matches
// "New Baneshwor").
type AreaTokenMatcher struct{}

// NewAreaTokenMatcher creates the default token-based address matcher.
func NewAreaTokenMatcher() AreaTokenMatcher {
	return AreaTokenMatcher{}
}

// Matches reports whether the requested location and the declared area agree.
// The first tokens must be mutually substring-compatible; the second tokens
// must agree too unless the requester supplied fewer than two tokens.
func (AreaTokenMatcher) Matches(requested, declared string) bool {
	req := normalizeAreaTokens(requested)
	dec := normalizeAreaTokens(declared)

	if len(req) == 0 || len(dec) == 0 {
		return false
	}
	if !tokensCompatible(req[0], dec[0]) {
		return false
	}
	if len(req) < 2 {
		return true
	}
	if len(dec) < 2 {
		return false
	}
	return tokensCompatible(req[1], dec[1])
}

// normalizeAreaTokens splits a free-text address on commas into lower-cased,
// whitespace-trimmed tokens, preserving order (area first, then city).
// Empty tokens are dropped.
func normalizeAreaTokens(s string) []string {
	parts := strings.Split(s, ",")
	tokens := make([]string, 0, len(parts))
	for _, p := range parts {
		t := strings.ToLower(strings.TrimSpace(p))
		if t != "" {
			tokens = append(tokens, t)
		}
	}
	return tokens
}

// tokensCompatible reports whether either token contains the other.
func tokensCompatible(a, b string) bool {
	return strings.Contains(a, b) || strings.Contains(b, a)
}
