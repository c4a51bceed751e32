package domain

import (
	"strings"
	"time"
)

// DateLayout is the wire and cache format for rate dates.
const DateLayout = "2006-01-02"

// Timestamps holds standard bookkeeping fields for persisted entities.
type Timestamps struct {
	CreatedAt time.Time  `json:"createdAt"`
	UpdatedAt *time.Time `json:"updatedAt,omitempty"`
}

// DateOnly truncates t to midnight UTC. Rates are keyed by calendar date,
// time of day never participates in lookups.
func DateOnly(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// NormalizeCode upper-cases and trims a currency code.
func NormalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// SameCurrency reports whether two codes denote the same currency, ignoring case.
func SameCurrency(a, b string) bool {
	return strings.EqualFold(strings.TrimSpace(a), strings.TrimSpace(b))
}
