package domain

// Currency represents a supported currency in the domain.
type Currency struct {
	Code     string `json:"code"`   // Primary Key (e.g., "USD")
	Name     string `json:"name"`   // e.g., "US Dollar"
	Symbol   string `json:"symbol"` // e.g., "$"
	IsActive bool   `json:"isActive"`
	Timestamps
}

// MajorCurrencies is the fixed set used for rate refresh and historical backfill.
var MajorCurrencies = []string{"USD", "EUR", "GBP", "JPY", "CAD", "AUD", "CHF", "CNY"}

// RefreshBaseCurrencies are the bases fetched on every real-time refresh.
var RefreshBaseCurrencies = []string{"USD", "EUR", "GBP"}

// ReferenceBaseCurrency is the base whose freshness decides whether a refresh is due.
const ReferenceBaseCurrency = "USD"
