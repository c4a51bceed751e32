package domain

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

// RateScale is the number of fractional digits rates are persisted with.
const RateScale = 8

// RateEpsilon is the smallest difference considered a real rate change.
var RateEpsilon = decimal.New(1, -RateScale)

// ExchangeRate is a stored rate for one (base, target, date) tuple.
type ExchangeRate struct {
	ID                 int64           `json:"id"`
	BaseCurrencyCode   string          `json:"baseCurrencyCode"`
	TargetCurrencyCode string          `json:"targetCurrencyCode"`
	Rate               decimal.Decimal `json:"rate"`
	Date               time.Time       `json:"date"`
	IsHistorical       bool            `json:"isHistorical"`
	Timestamps
}

// Validate checks the invariants every persisted rate must hold.
func (r ExchangeRate) Validate() error {
	if len(r.BaseCurrencyCode) != 3 || len(r.TargetCurrencyCode) != 3 {
		return errors.New("currency codes must be 3 letters")
	}
	if r.BaseCurrencyCode == r.TargetCurrencyCode {
		return errors.New("base and target currency must differ")
	}
	if !r.Rate.IsPositive() {
		return errors.New("rate must be positive")
	}
	if r.Date.IsZero() {
		return errors.New("rate date is required")
	}
	return nil
}

// Differs reports whether other differs from r by more than RateEpsilon.
func (r ExchangeRate) Differs(other decimal.Decimal) bool {
	return r.Rate.Sub(other).Abs().GreaterThan(RateEpsilon)
}

// RateOrigin records where a resolved rate came from.
type RateOrigin string

const (
	OriginCache    RateOrigin = "cache"
	OriginDirect   RateOrigin = "direct"
	OriginInverse  RateOrigin = "inverse"
	OriginExternal RateOrigin = "external"
	OriginIdentity RateOrigin = "identity"
)

// ResolvedRate is the outcome of resolving a currency pair.
type ResolvedRate struct {
	From   string          `json:"from"`
	To     string          `json:"to"`
	Rate   decimal.Decimal `json:"rate"`
	Date   time.Time       `json:"date"`
	Origin RateOrigin      `json:"origin"`
}

// RateSeries maps yyyy-mm-dd dates to rates for one pair.
type RateSeries map[string]decimal.Decimal
