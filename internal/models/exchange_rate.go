package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// ExchangeRate stores the conversion rate between two currencies for a specific date.
// Unique on (base_currency_code, target_currency_code, date).
type ExchangeRate struct {
	ID                 int64           `db:"id"`
	BaseCurrencyCode   string          `db:"base_currency_code"`
	TargetCurrencyCode string          `db:"target_currency_code"`
	Rate               decimal.Decimal `db:"rate"` // NUMERIC(18,8)
	Date               time.Time       `db:"date"`
	IsHistorical       bool            `db:"is_historical"`
	CreatedAt          time.Time       `db:"created_at"`
	UpdatedAt          *time.Time      `db:"updated_at"`
}
