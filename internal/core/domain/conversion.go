package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// AmountScale is the number of fractional digits converted amounts are rounded to.
const AmountScale = 2

// ConversionResult is the outcome of converting an amount between two currencies.
type ConversionResult struct {
	FromCurrency    string          `json:"fromCurrency"`
	ToCurrency      string          `json:"toCurrency"`
	OriginalAmount  decimal.Decimal `json:"originalAmount"`
	ConvertedAmount decimal.Decimal `json:"convertedAmount"`
	ExchangeRate    decimal.Decimal `json:"exchangeRate"`
	RateDate        time.Time       `json:"rateDate"`
	ConversionTime  time.Time       `json:"conversionTime"`
}

// ConvertAmount multiplies amount by rate and rounds the result to AmountScale.
func ConvertAmount(amount, rate decimal.Decimal) decimal.Decimal {
	return amount.Mul(rate).Round(AmountScale)
}

// ConversionRequest is one conversion of a batch.
type ConversionRequest struct {
	FromCurrency string
	ToCurrency   string
	Amount       decimal.Decimal
	Date         *time.Time
}

// BatchConversionItem is the per-request outcome of a batch conversion.
type BatchConversionItem struct {
	Success    bool              `json:"success"`
	Conversion *ConversionResult `json:"conversion"`
	Error      string            `json:"error,omitempty"`
}

// MaxBatchSize bounds the number of conversions in one batch.
const MaxBatchSize = 10
