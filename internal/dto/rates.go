package dto

import (
	"github.com/SscSPs/currency_converter/internal/core/domain"
	"github.com/shopspring/decimal"
)

// MaxHistoricalRangeDays bounds GET /rates/historical.
const MaxHistoricalRangeDays = 365

// HistoricalRatesQuery is the query string of GET /rates/historical.
type HistoricalRatesQuery struct {
	Base      string `form:"base" binding:"required,currency_code"`
	Target    string `form:"target" binding:"required,currency_code"`
	StartDate string `form:"startDate" binding:"required,datetime=2006-01-02"`
	EndDate   string `form:"endDate" binding:"required,datetime=2006-01-02"`
}

// DatedRateQuery is the query string of GET /rates/historical/date.
type DatedRateQuery struct {
	Base   string `form:"base" binding:"required,currency_code"`
	Target string `form:"target" binding:"required,currency_code"`
	Date   string `form:"date" binding:"required,datetime=2006-01-02"`
}

// LatestRatesQuery is the query string of GET /rates/latest.
type LatestRatesQuery struct {
	Base string `form:"base" binding:"required,currency_code"`
}

// HistoricalRatesResponse is a dated series for one pair.
type HistoricalRatesResponse struct {
	Base      string                     `json:"base"`
	Target    string                     `json:"target"`
	StartDate string                     `json:"startDate"`
	EndDate   string                     `json:"endDate"`
	Rates     map[string]decimal.Decimal `json:"rates" swaggertype:"object,number"`
}

// LatestRate is one entry of LatestRatesResponse.
type LatestRate struct {
	TargetCurrency string          `json:"targetCurrency"`
	Rate           decimal.Decimal `json:"rate" swaggertype:"number"`
	Date           string          `json:"date"`
	IsHistorical   bool            `json:"isHistorical"`
}

// LatestRatesResponse lists the newest stored rate of every target.
type LatestRatesResponse struct {
	Base  string       `json:"base"`
	Rates []LatestRate `json:"rates"`
}

// ToLatestRatesResponse converts stored rates of one base to LatestRatesResponse DTO
func ToLatestRatesResponse(base string, rates []domain.ExchangeRate) LatestRatesResponse {
	resp := LatestRatesResponse{Base: base, Rates: make([]LatestRate, len(rates))}
	for i, r := range rates {
		resp.Rates[i] = LatestRate{
			TargetCurrency: r.TargetCurrencyCode,
			Rate:           r.Rate,
			Date:           r.Date.Format(domain.DateLayout),
			IsHistorical:   r.IsHistorical,
		}
	}
	return resp
}
