package dto

import (
	"time"

	"github.com/SscSPs/currency_converter/internal/core/domain"
	"github.com/shopspring/decimal"
)

// ConversionRequest is the body of POST /convert and one entry of a batch.
type ConversionRequest struct {
	FromCurrency string          `json:"fromCurrency" binding:"required,currency_code"`
	ToCurrency   string          `json:"toCurrency" binding:"required,currency_code"`
	Amount       decimal.Decimal `json:"amount" binding:"required,gt=0" swaggertype:"number"`
	// Date is optional, yyyy-mm-dd.
	Date string `json:"date,omitempty" binding:"omitempty,datetime=2006-01-02"`
}

// HistoricalConversionRequest is ConversionRequest with the date required.
type HistoricalConversionRequest struct {
	FromCurrency string          `json:"fromCurrency" binding:"required,currency_code"`
	ToCurrency   string          `json:"toCurrency" binding:"required,currency_code"`
	Amount       decimal.Decimal `json:"amount" binding:"required,gt=0" swaggertype:"number"`
	Date         string          `json:"date" binding:"required,datetime=2006-01-02"`
}

// BatchConversionRequest holds up to domain.MaxBatchSize conversions.
type BatchConversionRequest struct {
	Requests []ConversionRequest `json:"requests" binding:"required,min=1,max=10,dive"`
}

// RateQuery is the query string of GET /convert/rate.
type RateQuery struct {
	From string `form:"from" binding:"required,currency_code"`
	To   string `form:"to" binding:"required,currency_code"`
	Date string `form:"date" binding:"omitempty,datetime=2006-01-02"`
}

// ConversionResponse defines the data returned for a conversion.
type ConversionResponse struct {
	FromCurrency    string          `json:"fromCurrency"`
	ToCurrency      string          `json:"toCurrency"`
	OriginalAmount  decimal.Decimal `json:"originalAmount" swaggertype:"number"`
	ConvertedAmount decimal.Decimal `json:"convertedAmount" swaggertype:"number"`
	ExchangeRate    decimal.Decimal `json:"exchangeRate" swaggertype:"number"`
	RateDate        string          `json:"rateDate"`
	ConversionTime  time.Time       `json:"conversionTime"`
}

// RateResponse defines the data returned for a single resolved rate.
type RateResponse struct {
	FromCurrency string          `json:"fromCurrency"`
	ToCurrency   string          `json:"toCurrency"`
	Rate         decimal.Decimal `json:"rate" swaggertype:"number"`
	Date         string          `json:"date"`
}

// BatchConversionItem is the outcome of one conversion in a batch.
type BatchConversionItem struct {
	Success    bool                `json:"success"`
	Conversion *ConversionResponse `json:"conversion"`
	Error      string              `json:"error,omitempty"`
}

// BatchConversionResponse wraps batch results with summary metadata.
type BatchConversionResponse struct {
	Results               []BatchConversionItem `json:"results"`
	TotalRequests         int                   `json:"totalRequests"`
	SuccessfulConversions int                   `json:"successfulConversions"`
	// ProcessingTime is in milliseconds.
	ProcessingTime int64 `json:"processingTime"`
}

// ToConversionRequest parses the optional date; callers have validated its format.
func (r ConversionRequest) ToConversionRequest() domain.ConversionRequest {
	return domain.ConversionRequest{
		FromCurrency: r.FromCurrency,
		ToCurrency:   r.ToCurrency,
		Amount:       r.Amount,
		Date:         ParseOptionalDate(r.Date),
	}
}

// ParseOptionalDate returns nil for an empty or malformed date.
func ParseOptionalDate(s string) *time.Time {
	if s == "" {
		return nil
	}
	t, err := time.Parse(domain.DateLayout, s)
	if err != nil {
		return nil
	}
	return &t
}

// ToConversionResponse converts a domain.ConversionResult to ConversionResponse DTO
func ToConversionResponse(r *domain.ConversionResult) ConversionResponse {
	return ConversionResponse{
		FromCurrency:    r.FromCurrency,
		ToCurrency:      r.ToCurrency,
		OriginalAmount:  r.OriginalAmount,
		ConvertedAmount: r.ConvertedAmount,
		ExchangeRate:    r.ExchangeRate,
		RateDate:        r.RateDate.Format(domain.DateLayout),
		ConversionTime:  r.ConversionTime,
	}
}

// ToRateResponse converts a domain.ResolvedRate to RateResponse DTO
func ToRateResponse(r *domain.ResolvedRate) RateResponse {
	return RateResponse{
		FromCurrency: r.From,
		ToCurrency:   r.To,
		Rate:         r.Rate,
		Date:         r.Date.Format(domain.DateLayout),
	}
}

// ToBatchConversionResponse converts batch items and counts the successes.
func ToBatchConversionResponse(items []domain.BatchConversionItem, elapsed time.Duration) BatchConversionResponse {
	resp := BatchConversionResponse{
		Results:        make([]BatchConversionItem, len(items)),
		TotalRequests:  len(items),
		ProcessingTime: elapsed.Milliseconds(),
	}
	for i, item := range items {
		out := BatchConversionItem{Success: item.Success, Error: item.Error}
		if item.Conversion != nil {
			conv := ToConversionResponse(item.Conversion)
			out.Conversion = &conv
		}
		if item.Success {
			resp.SuccessfulConversions++
		}
		resp.Results[i] = out
	}
	return resp
}
