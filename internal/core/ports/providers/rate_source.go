package providers

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// RealTimeRates is a snapshot of every rate quoted against one base currency.
type RealTimeRates struct {
	Base  string                     `json:"base"`
	Date  string                     `json:"date"`
	Rates map[string]decimal.Decimal `json:"rates"`
}

// HistoricalRates is a dated series for one currency pair. Keys are yyyy-mm-dd.
type HistoricalRates struct {
	Base   string                     `json:"base"`
	Target string                     `json:"target"`
	Rates  map[string]decimal.Decimal `json:"rates"`
}

// RateSource supplies rates from outside the system.
type RateSource interface {
	GetRealTime(ctx context.Context, base string) (*RealTimeRates, error)
	GetHistorical(ctx context.Context, base, target string, start, end time.Time) (*HistoricalRates, error)
}

// ErrorKind classifies a rate source failure.
type ErrorKind string

const (
	KindRateLimited        ErrorKind = "rate_limited"
	KindUnauthorized       ErrorKind = "unauthorized"
	KindNotFound           ErrorKind = "not_found"
	KindServiceUnavailable ErrorKind = "service_unavailable"
	KindMalformedResponse  ErrorKind = "malformed_response"
	KindTransient          ErrorKind = "transient"
)

// Retryable reports whether another attempt may succeed.
func (k ErrorKind) Retryable() bool {
	return k == KindServiceUnavailable || k == KindTransient
}

// RateSourceError is the error type every RateSource implementation returns.
type RateSourceError struct {
	Kind       ErrorKind
	StatusCode int
	Err        error
}

func (e *RateSourceError) Error() string {
	msg := fmt.Sprintf("rate source %s", e.Kind)
	if e.StatusCode != 0 {
		msg = fmt.Sprintf("%s (status %d)", msg, e.StatusCode)
	}
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

func (e *RateSourceError) Unwrap() error {
	return e.Err
}

// NewRateSourceError builds a RateSourceError of the given kind.
func NewRateSourceError(kind ErrorKind, statusCode int, err error) *RateSourceError {
	return &RateSourceError{Kind: kind, StatusCode: statusCode, Err: err}
}

// KindOf extracts the ErrorKind from err. Unclassified errors are transient.
func KindOf(err error) ErrorKind {
	var rsErr *RateSourceError
	if errors.As(err, &rsErr) {
		return rsErr.Kind
	}
	return KindTransient
}
