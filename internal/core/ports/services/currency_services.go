package services

import (
	"context"
	"time"

	"github.com/SscSPs/currency_converter/internal/core/domain"
	"github.com/shopspring/decimal"
)

// CurrencySvcFacade exposes the currency catalogue
type CurrencySvcFacade interface {
	// GetCurrencyByCode retrieves a specific currency by its code.
	GetCurrencyByCode(ctx context.Context, currencyCode string) (*domain.Currency, error)

	// ListCurrencies retrieves currencies, optionally only the active ones.
	ListCurrencies(ctx context.Context, activeOnly bool) ([]domain.Currency, error)

	// CurrencyExists reports whether an active currency with the code exists.
	CurrencyExists(ctx context.Context, currencyCode string) (bool, error)
}

// RateResolverSvc produces an authoritative rate for a pair
type RateResolverSvc interface {
	// ResolveRate returns the rate for from->to, real-time when date is nil.
	// Returns apperrors.ErrNotFound if nothing resolves and apperrors.ErrUpstream
	// if the external source failed.
	ResolveRate(ctx context.Context, from, to string, date *time.Time) (*domain.ResolvedRate, error)
}

// ConversionReaderSvc defines rate retrieval operations
type ConversionReaderSvc interface {
	// GetRate resolves a rate, short-circuiting identical currencies to 1.
	GetRate(ctx context.Context, from, to string, date *time.Time) (*domain.ResolvedRate, error)

	// GetHistoricalSeries returns the stored rates for the pair between start and end inclusive.
	GetHistoricalSeries(ctx context.Context, base, target string, start, end time.Time) (domain.RateSeries, error)

	// GetLatestRates returns the newest stored rate for every target of base.
	GetLatestRates(ctx context.Context, base string) ([]domain.ExchangeRate, error)
}

// ConversionWriterSvc defines amount conversion operations
type ConversionWriterSvc interface {
	// Convert converts amount from one currency to another.
	Convert(ctx context.Context, from, to string, amount decimal.Decimal, date *time.Time) (*domain.ConversionResult, error)

	// ConvertBatch converts each request independently.
	ConvertBatch(ctx context.Context, requests []domain.ConversionRequest) []domain.BatchConversionItem
}

// ConversionSvcFacade combines all conversion-related service interfaces
type ConversionSvcFacade interface {
	ConversionReaderSvc
	ConversionWriterSvc
}

// RateUpdaterSvc refreshes and backfills stored rates in the background
type RateUpdaterSvc interface {
	// Run blocks until ctx is cancelled.
	Run(ctx context.Context)

	// ShouldUpdate reports whether real-time rates are stale.
	ShouldUpdate(ctx context.Context) bool

	// UpdateRealTimeRates fetches and stores rates for the refresh bases.
	UpdateRealTimeRates(ctx context.Context) error

	// UpdateHistoricalRates backfills missing dated rates for the major pairs.
	UpdateHistoricalRates(ctx context.Context) error
}
