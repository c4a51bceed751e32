package repositories

import (
	"context"
	"time"

	"github.com/SscSPs/currency_converter/internal/core/domain"
)

// ExchangeRateReader defines read operations for exchange rate data
type ExchangeRateReader interface {
	// GetRate returns the current rate for the pair when date is nil, i.e. the
	// most recent non-historical row, or the row for that calendar date.
	// Returns apperrors.ErrNotFound when no row matches.
	GetRate(ctx context.Context, base, target string, date *time.Time) (*domain.ExchangeRate, error)

	// GetRange returns the rows for the pair with start <= date <= end ordered by date.
	GetRange(ctx context.Context, base, target string, start, end time.Time) ([]domain.ExchangeRate, error)

	// GetLatestPerTarget returns the newest row for each target quoted against base.
	GetLatestPerTarget(ctx context.Context, base string) ([]domain.ExchangeRate, error)
}

// ExchangeRateWriter defines write operations for exchange rate data
type ExchangeRateWriter interface {
	// InsertMany persists rates atomically. Rows that collide with an existing
	// (base, target, date) are skipped; the inserted rows are returned.
	InsertMany(ctx context.Context, rates []domain.ExchangeRate) ([]domain.ExchangeRate, error)

	// Update changes the rate of an existing row. Returns false if no row matched.
	Update(ctx context.Context, rate domain.ExchangeRate) (bool, error)
}

// ExchangeRateRepositoryFacade combines all exchange rate-related repository interfaces
type ExchangeRateRepositoryFacade interface {
	ExchangeRateReader
	ExchangeRateWriter
}

// ExchangeRateRepositoryWithTx extends ExchangeRateRepositoryFacade with transaction capabilities
type ExchangeRateRepositoryWithTx interface {
	ExchangeRateRepositoryFacade
	TransactionManager
}
