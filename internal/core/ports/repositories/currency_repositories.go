package repositories

import (
	"context"

	"github.com/SscSPs/currency_converter/internal/core/domain"
)

// CurrencyReader defines read operations for currency data
type CurrencyReader interface {
	// FindCurrencyByCode retrieves a specific currency by its code.
	// Returns apperrors.ErrNotFound when the code is unknown.
	FindCurrencyByCode(ctx context.Context, currencyCode string) (*domain.Currency, error)

	// CurrencyExists reports whether an active currency with the code exists.
	CurrencyExists(ctx context.Context, currencyCode string) (bool, error)

	// ListCurrencies retrieves currencies ordered by code.
	ListCurrencies(ctx context.Context, activeOnly bool) ([]domain.Currency, error)
}

// CurrencyWriter defines write operations for currency data
type CurrencyWriter interface {
	// SaveCurrency inserts or updates a currency (bootstrap only).
	SaveCurrency(ctx context.Context, currency domain.Currency) error
}

// CurrencyRepositoryFacade combines all currency-related repository interfaces
type CurrencyRepositoryFacade interface {
	CurrencyReader
	CurrencyWriter
}
