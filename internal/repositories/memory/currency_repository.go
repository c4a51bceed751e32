package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/SscSPs/currency_converter/internal/apperrors"
	"github.com/SscSPs/currency_converter/internal/core/domain"
	portsrepo "github.com/SscSPs/currency_converter/internal/core/ports/repositories"
)

// CurrencyRepository keeps the currency catalogue in process memory.
type CurrencyRepository struct {
	mu         sync.RWMutex
	currencies map[string]domain.Currency
}

var _ portsrepo.CurrencyRepositoryFacade = (*CurrencyRepository)(nil)

func NewCurrencyRepository() *CurrencyRepository {
	return &CurrencyRepository{currencies: make(map[string]domain.Currency)}
}

func (r *CurrencyRepository) SaveCurrency(_ context.Context, currency domain.Currency) error {
	currency.Code = domain.NormalizeCode(currency.Code)
	if len(currency.Code) != 3 {
		return apperrors.NewValidationError("currency code must be 3 letters")
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if existing, ok := r.currencies[currency.Code]; ok {
		currency.CreatedAt = existing.CreatedAt
	} else if currency.CreatedAt.IsZero() {
		currency.CreatedAt = time.Now().UTC()
	}
	r.currencies[currency.Code] = currency
	return nil
}

func (r *CurrencyRepository) FindCurrencyByCode(_ context.Context, currencyCode string) (*domain.Currency, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.currencies[domain.NormalizeCode(currencyCode)]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	return &c, nil
}

func (r *CurrencyRepository) CurrencyExists(_ context.Context, currencyCode string) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.currencies[domain.NormalizeCode(currencyCode)]
	return ok && c.IsActive, nil
}

func (r *CurrencyRepository) ListCurrencies(_ context.Context, activeOnly bool) ([]domain.Currency, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]domain.Currency, 0, len(r.currencies))
	for _, c := range r.currencies {
		if activeOnly && !c.IsActive {
			continue
		}
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Code < out[j].Code })
	return out, nil
}
