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

type rateKey struct {
	base, target string
	date         time.Time
}

func keyOf(r domain.ExchangeRate) rateKey {
	return rateKey{base: r.BaseCurrencyCode, target: r.TargetCurrencyCode, date: r.Date}
}

// ExchangeRateRepository is an in-process Rate Store. The map key enforces
// one row per (base, target, date).
type ExchangeRateRepository struct {
	mu     sync.RWMutex
	rows   map[rateKey]domain.ExchangeRate
	nextID int64
	now    func() time.Time
}

var _ portsrepo.ExchangeRateRepositoryFacade = (*ExchangeRateRepository)(nil)

func NewExchangeRateRepository() *ExchangeRateRepository {
	return &ExchangeRateRepository{
		rows: make(map[rateKey]domain.ExchangeRate),
		now:  func() time.Time { return time.Now().UTC() },
	}
}

// WithClock replaces the clock used to stamp CreatedAt/UpdatedAt.
func (r *ExchangeRateRepository) WithClock(now func() time.Time) *ExchangeRateRepository {
	r.now = now
	return r
}

func normalizeRate(rate domain.ExchangeRate) domain.ExchangeRate {
	rate.BaseCurrencyCode = domain.NormalizeCode(rate.BaseCurrencyCode)
	rate.TargetCurrencyCode = domain.NormalizeCode(rate.TargetCurrencyCode)
	rate.Rate = rate.Rate.Round(domain.RateScale)
	rate.Date = domain.DateOnly(rate.Date)
	return rate
}

func (r *ExchangeRateRepository) GetRate(_ context.Context, base, target string, date *time.Time) (*domain.ExchangeRate, error) {
	base, target = domain.NormalizeCode(base), domain.NormalizeCode(target)

	r.mu.RLock()
	defer r.mu.RUnlock()

	if date != nil {
		row, ok := r.rows[rateKey{base: base, target: target, date: domain.DateOnly(*date)}]
		if !ok {
			return nil, apperrors.ErrNotFound
		}
		return &row, nil
	}

	var current *domain.ExchangeRate
	for _, row := range r.rows {
		if row.BaseCurrencyCode != base || row.TargetCurrencyCode != target || row.IsHistorical {
			continue
		}
		if current == nil || row.Date.After(current.Date) {
			row := row
			current = &row
		}
	}
	if current == nil {
		return nil, apperrors.ErrNotFound
	}
	return current, nil
}

func (r *ExchangeRateRepository) GetRange(_ context.Context, base, target string, start, end time.Time) ([]domain.ExchangeRate, error) {
	base, target = domain.NormalizeCode(base), domain.NormalizeCode(target)
	start, end = domain.DateOnly(start), domain.DateOnly(end)

	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []domain.ExchangeRate
	for _, row := range r.rows {
		if row.BaseCurrencyCode != base || row.TargetCurrencyCode != target {
			continue
		}
		if row.Date.Before(start) || row.Date.After(end) {
			continue
		}
		out = append(out, row)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return out, nil
}

func (r *ExchangeRateRepository) GetLatestPerTarget(_ context.Context, base string) ([]domain.ExchangeRate, error) {
	base = domain.NormalizeCode(base)

	r.mu.RLock()
	defer r.mu.RUnlock()
	latest := make(map[string]domain.ExchangeRate)
	for _, row := range r.rows {
		if row.BaseCurrencyCode != base {
			continue
		}
		cur, ok := latest[row.TargetCurrencyCode]
		if !ok || row.Date.After(cur.Date) ||
			(row.Date.Equal(cur.Date) && row.CreatedAt.After(cur.CreatedAt)) {
			latest[row.TargetCurrencyCode] = row
		}
	}
	out := make([]domain.ExchangeRate, 0, len(latest))
	for _, row := range latest {
		out = append(out, row)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].TargetCurrencyCode < out[j].TargetCurrencyCode })
	return out, nil
}

// InsertMany validates the whole batch before writing anything, so a bad row
// leaves the store untouched.
func (r *ExchangeRateRepository) InsertMany(_ context.Context, rates []domain.ExchangeRate) ([]domain.ExchangeRate, error) {
	normalized := make([]domain.ExchangeRate, len(rates))
	for i, rate := range rates {
		normalized[i] = normalizeRate(rate)
		if err := normalized[i].Validate(); err != nil {
			return nil, apperrors.NewValidationError(err.Error())
		}
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	inserted := make([]domain.ExchangeRate, 0, len(normalized))
	for _, rate := range normalized {
		k := keyOf(rate)
		if _, exists := r.rows[k]; exists {
			continue
		}
		r.nextID++
		rate.ID = r.nextID
		if rate.CreatedAt.IsZero() {
			rate.CreatedAt = r.now()
		}
		rate.UpdatedAt = nil
		r.rows[k] = rate
		inserted = append(inserted, rate)
	}
	return inserted, nil
}

func (r *ExchangeRateRepository) Update(_ context.Context, rate domain.ExchangeRate) (bool, error) {
	rate = normalizeRate(rate)
	if err := rate.Validate(); err != nil {
		return false, apperrors.NewValidationError(err.Error())
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	k := keyOf(rate)
	existing, ok := r.rows[k]
	if !ok {
		return false, nil
	}
	now := r.now()
	existing.Rate = rate.Rate
	existing.IsHistorical = rate.IsHistorical
	existing.UpdatedAt = &now
	r.rows[k] = existing
	return true, nil
}

// Len returns the number of stored rows.
func (r *ExchangeRateRepository) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.rows)
}
