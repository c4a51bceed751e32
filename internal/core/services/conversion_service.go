package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/SscSPs/currency_converter/internal/apperrors"
	"github.com/SscSPs/currency_converter/internal/core/domain"
	"github.com/SscSPs/currency_converter/internal/core/ports/providers"
	portsrepo "github.com/SscSPs/currency_converter/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/currency_converter/internal/core/ports/services"
	"github.com/SscSPs/currency_converter/internal/platform/metrics"
	"github.com/shopspring/decimal"
)

// DefaultSeriesTTL is how long a non-empty historical series stays cached.
const DefaultSeriesTTL = time.Hour

// ConversionService is the conversion engine: it validates currencies,
// delegates rate lookup to the resolver and does the arithmetic.
type ConversionService struct {
	BaseService
	currencies portssvc.CurrencySvcFacade
	resolver   portssvc.RateResolverSvc
	rateRepo   portsrepo.ExchangeRateReader
	cache      providers.Cache
	seriesTTL  time.Duration
	now        func() time.Time
}

var _ portssvc.ConversionSvcFacade = (*ConversionService)(nil)

// ConversionOption is a functional option for configuring the conversion service
type ConversionOption func(*ConversionService)

// WithSeriesTTL overrides DefaultSeriesTTL.
func WithSeriesTTL(ttl time.Duration) ConversionOption {
	return func(s *ConversionService) {
		if ttl > 0 {
			s.seriesTTL = ttl
		}
	}
}

// WithConversionClock overrides time.Now.
func WithConversionClock(now func() time.Time) ConversionOption {
	return func(s *ConversionService) {
		s.now = now
	}
}

func NewConversionService(
	currencies portssvc.CurrencySvcFacade,
	resolver portssvc.RateResolverSvc,
	rateRepo portsrepo.ExchangeRateReader,
	cache providers.Cache,
	options ...ConversionOption,
) *ConversionService {
	s := &ConversionService{
		currencies: currencies,
		resolver:   resolver,
		rateRepo:   rateRepo,
		cache:      cache,
		seriesTTL:  DefaultSeriesTTL,
		now:        time.Now,
	}
	for _, option := range options {
		option(s)
	}
	return s
}

// requireCurrencies returns a not-found error naming the first unknown code.
func (s *ConversionService) requireCurrencies(ctx context.Context, codes ...string) error {
	for _, code := range codes {
		exists, err := s.currencies.CurrencyExists(ctx, code)
		if err != nil {
			return err
		}
		if !exists {
			return apperrors.NewNotFoundError(fmt.Sprintf("currency %s not found", code))
		}
	}
	return nil
}

func (s *ConversionService) GetRate(ctx context.Context, from, to string, date *time.Time) (*domain.ResolvedRate, error) {
	from, to = domain.NormalizeCode(from), domain.NormalizeCode(to)
	if err := s.requireCurrencies(ctx, from, to); err != nil {
		return nil, err
	}

	if from == to {
		rateDate := s.now()
		if date != nil {
			rateDate = *date
		}
		metrics.RateResolutions.WithLabelValues(string(domain.OriginIdentity)).Inc()
		return &domain.ResolvedRate{
			From: from, To: to, Rate: decimal.NewFromInt(1), Date: domain.DateOnly(rateDate), Origin: domain.OriginIdentity,
		}, nil
	}

	if date != nil {
		d := domain.DateOnly(*date)
		date = &d
	}
	return s.resolver.ResolveRate(ctx, from, to, date)
}

func (s *ConversionService) Convert(ctx context.Context, from, to string, amount decimal.Decimal, date *time.Time) (*domain.ConversionResult, error) {
	if !amount.IsPositive() {
		return nil, apperrors.NewValidationError("amount must be greater than zero")
	}

	resolved, err := s.GetRate(ctx, from, to, date)
	if err != nil {
		return nil, err
	}

	converted := amount
	if resolved.Origin != domain.OriginIdentity {
		converted = domain.ConvertAmount(amount, resolved.Rate)
	}

	result := &domain.ConversionResult{
		FromCurrency:    resolved.From,
		ToCurrency:      resolved.To,
		OriginalAmount:  amount,
		ConvertedAmount: converted,
		ExchangeRate:    resolved.Rate,
		RateDate:        resolved.Date,
		ConversionTime:  s.now().UTC(),
	}
	s.LogDebug(ctx, "Converted amount",
		slog.String("from", result.FromCurrency),
		slog.String("to", result.ToCurrency),
		slog.String("rate", result.ExchangeRate.String()),
		slog.String("origin", string(resolved.Origin)))
	return result, nil
}

// ConvertBatch converts each request on its own; one failure does not affect the others.
func (s *ConversionService) ConvertBatch(ctx context.Context, requests []domain.ConversionRequest) []domain.BatchConversionItem {
	items := make([]domain.BatchConversionItem, len(requests))
	for i, req := range requests {
		result, err := s.Convert(ctx, req.FromCurrency, req.ToCurrency, req.Amount, req.Date)
		if err != nil {
			items[i] = domain.BatchConversionItem{Error: err.Error()}
			continue
		}
		items[i] = domain.BatchConversionItem{Success: true, Conversion: result}
	}
	return items
}

func (s *ConversionService) GetHistoricalSeries(ctx context.Context, base, target string, start, end time.Time) (domain.RateSeries, error) {
	base, target = domain.NormalizeCode(base), domain.NormalizeCode(target)
	start, end = domain.DateOnly(start), domain.DateOnly(end)
	if start.After(end) {
		return nil, apperrors.NewNotFoundError("start date is after end date")
	}
	if err := s.requireCurrencies(ctx, base, target); err != nil {
		return nil, err
	}

	key := seriesKey(base, target, start, end)
	var cached domain.RateSeries
	hit, err := s.cache.Get(ctx, key, &cached)
	switch {
	case err != nil:
		metrics.CacheLookups.WithLabelValues("series", "error").Inc()
		s.LogWarn(ctx, err, "Series cache read failed", slog.String("key", key))
	case hit:
		metrics.CacheLookups.WithLabelValues("series", "hit").Inc()
		return cached, nil
	default:
		metrics.CacheLookups.WithLabelValues("series", "miss").Inc()
	}

	rows, err := s.rateRepo.GetRange(ctx, base, target, start, end)
	if err != nil {
		s.LogError(ctx, err, "Failed to load historical rates", slog.String("base", base), slog.String("target", target))
		return nil, fmt.Errorf("failed to load historical rates: %w", err)
	}

	series := make(domain.RateSeries, len(rows))
	for _, row := range rows {
		series[row.Date.Format(domain.DateLayout)] = row.Rate
	}
	if len(series) > 0 {
		if err := s.cache.Set(ctx, key, series, s.seriesTTL); err != nil {
			s.LogWarn(ctx, err, "Series cache write failed", slog.String("key", key))
		}
	}
	return series, nil
}

func (s *ConversionService) GetLatestRates(ctx context.Context, base string) ([]domain.ExchangeRate, error) {
	base = domain.NormalizeCode(base)
	if err := s.requireCurrencies(ctx, base); err != nil {
		return nil, err
	}
	rates, err := s.rateRepo.GetLatestPerTarget(ctx, base)
	if err != nil {
		return nil, fmt.Errorf("failed to load latest rates for %s: %w", base, err)
	}
	if rates == nil {
		return []domain.ExchangeRate{}, nil
	}
	return rates, nil
}
