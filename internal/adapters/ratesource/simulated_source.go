package ratesource

import (
	"context"
	"errors"
	"log/slog"
	"math/rand/v2"
	"time"

	"github.com/SscSPs/currency_converter/internal/core/domain"
	"github.com/SscSPs/currency_converter/internal/core/ports/providers"
	"github.com/shopspring/decimal"
)

const (
	realTimeJitter  = 0.02
	historicalDrift = 0.01
)

// defaultBaseRates quotes every supported currency per 1 USD.
var defaultBaseRates = map[string]decimal.Decimal{
	"USD": decimal.NewFromInt(1),
	"EUR": decimal.RequireFromString("0.92"),
	"GBP": decimal.RequireFromString("0.80"),
	"JPY": decimal.NewFromInt(155),
	"CAD": decimal.RequireFromString("1.35"),
	"AUD": decimal.RequireFromString("1.52"),
	"CHF": decimal.RequireFromString("0.90"),
	"CNY": decimal.RequireFromString("7.20"),
}

// SimulatedSource generates plausible rates without network access.
type SimulatedSource struct {
	baseRates map[string]decimal.Decimal
	random    func() float64
	now       func() time.Time
	logger    *slog.Logger
}

var _ providers.RateSource = (*SimulatedSource)(nil)

// NewSimulatedSource creates a SimulatedSource quoting the built-in USD table.
func NewSimulatedSource(logger *slog.Logger) *SimulatedSource {
	if logger == nil {
		logger = slog.Default()
	}
	return &SimulatedSource{
		baseRates: defaultBaseRates,
		random:    rand.Float64,
		now:       time.Now,
		logger:    logger,
	}
}

// WithRandom replaces the noise generator; f must return values in [0, 1).
func (s *SimulatedSource) WithRandom(f func() float64) *SimulatedSource {
	s.random = f
	return s
}

// WithClock replaces the time source.
func (s *SimulatedSource) WithClock(now func() time.Time) *SimulatedSource {
	s.now = now
	return s
}

func (s *SimulatedSource) GetRealTime(ctx context.Context, base string) (*providers.RealTimeRates, error) {
	if err := ctx.Err(); err != nil {
		return nil, providers.NewRateSourceError(providers.KindTransient, 0, err)
	}
	base = domain.NormalizeCode(base)
	baseRate, ok := s.baseRates[base]
	if !ok {
		return nil, providers.NewRateSourceError(providers.KindNotFound, 0, errors.New("unknown base currency "+base))
	}

	rates := make(map[string]decimal.Decimal, len(s.baseRates)-1)
	for code, usdRate := range s.baseRates {
		if code == base {
			continue
		}
		cross := usdRate.Div(baseRate)
		rates[code] = s.perturb(cross, realTimeJitter)
	}

	s.logger.Debug("Generated simulated real-time rates", slog.String("base", base), slog.Int("count", len(rates)))
	return &providers.RealTimeRates{
		Base:  base,
		Date:  domain.DateOnly(s.now()).Format(domain.DateLayout),
		Rates: rates,
	}, nil
}

func (s *SimulatedSource) GetHistorical(ctx context.Context, base, target string, start, end time.Time) (*providers.HistoricalRates, error) {
	if err := ctx.Err(); err != nil {
		return nil, providers.NewRateSourceError(providers.KindTransient, 0, err)
	}
	base, target = domain.NormalizeCode(base), domain.NormalizeCode(target)
	baseRate, okBase := s.baseRates[base]
	targetRate, okTarget := s.baseRates[target]
	if !okBase || !okTarget {
		return nil, providers.NewRateSourceError(providers.KindNotFound, 0, errors.New("unknown currency pair "+base+"/"+target))
	}
	start, end = domain.DateOnly(start), domain.DateOnly(end)
	if start.After(end) {
		return nil, providers.NewRateSourceError(providers.KindNotFound, 0, errors.New("start date after end date"))
	}

	cross := targetRate.Div(baseRate)
	rates := make(map[string]decimal.Decimal)
	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		rates[d.Format(domain.DateLayout)] = s.perturb(cross, historicalDrift)
	}

	return &providers.HistoricalRates{Base: base, Target: target, Rates: rates}, nil
}

// perturb scales rate by a uniform factor in [1-spread, 1+spread).
func (s *SimulatedSource) perturb(rate decimal.Decimal, spread float64) decimal.Decimal {
	factor := 1 + (s.random()*2-1)*spread
	return rate.Mul(decimal.NewFromFloat(factor)).Round(domain.RateScale)
}
