package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"sync/atomic"
	"time"

	"github.com/SscSPs/currency_converter/internal/apperrors"
	"github.com/SscSPs/currency_converter/internal/core/domain"
	"github.com/SscSPs/currency_converter/internal/core/ports/providers"
	portsrepo "github.com/SscSPs/currency_converter/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/currency_converter/internal/core/ports/services"
	"github.com/SscSPs/currency_converter/internal/middleware"
	"github.com/SscSPs/currency_converter/internal/platform/metrics"
	"golang.org/x/time/rate"
)

// UpdaterSettings controls the background rate updater schedule.
type UpdaterSettings struct {
	Interval           time.Duration
	Staleness          time.Duration
	HistoricalInterval time.Duration
	ErrorCooldown      time.Duration
	// Pacing is the minimum delay between external calls during backfill.
	Pacing      time.Duration
	HistoryDays int
	MaxPairs    int
	// Bases are refreshed on every due cycle. ReferenceBase drives staleness.
	Bases         []string
	ReferenceBase string
}

// DefaultUpdaterSettings returns the production schedule.
func DefaultUpdaterSettings() UpdaterSettings {
	return UpdaterSettings{
		Interval:           15 * time.Minute,
		Staleness:          30 * time.Minute,
		HistoricalInterval: 24 * time.Hour,
		ErrorCooldown:      5 * time.Minute,
		Pacing:             time.Second,
		HistoryDays:        30,
		MaxPairs:           20,
		Bases:              domain.RefreshBaseCurrencies,
		ReferenceBase:      domain.ReferenceBaseCurrency,
	}
}

// RateUpdater keeps stored rates fresh and backfills history. Only one Run
// loop may be active per instance.
type RateUpdater struct {
	BaseService
	logger     *slog.Logger
	currencies portsrepo.CurrencyReader
	rateRepo   portsrepo.ExchangeRateRepositoryFacade
	source     providers.RateSource
	cache      providers.Cache
	settings   UpdaterSettings
	now        func() time.Time
	running    atomic.Bool
}

var _ portssvc.RateUpdaterSvc = (*RateUpdater)(nil)

// UpdaterOption is a functional option for configuring the rate updater
type UpdaterOption func(*RateUpdater)

// WithUpdaterClock overrides time.Now.
func WithUpdaterClock(now func() time.Time) UpdaterOption {
	return func(u *RateUpdater) {
		u.now = now
	}
}

// WithUpdaterLogger sets the logger used outside request scope.
func WithUpdaterLogger(logger *slog.Logger) UpdaterOption {
	return func(u *RateUpdater) {
		u.logger = logger
	}
}

func NewRateUpdater(
	currencies portsrepo.CurrencyReader,
	rateRepo portsrepo.ExchangeRateRepositoryFacade,
	source providers.RateSource,
	cache providers.Cache,
	settings UpdaterSettings,
	options ...UpdaterOption,
) *RateUpdater {
	u := &RateUpdater{
		logger:     slog.Default(),
		currencies: currencies,
		rateRepo:   rateRepo,
		source:     source,
		cache:      cache,
		settings:   settings,
		now:        time.Now,
	}
	for _, option := range options {
		option(u)
	}
	u.logger = u.logger.With(slog.String("component", "rate_updater"))
	return u
}

// Run blocks, refreshing on every interval, until ctx is cancelled.
func (u *RateUpdater) Run(ctx context.Context) {
	if !u.running.CompareAndSwap(false, true) {
		u.logger.Warn("Rate updater already running, ignoring second start")
		return
	}
	defer u.running.Store(false)

	u.logger.Info("Rate updater started",
		slog.Duration("interval", u.settings.Interval),
		slog.Duration("historical_interval", u.settings.HistoricalInterval))

	var lastBackfill time.Time
	for {
		wait := u.settings.Interval
		if err := u.cycle(ctx, &lastBackfill); err != nil {
			if ctx.Err() != nil {
				break
			}
			u.logger.Error("Rate updater cycle failed, cooling down",
				slog.String("error", err.Error()),
				slog.Duration("cooldown", u.settings.ErrorCooldown))
			wait = u.settings.ErrorCooldown
		}

		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			u.logger.Info("Rate updater stopped")
			return
		case <-timer.C:
		}
	}
	u.logger.Info("Rate updater stopped")
}

// cycle runs one loop body. Panics are turned into errors so the loop survives.
func (u *RateUpdater) cycle(ctx context.Context, lastBackfill *time.Time) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("rate updater panic: %v", r)
		}
	}()
	ctx = middleware.WithLogger(ctx, u.logger)

	if u.ShouldUpdate(ctx) {
		if err := u.UpdateRealTimeRates(ctx); err != nil {
			metrics.UpdaterCycles.WithLabelValues("realtime", "error").Inc()
			return fmt.Errorf("real-time update: %w", err)
		}
		metrics.UpdaterCycles.WithLabelValues("realtime", "ok").Inc()
	} else {
		metrics.UpdaterCycles.WithLabelValues("realtime", "skipped").Inc()
	}

	now := u.now()
	if lastBackfill.IsZero() || now.Sub(*lastBackfill) >= u.settings.HistoricalInterval {
		*lastBackfill = now
		if err := u.UpdateHistoricalRates(ctx); err != nil {
			metrics.UpdaterCycles.WithLabelValues("historical", "error").Inc()
			return fmt.Errorf("historical backfill: %w", err)
		}
		metrics.UpdaterCycles.WithLabelValues("historical", "ok").Inc()
	}
	return nil
}

// ShouldUpdate is true when the reference base has no real-time rate or its
// newest one was written longer ago than the staleness threshold.
func (u *RateUpdater) ShouldUpdate(ctx context.Context) bool {
	rates, err := u.rateRepo.GetLatestPerTarget(ctx, u.settings.ReferenceBase)
	if err != nil {
		u.LogWarn(ctx, err, "Could not read latest rates, treating as stale")
		return true
	}

	var newest time.Time
	for _, r := range rates {
		if r.IsHistorical {
			continue
		}
		written := r.CreatedAt
		if r.UpdatedAt != nil && r.UpdatedAt.After(written) {
			written = *r.UpdatedAt
		}
		if written.After(newest) {
			newest = written
		}
	}
	if newest.IsZero() {
		return true
	}
	return u.now().Sub(newest) > u.settings.Staleness
}

// UpdateRealTimeRates refreshes today's rows for every refresh base. A failing
// base is logged and skipped.
func (u *RateUpdater) UpdateRealTimeRates(ctx context.Context) error {
	known, err := u.knownCurrencies(ctx)
	if err != nil {
		return err
	}
	today := domain.DateOnly(u.now())

	for _, base := range u.settings.Bases {
		base = domain.NormalizeCode(base)
		if !known[base] {
			u.LogDebug(ctx, "Skipping unknown refresh base", slog.String("base", base))
			continue
		}
		if err := u.updateBase(ctx, base, today, known); err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			u.LogWarn(ctx, err, "Failed to refresh base currency", slog.String("base", base))
			continue
		}
		u.invalidate(ctx, base, known)
	}
	return nil
}

func (u *RateUpdater) updateBase(ctx context.Context, base string, today time.Time, known map[string]bool) error {
	snapshot, err := u.source.GetRealTime(ctx, base)
	if err != nil {
		return err
	}

	targets := make([]string, 0, len(snapshot.Rates))
	for code := range snapshot.Rates {
		targets = append(targets, code)
	}
	sort.Strings(targets)

	var inserts []domain.ExchangeRate
	updated := 0
	for _, target := range targets {
		value := snapshot.Rates[target]
		target = domain.NormalizeCode(target)
		if target == base || !known[target] || !value.IsPositive() {
			continue
		}

		existing, err := u.rateRepo.GetRate(ctx, base, target, &today)
		switch {
		case err == nil:
			if !existing.Differs(value) {
				continue
			}
			next := *existing
			next.Rate = value
			next.IsHistorical = false
			next.UpdatedAt = nil
			ok, err := u.rateRepo.Update(ctx, next)
			if err != nil {
				return fmt.Errorf("update %s/%s: %w", base, target, err)
			}
			if ok {
				updated++
			}
		case errors.Is(err, apperrors.ErrNotFound):
			inserts = append(inserts, domain.ExchangeRate{
				BaseCurrencyCode:   base,
				TargetCurrencyCode: target,
				Rate:               value,
				Date:               today,
			})
		default:
			return fmt.Errorf("read %s/%s: %w", base, target, err)
		}
	}

	inserted, err := u.rateRepo.InsertMany(ctx, inserts)
	if err != nil {
		return fmt.Errorf("insert rates for %s: %w", base, err)
	}

	metrics.RatesWritten.WithLabelValues("insert").Add(float64(len(inserted)))
	metrics.RatesWritten.WithLabelValues("update").Add(float64(updated))
	u.LogInfo(ctx, "Refreshed real-time rates",
		slog.String("base", base),
		slog.Int("inserted", len(inserted)),
		slog.Int("updated", updated))
	return nil
}

// invalidate drops every cached real-time rate involving base, in both
// directions because inverses are derived from the same rows.
func (u *RateUpdater) invalidate(ctx context.Context, base string, known map[string]bool) {
	for code := range known {
		if code == base {
			continue
		}
		for _, key := range []string{currentRateKey(base, code), currentRateKey(code, base)} {
			if err := u.cache.Remove(ctx, key); err != nil {
				u.LogWarn(ctx, err, "Failed to invalidate cached rate", slog.String("key", key))
			}
		}
	}
}

// UpdateHistoricalRates inserts the missing dated rows of a window ending
// yesterday for a capped list of major pairs.
func (u *RateUpdater) UpdateHistoricalRates(ctx context.Context) error {
	known, err := u.knownCurrencies(ctx)
	if err != nil {
		return err
	}

	end := domain.DateOnly(u.now()).AddDate(0, 0, -1)
	start := end.AddDate(0, 0, -(u.settings.HistoryDays - 1))

	pacer := rate.NewLimiter(rate.Inf, 1)
	if u.settings.Pacing > 0 {
		pacer = rate.NewLimiter(rate.Every(u.settings.Pacing), 1)
	}

	total := 0
	for _, pair := range u.historicalPairs(known) {
		if err := pacer.Wait(ctx); err != nil {
			return err
		}
		n, err := u.backfillPair(ctx, pair[0], pair[1], start, end)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			u.LogWarn(ctx, err, "Failed to backfill pair",
				slog.String("base", pair[0]), slog.String("target", pair[1]))
			continue
		}
		total += n
	}

	metrics.RatesWritten.WithLabelValues("insert").Add(float64(total))
	u.LogInfo(ctx, "Backfilled historical rates",
		slog.String("start", start.Format(domain.DateLayout)),
		slog.String("end", end.Format(domain.DateLayout)),
		slog.Int("inserted", total))
	return nil
}

func (u *RateUpdater) backfillPair(ctx context.Context, base, target string, start, end time.Time) (int, error) {
	series, err := u.source.GetHistorical(ctx, base, target, start, end)
	if err != nil {
		return 0, err
	}

	existing, err := u.rateRepo.GetRange(ctx, base, target, start, end)
	if err != nil {
		return 0, err
	}
	have := make(map[string]bool, len(existing))
	for _, r := range existing {
		have[r.Date.Format(domain.DateLayout)] = true
	}

	var batch []domain.ExchangeRate
	for day, value := range series.Rates {
		date, err := time.Parse(domain.DateLayout, day)
		if err != nil || have[day] || !value.IsPositive() {
			continue
		}
		if date.Before(start) || date.After(end) {
			continue
		}
		batch = append(batch, domain.ExchangeRate{
			BaseCurrencyCode:   base,
			TargetCurrencyCode: target,
			Rate:               value,
			Date:               date,
			IsHistorical:       true,
		})
	}
	sort.Slice(batch, func(i, j int) bool { return batch[i].Date.Before(batch[j].Date) })

	inserted, err := u.rateRepo.InsertMany(ctx, batch)
	if err != nil {
		return 0, err
	}
	return len(inserted), nil
}

// historicalPairs is the ordered cross product of the known major currencies,
// capped at MaxPairs.
func (u *RateUpdater) historicalPairs(known map[string]bool) [][2]string {
	var pairs [][2]string
	for _, base := range domain.MajorCurrencies {
		if !known[base] {
			continue
		}
		for _, target := range domain.MajorCurrencies {
			if target == base || !known[target] {
				continue
			}
			if len(pairs) == u.settings.MaxPairs {
				return pairs
			}
			pairs = append(pairs, [2]string{base, target})
		}
	}
	return pairs
}

func (u *RateUpdater) knownCurrencies(ctx context.Context) (map[string]bool, error) {
	currencies, err := u.currencies.ListCurrencies(ctx, true)
	if err != nil {
		return nil, fmt.Errorf("list currencies: %w", err)
	}
	known := make(map[string]bool, len(currencies))
	for _, c := range currencies {
		known[c.Code] = true
	}
	return known, nil
}
