package services

import (
	"context"
	"errors"
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
	"golang.org/x/sync/singleflight"
)

const (
	// DefaultRealTimeTTL is how long a resolved real-time rate stays cached.
	DefaultRealTimeTTL = 5 * time.Minute

	// DefaultFetchTimeout bounds one shared external fetch.
	DefaultFetchTimeout = 30 * time.Second
)

// cachedRate is the JSON shape stored under rate:{from}:{to}:current.
type cachedRate struct {
	Rate decimal.Decimal `json:"rate"`
	Date time.Time       `json:"date"`
}

// RateResolver resolves a pair by trying the cache, the stored direct rate,
// the stored inverse rate and finally the external source, in that order.
type RateResolver struct {
	BaseService
	rateRepo portsrepo.ExchangeRateReader
	source   providers.RateSource
	cache    providers.Cache
	ttl      time.Duration
	now      func() time.Time

	fetchTimeout time.Duration

	// fetches coalesces concurrent real-time lookups of the same base.
	fetches singleflight.Group
}

var _ portssvc.RateResolverSvc = (*RateResolver)(nil)

// ResolverOption is a functional option for configuring the rate resolver
type ResolverOption func(*RateResolver)

// WithRealTimeTTL overrides DefaultRealTimeTTL.
func WithRealTimeTTL(ttl time.Duration) ResolverOption {
	return func(r *RateResolver) {
		if ttl > 0 {
			r.ttl = ttl
		}
	}
}

// WithFetchTimeout overrides DefaultFetchTimeout.
func WithFetchTimeout(timeout time.Duration) ResolverOption {
	return func(r *RateResolver) {
		if timeout > 0 {
			r.fetchTimeout = timeout
		}
	}
}

// WithResolverClock overrides time.Now.
func WithResolverClock(now func() time.Time) ResolverOption {
	return func(r *RateResolver) {
		r.now = now
	}
}

func NewRateResolver(rateRepo portsrepo.ExchangeRateReader, source providers.RateSource, cache providers.Cache, options ...ResolverOption) *RateResolver {
	r := &RateResolver{
		rateRepo: rateRepo,
		source:   source,
		cache:    cache,
		ttl:      DefaultRealTimeTTL,
		now:      time.Now,

		fetchTimeout: DefaultFetchTimeout,
	}
	for _, option := range options {
		option(r)
	}
	return r
}

func (r *RateResolver) ResolveRate(ctx context.Context, from, to string, date *time.Time) (*domain.ResolvedRate, error) {
	from, to = domain.NormalizeCode(from), domain.NormalizeCode(to)
	realTime := date == nil

	if realTime {
		if resolved, ok := r.fromCache(ctx, from, to); ok {
			return r.done(resolved), nil
		}
	}

	// Direct row.
	row, err := r.rateRepo.GetRate(ctx, from, to, date)
	switch {
	case err == nil:
		return r.store(ctx, realTime, &domain.ResolvedRate{
			From: from, To: to, Rate: row.Rate, Date: row.Date, Origin: domain.OriginDirect,
		}), nil
	case !errors.Is(err, apperrors.ErrNotFound):
		metrics.RateResolutions.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("failed to look up rate %s/%s: %w", from, to, err)
	}

	// Inverse row.
	row, err = r.rateRepo.GetRate(ctx, to, from, date)
	switch {
	case err == nil && !row.Rate.IsZero():
		return r.store(ctx, realTime, &domain.ResolvedRate{
			From: from, To: to, Rate: decimal.NewFromInt(1).Div(row.Rate), Date: row.Date, Origin: domain.OriginInverse,
		}), nil
	case err != nil && !errors.Is(err, apperrors.ErrNotFound):
		metrics.RateResolutions.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("failed to look up rate %s/%s: %w", to, from, err)
	}

	if realTime {
		resolved, err := r.fromSource(ctx, from, to)
		if err != nil {
			metrics.RateResolutions.WithLabelValues("error").Inc()
			return nil, err
		}
		if resolved != nil {
			return r.store(ctx, true, resolved), nil
		}
	}

	metrics.RateResolutions.WithLabelValues("not_found").Inc()
	return nil, apperrors.NewNotFoundError(fmt.Sprintf("no exchange rate for %s/%s", from, to))
}

func (r *RateResolver) fromCache(ctx context.Context, from, to string) (*domain.ResolvedRate, bool) {
	var cached cachedRate
	hit, err := r.cache.Get(ctx, currentRateKey(from, to), &cached)
	if err != nil {
		// A broken cache only costs latency.
		metrics.CacheLookups.WithLabelValues("rate", "error").Inc()
		r.LogWarn(ctx, err, "Rate cache read failed", slog.String("from", from), slog.String("to", to))
		return nil, false
	}
	if !hit {
		metrics.CacheLookups.WithLabelValues("rate", "miss").Inc()
		return nil, false
	}
	metrics.CacheLookups.WithLabelValues("rate", "hit").Inc()
	return &domain.ResolvedRate{From: from, To: to, Rate: cached.Rate, Date: cached.Date, Origin: domain.OriginCache}, true
}

func (r *RateResolver) fromSource(ctx context.Context, from, to string) (*domain.ResolvedRate, error) {
	// The fetch is shared by every waiter on this base, so it must not die
	// with whichever caller happened to start it.
	ch := r.fetches.DoChan(from, func() (any, error) {
		fetchCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), r.fetchTimeout)
		defer cancel()
		return r.source.GetRealTime(fetchCtx, from)
	})

	var res singleflight.Result
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("waiting for rates for %s: %w", from, ctx.Err())
	case res = <-ch:
	}
	v, err, shared := res.Val, res.Err, res.Shared
	if err != nil {
		if providers.KindOf(err) == providers.KindNotFound {
			return nil, nil
		}
		r.LogError(ctx, err, "External rate source failed", slog.String("base", from))
		return nil, apperrors.NewUpstreamError(fmt.Sprintf("failed to fetch rates for %s", from), err)
	}
	if shared {
		r.LogDebug(ctx, "Shared in-flight external fetch", slog.String("base", from))
	}

	snapshot := v.(*providers.RealTimeRates)
	rate, ok := snapshot.Rates[to]
	if !ok || !rate.IsPositive() {
		return nil, nil
	}

	date := domain.DateOnly(r.now())
	if parsed, err := time.Parse(domain.DateLayout, snapshot.Date); err == nil {
		date = parsed
	}
	return &domain.ResolvedRate{From: from, To: to, Rate: rate, Date: date, Origin: domain.OriginExternal}, nil
}

// store caches a real-time resolution and records the metric.
func (r *RateResolver) store(ctx context.Context, realTime bool, resolved *domain.ResolvedRate) *domain.ResolvedRate {
	if realTime {
		err := r.cache.Set(ctx, currentRateKey(resolved.From, resolved.To), cachedRate{Rate: resolved.Rate, Date: resolved.Date}, r.ttl)
		if err != nil {
			r.LogWarn(ctx, err, "Rate cache write failed", slog.String("from", resolved.From), slog.String("to", resolved.To))
		}
	}
	return r.done(resolved)
}

func (r *RateResolver) done(resolved *domain.ResolvedRate) *domain.ResolvedRate {
	metrics.RateResolutions.WithLabelValues(string(resolved.Origin)).Inc()
	return resolved
}
