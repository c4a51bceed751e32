package ratesource

import (
	"context"
	"log/slog"
	"time"

	"github.com/SscSPs/currency_converter/internal/core/ports/providers"
	"github.com/SscSPs/currency_converter/internal/platform/metrics"
	"github.com/cenkalti/backoff/v4"
)

// RetryPolicy bounds retries of transient rate source failures.
type RetryPolicy struct {
	Attempts  int
	BaseDelay time.Duration
}

// RetryingSource decorates a RateSource with exponential backoff. Only
// retryable error kinds are retried, definitive failures return at once.
type RetryingSource struct {
	inner  providers.RateSource
	policy RetryPolicy
	logger *slog.Logger
}

var _ providers.RateSource = (*RetryingSource)(nil)

// NewRetryingSource wraps inner with policy.
func NewRetryingSource(inner providers.RateSource, policy RetryPolicy, logger *slog.Logger) *RetryingSource {
	if policy.Attempts < 1 {
		policy.Attempts = 1
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &RetryingSource{inner: inner, policy: policy, logger: logger}
}

func (s *RetryingSource) GetRealTime(ctx context.Context, base string) (*providers.RealTimeRates, error) {
	return withRetry(ctx, s, "realtime", func() (*providers.RealTimeRates, error) {
		return s.inner.GetRealTime(ctx, base)
	})
}

func (s *RetryingSource) GetHistorical(ctx context.Context, base, target string, start, end time.Time) (*providers.HistoricalRates, error) {
	return withRetry(ctx, s, "historical", func() (*providers.HistoricalRates, error) {
		return s.inner.GetHistorical(ctx, base, target, start, end)
	})
}

func (s *RetryingSource) newBackOff(ctx context.Context) backoff.BackOff {
	exp := &backoff.ExponentialBackOff{
		InitialInterval:     s.policy.BaseDelay,
		RandomizationFactor: 0,
		Multiplier:          2,
		MaxInterval:         s.policy.BaseDelay << uint(s.policy.Attempts),
		MaxElapsedTime:      0,
		Stop:                backoff.Stop,
		Clock:               backoff.SystemClock,
	}
	exp.Reset()
	return backoff.WithContext(backoff.WithMaxRetries(exp, uint64(s.policy.Attempts-1)), ctx)
}

func withRetry[T any](ctx context.Context, s *RetryingSource, op string, fn func() (T, error)) (T, error) {
	var result T
	attempt := 0
	err := backoff.RetryNotify(func() error {
		attempt++
		v, err := fn()
		if err != nil {
			if !providers.KindOf(err).Retryable() {
				return backoff.Permanent(err)
			}
			return err
		}
		result = v
		return nil
	}, s.newBackOff(ctx), func(err error, next time.Duration) {
		s.logger.Warn("Retrying external rate source call",
			slog.String("operation", op),
			slog.Int("attempt", attempt),
			slog.Duration("delay", next),
			slog.String("error", err.Error()))
	})

	if err != nil {
		metrics.ExternalCalls.WithLabelValues(op, string(providers.KindOf(err))).Inc()
		return result, err
	}
	metrics.ExternalCalls.WithLabelValues(op, "success").Inc()
	return result, nil
}
