package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// CacheLookups counts cache reads by cache name and result (hit, miss, error).
	CacheLookups = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "currency_converter",
		Name:      "cache_lookups_total",
		Help:      "Cache lookups by cache and result.",
	}, []string{"cache", "result"})

	// RateResolutions counts resolved rates by where they came from.
	RateResolutions = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "currency_converter",
		Name:      "rate_resolutions_total",
		Help:      "Rate resolutions by origin (cache, direct, inverse, external, not_found, error).",
	}, []string{"origin"})

	// ExternalCalls counts calls to the external rate source by operation and outcome.
	ExternalCalls = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "currency_converter",
		Name:      "external_calls_total",
		Help:      "External rate source calls by operation and outcome.",
	}, []string{"operation", "outcome"})

	// AdmissionDecisions counts API-key gate outcomes.
	AdmissionDecisions = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "currency_converter",
		Name:      "admission_decisions_total",
		Help:      "API key gate decisions (allowed, missing_key, invalid_key, quota_exceeded, error).",
	}, []string{"decision"})

	// UpdaterCycles counts background updater cycles by job and outcome.
	UpdaterCycles = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "currency_converter",
		Name:      "updater_cycles_total",
		Help:      "Rate updater cycles by job (realtime, historical) and outcome.",
	}, []string{"job", "outcome"})

	// RatesWritten counts rows inserted or updated by the updater.
	RatesWritten = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "currency_converter",
		Name:      "rates_written_total",
		Help:      "Exchange rate rows written by the updater, by operation (insert, update).",
	}, []string{"operation"})
)
