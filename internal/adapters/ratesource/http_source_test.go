package ratesource_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/SscSPs/currency_converter/internal/adapters/ratesource"
	"github.com/SscSPs/currency_converter/internal/core/ports/providers"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestHTTPSource(t *testing.T, handler http.HandlerFunc) *ratesource.HTTPSource {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return ratesource.NewHTTPSource(ratesource.HTTPSourceConfig{
		RealTimeEndpoint:   srv.URL + "/latest",
		HistoricalEndpoint: srv.URL + "/history",
		APIKey:             "secret",
		Timeout:            time.Second,
	}, nil, nil)
}

func TestHTTPSource_GetRealTime(t *testing.T) {
	source := newTestHTTPSource(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/latest", r.URL.Path)
		assert.Equal(t, "GBP", r.URL.Query().Get("base"))
		assert.Equal(t, "secret", r.Header.Get("apikey"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"base":"GBP","date":"2024-01-01","rates":{"JPY":190.5,"USD":"1.25"}}`))
	})

	got, err := source.GetRealTime(context.Background(), "gbp")

	require.NoError(t, err)
	assert.Equal(t, "GBP", got.Base)
	assert.True(t, decimal.RequireFromString("190.5").Equal(got.Rates["JPY"]))
	assert.True(t, decimal.RequireFromString("1.25").Equal(got.Rates["USD"]))
}

func TestHTTPSource_GetHistorical(t *testing.T) {
	source := newTestHTTPSource(t, func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		assert.Equal(t, "/history", r.URL.Path)
		assert.Equal(t, "USD", q.Get("base"))
		assert.Equal(t, "EUR", q.Get("target"))
		assert.Equal(t, "2024-01-01", q.Get("start_date"))
		assert.Equal(t, "2024-01-02", q.Get("end_date"))
		_, _ = w.Write([]byte(`{"base":"USD","target":"EUR","rates":{"2024-01-01":0.9,"2024-01-02":0.91}}`))
	})
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	got, err := source.GetHistorical(context.Background(), "USD", "EUR", start, start.AddDate(0, 0, 1))

	require.NoError(t, err)
	assert.Len(t, got.Rates, 2)
	assert.True(t, decimal.RequireFromString("0.91").Equal(got.Rates["2024-01-02"]))
}

func TestHTTPSource_ClassifiesFailures(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		want   providers.ErrorKind
	}{
		{name: "rate limited", status: http.StatusTooManyRequests, want: providers.KindRateLimited},
		{name: "unauthorized", status: http.StatusUnauthorized, want: providers.KindUnauthorized},
		{name: "forbidden", status: http.StatusForbidden, want: providers.KindUnauthorized},
		{name: "not found", status: http.StatusNotFound, want: providers.KindNotFound},
		{name: "server error", status: http.StatusInternalServerError, want: providers.KindServiceUnavailable},
		{name: "bad gateway", status: http.StatusBadGateway, want: providers.KindServiceUnavailable},
		{name: "malformed body", status: http.StatusOK, body: `{"rates":`, want: providers.KindMalformedResponse},
		{name: "missing rates", status: http.StatusOK, body: `{"base":"USD"}`, want: providers.KindMalformedResponse},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			source := newTestHTTPSource(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			})

			_, err := source.GetRealTime(context.Background(), "USD")

			require.Error(t, err)
			assert.Equal(t, tt.want, providers.KindOf(err))
		})
	}
}

func TestHTTPSource_NetworkErrorIsTransient(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	endpoint := srv.URL
	srv.Close()

	source := ratesource.NewHTTPSource(ratesource.HTTPSourceConfig{RealTimeEndpoint: endpoint, Timeout: time.Second}, nil, nil)
	_, err := source.GetRealTime(context.Background(), "USD")

	require.Error(t, err)
	assert.Equal(t, providers.KindTransient, providers.KindOf(err))
	assert.True(t, providers.KindOf(err).Retryable())
}
