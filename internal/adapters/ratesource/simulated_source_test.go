package ratesource_test

import (
	"context"
	"testing"
	"time"

	"github.com/SscSPs/currency_converter/internal/adapters/ratesource"
	"github.com/SscSPs/currency_converter/internal/core/ports/providers"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func midpoint() float64 { return 0.5 }

func TestSimulatedSource_RealTimeCrossRates(t *testing.T) {
	now := time.Date(2024, 3, 5, 13, 0, 0, 0, time.UTC)
	source := ratesource.NewSimulatedSource(nil).WithRandom(midpoint).WithClock(func() time.Time { return now })

	got, err := source.GetRealTime(context.Background(), "eur")

	require.NoError(t, err)
	assert.Equal(t, "EUR", got.Base)
	assert.Equal(t, "2024-03-05", got.Date)
	assert.Len(t, got.Rates, 7)
	assert.NotContains(t, got.Rates, "EUR")
	// 1 / 0.92 with zero noise
	assert.Equal(t, "1.08695652", got.Rates["USD"].StringFixed(8))
	assert.True(t, decimal.RequireFromString("0.80").Div(decimal.RequireFromString("0.92")).Round(8).Equal(got.Rates["GBP"]))
}

func TestSimulatedSource_RealTimeNoiseIsBounded(t *testing.T) {
	source := ratesource.NewSimulatedSource(nil)
	for i := 0; i < 50; i++ {
		got, err := source.GetRealTime(context.Background(), "USD")
		require.NoError(t, err)
		eur := got.Rates["EUR"]
		assert.True(t, eur.GreaterThanOrEqual(decimal.RequireFromString("0.9016")), eur.String())
		assert.True(t, eur.LessThanOrEqual(decimal.RequireFromString("0.9384")), eur.String())
	}
}

func TestSimulatedSource_UnknownBase(t *testing.T) {
	source := ratesource.NewSimulatedSource(nil)

	_, err := source.GetRealTime(context.Background(), "XYZ")

	require.Error(t, err)
	assert.Equal(t, providers.KindNotFound, providers.KindOf(err))
}

func TestSimulatedSource_HistoricalOneRatePerDay(t *testing.T) {
	source := ratesource.NewSimulatedSource(nil).WithRandom(midpoint)
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 0, 9)

	got, err := source.GetHistorical(context.Background(), "USD", "CHF", start, end)

	require.NoError(t, err)
	assert.Equal(t, "USD", got.Base)
	assert.Equal(t, "CHF", got.Target)
	assert.Len(t, got.Rates, 10)
	assert.Equal(t, "0.90000000", got.Rates["2024-01-10"].StringFixed(8))
}

func TestSimulatedSource_HistoricalInvertedRange(t *testing.T) {
	source := ratesource.NewSimulatedSource(nil)
	start := time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC)

	_, err := source.GetHistorical(context.Background(), "USD", "EUR", start, start.AddDate(0, 0, -1))

	require.Error(t, err)
	assert.Equal(t, providers.KindNotFound, providers.KindOf(err))
}
