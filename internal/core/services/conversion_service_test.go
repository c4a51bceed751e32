package services_test

import (
	"context"
	"testing"
	"time"

	"github.com/SscSPs/currency_converter/internal/adapters/cache"
	"github.com/SscSPs/currency_converter/internal/apperrors"
	"github.com/SscSPs/currency_converter/internal/core/domain"
	"github.com/SscSPs/currency_converter/internal/core/services"
	"github.com/SscSPs/currency_converter/internal/repositories/memory"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
)

type ConversionServiceTestSuite struct {
	suite.Suite
	ctx     context.Context
	now     time.Time
	rates   *memory.ExchangeRateRepository
	source  *MockRateSource
	cache   *cache.MemoryCache
	service *services.ConversionService
}

func (suite *ConversionServiceTestSuite) SetupTest() {
	suite.ctx = context.Background()
	suite.now = time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	clock := func() time.Time { return suite.now }

	repos, err := memory.NewRepositoryProvider(suite.ctx, true)
	suite.Require().NoError(err)
	suite.rates = memory.NewExchangeRateRepository()
	suite.source = new(MockRateSource)
	suite.cache = cache.NewMemoryCache(0, nil).WithClock(clock)

	currencies := services.NewCurrencyService(repos.CurrencyRepo)
	resolver := services.NewRateResolver(suite.rates, suite.source, suite.cache, services.WithResolverClock(clock))
	suite.service = services.NewConversionService(currencies, resolver, suite.rates, suite.cache,
		services.WithConversionClock(clock))
}

func (suite *ConversionServiceTestSuite) seedSeries(base, target string, from time.Time, days int) {
	var batch []domain.ExchangeRate
	for i := 0; i < days; i++ {
		batch = append(batch, domain.ExchangeRate{
			BaseCurrencyCode:   base,
			TargetCurrencyCode: target,
			Rate:               decimal.RequireFromString("0.90").Add(decimal.New(int64(i), -4)),
			Date:               from.AddDate(0, 0, i),
			IsHistorical:       true,
		})
	}
	_, err := suite.rates.InsertMany(suite.ctx, batch)
	suite.Require().NoError(err)
}

func (suite *ConversionServiceTestSuite) TestConvert_DatedRate() {
	suite.seedSeries("USD", "EUR", day("2024-01-01"), 1)
	date := day("2024-01-01")

	result, err := suite.service.Convert(suite.ctx, "USD", "EUR", decimal.NewFromInt(100), &date)
	suite.Require().NoError(err)
	suite.Equal("90.00", result.ConvertedAmount.StringFixed(2))
	suite.True(result.ConvertedAmount.Equal(decimal.RequireFromString("90")))
	suite.True(result.ExchangeRate.Equal(decimal.RequireFromString("0.90")))
	suite.Equal(date, result.RateDate)
	suite.Equal(suite.now, result.ConversionTime)
}

func (suite *ConversionServiceTestSuite) TestConvert_RoundsOnlyTheAmount() {
	_, err := suite.rates.InsertMany(suite.ctx, []domain.ExchangeRate{{
		BaseCurrencyCode: "EUR", TargetCurrencyCode: "USD",
		Rate: decimal.RequireFromString("0.90"), Date: day("2024-01-01"),
	}})
	suite.Require().NoError(err)
	date := day("2024-01-01")

	// 1 / 0.90 is 1.1111...; 100 USD is 111.11 EUR.
	result, err := suite.service.Convert(suite.ctx, "USD", "EUR", decimal.NewFromInt(100), &date)
	suite.Require().NoError(err)
	suite.Equal("111.11", result.ConvertedAmount.String())
	suite.True(result.ExchangeRate.GreaterThan(decimal.RequireFromString("1.1111")))
}

func (suite *ConversionServiceTestSuite) TestConvert_SameCurrency() {
	amounts := []string{"0.01", "1", "123.456", "99999999.999"}
	for _, code := range []string{"USD", "jpy", "Chf"} {
		for _, raw := range amounts {
			amount := decimal.RequireFromString(raw)
			result, err := suite.service.Convert(suite.ctx, code, code, amount, nil)
			suite.Require().NoError(err)
			suite.True(result.ConvertedAmount.Equal(amount), "%s %s", code, raw)
			suite.True(result.ExchangeRate.Equal(decimal.NewFromInt(1)))
			suite.Equal(domain.DateOnly(suite.now), result.RateDate)
		}
	}
	suite.source.AssertNotCalled(suite.T(), "GetRealTime", mock.Anything, mock.Anything)
}

func (suite *ConversionServiceTestSuite) TestConvert_UnknownCurrency() {
	_, err := suite.service.Convert(suite.ctx, "USD", "XXX", decimal.NewFromInt(1), nil)
	suite.ErrorIs(err, apperrors.ErrNotFound)

	_, err = suite.service.Convert(suite.ctx, "ZZZ", "ZZZ", decimal.NewFromInt(1), nil)
	suite.ErrorIs(err, apperrors.ErrNotFound)
}

func (suite *ConversionServiceTestSuite) TestConvert_NonPositiveAmount() {
	_, err := suite.service.Convert(suite.ctx, "USD", "EUR", decimal.Zero, nil)
	suite.ErrorIs(err, apperrors.ErrValidation)
}

func (suite *ConversionServiceTestSuite) TestConvert_NoRateIsNotFound() {
	date := day("2023-01-01")
	_, err := suite.service.Convert(suite.ctx, "USD", "EUR", decimal.NewFromInt(1), &date)
	suite.ErrorIs(err, apperrors.ErrNotFound)
}

func (suite *ConversionServiceTestSuite) TestConvertBatch_IndependentItems() {
	suite.seedSeries("USD", "EUR", day("2024-01-01"), 1)
	date := day("2024-01-01")

	items := suite.service.ConvertBatch(suite.ctx, []domain.ConversionRequest{
		{FromCurrency: "USD", ToCurrency: "EUR", Amount: decimal.NewFromInt(10), Date: &date},
		{FromCurrency: "USD", ToCurrency: "XXX", Amount: decimal.NewFromInt(10)},
		{FromCurrency: "GBP", ToCurrency: "GBP", Amount: decimal.NewFromInt(5)},
	})
	suite.Require().Len(items, 3)
	suite.True(items[0].Success)
	suite.Equal("9", items[0].Conversion.ConvertedAmount.String())
	suite.False(items[1].Success)
	suite.Nil(items[1].Conversion)
	suite.NotEmpty(items[1].Error)
	suite.True(items[2].Success)
}

func (suite *ConversionServiceTestSuite) TestGetHistoricalSeries_RoundTripAndCache() {
	start := day("2024-01-01")
	end := start.AddDate(0, 0, 9)
	suite.seedSeries("USD", "EUR", start, 10)

	series, err := suite.service.GetHistoricalSeries(suite.ctx, "USD", "EUR", start, end)
	suite.Require().NoError(err)
	suite.Len(series, 10)
	suite.True(series["2024-01-10"].Equal(decimal.RequireFromString("0.9009")))

	// Later writes are not visible until the cached series expires.
	ok, err := suite.rates.Update(suite.ctx, domain.ExchangeRate{
		BaseCurrencyCode: "USD", TargetCurrencyCode: "EUR",
		Rate: decimal.RequireFromString("1.5"), Date: start, IsHistorical: true,
	})
	suite.Require().NoError(err)
	suite.Require().True(ok)

	cached, err := suite.service.GetHistoricalSeries(suite.ctx, "USD", "EUR", start, end)
	suite.Require().NoError(err)
	suite.Len(cached, 10)
	suite.True(cached["2024-01-01"].Equal(decimal.RequireFromString("0.90")))

	suite.now = suite.now.Add(services.DefaultSeriesTTL)
	fresh, err := suite.service.GetHistoricalSeries(suite.ctx, "USD", "EUR", start, end)
	suite.Require().NoError(err)
	suite.True(fresh["2024-01-01"].Equal(decimal.RequireFromString("1.5")))
}

func (suite *ConversionServiceTestSuite) TestGetHistoricalSeries_EmptyIsNotCached() {
	start := day("2024-01-01")
	end := day("2024-01-05")

	series, err := suite.service.GetHistoricalSeries(suite.ctx, "USD", "EUR", start, end)
	suite.Require().NoError(err)
	suite.Empty(series)
	suite.Zero(suite.cache.Len())
}

func (suite *ConversionServiceTestSuite) TestGetHistoricalSeries_Rejects() {
	_, err := suite.service.GetHistoricalSeries(suite.ctx, "USD", "EUR", day("2024-01-05"), day("2024-01-01"))
	suite.ErrorIs(err, apperrors.ErrNotFound)

	_, err = suite.service.GetHistoricalSeries(suite.ctx, "USD", "XXX", day("2024-01-01"), day("2024-01-05"))
	suite.ErrorIs(err, apperrors.ErrNotFound)
}

func (suite *ConversionServiceTestSuite) TestGetLatestRates() {
	suite.seedSeries("USD", "EUR", day("2024-01-01"), 3)
	suite.seedSeries("USD", "GBP", day("2024-01-01"), 1)

	latest, err := suite.service.GetLatestRates(suite.ctx, "usd")
	suite.Require().NoError(err)
	suite.Require().Len(latest, 2)
	suite.Equal("EUR", latest[0].TargetCurrencyCode)
	suite.Equal(day("2024-01-03"), latest[0].Date)

	_, err = suite.service.GetLatestRates(suite.ctx, "XXX")
	suite.ErrorIs(err, apperrors.ErrNotFound)
}

func TestConversionServiceTestSuite(t *testing.T) {
	suite.Run(t, new(ConversionServiceTestSuite))
}
