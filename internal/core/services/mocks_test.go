package services_test

import (
	"context"
	"time"

	"github.com/SscSPs/currency_converter/internal/core/domain"
	"github.com/SscSPs/currency_converter/internal/core/ports/providers"
	"github.com/stretchr/testify/mock"
)

// --- Mock ExchangeRateRepository ---
type MockExchangeRateRepository struct {
	mock.Mock
}

func (m *MockExchangeRateRepository) GetRate(ctx context.Context, base, target string, date *time.Time) (*domain.ExchangeRate, error) {
	args := m.Called(ctx, base, target, date)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ExchangeRate), args.Error(1)
}

func (m *MockExchangeRateRepository) GetRange(ctx context.Context, base, target string, start, end time.Time) ([]domain.ExchangeRate, error) {
	args := m.Called(ctx, base, target, start, end)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.ExchangeRate), args.Error(1)
}

func (m *MockExchangeRateRepository) GetLatestPerTarget(ctx context.Context, base string) ([]domain.ExchangeRate, error) {
	args := m.Called(ctx, base)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.ExchangeRate), args.Error(1)
}

func (m *MockExchangeRateRepository) InsertMany(ctx context.Context, rates []domain.ExchangeRate) ([]domain.ExchangeRate, error) {
	args := m.Called(ctx, rates)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.ExchangeRate), args.Error(1)
}

func (m *MockExchangeRateRepository) Update(ctx context.Context, rate domain.ExchangeRate) (bool, error) {
	args := m.Called(ctx, rate)
	return args.Bool(0), args.Error(1)
}

// --- Mock RateSource ---
type MockRateSource struct {
	mock.Mock
}

func (m *MockRateSource) GetRealTime(ctx context.Context, base string) (*providers.RealTimeRates, error) {
	args := m.Called(ctx, base)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*providers.RealTimeRates), args.Error(1)
}

func (m *MockRateSource) GetHistorical(ctx context.Context, base, target string, start, end time.Time) (*providers.HistoricalRates, error) {
	args := m.Called(ctx, base, target, start, end)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*providers.HistoricalRates), args.Error(1)
}

// --- Mock APIKeyRepository ---
type MockAPIKeyRepository struct {
	mock.Mock
}

func (m *MockAPIKeyRepository) FindByHash(ctx context.Context, keyHash string) (*domain.APIKey, error) {
	args := m.Called(ctx, keyHash)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.APIKey), args.Error(1)
}

func (m *MockAPIKeyRepository) CountUsageSince(ctx context.Context, apiKeyID int64, since time.Time) (int, error) {
	args := m.Called(ctx, apiKeyID, since)
	return args.Int(0), args.Error(1)
}

func (m *MockAPIKeyRepository) InsertUsage(ctx context.Context, usage domain.APIKeyUsage) error {
	args := m.Called(ctx, usage)
	return args.Error(0)
}

func (m *MockAPIKeyRepository) SaveAPIKey(ctx context.Context, key domain.APIKey) error {
	args := m.Called(ctx, key)
	return args.Error(0)
}

func day(s string) time.Time {
	t, err := time.Parse(domain.DateLayout, s)
	if err != nil {
		panic(err)
	}
	return t
}
