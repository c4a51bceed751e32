package domain_test

import (
	"testing"
	"time"

	"github.com/SscSPs/currency_converter/internal/core/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestDateOnly(t *testing.T) {
	ist := time.FixedZone("IST", 5*3600+1800)
	tests := []struct {
		name string
		in   time.Time
		want time.Time
	}{
		{
			name: "strips time of day",
			in:   time.Date(2024, 1, 1, 17, 45, 3, 99, time.UTC),
			want: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		},
		{
			name: "converts to UTC before truncating",
			in:   time.Date(2024, 1, 2, 2, 0, 0, 0, ist),
			want: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.True(t, tt.want.Equal(domain.DateOnly(tt.in)))
		})
	}
}

func TestExchangeRate_Validate(t *testing.T) {
	day := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	tests := []struct {
		name    string
		rate    domain.ExchangeRate
		wantErr bool
		errMsg  string
	}{
		{
			name: "valid rate",
			rate: domain.ExchangeRate{BaseCurrencyCode: "USD", TargetCurrencyCode: "EUR", Rate: decimal.RequireFromString("0.9"), Date: day},
		},
		{
			name:    "zero rate",
			rate:    domain.ExchangeRate{BaseCurrencyCode: "USD", TargetCurrencyCode: "EUR", Rate: decimal.Zero, Date: day},
			wantErr: true,
			errMsg:  "rate must be positive",
		},
		{
			name:    "same currency",
			rate:    domain.ExchangeRate{BaseCurrencyCode: "USD", TargetCurrencyCode: "USD", Rate: decimal.NewFromInt(1), Date: day},
			wantErr: true,
			errMsg:  "must differ",
		},
		{
			name:    "missing date",
			rate:    domain.ExchangeRate{BaseCurrencyCode: "USD", TargetCurrencyCode: "EUR", Rate: decimal.NewFromInt(1)},
			wantErr: true,
			errMsg:  "date is required",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.rate.Validate()
			if tt.wantErr {
				assert.Error(t, err)
				assert.Contains(t, err.Error(), tt.errMsg)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestExchangeRate_Differs(t *testing.T) {
	r := domain.ExchangeRate{Rate: decimal.RequireFromString("0.92000000")}

	assert.False(t, r.Differs(decimal.RequireFromString("0.920000005")))
	assert.False(t, r.Differs(decimal.RequireFromString("0.92000001")))
	assert.True(t, r.Differs(decimal.RequireFromString("0.92000002")))
}

func TestAPIKey_Usable(t *testing.T) {
	now := time.Now()
	past := now.Add(-time.Minute)
	future := now.Add(time.Hour)

	assert.True(t, (&domain.APIKey{IsActive: true}).Usable(now))
	assert.True(t, (&domain.APIKey{IsActive: true, ExpiresAt: &future}).Usable(now))
	assert.False(t, (&domain.APIKey{IsActive: true, ExpiresAt: &past}).Usable(now))
	assert.False(t, (&domain.APIKey{IsActive: false}).Usable(now))
}

func TestConvertAmount(t *testing.T) {
	got := domain.ConvertAmount(decimal.NewFromInt(100), decimal.RequireFromString("0.90"))
	assert.True(t, decimal.RequireFromString("90.00").Equal(got))

	got = domain.ConvertAmount(decimal.RequireFromString("10"), decimal.RequireFromString("1.11111111"))
	assert.Equal(t, "11.11", got.StringFixed(2))
}
