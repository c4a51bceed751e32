package memory

import (
	"context"
	"fmt"

	"github.com/SscSPs/currency_converter/internal/core/domain"
	portsrepo "github.com/SscSPs/currency_converter/internal/core/ports/repositories"
	"github.com/SscSPs/currency_converter/internal/utils"
)

// SeedCurrencies mirrors the currencies inserted by the seed migration.
var SeedCurrencies = []domain.Currency{
	{Code: "USD", Name: "US Dollar", Symbol: "$", IsActive: true},
	{Code: "EUR", Name: "Euro", Symbol: "€", IsActive: true},
	{Code: "GBP", Name: "British Pound", Symbol: "£", IsActive: true},
	{Code: "JPY", Name: "Japanese Yen", Symbol: "¥", IsActive: true},
	{Code: "CAD", Name: "Canadian Dollar", Symbol: "C$", IsActive: true},
	{Code: "AUD", Name: "Australian Dollar", Symbol: "A$", IsActive: true},
	{Code: "CHF", Name: "Swiss Franc", Symbol: "CHF", IsActive: true},
	{Code: "CNY", Name: "Chinese Yuan", Symbol: "¥", IsActive: true},
}

// SeedAPIKeys holds the plaintext demo keys and their quotas.
var SeedAPIKeys = []struct {
	Key             string
	Name            string
	RequestsPerHour int
}{
	{Key: "demo-key-123456789", Name: "Demo API Key", RequestsPerHour: 1000},
	{Key: "premium-key-987654321", Name: "Premium API Key", RequestsPerHour: 5000},
}

// NewRepositoryProvider builds in-memory repositories. When seed is true the
// catalogue and demo keys are loaded, matching a freshly migrated database.
func NewRepositoryProvider(ctx context.Context, seed bool) (portsrepo.RepositoryProvider, error) {
	currencies := NewCurrencyRepository()
	keys := NewAPIKeyRepository()

	if seed {
		for _, c := range SeedCurrencies {
			if err := currencies.SaveCurrency(ctx, c); err != nil {
				return portsrepo.RepositoryProvider{}, fmt.Errorf("seed currency %s: %w", c.Code, err)
			}
		}
		for _, k := range SeedAPIKeys {
			err := keys.SaveAPIKey(ctx, domain.APIKey{
				KeyHash:         utils.HashAPIKey(k.Key),
				Name:            k.Name,
				RequestsPerHour: k.RequestsPerHour,
				IsActive:        true,
			})
			if err != nil {
				return portsrepo.RepositoryProvider{}, fmt.Errorf("seed api key %s: %w", k.Name, err)
			}
		}
	}

	return portsrepo.RepositoryProvider{
		CurrencyRepo:     currencies,
		ExchangeRateRepo: NewExchangeRateRepository(),
		APIKeyRepo:       keys,
	}, nil
}
