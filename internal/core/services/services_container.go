package services

import (
	"log/slog"

	"github.com/SscSPs/currency_converter/internal/core/ports/providers"
	portsrepo "github.com/SscSPs/currency_converter/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/currency_converter/internal/core/ports/services"
	"github.com/SscSPs/currency_converter/internal/platform/config"
)

// UpdaterSettingsFromConfig maps the UPDATER_* settings onto UpdaterSettings.
func UpdaterSettingsFromConfig(cfg *config.Config) UpdaterSettings {
	settings := DefaultUpdaterSettings()
	settings.Interval = cfg.UpdaterInterval
	settings.Staleness = cfg.UpdaterStaleness
	settings.HistoricalInterval = cfg.UpdaterHistoricalInterval
	settings.ErrorCooldown = cfg.UpdaterErrorCooldown
	settings.Pacing = cfg.UpdaterPacing
	settings.HistoryDays = cfg.UpdaterHistoryDays
	settings.MaxPairs = cfg.UpdaterMaxPairs
	return settings
}

// NewServiceContainer creates a new service container with properly initialized dependencies
func NewServiceContainer(
	cfg *config.Config,
	repos portsrepo.RepositoryProvider,
	source providers.RateSource,
	cache providers.Cache,
	logger *slog.Logger,
) *portssvc.ServiceContainer {
	container := &portssvc.ServiceContainer{}

	currencyService := NewCurrencyService(repos.CurrencyRepo)
	container.Currency = currencyService

	container.Resolver = NewRateResolver(repos.ExchangeRateRepo, source, cache,
		WithRealTimeTTL(cfg.RealTimeCacheTTL))

	container.Conversion = NewConversionService(currencyService, container.Resolver, repos.ExchangeRateRepo, cache,
		WithSeriesTTL(cfg.HistoricalCacheTTL))

	container.RateUpdater = NewRateUpdater(repos.CurrencyRepo, repos.ExchangeRateRepo, source, cache,
		UpdaterSettingsFromConfig(cfg), WithUpdaterLogger(logger))

	container.APIKey = NewAPIKeyService(repos.APIKeyRepo, nil)

	return container
}
