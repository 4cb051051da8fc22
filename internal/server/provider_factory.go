package server

import (
	"log/slog"

	"totals-tracker/internal/config"
	"totals-tracker/internal/metrics"
	"totals-tracker/internal/providers"
)

// providerFactory assembles the provider with shared wrappers (optional spacing + retry).
type providerFactory struct {
	logger  *slog.Logger
	metrics *metrics.Recorder
}

func newProviderFactory(logger *slog.Logger, metrics *metrics.Recorder) providerFactory {
	return providerFactory{logger: logger, metrics: metrics}
}

func (f providerFactory) build(cfg config.Config) providers.DataProvider {
	base := selectProvider(cfg, f.logger)
	name := normalizeProviderName(cfg.Provider, base)

	var wrapped providers.DataProvider = base
	if cfg.Odds.MinInterval > 0 {
		wrapped = providers.NewRateLimitedProvider(wrapped, cfg.Odds.MinInterval, f.logger)
	}
	return providers.NewRetryingProvider(wrapped, f.logger, f.metrics, name, cfg.Odds.RetryAttempts, cfg.Odds.RetryBackoff)
}
