package server

import (
	"log/slog"

	"totals-tracker/internal/config"
	"totals-tracker/internal/logging"
	"totals-tracker/internal/providers"
	"totals-tracker/internal/providers/fixture"
	"totals-tracker/internal/providers/theoddsapi"
)

func selectProvider(cfg config.Config, logger *slog.Logger) providers.DataProvider {
	switch cfg.Provider {
	case config.ProviderFixture, "":
		return fixture.New()
	case config.ProviderTheOddsAPI:
		return theoddsapi.NewClient(theoddsapi.Config{
			BaseURL: cfg.Odds.BaseURL,
			APIKey:  cfg.Odds.APIKey,
			Timeout: cfg.Odds.Timeout,
			Logger:  logger,
		})
	default:
		logging.Warn(logger, "unknown provider, falling back to fixture", "provider", cfg.Provider)
		return fixture.New()
	}
}
