package config

import (
	"errors"
	"fmt"
	"strings"
	"time"
	_ "time/tzdata"
)

// Config holds runtime configuration for the server.
type Config struct {
	Port        string
	Provider    string
	AdminToken  string
	CORSOrigins []string
	Log         LogConfig
	Odds        OddsConfig
	Schedule    ScheduleConfig
	Analyzer    AnalyzerConfig
	Telegram    TelegramConfig
	Ledger      LedgerConfig
	Redis       RedisConfig
	Metrics     MetricsConfig
}

// LogConfig selects the slog level and handler.
type LogConfig struct {
	Level  string
	Format string
}

// OddsConfig controls how we talk to The Odds API.
type OddsConfig struct {
	BaseURL       string
	APIKey        string
	Bookmaker     string
	Regions       string
	Timeout       Duration
	RetryAttempts int
	RetryBackoff  Duration
	// MinInterval spaces upstream calls; zero disables spacing.
	MinInterval Duration
}

// ScheduleConfig drives the scheduler jobs. Hours are in Timezone.
type ScheduleConfig struct {
	Timezone         string
	DailyRefreshHour int
	MonitorInterval  Duration
	MonitorStartHour int
	MonitorEndHour   int
}

// AnalyzerConfig overrides the projection heuristics.
type AnalyzerConfig struct {
	EdgeThreshold     float64
	ProjectionDivisor float64
}

// TelegramConfig enables alerts when both Token and ChatID are set.
type TelegramConfig struct {
	Token   string
	ChatID  string
	BaseURL string
}

// Enabled reports whether Telegram delivery is configured.
func (t TelegramConfig) Enabled() bool {
	return t.Token != "" && t.ChatID != ""
}

// LedgerConfig selects the bet store. An empty DBPath keeps bets in memory.
type LedgerConfig struct {
	DBPath   string
	ReadOnly bool
}

// RedisConfig enables snapshot publishing when URL is set.
type RedisConfig struct {
	URL     string
	Channel string
}

// Load reads configuration from environment variables with sensible defaults.
func Load() Config {
	return Config{
		Port:        envOrDefault(envPort, defaultPort),
		Provider:    strings.ToLower(envOrDefault(envProvider, defaultProvider)),
		AdminToken:  envOrDefault(envAdminToken, ""),
		CORSOrigins: listEnvOrDefault(envCORSOrigins, defaultCORSOrigins),
		Log: LogConfig{
			Level:  envOrDefault(envLogLevel, defaultLogLevel),
			Format: envOrDefault(envLogFormat, defaultLogFormat),
		},
		Odds: OddsConfig{
			BaseURL:       envOrDefault(envOddsBaseURL, defaultOddsBaseURL),
			APIKey:        envOrDefault(envOddsAPIKey, ""),
			Bookmaker:     strings.ToLower(envOrDefault(envOddsBookmaker, defaultOddsBookmaker)),
			Regions:       envOrDefault(envOddsRegions, defaultOddsRegions),
			Timeout:       durationEnvOrDefault(envOddsTimeout, defaultOddsTimeout),
			RetryAttempts: intEnvOrDefault(envOddsRetryAttempts, defaultOddsRetryAttempts),
			RetryBackoff:  durationEnvOrDefault(envOddsRetryBackoff, defaultOddsRetryBackoff),
			MinInterval:   durationEnvOrDefault(envOddsMinInterval, 0),
		},
		Schedule: ScheduleConfig{
			Timezone:         envOrDefault(envTimezone, defaultTimezone),
			DailyRefreshHour: hourEnvOrDefault(envDailyRefreshHour, defaultDailyRefreshHour),
			MonitorInterval:  durationEnvOrDefault(envMonitorInterval, defaultMonitorInterval),
			MonitorStartHour: hourEnvOrDefault(envMonitorStartHour, defaultMonitorStartHour),
			MonitorEndHour:   hourEnvOrDefault(envMonitorEndHour, defaultMonitorEndHour),
		},
		Analyzer: AnalyzerConfig{
			EdgeThreshold:     floatEnvOrDefault(envEdgeThreshold, defaultEdgeThreshold),
			ProjectionDivisor: floatEnvOrDefault(envProjectionDivisor, defaultProjectionDivisor),
		},
		Telegram: TelegramConfig{
			Token:   envOrDefault(envTelegramToken, ""),
			ChatID:  envOrDefault(envTelegramChatID, ""),
			BaseURL: envOrDefault(envTelegramBaseURL, ""),
		},
		Ledger: LedgerConfig{
			DBPath:   envOrDefault(envLedgerDBPath, ""),
			ReadOnly: boolEnvOrDefault(envLedgerReadOnly, false),
		},
		Redis: RedisConfig{
			URL:     envOrDefault(envRedisURL, ""),
			Channel: envOrDefault(envRedisChannel, defaultRedisChannel),
		},
		Metrics: loadMetrics(),
	}
}

// Location resolves the schedule timezone.
func (c Config) Location() (*time.Location, error) {
	loc, err := time.LoadLocation(c.Schedule.Timezone)
	if err != nil {
		return nil, fmt.Errorf("invalid %s %q: %w", envTimezone, c.Schedule.Timezone, err)
	}
	return loc, nil
}

// Validate reports every invalid setting at once.
func (c Config) Validate() error {
	var errs []error

	switch c.Provider {
	case ProviderFixture:
	case ProviderTheOddsAPI:
		if c.Odds.APIKey == "" {
			errs = append(errs, fmt.Errorf("%s is required for provider %s", envOddsAPIKey, ProviderTheOddsAPI))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown %s %q", envProvider, c.Provider))
	}

	if _, err := c.Location(); err != nil {
		errs = append(errs, err)
	}
	hours := []struct {
		key  string
		hour int
	}{
		{envDailyRefreshHour, c.Schedule.DailyRefreshHour},
		{envMonitorStartHour, c.Schedule.MonitorStartHour},
		{envMonitorEndHour, c.Schedule.MonitorEndHour},
	}
	for _, h := range hours {
		if h.hour < 0 || h.hour > 23 {
			errs = append(errs, fmt.Errorf("%s must be between 0 and 23, got %d", h.key, h.hour))
		}
	}
	if c.Schedule.MonitorInterval <= 0 {
		errs = append(errs, fmt.Errorf("%s must be positive", envMonitorInterval))
	}
	if c.Analyzer.ProjectionDivisor <= 0 || c.Analyzer.ProjectionDivisor > 1 {
		errs = append(errs, fmt.Errorf("%s must be in (0, 1], got %v", envProjectionDivisor, c.Analyzer.ProjectionDivisor))
	}
	if c.Analyzer.EdgeThreshold <= 0 {
		errs = append(errs, fmt.Errorf("%s must be positive", envEdgeThreshold))
	}
	if (c.Telegram.Token == "") != (c.Telegram.ChatID == "") {
		errs = append(errs, fmt.Errorf("%s and %s must be set together", envTelegramToken, envTelegramChatID))
	}
	return errors.Join(errs...)
}
