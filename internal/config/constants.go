package config

import "time"

const (
	envPort        = "PORT"
	envProvider    = "PROVIDER"
	envAdminToken  = "ADMIN_TOKEN"
	envCORSOrigins = "CORS_ORIGINS"
	envLogLevel    = "LOG_LEVEL"
	envLogFormat   = "LOG_FORMAT"

	envOddsBaseURL       = "ODDS_API_BASE_URL"
	envOddsAPIKey        = "ODDS_API_KEY"
	envOddsBookmaker     = "ODDS_BOOKMAKER"
	envOddsRegions       = "ODDS_REGIONS"
	envOddsTimeout       = "ODDS_HTTP_TIMEOUT"
	envOddsRetryAttempts = "ODDS_RETRY_ATTEMPTS"
	envOddsRetryBackoff  = "ODDS_RETRY_BACKOFF"
	envOddsMinInterval   = "ODDS_MIN_INTERVAL"

	envTimezone         = "TIMEZONE"
	envDailyRefreshHour = "DAILY_REFRESH_HOUR"
	envMonitorInterval  = "MONITOR_INTERVAL"
	envMonitorStartHour = "MONITOR_START_HOUR"
	envMonitorEndHour   = "MONITOR_END_HOUR"

	envEdgeThreshold     = "EDGE_THRESHOLD"
	envProjectionDivisor = "PROJECTION_DIVISOR"

	envTelegramToken   = "TELEGRAM_BOT_TOKEN"
	envTelegramChatID  = "TELEGRAM_CHAT_ID"
	envTelegramBaseURL = "TELEGRAM_BASE_URL"

	envLedgerDBPath   = "LEDGER_DB_PATH"
	envLedgerReadOnly = "LEDGER_READ_ONLY"

	envRedisURL     = "REDIS_URL"
	envRedisChannel = "REDIS_CHANNEL"

	envMetricsPort  = "METRICS_PORT"
	envMetricsOn    = "METRICS_ENABLED"
	envOtelEndpoint = "OTEL_EXPORTER_OTLP_ENDPOINT"
	envOtelService  = "OTEL_SERVICE_NAME"
	envOtelInsecure = "OTEL_EXPORTER_OTLP_INSECURE"

	ProviderTheOddsAPI = "theoddsapi"
	ProviderFixture    = "fixture"

	defaultPort        = "3000"
	defaultProvider    = ProviderFixture
	defaultCORSOrigins = "http://localhost:5173,http://localhost:3000"
	defaultLogLevel    = "info"
	defaultLogFormat   = "text"

	defaultOddsBaseURL       = "https://api.the-odds-api.com/v4"
	defaultOddsBookmaker     = "fanduel"
	defaultOddsRegions       = "us"
	defaultOddsTimeout       = 10 * Duration(time.Second)
	defaultOddsRetryAttempts = 3
	defaultOddsRetryBackoff  = 500 * Duration(time.Millisecond)

	defaultTimezone         = "America/New_York"
	defaultDailyRefreshHour = 8
	defaultMonitorInterval  = 30 * Duration(time.Second)
	defaultMonitorStartHour = 12
	defaultMonitorEndHour   = 3

	defaultEdgeThreshold     = 10.0
	defaultProjectionDivisor = 0.75

	defaultRedisChannel = "totals:opportunities"

	defaultMetricsPort = "9090"
	defaultServiceName = "totals-tracker"
)
