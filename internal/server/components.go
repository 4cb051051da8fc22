package server

import (
	"io"
	"log/slog"
	"net/http"
	"strings"

	"totals-tracker/internal/config"
	"totals-tracker/internal/dashboard"
	"totals-tracker/internal/ledger"
	"totals-tracker/internal/logging"
	"totals-tracker/internal/metrics"
	"totals-tracker/internal/notify"
)

func buildLedgerStore(cfg config.Config, logger *slog.Logger) (ledger.Store, error) {
	if cfg.Ledger.DBPath == "" {
		return ledger.NewMemoryStore(), nil
	}
	store, err := ledger.NewSQLiteStore(cfg.Ledger.DBPath)
	if err != nil {
		return nil, err
	}
	logging.Info(logger, "bet ledger persisted to sqlite", "path", cfg.Ledger.DBPath)
	return store, nil
}

// buildNotifier prefers Telegram and falls back to logging alerts.
func buildNotifier(cfg config.Config, logger *slog.Logger, recorder *metrics.Recorder) notify.Notifier {
	if !cfg.Telegram.Enabled() {
		logging.Info(logger, "telegram not configured, alerts will be logged")
		return notify.LogNotifier{Logger: logger}
	}
	tg, err := notify.NewTelegram(notify.TelegramConfig{
		BaseURL: cfg.Telegram.BaseURL,
		Token:   cfg.Telegram.Token,
		ChatID:  cfg.Telegram.ChatID,
		Metrics: recorder,
	})
	if err != nil {
		logging.Warn(logger, "telegram setup failed, alerts will be logged", "error", err)
		return notify.LogNotifier{Logger: logger}
	}
	return tg
}

// buildBroadcaster returns the hub, fanned out to Redis when configured. The
// returned closer is nil when no Redis publisher was created.
func buildBroadcaster(cfg config.Config, hub *dashboard.Hub, logger *slog.Logger, recorder *metrics.Recorder) (dashboard.Broadcaster, io.Closer) {
	if cfg.Redis.URL == "" {
		return hub, nil
	}
	pub, err := dashboard.NewRedisPublisher(cfg.Redis.URL, cfg.Redis.Channel, recorder)
	if err != nil {
		logging.Warn(logger, "redis publisher disabled", "error", err)
		return hub, nil
	}
	logging.Info(logger, "publishing snapshots to redis", "channel", pub.Channel())
	return dashboard.Fanout{hub, pub}, pub
}

// originChecker accepts requests without an Origin header and those whose
// origin is listed. A wildcard or empty list accepts everything.
func originChecker(allowed []string) func(*http.Request) bool {
	if len(allowed) == 0 {
		return nil
	}
	set := make(map[string]struct{}, len(allowed))
	for _, o := range allowed {
		if o == "*" {
			return nil
		}
		set[strings.TrimRight(o, "/")] = struct{}{}
	}
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" {
			return true
		}
		_, ok := set[strings.TrimRight(origin, "/")]
		return ok
	}
}
