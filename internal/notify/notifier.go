package notify

import (
	"context"
	"log/slog"

	"totals-tracker/internal/logging"
)

// Notifier delivers a formatted alert message.
type Notifier interface {
	Notify(ctx context.Context, message string) error
}

// LogNotifier writes alerts to the logger. It is used when no chat channel is
// configured.
type LogNotifier struct {
	Logger *slog.Logger
}

func (n LogNotifier) Notify(ctx context.Context, message string) error {
	logging.Info(logging.FromContext(ctx, n.Logger), "betting alert", "message", message)
	return nil
}
