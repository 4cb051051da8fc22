package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"totals-tracker/internal/config"
	"totals-tracker/internal/logging"
	"totals-tracker/internal/server"
)

const appVersion = "dev"

func main() {
	if os.Getenv("SKIP_SERVER_RUN") == "1" {
		return
	}
	os.Exit(run())
}

func run() int {
	dotenvErr := config.LoadDotEnv()

	cfg := config.Load()
	logger := logging.NewLogger(logging.Config{
		Level:   cfg.Log.Level,
		Format:  cfg.Log.Format,
		Service: cfg.Metrics.ServiceName,
		Version: appVersion,
	})
	if dotenvErr != nil {
		logging.Warn(logger, "failed to load .env file", "error", dotenvErr)
	}

	if err := cfg.Validate(); err != nil {
		logging.Error(logger, "invalid configuration", err)
		return 1
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	srv, err := server.New(cfg, logger)
	if err != nil {
		logging.Error(logger, "failed to build server", err)
		return 1
	}
	srv.Run(ctx, stop)
	return 0
}
