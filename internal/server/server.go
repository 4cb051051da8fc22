package server

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"totals-tracker/internal/analyzer"
	"totals-tracker/internal/cache"
	"totals-tracker/internal/config"
	"totals-tracker/internal/dashboard"
	"totals-tracker/internal/gateway"
	httpserver "totals-tracker/internal/http"
	"totals-tracker/internal/http/handlers"
	"totals-tracker/internal/ledger"
	"totals-tracker/internal/logging"
	"totals-tracker/internal/metrics"
	"totals-tracker/internal/monitor"
	"totals-tracker/internal/providers"
	"totals-tracker/internal/scheduler"
)

var metricsSetup = metrics.Setup

type Server struct {
	cfg           config.Config
	logger        *slog.Logger
	metrics       *metrics.Recorder
	gateway       *gateway.Gateway
	monitor       *monitor.Monitor
	ledger        *ledger.Service
	hub           *dashboard.Hub
	httpServer    httpServer
	metricsServer httpServer
	scheduler     Scheduler
	metricsStop   func(context.Context) error
	// closers release stores and connections after the HTTP server stops.
	closers []namedCloser
}

type namedCloser struct {
	name   string
	closer io.Closer
}

// New constructs a server with the configured provider and collaborators.
func New(cfg config.Config, logger *slog.Logger) (*Server, error) {
	return newServerWithMetrics(cfg, logger, nil, nil)
}

func newServerWithProvider(cfg config.Config, logger *slog.Logger, provider providers.DataProvider) (*Server, error) {
	return newServerWithMetrics(cfg, logger, provider, nil)
}

func newServerWithMetrics(cfg config.Config, logger *slog.Logger, provider providers.DataProvider, recorder *metrics.Recorder) (*Server, error) {
	if logger == nil {
		logger = logging.NewLogger(logging.Config{})
	}
	recorder, metricsSrv, metricsShutdown := buildMetrics(cfg, logger, recorder)

	if provider == nil {
		provider = newProviderFactory(logger, recorder).build(cfg)
	} else {
		provider = providers.NewRetryingProvider(provider, logger, recorder, normalizeProviderName(cfg.Provider, provider), cfg.Odds.RetryAttempts, cfg.Odds.RetryBackoff)
	}

	loc, err := cfg.Location()
	if err != nil {
		return nil, err
	}

	an := analyzer.New(analyzerConfig(cfg), nil)
	gw := gateway.New(provider, cache.New(cache.DefaultPolicy(), nil), gateway.Config{
		Bookmaker: cfg.Odds.Bookmaker,
		Regions:   cfg.Odds.Regions,
		Location:  loc,
		InWindow:  an.InTargetWindow,
	}, logger, nil)

	store, err := buildLedgerStore(cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("open bet ledger: %w", err)
	}
	closers := []namedCloser{{name: "ledger store", closer: store}}
	bets := ledger.NewService(store, logger, ledger.Options{ReadOnly: cfg.Ledger.ReadOnly})

	hub := dashboard.NewHub(logger, recorder, originChecker(cfg.CORSOrigins))
	broadcaster, redisCloser := buildBroadcaster(cfg, hub, logger, recorder)
	if redisCloser != nil {
		closers = append(closers, namedCloser{name: "redis publisher", closer: redisCloser})
	}

	mon := monitor.New(gw, an, buildNotifier(cfg, logger, recorder), broadcaster, logger, recorder, monitor.Config{})
	sched, err := scheduler.New(gw, mon, logger, recorder, scheduler.Config{
		Location:         loc,
		DailyRefreshHour: cfg.Schedule.DailyRefreshHour,
		MonitorInterval:  cfg.Schedule.MonitorInterval,
		MonitorStartHour: cfg.Schedule.MonitorStartHour,
		MonitorEndHour:   cfg.Schedule.MonitorEndHour,
	})
	if err != nil {
		_ = store.Close()
		return nil, err
	}

	httpSrv := buildHTTPServer(cfg, httpserver.RouterConfig{
		Handler:   handlers.NewHandler(gw, mon, logger, sched.Status),
		Bets:      handlers.NewBetHandler(bets, logger),
		Admin:     adminHandler(cfg, sched, logger),
		Dashboard: hub,
	}, logger, recorder)

	return &Server{
		cfg:           cfg,
		logger:        logger,
		metrics:       recorder,
		gateway:       gw,
		monitor:       mon,
		ledger:        bets,
		hub:           hub,
		httpServer:    httpSrv,
		metricsServer: metricsSrv,
		scheduler:     sched,
		metricsStop:   metricsShutdown,
		closers:       closers,
	}, nil
}

// newServerWithDeps is used for testing to inject custom components.
func newServerWithDeps(cfg config.Config, logger *slog.Logger, httpSrv httpServer, sched Scheduler) *Server {
	return &Server{
		cfg:        cfg,
		logger:     logger,
		httpServer: httpSrv,
		scheduler:  sched,
	}
}

func analyzerConfig(cfg config.Config) analyzer.Config {
	ac := analyzer.DefaultConfig()
	if cfg.Analyzer.EdgeThreshold > 0 {
		ac.EdgeThreshold = cfg.Analyzer.EdgeThreshold
	}
	if cfg.Analyzer.ProjectionDivisor > 0 {
		ac.ProjectionDivisor = cfg.Analyzer.ProjectionDivisor
	}
	return ac
}

// adminHandler is only mounted when a token is configured.
func adminHandler(cfg config.Config, jobs handlers.Jobs, logger *slog.Logger) *handlers.AdminHandler {
	if cfg.AdminToken == "" {
		return nil
	}
	return handlers.NewAdminHandler(jobs, cfg.AdminToken, logger)
}

func buildHTTPServer(cfg config.Config, routes httpserver.RouterConfig, logger *slog.Logger, recorder *metrics.Recorder) httpServer {
	routes.Logger = logger
	routes.Metrics = recorder
	routes.CORSOrigins = cfg.CORSOrigins

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      httpserver.NewRouter(routes),
		ReadTimeout:  readTimeout,
		WriteTimeout: writeTimeout,
		IdleTimeout:  idleTimeout,
	}

	return netHTTPServer{srv: srv}
}

// Run starts the scheduler and HTTP server, then waits for context cancellation to shut down gracefully.
func (s *Server) Run(ctx context.Context, stop context.CancelFunc) {
	s.startMetrics()
	s.startServer(stop)
	s.scheduler.Start(ctx)

	<-ctx.Done()
	logging.Info(s.logger, "shutdown signal received")

	s.gracefulShutdown()
}

func (s *Server) startServer(stop context.CancelFunc) {
	logging.Info(s.logger, "http server starting", slog.String("addr", s.httpServer.Addr()))
	launchServer("http", s.httpServer, s.logger, func(err error) {
		if stop != nil {
			stop()
		}
	})
}

func (s *Server) startMetrics() {
	if s.metricsServer == nil {
		return
	}
	logging.Info(s.logger, "metrics server starting", slog.String("addr", s.metricsServer.Addr()))
	launchServer("metrics", s.metricsServer, s.logger, nil)
}

func (s *Server) gracefulShutdown() {
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if s.metricsStop != nil {
		if err := s.metricsStop(shutdownCtx); err != nil {
			logging.Warn(s.logger, "metrics shutdown failed", "error", err)
		}
	}

	if s.metricsServer != nil {
		if err := s.metricsServer.Shutdown(shutdownCtx); err != nil {
			logging.Warn(s.logger, "metrics server shutdown failed", "error", err)
		}
	}

	if err := s.scheduler.Stop(shutdownCtx); err != nil {
		logging.Error(s.logger, "failed to stop scheduler", err)
	}

	// Hijacked websocket connections are not tracked by http.Server.Shutdown.
	if s.hub != nil {
		s.hub.Close()
	}

	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		logging.Error(s.logger, "graceful shutdown failed", err)
	}

	for _, c := range s.closers {
		if err := c.closer.Close(); err != nil {
			logging.Warn(s.logger, "close failed", "component", c.name, "error", err)
		}
	}

	logging.Info(s.logger, "shutdown complete")
}

func buildMetrics(cfg config.Config, logger *slog.Logger, recorder *metrics.Recorder) (*metrics.Recorder, httpServer, func(context.Context) error) {
	if recorder != nil {
		return recorder, nil, nil
	}

	recCfg := metrics.TelemetryConfig{
		Enabled:      cfg.Metrics.Enabled,
		Port:         cfg.Metrics.Port,
		ServiceName:  cfg.Metrics.ServiceName,
		OtlpEndpoint: cfg.Metrics.OtlpEndpoint,
		OtlpInsecure: cfg.Metrics.OtlpInsecure,
	}

	rec, handler, shutdown, err := metricsSetup(context.Background(), recCfg)
	if err != nil {
		logging.Warn(logger, "metrics setup failed, continuing without telemetry", "error", err)
		return metrics.NewRecorder(), nil, nil
	}

	var metricsSrv httpServer
	if handler != nil && recCfg.Enabled {
		metricsSrv = netHTTPServer{
			srv: &http.Server{
				Addr:              ":" + recCfg.Port,
				Handler:           handler,
				ReadHeaderTimeout: readTimeout,
			},
		}
	}

	return rec, metricsSrv, shutdown
}

func launchServer(name string, srv httpServer, logger *slog.Logger, onError func(error)) {
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logging.Warn(logger, name+" server failed", "error", err)
			if onError != nil {
				onError(err)
			}
		}
	}()
}

// Handler exposes the HTTP handler (useful for tests).
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler()
}
