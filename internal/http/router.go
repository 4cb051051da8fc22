package http

import (
	"log/slog"
	nethttp "net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"totals-tracker/internal/http/handlers"
	"totals-tracker/internal/http/middleware"
	"totals-tracker/internal/metrics"
)

// RouterConfig collects the handlers mounted by NewRouter. Nil handlers leave
// their routes unregistered.
type RouterConfig struct {
	Handler     *handlers.Handler
	Bets        *handlers.BetHandler
	Admin       *handlers.AdminHandler
	Dashboard   nethttp.Handler
	Logger      *slog.Logger
	Metrics     *metrics.Recorder
	CORSOrigins []string
}

// NewRouter registers HTTP routes on a chi router.
func NewRouter(cfg RouterConfig) nethttp.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Logging(cfg.Logger, cfg.Metrics))
	r.Use(chimiddleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: corsOrigins(cfg.CORSOrigins),
		AllowedMethods: []string{"GET", "POST", "PUT", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		ExposedHeaders: []string{"X-Request-ID"},
		MaxAge:         300,
	}))
	r.NotFound(handlers.NotFound)
	r.MethodNotAllowed(handlers.MethodNotAllowed)

	if h := cfg.Handler; h != nil {
		r.Get("/health", h.Health)
		r.Get("/ready", h.Ready)
	}

	r.Route("/api", func(r chi.Router) {
		if h := cfg.Handler; h != nil {
			r.Get("/health", h.Health)
			r.Get("/opportunities", h.Opportunities)
			r.Get("/stats", h.Stats)
			r.Get("/upcoming", h.Upcoming)
			r.Get("/cache/monitoring", h.CacheMonitoring)
		}

		if b := cfg.Bets; b != nil {
			r.Post("/bets", b.CreateBet)
			r.Get("/bets", b.ListBets)
			r.Get("/bets/stats", b.Stats)
			r.Post("/bets/settle", b.Settle)
			r.Get("/bets/{id}", b.GetBet)
			r.Put("/bets/{id}", b.UpdateBet)
			r.Get("/games/{gameID}/bets", b.GameBets)
		}

		if a := cfg.Admin; a != nil {
			r.Post("/admin/cleanup", a.Cleanup)
			r.Post("/admin/schedule/refresh", a.RefreshSchedule)
			r.Post("/admin/check", a.Check)
		}
	})

	if cfg.Dashboard != nil {
		r.Handle("/ws", cfg.Dashboard)
	}
	return r
}

func corsOrigins(origins []string) []string {
	if len(origins) == 0 {
		return []string{"*"}
	}
	return origins
}
