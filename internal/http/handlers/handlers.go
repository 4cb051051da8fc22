package handlers

import (
	"log/slog"
	"net/http"
	"time"

	"totals-tracker/internal/cache"
	domaingames "totals-tracker/internal/domain/games"
	"totals-tracker/internal/domain/opportunities"
	"totals-tracker/internal/scheduler"
)

type nowFunc func() time.Time

// GameView is the read side of the odds gateway.
type GameView interface {
	RequestCount() int64
	CacheStats() cache.Stats
	UpcomingGames() []domaingames.ScheduledGame
	GamesToMonitor() []cache.CachedGame
}

// OpportunityView exposes the latest monitoring snapshot.
type OpportunityView interface {
	Opportunities() []opportunities.Opportunity
}

// StatsResponse is the payload for GET /api/stats.
type StatsResponse struct {
	APIRequests   int64       `json:"apiRequests"`
	Cache         cache.Stats `json:"cache"`
	UptimeSeconds float64     `json:"uptimeSeconds"`
	Timestamp     time.Time   `json:"timestamp"`
}

// Handler serves health, readiness and the dashboard read endpoints.
type Handler struct {
	games    GameView
	opps     OpportunityView
	logger   *slog.Logger
	now      nowFunc
	started  time.Time
	statusFn func() scheduler.Status
}

// NewHandler constructs a Handler with defaults.
func NewHandler(games GameView, opps OpportunityView, logger *slog.Logger, statusFn func() scheduler.Status) *Handler {
	now := time.Now
	return &Handler{
		games:    games,
		opps:     opps,
		logger:   logger,
		now:      now,
		started:  now(),
		statusFn: statusFn,
	}
}

func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	if err := r.Context().Err(); err != nil {
		writeError(w, r, http.StatusServiceUnavailable, "shutting down", h.logger)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"status":    "ok",
		"timestamp": h.now().UTC(),
	}, h.logger)
}

// Ready reports readiness for traffic once the daily schedule has loaded.
func (h *Handler) Ready(w http.ResponseWriter, r *http.Request) {
	if h.statusFn == nil {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ready"}, h.logger)
		return
	}
	status := h.statusFn()
	if status.IsReady() {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ready"}, h.logger)
		return
	}
	msg := status.LastError
	if msg == "" {
		msg = "not ready"
	}
	writeError(w, r, http.StatusServiceUnavailable, msg, h.logger)
}

// Opportunities returns the snapshot from the latest monitoring pass.
func (h *Handler) Opportunities(w http.ResponseWriter, r *http.Request) {
	list := []opportunities.Opportunity{}
	if h.opps != nil {
		if current := h.opps.Opportunities(); current != nil {
			list = current
		}
	}
	writeJSON(w, http.StatusOK, list, loggerFromContext(r, h.logger))
}

// Stats reports upstream usage, cache counts and uptime.
func (h *Handler) Stats(w http.ResponseWriter, r *http.Request) {
	if h.games == nil {
		writeError(w, r, http.StatusServiceUnavailable, "gateway not configured", h.logger)
		return
	}
	now := h.now()
	writeJSON(w, http.StatusOK, StatsResponse{
		APIRequests:   h.games.RequestCount(),
		Cache:         h.games.CacheStats(),
		UptimeSeconds: now.Sub(h.started).Seconds(),
		Timestamp:     now.UTC(),
	}, loggerFromContext(r, h.logger))
}

// Upcoming returns today's cached schedule.
func (h *Handler) Upcoming(w http.ResponseWriter, r *http.Request) {
	if h.games == nil {
		writeError(w, r, http.StatusServiceUnavailable, "gateway not configured", h.logger)
		return
	}
	writeJSON(w, http.StatusOK, h.games.UpcomingGames(), loggerFromContext(r, h.logger))
}

// CacheMonitoring lists live games whose next check is due.
func (h *Handler) CacheMonitoring(w http.ResponseWriter, r *http.Request) {
	if h.games == nil {
		writeError(w, r, http.StatusServiceUnavailable, "gateway not configured", h.logger)
		return
	}
	writeJSON(w, http.StatusOK, h.games.GamesToMonitor(), loggerFromContext(r, h.logger))
}

// NotFound writes the JSON 404 body.
func NotFound(w http.ResponseWriter, r *http.Request) {
	writeError(w, r, http.StatusNotFound, "not found", nil)
}

// MethodNotAllowed writes the JSON 405 body.
func MethodNotAllowed(w http.ResponseWriter, r *http.Request) {
	writeError(w, r, http.StatusMethodNotAllowed, "method not allowed", nil)
}
