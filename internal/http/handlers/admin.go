package handlers

import (
	"context"
	"crypto/subtle"
	"log/slog"
	"net/http"

	"totals-tracker/internal/http/requestutil"
	"totals-tracker/internal/logging"
)

// Jobs are the scheduler operations that can be triggered by hand.
type Jobs interface {
	RefreshSchedule(ctx context.Context) error
	CheckNow(ctx context.Context) bool
	Cleanup() int
}

// AdminHandler exposes admin-only job triggers.
type AdminHandler struct {
	jobs   Jobs
	token  string
	logger *slog.Logger
}

// NewAdminHandler constructs an AdminHandler.
func NewAdminHandler(jobs Jobs, token string, logger *slog.Logger) *AdminHandler {
	return &AdminHandler{
		jobs:   jobs,
		token:  token,
		logger: logger,
	}
}

// Cleanup purges stale cache entries.
func (h *AdminHandler) Cleanup(w http.ResponseWriter, r *http.Request) {
	if !h.guard(w, r) {
		return
	}
	removed := h.jobs.Cleanup()
	writeJSON(w, http.StatusOK, map[string]any{"status": "ok", "removed": removed}, loggerFromContext(r, h.logger))
}

// RefreshSchedule rebuilds today's schedule. A partial failure still reports
// the error with 502.
func (h *AdminHandler) RefreshSchedule(w http.ResponseWriter, r *http.Request) {
	if !h.guard(w, r) {
		return
	}
	logger := loggerFromContext(r, h.logger)
	if err := h.jobs.RefreshSchedule(r.Context()); err != nil {
		logging.Warn(logger, "admin schedule refresh failed", "error", err)
		writeError(w, r, http.StatusBadGateway, "schedule refresh failed", logger)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"}, logger)
}

// Check runs one monitoring pass outside the regular cadence.
func (h *AdminHandler) Check(w http.ResponseWriter, r *http.Request) {
	if !h.guard(w, r) {
		return
	}
	logger := loggerFromContext(r, h.logger)
	if !h.jobs.CheckNow(r.Context()) {
		writeError(w, r, http.StatusConflict, "monitoring pass already running", logger)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"}, logger)
}

func (h *AdminHandler) guard(w http.ResponseWriter, r *http.Request) bool {
	if !h.authorize(r) {
		logging.Warn(h.logger, "admin unauthorized",
			slog.String(logging.FieldPath, r.URL.Path),
			slog.String("client_ip", requestutil.ClientIP(r)),
		)
		writeError(w, r, http.StatusUnauthorized, "unauthorized", h.logger)
		return false
	}
	if h.jobs == nil {
		writeError(w, r, http.StatusServiceUnavailable, "scheduler not configured", h.logger)
		return false
	}
	return true
}

func (h *AdminHandler) authorize(r *http.Request) bool {
	if h.token == "" {
		return false
	}
	got := requestutil.BearerToken(r)
	return subtle.ConstantTimeCompare([]byte(got), []byte(h.token)) == 1
}
