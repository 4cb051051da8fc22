package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"totals-tracker/internal/ledger"
	"totals-tracker/internal/logging"
)

// BetHandler exposes the bet ledger.
type BetHandler struct {
	svc    *ledger.Service
	logger *slog.Logger
}

// NewBetHandler constructs a BetHandler.
func NewBetHandler(svc *ledger.Service, logger *slog.Logger) *BetHandler {
	return &BetHandler{svc: svc, logger: logger}
}

// SettleRequest carries final scores for auto-settlement.
type SettleRequest struct {
	Scores []ledger.FinalScore `json:"scores"`
}

// CreateBet records a new pending bet.
func (h *BetHandler) CreateBet(w http.ResponseWriter, r *http.Request) {
	logger := loggerFromContext(r, h.logger)
	var in ledger.BetInput
	if err := decodeJSON(w, r, &in); err != nil {
		writeError(w, r, http.StatusBadRequest, "invalid request body", logger)
		return
	}
	bet, err := h.svc.AddBet(r.Context(), in)
	if err != nil {
		h.writeLedgerError(w, r, err, "failed to place bet")
		return
	}
	writeJSON(w, http.StatusCreated, bet, logger)
}

// ListBets returns every bet, newest first.
func (h *BetHandler) ListBets(w http.ResponseWriter, r *http.Request) {
	bets, err := h.svc.Bets(r.Context())
	if err != nil {
		h.writeLedgerError(w, r, err, "failed to fetch bets")
		return
	}
	writeJSON(w, http.StatusOK, bets, loggerFromContext(r, h.logger))
}

// GetBet returns a single bet or 404.
func (h *BetHandler) GetBet(w http.ResponseWriter, r *http.Request) {
	bet, ok, err := h.svc.Bet(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.writeLedgerError(w, r, err, "failed to fetch bet")
		return
	}
	if !ok {
		writeError(w, r, http.StatusNotFound, "Bet not found", h.logger)
		return
	}
	writeJSON(w, http.StatusOK, bet, loggerFromContext(r, h.logger))
}

// UpdateBet applies a partial update; unknown ids return 404.
func (h *BetHandler) UpdateBet(w http.ResponseWriter, r *http.Request) {
	logger := loggerFromContext(r, h.logger)
	var patch ledger.BetPatch
	if err := decodeJSON(w, r, &patch); err != nil {
		writeError(w, r, http.StatusBadRequest, "invalid request body", logger)
		return
	}
	bet, err := h.svc.UpdateBet(r.Context(), chi.URLParam(r, "id"), patch)
	if err != nil {
		h.writeLedgerError(w, r, err, "failed to update bet")
		return
	}
	if bet == nil {
		writeError(w, r, http.StatusNotFound, "Bet not found", logger)
		return
	}
	writeJSON(w, http.StatusOK, bet, logger)
}

// Stats returns ledger aggregates.
func (h *BetHandler) Stats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.svc.Stats(r.Context())
	if err != nil {
		h.writeLedgerError(w, r, err, "failed to fetch betting stats")
		return
	}
	writeJSON(w, http.StatusOK, stats, loggerFromContext(r, h.logger))
}

// GameBets lists bets placed on one game.
func (h *BetHandler) GameBets(w http.ResponseWriter, r *http.Request) {
	bets, err := h.svc.BetsByGame(r.Context(), chi.URLParam(r, "gameID"))
	if err != nil {
		h.writeLedgerError(w, r, err, "failed to fetch bets")
		return
	}
	writeJSON(w, http.StatusOK, bets, loggerFromContext(r, h.logger))
}

// Settle settles pending bets against the posted final scores.
func (h *BetHandler) Settle(w http.ResponseWriter, r *http.Request) {
	logger := loggerFromContext(r, h.logger)
	var req SettleRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, "invalid request body", logger)
		return
	}
	if len(req.Scores) == 0 {
		writeError(w, r, http.StatusBadRequest, "scores are required", logger)
		return
	}
	settled, err := h.svc.AutoSettle(r.Context(), req.Scores)
	if err != nil && settled == 0 {
		h.writeLedgerError(w, r, err, "failed to settle bets")
		return
	}
	if err != nil {
		logging.Warn(logger, "partial settlement", "error", err, logging.FieldCount, settled)
	}
	writeJSON(w, http.StatusOK, map[string]int{"settled": settled}, logger)
}

func (h *BetHandler) writeLedgerError(w http.ResponseWriter, r *http.Request, err error, fallback string) {
	logger := loggerFromContext(r, h.logger)
	switch {
	case errors.Is(err, ledger.ErrReadOnly):
		writeError(w, r, http.StatusForbidden, err.Error(), logger)
	case errors.Is(err, ledger.ErrInvalidBet):
		writeError(w, r, http.StatusBadRequest, err.Error(), logger)
	default:
		logging.Error(logger, fallback, err)
		writeError(w, r, http.StatusInternalServerError, fallback, logger)
	}
}
