package monitor

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"totals-tracker/internal/dashboard"
	domaingames "totals-tracker/internal/domain/games"
	"totals-tracker/internal/domain/opportunities"
	"totals-tracker/internal/logging"
	"totals-tracker/internal/metrics"
	"totals-tracker/internal/notify"
)

const (
	defaultSeenLimit  = 100
	defaultSeenRetain = 50
)

// GameSource is the gateway surface a tick needs.
type GameSource interface {
	GetActiveGames(ctx context.Context) []domaingames.Game
	IsTargetWindow(game domaingames.Game) bool
	GetTargetLines(ctx context.Context, sportKey, gameID string) []domaingames.BettingLine
}

// Analyzer turns a live game plus its posted lines into an opportunity.
type Analyzer interface {
	Analyze(game domaingames.Game, lines []domaingames.BettingLine) (*opportunities.Opportunity, bool)
}

// Config bounds the processed-key set.
type Config struct {
	SeenLimit  int
	SeenRetain int
}

// Monitor runs one detection pass per tick. Ticks never overlap; a tick that
// starts while another is running is skipped.
type Monitor struct {
	source      GameSource
	analyzer    Analyzer
	notifier    notify.Notifier
	broadcaster dashboard.Broadcaster
	logger      *slog.Logger
	metrics     *metrics.Recorder
	cfg         Config

	running sync.Mutex

	// seen is touched only while running is held.
	seen      map[string]struct{}
	seenOrder []string

	snapshot atomic.Pointer[[]opportunities.Opportunity]
}

// New wires a Monitor. A nil notifier or broadcaster disables that output.
func New(source GameSource, analyzer Analyzer, notifier notify.Notifier, broadcaster dashboard.Broadcaster, logger *slog.Logger, recorder *metrics.Recorder, cfg Config) *Monitor {
	if cfg.SeenLimit <= 0 {
		cfg.SeenLimit = defaultSeenLimit
	}
	if cfg.SeenRetain <= 0 || cfg.SeenRetain > cfg.SeenLimit {
		cfg.SeenRetain = defaultSeenRetain
		if cfg.SeenRetain > cfg.SeenLimit {
			cfg.SeenRetain = cfg.SeenLimit
		}
	}
	m := &Monitor{
		source:      source,
		analyzer:    analyzer,
		notifier:    notifier,
		broadcaster: broadcaster,
		logger:      logger,
		metrics:     recorder,
		cfg:         cfg,
		seen:        make(map[string]struct{}),
	}
	empty := []opportunities.Opportunity{}
	m.snapshot.Store(&empty)
	return m
}

// CheckGames runs one tick. It reports false when the tick was skipped
// because a previous one is still in progress.
func (m *Monitor) CheckGames(ctx context.Context) bool {
	if !m.running.TryLock() {
		m.metrics.RecordMonitorSkipped()
		logging.Warn(m.logger, "monitor tick skipped, previous tick still running")
		return false
	}
	defer m.running.Unlock()

	start := time.Now()
	logger := logging.FromContext(ctx, m.logger)

	empty := []opportunities.Opportunity{}
	m.snapshot.Store(&empty)

	live := m.source.GetActiveGames(ctx)
	targets := make([]domaingames.Game, 0, len(live))
	for _, g := range live {
		if m.source.IsTargetWindow(g) {
			targets = append(targets, g)
		}
	}
	logging.Info(logger, "checking games",
		"live", len(live),
		"targets", len(targets),
	)

	found := make([]opportunities.Opportunity, 0)
	var tickErr error
	for _, game := range targets {
		if ctx.Err() != nil {
			tickErr = ctx.Err()
			break
		}
		opp, ok := m.analyzeGame(ctx, game)
		if !ok {
			continue
		}
		found = append(found, *opp)
		published := append([]opportunities.Opportunity(nil), found...)
		m.snapshot.Store(&published)
	}

	if m.broadcaster != nil {
		if err := m.broadcaster.Broadcast(ctx, m.Opportunities()); err != nil {
			logging.Warn(logger, "dashboard broadcast failed", "error", err)
			tickErr = err
		}
	}

	m.metrics.RecordMonitorTick(time.Since(start), len(targets), len(found), tickErr)
	logging.Info(logger, "monitor tick complete",
		logging.FieldCount, len(found),
		logging.FieldDurationMS, time.Since(start).Milliseconds(),
	)
	return true
}

func (m *Monitor) analyzeGame(ctx context.Context, game domaingames.Game) (*opportunities.Opportunity, bool) {
	logger := logging.FromContext(ctx, m.logger)
	key := dedupKey(game)
	if _, ok := m.seen[key]; ok {
		return nil, false
	}

	logging.Info(logger, "analyzing game",
		logging.FieldGameID, game.ID,
		"teams", game.Matchup(),
		"key", key,
	)

	lines := m.source.GetTargetLines(ctx, game.SportKey, game.ID)
	if len(lines) == 0 {
		logging.Info(logger, "no target book lines", logging.FieldGameID, game.ID)
		return nil, false
	}

	opp, ok := m.analyzer.Analyze(game, lines)
	if !ok {
		logging.Info(logger, "no opportunity, edge below threshold", logging.FieldGameID, game.ID)
		return nil, false
	}
	for _, rec := range opp.Recommendations {
		logging.Info(logger, "opportunity found",
			logging.FieldGameID, game.ID,
			"action", rec.Action,
			"line", rec.Line,
			"edge", rec.Edge,
			"confidence", rec.Confidence,
		)
	}

	m.sendAlert(ctx, *opp)
	m.markSeen(key)
	return opp, true
}

func (m *Monitor) sendAlert(ctx context.Context, opp opportunities.Opportunity) {
	if m.notifier == nil {
		return
	}
	best, ok := opp.Best()
	if !ok {
		return
	}
	if err := m.notifier.Notify(ctx, notify.FormatAlert(opp, best)); err != nil {
		logging.Error(logging.FromContext(ctx, m.logger), "alert delivery failed", err, logging.FieldGameID, opp.GameID)
	}
}

func (m *Monitor) markSeen(key string) {
	m.seen[key] = struct{}{}
	m.seenOrder = append(m.seenOrder, key)
	if len(m.seenOrder) <= m.cfg.SeenLimit {
		return
	}
	keep := m.seenOrder[len(m.seenOrder)-m.cfg.SeenRetain:]
	m.seen = make(map[string]struct{}, len(keep))
	for _, k := range keep {
		m.seen[k] = struct{}{}
	}
	m.seenOrder = append([]string(nil), keep...)
}

// Opportunities returns a copy of the current tick's snapshot.
func (m *Monitor) Opportunities() []opportunities.Opportunity {
	snap := m.snapshot.Load()
	if snap == nil {
		return []opportunities.Opportunity{}
	}
	return append([]opportunities.Opportunity{}, (*snap)...)
}

// SeenCount returns the size of the processed-key set.
func (m *Monitor) SeenCount() int {
	m.running.Lock()
	defer m.running.Unlock()
	return len(m.seenOrder)
}

func dedupKey(game domaingames.Game) string {
	period, clock := 0, ""
	if game.Scores != nil {
		period, clock = game.Scores.Period, game.Scores.TimeRemaining
	}
	return fmt.Sprintf("%s-%d-%s", game.ID, period, clock)
}
