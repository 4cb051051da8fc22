package gateway

import (
	"context"
	"log/slog"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/singleflight"

	"totals-tracker/internal/cache"
	domaingames "totals-tracker/internal/domain/games"
	"totals-tracker/internal/logging"
	"totals-tracker/internal/providers"
)

const (
	basketballGroup  = "Basketball"
	sportKeyPrefix   = "basketball_"
	defaultBookmaker = "fanduel"
	defaultRegions   = "us"
	oddsFormat       = "american"
)

// FallbackSports is used when sport discovery fails.
var FallbackSports = []string{
	"basketball_nba",
	"basketball_ncaab",
	"basketball_wnba",
	"basketball_euroleague",
	"basketball_nbl",
}

// Config tunes which lines are fetched and which games are considered active.
type Config struct {
	// Bookmaker is the target sportsbook key.
	Bookmaker string
	Regions   string
	// Location defines "today" for the schedule window.
	Location *time.Location
	// ActiveBefore/ActiveAfter bound how long before/after now a scheduled
	// start may be for the game to be polled.
	ActiveBefore time.Duration
	ActiveAfter  time.Duration
	// InWindow decides whether a live game is in the alert window.
	InWindow func(domaingames.Game) bool
}

func (c Config) withDefaults() Config {
	if c.Bookmaker == "" {
		c.Bookmaker = defaultBookmaker
	}
	if c.Regions == "" {
		c.Regions = defaultRegions
	}
	if c.Location == nil {
		c.Location = time.UTC
	}
	if c.ActiveBefore <= 0 {
		c.ActiveBefore = 4 * time.Hour
	}
	if c.ActiveAfter <= 0 {
		c.ActiveAfter = 2 * time.Hour
	}
	return c
}

// Gateway mediates every upstream call and owns the game cache.
type Gateway struct {
	provider providers.DataProvider
	cache    *cache.GameCache
	cfg      Config
	logger   *slog.Logger
	now      func() time.Time

	requests atomic.Int64

	sportsGroup singleflight.Group
	sportsMu    sync.RWMutex
	sports      []string
}

// New constructs a Gateway. A nil cache gets a default one; a nil clock uses time.Now.
func New(provider providers.DataProvider, gameCache *cache.GameCache, cfg Config, logger *slog.Logger, now func() time.Time) *Gateway {
	if now == nil {
		now = time.Now
	}
	if gameCache == nil {
		gameCache = cache.New(cache.DefaultPolicy(), now)
	}
	return &Gateway{
		provider: provider,
		cache:    gameCache,
		cfg:      cfg.withDefaults(),
		logger:   logger,
		now:      now,
	}
}

// LeagueLabel derives the display label from a sport key, e.g. "basketball_nba" -> "NBA".
func LeagueLabel(sportKey string) string {
	return strings.ToUpper(strings.TrimPrefix(sportKey, sportKeyPrefix))
}

// IsTargetWindow reports whether the game is in the alert window.
func (g *Gateway) IsTargetWindow(game domaingames.Game) bool {
	if g.cfg.InWindow == nil {
		return false
	}
	return g.cfg.InWindow(game)
}

// RequestCount returns the number of successful billable upstream calls.
func (g *Gateway) RequestCount() int64 {
	return g.requests.Load()
}

// CacheStats returns the cache summary.
func (g *Gateway) CacheStats() cache.Stats {
	return g.cache.Stats()
}

// CleanupCache purges stale cache entries and returns how many were removed.
func (g *Gateway) CleanupCache() int {
	removed := g.cache.CleanupOldGames()
	logging.Info(g.logger, "cache cleanup", logging.FieldCount, removed)
	return removed
}

// UpcomingGames returns today's cached schedule.
func (g *Gateway) UpcomingGames() []domaingames.ScheduledGame {
	return g.cache.TodaysSchedule()
}

// GamesToMonitor returns cached live games whose next check is due.
func (g *Gateway) GamesToMonitor() []cache.CachedGame {
	return g.cache.GamesToMonitor()
}

// ActiveGamesCount returns how many cached games are live.
func (g *Gateway) ActiveGamesCount() int {
	return g.cache.ActiveGamesCount()
}

func (g *Gateway) countRequest(ctx context.Context, sport, endpoint string) {
	n := g.requests.Add(1)
	logging.Debug(logging.FromContext(ctx, g.logger), "upstream request",
		logging.FieldRequestCount, n,
		logging.FieldSport, sport,
		"endpoint", endpoint,
	)
}

func (g *Gateway) oddsQuery(sport string) providers.OddsQuery {
	return providers.OddsQuery{
		Sport:      sport,
		Regions:    g.cfg.Regions,
		Markets:    domaingames.MarketTotals,
		Bookmakers: g.cfg.Bookmaker,
		OddsFormat: oddsFormat,
	}
}
