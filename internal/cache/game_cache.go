package cache

import (
	"sync"
	"time"

	domaingames "totals-tracker/internal/domain/games"
)

// CachedGame is a game snapshot plus its polling bookkeeping.
type CachedGame struct {
	Game         domaingames.Game `json:"game"`
	LastUpdated  time.Time        `json:"lastUpdated"`
	IsMonitoring bool             `json:"isMonitoring"`
	// NextCheck is zero when unset.
	NextCheck time.Time `json:"nextCheck,omitempty"`
}

// Stats summarizes the cache contents.
type Stats struct {
	TotalGames        int        `json:"totalGames"`
	ActiveGames       int        `json:"activeGames"`
	ScheduledGames    int        `json:"scheduledGames"`
	LastScheduleFetch *time.Time `json:"lastScheduleFetch"`
}

// GameCache keeps today's schedule and per-game live snapshots in memory.
// It is safe for concurrent use.
type GameCache struct {
	mu                sync.RWMutex
	policy            Policy
	now               func() time.Time
	games             map[string]CachedGame
	schedule          []domaingames.ScheduledGame
	lastScheduleFetch time.Time
}

// New constructs an empty GameCache. A nil clock defaults to time.Now.
func New(policy Policy, now func() time.Time) *GameCache {
	if now == nil {
		now = time.Now
	}
	return &GameCache{
		policy: policy.withDefaults(),
		now:    now,
		games:  make(map[string]CachedGame),
	}
}

// Policy returns the effective policy.
func (c *GameCache) Policy() Policy {
	return c.policy
}

// SetTodaysSchedule replaces the schedule and stamps the fetch time.
func (c *GameCache) SetTodaysSchedule(games []domaingames.ScheduledGame) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.schedule = append([]domaingames.ScheduledGame(nil), games...)
	c.lastScheduleFetch = c.now()
}

// ShouldRefreshSchedule reports whether the schedule was never fetched or is stale.
func (c *GameCache) ShouldRefreshSchedule() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if c.lastScheduleFetch.IsZero() {
		return true
	}
	return c.now().Sub(c.lastScheduleFetch) > c.policy.ScheduleTTL
}

// TodaysSchedule returns a copy of the cached schedule.
func (c *GameCache) TodaysSchedule() []domaingames.ScheduledGame {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return append([]domaingames.ScheduledGame{}, c.schedule...)
}

// UpdateGame upserts a snapshot and recomputes its monitoring state.
func (c *GameCache) UpdateGame(id string, game domaingames.Game) {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	c.games[id] = CachedGame{
		Game:         game,
		LastUpdated:  now,
		IsMonitoring: shouldMonitor(game),
		NextCheck:    now.Add(c.policy.CheckInterval(game)),
	}
}

// Game returns the cached entry for id.
func (c *GameCache) Game(id string) (CachedGame, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	cg, ok := c.games[id]
	return cg, ok
}

// ShouldUpdateGame reports whether the entry for id is missing or stale.
func (c *GameCache) ShouldUpdateGame(id string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()

	cg, ok := c.games[id]
	if !ok {
		return true
	}
	elapsed := c.now().Sub(cg.LastUpdated)
	if cg.IsMonitoring {
		return elapsed > c.policy.LiveTTL
	}
	return elapsed > c.policy.DormantTTL
}

// GamesToMonitor returns live entries whose next check is due.
func (c *GameCache) GamesToMonitor() []CachedGame {
	c.mu.RLock()
	defer c.mu.RUnlock()

	now := c.now()
	result := make([]CachedGame, 0)
	for _, cg := range c.games {
		if !cg.IsMonitoring {
			continue
		}
		if !cg.NextCheck.IsZero() && now.Before(cg.NextCheck) {
			continue
		}
		result = append(result, cg)
	}
	return result
}

// ActiveGamesCount counts entries currently being monitored.
func (c *GameCache) ActiveGamesCount() int {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return c.activeLocked()
}

func (c *GameCache) activeLocked() int {
	n := 0
	for _, cg := range c.games {
		if cg.IsMonitoring {
			n++
		}
	}
	return n
}

// CleanupOldGames drops entries not updated within the retention window and
// returns how many were removed.
func (c *GameCache) CleanupOldGames() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	cutoff := c.now().Add(-c.policy.Retention)
	removed := 0
	for id, cg := range c.games {
		if cg.LastUpdated.Before(cutoff) {
			delete(c.games, id)
			removed++
		}
	}
	return removed
}

// Stats returns counts and the last schedule fetch time.
func (c *GameCache) Stats() Stats {
	c.mu.RLock()
	defer c.mu.RUnlock()

	stats := Stats{
		TotalGames:     len(c.games),
		ActiveGames:    c.activeLocked(),
		ScheduledGames: len(c.schedule),
	}
	if !c.lastScheduleFetch.IsZero() {
		fetched := c.lastScheduleFetch
		stats.LastScheduleFetch = &fetched
	}
	return stats
}
