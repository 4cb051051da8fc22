package cache

import (
	"time"

	domaingames "totals-tracker/internal/domain/games"
)

// Policy holds the freshness windows and polling cadence used by GameCache.
type Policy struct {
	// ScheduleTTL bounds how long today's schedule stays fresh.
	ScheduleTTL time.Duration
	// LiveTTL is the freshness window for a game that is being monitored.
	LiveTTL time.Duration
	// DormantTTL is the freshness window for games that are not live.
	DormantTTL time.Duration
	// Retention is how long an entry survives without updates before cleanup.
	Retention time.Duration

	NoScoreInterval    time.Duration
	Period3Interval    time.Duration
	Period2or4Interval time.Duration
	OtherInterval      time.Duration
}

// DefaultPolicy returns the standard cadence.
func DefaultPolicy() Policy {
	return Policy{
		ScheduleTTL:        6 * time.Hour,
		LiveTTL:            30 * time.Second,
		DormantTTL:         6 * time.Hour,
		Retention:          24 * time.Hour,
		NoScoreInterval:    5 * time.Minute,
		Period3Interval:    30 * time.Second,
		Period2or4Interval: 2 * time.Minute,
		OtherInterval:      time.Minute,
	}
}

// withDefaults fills zero fields from DefaultPolicy.
func (p Policy) withDefaults() Policy {
	def := DefaultPolicy()
	if p.ScheduleTTL <= 0 {
		p.ScheduleTTL = def.ScheduleTTL
	}
	if p.LiveTTL <= 0 {
		p.LiveTTL = def.LiveTTL
	}
	if p.DormantTTL <= 0 {
		p.DormantTTL = def.DormantTTL
	}
	if p.Retention <= 0 {
		p.Retention = def.Retention
	}
	if p.NoScoreInterval <= 0 {
		p.NoScoreInterval = def.NoScoreInterval
	}
	if p.Period3Interval <= 0 {
		p.Period3Interval = def.Period3Interval
	}
	if p.Period2or4Interval <= 0 {
		p.Period2or4Interval = def.Period2or4Interval
	}
	if p.OtherInterval <= 0 {
		p.OtherInterval = def.OtherInterval
	}
	return p
}

// CheckInterval maps a game's phase to its next polling delay.
func (p Policy) CheckInterval(g domaingames.Game) time.Duration {
	if g.Scores == nil {
		return p.NoScoreInterval
	}
	switch g.Scores.Period {
	case 3:
		return p.Period3Interval
	case 2, 4:
		return p.Period2or4Interval
	default:
		return p.OtherInterval
	}
}

func shouldMonitor(g domaingames.Game) bool {
	return g.Scores != nil && g.Scores.Period != 0
}
