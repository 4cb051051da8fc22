package analyzer

import (
	"fmt"
	"math"
	"strconv"
	"time"

	domaingames "totals-tracker/internal/domain/games"
	"totals-tracker/internal/domain/opportunities"
	"totals-tracker/internal/timeutil"
)

// Analyzer turns a live game and its posted totals into betting recommendations.
// It holds no mutable state.
type Analyzer struct {
	cfg Config
	now func() time.Time
}

// New constructs an Analyzer. Zero config fields take their defaults and a
// nil clock uses time.Now.
func New(cfg Config, now func() time.Time) *Analyzer {
	if now == nil {
		now = time.Now
	}
	return &Analyzer{cfg: cfg.withDefaults(), now: now}
}

// Config returns the effective configuration.
func (a *Analyzer) Config() Config {
	return a.cfg
}

// ProjectedTotal extrapolates the final combined score.
func (a *Analyzer) ProjectedTotal(home, away int) float64 {
	return float64(home+away) / a.cfg.ProjectionDivisor
}

// ScoringPace classifies points per elapsed minute. An empty clock, or a
// clock leaving no elapsed time, is treated as average.
func (a *Analyzer) ScoringPace(total, period int, clock string) opportunities.Pace {
	if clock == "" {
		return opportunities.PaceAverage
	}
	remaining := timeutil.ParseClock(clock)
	elapsed := (period-1)*a.cfg.QuarterSeconds + (a.cfg.QuarterSeconds - remaining)
	if elapsed <= 0 {
		return opportunities.PaceAverage
	}
	pace := float64(total) / (float64(elapsed) / 60)
	switch {
	case pace > a.cfg.HighPace:
		return opportunities.PaceHigh
	case pace < a.cfg.LowPace:
		return opportunities.PaceLow
	default:
		return opportunities.PaceAverage
	}
}

// Confidence scores a recommendation from its edge, the scoring pace and
// the seconds left in the period.
func (a *Analyzer) Confidence(edge float64, action opportunities.Action, pace opportunities.Pace, remainingSeconds int) int {
	confidence := a.cfg.BaseConfidence
	for _, bucket := range a.cfg.EdgeBuckets {
		if edge >= bucket.MinEdge {
			confidence += bucket.Bonus
			break
		}
	}

	switch {
	case action == opportunities.ActionOver && pace == opportunities.PaceHigh,
		action == opportunities.ActionUnder && pace == opportunities.PaceLow:
		confidence += a.cfg.PaceMatchBonus
	case pace == opportunities.PaceAverage:
		confidence += a.cfg.PaceAverageBonus
	}

	if remainingSeconds > a.cfg.TimeBonusAfterSeconds {
		confidence += a.cfg.TimeBonus
	}
	if confidence > a.cfg.MaxConfidence {
		confidence = a.cfg.MaxConfidence
	}
	return confidence
}

// Analyze returns an opportunity when at least one line clears the edge
// threshold. Games without scores or without lines yield nothing.
func (a *Analyzer) Analyze(g domaingames.Game, lines []domaingames.BettingLine) (*opportunities.Opportunity, bool) {
	if g.Scores == nil || len(lines) == 0 {
		return nil, false
	}

	s := *g.Scores
	total := s.Total()
	projected := a.ProjectedTotal(s.Home, s.Away)
	pace := a.ScoringPace(total, s.Period, s.TimeRemaining)
	remaining := timeutil.ParseClock(s.TimeRemaining)

	recs := make([]opportunities.Recommendation, 0, len(lines))
	for _, line := range lines {
		edge := projected - line.Total
		if math.Abs(edge) < a.cfg.EdgeThreshold {
			continue
		}
		rec := opportunities.Recommendation{
			Line:      line.Total,
			Edge:      math.Abs(edge),
			Reasoning: reasoning(projected, line.Total, edge),
		}
		if edge > 0 {
			rec.Action = opportunities.ActionOver
			rec.Price = line.OverPrice
		} else {
			rec.Action = opportunities.ActionUnder
			rec.Price = line.UnderPrice
		}
		rec.Confidence = a.Confidence(rec.Edge, rec.Action, pace, remaining)
		recs = append(recs, rec)
	}
	if len(recs) == 0 {
		return nil, false
	}

	var (
		sum     int
		maxEdge float64
	)
	for _, r := range recs {
		sum += r.Confidence
		if r.Edge > maxEdge {
			maxEdge = r.Edge
		}
	}

	return &opportunities.Opportunity{
		GameID:   g.ID,
		HomeTeam: g.HomeTeam,
		AwayTeam: g.AwayTeam,
		CurrentScore: opportunities.Score{
			Home:  s.Home,
			Away:  s.Away,
			Total: total,
		},
		CalculatedTotal: projected,
		TimeRemaining:   s.TimeRemaining,
		Period:          s.Period,
		Lines:           append([]domaingames.BettingLine(nil), lines...),
		Recommendations: recs,
		Confidence:      float64(sum) / float64(len(recs)),
		Metadata: opportunities.Metadata{
			ScoringPace: pace,
			Edge:        maxEdge,
			Timestamp:   a.now().UTC(),
		},
	}, true
}

func reasoning(projected, line, edge float64) string {
	sign := ""
	if edge > 0 {
		sign = "+"
	}
	return fmt.Sprintf("Calculated total: %.1f vs Line: %s (%s%.1f edge)",
		projected, strconv.FormatFloat(line, 'f', -1, 64), sign, edge)
}
