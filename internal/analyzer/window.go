package analyzer

import (
	"regexp"

	domaingames "totals-tracker/internal/domain/games"
	"totals-tracker/internal/timeutil"
)

var clockRe = regexp.MustCompile(`\d+:\d+`)

// InTargetWindow reports whether the game sits in the configured period
// with the clock inside the window around the target mark.
func (a *Analyzer) InTargetWindow(g domaingames.Game) bool {
	if g.Scores == nil || g.Scores.Period != a.cfg.WindowPeriod || g.Scores.TimeRemaining == "" {
		return false
	}
	if !clockRe.MatchString(g.Scores.TimeRemaining) {
		return false
	}
	secs := timeutil.ParseClock(g.Scores.TimeRemaining)
	return secs >= a.cfg.WindowSeconds-a.cfg.WindowToleranceSeconds &&
		secs <= a.cfg.WindowSeconds+a.cfg.WindowToleranceSeconds
}
