package gateway

import (
	"context"
	"errors"
	"fmt"
	"time"

	domaingames "totals-tracker/internal/domain/games"
	"totals-tracker/internal/logging"
	"totals-tracker/internal/providers"
	"totals-tracker/internal/timeutil"
)

// InitializeTodaysGames rebuilds today's schedule unless the cached one is
// still fresh. Each league contributes games with a target-book line plus
// games already live. League failures are logged and skipped; the schedule
// is committed with whatever succeeded and the failures are returned joined.
// An unsupported endpoint is not a failure.
func (g *Gateway) InitializeTodaysGames(ctx context.Context) error {
	logger := logging.FromContext(ctx, g.logger)
	if !g.cache.ShouldRefreshSchedule() {
		logging.Info(logger, "using cached schedule")
		return nil
	}

	sports := g.GetAllBasketballSports(ctx)
	from, to := timeutil.DayBounds(g.now(), g.cfg.Location)

	var (
		schedule []domaingames.ScheduledGame
		seen     = make(map[string]struct{})
		errs     []error
	)

	for _, sport := range sports {
		if err := ctx.Err(); err != nil {
			return err
		}

		games, err := g.leagueSchedule(ctx, sport, from, to)
		if err != nil {
			if providers.IsUnsupported(err) {
				logging.Info(logger, "league not supported, skipping", logging.FieldSport, sport)
				continue
			}
			logging.Error(logger, "league schedule fetch failed", err, logging.FieldSport, sport)
			errs = append(errs, fmt.Errorf("%s: %w", sport, err))
			continue
		}

		for _, sg := range games {
			if _, dup := seen[sg.GameID]; dup {
				continue
			}
			seen[sg.GameID] = struct{}{}
			schedule = append(schedule, sg)
		}
	}

	g.cache.SetTodaysSchedule(schedule)
	logging.Info(logger, "initialized today's schedule",
		logging.FieldCount, len(schedule),
		logging.FieldRequestCount, g.RequestCount(),
	)
	return errors.Join(errs...)
}

func (g *Gateway) leagueSchedule(ctx context.Context, sport string, from, to time.Time) ([]domaingames.ScheduledGame, error) {
	logger := logging.FromContext(ctx, g.logger)

	q := g.oddsQuery(sport)
	q.CommenceFrom = from
	q.CommenceTo = to
	odds, err := g.provider.FetchOdds(ctx, q)
	if err != nil {
		return nil, err
	}
	g.countRequest(ctx, sport, "odds")

	var live []domaingames.Game
	scores, err := g.provider.FetchScores(ctx, sport)
	switch {
	case err == nil:
		g.countRequest(ctx, sport, "scores")
		live = scores
	case providers.IsUnsupported(err):
		logging.Info(logger, "league has no live scores, using odds only", logging.FieldSport, sport)
	default:
		return nil, err
	}

	league := LeagueLabel(sport)
	out := make([]domaingames.ScheduledGame, 0, len(odds)+len(live))
	scheduled := 0
	for _, game := range odds {
		if !game.HasBookmaker(g.cfg.Bookmaker) {
			continue
		}
		out = append(out, scheduleEntry(game, sport, league))
		scheduled++
	}
	liveCount := 0
	for _, game := range live {
		if game.Completed || game.Scores == nil {
			continue
		}
		out = append(out, scheduleEntry(game, sport, league))
		liveCount++
	}

	logging.Info(logger, "league schedule fetched",
		logging.FieldSport, sport,
		"scheduled", scheduled,
		"live", liveCount,
	)
	return out, nil
}

func scheduleEntry(game domaingames.Game, sport, league string) domaingames.ScheduledGame {
	return domaingames.ScheduledGame{
		GameID:    game.ID,
		StartTime: game.CommenceTime,
		Teams:     game.Matchup(),
		League:    league,
		SportKey:  sport,
	}
}
