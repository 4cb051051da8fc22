package gateway

import (
	"context"

	domaingames "totals-tracker/internal/domain/games"
	"totals-tracker/internal/logging"
	"totals-tracker/internal/providers"
)

// scoresResult memoizes one league's scores for the duration of a single pass.
type scoresResult struct {
	games       []domaingames.Game
	unsupported bool
	err         error
}

// GetActiveGames refreshes scheduled games that started up to ActiveBefore
// ago or start within ActiveAfter, and returns the live ones the target book
// has a line on. Games the cache still considers fresh are skipped and not
// returned. Per-game failures are logged and skipped.
func (g *Gateway) GetActiveGames(ctx context.Context) []domaingames.Game {
	logger := logging.FromContext(ctx, g.logger)
	now := g.now()

	candidates := make([]domaingames.ScheduledGame, 0)
	for _, sg := range g.cache.TodaysSchedule() {
		diff := sg.StartTime.Sub(now)
		if diff <= g.cfg.ActiveAfter && diff >= -g.cfg.ActiveBefore {
			candidates = append(candidates, sg)
		}
	}
	logging.Debug(logger, "checking scheduled games", logging.FieldCount, len(candidates))

	scoresBySport := make(map[string]scoresResult)
	active := make([]domaingames.Game, 0)
	inWindow := 0

	for _, sg := range candidates {
		if ctx.Err() != nil {
			break
		}
		if !g.cache.ShouldUpdateGame(sg.GameID) {
			continue
		}

		res, ok := scoresBySport[sg.SportKey]
		if !ok {
			res = g.fetchScores(ctx, sg.SportKey)
			scoresBySport[sg.SportKey] = res
		}
		if res.unsupported {
			continue
		}
		if res.err != nil {
			logging.Warn(logger, "live scores unavailable", logging.FieldSport, sg.SportKey, logging.FieldGameID, sg.GameID, "error", res.err)
			continue
		}

		live, found := findGame(res.games, sg.GameID)
		if !found || live.Scores == nil || live.Completed {
			continue
		}

		game, ok := g.attachTargetBook(ctx, sg, live)
		if !ok {
			continue
		}

		g.cache.UpdateGame(sg.GameID, game)
		active = append(active, game)

		if g.IsTargetWindow(game) {
			inWindow++
			logging.Info(logger, "game in target window",
				logging.FieldGameID, game.ID,
				"teams", game.Matchup(),
				logging.FieldPeriod, game.Scores.Period,
				logging.FieldClock, game.Scores.TimeRemaining,
			)
		}
	}

	logging.Info(logger, "active games refreshed",
		logging.FieldCount, len(active),
		"in_window", inWindow,
		logging.FieldRequestCount, g.RequestCount(),
	)
	return active
}

func (g *Gateway) fetchScores(ctx context.Context, sport string) scoresResult {
	games, err := g.provider.FetchScores(ctx, sport)
	if err != nil {
		if providers.IsUnsupported(err) {
			logging.Info(logging.FromContext(ctx, g.logger), "league has no live scores, skipping", logging.FieldSport, sport)
			return scoresResult{unsupported: true}
		}
		return scoresResult{err: err}
	}
	g.countRequest(ctx, sport, "scores")
	return scoresResult{games: games}
}

// attachTargetBook fetches the single-event odds and merges the bookmakers
// into the live snapshot. It reports false when the target book has no line.
func (g *Gateway) attachTargetBook(ctx context.Context, sg domaingames.ScheduledGame, live domaingames.Game) (domaingames.Game, bool) {
	logger := logging.FromContext(ctx, g.logger)

	q := g.oddsQuery(sg.SportKey)
	q.EventIDs = []string{sg.GameID}
	odds, err := g.provider.FetchOdds(ctx, q)
	if err != nil {
		if providers.IsUnsupported(err) {
			logging.Info(logger, "league does not support live odds, skipping", logging.FieldSport, sg.SportKey, logging.FieldGameID, sg.GameID)
		} else {
			logging.Warn(logger, "live odds fetch failed", logging.FieldGameID, sg.GameID, "error", err)
		}
		return domaingames.Game{}, false
	}
	g.countRequest(ctx, sg.SportKey, "odds")

	if len(odds) == 0 || !odds[0].HasBookmaker(g.cfg.Bookmaker) {
		logging.Debug(logger, "no target book line", logging.FieldGameID, sg.GameID, "teams", sg.Teams)
		return domaingames.Game{}, false
	}

	live.Bookmakers = odds[0].Bookmakers
	if live.SportKey == "" {
		live.SportKey = sg.SportKey
	}
	return live, true
}

// GetTargetLines returns the target book's Over/Under totals line for a game.
// Any absence, and any upstream failure, yields an empty list.
func (g *Gateway) GetTargetLines(ctx context.Context, sportKey, gameID string) []domaingames.BettingLine {
	q := g.oddsQuery(sportKey)
	q.EventIDs = []string{gameID}
	odds, err := g.provider.FetchOdds(ctx, q)
	if err != nil {
		logging.Warn(logging.FromContext(ctx, g.logger), "target line fetch failed",
			logging.FieldSport, sportKey,
			logging.FieldGameID, gameID,
			"error", err,
		)
		return []domaingames.BettingLine{}
	}
	g.countRequest(ctx, sportKey, "odds")

	if len(odds) == 0 {
		return []domaingames.BettingLine{}
	}
	if line, ok := totalsLine(odds[0], g.cfg.Bookmaker); ok {
		return []domaingames.BettingLine{line}
	}
	return []domaingames.BettingLine{}
}

func totalsLine(game domaingames.Game, bookmaker string) (domaingames.BettingLine, bool) {
	book, ok := game.Bookmaker(bookmaker)
	if !ok {
		return domaingames.BettingLine{}, false
	}
	market, ok := book.Market(domaingames.MarketTotals)
	if !ok {
		return domaingames.BettingLine{}, false
	}
	over, okOver := market.Outcome(domaingames.OutcomeOver)
	under, okUnder := market.Outcome(domaingames.OutcomeUnder)
	if !okOver || !okUnder || over.Point == nil {
		return domaingames.BettingLine{}, false
	}

	name := book.Title
	if name == "" {
		name = book.Key
	}
	return domaingames.BettingLine{
		Bookmaker:  name,
		Total:      *over.Point,
		OverPrice:  over.Price,
		UnderPrice: under.Price,
	}, true
}

func findGame(games []domaingames.Game, id string) (domaingames.Game, bool) {
	for _, g := range games {
		if g.ID == id {
			return g, true
		}
	}
	return domaingames.Game{}, false
}
