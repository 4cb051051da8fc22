package theoddsapi

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"
	"time"

	domaingames "totals-tracker/internal/domain/games"
)

func mapSport(s sportResponse) domaingames.Sport {
	return domaingames.Sport{
		Key:    s.Key,
		Group:  s.Group,
		Title:  s.Title,
		Active: s.Active,
	}
}

func mapEvent(e eventResponse) domaingames.Game {
	g := domaingames.Game{
		ID:         e.ID,
		SportKey:   e.SportKey,
		SportTitle: e.SportTitle,
		HomeTeam:   e.HomeTeam,
		AwayTeam:   e.AwayTeam,
		Completed:  e.Completed,
		Scores:     mapScores(e.Scores, e.HomeTeam, e.AwayTeam),
	}
	if t, err := time.Parse(time.RFC3339, e.CommenceTime); err == nil {
		g.CommenceTime = t
	}
	if len(e.Bookmakers) > 0 {
		g.Bookmakers = make([]domaingames.Bookmaker, 0, len(e.Bookmakers))
		for _, b := range e.Bookmakers {
			g.Bookmakers = append(g.Bookmakers, mapBookmaker(b))
		}
	}
	return g
}

// mapScores decodes either the per-game object or the per-team list. A null,
// empty or undecodable payload means no score data.
func mapScores(raw json.RawMessage, home, away string) *domaingames.Scores {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return nil
	}

	switch raw[0] {
	case '{':
		var live liveScoreResponse
		if err := json.Unmarshal(raw, &live); err != nil {
			return nil
		}
		return &domaingames.Scores{
			Home:          live.HomeScore,
			Away:          live.AwayScore,
			Period:        live.Period,
			TimeRemaining: strings.TrimSpace(live.TimeRemaining),
		}
	case '[':
		var teams []teamScoreResponse
		if err := json.Unmarshal(raw, &teams); err != nil || len(teams) == 0 {
			return nil
		}
		scores := &domaingames.Scores{}
		for _, ts := range teams {
			points, err := strconv.Atoi(strings.TrimSpace(ts.Score))
			if err != nil {
				continue
			}
			switch ts.Name {
			case home:
				scores.Home = points
			case away:
				scores.Away = points
			}
		}
		return scores
	default:
		return nil
	}
}

func mapBookmaker(b bookmakerResponse) domaingames.Bookmaker {
	out := domaingames.Bookmaker{Key: b.Key, Title: b.Title}
	for _, m := range b.Markets {
		market := domaingames.Market{Key: m.Key}
		for _, o := range m.Outcomes {
			market.Outcomes = append(market.Outcomes, domaingames.Outcome{
				Name:  o.Name,
				Price: o.Price,
				Point: o.Point,
			})
		}
		out.Markets = append(out.Markets, market)
	}
	return out
}
