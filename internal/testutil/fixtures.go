package testutil

import (
	"time"

	domaingames "totals-tracker/internal/domain/games"
	"totals-tracker/internal/domain/opportunities"
)

// SampleLiveGame returns an in-progress NBA game with a FanDuel totals line.
func SampleLiveGame(id string, period int, clock string, home, away int, total float64) domaingames.Game {
	return domaingames.Game{
		ID:           id,
		SportKey:     "basketball_nba",
		SportTitle:   "NBA",
		CommenceTime: time.Date(2024, 3, 1, 19, 0, 0, 0, time.UTC),
		HomeTeam:     "Boston Celtics",
		AwayTeam:     "Los Angeles Lakers",
		Scores:       &domaingames.Scores{Home: home, Away: away, Period: period, TimeRemaining: clock},
		Bookmakers:   []domaingames.Bookmaker{SampleBookmaker("fanduel", total)},
	}
}

// SampleBookmaker returns a bookmaker posting a totals market at point.
func SampleBookmaker(key string, point float64) domaingames.Bookmaker {
	over, under := point, point
	return domaingames.Bookmaker{
		Key:   key,
		Title: key,
		Markets: []domaingames.Market{{
			Key: domaingames.MarketTotals,
			Outcomes: []domaingames.Outcome{
				{Name: domaingames.OutcomeOver, Price: -110, Point: &over},
				{Name: domaingames.OutcomeUnder, Price: -110, Point: &under},
			},
		}},
	}
}

// SampleLine returns a FanDuel totals line.
func SampleLine(total float64) domaingames.BettingLine {
	return domaingames.BettingLine{Bookmaker: "FanDuel", Total: total, OverPrice: -110, UnderPrice: -110}
}

// SampleOpportunity returns a single-recommendation opportunity for id.
func SampleOpportunity(id string) opportunities.Opportunity {
	return opportunities.Opportunity{
		GameID:          id,
		HomeTeam:        "Boston Celtics",
		AwayTeam:        "Los Angeles Lakers",
		CurrentScore:    opportunities.Score{Home: 40, Away: 38, Total: 78},
		CalculatedTotal: 104,
		TimeRemaining:   "7:00",
		Period:          3,
		Lines:           []domaingames.BettingLine{SampleLine(88)},
		Recommendations: []opportunities.Recommendation{{
			Action:     opportunities.ActionOver,
			Line:       88,
			Edge:       16,
			Price:      -110,
			Confidence: 90,
			Reasoning:  "Calculated total: 104.0 vs Line: 88 (+16.0 edge)",
		}},
		Confidence: 90,
		Metadata:   opportunities.Metadata{ScoringPace: opportunities.PaceAverage, Edge: 16},
	}
}
