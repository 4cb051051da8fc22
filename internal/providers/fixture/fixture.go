package fixture

import (
	"context"
	"fmt"
	"strings"
	"time"

	domaingames "totals-tracker/internal/domain/games"
	"totals-tracker/internal/providers"
)

// UnsupportedScoresSport has odds but no scores feed in the fixture data.
const UnsupportedScoresSport = "basketball_euroleague"

// Provider returns a static slate of games relative to the current time,
// useful for local testing and bootstrapping without an API key.
type Provider struct {
	now func() time.Time
}

var _ providers.DataProvider = (*Provider)(nil)

// New creates a fixture provider with a time source.
func New() *Provider {
	return &Provider{
		now: time.Now,
	}
}

// NewWithClock creates a fixture provider pinned to the given clock.
func NewWithClock(now func() time.Time) *Provider {
	if now == nil {
		now = time.Now
	}
	return &Provider{now: now}
}

// ListSports returns a fixed set of leagues, including one non-basketball entry.
func (p *Provider) ListSports(ctx context.Context) ([]domaingames.Sport, error) {
	_ = ctx
	return []domaingames.Sport{
		{Key: "basketball_nba", Group: "Basketball", Title: "NBA", Active: true},
		{Key: "basketball_wnba", Group: "Basketball", Title: "WNBA", Active: true},
		{Key: UnsupportedScoresSport, Group: "Basketball", Title: "Basketball Euroleague", Active: true},
		{Key: "icehockey_nhl", Group: "Ice Hockey", Title: "NHL", Active: true},
	}, nil
}

// FetchOdds filters the slate by sport, bookmaker, market, commence window and event ids.
func (p *Provider) FetchOdds(ctx context.Context, q providers.OddsQuery) ([]domaingames.Game, error) {
	_ = ctx
	books := splitCSV(q.Bookmakers)
	markets := splitCSV(q.Markets)
	ids := make(map[string]struct{}, len(q.EventIDs))
	for _, id := range q.EventIDs {
		ids[id] = struct{}{}
	}

	result := make([]domaingames.Game, 0)
	for _, g := range p.slate() {
		if g.SportKey != q.Sport || g.Completed {
			continue
		}
		if len(ids) > 0 {
			if _, ok := ids[g.ID]; !ok {
				continue
			}
		}
		if !q.CommenceFrom.IsZero() && g.CommenceTime.Before(q.CommenceFrom) {
			continue
		}
		if !q.CommenceTo.IsZero() && g.CommenceTime.After(q.CommenceTo) {
			continue
		}
		g.Scores = nil
		g.Bookmakers = filterBooks(g.Bookmakers, books, markets)
		result = append(result, g)
	}
	return result, nil
}

// FetchScores returns every slate game of the sport without bookmaker data.
func (p *Provider) FetchScores(ctx context.Context, sport string) ([]domaingames.Game, error) {
	_ = ctx
	if sport == UnsupportedScoresSport {
		return nil, fmt.Errorf("fixture scores %s: %w", sport, providers.ErrUnsupported)
	}
	result := make([]domaingames.Game, 0)
	for _, g := range p.slate() {
		if g.SportKey != sport {
			continue
		}
		g.Bookmakers = nil
		result = append(result, g)
	}
	return result, nil
}

func (p *Provider) slate() []domaingames.Game {
	now := p.now().UTC().Truncate(time.Minute)

	return []domaingames.Game{
		{
			ID:           "fixture-live-q3",
			SportKey:     "basketball_nba",
			SportTitle:   "NBA",
			CommenceTime: now.Add(-90 * time.Minute),
			HomeTeam:     "Boston Celtics",
			AwayTeam:     "Los Angeles Lakers",
			Scores:       &domaingames.Scores{Home: 60, Away: 56, Period: 3, TimeRemaining: "7:00"},
			Bookmakers:   []domaingames.Bookmaker{totalsBook("fanduel", "FanDuel", 140.5, -110, -110)},
		},
		{
			ID:           "fixture-live-q2",
			SportKey:     "basketball_nba",
			SportTitle:   "NBA",
			CommenceTime: now.Add(-45 * time.Minute),
			HomeTeam:     "Golden State Warriors",
			AwayTeam:     "Miami Heat",
			Scores:       &domaingames.Scores{Home: 40, Away: 38, Period: 2, TimeRemaining: "5:12"},
			Bookmakers: []domaingames.Bookmaker{
				totalsBook("fanduel", "FanDuel", 221.5, -112, -108),
				totalsBook("draftkings", "DraftKings", 222.0, -110, -110),
			},
		},
		{
			ID:           "fixture-upcoming",
			SportKey:     "basketball_wnba",
			SportTitle:   "WNBA",
			CommenceTime: now.Add(time.Hour),
			HomeTeam:     "Las Vegas Aces",
			AwayTeam:     "New York Liberty",
			Bookmakers:   []domaingames.Bookmaker{totalsBook("fanduel", "FanDuel", 165.5, -110, -110)},
		},
		{
			ID:           "fixture-no-target-book",
			SportKey:     "basketball_wnba",
			SportTitle:   "WNBA",
			CommenceTime: now.Add(90 * time.Minute),
			HomeTeam:     "Seattle Storm",
			AwayTeam:     "Chicago Sky",
			Bookmakers:   []domaingames.Bookmaker{totalsBook("draftkings", "DraftKings", 160.5, -110, -110)},
		},
		{
			ID:           "fixture-final",
			SportKey:     "basketball_nba",
			SportTitle:   "NBA",
			CommenceTime: now.Add(-4 * time.Hour),
			HomeTeam:     "Denver Nuggets",
			AwayTeam:     "Phoenix Suns",
			Completed:    true,
			Scores:       &domaingames.Scores{Home: 112, Away: 108, Period: 4, TimeRemaining: "0:00"},
		},
		{
			ID:           "fixture-euroleague",
			SportKey:     UnsupportedScoresSport,
			SportTitle:   "Basketball Euroleague",
			CommenceTime: now.Add(30 * time.Minute),
			HomeTeam:     "Real Madrid",
			AwayTeam:     "Olympiacos",
			Bookmakers:   []domaingames.Bookmaker{totalsBook("fanduel", "FanDuel", 158.5, -115, -105)},
		},
	}
}

func totalsBook(key, title string, point, overPrice, underPrice float64) domaingames.Bookmaker {
	over, under := point, point
	return domaingames.Bookmaker{
		Key:   key,
		Title: title,
		Markets: []domaingames.Market{{
			Key: domaingames.MarketTotals,
			Outcomes: []domaingames.Outcome{
				{Name: domaingames.OutcomeOver, Price: overPrice, Point: &over},
				{Name: domaingames.OutcomeUnder, Price: underPrice, Point: &under},
			},
		}},
	}
}

func filterBooks(books []domaingames.Bookmaker, keys, markets []string) []domaingames.Bookmaker {
	out := make([]domaingames.Bookmaker, 0, len(books))
	for _, b := range books {
		if len(keys) > 0 && !contains(keys, b.Key) {
			continue
		}
		filtered := domaingames.Bookmaker{Key: b.Key, Title: b.Title}
		for _, m := range b.Markets {
			if len(markets) > 0 && !contains(markets, m.Key) {
				continue
			}
			filtered.Markets = append(filtered.Markets, m)
		}
		out = append(out, filtered)
	}
	return out
}

func splitCSV(v string) []string {
	if strings.TrimSpace(v) == "" {
		return nil
	}
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func contains(values []string, v string) bool {
	for _, candidate := range values {
		if candidate == v {
			return true
		}
	}
	return false
}
