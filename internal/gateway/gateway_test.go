package gateway

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"totals-tracker/internal/analyzer"
	"totals-tracker/internal/cache"
	domaingames "totals-tracker/internal/domain/games"
	"totals-tracker/internal/providers"
	"totals-tracker/internal/teststubs"
)

var now = time.Date(2024, 3, 1, 20, 0, 0, 0, time.UTC)

type clock struct{ t time.Time }

func (c *clock) Now() time.Time { return c.t }

func book(key string, point float64) domaingames.Bookmaker {
	over, under := point, point
	return domaingames.Bookmaker{
		Key:   key,
		Title: "FanDuel",
		Markets: []domaingames.Market{{
			Key: domaingames.MarketTotals,
			Outcomes: []domaingames.Outcome{
				{Name: domaingames.OutcomeOver, Price: -110, Point: &over},
				{Name: domaingames.OutcomeUnder, Price: -105, Point: &under},
			},
		}},
	}
}

func newGateway(p providers.DataProvider, c *clock) *Gateway {
	a := analyzer.New(analyzer.DefaultConfig(), c.Now)
	return New(p, cache.New(cache.DefaultPolicy(), c.Now), Config{InWindow: a.InTargetWindow}, nil, c.Now)
}

func nbaStub() *teststubs.StubProvider {
	return &teststubs.StubProvider{
		Sports: []domaingames.Sport{
			{Key: "basketball_nba", Group: "Basketball"},
			{Key: "icehockey_nhl", Group: "Ice Hockey"},
		},
		Odds: map[string][]domaingames.Game{
			"basketball_nba": {
				{ID: "fd", HomeTeam: "Celtics", AwayTeam: "Lakers", CommenceTime: now.Add(time.Hour), Bookmakers: []domaingames.Bookmaker{book("fanduel", 220.5)}},
				{ID: "dk", HomeTeam: "Heat", AwayTeam: "Knicks", CommenceTime: now.Add(time.Hour), Bookmakers: []domaingames.Bookmaker{book("draftkings", 210.5)}},
				{ID: "live", HomeTeam: "Suns", AwayTeam: "Jazz", CommenceTime: now.Add(-time.Hour), Bookmakers: []domaingames.Bookmaker{book("fanduel", 140.5)}},
			},
		},
		Scores: map[string][]domaingames.Game{
			"basketball_nba": {
				{ID: "live", HomeTeam: "Suns", AwayTeam: "Jazz", CommenceTime: now.Add(-time.Hour), Scores: &domaingames.Scores{Home: 60, Away: 56, Period: 3, TimeRemaining: "7:00"}},
				{ID: "fd", HomeTeam: "Celtics", AwayTeam: "Lakers", CommenceTime: now.Add(time.Hour)},
				{ID: "done", HomeTeam: "Bulls", AwayTeam: "Nets", Completed: true, Scores: &domaingames.Scores{Home: 100, Away: 99, Period: 4}},
			},
		},
	}
}

func TestGetAllBasketballSportsMemoizes(t *testing.T) {
	p := nbaStub()
	g := newGateway(p, &clock{t: now})

	for i := 0; i < 3; i++ {
		sports := g.GetAllBasketballSports(context.Background())
		if len(sports) != 1 || sports[0] != "basketball_nba" {
			t.Fatalf("unexpected sports %+v", sports)
		}
	}
	if p.SportsCalls.Load() != 1 {
		t.Fatalf("expected one discovery call, got %d", p.SportsCalls.Load())
	}
	if g.RequestCount() != 0 {
		t.Fatalf("expected discovery not to be counted")
	}
}

func TestGetAllBasketballSportsCollapsesConcurrentCallers(t *testing.T) {
	p := nbaStub()
	g := newGateway(p, &clock{t: now})

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = g.GetAllBasketballSports(context.Background())
		}()
	}
	wg.Wait()
	if calls := p.SportsCalls.Load(); calls < 1 || calls > 8 {
		t.Fatalf("unexpected discovery calls %d", calls)
	}
	if got := g.GetAllBasketballSports(context.Background()); len(got) != 1 {
		t.Fatalf("expected memoized list, got %+v", got)
	}
}

func TestGetAllBasketballSportsFallbackNotCached(t *testing.T) {
	p := nbaStub()
	p.SportsErr = errors.New("down")
	g := newGateway(p, &clock{t: now})

	sports := g.GetAllBasketballSports(context.Background())
	if len(sports) != len(FallbackSports) || sports[0] != "basketball_nba" {
		t.Fatalf("expected fallback list, got %+v", sports)
	}

	p.SportsErr = nil
	sports = g.GetAllBasketballSports(context.Background())
	if len(sports) != 1 {
		t.Fatalf("expected discovery retried after fallback, got %+v", sports)
	}
	if p.SportsCalls.Load() != 2 {
		t.Fatalf("expected 2 discovery calls, got %d", p.SportsCalls.Load())
	}
}

func TestInitializeTodaysGamesBuildsSchedule(t *testing.T) {
	loc := time.FixedZone("ET", -5*60*60)
	p := nbaStub()
	c := &clock{t: now}
	g := New(p, cache.New(cache.DefaultPolicy(), c.Now), Config{Location: loc}, nil, c.Now)

	if err := g.InitializeTodaysGames(context.Background()); err != nil {
		t.Fatalf("unexpected error %v", err)
	}

	schedule := g.UpcomingGames()
	ids := map[string]domaingames.ScheduledGame{}
	for _, sg := range schedule {
		ids[sg.GameID] = sg
	}
	if len(schedule) != 2 {
		t.Fatalf("expected fd + live scheduled once each, got %+v", schedule)
	}
	if _, ok := ids["dk"]; ok {
		t.Fatalf("expected game without target book excluded")
	}
	if _, ok := ids["done"]; ok {
		t.Fatalf("expected completed game excluded")
	}
	fd := ids["fd"]
	if fd.Teams != "Lakers @ Celtics" || fd.League != "NBA" || fd.SportKey != "basketball_nba" {
		t.Fatalf("unexpected schedule entry %+v", fd)
	}
	if g.RequestCount() != 2 {
		t.Fatalf("expected odds + scores counted, got %d", g.RequestCount())
	}

	q := p.Queries()[0]
	if q.Markets != "totals" || q.Bookmakers != "fanduel" || q.Regions != "us" || q.OddsFormat != "american" {
		t.Fatalf("unexpected odds query %+v", q)
	}
	wantFrom := time.Date(2024, 3, 1, 0, 0, 0, 0, loc)
	if !q.CommenceFrom.Equal(wantFrom) || !q.CommenceTo.Equal(wantFrom.AddDate(0, 0, 1).Add(-time.Millisecond)) {
		t.Fatalf("unexpected commence window %s - %s", q.CommenceFrom, q.CommenceTo)
	}

	// Fresh schedule short-circuits.
	if err := g.InitializeTodaysGames(context.Background()); err != nil {
		t.Fatalf("unexpected error %v", err)
	}
	if p.OddsCalls.Load() != 1 {
		t.Fatalf("expected cached schedule reuse, got %d odds calls", p.OddsCalls.Load())
	}
}

func TestInitializeTodaysGamesToleratesLeagueFailures(t *testing.T) {
	p := nbaStub()
	p.Sports = []domaingames.Sport{
		{Key: "basketball_nba", Group: "Basketball"},
		{Key: "basketball_euroleague", Group: "Basketball"},
		{Key: "basketball_wnba", Group: "Basketball"},
		{Key: "basketball_nbl", Group: "Basketball"},
	}
	p.Odds["basketball_euroleague"] = []domaingames.Game{
		{ID: "euro", HomeTeam: "Real", AwayTeam: "Oly", Bookmakers: []domaingames.Bookmaker{book("fanduel", 160.5)}},
	}
	p.ScoresErr = map[string]error{
		"basketball_euroleague": fmt.Errorf("scores: %w", providers.ErrUnsupported),
		"basketball_wnba":       errors.New("timeout"),
	}
	p.OddsErr = map[string]error{
		"basketball_nbl": fmt.Errorf("odds: %w", providers.ErrUnsupported),
	}
	g := newGateway(p, &clock{t: now})

	err := g.InitializeTodaysGames(context.Background())
	if err == nil {
		t.Fatalf("expected joined league error for wnba")
	}
	if providers.IsUnsupported(err) {
		t.Fatalf("expected unsupported leagues not reported as failures")
	}

	ids := map[string]bool{}
	for _, sg := range g.UpcomingGames() {
		ids[sg.GameID] = true
	}
	if !ids["euro"] || !ids["fd"] || !ids["live"] {
		t.Fatalf("expected nba and odds-only euroleague games, got %+v", ids)
	}
	if g.CacheStats().LastScheduleFetch == nil {
		t.Fatalf("expected schedule committed despite failures")
	}
}

func TestGetActiveGamesRefreshesLiveGames(t *testing.T) {
	p := nbaStub()
	c := &clock{t: now}
	g := newGateway(p, c)
	if err := g.InitializeTodaysGames(context.Background()); err != nil {
		t.Fatalf("unexpected error %v", err)
	}
	before := g.RequestCount()

	active := g.GetActiveGames(context.Background())
	if len(active) != 1 || active[0].ID != "live" {
		t.Fatalf("expected only the live game, got %+v", active)
	}
	if !active[0].HasBookmaker("fanduel") || active[0].Scores.Period != 3 {
		t.Fatalf("expected merged scores and bookmakers, got %+v", active[0])
	}
	if !g.IsTargetWindow(active[0]) {
		t.Fatalf("expected live game in target window")
	}
	// One scores call shared by both candidates plus one event odds call.
	if got := g.RequestCount() - before; got != 2 {
		t.Fatalf("expected 2 billable calls, got %d", got)
	}

	cached, ok := g.cache.Game("live")
	if !ok || !cached.IsMonitoring {
		t.Fatalf("expected live game cached and monitored")
	}
	if g.ActiveGamesCount() != 1 {
		t.Fatalf("expected 1 active game")
	}

	// Still fresh: skipped and not returned.
	if again := g.GetActiveGames(context.Background()); len(again) != 0 {
		t.Fatalf("expected fresh cached game to be skipped, got %+v", again)
	}

	c.t = c.t.Add(31 * time.Second)
	if again := g.GetActiveGames(context.Background()); len(again) != 1 {
		t.Fatalf("expected stale game refreshed, got %+v", again)
	}
	if due := g.GamesToMonitor(); len(due) != 0 {
		t.Fatalf("expected next check in the future, got %+v", due)
	}
}

func TestGetActiveGamesWindowAndUnsupported(t *testing.T) {
	p := nbaStub()
	c := &clock{t: now}
	g := newGateway(p, c)
	g.cache.SetTodaysSchedule([]domaingames.ScheduledGame{
		{GameID: "old", SportKey: "basketball_nba", StartTime: now.Add(-5 * time.Hour)},
		{GameID: "far", SportKey: "basketball_nba", StartTime: now.Add(3 * time.Hour)},
		{GameID: "euro", SportKey: "basketball_euroleague", StartTime: now},
	})
	p.ScoresErr = map[string]error{"basketball_euroleague": providers.ErrUnsupported}

	if active := g.GetActiveGames(context.Background()); len(active) != 0 {
		t.Fatalf("expected nothing active, got %+v", active)
	}
	if p.ScoresCalls.Load() != 1 {
		t.Fatalf("expected only the in-range league polled, got %d", p.ScoresCalls.Load())
	}
	if g.RequestCount() != 0 {
		t.Fatalf("expected unsupported call not counted")
	}
}

func TestGetActiveGamesSkipsWithoutTargetBook(t *testing.T) {
	p := nbaStub()
	p.Odds["basketball_nba"][2].Bookmakers = []domaingames.Bookmaker{book("draftkings", 140.5)}
	g := newGateway(p, &clock{t: now})
	g.cache.SetTodaysSchedule([]domaingames.ScheduledGame{{GameID: "live", SportKey: "basketball_nba", StartTime: now.Add(-time.Hour)}})

	if active := g.GetActiveGames(context.Background()); len(active) != 0 {
		t.Fatalf("expected no active games without target book, got %+v", active)
	}
	if _, ok := g.cache.Game("live"); ok {
		t.Fatalf("expected game not cached")
	}
}

func TestGetTargetLines(t *testing.T) {
	p := nbaStub()
	g := newGateway(p, &clock{t: now})

	lines := g.GetTargetLines(context.Background(), "basketball_nba", "live")
	if len(lines) != 1 {
		t.Fatalf("expected one line, got %+v", lines)
	}
	l := lines[0]
	if l.Bookmaker != "FanDuel" || l.Total != 140.5 || l.OverPrice != -110 || l.UnderPrice != -105 {
		t.Fatalf("unexpected line %+v", l)
	}
	q := p.Queries()[0]
	if q.Sport != "basketball_nba" || len(q.EventIDs) != 1 || q.EventIDs[0] != "live" {
		t.Fatalf("unexpected query %+v", q)
	}
	if g.RequestCount() != 1 {
		t.Fatalf("expected counted request")
	}

	if got := g.GetTargetLines(context.Background(), "basketball_nba", "dk"); len(got) != 0 {
		t.Fatalf("expected empty for missing target book, got %+v", got)
	}
	if got := g.GetTargetLines(context.Background(), "basketball_nba", "missing"); len(got) != 0 {
		t.Fatalf("expected empty for unknown event")
	}

	p.OddsErr = map[string]error{"basketball_nba": errors.New("boom")}
	if got := g.GetTargetLines(context.Background(), "basketball_nba", "live"); got == nil || len(got) != 0 {
		t.Fatalf("expected empty non-nil list on error, got %+v", got)
	}
}

func TestTotalsLineRequiresBothSides(t *testing.T) {
	point := 200.5
	game := domaingames.Game{Bookmakers: []domaingames.Bookmaker{{
		Key: "fanduel",
		Markets: []domaingames.Market{{
			Key:      domaingames.MarketTotals,
			Outcomes: []domaingames.Outcome{{Name: domaingames.OutcomeOver, Price: -110, Point: &point}},
		}},
	}}}
	if _, ok := totalsLine(game, "fanduel"); ok {
		t.Fatalf("expected missing under to yield no line")
	}

	game.Bookmakers[0].Markets[0].Key = "spreads"
	if _, ok := totalsLine(game, "fanduel"); ok {
		t.Fatalf("expected missing totals market to yield no line")
	}
}

func TestLeagueLabel(t *testing.T) {
	cases := map[string]string{
		"basketball_nba":        "NBA",
		"basketball_euroleague": "EUROLEAGUE",
		"basketball_ncaab":      "NCAAB",
	}
	for in, want := range cases {
		if got := LeagueLabel(in); got != want {
			t.Fatalf("LeagueLabel(%s) = %s, want %s", in, got, want)
		}
	}
}

func TestCleanupCache(t *testing.T) {
	c := &clock{t: now}
	g := newGateway(nbaStub(), c)
	g.cache.UpdateGame("old", domaingames.Game{ID: "old"})
	c.t = c.t.Add(25 * time.Hour)
	if removed := g.CleanupCache(); removed != 1 {
		t.Fatalf("expected 1 removed, got %d", removed)
	}
}
