package monitor

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"totals-tracker/internal/analyzer"
	"totals-tracker/internal/cache"
	domaingames "totals-tracker/internal/domain/games"
	"totals-tracker/internal/domain/opportunities"
	"totals-tracker/internal/gateway"
	"totals-tracker/internal/metrics"
	"totals-tracker/internal/providers/fixture"
	"totals-tracker/internal/teststubs"
)

var fixedNow = time.Date(2024, 3, 1, 20, 0, 0, 0, time.UTC)

type fakeSource struct {
	mu         sync.Mutex
	games      []domaingames.Game
	lines      map[string][]domaingames.BettingLine
	lineCalls  int
	block      chan struct{}
	entered    chan struct{}
	activeHits int
}

func (f *fakeSource) GetActiveGames(ctx context.Context) []domaingames.Game {
	f.mu.Lock()
	f.activeHits++
	f.mu.Unlock()
	if f.entered != nil {
		close(f.entered)
		f.entered = nil
	}
	if f.block != nil {
		<-f.block
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]domaingames.Game(nil), f.games...)
}

func (f *fakeSource) IsTargetWindow(g domaingames.Game) bool {
	return g.Scores != nil && g.Scores.Period == 3
}

func (f *fakeSource) GetTargetLines(ctx context.Context, sportKey, gameID string) []domaingames.BettingLine {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lineCalls++
	return f.lines[gameID]
}

func liveGame(id string, period int, clock string, home, away int) domaingames.Game {
	return domaingames.Game{
		ID:       id,
		SportKey: "basketball_nba",
		HomeTeam: "Home " + id,
		AwayTeam: "Away " + id,
		Scores:   &domaingames.Scores{Home: home, Away: away, Period: period, TimeRemaining: clock},
	}
}

func line(total float64) []domaingames.BettingLine {
	return []domaingames.BettingLine{{Bookmaker: "FanDuel", Total: total, OverPrice: -110, UnderPrice: -110}}
}

func newAnalyzer() *analyzer.Analyzer {
	return analyzer.New(analyzer.DefaultConfig(), func() time.Time { return fixedNow })
}

func TestCheckGamesFindsNotifiesAndBroadcasts(t *testing.T) {
	src := &fakeSource{
		games: []domaingames.Game{
			liveGame("hit", 3, "7:00", 40, 38),
			liveGame("close", 3, "7:00", 50, 50),
			liveGame("noline", 3, "7:00", 40, 38),
			liveGame("q2", 2, "7:00", 40, 38),
		},
		lines: map[string][]domaingames.BettingLine{
			"hit":   line(88),
			"close": line(133),
		},
	}
	notifier := &teststubs.StubNotifier{}
	bc := &teststubs.StubBroadcaster{}
	rec := metrics.NewRecorder()
	m := New(src, newAnalyzer(), notifier, bc, nil, rec, Config{})

	if !m.CheckGames(context.Background()) {
		t.Fatalf("expected tick to run")
	}

	opps := m.Opportunities()
	if len(opps) != 1 || opps[0].GameID != "hit" {
		t.Fatalf("expected one opportunity for hit, got %+v", opps)
	}
	if src.lineCalls != 3 {
		t.Fatalf("expected lines fetched for the 3 in-window games, got %d", src.lineCalls)
	}

	sent := notifier.Sent()
	if len(sent) != 1 || !strings.Contains(sent[0], "OVER 88") {
		t.Fatalf("expected one OVER alert, got %+v", sent)
	}
	if bc.Count() != 1 || len(bc.Last()) != 1 {
		t.Fatalf("expected one broadcast with the snapshot, got %d", bc.Count())
	}

	snap := rec.Monitor()
	if snap.Ticks != 1 || snap.Targets != 3 || snap.Opportunities != 1 || snap.TickErrors != 0 {
		t.Fatalf("unexpected monitor metrics %+v", snap)
	}
}

func TestCheckGamesDedupesByPeriodAndClock(t *testing.T) {
	src := &fakeSource{
		games: []domaingames.Game{liveGame("hit", 3, "7:00", 40, 38)},
		lines: map[string][]domaingames.BettingLine{"hit": line(88)},
	}
	notifier := &teststubs.StubNotifier{}
	bc := &teststubs.StubBroadcaster{}
	m := New(src, newAnalyzer(), notifier, bc, nil, nil, Config{})

	m.CheckGames(context.Background())
	m.CheckGames(context.Background())

	if len(notifier.Sent()) != 1 {
		t.Fatalf("expected single alert for the same key, got %d", len(notifier.Sent()))
	}
	if got := m.Opportunities(); len(got) != 0 {
		t.Fatalf("expected snapshot reset on the second tick, got %+v", got)
	}
	if bc.Count() != 2 || len(bc.Last()) != 0 {
		t.Fatalf("expected broadcast every tick, last empty")
	}

	src.games = []domaingames.Game{liveGame("hit", 3, "6:45", 41, 38)}
	m.CheckGames(context.Background())
	if len(notifier.Sent()) != 2 {
		t.Fatalf("expected new clock to alert again")
	}
}

func TestCheckGamesNotifierFailureStillRecordsOpportunity(t *testing.T) {
	src := &fakeSource{
		games: []domaingames.Game{liveGame("hit", 3, "7:00", 40, 38)},
		lines: map[string][]domaingames.BettingLine{"hit": line(88)},
	}
	notifier := &teststubs.StubNotifier{Err: errors.New("telegram down")}
	m := New(src, newAnalyzer(), notifier, nil, nil, nil, Config{})

	m.CheckGames(context.Background())
	if len(m.Opportunities()) != 1 {
		t.Fatalf("expected opportunity despite notifier failure")
	}
	if m.SeenCount() != 1 {
		t.Fatalf("expected key marked seen")
	}
}

func TestCheckGamesBroadcastErrorCountsAsTickError(t *testing.T) {
	src := &fakeSource{}
	rec := metrics.NewRecorder()
	bc := &teststubs.StubBroadcaster{Err: errors.New("redis down")}
	m := New(src, newAnalyzer(), nil, bc, nil, rec, Config{})

	m.CheckGames(context.Background())
	if rec.Monitor().TickErrors != 1 {
		t.Fatalf("expected tick error recorded")
	}
}

func TestCheckGamesSkipsOverlappingTick(t *testing.T) {
	src := &fakeSource{block: make(chan struct{}), entered: make(chan struct{})}
	entered := src.entered
	rec := metrics.NewRecorder()
	m := New(src, newAnalyzer(), nil, nil, nil, rec, Config{})

	done := make(chan bool, 1)
	go func() { done <- m.CheckGames(context.Background()) }()
	<-entered

	if m.CheckGames(context.Background()) {
		t.Fatalf("expected overlapping tick to be skipped")
	}
	close(src.block)
	if !<-done {
		t.Fatalf("expected first tick to complete")
	}
	if rec.Monitor().Skipped != 1 || rec.Monitor().Ticks != 1 {
		t.Fatalf("unexpected monitor metrics %+v", rec.Monitor())
	}
}

func TestMarkSeenKeepsMostRecent(t *testing.T) {
	m := New(&fakeSource{}, newAnalyzer(), nil, nil, nil, nil, Config{})
	for i := 0; i < 101; i++ {
		m.markSeen(fmt.Sprintf("g%d-3-7:00", i))
	}
	if len(m.seenOrder) != 50 || len(m.seen) != 50 {
		t.Fatalf("expected 50 retained, got %d/%d", len(m.seenOrder), len(m.seen))
	}
	if _, ok := m.seen["g100-3-7:00"]; !ok {
		t.Fatalf("expected newest key retained")
	}
	if _, ok := m.seen["g50-3-7:00"]; ok {
		t.Fatalf("expected older keys evicted")
	}
	if _, ok := m.seen["g51-3-7:00"]; !ok {
		t.Fatalf("expected g51 retained")
	}
}

func TestMarkSeenAtLimitKeepsAll(t *testing.T) {
	m := New(&fakeSource{}, newAnalyzer(), nil, nil, nil, nil, Config{})
	for i := 0; i < 100; i++ {
		m.markSeen(fmt.Sprintf("k%d", i))
	}
	if len(m.seen) != 100 {
		t.Fatalf("expected no eviction at exactly the limit, got %d", len(m.seen))
	}
}

func TestOpportunitiesReturnsCopy(t *testing.T) {
	src := &fakeSource{
		games: []domaingames.Game{liveGame("hit", 3, "7:00", 40, 38)},
		lines: map[string][]domaingames.BettingLine{"hit": line(88)},
	}
	m := New(src, newAnalyzer(), nil, nil, nil, nil, Config{})
	m.CheckGames(context.Background())

	got := m.Opportunities()
	got[0].GameID = "mutated"
	if m.Opportunities()[0].GameID != "hit" {
		t.Fatalf("expected snapshot isolated from caller mutation")
	}
}

func TestDedupKey(t *testing.T) {
	if got := dedupKey(liveGame("abc", 3, "7:00", 1, 1)); got != "abc-3-7:00" {
		t.Fatalf("unexpected key %s", got)
	}
	if got := dedupKey(domaingames.Game{ID: "x"}); got != "x-0-" {
		t.Fatalf("unexpected key for game without scores %s", got)
	}
}

func TestCheckGamesWithFixtureGateway(t *testing.T) {
	now := func() time.Time { return fixedNow }
	a := newAnalyzer()
	gw := gateway.New(fixture.NewWithClock(now), cache.New(cache.DefaultPolicy(), now), gateway.Config{InWindow: a.InTargetWindow}, nil, now)
	if err := gw.InitializeTodaysGames(context.Background()); err != nil {
		t.Fatalf("unexpected init error %v", err)
	}

	notifier := &teststubs.StubNotifier{}
	bc := &teststubs.StubBroadcaster{}
	m := New(gw, a, notifier, bc, nil, nil, Config{})
	m.CheckGames(context.Background())

	opps := m.Opportunities()
	if len(opps) != 1 || opps[0].GameID != "fixture-live-q3" {
		t.Fatalf("expected fixture q3 opportunity, got %+v", opps)
	}
	best, _ := opps[0].Best()
	if best.Action != opportunities.ActionOver || best.Line != 140.5 {
		t.Fatalf("unexpected recommendation %+v", best)
	}
	if len(notifier.Sent()) != 1 || bc.Count() != 1 {
		t.Fatalf("expected one alert and one broadcast")
	}
}
