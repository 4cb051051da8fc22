package ledger

import (
	"context"
	"path/filepath"
	"testing"
	"time"
)

func sampleBet(id string, at time.Time) PlacedBet {
	return PlacedBet{
		ID:       id,
		GameID:   "g1",
		HomeTeam: "Celtics",
		AwayTeam: "Lakers",
		BetType:  BetOver,
		Line:     220.5,
		Odds:     -110,
		Amount:   10,
		Payout:   19.09,
		Status:   StatusPending,
		PlacedAt: at,
	}
}

func exerciseStore(t *testing.T, s Store) {
	t.Helper()
	ctx := context.Background()
	base := time.Date(2024, 3, 1, 20, 0, 0, 0, time.UTC)

	if err := s.Save(ctx, sampleBet("b", base.Add(time.Minute))); err != nil {
		t.Fatalf("save failed: %v", err)
	}
	if err := s.Save(ctx, sampleBet("a", base.Add(500*time.Millisecond))); err != nil {
		t.Fatalf("save failed: %v", err)
	}

	list, err := s.List(ctx)
	if err != nil || len(list) != 2 {
		t.Fatalf("expected 2 bets, got %d err %v", len(list), err)
	}
	if list[0].ID != "a" || list[1].ID != "b" {
		t.Fatalf("expected placement order, got %s,%s", list[0].ID, list[1].ID)
	}

	if _, ok, err := s.Get(ctx, "missing"); ok || err != nil {
		t.Fatalf("expected missing bet not found, got ok=%v err=%v", ok, err)
	}

	settled := sampleBet("b", base.Add(time.Minute))
	settledAt := base.Add(3 * time.Hour)
	actual := 231
	profit := 9.09
	settled.Status = StatusWon
	settled.SettledAt = &settledAt
	settled.ActualTotal = &actual
	settled.NetProfit = &profit
	settled.Notes = "late cover"
	if err := s.Save(ctx, settled); err != nil {
		t.Fatalf("replace failed: %v", err)
	}

	got, ok, err := s.Get(ctx, "b")
	if err != nil || !ok {
		t.Fatalf("expected bet b, got ok=%v err=%v", ok, err)
	}
	if got.Status != StatusWon || got.Notes != "late cover" || *got.ActualTotal != 231 || *got.NetProfit != 9.09 {
		t.Fatalf("unexpected replaced bet %+v", got)
	}
	if !got.SettledAt.Equal(settledAt) || !got.PlacedAt.Equal(base.Add(time.Minute)) {
		t.Fatalf("unexpected timestamps %+v", got)
	}
	if got.BetType != BetOver || got.Line != 220.5 || got.Amount != 10 {
		t.Fatalf("unexpected fields %+v", got)
	}

	if list, _ := s.List(ctx); len(list) != 2 {
		t.Fatalf("expected replace not to duplicate")
	}
}

func TestMemoryStore(t *testing.T) {
	exerciseStore(t, NewMemoryStore())
}

func TestSQLiteStore(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ledger.db")
	s, err := NewSQLiteStore(path)
	if err != nil {
		t.Fatalf("open failed: %v", err)
	}
	exerciseStore(t, s)
	if err := s.Close(); err != nil {
		t.Fatalf("close failed: %v", err)
	}

	reopened, err := NewSQLiteStore(path)
	if err != nil {
		t.Fatalf("reopen failed: %v", err)
	}
	defer reopened.Close()
	list, err := reopened.List(context.Background())
	if err != nil || len(list) != 2 {
		t.Fatalf("expected bets persisted across reopen, got %d err %v", len(list), err)
	}
}

func TestSQLiteStoreBackedService(t *testing.T) {
	s, err := NewSQLiteStore(filepath.Join(t.TempDir(), "ledger.db"))
	if err != nil {
		t.Fatalf("open failed: %v", err)
	}
	defer s.Close()

	svc := NewService(s, nil, Options{})
	ctx := context.Background()
	bet, err := svc.AddBet(ctx, BetInput{GameID: "g1", BetType: "UNDER", Line: 210, Odds: 120, Amount: 50})
	if err != nil {
		t.Fatalf("add failed: %v", err)
	}
	if n, err := svc.AutoSettle(ctx, []FinalScore{{GameID: "g1", Home: 100, Away: 99}}); err != nil || n != 1 {
		t.Fatalf("settle failed: %d %v", n, err)
	}
	got, _, _ := svc.Bet(ctx, bet.ID)
	if got.Status != StatusWon || *got.NetProfit != 60 || got.Payout != 110 {
		t.Fatalf("unexpected settled bet %+v", got)
	}
}
