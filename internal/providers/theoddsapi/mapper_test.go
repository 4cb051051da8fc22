package theoddsapi

import (
	"encoding/json"
	"testing"
)

func TestMapScoresVariants(t *testing.T) {
	cases := []struct {
		name      string
		raw       string
		wantNil   bool
		home      int
		away      int
		period    int
		remaining string
	}{
		{name: "absent", raw: ``, wantNil: true},
		{name: "null", raw: `null`, wantNil: true},
		{name: "object", raw: `{"home_score":50,"away_score":44,"period":2,"time_remaining":" 3:10 "}`, home: 50, away: 44, period: 2, remaining: "3:10"},
		{name: "team list", raw: `[{"name":"Away","score":"40"},{"name":"Home","score":"42"}]`, home: 42, away: 40},
		{name: "empty list", raw: `[]`, wantNil: true},
		{name: "garbage", raw: `"n/a"`, wantNil: true},
	}

	for _, tc := range cases {
		got := mapScores(json.RawMessage(tc.raw), "Home", "Away")
		if tc.wantNil {
			if got != nil {
				t.Fatalf("%s: expected nil scores, got %+v", tc.name, got)
			}
			continue
		}
		if got == nil {
			t.Fatalf("%s: expected scores", tc.name)
		}
		if got.Home != tc.home || got.Away != tc.away || got.Period != tc.period || got.TimeRemaining != tc.remaining {
			t.Fatalf("%s: unexpected scores %+v", tc.name, got)
		}
	}
}

func TestMapEventToleratesBadCommenceTime(t *testing.T) {
	g := mapEvent(eventResponse{ID: "x", CommenceTime: "tomorrow"})
	if !g.CommenceTime.IsZero() {
		t.Fatalf("expected zero commence time, got %s", g.CommenceTime)
	}
	if g.Bookmakers != nil {
		t.Fatalf("expected nil bookmakers")
	}
}
