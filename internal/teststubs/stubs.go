package teststubs

import (
	"context"
	"sync"
	"sync/atomic"

	domaingames "totals-tracker/internal/domain/games"
	"totals-tracker/internal/domain/opportunities"
	"totals-tracker/internal/providers"
)

// StubProvider is a test double for providers.DataProvider with per-sport
// canned responses.
type StubProvider struct {
	Sports    []domaingames.Sport
	SportsErr error
	Odds      map[string][]domaingames.Game
	OddsErr   map[string]error
	Scores    map[string][]domaingames.Game
	ScoresErr map[string]error

	SportsCalls atomic.Int32
	OddsCalls   atomic.Int32
	ScoresCalls atomic.Int32

	mu      sync.Mutex
	queries []providers.OddsQuery
}

var _ providers.DataProvider = (*StubProvider)(nil)

// ListSports returns the configured sports and error while tracking calls.
func (s *StubProvider) ListSports(ctx context.Context) ([]domaingames.Sport, error) {
	_ = ctx
	s.SportsCalls.Add(1)
	if s.SportsErr != nil {
		return nil, s.SportsErr
	}
	return append([]domaingames.Sport(nil), s.Sports...), nil
}

// FetchOdds returns the sport's configured games, narrowed to EventIDs when set.
func (s *StubProvider) FetchOdds(ctx context.Context, q providers.OddsQuery) ([]domaingames.Game, error) {
	_ = ctx
	s.OddsCalls.Add(1)
	s.mu.Lock()
	s.queries = append(s.queries, q)
	s.mu.Unlock()

	if err := s.OddsErr[q.Sport]; err != nil {
		return nil, err
	}
	games := s.Odds[q.Sport]
	if len(q.EventIDs) == 0 {
		return append([]domaingames.Game(nil), games...), nil
	}
	out := make([]domaingames.Game, 0)
	for _, g := range games {
		for _, id := range q.EventIDs {
			if g.ID == id {
				out = append(out, g)
			}
		}
	}
	return out, nil
}

// FetchScores returns the sport's configured scores and error.
func (s *StubProvider) FetchScores(ctx context.Context, sport string) ([]domaingames.Game, error) {
	_ = ctx
	s.ScoresCalls.Add(1)
	if err := s.ScoresErr[sport]; err != nil {
		return nil, err
	}
	return append([]domaingames.Game(nil), s.Scores[sport]...), nil
}

// Queries returns the odds queries received so far.
func (s *StubProvider) Queries() []providers.OddsQuery {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]providers.OddsQuery(nil), s.queries...)
}

// StubNotifier records alert messages.
type StubNotifier struct {
	mu       sync.Mutex
	Messages []string
	Err      error
}

// Notify records the message and returns the configured error.
func (n *StubNotifier) Notify(ctx context.Context, message string) error {
	_ = ctx
	n.mu.Lock()
	defer n.mu.Unlock()
	n.Messages = append(n.Messages, message)
	return n.Err
}

// Sent returns a copy of the recorded messages.
func (n *StubNotifier) Sent() []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]string(nil), n.Messages...)
}

// StubBroadcaster records every broadcast snapshot.
type StubBroadcaster struct {
	mu        sync.Mutex
	Snapshots [][]opportunities.Opportunity
	Err       error
	Notify    chan struct{}
}

// Broadcast records the snapshot and returns the configured error.
func (b *StubBroadcaster) Broadcast(ctx context.Context, snapshot []opportunities.Opportunity) error {
	_ = ctx
	b.mu.Lock()
	b.Snapshots = append(b.Snapshots, append([]opportunities.Opportunity(nil), snapshot...))
	b.mu.Unlock()
	if b.Notify != nil {
		select {
		case b.Notify <- struct{}{}:
		default:
		}
	}
	return b.Err
}

// Count returns how many broadcasts were recorded.
func (b *StubBroadcaster) Count() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.Snapshots)
}

// Last returns the most recent snapshot.
func (b *StubBroadcaster) Last() []opportunities.Opportunity {
	b.mu.Lock()
	defer b.mu.Unlock()
	if len(b.Snapshots) == 0 {
		return nil
	}
	return b.Snapshots[len(b.Snapshots)-1]
}
