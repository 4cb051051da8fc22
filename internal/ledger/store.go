package ledger

import (
	"context"
	"sort"
	"sync"
)

// Store persists placed bets.
type Store interface {
	// Save inserts or replaces a bet by id.
	Save(ctx context.Context, bet PlacedBet) error
	Get(ctx context.Context, id string) (PlacedBet, bool, error)
	// List returns every bet ordered by placement time.
	List(ctx context.Context) ([]PlacedBet, error)
	Close() error
}

// MemoryStore keeps bets in memory. It is safe for concurrent use.
type MemoryStore struct {
	mu   sync.RWMutex
	bets map[string]PlacedBet
}

// NewMemoryStore constructs an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		bets: make(map[string]PlacedBet),
	}
}

func (s *MemoryStore) Save(ctx context.Context, bet PlacedBet) error {
	_ = ctx
	s.mu.Lock()
	defer s.mu.Unlock()

	s.bets[bet.ID] = bet
	return nil
}

func (s *MemoryStore) Get(ctx context.Context, id string) (PlacedBet, bool, error) {
	_ = ctx
	s.mu.RLock()
	defer s.mu.RUnlock()

	b, ok := s.bets[id]
	return b, ok, nil
}

func (s *MemoryStore) List(ctx context.Context) ([]PlacedBet, error) {
	_ = ctx
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]PlacedBet, 0, len(s.bets))
	for _, b := range s.bets {
		result = append(result, b)
	}
	sortByPlacement(result)
	return result, nil
}

func (s *MemoryStore) Close() error { return nil }

func sortByPlacement(bets []PlacedBet) {
	sort.SliceStable(bets, func(i, j int) bool {
		if bets[i].PlacedAt.Equal(bets[j].PlacedAt) {
			return bets[i].ID < bets[j].ID
		}
		return bets[i].PlacedAt.Before(bets[j].PlacedAt)
	})
}
