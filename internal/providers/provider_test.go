package providers

import (
	"context"
	"errors"
	"sync/atomic"

	domaingames "totals-tracker/internal/domain/games"
)

// fakeProvider is a scripted DataProvider; errs are consumed one per call
// before falling back to success.
type fakeProvider struct {
	sportsCalls atomic.Int32
	oddsCalls   atomic.Int32
	scoresCalls atomic.Int32
	errs        []error
	errIdx      atomic.Int32
}

var _ DataProvider = (*fakeProvider)(nil)

func (f *fakeProvider) nextErr() error {
	i := int(f.errIdx.Add(1)) - 1
	if i < len(f.errs) {
		return f.errs[i]
	}
	return nil
}

func (f *fakeProvider) ListSports(ctx context.Context) ([]domaingames.Sport, error) {
	f.sportsCalls.Add(1)
	if err := f.nextErr(); err != nil {
		return nil, err
	}
	return []domaingames.Sport{{Key: "basketball_nba", Group: "Basketball"}}, nil
}

func (f *fakeProvider) FetchOdds(ctx context.Context, q OddsQuery) ([]domaingames.Game, error) {
	f.oddsCalls.Add(1)
	if err := f.nextErr(); err != nil {
		return nil, err
	}
	return []domaingames.Game{{ID: "ok", SportKey: q.Sport}}, nil
}

func (f *fakeProvider) FetchScores(ctx context.Context, sport string) ([]domaingames.Game, error) {
	f.scoresCalls.Add(1)
	if err := f.nextErr(); err != nil {
		return nil, err
	}
	return []domaingames.Game{{ID: "ok", SportKey: sport}}, nil
}

var errBoom = errors.New("boom")
