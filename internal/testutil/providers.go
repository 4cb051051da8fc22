package testutil

import (
	"context"

	domaingames "totals-tracker/internal/domain/games"
	"totals-tracker/internal/providers"
)

// GoodProvider returns the configured sports and games with no error.
type GoodProvider struct {
	Sports []domaingames.Sport
	Games  []domaingames.Game
}

func (p GoodProvider) ListSports(ctx context.Context) ([]domaingames.Sport, error) {
	return p.Sports, nil
}

func (p GoodProvider) FetchOdds(ctx context.Context, q providers.OddsQuery) ([]domaingames.Game, error) {
	return p.Games, nil
}

func (p GoodProvider) FetchScores(ctx context.Context, sport string) ([]domaingames.Game, error) {
	return p.Games, nil
}

// ErrProvider always returns the provided error.
type ErrProvider struct {
	Err error
}

func (p ErrProvider) ListSports(ctx context.Context) ([]domaingames.Sport, error) {
	return nil, p.Err
}

func (p ErrProvider) FetchOdds(ctx context.Context, q providers.OddsQuery) ([]domaingames.Game, error) {
	return nil, p.Err
}

func (p ErrProvider) FetchScores(ctx context.Context, sport string) ([]domaingames.Game, error) {
	return nil, p.Err
}

// UnavailableProvider returns ErrProviderUnavailable.
type UnavailableProvider struct{}

func (UnavailableProvider) ListSports(ctx context.Context) ([]domaingames.Sport, error) {
	return nil, providers.ErrProviderUnavailable
}

func (UnavailableProvider) FetchOdds(ctx context.Context, q providers.OddsQuery) ([]domaingames.Game, error) {
	return nil, providers.ErrProviderUnavailable
}

func (UnavailableProvider) FetchScores(ctx context.Context, sport string) ([]domaingames.Game, error) {
	return nil, providers.ErrProviderUnavailable
}

// NotifyingProvider returns games and closes Notify on the first odds fetch.
type NotifyingProvider struct {
	GoodProvider
	Notify chan struct{}
}

func (p *NotifyingProvider) FetchOdds(ctx context.Context, q providers.OddsQuery) ([]domaingames.Game, error) {
	if p.Notify != nil {
		select {
		case <-p.Notify:
		default:
			close(p.Notify)
		}
	}
	return p.Games, nil
}
