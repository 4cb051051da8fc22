package providers

import (
	"context"
	"log/slog"
	"sync"
	"time"

	domaingames "totals-tracker/internal/domain/games"
)

const defaultMinInterval = time.Second

// rateLimitedProvider enforces a minimum spacing between billable upstream
// calls. Sports listing is free and passes straight through.
type rateLimitedProvider struct {
	next     DataProvider
	interval time.Duration
	logger   *slog.Logger

	mu   sync.Mutex
	last time.Time
}

// NewRateLimitedProvider returns a DataProvider that spaces odds and scores
// calls at least interval apart. Calls block until the interval elapses.
func NewRateLimitedProvider(next DataProvider, interval time.Duration, logger *slog.Logger) DataProvider {
	if interval <= 0 {
		interval = defaultMinInterval
	}
	return &rateLimitedProvider{
		next:     next,
		interval: interval,
		logger:   logger,
	}
}

func (p *rateLimitedProvider) ListSports(ctx context.Context) ([]domaingames.Sport, error) {
	if p.next == nil {
		logWithProvider(ctx, p.logger, slog.LevelWarn, "rate-limited", "provider unavailable")
		return nil, ErrProviderUnavailable
	}
	return p.next.ListSports(ctx)
}

func (p *rateLimitedProvider) FetchOdds(ctx context.Context, q OddsQuery) ([]domaingames.Game, error) {
	if err := p.wait(ctx); err != nil {
		return nil, err
	}
	return p.next.FetchOdds(ctx, q)
}

func (p *rateLimitedProvider) FetchScores(ctx context.Context, sport string) ([]domaingames.Game, error) {
	if err := p.wait(ctx); err != nil {
		return nil, err
	}
	return p.next.FetchScores(ctx, sport)
}

func (p *rateLimitedProvider) wait(ctx context.Context) error {
	if p.next == nil {
		logWithProvider(ctx, p.logger, slog.LevelWarn, "rate-limited", "provider unavailable")
		return ErrProviderUnavailable
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if ctx.Err() != nil {
		return ctx.Err()
	}
	if !p.last.IsZero() {
		if delay := p.interval - time.Since(p.last); delay > 0 {
			timer := time.NewTimer(delay)
			defer timer.Stop()
			select {
			case <-ctx.Done():
				logWithProvider(ctx, p.logger, slog.LevelWarn, "rate-limited", "rate-limited fetch canceled")
				return ctx.Err()
			case <-timer.C:
			}
		}
	}
	p.last = time.Now()
	return nil
}
