package providers

import (
	"context"
	"log/slog"
	"math/rand"
	"sync"
	"time"

	domaingames "totals-tracker/internal/domain/games"
	"totals-tracker/internal/logging"
	"totals-tracker/internal/metrics"
)

const (
	defaultRetryAttempts = 3
	defaultBackoff       = 200 * time.Millisecond
)

type backoffFunc func(attempt int) time.Duration

// retryingProvider wraps a DataProvider with retry/backoff behavior and
// per-endpoint call metrics.
type retryingProvider struct {
	inner        DataProvider
	logger       *slog.Logger
	metrics      *metrics.Recorder
	providerName string
	maxAttempts  int
	backoffFn    backoffFunc

	rngMu sync.Mutex
	rng   *rand.Rand
}

// NewRetryingProvider wraps the given provider with retries. If maxAttempts/backoff are <= 0, defaults are used.
// Permanent failures (unsupported capability, 4xx) are returned without retrying.
func NewRetryingProvider(inner DataProvider, logger *slog.Logger, rec *metrics.Recorder, providerName string, maxAttempts int, backoff time.Duration) DataProvider {
	if maxAttempts <= 0 {
		maxAttempts = defaultRetryAttempts
	}
	if backoff <= 0 {
		backoff = defaultBackoff
	}
	return &retryingProvider{
		inner:        inner,
		logger:       logger,
		metrics:      rec,
		providerName: providerName,
		maxAttempts:  maxAttempts,
		backoffFn: func(attempt int) time.Duration {
			return time.Duration(attempt) * backoff
		},
		rng: rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

func (r *retryingProvider) ListSports(ctx context.Context) ([]domaingames.Sport, error) {
	return retry(ctx, r, "sports", func() ([]domaingames.Sport, error) {
		return r.inner.ListSports(ctx)
	})
}

func (r *retryingProvider) FetchOdds(ctx context.Context, q OddsQuery) ([]domaingames.Game, error) {
	return retry(ctx, r, "odds", func() ([]domaingames.Game, error) {
		return r.inner.FetchOdds(ctx, q)
	})
}

func (r *retryingProvider) FetchScores(ctx context.Context, sport string) ([]domaingames.Game, error) {
	return retry(ctx, r, "scores", func() ([]domaingames.Game, error) {
		return r.inner.FetchScores(ctx, sport)
	})
}

func retry[T any](ctx context.Context, r *retryingProvider, endpoint string, call func() (T, error)) (T, error) {
	var (
		zero    T
		lastErr error
	)
	name := r.providerName + "." + endpoint

	for attempt := 1; attempt <= r.maxAttempts; attempt++ {
		start := time.Now()
		result, err := call()
		r.metrics.RecordProviderAttempt(name, time.Since(start), err)
		if err == nil {
			return result, nil
		}
		lastErr = err

		if rlErr, ok := AsRateLimitError(err); ok {
			r.metrics.RecordRateLimit(name, rlErr.RetryAfter)
		}

		if !Retryable(err) || attempt == r.maxAttempts {
			break
		}

		r.logWarn(ctx, "provider fetch retry", "endpoint", endpoint, "attempt", attempt, "max_attempts", r.maxAttempts, "err", err)

		select {
		case <-ctx.Done():
			return zero, ctx.Err()
		case <-time.After(r.computeDelay(err, attempt)):
		}
	}

	if Retryable(lastErr) {
		r.logWarn(ctx, "provider fetch failed", "endpoint", endpoint, "attempts", r.maxAttempts, "err", lastErr)
	}
	return zero, lastErr
}

// computeDelay honors Retry-After on rate limits and otherwise applies the
// backoff with jitter in [base/2, base].
func (r *retryingProvider) computeDelay(err error, attempt int) time.Duration {
	if rlErr, ok := AsRateLimitError(err); ok && rlErr.RetryAfter > 0 {
		return rlErr.RetryAfter
	}
	base := r.backoffFn(attempt)
	if base <= 0 {
		return 0
	}
	half := base / 2
	r.rngMu.Lock()
	jitter := time.Duration(r.rng.Int63n(int64(half) + 1))
	r.rngMu.Unlock()
	return half + jitter
}

func (r *retryingProvider) logWarn(ctx context.Context, msg string, args ...any) {
	logger := logging.FromContext(ctx, r.logger)
	if logger != nil {
		args = append(args, slog.String(logging.FieldProvider, r.providerName))
		logger.Warn(msg, args...)
	}
}
