package providers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"
)

var (
	// ErrUnsupported reports that the upstream does not offer the requested
	// capability for the given league.
	ErrUnsupported = errors.New("provider: capability not supported")
	// ErrProviderUnavailable is returned when no provider is configured.
	ErrProviderUnavailable = errors.New("provider: unavailable")
)

// IsUnsupported reports whether err signals an unsupported capability.
func IsUnsupported(err error) bool {
	return errors.Is(err, ErrUnsupported)
}

// StatusError is a non-2xx upstream response other than rate limiting.
type StatusError struct {
	Provider   string
	Endpoint   string
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	if e.Body != "" {
		return fmt.Sprintf("%s %s: unexpected status %d: %s", e.Provider, e.Endpoint, e.StatusCode, e.Body)
	}
	return fmt.Sprintf("%s %s: unexpected status %d", e.Provider, e.Endpoint, e.StatusCode)
}

// Transient reports whether retrying may succeed.
func (e *StatusError) Transient() bool {
	return e.StatusCode >= http.StatusInternalServerError
}

// RateLimitError captures rate limit responses from upstream providers.
type RateLimitError struct {
	Provider   string
	StatusCode int
	RetryAfter time.Duration
	Remaining  string
	Message    string
}

func (e *RateLimitError) Error() string {
	msg := e.Message
	if msg == "" {
		msg = "provider rate limited"
	}
	if e.StatusCode > 0 {
		return fmt.Sprintf("%s (status=%d)", msg, e.StatusCode)
	}
	return msg
}

// AsRateLimitError attempts to unwrap an error into a RateLimitError.
func AsRateLimitError(err error) (*RateLimitError, bool) {
	var rlErr *RateLimitError
	if errors.As(err, &rlErr) {
		return rlErr, true
	}
	return nil, false
}

// Retryable reports whether a failed call is worth repeating. Unsupported
// capabilities and 4xx responses are permanent.
func Retryable(err error) bool {
	if err == nil || IsUnsupported(err) {
		return false
	}
	if errors.Is(err, ErrProviderUnavailable) || errors.Is(err, context.Canceled) {
		return false
	}
	var statusErr *StatusError
	if errors.As(err, &statusErr) {
		return statusErr.Transient()
	}
	return true
}
