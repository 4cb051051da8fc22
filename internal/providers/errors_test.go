package providers

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
)

func TestRateLimitErrorString(t *testing.T) {
	err := &RateLimitError{
		Provider:   "p",
		StatusCode: 429,
		Message:    "rate limited",
	}
	if got := err.Error(); got == "" || got == "rate limited" {
		t.Fatalf("expected status in error string, got %q", got)
	}

	rl, ok := AsRateLimitError(fmt.Errorf("wrapped: %w", err))
	if !ok || rl == nil {
		t.Fatalf("expected to unwrap rate limit error")
	}

	noStatus := &RateLimitError{}
	if got := noStatus.Error(); got == "" {
		t.Fatalf("expected fallback message")
	}
}

func TestStatusErrorString(t *testing.T) {
	err := &StatusError{Provider: "theoddsapi", Endpoint: "odds", StatusCode: 500, Body: "oops"}
	if !strings.Contains(err.Error(), "500") || !strings.Contains(err.Error(), "oops") {
		t.Fatalf("unexpected error string %q", err.Error())
	}
	if !err.Transient() {
		t.Fatalf("expected 5xx to be transient")
	}
	if (&StatusError{StatusCode: 401}).Transient() {
		t.Fatalf("expected 4xx to be permanent")
	}
}

func TestIsUnsupportedUnwraps(t *testing.T) {
	if !IsUnsupported(fmt.Errorf("scores for basketball_euroleague: %w", ErrUnsupported)) {
		t.Fatalf("expected wrapped unsupported error to match")
	}
	if IsUnsupported(errors.New("boom")) {
		t.Fatalf("expected generic error not to match")
	}
}

func TestRetryable(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"unsupported", ErrUnsupported, false},
		{"unavailable", ErrProviderUnavailable, false},
		{"client error", &StatusError{StatusCode: 401}, false},
		{"server error", &StatusError{StatusCode: 503}, true},
		{"rate limit", &RateLimitError{StatusCode: 429}, true},
		{"transport", errors.New("connection reset"), true},
		{"canceled", context.Canceled, false},
	}
	for _, tc := range cases {
		if got := Retryable(tc.err); got != tc.want {
			t.Fatalf("%s: Retryable = %v, want %v", tc.name, got, tc.want)
		}
	}
}
