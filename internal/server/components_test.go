package server

import (
	"net/http/httptest"
	"testing"

	"totals-tracker/internal/config"
	"totals-tracker/internal/dashboard"
	"totals-tracker/internal/notify"
)

func TestOriginChecker(t *testing.T) {
	if originChecker(nil) != nil || originChecker([]string{"https://a.example", "*"}) != nil {
		t.Fatalf("expected wildcard and empty lists to accept all origins")
	}

	check := originChecker([]string{"http://localhost:5173/"})
	cases := []struct {
		origin string
		want   bool
	}{
		{"", true},
		{"http://localhost:5173", true},
		{"http://localhost:3000", false},
		{"https://evil.example", false},
	}
	for _, tc := range cases {
		req := httptest.NewRequest("GET", "/ws", nil)
		if tc.origin != "" {
			req.Header.Set("Origin", tc.origin)
		}
		if got := check(req); got != tc.want {
			t.Fatalf("origin %q: expected %v, got %v", tc.origin, tc.want, got)
		}
	}
}

func TestBuildNotifierSelectsChannel(t *testing.T) {
	if _, ok := buildNotifier(config.Config{}, nil, nil).(notify.LogNotifier); !ok {
		t.Fatalf("expected log notifier without telegram settings")
	}
	cfg := config.Config{Telegram: config.TelegramConfig{Token: "tok", ChatID: "42"}}
	if _, ok := buildNotifier(cfg, nil, nil).(*notify.Telegram); !ok {
		t.Fatalf("expected telegram notifier")
	}
}

func TestBuildBroadcasterAddsRedisWhenConfigured(t *testing.T) {
	hub := dashboard.NewHub(nil, nil, nil)
	defer hub.Close()

	b, closer := buildBroadcaster(config.Config{}, hub, nil, nil)
	if b != dashboard.Broadcaster(hub) || closer != nil {
		t.Fatalf("expected hub only without redis url")
	}

	b, closer = buildBroadcaster(config.Config{Redis: config.RedisConfig{URL: "not a url"}}, hub, nil, nil)
	if b != dashboard.Broadcaster(hub) || closer != nil {
		t.Fatalf("expected invalid redis url to fall back to hub")
	}

	b, closer = buildBroadcaster(config.Config{Redis: config.RedisConfig{URL: "redis://localhost:6379/0"}}, hub, nil, nil)
	fan, ok := b.(dashboard.Fanout)
	if !ok || len(fan) != 2 || closer == nil {
		t.Fatalf("expected hub and redis fanout, got %T", b)
	}
	_ = closer.Close()
}
