package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestBoolEnvOrDefault(t *testing.T) {
	t.Setenv("BOOL_TEST", "")
	if got := boolEnvOrDefault("BOOL_TEST", true); !got {
		t.Fatalf("expected default true when unset")
	}

	cases := []struct {
		val      string
		expected bool
	}{
		{"true", true},
		{"TRUE", true},
		{"1", true},
		{"yes", true},
		{"false", false},
		{"FALSE", false},
		{"0", false},
		{"no", false},
		{"maybe", true}, // falls back to default on unknown
	}

	for _, tc := range cases {
		t.Setenv("BOOL_TEST", tc.val)
		if got := boolEnvOrDefault("BOOL_TEST", true); got != tc.expected {
			t.Fatalf("expected %v for %s, got %v", tc.expected, tc.val, got)
		}
	}
}

func TestFloatAndHourEnv(t *testing.T) {
	cases := []struct {
		val  string
		want float64
	}{
		{"", 1.5},
		{"2.25", 2.25},
		{"0", 1.5},
		{"-3", 1.5},
		{"x", 1.5},
	}
	for _, tc := range cases {
		t.Setenv("FLOAT_TEST", tc.val)
		if got := floatEnvOrDefault("FLOAT_TEST", 1.5); got != tc.want {
			t.Fatalf("floatEnvOrDefault(%q) = %v, want %v", tc.val, got, tc.want)
		}
	}

	t.Setenv("HOUR_TEST", "0")
	if got := hourEnvOrDefault("HOUR_TEST", 8); got != 0 {
		t.Fatalf("expected midnight accepted, got %d", got)
	}
	t.Setenv("HOUR_TEST", "99")
	if got := hourEnvOrDefault("HOUR_TEST", 8); got != 99 {
		t.Fatalf("expected raw hour kept for validation, got %d", got)
	}
}

func TestLoadDotEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".env")
	if err := os.WriteFile(path, []byte("DOTENV_NEW=from-file\nDOTENV_SET=from-file\n"), 0o600); err != nil {
		t.Fatalf("write env file: %v", err)
	}

	t.Setenv("DOTENV_NEW", "")
	os.Unsetenv("DOTENV_NEW")
	t.Setenv("DOTENV_SET", "from-env")

	if err := LoadDotEnv(path, filepath.Join(dir, "missing.env")); err != nil {
		t.Fatalf("load dotenv: %v", err)
	}
	if got := os.Getenv("DOTENV_NEW"); got != "from-file" {
		t.Fatalf("expected value from file, got %q", got)
	}
	if got := os.Getenv("DOTENV_SET"); got != "from-env" {
		t.Fatalf("expected existing env to win, got %q", got)
	}
}

func TestLoadDotEnvMissingFileIsNoop(t *testing.T) {
	if err := LoadDotEnv(filepath.Join(t.TempDir(), "absent.env")); err != nil {
		t.Fatalf("expected missing file ignored, got %v", err)
	}
}
