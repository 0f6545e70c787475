package main

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/riskibarqy/box-league/internal/platform/logging"
)

func TestParseSteps(t *testing.T) {
	if steps, err := parseSteps(nil); err != nil || steps != 1 {
		t.Fatalf("expected default of 1 step, got %d (%v)", steps, err)
	}
	if steps, err := parseSteps([]string{" 3 "}); err != nil || steps != 3 {
		t.Fatalf("expected 3 steps, got %d (%v)", steps, err)
	}
	for _, raw := range []string{"0", "-2", "x"} {
		if _, err := parseSteps([]string{raw}); err == nil {
			t.Fatalf("expected error for %q", raw)
		}
	}
}

func TestParseVersion(t *testing.T) {
	if v, err := parseVersion("-1"); err != nil || v != -1 {
		t.Fatalf("expected -1 to be accepted, got %d (%v)", v, err)
	}
	if _, err := parseVersion("-2"); err == nil {
		t.Fatalf("expected error for -2")
	}
	if _, err := parseTarget("-1"); err == nil {
		t.Fatalf("expected error for negative goto target")
	}
}

func TestRun_Usage(t *testing.T) {
	if err := run(context.Background(), nil, logging.NewNop()); !errors.Is(err, errUsage) {
		t.Fatalf("expected usage error, got %v", err)
	}
	t.Setenv("DB_URL", "")
	if err := run(context.Background(), []string{"up"}, logging.NewNop()); err == nil || errors.Is(err, errUsage) {
		t.Fatalf("expected missing DB_URL error, got %v", err)
	}
}

func TestResolveMigrationsDir_PrefersEnv(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("MIGRATIONS_DIR", dir)

	got, err := resolveMigrationsDir()
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	want, _ := filepath.Abs(dir)
	if got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}
