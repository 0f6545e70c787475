package app

import (
	"strings"
	"testing"
)

func TestWithApplicationName(t *testing.T) {
	cases := []struct {
		name string
		dsn  string
		want string
	}{
		{
			name: "url form",
			dsn:  "postgres://league:secret@db:5432/box_league?sslmode=disable",
			want: "application_name=box-league-api",
		},
		{
			name: "key value form",
			dsn:  "host=db dbname=box_league sslmode=disable",
			want: "host=db dbname=box_league sslmode=disable application_name=box-league-api",
		},
		{
			name: "explicit name kept",
			dsn:  "postgres://db/box_league?application_name=psql",
			want: "application_name=psql",
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := withApplicationName(tc.dsn, "box-league-api")
			if !strings.Contains(got, tc.want) {
				t.Fatalf("expected %q in %q", tc.want, got)
			}
		})
	}

	if got := withApplicationName("postgres://db/x", " "); got != "postgres://db/x" {
		t.Fatalf("blank name should leave dsn unchanged, got %q", got)
	}
}

func TestDatabaseName(t *testing.T) {
	cases := map[string]string{
		"postgres://league:secret@db:5432/box_league?sslmode=disable": "box_league",
		"host=db dbname='box_league_test' sslmode=disable":            "box_league_test",
		"postgres://db:5432":                                         "",
		"host=db user=league":                                         "",
	}
	for dsn, want := range cases {
		if got := databaseName(dsn); got != want {
			t.Fatalf("databaseName(%q) = %q, want %q", dsn, got, want)
		}
	}
}

func TestTraceQuery(t *testing.T) {
	got := traceQuery("\n  SELECT id\n\tFROM weeks\n  WHERE season_id = $1 ")
	if got != "SELECT id FROM weeks WHERE season_id = $1" {
		t.Fatalf("unexpected normalized query %q", got)
	}

	long := traceQuery("SELECT " + strings.Repeat("x, ", 400))
	if len(long) != maxTracedQueryLength+3 || !strings.HasSuffix(long, "...") {
		t.Fatalf("expected truncated query, got length %d", len(long))
	}
}
