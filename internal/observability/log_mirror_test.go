package observability

import (
	"errors"
	"testing"
	"time"

	otellog "go.opentelemetry.io/otel/log"
	"go.uber.org/zap/zapcore"
)

func TestIsQuietRequestLog(t *testing.T) {
	cases := []struct {
		name string
		msg  string
		args []any
		want bool
	}{
		{name: "health probe", msg: "http request", args: []any{"method", "GET", "path", "/healthz"}, want: true},
		{name: "openapi fetch", msg: "http request", args: []any{"path", "/openapi.yaml"}, want: true},
		{name: "league read", msg: "http request", args: []any{"path", "/v1/leagues"}, want: false},
		{name: "other message", msg: "week finalized", args: []any{"path", "/healthz"}, want: false},
		{name: "missing path", msg: "http request", args: []any{"status", 200}, want: false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := isQuietRequestLog(tc.msg, tc.args); got != tc.want {
				t.Fatalf("isQuietRequestLog = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestLogAttributes(t *testing.T) {
	attrs := logAttributes([]any{"league_id", "thursday-ladder", "week", 3, 42, "box", "dangling"})
	if len(attrs) != 4 {
		t.Fatalf("expected 4 attributes, got %d", len(attrs))
	}
	if attrs[0].Key != "league_id" || attrs[0].Value.AsString() != "thursday-ladder" {
		t.Fatalf("unexpected league_id attribute: %+v", attrs[0])
	}
	if attrs[1].Key != "week" || attrs[1].Value.AsInt64() != 3 {
		t.Fatalf("unexpected week attribute: %+v", attrs[1])
	}
	if attrs[2].Key != "arg_2" || attrs[2].Value.AsString() != "box" {
		t.Fatalf("expected positional key for non-string key, got %+v", attrs[2])
	}
	if attrs[3].Key != "dangling" || attrs[3].Value.Kind() != otellog.KindEmpty {
		t.Fatalf("unexpected trailing attribute: %+v", attrs[3])
	}
}

func TestLogValue(t *testing.T) {
	type boxNumber int
	if v := logValue(boxNumber(2), 0); v.Kind() != otellog.KindInt64 || v.AsInt64() != 2 {
		t.Fatalf("expected named int to map to int64, got %s", v.Kind())
	}
	if v := logValue(uint64(1<<63), 0); v.Kind() != otellog.KindString {
		t.Fatalf("expected overflowing uint to map to string, got %s", v.Kind())
	}
	if v := logValue(errors.New("boom"), 0); v.AsString() != "boom" {
		t.Fatalf("unexpected error value %q", v.AsString())
	}
	if v := logValue(1500*time.Millisecond, 0); v.AsString() != "1.5s" {
		t.Fatalf("unexpected duration value %q", v.AsString())
	}

	m := logValue(map[string]any{"promoted": []string{"player-01"}, "frozen": true}, 0)
	if m.Kind() != otellog.KindMap || len(m.AsMap()) != 2 {
		t.Fatalf("unexpected map value %s", m.Kind())
	}
	if m.AsMap()[0].Key != "frozen" {
		t.Fatalf("expected sorted map keys, got %q first", m.AsMap()[0].Key)
	}
}

func TestSeverityOf(t *testing.T) {
	if severityOf(zapcore.WarnLevel) != otellog.SeverityWarn {
		t.Fatalf("warn level mismatch")
	}
	if severityOf(zapcore.DPanicLevel) != otellog.SeverityFatal {
		t.Fatalf("dpanic should map to fatal")
	}
}
