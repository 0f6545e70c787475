package logging

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	sonic "github.com/bytedance/sonic"
	"go.opentelemetry.io/otel/trace"

	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

type mirrored struct {
	level Level
	msg   string
	args  []any
}

func captureMirror(t *testing.T) *[]mirrored {
	t.Helper()
	var got []mirrored
	SetMirror(func(_ context.Context, level Level, msg string, args ...any) {
		got = append(got, mirrored{level: level, msg: msg, args: args})
	})
	t.Cleanup(func() { SetMirror(nil) })
	return &got
}

func TestLogger_MirrorsEnabledRecordsOnly(t *testing.T) {
	got := captureMirror(t)
	core, logs := observer.New(zap.InfoLevel)
	logger := FromZap(zap.New(core))

	logger.Debug("skipped")
	logger.InfoContext(context.Background(), "week activated", "week", 2)
	logger.Warn("box under capacity", "box", 3)

	if logs.Len() != 2 {
		t.Fatalf("expected 2 zap entries, got %d", logs.Len())
	}
	if len(*got) != 2 {
		t.Fatalf("expected 2 mirrored records, got %d", len(*got))
	}
	first := (*got)[0]
	if first.level != LevelInfo || first.msg != "week activated" || first.args[1] != 2 {
		t.Fatalf("unexpected mirrored record %+v", first)
	}
}

func TestLogger_SetMirrorNilStopsMirroring(t *testing.T) {
	got := captureMirror(t)
	SetMirror(nil)

	core, _ := observer.New(zap.InfoLevel)
	FromZap(zap.New(core)).Info("not mirrored")

	if len(*got) != 0 {
		t.Fatalf("expected no mirrored records, got %d", len(*got))
	}
}

func TestZapFields(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	logger := FromZap(zap.New(core))

	logger.Error("finalize failed", "error", errors.New("boom"), "week", 4, "dangling")

	entry := logs.All()[0]
	ctx := entry.ContextMap()
	if ctx["error"] != "boom" {
		t.Fatalf("expected error field, got %v", ctx["error"])
	}
	if ctx["week"] != int64(4) {
		t.Fatalf("expected week=4, got %#v", ctx["week"])
	}
	if _, ok := ctx["dangling"]; !ok {
		t.Fatalf("expected dangling key to be kept")
	}
}

func TestNilLoggerFallsBackToDefault(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	previous := Default()
	SetDefault(FromZap(zap.New(core)))
	t.Cleanup(func() { SetDefault(previous) })

	var logger *Logger
	logger.Info("via default")

	if logs.FilterMessage("via default").Len() != 1 {
		t.Fatalf("expected nil logger to write through the default")
	}
}

func TestParseLevel(t *testing.T) {
	cases := map[string]Level{"": LevelInfo, "DEBUG": LevelDebug, " warning ": LevelWarn, "error": LevelError}
	for in, want := range cases {
		got, err := ParseLevel(in)
		if err != nil || got != want {
			t.Fatalf("ParseLevel(%q) = %v, %v; want %v", in, got, err, want)
		}
	}
	if _, err := ParseLevel("verbose"); err == nil {
		t.Fatalf("expected error for unknown level")
	}
}

func TestNew_JSONIncludesComponentAndTrace(t *testing.T) {
	var buf bytes.Buffer
	logger := New(Options{Level: LevelInfo, Format: FormatJSON, Output: &buf}).Named("anubis")

	traceID, _ := trace.TraceIDFromHex("4bf92f3577b34da6a3ce929d0e0e4736")
	spanID, _ := trace.SpanIDFromHex("00f067aa0ba902b7")
	ctx := trace.ContextWithSpanContext(context.Background(), trace.NewSpanContext(trace.SpanContextConfig{
		TraceID:    traceID,
		SpanID:     spanID,
		TraceFlags: trace.FlagsSampled,
	}))
	logger.InfoContext(ctx, "principal verified", "user_id", "player-01")

	var record map[string]any
	if err := sonic.Unmarshal(buf.Bytes(), &record); err != nil {
		t.Fatalf("decode record %q: %v", buf.String(), err)
	}
	if record["component"] != "anubis" || record["user_id"] != "player-01" {
		t.Fatalf("unexpected record %v", record)
	}
	if record["trace_id"] != traceID.String() || record["span_id"] != spanID.String() {
		t.Fatalf("missing trace correlation in %v", record)
	}
	if caller, _ := record["caller"].(string); !strings.HasPrefix(caller, "logging/logger_test.go") {
		t.Fatalf("caller should point at the call site, got %q", caller)
	}
}

func TestNew_ConsoleFormat(t *testing.T) {
	var buf bytes.Buffer
	New(Options{Level: LevelWarn, Format: FormatConsole, Output: &buf}).Warn("box under capacity", "box", 3)

	line := buf.String()
	if strings.HasPrefix(line, "{") || !strings.Contains(line, "box under capacity") {
		t.Fatalf("expected console output, got %q", line)
	}
}
