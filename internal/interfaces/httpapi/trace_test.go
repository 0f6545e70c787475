package httpapi

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/riskibarqy/box-league/internal/usecase"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func TestStartHandlerSpanWithoutParentIsNoop(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	got, span := startHandlerSpan(req, "Healthz")
	defer span.End()

	if got != req.Context() {
		t.Fatalf("expected context to be returned unchanged without a parent span")
	}
	if span.SpanContext().IsValid() {
		t.Fatalf("expected noop span without a parent span")
	}
}

func TestHandlerAttributesFromRoute(t *testing.T) {
	var attrs []attribute.KeyValue
	mux := http.NewServeMux()
	mux.HandleFunc("GET /v1/leagues/{leagueID}/seasons/{seasonID}/weeks/{week}/boxes/{box}", func(_ http.ResponseWriter, r *http.Request) {
		attrs = handlerAttributes(r)
	})

	mux.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/v1/leagues/thursday-ladder/seasons/s1/weeks/3/boxes/2", nil))

	got := make(map[attribute.Key]attribute.Value, len(attrs))
	for _, kv := range attrs {
		got[kv.Key] = kv.Value
	}
	if got["league.id"].AsString() != "thursday-ladder" || got["season.id"].AsString() != "s1" {
		t.Fatalf("unexpected id attributes %+v", attrs)
	}
	if got["week.number"].AsInt64() != 3 || got["box.number"].AsInt64() != 2 {
		t.Fatalf("unexpected numeric attributes %+v", attrs)
	}
	if _, ok := got["player.id"]; ok {
		t.Fatalf("unexpected player attribute %+v", attrs)
	}
	if got["http.route"].AsString() == "" {
		t.Fatalf("expected http.route attribute")
	}
}

func TestWriteErrorMarksServerFailures(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want codes.Code
	}{
		{name: "not found", err: fmt.Errorf("%w: league=x", usecase.ErrNotFound), want: codes.Unset},
		{name: "unclassified", err: errors.New("connection reset"), want: codes.Error},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			recorder := tracetest.NewSpanRecorder()
			tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
			ctx, span := tp.Tracer("test").Start(context.Background(), "request")

			writeError(ctx, httptest.NewRecorder(), tc.err)
			span.End()

			if got := recorder.Ended()[0].Status().Code; got != tc.want {
				t.Fatalf("status = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestShouldTraceRequest(t *testing.T) {
	skipped := []string{"/healthz", " /Readyz ", "/livez", "/health"}
	for _, path := range skipped {
		if shouldTraceRequest(path) {
			t.Fatalf("expected no tracing for %q", path)
		}
	}

	traced := []string{"/v1/leagues/thursday-ladder/seasons/s1/weeks/2/activate", "/v1/leagues", "/docs"}
	for _, path := range traced {
		if !shouldTraceRequest(path) {
			t.Fatalf("expected tracing for %q", path)
		}
	}
}
