package httpapi

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
)

var apiTracer = otel.Tracer("github.com/riskibarqy/box-league/internal/interfaces/httpapi")

// spanPathValues are the route wildcards copied onto handler spans.
var spanPathValues = []struct {
	wildcard string
	key      attribute.Key
	numeric  bool
}{
	{"leagueID", "league.id", false},
	{"seasonID", "season.id", false},
	{"week", "week.number", true},
	{"box", "box.number", true},
	{"playerID", "player.id", false},
}

// startHandlerSpan opens "httpapi.Handler.<name>" under the request span.
// Requests filtered out of tracing, such as health checks, get a no-op span.
func startHandlerSpan(r *http.Request, name string) (context.Context, trace.Span) {
	ctx := r.Context()
	if !trace.SpanContextFromContext(ctx).IsValid() {
		return ctx, noop.Span{}
	}
	return apiTracer.Start(ctx, "httpapi.Handler."+name, trace.WithAttributes(handlerAttributes(r)...))
}

func handlerAttributes(r *http.Request) []attribute.KeyValue {
	attrs := make([]attribute.KeyValue, 0, len(spanPathValues)+1)
	if r.Pattern != "" {
		attrs = append(attrs, attribute.String("http.route", r.Pattern))
	}
	for _, pv := range spanPathValues {
		raw := strings.TrimSpace(r.PathValue(pv.wildcard))
		if raw == "" {
			continue
		}
		if n, err := strconv.Atoi(raw); err == nil && pv.numeric {
			attrs = append(attrs, pv.key.Int(n))
			continue
		}
		attrs = append(attrs, pv.key.String(raw))
	}
	return attrs
}

func markSpanFailed(ctx context.Context, err error) {
	span := trace.SpanFromContext(ctx)
	if !span.IsRecording() {
		return
	}
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
}
