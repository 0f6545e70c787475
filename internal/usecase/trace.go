package usecase

import (
	"context"
	"errors"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
)

var usecaseTracer = otel.Tracer("github.com/riskibarqy/box-league/internal/usecase")

// startUsecaseSpan opens a child span only under an existing request span.
// Untraced callers such as tests get a no-op span.
func startUsecaseSpan(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	if !trace.SpanContextFromContext(ctx).IsValid() {
		return ctx, noop.Span{}
	}
	return usecaseTracer.Start(ctx, name, trace.WithAttributes(attrs...))
}

func (r WeekRef) spanAttributes() []attribute.KeyValue {
	attrs := make([]attribute.KeyValue, 0, 3)
	if r.LeagueID != "" {
		attrs = append(attrs, attribute.String("league.id", r.LeagueID))
	}
	if r.SeasonID != "" {
		attrs = append(attrs, attribute.String("season.id", r.SeasonID))
	}
	if r.WeekNumber > 0 {
		attrs = append(attrs, attribute.Int("week.number", r.WeekNumber))
	}
	return attrs
}

// recordOutcome marks the span in ctx as failed for server-side errors.
// Caller mistakes and conflicts are kept as an event on an OK span.
func recordOutcome(ctx context.Context, err error) {
	if err == nil {
		return
	}
	span := trace.SpanFromContext(ctx)
	if !span.IsRecording() {
		return
	}
	var be *BlockedError
	switch {
	case errors.As(err, &be):
		span.AddEvent("blocked", trace.WithAttributes(
			attribute.String("operation", be.Operation),
			attribute.StringSlice("blockers", be.Blockers),
		))
	case errors.Is(err, ErrInvalidInput),
		errors.Is(err, ErrNotFound),
		errors.Is(err, ErrUnauthorized),
		errors.Is(err, ErrForbidden),
		errors.Is(err, ErrConflict):
		span.AddEvent("rejected", trace.WithAttributes(attribute.String("reason", err.Error())))
	default:
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
}
