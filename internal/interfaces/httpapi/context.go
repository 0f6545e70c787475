package httpapi

import (
	"context"
	"fmt"

	"github.com/riskibarqy/box-league/internal/domain/user"
	"github.com/riskibarqy/box-league/internal/usecase"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

type principalKey struct{}

// withPrincipal stores the verified caller and tags the request span with it.
func withPrincipal(ctx context.Context, p user.Principal) context.Context {
	if span := trace.SpanFromContext(ctx); span.IsRecording() {
		span.SetAttributes(attribute.String("enduser.id", p.UserID))
	}
	return context.WithValue(ctx, principalKey{}, p)
}

func principalFromContext(ctx context.Context) (user.Principal, bool) {
	p, ok := ctx.Value(principalKey{}).(user.Principal)
	return p, ok && p.UserID != ""
}

// requirePrincipal is for handlers that act as the caller rather than on
// behalf of an organizer.
func requirePrincipal(ctx context.Context) (user.Principal, error) {
	p, ok := principalFromContext(ctx)
	if !ok {
		return user.Principal{}, fmt.Errorf("%w: sign in to continue", usecase.ErrUnauthorized)
	}
	return p, nil
}

// actorID is the authenticated user id, or empty for anonymous requests.
func actorID(ctx context.Context) string {
	p, _ := principalFromContext(ctx)
	return p.UserID
}
