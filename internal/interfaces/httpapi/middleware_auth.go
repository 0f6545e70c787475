package httpapi

import (
	"context"
	"crypto/subtle"
	"fmt"
	"net/http"
	"strings"

	"github.com/riskibarqy/box-league/internal/domain/user"
	"github.com/riskibarqy/box-league/internal/usecase"
)

const internalJobTokenHeader = "X-Internal-Job-Token"

// TokenVerifier resolves a bearer token into the calling user.
type TokenVerifier interface {
	VerifyAccessToken(ctx context.Context, token string) (user.Principal, error)
}

// RequireAuth rejects requests without a verifiable bearer token.
func RequireAuth(verifier TokenVerifier, next http.Handler) http.Handler {
	return authenticate(verifier, false, next)
}

// OptionalAuth serves anonymous requests, but a token that is present must
// still verify.
func OptionalAuth(verifier TokenVerifier, next http.Handler) http.Handler {
	return authenticate(verifier, true, next)
}

func authenticate(verifier TokenVerifier, anonymousOK bool, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := strings.TrimSpace(r.Header.Get("Authorization"))
		if header == "" && anonymousOK {
			next.ServeHTTP(w, r)
			return
		}

		ctx := r.Context()
		token, err := parseBearer(header)
		if err != nil {
			writeError(ctx, w, err)
			return
		}
		principal, err := verifier.VerifyAccessToken(ctx, token)
		if err != nil {
			writeError(ctx, w, err)
			return
		}
		next.ServeHTTP(w, r.WithContext(withPrincipal(ctx, principal)))
	})
}

func parseBearer(header string) (string, error) {
	if header == "" {
		return "", fmt.Errorf("%w: missing Authorization header", usecase.ErrUnauthorized)
	}
	scheme, token, ok := strings.Cut(header, " ")
	token = strings.TrimSpace(token)
	if !ok || !strings.EqualFold(scheme, "Bearer") || token == "" {
		return "", fmt.Errorf("%w: invalid Authorization header format", usecase.ErrUnauthorized)
	}
	return token, nil
}

// RequireInternalJobToken guards scheduler-triggered endpoints with a shared
// secret. An unset secret disables the endpoints entirely.
func RequireInternalJobToken(secret string, next http.Handler) http.Handler {
	want := []byte(strings.TrimSpace(secret))
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if len(want) == 0 {
			writeError(ctx, w, fmt.Errorf("%w: internal job token is not configured", usecase.ErrDependencyUnavailable))
			return
		}

		got := []byte(strings.TrimSpace(r.Header.Get(internalJobTokenHeader)))
		if subtle.ConstantTimeCompare(got, want) != 1 {
			writeError(ctx, w, fmt.Errorf("%w: invalid internal job token", usecase.ErrUnauthorized))
			return
		}
		next.ServeHTTP(w, r)
	})
}
