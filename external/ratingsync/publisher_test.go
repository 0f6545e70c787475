package ratingsync

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	sonic "github.com/bytedance/sonic"
	"github.com/riskibarqy/box-league/internal/platform/logging"
	"github.com/riskibarqy/box-league/internal/platform/resilience"
	"github.com/riskibarqy/box-league/internal/usecase"
)

func sampleSubmission() usecase.RatingSubmission {
	return usecase.RatingSubmission{
		LeagueID:   "thursday-ladder",
		SeasonID:   "season-1",
		WeekNumber: 2,
		BoxNumber:  3,
		MatchID:    "match-42",
		Team1:      []usecase.RatingParticipant{{PlayerID: "player-09", ExternalRatingID: "dupr-09"}, {PlayerID: "player-12", ExternalRatingID: "dupr-12"}},
		Team2:      []usecase.RatingParticipant{{PlayerID: "player-10", ExternalRatingID: "dupr-10"}, {PlayerID: "player-11", ExternalRatingID: "dupr-11"}},
		Games:      []usecase.RatingGame{{Team1: 11, Team2: 8}},
		PlayedAt:   time.Date(2026, 3, 12, 20, 30, 0, 0, time.UTC),
	}
}

func TestPublishMatch_SendsIdempotentRequest(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/matches" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		if got := r.Header.Get("Idempotency-Key"); got != "match-42" {
			t.Errorf("unexpected idempotency key: %s", got)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer rating-token" {
			t.Errorf("unexpected authorization: %s", got)
		}

		var got usecase.RatingSubmission
		if err := sonic.ConfigDefault.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("decode body: %v", err)
		}
		if got.BoxNumber != 3 || len(got.Team1) != 2 || got.Team2[1].ExternalRatingID != "dupr-11" {
			t.Errorf("unexpected submission: %+v", got)
		}
		w.WriteHeader(http.StatusAccepted)
	}))
	defer srv.Close()

	p := NewPublisher(Config{BaseURL: srv.URL, Token: "rating-token"}, logging.NewNop())
	if err := p.PublishMatch(context.Background(), sampleSubmission()); err != nil {
		t.Fatalf("publish: %v", err)
	}
}

func TestPublishMatch_ConflictMeansAlreadyRated(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusConflict)
	}))
	defer srv.Close()

	p := NewPublisher(Config{BaseURL: srv.URL}, logging.NewNop())
	if err := p.PublishMatch(context.Background(), sampleSubmission()); err != nil {
		t.Fatalf("conflict should be treated as success, got %v", err)
	}
}

func TestPublishMatch_RejectedRequestIsNotTransient(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
		_, _ = w.Write([]byte(`{"error":"unknown player"}`))
	}))
	defer srv.Close()

	p := NewPublisher(Config{BaseURL: srv.URL}, logging.NewNop())
	err := p.PublishMatch(context.Background(), sampleSubmission())
	if err == nil || errors.Is(err, errRatingTransient) {
		t.Fatalf("expected permanent failure, got %v", err)
	}
	if !strings.Contains(err.Error(), "unknown player") {
		t.Fatalf("error should carry the response body, got %v", err)
	}
}

func TestPublishMatch_CircuitOpensAfterServerErrors(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	p := NewPublisher(Config{
		BaseURL:        srv.URL,
		CircuitBreaker: resilience.CircuitBreakerConfig{Enabled: true, FailureThreshold: 2, OpenTimeout: time.Minute, HalfOpenMaxReq: 1},
	}, logging.NewNop())

	for range 3 {
		if err := p.PublishMatch(context.Background(), sampleSubmission()); err == nil {
			t.Fatalf("expected failure")
		}
	}
	err := p.PublishMatch(context.Background(), sampleSubmission())
	if !errors.Is(err, resilience.ErrCircuitOpen) {
		t.Fatalf("expected open circuit, got %v", err)
	}
	if calls.Load() != 2 {
		t.Fatalf("expected two outbound calls, got %d", calls.Load())
	}
}

func TestPublishMatch_InvalidBaseURL(t *testing.T) {
	t.Parallel()

	p := NewPublisher(Config{BaseURL: "ftp://ratings"}, logging.NewNop())
	if err := p.PublishMatch(context.Background(), sampleSubmission()); err == nil {
		t.Fatalf("expected invalid base url error")
	}
}
