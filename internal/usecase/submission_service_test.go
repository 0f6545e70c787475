package usecase

import (
	"context"
	"errors"
	"slices"
	"sync"
	"testing"

	"github.com/riskibarqy/box-league/internal/domain/match"
	"github.com/riskibarqy/box-league/internal/platform/logging"
)

type recordingPublisher struct {
	mu     sync.Mutex
	failOn string
	sent   []RatingSubmission
}

func (p *recordingPublisher) PublishMatch(_ context.Context, submission RatingSubmission) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if submission.MatchID == p.failOn {
		return errors.New("rating service rejected match")
	}
	p.sent = append(p.sent, submission)
	return nil
}

func TestSubmitWeekSkipsUnlinkedSubstitutes(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	publisher := &recordingPublisher{}
	f.submissions = NewSubmissionService(f.store, publisher, logging.NewNop())

	sn, _ := f.startSeason(t)
	ref := f.ref(sn, 1)
	if _, err := f.leagues.JoinLeague(ctx, JoinLeagueInput{LeagueID: testLeague, PlayerID: "player-14"}); err != nil {
		t.Fatalf("join: %v", err)
	}
	if _, err := f.attendance.DeclareAbsence(ctx, AbsenceActionInput{WeekRef: ref, PlayerID: "player-10"}); err != nil {
		t.Fatalf("declare: %v", err)
	}
	if _, err := f.attendance.AssignSubstitute(ctx, SubstituteInput{WeekRef: ref, AbsentPlayerID: "player-10", SubstituteID: "player-14"}); err != nil {
		t.Fatalf("assign: %v", err)
	}
	if _, err := f.weeks.Activate(ctx, ref); err != nil {
		t.Fatalf("activate: %v", err)
	}

	_, err := f.submissions.SubmitWeek(ctx, ref)
	var be *BlockedError
	if !errors.As(err, &be) {
		t.Fatalf("submitting an active week should be blocked, got %v", err)
	}

	matches := f.playAll(t, sn, 1)
	failing := matches[slices.IndexFunc(matches, func(m match.Match) bool { return !m.Involves("player-14") })]
	publisher.failOn = failing.ID
	if _, err := f.weeks.Close(ctx, ref); err != nil {
		t.Fatalf("close: %v", err)
	}

	report, err := f.submissions.SubmitWeek(ctx, ref)
	if err != nil {
		t.Fatalf("submit week: %v", err)
	}
	if got := len(report.Submitted) + len(report.Skipped) + len(report.Failed); got != len(matches) {
		t.Fatalf("every match should be accounted for: got %d want %d", got, len(matches))
	}
	if _, ok := report.Failed[failing.ID]; !ok {
		t.Fatalf("publisher failure should be reported, got %v", report.Failed)
	}
	if len(report.Skipped) == 0 {
		t.Fatalf("matches with the unlinked substitute should be skipped")
	}
	for _, skipped := range report.Skipped {
		if !slices.Contains(skipped.Blockers, "player player-14 has no external rating id") {
			t.Fatalf("unexpected blockers for %s: %v", skipped.MatchID, skipped.Blockers)
		}
	}
	for _, sent := range publisher.sent {
		for _, p := range append(slices.Clone(sent.Team1), sent.Team2...) {
			if p.ExternalRatingID == "" {
				t.Fatalf("submission %s carries an unlinked player %s", sent.MatchID, p.PlayerID)
			}
		}
		if len(sent.Games) != 1 || sent.Games[0].Team1 != 11 {
			t.Fatalf("unexpected games %v", sent.Games)
		}
	}
}

func TestSubmitWeekWithoutPublisher(t *testing.T) {
	f := newFixture(t)
	sn, _ := f.startSeason(t)

	if _, err := f.submissions.SubmitWeek(context.Background(), f.ref(sn, 1)); !errors.Is(err, ErrDependencyUnavailable) {
		t.Fatalf("expected dependency unavailable, got %v", err)
	}
}
