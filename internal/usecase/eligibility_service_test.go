package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/riskibarqy/box-league/internal/domain/eligibility"
	"github.com/riskibarqy/box-league/internal/domain/league"
)

func TestCheckJoin(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	result, err := f.eligibility.CheckJoin(ctx, JoinCheckInput{LeagueID: testLeague, Applicant: eligibility.Applicant{PlayerID: "player-01"}})
	if err != nil {
		t.Fatalf("check join: %v", err)
	}
	if result.Eligible {
		t.Fatalf("active members cannot join twice")
	}

	result, err = f.eligibility.CheckJoin(ctx, JoinCheckInput{LeagueID: testLeague, Applicant: eligibility.Applicant{PlayerID: "newcomer"}})
	if err != nil {
		t.Fatalf("check join: %v", err)
	}
	if !result.Eligible {
		t.Fatalf("newcomer should be eligible, got %v", result.Blockers)
	}

	if _, err := f.eligibility.CheckJoin(ctx, JoinCheckInput{LeagueID: testLeague}); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected invalid input, got %v", err)
	}
}

func TestJoinLeagueEnforcesAgePolicy(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	l, err := f.leagues.GetLeague(ctx, testLeague)
	if err != nil {
		t.Fatalf("get league: %v", err)
	}
	rules := l.Rules.Clone()
	rules.Join.Age = league.AgeBounds{Enforced: true, Min: 18, Max: 99}
	if _, err := f.leagues.UpdateRules(ctx, UpdateRulesInput{ActorID: testOrganizer, LeagueID: testLeague, Rules: rules, ExpectedRevision: l.Revision}); err != nil {
		t.Fatalf("update rules: %v", err)
	}

	young := time.Date(2012, 5, 1, 0, 0, 0, 0, time.UTC)
	_, err = f.leagues.JoinLeague(ctx, JoinLeagueInput{LeagueID: testLeague, PlayerID: "junior", DateOfBirth: &young})
	var be *BlockedError
	if !errors.As(err, &be) {
		t.Fatalf("under-age applicant should be blocked, got %v", err)
	}

	adult := time.Date(1990, 5, 1, 0, 0, 0, 0, time.UTC)
	joined, err := f.leagues.JoinLeague(ctx, JoinLeagueInput{LeagueID: testLeague, PlayerID: "senior", DisplayName: "Senior", DateOfBirth: &adult})
	if err != nil {
		t.Fatalf("join: %v", err)
	}
	if !joined.Member.Active() || !joined.Member.JoinedAt.Equal(testNow) {
		t.Fatalf("unexpected member %+v", joined.Member)
	}

	if _, err := f.leagues.UpdateRules(ctx, UpdateRulesInput{ActorID: testOrganizer, LeagueID: testLeague, Rules: rules, ExpectedRevision: l.Revision}); !errors.Is(err, ErrConflict) {
		t.Fatalf("stale revision should conflict, got %v", err)
	}
}

func TestPlacementAndSubstituteCheck(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	sn, _ := f.startSeason(t)
	ref := f.ref(sn, 1)

	high := 4.7
	box, err := f.eligibility.Placement(ctx, PlacementInput{WeekRef: ref, Rating: &high})
	if err != nil {
		t.Fatalf("placement: %v", err)
	}
	if box != 1 {
		t.Fatalf("a 4.7 should land in box 1, got %d", box)
	}

	if _, err := f.attendance.DeclareAbsence(ctx, AbsenceActionInput{WeekRef: ref, PlayerID: "player-02"}); err != nil {
		t.Fatalf("declare: %v", err)
	}
	result, err := f.eligibility.CheckSubstitute(ctx, SubstituteCheckInput{WeekRef: ref, AbsentPlayerID: "player-02", SubstituteID: "player-05"})
	if err != nil {
		t.Fatalf("check substitute: %v", err)
	}
	if result.Eligible {
		t.Fatalf("a rostered player cannot substitute")
	}

	if _, err := f.eligibility.CheckSubstitute(ctx, SubstituteCheckInput{WeekRef: ref, AbsentPlayerID: "player-03", SubstituteID: "x"}); !errors.Is(err, ErrNotFound) {
		t.Fatalf("missing absence should be not found, got %v", err)
	}
}
