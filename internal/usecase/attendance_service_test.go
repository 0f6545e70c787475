package usecase

import (
	"context"
	"errors"
	"slices"
	"testing"

	"github.com/riskibarqy/box-league/internal/domain/match"
	"github.com/riskibarqy/box-league/internal/domain/week"
)

func TestAbsenceRoundTripRestoresCapacity(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	sn, _ := f.startSeason(t)
	ref := f.ref(sn, 1)

	before, err := f.attendance.BoxCapacity(ctx, ref, 3)
	if err != nil {
		t.Fatalf("capacity: %v", err)
	}
	if _, err := f.attendance.DeclareAbsence(ctx, AbsenceActionInput{WeekRef: ref, PlayerID: "player-10", Reason: "injury"}); err != nil {
		t.Fatalf("declare: %v", err)
	}
	during, _ := f.attendance.BoxCapacity(ctx, ref, 3)
	if during.Effective != before.Effective-1 || !during.Runnable {
		t.Fatalf("box of five should drop to four and stay runnable, got %+v", during)
	}

	if _, err := f.attendance.DeclareAbsence(ctx, AbsenceActionInput{WeekRef: ref, PlayerID: "player-10"}); !errors.Is(err, ErrConflict) {
		t.Fatalf("duplicate absence should conflict, got %v", err)
	}

	if _, err := f.attendance.CancelAbsence(ctx, PlayerActionInput{WeekRef: ref, PlayerID: "player-10"}); err != nil {
		t.Fatalf("cancel: %v", err)
	}
	after, _ := f.attendance.BoxCapacity(ctx, ref, 3)
	if after != before {
		t.Fatalf("capacity should be restored: before=%+v after=%+v", before, after)
	}
}

func TestSelfServiceAbsenceAndCheckIn(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	sn, _ := f.startSeason(t)

	self := WeekRef{ActorID: "player-02", LeagueID: testLeague, SeasonID: sn.ID, WeekNumber: 1}
	if _, err := f.attendance.DeclareAbsence(ctx, AbsenceActionInput{WeekRef: self, PlayerID: "player-03"}); !errors.Is(err, ErrForbidden) {
		t.Fatalf("players may not declare absences for others, got %v", err)
	}

	w, err := f.attendance.CheckIn(ctx, PlayerActionInput{WeekRef: self, PlayerID: "player-02"})
	if err != nil {
		t.Fatalf("self check-in: %v", err)
	}
	if w.AttendanceOf("player-02").Status != week.AttendanceCheckedIn {
		t.Fatalf("player should be checked in, got %+v", w.AttendanceOf("player-02"))
	}

	if _, err := f.attendance.LockAttendance(ctx, f.ref(sn, 1)); err != nil {
		t.Fatalf("lock: %v", err)
	}
	if _, err := f.attendance.CheckIn(ctx, PlayerActionInput{WeekRef: self, PlayerID: "player-02"}); !errors.Is(err, week.ErrAttendanceLocked) {
		t.Fatalf("self check-in should be refused once locked, got %v", err)
	}
	if _, err := f.attendance.CheckIn(ctx, PlayerActionInput{WeekRef: f.ref(sn, 1), PlayerID: "player-02"}); err != nil {
		t.Fatalf("organizer check-in should work while locked: %v", err)
	}
}

func TestSubstituteOnActiveWeekRewritesMatches(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	sn, _ := f.startSeason(t)
	ref := f.ref(sn, 1)

	if _, err := f.weeks.Activate(ctx, ref); err != nil {
		t.Fatalf("activate: %v", err)
	}
	if _, err := f.attendance.RecordNoShowAbsence(ctx, AbsenceActionInput{WeekRef: ref, PlayerID: "player-09"}); err != nil {
		t.Fatalf("no-show absence: %v", err)
	}

	if _, err := f.leagues.JoinLeague(ctx, JoinLeagueInput{LeagueID: testLeague, PlayerID: "player-14"}); err != nil {
		t.Fatalf("join: %v", err)
	}
	result, err := f.attendance.AssignSubstitute(ctx, SubstituteInput{WeekRef: ref, AbsentPlayerID: "player-09", SubstituteID: "player-14"})
	if err != nil {
		t.Fatalf("assign substitute: %v", err)
	}
	if result.UpdatedMatches == 0 {
		t.Fatalf("unfinished matches should be rewritten")
	}

	matches, _ := f.store.Repositories().Matches.ListByWeek(ctx, sn.ID, 1)
	for _, m := range matches {
		if m.BoxNumber == 3 && m.Status == match.StatusScheduled && m.Involves("player-09") {
			t.Fatalf("match %s still lists the absentee", m.ID)
		}
	}
	if !slices.Contains(result.Week.Lineup(3), "player-14") {
		t.Fatalf("lineup should contain the substitute, got %v", result.Week.Lineup(3))
	}
	if result.Week.AttendanceOf("player-09").Status != week.AttendanceNoShow {
		t.Fatalf("no-show absence should mark attendance")
	}
}

func TestSubstituteLimitsAndEligibility(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	sn, _ := f.startSeason(t)
	ref := f.ref(sn, 1)

	if _, err := f.attendance.DeclareAbsence(ctx, AbsenceActionInput{WeekRef: ref, PlayerID: "player-10"}); err != nil {
		t.Fatalf("declare: %v", err)
	}

	_, err := f.attendance.AssignSubstitute(ctx, SubstituteInput{WeekRef: ref, AbsentPlayerID: "player-10", SubstituteID: "player-11"})
	var be *BlockedError
	if !errors.As(err, &be) {
		t.Fatalf("a rostered player cannot substitute, got %v", err)
	}

	for range 3 {
		if _, err := f.store.Repositories().Members.IncrementSubstitutesUsed(ctx, testLeague, "player-10", 1); err != nil {
			t.Fatalf("increment: %v", err)
		}
	}
	_, err = f.attendance.AssignSubstitute(ctx, SubstituteInput{WeekRef: ref, AbsentPlayerID: "player-10", SubstituteID: "outsider"})
	if !errors.As(err, &be) {
		t.Fatalf("season substitute limit should block, got %v", err)
	}
	if !slices.ContainsFunc(be.Blockers, func(b string) bool { return b == "player player-10 already used 3 of 3 substitutes this season" }) {
		t.Fatalf("missing limit blocker, got %v", be.Blockers)
	}
}

func TestRemoveSubstituteDecrementsCounter(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	sn, _ := f.startSeason(t)
	ref := f.ref(sn, 1)

	if _, err := f.attendance.DeclareAbsence(ctx, AbsenceActionInput{WeekRef: ref, PlayerID: "player-12"}); err != nil {
		t.Fatalf("declare: %v", err)
	}
	if _, err := f.attendance.AssignSubstitute(ctx, SubstituteInput{WeekRef: ref, AbsentPlayerID: "player-12", SubstituteID: "guest-7"}); err != nil {
		t.Fatalf("assign: %v", err)
	}
	if _, err := f.attendance.RemoveSubstitute(ctx, PlayerActionInput{WeekRef: ref, PlayerID: "player-12"}); err != nil {
		t.Fatalf("remove: %v", err)
	}

	m, _, err := f.store.Repositories().Members.Get(ctx, testLeague, "player-12")
	if err != nil {
		t.Fatalf("get member: %v", err)
	}
	if m.SubstitutesUsed != 0 {
		t.Fatalf("counter should be back to zero, got %d", m.SubstitutesUsed)
	}
}

func TestCancelAbsenceReleasesSubstituteSlot(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	sn, _ := f.startSeason(t)
	ref := f.ref(sn, 1)

	if _, err := f.attendance.DeclareAbsence(ctx, AbsenceActionInput{WeekRef: ref, PlayerID: "player-12"}); err != nil {
		t.Fatalf("declare: %v", err)
	}
	result, err := f.attendance.AssignSubstitute(ctx, SubstituteInput{WeekRef: ref, AbsentPlayerID: "player-12", SubstituteID: "guest-7"})
	if err != nil {
		t.Fatalf("assign: %v", err)
	}
	if result.SubstitutesUsed != 1 {
		t.Fatalf("assigning should charge one substitute, got %d", result.SubstitutesUsed)
	}
	if _, err := f.attendance.CancelAbsence(ctx, PlayerActionInput{WeekRef: ref, PlayerID: "player-12"}); err != nil {
		t.Fatalf("cancel: %v", err)
	}

	m, _, err := f.store.Repositories().Members.Get(ctx, testLeague, "player-12")
	if err != nil {
		t.Fatalf("get member: %v", err)
	}
	if m.SubstitutesUsed != 0 {
		t.Fatalf("cancelled absence should give the substitute back, got %d", m.SubstitutesUsed)
	}
}

func TestCancelAbsenceWithoutSubstituteKeepsCounter(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	sn, _ := f.startSeason(t)
	ref := f.ref(sn, 1)

	if _, err := f.store.Repositories().Members.IncrementSubstitutesUsed(ctx, testLeague, "player-12", 1); err != nil {
		t.Fatalf("increment: %v", err)
	}
	if _, err := f.attendance.DeclareAbsence(ctx, AbsenceActionInput{WeekRef: ref, PlayerID: "player-12"}); err != nil {
		t.Fatalf("declare: %v", err)
	}
	if _, err := f.attendance.CancelAbsence(ctx, PlayerActionInput{WeekRef: ref, PlayerID: "player-12"}); err != nil {
		t.Fatalf("cancel: %v", err)
	}

	m, _, _ := f.store.Repositories().Members.Get(ctx, testLeague, "player-12")
	if m.SubstitutesUsed != 1 {
		t.Fatalf("counter from earlier weeks must stay, got %d", m.SubstitutesUsed)
	}
}

func TestNoShowOnActiveWeekFinalizesWithOneRow(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	sn, _ := f.startSeason(t)
	ref := f.ref(sn, 1)

	if _, err := f.weeks.Activate(ctx, ref); err != nil {
		t.Fatalf("activate: %v", err)
	}
	if _, err := f.attendance.RecordNoShowAbsence(ctx, AbsenceActionInput{WeekRef: ref, PlayerID: "player-06"}); err != nil {
		t.Fatalf("no-show absence: %v", err)
	}
	f.playAll(t, sn, 1)
	if _, err := f.weeks.Close(ctx, ref); err != nil {
		t.Fatalf("close: %v", err)
	}
	result, err := f.weeks.Finalize(ctx, ref)
	if err != nil {
		t.Fatalf("finalize: %v", err)
	}

	var rows []week.StandingRow
	for _, r := range result.Week.Standings.Rows {
		if r.PlayerID == "player-06" {
			rows = append(rows, r)
		}
	}
	if len(rows) != 1 || !rows[0].WasAbsent {
		t.Fatalf("expected one absentee row for player-06, got %+v", rows)
	}
	if result.NextWeek == nil {
		t.Fatalf("finalize should draft week 2")
	}
	seats := 0
	for _, box := range result.NextWeek.Boxes {
		if slices.Contains(box.PlayerIDs, "player-06") {
			seats++
		}
	}
	if seats != 1 {
		t.Fatalf("player-06 should be seated once in the next draft, got %d", seats)
	}
}
