package week

import (
	"errors"
	"slices"
	"testing"
	"time"

	"github.com/riskibarqy/box-league/internal/domain/league"
	"github.com/riskibarqy/box-league/internal/domain/match"
)

var testNow = time.Date(2026, 3, 2, 18, 0, 0, 0, time.UTC)

func newTestWeek(t *testing.T) Week {
	t.Helper()

	w, err := NewDraft("league-1", "season-1", 1, testNow, league.DefaultRules(), []BoxAssignment{
		{BoxNumber: 1, PlayerIDs: []string{"p1", "p2", "p3", "p4"}},
		{BoxNumber: 2, PlayerIDs: []string{"p5", "p6", "p7", "p8", "p9"}},
	}, testNow, "organizer")
	if err != nil {
		t.Fatalf("new draft: %v", err)
	}
	return w
}

func TestValidateBoxes(t *testing.T) {
	tests := []struct {
		name      string
		boxes     []BoxAssignment
		targetErr error
	}{
		{
			name:      "no boxes",
			targetErr: ErrInvalidBoxSize,
		},
		{
			name:      "box too small",
			boxes:     []BoxAssignment{{BoxNumber: 1, PlayerIDs: []string{"a", "b", "c"}}},
			targetErr: ErrInvalidBoxSize,
		},
		{
			name:      "box too large",
			boxes:     []BoxAssignment{{BoxNumber: 1, PlayerIDs: []string{"a", "b", "c", "d", "e", "f", "g"}}},
			targetErr: ErrInvalidBoxSize,
		},
		{
			name:      "duplicate inside box",
			boxes:     []BoxAssignment{{BoxNumber: 1, PlayerIDs: []string{"a", "b", "c", "a"}}},
			targetErr: ErrDuplicatePlayer,
		},
		{
			name: "duplicate across boxes",
			boxes: []BoxAssignment{
				{BoxNumber: 1, PlayerIDs: []string{"a", "b", "c", "d"}},
				{BoxNumber: 2, PlayerIDs: []string{"e", "f", "g", "a"}},
			},
			targetErr: ErrDuplicatePlayer,
		},
		{
			name: "valid",
			boxes: []BoxAssignment{
				{BoxNumber: 1, PlayerIDs: []string{"a", "b", "c", "d"}},
				{BoxNumber: 2, PlayerIDs: []string{"e", "f", "g", "h", "i", "j"}},
			},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := ValidateBoxes(tc.boxes)
			if tc.targetErr == nil && err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if tc.targetErr != nil && !errors.Is(err, tc.targetErr) {
				t.Fatalf("expected %v, got %v", tc.targetErr, err)
			}
		})
	}
}

func TestTouchBumpsRevision(t *testing.T) {
	w := newTestWeek(t)
	before := w.Revision
	later := testNow.Add(time.Minute)

	if err := w.SetBoxFrozen(2, true, later, "organizer"); err != nil {
		t.Fatalf("freeze: %v", err)
	}
	if w.Revision != before+1 || !w.UpdatedAt.Equal(later) || w.UpdatedBy != "organizer" {
		t.Fatalf("audit fields not bumped: rev=%d updated=%s by=%s", w.Revision, w.UpdatedAt, w.UpdatedBy)
	}
	if !w.IsBoxFrozen(2) {
		t.Fatalf("box 2 should be frozen")
	}
}

func TestStateMachine(t *testing.T) {
	w := newTestWeek(t)

	if err := w.Close(nil, testNow, "organizer"); !errors.Is(err, ErrInvalidState) {
		t.Fatalf("closing a draft should fail, got %v", err)
	}

	lineups := w.ResolveLineups()
	matches := []match.Match{{ID: "m1", BoxNumber: 1, Status: match.StatusScheduled}}
	if err := w.MarkActive(lineups, matches, testNow, "organizer"); err != nil {
		t.Fatalf("activate: %v", err)
	}
	if w.State != StateActive || !slices.Equal(w.MatchIDs, []string{"m1"}) {
		t.Fatalf("unexpected week after activation: state=%s matches=%v", w.State, w.MatchIDs)
	}
	if err := w.SetBoxes(w.Boxes, testNow, "organizer"); !errors.Is(err, ErrInvalidState) {
		t.Fatalf("editing boxes after activation should fail, got %v", err)
	}

	if err := w.Deactivate(testNow, "organizer"); err != nil {
		t.Fatalf("deactivate: %v", err)
	}
	if w.State != StateDraft || len(w.MatchIDs) != 0 || len(w.Boxes[0].LineupIDs) != 0 {
		t.Fatalf("deactivate should reset to a clean draft: %+v", w)
	}

	if err := w.MarkActive(w.ResolveLineups(), matches, testNow, "organizer"); err != nil {
		t.Fatalf("re-activate: %v", err)
	}
	if err := w.Close(matches, testNow, "organizer"); err != nil {
		t.Fatalf("close: %v", err)
	}

	disputed := []match.Match{{ID: "m1", BoxNumber: 1, Status: match.StatusDisputed}}
	if err := w.Finalize(disputed, StandingsSnapshot{}, nil, testNow, "organizer"); !errors.Is(err, ErrInvalidState) {
		t.Fatalf("finalize with disputes should fail, got %v", err)
	}

	completed := []match.Match{{ID: "m1", BoxNumber: 1, Status: match.StatusCompleted}}
	if err := w.Finalize(completed, StandingsSnapshot{}, nil, testNow, "organizer"); err != nil {
		t.Fatalf("finalize: %v", err)
	}
	if w.State != StateFinalized || w.Standings == nil || !w.Standings.Final {
		t.Fatalf("unexpected finalized week: %+v", w)
	}
	if err := w.SetBoxFrozen(1, true, testNow, "organizer"); !errors.Is(err, ErrInvalidState) {
		t.Fatalf("freezing after finalize should fail, got %v", err)
	}
}

func TestMarkActiveRejectsDraftHoldingMatches(t *testing.T) {
	w := newTestWeek(t)
	w.MatchIDs = []string{"stale"}

	err := w.MarkActive(w.ResolveLineups(), nil, testNow, "organizer")
	if !errors.Is(err, ErrInvalidState) {
		t.Fatalf("expected ErrInvalidState, got %v", err)
	}
}

func TestAttendanceRules(t *testing.T) {
	w := newTestWeek(t)

	if err := w.CheckIn("p1", "p1", true, testNow); err != nil {
		t.Fatalf("self check-in: %v", err)
	}
	if err := w.SetAttendanceLocked(true, testNow, "organizer"); err != nil {
		t.Fatalf("lock: %v", err)
	}
	if err := w.CheckIn("p2", "p2", true, testNow); !errors.Is(err, ErrAttendanceLocked) {
		t.Fatalf("expected ErrAttendanceLocked, got %v", err)
	}
	if err := w.CheckIn("p2", "organizer", false, testNow); err != nil {
		t.Fatalf("organizer check-in should bypass the lock: %v", err)
	}
	if err := w.CheckIn("stranger", "organizer", false, testNow); !errors.Is(err, ErrPlayerNotInWeek) {
		t.Fatalf("expected ErrPlayerNotInWeek, got %v", err)
	}
	if err := w.MarkNoShow("p3", "organizer", testNow); !errors.Is(err, ErrInvalidState) {
		t.Fatalf("no-show in draft should fail, got %v", err)
	}
	if err := w.Excuse("p3", "organizer", testNow); err != nil {
		t.Fatalf("excuse: %v", err)
	}
	if got := w.AttendanceOf("p3").Status; got != AttendanceExcused {
		t.Fatalf("unexpected status %s", got)
	}
	if got := w.AttendanceOf("p4").Status; got != AttendanceNotCheckedIn {
		t.Fatalf("unexpected default status %s", got)
	}
}

func TestAbsenceLifecycle(t *testing.T) {
	w := newTestWeek(t)

	if err := w.DeclareAbsence(AbsenceInput{PlayerID: "p6", Reason: "travel", Actor: "p6"}, testNow); err != nil {
		t.Fatalf("declare: %v", err)
	}
	if err := w.DeclareAbsence(AbsenceInput{PlayerID: "p6", Actor: "p6"}, testNow); !errors.Is(err, ErrDuplicateAbsence) {
		t.Fatalf("expected ErrDuplicateAbsence, got %v", err)
	}
	absence, ok := w.AbsenceFor("p6")
	if !ok || absence.BoxNumber != 2 || absence.Policy != league.AbsenteeGhostScore || absence.NoShow {
		t.Fatalf("unexpected absence: %+v", absence)
	}

	if _, err := w.AssignSubstitute("p6", "p1", "organizer", testNow); !errors.Is(err, ErrSubstituteConflict) {
		t.Fatalf("rostered player cannot substitute, got %v", err)
	}
	swapped, err := w.AssignSubstitute("p6", "sub-1", "organizer", testNow)
	if err != nil {
		t.Fatalf("assign substitute: %v", err)
	}
	if swapped {
		t.Fatalf("draft assignment should not swap lineups")
	}

	lineups := w.ResolveLineups()
	if !slices.Equal(lineups[1].LineupIDs, []string{"p5", "sub-1", "p7", "p8", "p9"}) {
		t.Fatalf("unexpected lineup: %v", lineups[1].LineupIDs)
	}

	removed, err := w.RemoveSubstitute("p6", "organizer", testNow)
	if err != nil || removed != "sub-1" {
		t.Fatalf("remove substitute: removed=%s err=%v", removed, err)
	}
	if err := w.CancelAbsence("p6", "organizer", testNow); err != nil {
		t.Fatalf("cancel absence: %v", err)
	}
	if err := w.CancelAbsence("p6", "organizer", testNow); !errors.Is(err, ErrAbsenceNotFound) {
		t.Fatalf("expected ErrAbsenceNotFound, got %v", err)
	}
}

func TestAssignSubstituteOnActiveWeekSwapsLineup(t *testing.T) {
	w := newTestWeek(t)
	if err := w.MarkActive(w.ResolveLineups(), nil, testNow, "organizer"); err != nil {
		t.Fatalf("activate: %v", err)
	}

	if err := w.DeclareAbsence(AbsenceInput{PlayerID: "p2", Actor: "organizer"}, testNow); !errors.Is(err, ErrInvalidState) {
		t.Fatalf("pre-declared absence on active week should fail, got %v", err)
	}
	if err := w.RecordNoShowAbsence(AbsenceInput{PlayerID: "p2", Actor: "organizer"}, testNow); err != nil {
		t.Fatalf("no-show absence: %v", err)
	}
	if got := w.AttendanceOf("p2").Status; got != AttendanceNoShow {
		t.Fatalf("no-show absence should mark attendance, got %s", got)
	}

	swapped, err := w.AssignSubstitute("p2", "sub-9", "organizer", testNow)
	if err != nil {
		t.Fatalf("assign: %v", err)
	}
	if !swapped || !slices.Equal(w.Boxes[0].LineupIDs, []string{"p1", "sub-9", "p3", "p4"}) {
		t.Fatalf("expected lineup swap, got swapped=%v lineup=%v", swapped, w.Boxes[0].LineupIDs)
	}
	if _, err := w.RemoveSubstitute("p2", "organizer", testNow); !errors.Is(err, ErrInvalidState) {
		t.Fatalf("removing a substitute outside draft should fail, got %v", err)
	}
}

func TestCapacity(t *testing.T) {
	w := newTestWeek(t)
	for _, id := range []string{"p1", "p2"} {
		if err := w.DeclareAbsence(AbsenceInput{PlayerID: id, Actor: "organizer"}, testNow); err != nil {
			t.Fatalf("declare %s: %v", id, err)
		}
	}
	if _, err := w.AssignSubstitute("p1", "sub-1", "organizer", testNow); err != nil {
		t.Fatalf("assign: %v", err)
	}

	c, err := w.Capacity(1)
	if err != nil {
		t.Fatalf("capacity: %v", err)
	}
	if c.Assigned != 4 || c.UncoveredAbsences != 1 || c.Substitutes != 1 || c.Effective != 3 || c.Runnable {
		t.Fatalf("unexpected capacity: %+v", c)
	}
	if blockers := w.CapacityBlockers(); len(blockers) != 1 {
		t.Fatalf("expected one blocked box, got %v", blockers)
	}
	if err := ValidateLineups(w.ResolveLineups()); !errors.Is(err, ErrInvalidBoxSize) {
		t.Fatalf("short lineup should fail validation, got %v", err)
	}
}

func TestSubmissionEligibility(t *testing.T) {
	absences := []Absence{
		{PlayerID: "p1", SubstituteID: "sub-1"},
		{PlayerID: "p2"},
	}
	linked := func(id string) bool { return id == "sub-1" }

	check := SubmissionEligibility([]string{"p1", "p3", "p4", "p5"}, absences, true, linked)
	if !check.Submittable {
		t.Fatalf("expected submittable, blockers=%v", check.Blockers)
	}
	if !slices.Equal(check.EffectiveIDs, []string{"sub-1", "p3", "p4", "p5"}) {
		t.Fatalf("unexpected effective ids: %v", check.EffectiveIDs)
	}

	blocked := SubmissionEligibility([]string{"p2", "p3", "p4", "p5"}, absences, false, nil)
	if blocked.Submittable || len(blocked.Blockers) != 1 {
		t.Fatalf("uncovered absence should block: %+v", blocked)
	}

	unlinked := SubmissionEligibility([]string{"sub-1", "p3", "p4", "p5"}, absences, true, func(string) bool { return false })
	if unlinked.Submittable {
		t.Fatalf("unlinked substitute should block when linkage is required")
	}
}
