package week

import (
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/riskibarqy/box-league/internal/domain/league"
)

func (w *Week) attendanceIndex(playerID string) int {
	for i, a := range w.Attendance {
		if a.PlayerID == playerID {
			return i
		}
	}
	w.Attendance = append(w.Attendance, PlayerAttendance{PlayerID: playerID, Status: AttendanceNotCheckedIn})
	return len(w.Attendance) - 1
}

func (w Week) AttendanceOf(playerID string) PlayerAttendance {
	for _, a := range w.Attendance {
		if a.PlayerID == playerID {
			return a
		}
	}
	return PlayerAttendance{PlayerID: playerID, Status: AttendanceNotCheckedIn}
}

// CheckIn marks a player present. Self check-in is refused once attendance is locked.
func (w *Week) CheckIn(playerID, actor string, selfService bool, now time.Time) error {
	if err := w.requireState("check in to", StateDraft, StateActive); err != nil {
		return err
	}
	if selfService && w.AttendanceLocked {
		return fmt.Errorf("%w: ask an organizer to check you in", ErrAttendanceLocked)
	}
	if !w.Participates(playerID) {
		return fmt.Errorf("%w: %s", ErrPlayerNotInWeek, playerID)
	}

	idx := w.attendanceIndex(playerID)
	w.Attendance[idx].Status = AttendanceCheckedIn
	w.Attendance[idx].CheckedInAt = &now
	w.Attendance[idx].CheckedInBy = actor
	w.Touch(now, actor)
	return nil
}

func (w *Week) SetAttendanceLocked(locked bool, now time.Time, actor string) error {
	if err := w.requireState("lock attendance of", StateDraft, StateActive, StateClosing); err != nil {
		return err
	}
	w.AttendanceLocked = locked
	w.Touch(now, actor)
	return nil
}

func (w *Week) MarkNoShow(playerID, actor string, now time.Time) error {
	if err := w.requireState("mark a no-show in", StateActive, StateClosing); err != nil {
		return err
	}
	if !w.Participates(playerID) {
		return fmt.Errorf("%w: %s", ErrPlayerNotInWeek, playerID)
	}

	w.markNoShow(playerID, actor, now)
	w.Touch(now, actor)
	return nil
}

func (w *Week) markNoShow(playerID, actor string, now time.Time) {
	idx := w.attendanceIndex(playerID)
	w.Attendance[idx].Status = AttendanceNoShow
	w.Attendance[idx].NoShowAt = &now
	w.Attendance[idx].NoShowBy = actor
}

// Excuse overrides any attendance status until the week is finalized.
func (w *Week) Excuse(playerID, actor string, now time.Time) error {
	if err := w.requireState("excuse a player in", StateDraft, StateActive, StateClosing); err != nil {
		return err
	}
	if !w.Participates(playerID) {
		return fmt.Errorf("%w: %s", ErrPlayerNotInWeek, playerID)
	}

	idx := w.attendanceIndex(playerID)
	w.Attendance[idx].Status = AttendanceExcused
	w.Attendance[idx].ExcusedAt = &now
	w.Attendance[idx].ExcusedBy = actor
	w.Touch(now, actor)
	return nil
}

type AbsenceInput struct {
	PlayerID string
	Reason   string
	Actor    string
	// Policy overrides the week's absentee policy when set.
	Policy league.AbsenteePolicy
}

// DeclareAbsence records a pre-declared absence on a draft week.
func (w *Week) DeclareAbsence(input AbsenceInput, now time.Time) error {
	if err := w.requireState("declare an absence in", StateDraft); err != nil {
		return err
	}
	return w.addAbsence(input, false, now)
}

// RecordNoShowAbsence records a night-of absence and marks attendance as no-show.
func (w *Week) RecordNoShowAbsence(input AbsenceInput, now time.Time) error {
	if err := w.requireState("record a no-show absence in", StateDraft, StateActive); err != nil {
		return err
	}
	if err := w.addAbsence(input, true, now); err != nil {
		return err
	}
	w.markNoShow(input.PlayerID, input.Actor, now)
	return nil
}

func (w *Week) addAbsence(input AbsenceInput, noShow bool, now time.Time) error {
	boxNumber, ok := w.BoxOf(input.PlayerID)
	if !ok {
		return fmt.Errorf("%w: %s", ErrPlayerNotInWeek, input.PlayerID)
	}
	if _, exists := w.AbsenceFor(input.PlayerID); exists {
		return fmt.Errorf("%w: %s", ErrDuplicateAbsence, input.PlayerID)
	}
	if _, covering := w.AbsenceCoveredBy(input.PlayerID); covering {
		return fmt.Errorf("%w: %s is already substituting", ErrSubstituteConflict, input.PlayerID)
	}

	policy := input.Policy
	if policy == "" {
		policy = w.Rules.AbsenteePolicy
	}
	if !policy.Valid() {
		return fmt.Errorf("%w: unknown absentee policy %q", league.ErrInvalidRules, policy)
	}

	w.Absences = append(w.Absences, Absence{
		PlayerID:   input.PlayerID,
		BoxNumber:  boxNumber,
		Reason:     strings.TrimSpace(input.Reason),
		DeclaredBy: input.Actor,
		DeclaredAt: now,
		Policy:     policy,
		NoShow:     noShow,
	})
	w.Touch(now, input.Actor)
	return nil
}

// CancelAbsence removes an absence from a draft week.
func (w *Week) CancelAbsence(playerID, actor string, now time.Time) error {
	if err := w.requireState("cancel an absence in", StateDraft); err != nil {
		return err
	}
	before := len(w.Absences)
	w.Absences = slices.DeleteFunc(w.Absences, func(a Absence) bool { return a.PlayerID == playerID })
	if len(w.Absences) == before {
		return fmt.Errorf("%w: %s", ErrAbsenceNotFound, playerID)
	}
	w.Touch(now, actor)
	return nil
}

// AssignSubstitute records who stands in for an absent player. On an active week
// where the absentee is still in the lineup the substitute replaces them and
// swapped is true so the caller can rewrite unfinished matches.
func (w *Week) AssignSubstitute(absentID, substituteID, actor string, now time.Time) (swapped bool, err error) {
	if err := w.requireState("assign a substitute in", StateDraft, StateActive); err != nil {
		return false, err
	}
	if substituteID == "" || substituteID == absentID {
		return false, fmt.Errorf("%w: substitute must differ from the absent player", ErrSubstituteConflict)
	}

	idx := slices.IndexFunc(w.Absences, func(a Absence) bool { return a.PlayerID == absentID })
	if idx < 0 {
		return false, fmt.Errorf("%w: %s", ErrAbsenceNotFound, absentID)
	}
	if w.Absences[idx].SubstituteID != "" {
		return false, fmt.Errorf("%w: %s already has substitute %s", ErrSubstituteConflict, absentID, w.Absences[idx].SubstituteID)
	}
	if w.Participates(substituteID) {
		return false, fmt.Errorf("%w: %s is already playing this week", ErrSubstituteConflict, substituteID)
	}

	w.Absences[idx].SubstituteID = substituteID
	w.Absences[idx].SubstituteAssignedBy = actor
	w.Absences[idx].SubstituteAssignedAt = &now

	if w.State == StateActive {
		for i := range w.Boxes {
			if pos := slices.Index(w.Boxes[i].LineupIDs, absentID); pos >= 0 {
				w.Boxes[i].LineupIDs[pos] = substituteID
				swapped = true
			}
		}
	}
	w.Touch(now, actor)
	return swapped, nil
}

// RemoveSubstitute clears the substitute of an absence on a draft week.
func (w *Week) RemoveSubstitute(absentID, actor string, now time.Time) (string, error) {
	if err := w.requireState("remove a substitute from", StateDraft); err != nil {
		return "", err
	}
	idx := slices.IndexFunc(w.Absences, func(a Absence) bool { return a.PlayerID == absentID })
	if idx < 0 {
		return "", fmt.Errorf("%w: %s", ErrAbsenceNotFound, absentID)
	}
	removed := w.Absences[idx].SubstituteID
	if removed == "" {
		return "", fmt.Errorf("%w: %s has no substitute", ErrSubstituteConflict, absentID)
	}

	w.Absences[idx].SubstituteID = ""
	w.Absences[idx].SubstituteAssignedBy = ""
	w.Absences[idx].SubstituteAssignedAt = nil
	w.Touch(now, actor)
	return removed, nil
}
