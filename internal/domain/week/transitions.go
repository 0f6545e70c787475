package week

import (
	"fmt"
	"slices"
	"sort"
	"time"

	"github.com/riskibarqy/box-league/internal/domain/league"
	"github.com/riskibarqy/box-league/internal/domain/match"
)

func (w Week) requireState(op string, allowed ...State) error {
	if slices.Contains(allowed, w.State) {
		return nil
	}
	return fmt.Errorf("%w: cannot %s week %d in state %s", ErrInvalidState, op, w.Number, w.State)
}

// SetBoxes replaces the roster of a draft week. Absences of players who left the
// roster are dropped and the rest follow their player to the new box.
func (w *Week) SetBoxes(boxes []BoxAssignment, now time.Time, actor string) error {
	if err := w.requireState("edit boxes of", StateDraft); err != nil {
		return err
	}
	next := make([]BoxAssignment, 0, len(boxes))
	for _, b := range boxes {
		next = append(next, BoxAssignment{BoxNumber: b.BoxNumber, PlayerIDs: slices.Clone(b.PlayerIDs)})
	}
	sort.Slice(next, func(i, j int) bool { return next[i].BoxNumber < next[j].BoxNumber })
	if err := ValidateBoxes(next); err != nil {
		return err
	}

	w.Boxes = next
	w.Absences = slices.DeleteFunc(w.Absences, func(a Absence) bool {
		_, ok := w.BoxOf(a.PlayerID)
		return !ok
	})
	for i := range w.Absences {
		w.Absences[i].BoxNumber, _ = w.BoxOf(w.Absences[i].PlayerID)
	}
	w.FrozenBoxes = slices.DeleteFunc(w.FrozenBoxes, func(n int) bool {
		_, ok := w.Box(n)
		return !ok
	})
	w.Courts = slices.DeleteFunc(w.Courts, func(c CourtAssignment) bool {
		_, ok := w.Box(c.BoxNumber)
		return !ok
	})
	w.Touch(now, actor)
	return nil
}

// SetCourts replaces court and session placement of a draft week.
func (w *Week) SetCourts(courts []CourtAssignment, now time.Time, actor string) error {
	if err := w.requireState("edit courts of", StateDraft); err != nil {
		return err
	}
	boxes := make(map[int]struct{}, len(courts))
	slots := make(map[string]int, len(courts))
	for _, c := range courts {
		if _, ok := w.Box(c.BoxNumber); !ok {
			return fmt.Errorf("%w: box %d", ErrBoxNotFound, c.BoxNumber)
		}
		if _, ok := boxes[c.BoxNumber]; ok {
			return fmt.Errorf("%w: box %d has more than one court", ErrInvalidCourts, c.BoxNumber)
		}
		boxes[c.BoxNumber] = struct{}{}
		key := c.CourtID + "/" + c.SessionID
		if other, ok := slots[key]; ok {
			return fmt.Errorf("%w: court %s session %s is shared by box %d and box %d", ErrInvalidCourts, c.CourtID, c.SessionID, other, c.BoxNumber)
		}
		slots[key] = c.BoxNumber
	}

	w.Courts = slices.Clone(courts)
	w.Touch(now, actor)
	return nil
}

// RefreshRules replaces the frozen rules before activation.
func (w *Week) RefreshRules(rules league.Rules, now time.Time, actor string) error {
	if err := w.requireState("refresh rules of", StateDraft); err != nil {
		return err
	}
	w.Rules = rules.Clone()
	w.Touch(now, actor)
	return nil
}

// SetBoxFrozen pins a box so its players neither promote nor relegate.
func (w *Week) SetBoxFrozen(boxNumber int, frozen bool, now time.Time, actor string) error {
	if err := w.requireState("freeze a box of", StateDraft, StateActive, StateClosing); err != nil {
		return err
	}
	if _, ok := w.Box(boxNumber); !ok {
		return fmt.Errorf("%w: box %d", ErrBoxNotFound, boxNumber)
	}

	w.FrozenBoxes = slices.DeleteFunc(w.FrozenBoxes, func(n int) bool { return n == boxNumber })
	if frozen {
		w.FrozenBoxes = append(w.FrozenBoxes, boxNumber)
		slices.Sort(w.FrozenBoxes)
	}
	w.Touch(now, actor)
	return nil
}

// ResolveLineups derives who plays in each box: absentees are replaced by their
// substitute or dropped when nobody covers them. The week is not modified.
func (w Week) ResolveLineups() []BoxAssignment {
	out := make([]BoxAssignment, 0, len(w.Boxes))
	for _, b := range w.Boxes {
		lineup := make([]string, 0, len(b.PlayerIDs))
		for _, playerID := range b.PlayerIDs {
			absence, absent := w.AbsenceFor(playerID)
			switch {
			case !absent:
				lineup = append(lineup, playerID)
			case absence.SubstituteID != "":
				lineup = append(lineup, absence.SubstituteID)
			}
		}
		out = append(out, BoxAssignment{
			BoxNumber: b.BoxNumber,
			PlayerIDs: slices.Clone(b.PlayerIDs),
			LineupIDs: lineup,
		})
	}
	return out
}

// Lineup returns the playing lineup of a box, resolving it when the week is still a draft.
func (w Week) Lineup(boxNumber int) []string {
	box, ok := w.Box(boxNumber)
	if !ok {
		return nil
	}
	if len(box.LineupIDs) > 0 {
		return slices.Clone(box.LineupIDs)
	}
	for _, b := range w.ResolveLineups() {
		if b.BoxNumber == boxNumber {
			return b.LineupIDs
		}
	}
	return nil
}

// MarkActive flips a draft week to active with its resolved lineups and generated matches.
func (w *Week) MarkActive(lineups []BoxAssignment, matches []match.Match, now time.Time, actor string) error {
	if err := w.requireState("activate", StateDraft); err != nil {
		return err
	}
	if len(w.MatchIDs) > 0 {
		return fmt.Errorf("%w: draft week %d already holds %d matches", ErrInvalidState, w.Number, len(w.MatchIDs))
	}
	if err := ValidateLineups(lineups); err != nil {
		return err
	}

	w.Boxes = make([]BoxAssignment, 0, len(lineups))
	for _, b := range lineups {
		w.Boxes = append(w.Boxes, b.Clone())
	}
	w.MatchIDs = make([]string, 0, len(matches))
	for _, m := range matches {
		w.MatchIDs = append(w.MatchIDs, m.ID)
	}
	w.State = StateActive
	w.ActivatedAt = &now
	w.ActivatedBy = actor
	w.RecordProgress(matches)
	w.Touch(now, actor)
	return nil
}

// Deactivate returns an active week to draft. The caller deletes the generated matches.
func (w *Week) Deactivate(now time.Time, actor string) error {
	if err := w.requireState("deactivate", StateActive); err != nil {
		return err
	}
	for i := range w.Boxes {
		w.Boxes[i].LineupIDs = nil
	}
	w.State = StateDraft
	w.MatchIDs = nil
	w.Counters = match.Counters{}
	w.BoxCompletion = nil
	w.ActivatedAt = nil
	w.ActivatedBy = ""
	w.Touch(now, actor)
	return nil
}

// Close moves an active week to closing and records the current match counts.
func (w *Week) Close(matches []match.Match, now time.Time, actor string) error {
	if err := w.requireState("close", StateActive); err != nil {
		return err
	}
	w.RecordProgress(matches)
	w.State = StateClosing
	w.ClosedAt = &now
	w.ClosedBy = actor
	w.Touch(now, actor)
	return nil
}

// FinalizeBlockers lists what prevents finalization given fresh match counts.
func (w Week) FinalizeBlockers(counters match.Counters) []string {
	var blockers []string
	if w.State != StateClosing {
		blockers = append(blockers, fmt.Sprintf("week %d is %s, it must be closing", w.Number, w.State))
	}
	if counters.Disputed > 0 {
		blockers = append(blockers, fmt.Sprintf("%d disputed matches must be resolved before finalizing", counters.Disputed))
	}
	if counters.PendingVerification > 0 {
		blockers = append(blockers, fmt.Sprintf("%d matches are pending verification", counters.PendingVerification))
	}
	return blockers
}

// Finalize stores the standings and movements and makes the week immutable.
func (w *Week) Finalize(matches []match.Match, snapshot StandingsSnapshot, movements []PlayerMovement, now time.Time, actor string) error {
	if err := w.requireState("finalize", StateClosing); err != nil {
		return err
	}
	counters := match.Count(matches)
	if blockers := w.FinalizeBlockers(counters); len(blockers) > 0 {
		return fmt.Errorf("%w: %s", ErrInvalidState, blockers[0])
	}

	snapshot.Final = true
	snapshot = snapshot.Clone()
	w.RecordProgress(matches)
	w.Standings = &snapshot
	w.Movements = slices.Clone(movements)
	w.State = StateFinalized
	w.FinalizedAt = &now
	w.FinalizedBy = actor
	w.Touch(now, actor)
	return nil
}

// SetStandings stores a preview snapshot on a week that is not finalized.
func (w *Week) SetStandings(snapshot StandingsSnapshot, matches []match.Match, now time.Time, actor string) error {
	if err := w.requireState("recalculate standings of", StateDraft, StateActive, StateClosing); err != nil {
		return err
	}
	snapshot.Final = false
	snapshot = snapshot.Clone()
	w.Standings = &snapshot
	if w.State != StateDraft {
		w.RecordProgress(matches)
	}
	w.Touch(now, actor)
	return nil
}

// RecordProgress refreshes counters and per-box completion from the match set.
func (w *Week) RecordProgress(matches []match.Match) {
	w.Counters = match.Count(matches)

	byBox := make(map[int]*BoxCompletion, len(w.Boxes))
	completion := make([]BoxCompletion, 0, len(w.Boxes))
	for _, b := range w.Boxes {
		completion = append(completion, BoxCompletion{BoxNumber: b.BoxNumber})
	}
	for i := range completion {
		byBox[completion[i].BoxNumber] = &completion[i]
	}
	for _, m := range matches {
		bc, ok := byBox[m.BoxNumber]
		if !ok || m.Status == match.StatusCancelled {
			continue
		}
		bc.Total++
		if m.Status == match.StatusCompleted {
			bc.Completed++
		}
	}
	for i := range completion {
		completion[i].Done = completion[i].Total > 0 && completion[i].Completed == completion[i].Total
	}
	w.BoxCompletion = completion
}
