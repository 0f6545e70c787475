package week

import (
	"fmt"
	"slices"
)

type BoxCapacity struct {
	BoxNumber         int
	Assigned          int
	Absences          int
	UncoveredAbsences int
	Substitutes       int
	Effective         int
	Runnable          bool
}

// Capacity counts who can actually play in a box. Covered absentees do not play
// and their substitutes do, so Effective equals Assigned minus uncovered absences.
func (w Week) Capacity(boxNumber int) (BoxCapacity, error) {
	box, ok := w.Box(boxNumber)
	if !ok {
		return BoxCapacity{}, fmt.Errorf("%w: box %d", ErrBoxNotFound, boxNumber)
	}

	out := BoxCapacity{BoxNumber: boxNumber, Assigned: len(box.PlayerIDs)}
	for _, a := range w.Absences {
		if !slices.Contains(box.PlayerIDs, a.PlayerID) {
			continue
		}
		out.Absences++
		if a.SubstituteID == "" {
			out.UncoveredAbsences++
		} else {
			out.Substitutes++
		}
	}
	out.Effective = out.Assigned - out.Absences + out.Substitutes
	out.Runnable = out.Effective >= MinBoxSize
	return out, nil
}

func (w Week) Capacities() []BoxCapacity {
	out := make([]BoxCapacity, 0, len(w.Boxes))
	for _, b := range w.Boxes {
		c, _ := w.Capacity(b.BoxNumber)
		out = append(out, c)
	}
	return out
}

// CapacityBlockers describes every box that cannot run.
func (w Week) CapacityBlockers() []string {
	var out []string
	for _, c := range w.Capacities() {
		if !c.Runnable {
			out = append(out, fmt.Sprintf("box %d has %d effective players, at least %d required", c.BoxNumber, c.Effective, MinBoxSize))
		}
	}
	return out
}
