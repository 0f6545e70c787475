package promotion

import (
	"slices"
	"sort"

	"github.com/riskibarqy/box-league/internal/domain/week"
)

type Params struct {
	PromotionCount  int
	RelegationCount int
}

// Calculate turns ranked standings into one movement per row.
// Only the computed position drives movement; MovementHint is ignored.
// Frozen rows stay put and are not counted when sizing the zones.
// A ForceRelegate row drops one box whatever its rank and enters the next box
// below everyone already seeded there, including regular relegations. In the
// bottom box it stays.
func Calculate(params Params, rows []week.StandingRow) []week.PlayerMovement {
	byBox := groupRows(rows)
	if len(byBox) == 0 {
		return nil
	}

	boxNumbers := make([]int, 0, len(byBox))
	for n := range byBox {
		boxNumbers = append(boxNumbers, n)
	}
	slices.Sort(boxNumbers)
	topBox, bottomBox := boxNumbers[0], boxNumbers[len(boxNumbers)-1]

	out := make([]week.PlayerMovement, 0, len(rows))
	for _, boxNumber := range boxNumbers {
		boxRows := byBox[boxNumber]
		movable := make([]week.StandingRow, 0, len(boxRows))
		for _, r := range boxRows {
			if r.Frozen {
				out = append(out, week.PlayerMovement{
					PlayerID:     r.PlayerID,
					FromBox:      boxNumber,
					ToBox:        boxNumber,
					FromPosition: r.Position,
					ToPosition:   r.Position,
					Reason:       week.MovementFrozen,
					WasAbsent:    r.WasAbsent,
				})
				continue
			}
			movable = append(movable, r)
		}

		n := len(movable)
		for i, r := range movable {
			pos := i + 1
			mv := week.PlayerMovement{
				PlayerID:     r.PlayerID,
				FromBox:      boxNumber,
				ToBox:        boxNumber,
				FromPosition: r.Position,
				ToPosition:   r.Position,
				Reason:       week.MovementStayed,
				WasAbsent:    r.WasAbsent,
			}

			switch {
			case r.ForceRelegate && boxNumber != bottomBox:
				mv.ToBox = nextBox(boxNumbers, boxNumber, 1)
				mv.ToPosition = len(byBox[mv.ToBox]) + 1
				mv.Reason = week.MovementRelegation
			case r.ForceRelegate:
			case pos <= params.PromotionCount && boxNumber != topBox:
				mv.ToBox = nextBox(boxNumbers, boxNumber, -1)
				mv.ToPosition = len(byBox[mv.ToBox]) - params.PromotionCount + pos
				mv.Reason = week.MovementPromotion
			case pos > n-params.RelegationCount && boxNumber != bottomBox:
				mv.ToBox = nextBox(boxNumbers, boxNumber, 1)
				mv.ToPosition = pos - (n - params.RelegationCount)
				mv.Reason = week.MovementRelegation
			}
			out = append(out, mv)
		}
	}

	return out
}

func groupRows(rows []week.StandingRow) map[int][]week.StandingRow {
	out := make(map[int][]week.StandingRow)
	for _, r := range rows {
		out[r.BoxNumber] = append(out[r.BoxNumber], r)
	}
	for n := range out {
		sort.SliceStable(out[n], func(i, j int) bool { return out[n][i].Position < out[n][j].Position })
	}
	return out
}

func nextBox(boxNumbers []int, current, step int) int {
	idx := slices.Index(boxNumbers, current) + step
	return boxNumbers[idx]
}

// BuildNextAssignments groups movements by destination box, orders each box by
// target position and renumbers boxes from 1 without gaps. Ties on target
// position go to the player coming from the higher ranked box.
func BuildNextAssignments(movements []week.PlayerMovement) []week.BoxAssignment {
	byBox := make(map[int][]week.PlayerMovement)
	for _, mv := range movements {
		byBox[mv.ToBox] = append(byBox[mv.ToBox], mv)
	}

	boxNumbers := make([]int, 0, len(byBox))
	for n := range byBox {
		boxNumbers = append(boxNumbers, n)
	}
	slices.Sort(boxNumbers)

	out := make([]week.BoxAssignment, 0, len(boxNumbers))
	for _, n := range boxNumbers {
		incoming := byBox[n]
		sort.SliceStable(incoming, func(i, j int) bool {
			a, b := incoming[i], incoming[j]
			if a.ToPosition != b.ToPosition {
				return a.ToPosition < b.ToPosition
			}
			if a.FromBox != b.FromBox {
				return a.FromBox < b.FromBox
			}
			return a.PlayerID < b.PlayerID
		})
		ids := make([]string, 0, len(incoming))
		for _, mv := range incoming {
			ids = append(ids, mv.PlayerID)
		}
		out = append(out, week.BoxAssignment{BoxNumber: len(out) + 1, PlayerIDs: ids})
	}
	return out
}
