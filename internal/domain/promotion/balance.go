package promotion

import (
	"slices"

	"github.com/riskibarqy/box-league/internal/domain/week"
)

const (
	IssueUndersized = "undersized"
	IssueOversized  = "oversized"
)

type BalanceIssue struct {
	BoxNumber int
	Size      int
	Problem   string
}

type SuggestedMove struct {
	PlayerID string
	FromBox  int
	ToBox    int
}

// CheckBalance flags every box outside the 4-6 range.
func CheckBalance(boxes []week.BoxAssignment) []BalanceIssue {
	var out []BalanceIssue
	for _, b := range boxes {
		size := len(b.PlayerIDs)
		switch {
		case size < week.MinBoxSize:
			out = append(out, BalanceIssue{BoxNumber: b.BoxNumber, Size: size, Problem: IssueUndersized})
		case size > week.MaxBoxSize:
			out = append(out, BalanceIssue{BoxNumber: b.BoxNumber, Size: size, Problem: IssueOversized})
		}
	}
	return out
}

// SuggestRebalance proposes moves between neighbouring boxes until every box is legal.
// A player moving down leaves from the bottom of the donor and joins the top of the
// receiver; a player moving up leaves from the top and joins the bottom.
// The input is never modified.
func SuggestRebalance(boxes []week.BoxAssignment) []SuggestedMove {
	_, moves := rebalance(boxes)
	return moves
}

// Rebalance applies the suggested moves to a copy of the boxes. Boxes left empty
// are dropped and the rest renumbered from 1. Issues that no move could fix are
// returned with the result.
func Rebalance(boxes []week.BoxAssignment) ([]week.BoxAssignment, []SuggestedMove, []BalanceIssue) {
	work, moves := rebalance(boxes)
	out := make([]week.BoxAssignment, 0, len(work))
	for _, b := range work {
		if len(b.PlayerIDs) == 0 {
			continue
		}
		b.BoxNumber = len(out) + 1
		out = append(out, b)
	}
	return out, moves, CheckBalance(out)
}

func rebalance(boxes []week.BoxAssignment) ([]week.BoxAssignment, []SuggestedMove) {
	work := make([]week.BoxAssignment, 0, len(boxes))
	for _, b := range boxes {
		work = append(work, b.Clone())
	}
	slices.SortFunc(work, func(a, b week.BoxAssignment) int { return a.BoxNumber - b.BoxNumber })

	var moves []SuggestedMove
	limit := 0
	for _, b := range work {
		limit += len(b.PlayerIDs)
	}
	for range limit {
		from, to, ok := pickTransfer(work)
		if !ok {
			break
		}
		moves = append(moves, transfer(work, from, to))
	}
	return work, moves
}

func pickTransfer(work []week.BoxAssignment) (from, to int, ok bool) {
	for i, b := range work {
		size := len(b.PlayerIDs)
		switch {
		case size > week.MaxBoxSize:
			if j, found := nearest(work, i, func(n int) bool { return n < week.MaxBoxSize }); found {
				return i, j, true
			}
		case size < week.MinBoxSize:
			if j, found := nearest(work, i, func(n int) bool { return n > week.MinBoxSize }); found {
				return j, i, true
			}
		}
	}
	return 0, 0, false
}

// nearest finds the closest box by index distance, preferring the box above on ties.
func nearest(work []week.BoxAssignment, idx int, accept func(size int) bool) (int, bool) {
	for d := 1; d < len(work); d++ {
		if up := idx - d; up >= 0 && accept(len(work[up].PlayerIDs)) {
			return up, true
		}
		if down := idx + d; down < len(work) && accept(len(work[down].PlayerIDs)) {
			return down, true
		}
	}
	return 0, false
}

func transfer(work []week.BoxAssignment, from, to int) SuggestedMove {
	donor := &work[from]
	receiver := &work[to]

	var playerID string
	if from < to {
		last := len(donor.PlayerIDs) - 1
		playerID = donor.PlayerIDs[last]
		donor.PlayerIDs = donor.PlayerIDs[:last]
		receiver.PlayerIDs = append([]string{playerID}, receiver.PlayerIDs...)
	} else {
		playerID = donor.PlayerIDs[0]
		donor.PlayerIDs = donor.PlayerIDs[1:]
		receiver.PlayerIDs = append(receiver.PlayerIDs, playerID)
	}

	return SuggestedMove{PlayerID: playerID, FromBox: donor.BoxNumber, ToBox: receiver.BoxNumber}
}
