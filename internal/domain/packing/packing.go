package packing

import (
	"errors"
	"fmt"
	"slices"
)

const (
	MinBoxSize = 4
	MaxBoxSize = 6
)

var ErrInfeasible = errors.New("player count cannot be packed into boxes of 4-6")

// Adjustment proposes a nearby player count that packs cleanly.
type Adjustment struct {
	Delta       int
	PlayerCount int
	Sizes       []int
}

// Pack partitions n players into boxes of 4, 5 or 6.
// Among valid partitions it prefers the smallest spread between box sizes,
// then sizes closest to 5 on average, then the fewest boxes. Sizes are ascending.
func Pack(n int) ([]int, error) {
	if n < MinBoxSize {
		return nil, fmt.Errorf("%w: %d players is below the minimum box size of %d", ErrInfeasible, n, MinBoxSize)
	}

	var best []int
	for sixes := 0; sixes*6 <= n; sixes++ {
		for fives := 0; sixes*6+fives*5 <= n; fives++ {
			rest := n - sixes*6 - fives*5
			if rest%4 != 0 {
				continue
			}
			candidate := buildSizes(rest/4, fives, sixes)
			if best == nil || better(candidate, best) {
				best = candidate
			}
		}
	}
	if best == nil {
		return nil, fmt.Errorf("%w: %d players is not a sum of 4, 5 and 6", ErrInfeasible, n)
	}

	return best, nil
}

// Feasible reports whether n players can be packed.
func Feasible(n int) bool {
	_, err := Pack(n)
	return err == nil
}

// Suggest returns the nearest feasible counts reachable by adding and by removing
// at most maxDelta players. Additions come first.
func Suggest(n, maxDelta int) []Adjustment {
	if maxDelta <= 0 {
		maxDelta = MaxBoxSize
	}

	out := make([]Adjustment, 0, 2)
	for delta := 1; delta <= maxDelta; delta++ {
		if sizes, err := Pack(n + delta); err == nil {
			out = append(out, Adjustment{Delta: delta, PlayerCount: n + delta, Sizes: sizes})
			break
		}
	}
	for delta := 1; delta <= maxDelta && n-delta >= MinBoxSize; delta++ {
		if sizes, err := Pack(n - delta); err == nil {
			out = append(out, Adjustment{Delta: -delta, PlayerCount: n - delta, Sizes: sizes})
			break
		}
	}

	return out
}

// Distribute fills boxes in rank order: the first ids land in box 1.
func Distribute(rankedIDs []string, sizes []int) ([][]string, error) {
	total := 0
	for _, size := range sizes {
		if size < MinBoxSize || size > MaxBoxSize {
			return nil, fmt.Errorf("%w: box size %d is out of range", ErrInfeasible, size)
		}
		total += size
	}
	if total != len(rankedIDs) {
		return nil, fmt.Errorf("box sizes sum to %d but %d players were ranked", total, len(rankedIDs))
	}

	boxes := make([][]string, 0, len(sizes))
	offset := 0
	for _, size := range sizes {
		boxes = append(boxes, slices.Clone(rankedIDs[offset:offset+size]))
		offset += size
	}

	return boxes, nil
}

func buildSizes(fours, fives, sixes int) []int {
	out := make([]int, 0, fours+fives+sixes)
	for range fours {
		out = append(out, 4)
	}
	for range fives {
		out = append(out, 5)
	}
	for range sixes {
		out = append(out, 6)
	}
	return out
}

func better(a, b []int) bool {
	spreadA, spreadB := spread(a), spread(b)
	if spreadA != spreadB {
		return spreadA < spreadB
	}
	devA, devB := meanDeviation(a), meanDeviation(b)
	if devA != devB {
		return devA < devB
	}
	return len(a) < len(b)
}

func spread(sizes []int) int {
	return slices.Max(sizes) - slices.Min(sizes)
}

func meanDeviation(sizes []int) float64 {
	sum := 0
	for _, s := range sizes {
		sum += s
	}
	mean := float64(sum) / float64(len(sizes))
	if mean < 5 {
		return 5 - mean
	}
	return mean - 5
}
