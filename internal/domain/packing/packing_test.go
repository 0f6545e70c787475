package packing

import (
	"errors"
	"slices"
	"testing"
)

func TestPackSumsAndBounds(t *testing.T) {
	for n := 4; n <= 120; n++ {
		sizes, err := Pack(n)
		if n == 7 {
			if !errors.Is(err, ErrInfeasible) {
				t.Fatalf("n=7: expected ErrInfeasible, got sizes=%v err=%v", sizes, err)
			}
			continue
		}
		if err != nil {
			t.Fatalf("n=%d: unexpected error: %v", n, err)
		}

		sum := 0
		for _, size := range sizes {
			if size < MinBoxSize || size > MaxBoxSize {
				t.Fatalf("n=%d: box size %d out of range in %v", n, size, sizes)
			}
			sum += size
		}
		if sum != n {
			t.Fatalf("n=%d: sizes %v sum to %d", n, sizes, sum)
		}
		if !slices.IsSorted(sizes) {
			t.Fatalf("n=%d: sizes not ascending: %v", n, sizes)
		}
	}
}

func TestPackInfeasible(t *testing.T) {
	for _, n := range []int{-1, 0, 1, 2, 3, 7} {
		if _, err := Pack(n); !errors.Is(err, ErrInfeasible) {
			t.Fatalf("n=%d: expected ErrInfeasible, got %v", n, err)
		}
		if Feasible(n) {
			t.Fatalf("n=%d reported feasible", n)
		}
	}
}

func TestPackTieBreak(t *testing.T) {
	tests := []struct {
		n    int
		want []int
	}{
		{n: 4, want: []int{4}},
		{n: 8, want: []int{4, 4}},
		{n: 10, want: []int{5, 5}},
		{n: 12, want: []int{6, 6}},
		{n: 13, want: []int{4, 4, 5}},
		{n: 20, want: []int{5, 5, 5, 5}},
		{n: 24, want: []int{6, 6, 6, 6}},
		{n: 11, want: []int{5, 6}},
	}

	for _, tc := range tests {
		got, err := Pack(tc.n)
		if err != nil {
			t.Fatalf("n=%d: unexpected error: %v", tc.n, err)
		}
		if !slices.Equal(got, tc.want) {
			t.Fatalf("n=%d: got %v want %v", tc.n, got, tc.want)
		}
	}
}

func TestSuggest(t *testing.T) {
	got := Suggest(7, 0)
	if len(got) != 2 {
		t.Fatalf("expected add and remove suggestions, got %+v", got)
	}
	if got[0].Delta != 1 || got[0].PlayerCount != 8 || !slices.Equal(got[0].Sizes, []int{4, 4}) {
		t.Fatalf("unexpected add suggestion: %+v", got[0])
	}
	if got[1].Delta != -1 || got[1].PlayerCount != 6 || !slices.Equal(got[1].Sizes, []int{6}) {
		t.Fatalf("unexpected remove suggestion: %+v", got[1])
	}

	small := Suggest(2, 0)
	if len(small) != 1 || small[0].PlayerCount != 4 {
		t.Fatalf("expected only an add suggestion for 2 players, got %+v", small)
	}
}

func TestDistributeRankOrder(t *testing.T) {
	ranked := []string{"p1", "p2", "p3", "p4", "p5", "p6", "p7", "p8", "p9"}
	boxes, err := Distribute(ranked, []int{4, 5})
	if err != nil {
		t.Fatalf("distribute: %v", err)
	}
	if !slices.Equal(boxes[0], []string{"p1", "p2", "p3", "p4"}) {
		t.Fatalf("box 1 should hold the top ranked players, got %v", boxes[0])
	}
	if !slices.Equal(boxes[1], []string{"p5", "p6", "p7", "p8", "p9"}) {
		t.Fatalf("unexpected box 2: %v", boxes[1])
	}

	if _, err := Distribute(ranked, []int{4, 4}); err == nil {
		t.Fatalf("expected size mismatch error")
	}
}
