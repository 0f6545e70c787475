package match

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/riskibarqy/box-league/internal/domain/league"
)

func TestRotationRoundCounts(t *testing.T) {
	want := map[int]int{4: 6, 5: 5, 6: 6}
	for size, rounds := range want {
		got, err := RoundCount(size)
		if err != nil {
			t.Fatalf("size=%d: %v", size, err)
		}
		if got != rounds {
			t.Fatalf("size=%d: got %d rounds want %d", size, got, rounds)
		}
	}

	for _, size := range []int{3, 7} {
		if _, err := RoundCount(size); !errors.Is(err, ErrUnsupportedBoxSize) {
			t.Fatalf("size=%d: expected ErrUnsupportedBoxSize, got %v", size, err)
		}
	}
}

func TestRotationUsesDistinctPlayersPerRound(t *testing.T) {
	for size := 4; size <= 6; size++ {
		rounds, err := Rotation(size)
		if err != nil {
			t.Fatalf("size=%d: %v", size, err)
		}
		for i, r := range rounds {
			seen := map[int]struct{}{}
			for _, idx := range append(append(r.Team1[:], r.Team2[:]...), r.Sitting...) {
				if idx < 0 || idx >= size {
					t.Fatalf("size=%d round=%d: index %d out of range", size, i, idx)
				}
				if _, ok := seen[idx]; ok {
					t.Fatalf("size=%d round=%d: index %d used twice", size, i, idx)
				}
				seen[idx] = struct{}{}
			}
			if len(seen) != size {
				t.Fatalf("size=%d round=%d: only %d players accounted for", size, i, len(seen))
			}
		}
	}
}

func TestRotationFivePartnersEveryPairOnce(t *testing.T) {
	rounds, err := Rotation(5)
	if err != nil {
		t.Fatalf("rotation: %v", err)
	}

	partners := map[string]int{}
	for _, r := range rounds {
		for _, team := range [][2]int{r.Team1, r.Team2} {
			a, b := min(team[0], team[1]), max(team[0], team[1])
			partners[fmt.Sprintf("%d-%d", a, b)]++
		}
	}
	if len(partners) != 10 {
		t.Fatalf("expected all 10 pairs to partner, got %d", len(partners))
	}
	for pair, count := range partners {
		if count != 1 {
			t.Fatalf("pair %s partnered %d times", pair, count)
		}
	}
}

func TestGenerate(t *testing.T) {
	seq := 0
	newID := func() (string, error) {
		seq++
		return fmt.Sprintf("m-%d", seq), nil
	}
	now := time.Date(2026, 3, 2, 18, 0, 0, 0, time.UTC)

	matches, err := Generate(BoxSchedule{
		LeagueID:   "league-1",
		SeasonID:   "season-1",
		WeekNumber: 1,
		BoxNumber:  2,
		Lineup:     []string{"a", "b", "c", "d", "e"},
		CourtID:    "c1",
	}, newID, now)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if len(matches) != 5 {
		t.Fatalf("expected 5 matches, got %d", len(matches))
	}
	first := matches[0]
	if first.Round != 1 || first.BoxNumber != 2 || first.Status != StatusScheduled {
		t.Fatalf("unexpected first match: %+v", first)
	}
	if len(first.Sitting) != 1 || first.Sitting[0] != "a" {
		t.Fatalf("expected player a to sit out round 1, got %v", first.Sitting)
	}
	if first.Involves("a") {
		t.Fatalf("sitting player should not be a participant")
	}
}

func TestMatchWinnerAndCount(t *testing.T) {
	m := Match{
		Team1:  []string{"a", "b"},
		Team2:  []string{"c", "d"},
		Status: StatusCompleted,
		Games:  []GameScore{{Team1: 11, Team2: 7}, {Team1: 9, Team2: 11}, {Team1: 11, Team2: 4}},
	}
	if m.Winner() != 1 {
		t.Fatalf("expected team 1 to win")
	}
	p1, p2, _, _ := m.Totals()
	if p1 != 31 || p2 != 22 {
		t.Fatalf("unexpected totals: %d-%d", p1, p2)
	}

	c := Count([]Match{m, {Status: StatusDisputed}, {Status: StatusPendingVerification}, {Status: StatusScheduled}})
	if c.Total != 4 || c.Completed != 1 || c.Disputed != 1 || c.PendingVerification != 1 || c.Scheduled != 1 {
		t.Fatalf("unexpected counters: %+v", c)
	}
}

func TestAssignCourts(t *testing.T) {
	venue := league.Venue{
		Courts:   []league.Court{{ID: "c1", Active: true}, {ID: "c2", Active: true}},
		Sessions: []league.Session{{ID: "s1", Active: true}, {ID: "s2", Active: true}},
	}

	slots, err := AssignCourts([]int{1, 2, 3}, venue)
	if err != nil {
		t.Fatalf("assign courts: %v", err)
	}
	want := []Slot{
		{BoxNumber: 1, CourtID: "c1", SessionID: "s1"},
		{BoxNumber: 2, CourtID: "c1", SessionID: "s2"},
		{BoxNumber: 3, CourtID: "c2", SessionID: "s1"},
	}
	for i := range want {
		if slots[i] != want[i] {
			t.Fatalf("slot %d: got %+v want %+v", i, slots[i], want[i])
		}
	}

	if _, err := AssignCourts([]int{1, 2, 3, 4, 5}, venue); !errors.Is(err, ErrInsufficientCapacity) {
		t.Fatalf("expected ErrInsufficientCapacity, got %v", err)
	}
}
