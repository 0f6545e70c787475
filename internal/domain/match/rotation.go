package match

import (
	"errors"
	"fmt"
	"time"
)

var ErrUnsupportedBoxSize = errors.New("unsupported box size")

// Pairing is one round of a box rotation, expressed as lineup indexes.
type Pairing struct {
	Team1   [2]int
	Team2   [2]int
	Sitting []int
}

// Rotation returns the doubles rotation for a box of the given size.
// 4 players play the three partnerships twice, 5 players sit out one each round
// so every pair partners exactly once, 6 players sit out two each round.
func Rotation(size int) ([]Pairing, error) {
	switch size {
	case 4:
		base := []Pairing{
			{Team1: [2]int{0, 1}, Team2: [2]int{2, 3}},
			{Team1: [2]int{0, 2}, Team2: [2]int{1, 3}},
			{Team1: [2]int{0, 3}, Team2: [2]int{1, 2}},
		}
		return append(base, base...), nil
	case 5:
		out := make([]Pairing, 0, 5)
		for i := range 5 {
			out = append(out, Pairing{
				Team1:   [2]int{(i + 1) % 5, (i + 4) % 5},
				Team2:   [2]int{(i + 2) % 5, (i + 3) % 5},
				Sitting: []int{i},
			})
		}
		return out, nil
	case 6:
		out := make([]Pairing, 0, 6)
		for r := range 6 {
			sitA, sitB := r, (r+3)%6
			playing := make([]int, 0, 4)
			for i := range 6 {
				if i != sitA && i != sitB {
					playing = append(playing, i)
				}
			}
			out = append(out, Pairing{
				Team1:   [2]int{playing[0], playing[3]},
				Team2:   [2]int{playing[1], playing[2]},
				Sitting: []int{min(sitA, sitB), max(sitA, sitB)},
			})
		}
		return out, nil
	default:
		return nil, fmt.Errorf("%w: %d", ErrUnsupportedBoxSize, size)
	}
}

// RoundCount is the number of matches a box of the given size plays in one week.
func RoundCount(size int) (int, error) {
	rounds, err := Rotation(size)
	if err != nil {
		return 0, err
	}
	return len(rounds), nil
}

// BoxSchedule describes the matches to create for one box.
type BoxSchedule struct {
	LeagueID    string
	SeasonID    string
	WeekNumber  int
	BoxNumber   int
	Lineup      []string
	CourtID     string
	SessionID   string
	ScheduledAt time.Time
}

// Generate builds one scheduled match per rotation round.
func Generate(schedule BoxSchedule, newID func() (string, error), now time.Time) ([]Match, error) {
	rounds, err := Rotation(len(schedule.Lineup))
	if err != nil {
		return nil, fmt.Errorf("box %d: %w", schedule.BoxNumber, err)
	}

	pick := func(indexes ...int) []string {
		out := make([]string, 0, len(indexes))
		for _, idx := range indexes {
			out = append(out, schedule.Lineup[idx])
		}
		return out
	}

	out := make([]Match, 0, len(rounds))
	for i, round := range rounds {
		matchID, err := newID()
		if err != nil {
			return nil, fmt.Errorf("generate match id: %w", err)
		}
		out = append(out, Match{
			ID:          matchID,
			LeagueID:    schedule.LeagueID,
			SeasonID:    schedule.SeasonID,
			WeekNumber:  schedule.WeekNumber,
			BoxNumber:   schedule.BoxNumber,
			Round:       i + 1,
			Team1:       pick(round.Team1[:]...),
			Team2:       pick(round.Team2[:]...),
			Sitting:     pick(round.Sitting...),
			Status:      StatusScheduled,
			CourtID:     schedule.CourtID,
			SessionID:   schedule.SessionID,
			ScheduledAt: schedule.ScheduledAt,
			CreatedAt:   now,
			UpdatedAt:   now,
		})
	}

	return out, nil
}
