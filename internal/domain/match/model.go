package match

import (
	"fmt"
	"slices"
	"time"
)

type Status string

const (
	StatusScheduled           Status = "scheduled"
	StatusPendingVerification Status = "pending_verification"
	StatusDisputed            Status = "disputed"
	StatusCompleted           Status = "completed"
	StatusCancelled           Status = "cancelled"
)

func (s Status) Valid() bool {
	switch s {
	case StatusScheduled, StatusPendingVerification, StatusDisputed, StatusCompleted, StatusCancelled:
		return true
	default:
		return false
	}
}

func ParseStatus(raw string) (Status, error) {
	s := Status(raw)
	if !s.Valid() {
		return "", fmt.Errorf("unknown match status %q", raw)
	}
	return s, nil
}

// GameScore is the points each team scored in one game.
type GameScore struct {
	Team1 int
	Team2 int
}

// Match is one doubles match generated for a box round.
type Match struct {
	ID          string
	LeagueID    string
	SeasonID    string
	WeekNumber  int
	BoxNumber   int
	Round       int
	Team1       []string
	Team2       []string
	Sitting     []string
	Status      Status
	Games       []GameScore
	CourtID     string
	SessionID   string
	ScheduledAt time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

func (m Match) Participants() []string {
	out := make([]string, 0, len(m.Team1)+len(m.Team2))
	out = append(out, m.Team1...)
	out = append(out, m.Team2...)
	return out
}

func (m Match) Involves(playerID string) bool {
	return slices.Contains(m.Team1, playerID) || slices.Contains(m.Team2, playerID)
}

// Totals sums game points per team and counts games won per team.
func (m Match) Totals() (points1, points2, games1, games2 int) {
	for _, g := range m.Games {
		points1 += g.Team1
		points2 += g.Team2
		switch {
		case g.Team1 > g.Team2:
			games1++
		case g.Team2 > g.Team1:
			games2++
		}
	}
	return points1, points2, games1, games2
}

// Winner returns 1 or 2 for the team with more games, 0 for a draw or no result.
func (m Match) Winner() int {
	_, _, games1, games2 := m.Totals()
	switch {
	case games1 > games2:
		return 1
	case games2 > games1:
		return 2
	default:
		return 0
	}
}

func (m Match) Clone() Match {
	out := m
	out.Team1 = slices.Clone(m.Team1)
	out.Team2 = slices.Clone(m.Team2)
	out.Sitting = slices.Clone(m.Sitting)
	out.Games = slices.Clone(m.Games)
	return out
}

// Counters summarises match statuses for a week.
type Counters struct {
	Total               int
	Completed           int
	PendingVerification int
	Disputed            int
	Scheduled           int
	Cancelled           int
}

func Count(matches []Match) Counters {
	var c Counters
	for _, m := range matches {
		c.Total++
		switch m.Status {
		case StatusCompleted:
			c.Completed++
		case StatusPendingVerification:
			c.PendingVerification++
		case StatusDisputed:
			c.Disputed++
		case StatusCancelled:
			c.Cancelled++
		default:
			c.Scheduled++
		}
	}
	return c
}
