package match

import (
	"errors"
	"fmt"

	"github.com/riskibarqy/box-league/internal/domain/league"
)

var ErrInsufficientCapacity = errors.New("insufficient venue capacity")

// Slot places one box on a court during a session.
type Slot struct {
	BoxNumber int
	CourtID   string
	SessionID string
}

// AssignCourts spreads boxes round-robin across active sessions, then courts.
// Box k (0-based) lands in session k%sessions on court k/sessions.
func AssignCourts(boxNumbers []int, venue league.Venue) ([]Slot, error) {
	courts := venue.ActiveCourts()
	sessions := venue.ActiveSessions()
	capacity := len(courts) * len(sessions)
	if len(boxNumbers) > capacity {
		return nil, fmt.Errorf("%w: %d boxes for %d courts x %d sessions", ErrInsufficientCapacity, len(boxNumbers), len(courts), len(sessions))
	}

	out := make([]Slot, 0, len(boxNumbers))
	for k, boxNumber := range boxNumbers {
		out = append(out, Slot{
			BoxNumber: boxNumber,
			CourtID:   courts[k/len(sessions)].ID,
			SessionID: sessions[k%len(sessions)].ID,
		})
	}
	return out, nil
}
