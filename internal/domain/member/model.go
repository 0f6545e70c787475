package member

import (
	"fmt"
	"time"
)

type Status string

const (
	StatusActive   Status = "active"
	StatusInactive Status = "inactive"
)

func (s Status) Valid() bool {
	return s == StatusActive || s == StatusInactive
}

func ParseStatus(raw string) (Status, error) {
	s := Status(raw)
	if !s.Valid() {
		return "", fmt.Errorf("unknown member status %q", raw)
	}
	return s, nil
}

// Member is a player's membership in one league.
type Member struct {
	LeagueID         string
	PlayerID         string
	DisplayName      string
	Status           Status
	Rating           *float64
	ExternalRatingID string
	RatingConsent    bool
	DateOfBirth      *time.Time
	SubstitutesUsed  int
	JoinedAt         time.Time
	UpdatedAt        time.Time
}

func (m Member) Active() bool {
	return m.Status == StatusActive
}

// RatingLinked reports whether results may be pushed to the external rating service.
func (m Member) RatingLinked() bool {
	return m.ExternalRatingID != "" && m.RatingConsent
}
