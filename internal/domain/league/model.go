package league

import (
	"fmt"
	"slices"
	"strings"
	"time"
)

// League is a box league run by one or more organizers.
type League struct {
	ID             string
	Name           string
	OrganizerIDs   []string
	Rules          Rules
	Venue          Venue
	ActiveSeasonID string
	Revision       int64
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

func (l League) Validate() error {
	if strings.TrimSpace(l.ID) == "" {
		return fmt.Errorf("league id is required")
	}
	if strings.TrimSpace(l.Name) == "" {
		return fmt.Errorf("league name is required")
	}
	if err := l.Rules.Validate(); err != nil {
		return err
	}
	if err := l.Venue.Validate(); err != nil {
		return err
	}

	return nil
}

func (l League) IsOrganizer(userID string) bool {
	return userID != "" && slices.Contains(l.OrganizerIDs, userID)
}

func (l League) Clone() League {
	out := l
	out.OrganizerIDs = append([]string(nil), l.OrganizerIDs...)
	out.Rules = l.Rules.Clone()
	out.Venue = l.Venue.Clone()
	return out
}

// Court is one playing surface at the league venue.
type Court struct {
	ID     string
	Name   string
	Active bool
}

// Session is a time slot on league night.
type Session struct {
	ID        string
	Name      string
	StartTime string
	Active    bool
}

// Venue multiplies active courts by active sessions into weekly box capacity.
type Venue struct {
	Courts   []Court
	Sessions []Session
}

func (v Venue) ActiveCourts() []Court {
	out := make([]Court, 0, len(v.Courts))
	for _, c := range v.Courts {
		if c.Active {
			out = append(out, c)
		}
	}
	return out
}

func (v Venue) ActiveSessions() []Session {
	out := make([]Session, 0, len(v.Sessions))
	for _, s := range v.Sessions {
		if s.Active {
			out = append(out, s)
		}
	}
	return out
}

// Capacity is the number of boxes the venue can host in one week.
func (v Venue) Capacity() int {
	return len(v.ActiveCourts()) * len(v.ActiveSessions())
}

func (v Venue) Validate() error {
	seen := make(map[string]struct{}, len(v.Courts))
	for _, c := range v.Courts {
		if strings.TrimSpace(c.ID) == "" {
			return fmt.Errorf("court id is required")
		}
		if _, ok := seen[c.ID]; ok {
			return fmt.Errorf("duplicate court id %s", c.ID)
		}
		seen[c.ID] = struct{}{}
	}
	seen = make(map[string]struct{}, len(v.Sessions))
	for _, s := range v.Sessions {
		if strings.TrimSpace(s.ID) == "" {
			return fmt.Errorf("session id is required")
		}
		if _, ok := seen[s.ID]; ok {
			return fmt.Errorf("duplicate session id %s", s.ID)
		}
		seen[s.ID] = struct{}{}
	}
	return nil
}

func (v Venue) Clone() Venue {
	return Venue{
		Courts:   append([]Court(nil), v.Courts...),
		Sessions: append([]Session(nil), v.Sessions...),
	}
}
