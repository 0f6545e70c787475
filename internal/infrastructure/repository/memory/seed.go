package memory

import (
	"fmt"
	"time"

	"github.com/riskibarqy/box-league/internal/domain/league"
	"github.com/riskibarqy/box-league/internal/domain/member"
)

const (
	LeagueIDThursdayLadder = "thursday-ladder"
	OrganizerIDDemo        = "organizer-demo"
)

// SeedLeagues returns the demo league used when running without a database.
func SeedLeagues() []league.League {
	joined := time.Date(2026, 1, 5, 0, 0, 0, 0, time.UTC)
	return []league.League{
		{
			ID:           LeagueIDThursdayLadder,
			Name:         "Thursday Night Ladder",
			OrganizerIDs: []string{OrganizerIDDemo},
			Rules:        league.DefaultRules(),
			Venue: league.Venue{
				Courts: []league.Court{
					{ID: "court-1", Name: "Court 1", Active: true},
					{ID: "court-2", Name: "Court 2", Active: true},
					{ID: "court-3", Name: "Court 3", Active: false},
				},
				Sessions: []league.Session{
					{ID: "early", Name: "Early", StartTime: "18:30", Active: true},
					{ID: "late", Name: "Late", StartTime: "20:00", Active: true},
				},
			},
			Revision:  1,
			CreatedAt: joined,
			UpdatedAt: joined,
		},
	}
}

// SeedMembers returns thirteen rated members of the demo league.
func SeedMembers() []member.Member {
	joined := time.Date(2026, 1, 5, 0, 0, 0, 0, time.UTC)
	out := make([]member.Member, 0, 13)
	for i := 1; i <= 13; i++ {
		rating := 4.6 - float64(i)*0.1
		out = append(out, member.Member{
			LeagueID:         LeagueIDThursdayLadder,
			PlayerID:         fmt.Sprintf("player-%02d", i),
			DisplayName:      fmt.Sprintf("Player %02d", i),
			Status:           member.StatusActive,
			Rating:           &rating,
			ExternalRatingID: fmt.Sprintf("dupr-%02d", i),
			RatingConsent:    true,
			JoinedAt:         joined.Add(time.Duration(i) * time.Hour),
			UpdatedAt:        joined,
		})
	}
	return out
}

func DemoSeed() Seed {
	return Seed{Leagues: SeedLeagues(), Members: SeedMembers()}
}
