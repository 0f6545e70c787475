package postgres

import (
	"database/sql"
	"time"
)

// Aggregates other than members are stored as a JSONB document next to the
// columns used for lookups, ordering and constraints.

type leagueTableModel struct {
	ID             string         `db:"id"`
	Name           string         `db:"name"`
	ActiveSeasonID sql.NullString `db:"active_season_id"`
	Document       string         `db:"document"`
	Revision       int64          `db:"revision"`
	CreatedAt      time.Time      `db:"created_at,insertonly"`
	UpdatedAt      time.Time      `db:"updated_at"`
}

type memberTableModel struct {
	LeagueID         string          `db:"league_id"`
	PlayerID         string          `db:"player_id"`
	DisplayName      string          `db:"display_name"`
	Status           string          `db:"status"`
	Rating           sql.NullFloat64 `db:"rating"`
	ExternalRatingID string          `db:"external_rating_id"`
	RatingConsent    bool            `db:"rating_consent"`
	DateOfBirth      sql.NullTime    `db:"date_of_birth"`
	SubstitutesUsed  int             `db:"substitutes_used"`
	JoinedAt         time.Time       `db:"joined_at,insertonly"`
	UpdatedAt        time.Time       `db:"updated_at"`
}

type seasonTableModel struct {
	ID        string    `db:"id"`
	LeagueID  string    `db:"league_id"`
	State     string    `db:"state"`
	Document  string    `db:"document"`
	Revision  int64     `db:"revision"`
	CreatedAt time.Time `db:"created_at,insertonly"`
	UpdatedAt time.Time `db:"updated_at"`
}

type weekTableModel struct {
	SeasonID  string    `db:"season_id"`
	Number    int       `db:"number"`
	LeagueID  string    `db:"league_id"`
	State     string    `db:"state"`
	Document  string    `db:"document"`
	Revision  int64     `db:"revision"`
	CreatedAt time.Time `db:"created_at,insertonly"`
	UpdatedAt time.Time `db:"updated_at"`
}

type matchTableModel struct {
	ID         string    `db:"id"`
	LeagueID   string    `db:"league_id"`
	SeasonID   string    `db:"season_id"`
	WeekNumber int       `db:"week_number"`
	BoxNumber  int       `db:"box_number"`
	Round      int       `db:"round"`
	Status     string    `db:"status"`
	Document   string    `db:"document"`
	CreatedAt  time.Time `db:"created_at,insertonly"`
	UpdatedAt  time.Time `db:"updated_at"`
}

func orNow(t time.Time) time.Time {
	if t.IsZero() {
		return time.Now().UTC()
	}
	return t.UTC()
}
