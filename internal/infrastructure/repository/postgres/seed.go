package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/riskibarqy/box-league/internal/infrastructure/repository/memory"
)

// BootstrapSeed loads the demo league and roster into an empty database.
func BootstrapSeed(ctx context.Context, db *sqlx.DB) error {
	var count int
	if err := db.GetContext(ctx, &count, `SELECT COUNT(1) FROM leagues`); err != nil {
		return fmt.Errorf("count leagues for bootstrap seed: %w", err)
	}
	if count > 0 {
		return nil
	}

	tx, err := db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin seed tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	seed := memory.DemoSeed()
	leagues := &LeagueRepository{q: tx}
	for _, l := range seed.Leagues {
		if err := leagues.Save(ctx, l); err != nil {
			return fmt.Errorf("seed league %s: %w", l.ID, err)
		}
	}

	for _, m := range seed.Members {
		sqlQuery, args, err := sqlx.Named(`
INSERT INTO members (league_id, player_id, display_name, status, rating, external_rating_id, rating_consent, date_of_birth, joined_at)
VALUES (:league_id, :player_id, :display_name, :status, :rating, :external_rating_id, :rating_consent, :date_of_birth, :joined_at)
ON CONFLICT (league_id, player_id) DO NOTHING`, map[string]any{
			"league_id":          m.LeagueID,
			"player_id":          m.PlayerID,
			"display_name":       m.DisplayName,
			"status":             string(m.Status),
			"rating":             nullFloat(m.Rating),
			"external_rating_id": m.ExternalRatingID,
			"rating_consent":     m.RatingConsent,
			"date_of_birth":      nullTime(m.DateOfBirth),
			"joined_at":          orNow(m.JoinedAt),
		})
		if err != nil {
			return fmt.Errorf("bind seed member %s query: %w", m.PlayerID, err)
		}
		sqlQuery = tx.Rebind(sqlQuery)
		if _, err := tx.ExecContext(ctx, sqlQuery, args...); err != nil {
			return fmt.Errorf("seed member %s: %w", m.PlayerID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit seed tx: %w", err)
	}

	return nil
}
