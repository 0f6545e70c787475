package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/riskibarqy/box-league/internal/domain/league"
	qb "github.com/riskibarqy/box-league/internal/platform/querybuilder"
)

type LeagueRepository struct {
	q    sqlx.ExtContext
	lock bool
}

func NewLeagueRepository(db *sqlx.DB) *LeagueRepository {
	return &LeagueRepository{q: db}
}

func (r *LeagueRepository) List(ctx context.Context) ([]league.League, error) {
	query, args, err := qb.Select("document").From("leagues").
		OrderBy("created_at", "id").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build select leagues query: %w", err)
	}

	var docs []string
	if err := sqlx.SelectContext(ctx, r.q, &docs, query, args...); err != nil {
		return nil, fmt.Errorf("select leagues: %w", err)
	}

	out := make([]league.League, 0, len(docs))
	for _, doc := range docs {
		var l league.League
		if err := decodeDocument([]byte(doc), &l); err != nil {
			return nil, fmt.Errorf("decode league document: %w", err)
		}
		out = append(out, l)
	}
	return out, nil
}

func (r *LeagueRepository) GetByID(ctx context.Context, leagueID string) (league.League, bool, error) {
	query, args, err := qb.Select("document").From("leagues").
		Where(qb.Eq("id", leagueID)).
		Suffix(lockSuffix(r.lock)).
		ToSQL()
	if err != nil {
		return league.League{}, false, fmt.Errorf("build get league by id query: %w", err)
	}

	var doc string
	if err := sqlx.GetContext(ctx, r.q, &doc, query, args...); err != nil {
		if isNotFound(err) {
			return league.League{}, false, nil
		}
		return league.League{}, false, fmt.Errorf("get league by id: %w", err)
	}

	var l league.League
	if err := decodeDocument([]byte(doc), &l); err != nil {
		return league.League{}, false, fmt.Errorf("decode league %s: %w", leagueID, err)
	}
	return l, true, nil
}

func (r *LeagueRepository) Save(ctx context.Context, l league.League) error {
	doc, err := encodeDocument(l)
	if err != nil {
		return fmt.Errorf("encode league %s: %w", l.ID, err)
	}

	row := leagueTableModel{
		ID:             l.ID,
		Name:           l.Name,
		ActiveSeasonID: sql.NullString{String: l.ActiveSeasonID, Valid: l.ActiveSeasonID != ""},
		Document:       string(doc),
		Revision:       l.Revision,
		CreatedAt:      orNow(l.CreatedAt),
		UpdatedAt:      orNow(l.UpdatedAt),
	}
	query, args, err := qb.UpsertModel("leagues", row, "id")
	if err != nil {
		return fmt.Errorf("build upsert league query: %w", err)
	}

	if _, err := r.q.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("upsert league %s: %w", l.ID, err)
	}
	return nil
}
