package postgres

import (
	"context"
	"fmt"
	"slices"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/riskibarqy/box-league/internal/domain/match"
	qb "github.com/riskibarqy/box-league/internal/platform/querybuilder"
)

type MatchRepository struct {
	q    sqlx.ExtContext
	lock bool
}

func NewMatchRepository(db *sqlx.DB) *MatchRepository {
	return &MatchRepository{q: db}
}

func (r *MatchRepository) CreateMany(ctx context.Context, matches []match.Match) error {
	if len(matches) == 0 {
		return nil
	}

	rows := make([]matchTableModel, 0, len(matches))
	for _, m := range matches {
		row, err := matchRow(m)
		if err != nil {
			return err
		}
		rows = append(rows, row)
	}
	query, args, err := qb.InsertModels("matches", rows...).ToSQL()
	if err != nil {
		return fmt.Errorf("build insert matches query: %w", err)
	}

	if _, err := r.q.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("insert matches: %w", err)
	}
	return nil
}

func (r *MatchRepository) ListByWeek(ctx context.Context, seasonID string, weekNumber int) ([]match.Match, error) {
	return r.selectMatches(ctx, lockSuffix(r.lock),
		qb.Eq("season_id", seasonID),
		qb.Eq("week_number", weekNumber),
	)
}

func (r *MatchRepository) GetByID(ctx context.Context, matchID string) (match.Match, bool, error) {
	out, err := r.selectMatches(ctx, lockSuffix(r.lock), qb.Eq("id", matchID))
	if err != nil {
		return match.Match{}, false, err
	}
	if len(out) == 0 {
		return match.Match{}, false, nil
	}
	return out[0], true, nil
}

func (r *MatchRepository) Update(ctx context.Context, m match.Match) error {
	row, err := matchRow(m)
	if err != nil {
		return err
	}

	query, args, err := qb.Update("matches").
		Set("status", row.Status).
		Set("document", row.Document).
		Set("updated_at", row.UpdatedAt).
		Where(qb.Eq("id", m.ID)).
		ToSQL()
	if err != nil {
		return fmt.Errorf("build update match query: %w", err)
	}

	res, err := r.q.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("update match %s: %w", m.ID, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("match not found: %s", m.ID)
	}
	return nil
}

func (r *MatchRepository) DeleteByWeek(ctx context.Context, seasonID string, weekNumber int) (int, error) {
	res, err := r.q.ExecContext(ctx,
		`DELETE FROM matches WHERE season_id = $1 AND week_number = $2`,
		seasonID, weekNumber,
	)
	if err != nil {
		return 0, fmt.Errorf("delete matches season=%s week=%d: %w", seasonID, weekNumber, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("delete matches rows affected: %w", err)
	}
	return int(n), nil
}

func (r *MatchRepository) ReplaceParticipant(ctx context.Context, seasonID string, weekNumber, boxNumber int, fromID, toID string) (int, error) {
	open, err := r.selectMatches(ctx, lockSuffix(r.lock),
		qb.Eq("season_id", seasonID),
		qb.Eq("week_number", weekNumber),
		qb.Eq("box_number", boxNumber),
		qb.Expr("status NOT IN (?, ?)", string(match.StatusCompleted), string(match.StatusCancelled)),
	)
	if err != nil {
		return 0, err
	}

	updated := 0
	now := time.Now().UTC()
	for _, m := range open {
		changed := false
		for _, ids := range [][]string{m.Team1, m.Team2, m.Sitting} {
			if idx := slices.Index(ids, fromID); idx >= 0 {
				ids[idx] = toID
				changed = true
			}
		}
		if !changed {
			continue
		}
		m.UpdatedAt = now
		if err := r.Update(ctx, m); err != nil {
			return updated, err
		}
		updated++
	}
	return updated, nil
}

func (r *MatchRepository) selectMatches(ctx context.Context, suffix string, where ...qb.Condition) ([]match.Match, error) {
	query, args, err := qb.Select("document").From("matches").
		Where(where...).
		OrderBy("seq").
		Suffix(suffix).
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build select matches query: %w", err)
	}

	var docs []string
	if err := sqlx.SelectContext(ctx, r.q, &docs, query, args...); err != nil {
		return nil, fmt.Errorf("select matches: %w", err)
	}

	out := make([]match.Match, 0, len(docs))
	for _, doc := range docs {
		var m match.Match
		if err := decodeDocument([]byte(doc), &m); err != nil {
			return nil, fmt.Errorf("decode match document: %w", err)
		}
		out = append(out, m)
	}
	return out, nil
}

func matchRow(m match.Match) (matchTableModel, error) {
	doc, err := encodeDocument(m)
	if err != nil {
		return matchTableModel{}, fmt.Errorf("encode match %s: %w", m.ID, err)
	}
	return matchTableModel{
		ID:         m.ID,
		LeagueID:   m.LeagueID,
		SeasonID:   m.SeasonID,
		WeekNumber: m.WeekNumber,
		BoxNumber:  m.BoxNumber,
		Round:      m.Round,
		Status:     string(m.Status),
		Document:   string(doc),
		CreatedAt:  orNow(m.CreatedAt),
		UpdatedAt:  orNow(m.UpdatedAt),
	}, nil
}
