package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/riskibarqy/box-league/internal/domain/week"
	qb "github.com/riskibarqy/box-league/internal/platform/querybuilder"
)

type WeekRepository struct {
	q    sqlx.ExtContext
	lock bool
}

func NewWeekRepository(db *sqlx.DB) *WeekRepository {
	return &WeekRepository{q: db}
}

func (r *WeekRepository) Get(ctx context.Context, seasonID string, number int) (week.Week, bool, error) {
	query, args, err := qb.Select("document").From("weeks").
		Where(
			qb.Eq("season_id", seasonID),
			qb.Eq("number", number),
		).
		Suffix(lockSuffix(r.lock)).
		ToSQL()
	if err != nil {
		return week.Week{}, false, fmt.Errorf("build get week query: %w", err)
	}

	var doc string
	if err := sqlx.GetContext(ctx, r.q, &doc, query, args...); err != nil {
		if isNotFound(err) {
			return week.Week{}, false, nil
		}
		return week.Week{}, false, fmt.Errorf("get week: %w", err)
	}

	var w week.Week
	if err := decodeDocument([]byte(doc), &w); err != nil {
		return week.Week{}, false, fmt.Errorf("decode week season=%s number=%d: %w", seasonID, number, err)
	}
	return w, true, nil
}

func (r *WeekRepository) ListBySeason(ctx context.Context, seasonID string) ([]week.Week, error) {
	query, args, err := qb.Select("document").From("weeks").
		Where(qb.Eq("season_id", seasonID)).
		OrderBy("number").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build select weeks query: %w", err)
	}

	var docs []string
	if err := sqlx.SelectContext(ctx, r.q, &docs, query, args...); err != nil {
		return nil, fmt.Errorf("select weeks by season: %w", err)
	}

	out := make([]week.Week, 0, len(docs))
	for _, doc := range docs {
		var w week.Week
		if err := decodeDocument([]byte(doc), &w); err != nil {
			return nil, fmt.Errorf("decode week document: %w", err)
		}
		out = append(out, w)
	}
	return out, nil
}

func (r *WeekRepository) Create(ctx context.Context, w week.Week) error {
	doc, err := encodeDocument(w)
	if err != nil {
		return fmt.Errorf("encode week: %w", err)
	}

	query, args, err := qb.InsertModels("weeks", weekTableModel{
		SeasonID:  w.SeasonID,
		Number:    w.Number,
		LeagueID:  w.LeagueID,
		State:     string(w.State),
		Document:  string(doc),
		Revision:  w.Revision,
		CreatedAt: orNow(w.CreatedAt),
		UpdatedAt: orNow(w.UpdatedAt),
	}).ToSQL()
	if err != nil {
		return fmt.Errorf("build insert week query: %w", err)
	}

	if _, err := r.q.ExecContext(ctx, query, args...); err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: season=%s week=%d", week.ErrAlreadyExists, w.SeasonID, w.Number)
		}
		return fmt.Errorf("insert week: %w", err)
	}
	return nil
}

// Update writes w only while the stored revision still equals expectedRevision.
func (r *WeekRepository) Update(ctx context.Context, w week.Week, expectedRevision int64) error {
	doc, err := encodeDocument(w)
	if err != nil {
		return fmt.Errorf("encode week: %w", err)
	}

	query, args, err := qb.Update("weeks").
		Set("state", string(w.State)).
		Set("document", string(doc)).
		Set("revision", w.Revision).
		Set("updated_at", orNow(w.UpdatedAt)).
		Where(
			qb.Eq("season_id", w.SeasonID),
			qb.Eq("number", w.Number),
			qb.Eq("revision", expectedRevision),
		).
		ToSQL()
	if err != nil {
		return fmt.Errorf("build update week query: %w", err)
	}

	res, err := r.q.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("update week: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update week rows affected: %w", err)
	}
	if n > 0 {
		return nil
	}

	stored, err := r.storedRevision(ctx, w.SeasonID, w.Number)
	if err != nil {
		return err
	}
	if stored < 0 {
		return fmt.Errorf("week not found: season=%s week=%d", w.SeasonID, w.Number)
	}
	return fmt.Errorf("%w: season=%s week=%d stored=%d expected=%d", week.ErrRevisionConflict, w.SeasonID, w.Number, stored, expectedRevision)
}

func (r *WeekRepository) storedRevision(ctx context.Context, seasonID string, number int) (int64, error) {
	query, args, err := qb.Select("revision").From("weeks").
		Where(
			qb.Eq("season_id", seasonID),
			qb.Eq("number", number),
		).
		ToSQL()
	if err != nil {
		return 0, fmt.Errorf("build week revision query: %w", err)
	}

	var rev int64
	if err := sqlx.GetContext(ctx, r.q, &rev, query, args...); err != nil {
		if isNotFound(err) {
			return -1, nil
		}
		return 0, fmt.Errorf("get week revision: %w", err)
	}
	return rev, nil
}
