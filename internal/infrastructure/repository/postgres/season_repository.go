package postgres

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/jmoiron/sqlx"
	"github.com/riskibarqy/box-league/internal/domain/season"
	qb "github.com/riskibarqy/box-league/internal/platform/querybuilder"
)

type SeasonRepository struct {
	q    sqlx.ExtContext
	lock bool
}

func NewSeasonRepository(db *sqlx.DB) *SeasonRepository {
	return &SeasonRepository{q: db}
}

func (r *SeasonRepository) GetByID(ctx context.Context, seasonID string) (season.Season, bool, error) {
	query, args, err := qb.Select("document").From("seasons").
		Where(qb.Eq("id", seasonID)).
		Suffix(lockSuffix(r.lock)).
		ToSQL()
	if err != nil {
		return season.Season{}, false, fmt.Errorf("build get season query: %w", err)
	}

	var doc string
	if err := sqlx.GetContext(ctx, r.q, &doc, query, args...); err != nil {
		if isNotFound(err) {
			return season.Season{}, false, nil
		}
		return season.Season{}, false, fmt.Errorf("get season: %w", err)
	}

	var s season.Season
	if err := decodeDocument([]byte(doc), &s); err != nil {
		return season.Season{}, false, fmt.Errorf("decode season %s: %w", seasonID, err)
	}
	return s, true, nil
}

func (r *SeasonRepository) ListByLeague(ctx context.Context, leagueID string) ([]season.Season, error) {
	query, args, err := qb.Select("document").From("seasons").
		Where(qb.Eq("league_id", leagueID)).
		OrderBy("created_at", "id").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build select seasons query: %w", err)
	}

	var docs []string
	if err := sqlx.SelectContext(ctx, r.q, &docs, query, args...); err != nil {
		return nil, fmt.Errorf("select seasons by league: %w", err)
	}

	out := make([]season.Season, 0, len(docs))
	for _, doc := range docs {
		var s season.Season
		if err := decodeDocument([]byte(doc), &s); err != nil {
			return nil, fmt.Errorf("decode season document: %w", err)
		}
		out = append(out, s)
	}
	slices.SortStableFunc(out, func(a, b season.Season) int {
		if c := a.StartDate.Compare(b.StartDate); c != 0 {
			return c
		}
		return strings.Compare(a.ID, b.ID)
	})
	return out, nil
}

func (r *SeasonRepository) Create(ctx context.Context, s season.Season) error {
	doc, err := encodeDocument(s)
	if err != nil {
		return fmt.Errorf("encode season %s: %w", s.ID, err)
	}

	query, args, err := qb.InsertModels("seasons", seasonTableModel{
		ID:        s.ID,
		LeagueID:  s.LeagueID,
		State:     string(s.State),
		Document:  string(doc),
		Revision:  s.Revision,
		CreatedAt: orNow(s.CreatedAt),
		UpdatedAt: orNow(s.UpdatedAt),
	}).ToSQL()
	if err != nil {
		return fmt.Errorf("build insert season query: %w", err)
	}

	if _, err := r.q.ExecContext(ctx, query, args...); err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("season already exists: %s", s.ID)
		}
		return fmt.Errorf("insert season %s: %w", s.ID, err)
	}
	return nil
}

func (r *SeasonRepository) Update(ctx context.Context, s season.Season) error {
	doc, err := encodeDocument(s)
	if err != nil {
		return fmt.Errorf("encode season %s: %w", s.ID, err)
	}

	query, args, err := qb.Update("seasons").
		Set("state", string(s.State)).
		Set("document", string(doc)).
		Set("revision", s.Revision).
		Set("updated_at", orNow(s.UpdatedAt)).
		Where(qb.Eq("id", s.ID)).
		ToSQL()
	if err != nil {
		return fmt.Errorf("build update season query: %w", err)
	}

	res, err := r.q.ExecContext(ctx, query, args...)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("league %s already has an active season: %w", s.LeagueID, err)
		}
		return fmt.Errorf("update season %s: %w", s.ID, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("season not found: %s", s.ID)
	}
	return nil
}
