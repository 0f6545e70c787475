package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/riskibarqy/box-league/internal/domain/member"
	qb "github.com/riskibarqy/box-league/internal/platform/querybuilder"
)

var memberColumns = []string{
	"league_id",
	"player_id",
	"display_name",
	"status",
	"rating",
	"external_rating_id",
	"rating_consent",
	"date_of_birth",
	"substitutes_used",
	"joined_at",
	"updated_at",
}

type MemberRepository struct {
	q    sqlx.ExtContext
	lock bool
}

func NewMemberRepository(db *sqlx.DB) *MemberRepository {
	return &MemberRepository{q: db}
}

func (r *MemberRepository) ListByLeague(ctx context.Context, leagueID string) ([]member.Member, error) {
	query, args, err := qb.Select(memberColumns...).From("members").
		Where(qb.Eq("league_id", leagueID)).
		OrderBy("player_id").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build select members query: %w", err)
	}

	var rows []memberTableModel
	if err := sqlx.SelectContext(ctx, r.q, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("select members by league: %w", err)
	}

	out := make([]member.Member, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.toDomain())
	}
	return out, nil
}

func (r *MemberRepository) Get(ctx context.Context, leagueID, playerID string) (member.Member, bool, error) {
	query, args, err := qb.Select(memberColumns...).From("members").
		Where(
			qb.Eq("league_id", leagueID),
			qb.Eq("player_id", playerID),
		).
		Suffix(lockSuffix(r.lock)).
		ToSQL()
	if err != nil {
		return member.Member{}, false, fmt.Errorf("build get member query: %w", err)
	}

	var row memberTableModel
	if err := sqlx.GetContext(ctx, r.q, &row, query, args...); err != nil {
		if isNotFound(err) {
			return member.Member{}, false, nil
		}
		return member.Member{}, false, fmt.Errorf("get member: %w", err)
	}
	return row.toDomain(), true, nil
}

func (r *MemberRepository) Save(ctx context.Context, m member.Member) error {
	row := memberTableModel{
		LeagueID:         m.LeagueID,
		PlayerID:         m.PlayerID,
		DisplayName:      m.DisplayName,
		Status:           string(m.Status),
		Rating:           nullFloat(m.Rating),
		ExternalRatingID: m.ExternalRatingID,
		RatingConsent:    m.RatingConsent,
		DateOfBirth:      nullTime(m.DateOfBirth),
		SubstitutesUsed:  m.SubstitutesUsed,
		JoinedAt:         orNow(m.JoinedAt),
		UpdatedAt:        orNow(m.UpdatedAt),
	}
	query, args, err := qb.UpsertModel("members", row, "league_id", "player_id")
	if err != nil {
		return fmt.Errorf("build upsert member query: %w", err)
	}

	if _, err := r.q.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("upsert member %s/%s: %w", m.LeagueID, m.PlayerID, err)
	}
	return nil
}

func (r *MemberRepository) IncrementSubstitutesUsed(ctx context.Context, leagueID, playerID string, delta int) (int, error) {
	query, args, err := qb.Update("members").
		SetExpr("substitutes_used", "GREATEST(substitutes_used + ?, 0)", delta).
		Set("updated_at", time.Now().UTC()).
		Where(
			qb.Eq("league_id", leagueID),
			qb.Eq("player_id", playerID),
		).
		Suffix("RETURNING substitutes_used").
		ToSQL()
	if err != nil {
		return 0, fmt.Errorf("build increment substitutes query: %w", err)
	}

	var total int
	if err := sqlx.GetContext(ctx, r.q, &total, query, args...); err != nil {
		if isNotFound(err) {
			return 0, fmt.Errorf("member not found: league=%s player=%s", leagueID, playerID)
		}
		return 0, fmt.Errorf("increment substitutes used: %w", err)
	}
	return total, nil
}

func (m memberTableModel) toDomain() member.Member {
	return member.Member{
		LeagueID:         m.LeagueID,
		PlayerID:         m.PlayerID,
		DisplayName:      m.DisplayName,
		Status:           member.Status(m.Status),
		Rating:           floatPtr(m.Rating),
		ExternalRatingID: m.ExternalRatingID,
		RatingConsent:    m.RatingConsent,
		DateOfBirth:      timePtr(m.DateOfBirth),
		SubstitutesUsed:  m.SubstitutesUsed,
		JoinedAt:         m.JoinedAt,
		UpdatedAt:        m.UpdatedAt,
	}
}
