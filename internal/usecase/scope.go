package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/riskibarqy/box-league/internal/domain/league"
	"github.com/riskibarqy/box-league/internal/domain/season"
	"github.com/riskibarqy/box-league/internal/domain/txn"
	"github.com/riskibarqy/box-league/internal/domain/week"
)

// WeekRef addresses one week of a season and the caller acting on it.
type WeekRef struct {
	ActorID    string
	LeagueID   string
	SeasonID   string
	WeekNumber int
	// ExpectedRevision enables an optimistic check when greater than zero.
	ExpectedRevision int64
}

func (r WeekRef) normalize() (WeekRef, error) {
	r.ActorID = strings.TrimSpace(r.ActorID)
	r.LeagueID = strings.TrimSpace(r.LeagueID)
	r.SeasonID = strings.TrimSpace(r.SeasonID)
	if r.LeagueID == "" || r.SeasonID == "" {
		return r, fmt.Errorf("%w: league_id and season_id are required", ErrInvalidInput)
	}
	if r.WeekNumber < 1 {
		return r, fmt.Errorf("%w: week number must be >= 1", ErrInvalidInput)
	}
	return r, nil
}

func (r WeekRef) key() string {
	return fmt.Sprintf("%s:%s:%d", r.LeagueID, r.SeasonID, r.WeekNumber)
}

type weekScope struct {
	League league.League
	Season season.Season
	Week   week.Week
}

func loadLeague(ctx context.Context, repos txn.Repositories, leagueID string) (league.League, error) {
	l, exists, err := repos.Leagues.GetByID(ctx, leagueID)
	if err != nil {
		return league.League{}, fmt.Errorf("get league: %w", err)
	}
	if !exists {
		return league.League{}, fmt.Errorf("%w: league=%s", ErrNotFound, leagueID)
	}
	return l, nil
}

func loadSeason(ctx context.Context, repos txn.Repositories, leagueID, seasonID string) (season.Season, error) {
	s, exists, err := repos.Seasons.GetByID(ctx, seasonID)
	if err != nil {
		return season.Season{}, fmt.Errorf("get season: %w", err)
	}
	if !exists || s.LeagueID != leagueID {
		return season.Season{}, fmt.Errorf("%w: season=%s league=%s", ErrNotFound, seasonID, leagueID)
	}
	return s, nil
}

func loadWeekScope(ctx context.Context, repos txn.Repositories, ref WeekRef) (weekScope, error) {
	l, err := loadLeague(ctx, repos, ref.LeagueID)
	if err != nil {
		return weekScope{}, err
	}
	s, err := loadSeason(ctx, repos, ref.LeagueID, ref.SeasonID)
	if err != nil {
		return weekScope{}, err
	}
	w, exists, err := repos.Weeks.Get(ctx, ref.SeasonID, ref.WeekNumber)
	if err != nil {
		return weekScope{}, fmt.Errorf("get week: %w", err)
	}
	if !exists {
		return weekScope{}, fmt.Errorf("%w: season=%s week=%d", ErrNotFound, ref.SeasonID, ref.WeekNumber)
	}
	return weekScope{League: l, Season: s, Week: w}, nil
}

func requireOrganizer(l league.League, actorID string) error {
	if strings.TrimSpace(actorID) == "" {
		return fmt.Errorf("%w: actor is required", ErrUnauthorized)
	}
	if !l.IsOrganizer(actorID) {
		return fmt.Errorf("%w: %s is not an organizer of league %s", ErrForbidden, actorID, l.ID)
	}
	return nil
}

// authorizer decides whether the actor may run an operation on the scope.
type authorizer func(scope weekScope, actorID string) error

func organizerOnly(scope weekScope, actorID string) error {
	return requireOrganizer(scope.League, actorID)
}

// selfOrOrganizer allows the player named by playerID or any organizer.
func selfOrOrganizer(playerID string) authorizer {
	return func(scope weekScope, actorID string) error {
		if actorID != "" && actorID == playerID {
			return nil
		}
		return requireOrganizer(scope.League, actorID)
	}
}

// mutateWeek loads the week inside a transaction, applies fn and writes it back
// with a compare-and-swap on the revision it read.
func mutateWeek(
	ctx context.Context,
	store txn.Store,
	ref WeekRef,
	authorize authorizer,
	fn func(ctx context.Context, repos txn.Repositories, scope *weekScope) error,
) (week.Week, error) {
	ref, err := ref.normalize()
	if err != nil {
		return week.Week{}, err
	}

	var out week.Week
	err = store.RunInTx(ctx, func(ctx context.Context, repos txn.Repositories) error {
		scope, err := loadWeekScope(ctx, repos, ref)
		if err != nil {
			return err
		}
		if authorize != nil {
			if err := authorize(scope, ref.ActorID); err != nil {
				return err
			}
		}
		readRevision := scope.Week.Revision
		if ref.ExpectedRevision > 0 && ref.ExpectedRevision != readRevision {
			return fmt.Errorf("%w: week %d is at revision %d, caller expected %d", week.ErrRevisionConflict, ref.WeekNumber, readRevision, ref.ExpectedRevision)
		}

		if err := fn(ctx, repos, &scope); err != nil {
			return err
		}
		if err := repos.Weeks.Update(ctx, scope.Week, readRevision); err != nil {
			return fmt.Errorf("update week: %w", err)
		}
		out = scope.Week
		return nil
	})
	if err != nil {
		err = classify(err)
		recordOutcome(ctx, err)
		return week.Week{}, err
	}
	return out, nil
}

// priorFinalized returns finalized weeks of the season before the given number, oldest first.
func priorFinalized(ctx context.Context, repos txn.Repositories, seasonID string, before int) ([]week.Week, error) {
	weeks, err := repos.Weeks.ListBySeason(ctx, seasonID)
	if err != nil {
		return nil, fmt.Errorf("list weeks by season: %w", err)
	}
	out := make([]week.Week, 0, len(weeks))
	for _, w := range weeks {
		if w.Number < before && w.State == week.StateFinalized {
			out = append(out, w)
		}
	}
	return out, nil
}

func historyRows(weeks []week.Week) []week.StandingRow {
	var out []week.StandingRow
	for _, w := range weeks {
		if w.Standings == nil {
			continue
		}
		out = append(out, w.Standings.Rows...)
	}
	return out
}

func defaultNow(now func() time.Time) func() time.Time {
	if now == nil {
		return time.Now
	}
	return now
}
