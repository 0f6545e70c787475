package member

import "context"

type Repository interface {
	ListByLeague(ctx context.Context, leagueID string) ([]Member, error)
	Get(ctx context.Context, leagueID, playerID string) (Member, bool, error)
	Save(ctx context.Context, m Member) error
	// IncrementSubstitutesUsed adds delta to the season counter and returns the new value.
	IncrementSubstitutesUsed(ctx context.Context, leagueID, playerID string, delta int) (int, error)
}
