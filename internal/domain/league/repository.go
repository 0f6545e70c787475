package league

import "context"

// Repository stores league aggregates. Save upserts by ID and persists the
// caller's Revision as-is.
type Repository interface {
	// List returns every league, oldest first.
	List(ctx context.Context) ([]League, error)
	// GetByID reports false with a nil error for an unknown league.
	GetByID(ctx context.Context, leagueID string) (League, bool, error)
	Save(ctx context.Context, l League) error
}
