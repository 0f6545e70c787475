package season

import "context"

type Repository interface {
	GetByID(ctx context.Context, seasonID string) (Season, bool, error)
	ListByLeague(ctx context.Context, leagueID string) ([]Season, error)
	Create(ctx context.Context, s Season) error
	Update(ctx context.Context, s Season) error
}
