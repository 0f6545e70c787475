package match

import "context"

// Repository is the match result store boundary.
type Repository interface {
	CreateMany(ctx context.Context, matches []Match) error
	ListByWeek(ctx context.Context, seasonID string, weekNumber int) ([]Match, error)
	GetByID(ctx context.Context, matchID string) (Match, bool, error)
	Update(ctx context.Context, m Match) error
	DeleteByWeek(ctx context.Context, seasonID string, weekNumber int) (int, error)
	// ReplaceParticipant swaps a player in every unfinished match of the box.
	ReplaceParticipant(ctx context.Context, seasonID string, weekNumber, boxNumber int, fromID, toID string) (int, error)
}
