package week

import "context"

// Repository persists week documents keyed by season and week number.
type Repository interface {
	Get(ctx context.Context, seasonID string, number int) (Week, bool, error)
	ListBySeason(ctx context.Context, seasonID string) ([]Week, error)
	// Create fails with ErrAlreadyExists when the key is taken.
	Create(ctx context.Context, w Week) error
	// Update fails with ErrRevisionConflict when the stored revision differs from expectedRevision.
	Update(ctx context.Context, w Week, expectedRevision int64) error
}
