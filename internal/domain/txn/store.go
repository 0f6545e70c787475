package txn

import (
	"context"

	"github.com/riskibarqy/box-league/internal/domain/league"
	"github.com/riskibarqy/box-league/internal/domain/match"
	"github.com/riskibarqy/box-league/internal/domain/member"
	"github.com/riskibarqy/box-league/internal/domain/season"
	"github.com/riskibarqy/box-league/internal/domain/week"
)

// Repositories groups the repositories that share one unit of work.
type Repositories struct {
	Leagues league.Repository
	Members member.Repository
	Seasons season.Repository
	Weeks   week.Repository
	Matches match.Repository
}

// Store runs read-modify-write units atomically. Repositories handed to fn see
// the transaction; nothing fn writes is visible to others until it returns nil.
type Store interface {
	Repositories() Repositories
	RunInTx(ctx context.Context, fn func(ctx context.Context, repos Repositories) error) error
}
