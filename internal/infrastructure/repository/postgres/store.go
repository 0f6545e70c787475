package postgres

import (
	"context"
	"database/sql"
	"time"

	crerr "github.com/cockroachdb/errors"
	"github.com/jmoiron/sqlx"
	"github.com/riskibarqy/box-league/internal/domain/txn"
	"github.com/riskibarqy/box-league/internal/platform/logging"
)

const (
	defaultTxMaxRetries = 3
	txRetryBaseDelay    = 25 * time.Millisecond
)

// Store implements txn.Store on PostgreSQL. Transactions run SERIALIZABLE and
// rows read inside them are locked FOR UPDATE.
type Store struct {
	db         *sqlx.DB
	maxRetries int
	logger     *logging.Logger
}

type StoreOption func(*Store)

// WithMaxRetries bounds how often a transaction is replayed after a
// serialization failure or deadlock.
func WithMaxRetries(n int) StoreOption {
	return func(s *Store) {
		if n >= 0 {
			s.maxRetries = n
		}
	}
}

func WithLogger(logger *logging.Logger) StoreOption {
	return func(s *Store) {
		if logger != nil {
			s.logger = logger
		}
	}
}

func NewStore(db *sqlx.DB, opts ...StoreOption) *Store {
	s := &Store{
		db:         db,
		maxRetries: defaultTxMaxRetries,
		logger:     logging.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Store) Repositories() txn.Repositories {
	return repositoriesFor(s.db, false)
}

func (s *Store) RunInTx(ctx context.Context, fn func(ctx context.Context, repos txn.Repositories) error) error {
	var lastErr error
	for attempt := 0; attempt <= s.maxRetries; attempt++ {
		if attempt > 0 {
			delay := txRetryBaseDelay * time.Duration(1<<(attempt-1))
			s.logger.WarnContext(ctx, "retrying serializable transaction",
				"attempt", attempt,
				"delay", delay.String(),
				"error", lastErr,
			)
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(delay):
			}
		}

		err := s.runOnce(ctx, fn)
		if err == nil {
			return nil
		}
		if !isRetryableTxError(err) {
			return err
		}
		lastErr = err
	}

	return crerr.Wrapf(lastErr, "transaction failed after %d retries", s.maxRetries)
}

func (s *Store) runOnce(ctx context.Context, fn func(ctx context.Context, repos txn.Repositories) error) (err error) {
	tx, err := s.db.BeginTxx(ctx, &sql.TxOptions{Isolation: sql.LevelSerializable})
	if err != nil {
		return crerr.Wrap(err, "begin tx")
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if err = fn(ctx, repositoriesFor(tx, true)); err != nil {
		return err
	}
	if err = tx.Commit(); err != nil {
		return crerr.Wrap(err, "commit tx")
	}
	return nil
}

func repositoriesFor(q sqlx.ExtContext, lock bool) txn.Repositories {
	return txn.Repositories{
		Leagues: &LeagueRepository{q: q, lock: lock},
		Members: &MemberRepository{q: q, lock: lock},
		Seasons: &SeasonRepository{q: q, lock: lock},
		Weeks:   &WeekRepository{q: q, lock: lock},
		Matches: &MatchRepository{q: q, lock: lock},
	}
}

// lockSuffix row-locks reads performed inside a transaction.
func lockSuffix(lock bool) string {
	if lock {
		return "FOR UPDATE"
	}
	return ""
}
