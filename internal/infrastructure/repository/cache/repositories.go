package cache

import (
	"context"
	"slices"
	"time"

	"github.com/riskibarqy/box-league/internal/domain/league"
	"github.com/riskibarqy/box-league/internal/domain/member"
	"github.com/riskibarqy/box-league/internal/domain/txn"
	basecache "github.com/riskibarqy/box-league/internal/platform/cache"
)

const leagueListKey = "all"

type leagueLookup struct {
	value  league.League
	exists bool
}

type caches struct {
	leagueLists *basecache.Store[[]league.League]
	leagues     *basecache.Store[leagueLookup]
	rosters     *basecache.Store[[]member.Member]
}

func (c *caches) flush() {
	c.leagueLists.Clear()
	c.leagues.Clear()
	c.rosters.Clear()
}

// Store caches league and roster reads made outside transactions. Any
// committed transaction drops every cached entry.
type Store struct {
	next   txn.Store
	caches *caches
}

// NewStore wraps next with read caches whose entries live for ttl.
// maxEntries bounds each cache separately.
func NewStore(next txn.Store, ttl time.Duration, maxEntries int) *Store {
	return &Store{
		next: next,
		caches: &caches{
			leagueLists: basecache.New[[]league.League](ttl, 1),
			leagues:     basecache.New[leagueLookup](ttl, maxEntries),
			rosters:     basecache.New[[]member.Member](ttl, maxEntries),
		},
	}
}

func (s *Store) Repositories() txn.Repositories {
	repos := s.next.Repositories()
	repos.Leagues = &LeagueRepository{next: repos.Leagues, caches: s.caches}
	repos.Members = &MemberRepository{next: repos.Members, caches: s.caches}
	return repos
}

func (s *Store) RunInTx(ctx context.Context, fn func(ctx context.Context, repos txn.Repositories) error) error {
	if err := s.next.RunInTx(ctx, fn); err != nil {
		return err
	}
	s.caches.flush()
	return nil
}

type LeagueRepository struct {
	next   league.Repository
	caches *caches
}

func (r *LeagueRepository) List(ctx context.Context) ([]league.League, error) {
	items, err := r.caches.leagueLists.GetOrLoad(ctx, leagueListKey, func(ctx context.Context) ([]league.League, error) {
		items, err := r.next.List(ctx)
		if err != nil {
			return nil, err
		}
		return cloneLeagues(items), nil
	})
	if err != nil {
		return nil, err
	}
	return cloneLeagues(items), nil
}

func (r *LeagueRepository) GetByID(ctx context.Context, leagueID string) (league.League, bool, error) {
	found, err := r.caches.leagues.GetOrLoad(ctx, leagueID, func(ctx context.Context) (leagueLookup, error) {
		item, exists, err := r.next.GetByID(ctx, leagueID)
		if err != nil {
			return leagueLookup{}, err
		}
		return leagueLookup{value: item.Clone(), exists: exists}, nil
	})
	if err != nil {
		return league.League{}, false, err
	}
	return found.value.Clone(), found.exists, nil
}

func (r *LeagueRepository) Save(ctx context.Context, l league.League) error {
	if err := r.next.Save(ctx, l); err != nil {
		return err
	}
	r.caches.leagueLists.Delete(leagueListKey)
	r.caches.leagues.Delete(l.ID)
	return nil
}

func cloneLeagues(items []league.League) []league.League {
	out := make([]league.League, 0, len(items))
	for _, l := range items {
		out = append(out, l.Clone())
	}
	return out
}

// MemberRepository caches league rosters. Single-member reads and counter
// updates always reach the underlying store.
type MemberRepository struct {
	next   member.Repository
	caches *caches
}

func (r *MemberRepository) ListByLeague(ctx context.Context, leagueID string) ([]member.Member, error) {
	items, err := r.caches.rosters.GetOrLoad(ctx, leagueID, func(ctx context.Context) ([]member.Member, error) {
		items, err := r.next.ListByLeague(ctx, leagueID)
		if err != nil {
			return nil, err
		}
		return slices.Clone(items), nil
	})
	if err != nil {
		return nil, err
	}
	return slices.Clone(items), nil
}

func (r *MemberRepository) Get(ctx context.Context, leagueID, playerID string) (member.Member, bool, error) {
	return r.next.Get(ctx, leagueID, playerID)
}

func (r *MemberRepository) Save(ctx context.Context, m member.Member) error {
	if err := r.next.Save(ctx, m); err != nil {
		return err
	}
	r.caches.rosters.Delete(m.LeagueID)
	return nil
}

func (r *MemberRepository) IncrementSubstitutesUsed(ctx context.Context, leagueID, playerID string, delta int) (int, error) {
	total, err := r.next.IncrementSubstitutesUsed(ctx, leagueID, playerID, delta)
	if err != nil {
		return 0, err
	}
	r.caches.rosters.Delete(leagueID)
	return total, nil
}
