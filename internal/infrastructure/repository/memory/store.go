package memory

import (
	"context"
	"slices"
	"sync"

	"github.com/riskibarqy/box-league/internal/domain/league"
	"github.com/riskibarqy/box-league/internal/domain/match"
	"github.com/riskibarqy/box-league/internal/domain/member"
	"github.com/riskibarqy/box-league/internal/domain/season"
	"github.com/riskibarqy/box-league/internal/domain/txn"
	"github.com/riskibarqy/box-league/internal/domain/week"
)

type data struct {
	leagues     map[string]league.League
	leagueOrder []string
	members     map[string]member.Member
	seasons     map[string]season.Season
	weeks       map[string]week.Week
	matches     map[string]match.Match
	matchOrder  []string
}

func newData() *data {
	return &data{
		leagues: make(map[string]league.League),
		members: make(map[string]member.Member),
		seasons: make(map[string]season.Season),
		weeks:   make(map[string]week.Week),
		matches: make(map[string]match.Match),
	}
}

func (d *data) clone() *data {
	out := &data{
		leagues:     make(map[string]league.League, len(d.leagues)),
		leagueOrder: slices.Clone(d.leagueOrder),
		members:     make(map[string]member.Member, len(d.members)),
		seasons:     make(map[string]season.Season, len(d.seasons)),
		weeks:       make(map[string]week.Week, len(d.weeks)),
		matches:     make(map[string]match.Match, len(d.matches)),
		matchOrder:  slices.Clone(d.matchOrder),
	}
	for k, v := range d.leagues {
		out.leagues[k] = v.Clone()
	}
	for k, v := range d.members {
		out.members[k] = v
	}
	for k, v := range d.seasons {
		out.seasons[k] = v.Clone()
	}
	for k, v := range d.weeks {
		out.weeks[k] = v.Clone()
	}
	for k, v := range d.matches {
		out.matches[k] = v.Clone()
	}
	return out
}

// view gives repositories access to either the committed data or a transaction copy.
type view interface {
	read(fn func(d *data))
	write(fn func(d *data) error) error
}

type committedView struct {
	store *Store
}

func (v committedView) read(fn func(d *data)) {
	v.store.mu.RLock()
	defer v.store.mu.RUnlock()
	fn(v.store.data)
}

// write serializes with transactions so a commit never discards it.
func (v committedView) write(fn func(d *data) error) error {
	v.store.txMu.Lock()
	defer v.store.txMu.Unlock()

	v.store.mu.Lock()
	defer v.store.mu.Unlock()
	return fn(v.store.data)
}

type txView struct {
	data *data
}

func (v txView) read(fn func(d *data)) {
	fn(v.data)
}

func (v txView) write(fn func(d *data) error) error {
	return fn(v.data)
}

// Store is a copy-on-write in-process implementation of txn.Store.
// Transactions run one at a time against a private copy that replaces the
// committed data only when fn succeeds.
type Store struct {
	txMu sync.Mutex
	mu   sync.RWMutex
	data *data
}

type Seed struct {
	Leagues []league.League
	Members []member.Member
}

func NewStore(seed Seed) *Store {
	d := newData()
	for _, l := range seed.Leagues {
		d.leagues[l.ID] = l.Clone()
		d.leagueOrder = append(d.leagueOrder, l.ID)
	}
	for _, m := range seed.Members {
		d.members[memberKey(m.LeagueID, m.PlayerID)] = m
	}
	return &Store{data: d}
}

func (s *Store) Repositories() txn.Repositories {
	return repositoriesFor(committedView{store: s})
}

func (s *Store) RunInTx(ctx context.Context, fn func(ctx context.Context, repos txn.Repositories) error) error {
	s.txMu.Lock()
	defer s.txMu.Unlock()

	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.RLock()
	working := s.data.clone()
	s.mu.RUnlock()

	if err := fn(ctx, repositoriesFor(txView{data: working})); err != nil {
		return err
	}

	s.mu.Lock()
	s.data = working
	s.mu.Unlock()
	return nil
}

func repositoriesFor(v view) txn.Repositories {
	return txn.Repositories{
		Leagues: &LeagueRepository{v: v},
		Members: &MemberRepository{v: v},
		Seasons: &SeasonRepository{v: v},
		Weeks:   &WeekRepository{v: v},
		Matches: &MatchRepository{v: v},
	}
}
