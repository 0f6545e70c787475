package cache

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/riskibarqy/box-league/internal/domain/league"
	"github.com/riskibarqy/box-league/internal/domain/member"
	"github.com/riskibarqy/box-league/internal/domain/txn"
	"github.com/riskibarqy/box-league/internal/infrastructure/repository/memory"
)

type countingLeagues struct {
	league.Repository
	gets atomic.Int32
}

func (c *countingLeagues) GetByID(ctx context.Context, leagueID string) (league.League, bool, error) {
	c.gets.Add(1)
	return c.Repository.GetByID(ctx, leagueID)
}

type countingStore struct {
	txn.Store
	leagues *countingLeagues
}

func (s *countingStore) Repositories() txn.Repositories {
	repos := s.Store.Repositories()
	s.leagues.Repository = repos.Leagues
	repos.Leagues = s.leagues
	return repos
}

func TestLeagueReadsAreCachedUntilCommit(t *testing.T) {
	ctx := context.Background()
	inner := &countingStore{Store: memory.NewStore(memory.DemoSeed()), leagues: &countingLeagues{}}
	store := NewStore(inner, time.Minute, 100)

	for range 3 {
		l, ok, err := store.Repositories().Leagues.GetByID(ctx, memory.LeagueIDThursdayLadder)
		if err != nil || !ok {
			t.Fatalf("get league: ok=%v err=%v", ok, err)
		}
		if l.Name != "Thursday Night Ladder" {
			t.Fatalf("unexpected league name %q", l.Name)
		}
	}
	if got := inner.leagues.gets.Load(); got != 1 {
		t.Fatalf("expected one underlying read, got %d", got)
	}

	err := store.RunInTx(ctx, func(ctx context.Context, repos txn.Repositories) error {
		l, _, err := repos.Leagues.GetByID(ctx, memory.LeagueIDThursdayLadder)
		if err != nil {
			return err
		}
		l.Name = "Renamed Ladder"
		return repos.Leagues.Save(ctx, l)
	})
	if err != nil {
		t.Fatalf("run tx: %v", err)
	}

	l, _, err := store.Repositories().Leagues.GetByID(ctx, memory.LeagueIDThursdayLadder)
	if err != nil {
		t.Fatalf("get league after commit: %v", err)
	}
	if l.Name != "Renamed Ladder" {
		t.Fatalf("expected committed name after invalidation, got %q", l.Name)
	}
}

func TestMemberListInvalidatedOnSave(t *testing.T) {
	ctx := context.Background()
	store := NewStore(memory.NewStore(memory.DemoSeed()), time.Minute, 100)
	repos := store.Repositories()

	before, err := repos.Members.ListByLeague(ctx, memory.LeagueIDThursdayLadder)
	if err != nil {
		t.Fatalf("list members: %v", err)
	}

	err = repos.Members.Save(ctx, member.Member{
		LeagueID:    memory.LeagueIDThursdayLadder,
		PlayerID:    "player-14",
		DisplayName: "Player 14",
		Status:      member.StatusActive,
		JoinedAt:    time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC),
	})
	if err != nil {
		t.Fatalf("save member: %v", err)
	}

	after, err := repos.Members.ListByLeague(ctx, memory.LeagueIDThursdayLadder)
	if err != nil {
		t.Fatalf("list members after save: %v", err)
	}
	if len(after) != len(before)+1 {
		t.Fatalf("expected %d members after save, got %d", len(before)+1, len(after))
	}

	if _, err := repos.Members.IncrementSubstitutesUsed(ctx, memory.LeagueIDThursdayLadder, "player-14", 1); err != nil {
		t.Fatalf("increment substitutes: %v", err)
	}
	after, err = repos.Members.ListByLeague(ctx, memory.LeagueIDThursdayLadder)
	if err != nil {
		t.Fatalf("list members after increment: %v", err)
	}
	for _, m := range after {
		if m.PlayerID == "player-14" && m.SubstitutesUsed != 1 {
			t.Fatalf("expected refreshed counter, got %d", m.SubstitutesUsed)
		}
	}
}
