package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/riskibarqy/box-league/internal/domain/league"
	"github.com/riskibarqy/box-league/internal/domain/member"
	"github.com/riskibarqy/box-league/internal/domain/txn"
	leaguemock "github.com/riskibarqy/box-league/internal/mocks/domain/league"
	membermock "github.com/riskibarqy/box-league/internal/mocks/domain/member"
	"github.com/riskibarqy/box-league/internal/platform/logging"
	"github.com/stretchr/testify/mock"
)

// repoStore runs every unit of work directly against the given repositories.
type repoStore struct {
	repos txn.Repositories
}

func (s repoStore) Repositories() txn.Repositories { return s.repos }

func (s repoStore) RunInTx(ctx context.Context, fn func(ctx context.Context, repos txn.Repositories) error) error {
	return fn(ctx, s.repos)
}

func TestLeagueService_ListMembers_SuccessUsingMockery(t *testing.T) {
	t.Parallel()

	ctx := context.WithValue(context.Background(), "trace_id", "trace-456")
	leagueRepo := leaguemock.NewRepository(t)
	memberRepo := membermock.NewRepository(t)

	service := NewLeagueService(repoStore{repos: txn.Repositories{Leagues: leagueRepo, Members: memberRepo}}, logging.NewNop())
	leagueID := "tuesday-ladder"
	expected := []member.Member{
		{LeagueID: leagueID, PlayerID: "p-1", Status: member.StatusActive},
		{LeagueID: leagueID, PlayerID: "p-2", Status: member.StatusInactive},
	}

	leagueRepo.
		On("GetByID", mock.MatchedBy(func(v context.Context) bool { return v == ctx }), leagueID).
		Return(league.League{ID: leagueID}, true, nil).
		Once()
	memberRepo.
		On("ListByLeague", mock.MatchedBy(func(v context.Context) bool { return v == ctx }), leagueID).
		Return(expected, nil).
		Once()

	got, err := service.ListMembers(ctx, leagueID)
	if err != nil {
		t.Fatalf("list members: %v", err)
	}
	if len(got) != len(expected) {
		t.Fatalf("unexpected member count: got=%d want=%d", len(got), len(expected))
	}
	if got[1].PlayerID != "p-2" {
		t.Fatalf("unexpected player id: got=%s", got[1].PlayerID)
	}
}

func TestLeagueService_ListMembers_LeagueNotFoundUsingMockery(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	leagueRepo := leaguemock.NewRepository(t)
	memberRepo := membermock.NewRepository(t)

	service := NewLeagueService(repoStore{repos: txn.Repositories{Leagues: leagueRepo, Members: memberRepo}}, logging.NewNop())

	leagueRepo.
		On("GetByID", mock.Anything, "missing-league").
		Return(league.League{}, false, nil).
		Once()

	_, err := service.ListMembers(ctx, "missing-league")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestLeagueService_JoinLeague_SaveFailureUsingMockery(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	leagueRepo := leaguemock.NewRepository(t)
	memberRepo := membermock.NewRepository(t)

	service := NewLeagueService(repoStore{repos: txn.Repositories{Leagues: leagueRepo, Members: memberRepo}}, logging.NewNop())
	service.now = func() time.Time { return testNow }
	leagueID := "tuesday-ladder"

	leagueRepo.
		On("GetByID", mock.Anything, leagueID).
		Return(league.League{ID: leagueID, Rules: league.DefaultRules()}, true, nil).
		Once()
	memberRepo.
		On("Get", mock.Anything, leagueID, "p-9").
		Return(member.Member{}, false, nil).
		Twice()
	memberRepo.
		On("Save", mock.Anything, mock.MatchedBy(func(m member.Member) bool {
			return m.PlayerID == "p-9" && m.Active() && m.JoinedAt.Equal(testNow)
		})).
		Return(errors.New("disk full")).
		Once()

	_, err := service.JoinLeague(ctx, JoinLeagueInput{LeagueID: leagueID, PlayerID: "p-9"})
	if err == nil || err.Error() != "save member: disk full" {
		t.Fatalf("expected wrapped save error, got %v", err)
	}
}

func TestLeagueService_UpdateRules_BumpsRevisionUsingMockery(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	leagueRepo := leaguemock.NewRepository(t)

	service := NewLeagueService(repoStore{repos: txn.Repositories{Leagues: leagueRepo}}, logging.NewNop())
	service.now = func() time.Time { return testNow }
	current := league.League{ID: "tuesday-ladder", OrganizerIDs: []string{"org-1"}, Rules: league.DefaultRules(), Revision: 4}

	rules := league.DefaultRules()
	rules.PromotionCount = 2
	rules.RelegationCount = 2

	leagueRepo.
		On("GetByID", mock.Anything, current.ID).
		Return(current, true, nil).
		Twice()
	leagueRepo.
		On("Save", mock.Anything, mock.MatchedBy(func(l league.League) bool {
			return l.Revision == 5 && l.Rules.PromotionCount == 2 && l.UpdatedAt.Equal(testNow)
		})).
		Return(nil).
		Once()

	got, err := service.UpdateRules(ctx, UpdateRulesInput{ActorID: "org-1", LeagueID: current.ID, Rules: rules, ExpectedRevision: 4})
	if err != nil {
		t.Fatalf("update rules: %v", err)
	}
	if got.Revision != 5 {
		t.Fatalf("unexpected revision: %d", got.Revision)
	}

	_, err = service.UpdateRules(ctx, UpdateRulesInput{ActorID: "player-1", LeagueID: current.ID, Rules: rules})
	if !errors.Is(err, ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}
}
