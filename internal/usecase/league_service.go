package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/riskibarqy/box-league/internal/domain/eligibility"
	"github.com/riskibarqy/box-league/internal/domain/league"
	"github.com/riskibarqy/box-league/internal/domain/member"
	"github.com/riskibarqy/box-league/internal/domain/txn"
	"github.com/riskibarqy/box-league/internal/platform/logging"
)

type UpdateRulesInput struct {
	ActorID          string
	LeagueID         string
	Rules            league.Rules
	ExpectedRevision int64
}

type UpdateVenueInput struct {
	ActorID          string
	LeagueID         string
	Venue            league.Venue
	ExpectedRevision int64
}

type JoinLeagueInput struct {
	LeagueID         string
	PlayerID         string
	DisplayName      string
	Rating           *float64
	ExternalRatingID string
	RatingConsent    bool
	DateOfBirth      *time.Time
}

type JoinLeagueResult struct {
	Member   member.Member
	Warnings []string
}

type LeagueService struct {
	store  txn.Store
	logger *logging.Logger
	now    func() time.Time
}

func NewLeagueService(store txn.Store, logger *logging.Logger) *LeagueService {
	if logger == nil {
		logger = logging.Default()
	}
	return &LeagueService{
		store:  store,
		logger: logger,
		now:    time.Now,
	}
}

func (s *LeagueService) ListLeagues(ctx context.Context) ([]league.League, error) {
	leagues, err := s.store.Repositories().Leagues.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list leagues: %w", err)
	}

	return leagues, nil
}

func (s *LeagueService) GetLeague(ctx context.Context, leagueID string) (league.League, error) {
	leagueID = strings.TrimSpace(leagueID)
	if leagueID == "" {
		return league.League{}, fmt.Errorf("%w: league id is required", ErrInvalidInput)
	}
	return loadLeague(ctx, s.store.Repositories(), leagueID)
}

func (s *LeagueService) ListMembers(ctx context.Context, leagueID string) ([]member.Member, error) {
	l, err := s.GetLeague(ctx, leagueID)
	if err != nil {
		return nil, err
	}
	members, err := s.store.Repositories().Members.ListByLeague(ctx, l.ID)
	if err != nil {
		return nil, fmt.Errorf("list members by league: %w", err)
	}
	return members, nil
}

// UpdateRules replaces the league's live settings. Weeks already created keep
// their frozen copy until an organizer refreshes them.
func (s *LeagueService) UpdateRules(ctx context.Context, input UpdateRulesInput) (league.League, error) {
	if err := input.Rules.Validate(); err != nil {
		return league.League{}, fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}
	return s.mutateLeague(ctx, input.ActorID, input.LeagueID, input.ExpectedRevision, func(l *league.League) {
		l.Rules = input.Rules.Clone()
	})
}

func (s *LeagueService) UpdateVenue(ctx context.Context, input UpdateVenueInput) (league.League, error) {
	if err := input.Venue.Validate(); err != nil {
		return league.League{}, fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}
	return s.mutateLeague(ctx, input.ActorID, input.LeagueID, input.ExpectedRevision, func(l *league.League) {
		l.Venue = input.Venue.Clone()
	})
}

func (s *LeagueService) mutateLeague(ctx context.Context, actorID, leagueID string, expectedRevision int64, apply func(l *league.League)) (league.League, error) {
	leagueID = strings.TrimSpace(leagueID)
	if leagueID == "" {
		return league.League{}, fmt.Errorf("%w: league id is required", ErrInvalidInput)
	}

	var out league.League
	err := s.store.RunInTx(ctx, func(ctx context.Context, repos txn.Repositories) error {
		l, err := loadLeague(ctx, repos, leagueID)
		if err != nil {
			return err
		}
		if err := requireOrganizer(l, actorID); err != nil {
			return err
		}
		if expectedRevision > 0 && l.Revision != expectedRevision {
			return fmt.Errorf("%w: league %s is at revision %d, caller expected %d", ErrConflict, l.ID, l.Revision, expectedRevision)
		}

		apply(&l)
		l.Revision++
		l.UpdatedAt = s.now().UTC()
		if err := repos.Leagues.Save(ctx, l); err != nil {
			return fmt.Errorf("save league: %w", err)
		}
		out = l
		return nil
	})
	if err != nil {
		return league.League{}, classify(err)
	}
	return out, nil
}

// JoinLeague adds or reactivates a membership after the join policy passes.
func (s *LeagueService) JoinLeague(ctx context.Context, input JoinLeagueInput) (JoinLeagueResult, error) {
	input.LeagueID = strings.TrimSpace(input.LeagueID)
	input.PlayerID = strings.TrimSpace(input.PlayerID)
	input.DisplayName = strings.TrimSpace(input.DisplayName)
	if input.LeagueID == "" || input.PlayerID == "" {
		return JoinLeagueResult{}, fmt.Errorf("%w: league id and player id are required", ErrInvalidInput)
	}

	var result JoinLeagueResult
	err := s.store.RunInTx(ctx, func(ctx context.Context, repos txn.Repositories) error {
		now := s.now().UTC()
		check, err := checkJoin(ctx, repos, JoinCheckInput{
			LeagueID: input.LeagueID,
			Applicant: eligibility.Applicant{
				PlayerID:         input.PlayerID,
				Rating:           input.Rating,
				ExternalRatingID: input.ExternalRatingID,
				RatingConsent:    input.RatingConsent,
				DateOfBirth:      input.DateOfBirth,
			},
		}, now)
		if err != nil {
			return err
		}
		if !check.Eligible {
			return blocked("join league", check.Blockers)
		}

		m, exists, err := repos.Members.Get(ctx, input.LeagueID, input.PlayerID)
		if err != nil {
			return fmt.Errorf("get member: %w", err)
		}
		if !exists {
			m = member.Member{LeagueID: input.LeagueID, PlayerID: input.PlayerID, JoinedAt: now}
		}
		m.Status = member.StatusActive
		if input.DisplayName != "" {
			m.DisplayName = input.DisplayName
		}
		if input.Rating != nil {
			rating := *input.Rating
			m.Rating = &rating
		}
		m.ExternalRatingID = strings.TrimSpace(input.ExternalRatingID)
		m.RatingConsent = input.RatingConsent
		m.DateOfBirth = input.DateOfBirth
		m.UpdatedAt = now
		if err := repos.Members.Save(ctx, m); err != nil {
			return fmt.Errorf("save member: %w", err)
		}

		result = JoinLeagueResult{Member: m, Warnings: check.Warnings}
		return nil
	})
	if err != nil {
		return JoinLeagueResult{}, classify(err)
	}

	s.logger.InfoContext(ctx, "player joined league", "league_id", input.LeagueID, "player_id", input.PlayerID, "warnings", len(result.Warnings))
	return result, nil
}
