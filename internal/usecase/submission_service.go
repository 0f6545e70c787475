package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/riskibarqy/box-league/internal/domain/match"
	"github.com/riskibarqy/box-league/internal/domain/member"
	"github.com/riskibarqy/box-league/internal/domain/txn"
	"github.com/riskibarqy/box-league/internal/domain/week"
	"github.com/riskibarqy/box-league/internal/platform/logging"
)

type RatingParticipant struct {
	PlayerID         string `json:"player_id"`
	ExternalRatingID string `json:"external_rating_id"`
}

type RatingGame struct {
	Team1 int `json:"team1"`
	Team2 int `json:"team2"`
}

// RatingSubmission is one completed doubles match as pushed to the rating service.
type RatingSubmission struct {
	LeagueID   string              `json:"league_id"`
	SeasonID   string              `json:"season_id"`
	WeekNumber int                 `json:"week_number"`
	BoxNumber  int                 `json:"box_number"`
	MatchID    string              `json:"match_id"`
	Team1      []RatingParticipant `json:"team1"`
	Team2      []RatingParticipant `json:"team2"`
	Games      []RatingGame        `json:"games"`
	PlayedAt   time.Time           `json:"played_at"`
}

// RatingPublisher delivers match results to the external rating service.
type RatingPublisher interface {
	PublishMatch(ctx context.Context, submission RatingSubmission) error
}

type MatchSubmission struct {
	MatchID     string
	BoxNumber   int
	Submittable bool
	Blockers    []string
	Submission  RatingSubmission
}

type SubmitReport struct {
	Submitted []string
	Skipped   []MatchSubmission
	Failed    map[string]string
}

type SubmissionService struct {
	store     txn.Store
	publisher RatingPublisher
	logger    *logging.Logger
}

func NewSubmissionService(store txn.Store, publisher RatingPublisher, logger *logging.Logger) *SubmissionService {
	if logger == nil {
		logger = logging.Default()
	}
	return &SubmissionService{
		store:     store,
		publisher: publisher,
		logger:    logger,
	}
}

// ListSubmittable evaluates every completed match of the week for rating submission.
func (s *SubmissionService) ListSubmittable(ctx context.Context, ref WeekRef) ([]MatchSubmission, error) {
	ref, err := ref.normalize()
	if err != nil {
		return nil, err
	}
	repos := s.store.Repositories()
	scope, err := loadWeekScope(ctx, repos, ref)
	if err != nil {
		return nil, err
	}
	return s.evaluate(ctx, repos, scope.Week)
}

func (s *SubmissionService) evaluate(ctx context.Context, repos txn.Repositories, w week.Week) ([]MatchSubmission, error) {
	matches, err := repos.Matches.ListByWeek(ctx, w.SeasonID, w.Number)
	if err != nil {
		return nil, fmt.Errorf("list matches by week: %w", err)
	}
	members, err := repos.Members.ListByLeague(ctx, w.LeagueID)
	if err != nil {
		return nil, fmt.Errorf("list members by league: %w", err)
	}
	byID := make(map[string]member.Member, len(members))
	for _, m := range members {
		byID[m.PlayerID] = m
	}
	linked := func(playerID string) bool {
		m, ok := byID[playerID]
		return ok && m.RatingLinked()
	}

	out := make([]MatchSubmission, 0, len(matches))
	for _, m := range matches {
		if m.Status != match.StatusCompleted {
			continue
		}
		check := week.SubmissionEligibility(m.Participants(), w.Absences, w.Rules.RequireRatingLinkForSubmission, linked)
		blockers := check.Blockers
		for _, playerID := range check.EffectiveIDs {
			if byID[playerID].ExternalRatingID == "" {
				blockers = append(blockers, fmt.Sprintf("player %s has no external rating id", playerID))
			}
		}

		out = append(out, MatchSubmission{
			MatchID:     m.ID,
			BoxNumber:   m.BoxNumber,
			Submittable: len(blockers) == 0,
			Blockers:    blockers,
			Submission:  buildSubmission(m, byID),
		})
	}
	return out, nil
}

// SubmitWeek pushes every submittable match of a closing or finalized week.
// Failures are reported per match and do not stop the rest.
func (s *SubmissionService) SubmitWeek(ctx context.Context, ref WeekRef) (SubmitReport, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.SubmissionService.SubmitWeek", ref.spanAttributes()...)
	defer span.End()

	if s.publisher == nil {
		return SubmitReport{}, fmt.Errorf("%w: rating submission is not configured", ErrDependencyUnavailable)
	}
	ref, err := ref.normalize()
	if err != nil {
		return SubmitReport{}, err
	}
	repos := s.store.Repositories()
	scope, err := loadWeekScope(ctx, repos, ref)
	if err != nil {
		return SubmitReport{}, err
	}
	if err := organizerOnly(scope, ref.ActorID); err != nil {
		return SubmitReport{}, err
	}
	if scope.Week.State != week.StateClosing && scope.Week.State != week.StateFinalized {
		return SubmitReport{}, blocked("submit week", []string{fmt.Sprintf("week %d is %s, close it first", scope.Week.Number, scope.Week.State)})
	}

	items, err := s.evaluate(ctx, repos, scope.Week)
	if err != nil {
		return SubmitReport{}, err
	}

	report := SubmitReport{Failed: make(map[string]string)}
	for _, item := range items {
		if !item.Submittable {
			report.Skipped = append(report.Skipped, item)
			continue
		}
		if err := s.publisher.PublishMatch(ctx, item.Submission); err != nil {
			s.logger.WarnContext(ctx, "rating submission failed", "match_id", item.MatchID, "error", err)
			report.Failed[item.MatchID] = err.Error()
			continue
		}
		report.Submitted = append(report.Submitted, item.MatchID)
	}

	s.logger.InfoContext(ctx, "week submitted for rating",
		"season_id", ref.SeasonID, "week", ref.WeekNumber,
		"submitted", len(report.Submitted), "skipped", len(report.Skipped), "failed", len(report.Failed))
	return report, nil
}

func buildSubmission(m match.Match, members map[string]member.Member) RatingSubmission {
	team := func(ids []string) []RatingParticipant {
		out := make([]RatingParticipant, 0, len(ids))
		for _, playerID := range ids {
			out = append(out, RatingParticipant{PlayerID: playerID, ExternalRatingID: members[playerID].ExternalRatingID})
		}
		return out
	}
	games := make([]RatingGame, 0, len(m.Games))
	for _, g := range m.Games {
		games = append(games, RatingGame{Team1: g.Team1, Team2: g.Team2})
	}
	return RatingSubmission{
		LeagueID:   m.LeagueID,
		SeasonID:   m.SeasonID,
		WeekNumber: m.WeekNumber,
		BoxNumber:  m.BoxNumber,
		MatchID:    m.ID,
		Team1:      team(m.Team1),
		Team2:      team(m.Team2),
		Games:      games,
		PlayedAt:   m.UpdatedAt,
	}
}
