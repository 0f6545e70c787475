package usecase

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/riskibarqy/box-league/internal/domain/eligibility"
	"github.com/riskibarqy/box-league/internal/domain/member"
	"github.com/riskibarqy/box-league/internal/domain/season"
	"github.com/riskibarqy/box-league/internal/domain/txn"
	"github.com/riskibarqy/box-league/internal/domain/week"
)

type JoinCheckInput struct {
	LeagueID  string
	Applicant eligibility.Applicant
}

type SubstituteCheckInput struct {
	WeekRef
	AbsentPlayerID string
	SubstituteID   string
}

type PlacementInput struct {
	WeekRef
	Rating *float64
}

// EligibilityService answers join, substitute and placement questions against
// the member directory and the current week.
type EligibilityService struct {
	store txn.Store
	now   func() time.Time
}

func NewEligibilityService(store txn.Store) *EligibilityService {
	return &EligibilityService{
		store: store,
		now:   time.Now,
	}
}

func (s *EligibilityService) CheckJoin(ctx context.Context, input JoinCheckInput) (eligibility.Result, error) {
	input.LeagueID = strings.TrimSpace(input.LeagueID)
	input.Applicant.PlayerID = strings.TrimSpace(input.Applicant.PlayerID)
	if input.LeagueID == "" || input.Applicant.PlayerID == "" {
		return eligibility.Result{}, fmt.Errorf("%w: league_id and player_id are required", ErrInvalidInput)
	}
	return checkJoin(ctx, s.store.Repositories(), input, s.now().UTC())
}

func checkJoin(ctx context.Context, repos txn.Repositories, input JoinCheckInput, now time.Time) (eligibility.Result, error) {
	l, err := loadLeague(ctx, repos, input.LeagueID)
	if err != nil {
		return eligibility.Result{}, err
	}
	existing, exists, err := repos.Members.Get(ctx, l.ID, input.Applicant.PlayerID)
	if err != nil {
		return eligibility.Result{}, fmt.Errorf("get member: %w", err)
	}

	result := eligibility.CheckJoin(l.Rules.Join, input.Applicant, exists && existing.Active(), now)
	if l.ActiveSeasonID == "" {
		return result, nil
	}
	sn, found, err := repos.Seasons.GetByID(ctx, l.ActiveSeasonID)
	if err != nil {
		return eligibility.Result{}, fmt.Errorf("get season: %w", err)
	}
	if !found || sn.State != season.StateActive {
		return result, nil
	}

	mid := eligibility.CheckMidSeasonJoin(l.Rules.Join, sn.Progress().PercentComplete)
	result.Blockers = append(result.Blockers, mid.Blockers...)
	result.Warnings = append(result.Warnings, mid.Warnings...)
	result.Eligible = len(result.Blockers) == 0
	return result, nil
}

func (s *EligibilityService) CheckSubstitute(ctx context.Context, input SubstituteCheckInput) (eligibility.Result, error) {
	ref, err := input.WeekRef.normalize()
	if err != nil {
		return eligibility.Result{}, err
	}
	repos := s.store.Repositories()
	scope, err := loadWeekScope(ctx, repos, ref)
	if err != nil {
		return eligibility.Result{}, err
	}
	result, _, err := checkSubstitute(ctx, repos, scope.Week, strings.TrimSpace(input.AbsentPlayerID), strings.TrimSpace(input.SubstituteID))
	if err != nil {
		return eligibility.Result{}, classify(err)
	}
	return result, nil
}

// Placement suggests the box a player with the given rating would join this week.
func (s *EligibilityService) Placement(ctx context.Context, input PlacementInput) (int, error) {
	ref, err := input.WeekRef.normalize()
	if err != nil {
		return 0, err
	}
	repos := s.store.Repositories()
	scope, err := loadWeekScope(ctx, repos, ref)
	if err != nil {
		return 0, err
	}
	ratings, err := boxRatings(ctx, repos, scope.Week)
	if err != nil {
		return 0, err
	}
	return eligibility.PlaceByRating(input.Rating, ratings), nil
}

// checkSubstitute evaluates a candidate for an absence of w and returns the
// absent player's membership so the caller can update the season counter.
func checkSubstitute(ctx context.Context, repos txn.Repositories, w week.Week, absentID, substituteID string) (eligibility.Result, member.Member, error) {
	if absentID == "" || substituteID == "" {
		return eligibility.Result{}, member.Member{}, fmt.Errorf("%w: absent player and substitute are required", ErrInvalidInput)
	}
	absence, ok := w.AbsenceFor(absentID)
	if !ok {
		return eligibility.Result{}, member.Member{}, fmt.Errorf("%w: %s", week.ErrAbsenceNotFound, absentID)
	}

	absent, _, err := repos.Members.Get(ctx, w.LeagueID, absentID)
	if err != nil {
		return eligibility.Result{}, member.Member{}, fmt.Errorf("get member: %w", err)
	}
	candidate := eligibility.SubstituteCandidate{
		PlayerID:        substituteID,
		AlreadyAssigned: w.Participates(substituteID),
	}
	sub, found, err := repos.Members.Get(ctx, w.LeagueID, substituteID)
	if err != nil {
		return eligibility.Result{}, member.Member{}, fmt.Errorf("get member: %w", err)
	}
	if found {
		candidate.Member = &sub
	}
	candidate.HomeBox, err = homeBox(ctx, repos, w, substituteID, candidate.Member)
	if err != nil {
		return eligibility.Result{}, member.Member{}, err
	}

	policy := w.Rules.Substitutes
	result := eligibility.CheckSubstitute(policy, candidate, absence.BoxNumber)
	if policy.MaxPerSeason > 0 && absent.SubstitutesUsed >= policy.MaxPerSeason {
		result.Blockers = append(result.Blockers, fmt.Sprintf("player %s already used %d of %d substitutes this season", absentID, absent.SubstitutesUsed, policy.MaxPerSeason))
		result.Eligible = false
	}
	return result, absent, nil
}

// homeBox is the candidate's box in the latest finalized week, or the box their
// rating places them in when they have not played this season.
func homeBox(ctx context.Context, repos txn.Repositories, w week.Week, playerID string, m *member.Member) (int, error) {
	prior, err := priorFinalized(ctx, repos, w.SeasonID, w.Number)
	if err != nil {
		return 0, err
	}
	for _, p := range slices.Backward(prior) {
		if box, ok := p.BoxOf(playerID); ok {
			return box, nil
		}
	}
	if m == nil {
		return 0, nil
	}
	ratings, err := boxRatings(ctx, repos, w)
	if err != nil {
		return 0, err
	}
	return eligibility.PlaceByRating(m.Rating, ratings), nil
}

func boxRatings(ctx context.Context, repos txn.Repositories, w week.Week) ([]eligibility.BoxRating, error) {
	members, err := repos.Members.ListByLeague(ctx, w.LeagueID)
	if err != nil {
		return nil, fmt.Errorf("list members by league: %w", err)
	}
	byID := make(map[string]member.Member, len(members))
	for _, m := range members {
		byID[m.PlayerID] = m
	}

	out := make([]eligibility.BoxRating, 0, len(w.Boxes))
	for _, b := range w.Boxes {
		boxMembers := make([]member.Member, 0, len(b.PlayerIDs))
		for _, playerID := range b.PlayerIDs {
			if m, ok := byID[playerID]; ok {
				boxMembers = append(boxMembers, m)
			}
		}
		out = append(out, eligibility.BoxRating{BoxNumber: b.BoxNumber, Average: eligibility.AverageRating(boxMembers)})
	}
	return out, nil
}
