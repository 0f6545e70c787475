package usecase

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/riskibarqy/box-league/internal/domain/league"
	"github.com/riskibarqy/box-league/internal/domain/match"
	"github.com/riskibarqy/box-league/internal/domain/promotion"
	"github.com/riskibarqy/box-league/internal/domain/season"
	"github.com/riskibarqy/box-league/internal/domain/standing"
	"github.com/riskibarqy/box-league/internal/domain/txn"
	"github.com/riskibarqy/box-league/internal/domain/week"
	"github.com/riskibarqy/box-league/internal/platform/id"
	"github.com/riskibarqy/box-league/internal/platform/logging"
	"github.com/riskibarqy/box-league/internal/platform/resilience"
)

type UpdateBoxAssignmentsInput struct {
	WeekRef
	Boxes []week.BoxAssignment
}

type UpdateCourtAssignmentsInput struct {
	WeekRef
	Courts []week.CourtAssignment
}

type SetBoxFrozenInput struct {
	WeekRef
	BoxNumber int
	Frozen    bool
}

type ActivateResult struct {
	Week           week.Week
	Matches        []match.Match
	AlreadyActive  bool
	CreatedMatches int
}

type FinalizeResult struct {
	Week             week.Week
	NextWeek         *week.Week
	Repair           RepairReport
	AlreadyFinalized bool
}

type RefreshResult struct {
	Week   week.Week
	Repair RepairReport
}

type RebalanceAdvice struct {
	Issues []promotion.BalanceIssue
	Moves  []promotion.SuggestedMove
}

type WeekService struct {
	store       txn.Store
	idGen       id.Generator
	logger      *logging.Logger
	activations resilience.Group[ActivateResult]
	now         func() time.Time
}

func NewWeekService(store txn.Store, idGen id.Generator, logger *logging.Logger) *WeekService {
	if logger == nil {
		logger = logging.Default()
	}
	return &WeekService{
		store:  store,
		idGen:  idGen,
		logger: logger,
		now:    time.Now,
	}
}

func (s *WeekService) GetWeek(ctx context.Context, leagueID, seasonID string, number int) (week.Week, error) {
	ref, err := WeekRef{LeagueID: leagueID, SeasonID: seasonID, WeekNumber: number}.normalize()
	if err != nil {
		return week.Week{}, err
	}
	scope, err := loadWeekScope(ctx, s.store.Repositories(), ref)
	if err != nil {
		return week.Week{}, err
	}
	return scope.Week, nil
}

func (s *WeekService) ListWeeks(ctx context.Context, leagueID, seasonID string) ([]week.Week, error) {
	leagueID = strings.TrimSpace(leagueID)
	seasonID = strings.TrimSpace(seasonID)
	if leagueID == "" || seasonID == "" {
		return nil, fmt.Errorf("%w: league_id and season_id are required", ErrInvalidInput)
	}

	repos := s.store.Repositories()
	if _, err := loadSeason(ctx, repos, leagueID, seasonID); err != nil {
		return nil, err
	}
	items, err := repos.Weeks.ListBySeason(ctx, seasonID)
	if err != nil {
		return nil, fmt.Errorf("list weeks by season: %w", err)
	}
	return items, nil
}

func (s *WeekService) ListMatches(ctx context.Context, leagueID, seasonID string, number int) ([]match.Match, error) {
	w, err := s.GetWeek(ctx, leagueID, seasonID, number)
	if err != nil {
		return nil, err
	}
	items, err := s.store.Repositories().Matches.ListByWeek(ctx, w.SeasonID, w.Number)
	if err != nil {
		return nil, fmt.Errorf("list matches by week: %w", err)
	}
	return items, nil
}

func (s *WeekService) UpdateBoxAssignments(ctx context.Context, input UpdateBoxAssignmentsInput) (week.Week, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.WeekService.UpdateBoxAssignments", input.WeekRef.spanAttributes()...)
	defer span.End()

	return mutateWeek(ctx, s.store, input.WeekRef, organizerOnly, func(_ context.Context, _ txn.Repositories, scope *weekScope) error {
		return scope.Week.SetBoxes(input.Boxes, s.now().UTC(), input.ActorID)
	})
}

func (s *WeekService) UpdateCourtAssignments(ctx context.Context, input UpdateCourtAssignmentsInput) (week.Week, error) {
	return mutateWeek(ctx, s.store, input.WeekRef, organizerOnly, func(_ context.Context, _ txn.Repositories, scope *weekScope) error {
		if err := checkVenueSlots(scope.League.Venue, input.Courts); err != nil {
			return err
		}
		return scope.Week.SetCourts(input.Courts, s.now().UTC(), input.ActorID)
	})
}

// AutoAssignCourts spreads the draft's boxes over the league venue.
func (s *WeekService) AutoAssignCourts(ctx context.Context, ref WeekRef) (week.Week, error) {
	return mutateWeek(ctx, s.store, ref, organizerOnly, func(_ context.Context, _ txn.Repositories, scope *weekScope) error {
		courts, err := venueCourts(scope.Week.BoxNumbers(), scope.League.Venue)
		if err != nil {
			return err
		}
		return scope.Week.SetCourts(courts, s.now().UTC(), ref.ActorID)
	})
}

// RefreshRulesSnapshot copies the league's current rules onto a draft week.
func (s *WeekService) RefreshRulesSnapshot(ctx context.Context, ref WeekRef) (week.Week, error) {
	return mutateWeek(ctx, s.store, ref, organizerOnly, func(_ context.Context, _ txn.Repositories, scope *weekScope) error {
		return scope.Week.RefreshRules(scope.League.Rules, s.now().UTC(), ref.ActorID)
	})
}

func (s *WeekService) SetBoxFrozen(ctx context.Context, input SetBoxFrozenInput) (week.Week, error) {
	return mutateWeek(ctx, s.store, input.WeekRef, organizerOnly, func(_ context.Context, _ txn.Repositories, scope *weekScope) error {
		return scope.Week.SetBoxFrozen(input.BoxNumber, input.Frozen, s.now().UTC(), input.ActorID)
	})
}

// Activate generates the week's matches and flips it to active in one
// transaction. Concurrent calls for the same week share one attempt, and a
// week that is already active is returned unchanged.
func (s *WeekService) Activate(ctx context.Context, ref WeekRef) (ActivateResult, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.WeekService.Activate", ref.spanAttributes()...)
	defer span.End()

	ref, err := ref.normalize()
	if err != nil {
		return ActivateResult{}, err
	}

	result, shared, err := s.activations.Do(ref.key(), func() (ActivateResult, error) {
		return s.activate(ctx, ref)
	})
	if err != nil {
		return ActivateResult{}, err
	}
	if shared {
		s.logger.WarnContext(ctx, "week activation shared with a concurrent call", "season_id", ref.SeasonID, "week", ref.WeekNumber)
	}
	return result, nil
}

func (s *WeekService) activate(ctx context.Context, ref WeekRef) (ActivateResult, error) {
	var result ActivateResult
	err := s.store.RunInTx(ctx, func(ctx context.Context, repos txn.Repositories) error {
		scope, err := loadWeekScope(ctx, repos, ref)
		if err != nil {
			return err
		}
		if err := organizerOnly(scope, ref.ActorID); err != nil {
			return err
		}

		w := scope.Week
		if w.State == week.StateActive {
			existing, err := repos.Matches.ListByWeek(ctx, w.SeasonID, w.Number)
			if err != nil {
				return fmt.Errorf("list matches by week: %w", err)
			}
			result = ActivateResult{Week: w, Matches: existing, AlreadyActive: true}
			return nil
		}
		if w.State != week.StateDraft {
			return fmt.Errorf("%w: week %d is %s", week.ErrInvalidState, w.Number, w.State)
		}
		if scope.Season.State != season.StateActive {
			return blocked("activate week", []string{fmt.Sprintf("season %s is %s, it must be active", scope.Season.Name, scope.Season.State)})
		}
		if entry, ok := scope.Season.Entry(w.Number); !ok || entry.Status == season.WeekCancelled || entry.Status == season.WeekCompleted {
			status := "missing from the calendar"
			if ok {
				status = string(entry.Status)
			}
			return blocked("activate week", []string{fmt.Sprintf("week %d is %s", w.Number, status)})
		}
		if ref.ExpectedRevision > 0 && ref.ExpectedRevision != w.Revision {
			return fmt.Errorf("%w: week %d is at revision %d, caller expected %d", week.ErrRevisionConflict, w.Number, w.Revision, ref.ExpectedRevision)
		}

		if len(w.MatchIDs) > 0 {
			return fmt.Errorf("%w: draft week %d already references %d matches", ErrIntegrity, w.Number, len(w.MatchIDs))
		}
		existing, err := repos.Matches.ListByWeek(ctx, w.SeasonID, w.Number)
		if err != nil {
			return fmt.Errorf("list matches by week: %w", err)
		}
		if len(existing) > 0 {
			return fmt.Errorf("%w: draft week %d already has %d stored matches", ErrIntegrity, w.Number, len(existing))
		}
		if blockers := w.CapacityBlockers(); len(blockers) > 0 {
			return blocked("activate week", blockers)
		}

		readRevision := w.Revision
		now := s.now().UTC()
		if len(w.Courts) == 0 && scope.League.Venue.Capacity() > 0 {
			courts, err := venueCourts(w.BoxNumbers(), scope.League.Venue)
			if err != nil {
				return err
			}
			if err := w.SetCourts(courts, now, ref.ActorID); err != nil {
				return err
			}
		}

		lineups := w.ResolveLineups()
		if err := week.ValidateLineups(lineups); err != nil {
			return err
		}
		matches, err := s.generateMatches(w, lineups, scope.League.Venue, now)
		if err != nil {
			return err
		}
		if err := repos.Matches.CreateMany(ctx, matches); err != nil {
			return fmt.Errorf("create matches: %w", err)
		}
		if err := w.MarkActive(lineups, matches, now, ref.ActorID); err != nil {
			return err
		}
		if err := repos.Weeks.Update(ctx, w, readRevision); err != nil {
			return fmt.Errorf("update week: %w", err)
		}

		sn := scope.Season
		if err := sn.MarkWeekActive(w.Number, now); err != nil {
			return err
		}
		if err := repos.Seasons.Update(ctx, sn); err != nil {
			return fmt.Errorf("update season: %w", err)
		}

		result = ActivateResult{Week: w, Matches: matches, CreatedMatches: len(matches)}
		return nil
	})
	if err != nil {
		return ActivateResult{}, classify(err)
	}

	if result.AlreadyActive {
		s.logger.WarnContext(ctx, "week already active, returning existing matches",
			"season_id", ref.SeasonID, "week", ref.WeekNumber, "matches", len(result.Matches))
		return result, nil
	}
	s.logger.InfoContext(ctx, "week activated",
		"season_id", ref.SeasonID, "week", ref.WeekNumber, "boxes", len(result.Week.Boxes), "matches", result.CreatedMatches)
	return result, nil
}

func (s *WeekService) generateMatches(w week.Week, lineups []week.BoxAssignment, venue league.Venue, now time.Time) ([]match.Match, error) {
	sessions := make(map[string]league.Session, len(venue.Sessions))
	for _, session := range venue.Sessions {
		sessions[session.ID] = session
	}

	var out []match.Match
	for _, b := range lineups {
		schedule := match.BoxSchedule{
			LeagueID:    w.LeagueID,
			SeasonID:    w.SeasonID,
			WeekNumber:  w.Number,
			BoxNumber:   b.BoxNumber,
			Lineup:      b.LineupIDs,
			ScheduledAt: w.ScheduledDate,
		}
		for _, c := range w.Courts {
			if c.BoxNumber != b.BoxNumber {
				continue
			}
			schedule.CourtID = c.CourtID
			schedule.SessionID = c.SessionID
			if session, ok := sessions[c.SessionID]; ok {
				schedule.ScheduledAt = sessionStart(w.ScheduledDate, session.StartTime)
			}
		}

		matches, err := match.Generate(schedule, s.idGen.NewID, now)
		if err != nil {
			return nil, err
		}
		out = append(out, matches...)
	}
	return out, nil
}

// Deactivate returns an active week to draft and deletes its generated matches.
func (s *WeekService) Deactivate(ctx context.Context, ref WeekRef) (week.Week, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.WeekService.Deactivate", ref.spanAttributes()...)
	defer span.End()

	var deleted int
	out, err := mutateWeek(ctx, s.store, ref, organizerOnly, func(ctx context.Context, repos txn.Repositories, scope *weekScope) error {
		now := s.now().UTC()
		if err := scope.Week.Deactivate(now, ref.ActorID); err != nil {
			return err
		}
		n, err := repos.Matches.DeleteByWeek(ctx, scope.Week.SeasonID, scope.Week.Number)
		if err != nil {
			return fmt.Errorf("delete matches by week: %w", err)
		}
		deleted = n

		sn := scope.Season
		if err := sn.ReopenWeek(scope.Week.Number, now); err != nil {
			return err
		}
		if err := repos.Seasons.Update(ctx, sn); err != nil {
			return fmt.Errorf("update season: %w", err)
		}
		return nil
	})
	if err != nil {
		return week.Week{}, err
	}

	s.logger.InfoContext(ctx, "week deactivated", "season_id", out.SeasonID, "week", out.Number, "deleted_matches", deleted)
	return out, nil
}

func (s *WeekService) Close(ctx context.Context, ref WeekRef) (week.Week, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.WeekService.Close", ref.spanAttributes()...)
	defer span.End()

	out, err := mutateWeek(ctx, s.store, ref, organizerOnly, func(ctx context.Context, repos txn.Repositories, scope *weekScope) error {
		matches, err := repos.Matches.ListByWeek(ctx, scope.Week.SeasonID, scope.Week.Number)
		if err != nil {
			return fmt.Errorf("list matches by week: %w", err)
		}
		return scope.Week.Close(matches, s.now().UTC(), ref.ActorID)
	})
	if err != nil {
		return week.Week{}, err
	}

	if out.Counters.PendingVerification > 0 || out.Counters.Disputed > 0 {
		s.logger.WarnContext(ctx, "week closed with unresolved matches",
			"season_id", out.SeasonID, "week", out.Number,
			"pending_verification", out.Counters.PendingVerification, "disputed", out.Counters.Disputed)
	}
	return out, nil
}

// Finalize ranks the closing week, stores movements, completes the week on the
// season calendar and creates the next week's draft. Calling it again on a
// finalized week only makes sure the next draft exists.
func (s *WeekService) Finalize(ctx context.Context, ref WeekRef) (FinalizeResult, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.WeekService.Finalize", ref.spanAttributes()...)
	defer span.End()

	ref, err := ref.normalize()
	if err != nil {
		return FinalizeResult{}, err
	}

	var result FinalizeResult
	err = s.store.RunInTx(ctx, func(ctx context.Context, repos txn.Repositories) error {
		result = FinalizeResult{}
		scope, err := loadWeekScope(ctx, repos, ref)
		if err != nil {
			return err
		}
		if err := organizerOnly(scope, ref.ActorID); err != nil {
			return err
		}

		now := s.now().UTC()
		w := scope.Week
		sn := scope.Season
		if w.State == week.StateFinalized {
			result.AlreadyFinalized = true
			result.Week = w
			next, err := s.ensureNextDraft(ctx, repos, scope.League, sn, w, w.Movements, now, ref.ActorID)
			if err != nil {
				return err
			}
			result.NextWeek = next
			return nil
		}
		if ref.ExpectedRevision > 0 && ref.ExpectedRevision != w.Revision {
			return fmt.Errorf("%w: week %d is at revision %d, caller expected %d", week.ErrRevisionConflict, w.Number, w.Revision, ref.ExpectedRevision)
		}

		matches, err := repos.Matches.ListByWeek(ctx, w.SeasonID, w.Number)
		if err != nil {
			return fmt.Errorf("list matches by week: %w", err)
		}
		if blockers := w.FinalizeBlockers(match.Count(matches)); len(blockers) > 0 {
			return blocked("finalize week", blockers)
		}

		prior, err := priorFinalized(ctx, repos, w.SeasonID, w.Number)
		if err != nil {
			return err
		}
		members, err := repos.Members.ListByLeague(ctx, w.LeagueID)
		if err != nil {
			return fmt.Errorf("list members by league: %w", err)
		}

		snapshot := standing.Compute(w, matches, standing.OptionsFromRules(w.Rules, historyRows(prior), now))
		movements, nextBoxes, report, err := nextRoster(ctx, s.logger, w, snapshot, promotion.Params{
			PromotionCount:  w.Rules.PromotionCount,
			RelegationCount: w.Rules.RelegationCount,
		}, members)
		if err != nil {
			return err
		}
		result.Repair = report

		readRevision := w.Revision
		if err := w.Finalize(matches, snapshot, movements, now, ref.ActorID); err != nil {
			return err
		}
		if err := repos.Weeks.Update(ctx, w, readRevision); err != nil {
			return fmt.Errorf("update week: %w", err)
		}
		result.Week = w

		if err := sn.MarkWeekCompleted(w.Number, now); err != nil {
			return err
		}
		if err := repos.Seasons.Update(ctx, sn); err != nil {
			return fmt.Errorf("update season: %w", err)
		}

		next, err := s.createNextDraft(ctx, repos, scope.League, sn, w, nextBoxes, now, ref.ActorID)
		if err != nil {
			return err
		}
		result.NextWeek = next
		return nil
	})
	if err != nil {
		return FinalizeResult{}, classify(err)
	}

	if result.AlreadyFinalized {
		s.logger.WarnContext(ctx, "week already finalized", "season_id", ref.SeasonID, "week", ref.WeekNumber)
		return result, nil
	}
	attrs := []any{"season_id", ref.SeasonID, "week", ref.WeekNumber, "movements", len(result.Week.Movements)}
	if result.NextWeek != nil {
		attrs = append(attrs, "next_week", result.NextWeek.Number)
	}
	s.logger.InfoContext(ctx, "week finalized", attrs...)
	return result, nil
}

// ensureNextDraft rebuilds the next week from stored movements when a retried
// finalization finds it missing.
func (s *WeekService) ensureNextDraft(
	ctx context.Context,
	repos txn.Repositories,
	l league.League,
	sn season.Season,
	w week.Week,
	movements []week.PlayerMovement,
	now time.Time,
	actor string,
) (*week.Week, error) {
	entry, ok := sn.NextWeek(w.Number)
	if !ok {
		return nil, nil
	}
	existing, exists, err := repos.Weeks.Get(ctx, sn.ID, entry.WeekNumber)
	if err != nil {
		return nil, fmt.Errorf("get week: %w", err)
	}
	if exists {
		return &existing, nil
	}

	s.logger.WarnContext(ctx, "finalized week is missing its next draft, recreating",
		"season_id", sn.ID, "week", w.Number, "next_week", entry.WeekNumber)
	members, err := repos.Members.ListByLeague(ctx, l.ID)
	if err != nil {
		return nil, fmt.Errorf("list members by league: %w", err)
	}
	boxes, _ := repairRoster(ctx, s.logger, w, promotion.BuildNextAssignments(movements), members)
	balanced, _, issues := promotion.Rebalance(boxes)
	if len(issues) > 0 {
		return nil, blocked("recreate next week", []string{fmt.Sprintf("stored movements of week %d do not form legal boxes", w.Number)})
	}
	return s.createNextDraft(ctx, repos, l, sn, w, balanced, now, actor)
}

func (s *WeekService) createNextDraft(
	ctx context.Context,
	repos txn.Repositories,
	l league.League,
	sn season.Season,
	w week.Week,
	boxes []week.BoxAssignment,
	now time.Time,
	actor string,
) (*week.Week, error) {
	entry, ok := sn.NextWeek(w.Number)
	if !ok {
		return nil, nil
	}
	existing, exists, err := repos.Weeks.Get(ctx, sn.ID, entry.WeekNumber)
	if err != nil {
		return nil, fmt.Errorf("get week: %w", err)
	}
	if exists {
		s.logger.WarnContext(ctx, "next week draft already exists", "season_id", sn.ID, "week", entry.WeekNumber)
		return &existing, nil
	}

	next, err := week.NewDraft(l.ID, sn.ID, entry.WeekNumber, entry.EffectiveDate(), l.Rules, boxes, now, actor)
	if err != nil {
		return nil, err
	}
	if l.Venue.Capacity() > 0 {
		courts, err := venueCourts(next.BoxNumbers(), l.Venue)
		if err != nil {
			s.logger.WarnContext(ctx, "next week courts left unassigned", "season_id", sn.ID, "week", next.Number, "error", err)
		} else {
			next.Courts = courts
		}
	}
	if err := repos.Weeks.Create(ctx, next); err != nil {
		return nil, fmt.Errorf("create week: %w", err)
	}
	return &next, nil
}

// RecalculateStandings previews standings of an open week with the league's current settings.
func (s *WeekService) RecalculateStandings(ctx context.Context, ref WeekRef) (week.Week, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.WeekService.RecalculateStandings", ref.spanAttributes()...)
	defer span.End()

	return mutateWeek(ctx, s.store, ref, organizerOnly, func(ctx context.Context, repos txn.Repositories, scope *weekScope) error {
		return s.recalculate(ctx, repos, scope, ref.ActorID)
	})
}

func (s *WeekService) recalculate(ctx context.Context, repos txn.Repositories, scope *weekScope, actor string) error {
	w := &scope.Week
	if w.State == week.StateFinalized {
		return fmt.Errorf("%w: week %d is finalized", week.ErrInvalidState, w.Number)
	}
	matches, err := repos.Matches.ListByWeek(ctx, w.SeasonID, w.Number)
	if err != nil {
		return fmt.Errorf("list matches by week: %w", err)
	}
	prior, err := priorFinalized(ctx, repos, w.SeasonID, w.Number)
	if err != nil {
		return err
	}

	now := s.now().UTC()
	snapshot := standing.Compute(*w, matches, standing.OptionsFromRules(scope.League.Rules, historyRows(prior), now))
	return w.SetStandings(snapshot, matches, now, actor)
}

// RefreshDraftAssignments rebuilds a draft's boxes from the previous finalized
// week using the league's current promotion settings.
func (s *WeekService) RefreshDraftAssignments(ctx context.Context, ref WeekRef) (RefreshResult, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.WeekService.RefreshDraftAssignments", ref.spanAttributes()...)
	defer span.End()

	var report RepairReport
	out, err := mutateWeek(ctx, s.store, ref, organizerOnly, func(ctx context.Context, repos txn.Repositories, scope *weekScope) error {
		report = RepairReport{}
		w := &scope.Week
		if w.State != week.StateDraft {
			return fmt.Errorf("%w: week %d is %s", week.ErrInvalidState, w.Number, w.State)
		}

		prior, err := priorFinalized(ctx, repos, w.SeasonID, w.Number)
		if err != nil {
			return err
		}
		if len(prior) == 0 {
			return blocked("refresh draft assignments", []string{fmt.Sprintf("no finalized week precedes week %d", w.Number)})
		}
		src := prior[len(prior)-1]

		matches, err := repos.Matches.ListByWeek(ctx, src.SeasonID, src.Number)
		if err != nil {
			return fmt.Errorf("list matches by week: %w", err)
		}
		members, err := repos.Members.ListByLeague(ctx, w.LeagueID)
		if err != nil {
			return fmt.Errorf("list members by league: %w", err)
		}

		now := s.now().UTC()
		rules := scope.League.Rules
		snapshot := standing.Compute(src, matches, standing.OptionsFromRules(rules, historyRows(prior[:len(prior)-1]), now))
		_, boxes, repaired, err := nextRoster(ctx, s.logger, src, snapshot, promotion.Params{
			PromotionCount:  rules.PromotionCount,
			RelegationCount: rules.RelegationCount,
		}, members)
		if err != nil {
			return err
		}
		report = repaired

		if err := w.SetBoxes(boxes, now, ref.ActorID); err != nil {
			return err
		}
		if scope.League.Venue.Capacity() > 0 && len(w.Courts) < len(w.Boxes) {
			if courts, err := venueCourts(w.BoxNumbers(), scope.League.Venue); err == nil {
				if err := w.SetCourts(courts, now, ref.ActorID); err != nil {
					return err
				}
			}
		}
		return w.RefreshRules(rules, now, ref.ActorID)
	})
	if err != nil {
		return RefreshResult{}, err
	}

	s.logger.InfoContext(ctx, "draft assignments refreshed",
		"season_id", out.SeasonID, "week", out.Number, "replacements", len(report.Replacements), "unresolved", len(report.Unresolved))
	return RefreshResult{Week: out, Repair: report}, nil
}

// RebalanceAdvice reports illegal box sizes on a week and the moves that would fix them.
func (s *WeekService) RebalanceAdvice(ctx context.Context, leagueID, seasonID string, number int) (RebalanceAdvice, error) {
	w, err := s.GetWeek(ctx, leagueID, seasonID, number)
	if err != nil {
		return RebalanceAdvice{}, err
	}
	return RebalanceAdvice{
		Issues: promotion.CheckBalance(w.Boxes),
		Moves:  promotion.SuggestRebalance(w.Boxes),
	}, nil
}

func venueCourts(boxNumbers []int, venue league.Venue) ([]week.CourtAssignment, error) {
	slots, err := match.AssignCourts(boxNumbers, venue)
	if err != nil {
		return nil, err
	}
	out := make([]week.CourtAssignment, 0, len(slots))
	for _, slot := range slots {
		out = append(out, week.CourtAssignment{BoxNumber: slot.BoxNumber, CourtID: slot.CourtID, SessionID: slot.SessionID})
	}
	return out, nil
}

func checkVenueSlots(venue league.Venue, courts []week.CourtAssignment) error {
	for _, c := range courts {
		if !slices.ContainsFunc(venue.ActiveCourts(), func(v league.Court) bool { return v.ID == c.CourtID }) {
			return fmt.Errorf("%w: court %s is not an active court of the venue", ErrInvalidInput, c.CourtID)
		}
		if !slices.ContainsFunc(venue.ActiveSessions(), func(v league.Session) bool { return v.ID == c.SessionID }) {
			return fmt.Errorf("%w: session %s is not an active session of the venue", ErrInvalidInput, c.SessionID)
		}
	}
	return nil
}

// sessionStart places a "15:04" session start on the week's date.
func sessionStart(date time.Time, startTime string) time.Time {
	clock, err := time.Parse("15:04", strings.TrimSpace(startTime))
	if err != nil || date.IsZero() {
		return date
	}
	y, m, d := date.Date()
	return time.Date(y, m, d, clock.Hour(), clock.Minute(), 0, 0, date.Location())
}
