package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/riskibarqy/box-league/internal/domain/league"
	"github.com/riskibarqy/box-league/internal/domain/txn"
	"github.com/riskibarqy/box-league/internal/domain/week"
	"github.com/riskibarqy/box-league/internal/platform/logging"
)

type PlayerActionInput struct {
	WeekRef
	PlayerID string
}

type AbsenceActionInput struct {
	WeekRef
	PlayerID string
	Reason   string
	Policy   string
}

type SubstituteInput struct {
	WeekRef
	AbsentPlayerID string
	SubstituteID   string
}

type AssignSubstituteResult struct {
	Week            week.Week
	SubstitutesUsed int
	UpdatedMatches  int
	Warnings        []string
}

// AttendanceService tracks who shows up on league night, declared absences and
// the substitutes standing in for them.
type AttendanceService struct {
	store  txn.Store
	logger *logging.Logger
	now    func() time.Time
}

func NewAttendanceService(store txn.Store, logger *logging.Logger) *AttendanceService {
	if logger == nil {
		logger = logging.Default()
	}
	return &AttendanceService{
		store:  store,
		logger: logger,
		now:    time.Now,
	}
}

// CheckIn lets a player check themselves in or an organizer check anyone in.
func (s *AttendanceService) CheckIn(ctx context.Context, input PlayerActionInput) (week.Week, error) {
	playerID := strings.TrimSpace(input.PlayerID)
	if playerID == "" {
		return week.Week{}, fmt.Errorf("%w: player_id is required", ErrInvalidInput)
	}
	return mutateWeek(ctx, s.store, input.WeekRef, selfOrOrganizer(playerID), func(_ context.Context, _ txn.Repositories, scope *weekScope) error {
		selfService := !scope.League.IsOrganizer(input.ActorID)
		return scope.Week.CheckIn(playerID, input.ActorID, selfService, s.now().UTC())
	})
}

func (s *AttendanceService) LockAttendance(ctx context.Context, ref WeekRef) (week.Week, error) {
	return s.setLocked(ctx, ref, true)
}

func (s *AttendanceService) UnlockAttendance(ctx context.Context, ref WeekRef) (week.Week, error) {
	return s.setLocked(ctx, ref, false)
}

func (s *AttendanceService) setLocked(ctx context.Context, ref WeekRef, locked bool) (week.Week, error) {
	return mutateWeek(ctx, s.store, ref, organizerOnly, func(_ context.Context, _ txn.Repositories, scope *weekScope) error {
		return scope.Week.SetAttendanceLocked(locked, s.now().UTC(), ref.ActorID)
	})
}

func (s *AttendanceService) MarkNoShow(ctx context.Context, input PlayerActionInput) (week.Week, error) {
	return mutateWeek(ctx, s.store, input.WeekRef, organizerOnly, func(_ context.Context, _ txn.Repositories, scope *weekScope) error {
		return scope.Week.MarkNoShow(strings.TrimSpace(input.PlayerID), input.ActorID, s.now().UTC())
	})
}

func (s *AttendanceService) Excuse(ctx context.Context, input PlayerActionInput) (week.Week, error) {
	return mutateWeek(ctx, s.store, input.WeekRef, organizerOnly, func(_ context.Context, _ txn.Repositories, scope *weekScope) error {
		return scope.Week.Excuse(strings.TrimSpace(input.PlayerID), input.ActorID, s.now().UTC())
	})
}

// DeclareAbsence records an absence ahead of league night. Players may declare their own.
func (s *AttendanceService) DeclareAbsence(ctx context.Context, input AbsenceActionInput) (week.Week, error) {
	absence, err := input.toDomain()
	if err != nil {
		return week.Week{}, err
	}
	out, err := mutateWeek(ctx, s.store, input.WeekRef, selfOrOrganizer(absence.PlayerID), func(_ context.Context, _ txn.Repositories, scope *weekScope) error {
		return scope.Week.DeclareAbsence(absence, s.now().UTC())
	})
	if err != nil {
		return week.Week{}, err
	}

	s.logger.InfoContext(ctx, "absence declared", "season_id", out.SeasonID, "week", out.Number, "player_id", absence.PlayerID)
	return out, nil
}

func (s *AttendanceService) RecordNoShowAbsence(ctx context.Context, input AbsenceActionInput) (week.Week, error) {
	absence, err := input.toDomain()
	if err != nil {
		return week.Week{}, err
	}
	out, err := mutateWeek(ctx, s.store, input.WeekRef, organizerOnly, func(_ context.Context, _ txn.Repositories, scope *weekScope) error {
		return scope.Week.RecordNoShowAbsence(absence, s.now().UTC())
	})
	if err != nil {
		return week.Week{}, err
	}

	s.logger.InfoContext(ctx, "no-show absence recorded", "season_id", out.SeasonID, "week", out.Number, "player_id", absence.PlayerID)
	return out, nil
}

func (s *AttendanceService) CancelAbsence(ctx context.Context, input PlayerActionInput) (week.Week, error) {
	playerID := strings.TrimSpace(input.PlayerID)
	if playerID == "" {
		return week.Week{}, fmt.Errorf("%w: player_id is required", ErrInvalidInput)
	}
	return mutateWeek(ctx, s.store, input.WeekRef, selfOrOrganizer(playerID), func(ctx context.Context, repos txn.Repositories, scope *weekScope) error {
		absence, _ := scope.Week.AbsenceFor(playerID)
		if err := scope.Week.CancelAbsence(playerID, input.ActorID, s.now().UTC()); err != nil {
			return err
		}
		if absence.SubstituteID == "" {
			return nil
		}
		return releaseSubstitute(ctx, repos, scope.Week.LeagueID, playerID)
	})
}

// AssignSubstitute puts an eligible player in for an absentee. On an active week
// the substitute also replaces the absentee in every unfinished match.
func (s *AttendanceService) AssignSubstitute(ctx context.Context, input SubstituteInput) (AssignSubstituteResult, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.AttendanceService.AssignSubstitute", input.WeekRef.spanAttributes()...)
	defer span.End()

	absentID := strings.TrimSpace(input.AbsentPlayerID)
	substituteID := strings.TrimSpace(input.SubstituteID)

	var result AssignSubstituteResult
	out, err := mutateWeek(ctx, s.store, input.WeekRef, organizerOnly, func(ctx context.Context, repos txn.Repositories, scope *weekScope) error {
		result = AssignSubstituteResult{}
		check, absent, err := checkSubstitute(ctx, repos, scope.Week, absentID, substituteID)
		if err != nil {
			return err
		}
		if !check.Eligible {
			return blocked("assign substitute", check.Blockers)
		}
		result.Warnings = check.Warnings

		absence, _ := scope.Week.AbsenceFor(absentID)
		swapped, err := scope.Week.AssignSubstitute(absentID, substituteID, input.ActorID, s.now().UTC())
		if err != nil {
			return err
		}
		if swapped {
			n, err := repos.Matches.ReplaceParticipant(ctx, scope.Week.SeasonID, scope.Week.Number, absence.BoxNumber, absentID, substituteID)
			if err != nil {
				return fmt.Errorf("replace participant: %w", err)
			}
			result.UpdatedMatches = n
		}

		used := absent.SubstitutesUsed
		if absent.PlayerID != "" {
			used, err = repos.Members.IncrementSubstitutesUsed(ctx, absent.LeagueID, absent.PlayerID, 1)
			if err != nil {
				return fmt.Errorf("increment substitutes used: %w", err)
			}
		}
		result.SubstitutesUsed = used
		return nil
	})
	if err != nil {
		return AssignSubstituteResult{}, err
	}
	result.Week = out

	s.logger.InfoContext(ctx, "substitute assigned",
		"season_id", out.SeasonID, "week", out.Number, "absent_id", absentID, "substitute_id", substituteID,
		"updated_matches", result.UpdatedMatches)
	return result, nil
}

func (s *AttendanceService) RemoveSubstitute(ctx context.Context, input PlayerActionInput) (week.Week, error) {
	absentID := strings.TrimSpace(input.PlayerID)
	return mutateWeek(ctx, s.store, input.WeekRef, organizerOnly, func(ctx context.Context, repos txn.Repositories, scope *weekScope) error {
		if _, err := scope.Week.RemoveSubstitute(absentID, input.ActorID, s.now().UTC()); err != nil {
			return err
		}
		return releaseSubstitute(ctx, repos, scope.Week.LeagueID, absentID)
	})
}

// releaseSubstitute gives back the season substitute slot charged to absentID
// when a substitute was assigned.
func releaseSubstitute(ctx context.Context, repos txn.Repositories, leagueID, absentID string) error {
	_, found, err := repos.Members.Get(ctx, leagueID, absentID)
	if err != nil {
		return fmt.Errorf("get member: %w", err)
	}
	if !found {
		return nil
	}
	if _, err := repos.Members.IncrementSubstitutesUsed(ctx, leagueID, absentID, -1); err != nil {
		return fmt.Errorf("decrement substitutes used: %w", err)
	}
	return nil
}

func (s *AttendanceService) BoxCapacity(ctx context.Context, ref WeekRef, boxNumber int) (week.BoxCapacity, error) {
	w, err := s.readWeek(ctx, ref)
	if err != nil {
		return week.BoxCapacity{}, err
	}
	capacity, err := w.Capacity(boxNumber)
	if err != nil {
		return week.BoxCapacity{}, classify(err)
	}
	return capacity, nil
}

func (s *AttendanceService) Capacities(ctx context.Context, ref WeekRef) ([]week.BoxCapacity, error) {
	w, err := s.readWeek(ctx, ref)
	if err != nil {
		return nil, err
	}
	return w.Capacities(), nil
}

func (s *AttendanceService) readWeek(ctx context.Context, ref WeekRef) (week.Week, error) {
	ref, err := ref.normalize()
	if err != nil {
		return week.Week{}, err
	}
	scope, err := loadWeekScope(ctx, s.store.Repositories(), ref)
	if err != nil {
		return week.Week{}, err
	}
	return scope.Week, nil
}

func (in AbsenceActionInput) toDomain() (week.AbsenceInput, error) {
	playerID := strings.TrimSpace(in.PlayerID)
	if playerID == "" {
		return week.AbsenceInput{}, fmt.Errorf("%w: player_id is required", ErrInvalidInput)
	}
	out := week.AbsenceInput{
		PlayerID: playerID,
		Reason:   in.Reason,
		Actor:    strings.TrimSpace(in.ActorID),
	}
	if raw := strings.TrimSpace(in.Policy); raw != "" {
		policy, err := league.ParseAbsenteePolicy(raw)
		if err != nil {
			return week.AbsenceInput{}, fmt.Errorf("%w: %w", ErrInvalidInput, err)
		}
		out.Policy = policy
	}
	return out, nil
}
