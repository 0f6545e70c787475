package usecase

import (
	"errors"
	"fmt"
	"strings"

	"github.com/riskibarqy/box-league/internal/domain/league"
	"github.com/riskibarqy/box-league/internal/domain/match"
	"github.com/riskibarqy/box-league/internal/domain/packing"
	"github.com/riskibarqy/box-league/internal/domain/season"
	"github.com/riskibarqy/box-league/internal/domain/week"
)

var (
	ErrInvalidInput          = errors.New("invalid input")
	ErrNotFound              = errors.New("resource not found")
	ErrUnauthorized          = errors.New("unauthorized")
	ErrForbidden             = errors.New("forbidden")
	ErrConflict              = errors.New("conflict")
	ErrIntegrity             = errors.New("data integrity violation")
	ErrDependencyUnavailable = errors.New("dependency unavailable")
)

// BlockedError rejects an organizer action and lists every blocker so the caller
// can show what has to be fixed.
type BlockedError struct {
	Operation string
	Blockers  []string
}

func (e *BlockedError) Error() string {
	return fmt.Sprintf("%s blocked: %s", e.Operation, strings.Join(e.Blockers, "; "))
}

func (e *BlockedError) Unwrap() error {
	return ErrConflict
}

func blocked(operation string, blockers []string) error {
	return &BlockedError{Operation: operation, Blockers: blockers}
}

// classify maps domain errors onto the usecase taxonomy.
func classify(err error) error {
	if err == nil {
		return nil
	}
	var be *BlockedError
	if errors.As(err, &be) {
		return err
	}

	switch {
	case errors.Is(err, ErrInvalidInput),
		errors.Is(err, ErrNotFound),
		errors.Is(err, ErrUnauthorized),
		errors.Is(err, ErrForbidden),
		errors.Is(err, ErrConflict),
		errors.Is(err, ErrIntegrity),
		errors.Is(err, ErrDependencyUnavailable):
		return err
	case errors.Is(err, week.ErrInvalidBoxSize),
		errors.Is(err, week.ErrDuplicatePlayer),
		errors.Is(err, week.ErrInvalidCourts),
		errors.Is(err, week.ErrPlayerNotInWeek),
		errors.Is(err, week.ErrBoxNotFound),
		errors.Is(err, league.ErrInvalidRules),
		errors.Is(err, season.ErrInvalidSeason),
		errors.Is(err, match.ErrUnsupportedBoxSize):
		return fmt.Errorf("%w: %w", ErrInvalidInput, err)
	case errors.Is(err, week.ErrAbsenceNotFound),
		errors.Is(err, season.ErrWeekNotFound):
		return fmt.Errorf("%w: %w", ErrNotFound, err)
	case errors.Is(err, week.ErrInvalidState),
		errors.Is(err, week.ErrRevisionConflict),
		errors.Is(err, week.ErrAlreadyExists),
		errors.Is(err, week.ErrDuplicateAbsence),
		errors.Is(err, week.ErrAttendanceLocked),
		errors.Is(err, week.ErrSubstituteConflict),
		errors.Is(err, season.ErrInvalidTransition),
		errors.Is(err, season.ErrWeekCompleted),
		errors.Is(err, match.ErrInsufficientCapacity),
		errors.Is(err, packing.ErrInfeasible):
		return fmt.Errorf("%w: %w", ErrConflict, err)
	default:
		return err
	}
}
