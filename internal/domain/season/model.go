package season

import (
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/riskibarqy/box-league/internal/domain/league"
)

var (
	ErrInvalidTransition = errors.New("invalid season transition")
	ErrWeekCompleted     = errors.New("week already completed")
	ErrWeekNotFound      = errors.New("week not in season schedule")
	ErrInvalidSeason     = errors.New("invalid season")
)

const weekInterval = 7 * 24 * time.Hour

type State string

const (
	StateSetup     State = "setup"
	StateActive    State = "active"
	StateCompleted State = "completed"
	StateCancelled State = "cancelled"
)

func (s State) Valid() bool {
	switch s {
	case StateSetup, StateActive, StateCompleted, StateCancelled:
		return true
	default:
		return false
	}
}

func (s State) Terminal() bool {
	return s == StateCompleted || s == StateCancelled
}

func ParseState(raw string) (State, error) {
	s := State(raw)
	if !s.Valid() {
		return "", fmt.Errorf("unknown season state %q", raw)
	}
	return s, nil
}

type WeekStatus string

const (
	WeekScheduled WeekStatus = "scheduled"
	WeekActive    WeekStatus = "active"
	WeekPostponed WeekStatus = "postponed"
	WeekCancelled WeekStatus = "cancelled"
	WeekCompleted WeekStatus = "completed"
)

func (s WeekStatus) Valid() bool {
	switch s {
	case WeekScheduled, WeekActive, WeekPostponed, WeekCancelled, WeekCompleted:
		return true
	default:
		return false
	}
}

type ScheduleEntry struct {
	WeekNumber         int
	ScheduledDate      time.Time
	Status             WeekStatus
	RescheduledDate    *time.Time
	CancellationReason string
}

// EffectiveDate is the rescheduled date when present.
func (e ScheduleEntry) EffectiveDate() time.Time {
	if e.RescheduledDate != nil {
		return *e.RescheduledDate
	}
	return e.ScheduledDate
}

// Season is one league run under a frozen rule set.
type Season struct {
	ID                 string
	LeagueID           string
	Name               string
	StartDate          time.Time
	EndDate            time.Time
	TotalWeeks         int
	Schedule           []ScheduleEntry
	State              State
	Rules              league.Rules
	CancellationReason string
	ActivatedAt        *time.Time
	CompletedAt        *time.Time
	CancelledAt        *time.Time
	Revision           int64
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

type NewInput struct {
	ID         string
	LeagueID   string
	Name       string
	StartDate  time.Time
	TotalWeeks int
	Rules      league.Rules
}

// New builds a setup season with one weekly calendar entry per week.
func New(input NewInput, now time.Time) (Season, error) {
	if strings.TrimSpace(input.ID) == "" || strings.TrimSpace(input.LeagueID) == "" {
		return Season{}, fmt.Errorf("%w: id and league id are required", ErrInvalidSeason)
	}
	if strings.TrimSpace(input.Name) == "" {
		return Season{}, fmt.Errorf("%w: name is required", ErrInvalidSeason)
	}
	if input.TotalWeeks < 1 {
		return Season{}, fmt.Errorf("%w: total weeks must be >= 1", ErrInvalidSeason)
	}
	if input.StartDate.IsZero() {
		return Season{}, fmt.Errorf("%w: start date is required", ErrInvalidSeason)
	}
	if err := input.Rules.Validate(); err != nil {
		return Season{}, err
	}

	schedule := make([]ScheduleEntry, 0, input.TotalWeeks)
	for i := range input.TotalWeeks {
		schedule = append(schedule, ScheduleEntry{
			WeekNumber:    i + 1,
			ScheduledDate: input.StartDate.Add(time.Duration(i) * weekInterval),
			Status:        WeekScheduled,
		})
	}

	return Season{
		ID:         input.ID,
		LeagueID:   input.LeagueID,
		Name:       strings.TrimSpace(input.Name),
		StartDate:  input.StartDate,
		EndDate:    schedule[len(schedule)-1].ScheduledDate,
		TotalWeeks: input.TotalWeeks,
		Schedule:   schedule,
		State:      StateSetup,
		Rules:      input.Rules.Clone(),
		Revision:   1,
		CreatedAt:  now,
		UpdatedAt:  now,
	}, nil
}

func (s *Season) touch(now time.Time) {
	s.Revision++
	s.UpdatedAt = now
}

func (s Season) Entry(weekNumber int) (ScheduleEntry, bool) {
	for _, e := range s.Schedule {
		if e.WeekNumber == weekNumber {
			return e, true
		}
	}
	return ScheduleEntry{}, false
}

func (s *Season) entryIndex(weekNumber int) (int, error) {
	idx := slices.IndexFunc(s.Schedule, func(e ScheduleEntry) bool { return e.WeekNumber == weekNumber })
	if idx < 0 {
		return 0, fmt.Errorf("%w: week %d", ErrWeekNotFound, weekNumber)
	}
	return idx, nil
}

func (s *Season) Activate(now time.Time) error {
	if s.State != StateSetup {
		return fmt.Errorf("%w: season %s is %s", ErrInvalidTransition, s.ID, s.State)
	}
	if !s.hasPlayableWeek() {
		return fmt.Errorf("%w: season %s has no scheduled weeks", ErrInvalidTransition, s.ID)
	}
	s.State = StateActive
	s.ActivatedAt = &now
	s.touch(now)
	return nil
}

func (s Season) hasPlayableWeek() bool {
	for _, e := range s.Schedule {
		if e.Status == WeekScheduled || e.Status == WeekPostponed || e.Status == WeekActive {
			return true
		}
	}
	return false
}

// OutstandingWeeks lists weeks that are neither completed nor cancelled.
func (s Season) OutstandingWeeks() []int {
	var out []int
	for _, e := range s.Schedule {
		if e.Status != WeekCompleted && e.Status != WeekCancelled {
			out = append(out, e.WeekNumber)
		}
	}
	return out
}

func (s *Season) Complete(now time.Time) error {
	if s.State != StateActive {
		return fmt.Errorf("%w: season %s is %s", ErrInvalidTransition, s.ID, s.State)
	}
	if outstanding := s.OutstandingWeeks(); len(outstanding) > 0 {
		return fmt.Errorf("%w: weeks %v are not completed or cancelled", ErrInvalidTransition, outstanding)
	}
	s.State = StateCompleted
	s.CompletedAt = &now
	s.touch(now)
	return nil
}

// Cancel ends a non-terminal season and cancels every week that has not completed.
func (s *Season) Cancel(reason string, now time.Time) error {
	if s.State.Terminal() {
		return fmt.Errorf("%w: season %s is %s", ErrInvalidTransition, s.ID, s.State)
	}
	reason = strings.TrimSpace(reason)
	for i := range s.Schedule {
		if s.Schedule[i].Status == WeekCompleted {
			continue
		}
		s.Schedule[i].Status = WeekCancelled
		s.Schedule[i].CancellationReason = reason
	}
	s.State = StateCancelled
	s.CancellationReason = reason
	s.CancelledAt = &now
	s.touch(now)
	return nil
}

func (s *Season) editableEntry(weekNumber int) (int, error) {
	if s.State.Terminal() {
		return 0, fmt.Errorf("%w: season %s is %s", ErrInvalidTransition, s.ID, s.State)
	}
	idx, err := s.entryIndex(weekNumber)
	if err != nil {
		return 0, err
	}
	if s.Schedule[idx].Status == WeekCompleted {
		return 0, fmt.Errorf("%w: week %d", ErrWeekCompleted, weekNumber)
	}
	return idx, nil
}

func (s *Season) RescheduleWeek(weekNumber int, date time.Time, now time.Time) error {
	idx, err := s.editableEntry(weekNumber)
	if err != nil {
		return err
	}
	if date.IsZero() {
		return fmt.Errorf("%w: rescheduled date is required", ErrInvalidSeason)
	}
	s.Schedule[idx].Status = WeekPostponed
	s.Schedule[idx].RescheduledDate = &date
	s.touch(now)
	return nil
}

func (s *Season) CancelWeek(weekNumber int, reason string, now time.Time) error {
	idx, err := s.editableEntry(weekNumber)
	if err != nil {
		return err
	}
	s.Schedule[idx].Status = WeekCancelled
	s.Schedule[idx].CancellationReason = strings.TrimSpace(reason)
	s.touch(now)
	return nil
}

func (s *Season) MarkWeekActive(weekNumber int, now time.Time) error {
	idx, err := s.editableEntry(weekNumber)
	if err != nil {
		return err
	}
	if s.Schedule[idx].Status == WeekCancelled {
		return fmt.Errorf("%w: week %d was cancelled", ErrInvalidTransition, weekNumber)
	}
	s.Schedule[idx].Status = WeekActive
	s.touch(now)
	return nil
}

// ReopenWeek returns an active calendar entry to scheduled after a week is deactivated.
func (s *Season) ReopenWeek(weekNumber int, now time.Time) error {
	idx, err := s.editableEntry(weekNumber)
	if err != nil {
		return err
	}
	if s.Schedule[idx].Status != WeekActive {
		return nil
	}
	s.Schedule[idx].Status = WeekScheduled
	if s.Schedule[idx].RescheduledDate != nil {
		s.Schedule[idx].Status = WeekPostponed
	}
	s.touch(now)
	return nil
}

func (s *Season) MarkWeekCompleted(weekNumber int, now time.Time) error {
	idx, err := s.entryIndex(weekNumber)
	if err != nil {
		return err
	}
	if s.Schedule[idx].Status == WeekCompleted {
		return nil
	}
	if s.Schedule[idx].Status == WeekCancelled {
		return fmt.Errorf("%w: week %d was cancelled", ErrInvalidTransition, weekNumber)
	}
	s.Schedule[idx].Status = WeekCompleted
	s.touch(now)
	return nil
}

// NextWeek returns the first week after the given one that is not cancelled.
func (s Season) NextWeek(after int) (ScheduleEntry, bool) {
	for _, e := range s.Schedule {
		if e.WeekNumber > after && e.Status != WeekCancelled && e.Status != WeekCompleted {
			return e, true
		}
	}
	return ScheduleEntry{}, false
}

type Progress struct {
	TotalWeeks      int
	CompletedWeeks  int
	CancelledWeeks  int
	RemainingWeeks  int
	PercentComplete float64
}

// Progress treats cancelled weeks as done.
func (s Season) Progress() Progress {
	out := Progress{TotalWeeks: len(s.Schedule)}
	for _, e := range s.Schedule {
		switch e.Status {
		case WeekCompleted:
			out.CompletedWeeks++
		case WeekCancelled:
			out.CancelledWeeks++
		default:
			out.RemainingWeeks++
		}
	}
	if out.TotalWeeks > 0 {
		out.PercentComplete = float64(out.CompletedWeeks+out.CancelledWeeks) * 100 / float64(out.TotalWeeks)
	}
	return out
}

func (s Season) Clone() Season {
	out := s
	out.Schedule = slices.Clone(s.Schedule)
	out.Rules = s.Rules.Clone()
	return out
}
