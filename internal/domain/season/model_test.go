package season

import (
	"errors"
	"testing"
	"time"

	"github.com/riskibarqy/box-league/internal/domain/league"
)

var testNow = time.Date(2026, 1, 5, 9, 0, 0, 0, time.UTC)

func newSeason(t *testing.T, weeks int) Season {
	t.Helper()

	s, err := New(NewInput{
		ID:         "season-1",
		LeagueID:   "league-1",
		Name:       "Spring",
		StartDate:  time.Date(2026, 3, 2, 18, 0, 0, 0, time.UTC),
		TotalWeeks: weeks,
		Rules:      league.DefaultRules(),
	}, testNow)
	if err != nil {
		t.Fatalf("new season: %v", err)
	}
	return s
}

func TestNewBuildsWeeklySchedule(t *testing.T) {
	s := newSeason(t, 4)
	if len(s.Schedule) != s.TotalWeeks {
		t.Fatalf("schedule length %d != total weeks %d", len(s.Schedule), s.TotalWeeks)
	}
	if got := s.Schedule[3].ScheduledDate.Sub(s.Schedule[0].ScheduledDate); got != 3*weekInterval {
		t.Fatalf("unexpected spacing: %s", got)
	}
	if !s.EndDate.Equal(s.Schedule[3].ScheduledDate) {
		t.Fatalf("end date should be the last week")
	}

	if _, err := New(NewInput{ID: "x", LeagueID: "l", Name: "n", StartDate: testNow, TotalWeeks: 0, Rules: league.DefaultRules()}, testNow); !errors.Is(err, ErrInvalidSeason) {
		t.Fatalf("expected ErrInvalidSeason, got %v", err)
	}
}

func TestLifecycle(t *testing.T) {
	s := newSeason(t, 3)

	if err := s.Complete(testNow); !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("completing a setup season should fail, got %v", err)
	}
	if err := s.Activate(testNow); err != nil {
		t.Fatalf("activate: %v", err)
	}
	if err := s.Activate(testNow); !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("second activation should fail, got %v", err)
	}

	if err := s.MarkWeekActive(1, testNow); err != nil {
		t.Fatalf("mark active: %v", err)
	}
	if err := s.MarkWeekCompleted(1, testNow); err != nil {
		t.Fatalf("mark completed: %v", err)
	}
	if err := s.RescheduleWeek(1, testNow, testNow); !errors.Is(err, ErrWeekCompleted) {
		t.Fatalf("rescheduling a completed week should fail, got %v", err)
	}
	if err := s.CancelWeek(2, "rain", testNow); err != nil {
		t.Fatalf("cancel week: %v", err)
	}
	if err := s.MarkWeekActive(2, testNow); !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("a cancelled week cannot go active, got %v", err)
	}
	if e, _ := s.Entry(2); e.Status != WeekCancelled {
		t.Fatalf("cancelled entry changed to %s", e.Status)
	}
	if err := s.Complete(testNow); !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("week 3 is outstanding, got %v", err)
	}

	p := s.Progress()
	if p.CompletedWeeks != 1 || p.CancelledWeeks != 1 || p.RemainingWeeks != 1 {
		t.Fatalf("unexpected progress: %+v", p)
	}
	if p.PercentComplete < 66.6 || p.PercentComplete > 66.7 {
		t.Fatalf("cancelled weeks count as done, got %.2f", p.PercentComplete)
	}

	if err := s.MarkWeekCompleted(3, testNow); err != nil {
		t.Fatalf("mark completed: %v", err)
	}
	if err := s.Complete(testNow); err != nil {
		t.Fatalf("complete: %v", err)
	}
	if err := s.Cancel("late", testNow); !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("terminal seasons cannot be cancelled, got %v", err)
	}
}

func TestCancelMarksOpenWeeks(t *testing.T) {
	s := newSeason(t, 3)
	if err := s.Activate(testNow); err != nil {
		t.Fatalf("activate: %v", err)
	}
	if err := s.MarkWeekCompleted(1, testNow); err != nil {
		t.Fatalf("complete week 1: %v", err)
	}
	if err := s.Cancel("venue closed", testNow); err != nil {
		t.Fatalf("cancel: %v", err)
	}

	if s.Schedule[0].Status != WeekCompleted {
		t.Fatalf("completed week must stay completed")
	}
	for _, e := range s.Schedule[1:] {
		if e.Status != WeekCancelled || e.CancellationReason != "venue closed" {
			t.Fatalf("unexpected entry: %+v", e)
		}
	}
}

func TestRescheduleAndNextWeek(t *testing.T) {
	s := newSeason(t, 3)
	moved := time.Date(2026, 3, 12, 18, 0, 0, 0, time.UTC)
	if err := s.RescheduleWeek(2, moved, testNow); err != nil {
		t.Fatalf("reschedule: %v", err)
	}
	entry, _ := s.Entry(2)
	if entry.Status != WeekPostponed || !entry.EffectiveDate().Equal(moved) {
		t.Fatalf("unexpected entry: %+v", entry)
	}

	if err := s.CancelWeek(2, "holiday", testNow); err != nil {
		t.Fatalf("cancel week: %v", err)
	}
	next, ok := s.NextWeek(1)
	if !ok || next.WeekNumber != 3 {
		t.Fatalf("next playable week after 1 should be 3, got %+v ok=%v", next, ok)
	}
	if _, ok := s.NextWeek(3); ok {
		t.Fatalf("no week after the last one")
	}
}
