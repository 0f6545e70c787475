package usecase

import (
	"context"
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"github.com/riskibarqy/box-league/internal/domain/match"
	"github.com/riskibarqy/box-league/internal/domain/season"
	"github.com/riskibarqy/box-league/internal/domain/week"
	"github.com/riskibarqy/box-league/internal/infrastructure/repository/memory"
	"github.com/riskibarqy/box-league/internal/platform/logging"
)

const (
	testLeague    = memory.LeagueIDThursdayLadder
	testOrganizer = memory.OrganizerIDDemo
)

var testNow = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

type sequenceIDs struct {
	next atomic.Int64
}

func (g *sequenceIDs) NewID() (string, error) {
	return fmt.Sprintf("id-%04d", g.next.Add(1)), nil
}

type fixture struct {
	store       *memory.Store
	seasons     *SeasonService
	weeks       *WeekService
	attendance  *AttendanceService
	schedule    *ScheduleService
	leagues     *LeagueService
	eligibility *EligibilityService
	submissions *SubmissionService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	store := memory.NewStore(memory.DemoSeed())
	ids := &sequenceIDs{}
	logger := logging.NewNop()
	clock := func() time.Time { return testNow }

	f := &fixture{
		store:       store,
		seasons:     NewSeasonService(store, ids, logger),
		weeks:       NewWeekService(store, ids, logger),
		attendance:  NewAttendanceService(store, logger),
		schedule:    NewScheduleService(store, ids, logger),
		leagues:     NewLeagueService(store, logger),
		eligibility: NewEligibilityService(store),
		submissions: NewSubmissionService(store, nil, logger),
	}
	f.seasons.now = clock
	f.weeks.now = clock
	f.attendance.now = clock
	f.schedule.now = clock
	f.leagues.now = clock
	f.eligibility.now = clock
	return f
}

// startSeason generates and activates a four week season over the 13 seeded members.
func (f *fixture) startSeason(t *testing.T) (season.Season, week.Week) {
	t.Helper()
	ctx := context.Background()

	generated, err := f.schedule.GenerateSeason(ctx, GenerateSeasonInput{
		ActorID:    testOrganizer,
		LeagueID:   testLeague,
		Name:       "Spring 2026",
		StartDate:  time.Date(2026, 3, 5, 0, 0, 0, 0, time.UTC),
		TotalWeeks: 4,
	})
	if err != nil {
		t.Fatalf("generate season: %v", err)
	}
	sn, err := f.seasons.ActivateSeason(ctx, SeasonActionInput{ActorID: testOrganizer, LeagueID: testLeague, SeasonID: generated.Season.ID})
	if err != nil {
		t.Fatalf("activate season: %v", err)
	}
	return sn, generated.Week
}

func (f *fixture) ref(sn season.Season, number int) WeekRef {
	return WeekRef{ActorID: testOrganizer, LeagueID: testLeague, SeasonID: sn.ID, WeekNumber: number}
}

// playAll completes every match of the week, the lower listed team winning each game 11-7.
func (f *fixture) playAll(t *testing.T, sn season.Season, number int) []match.Match {
	t.Helper()
	ctx := context.Background()
	repos := f.store.Repositories()

	matches, err := repos.Matches.ListByWeek(ctx, sn.ID, number)
	if err != nil {
		t.Fatalf("list matches: %v", err)
	}
	for _, m := range matches {
		m.Status = match.StatusCompleted
		m.Games = []match.GameScore{{Team1: 11, Team2: 7}}
		m.UpdatedAt = testNow
		if err := repos.Matches.Update(ctx, m); err != nil {
			t.Fatalf("update match: %v", err)
		}
	}
	return matches
}

func boxSizes(boxes []week.BoxAssignment) []int {
	out := make([]int, 0, len(boxes))
	for _, b := range boxes {
		out = append(out, len(b.PlayerIDs))
	}
	return out
}
