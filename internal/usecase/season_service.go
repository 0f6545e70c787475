package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/riskibarqy/box-league/internal/domain/season"
	"github.com/riskibarqy/box-league/internal/domain/txn"
	"github.com/riskibarqy/box-league/internal/domain/week"
	"github.com/riskibarqy/box-league/internal/platform/id"
	"github.com/riskibarqy/box-league/internal/platform/logging"
	"go.opentelemetry.io/otel/attribute"
)

type CreateSeasonInput struct {
	ActorID    string
	LeagueID   string
	Name       string
	StartDate  time.Time
	TotalWeeks int
}

type SeasonActionInput struct {
	ActorID  string
	LeagueID string
	SeasonID string
	Reason   string
}

type RescheduleWeekInput struct {
	SeasonActionInput
	WeekNumber int
	Date       time.Time
}

type CancelWeekInput struct {
	SeasonActionInput
	WeekNumber int
}

type SeasonService struct {
	store  txn.Store
	idGen  id.Generator
	logger *logging.Logger
	now    func() time.Time
}

func NewSeasonService(store txn.Store, idGen id.Generator, logger *logging.Logger) *SeasonService {
	if logger == nil {
		logger = logging.Default()
	}
	return &SeasonService{
		store:  store,
		idGen:  idGen,
		logger: logger,
		now:    time.Now,
	}
}

func (s *SeasonService) CreateSeason(ctx context.Context, input CreateSeasonInput) (season.Season, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.SeasonService.CreateSeason", attribute.String("league.id", input.LeagueID))
	defer span.End()

	input.LeagueID = strings.TrimSpace(input.LeagueID)
	if input.LeagueID == "" {
		return season.Season{}, fmt.Errorf("%w: league_id is required", ErrInvalidInput)
	}

	seasonID, err := s.idGen.NewID()
	if err != nil {
		return season.Season{}, fmt.Errorf("generate season id: %w", err)
	}

	var out season.Season
	err = s.store.RunInTx(ctx, func(ctx context.Context, repos txn.Repositories) error {
		l, err := loadLeague(ctx, repos, input.LeagueID)
		if err != nil {
			return err
		}
		if err := requireOrganizer(l, input.ActorID); err != nil {
			return err
		}

		created, err := season.New(season.NewInput{
			ID:         seasonID,
			LeagueID:   l.ID,
			Name:       input.Name,
			StartDate:  input.StartDate,
			TotalWeeks: input.TotalWeeks,
			Rules:      l.Rules,
		}, s.now().UTC())
		if err != nil {
			return err
		}
		if err := repos.Seasons.Create(ctx, created); err != nil {
			return fmt.Errorf("create season: %w", err)
		}
		out = created
		return nil
	})
	if err != nil {
		return season.Season{}, classify(err)
	}

	s.logger.InfoContext(ctx, "season created", "league_id", out.LeagueID, "season_id", out.ID, "weeks", out.TotalWeeks)
	return out, nil
}

func (s *SeasonService) GetSeason(ctx context.Context, leagueID, seasonID string) (season.Season, error) {
	leagueID = strings.TrimSpace(leagueID)
	seasonID = strings.TrimSpace(seasonID)
	if leagueID == "" || seasonID == "" {
		return season.Season{}, fmt.Errorf("%w: league_id and season_id are required", ErrInvalidInput)
	}
	return loadSeason(ctx, s.store.Repositories(), leagueID, seasonID)
}

func (s *SeasonService) ListSeasons(ctx context.Context, leagueID string) ([]season.Season, error) {
	leagueID = strings.TrimSpace(leagueID)
	if leagueID == "" {
		return nil, fmt.Errorf("%w: league_id is required", ErrInvalidInput)
	}

	repos := s.store.Repositories()
	if _, err := loadLeague(ctx, repos, leagueID); err != nil {
		return nil, err
	}
	items, err := repos.Seasons.ListByLeague(ctx, leagueID)
	if err != nil {
		return nil, fmt.Errorf("list seasons by league: %w", err)
	}
	return items, nil
}

// ActivateSeason moves a setup season to active. The league's active season
// pointer is checked and written in the same transaction.
func (s *SeasonService) ActivateSeason(ctx context.Context, input SeasonActionInput) (season.Season, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.SeasonService.ActivateSeason", WeekRef{LeagueID: input.LeagueID, SeasonID: input.SeasonID}.spanAttributes()...)
	defer span.End()

	return s.mutateSeason(ctx, input, func(ctx context.Context, repos txn.Repositories, sn *season.Season) error {
		l, err := loadLeague(ctx, repos, sn.LeagueID)
		if err != nil {
			return err
		}
		if l.ActiveSeasonID != "" && l.ActiveSeasonID != sn.ID {
			current, exists, err := repos.Seasons.GetByID(ctx, l.ActiveSeasonID)
			if err != nil {
				return fmt.Errorf("get active season: %w", err)
			}
			if exists && current.State == season.StateActive {
				return blocked("activate season", []string{fmt.Sprintf("season %s is already active in this league", current.Name)})
			}
		}

		now := s.now().UTC()
		if err := sn.Activate(now); err != nil {
			return err
		}
		l.ActiveSeasonID = sn.ID
		l.Revision++
		l.UpdatedAt = now
		if err := repos.Leagues.Save(ctx, l); err != nil {
			return fmt.Errorf("save league: %w", err)
		}
		return resetSubstituteCounters(ctx, repos, l.ID, now)
	})
}

func (s *SeasonService) CompleteSeason(ctx context.Context, input SeasonActionInput) (season.Season, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.SeasonService.CompleteSeason", WeekRef{LeagueID: input.LeagueID, SeasonID: input.SeasonID}.spanAttributes()...)
	defer span.End()

	return s.mutateSeason(ctx, input, func(ctx context.Context, repos txn.Repositories, sn *season.Season) error {
		if outstanding := sn.OutstandingWeeks(); sn.State == season.StateActive && len(outstanding) > 0 {
			return blocked("complete season", []string{fmt.Sprintf("weeks %v are neither completed nor cancelled", outstanding)})
		}
		if err := sn.Complete(s.now().UTC()); err != nil {
			return err
		}
		return s.clearActivePointer(ctx, repos, sn.LeagueID, sn.ID)
	})
}

func (s *SeasonService) CancelSeason(ctx context.Context, input SeasonActionInput) (season.Season, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.SeasonService.CancelSeason", WeekRef{LeagueID: input.LeagueID, SeasonID: input.SeasonID}.spanAttributes()...)
	defer span.End()

	return s.mutateSeason(ctx, input, func(ctx context.Context, repos txn.Repositories, sn *season.Season) error {
		if err := sn.Cancel(input.Reason, s.now().UTC()); err != nil {
			return err
		}
		return s.clearActivePointer(ctx, repos, sn.LeagueID, sn.ID)
	})
}

func (s *SeasonService) RescheduleWeek(ctx context.Context, input RescheduleWeekInput) (season.Season, error) {
	return s.mutateSeason(ctx, input.SeasonActionInput, func(ctx context.Context, repos txn.Repositories, sn *season.Season) error {
		now := s.now().UTC()
		if err := sn.RescheduleWeek(input.WeekNumber, input.Date, now); err != nil {
			return err
		}

		w, exists, err := repos.Weeks.Get(ctx, sn.ID, input.WeekNumber)
		if err != nil {
			return fmt.Errorf("get week: %w", err)
		}
		if !exists || w.State != week.StateDraft {
			return nil
		}
		readRevision := w.Revision
		w.ScheduledDate = input.Date
		w.Touch(now, input.ActorID)
		if err := repos.Weeks.Update(ctx, w, readRevision); err != nil {
			return fmt.Errorf("update week date: %w", err)
		}
		return nil
	})
}

// CancelWeek marks a calendar week cancelled. A draft already built for it
// hands its roster to the next open week.
func (s *SeasonService) CancelWeek(ctx context.Context, input CancelWeekInput) (season.Season, error) {
	return s.mutateSeason(ctx, input.SeasonActionInput, func(ctx context.Context, repos txn.Repositories, sn *season.Season) error {
		w, exists, err := repos.Weeks.Get(ctx, sn.ID, input.WeekNumber)
		if err != nil {
			return fmt.Errorf("get week: %w", err)
		}
		if exists && (w.State == week.StateActive || w.State == week.StateClosing) {
			return blocked("cancel week", []string{fmt.Sprintf("week %d is %s, deactivate it first", w.Number, w.State)})
		}
		now := s.now().UTC()
		if err := sn.CancelWeek(input.WeekNumber, input.Reason, now); err != nil {
			return err
		}
		if !exists || w.State != week.StateDraft {
			return nil
		}
		return s.carryDraftForward(ctx, repos, *sn, w, now, input.ActorID)
	})
}

func (s *SeasonService) carryDraftForward(ctx context.Context, repos txn.Repositories, sn season.Season, cancelled week.Week, now time.Time, actor string) error {
	entry, ok := sn.NextWeek(cancelled.Number)
	if !ok {
		return nil
	}
	_, exists, err := repos.Weeks.Get(ctx, sn.ID, entry.WeekNumber)
	if err != nil {
		return fmt.Errorf("get week: %w", err)
	}
	if exists {
		return nil
	}
	l, err := loadLeague(ctx, repos, sn.LeagueID)
	if err != nil {
		return err
	}

	next, err := week.NewDraft(l.ID, sn.ID, entry.WeekNumber, entry.EffectiveDate(), l.Rules, cancelled.Boxes, now, actor)
	if err != nil {
		return err
	}
	if l.Venue.Capacity() > 0 {
		if courts, err := venueCourts(next.BoxNumbers(), l.Venue); err == nil {
			next.Courts = courts
		}
	}
	if err := repos.Weeks.Create(ctx, next); err != nil {
		return fmt.Errorf("create week: %w", err)
	}
	s.logger.InfoContext(ctx, "cancelled draft carried forward",
		"season_id", sn.ID, "cancelled_week", cancelled.Number, "next_week", next.Number)
	return nil
}

func (s *SeasonService) Progress(ctx context.Context, leagueID, seasonID string) (season.Progress, error) {
	sn, err := s.GetSeason(ctx, leagueID, seasonID)
	if err != nil {
		return season.Progress{}, err
	}
	return sn.Progress(), nil
}

// resetSubstituteCounters starts every member's per-season substitute allowance over.
func resetSubstituteCounters(ctx context.Context, repos txn.Repositories, leagueID string, now time.Time) error {
	members, err := repos.Members.ListByLeague(ctx, leagueID)
	if err != nil {
		return fmt.Errorf("list members by league: %w", err)
	}
	for _, m := range members {
		if m.SubstitutesUsed == 0 {
			continue
		}
		m.SubstitutesUsed = 0
		m.UpdatedAt = now
		if err := repos.Members.Save(ctx, m); err != nil {
			return fmt.Errorf("save member: %w", err)
		}
	}
	return nil
}

func (s *SeasonService) clearActivePointer(ctx context.Context, repos txn.Repositories, leagueID, seasonID string) error {
	l, err := loadLeague(ctx, repos, leagueID)
	if err != nil {
		return err
	}
	if l.ActiveSeasonID != seasonID {
		return nil
	}
	l.ActiveSeasonID = ""
	l.Revision++
	l.UpdatedAt = s.now().UTC()
	if err := repos.Leagues.Save(ctx, l); err != nil {
		return fmt.Errorf("save league: %w", err)
	}
	return nil
}

// mutateSeason requires an organizer unless ActorID is empty, which only
// internal bookkeeping calls use.
func (s *SeasonService) mutateSeason(
	ctx context.Context,
	input SeasonActionInput,
	fn func(ctx context.Context, repos txn.Repositories, sn *season.Season) error,
) (season.Season, error) {
	input.LeagueID = strings.TrimSpace(input.LeagueID)
	input.SeasonID = strings.TrimSpace(input.SeasonID)
	input.ActorID = strings.TrimSpace(input.ActorID)
	if input.LeagueID == "" || input.SeasonID == "" {
		return season.Season{}, fmt.Errorf("%w: league_id and season_id are required", ErrInvalidInput)
	}

	var out season.Season
	err := s.store.RunInTx(ctx, func(ctx context.Context, repos txn.Repositories) error {
		l, err := loadLeague(ctx, repos, input.LeagueID)
		if err != nil {
			return err
		}
		if input.ActorID != "" {
			if err := requireOrganizer(l, input.ActorID); err != nil {
				return err
			}
		}
		sn, err := loadSeason(ctx, repos, input.LeagueID, input.SeasonID)
		if err != nil {
			return err
		}
		if err := fn(ctx, repos, &sn); err != nil {
			return err
		}
		if err := repos.Seasons.Update(ctx, sn); err != nil {
			return fmt.Errorf("update season: %w", err)
		}
		out = sn
		return nil
	})
	if err != nil {
		return season.Season{}, classify(err)
	}
	return out, nil
}
