package usecase

import (
	"context"
	"fmt"
	"slices"
	"sort"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/panjf2000/ants/v2"
	"github.com/riskibarqy/box-league/internal/domain/season"
	"github.com/riskibarqy/box-league/internal/domain/txn"
	"github.com/riskibarqy/box-league/internal/domain/week"
	"github.com/riskibarqy/box-league/internal/platform/logging"
)

const (
	maintenanceActor       = "system:maintenance"
	defaultMaintenancePool = 4

	taskStatusSuccess = "success"
	taskStatusFailed  = "failed"
	taskStatusSkipped = "skipped"
)

type RecalculateInput struct {
	// LeagueIDs narrows the run; empty means every league.
	LeagueIDs  []string
	MaxWorkers int
}

type RecalculateResult struct {
	LeagueCount  int                     `json:"league_count"`
	TaskCount    int                     `json:"task_count"`
	SuccessCount int                     `json:"success_count"`
	FailedCount  int                     `json:"failed_count"`
	SkippedCount int                     `json:"skipped_count"`
	WorkerCount  int                     `json:"worker_count"`
	Tasks        []RecalculateTaskResult `json:"tasks"`
}

type RecalculateTaskResult struct {
	LeagueID   string `json:"league_id"`
	SeasonID   string `json:"season_id"`
	WeekNumber int    `json:"week_number"`
	Status     string `json:"status"`
	DurationMs int64  `json:"duration_ms"`
	Message    string `json:"message,omitempty"`
}

type recalcTask struct {
	ref WeekRef
}

// MaintenanceService runs internal jobs over every league.
type MaintenanceService struct {
	store      txn.Store
	weeks      *WeekService
	logger     *logging.Logger
	maxWorkers int
}

func NewMaintenanceService(store txn.Store, weeks *WeekService, maxWorkers int, logger *logging.Logger) *MaintenanceService {
	if logger == nil {
		logger = logging.Default()
	}
	if maxWorkers <= 0 {
		maxWorkers = defaultMaintenancePool
	}
	return &MaintenanceService{
		store:      store,
		weeks:      weeks,
		logger:     logger,
		maxWorkers: maxWorkers,
	}
}

// RecalculateOpenWeeks refreshes preview standings of every active or closing
// week in each league's active season.
func (s *MaintenanceService) RecalculateOpenWeeks(ctx context.Context, input RecalculateInput) (RecalculateResult, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.MaintenanceService.RecalculateOpenWeeks")
	defer span.End()

	repos := s.store.Repositories()
	leagues, err := repos.Leagues.List(ctx)
	if err != nil {
		return RecalculateResult{}, fmt.Errorf("list leagues: %w", err)
	}

	filter := make(map[string]struct{}, len(input.LeagueIDs))
	for _, leagueID := range input.LeagueIDs {
		if leagueID = strings.TrimSpace(leagueID); leagueID != "" {
			filter[leagueID] = struct{}{}
		}
	}

	var result RecalculateResult
	var tasks []recalcTask
	for _, l := range leagues {
		if _, ok := filter[l.ID]; len(filter) > 0 && !ok {
			continue
		}
		result.LeagueCount++
		if l.ActiveSeasonID == "" {
			result.Tasks = append(result.Tasks, RecalculateTaskResult{LeagueID: l.ID, Status: taskStatusSkipped, Message: "no active season"})
			continue
		}
		sn, exists, err := repos.Seasons.GetByID(ctx, l.ActiveSeasonID)
		if err != nil {
			return RecalculateResult{}, fmt.Errorf("get season: %w", err)
		}
		if !exists || sn.State != season.StateActive {
			result.Tasks = append(result.Tasks, RecalculateTaskResult{LeagueID: l.ID, SeasonID: l.ActiveSeasonID, Status: taskStatusSkipped, Message: "season is not active"})
			continue
		}
		weeks, err := repos.Weeks.ListBySeason(ctx, sn.ID)
		if err != nil {
			return RecalculateResult{}, fmt.Errorf("list weeks by season: %w", err)
		}
		for _, w := range weeks {
			if w.State != week.StateActive && w.State != week.StateClosing {
				continue
			}
			tasks = append(tasks, recalcTask{ref: WeekRef{LeagueID: l.ID, SeasonID: sn.ID, WeekNumber: w.Number}})
		}
	}
	result.TaskCount = len(tasks)
	result.SkippedCount = len(result.Tasks)

	workerCount := input.MaxWorkers
	if workerCount <= 0 || workerCount > s.maxWorkers {
		workerCount = s.maxWorkers
	}
	result.WorkerCount = min(workerCount, max(len(tasks), 1))
	if len(tasks) == 0 {
		return result, nil
	}

	pool, err := ants.NewPool(result.WorkerCount)
	if err != nil {
		return RecalculateResult{}, fmt.Errorf("create worker pool: %w", err)
	}
	defer pool.Release()

	results := make(chan RecalculateTaskResult, len(tasks))
	var successCount atomic.Int32
	var failedCount atomic.Int32

	var workers sync.WaitGroup
	for _, task := range tasks {
		workers.Add(1)
		if err := pool.Submit(func() {
			defer workers.Done()

			start := time.Now()
			row := RecalculateTaskResult{
				LeagueID:   task.ref.LeagueID,
				SeasonID:   task.ref.SeasonID,
				WeekNumber: task.ref.WeekNumber,
				Status:     taskStatusSuccess,
			}
			if _, err := s.weeks.recalculateUnattended(ctx, task.ref); err != nil {
				row.Status = taskStatusFailed
				row.Message = err.Error()
				failedCount.Add(1)
				s.logger.WarnContext(ctx, "standings recalculation failed",
					"league_id", task.ref.LeagueID, "season_id", task.ref.SeasonID, "week", task.ref.WeekNumber, "error", err)
			} else {
				successCount.Add(1)
			}
			row.DurationMs = time.Since(start).Milliseconds()
			results <- row
		}); err != nil {
			workers.Done()
			return RecalculateResult{}, fmt.Errorf("submit task to worker pool: %w", err)
		}
	}

	workers.Wait()
	close(results)

	for row := range results {
		result.Tasks = append(result.Tasks, row)
	}
	sort.SliceStable(result.Tasks, func(i, j int) bool {
		a, b := result.Tasks[i], result.Tasks[j]
		if a.LeagueID != b.LeagueID {
			return a.LeagueID < b.LeagueID
		}
		return a.WeekNumber < b.WeekNumber
	})

	result.SuccessCount = int(successCount.Load())
	result.FailedCount = int(failedCount.Load())
	s.logger.InfoContext(ctx, "open weeks recalculated",
		"leagues", result.LeagueCount, "tasks", result.TaskCount, "failed", result.FailedCount)
	return result, nil
}

// recalculateUnattended runs RecalculateStandings without an organizer.
func (s *WeekService) recalculateUnattended(ctx context.Context, ref WeekRef) (week.Week, error) {
	ref.ActorID = maintenanceActor
	return mutateWeek(ctx, s.store, ref, nil, func(ctx context.Context, repos txn.Repositories, scope *weekScope) error {
		if !slices.Contains([]week.State{week.StateActive, week.StateClosing}, scope.Week.State) {
			return fmt.Errorf("%w: week %d is %s", week.ErrInvalidState, scope.Week.Number, scope.Week.State)
		}
		return s.recalculate(ctx, repos, scope, ref.ActorID)
	})
}
