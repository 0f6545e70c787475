package usecase

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sort"
	"strings"
	"time"

	"github.com/riskibarqy/box-league/internal/domain/match"
	"github.com/riskibarqy/box-league/internal/domain/member"
	"github.com/riskibarqy/box-league/internal/domain/packing"
	"github.com/riskibarqy/box-league/internal/domain/season"
	"github.com/riskibarqy/box-league/internal/domain/txn"
	"github.com/riskibarqy/box-league/internal/domain/week"
	"github.com/riskibarqy/box-league/internal/platform/id"
	"github.com/riskibarqy/box-league/internal/platform/logging"
	"go.opentelemetry.io/otel/attribute"
)

const suggestionRange = 6

type PackingPlan struct {
	PlayerCount int
	Feasible    bool
	Sizes       []int
	Reason      string
	Suggestions []packing.Adjustment
}

type GenerateSeasonInput struct {
	ActorID    string
	LeagueID   string
	Name       string
	StartDate  time.Time
	TotalWeeks int
	// RankedPlayerIDs overrides the rating order when set; best player first.
	RankedPlayerIDs []string
}

type GenerateSeasonResult struct {
	Season season.Season
	Week   week.Week
}

// ScheduleService plans box sizes from the member directory and builds the first week of a season.
type ScheduleService struct {
	store  txn.Store
	idGen  id.Generator
	logger *logging.Logger
	now    func() time.Time
}

func NewScheduleService(store txn.Store, idGen id.Generator, logger *logging.Logger) *ScheduleService {
	if logger == nil {
		logger = logging.Default()
	}
	return &ScheduleService{
		store:  store,
		idGen:  idGen,
		logger: logger,
		now:    time.Now,
	}
}

func PlanFor(n int) PackingPlan {
	plan := PackingPlan{PlayerCount: n}
	sizes, err := packing.Pack(n)
	if err != nil {
		plan.Reason = err.Error()
		plan.Suggestions = packing.Suggest(n, suggestionRange)
		return plan
	}
	plan.Feasible = true
	plan.Sizes = sizes
	return plan
}

// PlanPacking previews how the league's active members would be boxed.
func (s *ScheduleService) PlanPacking(ctx context.Context, leagueID string) (PackingPlan, error) {
	leagueID = strings.TrimSpace(leagueID)
	if leagueID == "" {
		return PackingPlan{}, fmt.Errorf("%w: league id is required", ErrInvalidInput)
	}
	repos := s.store.Repositories()
	if _, err := loadLeague(ctx, repos, leagueID); err != nil {
		return PackingPlan{}, err
	}
	members, err := repos.Members.ListByLeague(ctx, leagueID)
	if err != nil {
		return PackingPlan{}, fmt.Errorf("list members by league: %w", err)
	}
	return PlanFor(len(activeMembers(members))), nil
}

// GenerateSeason creates a setup season and its week 1 draft in one transaction.
func (s *ScheduleService) GenerateSeason(ctx context.Context, input GenerateSeasonInput) (GenerateSeasonResult, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.ScheduleService.GenerateSeason", attribute.String("league.id", input.LeagueID), attribute.Int("season.total_weeks", input.TotalWeeks))
	defer span.End()

	input.LeagueID = strings.TrimSpace(input.LeagueID)
	if input.LeagueID == "" {
		return GenerateSeasonResult{}, fmt.Errorf("%w: league id is required", ErrInvalidInput)
	}
	seasonID, err := s.idGen.NewID()
	if err != nil {
		return GenerateSeasonResult{}, fmt.Errorf("generate season id: %w", err)
	}

	var result GenerateSeasonResult
	err = s.store.RunInTx(ctx, func(ctx context.Context, repos txn.Repositories) error {
		l, err := loadLeague(ctx, repos, input.LeagueID)
		if err != nil {
			return err
		}
		if err := requireOrganizer(l, input.ActorID); err != nil {
			return err
		}
		members, err := repos.Members.ListByLeague(ctx, l.ID)
		if err != nil {
			return fmt.Errorf("list members by league: %w", err)
		}
		ranked, err := rankPlayers(activeMembers(members), input.RankedPlayerIDs)
		if err != nil {
			return err
		}

		sizes, err := packing.Pack(len(ranked))
		if err != nil {
			plan := PlanFor(len(ranked))
			blockers := []string{plan.Reason}
			for _, adj := range plan.Suggestions {
				blockers = append(blockers, fmt.Sprintf("with %d players (%+d) boxes would be %v", adj.PlayerCount, adj.Delta, adj.Sizes))
			}
			return blocked("generate season", blockers)
		}
		if capacity := l.Venue.Capacity(); capacity > 0 && len(sizes) > capacity {
			return blocked("generate season", []string{fmt.Sprintf("%d boxes do not fit the venue capacity of %d", len(sizes), capacity)})
		}
		groups, err := packing.Distribute(ranked, sizes)
		if err != nil {
			return err
		}

		now := s.now().UTC()
		sn, err := season.New(season.NewInput{
			ID:         seasonID,
			LeagueID:   l.ID,
			Name:       input.Name,
			StartDate:  input.StartDate,
			TotalWeeks: input.TotalWeeks,
			Rules:      l.Rules,
		}, now)
		if err != nil {
			return err
		}

		boxes := make([]week.BoxAssignment, 0, len(groups))
		for i, ids := range groups {
			boxes = append(boxes, week.BoxAssignment{BoxNumber: i + 1, PlayerIDs: ids})
		}
		first := sn.Schedule[0]
		w, err := week.NewDraft(l.ID, sn.ID, first.WeekNumber, first.EffectiveDate(), l.Rules, boxes, now, input.ActorID)
		if err != nil {
			return err
		}
		if l.Venue.Capacity() > 0 {
			courts, err := venueCourts(w.BoxNumbers(), l.Venue)
			if err != nil && !errors.Is(err, match.ErrInsufficientCapacity) {
				return err
			}
			w.Courts = courts
		}

		if err := repos.Seasons.Create(ctx, sn); err != nil {
			return fmt.Errorf("create season: %w", err)
		}
		if err := repos.Weeks.Create(ctx, w); err != nil {
			return fmt.Errorf("create week: %w", err)
		}
		result = GenerateSeasonResult{Season: sn, Week: w}
		return nil
	})
	if err != nil {
		return GenerateSeasonResult{}, classify(err)
	}

	s.logger.InfoContext(ctx, "season generated",
		"league_id", input.LeagueID, "season_id", result.Season.ID, "boxes", len(result.Week.Boxes), "weeks", result.Season.TotalWeeks)
	return result, nil
}

func activeMembers(members []member.Member) []member.Member {
	out := make([]member.Member, 0, len(members))
	for _, m := range members {
		if m.Active() {
			out = append(out, m)
		}
	}
	return out
}

// rankPlayers orders members by rating, highest first, with unrated players last
// and earlier joiners ahead on ties. An explicit order may only name active
// members, each once.
func rankPlayers(members []member.Member, explicit []string) ([]string, error) {
	if len(explicit) > 0 {
		active := make(map[string]struct{}, len(members))
		for _, m := range members {
			active[m.PlayerID] = struct{}{}
		}
		seen := make(map[string]struct{}, len(explicit))
		out := make([]string, 0, len(explicit))
		for _, raw := range explicit {
			playerID := strings.TrimSpace(raw)
			if _, ok := active[playerID]; !ok {
				return nil, fmt.Errorf("%w: %s is not an active member", ErrInvalidInput, playerID)
			}
			if _, dup := seen[playerID]; dup {
				return nil, fmt.Errorf("%w: %s", week.ErrDuplicatePlayer, playerID)
			}
			seen[playerID] = struct{}{}
			out = append(out, playerID)
		}
		return out, nil
	}

	sorted := slices.Clone(members)
	sort.SliceStable(sorted, func(i, j int) bool {
		a, b := sorted[i], sorted[j]
		switch {
		case a.Rating != nil && b.Rating == nil:
			return true
		case a.Rating == nil && b.Rating != nil:
			return false
		case a.Rating != nil && *a.Rating != *b.Rating:
			return *a.Rating > *b.Rating
		case !a.JoinedAt.Equal(b.JoinedAt):
			return a.JoinedAt.Before(b.JoinedAt)
		}
		return a.PlayerID < b.PlayerID
	})
	out := make([]string, 0, len(sorted))
	for _, m := range sorted {
		out = append(out, m.PlayerID)
	}
	return out, nil
}
