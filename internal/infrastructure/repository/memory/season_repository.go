package memory

import (
	"context"
	"fmt"
	"sort"

	"github.com/riskibarqy/box-league/internal/domain/season"
)

type SeasonRepository struct {
	v view
}

func (r *SeasonRepository) GetByID(_ context.Context, seasonID string) (season.Season, bool, error) {
	var (
		out season.Season
		ok  bool
	)
	r.v.read(func(d *data) {
		var s season.Season
		s, ok = d.seasons[seasonID]
		if ok {
			out = s.Clone()
		}
	})
	return out, ok, nil
}

func (r *SeasonRepository) ListByLeague(_ context.Context, leagueID string) ([]season.Season, error) {
	var out []season.Season
	r.v.read(func(d *data) {
		for _, s := range d.seasons {
			if s.LeagueID == leagueID {
				out = append(out, s.Clone())
			}
		}
	})
	sort.Slice(out, func(i, j int) bool {
		if !out[i].StartDate.Equal(out[j].StartDate) {
			return out[i].StartDate.Before(out[j].StartDate)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (r *SeasonRepository) Create(_ context.Context, s season.Season) error {
	return r.v.write(func(d *data) error {
		if _, exists := d.seasons[s.ID]; exists {
			return fmt.Errorf("season already exists: %s", s.ID)
		}
		d.seasons[s.ID] = s.Clone()
		return nil
	})
}

func (r *SeasonRepository) Update(_ context.Context, s season.Season) error {
	return r.v.write(func(d *data) error {
		if _, exists := d.seasons[s.ID]; !exists {
			return fmt.Errorf("season not found: %s", s.ID)
		}
		d.seasons[s.ID] = s.Clone()
		return nil
	})
}
