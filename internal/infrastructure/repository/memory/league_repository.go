package memory

import (
	"context"
	"slices"

	"github.com/riskibarqy/box-league/internal/domain/league"
)

type LeagueRepository struct {
	v view
}

func (r *LeagueRepository) List(_ context.Context) ([]league.League, error) {
	var out []league.League
	r.v.read(func(d *data) {
		out = make([]league.League, 0, len(d.leagueOrder))
		for _, id := range d.leagueOrder {
			out = append(out, d.leagues[id].Clone())
		}
	})
	return out, nil
}

func (r *LeagueRepository) GetByID(_ context.Context, leagueID string) (league.League, bool, error) {
	var (
		out league.League
		ok  bool
	)
	r.v.read(func(d *data) {
		var l league.League
		l, ok = d.leagues[leagueID]
		if ok {
			out = l.Clone()
		}
	})
	return out, ok, nil
}

func (r *LeagueRepository) Save(_ context.Context, l league.League) error {
	return r.v.write(func(d *data) error {
		if _, exists := d.leagues[l.ID]; !exists && !slices.Contains(d.leagueOrder, l.ID) {
			d.leagueOrder = append(d.leagueOrder, l.ID)
		}
		d.leagues[l.ID] = l.Clone()
		return nil
	})
}
