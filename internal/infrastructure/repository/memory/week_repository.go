package memory

import (
	"context"
	"fmt"
	"sort"

	"github.com/riskibarqy/box-league/internal/domain/week"
)

type WeekRepository struct {
	v view
}

func weekKey(seasonID string, number int) string {
	return fmt.Sprintf("%s::%d", seasonID, number)
}

func (r *WeekRepository) Get(_ context.Context, seasonID string, number int) (week.Week, bool, error) {
	var (
		out week.Week
		ok  bool
	)
	r.v.read(func(d *data) {
		var w week.Week
		w, ok = d.weeks[weekKey(seasonID, number)]
		if ok {
			out = w.Clone()
		}
	})
	return out, ok, nil
}

func (r *WeekRepository) ListBySeason(_ context.Context, seasonID string) ([]week.Week, error) {
	var out []week.Week
	r.v.read(func(d *data) {
		for _, w := range d.weeks {
			if w.SeasonID == seasonID {
				out = append(out, w.Clone())
			}
		}
	})
	sort.Slice(out, func(i, j int) bool { return out[i].Number < out[j].Number })
	return out, nil
}

func (r *WeekRepository) Create(_ context.Context, w week.Week) error {
	return r.v.write(func(d *data) error {
		key := weekKey(w.SeasonID, w.Number)
		if _, exists := d.weeks[key]; exists {
			return fmt.Errorf("%w: season=%s week=%d", week.ErrAlreadyExists, w.SeasonID, w.Number)
		}
		d.weeks[key] = w.Clone()
		return nil
	})
}

func (r *WeekRepository) Update(_ context.Context, w week.Week, expectedRevision int64) error {
	return r.v.write(func(d *data) error {
		key := weekKey(w.SeasonID, w.Number)
		current, exists := d.weeks[key]
		if !exists {
			return fmt.Errorf("week not found: season=%s week=%d", w.SeasonID, w.Number)
		}
		if current.Revision != expectedRevision {
			return fmt.Errorf("%w: season=%s week=%d stored=%d expected=%d", week.ErrRevisionConflict, w.SeasonID, w.Number, current.Revision, expectedRevision)
		}
		d.weeks[key] = w.Clone()
		return nil
	})
}
