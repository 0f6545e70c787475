package memory

import (
	"context"
	"fmt"
	"slices"

	"github.com/riskibarqy/box-league/internal/domain/match"
)

type MatchRepository struct {
	v view
}

func (r *MatchRepository) CreateMany(_ context.Context, matches []match.Match) error {
	return r.v.write(func(d *data) error {
		for _, m := range matches {
			if _, exists := d.matches[m.ID]; exists {
				return fmt.Errorf("match already exists: %s", m.ID)
			}
		}
		for _, m := range matches {
			d.matches[m.ID] = m.Clone()
			d.matchOrder = append(d.matchOrder, m.ID)
		}
		return nil
	})
}

func (r *MatchRepository) ListByWeek(_ context.Context, seasonID string, weekNumber int) ([]match.Match, error) {
	var out []match.Match
	r.v.read(func(d *data) {
		for _, id := range d.matchOrder {
			m := d.matches[id]
			if m.SeasonID == seasonID && m.WeekNumber == weekNumber {
				out = append(out, m.Clone())
			}
		}
	})
	return out, nil
}

func (r *MatchRepository) GetByID(_ context.Context, matchID string) (match.Match, bool, error) {
	var (
		out match.Match
		ok  bool
	)
	r.v.read(func(d *data) {
		var m match.Match
		m, ok = d.matches[matchID]
		if ok {
			out = m.Clone()
		}
	})
	return out, ok, nil
}

func (r *MatchRepository) Update(_ context.Context, m match.Match) error {
	return r.v.write(func(d *data) error {
		if _, exists := d.matches[m.ID]; !exists {
			return fmt.Errorf("match not found: %s", m.ID)
		}
		d.matches[m.ID] = m.Clone()
		return nil
	})
}

func (r *MatchRepository) DeleteByWeek(_ context.Context, seasonID string, weekNumber int) (int, error) {
	deleted := 0
	err := r.v.write(func(d *data) error {
		d.matchOrder = slices.DeleteFunc(d.matchOrder, func(id string) bool {
			m := d.matches[id]
			if m.SeasonID != seasonID || m.WeekNumber != weekNumber {
				return false
			}
			delete(d.matches, id)
			deleted++
			return true
		})
		return nil
	})
	return deleted, err
}

func (r *MatchRepository) ReplaceParticipant(_ context.Context, seasonID string, weekNumber, boxNumber int, fromID, toID string) (int, error) {
	updated := 0
	err := r.v.write(func(d *data) error {
		for _, id := range d.matchOrder {
			m := d.matches[id]
			if m.SeasonID != seasonID || m.WeekNumber != weekNumber || m.BoxNumber != boxNumber {
				continue
			}
			if m.Status == match.StatusCompleted || m.Status == match.StatusCancelled {
				continue
			}
			changed := false
			for _, ids := range [][]string{m.Team1, m.Team2, m.Sitting} {
				if idx := slices.Index(ids, fromID); idx >= 0 {
					ids[idx] = toID
					changed = true
				}
			}
			if changed {
				d.matches[id] = m
				updated++
			}
		}
		return nil
	})
	return updated, err
}
