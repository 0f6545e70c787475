package memory

import (
	"context"
	"fmt"
	"sort"

	"github.com/riskibarqy/box-league/internal/domain/member"
)

type MemberRepository struct {
	v view
}

func memberKey(leagueID, playerID string) string {
	return leagueID + "::" + playerID
}

func (r *MemberRepository) ListByLeague(_ context.Context, leagueID string) ([]member.Member, error) {
	var out []member.Member
	r.v.read(func(d *data) {
		for _, m := range d.members {
			if m.LeagueID == leagueID {
				out = append(out, m)
			}
		}
	})
	sort.Slice(out, func(i, j int) bool { return out[i].PlayerID < out[j].PlayerID })
	return out, nil
}

func (r *MemberRepository) Get(_ context.Context, leagueID, playerID string) (member.Member, bool, error) {
	var (
		out member.Member
		ok  bool
	)
	r.v.read(func(d *data) {
		out, ok = d.members[memberKey(leagueID, playerID)]
	})
	return out, ok, nil
}

func (r *MemberRepository) Save(_ context.Context, m member.Member) error {
	return r.v.write(func(d *data) error {
		d.members[memberKey(m.LeagueID, m.PlayerID)] = m
		return nil
	})
}

func (r *MemberRepository) IncrementSubstitutesUsed(_ context.Context, leagueID, playerID string, delta int) (int, error) {
	var total int
	err := r.v.write(func(d *data) error {
		key := memberKey(leagueID, playerID)
		m, ok := d.members[key]
		if !ok {
			return fmt.Errorf("member not found: league=%s player=%s", leagueID, playerID)
		}
		m.SubstitutesUsed += delta
		d.members[key] = m
		total = m.SubstitutesUsed
		return nil
	})
	return total, err
}
