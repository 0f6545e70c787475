package standing

import (
	"math"
	"slices"
	"sort"
	"time"

	"github.com/riskibarqy/box-league/internal/domain/league"
	"github.com/riskibarqy/box-league/internal/domain/match"
	"github.com/riskibarqy/box-league/internal/domain/week"
)

const (
	HintPromotionZone  = "promotion_zone"
	HintRelegationZone = "relegation_zone"
)

// Options carries the settings used to rank a week. They may be the week's
// frozen rules or the league's live settings when previewing.
type Options struct {
	Tiebreakers     []league.Tiebreaker
	PromotionCount  int
	RelegationCount int
	// History holds standings rows from earlier finalized weeks of the season.
	History []week.StandingRow
	Now     time.Time
}

func OptionsFromRules(rules league.Rules, history []week.StandingRow, now time.Time) Options {
	return Options{
		Tiebreakers:     slices.Clone(rules.Tiebreakers),
		PromotionCount:  rules.PromotionCount,
		RelegationCount: rules.RelegationCount,
		History:         history,
		Now:             now,
	}
}

type tally struct {
	played        int
	wins          int
	losses        int
	pointsFor     int
	pointsAgainst int
}

// Compute ranks every box of the week from its completed matches.
// Substitutes appear under their own id with SubstituteFor set; absentees who
// nobody played for get a row built from their absentee policy.
func Compute(w week.Week, matches []match.Match, opts Options) week.StandingsSnapshot {
	tiebreakers := opts.Tiebreakers
	if len(tiebreakers) == 0 {
		tiebreakers = w.Rules.Tiebreakers
	}

	rows := make([]week.StandingRow, 0, len(w.Boxes)*week.MaxBoxSize)
	for _, box := range w.Boxes {
		boxMatches := completedInBox(matches, box.BoxNumber)
		tallies := tallyMatches(boxMatches)
		boxRows := buildBoxRows(w, box, tallies, opts.History)
		rank(boxRows, tiebreakers, boxMatches)
		applyHints(boxRows, opts.PromotionCount, opts.RelegationCount)
		rows = append(rows, boxRows...)
	}

	return week.StandingsSnapshot{
		ComputedAt:      opts.Now,
		PromotionCount:  opts.PromotionCount,
		RelegationCount: opts.RelegationCount,
		Tiebreakers:     slices.Clone(tiebreakers),
		Rows:            rows,
	}
}

func completedInBox(matches []match.Match, boxNumber int) []match.Match {
	out := make([]match.Match, 0, len(matches))
	for _, m := range matches {
		if m.BoxNumber == boxNumber && m.Status == match.StatusCompleted {
			out = append(out, m)
		}
	}
	return out
}

func tallyMatches(matches []match.Match) map[string]*tally {
	out := make(map[string]*tally)
	get := func(id string) *tally {
		t, ok := out[id]
		if !ok {
			t = &tally{}
			out[id] = t
		}
		return t
	}

	for _, m := range matches {
		points1, points2, _, _ := m.Totals()
		winner := m.Winner()
		for _, id := range m.Team1 {
			t := get(id)
			t.played++
			t.pointsFor += points1
			t.pointsAgainst += points2
			switch winner {
			case 1:
				t.wins++
			case 2:
				t.losses++
			}
		}
		for _, id := range m.Team2 {
			t := get(id)
			t.played++
			t.pointsFor += points2
			t.pointsAgainst += points1
			switch winner {
			case 2:
				t.wins++
			case 1:
				t.losses++
			}
		}
	}
	return out
}

func buildBoxRows(w week.Week, box week.BoxAssignment, tallies map[string]*tally, history []week.StandingRow) []week.StandingRow {
	lineup := w.Lineup(box.BoxNumber)
	frozenBox := w.IsBoxFrozen(box.BoxNumber)

	fromTally := func(playerID string) week.StandingRow {
		row := week.StandingRow{PlayerID: playerID, BoxNumber: box.BoxNumber, Frozen: frozenBox}
		if t, ok := tallies[playerID]; ok {
			row.MatchesPlayed = t.played
			row.Wins = t.wins
			row.Losses = t.losses
			row.PointsFor = t.pointsFor
			row.PointsAgainst = t.pointsAgainst
		}
		return row
	}

	rows := make([]week.StandingRow, 0, len(box.PlayerIDs))
	placed := make(map[string]struct{}, len(box.PlayerIDs))
	var pending []week.Absence
	for _, playerID := range box.PlayerIDs {
		absence, absent := w.AbsenceFor(playerID)
		switch {
		case !absent:
			rows = append(rows, fromTally(playerID))
			placed[playerID] = struct{}{}
		case absence.SubstituteID != "" && slices.Contains(lineup, absence.SubstituteID):
			row := fromTally(absence.SubstituteID)
			row.SubstituteFor = playerID
			rows = append(rows, row)
			placed[absence.SubstituteID] = struct{}{}
		default:
			pending = append(pending, absence)
		}
	}
	for _, playerID := range lineup {
		if _, ok := placed[playerID]; ok {
			continue
		}
		if _, covering := w.AbsenceCoveredBy(playerID); covering {
			continue
		}
		// A no-show recorded after activation is still in the frozen lineup;
		// the absence policy row stands in for it.
		if _, absent := w.AbsenceFor(playerID); absent {
			continue
		}
		rows = append(rows, fromTally(playerID))
	}

	expected := expectedMatches(rows)
	for _, absence := range pending {
		rows = append(rows, policyRow(absence, box.BoxNumber, frozenBox, expected, history))
	}
	return rows
}

func expectedMatches(rows []week.StandingRow) int {
	total, count := 0, 0
	for _, r := range rows {
		if r.Synthetic {
			continue
		}
		total += r.MatchesPlayed
		count++
	}
	if count == 0 {
		return 0
	}
	return int(math.Round(float64(total) / float64(count)))
}

func policyRow(absence week.Absence, boxNumber int, frozenBox bool, expected int, history []week.StandingRow) week.StandingRow {
	policy := absence.Policy
	row := week.StandingRow{
		PlayerID:  absence.PlayerID,
		BoxNumber: boxNumber,
		WasAbsent: true,
		Policy:    policy,
		Synthetic: true,
		Frozen:    frozenBox,
	}

	switch policy {
	case league.AbsenteeFreeze:
		row.Frozen = true
	case league.AbsenteeAutoRelegate:
		row.ForceRelegate = true
	case league.AbsenteeAveragePoints:
		played, wins, pointsFor, pointsAgainst := 0, 0, 0, 0
		for _, h := range history {
			if h.PlayerID != absence.PlayerID || h.Synthetic || h.MatchesPlayed == 0 {
				continue
			}
			played += h.MatchesPlayed
			wins += h.Wins
			pointsFor += h.PointsFor
			pointsAgainst += h.PointsAgainst
		}
		if played == 0 || expected == 0 {
			row.Policy = league.AbsenteeGhostScore
			return row
		}
		scale := float64(expected) / float64(played)
		row.MatchesPlayed = expected
		row.Wins = int(math.Round(float64(wins) * scale))
		row.Losses = expected - row.Wins
		row.PointsFor = int(math.Round(float64(pointsFor) * scale))
		row.PointsAgainst = int(math.Round(float64(pointsAgainst) * scale))
		// averaged rows rank alongside real results
		row.Synthetic = false
	}
	return row
}

// ghost reports rows that always rank below players with real or averaged results.
func ghost(r week.StandingRow) bool {
	return r.Synthetic
}

func rank(rows []week.StandingRow, tiebreakers []league.Tiebreaker, matches []match.Match) {
	h2h := headToHead(matches)
	sort.SliceStable(rows, func(i, j int) bool {
		a, b := rows[i], rows[j]
		if ghost(a) != ghost(b) {
			return !ghost(a)
		}
		for _, tb := range tiebreakers {
			switch tb {
			case league.TiebreakWins:
				if a.Wins != b.Wins {
					return a.Wins > b.Wins
				}
			case league.TiebreakPointDifferential:
				if a.PointDifferential() != b.PointDifferential() {
					return a.PointDifferential() > b.PointDifferential()
				}
			case league.TiebreakPointsFor:
				if a.PointsFor != b.PointsFor {
					return a.PointsFor > b.PointsFor
				}
			case league.TiebreakHeadToHead:
				ab, ba := h2h[pair{a.PlayerID, b.PlayerID}], h2h[pair{b.PlayerID, a.PlayerID}]
				if ab != ba {
					return ab > ba
				}
			}
		}
		return a.PlayerID < b.PlayerID
	})
	for i := range rows {
		rows[i].Position = i + 1
	}
}

type pair struct {
	winner string
	loser  string
}

// headToHead counts wins of one player over another when they were on opposite teams.
func headToHead(matches []match.Match) map[pair]int {
	out := make(map[pair]int)
	for _, m := range matches {
		var winners, losers []string
		switch m.Winner() {
		case 1:
			winners, losers = m.Team1, m.Team2
		case 2:
			winners, losers = m.Team2, m.Team1
		default:
			continue
		}
		for _, w := range winners {
			for _, l := range losers {
				out[pair{w, l}]++
			}
		}
	}
	return out
}

func applyHints(rows []week.StandingRow, promotionCount, relegationCount int) {
	movable := 0
	for _, r := range rows {
		if !r.Frozen {
			movable++
		}
	}
	pos := 0
	for i := range rows {
		rows[i].MovementHint = ""
		if rows[i].Frozen {
			continue
		}
		pos++
		switch {
		case pos <= promotionCount:
			rows[i].MovementHint = HintPromotionZone
		case pos > movable-relegationCount || rows[i].ForceRelegate:
			rows[i].MovementHint = HintRelegationZone
		}
	}
}
