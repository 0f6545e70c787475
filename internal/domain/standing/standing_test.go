package standing

import (
	"testing"
	"time"

	"github.com/riskibarqy/box-league/internal/domain/league"
	"github.com/riskibarqy/box-league/internal/domain/match"
	"github.com/riskibarqy/box-league/internal/domain/week"
)

var testNow = time.Date(2026, 3, 9, 21, 0, 0, 0, time.UTC)

func completed(box int, team1, team2 []string, score1, score2 int) match.Match {
	return match.Match{
		BoxNumber: box,
		Team1:     team1,
		Team2:     team2,
		Status:    match.StatusCompleted,
		Games:     []match.GameScore{{Team1: score1, Team2: score2}},
	}
}

func positions(rows []week.StandingRow) map[string]week.StandingRow {
	out := make(map[string]week.StandingRow, len(rows))
	for _, r := range rows {
		out[r.PlayerID] = r
	}
	return out
}

func TestComputeRanksByTiebreakers(t *testing.T) {
	w := week.Week{
		State: week.StateClosing,
		Rules: league.DefaultRules(),
		Boxes: []week.BoxAssignment{
			{BoxNumber: 1, PlayerIDs: []string{"a", "b", "c", "d"}, LineupIDs: []string{"a", "b", "c", "d"}},
		},
	}
	matches := []match.Match{
		completed(1, []string{"a", "b"}, []string{"c", "d"}, 11, 5),
		completed(1, []string{"a", "c"}, []string{"b", "d"}, 11, 9),
		completed(1, []string{"a", "d"}, []string{"b", "c"}, 7, 11),
		{BoxNumber: 1, Team1: []string{"a", "b"}, Team2: []string{"c", "d"}, Status: match.StatusDisputed, Games: []match.GameScore{{Team1: 0, Team2: 11}}},
	}

	snapshot := Compute(w, matches, OptionsFromRules(w.Rules, nil, testNow))
	rows := positions(snapshot.Rows)

	want := map[string]int{"b": 1, "a": 2, "c": 3, "d": 4}
	for id, pos := range want {
		if rows[id].Position != pos {
			t.Fatalf("player %s: got position %d want %d (rows=%+v)", id, rows[id].Position, pos, snapshot.Rows)
		}
	}
	if rows["a"].Wins != 2 || rows["a"].PointsFor != 29 || rows["a"].PointsAgainst != 25 {
		t.Fatalf("unexpected tally for a: %+v", rows["a"])
	}
	if rows["b"].MovementHint != HintPromotionZone || rows["d"].MovementHint != HintRelegationZone {
		t.Fatalf("unexpected hints: b=%q d=%q", rows["b"].MovementHint, rows["d"].MovementHint)
	}
}

func TestComputeHeadToHead(t *testing.T) {
	w := week.Week{
		Rules: league.DefaultRules(),
		Boxes: []week.BoxAssignment{
			{BoxNumber: 1, PlayerIDs: []string{"a", "b", "c", "d"}, LineupIDs: []string{"a", "b", "c", "d"}},
		},
	}
	matches := []match.Match{
		completed(1, []string{"b", "c"}, []string{"a", "d"}, 11, 9),
		completed(1, []string{"a", "c"}, []string{"b", "d"}, 11, 9),
	}

	opts := Options{Tiebreakers: []league.Tiebreaker{league.TiebreakWins, league.TiebreakHeadToHead}, Now: testNow}
	rows := positions(Compute(w, matches, opts).Rows)
	if rows["c"].Position != 1 {
		t.Fatalf("c won both matches and should lead, got %+v", rows["c"])
	}
	// a and b split their direct meetings, so ids decide.
	if rows["a"].Position != 2 || rows["b"].Position != 3 {
		t.Fatalf("unexpected order: a=%d b=%d", rows["a"].Position, rows["b"].Position)
	}
}

func TestComputeAbsenteePolicies(t *testing.T) {
	rules := league.DefaultRules()
	w := week.Week{
		State: week.StateClosing,
		Rules: rules,
		Boxes: []week.BoxAssignment{
			{BoxNumber: 1, PlayerIDs: []string{"e", "f", "g", "h", "i", "j"}, LineupIDs: []string{"e", "s", "h", "i"}},
		},
		Absences: []week.Absence{
			{PlayerID: "f", BoxNumber: 1, SubstituteID: "s", Policy: league.AbsenteeGhostScore},
			{PlayerID: "g", BoxNumber: 1, Policy: league.AbsenteeAveragePoints},
			{PlayerID: "j", BoxNumber: 1, Policy: league.AbsenteeAutoRelegate},
		},
	}
	matches := []match.Match{
		completed(1, []string{"e", "s"}, []string{"h", "i"}, 11, 3),
	}
	history := []week.StandingRow{
		{PlayerID: "g", MatchesPlayed: 4, Wins: 3, PointsFor: 40, PointsAgainst: 30},
	}

	snapshot := Compute(w, matches, OptionsFromRules(rules, history, testNow))
	rows := positions(snapshot.Rows)

	if len(snapshot.Rows) != 6 {
		t.Fatalf("expected 6 rows, got %d", len(snapshot.Rows))
	}
	if rows["s"].SubstituteFor != "f" || rows["s"].Wins != 1 {
		t.Fatalf("substitute row should carry its own results for f: %+v", rows["s"])
	}
	if _, ok := rows["f"]; ok {
		t.Fatalf("covered absentee should not get its own row")
	}

	g := rows["g"]
	if g.Synthetic || g.MatchesPlayed != 1 || g.Wins != 1 || g.PointsFor != 10 || g.PointsAgainst != 8 {
		t.Fatalf("unexpected averaged row: %+v", g)
	}
	if rows["e"].Position != 1 || rows["s"].Position != 2 || g.Position != 3 {
		t.Fatalf("unexpected order e=%d s=%d g=%d", rows["e"].Position, rows["s"].Position, g.Position)
	}

	j := rows["j"]
	if !j.ForceRelegate || !j.WasAbsent || j.Position != 6 {
		t.Fatalf("auto relegated absentee should rank last: %+v", j)
	}
}

func TestComputeAverageFallsBackToGhostAndFreeze(t *testing.T) {
	w := week.Week{
		Rules: league.DefaultRules(),
		Boxes: []week.BoxAssignment{
			{BoxNumber: 2, PlayerIDs: []string{"a", "b", "c", "d", "e", "f"}, LineupIDs: []string{"a", "b", "c", "d"}},
		},
		Absences: []week.Absence{
			{PlayerID: "e", BoxNumber: 2, Policy: league.AbsenteeAveragePoints},
			{PlayerID: "f", BoxNumber: 2, Policy: league.AbsenteeFreeze},
		},
	}

	rows := positions(Compute(w, nil, Options{Tiebreakers: []league.Tiebreaker{league.TiebreakWins}, Now: testNow}).Rows)
	if rows["e"].Policy != league.AbsenteeGhostScore || !rows["e"].Synthetic {
		t.Fatalf("average without history should fall back to ghost: %+v", rows["e"])
	}
	if !rows["f"].Frozen || rows["f"].MovementHint != "" {
		t.Fatalf("frozen absentee should carry no hint: %+v", rows["f"])
	}
}
