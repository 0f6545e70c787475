package usecase

import (
	"context"
	"fmt"
	"slices"
	"sort"

	"github.com/riskibarqy/box-league/internal/domain/member"
	"github.com/riskibarqy/box-league/internal/domain/promotion"
	"github.com/riskibarqy/box-league/internal/domain/week"
	"github.com/riskibarqy/box-league/internal/platform/logging"
)

const (
	RepairTierExactAbsence     = "exact_absence"
	RepairTierBoxAbsentee      = "box_absentee"
	RepairTierAnyMissingMember = "any_missing_member"
)

type RosterReplacement struct {
	BoxNumber int
	FromID    string
	ToID      string
	Tier      string
}

// RepairReport lists every id that had to be replaced while building the next roster.
type RepairReport struct {
	Replacements []RosterReplacement
	// Unresolved ids were dropped because no member could take their place.
	Unresolved []string
	Rebalanced []promotion.SuggestedMove
}

func (r RepairReport) Empty() bool {
	return len(r.Replacements) == 0 && len(r.Unresolved) == 0 && len(r.Rebalanced) == 0
}

// nextRoster turns standings of a played week into the following week's boxes.
// Substitutes hand their result back to the player they covered, ids that are
// not league members are repaired, and box sizes are rebalanced.
func nextRoster(
	ctx context.Context,
	logger *logging.Logger,
	src week.Week,
	snapshot week.StandingsSnapshot,
	params promotion.Params,
	members []member.Member,
) ([]week.PlayerMovement, []week.BoxAssignment, RepairReport, error) {
	movements := promotion.Calculate(params, snapshot.Rows)
	movements = creditOriginals(snapshot.Rows, movements)

	boxes := promotion.BuildNextAssignments(movements)
	boxes, report := repairRoster(ctx, logger, src, boxes, members)

	balanced, moves, issues := promotion.Rebalance(boxes)
	if len(issues) > 0 {
		blockers := make([]string, 0, len(issues))
		for _, issue := range issues {
			blockers = append(blockers, fmt.Sprintf("next week box %d would be %s with %d players", issue.BoxNumber, issue.Problem, issue.Size))
		}
		return nil, nil, report, blocked("build next week", blockers)
	}
	if len(moves) > 0 {
		logger.InfoContext(ctx, "next week boxes rebalanced", "season_id", src.SeasonID, "week", src.Number, "moves", len(moves))
	}
	report.Rebalanced = moves
	return movements, balanced, report, nil
}

// creditOriginals rewrites movements earned by substitutes onto the absent player.
func creditOriginals(rows []week.StandingRow, movements []week.PlayerMovement) []week.PlayerMovement {
	covered := make(map[string]string, len(rows))
	for _, r := range rows {
		if r.SubstituteFor != "" {
			covered[r.PlayerID] = r.SubstituteFor
		}
	}
	out := slices.Clone(movements)
	for i := range out {
		if original, ok := covered[out[i].PlayerID]; ok {
			out[i].PlayerID = original
			out[i].WasAbsent = true
		}
	}
	return out
}

func repairRoster(ctx context.Context, logger *logging.Logger, src week.Week, boxes []week.BoxAssignment, members []member.Member) ([]week.BoxAssignment, RepairReport) {
	known := make(map[string]member.Member, len(members))
	for _, m := range members {
		known[m.PlayerID] = m
	}
	placed := make(map[string]struct{})
	for _, b := range boxes {
		for _, playerID := range b.PlayerIDs {
			placed[playerID] = struct{}{}
		}
	}

	directory := slices.Clone(members)
	sort.SliceStable(directory, func(i, j int) bool {
		if !directory[i].JoinedAt.Equal(directory[j].JoinedAt) {
			return directory[i].JoinedAt.Before(directory[j].JoinedAt)
		}
		return directory[i].PlayerID < directory[j].PlayerID
	})

	var report RepairReport
	for bi := range boxes {
		kept := boxes[bi].PlayerIDs[:0]
		for _, playerID := range boxes[bi].PlayerIDs {
			if _, ok := known[playerID]; ok {
				kept = append(kept, playerID)
				continue
			}

			replacement, tier := findReplacement(src, playerID, placed, known, directory)
			if replacement == "" {
				report.Unresolved = append(report.Unresolved, playerID)
				delete(placed, playerID)
				logger.WarnContext(ctx, "roster repair found no member to replace non-member id",
					"season_id", src.SeasonID, "week", src.Number, "box", boxes[bi].BoxNumber, "player_id", playerID)
				continue
			}

			recordRepairFallback(ctx, tier)
			logger.WarnContext(ctx, "roster repair replaced non-member id",
				"season_id", src.SeasonID, "week", src.Number, "box", boxes[bi].BoxNumber,
				"from", playerID, "to", replacement, "tier", tier)
			report.Replacements = append(report.Replacements, RosterReplacement{
				BoxNumber: boxes[bi].BoxNumber,
				FromID:    playerID,
				ToID:      replacement,
				Tier:      tier,
			})
			delete(placed, playerID)
			placed[replacement] = struct{}{}
			kept = append(kept, replacement)
		}
		boxes[bi].PlayerIDs = kept
	}
	return boxes, report
}

// findReplacement walks the fallback tiers in order: the absence the id covered,
// any unplaced absentee of the same box, then roster players and finally any
// active member missing from the next roster.
func findReplacement(src week.Week, playerID string, placed map[string]struct{}, known map[string]member.Member, directory []member.Member) (string, string) {
	available := func(id string) bool {
		if _, ok := placed[id]; ok {
			return false
		}
		_, ok := known[id]
		return ok
	}

	if a, ok := src.AbsenceCoveredBy(playerID); ok && available(a.PlayerID) {
		return a.PlayerID, RepairTierExactAbsence
	}

	if fromBox, ok := boxPlayedIn(src, playerID); ok {
		for _, a := range src.Absences {
			if a.BoxNumber == fromBox && available(a.PlayerID) {
				return a.PlayerID, RepairTierBoxAbsentee
			}
		}
	}

	for _, id := range src.RosterIDs() {
		if available(id) && known[id].Active() {
			return id, RepairTierAnyMissingMember
		}
	}
	for _, m := range directory {
		if m.Active() && available(m.PlayerID) {
			return m.PlayerID, RepairTierAnyMissingMember
		}
	}
	return "", ""
}

func boxPlayedIn(w week.Week, playerID string) (int, bool) {
	if a, ok := w.AbsenceCoveredBy(playerID); ok {
		return a.BoxNumber, true
	}
	for _, b := range w.Boxes {
		if slices.Contains(b.LineupIDs, playerID) {
			return b.BoxNumber, true
		}
	}
	return w.BoxOf(playerID)
}
