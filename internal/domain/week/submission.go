package week

import "fmt"

type SubmissionCheck struct {
	Submittable  bool
	Blockers     []string
	EffectiveIDs []string
}

// EffectivePlayerIDs replaces each absent player with their substitute.
func EffectivePlayerIDs(playerIDs []string, absences []Absence) []string {
	subs := make(map[string]string, len(absences))
	for _, a := range absences {
		if a.SubstituteID != "" {
			subs[a.PlayerID] = a.SubstituteID
		}
	}
	out := make([]string, 0, len(playerIDs))
	for _, id := range playerIDs {
		if sub, ok := subs[id]; ok {
			out = append(out, sub)
			continue
		}
		out = append(out, id)
	}
	return out
}

// SubmissionEligibility decides whether a match may be pushed to the external rating
// service. An absentee without a substitute blocks it, and when linkage is required
// every substitute must have a linked external rating account.
func SubmissionEligibility(playerIDs []string, absences []Absence, requireLink bool, linked func(playerID string) bool) SubmissionCheck {
	byPlayer := make(map[string]Absence, len(absences))
	bySub := make(map[string]Absence, len(absences))
	for _, a := range absences {
		byPlayer[a.PlayerID] = a
		if a.SubstituteID != "" {
			bySub[a.SubstituteID] = a
		}
	}

	out := SubmissionCheck{EffectiveIDs: EffectivePlayerIDs(playerIDs, absences)}
	for _, id := range playerIDs {
		substitute := ""
		if a, ok := byPlayer[id]; ok {
			if a.SubstituteID == "" {
				out.Blockers = append(out.Blockers, fmt.Sprintf("absent player %s has no substitute", id))
				continue
			}
			substitute = a.SubstituteID
		} else if _, ok := bySub[id]; ok {
			substitute = id
		}
		if substitute != "" && requireLink && (linked == nil || !linked(substitute)) {
			out.Blockers = append(out.Blockers, fmt.Sprintf("substitute %s has no linked rating account", substitute))
		}
	}
	out.Submittable = len(out.Blockers) == 0
	return out
}
