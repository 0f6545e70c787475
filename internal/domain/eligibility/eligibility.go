package eligibility

import (
	"fmt"
	"sort"
	"time"

	"github.com/riskibarqy/box-league/internal/domain/league"
	"github.com/riskibarqy/box-league/internal/domain/member"
)

const midSeasonWarnPercent = 50.0

// Result collects blocking reasons and soft warnings. Eligible is true when nothing blocks.
type Result struct {
	Eligible bool
	Blockers []string
	Warnings []string
}

func (r *Result) block(format string, args ...any) {
	r.Blockers = append(r.Blockers, fmt.Sprintf(format, args...))
}

func (r *Result) warn(format string, args ...any) {
	r.Warnings = append(r.Warnings, fmt.Sprintf(format, args...))
}

func (r Result) done() Result {
	r.Eligible = len(r.Blockers) == 0
	return r
}

type Applicant struct {
	PlayerID         string
	Rating           *float64
	ExternalRatingID string
	RatingConsent    bool
	DateOfBirth      *time.Time
}

// CheckJoin applies the league join policy to an applicant.
func CheckJoin(policy league.JoinPolicy, applicant Applicant, hasActiveMembership bool, now time.Time) Result {
	var r Result
	if hasActiveMembership {
		r.block("player %s is already an active member", applicant.PlayerID)
	}
	if policy.RequireRatingLink && (applicant.ExternalRatingID == "" || !applicant.RatingConsent) {
		r.block("a linked rating account with consent is required")
	}

	if policy.Rating.Enforced {
		if applicant.Rating == nil {
			r.warn("league has rating requirements but no rating is on file")
		} else {
			rating := *applicant.Rating
			if rating < policy.Rating.Min {
				r.block("rating %.2f is below the minimum %.2f", rating, policy.Rating.Min)
			}
			if rating > policy.Rating.Max {
				r.block("rating %.2f is above the maximum %.2f", rating, policy.Rating.Max)
			}
		}
	}

	if policy.Age.Enforced {
		if applicant.DateOfBirth == nil {
			r.block("date of birth is required for this league")
		} else {
			age := AgeOn(*applicant.DateOfBirth, now)
			if age < policy.Age.Min {
				r.block("age %d is below the minimum %d", age, policy.Age.Min)
			}
			if age > policy.Age.Max {
				r.block("age %d is above the maximum %d", age, policy.Age.Max)
			}
		}
	}

	return r.done()
}

// CheckMidSeasonJoin gates joining a season already in progress.
func CheckMidSeasonJoin(policy league.JoinPolicy, percentComplete float64) Result {
	var r Result
	if !policy.AllowMidSeasonJoin {
		r.block("this league does not accept players mid-season")
	}
	if percentComplete > midSeasonWarnPercent {
		r.warn("season is %.0f%% complete, new players start in the bottom box", percentComplete)
	}
	return r.done()
}

type SubstituteCandidate struct {
	PlayerID string
	// Member is nil when the candidate is not a member of the league.
	Member          *member.Member
	AlreadyAssigned bool
	// HomeBox is the candidate's current ladder box, 0 when unknown.
	HomeBox int
}

// CheckSubstitute decides whether a candidate may stand in for a player of absentBox.
// Higher box numbers are lower ranked boxes. Under same_or_lower a candidate
// with no home box (HomeBox 0, e.g. a guest) is accepted for any box; under
// same_box it is always refused.
func CheckSubstitute(policy league.SubstitutePolicy, candidate SubstituteCandidate, absentBox int) Result {
	var r Result
	if !policy.Allowed {
		r.block("substitutes are not allowed in this league")
	}
	if candidate.AlreadyAssigned {
		r.block("player %s is already playing this week", candidate.PlayerID)
	}
	if policy.MemberOnly && (candidate.Member == nil || !candidate.Member.Active()) {
		r.block("substitutes must be active league members")
	}
	if policy.RequireRatingLink && (candidate.Member == nil || !candidate.Member.RatingLinked()) {
		r.block("substitute needs a linked rating account with consent")
	}

	switch policy.Restriction {
	case league.SubstituteSameBox:
		if candidate.HomeBox != absentBox {
			r.block("substitute must come from box %d", absentBox)
		}
	case league.SubstituteSameOrLower:
		if candidate.HomeBox != 0 && candidate.HomeBox < absentBox {
			r.block("substitute from box %d ranks above box %d", candidate.HomeBox, absentBox)
		}
	}

	return r.done()
}

// AgeOn returns completed years between dob and now.
func AgeOn(dob, now time.Time) int {
	dob = dob.In(now.Location())
	years := now.Year() - dob.Year()
	if now.Month() < dob.Month() || (now.Month() == dob.Month() && now.Day() < dob.Day()) {
		years--
	}
	return years
}

type BoxRating struct {
	BoxNumber int
	// Average is nil when no player in the box has a rating.
	Average *float64
}

// PlaceByRating returns the first box, highest average first, whose average the
// rating meets. Players without a rating, or below every box, go to the lowest box.
func PlaceByRating(rating *float64, boxes []BoxRating) int {
	if len(boxes) == 0 {
		return 0
	}
	lowest := boxes[0].BoxNumber
	for _, b := range boxes {
		lowest = max(lowest, b.BoxNumber)
	}
	if rating == nil {
		return lowest
	}

	rated := make([]BoxRating, 0, len(boxes))
	for _, b := range boxes {
		if b.Average != nil {
			rated = append(rated, b)
		}
	}
	sort.SliceStable(rated, func(i, j int) bool { return *rated[i].Average > *rated[j].Average })
	for _, b := range rated {
		if *rating >= *b.Average {
			return b.BoxNumber
		}
	}
	return lowest
}

// AverageRating averages the known ratings of the given members.
func AverageRating(members []member.Member) *float64 {
	sum, count := 0.0, 0
	for _, m := range members {
		if m.Rating != nil {
			sum += *m.Rating
			count++
		}
	}
	if count == 0 {
		return nil
	}
	avg := sum / float64(count)
	return &avg
}
