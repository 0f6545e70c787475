package eligibility

import (
	"testing"
	"time"

	"github.com/riskibarqy/box-league/internal/domain/league"
	"github.com/riskibarqy/box-league/internal/domain/member"
)

func rating(v float64) *float64 {
	return &v
}

func TestAgeOn(t *testing.T) {
	dob := time.Date(2000, 3, 15, 0, 0, 0, 0, time.UTC)
	tests := []struct {
		now  time.Time
		want int
	}{
		{now: time.Date(2026, 3, 14, 23, 0, 0, 0, time.UTC), want: 25},
		{now: time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC), want: 26},
		{now: time.Date(2026, 12, 1, 0, 0, 0, 0, time.UTC), want: 26},
	}
	for _, tc := range tests {
		if got := AgeOn(dob, tc.now); got != tc.want {
			t.Fatalf("age on %s: got %d want %d", tc.now.Format(time.DateOnly), got, tc.want)
		}
	}
}

func TestCheckJoin(t *testing.T) {
	now := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	dob := time.Date(2010, 6, 1, 0, 0, 0, 0, time.UTC)
	policy := league.JoinPolicy{
		RequireRatingLink: true,
		Rating:            league.RatingBounds{Enforced: true, Min: 3.0, Max: 4.0},
		Age:               league.AgeBounds{Enforced: true, Min: 18, Max: 99},
	}

	res := CheckJoin(policy, Applicant{PlayerID: "p1", Rating: rating(4.5), DateOfBirth: &dob}, true, now)
	if res.Eligible {
		t.Fatalf("expected blockers")
	}
	if len(res.Blockers) != 4 {
		t.Fatalf("expected membership, link, rating and age blockers, got %v", res.Blockers)
	}

	adult := time.Date(1990, 1, 20, 0, 0, 0, 0, time.UTC)
	ok := CheckJoin(policy, Applicant{
		PlayerID:         "p2",
		ExternalRatingID: "dupr-2",
		RatingConsent:    true,
		DateOfBirth:      &adult,
	}, false, now)
	if !ok.Eligible || len(ok.Warnings) != 1 {
		t.Fatalf("missing rating should warn only, got %+v", ok)
	}
}

func TestCheckMidSeasonJoin(t *testing.T) {
	res := CheckMidSeasonJoin(league.JoinPolicy{AllowMidSeasonJoin: true}, 60)
	if !res.Eligible || len(res.Warnings) != 1 {
		t.Fatalf("expected eligible with warning, got %+v", res)
	}
	if CheckMidSeasonJoin(league.JoinPolicy{}, 10).Eligible {
		t.Fatalf("mid-season join should be blocked when disallowed")
	}
}

func TestCheckSubstitute(t *testing.T) {
	active := &member.Member{PlayerID: "s1", Status: member.StatusActive, ExternalRatingID: "dupr-s1", RatingConsent: true}
	base := league.SubstitutePolicy{Allowed: true, Restriction: league.SubstituteSameOrLower}

	tests := []struct {
		name      string
		policy    league.SubstitutePolicy
		candidate SubstituteCandidate
		absentBox int
		eligible  bool
	}{
		{name: "lower box", policy: base, candidate: SubstituteCandidate{PlayerID: "s1", Member: active, HomeBox: 3}, absentBox: 2, eligible: true},
		{name: "higher box", policy: base, candidate: SubstituteCandidate{PlayerID: "s1", Member: active, HomeBox: 1}, absentBox: 2},
		{name: "guest without home box", policy: base, candidate: SubstituteCandidate{PlayerID: "guest"}, absentBox: 1, eligible: true},
		{
			name:      "guest in same box league",
			policy:    league.SubstitutePolicy{Allowed: true, Restriction: league.SubstituteSameBox},
			candidate: SubstituteCandidate{PlayerID: "guest"},
			absentBox: 1,
		},
		{name: "already assigned", policy: base, candidate: SubstituteCandidate{PlayerID: "s1", Member: active, AlreadyAssigned: true, HomeBox: 2}, absentBox: 2},
		{
			name:      "member only",
			policy:    league.SubstitutePolicy{Allowed: true, MemberOnly: true, Restriction: league.SubstituteAnyBox},
			candidate: SubstituteCandidate{PlayerID: "guest"},
			absentBox: 1,
		},
		{
			name:      "same box",
			policy:    league.SubstitutePolicy{Allowed: true, Restriction: league.SubstituteSameBox},
			candidate: SubstituteCandidate{PlayerID: "s1", Member: active, HomeBox: 3},
			absentBox: 2,
		},
		{
			name:      "any box",
			policy:    league.SubstitutePolicy{Allowed: true, RequireRatingLink: true, Restriction: league.SubstituteAnyBox},
			candidate: SubstituteCandidate{PlayerID: "s1", Member: active, HomeBox: 1},
			absentBox: 3,
			eligible:  true,
		},
		{
			name:      "disallowed",
			policy:    league.SubstitutePolicy{Restriction: league.SubstituteAnyBox},
			candidate: SubstituteCandidate{PlayerID: "s1", Member: active},
			absentBox: 1,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			res := CheckSubstitute(tc.policy, tc.candidate, tc.absentBox)
			if res.Eligible != tc.eligible {
				t.Fatalf("eligible=%v want %v (blockers=%v)", res.Eligible, tc.eligible, res.Blockers)
			}
		})
	}
}

func TestPlaceByRating(t *testing.T) {
	boxes := []BoxRating{
		{BoxNumber: 2, Average: rating(3.6)},
		{BoxNumber: 1, Average: rating(4.2)},
		{BoxNumber: 3, Average: rating(3.1)},
		{BoxNumber: 4},
	}

	tests := []struct {
		rating *float64
		want   int
	}{
		{rating: rating(4.5), want: 1},
		{rating: rating(4.2), want: 1},
		{rating: rating(3.8), want: 2},
		{rating: rating(3.2), want: 3},
		{rating: rating(2.5), want: 4},
		{rating: nil, want: 4},
	}
	for _, tc := range tests {
		if got := PlaceByRating(tc.rating, boxes); got != tc.want {
			t.Fatalf("rating %v: got box %d want %d", tc.rating, got, tc.want)
		}
	}
}
