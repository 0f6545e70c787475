package league

import (
	"errors"
	"fmt"
	"slices"
)

var ErrInvalidRules = errors.New("invalid league rules")

// AbsenteePolicy decides the standing row of a player who did not play.
type AbsenteePolicy string

const (
	AbsenteeFreeze        AbsenteePolicy = "freeze"
	AbsenteeGhostScore    AbsenteePolicy = "ghost_score"
	AbsenteeAveragePoints AbsenteePolicy = "average_points"
	AbsenteeAutoRelegate  AbsenteePolicy = "auto_relegate"
)

func (p AbsenteePolicy) Valid() bool {
	switch p {
	case AbsenteeFreeze, AbsenteeGhostScore, AbsenteeAveragePoints, AbsenteeAutoRelegate:
		return true
	default:
		return false
	}
}

func ParseAbsenteePolicy(raw string) (AbsenteePolicy, error) {
	p := AbsenteePolicy(raw)
	if !p.Valid() {
		return "", fmt.Errorf("%w: unknown absentee policy %q", ErrInvalidRules, raw)
	}
	return p, nil
}

// SubstituteRestriction limits which box a substitute may come from.
type SubstituteRestriction string

const (
	SubstituteSameBox     SubstituteRestriction = "same_box"
	SubstituteSameOrLower SubstituteRestriction = "same_or_lower"
	SubstituteAnyBox      SubstituteRestriction = "any"
)

func (r SubstituteRestriction) Valid() bool {
	switch r {
	case SubstituteSameBox, SubstituteSameOrLower, SubstituteAnyBox:
		return true
	default:
		return false
	}
}

type Tiebreaker string

const (
	TiebreakWins              Tiebreaker = "wins"
	TiebreakPointDifferential Tiebreaker = "point_differential"
	TiebreakPointsFor         Tiebreaker = "points_for"
	TiebreakHeadToHead        Tiebreaker = "head_to_head"
)

func (t Tiebreaker) Valid() bool {
	switch t {
	case TiebreakWins, TiebreakPointDifferential, TiebreakPointsFor, TiebreakHeadToHead:
		return true
	default:
		return false
	}
}

type GameFormat struct {
	PointsToWin int
	WinBy       int
	BestOf      int
}

type SubstitutePolicy struct {
	Allowed           bool
	MaxPerSeason      int
	MemberOnly        bool
	RequireRatingLink bool
	Restriction       SubstituteRestriction
}

type RatingBounds struct {
	Enforced bool
	Min      float64
	Max      float64
}

type AgeBounds struct {
	Enforced bool
	Min      int
	Max      int
}

type JoinPolicy struct {
	RequireRatingLink  bool
	Rating             RatingBounds
	Age                AgeBounds
	AllowMidSeasonJoin bool
}

// Rules is the fully populated rule set frozen into seasons and weeks.
// Every field carries a concrete value; consumers never check for unset values.
type Rules struct {
	PromotionCount  int
	RelegationCount int
	Tiebreakers     []Tiebreaker
	Format          GameFormat
	AbsenteePolicy  AbsenteePolicy
	Substitutes     SubstitutePolicy
	Join            JoinPolicy
	// RequireRatingLinkForSubmission gates external rating submission on linked ids.
	RequireRatingLinkForSubmission bool
}

func DefaultRules() Rules {
	return Rules{
		PromotionCount:  1,
		RelegationCount: 1,
		Tiebreakers: []Tiebreaker{
			TiebreakWins,
			TiebreakPointDifferential,
			TiebreakHeadToHead,
			TiebreakPointsFor,
		},
		Format: GameFormat{
			PointsToWin: 11,
			WinBy:       2,
			BestOf:      1,
		},
		AbsenteePolicy: AbsenteeGhostScore,
		Substitutes: SubstitutePolicy{
			Allowed:      true,
			MaxPerSeason: 3,
			MemberOnly:   false,
			Restriction:  SubstituteSameOrLower,
		},
		Join: JoinPolicy{
			AllowMidSeasonJoin: true,
		},
	}
}

func (r Rules) Validate() error {
	if r.PromotionCount < 0 || r.PromotionCount > 3 {
		return fmt.Errorf("%w: promotion count must be between 0 and 3, got %d", ErrInvalidRules, r.PromotionCount)
	}
	if r.RelegationCount < 0 || r.RelegationCount > 3 {
		return fmt.Errorf("%w: relegation count must be between 0 and 3, got %d", ErrInvalidRules, r.RelegationCount)
	}
	if r.PromotionCount+r.RelegationCount > 4 {
		return fmt.Errorf("%w: promotion+relegation cannot exceed the minimum box size 4", ErrInvalidRules)
	}
	if len(r.Tiebreakers) == 0 {
		return fmt.Errorf("%w: at least one tiebreaker is required", ErrInvalidRules)
	}
	seen := make(map[Tiebreaker]struct{}, len(r.Tiebreakers))
	for _, t := range r.Tiebreakers {
		if !t.Valid() {
			return fmt.Errorf("%w: unknown tiebreaker %q", ErrInvalidRules, t)
		}
		if _, ok := seen[t]; ok {
			return fmt.Errorf("%w: duplicate tiebreaker %q", ErrInvalidRules, t)
		}
		seen[t] = struct{}{}
	}
	if r.Format.PointsToWin < 1 {
		return fmt.Errorf("%w: points to win must be > 0", ErrInvalidRules)
	}
	if r.Format.WinBy < 1 {
		return fmt.Errorf("%w: win by must be > 0", ErrInvalidRules)
	}
	if r.Format.BestOf < 1 || r.Format.BestOf%2 == 0 {
		return fmt.Errorf("%w: best of must be a positive odd number, got %d", ErrInvalidRules, r.Format.BestOf)
	}
	if !r.AbsenteePolicy.Valid() {
		return fmt.Errorf("%w: unknown absentee policy %q", ErrInvalidRules, r.AbsenteePolicy)
	}
	if !r.Substitutes.Restriction.Valid() {
		return fmt.Errorf("%w: unknown substitute restriction %q", ErrInvalidRules, r.Substitutes.Restriction)
	}
	if r.Substitutes.MaxPerSeason < 0 {
		return fmt.Errorf("%w: max substitutes per season must be >= 0", ErrInvalidRules)
	}
	if r.Join.Rating.Enforced && r.Join.Rating.Min > r.Join.Rating.Max {
		return fmt.Errorf("%w: rating min %.2f exceeds max %.2f", ErrInvalidRules, r.Join.Rating.Min, r.Join.Rating.Max)
	}
	if r.Join.Age.Enforced && r.Join.Age.Min > r.Join.Age.Max {
		return fmt.Errorf("%w: age min %d exceeds max %d", ErrInvalidRules, r.Join.Age.Min, r.Join.Age.Max)
	}

	return nil
}

func (r Rules) Clone() Rules {
	out := r
	out.Tiebreakers = slices.Clone(r.Tiebreakers)
	return out
}
