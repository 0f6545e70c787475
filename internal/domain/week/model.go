package week

import (
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/riskibarqy/box-league/internal/domain/league"
	"github.com/riskibarqy/box-league/internal/domain/match"
)

var (
	ErrInvalidState       = errors.New("week is not in a valid state for this operation")
	ErrInvalidBoxSize     = errors.New("box must hold 4 to 6 players")
	ErrDuplicatePlayer    = errors.New("player assigned more than once")
	ErrRevisionConflict   = errors.New("week revision conflict")
	ErrAlreadyExists      = errors.New("week already exists")
	ErrPlayerNotInWeek    = errors.New("player is not assigned to this week")
	ErrDuplicateAbsence   = errors.New("absence already declared")
	ErrAbsenceNotFound    = errors.New("absence not found")
	ErrAttendanceLocked   = errors.New("attendance is locked")
	ErrSubstituteConflict = errors.New("substitute conflict")
	ErrBoxNotFound        = errors.New("box not found")
	ErrInvalidCourts      = errors.New("invalid court assignment")
)

const (
	MinBoxSize = 4
	MaxBoxSize = 6
)

type State string

const (
	StateDraft     State = "draft"
	StateActive    State = "active"
	StateClosing   State = "closing"
	StateFinalized State = "finalized"
)

func (s State) Valid() bool {
	switch s {
	case StateDraft, StateActive, StateClosing, StateFinalized:
		return true
	default:
		return false
	}
}

func ParseState(raw string) (State, error) {
	s := State(raw)
	if !s.Valid() {
		return "", fmt.Errorf("unknown week state %q", raw)
	}
	return s, nil
}

// BoxAssignment holds the organizer roster of a box and, once active, the lineup
// that actually plays with substitutes swapped in.
type BoxAssignment struct {
	BoxNumber int
	PlayerIDs []string
	LineupIDs []string
}

func (b BoxAssignment) Clone() BoxAssignment {
	return BoxAssignment{
		BoxNumber: b.BoxNumber,
		PlayerIDs: slices.Clone(b.PlayerIDs),
		LineupIDs: slices.Clone(b.LineupIDs),
	}
}

type CourtAssignment struct {
	BoxNumber int
	CourtID   string
	SessionID string
}

type AttendanceStatus string

const (
	AttendanceNotCheckedIn AttendanceStatus = "not_checked_in"
	AttendanceCheckedIn    AttendanceStatus = "checked_in"
	AttendanceNoShow       AttendanceStatus = "no_show"
	AttendanceExcused      AttendanceStatus = "excused"
)

func (s AttendanceStatus) Valid() bool {
	switch s {
	case AttendanceNotCheckedIn, AttendanceCheckedIn, AttendanceNoShow, AttendanceExcused:
		return true
	default:
		return false
	}
}

type PlayerAttendance struct {
	PlayerID    string
	Status      AttendanceStatus
	CheckedInAt *time.Time
	CheckedInBy string
	NoShowAt    *time.Time
	NoShowBy    string
	ExcusedAt   *time.Time
	ExcusedBy   string
}

type Absence struct {
	PlayerID             string
	BoxNumber            int
	Reason               string
	DeclaredBy           string
	DeclaredAt           time.Time
	SubstituteID         string
	SubstituteAssignedBy string
	SubstituteAssignedAt *time.Time
	Policy               league.AbsenteePolicy
	NoShow               bool
}

type MovementReason string

const (
	MovementPromotion  MovementReason = "promotion"
	MovementRelegation MovementReason = "relegation"
	MovementStayed     MovementReason = "stayed"
	MovementFrozen     MovementReason = "frozen"
)

type PlayerMovement struct {
	PlayerID     string
	FromBox      int
	ToBox        int
	FromPosition int
	ToPosition   int
	Reason       MovementReason
	WasAbsent    bool
}

// StandingRow is one player's ranking inside a box.
type StandingRow struct {
	PlayerID      string
	BoxNumber     int
	Position      int
	MatchesPlayed int
	Wins          int
	Losses        int
	PointsFor     int
	PointsAgainst int
	// SubstituteFor names the absent roster player this row played for.
	SubstituteFor string
	WasAbsent     bool
	Policy        league.AbsenteePolicy
	Synthetic     bool
	Frozen        bool
	ForceRelegate bool
	// MovementHint is display-only and never drives movement.
	MovementHint string
}

func (r StandingRow) PointDifferential() int {
	return r.PointsFor - r.PointsAgainst
}

type StandingsSnapshot struct {
	ComputedAt      time.Time
	Final           bool
	PromotionCount  int
	RelegationCount int
	Tiebreakers     []league.Tiebreaker
	Rows            []StandingRow
}

func (s StandingsSnapshot) Clone() StandingsSnapshot {
	out := s
	out.Tiebreakers = slices.Clone(s.Tiebreakers)
	out.Rows = slices.Clone(s.Rows)
	return out
}

type BoxCompletion struct {
	BoxNumber int
	Total     int
	Completed int
	Done      bool
}

// Week is one iteration of box play. Week numbers are unique within a season.
type Week struct {
	LeagueID         string
	SeasonID         string
	Number           int
	State            State
	ScheduledDate    time.Time
	Boxes            []BoxAssignment
	Courts           []CourtAssignment
	Attendance       []PlayerAttendance
	AttendanceLocked bool
	Absences         []Absence
	Rules            league.Rules
	MatchIDs         []string
	Counters         match.Counters
	BoxCompletion    []BoxCompletion
	FrozenBoxes      []int
	Standings        *StandingsSnapshot
	Movements        []PlayerMovement
	ActivatedAt      *time.Time
	ActivatedBy      string
	ClosedAt         *time.Time
	ClosedBy         string
	FinalizedAt      *time.Time
	FinalizedBy      string
	Revision         int64
	CreatedAt        time.Time
	UpdatedAt        time.Time
	UpdatedBy        string
}

// Touch bumps the revision and audit fields. Every mutation calls it.
func (w *Week) Touch(now time.Time, actor string) {
	w.Revision++
	w.UpdatedAt = now
	w.UpdatedBy = actor
}

func (w Week) Box(boxNumber int) (BoxAssignment, bool) {
	for _, b := range w.Boxes {
		if b.BoxNumber == boxNumber {
			return b, true
		}
	}
	return BoxAssignment{}, false
}

// BoxOf returns the box whose roster contains the player.
func (w Week) BoxOf(playerID string) (int, bool) {
	for _, b := range w.Boxes {
		if slices.Contains(b.PlayerIDs, playerID) {
			return b.BoxNumber, true
		}
	}
	return 0, false
}

// RosterIDs lists every roster player across boxes in box order.
func (w Week) RosterIDs() []string {
	out := make([]string, 0, len(w.Boxes)*MaxBoxSize)
	for _, b := range w.Boxes {
		out = append(out, b.PlayerIDs...)
	}
	return out
}

// Participates reports whether the id is on a roster, in a lineup or recorded as a substitute.
func (w Week) Participates(playerID string) bool {
	if _, ok := w.BoxOf(playerID); ok {
		return true
	}
	for _, b := range w.Boxes {
		if slices.Contains(b.LineupIDs, playerID) {
			return true
		}
	}
	for _, a := range w.Absences {
		if a.SubstituteID == playerID {
			return true
		}
	}
	return false
}

func (w Week) AbsenceFor(playerID string) (Absence, bool) {
	for _, a := range w.Absences {
		if a.PlayerID == playerID {
			return a, true
		}
	}
	return Absence{}, false
}

// AbsenceCoveredBy returns the absence a substitute is standing in for.
func (w Week) AbsenceCoveredBy(substituteID string) (Absence, bool) {
	if substituteID == "" {
		return Absence{}, false
	}
	for _, a := range w.Absences {
		if a.SubstituteID == substituteID {
			return a, true
		}
	}
	return Absence{}, false
}

func (w Week) IsBoxFrozen(boxNumber int) bool {
	return slices.Contains(w.FrozenBoxes, boxNumber)
}

func (w Week) BoxNumbers() []int {
	out := make([]int, 0, len(w.Boxes))
	for _, b := range w.Boxes {
		out = append(out, b.BoxNumber)
	}
	return out
}

func (w Week) Clone() Week {
	out := w
	out.Boxes = make([]BoxAssignment, 0, len(w.Boxes))
	for _, b := range w.Boxes {
		out.Boxes = append(out.Boxes, b.Clone())
	}
	out.Courts = slices.Clone(w.Courts)
	out.Attendance = slices.Clone(w.Attendance)
	out.Absences = slices.Clone(w.Absences)
	out.Rules = w.Rules.Clone()
	out.MatchIDs = slices.Clone(w.MatchIDs)
	out.BoxCompletion = slices.Clone(w.BoxCompletion)
	out.FrozenBoxes = slices.Clone(w.FrozenBoxes)
	out.Movements = slices.Clone(w.Movements)
	if w.Standings != nil {
		snapshot := w.Standings.Clone()
		out.Standings = &snapshot
	}
	return out
}

// NewDraft builds a draft week with a frozen copy of the rules.
func NewDraft(leagueID, seasonID string, number int, scheduled time.Time, rules league.Rules, boxes []BoxAssignment, now time.Time, actor string) (Week, error) {
	w := Week{
		LeagueID:      leagueID,
		SeasonID:      seasonID,
		Number:        number,
		State:         StateDraft,
		ScheduledDate: scheduled,
		Rules:         rules.Clone(),
		CreatedAt:     now,
	}
	w.Boxes = make([]BoxAssignment, 0, len(boxes))
	for _, b := range boxes {
		w.Boxes = append(w.Boxes, BoxAssignment{BoxNumber: b.BoxNumber, PlayerIDs: slices.Clone(b.PlayerIDs)})
	}
	if err := ValidateBoxes(w.Boxes); err != nil {
		return Week{}, err
	}
	w.Touch(now, actor)
	return w, nil
}

// ValidateBoxes checks box sizes, box numbering and that no player appears twice.
func ValidateBoxes(boxes []BoxAssignment) error {
	return validate(boxes, func(b BoxAssignment) []string { return b.PlayerIDs })
}

// ValidateLineups applies the same checks to the resolved lineups.
func ValidateLineups(boxes []BoxAssignment) error {
	return validate(boxes, func(b BoxAssignment) []string { return b.LineupIDs })
}

func validate(boxes []BoxAssignment, ids func(BoxAssignment) []string) error {
	if len(boxes) == 0 {
		return fmt.Errorf("%w: at least one box is required", ErrInvalidBoxSize)
	}
	numbers := make(map[int]struct{}, len(boxes))
	seen := make(map[string]int)
	for _, b := range boxes {
		if b.BoxNumber < 1 {
			return fmt.Errorf("%w: box number must be positive", ErrInvalidBoxSize)
		}
		if _, ok := numbers[b.BoxNumber]; ok {
			return fmt.Errorf("%w: box %d listed twice", ErrDuplicatePlayer, b.BoxNumber)
		}
		numbers[b.BoxNumber] = struct{}{}

		players := ids(b)
		if len(players) < MinBoxSize || len(players) > MaxBoxSize {
			return fmt.Errorf("%w: box %d has %d players", ErrInvalidBoxSize, b.BoxNumber, len(players))
		}
		for _, playerID := range players {
			if playerID == "" {
				return fmt.Errorf("%w: box %d has an empty player id", ErrInvalidBoxSize, b.BoxNumber)
			}
			if other, ok := seen[playerID]; ok {
				return fmt.Errorf("%w: %s in box %d and box %d", ErrDuplicatePlayer, playerID, other, b.BoxNumber)
			}
			seen[playerID] = b.BoxNumber
		}
	}
	return nil
}
