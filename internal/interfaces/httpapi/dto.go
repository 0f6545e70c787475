package httpapi

import (
	"time"

	"github.com/riskibarqy/box-league/internal/domain/eligibility"
	"github.com/riskibarqy/box-league/internal/domain/league"
	"github.com/riskibarqy/box-league/internal/domain/match"
	"github.com/riskibarqy/box-league/internal/domain/member"
	"github.com/riskibarqy/box-league/internal/domain/packing"
	"github.com/riskibarqy/box-league/internal/domain/promotion"
	"github.com/riskibarqy/box-league/internal/domain/season"
	"github.com/riskibarqy/box-league/internal/domain/week"
	"github.com/riskibarqy/box-league/internal/usecase"
)

const dateLayout = "2006-01-02"

type gameFormatDTO struct {
	PointsToWin int `json:"points_to_win" validate:"min=1"`
	WinBy       int `json:"win_by" validate:"min=1"`
	BestOf      int `json:"best_of" validate:"min=1"`
}

type substitutePolicyDTO struct {
	Allowed           bool   `json:"allowed"`
	MaxPerSeason      int    `json:"max_per_season" validate:"min=0"`
	MemberOnly        bool   `json:"member_only"`
	RequireRatingLink bool   `json:"require_rating_link"`
	Restriction       string `json:"restriction" validate:"omitempty,oneof=same_box same_or_lower any"`
}

type joinPolicyDTO struct {
	RequireRatingLink  bool    `json:"require_rating_link"`
	RatingEnforced     bool    `json:"rating_enforced"`
	RatingMin          float64 `json:"rating_min"`
	RatingMax          float64 `json:"rating_max"`
	AgeEnforced        bool    `json:"age_enforced"`
	AgeMin             int     `json:"age_min"`
	AgeMax             int     `json:"age_max"`
	AllowMidSeasonJoin bool    `json:"allow_mid_season_join"`
}

type rulesDTO struct {
	PromotionCount                 int                 `json:"promotion_count" validate:"min=0"`
	RelegationCount                int                 `json:"relegation_count" validate:"min=0"`
	Tiebreakers                    []string            `json:"tiebreakers" validate:"dive,oneof=wins point_differential points_for head_to_head"`
	Format                         gameFormatDTO       `json:"format"`
	AbsenteePolicy                 string              `json:"absentee_policy" validate:"required,oneof=freeze ghost_score average_points auto_relegate"`
	Substitutes                    substitutePolicyDTO `json:"substitutes"`
	Join                           joinPolicyDTO       `json:"join"`
	RequireRatingLinkForSubmission bool                `json:"require_rating_link_for_submission"`
}

func rulesToDTO(r league.Rules) rulesDTO {
	tiebreakers := make([]string, 0, len(r.Tiebreakers))
	for _, t := range r.Tiebreakers {
		tiebreakers = append(tiebreakers, string(t))
	}
	return rulesDTO{
		PromotionCount:  r.PromotionCount,
		RelegationCount: r.RelegationCount,
		Tiebreakers:     tiebreakers,
		Format: gameFormatDTO{
			PointsToWin: r.Format.PointsToWin,
			WinBy:       r.Format.WinBy,
			BestOf:      r.Format.BestOf,
		},
		AbsenteePolicy: string(r.AbsenteePolicy),
		Substitutes: substitutePolicyDTO{
			Allowed:           r.Substitutes.Allowed,
			MaxPerSeason:      r.Substitutes.MaxPerSeason,
			MemberOnly:        r.Substitutes.MemberOnly,
			RequireRatingLink: r.Substitutes.RequireRatingLink,
			Restriction:       string(r.Substitutes.Restriction),
		},
		Join: joinPolicyDTO{
			RequireRatingLink:  r.Join.RequireRatingLink,
			RatingEnforced:     r.Join.Rating.Enforced,
			RatingMin:          r.Join.Rating.Min,
			RatingMax:          r.Join.Rating.Max,
			AgeEnforced:        r.Join.Age.Enforced,
			AgeMin:             r.Join.Age.Min,
			AgeMax:             r.Join.Age.Max,
			AllowMidSeasonJoin: r.Join.AllowMidSeasonJoin,
		},
		RequireRatingLinkForSubmission: r.RequireRatingLinkForSubmission,
	}
}

func (d rulesDTO) toDomain() league.Rules {
	tiebreakers := make([]league.Tiebreaker, 0, len(d.Tiebreakers))
	for _, t := range d.Tiebreakers {
		tiebreakers = append(tiebreakers, league.Tiebreaker(t))
	}
	restriction := league.SubstituteRestriction(d.Substitutes.Restriction)
	if restriction == "" {
		restriction = league.SubstituteAnyBox
	}
	return league.Rules{
		PromotionCount:  d.PromotionCount,
		RelegationCount: d.RelegationCount,
		Tiebreakers:     tiebreakers,
		Format: league.GameFormat{
			PointsToWin: d.Format.PointsToWin,
			WinBy:       d.Format.WinBy,
			BestOf:      d.Format.BestOf,
		},
		AbsenteePolicy: league.AbsenteePolicy(d.AbsenteePolicy),
		Substitutes: league.SubstitutePolicy{
			Allowed:           d.Substitutes.Allowed,
			MaxPerSeason:      d.Substitutes.MaxPerSeason,
			MemberOnly:        d.Substitutes.MemberOnly,
			RequireRatingLink: d.Substitutes.RequireRatingLink,
			Restriction:       restriction,
		},
		Join: league.JoinPolicy{
			RequireRatingLink:  d.Join.RequireRatingLink,
			Rating:             league.RatingBounds{Enforced: d.Join.RatingEnforced, Min: d.Join.RatingMin, Max: d.Join.RatingMax},
			Age:                league.AgeBounds{Enforced: d.Join.AgeEnforced, Min: d.Join.AgeMin, Max: d.Join.AgeMax},
			AllowMidSeasonJoin: d.Join.AllowMidSeasonJoin,
		},
		RequireRatingLinkForSubmission: d.RequireRatingLinkForSubmission,
	}
}

type courtDTO struct {
	ID     string `json:"id" validate:"required"`
	Name   string `json:"name"`
	Active bool   `json:"active"`
}

type sessionDTO struct {
	ID        string `json:"id" validate:"required"`
	Name      string `json:"name"`
	StartTime string `json:"start_time"`
	Active    bool   `json:"active"`
}

type venueDTO struct {
	Courts   []courtDTO   `json:"courts" validate:"dive"`
	Sessions []sessionDTO `json:"sessions" validate:"dive"`
	Capacity int          `json:"capacity"`
}

func venueToDTO(v league.Venue) venueDTO {
	out := venueDTO{
		Courts:   make([]courtDTO, 0, len(v.Courts)),
		Sessions: make([]sessionDTO, 0, len(v.Sessions)),
		Capacity: v.Capacity(),
	}
	for _, c := range v.Courts {
		out.Courts = append(out.Courts, courtDTO{ID: c.ID, Name: c.Name, Active: c.Active})
	}
	for _, s := range v.Sessions {
		out.Sessions = append(out.Sessions, sessionDTO{ID: s.ID, Name: s.Name, StartTime: s.StartTime, Active: s.Active})
	}
	return out
}

func (d venueDTO) toDomain() league.Venue {
	out := league.Venue{
		Courts:   make([]league.Court, 0, len(d.Courts)),
		Sessions: make([]league.Session, 0, len(d.Sessions)),
	}
	for _, c := range d.Courts {
		out.Courts = append(out.Courts, league.Court{ID: c.ID, Name: c.Name, Active: c.Active})
	}
	for _, s := range d.Sessions {
		out.Sessions = append(out.Sessions, league.Session{ID: s.ID, Name: s.Name, StartTime: s.StartTime, Active: s.Active})
	}
	return out
}

type leagueDTO struct {
	ID             string    `json:"id"`
	Name           string    `json:"name"`
	OrganizerIDs   []string  `json:"organizer_ids"`
	ActiveSeasonID string    `json:"active_season_id,omitempty"`
	Rules          rulesDTO  `json:"rules"`
	Venue          venueDTO  `json:"venue"`
	Revision       int64     `json:"revision"`
	UpdatedAt      time.Time `json:"updated_at"`
}

func leagueToDTO(l league.League) leagueDTO {
	return leagueDTO{
		ID:             l.ID,
		Name:           l.Name,
		OrganizerIDs:   append([]string(nil), l.OrganizerIDs...),
		ActiveSeasonID: l.ActiveSeasonID,
		Rules:          rulesToDTO(l.Rules),
		Venue:          venueToDTO(l.Venue),
		Revision:       l.Revision,
		UpdatedAt:      l.UpdatedAt,
	}
}

type memberDTO struct {
	PlayerID        string   `json:"player_id"`
	DisplayName     string   `json:"display_name"`
	Status          string   `json:"status"`
	Rating          *float64 `json:"rating,omitempty"`
	RatingLinked    bool     `json:"rating_linked"`
	SubstitutesUsed int      `json:"substitutes_used"`
	JoinedAt        string   `json:"joined_at"`
}

func memberToDTO(m member.Member) memberDTO {
	return memberDTO{
		PlayerID:        m.PlayerID,
		DisplayName:     m.DisplayName,
		Status:          string(m.Status),
		Rating:          m.Rating,
		RatingLinked:    m.RatingLinked(),
		SubstitutesUsed: m.SubstitutesUsed,
		JoinedAt:        m.JoinedAt.UTC().Format(time.RFC3339),
	}
}

type scheduleEntryDTO struct {
	WeekNumber         int    `json:"week_number"`
	ScheduledDate      string `json:"scheduled_date"`
	EffectiveDate      string `json:"effective_date"`
	Status             string `json:"status"`
	CancellationReason string `json:"cancellation_reason,omitempty"`
}

type seasonDTO struct {
	ID                 string             `json:"id"`
	LeagueID           string             `json:"league_id"`
	Name               string             `json:"name"`
	State              string             `json:"state"`
	StartDate          string             `json:"start_date"`
	EndDate            string             `json:"end_date"`
	TotalWeeks         int                `json:"total_weeks"`
	Schedule           []scheduleEntryDTO `json:"schedule"`
	CancellationReason string             `json:"cancellation_reason,omitempty"`
	Revision           int64              `json:"revision"`
}

func seasonToDTO(s season.Season) seasonDTO {
	out := seasonDTO{
		ID:                 s.ID,
		LeagueID:           s.LeagueID,
		Name:               s.Name,
		State:              string(s.State),
		StartDate:          s.StartDate.Format(dateLayout),
		EndDate:            s.EndDate.Format(dateLayout),
		TotalWeeks:         s.TotalWeeks,
		Schedule:           make([]scheduleEntryDTO, 0, len(s.Schedule)),
		CancellationReason: s.CancellationReason,
		Revision:           s.Revision,
	}
	for _, e := range s.Schedule {
		out.Schedule = append(out.Schedule, scheduleEntryDTO{
			WeekNumber:         e.WeekNumber,
			ScheduledDate:      e.ScheduledDate.Format(dateLayout),
			EffectiveDate:      e.EffectiveDate().Format(dateLayout),
			Status:             string(e.Status),
			CancellationReason: e.CancellationReason,
		})
	}
	return out
}

type progressDTO struct {
	TotalWeeks      int     `json:"total_weeks"`
	CompletedWeeks  int     `json:"completed_weeks"`
	CancelledWeeks  int     `json:"cancelled_weeks"`
	RemainingWeeks  int     `json:"remaining_weeks"`
	PercentComplete float64 `json:"percent_complete"`
}

func progressToDTO(p season.Progress) progressDTO {
	return progressDTO{
		TotalWeeks:      p.TotalWeeks,
		CompletedWeeks:  p.CompletedWeeks,
		CancelledWeeks:  p.CancelledWeeks,
		RemainingWeeks:  p.RemainingWeeks,
		PercentComplete: p.PercentComplete,
	}
}

type boxDTO struct {
	BoxNumber int      `json:"box_number" validate:"min=1"`
	PlayerIDs []string `json:"player_ids" validate:"required,dive,required"`
	LineupIDs []string `json:"lineup_ids,omitempty"`
}

type courtAssignmentDTO struct {
	BoxNumber int    `json:"box_number" validate:"min=1"`
	CourtID   string `json:"court_id" validate:"required"`
	SessionID string `json:"session_id" validate:"required"`
}

type attendanceDTO struct {
	PlayerID string `json:"player_id"`
	Status   string `json:"status"`
}

type absenceDTO struct {
	PlayerID     string `json:"player_id"`
	BoxNumber    int    `json:"box_number"`
	Reason       string `json:"reason,omitempty"`
	DeclaredBy   string `json:"declared_by"`
	SubstituteID string `json:"substitute_id,omitempty"`
	Policy       string `json:"policy"`
	NoShow       bool   `json:"no_show"`
}

type standingRowDTO struct {
	PlayerID      string `json:"player_id"`
	BoxNumber     int    `json:"box_number"`
	Position      int    `json:"position"`
	MatchesPlayed int    `json:"matches_played"`
	Wins          int    `json:"wins"`
	Losses        int    `json:"losses"`
	PointsFor     int    `json:"points_for"`
	PointsAgainst int    `json:"points_against"`
	SubstituteFor string `json:"substitute_for,omitempty"`
	WasAbsent     bool   `json:"was_absent"`
	Frozen        bool   `json:"frozen"`
	MovementHint  string `json:"movement_hint,omitempty"`
}

type movementDTO struct {
	PlayerID  string `json:"player_id"`
	FromBox   int    `json:"from_box"`
	ToBox     int    `json:"to_box"`
	Reason    string `json:"reason"`
	WasAbsent bool   `json:"was_absent"`
}

type countersDTO struct {
	Total               int `json:"total"`
	Completed           int `json:"completed"`
	PendingVerification int `json:"pending_verification"`
	Disputed            int `json:"disputed"`
	Scheduled           int `json:"scheduled"`
	Cancelled           int `json:"cancelled"`
}

type weekDTO struct {
	LeagueID         string               `json:"league_id"`
	SeasonID         string               `json:"season_id"`
	Number           int                  `json:"number"`
	State            string               `json:"state"`
	ScheduledDate    string               `json:"scheduled_date"`
	Boxes            []boxDTO             `json:"boxes"`
	Courts           []courtAssignmentDTO `json:"courts"`
	Attendance       []attendanceDTO      `json:"attendance"`
	AttendanceLocked bool                 `json:"attendance_locked"`
	Absences         []absenceDTO         `json:"absences"`
	FrozenBoxes      []int                `json:"frozen_boxes"`
	Counters         countersDTO          `json:"counters"`
	Standings        []standingRowDTO     `json:"standings,omitempty"`
	StandingsFinal   bool                 `json:"standings_final"`
	Movements        []movementDTO        `json:"movements,omitempty"`
	Revision         int64                `json:"revision"`
}

func weekToDTO(w week.Week) weekDTO {
	out := weekDTO{
		LeagueID:         w.LeagueID,
		SeasonID:         w.SeasonID,
		Number:           w.Number,
		State:            string(w.State),
		ScheduledDate:    w.ScheduledDate.Format(dateLayout),
		Boxes:            make([]boxDTO, 0, len(w.Boxes)),
		Courts:           make([]courtAssignmentDTO, 0, len(w.Courts)),
		Attendance:       make([]attendanceDTO, 0, len(w.Attendance)),
		AttendanceLocked: w.AttendanceLocked,
		Absences:         make([]absenceDTO, 0, len(w.Absences)),
		FrozenBoxes:      append([]int{}, w.FrozenBoxes...),
		Counters: countersDTO{
			Total:               w.Counters.Total,
			Completed:           w.Counters.Completed,
			PendingVerification: w.Counters.PendingVerification,
			Disputed:            w.Counters.Disputed,
			Scheduled:           w.Counters.Scheduled,
			Cancelled:           w.Counters.Cancelled,
		},
		Revision: w.Revision,
	}
	for _, b := range w.Boxes {
		out.Boxes = append(out.Boxes, boxDTO{
			BoxNumber: b.BoxNumber,
			PlayerIDs: append([]string(nil), b.PlayerIDs...),
			LineupIDs: append([]string(nil), b.LineupIDs...),
		})
	}
	for _, c := range w.Courts {
		out.Courts = append(out.Courts, courtAssignmentDTO{BoxNumber: c.BoxNumber, CourtID: c.CourtID, SessionID: c.SessionID})
	}
	for _, a := range w.Attendance {
		out.Attendance = append(out.Attendance, attendanceDTO{PlayerID: a.PlayerID, Status: string(a.Status)})
	}
	for _, a := range w.Absences {
		out.Absences = append(out.Absences, absenceDTO{
			PlayerID:     a.PlayerID,
			BoxNumber:    a.BoxNumber,
			Reason:       a.Reason,
			DeclaredBy:   a.DeclaredBy,
			SubstituteID: a.SubstituteID,
			Policy:       string(a.Policy),
			NoShow:       a.NoShow,
		})
	}
	if w.Standings != nil {
		out.StandingsFinal = w.Standings.Final
		for _, r := range w.Standings.Rows {
			out.Standings = append(out.Standings, standingRowDTO{
				PlayerID:      r.PlayerID,
				BoxNumber:     r.BoxNumber,
				Position:      r.Position,
				MatchesPlayed: r.MatchesPlayed,
				Wins:          r.Wins,
				Losses:        r.Losses,
				PointsFor:     r.PointsFor,
				PointsAgainst: r.PointsAgainst,
				SubstituteFor: r.SubstituteFor,
				WasAbsent:     r.WasAbsent,
				Frozen:        r.Frozen,
				MovementHint:  r.MovementHint,
			})
		}
	}
	for _, m := range w.Movements {
		out.Movements = append(out.Movements, movementDTO{
			PlayerID:  m.PlayerID,
			FromBox:   m.FromBox,
			ToBox:     m.ToBox,
			Reason:    string(m.Reason),
			WasAbsent: m.WasAbsent,
		})
	}
	return out
}

type gameDTO struct {
	Team1 int `json:"team1"`
	Team2 int `json:"team2"`
}

type matchDTO struct {
	ID        string    `json:"id"`
	BoxNumber int       `json:"box_number"`
	Round     int       `json:"round"`
	Team1     []string  `json:"team1"`
	Team2     []string  `json:"team2"`
	Sitting   []string  `json:"sitting,omitempty"`
	Status    string    `json:"status"`
	Games     []gameDTO `json:"games,omitempty"`
	CourtID   string    `json:"court_id,omitempty"`
	SessionID string    `json:"session_id,omitempty"`
}

func matchToDTO(m match.Match) matchDTO {
	out := matchDTO{
		ID:        m.ID,
		BoxNumber: m.BoxNumber,
		Round:     m.Round,
		Team1:     append([]string(nil), m.Team1...),
		Team2:     append([]string(nil), m.Team2...),
		Sitting:   append([]string(nil), m.Sitting...),
		Status:    string(m.Status),
		CourtID:   m.CourtID,
		SessionID: m.SessionID,
	}
	for _, g := range m.Games {
		out.Games = append(out.Games, gameDTO{Team1: g.Team1, Team2: g.Team2})
	}
	return out
}

func matchesToDTO(items []match.Match) []matchDTO {
	out := make([]matchDTO, 0, len(items))
	for _, m := range items {
		out = append(out, matchToDTO(m))
	}
	return out
}

type capacityDTO struct {
	BoxNumber         int  `json:"box_number"`
	Assigned          int  `json:"assigned"`
	Absences          int  `json:"absences"`
	UncoveredAbsences int  `json:"uncovered_absences"`
	Substitutes       int  `json:"substitutes"`
	Effective         int  `json:"effective"`
	Runnable          bool `json:"runnable"`
}

func capacityToDTO(c week.BoxCapacity) capacityDTO {
	return capacityDTO{
		BoxNumber:         c.BoxNumber,
		Assigned:          c.Assigned,
		Absences:          c.Absences,
		UncoveredAbsences: c.UncoveredAbsences,
		Substitutes:       c.Substitutes,
		Effective:         c.Effective,
		Runnable:          c.Runnable,
	}
}

type eligibilityDTO struct {
	Eligible bool     `json:"eligible"`
	Blockers []string `json:"blockers"`
	Warnings []string `json:"warnings"`
}

func eligibilityToDTO(r eligibility.Result) eligibilityDTO {
	return eligibilityDTO{
		Eligible: r.Eligible,
		Blockers: append([]string{}, r.Blockers...),
		Warnings: append([]string{}, r.Warnings...),
	}
}

type adjustmentDTO struct {
	Delta       int   `json:"delta"`
	PlayerCount int   `json:"player_count"`
	Sizes       []int `json:"sizes"`
}

type packingPlanDTO struct {
	PlayerCount int             `json:"player_count"`
	Feasible    bool            `json:"feasible"`
	Sizes       []int           `json:"sizes"`
	Reason      string          `json:"reason,omitempty"`
	Suggestions []adjustmentDTO `json:"suggestions,omitempty"`
}

func packingPlanToDTO(p usecase.PackingPlan) packingPlanDTO {
	out := packingPlanDTO{
		PlayerCount: p.PlayerCount,
		Feasible:    p.Feasible,
		Sizes:       append([]int{}, p.Sizes...),
		Reason:      p.Reason,
	}
	for _, a := range p.Suggestions {
		out.Suggestions = append(out.Suggestions, adjustmentToDTO(a))
	}
	return out
}

func adjustmentToDTO(a packing.Adjustment) adjustmentDTO {
	return adjustmentDTO{Delta: a.Delta, PlayerCount: a.PlayerCount, Sizes: append([]int{}, a.Sizes...)}
}

type suggestedMoveDTO struct {
	PlayerID string `json:"player_id"`
	FromBox  int    `json:"from_box"`
	ToBox    int    `json:"to_box"`
}

type balanceIssueDTO struct {
	BoxNumber int    `json:"box_number"`
	Size      int    `json:"size"`
	Problem   string `json:"problem"`
}

func movesToDTO(moves []promotion.SuggestedMove) []suggestedMoveDTO {
	out := make([]suggestedMoveDTO, 0, len(moves))
	for _, m := range moves {
		out = append(out, suggestedMoveDTO{PlayerID: m.PlayerID, FromBox: m.FromBox, ToBox: m.ToBox})
	}
	return out
}

type rebalanceDTO struct {
	Issues []balanceIssueDTO   `json:"issues"`
	Moves  []suggestedMoveDTO `json:"moves"`
}

func rebalanceToDTO(a usecase.RebalanceAdvice) rebalanceDTO {
	out := rebalanceDTO{
		Issues: make([]balanceIssueDTO, 0, len(a.Issues)),
		Moves:  movesToDTO(a.Moves),
	}
	for _, i := range a.Issues {
		out.Issues = append(out.Issues, balanceIssueDTO{BoxNumber: i.BoxNumber, Size: i.Size, Problem: i.Problem})
	}
	return out
}

type replacementDTO struct {
	BoxNumber int    `json:"box_number"`
	FromID    string `json:"from_id"`
	ToID      string `json:"to_id"`
	Tier      string `json:"tier"`
}

type repairDTO struct {
	Replacements []replacementDTO   `json:"replacements"`
	Unresolved   []string           `json:"unresolved"`
	Rebalanced   []suggestedMoveDTO `json:"rebalanced"`
}

func repairToDTO(r usecase.RepairReport) repairDTO {
	out := repairDTO{
		Replacements: make([]replacementDTO, 0, len(r.Replacements)),
		Unresolved:   append([]string{}, r.Unresolved...),
		Rebalanced:   movesToDTO(r.Rebalanced),
	}
	for _, rep := range r.Replacements {
		out.Replacements = append(out.Replacements, replacementDTO{
			BoxNumber: rep.BoxNumber,
			FromID:    rep.FromID,
			ToID:      rep.ToID,
			Tier:      rep.Tier,
		})
	}
	return out
}

type submissionDTO struct {
	MatchID     string                   `json:"match_id"`
	BoxNumber   int                      `json:"box_number"`
	Submittable bool                     `json:"submittable"`
	Blockers    []string                 `json:"blockers,omitempty"`
	Payload     *usecase.RatingSubmission `json:"payload,omitempty"`
}

func submissionToDTO(s usecase.MatchSubmission) submissionDTO {
	out := submissionDTO{
		MatchID:     s.MatchID,
		BoxNumber:   s.BoxNumber,
		Submittable: s.Submittable,
		Blockers:    append([]string(nil), s.Blockers...),
	}
	if s.Submittable {
		payload := s.Submission
		out.Payload = &payload
	}
	return out
}

type submitReportDTO struct {
	Submitted []string          `json:"submitted"`
	Skipped   []submissionDTO   `json:"skipped"`
	Failed    map[string]string `json:"failed"`
}

func submitReportToDTO(r usecase.SubmitReport) submitReportDTO {
	out := submitReportDTO{
		Submitted: append([]string{}, r.Submitted...),
		Skipped:   make([]submissionDTO, 0, len(r.Skipped)),
		Failed:    r.Failed,
	}
	if out.Failed == nil {
		out.Failed = map[string]string{}
	}
	for _, s := range r.Skipped {
		out.Skipped = append(out.Skipped, submissionToDTO(s))
	}
	return out
}
