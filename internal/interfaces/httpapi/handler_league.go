package httpapi

import (
	"net/http"
	"strings"

	"github.com/riskibarqy/box-league/internal/domain/eligibility"
	"github.com/riskibarqy/box-league/internal/usecase"
)

type updateRulesRequest struct {
	Rules rulesDTO `json:"rules"`
}

type updateVenueRequest struct {
	Venue venueDTO `json:"venue"`
}

type joinLeagueRequest struct {
	DisplayName      string   `json:"display_name" validate:"max=100"`
	Rating           *float64 `json:"rating" validate:"omitempty,gte=0,lte=10"`
	ExternalRatingID string   `json:"external_rating_id" validate:"max=64"`
	RatingConsent    bool     `json:"rating_consent"`
	DateOfBirth      string   `json:"date_of_birth"`
}

type joinCheckRequest struct {
	PlayerID         string   `json:"player_id" validate:"required"`
	Rating           *float64 `json:"rating" validate:"omitempty,gte=0,lte=10"`
	ExternalRatingID string   `json:"external_rating_id"`
	RatingConsent    bool     `json:"rating_consent"`
	DateOfBirth      string   `json:"date_of_birth"`
}

type joinLeagueResponse struct {
	Member   memberDTO `json:"member"`
	Warnings []string  `json:"warnings"`
}

func (h *Handler) ListLeagues(w http.ResponseWriter, r *http.Request) {
	ctx, span := startHandlerSpan(r, "ListLeagues")
	defer span.End()

	leagues, err := h.leagues.ListLeagues(ctx)
	if err != nil {
		h.logger.ErrorContext(ctx, "list leagues failed", "error", err)
		writeError(ctx, w, err)
		return
	}

	items := make([]leagueDTO, 0, len(leagues))
	for _, l := range leagues {
		items = append(items, leagueToDTO(l))
	}

	writeSuccess(ctx, w, http.StatusOK, items)
}

func (h *Handler) GetLeague(w http.ResponseWriter, r *http.Request) {
	ctx, span := startHandlerSpan(r, "GetLeague")
	defer span.End()

	leagueID := strings.TrimSpace(r.PathValue("leagueID"))
	l, err := h.leagues.GetLeague(ctx, leagueID)
	if err != nil {
		h.logger.WarnContext(ctx, "get league failed", "league_id", leagueID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, leagueToDTO(l))
}

func (h *Handler) ListMembers(w http.ResponseWriter, r *http.Request) {
	ctx, span := startHandlerSpan(r, "ListMembers")
	defer span.End()

	leagueID := strings.TrimSpace(r.PathValue("leagueID"))
	members, err := h.leagues.ListMembers(ctx, leagueID)
	if err != nil {
		h.logger.WarnContext(ctx, "list members failed", "league_id", leagueID, "error", err)
		writeError(ctx, w, err)
		return
	}

	items := make([]memberDTO, 0, len(members))
	for _, m := range members {
		items = append(items, memberToDTO(m))
	}

	writeSuccess(ctx, w, http.StatusOK, items)
}

func (h *Handler) UpdateRules(w http.ResponseWriter, r *http.Request) {
	ctx, span := startHandlerSpan(r, "UpdateRules")
	defer span.End()

	var req updateRulesRequest
	if err := h.decodeJSON(ctx, r, &req); err != nil {
		writeError(ctx, w, err)
		return
	}
	rev, err := expectedRevision(r)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	leagueID := strings.TrimSpace(r.PathValue("leagueID"))
	l, err := h.leagues.UpdateRules(ctx, usecase.UpdateRulesInput{
		ActorID:          actorID(ctx),
		LeagueID:         leagueID,
		Rules:            req.Rules.toDomain(),
		ExpectedRevision: rev,
	})
	if err != nil {
		h.logger.WarnContext(ctx, "update rules failed", "league_id", leagueID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, leagueToDTO(l))
}

func (h *Handler) UpdateVenue(w http.ResponseWriter, r *http.Request) {
	ctx, span := startHandlerSpan(r, "UpdateVenue")
	defer span.End()

	var req updateVenueRequest
	if err := h.decodeJSON(ctx, r, &req); err != nil {
		writeError(ctx, w, err)
		return
	}
	rev, err := expectedRevision(r)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	leagueID := strings.TrimSpace(r.PathValue("leagueID"))
	l, err := h.leagues.UpdateVenue(ctx, usecase.UpdateVenueInput{
		ActorID:          actorID(ctx),
		LeagueID:         leagueID,
		Venue:            req.Venue.toDomain(),
		ExpectedRevision: rev,
	})
	if err != nil {
		h.logger.WarnContext(ctx, "update venue failed", "league_id", leagueID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, leagueToDTO(l))
}

// JoinLeague enrolls the authenticated user.
func (h *Handler) JoinLeague(w http.ResponseWriter, r *http.Request) {
	ctx, span := startHandlerSpan(r, "JoinLeague")
	defer span.End()

	principal, err := requirePrincipal(ctx)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	var req joinLeagueRequest
	if err := h.decodeJSON(ctx, r, &req); err != nil {
		writeError(ctx, w, err)
		return
	}
	dob, err := parseOptionalDate("date_of_birth", req.DateOfBirth)
	if err != nil {
		writeError(ctx, w, err)
		return
	}
	displayName := strings.TrimSpace(req.DisplayName)
	if displayName == "" {
		displayName = principal.DisplayName
	}

	leagueID := strings.TrimSpace(r.PathValue("leagueID"))
	result, err := h.leagues.JoinLeague(ctx, usecase.JoinLeagueInput{
		LeagueID:         leagueID,
		PlayerID:         principal.UserID,
		DisplayName:      displayName,
		Rating:           req.Rating,
		ExternalRatingID: req.ExternalRatingID,
		RatingConsent:    req.RatingConsent,
		DateOfBirth:      dob,
	})
	if err != nil {
		h.logger.WarnContext(ctx, "join league failed", "league_id", leagueID, "user_id", principal.UserID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusCreated, joinLeagueResponse{
		Member:   memberToDTO(result.Member),
		Warnings: append([]string{}, result.Warnings...),
	})
}

func (h *Handler) CheckJoinEligibility(w http.ResponseWriter, r *http.Request) {
	ctx, span := startHandlerSpan(r, "CheckJoinEligibility")
	defer span.End()

	var req joinCheckRequest
	if err := h.decodeJSON(ctx, r, &req); err != nil {
		writeError(ctx, w, err)
		return
	}
	dob, err := parseOptionalDate("date_of_birth", req.DateOfBirth)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	result, err := h.eligibility.CheckJoin(ctx, usecase.JoinCheckInput{
		LeagueID: strings.TrimSpace(r.PathValue("leagueID")),
		Applicant: eligibility.Applicant{
			PlayerID:         req.PlayerID,
			Rating:           req.Rating,
			ExternalRatingID: req.ExternalRatingID,
			RatingConsent:    req.RatingConsent,
			DateOfBirth:      dob,
		},
	})
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, eligibilityToDTO(result))
}

func (h *Handler) PlanPacking(w http.ResponseWriter, r *http.Request) {
	ctx, span := startHandlerSpan(r, "PlanPacking")
	defer span.End()

	leagueID := strings.TrimSpace(r.PathValue("leagueID"))
	plan, err := h.schedule.PlanPacking(ctx, leagueID)
	if err != nil {
		h.logger.WarnContext(ctx, "plan packing failed", "league_id", leagueID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, packingPlanToDTO(plan))
}
