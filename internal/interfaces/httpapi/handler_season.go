package httpapi

import (
	"net/http"
	"strings"

	"github.com/riskibarqy/box-league/internal/usecase"
)

type createSeasonRequest struct {
	Name       string `json:"name" validate:"required,max=100"`
	StartDate  string `json:"start_date" validate:"required"`
	TotalWeeks int    `json:"total_weeks" validate:"required,min=1,max=52"`
}

type generateSeasonRequest struct {
	Name            string   `json:"name" validate:"required,max=100"`
	StartDate       string   `json:"start_date" validate:"required"`
	TotalWeeks      int      `json:"total_weeks" validate:"required,min=1,max=52"`
	RankedPlayerIDs []string `json:"ranked_player_ids" validate:"omitempty,dive,required"`
}

type cancelRequest struct {
	Reason string `json:"reason" validate:"max=500"`
}

type rescheduleWeekRequest struct {
	Date string `json:"date" validate:"required"`
}

type generateSeasonResponse struct {
	Season seasonDTO `json:"season"`
	Week   weekDTO   `json:"week"`
}

func (h *Handler) ListSeasons(w http.ResponseWriter, r *http.Request) {
	ctx, span := startHandlerSpan(r, "ListSeasons")
	defer span.End()

	leagueID := strings.TrimSpace(r.PathValue("leagueID"))
	seasons, err := h.seasons.ListSeasons(ctx, leagueID)
	if err != nil {
		h.logger.WarnContext(ctx, "list seasons failed", "league_id", leagueID, "error", err)
		writeError(ctx, w, err)
		return
	}

	items := make([]seasonDTO, 0, len(seasons))
	for _, s := range seasons {
		items = append(items, seasonToDTO(s))
	}

	writeSuccess(ctx, w, http.StatusOK, items)
}

func (h *Handler) GetSeason(w http.ResponseWriter, r *http.Request) {
	ctx, span := startHandlerSpan(r, "GetSeason")
	defer span.End()

	in := seasonAction(r)
	s, err := h.seasons.GetSeason(ctx, in.LeagueID, in.SeasonID)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, seasonToDTO(s))
}

func (h *Handler) GetSeasonProgress(w http.ResponseWriter, r *http.Request) {
	ctx, span := startHandlerSpan(r, "GetSeasonProgress")
	defer span.End()

	in := seasonAction(r)
	p, err := h.seasons.Progress(ctx, in.LeagueID, in.SeasonID)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, progressToDTO(p))
}

func (h *Handler) CreateSeason(w http.ResponseWriter, r *http.Request) {
	ctx, span := startHandlerSpan(r, "CreateSeason")
	defer span.End()

	var req createSeasonRequest
	if err := h.decodeJSON(ctx, r, &req); err != nil {
		writeError(ctx, w, err)
		return
	}
	start, err := parseDate("start_date", req.StartDate)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	leagueID := strings.TrimSpace(r.PathValue("leagueID"))
	s, err := h.seasons.CreateSeason(ctx, usecase.CreateSeasonInput{
		ActorID:    actorID(ctx),
		LeagueID:   leagueID,
		Name:       req.Name,
		StartDate:  start,
		TotalWeeks: req.TotalWeeks,
	})
	if err != nil {
		h.logger.WarnContext(ctx, "create season failed", "league_id", leagueID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusCreated, seasonToDTO(s))
}

// GenerateSeason creates a season together with its first draft week.
func (h *Handler) GenerateSeason(w http.ResponseWriter, r *http.Request) {
	ctx, span := startHandlerSpan(r, "GenerateSeason")
	defer span.End()

	var req generateSeasonRequest
	if err := h.decodeJSON(ctx, r, &req); err != nil {
		writeError(ctx, w, err)
		return
	}
	start, err := parseDate("start_date", req.StartDate)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	leagueID := strings.TrimSpace(r.PathValue("leagueID"))
	result, err := h.schedule.GenerateSeason(ctx, usecase.GenerateSeasonInput{
		ActorID:         actorID(ctx),
		LeagueID:        leagueID,
		Name:            req.Name,
		StartDate:       start,
		TotalWeeks:      req.TotalWeeks,
		RankedPlayerIDs: req.RankedPlayerIDs,
	})
	if err != nil {
		h.logger.WarnContext(ctx, "generate season failed", "league_id", leagueID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusCreated, generateSeasonResponse{
		Season: seasonToDTO(result.Season),
		Week:   weekToDTO(result.Week),
	})
}

func (h *Handler) ActivateSeason(w http.ResponseWriter, r *http.Request) {
	ctx, span := startHandlerSpan(r, "ActivateSeason")
	defer span.End()

	in := seasonAction(r)
	s, err := h.seasons.ActivateSeason(ctx, in)
	if err != nil {
		h.logger.WarnContext(ctx, "activate season failed", "season_id", in.SeasonID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, seasonToDTO(s))
}

func (h *Handler) CompleteSeason(w http.ResponseWriter, r *http.Request) {
	ctx, span := startHandlerSpan(r, "CompleteSeason")
	defer span.End()

	in := seasonAction(r)
	s, err := h.seasons.CompleteSeason(ctx, in)
	if err != nil {
		h.logger.WarnContext(ctx, "complete season failed", "season_id", in.SeasonID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, seasonToDTO(s))
}

func (h *Handler) CancelSeason(w http.ResponseWriter, r *http.Request) {
	ctx, span := startHandlerSpan(r, "CancelSeason")
	defer span.End()

	var req cancelRequest
	if err := h.decodeJSON(ctx, r, &req); err != nil {
		writeError(ctx, w, err)
		return
	}

	in := seasonAction(r)
	in.Reason = strings.TrimSpace(req.Reason)
	s, err := h.seasons.CancelSeason(ctx, in)
	if err != nil {
		h.logger.WarnContext(ctx, "cancel season failed", "season_id", in.SeasonID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, seasonToDTO(s))
}

func (h *Handler) RescheduleWeek(w http.ResponseWriter, r *http.Request) {
	ctx, span := startHandlerSpan(r, "RescheduleWeek")
	defer span.End()

	var req rescheduleWeekRequest
	if err := h.decodeJSON(ctx, r, &req); err != nil {
		writeError(ctx, w, err)
		return
	}
	date, err := parseDate("date", req.Date)
	if err != nil {
		writeError(ctx, w, err)
		return
	}
	number, err := pathInt(r, "week")
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	s, err := h.seasons.RescheduleWeek(ctx, usecase.RescheduleWeekInput{
		SeasonActionInput: seasonAction(r),
		WeekNumber:        number,
		Date:              date,
	})
	if err != nil {
		h.logger.WarnContext(ctx, "reschedule week failed", "week", number, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, seasonToDTO(s))
}

func (h *Handler) CancelScheduledWeek(w http.ResponseWriter, r *http.Request) {
	ctx, span := startHandlerSpan(r, "CancelScheduledWeek")
	defer span.End()

	var req cancelRequest
	if err := h.decodeJSON(ctx, r, &req); err != nil {
		writeError(ctx, w, err)
		return
	}
	number, err := pathInt(r, "week")
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	in := seasonAction(r)
	in.Reason = strings.TrimSpace(req.Reason)
	s, err := h.seasons.CancelWeek(ctx, usecase.CancelWeekInput{
		SeasonActionInput: in,
		WeekNumber:        number,
	})
	if err != nil {
		h.logger.WarnContext(ctx, "cancel week failed", "week", number, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, seasonToDTO(s))
}
