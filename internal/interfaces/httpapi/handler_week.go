package httpapi

import (
	"net/http"
	"strings"

	"github.com/riskibarqy/box-league/internal/domain/week"
	"github.com/riskibarqy/box-league/internal/usecase"
)

type updateBoxesRequest struct {
	Boxes []boxDTO `json:"boxes" validate:"required,min=1,dive"`
}

type updateCourtsRequest struct {
	Courts []courtAssignmentDTO `json:"courts" validate:"required,min=1,dive"`
}

type setBoxFrozenRequest struct {
	Frozen bool `json:"frozen"`
}

type activateWeekResponse struct {
	Week           weekDTO    `json:"week"`
	Matches        []matchDTO `json:"matches"`
	AlreadyActive  bool       `json:"already_active"`
	CreatedMatches int        `json:"created_matches"`
}

type finalizeWeekResponse struct {
	Week             weekDTO   `json:"week"`
	NextWeek         *weekDTO  `json:"next_week,omitempty"`
	Repair           repairDTO `json:"repair"`
	AlreadyFinalized bool      `json:"already_finalized"`
}

type refreshWeekResponse struct {
	Week   weekDTO   `json:"week"`
	Repair repairDTO `json:"repair"`
}

func (h *Handler) ListWeeks(w http.ResponseWriter, r *http.Request) {
	ctx, span := startHandlerSpan(r, "ListWeeks")
	defer span.End()

	leagueID := strings.TrimSpace(r.PathValue("leagueID"))
	seasonID := strings.TrimSpace(r.PathValue("seasonID"))
	weeks, err := h.weeks.ListWeeks(ctx, leagueID, seasonID)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	items := make([]weekDTO, 0, len(weeks))
	for _, wk := range weeks {
		items = append(items, weekToDTO(wk))
	}

	writeSuccess(ctx, w, http.StatusOK, items)
}

func (h *Handler) GetWeek(w http.ResponseWriter, r *http.Request) {
	ctx, span := startHandlerSpan(r, "GetWeek")
	defer span.End()

	ref, err := weekRefFromRequest(r)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	wk, err := h.weeks.GetWeek(ctx, ref.LeagueID, ref.SeasonID, ref.WeekNumber)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	writeWeek(ctx, w, wk)
}

func (h *Handler) ListWeekMatches(w http.ResponseWriter, r *http.Request) {
	ctx, span := startHandlerSpan(r, "ListWeekMatches")
	defer span.End()

	ref, err := weekRefFromRequest(r)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	matches, err := h.weeks.ListMatches(ctx, ref.LeagueID, ref.SeasonID, ref.WeekNumber)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, matchesToDTO(matches))
}

func (h *Handler) UpdateBoxAssignments(w http.ResponseWriter, r *http.Request) {
	ctx, span := startHandlerSpan(r, "UpdateBoxAssignments")
	defer span.End()

	ref, err := weekRefFromRequest(r)
	if err != nil {
		writeError(ctx, w, err)
		return
	}
	var req updateBoxesRequest
	if err := h.decodeJSON(ctx, r, &req); err != nil {
		writeError(ctx, w, err)
		return
	}

	boxes := make([]week.BoxAssignment, 0, len(req.Boxes))
	for _, b := range req.Boxes {
		boxes = append(boxes, week.BoxAssignment{BoxNumber: b.BoxNumber, PlayerIDs: b.PlayerIDs})
	}

	wk, err := h.weeks.UpdateBoxAssignments(ctx, usecase.UpdateBoxAssignmentsInput{WeekRef: ref, Boxes: boxes})
	if err != nil {
		h.logger.WarnContext(ctx, "update box assignments failed", "week", ref.WeekNumber, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeWeek(ctx, w, wk)
}

func (h *Handler) UpdateCourtAssignments(w http.ResponseWriter, r *http.Request) {
	ctx, span := startHandlerSpan(r, "UpdateCourtAssignments")
	defer span.End()

	ref, err := weekRefFromRequest(r)
	if err != nil {
		writeError(ctx, w, err)
		return
	}
	var req updateCourtsRequest
	if err := h.decodeJSON(ctx, r, &req); err != nil {
		writeError(ctx, w, err)
		return
	}

	courts := make([]week.CourtAssignment, 0, len(req.Courts))
	for _, c := range req.Courts {
		courts = append(courts, week.CourtAssignment{BoxNumber: c.BoxNumber, CourtID: c.CourtID, SessionID: c.SessionID})
	}

	wk, err := h.weeks.UpdateCourtAssignments(ctx, usecase.UpdateCourtAssignmentsInput{WeekRef: ref, Courts: courts})
	if err != nil {
		h.logger.WarnContext(ctx, "update court assignments failed", "week", ref.WeekNumber, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeWeek(ctx, w, wk)
}

func (h *Handler) AutoAssignCourts(w http.ResponseWriter, r *http.Request) {
	h.runWeekAction(w, r, "AutoAssignCourts", "auto assign courts", h.weeks.AutoAssignCourts)
}

func (h *Handler) RefreshRulesSnapshot(w http.ResponseWriter, r *http.Request) {
	h.runWeekAction(w, r, "RefreshRulesSnapshot", "refresh rules snapshot", h.weeks.RefreshRulesSnapshot)
}

func (h *Handler) DeactivateWeek(w http.ResponseWriter, r *http.Request) {
	h.runWeekAction(w, r, "DeactivateWeek", "deactivate week", h.weeks.Deactivate)
}

func (h *Handler) CloseWeek(w http.ResponseWriter, r *http.Request) {
	h.runWeekAction(w, r, "CloseWeek", "close week", h.weeks.Close)
}

func (h *Handler) RecalculateStandings(w http.ResponseWriter, r *http.Request) {
	h.runWeekAction(w, r, "RecalculateStandings", "recalculate standings", h.weeks.RecalculateStandings)
}

func (h *Handler) SetBoxFrozen(w http.ResponseWriter, r *http.Request) {
	ctx, span := startHandlerSpan(r, "SetBoxFrozen")
	defer span.End()

	ref, err := weekRefFromRequest(r)
	if err != nil {
		writeError(ctx, w, err)
		return
	}
	box, err := pathInt(r, "box")
	if err != nil {
		writeError(ctx, w, err)
		return
	}
	var req setBoxFrozenRequest
	if err := h.decodeJSON(ctx, r, &req); err != nil {
		writeError(ctx, w, err)
		return
	}

	wk, err := h.weeks.SetBoxFrozen(ctx, usecase.SetBoxFrozenInput{WeekRef: ref, BoxNumber: box, Frozen: req.Frozen})
	if err != nil {
		h.logger.WarnContext(ctx, "set box frozen failed", "week", ref.WeekNumber, "box", box, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeWeek(ctx, w, wk)
}

func (h *Handler) ActivateWeek(w http.ResponseWriter, r *http.Request) {
	ctx, span := startHandlerSpan(r, "ActivateWeek")
	defer span.End()

	ref, err := weekRefFromRequest(r)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	result, err := h.weeks.Activate(ctx, ref)
	if err != nil {
		h.logger.WarnContext(ctx, "activate week failed", "season_id", ref.SeasonID, "week", ref.WeekNumber, "error", err)
		writeError(ctx, w, err)
		return
	}

	status := http.StatusOK
	if !result.AlreadyActive {
		status = http.StatusCreated
	}
	writeSuccess(ctx, w, status, activateWeekResponse{
		Week:           weekToDTO(result.Week),
		Matches:        matchesToDTO(result.Matches),
		AlreadyActive:  result.AlreadyActive,
		CreatedMatches: result.CreatedMatches,
	})
}

func (h *Handler) FinalizeWeek(w http.ResponseWriter, r *http.Request) {
	ctx, span := startHandlerSpan(r, "FinalizeWeek")
	defer span.End()

	ref, err := weekRefFromRequest(r)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	result, err := h.weeks.Finalize(ctx, ref)
	if err != nil {
		h.logger.WarnContext(ctx, "finalize week failed", "season_id", ref.SeasonID, "week", ref.WeekNumber, "error", err)
		writeError(ctx, w, err)
		return
	}

	resp := finalizeWeekResponse{
		Week:             weekToDTO(result.Week),
		Repair:           repairToDTO(result.Repair),
		AlreadyFinalized: result.AlreadyFinalized,
	}
	if result.NextWeek != nil {
		next := weekToDTO(*result.NextWeek)
		resp.NextWeek = &next
	}
	writeSuccess(ctx, w, http.StatusOK, resp)
}

func (h *Handler) RefreshDraftAssignments(w http.ResponseWriter, r *http.Request) {
	ctx, span := startHandlerSpan(r, "RefreshDraftAssignments")
	defer span.End()

	ref, err := weekRefFromRequest(r)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	result, err := h.weeks.RefreshDraftAssignments(ctx, ref)
	if err != nil {
		h.logger.WarnContext(ctx, "refresh draft assignments failed", "week", ref.WeekNumber, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, refreshWeekResponse{
		Week:   weekToDTO(result.Week),
		Repair: repairToDTO(result.Repair),
	})
}

func (h *Handler) GetRebalanceAdvice(w http.ResponseWriter, r *http.Request) {
	ctx, span := startHandlerSpan(r, "GetRebalanceAdvice")
	defer span.End()

	ref, err := weekRefFromRequest(r)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	advice, err := h.weeks.RebalanceAdvice(ctx, ref.LeagueID, ref.SeasonID, ref.WeekNumber)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, rebalanceToDTO(advice))
}

func (h *Handler) ListSubmittableMatches(w http.ResponseWriter, r *http.Request) {
	ctx, span := startHandlerSpan(r, "ListSubmittableMatches")
	defer span.End()

	ref, err := weekRefFromRequest(r)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	items, err := h.submissions.ListSubmittable(ctx, ref)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	out := make([]submissionDTO, 0, len(items))
	for _, s := range items {
		out = append(out, submissionToDTO(s))
	}
	writeSuccess(ctx, w, http.StatusOK, out)
}

func (h *Handler) SubmitWeekResults(w http.ResponseWriter, r *http.Request) {
	ctx, span := startHandlerSpan(r, "SubmitWeekResults")
	defer span.End()

	ref, err := weekRefFromRequest(r)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	report, err := h.submissions.SubmitWeek(ctx, ref)
	if err != nil {
		h.logger.WarnContext(ctx, "submit week results failed", "week", ref.WeekNumber, "error", err)
		writeError(ctx, w, err)
		return
	}

	status := http.StatusOK
	if len(report.Failed) > 0 {
		status = http.StatusMultiStatus
	}
	writeSuccess(ctx, w, status, submitReportToDTO(report))
}

func (h *Handler) runWeekAction(w http.ResponseWriter, r *http.Request, spanName, action string, fn weekAction) {
	ctx, span := startHandlerSpan(r, spanName)
	defer span.End()

	ref, err := weekRefFromRequest(r)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	wk, err := fn(ctx, ref)
	if err != nil {
		h.logger.WarnContext(ctx, action+" failed", "season_id", ref.SeasonID, "week", ref.WeekNumber, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeWeek(ctx, w, wk)
}
