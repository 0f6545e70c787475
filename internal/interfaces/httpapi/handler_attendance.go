package httpapi

import (
	"context"
	"net/http"
	"strings"

	"github.com/riskibarqy/box-league/internal/domain/week"
	"github.com/riskibarqy/box-league/internal/usecase"
)

type declareAbsenceRequest struct {
	PlayerID string `json:"player_id" validate:"required"`
	Reason   string `json:"reason" validate:"max=500"`
	Policy   string `json:"policy" validate:"omitempty,oneof=freeze ghost_score average_points auto_relegate"`
	NoShow   bool   `json:"no_show"`
}

type assignSubstituteRequest struct {
	SubstituteID string `json:"substitute_id" validate:"required"`
}

type substituteCheckRequest struct {
	AbsentPlayerID string `json:"absent_player_id" validate:"required"`
	SubstituteID   string `json:"substitute_id" validate:"required"`
}

type placementRequest struct {
	Rating *float64 `json:"rating" validate:"omitempty,gte=0,lte=10"`
}

type placementResponse struct {
	BoxNumber int `json:"box_number"`
}

type assignSubstituteResponse struct {
	Week            weekDTO  `json:"week"`
	SubstitutesUsed int      `json:"substitutes_used"`
	UpdatedMatches  int      `json:"updated_matches"`
	Warnings        []string `json:"warnings"`
}

type playerAction func(ctx context.Context, input usecase.PlayerActionInput) (week.Week, error)

func (h *Handler) CheckIn(w http.ResponseWriter, r *http.Request) {
	h.runPlayerAction(w, r, "CheckIn", "check in", h.attendance.CheckIn)
}

func (h *Handler) MarkNoShow(w http.ResponseWriter, r *http.Request) {
	h.runPlayerAction(w, r, "MarkNoShow", "mark no-show", h.attendance.MarkNoShow)
}

func (h *Handler) ExcuseAttendance(w http.ResponseWriter, r *http.Request) {
	h.runPlayerAction(w, r, "ExcuseAttendance", "excuse attendance", h.attendance.Excuse)
}

func (h *Handler) CancelAbsence(w http.ResponseWriter, r *http.Request) {
	h.runPlayerAction(w, r, "CancelAbsence", "cancel absence", h.attendance.CancelAbsence)
}

func (h *Handler) RemoveSubstitute(w http.ResponseWriter, r *http.Request) {
	h.runPlayerAction(w, r, "RemoveSubstitute", "remove substitute", h.attendance.RemoveSubstitute)
}

func (h *Handler) LockAttendance(w http.ResponseWriter, r *http.Request) {
	h.runWeekAction(w, r, "LockAttendance", "lock attendance", h.attendance.LockAttendance)
}

func (h *Handler) UnlockAttendance(w http.ResponseWriter, r *http.Request) {
	h.runWeekAction(w, r, "UnlockAttendance", "unlock attendance", h.attendance.UnlockAttendance)
}

func (h *Handler) DeclareAbsence(w http.ResponseWriter, r *http.Request) {
	ctx, span := startHandlerSpan(r, "DeclareAbsence")
	defer span.End()

	ref, err := weekRefFromRequest(r)
	if err != nil {
		writeError(ctx, w, err)
		return
	}
	var req declareAbsenceRequest
	if err := h.decodeJSON(ctx, r, &req); err != nil {
		writeError(ctx, w, err)
		return
	}

	input := usecase.AbsenceActionInput{
		WeekRef:  ref,
		PlayerID: strings.TrimSpace(req.PlayerID),
		Reason:   strings.TrimSpace(req.Reason),
		Policy:   req.Policy,
	}
	declare := h.attendance.DeclareAbsence
	if req.NoShow {
		declare = h.attendance.RecordNoShowAbsence
	}

	wk, err := declare(ctx, input)
	if err != nil {
		h.logger.WarnContext(ctx, "declare absence failed", "week", ref.WeekNumber, "player_id", input.PlayerID, "error", err)
		writeError(ctx, w, err)
		return
	}

	w.Header().Set("Location", r.URL.Path+"/"+input.PlayerID)
	writeSuccess(ctx, w, http.StatusCreated, weekToDTO(wk))
}

func (h *Handler) AssignSubstitute(w http.ResponseWriter, r *http.Request) {
	ctx, span := startHandlerSpan(r, "AssignSubstitute")
	defer span.End()

	ref, err := weekRefFromRequest(r)
	if err != nil {
		writeError(ctx, w, err)
		return
	}
	var req assignSubstituteRequest
	if err := h.decodeJSON(ctx, r, &req); err != nil {
		writeError(ctx, w, err)
		return
	}

	absentID := strings.TrimSpace(r.PathValue("playerID"))
	result, err := h.attendance.AssignSubstitute(ctx, usecase.SubstituteInput{
		WeekRef:        ref,
		AbsentPlayerID: absentID,
		SubstituteID:   strings.TrimSpace(req.SubstituteID),
	})
	if err != nil {
		h.logger.WarnContext(ctx, "assign substitute failed", "week", ref.WeekNumber, "absent_player_id", absentID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, assignSubstituteResponse{
		Week:            weekToDTO(result.Week),
		SubstitutesUsed: result.SubstitutesUsed,
		UpdatedMatches:  result.UpdatedMatches,
		Warnings:        append([]string{}, result.Warnings...),
	})
}

func (h *Handler) ListCapacities(w http.ResponseWriter, r *http.Request) {
	ctx, span := startHandlerSpan(r, "ListCapacities")
	defer span.End()

	ref, err := weekRefFromRequest(r)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	capacities, err := h.attendance.Capacities(ctx, ref)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	items := make([]capacityDTO, 0, len(capacities))
	for _, c := range capacities {
		items = append(items, capacityToDTO(c))
	}
	writeSuccess(ctx, w, http.StatusOK, items)
}

func (h *Handler) GetBoxCapacity(w http.ResponseWriter, r *http.Request) {
	ctx, span := startHandlerSpan(r, "GetBoxCapacity")
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

	c, err := h.attendance.BoxCapacity(ctx, ref, box)
	if err != nil {
		writeError(ctx, w, err)
		return
	}
	writeSuccess(ctx, w, http.StatusOK, capacityToDTO(c))
}

func (h *Handler) CheckSubstituteEligibility(w http.ResponseWriter, r *http.Request) {
	ctx, span := startHandlerSpan(r, "CheckSubstituteEligibility")
	defer span.End()

	ref, err := weekRefFromRequest(r)
	if err != nil {
		writeError(ctx, w, err)
		return
	}
	var req substituteCheckRequest
	if err := h.decodeJSON(ctx, r, &req); err != nil {
		writeError(ctx, w, err)
		return
	}

	result, err := h.eligibility.CheckSubstitute(ctx, usecase.SubstituteCheckInput{
		WeekRef:        ref,
		AbsentPlayerID: strings.TrimSpace(req.AbsentPlayerID),
		SubstituteID:   strings.TrimSpace(req.SubstituteID),
	})
	if err != nil {
		writeError(ctx, w, err)
		return
	}
	writeSuccess(ctx, w, http.StatusOK, eligibilityToDTO(result))
}

func (h *Handler) SuggestPlacement(w http.ResponseWriter, r *http.Request) {
	ctx, span := startHandlerSpan(r, "SuggestPlacement")
	defer span.End()

	ref, err := weekRefFromRequest(r)
	if err != nil {
		writeError(ctx, w, err)
		return
	}
	var req placementRequest
	if err := h.decodeJSON(ctx, r, &req); err != nil {
		writeError(ctx, w, err)
		return
	}

	box, err := h.eligibility.Placement(ctx, usecase.PlacementInput{WeekRef: ref, Rating: req.Rating})
	if err != nil {
		writeError(ctx, w, err)
		return
	}
	writeSuccess(ctx, w, http.StatusOK, placementResponse{BoxNumber: box})
}

func (h *Handler) runPlayerAction(w http.ResponseWriter, r *http.Request, spanName, action string, fn playerAction) {
	ctx, span := startHandlerSpan(r, spanName)
	defer span.End()

	ref, err := weekRefFromRequest(r)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	playerID := strings.TrimSpace(r.PathValue("playerID"))
	wk, err := fn(ctx, usecase.PlayerActionInput{WeekRef: ref, PlayerID: playerID})
	if err != nil {
		h.logger.WarnContext(ctx, action+" failed", "week", ref.WeekNumber, "player_id", playerID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeWeek(ctx, w, wk)
}
