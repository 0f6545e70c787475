package httpapi

import "net/http"

const (
	leaguePath = "/v1/leagues/{leagueID}"
	seasonPath = leaguePath + "/seasons/{seasonID}"
	weekPath   = seasonPath + "/weeks/{week}"
)

func registerSystemRoutes(mux *http.ServeMux, handler *Handler, swaggerEnabled bool) {
	mux.HandleFunc("GET /healthz", handler.Healthz)
	if !swaggerEnabled {
		return
	}

	mux.HandleFunc("GET /openapi.yaml", handler.OpenAPI)
	mux.HandleFunc("GET /docs", handler.SwaggerUI)
	mux.HandleFunc("GET /docs/", handler.SwaggerUI)
}

func registerLeagueRoutes(mux *http.ServeMux, handler *Handler, verifier TokenVerifier) {
	read := func(h http.HandlerFunc) http.Handler { return OptionalAuth(verifier, h) }
	write := func(h http.HandlerFunc) http.Handler { return RequireAuth(verifier, h) }

	mux.Handle("GET /v1/leagues", read(handler.ListLeagues))
	mux.Handle("GET "+leaguePath, read(handler.GetLeague))
	mux.Handle("GET "+leaguePath+"/members", read(handler.ListMembers))
	mux.Handle("GET "+leaguePath+"/packing", read(handler.PlanPacking))
	mux.Handle("POST "+leaguePath+"/eligibility/join", read(handler.CheckJoinEligibility))

	mux.Handle("POST "+leaguePath+"/members", write(handler.JoinLeague))
	mux.Handle("PUT "+leaguePath+"/rules", write(handler.UpdateRules))
	mux.Handle("PUT "+leaguePath+"/venue", write(handler.UpdateVenue))
}

func registerSeasonRoutes(mux *http.ServeMux, handler *Handler, verifier TokenVerifier) {
	read := func(h http.HandlerFunc) http.Handler { return OptionalAuth(verifier, h) }
	write := func(h http.HandlerFunc) http.Handler { return RequireAuth(verifier, h) }

	mux.Handle("GET "+leaguePath+"/seasons", read(handler.ListSeasons))
	mux.Handle("GET "+seasonPath, read(handler.GetSeason))
	mux.Handle("GET "+seasonPath+"/progress", read(handler.GetSeasonProgress))

	mux.Handle("POST "+leaguePath+"/seasons", write(handler.CreateSeason))
	mux.Handle("POST "+leaguePath+"/seasons/generate", write(handler.GenerateSeason))
	mux.Handle("POST "+seasonPath+"/activate", write(handler.ActivateSeason))
	mux.Handle("POST "+seasonPath+"/complete", write(handler.CompleteSeason))
	mux.Handle("POST "+seasonPath+"/cancel", write(handler.CancelSeason))
	mux.Handle("POST "+seasonPath+"/calendar/{week}/reschedule", write(handler.RescheduleWeek))
	mux.Handle("POST "+seasonPath+"/calendar/{week}/cancel", write(handler.CancelScheduledWeek))
}

func registerWeekRoutes(mux *http.ServeMux, handler *Handler, verifier TokenVerifier) {
	read := func(h http.HandlerFunc) http.Handler { return OptionalAuth(verifier, h) }
	write := func(h http.HandlerFunc) http.Handler { return RequireAuth(verifier, h) }

	mux.Handle("GET "+seasonPath+"/weeks", read(handler.ListWeeks))
	mux.Handle("GET "+weekPath, read(handler.GetWeek))
	mux.Handle("GET "+weekPath+"/matches", read(handler.ListWeekMatches))
	mux.Handle("GET "+weekPath+"/rebalance", read(handler.GetRebalanceAdvice))
	mux.Handle("GET "+weekPath+"/submissions", read(handler.ListSubmittableMatches))

	mux.Handle("PUT "+weekPath+"/boxes", write(handler.UpdateBoxAssignments))
	mux.Handle("PUT "+weekPath+"/boxes/{box}/frozen", write(handler.SetBoxFrozen))
	mux.Handle("PUT "+weekPath+"/courts", write(handler.UpdateCourtAssignments))
	mux.Handle("POST "+weekPath+"/courts/auto", write(handler.AutoAssignCourts))
	mux.Handle("POST "+weekPath+"/rules/refresh", write(handler.RefreshRulesSnapshot))
	mux.Handle("POST "+weekPath+"/activate", write(handler.ActivateWeek))
	mux.Handle("POST "+weekPath+"/deactivate", write(handler.DeactivateWeek))
	mux.Handle("POST "+weekPath+"/close", write(handler.CloseWeek))
	mux.Handle("POST "+weekPath+"/finalize", write(handler.FinalizeWeek))
	mux.Handle("POST "+weekPath+"/refresh", write(handler.RefreshDraftAssignments))
	mux.Handle("POST "+weekPath+"/standings/recalculate", write(handler.RecalculateStandings))
	mux.Handle("POST "+weekPath+"/submissions", write(handler.SubmitWeekResults))
}

func registerAttendanceRoutes(mux *http.ServeMux, handler *Handler, verifier TokenVerifier) {
	read := func(h http.HandlerFunc) http.Handler { return OptionalAuth(verifier, h) }
	write := func(h http.HandlerFunc) http.Handler { return RequireAuth(verifier, h) }

	mux.Handle("GET "+weekPath+"/capacity", read(handler.ListCapacities))
	mux.Handle("GET "+weekPath+"/boxes/{box}/capacity", read(handler.GetBoxCapacity))
	mux.Handle("POST "+weekPath+"/eligibility/substitute", read(handler.CheckSubstituteEligibility))
	mux.Handle("POST "+weekPath+"/eligibility/placement", read(handler.SuggestPlacement))

	mux.Handle("POST "+weekPath+"/attendance/lock", write(handler.LockAttendance))
	mux.Handle("POST "+weekPath+"/attendance/unlock", write(handler.UnlockAttendance))
	mux.Handle("POST "+weekPath+"/attendance/{playerID}/check-in", write(handler.CheckIn))
	mux.Handle("POST "+weekPath+"/attendance/{playerID}/no-show", write(handler.MarkNoShow))
	mux.Handle("POST "+weekPath+"/attendance/{playerID}/excuse", write(handler.ExcuseAttendance))
	mux.Handle("POST "+weekPath+"/absences", write(handler.DeclareAbsence))
	mux.Handle("DELETE "+weekPath+"/absences/{playerID}", write(handler.CancelAbsence))
	mux.Handle("PUT "+weekPath+"/absences/{playerID}/substitute", write(handler.AssignSubstitute))
	mux.Handle("DELETE "+weekPath+"/absences/{playerID}/substitute", write(handler.RemoveSubstitute))
}

func registerInternalJobRoutes(mux *http.ServeMux, handler *Handler, internalJobToken string) {
	mux.Handle("POST /v1/internal/jobs/recalculate-standings", RequireInternalJobToken(internalJobToken, http.HandlerFunc(handler.RunRecalculateJob)))
}
