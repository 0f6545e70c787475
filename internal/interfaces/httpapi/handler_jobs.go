package httpapi

import (
	"context"
	"fmt"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/riskibarqy/box-league/internal/usecase"
	"go.opentelemetry.io/otel/trace"
)

var jobRunUnsafeRegex = regexp.MustCompile(`[^a-zA-Z0-9_-]`)

type recalculateJobRequest struct {
	LeagueIDs  []string `json:"league_ids" validate:"omitempty,dive,required"`
	MaxWorkers int      `json:"max_workers" validate:"gte=0,lte=64"`
	RunID      string   `json:"run_id" validate:"max=128"`
}

type recalculateJobResponse struct {
	RunID  string                    `json:"run_id"`
	Result usecase.RecalculateResult `json:"result"`
}

// RunRecalculateJob recomputes standings for every active week, fanned out
// over the maintenance worker pool.
func (h *Handler) RunRecalculateJob(w http.ResponseWriter, r *http.Request) {
	ctx, span := startHandlerSpan(r, "RunRecalculateJob")
	defer span.End()

	if h.maintenance == nil {
		writeError(ctx, w, fmt.Errorf("%w: maintenance service is not configured", usecase.ErrDependencyUnavailable))
		return
	}

	var req recalculateJobRequest
	if err := h.decodeJSON(ctx, r, &req); err != nil {
		writeError(ctx, w, err)
		return
	}

	runID := strings.TrimSpace(req.RunID)
	if runID == "" {
		runID = buildManualRunID("recalculate-standings", time.Now())
	}
	traceID, spanID := traceMetaFromContext(ctx)
	logger := h.logger.With("run_id", runID, "trace_id", traceID, "span_id", spanID)

	result, err := h.maintenance.RecalculateOpenWeeks(ctx, usecase.RecalculateInput{
		LeagueIDs:  req.LeagueIDs,
		MaxWorkers: req.MaxWorkers,
	})
	if err != nil {
		logger.WarnContext(ctx, "recalculate standings job failed", "error", err)
		writeError(ctx, w, err)
		return
	}

	logger.InfoContext(ctx, "recalculate standings job completed",
		"tasks", result.TaskCount,
		"succeeded", result.SuccessCount,
		"failed", result.FailedCount,
		"skipped", result.SkippedCount,
	)
	writeSuccess(ctx, w, http.StatusOK, recalculateJobResponse{RunID: runID, Result: result})
}

func buildManualRunID(jobName string, now time.Time) string {
	ts := now.UTC().Format("20060102T150405.000000000Z")
	return "manual-" + sanitizeRunPart(jobName) + "-" + ts
}

func sanitizeRunPart(value string) string {
	value = strings.TrimSpace(value)
	if value == "" {
		return "unknown"
	}
	return jobRunUnsafeRegex.ReplaceAllString(value, "-")
}

func traceMetaFromContext(ctx context.Context) (string, string) {
	spanContext := trace.SpanFromContext(ctx).SpanContext()
	if !spanContext.IsValid() {
		return "", ""
	}
	return spanContext.TraceID().String(), spanContext.SpanID().String()
}
