package httpapi

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	sonic "github.com/bytedance/sonic"
	"github.com/go-playground/validator/v10"
	"github.com/riskibarqy/box-league/internal/domain/week"
	"github.com/riskibarqy/box-league/internal/platform/logging"
	"github.com/riskibarqy/box-league/internal/usecase"
)

// Services groups the use cases exposed over HTTP.
type Services struct {
	Leagues     *usecase.LeagueService
	Seasons     *usecase.SeasonService
	Schedule    *usecase.ScheduleService
	Weeks       *usecase.WeekService
	Attendance  *usecase.AttendanceService
	Eligibility *usecase.EligibilityService
	Submissions *usecase.SubmissionService
	Maintenance *usecase.MaintenanceService
}

type Handler struct {
	leagues     *usecase.LeagueService
	seasons     *usecase.SeasonService
	schedule    *usecase.ScheduleService
	weeks       *usecase.WeekService
	attendance  *usecase.AttendanceService
	eligibility *usecase.EligibilityService
	submissions *usecase.SubmissionService
	maintenance *usecase.MaintenanceService
	logger      *logging.Logger
	validator   *validator.Validate
}

func NewHandler(services Services, logger *logging.Logger) *Handler {
	if logger == nil {
		logger = logging.Default()
	}

	return &Handler{
		leagues:     services.Leagues,
		seasons:     services.Seasons,
		schedule:    services.Schedule,
		weeks:       services.Weeks,
		attendance:  services.Attendance,
		eligibility: services.Eligibility,
		submissions: services.Submissions,
		maintenance: services.Maintenance,
		logger:      logger,
		validator:   validator.New(),
	}
}

func (h *Handler) Healthz(w http.ResponseWriter, r *http.Request) {
	ctx, span := startHandlerSpan(r, "Healthz")
	defer span.End()

	writeSuccess(ctx, w, http.StatusOK, map[string]string{"status": "ok"})
}

// decodeJSON rejects unknown fields and runs struct validation. An empty body
// leaves dst at its zero value.
func (h *Handler) decodeJSON(ctx context.Context, r *http.Request, dst any) error {
	decoder := sonic.ConfigDefault.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(dst); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("%w: invalid JSON payload: %v", usecase.ErrInvalidInput, err)
	}
	return h.validateRequest(ctx, dst)
}

func (h *Handler) validateRequest(ctx context.Context, payload any) error {
	if err := h.validator.StructCtx(ctx, payload); err != nil {
		return fmt.Errorf("%w: validation failed: %v", usecase.ErrInvalidInput, err)
	}

	return nil
}

func pathInt(r *http.Request, name string) (int, error) {
	raw := strings.TrimSpace(r.PathValue(name))
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 {
		return 0, fmt.Errorf("%w: %s must be a positive integer, got %q", usecase.ErrInvalidInput, name, raw)
	}
	return n, nil
}

// expectedRevision reads the optimistic concurrency token from If-Match or
// the expected_revision query parameter. Zero disables the check.
func expectedRevision(r *http.Request) (int64, error) {
	raw := strings.Trim(strings.TrimSpace(r.Header.Get("If-Match")), `"`)
	if raw == "" {
		raw = strings.TrimSpace(r.URL.Query().Get("expected_revision"))
	}
	if raw == "" {
		return 0, nil
	}
	rev, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || rev < 0 {
		return 0, fmt.Errorf("%w: invalid expected revision %q", usecase.ErrInvalidInput, raw)
	}
	return rev, nil
}

func seasonAction(r *http.Request) usecase.SeasonActionInput {
	return usecase.SeasonActionInput{
		ActorID:  actorID(r.Context()),
		LeagueID: strings.TrimSpace(r.PathValue("leagueID")),
		SeasonID: strings.TrimSpace(r.PathValue("seasonID")),
	}
}

func weekRefFromRequest(r *http.Request) (usecase.WeekRef, error) {
	number, err := pathInt(r, "week")
	if err != nil {
		return usecase.WeekRef{}, err
	}
	rev, err := expectedRevision(r)
	if err != nil {
		return usecase.WeekRef{}, err
	}
	return usecase.WeekRef{
		ActorID:          actorID(r.Context()),
		LeagueID:         strings.TrimSpace(r.PathValue("leagueID")),
		SeasonID:         strings.TrimSpace(r.PathValue("seasonID")),
		WeekNumber:       number,
		ExpectedRevision: rev,
	}, nil
}

func parseDate(field, raw string) (time.Time, error) {
	t, err := time.Parse(dateLayout, strings.TrimSpace(raw))
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %s must use YYYY-MM-DD, got %q", usecase.ErrInvalidInput, field, raw)
	}
	return t, nil
}

func parseOptionalDate(field, raw string) (*time.Time, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, nil
	}
	t, err := parseDate(field, raw)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

type weekAction func(ctx context.Context, ref usecase.WeekRef) (week.Week, error)

// writeWeek exposes the week revision as an ETag for later If-Match writes.
func writeWeek(ctx context.Context, w http.ResponseWriter, wk week.Week) {
	w.Header().Set("ETag", strconv.Quote(strconv.FormatInt(wk.Revision, 10)))
	writeSuccess(ctx, w, http.StatusOK, weekToDTO(wk))
}
