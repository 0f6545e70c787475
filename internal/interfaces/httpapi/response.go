package httpapi

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	sonic "github.com/bytedance/sonic"
	"github.com/riskibarqy/box-league/internal/usecase"
	"github.com/valyala/bytebufferpool"
)

// Responses follow the Google JSON style guide: a versioned envelope holding
// either data or an error with one item per cause.
const (
	apiVersion  = "2.0"
	errorDomain = "box-league"
)

type envelope struct {
	APIVersion string     `json:"apiVersion"`
	Data       any        `json:"data,omitempty"`
	Error      *errorBody `json:"error,omitempty"`
}

type errorBody struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Status  string      `json:"status"`
	Errors  []errorItem `json:"errors,omitempty"`
}

type errorItem struct {
	Domain  string `json:"domain"`
	Reason  string `json:"reason"`
	Message string `json:"message"`
}

type errorClass struct {
	HTTPStatus int
	Reason     string
	Status     string
}

var (
	classBlocked  = errorClass{http.StatusConflict, "blocked", "FAILED_PRECONDITION"}
	classInternal = errorClass{http.StatusInternalServerError, "internalError", "INTERNAL"}
)

// errorClasses is checked in order; the first sentinel in the chain wins.
var errorClasses = []struct {
	target error
	class  errorClass
}{
	{usecase.ErrInvalidInput, errorClass{http.StatusBadRequest, "invalidInput", "INVALID_ARGUMENT"}},
	{usecase.ErrNotFound, errorClass{http.StatusNotFound, "notFound", "NOT_FOUND"}},
	{usecase.ErrUnauthorized, errorClass{http.StatusUnauthorized, "unauthorized", "UNAUTHENTICATED"}},
	{usecase.ErrForbidden, errorClass{http.StatusForbidden, "forbidden", "PERMISSION_DENIED"}},
	{usecase.ErrConflict, errorClass{http.StatusConflict, "conflict", "ABORTED"}},
	{usecase.ErrDependencyUnavailable, errorClass{http.StatusServiceUnavailable, "dependencyUnavailable", "UNAVAILABLE"}},
	{usecase.ErrIntegrity, errorClass{http.StatusInternalServerError, "integrityViolation", "DATA_LOSS"}},
}

func classifyError(err error) errorClass {
	var be *usecase.BlockedError
	if errors.As(err, &be) {
		return classBlocked
	}
	for _, c := range errorClasses {
		if errors.Is(err, c.target) {
			return c.class
		}
	}
	return classInternal
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	buf := bytebufferpool.Get()
	defer bytebufferpool.Put(buf)

	w.Header().Set("Content-Type", "application/json")
	if err := sonic.ConfigDefault.NewEncoder(buf).Encode(payload); err != nil {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"apiVersion":"2.0","error":{"code":500,"message":"encode response","status":"INTERNAL"}}`))
		return
	}
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	w.WriteHeader(status)
	_, _ = w.Write(buf.B)
}

func writeSuccess(_ context.Context, w http.ResponseWriter, status int, data any) {
	writeJSON(w, status, envelope{APIVersion: apiVersion, Data: data})
}

func writeError(ctx context.Context, w http.ResponseWriter, err error) {
	class := classifyError(err)
	if class.HTTPStatus >= http.StatusInternalServerError {
		markSpanFailed(ctx, err)
	}
	writeJSON(w, class.HTTPStatus, envelope{
		APIVersion: apiVersion,
		Error: &errorBody{
			Code:    class.HTTPStatus,
			Message: err.Error(),
			Status:  class.Status,
			Errors:  errorItems(err, class),
		},
	})
}

// errorItems lists one item per blocker for blocked organizer actions.
func errorItems(err error, class errorClass) []errorItem {
	var be *usecase.BlockedError
	if !errors.As(err, &be) || len(be.Blockers) == 0 {
		return []errorItem{{Domain: errorDomain, Reason: class.Reason, Message: err.Error()}}
	}
	items := make([]errorItem, len(be.Blockers))
	for i, b := range be.Blockers {
		items[i] = errorItem{Domain: errorDomain, Reason: class.Reason, Message: b}
	}
	return items
}

// writeInternalError hides the cause; used after a recovered panic.
func writeInternalError(_ context.Context, w http.ResponseWriter) {
	const msg = "internal server error"
	writeJSON(w, http.StatusInternalServerError, envelope{
		APIVersion: apiVersion,
		Error: &errorBody{
			Code:    http.StatusInternalServerError,
			Message: msg,
			Status:  classInternal.Status,
			Errors:  []errorItem{{Domain: errorDomain, Reason: classInternal.Reason, Message: msg}},
		},
	})
}
