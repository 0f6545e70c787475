package httpapi

import (
	"net/http"

	"github.com/riskibarqy/box-league/internal/platform/logging"
)

// RouterConfig carries the transport-level settings of the API.
type RouterConfig struct {
	SwaggerEnabled     bool
	CORSAllowedOrigins []string
	InternalJobToken   string
	// RequestBodyTraceBytes caps the write-request body recorded on spans.
	// Zero disables capture.
	RequestBodyTraceBytes int
}

func NewRouter(handler *Handler, verifier TokenVerifier, logger *logging.Logger, cfg RouterConfig) http.Handler {
	if logger == nil {
		logger = logging.Default()
	}

	mux := http.NewServeMux()
	registerSystemRoutes(mux, handler, cfg.SwaggerEnabled)
	registerLeagueRoutes(mux, handler, verifier)
	registerSeasonRoutes(mux, handler, verifier)
	registerWeekRoutes(mux, handler, verifier)
	registerAttendanceRoutes(mux, handler, verifier)
	registerInternalJobRoutes(mux, handler, cfg.InternalJobToken)

	inner := CORS(cfg.CORSAllowedOrigins, recoverPanic(logger, mux))
	return RequestTracing(CaptureRequestBody(cfg.RequestBodyTraceBytes, RequestLogging(logger, inner)))
}

func recoverPanic(logger *logging.Logger, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		defer func() {
			if rec := recover(); rec != nil {
				logger.ErrorContext(ctx, "panic recovered", "panic", rec, "path", r.URL.Path)
				writeInternalError(ctx, w)
			}
		}()
		next.ServeHTTP(w, r)
	})
}
