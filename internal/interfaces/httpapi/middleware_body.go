package httpapi

import (
	"bytes"
	"io"
	"net/http"
	"unicode/utf8"

	"github.com/valyala/bytebufferpool"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// CaptureRequestBody attaches up to maxBytes of a write request's body to the
// active request span. The handler still sees the full body.
func CaptureRequestBody(maxBytes int, next http.Handler) http.Handler {
	if maxBytes <= 0 {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		span := trace.SpanFromContext(r.Context())
		if !span.IsRecording() || r.Body == nil || !hasRequestBody(r.Method) {
			next.ServeHTTP(w, r)
			return
		}

		buf := bytebufferpool.Get()
		defer bytebufferpool.Put(buf)

		_, err := io.CopyN(buf, r.Body, int64(maxBytes)+1)
		if err != nil && err != io.EOF {
			span.SetAttributes(attribute.String("http.request.body.error", err.Error()))
		}

		captured := buf.Bytes()
		truncated := len(captured) > maxBytes
		preview := captured
		if truncated {
			preview = captured[:maxBytes]
		}
		if utf8.Valid(preview) {
			span.SetAttributes(
				attribute.String("http.request.body", string(preview)),
				attribute.Bool("http.request.body.truncated", truncated),
			)
		}

		replay := append([]byte(nil), captured...)
		r.Body = struct {
			io.Reader
			io.Closer
		}{io.MultiReader(bytes.NewReader(replay), r.Body), r.Body}
		next.ServeHTTP(w, r)
	})
}

func hasRequestBody(method string) bool {
	switch method {
	case http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete:
		return true
	default:
		return false
	}
}
