package middleware

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"runtime/debug"

	"glow-hq/glow/pkg/api/types"
)

// Recovery recovers from panics in handlers and returns a 500 without
// exposing internal details. The panic and stack trace are logged with
// the request ID for correlation.
//
// Budget reservations survive handler panics: handlers defer their
// Finalize before doing any work, so the deferred rollback has already
// run by the time the panic reaches this middleware.
func Recovery(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if err := recover(); err != nil {
				slog.ErrorContext(r.Context(), "panic in handler",
					"error", err,
					"request_id", GetRequestID(r.Context()),
					"method", r.Method,
					"path", r.URL.Path,
					"stack", string(debug.Stack()),
				)

				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusInternalServerError)
				_ = json.NewEncoder(w).Encode(types.ErrorResponse{
					Detail: "internal server error",
				})
			}
		}()

		next.ServeHTTP(w, r)
	})
}
