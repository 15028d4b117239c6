package middleware

import (
	"context"
	"net/http"
	"time"
)

// Timeout bounds each request with context.WithTimeout. Handlers see
// the cancellation through the request context; the send handler's
// deferred Finalize still settles its reservation because it detaches
// from the cancelled context.
func Timeout(timeout time.Duration) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx, cancel := context.WithTimeout(r.Context(), timeout)
			defer cancel()

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
