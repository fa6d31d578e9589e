package server

import (
	"context"
	"net/http"
	"time"
)

// TimeoutMiddleware caps the context deadline of each request. The
// deadline propagates through the orchestrator into every Bedrock,
// retrieval, and store call, so a stuck upstream fails the turn instead
// of holding the connection open. Cancellation is cooperative; the
// handler is not forcibly terminated.
func TimeoutMiddleware(timeout time.Duration) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx, cancel := context.WithTimeout(r.Context(), timeout)
			defer cancel()
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
