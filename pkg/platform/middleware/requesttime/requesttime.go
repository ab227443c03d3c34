// Package requesttime pins a single "now" per request so expiry checks,
// audit timestamps and cache ages inside one request agree with each other.
package requesttime

import (
	"net/http"
	"time"

	"consentd/pkg/requestcontext"
)

// Middleware captures the wall-clock time at the start of the request.
func Middleware(next http.Handler) http.Handler {
	return WithClock(time.Now)(next)
}

// WithClock pins the time returned by clock instead of the wall clock.
func WithClock(clock func() time.Time) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := requestcontext.WithTime(r.Context(), clock())
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
