// Package requesttime captures one "now" per request. Release-time checks,
// event timestamps and opened_at all read it, so a single request never sees
// two different clocks.
package requesttime

import (
	"net/http"
	"time"

	"keepsake/pkg/requestcontext"
)

// Middleware stores the request start time in the context.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := requestcontext.WithTime(r.Context(), time.Now())
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
