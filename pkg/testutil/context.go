package testutil

import (
	"net/http"
	"time"

	id "keepsake/pkg/domain"
	"keepsake/pkg/requestcontext"
)

// AsCaller attaches a caller identity to the request context, as the bearer
// auth middleware does for authenticated requests.
func AsCaller(req *http.Request, caller id.Identity) *http.Request {
	return req.WithContext(requestcontext.WithCaller(req.Context(), caller))
}

// AtTime pins the request time that unlock decisions compare against.
func AtTime(req *http.Request, t time.Time) *http.Request {
	return req.WithContext(requestcontext.WithTime(req.Context(), t))
}
