// Package version binds each route group to an API version and rejects caller
// tokens issued for a newer one.
package version

import (
	"net/http"

	id "keepsake/pkg/domain"
	"keepsake/pkg/requestcontext"
)

// ExtractVersion records the route group's API version in the context.
//
//	r.Route("/v1", func(v1 chi.Router) {
//	    v1.Use(version.ExtractVersion(id.APIVersionV1))
//	})
func ExtractVersion(version id.APIVersion) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := requestcontext.WithAPIVersion(r.Context(), version)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
