package version

import (
	"log/slog"
	"net/http"

	id "keepsake/pkg/domain"
	dErrors "keepsake/pkg/domain-errors"
	"keepsake/pkg/platform/httputil"
	"keepsake/pkg/requestcontext"
)

// ValidateTokenVersion rejects tokens whose API version is newer than the
// route's. A v1 token works on a v2 route; a v2 token on a v1 route does not.
// Tokens without a version claim count as the default version.
//
// Runs after ExtractVersion and auth.RequireAuth.
func ValidateTokenVersion(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()

			routeVersion := requestcontext.APIVersion(ctx)
			if routeVersion.IsNil() {
				logger.ErrorContext(ctx, "version validation failed: route version not set",
					"request_id", requestcontext.RequestID(ctx),
				)
				httputil.WriteError(w, dErrors.New(dErrors.CodeInternal, "route version not configured"))
				return
			}

			tokenVersion := requestcontext.TokenAPIVersion(ctx)
			if tokenVersion.IsNil() {
				tokenVersion = id.DefaultVersion()
			}

			if !routeVersion.IsAtLeast(tokenVersion) {
				logger.WarnContext(ctx, "cross-version token rejected",
					"token_version", tokenVersion.String(),
					"route_version", routeVersion.String(),
					"request_id", requestcontext.RequestID(ctx),
					"caller", requestcontext.Caller(ctx).String(),
				)
				httputil.WriteError(w, dErrors.New(dErrors.CodeForbidden,
					"token API version not compatible with this endpoint version"))
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
