package version

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	id "keepsake/pkg/domain"
	"keepsake/pkg/requestcontext"
)

func TestValidateTokenVersion(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	ok := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})

	tests := []struct {
		name   string
		route  id.APIVersion
		token  id.APIVersion
		status int
	}{
		{"same version", id.APIVersionV1, id.APIVersionV1, http.StatusNoContent},
		{"no token version", id.APIVersionV1, "", http.StatusNoContent},
		{"unknown token version", id.APIVersionV1, id.APIVersion("v2"), http.StatusNoContent},
		{"route version missing", "", id.APIVersionV1, http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/v1/records/1", nil)
			ctx := req.Context()
			if tt.route != "" {
				ctx = requestcontext.WithAPIVersion(ctx, tt.route)
			}
			if tt.token != "" {
				ctx = requestcontext.WithTokenAPIVersion(ctx, tt.token)
			}
			rec := httptest.NewRecorder()
			ValidateTokenVersion(logger)(ok).ServeHTTP(rec, req.WithContext(ctx))
			assert.Equal(t, tt.status, rec.Code)
		})
	}
}

func TestExtractVersion(t *testing.T) {
	var seen id.APIVersion
	h := ExtractVersion(id.APIVersionV1)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = requestcontext.APIVersion(r.Context())
	}))
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, id.APIVersionV1, seen)
}
