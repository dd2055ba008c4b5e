package auth

import (
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	id "keepsake/pkg/domain"
	"keepsake/pkg/requestcontext"
)

type stubValidator struct {
	claims *Claims
	err    error
}

func (v stubValidator) ValidateToken(string) (*Claims, error) {
	return v.claims, v.err
}

var alice = id.MustParseIdentity("0x5aAeb6053F3E94C9b9A09f33669435E7Ef1BeAed")

func TestRequireAuth(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	var seen id.Identity
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = requestcontext.Caller(r.Context())
		w.WriteHeader(http.StatusNoContent)
	})

	tests := []struct {
		name      string
		header    string
		validator stubValidator
		status    int
		caller    id.Identity
	}{
		{"valid token", "Bearer good", stubValidator{claims: &Claims{Identity: alice, APIVersion: id.APIVersionV1}}, http.StatusNoContent, alice},
		{"missing header", "", stubValidator{}, http.StatusUnauthorized, id.NilIdentity},
		{"wrong scheme", "Basic abc", stubValidator{}, http.StatusUnauthorized, id.NilIdentity},
		{"empty token", "Bearer  ", stubValidator{}, http.StatusUnauthorized, id.NilIdentity},
		{"invalid token", "Bearer bad", stubValidator{err: errors.New("bad signature")}, http.StatusUnauthorized, id.NilIdentity},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			seen = id.NilIdentity
			req := httptest.NewRequest(http.MethodGet, "/v1/records/1", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()

			RequireAuth(tt.validator, logger)(next).ServeHTTP(rec, req)

			assert.Equal(t, tt.status, rec.Code)
			assert.Equal(t, tt.caller, seen)
		})
	}
}
