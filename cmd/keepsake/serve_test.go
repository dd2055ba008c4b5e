package main

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"keepsake/internal/identity"
	"keepsake/internal/platform/config"
	"keepsake/internal/registry/handler"
	id "keepsake/pkg/domain"
	dErrors "keepsake/pkg/domain-errors"
	"keepsake/pkg/testutil"
)

var (
	testAdmin = id.MustParseIdentity("0xaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa")
	testAlice = id.MustParseIdentity("0x1111111111111111111111111111111111111111")
	testBob   = id.MustParseIdentity("0x2222222222222222222222222222222222222222")
)

func newTestRouter(t *testing.T) (http.Handler, *identity.TokenService) {
	t.Helper()
	cfg := config.Default()
	cfg.Server.DevMode = true
	cfg.Registry.Administrator = testAdmin.String()
	require.NoError(t, cfg.Validate())

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	a, err := newApp(context.Background(), &cfg, logger)
	require.NoError(t, err)
	t.Cleanup(func() { _ = a.close() })

	tokens := identity.NewTokenService(cfg.Auth.JWTSigningKey, cfg.Auth.Issuer)
	return newRouter(a, tokens, logger), tokens
}

func authed(t *testing.T, tokens *identity.TokenService, req *http.Request, caller id.Identity) *http.Request {
	t.Helper()
	token, err := tokens.Issue(caller, time.Minute)
	require.NoError(t, err)
	req.Header.Set("Authorization", "Bearer "+token)
	return req
}

func TestRegistryOverHTTP(t *testing.T) {
	router, tokens := newTestRouter(t)

	var recordID id.RecordID
	testutil.Given(t, "content released a minute ago", func(t *testing.T) {
		req := testutil.NewJSONRequest(t, http.MethodPost, "/v1/contents", map[string]any{
			"title":                 "Letter",
			"release_time":          time.Now().Add(-time.Minute),
			"locked_metadata_ref":   "ipfs://locked",
			"unlocked_metadata_ref": "ipfs://unlocked",
			"policy":                map[string]bool{"transferable": true},
			"recipients":            []string{testAlice.String(), testBob.String()},
		})
		rr := testutil.DoRequest(router, authed(t, tokens, req, testAdmin))
		testutil.AssertStatus(t, rr, http.StatusCreated)
		resp := testutil.UnmarshalResponse[handler.CreateContentResponse](t, rr)
		require.Len(t, resp.RecordIDs, 2)
		recordID = resp.RepresentativeRecordID
	})

	testutil.When(t, "a stranger unlocks alice's record", func(t *testing.T) {
		path := "/v1/records/" + recordID.String() + "/unlock"
		rr := testutil.DoRequest(router, authed(t, tokens, testutil.NewRequest(t, http.MethodPost, path), testBob))
		testutil.AssertStatusAndError(t, rr, http.StatusForbidden, string(dErrors.CodeForbidden))
	})

	testutil.When(t, "alice unlocks her record", func(t *testing.T) {
		path := "/v1/records/" + recordID.String() + "/unlock"
		rr := testutil.DoRequest(router, authed(t, tokens, testutil.NewRequest(t, http.MethodPost, path), testAlice))
		testutil.AssertStatus(t, rr, http.StatusOK)

		testutil.Then(t, "the metadata pointer switches", func(t *testing.T) {
			path := "/v1/records/" + recordID.String() + "/metadata"
			rr := testutil.DoRequest(router, authed(t, tokens, testutil.NewRequest(t, http.MethodGet, path), testBob))
			testutil.AssertStatus(t, rr, http.StatusOK)
			testutil.AssertJSONContains(t, rr, "metadata_ref", "ipfs://unlocked")
		})

		testutil.Then(t, "a second unlock conflicts", func(t *testing.T) {
			rr := testutil.DoRequest(router, authed(t, tokens, testutil.NewRequest(t, http.MethodPost, path), testAlice))
			testutil.AssertStatusAndError(t, rr, http.StatusConflict, string(dErrors.CodeAlreadyUnlocked))
		})
	})
}

func TestRouterRequiresBearerToken(t *testing.T) {
	router, _ := newTestRouter(t)

	rr := testutil.DoRequest(router, testutil.NewRequest(t, http.MethodGet, "/v1/records/1"))
	testutil.AssertStatusAndError(t, rr, http.StatusUnauthorized, string(dErrors.CodeUnauthorized))
	assert.NotEmpty(t, rr.Header().Get("X-Request-ID"))
}

func TestOperationalEndpoints(t *testing.T) {
	router, _ := newTestRouter(t)

	rr := testutil.DoRequest(router, testutil.NewRequest(t, http.MethodGet, "/health/ready"))
	testutil.AssertStatus(t, rr, http.StatusOK)

	rr = testutil.DoRequest(router, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	testutil.AssertStatus(t, rr, http.StatusOK)
	assert.True(t, strings.Contains(rr.Body.String(), "keepsake_contents_created_total"))
}
