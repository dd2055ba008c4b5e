package httpserver

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReady(t *testing.T) {
	ok := func(context.Context) error { return nil }
	down := func(context.Context) error { return errors.New("connection refused") }

	t.Run("all checks pass", func(t *testing.T) {
		rec := httptest.NewRecorder()
		NewHealth(map[string]Check{"postgres": ok, "redis": ok}).Ready(rec, httptest.NewRequest(http.MethodGet, "/health/ready", nil))
		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("one check fails", func(t *testing.T) {
		rec := httptest.NewRecorder()
		NewHealth(map[string]Check{"postgres": ok, "redis": down}).Ready(rec, httptest.NewRequest(http.MethodGet, "/health/ready", nil))
		assert.Equal(t, http.StatusServiceUnavailable, rec.Code)

		var body healthResponse
		require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
		assert.Equal(t, "fail", body.Status)
		assert.Equal(t, "ok", body.Checks["postgres"].Status)
		assert.Equal(t, "connection refused", body.Checks["redis"].Message)
	})

	t.Run("no dependencies configured", func(t *testing.T) {
		rec := httptest.NewRecorder()
		NewHealth(nil).Ready(rec, httptest.NewRequest(http.MethodGet, "/health/ready", nil))
		assert.Equal(t, http.StatusOK, rec.Code)
	})
}

func TestLive(t *testing.T) {
	rec := httptest.NewRecorder()
	NewHealth(nil).Live(rec, httptest.NewRequest(http.MethodGet, "/health/live", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}
