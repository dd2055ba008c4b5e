// Package httpserver builds the HTTP server and its health probes.
package httpserver

import (
	"context"
	"net/http"
	"time"

	"keepsake/internal/platform/config"
	"keepsake/pkg/platform/httputil"
)

// New builds an HTTP server from the server config.
func New(cfg config.Server, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:              cfg.Addr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       cfg.ReadTimeout,
		WriteTimeout:      cfg.WriteTimeout,
	}
}

// Check reports whether one dependency is usable.
type Check func(ctx context.Context) error

// Health serves the liveness and readiness probes.
type Health struct {
	checks  map[string]Check
	timeout time.Duration
}

func NewHealth(checks map[string]Check) *Health {
	return &Health{checks: checks, timeout: 2 * time.Second}
}

type checkResult struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
}

type healthResponse struct {
	Status    string                 `json:"status"`
	Timestamp string                 `json:"timestamp"`
	Service   string                 `json:"service"`
	Checks    map[string]checkResult `json:"checks,omitempty"`
}

// Live reports that the process is serving.
func (h *Health) Live(w http.ResponseWriter, _ *http.Request) {
	httputil.WriteJSON(w, http.StatusOK, healthResponse{
		Status:    "ok",
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Service:   "keepsake",
	})
}

// Ready runs every check and answers 503 if any fails.
func (h *Health) Ready(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	resp := healthResponse{
		Status:    "ok",
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Service:   "keepsake",
		Checks:    make(map[string]checkResult, len(h.checks)),
	}
	for name, check := range h.checks {
		if err := check(ctx); err != nil {
			resp.Status = "fail"
			resp.Checks[name] = checkResult{Status: "fail", Message: err.Error()}
			continue
		}
		resp.Checks[name] = checkResult{Status: "ok"}
	}

	status := http.StatusOK
	if resp.Status == "fail" {
		status = http.StatusServiceUnavailable
	}
	httputil.WriteJSON(w, status, resp)
}
