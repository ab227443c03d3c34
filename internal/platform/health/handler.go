// Package health serves liveness, readiness and status probes.
package health

import (
	"context"
	"maps"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"

	"consentd/pkg/platform/httputil"
)

// Version is set at build time via ldflags.
var Version = "dev"

const checkTimeout = 2 * time.Second

// CheckFunc returns nil when the dependency is healthy.
type CheckFunc func(ctx context.Context) error

type check struct {
	fn       CheckFunc
	critical bool
}

// Handler provides health check endpoints.
type Handler struct {
	startTime   time.Time
	environment string

	mu     sync.RWMutex
	checks map[string]check
}

func New(environment string) *Handler {
	return &Handler{
		startTime:   time.Now(),
		environment: environment,
		checks:      make(map[string]check),
	}
}

// RegisterCheck adds a named readiness check (e.g. "kv"). A failing check
// takes the instance out of rotation.
func (h *Handler) RegisterCheck(name string, fn CheckFunc) {
	h.add(name, check{fn: fn, critical: true})
}

// RegisterInfoCheck adds a check for a dependency the service can run
// without (e.g. "geoip"). Failures mark /health degraded but leave
// readiness alone.
func (h *Handler) RegisterInfoCheck(name string, fn CheckFunc) {
	h.add(name, check{fn: fn})
}

func (h *Handler) add(name string, c check) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.checks[name] = c
}

// Register mounts health check routes on the given router.
func (h *Handler) Register(r chi.Router) {
	r.Get("/health", h.HandleStatus)
	r.Get("/health/live", h.HandleLiveness)
	r.Get("/health/ready", h.HandleReadiness)
}

// LivenessResponse is the response for the liveness probe.
type LivenessResponse struct {
	Status string `json:"status"`
}

func (h *Handler) HandleLiveness(w http.ResponseWriter, _ *http.Request) {
	httputil.WriteJSON(w, http.StatusOK, LivenessResponse{Status: "alive"})
}

// ReadinessResponse lists each dependency as "up" or "down: <reason>".
type ReadinessResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks,omitempty"`
}

// HandleReadiness runs every check and answers 503 if any fails.
func (h *Handler) HandleReadiness(w http.ResponseWriter, r *http.Request) {
	res := h.run(r.Context())
	if !res.ready {
		httputil.WriteJSON(w, http.StatusServiceUnavailable, ReadinessResponse{Status: "not_ready", Checks: res.checks})
		return
	}
	httputil.WriteJSON(w, http.StatusOK, ReadinessResponse{Status: "ready", Checks: res.checks})
}

// StatusResponse is the general status document.
type StatusResponse struct {
	Status        string            `json:"status"`
	Version       string            `json:"version"`
	Environment   string            `json:"environment"`
	UptimeSeconds int64             `json:"uptime_seconds"`
	Timestamp     string            `json:"timestamp"`
	Checks        map[string]string `json:"checks,omitempty"`
}

// HandleStatus reports version, uptime and dependency state. It always
// answers 200 so dashboards can read it while degraded.
func (h *Handler) HandleStatus(w http.ResponseWriter, r *http.Request) {
	res := h.run(r.Context())
	status := "healthy"
	if !res.ready || res.degraded {
		status = "degraded"
	}
	httputil.WriteJSON(w, http.StatusOK, StatusResponse{
		Status:        status,
		Version:       Version,
		Environment:   h.environment,
		UptimeSeconds: int64(time.Since(h.startTime).Seconds()),
		Timestamp:     time.Now().UTC().Format(time.RFC3339),
		Checks:        res.checks,
	})
}

type result struct {
	ready    bool
	degraded bool
	checks   map[string]string
}

func (h *Handler) run(ctx context.Context) result {
	h.mu.RLock()
	checks := make(map[string]check, len(h.checks))
	maps.Copy(checks, h.checks)
	h.mu.RUnlock()

	ctx, cancel := context.WithTimeout(ctx, checkTimeout)
	defer cancel()

	res := result{ready: true, checks: make(map[string]string, len(checks))}
	for name, c := range checks {
		if err := c.fn(ctx); err != nil {
			res.checks[name] = "down: " + err.Error()
			if c.critical {
				res.ready = false
			} else {
				res.degraded = true
			}
			continue
		}
		res.checks[name] = "up"
	}
	return res
}
