// Package httptransport assembles the public HTTP surface.
package httptransport

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/httprate"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/unrolled/secure"

	"consentd/internal/platform/metrics"
	dErrors "consentd/pkg/domain-errors"
	"consentd/pkg/platform/httputil"
	"consentd/pkg/platform/middleware/metadata"
	"consentd/pkg/platform/middleware/request"
	"consentd/pkg/platform/middleware/requesttime"
	"consentd/pkg/platform/validation"
	"consentd/pkg/requestcontext"
)

// Registrar mounts a module's routes.
type Registrar interface {
	Register(r chi.Router)
}

// Config carries everything the router wires together.
type Config struct {
	Logger     *slog.Logger
	Metrics    *metrics.Metrics
	Gatherer   prometheus.Gatherer
	Metadata   *metadata.Middleware
	Identity   func(http.Handler) http.Handler
	Health     Registrar
	API        []Registrar
	RateLimit  int
	MaxBody    int64
	Production bool
}

// NewRouter wires all public endpoints with middleware. Health and metrics
// sit outside identity and rate limiting so probes never mint visitors.
func NewRouter(cfg Config) http.Handler {
	r := chi.NewRouter()

	r.Use(request.Recovery(cfg.Logger))
	r.Use(request.RequestID)
	r.Use(requesttime.Middleware)
	r.Use(cfg.Metadata.Handler)
	r.Use(request.Logger(cfg.Logger))
	if cfg.Metrics != nil {
		r.Use(cfg.Metrics.Middleware)
	}
	r.Use(securityHeaders(cfg.Production).Handler)
	r.NotFound(notFound)

	cfg.Health.Register(r)
	r.Handle("/metrics", promhttp.HandlerFor(cfg.Gatherer, promhttp.HandlerOpts{}))

	maxBody := cfg.MaxBody
	if maxBody <= 0 {
		maxBody = validation.MaxBodySize
	}

	r.Group(func(api chi.Router) {
		api.Use(request.BodyLimit(maxBody))
		api.Use(request.ContentTypeJSON)
		if cfg.RateLimit > 0 {
			api.Use(rateLimiter(cfg.RateLimit, cfg.Metrics))
		}
		api.Use(cfg.Identity)
		for _, reg := range cfg.API {
			reg.Register(api)
		}
	})
	return r
}

func securityHeaders(production bool) *secure.Secure {
	return secure.New(secure.Options{
		FrameDeny:             true,
		ContentTypeNosniff:    true,
		ReferrerPolicy:        "strict-origin-when-cross-origin",
		ContentSecurityPolicy: "default-src 'none'; frame-ancestors 'none'",
		SSLRedirect:           production,
		SSLProxyHeaders:       map[string]string{"X-Forwarded-Proto": "https"},
		IsDevelopment:         !production,
	})
}

// rateLimiter keys on the client IP resolved by the metadata middleware,
// which already honors trusted proxies.
func rateLimiter(perMinute int, m *metrics.Metrics) func(http.Handler) http.Handler {
	return httprate.Limit(perMinute, time.Minute,
		httprate.WithKeyFuncs(func(r *http.Request) (string, error) {
			if ip := requestcontext.ClientIP(r.Context()); ip != "" {
				return ip, nil
			}
			return httprate.KeyByIP(r)
		}),
		httprate.WithLimitHandler(func(w http.ResponseWriter, _ *http.Request) {
			if m != nil {
				m.IncrementRateLimited()
			}
			httputil.WriteJSON(w, http.StatusTooManyRequests, map[string]string{
				"error":             "rate_limited",
				"error_description": "too many requests",
			})
		}),
	)
}

// notFound answers unknown routes in the JSON error envelope.
func notFound(w http.ResponseWriter, _ *http.Request) {
	httputil.WriteError(w, dErrors.New(dErrors.CodeNotFound, "route not found"))
}
