package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	compliance "consentd/internal/compliance/models"
	consenthandler "consentd/internal/consent/handler"
	consentmetrics "consentd/internal/consent/metrics"
	"consentd/internal/consent/service"
	"consentd/internal/consent/store"
	"consentd/internal/identity"
	"consentd/internal/platform/config"
	"consentd/internal/platform/health"
	"consentd/internal/platform/kv"
	"consentd/internal/platform/metrics"
	"consentd/internal/platform/redis"
	"consentd/internal/platform/tracer"
	"consentd/internal/region"
	"consentd/internal/region/geoip"
	regionhandler "consentd/internal/region/handler"
	regionmetrics "consentd/internal/region/metrics"
	"consentd/internal/tracking"
	trackinghandler "consentd/internal/tracking/handler"
	trackingmetrics "consentd/internal/tracking/metrics"
	"consentd/internal/tracking/sink"
	httptransport "consentd/internal/transport/http"
	id "consentd/pkg/domain"
	"consentd/pkg/platform/circuit"
	"consentd/pkg/platform/middleware/metadata"
)

// app is the assembled server.
type app struct {
	handler http.Handler
	engine  *service.Service
	gate    *tracking.Gate
	redis   *redis.Client
}

// newApp wires every module. backend may be nil, in which case it is built
// from cfg (Redis when configured, process memory otherwise).
func newApp(ctx context.Context, cfg *config.Server, log *slog.Logger, reg *prometheus.Registry, backend kv.Store) (*app, error) {
	a := &app{}
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	if backend == nil {
		if cfg.RedisURL != "" {
			client, err := redis.New(ctx, redis.Config{
				URL:          cfg.RedisURL,
				PoolSize:     cfg.RedisPoolSize,
				MinIdleConns: cfg.RedisMinIdleConns,
				DialTimeout:  cfg.RedisDialTimeout,
				ReadTimeout:  cfg.RedisReadTimeout,
				WriteTimeout: cfg.RedisWriteTimeout,
			}, reg)
			if err != nil {
				return nil, err
			}
			a.redis = client
			backend = kv.NewRedisStore(client.Client, "consentd")
		} else {
			log.Warn("no redis configured, consent state is kept in memory")
			backend = kv.NewInMemoryStore()
		}
	}

	var tr tracer.Tracer = tracer.NewNoop()
	if cfg.Tracing {
		tr = tracer.NewOTel()
	}

	// consent
	consentMetrics := consentmetrics.New(reg)
	consentStore := store.New(backend, log,
		store.WithVersion(cfg.ConsentVersion),
		store.WithHistoryLimit(cfg.ConsentHistoryLimit),
		store.WithRetention(cfg.ConsentRetention),
		store.WithMetrics(consentMetrics),
	)
	a.engine = service.NewService(consentStore, log,
		service.WithMetrics(consentMetrics),
		service.WithAnalytics(service.AnalyticsInitializerFunc(func(ctx context.Context) error {
			return a.gate.Initialize(ctx)
		})),
	)

	// tracking
	var analyticsSink tracking.Sink = sink.NewMemory()
	if cfg.AnalyticsEndpoint != "" {
		analyticsSink = sink.NewHTTP(sink.HTTPConfig{
			Endpoint:  cfg.AnalyticsEndpoint,
			HealthURL: cfg.AnalyticsHealthURL,
			APIKey:    cfg.AnalyticsAPIKey,
		})
	}
	a.gate = tracking.NewGate(a.engine, analyticsSink, backend, log,
		tracking.WithQueueCap(cfg.TrackingQueueCap),
		tracking.WithMetrics(trackingmetrics.New(reg)),
	)
	a.engine.AddListener(a.gate.OnConsentChange)

	// region
	regionMetrics := regionmetrics.New(reg)
	strategies := []region.Strategy{}
	var geoClient *geoip.Client
	if cfg.GeoIPURL != "" {
		geoClient = geoip.NewClient(geoip.Config{
			BaseURL:         cfg.GeoIPURL,
			APIKey:          cfg.GeoIPAPIKey,
			Timeout:         cfg.GeoIPTimeout,
			Tracer:          tr,
			OnCircuitChange: regionMetrics.SetGeoIPCircuitOpen,
		})
		strategies = append(strategies, geoip.NewStrategy(geoClient))
	}
	strategies = append(strategies, region.TimezoneStrategy{}, region.LanguageStrategy{}, region.UserAgentStrategy{})
	detector := region.NewDetector(backend, log, strategies,
		region.WithCacheTTL(cfg.RegionCacheTTL),
		region.WithStrategyTimeout(cfg.RegionStrategyTimeout),
		region.WithTracer(tr),
		region.WithMetrics(regionMetrics),
		region.WithOverrideHook(func(ctx context.Context, subject id.Subject, r compliance.Region) {
			a.engine.Reset(ctx, subject, r)
		}),
	)

	// identity
	signer, err := identity.NewSigner(cfg.CookieSecret)
	if err != nil {
		return nil, fmt.Errorf("cookie signer: %w", err)
	}
	var verifier *identity.Verifier
	if cfg.AuthSigningKey != "" {
		verifier = identity.NewVerifier(cfg.AuthSigningKey, cfg.AuthIssuer, cfg.AuthAudience)
	}
	identityMiddleware := identity.NewMiddleware(signer, verifier, backend, a.engine, identity.Config{
		CookieName:   cfg.CookieName,
		CookieDomain: cfg.CookieDomain,
		Secure:       cfg.CookieSecure,
	}, log)

	// transport
	proxies, err := metadata.ParseTrustedProxies(cfg.TrustedProxies)
	if err != nil {
		return nil, err
	}
	healthHandler := health.New(cfg.Env)
	healthHandler.RegisterCheck("kv", backend.Ping)
	if geoClient != nil {
		healthHandler.RegisterInfoCheck("geoip", func(context.Context) error {
			if geoClient.Breaker().State() == circuit.StateOpen {
				return fmt.Errorf("circuit %s", circuit.StateOpen)
			}
			return nil
		})
	}

	a.handler = httptransport.NewRouter(httptransport.Config{
		Logger:     log,
		Metrics:    metrics.New(reg),
		Gatherer:   reg,
		Metadata:   metadata.NewMiddleware(&metadata.Config{TrustedProxies: proxies}),
		Identity:   identityMiddleware.Handler,
		Health:     healthHandler,
		RateLimit:  cfg.RateLimit,
		MaxBody:    cfg.MaxBodyBytes,
		Production: cfg.IsProduction(),
		API: []httptransport.Registrar{
			consenthandler.New(a.engine, detector, log),
			regionhandler.New(detector, log),
			trackinghandler.New(a.gate, log),
			identity.NewHandler(identityMiddleware, log),
		},
	})
	return a, nil
}

// close releases external connections.
func (a *app) close() error {
	if a.redis != nil {
		return a.redis.Close()
	}
	return nil
}
