// Package config loads server configuration from CONSENTD_* environment
// variables.
package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Server captures all runtime configuration.
type Server struct {
	Env             string        `envconfig:"ENV" default:"development"`
	Addr            string        `envconfig:"ADDR" default:":8080"`
	ReadTimeout     time.Duration `envconfig:"READ_TIMEOUT" default:"15s"`
	WriteTimeout    time.Duration `envconfig:"WRITE_TIMEOUT" default:"15s"`
	ShutdownTimeout time.Duration `envconfig:"SHUTDOWN_TIMEOUT" default:"10s"`
	MaxBodyBytes    int64         `envconfig:"MAX_BODY_BYTES" default:"65536"`
	TrustedProxies  []string      `envconfig:"TRUSTED_PROXIES"`
	RateLimit       int           `envconfig:"RATE_LIMIT_PER_MINUTE" default:"120"`

	LogLevel  string `envconfig:"LOG_LEVEL" default:"info"`
	LogFormat string `envconfig:"LOG_FORMAT" default:"json"`
	Tracing   bool   `envconfig:"TRACING_ENABLED" default:"false"`

	// RedisURL empty keeps consent state in process memory.
	RedisURL          string        `envconfig:"REDIS_URL"`
	RedisPoolSize     int           `envconfig:"REDIS_POOL_SIZE" default:"10"`
	RedisMinIdleConns int           `envconfig:"REDIS_MIN_IDLE_CONNS" default:"2"`
	RedisDialTimeout  time.Duration `envconfig:"REDIS_DIAL_TIMEOUT" default:"5s"`
	RedisReadTimeout  time.Duration `envconfig:"REDIS_READ_TIMEOUT" default:"3s"`
	RedisWriteTimeout time.Duration `envconfig:"REDIS_WRITE_TIMEOUT" default:"3s"`
	RedisStatsEvery   time.Duration `envconfig:"REDIS_STATS_INTERVAL" default:"15s"`

	ConsentVersion      string        `envconfig:"CONSENT_VERSION" default:"1.0"`
	ConsentHistoryLimit int           `envconfig:"CONSENT_HISTORY_LIMIT" default:"10"`
	ConsentRetention    time.Duration `envconfig:"CONSENT_RETENTION" default:"17520h"`

	RegionCacheTTL        time.Duration `envconfig:"REGION_CACHE_TTL" default:"24h"`
	RegionStrategyTimeout time.Duration `envconfig:"REGION_STRATEGY_TIMEOUT" default:"3s"`
	GeoIPURL              string        `envconfig:"GEOIP_URL"`
	GeoIPAPIKey           string        `envconfig:"GEOIP_API_KEY"`
	GeoIPTimeout          time.Duration `envconfig:"GEOIP_TIMEOUT" default:"2s"`

	CookieSecret   string `envconfig:"COOKIE_SECRET" required:"true"`
	CookieName     string `envconfig:"COOKIE_NAME" default:"consentd_vid"`
	CookieDomain   string `envconfig:"COOKIE_DOMAIN"`
	CookieSecure   bool   `envconfig:"COOKIE_SECURE" default:"true"`
	AuthSigningKey string `envconfig:"AUTH_SIGNING_KEY"`
	AuthIssuer     string `envconfig:"AUTH_ISSUER"`
	AuthAudience   string `envconfig:"AUTH_AUDIENCE"`

	// AnalyticsEndpoint empty records events in memory.
	AnalyticsEndpoint  string `envconfig:"ANALYTICS_ENDPOINT"`
	AnalyticsHealthURL string `envconfig:"ANALYTICS_HEALTH_URL"`
	AnalyticsAPIKey    string `envconfig:"ANALYTICS_API_KEY"`
	TrackingQueueCap   int    `envconfig:"TRACKING_QUEUE_CAP" default:"100"`
}

// Load reads and validates configuration.
func Load() (*Server, error) {
	var cfg Server
	if err := envconfig.Process("consentd", &cfg); err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks cross-field constraints envconfig cannot express.
func (c *Server) Validate() error {
	if len(c.CookieSecret) < 16 || len(c.CookieSecret) > 64 {
		return errors.New("cookie secret must be 16 to 64 bytes")
	}
	if c.IsProduction() && !c.CookieSecure {
		return errors.New("secure cookies are required in production")
	}
	if c.ConsentHistoryLimit < 1 {
		return errors.New("consent history limit must be positive")
	}
	if c.TrackingQueueCap < 1 {
		return errors.New("tracking queue cap must be positive")
	}
	return nil
}

// IsProduction reports whether the server runs in production.
func (c *Server) IsProduction() bool {
	return c != nil && c.Env == "production"
}
