package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("CONSENTD_COOKIE_SECRET", "0123456789abcdef")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, ":8080", cfg.Addr)
	assert.Equal(t, "1.0", cfg.ConsentVersion)
	assert.Equal(t, 10, cfg.ConsentHistoryLimit)
	assert.Equal(t, 24*time.Hour, cfg.RegionCacheTTL)
	assert.Equal(t, 2*365*24*time.Hour, cfg.ConsentRetention)
	assert.Equal(t, 100, cfg.TrackingQueueCap)
	assert.True(t, cfg.CookieSecure)
	assert.Empty(t, cfg.RedisURL)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("CONSENTD_COOKIE_SECRET", "0123456789abcdef")
	t.Setenv("CONSENTD_CONSENT_VERSION", "2.0")
	t.Setenv("CONSENTD_TRUSTED_PROXIES", "10.0.0.0/8,192.168.0.0/16")
	t.Setenv("CONSENTD_REGION_CACHE_TTL", "1h")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "2.0", cfg.ConsentVersion)
	assert.Equal(t, []string{"10.0.0.0/8", "192.168.0.0/16"}, cfg.TrustedProxies)
	assert.Equal(t, time.Hour, cfg.RegionCacheTTL)
}

func TestLoadRejectsInvalid(t *testing.T) {
	t.Run("missing secret", func(t *testing.T) {
		t.Setenv("CONSENTD_COOKIE_SECRET", "")
		_, err := Load()
		assert.Error(t, err)
	})

	t.Run("insecure cookies in production", func(t *testing.T) {
		t.Setenv("CONSENTD_COOKIE_SECRET", "0123456789abcdef")
		t.Setenv("CONSENTD_ENV", "production")
		t.Setenv("CONSENTD_COOKIE_SECURE", "false")
		_, err := Load()
		assert.ErrorContains(t, err, "secure cookies")
	})
}
