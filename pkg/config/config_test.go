package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	chdirTemp(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, EnvDevelopment, cfg.Env)
	assert.Equal(t, 8080, cfg.Port)
	assert.Equal(t, StorageDriverRedis, cfg.Session.Driver)
	assert.Equal(t, "sb-rajac-auth-token", cfg.Auth.StorageKey())
	assert.Equal(t, time.Hour, cfg.Hardening.CSRFTTL)
	assert.Equal(t, 24*time.Hour, cfg.Hardening.SessionTTL)
	assert.False(t, cfg.Hardening.RateLimit)
	assert.True(t, cfg.Hardening.SecurityHeaders)
	assert.False(t, cfg.Admin.Revalidate)
}

func TestLoadEnvOverrides(t *testing.T) {
	chdirTemp(t)
	t.Setenv("PORT", "9090")
	t.Setenv("AUTH_PROJECT_REF", "amsw")
	t.Setenv("SESSION_STORAGE_DRIVER", "MEMORY")
	t.Setenv("HARDENING_RATE_LIMIT", "true")
	t.Setenv("ALLOWED_ORIGINS", "https://a.example, https://b.example ,")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Port)
	assert.Equal(t, "sb-amsw-auth-token", cfg.Auth.StorageKey())
	assert.Equal(t, StorageDriverMemory, cfg.Session.Driver)
	assert.True(t, cfg.Hardening.RateLimit)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.CORS.AllowedOrigins)
}

func TestParseDurationFallback(t *testing.T) {
	assert.Equal(t, time.Minute, parseDuration("", time.Minute))
	assert.Equal(t, time.Minute, parseDuration("soon", time.Minute))
	assert.Equal(t, 2*time.Second, parseDuration("2s", time.Minute))
}

func chdirTemp(t *testing.T) {
	t.Helper()
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(t.TempDir()))
	t.Cleanup(func() { _ = os.Chdir(wd) })
}
