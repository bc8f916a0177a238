package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "0123456789abcdef0123456789abcdef"

func setRequiredEnv(t *testing.T) {
	t.Setenv("API_BASE_URL", "http://api.internal:8000")
	t.Setenv("PORTAL_ORIGIN", "https://portal.example.com")
	t.Setenv("SESSION_SECRET", testSecret)
}

func TestLoad_Defaults(t *testing.T) {
	setRequiredEnv(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "development", cfg.AppEnv)
	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, 1.0, cfg.LoginRateLimit)
	assert.Equal(t, 5, cfg.LoginRateBurst)
}

func TestLoad_PublicURLDefaultsToServerURL(t *testing.T) {
	setRequiredEnv(t)

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, cfg.APIBaseURL, cfg.PublicAPIBaseURL)
}

func TestLoad_PublicURLOverride(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("PUBLIC_API_BASE_URL", "https://api.example.com")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "https://api.example.com", cfg.PublicAPIBaseURL)
	assert.Equal(t, "http://api.internal:8000", cfg.APIBaseURL)
}

func TestLoad_MissingAPIBaseURL(t *testing.T) {
	t.Setenv("API_BASE_URL", "")
	t.Setenv("PORTAL_ORIGIN", "https://portal.example.com")
	t.Setenv("SESSION_SECRET", testSecret)

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "API_BASE_URL")
}

func TestLoad_InvalidPortalOrigin(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("PORTAL_ORIGIN", "not-an-origin")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "PORTAL_ORIGIN")
}

func TestLoad_ShortSessionSecret(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("SESSION_SECRET", "too-short")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "SESSION_SECRET")
}

func TestLoad_InvalidRateLimit(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("LOGIN_RATE_LIMIT", "zero")

	_, err := Load()
	require.Error(t, err)
}

func TestLoad_NonPositiveBurst(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("LOGIN_RATE_BURST", "0")

	_, err := Load()
	require.Error(t, err)
}
