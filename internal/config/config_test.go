package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	t.Setenv("APP_ENV", "development")
	t.Setenv("APP_URL", "http://localhost:8090")
	t.Setenv("PASSWORD_RESET_CONCEAL_UNKNOWN", "true")
	t.Setenv("RATE_LIMIT_WINDOW", "1m")
	t.Setenv("RATE_LIMIT_REQUESTS", "not-a-number")

	cfg := Load()
	require.NotNil(t, cfg)

	assert.True(t, cfg.IsDevelopment())
	assert.False(t, cfg.IsProduction())
	assert.Equal(t, "http://localhost:8090", cfg.AppURL)
	assert.Equal(t, "sqlite", cfg.DBDriver)
	assert.True(t, cfg.PasswordResetConcealUnknown)
	assert.Equal(t, time.Minute, cfg.RateLimitWindow)
	assert.Equal(t, 5, cfg.RateLimitRequests)
}

func TestSanitized(t *testing.T) {
	cfg := &Config{
		AppEnv:       "production",
		AppURL:       "https://example.com",
		DBConnection: "postgres://user:secret@db/app",
		ResendAPIKey: "re_secret",
		SentryDSN:    "https://key@sentry.io/1",
	}

	safe := cfg.Sanitized()
	assert.Equal(t, "https://example.com", safe.AppURL)
	assert.Empty(t, safe.DBConnection)
	assert.Empty(t, safe.ResendAPIKey)
	assert.Empty(t, safe.SentryDSN)
}

func TestLoadDatabase(t *testing.T) {
	t.Setenv("DB_DRIVER", "")
	t.Setenv("DB_CONNECTION", "")

	driver, conn := LoadDatabase()
	assert.Equal(t, "sqlite", driver)
	assert.Contains(t, conn, "busy_timeout")

	t.Setenv("DB_DRIVER", "pgx")
	t.Setenv("DB_CONNECTION", "postgres://localhost/acme")

	driver, conn = LoadDatabase()
	assert.Equal(t, "pgx", driver)
	assert.Equal(t, "postgres://localhost/acme", conn)
}
