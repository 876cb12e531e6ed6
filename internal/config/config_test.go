package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("APP_ENV", "development")
	t.Setenv("AUTH_JWT_SECRET", "")
	t.Setenv("AUTH_TOKEN_TTL_MINUTES", "")
	t.Setenv("MQTT_BROKER_URL", "")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "crew-auth", cfg.App.Name)
	assert.Equal(t, 12*time.Hour, cfg.Auth.TokenTTL())
	assert.Equal(t, "owner", cfg.Seed.OwnerID)
	assert.False(t, cfg.MQTT.Enabled())
	assert.True(t, cfg.Redis.Enabled)
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("APP_PORT", "9090")
	t.Setenv("AUTH_TOKEN_TTL_MINUTES", "30")
	t.Setenv("REDIS_ENABLED", "false")
	t.Setenv("MQTT_BROKER_URL", "tcp://broker:1883")
	t.Setenv("HTTP_REQUEST_TIMEOUT_SECONDS", "0")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "9090", cfg.App.Port)
	assert.Equal(t, 30*time.Minute, cfg.Auth.TokenTTL())
	assert.False(t, cfg.Redis.Enabled)
	assert.True(t, cfg.MQTT.Enabled())
	assert.Zero(t, cfg.App.RequestTimeout())
}

func TestLoad_Rejects(t *testing.T) {
	t.Run("default secret in production", func(t *testing.T) {
		t.Setenv("APP_ENV", "production")
		t.Setenv("AUTH_JWT_SECRET", "")
		_, err := Load()
		assert.Error(t, err)
	})
	t.Run("bad qos", func(t *testing.T) {
		t.Setenv("MQTT_QOS", "3")
		_, err := Load()
		assert.Error(t, err)
	})
	t.Run("bad redis db", func(t *testing.T) {
		t.Setenv("REDIS_DB", "x")
		_, err := Load()
		assert.Error(t, err)
	})
}

func TestLoadClient(t *testing.T) {
	t.Setenv("CREWCTL_SESSION_BACKEND", SessionBackendSQLite)
	t.Setenv("CREWCTL_SESSION_PATH", "")

	cfg := LoadClient()
	assert.Equal(t, SessionBackendSQLite, cfg.SessionBackend)
	assert.Contains(t, cfg.SessionPath, "session.db")
	assert.Equal(t, "stderr", cfg.Logger.Output)
}
