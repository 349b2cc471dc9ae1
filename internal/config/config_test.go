package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "development", cfg.Environment)
	assert.Equal(t, 8080, cfg.HTTP.Port)
	assert.Equal(t, 60*60*24*14, cfg.Session.Expiration)
	assert.Equal(t, "https://api.machines.dev", cfg.Provisioner.BaseURL)
	assert.Equal(t, "ord", cfg.Provisioner.Region)
	assert.Equal(t, 30*time.Second, cfg.Provisioner.Timeout)
	assert.True(t, cfg.Reconciler.Enabled)
	assert.Equal(t, time.Hour, cfg.Reconciler.SweepAfter)
}

func TestLoadSessionExpirationFromEnv(t *testing.T) {
	t.Setenv("SESSION_EXPIRATION", "3600")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 3600, cfg.Session.Expiration)
}

func TestLoadLegacyEnvNames(t *testing.T) {
	t.Setenv("FLY_API_TOKEN", "fly-token")
	t.Setenv("PORT", "9090")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "fly-token", cfg.Provisioner.Token)
	assert.Equal(t, 9090, cfg.HTTP.Port)
}
