package config

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("CONFIG_DIR", dir)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "localhost:8080", cfg.ServerAddress)
	assert.Equal(t, dir, cfg.ConfigDir)
	assert.Equal(t, filepath.Join(dir, "token"), cfg.TokenPath)
	assert.Equal(t, filepath.Join(dir, "data.db"), cfg.DataPath)
	assert.Equal(t, filepath.Join(dir, "salesync.log"), cfg.LogFile)
	assert.Equal(t, 5*time.Minute, cfg.SyncIntervalDuration())
	assert.Equal(t, 5*time.Second, cfg.HealthTimeoutDuration())
	assert.False(t, cfg.EnableTLS)
	assert.True(t, cfg.IsLocal())
}

func TestLoad_FromEnv(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("CONFIG_DIR", dir)
	t.Setenv("APP_ENV", "prod")
	t.Setenv("SERVER_ADDRESS", "sync.example.com:443")
	t.Setenv("ENABLE_TLS", "true")
	t.Setenv("SYNC_INTERVAL_SECONDS", "60")
	t.Setenv("DATA_PATH", filepath.Join(dir, "custom.db"))

	cfg, err := Load()
	require.NoError(t, err)

	assert.True(t, cfg.IsProd())
	assert.Equal(t, "sync.example.com:443", cfg.ServerAddress)
	assert.True(t, cfg.EnableTLS)
	assert.Equal(t, time.Minute, cfg.SyncIntervalDuration())
	assert.Equal(t, filepath.Join(dir, "custom.db"), cfg.DataPath)
}

func TestLoad_Invalid(t *testing.T) {
	t.Setenv("CONFIG_DIR", t.TempDir())
	t.Setenv("HEALTH_TIMEOUT_SECONDS", "0")

	_, err := Load()
	assert.Error(t, err)
}
