package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("APP_ENV", "")
	t.Setenv("DATABASE_URI", "")
	t.Setenv("SECRET", "")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.Server.RunAddress)
	assert.Equal(t, EnvLocal, cfg.Env)
	assert.Empty(t, cfg.DB.DatabaseURI)
	assert.Equal(t, defaultSecretKey, cfg.Auth.Secret)
	assert.Equal(t, 24*time.Hour, cfg.Auth.TokenTTL)
	assert.Equal(t, 10*time.Second, cfg.Server.ShutdownTimeout)
}

func TestLoad_FromEnv(t *testing.T) {
	t.Setenv("APP_ENV", EnvProd)
	t.Setenv("RUN_ADDRESS", ":9090")
	t.Setenv("DATABASE_URI", "postgres://u:p@localhost:5432/salesync?sslmode=disable")
	t.Setenv("MIGRATIONS_PATH", "/srv/migrations")
	t.Setenv("SECRET", "s3cret")
	t.Setenv("TOKEN_TTL_HOURS", "2")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":9090", cfg.Server.RunAddress)
	assert.Equal(t, "postgres://u:p@localhost:5432/salesync?sslmode=disable", cfg.DB.DatabaseURI)
	assert.Equal(t, "/srv/migrations", cfg.DB.Migrations)
	assert.Equal(t, "s3cret", cfg.Auth.Secret)
	assert.Equal(t, 2*time.Hour, cfg.Auth.TokenTTL)
}

func TestLoad_ProdRequiresSecret(t *testing.T) {
	t.Setenv("APP_ENV", EnvProd)
	t.Setenv("SECRET", "")

	_, err := Load()
	assert.Error(t, err)
}
