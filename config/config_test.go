package config_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/pulse-reports/backend/config"
)

func TestLoadRequiresJWTSecret(t *testing.T) {
	t.Setenv("JWT_SECRET", "")
	_, err := config.Load()
	require.ErrorIs(t, err, config.ErrMissingJWTSecret)
}

func TestLoadDefaults(t *testing.T) {
	t.Setenv("JWT_SECRET", "s3cret")
	cfg, err := config.Load()
	require.NoError(t, err)
	require.Equal(t, "s3cret", cfg.JWT.Secret)
	require.Equal(t, 24, cfg.JWT.ExpireHours)
	require.Equal(t, "8080", cfg.Server.Port)
	require.Contains(t, cfg.Database.DSN(), "postgres://")
}

func TestDatabaseURLOverridesComponents(t *testing.T) {
	t.Setenv("JWT_SECRET", "s3cret")
	t.Setenv("DATABASE_URL", "postgres://db:5432/pulse?sslmode=disable")
	cfg, err := config.Load()
	require.NoError(t, err)
	require.Equal(t, "postgres://db:5432/pulse?sslmode=disable", cfg.Database.DSN())
}
