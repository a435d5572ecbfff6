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

	assert.Equal(t, "0.0.0.0:8080", cfg.Server.Addr())
	assert.Equal(t, 5*time.Second, cfg.Catalog.Timeout)
	assert.Equal(t, 3*time.Second, cfg.Notification.Timeout)
	assert.Equal(t, 25, cfg.DB.MaxOpenConns)
	assert.Contains(t, cfg.DB.DSN(), "postgres://swifteats:")
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("SWIFTEATS_SERVER_PORT", "9090")
	t.Setenv("SWIFTEATS_DB_HOST", "db.internal")
	t.Setenv("SWIFTEATS_CATALOG_TIMEOUT", "2s")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, "db.internal", cfg.DB.Host)
	assert.Equal(t, 2*time.Second, cfg.Catalog.Timeout)
}
