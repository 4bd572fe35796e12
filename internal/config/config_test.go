package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// chdir mirrors testing.T.Chdir (Go 1.24+) for older toolchains.
func chdir(t *testing.T, dir string) {
	t.Helper()
	prev, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(prev) })
}

func TestFromEnvDefaults(t *testing.T) {
	chdir(t, t.TempDir())

	cfg, err := FromEnv()
	require.NoError(t, err)

	assert.Equal(t, "development", cfg.Env)
	assert.Equal(t, ":5000", cfg.HTTPAddr)
	assert.Equal(t, CartStorePostgres, cfg.CartStore)
	assert.Equal(t, 10*time.Second, cfg.ShutdownTimeout)
	assert.Equal(t, 24*time.Hour, cfg.IdempotencyTTL)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.EqualValues(t, 10, cfg.DBMaxConns)
	assert.False(t, cfg.UsesRedis())
}

func TestFromEnvOverrides(t *testing.T) {
	chdir(t, t.TempDir())
	t.Setenv("STRAWBEARY_HTTP_ADDR", ":9090")
	t.Setenv("STRAWBEARY_CART_STORE", "Redis")
	t.Setenv("STRAWBEARY_REDIS_ADDR", "cache:6379")
	t.Setenv("STRAWBEARY_HTTP_SHUTDOWN_TIMEOUT", "3s")

	cfg, err := FromEnv()
	require.NoError(t, err)

	assert.Equal(t, ":9090", cfg.HTTPAddr)
	assert.Equal(t, CartStoreRedis, cfg.CartStore)
	assert.Equal(t, "cache:6379", cfg.RedisAddr)
	assert.Equal(t, 3*time.Second, cfg.ShutdownTimeout)
	assert.True(t, cfg.UsesRedis())
}

func TestFromEnvRejectsUnknownCartStore(t *testing.T) {
	chdir(t, t.TempDir())
	t.Setenv("STRAWBEARY_CART_STORE", "mongo")

	_, err := FromEnv()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "cart.store")
}

func TestFromEnvProductionRequiresCORSOrigins(t *testing.T) {
	chdir(t, t.TempDir())
	t.Setenv("STRAWBEARY_APP_ENV", "production")

	_, err := FromEnv()
	require.Error(t, err)

	t.Setenv("STRAWBEARY_HTTP_CORS_ALLOW_ORIGINS", "https://strawbeary.example")
	cfg, err := FromEnv()
	require.NoError(t, err)
	assert.Equal(t, []string{"https://strawbeary.example"}, cfg.CORSOrigins)
}
