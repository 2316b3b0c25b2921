package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("CONFIG_PATH", "")

	conf, err := Load()

	require.NoError(t, err)
	assert.Equal(t, "8080", conf.HTTPPort)
	assert.Equal(t, StoreMemory, conf.Store.Backend)
	assert.Equal(t, 24*time.Hour, conf.Store.SessionTTL)
	assert.Equal(t, 15*time.Second, conf.SSEKeepAlive)
	assert.Equal(t, "localhost:6379", conf.Redis.GetRedisAddr())
}

func TestLoad_Env(t *testing.T) {
	t.Setenv("CONFIG_PATH", "")
	t.Setenv("HTTP_PORT", "9090")
	t.Setenv("STORE_BACKEND", "redis")
	t.Setenv("REDIS_HOST", "cache")
	t.Setenv("REDIS_PORT", "6380")
	t.Setenv("SESSION_TTL", "30m")

	conf, err := Load()

	require.NoError(t, err)
	assert.Equal(t, "9090", conf.HTTPPort)
	assert.Equal(t, StoreRedis, conf.Store.Backend)
	assert.Equal(t, "cache:6380", conf.Redis.GetRedisAddr())
	assert.Equal(t, 30*time.Minute, conf.Store.SessionTTL)
}

func TestLoad_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	err := os.WriteFile(path, []byte(`
http_port: "7000"
log:
  level: debug
  format: json
store:
  backend: memory
  session_ttl: 1h
`), 0o600)
	require.NoError(t, err)

	t.Setenv("CONFIG_PATH", path)

	conf, err := Load()

	require.NoError(t, err)
	assert.Equal(t, "7000", conf.HTTPPort)
	assert.Equal(t, slog.LevelDebug, conf.Log.SlogLevel())
	assert.Equal(t, "json", conf.Log.Format)
	assert.Equal(t, time.Hour, conf.Store.SessionTTL)
}

func TestLoad_UnknownStore(t *testing.T) {
	t.Setenv("CONFIG_PATH", "")
	t.Setenv("STORE_BACKEND", "etcd")

	_, err := Load()

	require.ErrorIs(t, err, ErrUnknownStore)
}

func TestLog_SlogLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, Log{Level: "DEBUG"}.SlogLevel())
	assert.Equal(t, slog.LevelWarn, Log{Level: "warning"}.SlogLevel())
	assert.Equal(t, slog.LevelError, Log{Level: "error"}.SlogLevel())
	assert.Equal(t, slog.LevelInfo, Log{Level: "verbose"}.SlogLevel())
}
