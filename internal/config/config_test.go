package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	c := Default()

	assert.Equal(t, ":8080", c.Server.Addr)
	assert.Equal(t, "localhost:6379", c.Redis.Addr)
	assert.Equal(t, 10, c.Limits.UserLimit)
	assert.Equal(t, 3600, c.Limits.UserWindowSeconds)
	assert.Equal(t, 100, c.Limits.AdminLimit)
	assert.Equal(t, 60, c.Limits.AdminWindowSeconds)
	assert.Equal(t, 86400, c.CacheTTLSeconds)
}

func TestLoad_FileOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
server:
  addr: ":9090"
redis:
  addr: "redis.internal:6379"
limits:
  user_limit: 5
`), 0644))

	c, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, ":9090", c.Server.Addr)
	assert.Equal(t, "redis.internal:6379", c.Redis.Addr)
	assert.Equal(t, 5, c.Limits.UserLimit)
	// Untouched fields keep defaults.
	assert.Equal(t, 3600, c.Limits.UserWindowSeconds)
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("PORT", "7070")
	t.Setenv("REDIS_ADDR", "envhost:6379")

	c, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, ":7070", c.Server.Addr)
	assert.Equal(t, "envhost:6379", c.Redis.Addr)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}

func TestPipelineOptions(t *testing.T) {
	c := Default()
	opts := c.PipelineOptions()

	assert.Equal(t, 10, opts.UserLimit)
	assert.Equal(t, time.Hour, opts.UserWindow)
	assert.Equal(t, 100, opts.AdminLimit)
	assert.Equal(t, time.Minute, opts.AdminWindow)
	assert.Equal(t, 24*time.Hour, opts.CacheTTL)
	assert.Equal(t, 15*time.Second, opts.RemoteTimeout)
}
