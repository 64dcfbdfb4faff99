package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.Equal(t, []string{"post"}, cfg.Scopes)
	assert.True(t, cfg.Increment.Post)
	assert.True(t, cfg.Download.Audio)
	assert.True(t, cfg.Download.Cover)
	assert.True(t, cfg.Download.Metadata)
	assert.Equal(t, 1.0, cfg.RateLimit.RequestsPerSecond)
	assert.Equal(t, 3, cfg.Retry.MaxAttempts)
	assert.True(t, cfg.Database.Enabled)
	assert.NoError(t, cfg.Validate())
}

func TestLoadFromYAML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := `
links:
  - https://www.douyin.com/video/7123456789012345678
scopes: [post, like]
number:
  post: 10
increase:
  post: false
window:
  start: "2024-01-01"
  end: "2024-06-30"
download:
  music: false
output:
  base_directory: /tmp/dy
rate_limit:
  requests_per_second: 2.5
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Len(t, cfg.Links, 1)
	assert.Equal(t, []string{"post", "like"}, cfg.Scopes)
	assert.Equal(t, 10, cfg.Limits.Post)
	assert.False(t, cfg.Increment.Post)
	assert.True(t, cfg.Increment.Like, "untouched scope keeps default")
	assert.False(t, cfg.Download.Audio)
	assert.True(t, cfg.Download.Cover, "untouched toggle keeps default")
	assert.Equal(t, "/tmp/dy", cfg.Output.BaseDirectory)
	assert.Equal(t, 2.5, cfg.RateLimit.RequestsPerSecond)
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig().Output.BaseDirectory, cfg.Output.BaseDirectory)
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("DYDL_COOKIE", "sessionid=abc")
	t.Setenv("DYDL_SCOPES", "like, music")
	t.Setenv("DYDL_RATE_LIMIT", "0.5")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "sessionid=abc", cfg.Douyin.Cookie)
	assert.Equal(t, []string{"like", "music"}, cfg.Scopes)
	assert.Equal(t, 0.5, cfg.RateLimit.RequestsPerSecond)
}

func TestValidateErrors(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"invalid scope", func(c *Config) { c.Scopes = []string{"stories"} }},
		{"no scopes", func(c *Config) { c.Scopes = nil }},
		{"negative limit", func(c *Config) { c.Limits.Like = -1 }},
		{"zero rate", func(c *Config) { c.RateLimit.RequestsPerSecond = 0 }},
		{"zero attempts", func(c *Config) { c.Retry.MaxAttempts = 0 }},
		{"empty output", func(c *Config) { c.Output.BaseDirectory = "" }},
		{"bad window", func(c *Config) { c.Window.Start = "01/02/2024" }},
		{"inverted window", func(c *Config) { c.Window.Start = "2024-06-01"; c.Window.End = "2024-01-01" }},
		{"bad level", func(c *Config) { c.Logging.Level = "loud" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestWindowBounds(t *testing.T) {
	w := WindowConfig{Start: "2024-01-01", End: "2024-01-31"}
	start, end, err := w.Bounds()
	require.NoError(t, err)

	assert.Equal(t, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), start)
	assert.Equal(t, time.Date(2024, 1, 31, 23, 59, 59, 0, time.UTC), end)

	open := WindowConfig{}
	start, end, err = open.Bounds()
	require.NoError(t, err)
	assert.True(t, start.IsZero())
	assert.True(t, end.IsZero())
}

func TestScopeAccessors(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Limits.Mix = 5
	cfg.Increment.Music = false

	assert.Equal(t, 5, cfg.ScopeLimit("mix"))
	assert.Equal(t, 0, cfg.ScopeLimit("post"))
	assert.False(t, cfg.ScopeIncremental("music"))
	assert.True(t, cfg.ScopeIncremental("post"))
}

func TestSaveRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "nested", "config.yaml")

	cfg := DefaultConfig()
	cfg.Links = []string{"https://v.douyin.com/abc123/"}
	cfg.Limits.Post = 7
	require.NoError(t, cfg.Save(path))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, cfg.Links, loaded.Links)
	assert.Equal(t, 7, loaded.Limits.Post)
}

func TestDatabasePath(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Output.BaseDirectory = "/data/dy"
	assert.Equal(t, filepath.Join("/data/dy", ".dydl.db"), cfg.DatabasePath())

	cfg.Database.Path = "/var/lib/dydl.db"
	assert.Equal(t, "/var/lib/dydl.db", cfg.DatabasePath())
}
