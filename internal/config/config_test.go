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

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "3000", cfg.Port)
	assert.True(t, cfg.IsDevelopment())
	assert.Equal(t, DefaultFeedBaseURL, cfg.FeedBaseURL)
	assert.Equal(t, 30*time.Second, cfg.FeedCacheTTL)
	assert.Equal(t, 60*time.Second, cfg.AlertsTTL)
	assert.Equal(t, 10*time.Second, cfg.HTTPTimeout)
	assert.Equal(t, 1, cfg.FetchRetries)
	assert.Equal(t, slog.LevelInfo, cfg.SlogLevel())
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("PORT", "8080")
	t.Setenv("ENV", "production")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("MTA_API_KEY", "k3y")
	t.Setenv("FEED_CACHE_TTL_SECONDS", "15")
	t.Setenv("FETCH_RETRIES", "3")
	t.Setenv("RANDOM_SEED", "42")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Port)
	assert.False(t, cfg.IsDevelopment())
	assert.Equal(t, slog.LevelDebug, cfg.SlogLevel())
	assert.Equal(t, "k3y", cfg.MTAAPIKey)
	assert.Equal(t, 15*time.Second, cfg.FeedCacheTTL)
	assert.Equal(t, 3, cfg.FetchRetries)
	assert.Equal(t, int64(42), cfg.RandomSeed)
}

func TestLoadFileThenEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "meetmta.toml")
	contents := `
port = "4000"
log_level = "warn"
feed_base_url = "https://feeds.example.com/gtfs"
alerts_cache_ttl_seconds = 120
fetch_retries = 0
`
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o600))
	t.Setenv("PORT", "5000")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "5000", cfg.Port)
	assert.Equal(t, "warn", cfg.LogLevel)
	assert.Equal(t, "https://feeds.example.com/gtfs", cfg.FeedBaseURL)
	assert.Equal(t, 120*time.Second, cfg.AlertsTTL)
	assert.Equal(t, 0, cfg.FetchRetries)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.toml"))
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*Config)
	}{
		{"non-numeric port", func(c *Config) { c.Port = "http" }},
		{"unknown env", func(c *Config) { c.Env = "staging" }},
		{"unknown log level", func(c *Config) { c.LogLevel = "verbose" }},
		{"bad url", func(c *Config) { c.FeedBaseURL = "not a url" }},
		{"zero ttl", func(c *Config) { c.FeedCacheTTL = 0 }},
		{"too many retries", func(c *Config) { c.FetchRetries = 9 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.modify(cfg)
			assert.Error(t, cfg.Validate())
		})
	}

	assert.NoError(t, Default().Validate())
}
