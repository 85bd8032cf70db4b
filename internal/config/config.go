// Package config handles application configuration from environment variables
// and an optional TOML file.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"strconv"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"

	"github.com/randytsao24/meetmta/internal/transit"
)

// DefaultFeedBaseURL is used when MTA_FEED_BASE_URL is unset
const DefaultFeedBaseURL = transit.DefaultFeedBaseURL

// Config holds all application configuration.
type Config struct {
	Port         string        `validate:"required,numeric"`
	Env          string        `validate:"oneof=development production test"`
	LogLevel     string        `validate:"oneof=debug info warn error"`
	FeedBaseURL  string        `validate:"required,url"`
	MTAAPIKey    string        `validate:"omitempty,printascii"`
	FeedCacheTTL time.Duration `validate:"min=1s"`
	AlertsTTL    time.Duration `validate:"min=1s"`
	HTTPTimeout  time.Duration `validate:"min=1s"`
	FetchRetries int           `validate:"min=0,max=5"`
	RandomSeed   int64
}

// fileConfig mirrors Config in the TOML file. Durations are whole seconds.
type fileConfig struct {
	Port                string `toml:"port"`
	Env                 string `toml:"env"`
	LogLevel            string `toml:"log_level"`
	FeedBaseURL         string `toml:"feed_base_url"`
	MTAAPIKey           string `toml:"mta_api_key"`
	FeedCacheTTLSeconds int    `toml:"feed_cache_ttl_seconds"`
	AlertsTTLSeconds    int    `toml:"alerts_cache_ttl_seconds"`
	HTTPTimeoutSeconds  int    `toml:"http_timeout_seconds"`
	FetchRetries        *int   `toml:"fetch_retries"`
	RandomSeed          int64  `toml:"random_seed"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Port:         "3000",
		Env:          "development",
		LogLevel:     "info",
		FeedBaseURL:  DefaultFeedBaseURL,
		FeedCacheTTL: 30 * time.Second,
		AlertsTTL:    60 * time.Second,
		HTTPTimeout:  10 * time.Second,
		FetchRetries: 1,
	}
}

// Load builds the configuration from defaults, then the TOML file at path
// (if non-empty), then environment variables. A .env file in the working
// directory is read into the environment first when present.
func Load(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("reading .env: %w", err)
	}

	cfg := Default()
	if path != "" {
		if err := cfg.applyFile(path); err != nil {
			return nil, err
		}
	}
	cfg.applyEnv()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// IsDevelopment returns true if running in development mode.
func (c *Config) IsDevelopment() bool {
	return c.Env == "development"
}

// SlogLevel converts LogLevel for the slog handler.
func (c *Config) SlogLevel() slog.Level {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return slog.LevelInfo
	}
	return level
}

// Validate checks field ranges and formats.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	return nil
}

func (c *Config) applyFile(path string) error {
	var fc fileConfig
	if _, err := toml.DecodeFile(path, &fc); err != nil {
		return fmt.Errorf("reading config file %s: %w", path, err)
	}

	setString(&c.Port, fc.Port)
	setString(&c.Env, fc.Env)
	setString(&c.LogLevel, fc.LogLevel)
	setString(&c.FeedBaseURL, fc.FeedBaseURL)
	setString(&c.MTAAPIKey, fc.MTAAPIKey)
	setSeconds(&c.FeedCacheTTL, fc.FeedCacheTTLSeconds)
	setSeconds(&c.AlertsTTL, fc.AlertsTTLSeconds)
	setSeconds(&c.HTTPTimeout, fc.HTTPTimeoutSeconds)
	if fc.FetchRetries != nil {
		c.FetchRetries = *fc.FetchRetries
	}
	if fc.RandomSeed != 0 {
		c.RandomSeed = fc.RandomSeed
	}
	return nil
}

func (c *Config) applyEnv() {
	c.Port = getEnv("PORT", c.Port)
	c.Env = getEnv("ENV", c.Env)
	c.LogLevel = getEnv("LOG_LEVEL", c.LogLevel)
	c.FeedBaseURL = getEnv("MTA_FEED_BASE_URL", c.FeedBaseURL)
	c.MTAAPIKey = getEnv("MTA_API_KEY", c.MTAAPIKey)
	c.FeedCacheTTL = getDurationEnv("FEED_CACHE_TTL_SECONDS", c.FeedCacheTTL)
	c.AlertsTTL = getDurationEnv("ALERTS_CACHE_TTL_SECONDS", c.AlertsTTL)
	c.HTTPTimeout = getDurationEnv("HTTP_TIMEOUT_SECONDS", c.HTTPTimeout)
	c.FetchRetries = getIntEnv("FETCH_RETRIES", c.FetchRetries)
	c.RandomSeed = int64(getIntEnv("RANDOM_SEED", int(c.RandomSeed)))
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return defaultValue
}

func getDurationEnv(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if seconds, err := strconv.Atoi(value); err == nil {
			return time.Duration(seconds) * time.Second
		}
	}
	return defaultValue
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}

func setSeconds(dst *time.Duration, seconds int) {
	if seconds != 0 {
		*dst = time.Duration(seconds) * time.Second
	}
}
