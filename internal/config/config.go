// Package config loads server settings from the environment, with an
// optional .env file in the working directory.
package config

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const insecureJWTSecret = "settleup-dev-secret-change-me"

// Event bus backends.
const (
	EventBusLocal = "local"
	EventBusRedis = "redis"
)

// Config holds server settings.
type Config struct {
	Port     int
	DBPath   string
	LogLevel string
	// LogFormat is "text" (colored) or "json".
	LogFormat string

	JWTSecret string
	JWTTTL    time.Duration

	// EventBus selects the ledger event transport: "local" or "redis".
	EventBus string
	RedisURL string

	SummaryCacheSize int
	// RateLimit is a formatted rate per client IP, e.g. "100-M". Empty disables limiting.
	RateLimit string
}

// Load reads the configuration. Values in the environment override the .env
// file, which overrides the defaults.
func Load() (*Config, error) {
	// A missing .env file is fine.
	_ = godotenv.Load()

	v := viper.New()
	v.SetDefault("PORT", 8080)
	v.SetDefault("DB_PATH", "./data/settleup.db")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "text")
	v.SetDefault("JWT_SECRET", "")
	v.SetDefault("JWT_TTL", "24h")
	v.SetDefault("EVENT_BUS", EventBusLocal)
	v.SetDefault("REDIS_URL", "redis://localhost:6379/0")
	v.SetDefault("SUMMARY_CACHE_SIZE", 1024)
	v.SetDefault("RATE_LIMIT", "100-M")
	v.AutomaticEnv()

	cfg := &Config{
		Port:             v.GetInt("PORT"),
		DBPath:           v.GetString("DB_PATH"),
		LogLevel:         strings.ToLower(v.GetString("LOG_LEVEL")),
		LogFormat:        strings.ToLower(v.GetString("LOG_FORMAT")),
		JWTSecret:        v.GetString("JWT_SECRET"),
		EventBus:         strings.ToLower(v.GetString("EVENT_BUS")),
		RedisURL:         v.GetString("REDIS_URL"),
		SummaryCacheSize: v.GetInt("SUMMARY_CACHE_SIZE"),
		RateLimit:        v.GetString("RATE_LIMIT"),
	}

	ttl, err := time.ParseDuration(v.GetString("JWT_TTL"))
	if err != nil {
		return nil, fmt.Errorf("invalid JWT_TTL %q: %w", v.GetString("JWT_TTL"), err)
	}
	cfg.JWTTTL = ttl

	if cfg.JWTSecret == "" {
		slog.Warn("JWT_SECRET not set, using an insecure development secret")
		cfg.JWTSecret = insecureJWTSecret
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("invalid PORT %d", c.Port)
	}
	if c.DBPath == "" {
		return fmt.Errorf("DB_PATH must not be empty")
	}
	switch c.EventBus {
	case EventBusLocal:
	case EventBusRedis:
		if c.RedisURL == "" {
			return fmt.Errorf("REDIS_URL is required when EVENT_BUS=redis")
		}
	default:
		return fmt.Errorf("invalid EVENT_BUS %q: want %q or %q", c.EventBus, EventBusLocal, EventBusRedis)
	}
	if c.JWTTTL <= 0 {
		return fmt.Errorf("JWT_TTL must be positive")
	}
	return nil
}

// Addr is the listen address.
func (c *Config) Addr() string {
	return fmt.Sprintf(":%d", c.Port)
}
