// Package config provides centralized configuration loaded from environment
// variables. Shared by cmd/api and cmd/segctl.
package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config struct — populated from environment variables.
type Config struct {
	// Model artifacts
	ModelDir string

	// Prediction history (optional — disabled when DatabaseURL is empty)
	DatabaseURL      string
	DBPoolMinConns   int
	DBPoolMaxConns   int
	DBPoolMaxLife    time.Duration
	HistoryRetention time.Duration

	// API server
	APIHost     string
	APIPort     int
	Environment string // development, staging, production
	Debug       bool

	// CORS
	CORSAllowOrigins []string

	// Rate limiting
	RateLimitEnabled  bool
	RateLimitRequests int
	RateLimitWindow   time.Duration

	// Cache
	CacheEnabled bool
}

// Load reads configuration from environment variables with sensible
// defaults. The model directory is the only knob without a fallback the
// process can run on: artifact loading later fails fast if it is wrong.
func Load() (*Config, error) {
	return &Config{
		ModelDir: envOr("MODEL_DIR", "models"),

		DatabaseURL:      envOr("DATABASE_URL", ""),
		DBPoolMinConns:   envInt("DB_POOL_MIN_CONNS", 1),
		DBPoolMaxConns:   envInt("DB_POOL_MAX_CONNS", 5),
		DBPoolMaxLife:    time.Duration(envInt("DB_POOL_MAX_LIFE_MINUTES", 30)) * time.Minute,
		HistoryRetention: time.Duration(envInt("HISTORY_RETENTION_DAYS", 90)) * 24 * time.Hour,

		APIHost:     envOr("API_HOST", "0.0.0.0"),
		APIPort:     envInt("API_PORT", envInt("PORT", 8000)),
		Environment: envOr("ENVIRONMENT", "development"),
		Debug:       envBool("DEBUG", false),

		CORSAllowOrigins: envList("CORS_ALLOW_ORIGINS", []string{
			"http://localhost:3000",
			"http://localhost:5173",
		}),

		RateLimitEnabled:  envBool("RATE_LIMIT_ENABLED", true),
		RateLimitRequests: envInt("RATE_LIMIT_REQUESTS", 100),
		RateLimitWindow:   time.Duration(envInt("RATE_LIMIT_WINDOW", 60)) * time.Second,

		CacheEnabled: envBool("CACHE_ENABLED", true),
	}, nil
}

// HistoryEnabled reports whether the prediction history store is configured.
func (c *Config) HistoryEnabled() bool {
	return c.DatabaseURL != ""
}

// IsProduction returns true if running in production environment.
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

// --------------------------------------------------------------------------
// Env helpers
// --------------------------------------------------------------------------

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func envBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		b, err := strconv.ParseBool(v)
		if err == nil {
			return b
		}
	}
	return fallback
}

func envList(key string, fallback []string) []string {
	if v := os.Getenv(key); v != "" {
		parts := strings.Split(v, ",")
		result := make([]string, 0, len(parts))
		for _, p := range parts {
			if trimmed := strings.TrimSpace(p); trimmed != "" {
				result = append(result, trimmed)
			}
		}
		if len(result) > 0 {
			return result
		}
	}
	return fallback
}
