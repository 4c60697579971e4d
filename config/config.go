// Package config loads application configuration from environment variables.
package config

import (
	"log"
	"os"
	"strconv"
	"time"
)

// Config holds all application configuration loaded from environment variables.
type Config struct {
	// Servers
	ListenAddr  string // HTTP API + WebSocket
	MetricsAddr string // prometheus + healthz

	// Environment: "development" or "production". Development shortens the
	// refresh cadence and refreshes even while the market is closed.
	AppEnv string

	// Cache & scheduler
	CacheDuration  time.Duration
	UpdateInterval time.Duration

	// Trading window
	MarketOpenHour   int
	MarketOpenMinute int
	MarketCloseHour  int
	MarketCloseMin   int
	MarketTZ         string

	// Optional snapshot publisher; empty RedisAddr disables it.
	RedisAddr     string
	RedisPassword string
	SnapshotTTL   time.Duration
}

const devUpdateInterval = 2 * time.Minute

// Load reads configuration from environment variables with sensible defaults.
func Load() *Config {
	cfg := &Config{
		ListenAddr:  getEnv("LISTEN_ADDR", ":5000"),
		MetricsAddr: getEnv("METRICS_ADDR", ":9090"),
		AppEnv:      getEnv("APP_ENV", "development"),

		CacheDuration:  time.Duration(getEnvInt("CACHE_DURATION_MINUTES", 5)) * time.Minute,
		UpdateInterval: time.Duration(getEnvInt("UPDATE_INTERVAL_MINUTES", 5)) * time.Minute,

		MarketOpenHour:   getEnvInt("MARKET_OPEN_HOUR", 9),
		MarketOpenMinute: getEnvInt("MARKET_OPEN_MINUTE", 30),
		MarketCloseHour:  getEnvInt("MARKET_CLOSE_HOUR", 15),
		MarketCloseMin:   getEnvInt("MARKET_CLOSE_MINUTE", 20),
		MarketTZ:         getEnv("MARKET_TZ", "Africa/Casablanca"),

		RedisAddr:     getEnv("REDIS_ADDR", ""),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		SnapshotTTL:   time.Duration(getEnvInt("SNAPSHOT_TTL_MINUTES", 30)) * time.Minute,
	}

	if cfg.Development() {
		cfg.UpdateInterval = devUpdateInterval
	}
	return cfg
}

// Development reports whether the process runs in development mode.
func (c *Config) Development() bool {
	return c.AppEnv != "production"
}

func getEnv(key, fallback string) string {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	return v
}

func getEnvInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 0 {
		log.Printf("[config] invalid %s=%q, using %d", key, v, fallback)
		return fallback
	}
	return n
}
