// Package config loads application configuration from the environment.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all application configuration.
type Config struct {
	Environment string
	LogLevel    string

	// Telegram
	BotToken     string
	AdminChatIDs []int64
	PollTimeout  time.Duration

	// HTTP API
	Port      string
	JWTSecret string

	// Storage
	DatabasePath string

	// Eventing, disabled when empty
	NATSURL string

	// Tracing, disabled when empty
	OTLPEndpoint string

	// Business rules
	Timezone       string
	BufferDays     float64
	SessionTTL     time.Duration
	RateLimit      int
	RatePeriod     time.Duration
	CatalogCacheTTL time.Duration
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	cfg := &Config{
		Environment: getEnv("ENVIRONMENT", "development"),
		LogLevel:    getEnv("LOG_LEVEL", "info"),

		BotToken:    os.Getenv("TELEGRAM_BOT_TOKEN"),
		PollTimeout: getDurationEnv("TELEGRAM_POLL_TIMEOUT", 30*time.Second),

		Port:      getEnv("PORT", "8080"),
		JWTSecret: getEnv("JWT_SECRET", "dev-secret-change-in-production"),

		DatabasePath: getEnv("DATABASE_PATH", "k2inventory.db"),

		NATSURL:      os.Getenv("NATS_URL"),
		OTLPEndpoint: os.Getenv("OTLP_ENDPOINT"),

		Timezone:        getEnv("BUSINESS_TIMEZONE", "America/Chicago"),
		BufferDays:      getFloatEnv("BUFFER_DAYS", 1.0),
		SessionTTL:      getDurationEnv("SESSION_TTL", 30*time.Minute),
		RateLimit:       getIntEnv("RATE_LIMIT_COMMANDS", 10),
		RatePeriod:      getDurationEnv("RATE_LIMIT_PERIOD", time.Minute),
		CatalogCacheTTL: getDurationEnv("CATALOG_CACHE_TTL", 5*time.Minute),
	}

	if cfg.BotToken == "" {
		return nil, fmt.Errorf("TELEGRAM_BOT_TOKEN is required")
	}

	ids, err := parseChatIDs(os.Getenv("TELEGRAM_ADMIN_CHAT_IDS"))
	if err != nil {
		return nil, fmt.Errorf("parse TELEGRAM_ADMIN_CHAT_IDS: %w", err)
	}
	cfg.AdminChatIDs = ids

	if _, err := time.LoadLocation(cfg.Timezone); err != nil {
		return nil, fmt.Errorf("load timezone %q: %w", cfg.Timezone, err)
	}

	return cfg, nil
}

// BusinessLocation returns the configured business time zone.
func (c *Config) BusinessLocation() *time.Location {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

func parseChatIDs(raw string) ([]int64, error) {
	if raw == "" {
		return nil, nil
	}
	parts := strings.Split(raw, ",")
	ids := make([]int64, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		id, err := strconv.ParseInt(p, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid chat id %q", p)
		}
		ids = append(ids, id)
	}
	return ids, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getFloatEnv(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return defaultValue
}

func getDurationEnv(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}
