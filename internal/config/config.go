// Package config loads server and worker configuration from the
// environment.
package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

// Cache backend selection.
const (
	CacheMemory = "memory"
	CacheSQLite = "sqlite"
	CacheRedis  = "redis"
)

// Transaction store backend selection.
const (
	StoreRest   = "rest"
	StoreMemory = "memory"
)

type Config struct {
	// HTTP server
	Port string

	// Remote transaction store
	StoreBackend string
	APIBaseURL   string
	APIKey       string

	// Calendar convention for day-boundary math
	Timezone string

	// Cache
	CacheBackend    string
	CacheTTL        time.Duration
	CacheMaxEntries int
	SQLiteCachePath string
	RedisURL        string

	// AMQP notification queue (optional)
	AMQPURL      string
	AMQPExchange string
	AMQPQueue    string

	// Push delivery (worker)
	PushEndpoint string
	PushToken    string
}

func Load() *Config {
	return &Config{
		Port: getEnv("PORT", "8082"),

		StoreBackend: getEnv("STORE_BACKEND", StoreRest),
		APIBaseURL:   getEnv("API_BASE_URL", ""),
		APIKey:       getEnv("API_KEY", ""),

		Timezone: getEnv("TIMEZONE", "Asia/Taipei"),

		CacheBackend:    getEnv("CACHE_BACKEND", CacheMemory),
		CacheTTL:        getEnvDuration("CACHE_TTL", 5*time.Minute),
		CacheMaxEntries: getEnvInt("CACHE_MAX_ENTRIES", 1000),
		SQLiteCachePath: getEnv("SQLITE_CACHE_PATH", "./data/jizhang-cache.db"),
		RedisURL:        getEnv("REDIS_URL", ""),

		AMQPURL:      getEnv("AMQP_URL", ""),
		AMQPExchange: getEnv("AMQP_EXCHANGE", "jizhang"),
		AMQPQueue:    getEnv("AMQP_QUEUE", "notifications"),

		PushEndpoint: getEnv("PUSH_ENDPOINT", ""),
		PushToken:    getEnv("PUSH_TOKEN", ""),
	}
}

// Validate checks the configuration and returns every problem at once.
func (c *Config) Validate() error {
	var errs []string

	if port, err := strconv.Atoi(c.Port); err != nil {
		errs = append(errs, fmt.Sprintf("invalid port '%s': must be a number", c.Port))
	} else if port < 1 || port > 65535 {
		errs = append(errs, fmt.Sprintf("invalid port %d: must be between 1 and 65535", port))
	}

	switch c.StoreBackend {
	case StoreMemory:
	case StoreRest:
		if c.APIBaseURL == "" {
			errs = append(errs, "API_BASE_URL is required for the rest store backend")
		} else if parsed, err := url.Parse(c.APIBaseURL); err != nil || parsed.Scheme == "" {
			errs = append(errs, fmt.Sprintf("invalid API base URL '%s'", c.APIBaseURL))
		}
		if c.APIKey == "" {
			errs = append(errs, "API_KEY is required for the rest store backend")
		}
	default:
		errs = append(errs, fmt.Sprintf("invalid store backend '%s': must be one of [%s %s]",
			c.StoreBackend, StoreRest, StoreMemory))
	}

	switch c.CacheBackend {
	case CacheMemory:
	case CacheSQLite:
		if c.SQLiteCachePath == "" {
			errs = append(errs, "SQLite cache path cannot be empty when using the sqlite backend")
		} else if dir := filepath.Dir(c.SQLiteCachePath); dir != "." && dir != "" {
			if _, err := os.Stat(dir); os.IsNotExist(err) {
				if err := os.MkdirAll(dir, 0755); err != nil {
					errs = append(errs, fmt.Sprintf("cannot create cache directory '%s': %v", dir, err))
				}
			}
		}
	case CacheRedis:
		if c.RedisURL == "" {
			errs = append(errs, "REDIS_URL is required when using the redis backend")
		}
	default:
		errs = append(errs, fmt.Sprintf("invalid cache backend '%s': must be one of [%s %s %s]",
			c.CacheBackend, CacheMemory, CacheSQLite, CacheRedis))
	}

	if c.CacheTTL <= 0 {
		errs = append(errs, "cache TTL must be positive")
	}
	if c.CacheMaxEntries < 1 {
		errs = append(errs, "cache max entries must be at least 1")
	}

	if c.AMQPURL != "" {
		if parsed, err := url.Parse(c.AMQPURL); err != nil {
			errs = append(errs, fmt.Sprintf("invalid AMQP URL '%s': %v", c.AMQPURL, err))
		} else if parsed.Scheme != "amqp" && parsed.Scheme != "amqps" {
			errs = append(errs, fmt.Sprintf("invalid AMQP URL scheme '%s': must be 'amqp' or 'amqps'", parsed.Scheme))
		}
		if c.AMQPExchange == "" {
			errs = append(errs, "AMQP exchange name cannot be empty when AMQP URL is provided")
		}
		if c.AMQPQueue == "" {
			errs = append(errs, "AMQP queue name cannot be empty when AMQP URL is provided")
		}
	}

	if c.PushEndpoint != "" && c.PushToken == "" {
		errs = append(errs, "PUSH_TOKEN is required when PUSH_ENDPOINT is set")
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration errors:\n  - %s", strings.Join(errs, "\n  - "))
	}
	return nil
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if parsed, err := time.ParseDuration(value); err == nil {
			return parsed
		}
	}
	return fallback
}
