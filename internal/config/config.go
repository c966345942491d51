// Package config handles application configuration from environment variables
package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/caarlos0/env/v10"
	"github.com/joho/godotenv"
)

const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"

	PageStoreDatabase = "database"
	PageStoreRedis    = "redis"
)

// ShortenerConfig configures one link shortening provider
type ShortenerConfig struct {
	Name     string `env:"NAME"`
	APIURL   string `env:"API_URL"`
	APIToken string `env:"API_TOKEN"`
}

// Config represents the application configuration
type Config struct {
	ServerPort      string          `env:"SERVER_PORT" envDefault:"8080"`
	LogLevel        string          `env:"LOG_LEVEL" envDefault:"info"`
	PublicOrigin    string          `env:"PUBLIC_ORIGIN" envDefault:"http://localhost:8080"`
	DatabaseDriver  string          `env:"DATABASE_DRIVER" envDefault:"sqlite"`
	DatabasePath    string          `env:"DATABASE_PATH" envDefault:"portal.db"`
	DatabaseURL     string          `env:"DATABASE_URL"`
	PageStore       string          `env:"PAGE_STORE" envDefault:"database"`
	RedisURL        string          `env:"REDIS_URL"`
	PageRetention   time.Duration   `env:"PAGE_RETENTION" envDefault:"0s"`
	CleanupInterval time.Duration   `env:"CLEANUP_INTERVAL" envDefault:"1h"`
	AdminKeyHash    string          `env:"ADMIN_KEY_HASH"`
	ShortenerA      ShortenerConfig `envPrefix:"SHORTENER_A_"`
	ShortenerB      ShortenerConfig `envPrefix:"SHORTENER_B_"`
}

// Load loads configuration from environment variables and .env file
func Load() (*Config, error) {
	// Load .env file if it exists (ignore error if file doesn't exist)
	_ = godotenv.Load()

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse environment variables: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	// Validate log level
	validLogLevels := []string{"debug", "info", "warn", "error"}
	logLevel := strings.ToLower(c.LogLevel)
	isValidLevel := false
	for _, level := range validLogLevels {
		if logLevel == level {
			isValidLevel = true
			break
		}
	}
	if !isValidLevel {
		return fmt.Errorf("invalid log level %q, must be one of: %v", c.LogLevel, validLogLevels)
	}

	origin, err := url.Parse(c.PublicOrigin)
	if err != nil || (origin.Scheme != "http" && origin.Scheme != "https") || origin.Host == "" {
		return fmt.Errorf("PUBLIC_ORIGIN must be an absolute http(s) URL, got: %q", c.PublicOrigin)
	}
	c.PublicOrigin = strings.TrimRight(c.PublicOrigin, "/")

	switch c.DatabaseDriver {
	case DriverSQLite:
		if c.DatabasePath == "" {
			return fmt.Errorf("DATABASE_PATH cannot be empty")
		}
	case DriverPostgres:
		if c.DatabaseURL == "" {
			return fmt.Errorf("DATABASE_URL is required for the postgres driver")
		}
	default:
		return fmt.Errorf("invalid DATABASE_DRIVER %q, must be %q or %q", c.DatabaseDriver, DriverSQLite, DriverPostgres)
	}

	switch c.PageStore {
	case PageStoreDatabase:
	case PageStoreRedis:
		if c.RedisURL == "" {
			return fmt.Errorf("REDIS_URL is required when PAGE_STORE is redis")
		}
	default:
		return fmt.Errorf("invalid PAGE_STORE %q, must be %q or %q", c.PageStore, PageStoreDatabase, PageStoreRedis)
	}

	if c.PageRetention < 0 {
		return fmt.Errorf("PAGE_RETENTION cannot be negative")
	}
	if c.CleanupInterval <= 0 {
		return fmt.Errorf("CLEANUP_INTERVAL must be positive")
	}

	if c.ShortenerA.Name == "" {
		c.ShortenerA.Name = "shortener-a"
	}
	if c.ShortenerB.Name == "" {
		c.ShortenerB.Name = "shortener-b"
	}

	return nil
}
