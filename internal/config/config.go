package config

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Store drivers accepted by STORE_DRIVER
const (
	StoreDriverPostgres = "postgres"
	StoreDriverMemory   = "memory"
)

// Config holds all application configuration.
// It is loaded once at startup and treated as read-only afterwards.
type Config struct {
	// Server configuration
	Environment    string        `envconfig:"ENVIRONMENT" default:"development"`
	ServerPort     string        `envconfig:"SERVER_PORT" default:"8081"`
	RequestTimeout time.Duration `envconfig:"REQUEST_TIMEOUT" default:"10s"`
	LogLevel       string        `envconfig:"LOG_LEVEL" default:"info"`

	// Store selection
	StoreDriver string `envconfig:"STORE_DRIVER" default:"postgres"`

	// DB configuration
	DBHost     string `envconfig:"DB_HOST" default:"localhost"`
	DBPort     string `envconfig:"DB_PORT" default:"5432"`
	DBUser     string `envconfig:"DB_USER" default:"postgres"`
	DBPassword string `envconfig:"DB_PASSWORD"`
	DBName     string `envconfig:"DB_NAME" default:"hashurl"`
	DBSSLMode  string `envconfig:"DB_SSL_MODE" default:"disable"`

	// Redis configuration
	RedisEnabled  bool          `envconfig:"REDIS_ENABLED" default:"true"`
	RedisAddr     string        `envconfig:"REDIS_ADDR" default:"localhost:6379"`
	RedisPassword string        `envconfig:"REDIS_PASSWORD"`
	RedisDB       int           `envconfig:"REDIS_DB" default:"0"`
	CacheTTL      time.Duration `envconfig:"CACHE_TTL" default:"1h"`

	// Application settings
	BaseURL            string `envconfig:"BASE_URL" default:"http://localhost:8081"`
	RateLimitPerMinute int    `envconfig:"RATE_LIMIT_PER_MINUTE" default:"60"`
	AdminSecret        string `envconfig:"SECRET_KEY"`
	RecentEventsLimit  int    `envconfig:"RECENT_EVENTS_LIMIT" default:"10"`
}

// LoadConfig loads configuration from environment variables
func LoadConfig() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to read environment: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return &cfg, nil
}

// Validate checks if all required configuration is present and valid
func (c *Config) Validate() error {
	switch c.StoreDriver {
	case StoreDriverPostgres:
		if c.Environment == "production" && c.DBPassword == "" {
			return fmt.Errorf("DB_PASSWORD is required in production")
		}
	case StoreDriverMemory:
		if c.Environment == "production" {
			return fmt.Errorf("STORE_DRIVER=memory is not allowed in production")
		}
	default:
		return fmt.Errorf("STORE_DRIVER must be %q or %q, got %q", StoreDriverPostgres, StoreDriverMemory, c.StoreDriver)
	}

	if c.BaseURL == "" {
		return fmt.Errorf("BASE_URL is required")
	}

	if c.RecentEventsLimit <= 0 {
		return fmt.Errorf("RECENT_EVENTS_LIMIT must be positive, got %d", c.RecentEventsLimit)
	}

	if c.RateLimitPerMinute < 0 {
		return fmt.Errorf("RATE_LIMIT_PER_MINUTE cannot be negative, got %d", c.RateLimitPerMinute)
	}

	if c.RequestTimeout <= 0 {
		return fmt.Errorf("REQUEST_TIMEOUT must be positive")
	}

	return nil
}

// DSN returns the PostgreSQL connection string for GORM.
func (c *Config) DSN() string {
	return fmt.Sprintf(
		"host=%s user=%s password=%s dbname=%s port=%s sslmode=%s TimeZone=UTC",
		c.DBHost, c.DBUser, c.DBPassword, c.DBName, c.DBPort, c.DBSSLMode,
	)
}

// IsDevelopment returns true if running in development mode
func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}

// IsProduction returns true if running in production mode
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}
