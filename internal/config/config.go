package config

import (
	"errors"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/lorrc/presence-stats/internal/core/domain"
)

// Store drivers
const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

// EpochFloorLayout is the layout of STATS_EPOCH_FLOOR.
const EpochFloorLayout = "2006-01-02 15:04:05"

// Config holds all application configuration
type Config struct {
	// Server configuration
	Server ServerConfig

	// Database configuration
	Database DatabaseConfig

	// Status record store selection
	Store StoreConfig

	// Rate limiting configuration
	RateLimit RateLimitConfig

	// CORS configuration
	CORS CORSConfig

	// Logging configuration
	Logging LoggingConfig

	// Metrics configuration
	Metrics MetricsConfig

	// Statistics configuration
	Stats StatsConfig

	// Application metadata
	App AppConfig
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Port            string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
	ShutdownTimeout time.Duration
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	URL             string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	ConnMaxIdleTime time.Duration
}

// StoreConfig selects where status records are read from
type StoreConfig struct {
	Driver     string // postgres, sqlite
	SQLitePath string
}

// RateLimitConfig holds rate limiting configuration
type RateLimitConfig struct {
	Enabled           bool
	RequestsPerSecond float64
	BurstSize         int
}

// CORSConfig holds CORS configuration
type CORSConfig struct {
	AllowedOrigins []string
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level      string // debug, info, warn, error
	Format     string // json, text
	File       string // optional rotating log file
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
}

// MetricsConfig holds Prometheus configuration
type MetricsConfig struct {
	Enabled bool
	Path    string
}

// StatsConfig holds the business calendar and the default window start
type StatsConfig struct {
	Timezone   string
	EpochFloor string
	OpenHour   int
	CloseHour  int
}

// AppConfig holds application metadata
type AppConfig struct {
	Name        string
	Version     string
	Environment string
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if it exists (for local development)
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system environment variables")
	}

	cfg := &Config{
		Server: ServerConfig{
			Port:            getEnvOrDefault("SERVER_PORT", ":8080"),
			ReadTimeout:     getDurationOrDefault("SERVER_READ_TIMEOUT", 15*time.Second),
			WriteTimeout:    getDurationOrDefault("SERVER_WRITE_TIMEOUT", 15*time.Second),
			IdleTimeout:     getDurationOrDefault("SERVER_IDLE_TIMEOUT", 60*time.Second),
			ShutdownTimeout: getDurationOrDefault("SERVER_SHUTDOWN_TIMEOUT", 30*time.Second),
		},
		Database: DatabaseConfig{
			URL:             os.Getenv("DATABASE_URL"),
			MaxOpenConns:    getIntOrDefault("DB_MAX_OPEN_CONNS", 25),
			MaxIdleConns:    getIntOrDefault("DB_MAX_IDLE_CONNS", 5),
			ConnMaxLifetime: getDurationOrDefault("DB_CONN_MAX_LIFETIME", 5*time.Minute),
			ConnMaxIdleTime: getDurationOrDefault("DB_CONN_MAX_IDLE_TIME", 5*time.Minute),
		},
		Store: StoreConfig{
			Driver:     strings.ToLower(getEnvOrDefault("STORE_DRIVER", DriverPostgres)),
			SQLitePath: os.Getenv("SQLITE_PATH"),
		},
		RateLimit: RateLimitConfig{
			Enabled:           getBoolOrDefault("RATE_LIMIT_ENABLED", true),
			RequestsPerSecond: getFloatOrDefault("RATE_LIMIT_RPS", 10),
			BurstSize:         getIntOrDefault("RATE_LIMIT_BURST", 20),
		},
		CORS: CORSConfig{
			AllowedOrigins: getStringSliceOrDefault("CORS_ALLOWED_ORIGINS", []string{}),
		},
		Logging: LoggingConfig{
			Level:      getEnvOrDefault("LOG_LEVEL", "info"),
			Format:     getEnvOrDefault("LOG_FORMAT", "json"),
			File:       os.Getenv("LOG_FILE"),
			MaxSizeMB:  getIntOrDefault("LOG_MAX_SIZE_MB", 100),
			MaxBackups: getIntOrDefault("LOG_MAX_BACKUPS", 5),
			MaxAgeDays: getIntOrDefault("LOG_MAX_AGE_DAYS", 28),
		},
		Metrics: MetricsConfig{
			Enabled: getBoolOrDefault("METRICS_ENABLED", true),
			Path:    getEnvOrDefault("METRICS_PATH", "/metrics"),
		},
		Stats: StatsConfig{
			Timezone:   getEnvOrDefault("STATS_TIMEZONE", "America/Chicago"),
			EpochFloor: getEnvOrDefault("STATS_EPOCH_FLOOR", "2010-01-01 00:00:00"),
			OpenHour:   getIntOrDefault("STATS_OPEN_HOUR", domain.DefaultOpenHour),
			CloseHour:  getIntOrDefault("STATS_CLOSE_HOUR", domain.DefaultCloseHour),
		},
		App: AppConfig{
			Name:        getEnvOrDefault("APP_NAME", "presence-stats"),
			Version:     getEnvOrDefault("APP_VERSION", "dev"),
			Environment: getEnvOrDefault("APP_ENV", "development"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	var errs []string

	// Required fields
	switch c.Store.Driver {
	case DriverPostgres:
		if c.Database.URL == "" {
			errs = append(errs, "DATABASE_URL is required for the postgres store")
		}
	case DriverSQLite:
		if c.Store.SQLitePath == "" {
			errs = append(errs, "SQLITE_PATH is required for the sqlite store")
		}
	default:
		errs = append(errs, fmt.Sprintf("STORE_DRIVER must be %q or %q, got %q", DriverPostgres, DriverSQLite, c.Store.Driver))
	}

	// Security validations
	if c.IsProduction() && len(c.CORS.AllowedOrigins) == 0 {
		errs = append(errs, "CORS_ALLOWED_ORIGINS must be set in production")
	}

	// Logical validations
	if c.Database.MaxIdleConns > c.Database.MaxOpenConns {
		errs = append(errs, "DB_MAX_IDLE_CONNS cannot be greater than DB_MAX_OPEN_CONNS")
	}

	if _, err := time.LoadLocation(c.Stats.Timezone); err != nil {
		errs = append(errs, fmt.Sprintf("STATS_TIMEZONE is not a known timezone: %q", c.Stats.Timezone))
	} else if _, err := c.EpochFloor(); err != nil {
		errs = append(errs, fmt.Sprintf("STATS_EPOCH_FLOOR must use the layout %q", EpochFloorLayout))
	}

	if c.Stats.OpenHour < 0 || c.Stats.CloseHour > 24 || c.Stats.OpenHour >= c.Stats.CloseHour {
		errs = append(errs, "STATS_OPEN_HOUR must be before STATS_CLOSE_HOUR within 0..24")
	}

	if len(errs) > 0 {
		return errors.New("configuration errors:\n  - " + strings.Join(errs, "\n  - "))
	}

	return nil
}

// Location returns the timezone statistics are computed in.
func (c *Config) Location() (*time.Location, error) {
	return time.LoadLocation(c.Stats.Timezone)
}

// Calendar returns the configured business calendar.
func (c *Config) Calendar() (domain.BusinessCalendar, error) {
	loc, err := c.Location()
	if err != nil {
		return domain.BusinessCalendar{}, err
	}
	return domain.NewBusinessCalendar(loc, c.Stats.OpenHour, c.Stats.CloseHour), nil
}

// EpochFloor returns the default window start in the statistics timezone.
func (c *Config) EpochFloor() (time.Time, error) {
	loc, err := c.Location()
	if err != nil {
		return time.Time{}, err
	}
	return time.ParseInLocation(EpochFloorLayout, c.Stats.EpochFloor, loc)
}

// IsDevelopment returns true if running in development environment
func (c *Config) IsDevelopment() bool {
	return c.App.Environment == "development"
}

// IsProduction returns true if running in production environment
func (c *Config) IsProduction() bool {
	return c.App.Environment == "production"
}

// Helper functions

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getIntOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getFloatOrDefault(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatValue, err := strconv.ParseFloat(value, 64); err == nil {
			return floatValue
		}
	}
	return defaultValue
}

func getBoolOrDefault(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

func getDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

func getStringSliceOrDefault(key string, defaultValue []string) []string {
	if value := os.Getenv(key); value != "" {
		parts := strings.Split(value, ",")
		result := make([]string, 0, len(parts))
		for _, part := range parts {
			trimmed := strings.TrimSpace(part)
			if trimmed != "" {
				result = append(result, trimmed)
			}
		}
		if len(result) > 0 {
			return result
		}
	}
	return defaultValue
}

// String returns a redacted string representation of the config (safe for logging)
func (c *Config) String() string {
	return fmt.Sprintf(
		"Config{Server: %s, Store: %s, DB: %s, RateLimit: %v, Timezone: %s, Environment: %s}",
		c.Server.Port,
		c.Store.Driver,
		redactURL(c.Database.URL),
		c.RateLimit.Enabled,
		c.Stats.Timezone,
		c.App.Environment,
	)
}

// redactURL redacts sensitive parts of a database URL
func redactURL(url string) string {
	if url == "" {
		return ""
	}
	if idx := strings.Index(url, "@"); idx > 0 {
		return "[REDACTED]" + url[idx:]
	}
	return "[REDACTED]"
}
