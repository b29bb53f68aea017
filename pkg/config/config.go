package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/specstash/specstash/pkg/observability"
	"github.com/specstash/specstash/pkg/storage"
)

// Backend selects which metadata and storage implementations the service runs
// against.
const (
	BackendMemory = "memory"
	BackendAWS    = "aws"
)

// Config holds all application configuration
type Config struct {
	// Server configuration
	Server ServerConfig

	// Backend selects memory or aws (PostgreSQL + S3) persistence
	Backend string

	// Database configuration (aws backend)
	Database DatabaseConfig

	// Object storage configuration (aws backend)
	Storage storage.Config

	// Cache configuration
	Cache CacheConfig

	// Observability configuration
	Observability ObservabilityConfig
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Host            string
	Port            string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
	ShutdownTimeout time.Duration
	MaxBodyBytes    int64

	// Health/metrics server (separate port for k8s probes)
	HealthPort string
}

// DatabaseConfig holds PostgreSQL configuration
type DatabaseConfig struct {
	URL      string
	MaxConns int
	MinConns int
	Timeout  time.Duration
}

// CacheConfig holds Redis read-through cache configuration
type CacheConfig struct {
	Enabled  bool
	RedisURL string
	Password string
	DB       int
	TTL      time.Duration
}

// ObservabilityConfig holds observability settings
type ObservabilityConfig struct {
	LogLevel       observability.LogLevel
	MetricsEnabled bool
}

// LoadConfig loads configuration from environment variables
func LoadConfig() (*Config, error) {
	cfg := &Config{
		Server:        loadServerConfig(),
		Backend:       getEnv("SPECSTASH_BACKEND", BackendMemory),
		Database:      loadDatabaseConfig(),
		Storage:       loadStorageConfig(),
		Cache:         loadCacheConfig(),
		Observability: loadObservabilityConfig(),
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// loadServerConfig loads server configuration from environment
func loadServerConfig() ServerConfig {
	return ServerConfig{
		Host:            getEnv("SPECSTASH_HOST", "0.0.0.0"),
		Port:            getEnv("SPECSTASH_PORT", "8080"),
		ReadTimeout:     getEnvDuration("SPECSTASH_READ_TIMEOUT", 15*time.Second),
		WriteTimeout:    getEnvDuration("SPECSTASH_WRITE_TIMEOUT", 15*time.Second),
		IdleTimeout:     getEnvDuration("SPECSTASH_IDLE_TIMEOUT", 60*time.Second),
		ShutdownTimeout: getEnvDuration("SPECSTASH_SHUTDOWN_TIMEOUT", 30*time.Second),
		MaxBodyBytes:    getEnvInt64("SPECSTASH_MAX_BODY_BYTES", 5<<20),
		HealthPort:      getEnv("SPECSTASH_HEALTH_PORT", "9090"),
	}
}

// loadDatabaseConfig loads PostgreSQL configuration from environment
func loadDatabaseConfig() DatabaseConfig {
	return DatabaseConfig{
		URL:      getEnv("SPECSTASH_POSTGRES_URL", ""),
		MaxConns: getEnvInt("SPECSTASH_POSTGRES_MAX_CONNS", 25),
		MinConns: getEnvInt("SPECSTASH_POSTGRES_MIN_CONNS", 5),
		Timeout:  getEnvDuration("SPECSTASH_POSTGRES_TIMEOUT", 30*time.Second),
	}
}

// loadStorageConfig loads S3 configuration from environment
func loadStorageConfig() storage.Config {
	return storage.Config{
		S3Endpoint:     getEnv("SPECSTASH_S3_ENDPOINT", ""),
		S3Region:       getEnv("SPECSTASH_S3_REGION", "us-east-1"),
		S3Bucket:       getEnv("SPECSTASH_S3_BUCKET", ""),
		S3AccessKey:    getEnv("SPECSTASH_S3_ACCESS_KEY", ""),
		S3SecretKey:    getEnv("SPECSTASH_S3_SECRET_KEY", ""),
		S3UsePathStyle: getEnvBool("SPECSTASH_S3_USE_PATH_STYLE", false),
	}
}

// loadCacheConfig loads Redis cache configuration from environment
func loadCacheConfig() CacheConfig {
	return CacheConfig{
		Enabled:  getEnvBool("SPECSTASH_CACHE_ENABLED", false),
		RedisURL: getEnv("SPECSTASH_REDIS_URL", ""),
		Password: getEnv("SPECSTASH_REDIS_PASSWORD", ""),
		DB:       getEnvInt("SPECSTASH_REDIS_DB", 0),
		TTL:      getEnvDuration("SPECSTASH_CACHE_TTL", 5*time.Minute),
	}
}

// loadObservabilityConfig loads observability configuration from environment
func loadObservabilityConfig() ObservabilityConfig {
	return ObservabilityConfig{
		LogLevel:       parseLogLevel(getEnv("SPECSTASH_LOG_LEVEL", "info")),
		MetricsEnabled: getEnvBool("SPECSTASH_METRICS_ENABLED", true),
	}
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.Server.Port == "" {
		return fmt.Errorf("server port is required")
	}
	if c.Server.HealthPort == "" {
		return fmt.Errorf("health port is required")
	}
	if c.Server.Port == c.Server.HealthPort {
		return fmt.Errorf("server port and health port must be different")
	}

	switch c.Backend {
	case BackendMemory:
		// No external dependencies.
	case BackendAWS:
		if c.Database.URL == "" {
			return fmt.Errorf("postgres URL is required for aws backend")
		}
		if c.Storage.S3Bucket == "" {
			return fmt.Errorf("S3 bucket is required for aws backend")
		}
	default:
		return fmt.Errorf("invalid backend: %s (must be memory or aws)", c.Backend)
	}

	if c.Cache.Enabled && c.Cache.RedisURL == "" {
		return fmt.Errorf("redis URL is required when the cache is enabled")
	}

	return nil
}

// parseLogLevel parses a log level string
func parseLogLevel(level string) observability.LogLevel {
	switch strings.ToLower(level) {
	case "debug":
		return observability.DebugLevel
	case "info":
		return observability.InfoLevel
	case "warn", "warning":
		return observability.WarnLevel
	case "error":
		return observability.ErrorLevel
	default:
		return observability.InfoLevel
	}
}

// getEnv returns an environment variable value or a default
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvBool returns a boolean environment variable or a default
func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		return strings.ToLower(value) == "true" || value == "1"
	}
	return defaultValue
}

// getEnvInt returns an integer environment variable or a default
func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

// getEnvInt64 returns an int64 environment variable or a default
func getEnvInt64(key string, defaultValue int64) int64 {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.ParseInt(value, 10, 64); err == nil {
			return intVal
		}
	}
	return defaultValue
}

// getEnvDuration returns a duration environment variable or a default
func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
