// Package config provides application configuration management from environment variables.
//
// # Overview
//
// This package loads and validates configuration from environment variables with
// sensible defaults for all settings.
//
// # Configuration Structure
//
// Server settings:
//
//	SPECSTASH_HOST="0.0.0.0"
//	SPECSTASH_PORT="8080"
//	SPECSTASH_HEALTH_PORT="9090"
//	SPECSTASH_READ_TIMEOUT="15s"
//	SPECSTASH_WRITE_TIMEOUT="15s"
//
// Backend settings:
//
//	SPECSTASH_BACKEND="aws"  # memory, aws
//	SPECSTASH_POSTGRES_URL="postgres://localhost/specstash"
//	SPECSTASH_POSTGRES_MAX_CONNS="25"
//	SPECSTASH_S3_BUCKET="specstash-artifacts"
//	SPECSTASH_S3_REGION="us-east-1"
//
// Cache settings:
//
//	SPECSTASH_CACHE_ENABLED="true"
//	SPECSTASH_REDIS_URL="redis://localhost:6379"
//	SPECSTASH_CACHE_TTL="5m"
//
// Observability settings:
//
//	SPECSTASH_LOG_LEVEL="info"  # debug, info, warn, error
//	SPECSTASH_METRICS_ENABLED="true"
//
// # Usage Example
//
// Load configuration:
//
//	cfg, err := config.LoadConfig()
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	fmt.Printf("Server: %s:%s\n", cfg.Server.Host, cfg.Server.Port)
//	fmt.Printf("Backend: %s\n", cfg.Backend)
//
// # Related Packages
//
//   - pkg/storage: Uses storage configuration
//   - pkg/observability: Uses observability configuration
package config
