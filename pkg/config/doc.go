// Package config provides application configuration management from an
// optional YAML file and environment variables.
//
// # Overview
//
// This package loads and validates configuration with sensible defaults for
// all settings. Environment variables override file values.
//
// # Configuration Structure
//
// Backend settings:
//
//	POSGATE_USER_SERVICE_URL="http://localhost:8000"
//	POSGATE_POS_SERVICE_URL="http://localhost:8001"
//	POSGATE_REQUEST_TIMEOUT="10s"
//
// Session settings:
//
//	POSGATE_CREDENTIALS_FILE="~/.config/posgate/credentials.json"
//	POSGATE_POLICY_FILE="/etc/posgate/policy.yaml"
//	POSGATE_CACHE_SIZE="256"
//	POSGATE_FALLBACK_TTL="30s"
//
// Observability settings:
//
//	POSGATE_LOG_LEVEL="info"  # debug, info, warn, error
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
//	fmt.Printf("User service: %s\n", cfg.Backends.UserServiceURL)
//	fmt.Printf("Log level: %v\n", cfg.Observability.LogLevel)
//
// # Related Packages
//
//   - pkg/client: Uses backend configuration
//   - pkg/session: Uses session configuration
//   - pkg/observability: Uses observability configuration
package config
