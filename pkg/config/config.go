package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/tillware/posgate/pkg/observability"
)

// Defaults match a local development deployment: the user service on 8000
// and the POS service on 8001.
const (
	DefaultUserServiceURL = "http://localhost:8000"
	DefaultPOSServiceURL  = "http://localhost:8001"
	DefaultRequestTimeout = 10 * time.Second
)

// Config holds all application configuration
type Config struct {
	// Backends configuration
	Backends BackendConfig

	// Session configuration
	Session SessionConfig

	// Observability configuration
	Observability ObservabilityConfig
}

// BackendConfig holds the backend service endpoints
type BackendConfig struct {
	UserServiceURL string
	POSServiceURL  string
	RequestTimeout time.Duration
}

// SessionConfig holds credential persistence and cache settings
type SessionConfig struct {
	// CredentialsFile is where the bearer token is persisted. Empty means
	// the per-user default under ~/.config/posgate.
	CredentialsFile string

	// PolicyFile optionally overrides the built-in role grants
	PolicyFile string

	CacheSize   int
	FallbackTTL time.Duration
}

// ObservabilityConfig holds observability settings
type ObservabilityConfig struct {
	LogLevel observability.LogLevel
}

// fileConfig mirrors Config with YAML-friendly field types. Durations are
// strings in time.ParseDuration syntax.
type fileConfig struct {
	Backends struct {
		UserServiceURL string `yaml:"user_service_url"`
		POSServiceURL  string `yaml:"pos_service_url"`
		RequestTimeout string `yaml:"request_timeout"`
	} `yaml:"backends"`
	Session struct {
		CredentialsFile string `yaml:"credentials_file"`
		PolicyFile      string `yaml:"policy_file"`
		CacheSize       int    `yaml:"cache_size"`
		FallbackTTL     string `yaml:"fallback_ttl"`
	} `yaml:"session"`
	Observability struct {
		LogLevel string `yaml:"log_level"`
	} `yaml:"observability"`
}

// LoadConfig loads configuration from an optional YAML file, then overlays
// environment variables. POSGATE_CONFIG_FILE names the file; an empty value
// skips it.
func LoadConfig() (*Config, error) {
	cfg := &Config{
		Backends: BackendConfig{
			UserServiceURL: DefaultUserServiceURL,
			POSServiceURL:  DefaultPOSServiceURL,
			RequestTimeout: DefaultRequestTimeout,
		},
		Observability: ObservabilityConfig{
			LogLevel: observability.InfoLevel,
		},
	}

	if path := getEnv("POSGATE_CONFIG_FILE", ""); path != "" {
		if err := cfg.loadFile(path); err != nil {
			return nil, err
		}
	}

	cfg.loadEnv()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return cfg, nil
}

func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}
	var fc fileConfig
	if err := yaml.Unmarshal(data, &fc); err != nil {
		return fmt.Errorf("failed to parse config file: %w", err)
	}

	if fc.Backends.UserServiceURL != "" {
		c.Backends.UserServiceURL = fc.Backends.UserServiceURL
	}
	if fc.Backends.POSServiceURL != "" {
		c.Backends.POSServiceURL = fc.Backends.POSServiceURL
	}
	if fc.Backends.RequestTimeout != "" {
		d, err := time.ParseDuration(fc.Backends.RequestTimeout)
		if err != nil {
			return fmt.Errorf("invalid request_timeout in config file: %w", err)
		}
		c.Backends.RequestTimeout = d
	}
	if fc.Session.CredentialsFile != "" {
		c.Session.CredentialsFile = fc.Session.CredentialsFile
	}
	if fc.Session.PolicyFile != "" {
		c.Session.PolicyFile = fc.Session.PolicyFile
	}
	if fc.Session.CacheSize != 0 {
		c.Session.CacheSize = fc.Session.CacheSize
	}
	if fc.Session.FallbackTTL != "" {
		d, err := time.ParseDuration(fc.Session.FallbackTTL)
		if err != nil {
			return fmt.Errorf("invalid fallback_ttl in config file: %w", err)
		}
		c.Session.FallbackTTL = d
	}
	if fc.Observability.LogLevel != "" {
		c.Observability.LogLevel = observability.ParseLevel(fc.Observability.LogLevel)
	}
	return nil
}

func (c *Config) loadEnv() {
	c.Backends.UserServiceURL = getEnv("POSGATE_USER_SERVICE_URL", c.Backends.UserServiceURL)
	c.Backends.POSServiceURL = getEnv("POSGATE_POS_SERVICE_URL", c.Backends.POSServiceURL)
	c.Backends.RequestTimeout = getEnvDuration("POSGATE_REQUEST_TIMEOUT", c.Backends.RequestTimeout)

	c.Session.CredentialsFile = getEnv("POSGATE_CREDENTIALS_FILE", c.Session.CredentialsFile)
	c.Session.PolicyFile = getEnv("POSGATE_POLICY_FILE", c.Session.PolicyFile)
	c.Session.CacheSize = getEnvInt("POSGATE_CACHE_SIZE", c.Session.CacheSize)
	c.Session.FallbackTTL = getEnvDuration("POSGATE_FALLBACK_TTL", c.Session.FallbackTTL)

	if level := getEnv("POSGATE_LOG_LEVEL", ""); level != "" {
		c.Observability.LogLevel = observability.ParseLevel(level)
	}
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if err := validateURL("user service URL", c.Backends.UserServiceURL); err != nil {
		return err
	}
	if err := validateURL("POS service URL", c.Backends.POSServiceURL); err != nil {
		return err
	}
	if c.Backends.RequestTimeout <= 0 {
		return fmt.Errorf("request timeout must be positive")
	}
	if c.Session.CacheSize < 0 {
		return fmt.Errorf("cache size must not be negative")
	}
	if c.Session.FallbackTTL < 0 {
		return fmt.Errorf("fallback TTL must not be negative")
	}
	return nil
}

func validateURL(name, raw string) error {
	if raw == "" {
		return fmt.Errorf("%s is required", name)
	}
	u, err := url.Parse(raw)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("%s is not a valid URL: %q", name, raw)
	}
	return nil
}

// getEnv returns an environment variable value or a default
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
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

// getEnvDuration returns a duration environment variable or a default
func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}
