// Package config provides configuration management for KinSync.
// It loads settings from environment variables with the KINSYNC_ prefix
// and provides sensible defaults for all configuration options.
//
// Matching thresholds and evidence weights live in an optional YAML file
// (KINSYNC_MATCHING_CONFIG) so they can be tuned without a rebuild; every
// value omitted from the file keeps its default.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/kinsync/kinsync/internal/match"
)

// Config holds all configuration settings for the KinSync application.
type Config struct {
	Server   ServerConfig
	Storage  StorageConfig
	Ingest   IngestConfig
	Security SecurityConfig
	Matching match.Config
}

// ServerConfig contains HTTP server configuration.
type ServerConfig struct {
	Port int    // Server port (default: 6464)
	Host string // Server host (default: 127.0.0.1)
}

// StorageConfig contains database and storage configuration.
type StorageConfig struct {
	StorageEngine string // Storage engine type: sqlite, postgres (default: sqlite)
	DataPath      string // Path to data directory for sqlite (default: ./data)
	PostgresURL   string // Postgres connection string (required when engine is postgres)
}

// IngestConfig contains mention-relay ingestion settings.
type IngestConfig struct {
	RelayURL     string        // Base URL of the mention relay (empty disables ingestion)
	RelayToken   string        // Bearer token for the relay
	PollInterval time.Duration // Poll interval (default: 30s)
	RateLimit    float64       // Outbound requests per second (default: 5)
	RateBurst    int           // Outbound burst size (default: 10)
}

// SecurityConfig contains security and authentication settings.
type SecurityConfig struct {
	SecurityMode string // Security mode: development, production (default: development)
	APIToken     string // API authentication token
}

// LoadConfig loads configuration from environment variables with sensible
// defaults. All environment variables use the KINSYNC_ prefix. When
// KINSYNC_MATCHING_CONFIG names a YAML file, matching settings are overlaid
// from it.
func LoadConfig() (*Config, error) {
	cfg := &Config{
		Server: ServerConfig{
			Port: getEnvInt("KINSYNC_PORT", 6464),
			Host: getEnv("KINSYNC_HOST", "127.0.0.1"),
		},
		Storage: StorageConfig{
			StorageEngine: getEnv("KINSYNC_STORAGE_ENGINE", "sqlite"),
			DataPath:      getEnv("KINSYNC_DATA_PATH", "./data"),
			PostgresURL:   getEnv("KINSYNC_POSTGRES_URL", ""),
		},
		Ingest: IngestConfig{
			RelayURL:     getEnv("KINSYNC_RELAY_URL", ""),
			RelayToken:   getEnv("KINSYNC_RELAY_TOKEN", ""),
			PollInterval: getEnvDuration("KINSYNC_RELAY_POLL_INTERVAL", 30*time.Second),
			RateLimit:    getEnvFloat("KINSYNC_RELAY_RATE_LIMIT", 5),
			RateBurst:    getEnvInt("KINSYNC_RELAY_RATE_BURST", 10),
		},
		Security: SecurityConfig{
			SecurityMode: getEnv("KINSYNC_SECURITY_MODE", "development"),
			APIToken:     getEnv("KINSYNC_API_TOKEN", ""),
		},
		Matching: match.DefaultConfig(),
	}

	if path := os.Getenv("KINSYNC_MATCHING_CONFIG"); path != "" {
		matching, err := LoadMatchConfig(path)
		if err != nil {
			return nil, err
		}
		cfg.Matching = matching
	}

	return cfg, nil
}

// LoadMatchConfig reads matching thresholds and weights from a YAML file.
// The file is overlaid on the defaults, so a partial file is valid: only the
// keys present override.
func LoadMatchConfig(path string) (match.Config, error) {
	cfg := match.DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("config: failed to read matching config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("config: failed to parse matching config %s: %w", path, err)
	}
	return cfg, nil
}

// getEnv retrieves a string environment variable or returns a default value.
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvInt retrieves an integer environment variable or returns a default value.
// If the environment variable exists but cannot be parsed as an integer,
// it returns the default value.
func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

// getEnvFloat retrieves a float environment variable or returns a default value.
func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatValue, err := strconv.ParseFloat(value, 64); err == nil {
			return floatValue
		}
	}
	return defaultValue
}

// getEnvDuration retrieves a duration environment variable (Go duration
// syntax, e.g. "30s") or returns a default value.
func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
