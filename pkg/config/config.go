// Package config resolves runtime configuration from the environment.
// Settings come from environment variables, optionally seeded from a .env
// file loaded by the caller before Load is invoked.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"
)

// Defaults applied when the corresponding environment variable is unset.
const (
	DefaultHTTPPort      = "8080"
	DefaultStorageRoot   = "./data"
	DefaultOracleModel   = "gemini-2.0-flash"
	DefaultOracleTimeout = 30 * time.Second
	DefaultGutDecay      = 0.95
	DefaultGutMinDwell   = 2 * time.Second
)

// Config holds all resolved runtime settings.
type Config struct {
	HTTPPort    string
	StorageRoot string

	// EventLogURL is the base URL of the external event-log service.
	// Empty disables the integration (compression falls back in dev mode).
	EventLogURL string

	// Oracle settings. An empty APIKey disables the live oracle.
	OracleAPIKey  string
	OracleModel   string
	OracleTimeout time.Duration

	// Gut tuning.
	GutDecay    float64
	GutMinDwell time.Duration

	// StrictMigrations makes a table-signature mismatch fatal at startup.
	StrictMigrations bool

	// DevMode registers the built-in echo agent and allows the compression
	// pipeline to substitute mock events when the event log is unreachable.
	DevMode bool
}

// Load resolves configuration from the environment.
func Load() (*Config, error) {
	cfg := &Config{
		HTTPPort:         getEnv("HTTP_PORT", DefaultHTTPPort),
		StorageRoot:      getEnv("TRACEOS_STORAGE_ROOT", DefaultStorageRoot),
		EventLogURL:      os.Getenv("TRACEOS_EVENT_LOG_URL"),
		OracleAPIKey:     os.Getenv("GEMINI_API_KEY"),
		OracleModel:      getEnv("GEMINI_MODEL", DefaultOracleModel),
		OracleTimeout:    DefaultOracleTimeout,
		GutDecay:         DefaultGutDecay,
		GutMinDwell:      DefaultGutMinDwell,
		StrictMigrations: getEnvBool("TRACEOS_STRICT_MIGRATIONS", true),
		DevMode:          getEnvBool("TRACEOS_DEV", false),
	}

	if v := os.Getenv("TRACEOS_ORACLE_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return nil, fmt.Errorf("invalid TRACEOS_ORACLE_TIMEOUT %q: %w", v, err)
		}
		cfg.OracleTimeout = d
	}
	if v := os.Getenv("TRACEOS_GUT_DECAY"); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil || f <= 0 || f > 1 {
			return nil, fmt.Errorf("invalid TRACEOS_GUT_DECAY %q: must be in (0,1]", v)
		}
		cfg.GutDecay = f
	}
	if v := os.Getenv("TRACEOS_GUT_MIN_DWELL"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil || d < 0 {
			return nil, fmt.Errorf("invalid TRACEOS_GUT_MIN_DWELL %q: %w", v, err)
		}
		cfg.GutMinDwell = d
	}

	return cfg, nil
}

// DBPath is the embedded database file under the storage root.
func (c *Config) DBPath() string {
	return filepath.Join(c.StorageRoot, "traceos_memory.db")
}

// MigrationLockPath is the advisory lock file guarding schema migration.
func (c *Config) MigrationLockPath() string {
	return filepath.Join(c.StorageRoot, ".traceos_memory.db.migration.lock")
}

// TelemetryDir holds the per-session columnar telemetry files.
func (c *Config) TelemetryDir() string {
	return filepath.Join(c.StorageRoot, "telemetry")
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return defaultValue
	}
	switch v {
	case "1", "true", "TRUE", "yes":
		return true
	}
	return false
}
