// Package config handles application configuration from environment
// variables, optionally loaded from a .env file.
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
)

// Storage backend names accepted in STORAGE_BACKEND.
const (
	BackendMemory = "memory"
	BackendFile   = "file"
	BackendSQLite = "sqlite"
	BackendGist   = "gist"
)

// Config holds the application configuration.
type Config struct {
	StorageBackend string
	DatabasePath   string
	GistID         string
	GistToken      string

	HTTPTimeout  time.Duration
	RequestDelay time.Duration

	DefaultLocation string
	LogLevel        string
}

// Load reads configuration from the environment. A .env file in the working
// directory is loaded first when present; real environment variables win.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		StorageBackend:  envOr("STORAGE_BACKEND", BackendFile),
		DatabasePath:    envOr("DATABASE_PATH", "./data/tyre-database.json"),
		GistID:          os.Getenv("GIST_ID"),
		GistToken:       os.Getenv("GIST_TOKEN"),
		DefaultLocation: envOr("DEFAULT_LOCATION", "Unknown"),
		LogLevel:        envOr("LOG_LEVEL", "info"),
	}

	switch cfg.StorageBackend {
	case BackendMemory, BackendFile, BackendSQLite:
	case BackendGist:
		if cfg.GistID == "" {
			return nil, fmt.Errorf("GIST_ID is required for the gist backend")
		}
	default:
		return nil, fmt.Errorf("unknown STORAGE_BACKEND %q", cfg.StorageBackend)
	}

	var err error
	cfg.HTTPTimeout, err = durationOr("HTTP_TIMEOUT", 30*time.Second)
	if err != nil {
		return nil, err
	}
	cfg.RequestDelay, err = durationOr("REQUEST_DELAY", time.Second)
	if err != nil {
		return nil, err
	}

	return cfg, nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func durationOr(key string, fallback time.Duration) (time.Duration, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, raw, err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("%s must be positive, got %q", key, raw)
	}
	return d, nil
}
