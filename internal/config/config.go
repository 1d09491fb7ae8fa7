// ABOUTME: Centralized configuration for the patch library manager
// ABOUTME: Loads from environment variables with validation and defaults
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
)

// Config holds all configuration for the patch library.
type Config struct {
	// LibraryRoot is the directory tree holding native patch banks.
	LibraryRoot string
	// DBPath is the persisted database file.
	DBPath string
	// Jobs bounds the bootstrap parsing worker pool.
	Jobs int
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	cfg := &Config{
		LibraryRoot: getEnv("PATCH1_LIBRARY", ""),
		DBPath:      getEnv("PATCH1_DB", DefaultDBPath()),
		Jobs:        getEnvInt("PATCH1_JOBS", defaultJobs()),
	}
	return cfg, cfg.Validate()
}

// Validate checks configuration consistency.
func (c *Config) Validate() error {
	if c.Jobs <= 0 {
		return fmt.Errorf("PATCH1_JOBS must be positive, got %d", c.Jobs)
	}
	if c.DBPath == "" {
		return fmt.Errorf("PATCH1_DB must not be empty")
	}
	return nil
}

// DefaultDataDir returns the default data directory following the XDG spec.
func DefaultDataDir() string {
	dataHome := os.Getenv("XDG_DATA_HOME")
	if dataHome == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return filepath.Join(".local", "share", "patch1")
		}
		dataHome = filepath.Join(homeDir, ".local", "share")
	}
	return filepath.Join(dataHome, "patch1")
}

// DefaultDBPath returns the default database file path.
func DefaultDBPath() string {
	return filepath.Join(DefaultDataDir(), "patches.db")
}

// Wide parallelism does not pay off for small-file text parsing.
func defaultJobs() int {
	if n := runtime.NumCPU(); n < 4 {
		return n
	}
	return 4
}

func getEnv(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return defaultVal
}
