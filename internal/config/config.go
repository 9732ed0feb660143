package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"mizaniya/internal/core"
)

type Config struct {
	// HTTP server
	Port string

	// Logging
	LogLevel string

	// Storage backend selection
	DataBackend   string
	SQLiteDBPath  string
	StateFilePath string

	// Default display currency for a fresh ledger
	DefaultCurrency string
}

func Load() *Config {
	return &Config{
		Port:            getEnv("PORT", "8081"),
		LogLevel:        getEnv("LOG_LEVEL", "info"),
		DataBackend:     getEnv("DATA_BACKEND", "sqlite"),
		SQLiteDBPath:    getEnv("SQLITE_DB_PATH", "./data/mizaniya.db"),
		StateFilePath:   getEnv("STATE_FILE_PATH", "./data/mizaniya.json"),
		DefaultCurrency: getEnv("DEFAULT_CURRENCY", "SAR"),
	}
}

// Validate validates the configuration and returns an error if invalid
func (c *Config) Validate() error {
	var errors []string

	if port, err := strconv.Atoi(c.Port); err != nil {
		errors = append(errors, fmt.Sprintf("invalid port '%s': must be a number", c.Port))
	} else if port < 1 || port > 65535 {
		errors = append(errors, fmt.Sprintf("invalid port %d: must be between 1 and 65535", port))
	}

	validBackends := []string{"sqlite", "jsonfile"}
	isValidBackend := false
	for _, backend := range validBackends {
		if c.DataBackend == backend {
			isValidBackend = true
			break
		}
	}
	if !isValidBackend {
		errors = append(errors, fmt.Sprintf("invalid data backend '%s': must be one of %v", c.DataBackend, validBackends))
	}

	if c.DataBackend == "sqlite" {
		if c.SQLiteDBPath == "" {
			errors = append(errors, "SQLite database path cannot be empty when using sqlite backend")
		} else if err := ensureDir(c.SQLiteDBPath); err != nil {
			errors = append(errors, err.Error())
		}
	}

	if c.DataBackend == "jsonfile" {
		if c.StateFilePath == "" {
			errors = append(errors, "state file path cannot be empty when using jsonfile backend")
		} else if err := ensureDir(c.StateFilePath); err != nil {
			errors = append(errors, err.Error())
		}
	}

	if _, ok := core.CurrencyByCode(c.DefaultCurrency); !ok {
		errors = append(errors, fmt.Sprintf("unsupported default currency '%s'", c.DefaultCurrency))
	}

	if len(errors) > 0 {
		return fmt.Errorf("configuration validation failed:\n- %s", strings.Join(errors, "\n- "))
	}

	return nil
}

func ensureDir(path string) error {
	dir := filepath.Dir(path)
	if dir == "." || dir == "" {
		return nil
	}
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("cannot create directory '%s': %v", dir, err)
		}
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
