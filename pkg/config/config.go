// pkg/config/config.go
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Config represents the application configuration
type Config struct {
	// Relational store
	Store *StoreConfig

	// Files
	SourcePath        string
	SnapshotPath      string
	DepartmentMapFile string

	// Tables
	StagingTable   string
	CanonicalTable string
	AuditTable     string

	// Load settings
	BatchSize int

	// Logging
	LogLevel  string
	LogFormat string
}

// LoadConfig loads configuration from environment variables. Variables from
// the given env files (".env" when none are given) are applied first without
// overriding the process environment; a missing file is ignored.
func LoadConfig(envFiles ...string) (*Config, error) {
	if len(envFiles) == 0 {
		envFiles = []string{".env"}
	}
	for _, f := range envFiles {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("failed to load env file %s: %w", f, err)
		}
	}

	cfg := &Config{
		SourcePath:        getEnv("SOURCE_PATH", "employee_data_source.csv"),
		SnapshotPath:      getEnv("SNAPSHOT_PATH", "employee_db.csv"),
		DepartmentMapFile: getEnv("DEPARTMENT_MAP_FILE", ""),
		StagingTable:      getEnv("STAGING_TABLE", "employee_data_source"),
		CanonicalTable:    getEnv("CANONICAL_TABLE", "employee_data"),
		AuditTable:        getEnv("AUDIT_TABLE", "cleaning_operations"),
		BatchSize:         getEnvAsInt("BATCH_SIZE", 500),
		LogLevel:          getEnv("LOG_LEVEL", "info"),
		LogFormat:         getEnv("LOG_FORMAT", "json"),
	}

	storeConfig, err := LoadStoreConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to load store configuration: %w", err)
	}
	cfg.Store = storeConfig

	// Validate configuration
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate ensures all required configuration is present and valid
func (c *Config) Validate() error {
	if c.Store == nil {
		return errors.New("store configuration is required")
	}
	if err := c.Store.Validate(); err != nil {
		return err
	}

	if c.SourcePath == "" {
		return errors.New("source path is required")
	}

	if c.SnapshotPath == "" {
		return errors.New("snapshot path is required")
	}

	tables := map[string]string{
		"staging":   c.StagingTable,
		"canonical": c.CanonicalTable,
		"audit":     c.AuditTable,
	}
	seen := make(map[string]string, len(tables))
	for role, name := range tables {
		if name == "" {
			return fmt.Errorf("%s table name is required", role)
		}
		key := strings.ToLower(name)
		if other, ok := seen[key]; ok {
			return fmt.Errorf("%s and %s tables must differ, both are %q", other, role, name)
		}
		seen[key] = role
	}

	if c.BatchSize <= 0 {
		return errors.New("batch size must be positive")
	}

	switch c.LogFormat {
	case "json", "console":
	default:
		return fmt.Errorf("log format must be json or console, got %q", c.LogFormat)
	}

	return nil
}

// Helper functions for environment variables
func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}
