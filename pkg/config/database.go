// pkg/config/database.go
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/David-Botos/employee-cleanse/pkg/converter"
)

// Supported store drivers, named after the dialect each speaks
const (
	DriverPostgres = string(converter.Postgres)
	DriverMySQL    = string(converter.MySQL)
	DriverSQLite   = string(converter.SQLite)
)

// StoreConfig selects the relational store and holds its settings. Only the
// section matching Driver is populated.
type StoreConfig struct {
	Driver   string
	Postgres *PostgresConfig
	MySQL    *MySQLConfig
	SQLite   *SQLiteConfig

	// Upper bound for a single statement
	StatementTimeout time.Duration
}

// PostgresConfig holds PostgreSQL connection parameters
type PostgresConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Database string
	SSLMode  string

	// Connection pool settings
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	ConnMaxIdleTime time.Duration

	// Statement timeout
	StatementTimeout time.Duration
}

// MySQLConfig holds MySQL connection parameters
type MySQLConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Database string

	// Connection pool settings
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

// SQLiteConfig holds the SQLite database file settings
type SQLiteConfig struct {
	Path        string
	BusyTimeout time.Duration
}

// LoadStoreConfig loads the store section selected by STORE_DRIVER. Dialect
// aliases such as "postgresql" or "sqlite3" are accepted.
func LoadStoreConfig() (*StoreConfig, error) {
	dialect, err := converter.ParseDialect(getEnv("STORE_DRIVER", DriverSQLite))
	if err != nil {
		return nil, fmt.Errorf("STORE_DRIVER: %w", err)
	}

	cfg := &StoreConfig{
		Driver:           string(dialect),
		StatementTimeout: time.Duration(getEnvAsInt("STATEMENT_TIMEOUT_SECONDS", 300)) * time.Second,
	}

	switch cfg.Driver {
	case DriverPostgres:
		cfg.Postgres, err = LoadPostgresConfig()
		if cfg.Postgres != nil {
			cfg.Postgres.StatementTimeout = cfg.StatementTimeout
		}
	case DriverMySQL:
		cfg.MySQL, err = LoadMySQLConfig()
	case DriverSQLite:
		cfg.SQLite = LoadSQLiteConfig()
	}
	if err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks that the selected driver has its settings
func (c *StoreConfig) Validate() error {
	switch c.Driver {
	case DriverPostgres:
		if c.Postgres == nil {
			return errors.New("postgreSQL configuration is required")
		}
	case DriverMySQL:
		if c.MySQL == nil {
			return errors.New("mySQL configuration is required")
		}
	case DriverSQLite:
		if c.SQLite == nil || c.SQLite.Path == "" {
			return errors.New("sqlite path is required")
		}
	default:
		return fmt.Errorf("unsupported store driver %q", c.Driver)
	}

	if c.StatementTimeout <= 0 {
		return errors.New("statement timeout must be positive")
	}

	return nil
}

// LoadPostgresConfig loads PostgreSQL configuration from environment variables
func LoadPostgresConfig() (*PostgresConfig, error) {
	user := os.Getenv("POSTGRES_USER")
	if user == "" {
		return nil, errors.New("POSTGRES_USER environment variable is required")
	}

	password := os.Getenv("POSTGRES_PASSWORD")
	if password == "" {
		return nil, errors.New("POSTGRES_PASSWORD environment variable is required")
	}

	database := os.Getenv("POSTGRES_DB")
	if database == "" {
		return nil, errors.New("POSTGRES_DB environment variable is required")
	}

	cfg := &PostgresConfig{
		Host:     getEnv("POSTGRES_HOST", "localhost"),
		Port:     getEnvAsInt("POSTGRES_PORT", 5432),
		User:     user,
		Password: password,
		Database: database,
		SSLMode:  getEnv("POSTGRES_SSLMODE", "disable"),

		MaxOpenConns:    getEnvAsInt("POSTGRES_MAX_OPEN_CONNS", 5),
		MaxIdleConns:    getEnvAsInt("POSTGRES_MAX_IDLE_CONNS", 2),
		ConnMaxLifetime: time.Duration(getEnvAsInt("POSTGRES_CONN_MAX_LIFETIME_SECONDS", 1800)) * time.Second,
		ConnMaxIdleTime: time.Duration(getEnvAsInt("POSTGRES_CONN_MAX_IDLE_TIME_SECONDS", 600)) * time.Second,
	}

	return cfg, nil
}

// LoadMySQLConfig loads MySQL configuration from environment variables
func LoadMySQLConfig() (*MySQLConfig, error) {
	user := os.Getenv("MYSQL_USER")
	if user == "" {
		return nil, errors.New("MYSQL_USER environment variable is required")
	}

	database := os.Getenv("MYSQL_DB")
	if database == "" {
		return nil, errors.New("MYSQL_DB environment variable is required")
	}

	cfg := &MySQLConfig{
		Host:     getEnv("MYSQL_HOST", "localhost"),
		Port:     getEnvAsInt("MYSQL_PORT", 3306),
		User:     user,
		Password: os.Getenv("MYSQL_PASSWORD"),
		Database: database,

		MaxOpenConns:    getEnvAsInt("MYSQL_MAX_OPEN_CONNS", 5),
		MaxIdleConns:    getEnvAsInt("MYSQL_MAX_IDLE_CONNS", 2),
		ConnMaxLifetime: time.Duration(getEnvAsInt("MYSQL_CONN_MAX_LIFETIME_SECONDS", 1800)) * time.Second,
	}

	return cfg, nil
}

// LoadSQLiteConfig loads SQLite configuration from environment variables
func LoadSQLiteConfig() *SQLiteConfig {
	return &SQLiteConfig{
		Path:        getEnv("SQLITE_PATH", "employee.db"),
		BusyTimeout: time.Duration(getEnvAsInt("SQLITE_BUSY_TIMEOUT_MS", 5000)) * time.Millisecond,
	}
}

// ConnectionString returns a formatted PostgreSQL connection string
func (c *PostgresConfig) ConnectionString() string {
	dsn := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host,
		c.Port,
		c.User,
		c.Password,
		c.Database,
		c.SSLMode,
	)
	// Unknown keys are sent as runtime parameters on every new connection.
	if c.StatementTimeout > 0 {
		dsn += fmt.Sprintf(" statement_timeout=%d", c.StatementTimeout.Milliseconds())
	}
	return dsn
}

// Addr returns the MySQL host:port pair
func (c *MySQLConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// ConnectionString returns a modernc SQLite DSN with the busy timeout and
// foreign keys pragmas applied
func (c *SQLiteConfig) ConnectionString() string {
	dsn := "file:" + c.Path
	pragmas := []string{"_pragma=foreign_keys(1)"}
	if c.BusyTimeout > 0 {
		pragmas = append(pragmas, fmt.Sprintf("_pragma=busy_timeout(%d)", c.BusyTimeout.Milliseconds()))
	}
	return dsn + "?" + strings.Join(pragmas, "&")
}
