// pkg/connector/sqlite.go
package connector

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"go.uber.org/zap"
	_ "modernc.org/sqlite"

	"github.com/David-Botos/employee-cleanse/pkg/config"
	"github.com/David-Botos/employee-cleanse/pkg/converter"
)

// SQLiteConnector implements the DatabaseConnector interface for an SQLite file
type SQLiteConnector struct {
	db     *sql.DB
	logger *zap.Logger
	cfg    *config.SQLiteConfig
}

// NewSQLiteConnector opens (creating if needed) the configured database file
func NewSQLiteConnector(ctx context.Context, cfg *config.SQLiteConfig) (*SQLiteConnector, error) {
	logger := zap.L().Named("sqlite-connector")
	logger.Info("Opening SQLite database", zap.String("path", cfg.Path))

	db, err := sql.Open("sqlite", cfg.ConnectionString())
	if err != nil {
		return nil, fmt.Errorf("sqlite: open %s: %w", cfg.Path, err)
	}

	// One writer at a time; a single connection also keeps transactions simple.
	db.SetMaxOpenConns(1)

	if err := PingWithTimeout(ctx, db, 5*time.Second); err != nil {
		db.Close()
		return nil, fmt.Errorf("%w: sqlite: open %s: %w", ErrStoreUnavailable, cfg.Path, err)
	}

	return &SQLiteConnector{db: db, logger: logger, cfg: cfg}, nil
}

// DB returns the underlying database connection
func (c *SQLiteConnector) DB() *sql.DB {
	return c.db
}

// DriverName returns the database/sql driver name
func (c *SQLiteConnector) DriverName() string {
	return "sqlite"
}

// Dialect returns the SQLite dialect
func (c *SQLiteConnector) Dialect() converter.Dialect {
	return converter.SQLite
}

// Validate checks the library version and that the file is writable
func (c *SQLiteConnector) Validate(ctx context.Context) error {
	var version string
	if err := c.db.QueryRowContext(ctx, "SELECT sqlite_version()").Scan(&version); err != nil {
		return fmt.Errorf("sqlite: version: %w", err)
	}

	var readOnly bool
	if err := c.db.QueryRowContext(ctx, "PRAGMA query_only").Scan(&readOnly); err != nil {
		return fmt.Errorf("sqlite: query_only: %w", err)
	}
	if readOnly {
		return fmt.Errorf("sqlite: %s is opened read-only", c.cfg.Path)
	}

	c.logger.Info("SQLite connection validated",
		zap.String("version", version),
		zap.String("path", c.cfg.Path))
	return nil
}

// Close closes the database connection
func (c *SQLiteConnector) Close() error {
	c.logger.Info("Closing SQLite database", zap.String("path", c.cfg.Path))
	return c.db.Close()
}

// ExecWithTimeout executes a statement with a timeout
func (c *SQLiteConnector) ExecWithTimeout(ctx context.Context, query string, timeout time.Duration, args ...interface{}) (sql.Result, error) {
	return execWithTimeout(ctx, c.db, query, timeout, args...)
}
