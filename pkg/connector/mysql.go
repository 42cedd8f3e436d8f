// pkg/connector/mysql.go
package connector

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/go-sql-driver/mysql"
	"go.uber.org/zap"

	"github.com/David-Botos/employee-cleanse/pkg/config"
	"github.com/David-Botos/employee-cleanse/pkg/converter"
)

// MySQLConnector implements the DatabaseConnector interface for MySQL
type MySQLConnector struct {
	db     *sql.DB
	logger *zap.Logger
	cfg    *config.MySQLConfig
}

// MySQLDSN builds the driver DSN for cfg
func MySQLDSN(cfg *config.MySQLConfig) string {
	dsn := mysql.NewConfig()
	dsn.User = cfg.User
	dsn.Passwd = cfg.Password
	dsn.Net = "tcp"
	dsn.Addr = cfg.Addr()
	dsn.DBName = cfg.Database
	dsn.ParseTime = true
	dsn.Loc = time.UTC
	return dsn.FormatDSN()
}

// NewMySQLConnector creates and initializes a new MySQL connector
func NewMySQLConnector(ctx context.Context, cfg *config.MySQLConfig) (*MySQLConnector, error) {
	logger := zap.L().Named("mysql-connector")

	logger.Info("Connecting to MySQL",
		zap.String("addr", cfg.Addr()),
		zap.String("database", cfg.Database),
		zap.String("user", cfg.User))

	db, err := sql.Open("mysql", MySQLDSN(cfg))
	if err != nil {
		return nil, fmt.Errorf("failed to initialize MySQL connection: %w", err)
	}

	ApplyConnectionSettings(db, cfg.MaxOpenConns, cfg.MaxIdleConns, cfg.ConnMaxLifetime, 0)

	if err := PingWithTimeout(ctx, db, 5*time.Second); err != nil {
		db.Close()
		return nil, fmt.Errorf("%w: failed to connect to MySQL: %w", ErrStoreUnavailable, err)
	}

	LogConnectionStats(logger, cfg.Database, db)
	return &MySQLConnector{db: db, logger: logger, cfg: cfg}, nil
}

// DB returns the underlying database connection
func (c *MySQLConnector) DB() *sql.DB {
	return c.db
}

// DriverName returns the database/sql driver name
func (c *MySQLConnector) DriverName() string {
	return "mysql"
}

// Dialect returns the MySQL dialect
func (c *MySQLConnector) Dialect() converter.Dialect {
	return converter.MySQL
}

// Validate checks the server version and that the configured database is selected
func (c *MySQLConnector) Validate(ctx context.Context) error {
	var version, database sql.NullString
	if err := c.db.QueryRowContext(ctx, "SELECT VERSION(), DATABASE()").Scan(&version, &database); err != nil {
		return fmt.Errorf("failed to query MySQL version: %w", err)
	}
	if !database.Valid || database.String != c.cfg.Database {
		return fmt.Errorf("connected to database %q, expected %q", database.String, c.cfg.Database)
	}

	c.logger.Info("MySQL connection validated",
		zap.String("version", version.String),
		zap.String("database", c.cfg.Database))
	return nil
}

// Close closes the database connection
func (c *MySQLConnector) Close() error {
	c.logger.Info("Closing MySQL connection")
	LogConnectionStats(c.logger, c.cfg.Database, c.db)
	return c.db.Close()
}

// ExecWithTimeout executes a statement with a timeout
func (c *MySQLConnector) ExecWithTimeout(ctx context.Context, query string, timeout time.Duration, args ...interface{}) (sql.Result, error) {
	return execWithTimeout(ctx, c.db, query, timeout, args...)
}
