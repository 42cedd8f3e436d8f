// pkg/connector/factory.go
package connector

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/David-Botos/employee-cleanse/pkg/config"
)

// ConnectorFactory creates database connectors
type ConnectorFactory struct {
	cfg    *config.StoreConfig
	logger *zap.Logger
}

// NewConnectorFactory creates a new connector factory
func NewConnectorFactory(cfg *config.StoreConfig, logger *zap.Logger) *ConnectorFactory {
	return &ConnectorFactory{
		cfg:    cfg,
		logger: logger,
	}
}

// CreateConnector opens the store selected by the configured driver
func (f *ConnectorFactory) CreateConnector(ctx context.Context) (DatabaseConnector, error) {
	f.logger.Info("Creating store connector", zap.String("driver", f.cfg.Driver))

	var (
		conn DatabaseConnector
		err  error
	)
	switch f.cfg.Driver {
	case config.DriverPostgres:
		conn, err = f.CreatePostgresConnector(ctx)
	case config.DriverMySQL:
		conn, err = f.CreateMySQLConnector(ctx)
	case config.DriverSQLite:
		conn, err = f.CreateSQLiteConnector(ctx)
	default:
		return nil, fmt.Errorf("unsupported store driver %q", f.cfg.Driver)
	}
	if err != nil {
		return nil, err
	}
	return conn, nil
}

// CreatePostgresConnector creates a new PostgreSQL connector
func (f *ConnectorFactory) CreatePostgresConnector(ctx context.Context) (*PostgresConnector, error) {
	connector, err := NewPostgresConnector(ctx, f.cfg.Postgres)
	if err != nil {
		return nil, fmt.Errorf("failed to create PostgreSQL connector: %w", err)
	}
	return connector, nil
}

// CreateMySQLConnector creates a new MySQL connector
func (f *ConnectorFactory) CreateMySQLConnector(ctx context.Context) (*MySQLConnector, error) {
	connector, err := NewMySQLConnector(ctx, f.cfg.MySQL)
	if err != nil {
		return nil, fmt.Errorf("failed to create MySQL connector: %w", err)
	}
	return connector, nil
}

// CreateSQLiteConnector creates a new SQLite connector
func (f *ConnectorFactory) CreateSQLiteConnector(ctx context.Context) (*SQLiteConnector, error) {
	connector, err := NewSQLiteConnector(ctx, f.cfg.SQLite)
	if err != nil {
		return nil, fmt.Errorf("failed to create SQLite connector: %w", err)
	}
	return connector, nil
}
