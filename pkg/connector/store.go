// pkg/connector/store.go
package connector

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/David-Botos/employee-cleanse/pkg/converter"
	"github.com/David-Botos/employee-cleanse/pkg/model"
)

func init() {
	// modernc registers as "sqlite", which sqlx does not know by default.
	sqlx.BindDriver("sqlite", sqlx.QUESTION)
}

// DefaultBatchSize is used when callers pass a non-positive batch size.
const DefaultBatchSize = 500

// Store runs the table-level operations the loaders need against any
// connector: recreate, create, truncate, batched insert and typed selects.
type Store struct {
	conn    DatabaseConnector
	db      *sqlx.DB
	types   *converter.TypeConverter
	timeout time.Duration
	logger  *zap.Logger
}

// NewStore wraps conn. timeout bounds each individual statement.
func NewStore(conn DatabaseConnector, timeout time.Duration, logger *zap.Logger) *Store {
	if logger == nil {
		logger = zap.NewNop()
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Store{
		conn:    conn,
		db:      sqlx.NewDb(conn.DB(), conn.DriverName()),
		types:   converter.NewTypeConverter(conn.Dialect(), logger.Named("types")),
		timeout: timeout,
		logger:  logger,
	}
}

// Dialect returns the store's SQL dialect
func (s *Store) Dialect() converter.Dialect {
	return s.conn.Dialect()
}

// Converter returns the DDL builder for the store's dialect
func (s *Store) Converter() *converter.TypeConverter {
	return s.types
}

// RecreateTable drops metadata.Table if present and creates it again.
func (s *Store) RecreateTable(ctx context.Context, metadata *model.TableMetadata) error {
	if _, err := s.conn.ExecWithTimeout(ctx, s.types.DropTableSQL(metadata.Table), s.timeout); err != nil {
		return fmt.Errorf("failed to drop table %s: %w", metadata.Table, err)
	}

	createSQL, err := s.types.CreateTableSQL(metadata, false)
	if err != nil {
		return err
	}
	if _, err := s.conn.ExecWithTimeout(ctx, createSQL, s.timeout); err != nil {
		return fmt.Errorf("failed to create table %s: %w", metadata.Table, err)
	}

	s.logger.Info("Recreated table", zap.String("table", metadata.Table))
	return nil
}

// CreateTableIfNotExists creates metadata.Table unless it already exists
func (s *Store) CreateTableIfNotExists(ctx context.Context, metadata *model.TableMetadata) error {
	createSQL, err := s.types.CreateTableSQL(metadata, true)
	if err != nil {
		return err
	}
	if _, err := s.conn.ExecWithTimeout(ctx, createSQL, s.timeout); err != nil {
		return fmt.Errorf("failed to create table %s: %w", metadata.Table, err)
	}
	s.logger.Debug("Ensured table exists", zap.String("table", metadata.Table))
	return nil
}

// BeginTx starts a transaction. The caller commits or rolls back.
func (s *Store) BeginTx(ctx context.Context) (*sqlx.Tx, error) {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	return tx, nil
}

// DeleteAllTx removes every row of table inside tx
func (s *Store) DeleteAllTx(ctx context.Context, tx *sqlx.Tx, table string) (int64, error) {
	stmtCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	result, err := tx.ExecContext(stmtCtx, "DELETE FROM "+s.types.QuoteTable(table))
	if err != nil {
		return 0, fmt.Errorf("failed to clear table %s: %w", table, err)
	}
	deleted, err := result.RowsAffected()
	if err != nil {
		s.logger.Warn("Couldn't get rows affected", zap.Error(err))
		return 0, nil
	}
	return deleted, nil
}

// InsertRowsTx inserts valueRows into metadata.Table inside tx, using
// multi-row INSERT statements of at most batchSize rows. Each row must
// supply values for metadata.InsertColumns() in order.
func (s *Store) InsertRowsTx(ctx context.Context, tx *sqlx.Tx, metadata *model.TableMetadata, valueRows [][]interface{}, batchSize int) (int64, error) {
	if len(valueRows) == 0 {
		return 0, nil
	}

	columns := metadata.InsertColumns()
	batchSize = s.batchRows(metadata.Table, batchSize, len(columns))
	var total int64
	for start := 0; start < len(valueRows); start += batchSize {
		end := min(start+batchSize, len(valueRows))
		n, err := s.insertBatch(ctx, tx, metadata.Table, columns, valueRows[start:end])
		total += n
		if err != nil {
			return total, err
		}
	}
	return total, nil
}

// BatchInsert inserts valueRows in batches, committing each batch in its own
// transaction. Rows inserted by batches committed before a failure stay.
func (s *Store) BatchInsert(ctx context.Context, metadata *model.TableMetadata, valueRows [][]interface{}, batchSize int) (int64, error) {
	columns := metadata.InsertColumns()
	batchSize = s.batchRows(metadata.Table, batchSize, len(columns))
	var total int64
	for start := 0; start < len(valueRows); start += batchSize {
		end := min(start+batchSize, len(valueRows))

		n, err := s.commitBatch(ctx, metadata.Table, columns, valueRows[start:end])
		if err != nil {
			return total, fmt.Errorf("batch starting at row %d: %w", start, err)
		}
		total += n

		s.logger.Debug("Committed batch",
			zap.String("table", metadata.Table),
			zap.Int("start", start),
			zap.Int("rows", end-start))
	}
	return total, nil
}

// batchRows applies DefaultBatchSize to non-positive sizes and shrinks sizes
// whose statements would exceed the dialect's bind parameter limit.
func (s *Store) batchRows(table string, batchSize, columns int) int {
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}
	capped := s.types.MaxBatchRows(batchSize, columns)
	if capped < batchSize {
		s.logger.Debug("Batch size capped by bind parameter limit",
			zap.String("table", table),
			zap.Int("requested", batchSize),
			zap.Int("rows", capped))
	}
	return capped
}

func (s *Store) commitBatch(ctx context.Context, table string, columns []string, rows [][]interface{}) (n int64, err error) {
	tx, err := s.BeginTx(ctx)
	if err != nil {
		return 0, err
	}
	defer func() {
		if err != nil {
			if rbErr := tx.Rollback(); rbErr != nil && !errors.Is(rbErr, sql.ErrTxDone) {
				s.logger.Error("Failed to rollback batch", zap.Error(rbErr))
			}
		}
	}()

	n, err = s.insertBatch(ctx, tx, table, columns, rows)
	if err != nil {
		return 0, err
	}
	if err = tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit batch: %w", err)
	}
	return n, nil
}

func (s *Store) insertBatch(ctx context.Context, tx *sqlx.Tx, table string, columns []string, rows [][]interface{}) (int64, error) {
	rowPlaceholder := "(" + strings.TrimSuffix(strings.Repeat("?, ", len(columns)), ", ") + ")"
	placeholders := make([]string, len(rows))
	args := make([]interface{}, 0, len(rows)*len(columns))

	for i, row := range rows {
		if len(row) != len(columns) {
			return 0, fmt.Errorf("row %d has %d values, table %s expects %d", i, len(row), table, len(columns))
		}
		placeholders[i] = rowPlaceholder
		args = append(args, row...)
	}

	query := fmt.Sprintf("INSERT INTO %s (%s) VALUES %s",
		s.types.QuoteTable(table),
		s.types.QuoteColumns(columns),
		strings.Join(placeholders, ", "))

	stmtCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	result, err := tx.ExecContext(stmtCtx, tx.Rebind(query), args...)
	if err != nil {
		return 0, fmt.Errorf("batch insert into %s failed: %w", table, err)
	}

	inserted, err := result.RowsAffected()
	if err != nil {
		s.logger.Warn("Couldn't get rows affected", zap.Error(err))
		return int64(len(rows)), nil
	}
	return inserted, nil
}

// CountRows returns the number of rows in table
func (s *Store) CountRows(ctx context.Context, table string) (int64, error) {
	stmtCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	var count int64
	if err := s.db.GetContext(stmtCtx, &count, "SELECT COUNT(*) FROM "+s.types.QuoteTable(table)); err != nil {
		return 0, fmt.Errorf("failed to count rows in %s: %w", table, err)
	}
	return count, nil
}

// Get runs a single-row query and scans it into dest.
func (s *Store) Get(ctx context.Context, dest interface{}, query string, args ...interface{}) error {
	stmtCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	return s.db.GetContext(stmtCtx, dest, s.db.Rebind(query), args...)
}

// QueryRow runs a single-row query and scans its columns into dest.
func (s *Store) QueryRow(ctx context.Context, query string, dest ...interface{}) error {
	stmtCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	return s.db.QueryRowContext(stmtCtx, query).Scan(dest...)
}

// SelectAll reads every row of metadata.Table into dest, a pointer to a slice
// of structs with db tags, ordered by orderBy when given.
func (s *Store) SelectAll(ctx context.Context, dest interface{}, metadata *model.TableMetadata, orderBy ...string) error {
	query := fmt.Sprintf("SELECT %s FROM %s",
		s.types.QuoteColumns(metadata.ColumnNames()),
		s.types.QuoteTable(metadata.Table))
	if len(orderBy) > 0 {
		query += " ORDER BY " + s.types.QuoteColumns(orderBy)
	}

	stmtCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	if err := s.db.SelectContext(stmtCtx, dest, query); err != nil {
		return fmt.Errorf("failed to read %s: %w", metadata.Table, err)
	}
	return nil
}
