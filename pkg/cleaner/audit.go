// pkg/cleaner/audit.go
package cleaner

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/David-Botos/employee-cleanse/pkg/connector"
	"github.com/David-Botos/employee-cleanse/pkg/model"
)

// AuditRecorder persists cleaning operations to the audit table.
type AuditRecorder struct {
	store     *connector.Store
	metadata  *model.TableMetadata
	batchSize int
	logger    *zap.Logger
}

// NewAuditRecorder creates an AuditRecorder writing to table.
func NewAuditRecorder(store *connector.Store, table string, batchSize int, logger *zap.Logger) (*AuditRecorder, error) {
	if store == nil {
		return nil, errors.New("store cannot be nil")
	}
	if logger == nil {
		return nil, errors.New("logger cannot be nil")
	}

	return &AuditRecorder{
		store:     store,
		metadata:  model.AuditTable(table),
		batchSize: batchSize,
		logger:    logger,
	}, nil
}

// Record ensures the audit table exists and inserts operations, stamped with
// runID, in a single transaction. Nothing is written if any insert fails.
func (a *AuditRecorder) Record(ctx context.Context, runID string, operations []model.CleaningOperation) (err error) {
	if len(operations) == 0 {
		return nil
	}

	if err := a.store.CreateTableIfNotExists(ctx, a.metadata); err != nil {
		return fmt.Errorf("failed to setup audit table: %w", err)
	}

	rows := make([][]interface{}, len(operations))
	for i, op := range operations {
		op.RunID = runID
		rows[i] = op.Values()
	}

	tx, err := a.store.BeginTx(ctx)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			if rbErr := tx.Rollback(); rbErr != nil && !errors.Is(rbErr, sql.ErrTxDone) {
				a.logger.Error("Failed to rollback transaction",
					zap.Error(rbErr),
					zap.NamedError("cause", err))
			}
		}
	}()

	if _, err = a.store.InsertRowsTx(ctx, tx, a.metadata, rows, a.batchSize); err != nil {
		return fmt.Errorf("failed to insert cleaning operations: %w", err)
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	a.logger.Info("Recorded cleaning operations",
		zap.String("table", a.metadata.Table),
		zap.Int("count", len(operations)))
	return nil
}
