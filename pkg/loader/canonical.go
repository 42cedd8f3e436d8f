// pkg/loader/canonical.go
package loader

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/David-Botos/employee-cleanse/pkg/connector"
	"github.com/David-Botos/employee-cleanse/pkg/model"
)

// CanonicalLoader replaces the canonical table with cleaned rows, verifies
// the result and exports a snapshot.
type CanonicalLoader struct {
	store        *connector.Store
	metadata     *model.TableMetadata
	verifier     *Verifier
	exporter     *SnapshotExporter
	snapshotPath string
	batchSize    int
	logger       *zap.Logger
}

// NewCanonicalLoader creates a loader for the canonical table named table.
// An empty snapshotPath disables the export.
func NewCanonicalLoader(store *connector.Store, table string, batchSize int, snapshotPath string, logger *zap.Logger) (*CanonicalLoader, error) {
	if store == nil {
		return nil, errors.New("store cannot be nil")
	}
	if logger == nil {
		return nil, errors.New("logger cannot be nil")
	}
	return &CanonicalLoader{
		store:        store,
		metadata:     model.CanonicalTable(table),
		verifier:     NewVerifier(store, logger.Named("verifier")),
		exporter:     NewSnapshotExporter(logger.Named("export")),
		snapshotPath: snapshotPath,
		batchSize:    batchSize,
		logger:       logger,
	}, nil
}

// Metadata describes the canonical table.
func (l *CanonicalLoader) Metadata() *model.TableMetadata {
	return l.metadata
}

// LoadClean makes the canonical table hold exactly records. The table is
// created if missing, then cleared and filled in one transaction, so a
// failure leaves the previous contents in place. Rows without an
// Employee_ID cannot be keyed and are skipped with a diagnostic. A primary
// key violation returns ErrDuplicateKey. Verification and export problems
// are recorded on the result and do not fail the load.
func (l *CanonicalLoader) LoadClean(ctx context.Context, records []model.CanonicalRecord) (*LoadResult, error) {
	start := time.Now()
	result := &LoadResult{Table: l.metadata.Table, RowsRead: len(records)}

	rows := make([][]interface{}, 0, len(records))
	for i, r := range records {
		if r.EmployeeID == nil {
			result.RowsSkipped++
			result.Diagnostics = append(result.Diagnostics, model.Diagnostic{
				Stage:     "canonical",
				Condition: "missing_employee_id",
				Row:       i + 1,
				Column:    model.ColEmployeeID,
				Value:     r.Name,
				Message:   "row has no Employee_ID and cannot be keyed",
			})
			l.logger.Warn("Skipping row without Employee_ID",
				zap.Int("row", i+1),
				zap.String("name", r.Name))
			continue
		}
		rows = append(rows, r.Values())
	}

	if err := l.store.CreateTableIfNotExists(ctx, l.metadata); err != nil {
		return nil, err
	}

	inserted, err := l.replaceAll(ctx, rows)
	if err != nil {
		return nil, err
	}
	result.RowsInserted = inserted

	l.logger.Info("Clean data inserted into canonical table",
		zap.String("table", l.metadata.Table),
		zap.Int64("rows", inserted),
		zap.Int("skipped", result.RowsSkipped))

	l.verify(ctx, result, int64(len(rows)))

	if l.snapshotPath != "" {
		l.export(ctx, result)
	}

	result.Duration = time.Since(start)
	return result, nil
}

func (l *CanonicalLoader) replaceAll(ctx context.Context, rows [][]interface{}) (inserted int64, err error) {
	tx, err := l.store.BeginTx(ctx)
	if err != nil {
		return 0, err
	}
	defer func() {
		if err != nil {
			if rbErr := tx.Rollback(); rbErr != nil && !errors.Is(rbErr, sql.ErrTxDone) {
				l.logger.Error("Failed to rollback transaction",
					zap.Error(rbErr),
					zap.NamedError("cause", err))
			}
		}
	}()

	deleted, err := l.store.DeleteAllTx(ctx, tx, l.metadata.Table)
	if err != nil {
		return 0, err
	}
	l.logger.Debug("Cleared canonical table",
		zap.String("table", l.metadata.Table),
		zap.Int64("rows", deleted))

	inserted, err = l.store.InsertRowsTx(ctx, tx, l.metadata, rows, l.batchSize)
	if err != nil {
		if connector.IsUniqueViolation(err) {
			return 0, fmt.Errorf("%w: %w", ErrDuplicateKey, err)
		}
		return 0, err
	}

	if err = tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit canonical load: %w", err)
	}
	return inserted, nil
}

func (l *CanonicalLoader) verify(ctx context.Context, result *LoadResult, expected int64) {
	report, err := l.verifier.GenerateVerificationReport(ctx, l.metadata, expected)
	if err != nil {
		l.logger.Warn("Verification failed", zap.Error(err))
		result.Diagnostics = append(result.Diagnostics, model.Diagnostic{
			Stage:     "canonical",
			Condition: "verification_failed",
			Message:   err.Error(),
		})
		return
	}
	result.Verification = report

	if !report.RowCountMatches {
		result.Diagnostics = append(result.Diagnostics, model.Diagnostic{
			Stage:     "canonical",
			Condition: "row_count_mismatch",
			Value:     strconv.FormatInt(report.ActualRowCount, 10),
			Message:   fmt.Sprintf("expected %d rows, table holds %d", expected, report.ActualRowCount),
		})
	}
	for _, issue := range report.IntegrityIssues {
		result.Diagnostics = append(result.Diagnostics, model.Diagnostic{
			Stage:     "canonical",
			Condition: "integrity_issue",
			Column:    issue.ColumnName,
			Message:   issue.Description,
		})
	}
}

// ReadClean reads the canonical table ordered by Employee_ID.
func (l *CanonicalLoader) ReadClean(ctx context.Context) ([]model.CanonicalRecord, error) {
	var records []model.CanonicalRecord
	if err := l.store.SelectAll(ctx, &records, l.metadata, "employee_id"); err != nil {
		return nil, err
	}
	return records, nil
}

// export writes what the store now holds, not what was handed in.
func (l *CanonicalLoader) export(ctx context.Context, result *LoadResult) {
	records, err := l.ReadClean(ctx)
	if err != nil {
		l.logger.Warn("Skipping export, canonical table could not be read back", zap.Error(err))
		result.addCondition(fmt.Errorf("%w: %w", ErrExportFailed, err), model.Diagnostic{
			Stage:     "export",
			Condition: "read_back_failed",
			Message:   err.Error(),
		})
		return
	}

	l.logger.Info("Final table data",
		zap.String("table", l.metadata.Table),
		zap.Int("total_records", len(records)))

	if err := l.exporter.Export(records, l.snapshotPath); err != nil {
		l.logger.Warn("Export failed", zap.Error(err))
		result.addCondition(err, model.Diagnostic{
			Stage:     "export",
			Condition: "export_failed",
			Value:     l.snapshotPath,
			Message:   err.Error(),
		})
		return
	}
	result.SnapshotPath = l.snapshotPath
}
