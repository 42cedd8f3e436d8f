// pkg/loader/staging.go
package loader

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/David-Botos/employee-cleanse/pkg/connector"
	"github.com/David-Botos/employee-cleanse/pkg/model"
	"github.com/David-Botos/employee-cleanse/pkg/source"
)

// Source yields raw employee rows.
type Source interface {
	Name() string
	Read() (*source.Batch, error)
}

// StagingLoader copies raw rows into the staging table as-is.
type StagingLoader struct {
	store     *connector.Store
	metadata  *model.TableMetadata
	batchSize int
	logger    *zap.Logger
}

// NewStagingLoader creates a loader for the staging table named table.
func NewStagingLoader(store *connector.Store, table string, batchSize int, logger *zap.Logger) (*StagingLoader, error) {
	if store == nil {
		return nil, errors.New("store cannot be nil")
	}
	if logger == nil {
		return nil, errors.New("logger cannot be nil")
	}
	return &StagingLoader{
		store:     store,
		metadata:  model.StagingTable(table),
		batchSize: batchSize,
		logger:    logger,
	}, nil
}

// Metadata describes the staging table.
func (l *StagingLoader) Metadata() *model.TableMetadata {
	return l.metadata
}

// LoadRaw loads the CSV file at path. See LoadFrom.
func (l *StagingLoader) LoadRaw(ctx context.Context, path string) (*LoadResult, error) {
	return l.LoadFrom(ctx, source.NewCSVSource(path))
}

// LoadFrom recreates the staging table and inserts every row of src in
// batches, each committed on its own. A missing source is not an error: the
// table is left empty and the result carries source.ErrSourceNotFound.
func (l *StagingLoader) LoadFrom(ctx context.Context, src Source) (*LoadResult, error) {
	start := time.Now()
	result := &LoadResult{Table: l.metadata.Table}

	batch, err := src.Read()
	switch {
	case errors.Is(err, source.ErrSourceNotFound):
		l.logger.Warn("Source file not found, staging table will be empty",
			zap.String("source", src.Name()))
		result.addCondition(err, model.Diagnostic{
			Stage:     "staging",
			Condition: "source_missing",
			Value:     src.Name(),
			Message:   err.Error(),
		})
		batch = &source.Batch{}
	case err != nil:
		return nil, fmt.Errorf("failed to read source %s: %w", src.Name(), err)
	default:
		l.logger.Info("Source file loaded",
			zap.String("source", src.Name()),
			zap.Int("rows", len(batch.Records)))
	}

	result.RowsRead = len(batch.Records)
	result.Diagnostics = append(result.Diagnostics, batch.Diagnostics...)
	for _, d := range batch.Diagnostics {
		l.logger.Warn("Source value dropped", zap.Stringer("diagnostic", d))
	}

	if err := l.store.RecreateTable(ctx, l.metadata); err != nil {
		return nil, err
	}

	rows := make([][]interface{}, len(batch.Records))
	for i, r := range batch.Records {
		rows[i] = r.Values()
	}

	inserted, err := l.store.BatchInsert(ctx, l.metadata, rows, l.batchSize)
	result.RowsInserted = inserted
	if err != nil {
		return result, fmt.Errorf("failed to load staging table %s: %w", l.metadata.Table, err)
	}

	result.Duration = time.Since(start)
	l.logger.Info("Raw data inserted into staging table",
		zap.String("table", l.metadata.Table),
		zap.Int64("rows", inserted),
		zap.Duration("duration", result.Duration))
	return result, nil
}

// ReadRaw reads the staging table back in insertion order.
func (l *StagingLoader) ReadRaw(ctx context.Context) ([]model.RawRecord, error) {
	var records []model.RawRecord
	if err := l.store.SelectAll(ctx, &records, l.metadata, "id"); err != nil {
		return nil, err
	}
	l.logger.Debug("Data loaded from staging table",
		zap.String("table", l.metadata.Table),
		zap.Int("rows", len(records)))
	return records, nil
}
