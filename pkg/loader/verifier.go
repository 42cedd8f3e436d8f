// pkg/loader/verifier.go
package loader

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/David-Botos/employee-cleanse/pkg/connector"
	"github.com/David-Botos/employee-cleanse/pkg/model"
)

// IntegrityIssue represents a data integrity issue
type IntegrityIssue struct {
	IssueType    string
	Description  string
	ColumnName   string
	AffectedRows int64
}

// VerificationReport contains the results of a table verification
type VerificationReport struct {
	Table             string
	VerificationTime  time.Time
	RowCountMatches   bool
	ExpectedRowCount  int64
	ActualRowCount    int64
	IntegrityVerified bool
	IntegrityIssues   []IntegrityIssue
	Duration          time.Duration
}

// Verifier checks a loaded table against what was written to it.
type Verifier struct {
	store  *connector.Store
	logger *zap.Logger
}

// NewVerifier creates a new verifier
func NewVerifier(store *connector.Store, logger *zap.Logger) *Verifier {
	return &Verifier{
		store:  store,
		logger: logger,
	}
}

// VerifyRowCount compares the table's row count to expected. A mismatch is
// logged as a warning, not returned as an error.
func (v *Verifier) VerifyRowCount(ctx context.Context, table string, expected int64) (bool, int64, error) {
	actual, err := v.store.CountRows(ctx, table)
	if err != nil {
		return false, 0, err
	}

	matches := actual == expected
	if matches {
		v.logger.Info("Row count verification successful",
			zap.String("table", table),
			zap.Int64("count", actual))
	} else {
		v.logger.Warn("Row count mismatch",
			zap.String("table", table),
			zap.Int64("expectedCount", expected),
			zap.Int64("actualCount", actual),
			zap.Int64("difference", expected-actual))
	}

	return matches, actual, nil
}

// VerifyDataIntegrity checks NOT NULL columns for nulls and the primary key
// for duplicates.
func (v *Verifier) VerifyDataIntegrity(ctx context.Context, metadata *model.TableMetadata) (bool, []IntegrityIssue, error) {
	issues := make([]IntegrityIssue, 0)

	nullIssues, err := v.checkNullConstraints(ctx, metadata)
	if err != nil {
		return false, nil, fmt.Errorf("failed to check null constraints: %w", err)
	}
	issues = append(issues, nullIssues...)

	if len(metadata.PrimaryKeys) > 0 {
		pkIssues, err := v.checkPrimaryKeyUniqueness(ctx, metadata)
		if err != nil {
			return false, nil, fmt.Errorf("failed to check primary key uniqueness: %w", err)
		}
		issues = append(issues, pkIssues...)
	}

	success := len(issues) == 0
	if success {
		v.logger.Info("Data integrity verification successful", zap.String("table", metadata.Table))
	} else {
		v.logger.Warn("Data integrity issues found",
			zap.String("table", metadata.Table),
			zap.Int("issues", len(issues)))
	}

	return success, issues, nil
}

// GenerateVerificationReport runs every check against metadata.Table.
func (v *Verifier) GenerateVerificationReport(ctx context.Context, metadata *model.TableMetadata, expectedRows int64) (*VerificationReport, error) {
	startTime := time.Now()
	report := &VerificationReport{
		Table:            metadata.Table,
		VerificationTime: startTime,
		ExpectedRowCount: expectedRows,
	}

	matches, actual, err := v.VerifyRowCount(ctx, metadata.Table, expectedRows)
	if err != nil {
		return nil, fmt.Errorf("row count verification failed: %w", err)
	}
	report.RowCountMatches = matches
	report.ActualRowCount = actual

	verified, issues, err := v.VerifyDataIntegrity(ctx, metadata)
	if err != nil {
		return nil, fmt.Errorf("integrity verification failed: %w", err)
	}
	report.IntegrityVerified = verified
	report.IntegrityIssues = issues

	report.Duration = time.Since(startTime)
	return report, nil
}

func (v *Verifier) checkNullConstraints(ctx context.Context, metadata *model.TableMetadata) ([]IntegrityIssue, error) {
	types := v.store.Converter()
	issues := make([]IntegrityIssue, 0)

	for _, col := range metadata.Columns {
		if col.Nullable || col.Type == model.TypeSerial {
			continue
		}

		var count int64
		query := fmt.Sprintf("SELECT COUNT(*) FROM %s WHERE %s IS NULL",
			types.QuoteTable(metadata.Table), types.QuoteIdentifier(col.Name))
		if err := v.store.Get(ctx, &count, query); err != nil {
			return nil, err
		}

		if count > 0 {
			issues = append(issues, IntegrityIssue{
				IssueType:    "NULL_CONSTRAINT_VIOLATION",
				Description:  fmt.Sprintf("NULL values in non-nullable column %s", col.Name),
				ColumnName:   col.Name,
				AffectedRows: count,
			})
		}
	}
	return issues, nil
}

func (v *Verifier) checkPrimaryKeyUniqueness(ctx context.Context, metadata *model.TableMetadata) ([]IntegrityIssue, error) {
	types := v.store.Converter()
	pkColumns := types.QuoteColumns(metadata.PrimaryKeys)

	// Each duplicate group affects (count-1) rows
	query := fmt.Sprintf(`
		SELECT COUNT(*), COALESCE(SUM(dup_count - 1), 0)
		FROM (
			SELECT COUNT(*) AS dup_count
			FROM %s
			GROUP BY %s
			HAVING COUNT(*) > 1
		) dups
	`, types.QuoteTable(metadata.Table), pkColumns)

	var groups, affected int64
	if err := v.store.QueryRow(ctx, query, &groups, &affected); err != nil {
		return nil, err
	}

	if groups == 0 {
		return nil, nil
	}

	pkDescription := strings.Join(metadata.PrimaryKeys, ",")
	v.logger.Warn("Primary key uniqueness violation",
		zap.String("table", metadata.Table),
		zap.Strings("primaryKeys", metadata.PrimaryKeys),
		zap.Int64("duplicateCount", groups),
		zap.Int64("affectedRows", affected))

	return []IntegrityIssue{{
		IssueType:    "PRIMARY_KEY_VIOLATION",
		Description:  fmt.Sprintf("Duplicate values found for primary key (%s)", pkDescription),
		ColumnName:   pkDescription,
		AffectedRows: affected,
	}}, nil
}
