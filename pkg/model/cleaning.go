// pkg/model/cleaning.go
package model

// OperationKind names the cleaning rule that changed a value.
type OperationKind string

const (
	OpDefaultFill     OperationKind = "default_fill"
	OpDateStandardize OperationKind = "date_standardize"
	OpDateFallback    OperationKind = "date_fallback"
	OpDedupDrop       OperationKind = "dedup_drop"
	OpTextNormalize   OperationKind = "text_normalize"
	OpDepartmentMap   OperationKind = "department_map"
)

// CleaningOperation represents a single data cleaning operation
type CleaningOperation struct {
	RunID         string        // Pipeline run that performed the operation
	TableName     string        // Table the cleaned row is destined for
	ColumnName    string        // Column that was cleaned
	OriginalValue *string       // Original value (nil when missing)
	NewValue      *string       // New value after cleaning (nil for dropped rows)
	RowIdentifier string        // Employee_ID of the row, or its staging position
	Operation     OperationKind // Rule that was applied
	Reason        string        // Why the rule fired (e.g., "missing_value")
}

// Values returns the operation in AuditTable insert-column order.
func (op CleaningOperation) Values() []interface{} {
	return []interface{}{
		op.RunID,
		op.TableName,
		op.ColumnName,
		op.OriginalValue,
		op.NewValue,
		op.RowIdentifier,
		string(op.Operation),
		op.Reason,
	}
}
