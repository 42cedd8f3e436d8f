// pkg/loader/result.go
package loader

import (
	"errors"
	"time"

	"github.com/David-Botos/employee-cleanse/pkg/model"
)

var (
	// ErrDuplicateKey is returned when the canonical load violates the
	// Employee_ID primary key.
	ErrDuplicateKey = errors.New("duplicate employee id in canonical load")

	// ErrExportFailed marks a snapshot that could not be written.
	ErrExportFailed = errors.New("snapshot export failed")
)

// LoadResult summarizes one load into a table.
type LoadResult struct {
	Table        string
	RowsRead     int   // rows handed to the loader
	RowsInserted int64 // rows the store accepted
	RowsSkipped  int   // rows left out before insert

	// Conditions holds handled, non-fatal errors such as a missing source or
	// a failed export. Match them with errors.Is.
	Conditions  []error
	Diagnostics []model.Diagnostic

	Verification *VerificationReport
	SnapshotPath string // set when a snapshot was written
	Duration     time.Duration
}

// Has reports whether target matches one of the recorded conditions.
func (r *LoadResult) Has(target error) bool {
	for _, c := range r.Conditions {
		if errors.Is(c, target) {
			return true
		}
	}
	return false
}

func (r *LoadResult) addCondition(err error, d model.Diagnostic) {
	r.Conditions = append(r.Conditions, err)
	r.Diagnostics = append(r.Diagnostics, d)
}
