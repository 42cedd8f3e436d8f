// pkg/pipeline/report.go
package pipeline

import (
	"errors"

	"github.com/David-Botos/employee-cleanse/pkg/cleaner"
	"github.com/David-Botos/employee-cleanse/pkg/loader"
	"github.com/David-Botos/employee-cleanse/pkg/model"
	"github.com/David-Botos/employee-cleanse/pkg/profiler"
)

// RunReport is everything a run produced, including partial results when a
// stage failed.
type RunReport struct {
	RunID string

	Staging    *loader.LoadResult
	Profile    *profiler.Report
	Stats      cleaner.Stats
	Operations []model.CleaningOperation
	Canonical  *loader.LoadResult

	// Conditions are the recoverable errors met along the way and
	// Diagnostics the details behind them.
	Conditions  []error
	Diagnostics []model.Diagnostic

	Metrics *RunMetrics
}

// Has reports whether target matches one of the recoverable conditions.
func (r *RunReport) Has(target error) bool {
	for _, c := range r.Conditions {
		if errors.Is(c, target) {
			return true
		}
	}
	return false
}

func (r *RunReport) absorb(result *loader.LoadResult) {
	if result == nil {
		return
	}
	r.Conditions = append(r.Conditions, result.Conditions...)
	r.Diagnostics = append(r.Diagnostics, result.Diagnostics...)
}

func (r *RunReport) addDiagnostic(err error, d model.Diagnostic) {
	if err != nil {
		r.Conditions = append(r.Conditions, err)
	}
	r.Diagnostics = append(r.Diagnostics, d)
}
