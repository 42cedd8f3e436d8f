// pkg/pipeline/error.go
package pipeline

import (
	"errors"
	"fmt"

	"github.com/David-Botos/employee-cleanse/pkg/loader"
	"github.com/David-Botos/employee-cleanse/pkg/source"
)

// Stage names a step of a run.
type Stage string

const (
	StageConnect   Stage = "connect"
	StageStaging   Stage = "staging"
	StageProfile   Stage = "profile"
	StageClean     Stage = "clean"
	StageAudit     Stage = "audit"
	StageCanonical Stage = "canonical"
)

// ErrorCategory says who has to act on an error.
type ErrorCategory int

const (
	// CategoryRecoverable conditions are reported and the run continues.
	CategoryRecoverable ErrorCategory = iota
	// CategoryOperator errors stop the run; the input or the store contents
	// need attention before a rerun.
	CategoryOperator
	// CategoryFatal errors stop the run; the environment is broken.
	CategoryFatal
)

// String returns a string representation of the error category
func (c ErrorCategory) String() string {
	switch c {
	case CategoryRecoverable:
		return "Recoverable"
	case CategoryOperator:
		return "Operator"
	case CategoryFatal:
		return "Fatal"
	default:
		return fmt.Sprintf("Unknown(%d)", c)
	}
}

// StageError is an error raised by one stage of a run.
type StageError struct {
	Stage    Stage
	Category ErrorCategory
	Err      error
}

// NewStageError wraps err for stage, categorizing it.
func NewStageError(stage Stage, err error) *StageError {
	return &StageError{Stage: stage, Category: CategorizeError(err), Err: err}
}

func (e *StageError) Error() string {
	return fmt.Sprintf("%s stage failed [%s]: %v", e.Stage, e.Category, e.Err)
}

func (e *StageError) Unwrap() error { return e.Err }

// CategorizeError maps the sentinel errors of the loaders and connectors to
// a category. Anything unrecognized is fatal.
func CategorizeError(err error) ErrorCategory {
	switch {
	case err == nil:
		return CategoryRecoverable
	case errors.Is(err, source.ErrSourceNotFound),
		errors.Is(err, loader.ErrExportFailed):
		return CategoryRecoverable
	case errors.Is(err, loader.ErrDuplicateKey):
		return CategoryOperator
	default:
		// connector.ErrStoreUnavailable, cancellation and driver errors.
		return CategoryFatal
	}
}

// IsFatal reports whether err is a StageError in CategoryFatal.
func IsFatal(err error) bool {
	var se *StageError
	return errors.As(err, &se) && se.Category == CategoryFatal
}
