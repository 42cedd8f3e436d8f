package model

import (
	"fmt"
	"strings"
)

// Diagnostic is a recoverable condition surfaced to the operator. It never
// stops the run; it exists so nothing is handled silently.
type Diagnostic struct {
	Stage     string // Pipeline stage that raised it
	Condition string // Short machine-friendly label, e.g. "source_missing"
	Row       int    // 1-based data row in the source, 0 when not row-specific
	Column    string // Affected column, if any
	Value     string // Offending raw value, if any
	Message   string // Human-readable description
}

// String renders the diagnostic on one line.
func (d Diagnostic) String() string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("[%s] %s", d.Stage, d.Condition))
	if d.Row > 0 {
		sb.WriteString(fmt.Sprintf(" row=%d", d.Row))
	}
	if d.Column != "" {
		sb.WriteString(fmt.Sprintf(" column=%s", d.Column))
	}
	if d.Value != "" {
		sb.WriteString(fmt.Sprintf(" value=%q", d.Value))
	}
	if d.Message != "" {
		sb.WriteString(": " + d.Message)
	}
	return sb.String()
}
