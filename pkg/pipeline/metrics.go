// pkg/pipeline/metrics.go
package pipeline

import (
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
)

// StageMetrics tracks one stage of a run.
type StageMetrics struct {
	Stage     Stage
	StartTime time.Time
	EndTime   time.Time
	Rows      int64 // rows the stage produced or wrote
	Err       error
}

// Duration returns how long the stage ran, or has been running.
func (sm *StageMetrics) Duration() time.Duration {
	if sm.EndTime.IsZero() {
		return time.Since(sm.StartTime)
	}
	return sm.EndTime.Sub(sm.StartTime)
}

// RunMetrics tracks timings and row counts for a run. A run is sequential,
// so there is no locking.
type RunMetrics struct {
	logger *zap.Logger

	StartTime time.Time
	EndTime   time.Time
	Stages    []*StageMetrics

	RowsRead         int
	RowsStaged       int64
	RowsCleaned      int
	RowsLoaded       int64
	CleaningOps      int
	DiagnosticsCount int
}

// NewRunMetrics creates a new RunMetrics instance
func NewRunMetrics(logger *zap.Logger) *RunMetrics {
	return &RunMetrics{
		StartTime: time.Now(),
		logger:    logger,
	}
}

// StartStage begins timing stage.
func (rm *RunMetrics) StartStage(stage Stage) *StageMetrics {
	sm := &StageMetrics{Stage: stage, StartTime: time.Now()}
	rm.Stages = append(rm.Stages, sm)
	rm.logger.Debug("Stage started", zap.String("stage", string(stage)))
	return sm
}

// EndStage stops timing sm and records its outcome.
func (rm *RunMetrics) EndStage(sm *StageMetrics, rows int64, err error) {
	sm.EndTime = time.Now()
	sm.Rows = rows
	sm.Err = err

	fields := []zap.Field{
		zap.String("stage", string(sm.Stage)),
		zap.Duration("duration", sm.Duration()),
		zap.Int64("rows", rows),
	}
	if err != nil {
		rm.logger.Error("Stage failed", append(fields, zap.Error(err))...)
		return
	}
	rm.logger.Info("Stage completed", fields...)
}

// Stage returns the metrics of the named stage, or nil if it never started.
func (rm *RunMetrics) Stage(stage Stage) *StageMetrics {
	for _, sm := range rm.Stages {
		if sm.Stage == stage {
			return sm
		}
	}
	return nil
}

// Complete marks the run as finished and logs a summary.
func (rm *RunMetrics) Complete() {
	rm.EndTime = time.Now()

	durations := make([]zap.Field, 0, len(rm.Stages))
	for _, sm := range rm.Stages {
		durations = append(durations, zap.Duration(string(sm.Stage), sm.Duration()))
	}

	rm.logger.Info("Run completed",
		zap.Duration("totalDuration", rm.Duration()),
		zap.Int("rowsRead", rm.RowsRead),
		zap.Int64("rowsStaged", rm.RowsStaged),
		zap.Int("rowsCleaned", rm.RowsCleaned),
		zap.Int64("rowsLoaded", rm.RowsLoaded),
		zap.Int("cleaningOps", rm.CleaningOps),
		zap.Int("diagnostics", rm.DiagnosticsCount),
		zap.Dict("stageDurations", durations...))
}

// Duration returns the total duration of the run
func (rm *RunMetrics) Duration() time.Duration {
	if rm.EndTime.IsZero() {
		return time.Since(rm.StartTime)
	}
	return rm.EndTime.Sub(rm.StartTime)
}

// Summary renders the metrics as a short plain-text block.
func (rm *RunMetrics) Summary() string {
	var sb strings.Builder
	sb.WriteString("Run Metrics\n===========\n")
	fmt.Fprintf(&sb, "Duration:      %s\n", formatDuration(rm.Duration()))
	fmt.Fprintf(&sb, "Rows read:     %d\n", rm.RowsRead)
	fmt.Fprintf(&sb, "Rows staged:   %d\n", rm.RowsStaged)
	fmt.Fprintf(&sb, "Rows cleaned:  %d\n", rm.RowsCleaned)
	fmt.Fprintf(&sb, "Rows loaded:   %d\n", rm.RowsLoaded)
	fmt.Fprintf(&sb, "Cleaning ops:  %d\n", rm.CleaningOps)
	fmt.Fprintf(&sb, "Diagnostics:   %d\n", rm.DiagnosticsCount)

	sb.WriteString("\nStages\n------\n")
	for _, sm := range rm.Stages {
		status := "ok"
		if sm.Err != nil {
			status = "failed"
		}
		fmt.Fprintf(&sb, "- %-10s %-8s %s\n", sm.Stage, status, formatDuration(sm.Duration()))
	}
	return sb.String()
}

// formatDuration formats a duration to a human-readable string
func formatDuration(d time.Duration) string {
	hours := int(d.Hours())
	minutes := int(d.Minutes()) % 60
	seconds := int(d.Seconds()) % 60

	if hours > 0 {
		return fmt.Sprintf("%dh %dm %ds", hours, minutes, seconds)
	} else if minutes > 0 {
		return fmt.Sprintf("%dm %ds", minutes, seconds)
	}
	return fmt.Sprintf("%.2fs", d.Seconds())
}
