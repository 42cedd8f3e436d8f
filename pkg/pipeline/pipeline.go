// pkg/pipeline/pipeline.go
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/David-Botos/employee-cleanse/pkg/cleaner"
	"github.com/David-Botos/employee-cleanse/pkg/config"
	"github.com/David-Botos/employee-cleanse/pkg/connector"
	"github.com/David-Botos/employee-cleanse/pkg/loader"
	"github.com/David-Botos/employee-cleanse/pkg/mapping"
	"github.com/David-Botos/employee-cleanse/pkg/model"
	"github.com/David-Botos/employee-cleanse/pkg/profiler"
)

// ErrAlreadyRunning is returned when Run is called on a pipeline whose
// previous run has not returned.
var ErrAlreadyRunning = errors.New("pipeline is already running")

// Pipeline runs the staging, profiling, cleaning and canonical load stages
// once, in order, against one store.
type Pipeline struct {
	cfg         *config.Config
	departments *mapping.DepartmentMap
	factory     *connector.ConnectorFactory
	out         io.Writer
	logger      *zap.Logger
	state       State
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithReportWriter sets where the profiling report is printed. The default
// is standard output.
func WithReportWriter(w io.Writer) Option {
	return func(p *Pipeline) { p.out = w }
}

// WithConnectorFactory overrides the factory built from cfg.Store.
func WithConnectorFactory(f *connector.ConnectorFactory) Option {
	return func(p *Pipeline) { p.factory = f }
}

// New creates a pipeline. A nil department map means the built-in defaults.
func New(cfg *config.Config, departments *mapping.DepartmentMap, logger *zap.Logger, opts ...Option) (*Pipeline, error) {
	if cfg == nil {
		return nil, errors.New("config cannot be nil")
	}
	if logger == nil {
		return nil, errors.New("logger cannot be nil")
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	if departments == nil {
		departments = mapping.DefaultDepartments()
	}

	p := &Pipeline{
		cfg:         cfg,
		departments: departments,
		out:         os.Stdout,
		logger:      logger,
		state:       StateDisconnected,
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.factory == nil {
		p.factory = connector.NewConnectorFactory(cfg.Store, logger.Named("connector"))
	}
	return p, nil
}

// State returns the current state of the pipeline.
func (p *Pipeline) State() State {
	return p.state
}

func (p *Pipeline) transition(to State) {
	if !canTransition(p.state, to) {
		// Stages are called in a fixed order below; reaching here is a bug.
		panic(fmt.Sprintf("pipeline: illegal transition %s -> %s", p.state, to))
	}
	p.logger.Debug("Pipeline state changed",
		zap.Stringer("from", p.state),
		zap.Stringer("to", to))
	p.state = to
}

// Run executes one pass. The store connection is opened at the start and
// closed on every path. Recoverable conditions are collected on the report;
// any other failure stops the run and is returned as a *StageError. The
// report is returned in both cases and holds whatever was produced.
func (p *Pipeline) Run(ctx context.Context) (*RunReport, error) {
	if p.state != StateDisconnected {
		return nil, ErrAlreadyRunning
	}

	runID := uuid.NewString()
	logger := p.logger.With(zap.String("run_id", runID))
	metrics := NewRunMetrics(logger)
	report := &RunReport{RunID: runID, Metrics: metrics}
	defer func() {
		metrics.DiagnosticsCount = len(report.Diagnostics)
		metrics.Complete()
	}()

	logger.Info("Starting pipeline run",
		zap.String("driver", p.cfg.Store.Driver),
		zap.String("source", p.cfg.SourcePath),
		zap.String("staging_table", p.cfg.StagingTable),
		zap.String("canonical_table", p.cfg.CanonicalTable))

	sm := metrics.StartStage(StageConnect)
	conn, err := p.connect(ctx)
	metrics.EndStage(sm, 0, err)
	if err != nil {
		return report, NewStageError(StageConnect, err)
	}
	defer func() {
		if err := conn.Close(); err != nil {
			logger.Warn("Failed to close store connection", zap.Error(err))
		}
		p.transition(StateDisconnected)
		logger.Info("Store connection closed")
	}()

	store := connector.NewStore(conn, p.cfg.Store.StatementTimeout, logger.Named("store"))

	raw, err := p.stage(ctx, store, logger, report)
	if err != nil {
		return report, err
	}

	p.profile(raw, logger, report)

	sm = metrics.StartStage(StageClean)
	result := cleaner.NewNormalizer(p.departments, p.cfg.CanonicalTable).Clean(raw)
	report.Stats = result.Stats
	report.Operations = result.Operations
	metrics.RowsCleaned = result.Stats.OutputRows
	metrics.CleaningOps = len(result.Operations)
	metrics.EndStage(sm, int64(result.Stats.OutputRows), nil)
	logger.Info("Data cleaned",
		zap.Int("input_rows", result.Stats.InputRows),
		zap.Int("output_rows", result.Stats.OutputRows),
		zap.Int("duplicates_dropped", result.Stats.DuplicatesDropped),
		zap.Int("defaults_filled", result.Stats.DefaultsFilled),
		zap.Int("dates_defaulted", result.Stats.DatesDefaulted),
		zap.Int("operations", len(result.Operations)))
	p.transition(StateCleaned)

	p.audit(ctx, store, runID, result.Operations, logger, report)

	if err := p.loadCanonical(ctx, store, result.Records, logger, report); err != nil {
		return report, err
	}

	logger.Info("Pipeline run completed",
		zap.Int64("rows_loaded", metrics.RowsLoaded),
		zap.Int("diagnostics", len(report.Diagnostics)))
	return report, nil
}

// connect opens and validates a store connection. Any failure means the
// store cannot be used.
func (p *Pipeline) connect(ctx context.Context) (connector.DatabaseConnector, error) {
	conn, err := p.factory.CreateConnector(ctx)
	if err != nil {
		if !errors.Is(err, connector.ErrStoreUnavailable) {
			err = fmt.Errorf("%w: %w", connector.ErrStoreUnavailable, err)
		}
		return nil, err
	}
	if err := conn.Validate(ctx); err != nil {
		conn.Close()
		return nil, fmt.Errorf("%w: %w", connector.ErrStoreUnavailable, err)
	}
	return conn, nil
}

func (p *Pipeline) stage(ctx context.Context, store *connector.Store, logger *zap.Logger, report *RunReport) ([]model.RawRecord, error) {
	metrics := report.Metrics
	sm := metrics.StartStage(StageStaging)

	staging, err := loader.NewStagingLoader(store, p.cfg.StagingTable, p.cfg.BatchSize, logger.Named("staging"))
	if err != nil {
		metrics.EndStage(sm, 0, err)
		return nil, NewStageError(StageStaging, err)
	}

	result, err := staging.LoadRaw(ctx, p.cfg.SourcePath)
	report.Staging = result
	report.absorb(result)
	if err != nil {
		metrics.EndStage(sm, 0, err)
		return nil, NewStageError(StageStaging, err)
	}
	metrics.RowsRead = result.RowsRead
	metrics.RowsStaged = result.RowsInserted

	raw, err := staging.ReadRaw(ctx)
	metrics.EndStage(sm, int64(len(raw)), err)
	if err != nil {
		return nil, NewStageError(StageStaging, err)
	}
	p.transition(StateStagingLoaded)
	return raw, nil
}

func (p *Pipeline) profile(raw []model.RawRecord, logger *zap.Logger, report *RunReport) {
	sm := report.Metrics.StartStage(StageProfile)

	profile := profiler.Profile(raw)
	report.Profile = profile
	profile.Log(logger)

	// The printed report is for the operator; losing it does not stop a run.
	if err := profile.Print(p.out); err != nil {
		logger.Warn("Failed to print profiling report", zap.Error(err))
		report.addDiagnostic(nil, model.Diagnostic{
			Stage:     string(StageProfile),
			Condition: "report_not_printed",
			Message:   err.Error(),
		})
	}

	report.Metrics.EndStage(sm, int64(profile.Rows), nil)
	p.transition(StateProfiled)
}

// audit records the cleaning operations. A failure is reported and the run
// goes on.
func (p *Pipeline) audit(ctx context.Context, store *connector.Store, runID string, ops []model.CleaningOperation, logger *zap.Logger, report *RunReport) {
	sm := report.Metrics.StartStage(StageAudit)

	recorder, err := cleaner.NewAuditRecorder(store, p.cfg.AuditTable, p.cfg.BatchSize, logger.Named("audit"))
	if err == nil {
		err = recorder.Record(ctx, runID, ops)
	}
	report.Metrics.EndStage(sm, int64(len(ops)), err)

	if err != nil {
		logger.Warn("Cleaning operations were not recorded", zap.Error(err))
		report.addDiagnostic(nil, model.Diagnostic{
			Stage:     string(StageAudit),
			Condition: "audit_not_recorded",
			Value:     p.cfg.AuditTable,
			Message:   err.Error(),
		})
	}
}

func (p *Pipeline) loadCanonical(ctx context.Context, store *connector.Store, records []model.CanonicalRecord, logger *zap.Logger, report *RunReport) error {
	metrics := report.Metrics
	sm := metrics.StartStage(StageCanonical)

	canonical, err := loader.NewCanonicalLoader(store, p.cfg.CanonicalTable, p.cfg.BatchSize, p.cfg.SnapshotPath, logger.Named("canonical"))
	if err != nil {
		metrics.EndStage(sm, 0, err)
		return NewStageError(StageCanonical, err)
	}

	result, err := canonical.LoadClean(ctx, records)
	if err != nil {
		metrics.EndStage(sm, 0, err)
		return NewStageError(StageCanonical, err)
	}
	report.Canonical = result
	report.absorb(result)
	metrics.RowsLoaded = result.RowsInserted
	metrics.EndStage(sm, result.RowsInserted, nil)

	p.transition(StateCanonicalLoaded)
	return nil
}
