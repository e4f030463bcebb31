package pipeline

import (
	"context"
	"log/slog"
	"time"

	"github.com/moltwatch/censyscollect/internal/collector"
	"github.com/moltwatch/censyscollect/internal/config"
	"github.com/moltwatch/censyscollect/internal/database"
	"github.com/moltwatch/censyscollect/internal/export"
	"github.com/moltwatch/censyscollect/internal/flatten"
	"github.com/moltwatch/censyscollect/internal/model"
)

// CollectStep runs the paged search and flattens each host document
// into allow-list-matched rows.
//
// Design decision: Collection and flattening share a step because the
// flattened rows are derived purely from the fetched documents; splitting
// them would only add a second pass over the same data.
type CollectStep struct {
	// collector drives the paged search.
	collector *collector.Collector

	// logger for structured logging.
	logger *slog.Logger
}

// CollectStepOption configures a CollectStep.
type CollectStepOption func(*CollectStep)

// WithCollectLogger sets a custom logger for the collect step.
func WithCollectLogger(logger *slog.Logger) CollectStepOption {
	return func(s *CollectStep) {
		s.logger = logger
	}
}

// NewCollectStep creates a new collection step around the given collector.
func NewCollectStep(c *collector.Collector, opts ...CollectStepOption) *CollectStep {
	s := &CollectStep{
		collector: c,
		logger:    slog.Default(),
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Name returns the step name.
func (s *CollectStep) Name() string {
	return "collect"
}

// Do executes the collection step. A search that stops early is not an
// error here: the partial documents are kept on the run and the reason
// is recorded in the run's error note.
func (s *CollectStep) Do(ctx context.Context, run *model.CollectionRun) error {
	result := s.collector.Collect(ctx, run.Query)

	run.Pages = result.Pages
	run.ErrorNote = result.ErrorNote
	for i := range result.Documents {
		rows := flatten.Flatten(&result.Documents[i], run.Titles)
		run.AddDocument(result.Documents[i], rows)
	}
	run.FinishedAt = time.Now()

	s.logger.Info("collection finished",
		"pages", run.Pages,
		"hosts", run.Hosts,
		"rows", run.Rows,
	)
	return nil
}

// ExportStep writes the run's JSONL and CSV artifacts.
type ExportStep struct {
	// outDir is the directory artifacts are written under.
	outDir string

	// now supplies the timestamp used in artifact names.
	now func() time.Time

	// logger for structured logging.
	logger *slog.Logger
}

// ExportStepOption configures an ExportStep.
type ExportStepOption func(*ExportStep)

// WithExportLogger sets a custom logger for the export step.
func WithExportLogger(logger *slog.Logger) ExportStepOption {
	return func(s *ExportStep) {
		s.logger = logger
	}
}

// WithExportClock overrides the clock used for artifact names.
// This exists for deterministic file names in tests.
func WithExportClock(now func() time.Time) ExportStepOption {
	return func(s *ExportStep) {
		s.now = now
	}
}

// NewExportStep creates a new export step writing under outDir.
func NewExportStep(outDir string, opts ...ExportStepOption) *ExportStep {
	s := &ExportStep{
		outDir: outDir,
		now:    time.Now,
		logger: slog.Default(),
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Name returns the step name.
func (s *ExportStep) Name() string {
	return "export"
}

// Do executes the export step. Both artifact files are written even
// when the run stopped early, so partial results are never lost.
func (s *ExportStep) Do(_ context.Context, run *model.CollectionRun) error {
	if err := export.WriteRun(run, s.outDir, s.now()); err != nil {
		return err
	}

	s.logger.Info("artifacts written",
		"jsonl", run.JSONLPath,
		"csv", run.CSVPath,
	)
	return nil
}

// PersistStep saves the run's metadata and observed IPs to the
// run-history database.
type PersistStep struct {
	// db is the run-history store.
	db *database.RunDB

	// logger for structured logging.
	logger *slog.Logger
}

// PersistStepOption configures a PersistStep.
type PersistStepOption func(*PersistStep)

// WithPersistLogger sets a custom logger for the persist step.
func WithPersistLogger(logger *slog.Logger) PersistStepOption {
	return func(s *PersistStep) {
		s.logger = logger
	}
}

// NewPersistStep creates a new persistence step backed by db.
func NewPersistStep(db *database.RunDB, opts ...PersistStepOption) *PersistStep {
	s := &PersistStep{
		db:     db,
		logger: slog.Default(),
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Name returns the step name.
func (s *PersistStep) Name() string {
	return "persist"
}

// Do executes the persistence step.
func (s *PersistStep) Do(ctx context.Context, run *model.CollectionRun) error {
	if err := s.db.SaveRun(ctx, run); err != nil {
		return err
	}

	s.logger.Info("run saved", "run_id", run.ID)
	return nil
}

// DefaultPipeline creates a pipeline with the standard collect, export,
// and persist steps configured from cfg. The persist step is only added
// when db is non-nil, so callers can run without the history database.
//
// Design decision: We provide a default pipeline because:
// 1. Most users want the standard sequence
// 2. Reduces boilerplate in CLI
// 3. Ensures consistent ordering
func DefaultPipeline(c *collector.Collector, db *database.RunDB, cfg *config.Config, pipelineOpts ...Option) *Pipeline {
	p := New(pipelineOpts...)

	p.AddSteps(
		NewCollectStep(c, WithCollectLogger(p.logger)),
		NewExportStep(cfg.OutDir, WithExportLogger(p.logger)),
	)
	if db != nil {
		p.AddStep(NewPersistStep(db, WithPersistLogger(p.logger)))
	}

	return p
}
