package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/nao1215/ccrscan/internal/extract"
	"github.com/nao1215/ccrscan/internal/model"
	"github.com/nao1215/ccrscan/internal/report"
	"github.com/nao1215/ccrscan/internal/source"
)

// errNoReport is returned by steps that need an extracted report when the
// extract step has not run.
var errNoReport = errors.New("no extracted report")

// LoadStep reads the document from disk and decodes it to UTF-8 markup.
type LoadStep struct {
	// loader enforces the file size limit and detects the charset.
	loader *source.Loader

	// logger for structured logging.
	logger *slog.Logger
}

// LoadStepOption configures a LoadStep.
type LoadStepOption func(*LoadStep)

// WithLoadLogger sets a custom logger for the load step.
func WithLoadLogger(logger *slog.Logger) LoadStepOption {
	return func(s *LoadStep) {
		s.logger = logger
	}
}

// NewLoadStep creates a load step that refuses files larger than maxSize bytes.
func NewLoadStep(maxSize int64, opts ...LoadStepOption) *LoadStep {
	s := &LoadStep{
		loader: source.NewLoader(maxSize),
		logger: slog.Default(),
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Name returns the step name.
func (s *LoadStep) Name() string {
	return "load"
}

// Do loads the document at job.Path into job.Document.
func (s *LoadStep) Do(ctx context.Context, job *model.Job) error {
	doc, enc, err := s.loader.Load(job.Path)
	if err != nil {
		return err
	}

	job.Document = doc
	job.Encoding = enc

	s.logger.DebugContext(ctx, "document loaded",
		"encoding", enc,
		"bytes", len(doc.Markup),
	)
	return nil
}

// ExtractStep runs the extraction engine over the loaded markup.
type ExtractStep struct {
	logger *slog.Logger
}

// ExtractStepOption configures an ExtractStep.
type ExtractStepOption func(*ExtractStep)

// WithExtractLogger sets a custom logger for the extract step and the engine.
func WithExtractLogger(logger *slog.Logger) ExtractStepOption {
	return func(s *ExtractStep) {
		s.logger = logger
	}
}

// NewExtractStep creates a new extraction step.
func NewExtractStep(opts ...ExtractStepOption) *ExtractStep {
	s := &ExtractStep{
		logger: slog.Default(),
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Name returns the step name.
func (s *ExtractStep) Name() string {
	return "extract"
}

// Do extracts job.Document into job.Report and releases the markup.
func (s *ExtractStep) Do(ctx context.Context, job *model.Job) error {
	extractor := extract.New(
		extract.WithLogger(s.logger.With("document", job.Document.Name)),
	)

	r, err := extractor.Extract(job.Document)
	if err != nil {
		return err
	}

	job.Report = r
	job.Document.Markup = ""

	if !r.HasObservations() {
		s.logger.InfoContext(ctx, "no contaminant data found", "report", r.Label(), "tables", r.Stats.Tables)
	}
	s.logger.InfoContext(ctx, "report extracted",
		"report", r.Label(),
		"observations", len(r.Observations),
		"violations", r.ViolationCount(),
		"tables", r.Stats.Tables,
	)
	return nil
}

// WriteStep writes the report as "<stem>.json".
type WriteStep struct {
	// outputDir is the destination directory; empty writes next to the source.
	outputDir string
}

// NewWriteStep creates a write step. An empty outputDir writes each report
// next to its source document.
func NewWriteStep(outputDir string) *WriteStep {
	return &WriteStep{outputDir: outputDir}
}

// Name returns the step name.
func (s *WriteStep) Name() string {
	return "write"
}

// Do writes job.Report and records the output path on the job.
func (s *WriteStep) Do(_ context.Context, job *model.Job) error {
	if job.Report == nil {
		return errNoReport
	}

	path := source.OutputPath(source.NewDocument(job.Path), s.outputDir)
	if err := report.WriteJSONFile(path, job.Report); err != nil {
		return err
	}

	job.OutputPath = path
	return nil
}

// ReportStore persists extracted reports.
// database.ReportDB satisfies this interface.
type ReportStore interface {
	SaveReport(ctx context.Context, sourceName string, report *model.ExtractedReport) error
}

// StoreStep saves the report into a ReportStore.
type StoreStep struct {
	store ReportStore
}

// NewStoreStep creates a store step.
func NewStoreStep(store ReportStore) *StoreStep {
	return &StoreStep{store: store}
}

// Name returns the step name.
func (s *StoreStep) Name() string {
	return "store"
}

// Do saves job.Report under the document's file name.
func (s *StoreStep) Do(ctx context.Context, job *model.Job) error {
	if job.Report == nil {
		return errNoReport
	}
	if err := s.store.SaveReport(ctx, filepath.Base(job.Path), job.Report); err != nil {
		return fmt.Errorf("failed to store report: %w", err)
	}
	return nil
}

// CleanupStep removes the source document and its "<stem>_files" asset
// directory once the report has been written.
type CleanupStep struct {
	logger *slog.Logger
}

// NewCleanupStep creates a cleanup step.
func NewCleanupStep(logger *slog.Logger) *CleanupStep {
	if logger == nil {
		logger = slog.Default()
	}
	return &CleanupStep{logger: logger}
}

// Name returns the step name.
func (s *CleanupStep) Name() string {
	return "cleanup"
}

// Do deletes the source document. It refuses to run before a report was written.
func (s *CleanupStep) Do(ctx context.Context, job *model.Job) error {
	if job.OutputPath == "" {
		return errors.New("refusing to delete a document without a written report")
	}

	doc := source.NewDocument(job.Path)
	if err := os.Remove(doc.Path); err != nil {
		return fmt.Errorf("failed to delete document: %w", err)
	}
	if err := os.RemoveAll(source.AssetDir(doc)); err != nil {
		return fmt.Errorf("failed to delete asset directory: %w", err)
	}

	s.logger.DebugContext(ctx, "source document deleted", "path", doc.Path)
	return nil
}

// DefaultPipelineConfig holds configuration for the default pipeline.
type DefaultPipelineConfig struct {
	// MaxFileSize is the largest document accepted, in bytes.
	MaxFileSize int64

	// OutputDir is where JSON reports are written; empty means next to the source.
	OutputDir string

	// Store, when set, receives every extracted report.
	Store ReportStore

	// DeleteSource removes the source document after a successful write.
	DeleteSource bool

	// Logger is passed to the steps.
	Logger *slog.Logger
}

// DefaultPipelineOption configures a DefaultPipelineConfig.
type DefaultPipelineOption func(*DefaultPipelineConfig)

// WithPipelineMaxFileSize sets the maximum document size in bytes.
func WithPipelineMaxFileSize(size int64) DefaultPipelineOption {
	return func(c *DefaultPipelineConfig) {
		c.MaxFileSize = size
	}
}

// WithPipelineOutputDir sets the directory for JSON reports.
func WithPipelineOutputDir(dir string) DefaultPipelineOption {
	return func(c *DefaultPipelineConfig) {
		c.OutputDir = dir
	}
}

// WithPipelineStore adds a store step backed by store.
func WithPipelineStore(store ReportStore) DefaultPipelineOption {
	return func(c *DefaultPipelineConfig) {
		c.Store = store
	}
}

// WithPipelineDeleteSource deletes source documents after their report is written.
func WithPipelineDeleteSource(deleteSource bool) DefaultPipelineOption {
	return func(c *DefaultPipelineConfig) {
		c.DeleteSource = deleteSource
	}
}

// WithPipelineLogger sets the logger handed to every step.
func WithPipelineLogger(logger *slog.Logger) DefaultPipelineOption {
	return func(c *DefaultPipelineConfig) {
		c.Logger = logger
	}
}

// DefaultPipeline creates the standard pipeline:
// load, extract, write, then store and cleanup when configured.
//
// The first parameter accepts pipeline options (WithLogger, etc).
// The variadic parameter accepts step configuration (WithPipelineOutputDir, etc).
func DefaultPipeline(pipelineOpts []Option, configOpts ...DefaultPipelineOption) *Pipeline {
	p := New(pipelineOpts...)

	cfg := &DefaultPipelineConfig{
		MaxFileSize: source.DefaultMaxFileSize,
		Logger:      slog.Default(),
	}
	for _, opt := range configOpts {
		opt(cfg)
	}

	p.AddSteps(
		NewLoadStep(cfg.MaxFileSize, WithLoadLogger(cfg.Logger)),
		NewExtractStep(WithExtractLogger(cfg.Logger)),
		NewWriteStep(cfg.OutputDir),
	)
	if cfg.Store != nil {
		p.AddStep(NewStoreStep(cfg.Store))
	}
	if cfg.DeleteSource {
		p.AddStep(NewCleanupStep(cfg.Logger))
	}

	return p
}
