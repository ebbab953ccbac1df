package pipeline

import (
	"context"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/nao1215/ccrscan/internal/log"
	"github.com/nao1215/ccrscan/internal/model"
)

// Step defines the interface that all pipeline steps must implement.
// Steps are executed in sequence, each receiving the job that the previous
// steps filled in.
type Step interface {
	// Do executes the pipeline step.
	// It returns an error when the document cannot be processed further.
	Do(ctx context.Context, job *model.Job) error

	// Name returns the step's name for logging purposes.
	Name() string
}

// Pipeline orchestrates the execution of multiple steps.
type Pipeline struct {
	// steps contains the ordered list of steps to execute.
	steps []Step

	// logger is used for structured logging during execution.
	logger *slog.Logger
}

// Option is a function that configures a Pipeline.
type Option func(*Pipeline)

// WithLogger sets a custom logger for the pipeline.
func WithLogger(logger *slog.Logger) Option {
	return func(p *Pipeline) {
		p.logger = logger
	}
}

// New creates a new Pipeline with the given options.
// Steps should be added using AddStep after creation.
func New(opts ...Option) *Pipeline {
	p := &Pipeline{
		steps: make([]Step, 0),
	}

	for _, opt := range opts {
		opt(p)
	}

	if p.logger == nil {
		p.logger = slog.Default()
	}

	return p
}

// AddStep appends a step to the pipeline.
// Steps are executed in the order they are added.
func (p *Pipeline) AddStep(step Step) {
	p.steps = append(p.steps, step)
}

// AddSteps appends multiple steps to the pipeline.
func (p *Pipeline) AddSteps(steps ...Step) {
	p.steps = append(p.steps, steps...)
}

// Execute runs all pipeline steps in sequence.
//
// Cancellation is checked before each step; a running step handles its own
// context. The first step error is recorded on the job and returned; later
// steps do not run, so cleanup never follows a failed write or store. Log
// records carry the document name through the context.
func (p *Pipeline) Execute(ctx context.Context, job *model.Job) error {
	defer func() {
		job.Elapsed = time.Since(job.StartedAt)
	}()

	ctx = log.WithDocument(ctx, filepath.Base(job.Path))

	for _, step := range p.steps {
		if err := ctx.Err(); err != nil {
			p.logger.WarnContext(ctx, "pipeline cancelled", "before", step.Name(), "reason", err)
			job.Cancelled = true
			return err
		}

		if err := p.runStep(ctx, step, job); err != nil {
			job.Error = err
			job.ErrorMessage = err.Error()
			return err
		}
		job.PerformedSteps = append(job.PerformedSteps, step.Name())
	}

	return nil
}

// runStep executes one step and logs its outcome.
func (p *Pipeline) runStep(ctx context.Context, step Step, job *model.Job) error {
	start := time.Now()
	err := step.Do(ctx, job)
	took := time.Since(start)

	if err != nil {
		p.logger.ErrorContext(ctx, "step failed", "step", step.Name(), "took", took, "error", err)
		return err
	}
	p.logger.DebugContext(ctx, "step completed", "step", step.Name(), "took", took)
	return nil
}

// StepNames returns the names of all steps in execution order.
func (p *Pipeline) StepNames() []string {
	names := make([]string, len(p.steps))
	for i, step := range p.steps {
		names[i] = step.Name()
	}
	return names
}
