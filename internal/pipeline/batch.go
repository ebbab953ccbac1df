package pipeline

import (
	"context"
	"log/slog"
	"time"

	"github.com/nao1215/ccrscan/internal/model"
	"golang.org/x/sync/errgroup"
)

// DefaultConcurrency is the number of documents processed at once.
const DefaultConcurrency = 4

// BatchProcessor processes many documents concurrently.
// It uses errgroup to manage goroutines and respect the concurrency limit.
type BatchProcessor struct {
	// pipelineFactory creates a new pipeline for each document.
	pipelineFactory func() *Pipeline

	// concurrency is the maximum number of documents in flight.
	concurrency int

	// logger is used for batch-level logging.
	logger *slog.Logger
}

// BatchOption configures a BatchProcessor.
type BatchOption func(*BatchProcessor)

// WithBatchLogger sets a custom logger for batch processing.
func WithBatchLogger(logger *slog.Logger) BatchOption {
	return func(b *BatchProcessor) {
		b.logger = logger
	}
}

// WithConcurrency sets the maximum number of concurrent documents.
// Non-positive values keep the default.
func WithConcurrency(n int) BatchOption {
	return func(b *BatchProcessor) {
		if n > 0 {
			b.concurrency = n
		}
	}
}

// NewBatchProcessor creates a new BatchProcessor.
// The pipelineFactory is called once per document.
func NewBatchProcessor(pipelineFactory func() *Pipeline, opts ...BatchOption) *BatchProcessor {
	bp := &BatchProcessor{
		pipelineFactory: pipelineFactory,
		concurrency:     DefaultConcurrency,
	}

	for _, opt := range opts {
		opt(bp)
	}

	if bp.logger == nil {
		bp.logger = slog.Default()
	}

	return bp
}

// ProcessBatchWithCallback runs the pipeline over every path and calls
// callback for each finished job with its index in paths.
//
// A document failure is recorded on its job and never aborts the batch. The
// error is non-nil only when ctx ends first; documents that never started get
// no callback. The callback is called from the worker goroutine, so it must
// be safe for concurrent use.
func (bp *BatchProcessor) ProcessBatchWithCallback(
	ctx context.Context,
	paths []string,
	callback func(job *model.Job, index int),
) error {
	bp.logger.Info("starting batch processing",
		"total_documents", len(paths),
		"concurrency", bp.concurrency,
	)

	startTime := time.Now()
	err := bp.run(ctx, paths, callback)

	bp.logger.Info("batch processing complete",
		"total_documents", len(paths),
		"elapsed", time.Since(startTime),
	)
	return err
}

func (bp *BatchProcessor) run(ctx context.Context, paths []string, done func(job *model.Job, index int)) error {
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(bp.concurrency)

	for i, path := range paths {
		g.Go(func() error {
			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
			}

			job := model.NewJob(path)
			pipeline := bp.pipelineFactory()
			if err := pipeline.Execute(ctx, job); err != nil {
				bp.logger.Warn("document failed",
					"document", path,
					"error", err,
				)
			} else {
				bp.logger.Debug("document completed",
					"document", path,
					"elapsed", job.Elapsed,
				)
			}

			// The error stays on the job; other documents keep going.
			done(job, i)
			return nil
		})
	}

	return g.Wait()
}
