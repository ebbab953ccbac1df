package pipeline

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/nao1215/ccrscan/internal/model"
)

// collectJobs runs bp over paths and returns the finished jobs in path order.
func collectJobs(ctx context.Context, bp *BatchProcessor, paths []string) ([]*model.Job, error) {
	jobs := make([]*model.Job, len(paths))
	var mu sync.Mutex
	err := bp.ProcessBatchWithCallback(ctx, paths, func(job *model.Job, index int) {
		mu.Lock()
		defer mu.Unlock()
		jobs[index] = job
	})
	return jobs, err
}

// TestBatchProcessorNew tests the BatchProcessor constructor.
func TestBatchProcessorNew(t *testing.T) {
	t.Parallel()

	t.Run("creates processor with defaults", func(t *testing.T) {
		t.Parallel()

		bp := NewBatchProcessor(func() *Pipeline { return New() })

		if bp == nil {
			t.Fatal("expected non-nil processor")
		}
		if bp.concurrency != DefaultConcurrency {
			t.Errorf("expected default concurrency %d, got %d", DefaultConcurrency, bp.concurrency)
		}
	})

	t.Run("ignores non-positive concurrency", func(t *testing.T) {
		t.Parallel()

		bp := NewBatchProcessor(
			func() *Pipeline { return New() },
			WithConcurrency(0),
		)

		if bp.concurrency != DefaultConcurrency {
			t.Errorf("expected concurrency %d, got %d", DefaultConcurrency, bp.concurrency)
		}
	})

	t.Run("nil logger falls back to default", func(t *testing.T) {
		t.Parallel()

		bp := NewBatchProcessor(
			func() *Pipeline { return New() },
			WithBatchLogger(nil),
		)

		if bp.logger == nil {
			t.Error("expected non-nil logger")
		}
	})
}

// TestBatchProcessorRun tests batch processing.
func TestBatchProcessorRun(t *testing.T) {
	t.Parallel()

	t.Run("processes all documents", func(t *testing.T) {
		t.Parallel()

		var processedCount atomic.Int32

		bp := NewBatchProcessor(func() *Pipeline {
			p := New()
			p.AddStep(&mockStep{
				name: "counter",
				doFunc: func(_ context.Context, _ *model.Job) error {
					processedCount.Add(1)
					return nil
				},
			})
			return p
		})

		paths := []string{
			"TX0000001_2022.html",
			"TX0000002_2022.html",
			"TX0000003_2022.html",
		}

		results, err := collectJobs(context.Background(), bp, paths)

		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(results) != 3 {
			t.Errorf("expected 3 results, got %d", len(results))
		}
		if processedCount.Load() != 3 {
			t.Errorf("expected 3 processed, got %d", processedCount.Load())
		}
	})

	t.Run("respects concurrency limit", func(t *testing.T) {
		t.Parallel()

		var maxConcurrent atomic.Int32
		var currentConcurrent atomic.Int32
		var mu sync.Mutex

		bp := NewBatchProcessor(
			func() *Pipeline {
				p := New()
				p.AddStep(&mockStep{
					name: "concurrent-counter",
					doFunc: func(_ context.Context, _ *model.Job) error {
						current := currentConcurrent.Add(1)

						mu.Lock()
						if current > maxConcurrent.Load() {
							maxConcurrent.Store(current)
						}
						mu.Unlock()

						time.Sleep(20 * time.Millisecond)

						currentConcurrent.Add(-1)
						return nil
					},
				})
				return p
			},
			WithConcurrency(2),
		)

		paths := make([]string, 10)
		for i := range paths {
			paths[i] = "TX0000001_2022.html"
		}

		if _, err := collectJobs(context.Background(), bp, paths); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if maxConcurrent.Load() > 2 {
			t.Errorf("max concurrent was %d, expected <= 2", maxConcurrent.Load())
		}
	})

	t.Run("maintains result order", func(t *testing.T) {
		t.Parallel()

		bp := NewBatchProcessor(func() *Pipeline {
			p := New()
			p.AddStep(&mockStep{name: "noop"})
			return p
		})

		paths := []string{
			"TX0000001_2022.html",
			"TX0000001_2021.html",
			"TX0000001_2020.html",
		}

		results, err := collectJobs(context.Background(), bp, paths)

		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		for i, job := range results {
			if job.Path != paths[i] {
				t.Errorf("result[%d]: got %q, expected %q", i, job.Path, paths[i])
			}
		}
	})

	t.Run("continues after individual document failure", func(t *testing.T) {
		t.Parallel()

		var processedCount atomic.Int32

		bp := NewBatchProcessor(func() *Pipeline {
			p := New()
			p.AddStep(&mockStep{
				name: "sometimes-fails",
				doFunc: func(_ context.Context, job *model.Job) error {
					processedCount.Add(1)
					if job.Path == "broken.html" {
						return errors.New("simulated failure")
					}
					return nil
				},
			})
			return p
		})

		paths := []string{
			"TX0000001_2022.html",
			"broken.html",
			"TX0000003_2022.html",
		}

		results, err := collectJobs(context.Background(), bp, paths)

		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if processedCount.Load() != 3 {
			t.Errorf("expected 3 processed, got %d", processedCount.Load())
		}
		if !results[1].Failed() {
			t.Error("expected error in second result")
		}
		if results[0].Failed() || results[2].Failed() {
			t.Error("other documents should succeed")
		}
	})

	t.Run("handles context cancellation", func(t *testing.T) {
		t.Parallel()

		ctx, cancel := context.WithCancel(context.Background())

		var startedCount atomic.Int32

		bp := NewBatchProcessor(
			func() *Pipeline {
				p := New()
				p.AddStep(&mockStep{
					name: "slow-step",
					doFunc: func(ctx context.Context, _ *model.Job) error {
						startedCount.Add(1)
						select {
						case <-ctx.Done():
							return ctx.Err()
						case <-time.After(time.Second):
							return nil
						}
					},
				})
				return p
			},
			WithConcurrency(2),
		)

		paths := make([]string, 10)
		for i := range paths {
			paths[i] = "TX0000001_2022.html"
		}

		go func() {
			time.Sleep(100 * time.Millisecond)
			cancel()
		}()

		_, err := collectJobs(ctx, bp, paths)

		if !errors.Is(err, context.Canceled) {
			t.Errorf("expected context.Canceled, got %v", err)
		}
		//nolint:gosec // len(paths) is small, no overflow risk
		if startedCount.Load() >= int32(len(paths)) {
			t.Error("expected some documents to not start due to cancellation")
		}
	})
}

// TestBatchProcessorProcessBatchWithCallback tests callback-based processing.
func TestBatchProcessorProcessBatchWithCallback(t *testing.T) {
	t.Parallel()

	var callbackCount atomic.Int32
	var mu sync.Mutex
	received := make(map[int]string)

	bp := NewBatchProcessor(func() *Pipeline {
		p := New()
		p.AddStep(&mockStep{name: "noop"})
		return p
	})

	paths := []string{
		"TX0000001_2022.html",
		"TX0000002_2022.html",
		"TX0000003_2022.html",
	}

	err := bp.ProcessBatchWithCallback(
		context.Background(),
		paths,
		func(job *model.Job, index int) {
			callbackCount.Add(1)
			mu.Lock()
			received[index] = job.Path
			mu.Unlock()
		},
	)

	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if callbackCount.Load() != 3 {
		t.Errorf("expected 3 callbacks, got %d", callbackCount.Load())
	}
	for i, path := range paths {
		if received[i] != path {
			t.Errorf("callback index %d: got %q, expected %q", i, received[i], path)
		}
	}
}
