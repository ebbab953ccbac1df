package pipeline

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"strings"
	"testing"

	"github.com/nao1215/ccrscan/internal/log"
	"github.com/nao1215/ccrscan/internal/model"
)

// mockStep is a test helper that implements the Step interface.
type mockStep struct {
	name      string
	doFunc    func(ctx context.Context, job *model.Job) error
	callCount int
}

// Do implements Step.Do.
func (m *mockStep) Do(ctx context.Context, job *model.Job) error {
	m.callCount++
	if m.doFunc != nil {
		return m.doFunc(ctx, job)
	}
	return nil
}

// Name implements Step.Name.
func (m *mockStep) Name() string {
	return m.name
}

// TestPipelineNew tests the Pipeline constructor.
func TestPipelineNew(t *testing.T) {
	t.Parallel()

	t.Run("creates pipeline with default settings", func(t *testing.T) {
		t.Parallel()

		p := New()

		if p == nil {
			t.Fatal("expected non-nil pipeline")
		}
		if len(p.StepNames()) != 0 {
			t.Errorf("expected 0 steps, got %d", len(p.StepNames()))
		}
		if p.logger == nil {
			t.Error("expected default logger")
		}
	})

	t.Run("nil logger falls back to default", func(t *testing.T) {
		t.Parallel()

		p := New(WithLogger(nil))

		if p.logger == nil {
			t.Error("expected non-nil logger")
		}
	})
}

// TestPipelineAddStep tests adding steps to the pipeline.
func TestPipelineAddStep(t *testing.T) {
	t.Parallel()

	t.Run("adds single step", func(t *testing.T) {
		t.Parallel()

		p := New()
		p.AddStep(&mockStep{name: "test-step"})

		if len(p.StepNames()) != 1 {
			t.Errorf("expected 1 step, got %d", len(p.StepNames()))
		}
	})

	t.Run("adds multiple steps with AddSteps", func(t *testing.T) {
		t.Parallel()

		p := New()
		p.AddSteps(
			&mockStep{name: "step-1"},
			&mockStep{name: "step-2"},
			&mockStep{name: "step-3"},
		)

		if len(p.StepNames()) != 3 {
			t.Errorf("expected 3 steps, got %d", len(p.StepNames()))
		}
	})

	t.Run("maintains step order", func(t *testing.T) {
		t.Parallel()

		p := New()
		p.AddStep(&mockStep{name: "first"})
		p.AddStep(&mockStep{name: "second"})
		p.AddStep(&mockStep{name: "third"})

		names := p.StepNames()

		expected := []string{"first", "second", "third"}
		if len(names) != len(expected) {
			t.Fatalf("expected %d names, got %d", len(expected), len(names))
		}
		for i, name := range names {
			if name != expected[i] {
				t.Errorf("step %d: got %q, expected %q", i, name, expected[i])
			}
		}
	})
}

// TestPipelineExecute tests pipeline execution.
func TestPipelineExecute(t *testing.T) {
	t.Parallel()

	t.Run("executes all steps in order", func(t *testing.T) {
		t.Parallel()

		executionOrder := make([]string, 0)

		p := New()
		p.AddStep(&mockStep{
			name: "step-1",
			doFunc: func(_ context.Context, _ *model.Job) error {
				executionOrder = append(executionOrder, "step-1")
				return nil
			},
		})
		p.AddStep(&mockStep{
			name: "step-2",
			doFunc: func(_ context.Context, _ *model.Job) error {
				executionOrder = append(executionOrder, "step-2")
				return nil
			},
		})

		job := model.NewJob("TX1234567_2022.html")
		if err := p.Execute(context.Background(), job); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(executionOrder) != 2 {
			t.Fatalf("expected 2 executions, got %d", len(executionOrder))
		}
		if executionOrder[0] != "step-1" || executionOrder[1] != "step-2" {
			t.Errorf("wrong execution order: %v", executionOrder)
		}
	})

	t.Run("stops on first error", func(t *testing.T) {
		t.Parallel()

		expectedErr := errors.New("step failed")
		second := &mockStep{name: "should-not-run"}

		p := New()
		p.AddStep(&mockStep{
			name: "failing-step",
			doFunc: func(_ context.Context, _ *model.Job) error {
				return expectedErr
			},
		})
		p.AddStep(second)

		job := model.NewJob("TX1234567_2022.html")
		err := p.Execute(context.Background(), job)

		if !errors.Is(err, expectedErr) {
			t.Errorf("expected error %v, got %v", expectedErr, err)
		}
		if second.callCount != 0 {
			t.Error("second step should not have been called")
		}
		if len(job.PerformedSteps) != 0 {
			t.Errorf("expected no performed steps, got %v", job.PerformedSteps)
		}
	})

	t.Run("respects context cancellation", func(t *testing.T) {
		t.Parallel()

		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		step := &mockStep{name: "should-not-run"}
		p := New()
		p.AddStep(step)

		job := model.NewJob("TX1234567_2022.html")
		err := p.Execute(ctx, job)

		if !errors.Is(err, context.Canceled) {
			t.Errorf("expected context.Canceled, got %v", err)
		}
		if step.callCount != 0 {
			t.Error("step should not have been called")
		}
		if !job.Cancelled {
			t.Error("job.Cancelled should be true")
		}
	})

	t.Run("records performed steps and elapsed time", func(t *testing.T) {
		t.Parallel()

		p := New()
		p.AddStep(&mockStep{name: "load"})
		p.AddStep(&mockStep{name: "extract"})

		job := model.NewJob("TX1234567_2022.html")
		if err := p.Execute(context.Background(), job); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(job.PerformedSteps) != 2 {
			t.Errorf("expected 2 performed steps, got %d", len(job.PerformedSteps))
		}
		if job.Elapsed < 0 {
			t.Errorf("expected non-negative elapsed time, got %v", job.Elapsed)
		}
	})

	t.Run("records error in job", func(t *testing.T) {
		t.Parallel()

		expectedErr := errors.New("test error")

		p := New()
		p.AddStep(&mockStep{
			name: "failing-step",
			doFunc: func(_ context.Context, _ *model.Job) error {
				return expectedErr
			},
		})

		job := model.NewJob("TX1234567_2022.html")
		_ = p.Execute(context.Background(), job) //nolint:errcheck // We check error via job.Error

		if !job.Failed() {
			t.Error("expected error to be recorded in job")
		}
		if job.ErrorMessage != expectedErr.Error() {
			t.Errorf("expected error message %q, got %q", expectedErr.Error(), job.ErrorMessage)
		}
	})
}

// TestPipelineStepNames tests the StepNames method.
func TestPipelineStepNames(t *testing.T) {
	t.Parallel()

	t.Run("returns empty slice for empty pipeline", func(t *testing.T) {
		t.Parallel()

		if names := New().StepNames(); len(names) != 0 {
			t.Errorf("expected empty slice, got %v", names)
		}
	})

	t.Run("default pipeline has load, extract and write", func(t *testing.T) {
		t.Parallel()

		names := DefaultPipeline(nil).StepNames()

		expected := []string{"load", "extract", "write"}
		if strings.Join(names, ",") != strings.Join(expected, ",") {
			t.Errorf("StepNames() = %v, want %v", names, expected)
		}
	})

	t.Run("store and cleanup are appended when configured", func(t *testing.T) {
		t.Parallel()

		names := DefaultPipeline(nil,
			WithPipelineStore(&memoryStore{}),
			WithPipelineDeleteSource(true),
		).StepNames()

		expected := []string{"load", "extract", "write", "store", "cleanup"}
		if strings.Join(names, ",") != strings.Join(expected, ",") {
			t.Errorf("StepNames() = %v, want %v", names, expected)
		}
	})
}

// TestPipelineWithLogger tests that the pipeline logs through the given logger.
func TestPipelineWithLogger(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	logger := slog.New(log.NewDocumentHandler(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})))

	p := New(WithLogger(logger))
	p.AddStep(&mockStep{
		name: "failing-step",
		doFunc: func(_ context.Context, _ *model.Job) error {
			return errors.New("boom")
		},
	})

	_ = p.Execute(context.Background(), model.NewJob("TX1234567_2022.html")) //nolint:errcheck // only the log output is checked

	out := buf.String()
	if !strings.Contains(out, "step failed") {
		t.Errorf("expected failure log, got %q", out)
	}
	if !strings.Contains(out, "document=TX1234567_2022.html") {
		t.Errorf("expected document attribute, got %q", out)
	}
}

// TestBatchProcessorOptions tests the batch processor options.
func TestBatchProcessorOptions(t *testing.T) {
	t.Parallel()

	logger := slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))
	bp := NewBatchProcessor(func() *Pipeline { return New() },
		WithBatchLogger(logger),
		WithConcurrency(7),
	)

	if bp.logger != logger {
		t.Error("expected custom logger")
	}
	if bp.concurrency != 7 {
		t.Errorf("expected concurrency 7, got %d", bp.concurrency)
	}
}
