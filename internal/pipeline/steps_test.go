package pipeline

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/nao1215/ccrscan/internal/model"
	"github.com/nao1215/ccrscan/internal/report"
	"github.com/nao1215/ccrscan/internal/source"
)

// memoryStore is a ReportStore that keeps reports in memory.
type memoryStore struct {
	mu      sync.Mutex
	reports map[string]*model.ExtractedReport
	err     error
}

func (m *memoryStore) SaveReport(_ context.Context, sourceName string, r *model.ExtractedReport) error {
	if m.err != nil {
		return m.err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.reports == nil {
		m.reports = make(map[string]*model.ExtractedReport)
	}
	m.reports[sourceName] = r
	return nil
}

const sampleReport = `<html><body>
<p>Annual Water Quality Report for the period of January 1 to December 31, 2022</p>
<p>CITY OF AUSTIN</p>
<p>Our drinking water is obtained from SURFACE WATER sources.</p>
<table>
<tr><td>Contaminant</td><td>Collection Date</td><td>Highest Level Detected</td><td>Range of Levels Detected</td><td>MCLG</td><td>MCL</td><td>Units</td><td>Violation</td><td>Likely Source of Contamination</td></tr>
<tr><td>Nitrate</td><td>2022</td><td>3.2</td><td>1.1 - 3.2</td><td>10</td><td>10</td><td>ppm</td><td>N</td><td>Runoff from fertilizer use</td></tr>
</table>
</body></html>`

func writeDocument(t *testing.T, dir, name, content string) string {
	t.Helper()

	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("failed to write document: %v", err)
	}
	return path
}

func TestLoadStep(t *testing.T) {
	t.Parallel()

	t.Run("loads and names the document", func(t *testing.T) {
		t.Parallel()

		path := writeDocument(t, t.TempDir(), "TX1234567_2022.html", sampleReport)
		job := model.NewJob(path)

		if err := NewLoadStep(0).Do(context.Background(), job); err != nil {
			t.Fatalf("Do() error = %v", err)
		}
		if job.Document.Name != "TX1234567_2022.html" {
			t.Errorf("Document.Name = %q", job.Document.Name)
		}
		if job.Encoding != "utf-8" {
			t.Errorf("Encoding = %q, want utf-8", job.Encoding)
		}
	})

	t.Run("rejects oversized documents", func(t *testing.T) {
		t.Parallel()

		path := writeDocument(t, t.TempDir(), "TX1234567_2022.html", sampleReport)
		err := NewLoadStep(16).Do(context.Background(), model.NewJob(path))

		if !errors.Is(err, source.ErrFileTooLarge) {
			t.Errorf("Do() error = %v, want ErrFileTooLarge", err)
		}
	})
}

func TestExtractStep(t *testing.T) {
	t.Parallel()

	job := model.NewJob("TX1234567_2022.html")
	job.Document = model.NewSourceDocument("TX1234567_2022.html", sampleReport)

	step := NewExtractStep()
	if step.Name() != "extract" {
		t.Errorf("Name() = %q", step.Name())
	}
	if err := step.Do(context.Background(), job); err != nil {
		t.Fatalf("Do() error = %v", err)
	}

	if job.Report == nil {
		t.Fatal("expected report")
	}
	if job.Report.ID() != "TX1234567" {
		t.Errorf("SystemID = %q", job.Report.ID())
	}
	if len(job.Report.Observations) != 1 || job.Report.Observations[0].Name != "Nitrate" {
		t.Errorf("Observations = %+v", job.Report.Observations)
	}
	if job.Document.Markup != "" {
		t.Error("markup should be released after extraction")
	}
}

func TestExtractStepWithoutContaminants(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelInfo}))

	job := model.NewJob("TX1234567_2022.html")
	job.Document = model.NewSourceDocument("TX1234567_2022.html", "<html><body><p>No tables here.</p></body></html>")

	if err := NewExtractStep(WithExtractLogger(logger)).Do(context.Background(), job); err != nil {
		t.Fatalf("Do() error = %v", err)
	}
	if job.Report == nil || len(job.Report.Observations) != 0 {
		t.Fatalf("expected an empty report, got %+v", job.Report)
	}
	if !strings.Contains(buf.String(), "no contaminant data found") {
		t.Errorf("expected empty report log, got %q", buf.String())
	}
}

func TestWriteStep(t *testing.T) {
	t.Parallel()

	t.Run("writes next to the source by default", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()
		job := model.NewJob(filepath.Join(dir, "TX1234567_2022.html"))
		job.Report = model.NewExtractedReport(model.ReportIdentity{SystemID: model.Ptr("TX1234567")}, nil, model.NewExtractionStats())

		if err := NewWriteStep("").Do(context.Background(), job); err != nil {
			t.Fatalf("Do() error = %v", err)
		}

		want := filepath.Join(dir, "TX1234567_2022.json")
		if job.OutputPath != want {
			t.Errorf("OutputPath = %q, want %q", job.OutputPath, want)
		}
		got, err := report.ReadJSONFile(want)
		if err != nil {
			t.Fatalf("ReadJSONFile() error = %v", err)
		}
		if got.ID() != "TX1234567" {
			t.Errorf("SystemID = %q", got.ID())
		}
	})

	t.Run("writes into output directory", func(t *testing.T) {
		t.Parallel()

		out := filepath.Join(t.TempDir(), "json")
		job := model.NewJob("/input/TX1234567_2022.htm")
		job.Report = model.NewExtractedReport(model.ReportIdentity{}, nil, model.NewExtractionStats())

		if err := NewWriteStep(out).Do(context.Background(), job); err != nil {
			t.Fatalf("Do() error = %v", err)
		}
		if _, err := os.Stat(filepath.Join(out, "TX1234567_2022.json")); err != nil {
			t.Errorf("output not written: %v", err)
		}
	})

	t.Run("fails without a report", func(t *testing.T) {
		t.Parallel()

		err := NewWriteStep(t.TempDir()).Do(context.Background(), model.NewJob("TX1_2022.html"))
		if !errors.Is(err, errNoReport) {
			t.Errorf("Do() error = %v, want errNoReport", err)
		}
	})
}

func TestStoreStep(t *testing.T) {
	t.Parallel()

	t.Run("saves under the file name", func(t *testing.T) {
		t.Parallel()

		store := &memoryStore{}
		job := model.NewJob("/data/TX1234567_2022.html")
		job.Report = model.NewExtractedReport(model.ReportIdentity{SystemID: model.Ptr("TX1234567")}, nil, model.NewExtractionStats())

		if err := NewStoreStep(store).Do(context.Background(), job); err != nil {
			t.Fatalf("Do() error = %v", err)
		}
		if store.reports["TX1234567_2022.html"] != job.Report {
			t.Errorf("report not stored under file name: %v", store.reports)
		}
	})

	t.Run("wraps store errors", func(t *testing.T) {
		t.Parallel()

		storeErr := errors.New("disk full")
		job := model.NewJob("TX1234567_2022.html")
		job.Report = model.NewExtractedReport(model.ReportIdentity{}, nil, model.NewExtractionStats())

		err := NewStoreStep(&memoryStore{err: storeErr}).Do(context.Background(), job)
		if !errors.Is(err, storeErr) {
			t.Errorf("Do() error = %v, want %v", err, storeErr)
		}
	})
}

func TestCleanupStep(t *testing.T) {
	t.Parallel()

	t.Run("removes document and asset directory", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()
		path := writeDocument(t, dir, "TX1234567_2022.html", sampleReport)
		assets := filepath.Join(dir, "TX1234567_2022_files")
		if err := os.MkdirAll(assets, 0o750); err != nil {
			t.Fatal(err)
		}
		writeDocument(t, assets, "image001.png", "png")

		job := model.NewJob(path)
		job.OutputPath = filepath.Join(dir, "TX1234567_2022.json")

		if err := NewCleanupStep(nil).Do(context.Background(), job); err != nil {
			t.Fatalf("Do() error = %v", err)
		}
		if _, err := os.Stat(path); !os.IsNotExist(err) {
			t.Error("document should be deleted")
		}
		if _, err := os.Stat(assets); !os.IsNotExist(err) {
			t.Error("asset directory should be deleted")
		}
	})

	t.Run("refuses without written report", func(t *testing.T) {
		t.Parallel()

		path := writeDocument(t, t.TempDir(), "TX1234567_2022.html", sampleReport)

		if err := NewCleanupStep(nil).Do(context.Background(), model.NewJob(path)); err == nil {
			t.Error("expected error")
		}
		if _, err := os.Stat(path); err != nil {
			t.Error("document should be kept")
		}
	})
}

func TestDefaultPipelineEndToEnd(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	out := filepath.Join(dir, "out")
	store := &memoryStore{}
	good := writeDocument(t, dir, "TX1234567_2022.html", sampleReport)
	binary := writeDocument(t, dir, "TX7654321_2021.html", "PK\x03\x04\x00\x00binary")

	factory := func() *Pipeline {
		return DefaultPipeline(nil,
			WithPipelineOutputDir(out),
			WithPipelineStore(store),
		)
	}

	jobs, err := collectJobs(context.Background(), NewBatchProcessor(factory, WithConcurrency(2)), []string{good, binary})
	if err != nil {
		t.Fatalf("collectJobs() error = %v", err)
	}

	if jobs[0].Failed() {
		t.Fatalf("good document failed: %v", jobs[0].Error)
	}
	if jobs[0].OutputPath != filepath.Join(out, "TX1234567_2022.json") {
		t.Errorf("OutputPath = %q", jobs[0].OutputPath)
	}
	if len(jobs[0].PerformedSteps) != 4 {
		t.Errorf("PerformedSteps = %v", jobs[0].PerformedSteps)
	}
	if _, ok := store.reports["TX1234567_2022.html"]; !ok {
		t.Error("report not stored")
	}

	if !jobs[1].Failed() {
		t.Error("binary document should fail")
	}
	if _, err := os.Stat(filepath.Join(out, "TX7654321_2021.json")); !os.IsNotExist(err) {
		t.Error("no output should be written for a failed document")
	}
}
