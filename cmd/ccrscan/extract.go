package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/nao1215/ccrscan/internal/config"
	"github.com/nao1215/ccrscan/internal/database"
	"github.com/nao1215/ccrscan/internal/model"
	"github.com/nao1215/ccrscan/internal/pipeline"
	"github.com/nao1215/ccrscan/internal/source"
	"github.com/spf13/cobra"
)

// errDocumentsFailed is returned when at least one document could not be extracted.
var errDocumentsFailed = errors.New("some documents failed")

// NewExtractCmd creates the extract command.
func NewExtractCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "extract <file-or-directory>...",
		Short: "Extract contaminant data from HTML reports",
		Long: `Extract reads Consumer Confidence Reports converted to HTML and writes
one JSON report per document as <name>.json.

Directories are searched recursively for .html and .htm files. Converter
asset folders (<name>_files) and hidden directories are skipped. Documents
named TX<digits>_<year>.html are processed newest year first.

Documents whose JSON report already exists are skipped unless --force is
given. Documents that failed in an earlier run are skipped unless
--retry-failed is given.

Examples:
  # Extract every report in a directory
  ccrscan extract reports/

  # Write JSON reports into a separate directory
  ccrscan extract --output-dir json/ reports/

  # Show what would be processed
  ccrscan extract --stats reports/

  # Re-extract everything, 8 documents at a time
  ccrscan extract --force --batch 8 reports/

Configuration file (.ccrscan) example:
  defaults:
    batch: 4
  systems:
    TX0000001:
      skip: true
    TX1234567:
      years: [2022, 2023]`,
		Args: cobra.ArbitraryArgs,
		RunE: runExtractCmd,
	}

	cmd.Flags().StringP("output-dir", "o", "",
		"Directory for JSON reports (default: next to each document)")
	cmd.Flags().IntP("batch", "b", config.DefaultBatchSize,
		"Number of documents processed concurrently")
	cmd.Flags().Int64("max-file-size", config.DefaultMaxFileSize,
		"Largest document accepted, in bytes")
	cmd.Flags().IntP("limit", "n", 0,
		"Process at most this many documents (0 means no limit)")
	cmd.Flags().BoolP("force", "f", false,
		"Re-extract documents whose JSON report already exists")
	cmd.Flags().Bool("retry-failed", false,
		"Include documents that failed in an earlier run")
	cmd.Flags().Bool("stats", false,
		"Print discovery totals and exit")
	cmd.Flags().Bool("delete-html", false,
		"Delete each document and its asset folder after its report is written")
	cmd.Flags().Bool("no-db", false,
		"Do not store reports or failures in the database")
	cmd.Flags().StringP("config", "c", "",
		"Configuration file path (default: .ccrscan in current or home directory)")

	return cmd
}

// runExtractCmd executes the extract command.
func runExtractCmd(cmd *cobra.Command, args []string) error {
	cfg, err := buildExtractConfig(cmd, args)
	if err != nil {
		return err
	}

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	logger := setupLogger(cmd)

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return runExtract(ctx, cfg, logger, cmd.OutOrStdout())
}

// buildExtractConfig creates a Config from cobra command flags and the config file.
func buildExtractConfig(cmd *cobra.Command, args []string) (*config.Config, error) {
	cfg := config.NewConfig()
	flags := cmd.Flags()

	var err error
	if cfg.OutputDir, err = flags.GetString("output-dir"); err != nil {
		return nil, err
	}
	if cfg.BatchSize, err = flags.GetInt("batch"); err != nil {
		return nil, err
	}
	if cfg.MaxFileSize, err = flags.GetInt64("max-file-size"); err != nil {
		return nil, err
	}
	if cfg.Limit, err = flags.GetInt("limit"); err != nil {
		return nil, err
	}
	if cfg.Force, err = flags.GetBool("force"); err != nil {
		return nil, err
	}
	if cfg.RetryFailed, err = flags.GetBool("retry-failed"); err != nil {
		return nil, err
	}
	if cfg.StatsOnly, err = flags.GetBool("stats"); err != nil {
		return nil, err
	}
	if cfg.DeleteHTML, err = flags.GetBool("delete-html"); err != nil {
		return nil, err
	}
	noDB, err := flags.GetBool("no-db")
	if err != nil {
		return nil, err
	}
	if cfg.ConfigFilePath, err = flags.GetString("config"); err != nil {
		return nil, err
	}

	cfg.SaveToDB = !noDB
	cfg.DBDir = getDBDir(cmd)
	cfg.Verbose = getBoolFlag(cmd, "verbose")
	cfg.LogJSON = getBoolFlag(cmd, "log-json")
	cfg.Inputs = args

	// An explicit config path must exist; otherwise a missing file is fine.
	configPath := config.FindConfigFile(cfg.ConfigFilePath)
	switch {
	case configPath != "":
		file, err := config.LoadConfigFile(configPath)
		if err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
		cfg.ApplyFileDefaults(file, flags.Changed)
	case cfg.ConfigFilePath != "":
		return nil, fmt.Errorf("%w: %s", config.ErrConfigNotFound, cfg.ConfigFilePath)
	}

	return cfg, nil
}

// runExtract discovers, filters and extracts documents.
func runExtract(ctx context.Context, cfg *config.Config, logger *slog.Logger, out io.Writer) error {
	docs, err := source.Discover(cfg.Inputs)
	if err != nil {
		return err
	}

	var db *database.ReportDB
	if cfg.SaveToDB {
		db, err = database.Open(cfg.DBDir, database.DefaultOptions())
		if err != nil {
			return fmt.Errorf("failed to open database: %w", err)
		}
		defer db.Close()
		logger.Debug("database opened", "path", db.Path())
	}

	var failed map[string]bool
	if db != nil {
		if failed, err = db.FailedNames(ctx); err != nil {
			return err
		}
	}

	filter := source.Filter{
		OutputDir:   cfg.OutputDir,
		Force:       cfg.Force,
		RetryFailed: cfg.RetryFailed,
		Failed:      failed,
		Allow:       cfg.Systems.Allows,
		Limit:       cfg.Limit,
	}
	selection := filter.Apply(docs)

	printSelection(out, selection)
	if cfg.StatsOnly {
		return nil
	}
	if len(selection.Documents) == 0 {
		fmt.Fprintln(out, "Nothing to extract.")
		return nil
	}

	return runBatchExtract(ctx, cfg, db, selection.Documents, logger, out)
}

// printSelection prints discovery totals.
func printSelection(out io.Writer, s source.Selection) {
	fmt.Fprintf(out, "Documents found:         %d\n", s.Total)
	fmt.Fprintf(out, "Already extracted:       %d\n", s.Existing)
	fmt.Fprintf(out, "Previously failed:       %d\n", s.Failed)
	fmt.Fprintf(out, "Excluded by config:      %d\n", s.Excluded)
	fmt.Fprintf(out, "Remaining:               %d\n\n", s.Remaining())
}

// runBatchExtract runs the pipeline over docs and reports each result as it finishes.
func runBatchExtract(
	ctx context.Context,
	cfg *config.Config,
	db *database.ReportDB,
	docs []source.Document,
	logger *slog.Logger,
	out io.Writer,
) error {
	paths := make([]string, len(docs))
	for i, doc := range docs {
		paths[i] = doc.Path
	}

	configOpts := []pipeline.DefaultPipelineOption{
		pipeline.WithPipelineMaxFileSize(cfg.MaxFileSize),
		pipeline.WithPipelineOutputDir(cfg.OutputDir),
		pipeline.WithPipelineDeleteSource(cfg.DeleteHTML),
		pipeline.WithPipelineLogger(logger),
	}
	if db != nil {
		configOpts = append(configOpts, pipeline.WithPipelineStore(db))
	}

	newPipeline := func() *pipeline.Pipeline {
		return pipeline.DefaultPipeline([]pipeline.Option{pipeline.WithLogger(logger)}, configOpts...)
	}
	logger.Debug("pipeline configured", "steps", newPipeline().StepNames())

	bp := pipeline.NewBatchProcessor(
		newPipeline,
		pipeline.WithConcurrency(cfg.BatchSize),
		pipeline.WithBatchLogger(logger),
	)

	fmt.Fprintf(out, "Extracting %d documents (concurrency: %d)...\n\n", len(paths), cfg.BatchSize)
	startTime := time.Now()

	var mu sync.Mutex
	var done, extracted, failures int
	err := bp.ProcessBatchWithCallback(ctx, paths, func(job *model.Job, index int) {
		mu.Lock()
		defer mu.Unlock()

		name := docs[index].Name()
		if job.Cancelled || errors.Is(job.Error, context.Canceled) {
			logger.Debug("document cancelled", "document", name)
			return
		}

		done++
		if job.Failed() {
			failures++
			fmt.Fprintf(out, "[%d/%d] FAILED %s: %v\n", done, len(paths), name, job.Error)
			recordFailure(ctx, db, name, job.Error, logger)
			return
		}

		extracted++
		fmt.Fprintf(out, "[%d/%d] %s: %d contaminants, %d violations -> %s\n",
			done, len(paths), name,
			len(job.Report.Observations), job.Report.ViolationCount(), job.OutputPath)
	})

	fmt.Fprintf(out, "\nExtracted %d of %d documents in %s\n",
		extracted, len(paths), time.Since(startTime).Round(time.Millisecond))

	if err != nil {
		return err
	}
	if failures > 0 {
		return fmt.Errorf("%w: %d of %d (see 'ccrscan failures')", errDocumentsFailed, failures, len(paths))
	}
	return nil
}

// recordFailure stores a document failure so that later runs skip it.
// If db is nil, this function is a no-op.
func recordFailure(ctx context.Context, db *database.ReportDB, name string, cause error, logger *slog.Logger) {
	if db == nil {
		return
	}
	if err := db.RecordFailure(ctx, name, cause.Error()); err != nil {
		logger.Error("failed to record failure", "document", name, "error", err)
	}
}
