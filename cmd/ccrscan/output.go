package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/nao1215/ccrscan/internal/config"
	"github.com/nao1215/ccrscan/internal/report"
	"github.com/spf13/cobra"
)

// addFormatFlags adds the output flags shared by show and compare.
func addFormatFlags(cmd *cobra.Command) {
	cmd.Flags().BoolP("json", "j", false,
		"Output JSON (mutually exclusive with --markdown)")
	cmd.Flags().BoolP("markdown", "m", false,
		"Output Markdown (mutually exclusive with --json)")
	cmd.Flags().StringP("output", "o", "",
		"Write output to specified file path (creates directories if needed)")
	cmd.Flags().Bool("tee", false,
		"With --output, also print the output to stdout")
}

// withOutput selects a report writer from the format flags and passes it to fn.
// Output goes to the --output file when given, otherwise to the command's stdout.
// With --tee it goes to both.
func withOutput(cmd *cobra.Command, fn func(w report.Writer) error) error {
	jsonOutput, err := cmd.Flags().GetBool("json")
	if err != nil {
		return err
	}
	markdownOutput, err := cmd.Flags().GetBool("markdown")
	if err != nil {
		return err
	}
	outputPath, err := cmd.Flags().GetString("output")
	if err != nil {
		return err
	}
	tee, err := cmd.Flags().GetBool("tee")
	if err != nil {
		return err
	}

	cfg := &config.Config{
		JSONReport:     jsonOutput,
		MarkdownReport: markdownOutput,
		ReportFile:     outputPath,
	}
	if err := cfg.ValidateFormats(); err != nil {
		return err
	}

	outputs := []io.Writer{cmd.OutOrStdout()}
	if cfg.ReportFile != "" {
		dir := filepath.Dir(cfg.ReportFile)
		if dir != "" && dir != "." {
			if err := os.MkdirAll(dir, 0o750); err != nil {
				return fmt.Errorf("failed to create output directory: %w", err)
			}
		}

		f, err := os.OpenFile(cfg.ReportFile, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644) //nolint:gosec // reports are public data
		if err != nil {
			return fmt.Errorf("failed to create output file: %w", err)
		}
		defer f.Close()

		if tee {
			outputs = append([]io.Writer{f}, outputs...)
		} else {
			outputs = []io.Writer{f}
		}
	}

	writers := make([]report.Writer, 0, len(outputs))
	for _, output := range outputs {
		writers = append(writers, newFormatWriter(cmd, cfg, output))
	}
	if len(writers) == 1 {
		return fn(writers[0])
	}
	return fn(report.NewMultiWriter(writers...))
}

// newFormatWriter creates the writer for the selected format.
func newFormatWriter(cmd *cobra.Command, cfg *config.Config, output io.Writer) report.Writer {
	switch {
	case cfg.JSONReport:
		return report.NewJSONWriter(output, report.WithPrettyPrint())
	case cfg.MarkdownReport:
		return report.NewMarkdownWriter(output)
	default:
		verbose := getBoolFlag(cmd, "verbose")
		return report.NewSimpleWriter(output, report.WithVerbose(verbose), report.WithShowEmpty(verbose))
	}
}
