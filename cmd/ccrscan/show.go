package main

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/nao1215/ccrscan/internal/extract"
	"github.com/nao1215/ccrscan/internal/model"
	"github.com/nao1215/ccrscan/internal/report"
	"github.com/nao1215/ccrscan/internal/source"
	"github.com/spf13/cobra"
)

// jsonExt is the extension of report files written by extract.
const jsonExt = ".json"

// errReportNotFound is returned when the database holds no matching report.
var errReportNotFound = errors.New("no stored report")

// NewShowCmd creates the show command.
func NewShowCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "show <system-id | report.json | document.html>",
		Short: "Show an extracted report",
		Long: `Show renders one report as text tables, Markdown or JSON.

The argument is one of:
- a water system id, looked up in the database (latest year unless --year)
- a JSON report written by 'ccrscan extract'
- an HTML document, extracted on the fly without writing anything

Examples:
  # Latest stored report of a system
  ccrscan show TX1234567

  # A specific year as Markdown
  ccrscan show --year 2021 --markdown TX1234567

  # Preview the extraction of a single document
  ccrscan show reports/TX1234567_2022.html`,
		Args: cobra.ExactArgs(1),
		RunE: runShowCmd,
	}

	cmd.Flags().IntP("year", "y", 0, "Report year (default: latest)")
	cmd.Flags().Bool("summary", false, "Show only the summary")
	addFormatFlags(cmd)

	return cmd
}

// runShowCmd executes the show command.
func runShowCmd(cmd *cobra.Command, args []string) error {
	summaryOnly, err := cmd.Flags().GetBool("summary")
	if err != nil {
		return err
	}

	r, err := loadReport(cmd, args[0])
	if err != nil {
		return err
	}

	return withOutput(cmd, func(w report.Writer) error {
		if summaryOnly {
			_, err := w.WriteSummary(model.NewSummary(r))
			return err
		}
		_, err := w.Write(r)
		return err
	})
}

// loadReport resolves the show argument to a report.
func loadReport(cmd *cobra.Command, arg string) (*model.ExtractedReport, error) {
	switch {
	case source.IsMarkupFile(arg):
		doc, _, err := source.NewLoader(0).Load(arg)
		if err != nil {
			return nil, err
		}
		return extract.New(extract.WithLogger(setupLogger(cmd))).Extract(doc)
	case hasExt(arg, jsonExt):
		return report.ReadJSONFile(arg)
	}

	year, err := yearFlag(cmd, "year")
	if err != nil {
		return nil, err
	}

	db, err := openExistingDB(cmd)
	if err != nil {
		return nil, err
	}
	defer db.Close()

	r, err := db.GetReport(cmd.Context(), arg, year)
	if err != nil {
		return nil, err
	}
	if r == nil {
		if year != nil {
			return nil, fmt.Errorf("%w: %s %d", errReportNotFound, arg, *year)
		}
		return nil, fmt.Errorf("%w: %s (use 'ccrscan compare --list-systems' to see stored systems)", errReportNotFound, arg)
	}
	return r, nil
}

// yearFlag returns the year flag, or nil when it was not set.
func yearFlag(cmd *cobra.Command, name string) (*int, error) {
	if !cmd.Flags().Changed(name) {
		return nil, nil
	}
	year, err := cmd.Flags().GetInt(name)
	if err != nil {
		return nil, err
	}
	if year <= 0 {
		return nil, fmt.Errorf("invalid --%s %d: must be positive", name, year)
	}
	return &year, nil
}

// hasExt reports whether path has the extension ext, ignoring case.
func hasExt(path, ext string) bool {
	return strings.EqualFold(filepath.Ext(path), ext)
}
