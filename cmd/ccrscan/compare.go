package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/nao1215/ccrscan/internal/database"
	"github.com/nao1215/ccrscan/internal/model"
	"github.com/nao1215/ccrscan/internal/report"
	"github.com/spf13/cobra"
)

// errNotEnoughReports is returned when a system has fewer than two stored years.
var errNotEnoughReports = errors.New("at least two reports are needed to compare")

// NewCompareCmd creates the compare command.
// This command compares two report years of the same water system.
func NewCompareCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "compare <system-id> | compare <previous.json> <current.json>",
		Short: "Compare two report years of a water system",
		Long: `Compare shows how the contaminant results of a water system changed
between two report years:
- contaminants that appear only in the newer report
- contaminants that are no longer reported
- contaminants whose highest level, units or violation flag changed

Contaminants are matched by name, ignoring case and spacing. Without --from
and --to, the latest stored year is compared with the one before it.

Examples:
  # Compare the two latest years of a system
  ccrscan compare TX1234567

  # Compare specific years as Markdown
  ccrscan compare --from 2020 --to 2023 --markdown TX1234567

  # Compare two JSON reports directly
  ccrscan compare TX1234567_2021.json TX1234567_2022.json

  # List stored years of a system
  ccrscan compare --list TX1234567

  # List all stored systems
  ccrscan compare --list-systems`,
		Args: cobra.MaximumNArgs(2),
		RunE: runCompareCmd,
	}

	cmd.Flags().BoolP("list", "l", false,
		"List stored report years for the specified system")
	cmd.Flags().BoolP("list-systems", "L", false,
		"List all systems in the database")
	cmd.Flags().Int("from", 0, "Previous report year (default: the year before --to)")
	cmd.Flags().Int("to", 0, "Current report year (default: latest)")
	addFormatFlags(cmd)

	return cmd
}

// runCompareCmd executes the compare command.
func runCompareCmd(cmd *cobra.Command, args []string) error {
	listSystems, err := cmd.Flags().GetBool("list-systems")
	if err != nil {
		return err
	}
	listHistory, err := cmd.Flags().GetBool("list")
	if err != nil {
		return err
	}

	if len(args) == 2 {
		return compareFiles(cmd, args[0], args[1])
	}

	// Validate arguments before opening the database.
	if !listSystems && len(args) == 0 {
		return errors.New("system id is required (use --list-systems to see stored systems)")
	}

	from, err := yearFlag(cmd, "from")
	if err != nil {
		return err
	}
	to, err := yearFlag(cmd, "to")
	if err != nil {
		return err
	}

	db, err := openExistingDB(cmd)
	if err != nil {
		return err
	}
	defer db.Close()

	ctx := cmd.Context()
	out := cmd.OutOrStdout()

	if listSystems {
		systems, err := db.ListSystems(ctx)
		if err != nil {
			return err
		}
		if len(systems) == 0 {
			fmt.Fprintln(out, "No reports found in the database.")
			fmt.Fprintln(out, "\nUse 'ccrscan extract <directory>' to extract reports.")
			return nil
		}
		renderSystems(out, systems)
		return nil
	}

	systemID := args[0]
	history, err := db.GetSystemHistory(ctx, systemID)
	if err != nil {
		return err
	}

	if listHistory {
		if len(history) == 0 {
			fmt.Fprintf(out, "No reports found for %s\n", systemID)
			return nil
		}
		fmt.Fprintf(out, "Reports for %s (%d):\n\n", systemID, len(history))
		renderHistory(out, history)
		return nil
	}

	previous, current, err := selectReports(ctx, db, systemID, history, from, to)
	if err != nil {
		return err
	}

	return writeDiff(cmd, model.CompareReports(previous, current))
}

// compareFiles compares two JSON reports written by extract.
func compareFiles(cmd *cobra.Command, previousPath, currentPath string) error {
	previous, err := report.ReadJSONFile(previousPath)
	if err != nil {
		return err
	}
	current, err := report.ReadJSONFile(currentPath)
	if err != nil {
		return err
	}
	return writeDiff(cmd, model.CompareReports(previous, current))
}

func writeDiff(cmd *cobra.Command, diff *model.ReportDiff) error {
	return withOutput(cmd, func(w report.Writer) error {
		_, err := w.WriteDiff(diff)
		return err
	})
}

// selectReports picks the two reports to compare.
// history is ordered newest year first.
func selectReports(
	ctx context.Context,
	db *database.ReportDB,
	systemID string,
	history []database.ReportMetadata,
	from, to *int,
) (*model.ExtractedReport, *model.ExtractedReport, error) {
	if len(history) < 2 && (from == nil || to == nil) {
		return nil, nil, fmt.Errorf("%w: %s has %d (use 'ccrscan extract' to add more)",
			errNotEnoughReports, systemID, len(history))
	}

	if to == nil {
		to = history[0].Year
	}
	if from == nil {
		from = yearBefore(history, to)
		if from == nil {
			return nil, nil, fmt.Errorf("%w: no report older than %s", errNotEnoughReports, formatYear(to))
		}
	}

	previous, err := getReport(ctx, db, systemID, from)
	if err != nil {
		return nil, nil, err
	}
	current, err := getReport(ctx, db, systemID, to)
	if err != nil {
		return nil, nil, err
	}
	return previous, current, nil
}

// yearBefore returns the newest stored year older than year.
func yearBefore(history []database.ReportMetadata, year *int) *int {
	if year == nil {
		return nil
	}
	for _, meta := range history {
		if meta.Year != nil && *meta.Year < *year {
			return meta.Year
		}
	}
	return nil
}

func getReport(ctx context.Context, db *database.ReportDB, systemID string, year *int) (*model.ExtractedReport, error) {
	r, err := db.GetReport(ctx, systemID, year)
	if err != nil {
		return nil, err
	}
	if r == nil {
		return nil, fmt.Errorf("%w: %s %s", errReportNotFound, systemID, formatYear(year))
	}
	return r, nil
}

func formatYear(year *int) string {
	if year == nil {
		return "(unknown year)"
	}
	return fmt.Sprint(*year)
}
