package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

// NewFailuresCmd creates the failures command.
func NewFailuresCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "failures",
		Short: "List or clear documents that failed to extract",
		Long: `Failures lists the documents that could not be extracted, with the reason.

Failed documents are skipped by later extract runs. Clear a failure to make
the next run retry the document, or use 'ccrscan extract --retry-failed'.

Examples:
  # List failures
  ccrscan failures

  # Retry one document on the next run
  ccrscan failures --clear TX1234567_2022.html

  # Forget all failures
  ccrscan failures --clear-all`,
		Args: cobra.NoArgs,
		RunE: runFailuresCmd,
	}

	cmd.Flags().String("clear", "", "Clear the failure of this document name")
	cmd.Flags().Bool("clear-all", false, "Clear every recorded failure")

	return cmd
}

// runFailuresCmd executes the failures command.
func runFailuresCmd(cmd *cobra.Command, _ []string) error {
	clearName, err := cmd.Flags().GetString("clear")
	if err != nil {
		return err
	}
	clearAll, err := cmd.Flags().GetBool("clear-all")
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

	switch {
	case clearAll:
		n, err := db.ClearAllFailures(ctx)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "Cleared %d failures.\n", n)
		return nil
	case clearName != "":
		cleared, err := db.ClearFailure(ctx, clearName)
		if err != nil {
			return err
		}
		if !cleared {
			return fmt.Errorf("no failure recorded for %s", clearName)
		}
		fmt.Fprintf(out, "Cleared failure of %s.\n", clearName)
		return nil
	}

	failures, err := db.ListFailures(ctx)
	if err != nil {
		return err
	}
	if len(failures) == 0 {
		fmt.Fprintln(out, "No failures recorded.")
		return nil
	}
	renderFailures(out, failures)
	return nil
}
