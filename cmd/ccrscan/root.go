package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/nao1215/ccrscan/internal/config"
	"github.com/nao1215/ccrscan/internal/database"
	"github.com/nao1215/ccrscan/internal/log"
	"github.com/spf13/cobra"
)

// NewRootCmd creates the root command for ccrscan.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ccrscan",
		Short: "Extract contaminant data from Consumer Confidence Reports",
		Long: `ccrscan extracts water quality results from Consumer Confidence Reports
(CCRs) that were converted from word-processor documents to HTML.

For every document it recovers the water system, the report year, the water
source and one record per contaminant (levels, limits, units and violation
flag), and writes them as <name>.json. Results are also stored in a local
SQLite database so that years of the same system can be compared.`,
		Version:       getVersion(),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Global flags that apply to all commands
	cmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose logging")
	cmd.PersistentFlags().Bool("log-json", false, "Write logs as JSON lines")
	cmd.PersistentFlags().String("db-dir", config.XDGDataDir(), "Directory of the report database")

	cmd.AddCommand(NewExtractCmd())
	cmd.AddCommand(NewShowCmd())
	cmd.AddCommand(NewCompareCmd())
	cmd.AddCommand(NewFailuresCmd())
	cmd.AddCommand(NewInitCmd())
	cmd.AddCommand(NewVersionCmd())

	return cmd
}

// Execute runs the root command.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// getBoolFlag retrieves a flag from the command or the root's persistent flags.
func getBoolFlag(cmd *cobra.Command, name string) bool {
	value, err := cmd.Flags().GetBool(name)
	if err != nil {
		value, err = cmd.Root().PersistentFlags().GetBool(name)
		if err != nil {
			return false
		}
	}
	return value
}

// getDBDir retrieves the database directory flag.
func getDBDir(cmd *cobra.Command) string {
	dir, err := cmd.Flags().GetString("db-dir")
	if err != nil || dir == "" {
		return config.XDGDataDir()
	}
	return dir
}

// setupLogger creates the logger selected by --verbose and --log-json.
// Logs go to the command's error stream.
func setupLogger(cmd *cobra.Command) *slog.Logger {
	verbose := getBoolFlag(cmd, "verbose")
	if getBoolFlag(cmd, "log-json") {
		return log.NewJSONLogger(cmd.ErrOrStderr(), verbose)
	}
	return log.NewLogger(cmd.ErrOrStderr(), verbose)
}

// openExistingDB opens the report database for reading commands.
// It fails with a hint when no extract run has created it yet.
func openExistingDB(cmd *cobra.Command) (*database.ReportDB, error) {
	opts := database.DefaultOptions()
	opts.CreateIfNotExists = false

	db, err := database.Open(getDBDir(cmd), opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	return db, nil
}
