package config

import (
	"path/filepath"

	"github.com/adrg/xdg"
)

// Default configuration values.
const (
	// DefaultBatchSize is the number of documents extracted concurrently.
	DefaultBatchSize = 4

	// DefaultMaxFileSize is the largest document accepted. Converted reports
	// are a few hundred kilobytes; anything near this limit is not a report.
	DefaultMaxFileSize = 50 * 1024 * 1024 // 50MB

	// AppName is the application name used for XDG directory paths.
	AppName = "ccrscan"
)

// Config holds all configuration options for ccrscan.
// It is populated from CLI flags, optionally completed from the config file,
// and passed to the commands rather than kept in global state.
type Config struct {
	// Inputs are the HTML files and directories to extract.
	Inputs []string

	// OutputDir is where JSON reports are written.
	// When empty, each report is written next to its source document.
	OutputDir string

	// BatchSize is the number of documents processed concurrently.
	BatchSize int

	// MaxFileSize is the largest document accepted, in bytes.
	MaxFileSize int64

	// Limit caps the number of documents processed in one run. 0 means no limit.
	Limit int

	// Force re-extracts documents whose JSON report already exists.
	Force bool

	// RetryFailed includes documents recorded as failed by an earlier run.
	RetryFailed bool

	// StatsOnly prints discovery totals and exits without extracting.
	StatsOnly bool

	// DeleteHTML removes each source document and its asset folder once its
	// report has been written.
	DeleteHTML bool

	// Verbose enables detailed log output using slog.LevelDebug.
	// When false, only warnings and errors are logged.
	Verbose bool

	// LogJSON switches log output to JSON lines.
	LogJSON bool

	// ConfigFilePath is the path to the configuration file.
	// If empty, the tool searches for .ccrscan in the current directory,
	// the user's home directory and the XDG config directory.
	ConfigFilePath string

	// Systems holds the per-system filters loaded from the config file.
	Systems *File

	// DBDir is the directory of the SQLite database.
	// Defaults to the XDG data directory (~/.local/share/ccrscan on Linux).
	DBDir string

	// SaveToDB stores extracted reports and failures in the database.
	SaveToDB bool

	// JSONReport selects JSON output for show and compare.
	// Mutually exclusive with MarkdownReport.
	JSONReport bool

	// MarkdownReport selects GitHub Flavored Markdown output for show and compare.
	// Mutually exclusive with JSONReport.
	MarkdownReport bool

	// ReportFile is the output file path for show and compare.
	// When empty, output goes to stdout.
	ReportFile string
}

// NewConfig creates a new Config with default values.
func NewConfig() *Config {
	return &Config{
		BatchSize:   DefaultBatchSize,
		MaxFileSize: DefaultMaxFileSize,
		DBDir:       XDGDataDir(),
		SaveToDB:    true,
	}
}

// XDGDataDir returns the XDG data directory for ccrscan.
// On Linux: ~/.local/share/ccrscan
// On macOS: ~/Library/Application Support/ccrscan
// On Windows: %LOCALAPPDATA%\ccrscan
func XDGDataDir() string {
	return filepath.Join(xdg.DataHome, AppName)
}

// XDGConfigDir returns the XDG config directory for ccrscan.
// On Linux: ~/.config/ccrscan
func XDGConfigDir() string {
	return filepath.Join(xdg.ConfigHome, AppName)
}

// ApplyFileDefaults copies the defaults section of the config file into c
// for every option whose flag was not set explicitly. changed reports
// whether a flag was given on the command line.
func (c *Config) ApplyFileDefaults(f *File, changed func(flag string) bool) {
	if f == nil {
		return
	}
	c.Systems = f

	d := f.Defaults
	if d.Batch > 0 && !changed("batch") {
		c.BatchSize = d.Batch
	}
	if d.OutputDir != "" && !changed("output-dir") {
		c.OutputDir = d.OutputDir
	}
	if d.MaxFileSize > 0 && !changed("max-file-size") {
		c.MaxFileSize = d.MaxFileSize
	}
}

// Validate checks the configuration of an extract run.
// It returns the first problem found.
func (c *Config) Validate() error {
	if len(c.Inputs) == 0 {
		return ErrNoInput
	}

	if c.BatchSize <= 0 {
		return ErrInvalidBatchSize
	}

	if c.MaxFileSize <= 0 {
		return ErrInvalidMaxFileSize
	}

	if c.Limit < 0 {
		return ErrInvalidLimit
	}

	return c.ValidateFormats()
}

// ValidateFormats checks the report format flags.
func (c *Config) ValidateFormats() error {
	if c.JSONReport && c.MarkdownReport {
		return ErrConflictingReportFormats
	}
	return nil
}
