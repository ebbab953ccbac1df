package config

import "errors"

// Configuration validation errors.
// These errors are returned by Config.Validate() and Config.ValidateFormats()
// so that callers can use errors.Is() while users still get a readable message.
var (
	// ErrNoInput is returned when no input file or directory is given.
	ErrNoInput = errors.New("no input specified: provide at least one HTML file or directory")

	// ErrInvalidBatchSize is returned when the batch size is not positive.
	ErrInvalidBatchSize = errors.New("invalid batch size: must be positive")

	// ErrInvalidMaxFileSize is returned when the maximum file size is not positive.
	ErrInvalidMaxFileSize = errors.New("invalid max file size: must be positive")

	// ErrInvalidLimit is returned when the document limit is negative.
	// Use 0 for no limit.
	ErrInvalidLimit = errors.New("invalid limit: must be non-negative")

	// ErrConflictingReportFormats is returned when both --json and --markdown
	// are specified. Only one output format can be used at a time.
	ErrConflictingReportFormats = errors.New("conflicting report formats: --json and --markdown cannot be used together")

	// ErrConfigNotFound is returned when the configuration file does not exist.
	ErrConfigNotFound = errors.New("configuration file not found")
)
