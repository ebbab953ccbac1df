package source

import "errors"

var (
	// ErrFileTooLarge is returned when a document exceeds the configured size limit.
	ErrFileTooLarge = errors.New("file exceeds maximum size")

	// ErrUnsupportedExtension is returned when an explicitly named file is not markup.
	ErrUnsupportedExtension = errors.New("unsupported file extension (expected .html or .htm)")
)
