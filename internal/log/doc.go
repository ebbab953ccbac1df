// Package log provides the application's slog setup.
//
// DocumentHandler wraps any slog.Handler and:
//   - adds a "document" attribute taken from the context (see WithDocument)
//   - truncates long string values so that markup fragments never flood logs
//
// # Usage
//
//	logger := log.NewLogger(os.Stderr, verbose)
//	slog.SetDefault(logger)
//
//	ctx = log.WithDocument(ctx, "TX1234567_2022.html")
//	logger.InfoContext(ctx, "report extracted", "observations", 12)
package log
