package log

import (
	"context"
	"io"
	"log/slog"
	"unicode/utf8"
)

// DocumentKey is the attribute key that names the document being processed.
const DocumentKey = "document"

// DefaultMaxValueLength is the number of runes a string value may have
// before it is truncated.
const DefaultMaxValueLength = 200

// VerboseMaxValueLength is the truncation limit used by verbose loggers.
const VerboseMaxValueLength = 1000

// truncatedSuffix marks a truncated value.
const truncatedSuffix = "...(truncated)"

type documentContextKey struct{}

// WithDocument returns a context that carries the name of the document being
// processed. Records logged with it through a DocumentHandler get a
// "document" attribute.
func WithDocument(ctx context.Context, name string) context.Context {
	return context.WithValue(ctx, documentContextKey{}, name)
}

// DocumentFrom returns the document name stored in ctx, if any.
func DocumentFrom(ctx context.Context) (string, bool) {
	name, ok := ctx.Value(documentContextKey{}).(string)
	return name, ok && name != ""
}

// DocumentHandler wraps an slog.Handler to attach the current document and
// to shorten long string values.
type DocumentHandler struct {
	// handler is the underlying slog handler that receives the records.
	handler slog.Handler

	// maxLen is the maximum rune length of string values.
	maxLen int

	// hasDocument is set once a "document" attribute was added with WithAttrs.
	hasDocument bool
}

// HandlerOption configures a DocumentHandler.
type HandlerOption func(*DocumentHandler)

// WithMaxValueLength sets the truncation limit. Non-positive values keep the default.
func WithMaxValueLength(n int) HandlerOption {
	return func(h *DocumentHandler) {
		if n > 0 {
			h.maxLen = n
		}
	}
}

// NewDocumentHandler creates a DocumentHandler wrapping handler.
// If handler is nil, slog.Default().Handler() is used.
func NewDocumentHandler(handler slog.Handler, opts ...HandlerOption) *DocumentHandler {
	if handler == nil {
		handler = slog.Default().Handler()
	}
	h := &DocumentHandler{
		handler: handler,
		maxLen:  DefaultMaxValueLength,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Enabled reports whether the handler handles records at the given level.
// It delegates to the underlying handler.
func (h *DocumentHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.handler.Enabled(ctx, level)
}

// Handle truncates the record's attributes, adds the context document and
// passes the record to the underlying handler.
func (h *DocumentHandler) Handle(ctx context.Context, r slog.Record) error {
	out := slog.NewRecord(r.Time, r.Level, r.Message, r.PC)

	hasDocument := h.hasDocument
	r.Attrs(func(a slog.Attr) bool {
		if a.Key == DocumentKey {
			hasDocument = true
		}
		out.AddAttrs(h.truncateAttr(a))
		return true
	})

	if !hasDocument {
		if name, ok := DocumentFrom(ctx); ok {
			out.AddAttrs(slog.String(DocumentKey, name))
		}
	}

	return h.handler.Handle(ctx, out)
}

// WithAttrs returns a new handler with the given attributes added.
func (h *DocumentHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	truncated := make([]slog.Attr, len(attrs))
	hasDocument := h.hasDocument
	for i, a := range attrs {
		if a.Key == DocumentKey {
			hasDocument = true
		}
		truncated[i] = h.truncateAttr(a)
	}
	return &DocumentHandler{
		handler:     h.handler.WithAttrs(truncated),
		maxLen:      h.maxLen,
		hasDocument: hasDocument,
	}
}

// WithGroup returns a new handler with the given group name.
func (h *DocumentHandler) WithGroup(name string) slog.Handler {
	return &DocumentHandler{
		handler:     h.handler.WithGroup(name),
		maxLen:      h.maxLen,
		hasDocument: h.hasDocument,
	}
}

// truncateAttr shortens string values, recursively handling groups.
func (h *DocumentHandler) truncateAttr(a slog.Attr) slog.Attr {
	switch a.Value.Kind() {
	case slog.KindGroup:
		attrs := a.Value.Group()
		truncated := make([]slog.Attr, len(attrs))
		for i, groupAttr := range attrs {
			truncated[i] = h.truncateAttr(groupAttr)
		}
		return slog.Attr{Key: a.Key, Value: slog.GroupValue(truncated...)}
	case slog.KindString:
		return slog.String(a.Key, Truncate(a.Value.String(), h.maxLen))
	default:
		return a
	}
}

// Truncate shortens s to at most maxLen runes followed by a marker.
func Truncate(s string, maxLen int) string {
	if maxLen <= 0 || utf8.RuneCountInString(s) <= maxLen {
		return s
	}
	runes := []rune(s)
	return string(runes[:maxLen]) + truncatedSuffix
}

// NewLogger creates a text logger that writes to w.
// verbose selects the Debug level; otherwise only warnings and errors are logged.
func NewLogger(w io.Writer, verbose bool) *slog.Logger {
	return slog.New(NewDocumentHandler(slog.NewTextHandler(w, handlerOptions(verbose)), maxValueLength(verbose)))
}

// NewJSONLogger creates a logger that writes JSON lines to w.
// Useful for structured log aggregation.
func NewJSONLogger(w io.Writer, verbose bool) *slog.Logger {
	return slog.New(NewDocumentHandler(slog.NewJSONHandler(w, handlerOptions(verbose)), maxValueLength(verbose)))
}

func maxValueLength(verbose bool) HandlerOption {
	if verbose {
		return WithMaxValueLength(VerboseMaxValueLength)
	}
	return WithMaxValueLength(DefaultMaxValueLength)
}

func handlerOptions(verbose bool) *slog.HandlerOptions {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}
	return &slog.HandlerOptions{Level: level}
}
