package extract

import (
	"log/slog"

	"github.com/nao1215/ccrscan/internal/model"
)

// Extractor turns source documents into extracted reports.
// An Extractor holds only its logger and may be used from many goroutines.
type Extractor struct {
	logger *slog.Logger
}

// Option configures an Extractor.
type Option func(*Extractor)

// WithLogger sets the logger used for Debug diagnostics.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Extractor) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// New creates an Extractor.
func New(opts ...Option) *Extractor {
	e := &Extractor{
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Extract recovers the identity and contaminant observations of one document.
//
// A document without tables, or without any recognizable field, is not an
// error: it yields a report whose fields are absent and whose observation
// list is empty. The only failure is input that is not markup at all, which
// is reported as ErrNotMarkup.
func (e *Extractor) Extract(doc model.SourceDocument) (*model.ExtractedReport, error) {
	parsed, err := parseMarkup(doc.Markup)
	if err != nil {
		return nil, err
	}

	identity := ParseIdentity(doc.Name, parsed.text)

	w := newWalker(e.logger.With(slog.String("document", doc.Name)))
	w.walk(parsed.tables)

	e.logger.Debug("extracted document",
		slog.String("document", doc.Name),
		slog.String("report", identity.Label()),
		slog.Int("tables", w.stats.Tables),
		slog.Int("observations", len(w.observations)),
		slog.Int("duplicates", len(w.stats.DuplicatesDropped)),
	)

	return model.NewExtractedReport(identity, w.observations, w.stats), nil
}

// Extract runs a default Extractor on doc.
func Extract(doc model.SourceDocument) (*model.ExtractedReport, error) {
	return New().Extract(doc)
}
