package source

import (
	"os"
)

// Filter selects which discovered documents are processed.
type Filter struct {
	// OutputDir is where JSON reports are written; empty means next to the source.
	OutputDir string

	// Force processes documents whose JSON report already exists.
	Force bool

	// RetryFailed processes documents recorded as failed.
	RetryFailed bool

	// Failed holds names of documents that failed before.
	Failed map[string]bool

	// Allow reports whether a system and year may be processed. Nil allows all.
	Allow func(systemID string, year *int) bool

	// Limit caps the number of selected documents. Zero means no limit.
	Limit int
}

// Selection is the outcome of applying a Filter.
type Selection struct {
	// Documents are the documents to process, in discovery order.
	Documents []Document

	// Total is the number of discovered documents.
	Total int

	// Existing counts documents skipped because their report exists.
	Existing int

	// Failed counts documents skipped because they failed before.
	Failed int

	// Excluded counts documents rejected by Allow.
	Excluded int
}

// Remaining returns the number of documents still to process before Limit applies.
func (s Selection) Remaining() int {
	return s.Total - s.Existing - s.Failed - s.Excluded
}

// Apply filters docs.
func (f Filter) Apply(docs []Document) Selection {
	sel := Selection{
		Documents: make([]Document, 0, len(docs)),
		Total:     len(docs),
	}

	for _, doc := range docs {
		if f.Allow != nil && !f.Allow(doc.SystemID, doc.Year) {
			sel.Excluded++
			continue
		}
		if !f.Force && exists(OutputPath(doc, f.OutputDir)) {
			sel.Existing++
			continue
		}
		if !f.RetryFailed && f.Failed[doc.Name()] {
			sel.Failed++
			continue
		}
		if f.Limit > 0 && len(sel.Documents) >= f.Limit {
			continue
		}
		sel.Documents = append(sel.Documents, doc)
	}

	return sel
}

func exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
