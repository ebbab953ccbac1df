package model

// SourceDocument is the immutable input of one extraction.
// Name is the document identifier (normally the file name, e.g.
// "TX1234567_2022.html") and Markup is the full rendered markup text.
type SourceDocument struct {
	Name   string
	Markup string
}

// NewSourceDocument creates a SourceDocument.
func NewSourceDocument(name, markup string) SourceDocument {
	return SourceDocument{Name: name, Markup: markup}
}
