package source

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"strings"
	"unicode/utf8"

	"github.com/nao1215/ccrscan/internal/model"
	"github.com/saintfish/chardet"
	"golang.org/x/net/html/charset"
	"golang.org/x/text/encoding"
)

// DefaultMaxFileSize is the default size limit for a single document.
const DefaultMaxFileSize int64 = 50 * 1024 * 1024

// minDetectConfidence is the chardet confidence below which the
// windows-1252 default is kept.
const minDetectConfidence = 30

// prescanLength is how far into a document a charset declaration is looked for.
const prescanLength = 1024

// Loader reads documents from disk.
type Loader struct {
	maxSize int64
}

// NewLoader creates a Loader. A non-positive maxSize uses DefaultMaxFileSize.
func NewLoader(maxSize int64) *Loader {
	if maxSize <= 0 {
		maxSize = DefaultMaxFileSize
	}
	return &Loader{maxSize: maxSize}
}

// Load reads the document at path and decodes it to UTF-8 markup.
// It returns the source document and the name of the detected encoding.
func (l *Loader) Load(path string) (model.SourceDocument, string, error) {
	f, err := os.Open(path) //nolint:gosec // path comes from discovery of user-supplied inputs
	if err != nil {
		return model.SourceDocument{}, "", fmt.Errorf("failed to open document: %w", err)
	}
	defer f.Close() //nolint:errcheck // read-only file

	data, err := io.ReadAll(io.LimitReader(f, l.maxSize+1))
	if err != nil {
		return model.SourceDocument{}, "", fmt.Errorf("failed to read document: %w", err)
	}
	if int64(len(data)) > l.maxSize {
		return model.SourceDocument{}, "", fmt.Errorf("%s: %w (limit %d bytes)", path, ErrFileTooLarge, l.maxSize)
	}

	markup, enc, err := Decode(data)
	if err != nil {
		return model.SourceDocument{}, "", fmt.Errorf("failed to decode %s: %w", path, err)
	}

	return model.NewSourceDocument(NewDocument(path).Name(), markup), enc, nil
}

// Decode converts raw document bytes to a UTF-8 string.
//
// A byte order mark wins. Valid UTF-8 is taken as is. Otherwise the
// <meta charset> declaration is used, and when there is none the encoding is
// detected statistically.
func Decode(data []byte) (string, string, error) {
	enc, name, certain := charset.DetermineEncoding(data, "text/html")

	if !certain && utf8.Valid(data) {
		return strings.TrimPrefix(string(data), "\ufeff"), "utf-8", nil
	}

	// DetermineEncoding falls back to windows-1252 when nothing is declared.
	if !certain && !declaresCharset(data) {
		if detected, detectedName, ok := detect(data); ok {
			enc, name = detected, detectedName
		}
	}

	decoded, err := enc.NewDecoder().Bytes(data)
	if err != nil {
		return "", name, err
	}
	return strings.TrimPrefix(string(bytes.ToValidUTF8(decoded, []byte("\uFFFD"))), "\ufeff"), name, nil
}

// declaresCharset reports whether the document head carries a charset declaration.
func declaresCharset(data []byte) bool {
	head := data
	if len(head) > prescanLength {
		head = head[:prescanLength]
	}
	return bytes.Contains(bytes.ToLower(head), []byte("charset"))
}

// detect guesses the character set with chardet.
func detect(data []byte) (encoding.Encoding, string, bool) {
	result, err := chardet.NewTextDetector().DetectBest(data)
	if err != nil || result == nil || result.Confidence < minDetectConfidence {
		return nil, "", false
	}
	enc, name := charset.Lookup(strings.ToLower(result.Charset))
	if enc == nil {
		return nil, "", false
	}
	return enc, name, true
}
