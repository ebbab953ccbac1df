package source

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/nao1215/ccrscan/internal/extract"
)

// assetDirSuffix marks the folder a converter writes images and styles into.
const assetDirSuffix = "_files"

// Document is a report file found on disk.
type Document struct {
	// Path is the file location.
	Path string

	// SystemID and Year come from the file name; both are empty/nil when the
	// name does not follow TX<digits>_<year>.
	SystemID string
	Year     *int
}

// Name returns the file name used as the document identifier.
func (d Document) Name() string {
	return filepath.Base(d.Path)
}

// Stem returns the file name without its extension.
func (d Document) Stem() string {
	name := d.Name()
	return strings.TrimSuffix(name, filepath.Ext(name))
}

// NewDocument describes the file at path.
func NewDocument(path string) Document {
	id, year := extract.ParseFilename(path)
	return Document{Path: path, SystemID: id, Year: year}
}

// IsMarkupFile reports whether the name has a markup extension.
func IsMarkupFile(name string) bool {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".html", ".htm":
		return true
	}
	return false
}

// Discover collects markup documents below the given inputs.
//
// Directories are walked recursively. Hidden directories and converter asset
// folders are pruned. A file named directly must be markup, otherwise
// ErrUnsupportedExtension is returned. The result is ordered newest year
// first, documents without a year last, then by path. Duplicates are removed.
func Discover(inputs []string) ([]Document, error) {
	seen := make(map[string]bool)
	docs := make([]Document, 0)

	add := func(path string) {
		clean := filepath.Clean(path)
		if seen[clean] {
			return
		}
		seen[clean] = true
		docs = append(docs, NewDocument(clean))
	}

	for _, input := range inputs {
		info, err := os.Stat(input)
		if err != nil {
			return nil, fmt.Errorf("failed to stat input %s: %w", input, err)
		}

		if !info.IsDir() {
			if !IsMarkupFile(input) {
				return nil, fmt.Errorf("%s: %w", input, ErrUnsupportedExtension)
			}
			add(input)
			continue
		}

		err = filepath.WalkDir(input, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if d.IsDir() {
				if path != input && skipDir(d.Name()) {
					return filepath.SkipDir
				}
				return nil
			}
			if d.Type().IsRegular() && IsMarkupFile(d.Name()) {
				add(path)
			}
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("failed to walk %s: %w", input, err)
		}
	}

	SortDocuments(docs)
	return docs, nil
}

// SortDocuments orders documents newest year first, then by path.
func SortDocuments(docs []Document) {
	sort.SliceStable(docs, func(i, j int) bool {
		yi, yj := docs[i].Year, docs[j].Year
		switch {
		case yi != nil && yj != nil && *yi != *yj:
			return *yi > *yj
		case yi != nil && yj == nil:
			return true
		case yi == nil && yj != nil:
			return false
		}
		return docs[i].Path < docs[j].Path
	})
}

func skipDir(name string) bool {
	return strings.HasPrefix(name, ".") || strings.HasSuffix(name, assetDirSuffix)
}

// OutputPath returns where the JSON report for a document is written:
// "<stem>.json" in outputDir, or next to the document when outputDir is empty.
func OutputPath(doc Document, outputDir string) string {
	dir := outputDir
	if dir == "" {
		dir = filepath.Dir(doc.Path)
	}
	return filepath.Join(dir, doc.Stem()+".json")
}

// AssetDir returns the converter asset folder that belongs to a document.
func AssetDir(doc Document) string {
	return filepath.Join(filepath.Dir(doc.Path), doc.Stem()+assetDirSuffix)
}
