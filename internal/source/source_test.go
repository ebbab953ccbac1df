package source

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeFile(t *testing.T, path string, data []byte) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		t.Fatalf("failed to create directory: %v", err)
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		t.Fatalf("failed to write file: %v", err)
	}
}

func TestDiscover(t *testing.T) {
	t.Parallel()

	t.Run("walks directories newest first", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()
		writeFile(t, filepath.Join(dir, "TX0000001_2021.html"), []byte("<p>a</p>"))
		writeFile(t, filepath.Join(dir, "TX0000002_2023.htm"), []byte("<p>b</p>"))
		writeFile(t, filepath.Join(dir, "nested", "TX0000003_2022.HTML"), []byte("<p>c</p>"))
		writeFile(t, filepath.Join(dir, "notes.html"), []byte("<p>d</p>"))
		writeFile(t, filepath.Join(dir, "TX0000001_2021.docx"), []byte("binary"))
		writeFile(t, filepath.Join(dir, "TX0000001_2021_files", "image001.html"), []byte("<p>asset</p>"))
		writeFile(t, filepath.Join(dir, ".cache", "TX0000009_2024.html"), []byte("<p>hidden</p>"))

		docs, err := Discover([]string{dir})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		want := []string{"TX0000002_2023.htm", "TX0000003_2022.HTML", "TX0000001_2021.html", "notes.html"}
		if len(docs) != len(want) {
			t.Fatalf("expected %d documents, got %d: %+v", len(want), len(docs), docs)
		}
		for i, name := range want {
			if docs[i].Name() != name {
				t.Errorf("position %d: expected %s, got %s", i, name, docs[i].Name())
			}
		}
		if docs[0].SystemID != "TX0000002" || docs[0].Year == nil || *docs[0].Year != 2023 {
			t.Errorf("unexpected identity %+v", docs[0])
		}
	})

	t.Run("explicit files must be markup", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()
		path := filepath.Join(dir, "TX0000001_2021.doc")
		writeFile(t, path, []byte("binary"))

		_, err := Discover([]string{path})
		if !errors.Is(err, ErrUnsupportedExtension) {
			t.Errorf("expected ErrUnsupportedExtension, got %v", err)
		}
	})

	t.Run("explicit files and directories are deduplicated", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()
		path := filepath.Join(dir, "TX0000001_2021.html")
		writeFile(t, path, []byte("<p>a</p>"))

		docs, err := Discover([]string{path, dir})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(docs) != 1 {
			t.Errorf("expected 1 document, got %d", len(docs))
		}
	})

	t.Run("missing input is an error", func(t *testing.T) {
		t.Parallel()

		if _, err := Discover([]string{filepath.Join(t.TempDir(), "missing")}); err == nil {
			t.Error("expected error for missing input")
		}
	})
}

func TestDocumentPaths(t *testing.T) {
	t.Parallel()

	doc := NewDocument(filepath.Join("reports", "TX0000001_2021.html"))

	if got := OutputPath(doc, ""); got != filepath.Join("reports", "TX0000001_2021.json") {
		t.Errorf("unexpected output path %s", got)
	}
	if got := OutputPath(doc, "out"); got != filepath.Join("out", "TX0000001_2021.json") {
		t.Errorf("unexpected output path %s", got)
	}
	if got := AssetDir(doc); got != filepath.Join("reports", "TX0000001_2021_files") {
		t.Errorf("unexpected asset dir %s", got)
	}
}

func TestFilterApply(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	paths := []string{
		filepath.Join(dir, "TX0000001_2023.html"),
		filepath.Join(dir, "TX0000002_2022.html"),
		filepath.Join(dir, "TX0000003_2021.html"),
		filepath.Join(dir, "TX0000004_2020.html"),
	}
	docs := make([]Document, 0, len(paths))
	for _, p := range paths {
		docs = append(docs, NewDocument(p))
	}
	writeFile(t, filepath.Join(dir, "TX0000001_2023.json"), []byte("{}"))

	t.Run("skips existing and failed documents", func(t *testing.T) {
		t.Parallel()

		sel := Filter{Failed: map[string]bool{"TX0000002_2022.html": true}}.Apply(docs)

		if sel.Total != 4 || sel.Existing != 1 || sel.Failed != 1 {
			t.Errorf("unexpected counts %+v", sel)
		}
		if len(sel.Documents) != 2 || sel.Documents[0].SystemID != "TX0000003" {
			t.Errorf("unexpected documents %+v", sel.Documents)
		}
		if sel.Remaining() != 2 {
			t.Errorf("expected 2 remaining, got %d", sel.Remaining())
		}
	})

	t.Run("force and retry select everything", func(t *testing.T) {
		t.Parallel()

		sel := Filter{Force: true, RetryFailed: true, Failed: map[string]bool{"TX0000002_2022.html": true}}.Apply(docs)
		if len(sel.Documents) != 4 {
			t.Errorf("expected 4 documents, got %d", len(sel.Documents))
		}
	})

	t.Run("limit and allow", func(t *testing.T) {
		t.Parallel()

		sel := Filter{
			Force: true,
			Limit: 1,
			Allow: func(systemID string, _ *int) bool { return systemID != "TX0000001" },
		}.Apply(docs)

		if sel.Excluded != 1 {
			t.Errorf("expected 1 excluded, got %d", sel.Excluded)
		}
		if len(sel.Documents) != 1 || sel.Documents[0].SystemID != "TX0000002" {
			t.Errorf("unexpected documents %+v", sel.Documents)
		}
	})
}

func TestLoader(t *testing.T) {
	t.Parallel()

	t.Run("loads utf-8 markup", func(t *testing.T) {
		t.Parallel()

		path := filepath.Join(t.TempDir(), "TX0000001_2021.html")
		writeFile(t, path, []byte("<p>Café</p>"))

		doc, enc, err := NewLoader(0).Load(path)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if doc.Name != "TX0000001_2021.html" {
			t.Errorf("unexpected name %s", doc.Name)
		}
		if doc.Markup != "<p>Café</p>" || enc != "utf-8" {
			t.Errorf("unexpected decode %q (%s)", doc.Markup, enc)
		}
	})

	t.Run("decodes declared windows-1252", func(t *testing.T) {
		t.Parallel()

		path := filepath.Join(t.TempDir(), "TX0000001_2021.html")
		data := []byte("<html><head><meta charset=\"windows-1252\"></head><body>\x93Nitrate\x94</body></html>")
		writeFile(t, path, data)

		doc, enc, err := NewLoader(0).Load(path)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !strings.Contains(doc.Markup, "“Nitrate”") {
			t.Errorf("expected curly quotes, got %q (%s)", doc.Markup, enc)
		}
	})

	t.Run("strips a utf-8 byte order mark", func(t *testing.T) {
		t.Parallel()

		markup, _, err := Decode([]byte("\xef\xbb\xbf<p>x</p>"))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if markup != "<p>x</p>" {
			t.Errorf("unexpected markup %q", markup)
		}
	})

	t.Run("refuses oversized files", func(t *testing.T) {
		t.Parallel()

		path := filepath.Join(t.TempDir(), "TX0000001_2021.html")
		writeFile(t, path, []byte(strings.Repeat("a", 64)))

		_, _, err := NewLoader(16).Load(path)
		if !errors.Is(err, ErrFileTooLarge) {
			t.Errorf("expected ErrFileTooLarge, got %v", err)
		}
	})
}
