package walker

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"cssaudit/internal/config"
)

func writeFile(t *testing.T, path string, content []byte) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, content, 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestCSSFilesSortedAndFiltered(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "b.css"), []byte(".b {}"))
	writeFile(t, filepath.Join(root, "sub", "a.scss"), []byte(".a {}"))
	writeFile(t, filepath.Join(root, "index.html"), []byte("<html></html>"))
	writeFile(t, filepath.Join(root, "node_modules", "dep.css"), []byte(".dep {}"))

	files, err := New(config.Default(), nil).CSSFiles(root)
	if err != nil {
		t.Fatalf("unexpected walk error: %v", err)
	}

	if len(files) != 2 {
		t.Fatalf("got %d files, want 2: %v", len(files), files)
	}
	if filepath.Base(files[0]) != "b.css" || filepath.Base(files[1]) != "a.scss" {
		t.Errorf("files = %v, want sorted [b.css, sub/a.scss]", files)
	}
	for _, f := range files {
		if strings.Contains(f, "node_modules") {
			t.Errorf("excluded directory leaked into results: %s", f)
		}
	}
}

func TestWalkSkipsBinaryFiles(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "ok.css"), []byte(".ok {}"))
	writeFile(t, filepath.Join(root, "junk.css"), []byte{'.', 'x', 0, '{', '}'})

	files, err := New(config.Default(), nil).CSSFiles(root)
	if err != nil {
		t.Fatalf("unexpected walk error: %v", err)
	}
	if len(files) != 1 || filepath.Base(files[0]) != "ok.css" {
		t.Errorf("files = %v, want only ok.css", files)
	}
}

func TestWalkSingleFileRoot(t *testing.T) {
	root := t.TempDir()
	path := filepath.Join(root, "only.css")
	writeFile(t, path, []byte(".only {}"))

	files, err := New(config.Default(), nil).CSSFiles(path)
	if err != nil {
		t.Fatalf("unexpected walk error: %v", err)
	}
	if len(files) != 1 || filepath.Base(files[0]) != "only.css" {
		t.Errorf("files = %v, want only.css", files)
	}
}

func TestReadTextFallsBackFromInvalidUTF8(t *testing.T) {
	root := t.TempDir()
	path := filepath.Join(root, "latin1.css")
	// "café" in latin-1: 0xE9 is not valid UTF-8
	writeFile(t, path, []byte{'c', 'a', 'f', 0xE9})

	got, err := ReadText(path)
	if err != nil {
		t.Fatalf("unexpected read error: %v", err)
	}
	if got != "café" {
		t.Errorf("ReadText = %q, want %q", got, "café")
	}
}

func TestNormalizePathDeduplicatesSpellings(t *testing.T) {
	root := t.TempDir()
	a := NormalizePath(filepath.Join(root, "Sub", "..", "Sub", "Style.CSS"))
	b := NormalizePath(filepath.Join(root, "sub", "style.css"))
	if a != b {
		t.Errorf("NormalizePath mismatch: %q vs %q", a, b)
	}
}
