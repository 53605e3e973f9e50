package resolver

import (
	"os"
	"path/filepath"
	"testing"
)

func writeFile(t *testing.T, path, content string) string {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func newAssets(t *testing.T, root string, cssFiles []string) *Assets {
	t.Helper()
	return NewAssets(root, cssFiles, 6, nil)
}

func TestResolveRelative(t *testing.T) {
	root := t.TempDir()
	style := writeFile(t, filepath.Join(root, "css", "style.css"), ".a {}")
	page := writeFile(t, filepath.Join(root, "index.html"), "")

	a := newAssets(t, root, []string{style})
	got, ok := a.Resolve("css/style.css", page)
	if !ok || got != style {
		t.Errorf("Resolve = %q, %v; want %q, true", got, ok, style)
	}
}

func TestResolveStripsQueryAndQuotes(t *testing.T) {
	root := t.TempDir()
	style := writeFile(t, filepath.Join(root, "style.css"), ".a {}")
	page := writeFile(t, filepath.Join(root, "index.html"), "")

	a := newAssets(t, root, []string{style})
	got, ok := a.Resolve(`"style.css?v=12#top"`, page)
	if !ok || got != style {
		t.Errorf("Resolve = %q, %v; want %q, true", got, ok, style)
	}
}

func TestResolveURLBySuffix(t *testing.T) {
	root := t.TempDir()
	style := writeFile(t, filepath.Join(root, "wp-content", "themes", "my", "style.css"), ".a {}")

	a := newAssets(t, root, []string{style})
	got, ok := a.Resolve("https://example.com/wp-content/themes/my/style.css", "")
	if !ok || got != style {
		t.Errorf("Resolve = %q, %v; want %q, true", got, ok, style)
	}

	if _, ok := a.Resolve("https://cdn.example.com/other/missing.css", ""); ok {
		t.Error("unresolvable CDN reference should be skipped, not matched")
	}
}

func TestSuffixSearchTieBreakIsDeterministic(t *testing.T) {
	root := t.TempDir()
	short := writeFile(t, filepath.Join(root, "style.css"), ".a {}")
	long := writeFile(t, filepath.Join(root, "deep", "style.css"), ".b {}")

	a := newAssets(t, root, []string{long, short})
	got, ok := a.Resolve("/style.css", "")
	if !ok || got != short {
		t.Errorf("Resolve = %q, %v; want shortest match %q", got, ok, short)
	}
}

func TestResolveTailWalksUpward(t *testing.T) {
	root := t.TempDir()
	style := writeFile(t, filepath.Join(root, "assets", "main.css"), ".a {}")
	from := writeFile(t, filepath.Join(root, "plugins", "widget", "widget.php"), "")

	a := newAssets(t, root, []string{style})
	got, ok := a.ResolveTail("assets/main.css", from)
	if !ok || got != style {
		t.Errorf("ResolveTail = %q, %v; want %q, true", got, ok, style)
	}
}

func TestResolveConstUsesScannedConstant(t *testing.T) {
	root := t.TempDir()
	style := writeFile(t, filepath.Join(root, "theme", "css", "admin.css"), ".a {}")
	from := writeFile(t, filepath.Join(root, "functions.php"), "")

	contents := map[string]string{
		from: `<?php define('THEME_CSS', '` + filepath.Join(root, "theme", "css") + `'); ?>`,
	}
	a := newAssets(t, root, []string{style})
	a.SetConstants(ScanConstants(contents, []string{from}))

	got, ok := a.ResolveConst("THEME_CSS", "admin.css", from)
	if !ok || got != style {
		t.Errorf("ResolveConst = %q, %v; want %q, true", got, ok, style)
	}
}

func TestScanConstantsKeepsPathLikeValuesOnly(t *testing.T) {
	contents := map[string]string{
		"a.php": `define('BASE_PATH', '/var/www/site'); define('VERSION', '12');`,
		"b.php": `define('BASE_PATH', '/other/site');`,
	}

	consts := ScanConstants(contents, []string{"a.php", "b.php"})
	if consts["BASE_PATH"] != "/var/www/site" {
		t.Errorf("BASE_PATH = %q, want first definition to win", consts["BASE_PATH"])
	}
	if _, ok := consts["VERSION"]; ok {
		t.Error("non-path constant VERSION should be ignored")
	}
}
