package resolver

import (
	"path/filepath"
	"reflect"
	"testing"

	"cssaudit/internal/config"
)

func TestResolveImportsDepsBeforeImporter(t *testing.T) {
	root := t.TempDir()
	c := writeFile(t, filepath.Join(root, "c.css"), ".c {}")
	b := writeFile(t, filepath.Join(root, "b.css"), `@import "c.css";`+"\n.b {}")
	a := writeFile(t, filepath.Join(root, "a.css"), `@import url("b.css");`+"\n.a {}")

	chain := NewImports(config.Default(), nil).Resolve(a)
	want := []string{c, b, a}
	if !reflect.DeepEqual(chain, want) {
		t.Errorf("chain = %v, want %v", chain, want)
	}
}

func TestResolveImportsBreaksCycles(t *testing.T) {
	root := t.TempDir()
	a := filepath.Join(root, "a.css")
	b := filepath.Join(root, "b.css")
	writeFile(t, a, `@import "b.css";`)
	writeFile(t, b, `@import "a.css";`)

	chain := NewImports(config.Default(), nil).Resolve(a)
	if !reflect.DeepEqual(chain, []string{b, a}) {
		t.Errorf("chain = %v, want [b.css a.css] with each sheet exactly once", chain)
	}
}

func TestResolveImportsSkipsURLsAndMissing(t *testing.T) {
	root := t.TempDir()
	a := writeFile(t, filepath.Join(root, "a.css"),
		`@import "https://fonts.example.com/face.css";`+"\n"+
			`@import "missing.css";`+"\n.a {}")

	chain := NewImports(config.Default(), nil).Resolve(a)
	if !reflect.DeepEqual(chain, []string{a}) {
		t.Errorf("chain = %v, want only the entry sheet", chain)
	}
}

func TestImportTargets(t *testing.T) {
	content := `@import url("one.css");
@import 'two.css' screen;
.body { color: red; }`

	got := ImportTargets(content)
	want := []string{"one.css", "two.css"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("ImportTargets = %v, want %v", got, want)
	}
}
