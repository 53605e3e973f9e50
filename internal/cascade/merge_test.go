package cascade

import (
	"reflect"
	"testing"

	"cssaudit/internal/css"
)

func occ(file string, line int, decls ...css.Declaration) Occurrence {
	return Occurrence{File: file, Line: line, Declarations: decls}
}

func TestMergeLaterImportantOverridesNormal(t *testing.T) {
	e := NewEngine(nil)
	merged, warnings := e.Merge(".btn", []Occurrence{
		occ("/a.css", 1, css.Declaration{Property: "color", Value: "red"}),
		occ("/b.css", 5, css.Declaration{Property: "color", Value: "blue", Important: true}),
	}, "")

	if len(merged) != 1 || merged[0].Value != "blue" || !merged[0].Important {
		t.Fatalf("merged = %+v, want color: blue !important", merged)
	}
	if merged[0].OriginFile != "/b.css" || merged[0].OriginLine != 5 {
		t.Errorf("origin = %s:%d, want /b.css:5", merged[0].OriginFile, merged[0].OriginLine)
	}
	if len(warnings) != 1 {
		t.Fatalf("got %d warnings, want 1", len(warnings))
	}
	w := warnings[0]
	if w.Type != WarnLaterOverridesEarlier || w.Property != "color" {
		t.Errorf("warning = %+v, want later-overrides-earlier on color", w)
	}
	if w.Reason != "Later !important overrides earlier normal" {
		t.Errorf("reason = %q", w.Reason)
	}
}

func TestMergeEarlierImportantBlocksNormal(t *testing.T) {
	e := NewEngine(nil)
	merged, warnings := e.Merge(".btn", []Occurrence{
		occ("/a.css", 1, css.Declaration{Property: "color", Value: "red", Important: true}),
		occ("/b.css", 5, css.Declaration{Property: "color", Value: "blue"}),
	}, "")

	if merged[0].Value != "red" || !merged[0].Important {
		t.Fatalf("merged = %+v, want earlier !important red retained", merged)
	}
	if len(warnings) != 1 || warnings[0].Type != WarnImportantBlocksNormal {
		t.Fatalf("warnings = %+v, want one important-blocks-normal", warnings)
	}
}

func TestMergeImportantVsImportant(t *testing.T) {
	e := NewEngine(nil)
	merged, warnings := e.Merge(".btn", []Occurrence{
		occ("/a.css", 1, css.Declaration{Property: "color", Value: "red", Important: true}),
		occ("/b.css", 5, css.Declaration{Property: "color", Value: "blue", Important: true}),
	}, "")

	if merged[0].Value != "blue" {
		t.Errorf("merged = %+v, want last !important to win", merged)
	}
	if len(warnings) != 1 || warnings[0].Type != WarnImportantVsImportant {
		t.Errorf("warnings = %+v, want one important-vs-important", warnings)
	}
}

func TestMergeNormalLastWins(t *testing.T) {
	e := NewEngine(nil)
	merged, warnings := e.Merge(".btn", []Occurrence{
		occ("/a.css", 1, css.Declaration{Property: "color", Value: "red"}),
		occ("/b.css", 5, css.Declaration{Property: "color", Value: "blue"}),
	}, "")

	if merged[0].Value != "blue" || merged[0].Important {
		t.Errorf("merged = %+v, want color: blue (normal)", merged)
	}
	if len(warnings) != 1 || warnings[0].Type != WarnLaterOverridesEarlier {
		t.Errorf("warnings = %+v, want one later-overrides-earlier", warnings)
	}
}

func TestMergeKeepsFirstWinInsertionOrder(t *testing.T) {
	e := NewEngine(nil)
	merged, _ := e.Merge(".btn", []Occurrence{
		occ("/a.css", 1,
			css.Declaration{Property: "color", Value: "red"},
			css.Declaration{Property: "margin", Value: "0"}),
		occ("/b.css", 5,
			css.Declaration{Property: "padding", Value: "1px"},
			css.Declaration{Property: "color", Value: "blue"}),
	}, "")

	var names []string
	for _, p := range merged {
		names = append(names, p.Name)
	}
	if !reflect.DeepEqual(names, []string{"color", "margin", "padding"}) {
		t.Errorf("property order = %v, want [color margin padding]", names)
	}

	got := FormatMerged(".btn", merged)
	want := ".btn { color: blue; margin: 0; padding: 1px; }"
	if got != want {
		t.Errorf("FormatMerged = %q, want %q", got, want)
	}
}

func TestOrderForPageExcludesFilesOutsideChain(t *testing.T) {
	occs := []Occurrence{
		occ("/b.css", 3, css.Declaration{Property: "color", Value: "blue"}),
		occ("/a.css", 1, css.Declaration{Property: "color", Value: "red"}),
		occ("/x.css", 9, css.Declaration{Property: "color", Value: "green"}),
	}

	ordered := OrderForPage(occs, []string{"/a.css", "/b.css"})
	var files []string
	for _, o := range ordered {
		files = append(files, o.File)
	}
	if !reflect.DeepEqual(files, []string{"/a.css", "/b.css"}) {
		t.Errorf("ordered files = %v, want chain order with /x.css excluded", files)
	}
}

func TestOrderGlobalSentinelFallsBackToFileLine(t *testing.T) {
	occs := []Occurrence{
		occ("/b.css", 3, css.Declaration{Property: "color", Value: "blue"}),
		occ("/a.css", 7, css.Declaration{Property: "color", Value: "red"}),
		occ("/a.css", 2, css.Declaration{Property: "color", Value: "green"}),
	}

	ordered := OrderGlobal(occs, nil)
	var keys []string
	for _, o := range ordered {
		keys = append(keys, o.File)
	}
	if !reflect.DeepEqual(keys, []string{"/a.css", "/a.css", "/b.css"}) {
		t.Errorf("ordered = %v, want (file, line) fallback order", keys)
	}
	if ordered[0].Line != 2 {
		t.Errorf("first occurrence line = %d, want 2", ordered[0].Line)
	}
}
