package css

import (
	"reflect"
	"strings"
	"testing"
)

func TestParseBasicStylesheet(t *testing.T) {
	input := `/* header styles */
@import url("base.css");
.btn, .link { color: red; margin: 0 auto; }
.btn { color: blue !important; }
@media (max-width: 600px) {
	.btn { display: none; }
}`

	sheet, err := NewParser(nil).Parse([]byte(input), "test.css")
	if err != nil {
		t.Fatalf("unexpected parse error: %v", err)
	}

	if len(sheet.Imports) != 1 || sheet.Imports[0] != "base.css" {
		t.Errorf("imports = %v, want [base.css]", sheet.Imports)
	}

	rules := sheet.StyleRules()
	if len(rules) != 3 {
		t.Fatalf("got %d style rules, want 3", len(rules))
	}

	if rules[0].Selector != ".btn, .link" {
		t.Errorf("selector = %q, want %q", rules[0].Selector, ".btn, .link")
	}
	if len(rules[0].Declarations) != 2 {
		t.Fatalf("got %d declarations, want 2", len(rules[0].Declarations))
	}
	if d := rules[0].Declarations[0]; d.Property != "color" || d.Value != "red" || d.Important {
		t.Errorf("declaration = %+v, want color: red (normal)", d)
	}
	if d := rules[0].Declarations[1]; d.Property != "margin" || d.Value != "0 auto" {
		t.Errorf("declaration = %+v, want margin: 0 auto", d)
	}

	if d := rules[1].Declarations[0]; d.Value != "blue" || !d.Important {
		t.Errorf("declaration = %+v, want color: blue !important with value stripped", d)
	}

	media := sheet.MediaBlocks()
	if len(media) != 1 {
		t.Fatalf("got %d media blocks, want 1", len(media))
	}
	if !strings.Contains(media[0].Query, "max-width") {
		t.Errorf("media query = %q, want it to mention max-width", media[0].Query)
	}
	if len(media[0].Rules) != 1 || media[0].Rules[0].Selector != ".btn" {
		t.Errorf("media rules = %+v, want one .btn rule", media[0].Rules)
	}

	comments := sheet.Comments()
	if len(comments) != 1 || !strings.Contains(comments[0].Text, "header styles") {
		t.Errorf("comments = %+v, want one containing 'header styles'", comments)
	}
}

func TestParseGroupedSelectorsKeepCommaSpacing(t *testing.T) {
	content := ".btn,.link { color: red; }"

	sheet, err := NewParser(nil).Parse([]byte(content), "grouped.css")
	if err != nil {
		t.Fatalf("unexpected parse error: %v", err)
	}

	rules := sheet.StyleRules()
	if len(rules) != 1 {
		t.Fatalf("got %d style rules, want 1", len(rules))
	}
	if rules[0].Selector != ".btn, .link" {
		t.Errorf("selector = %q, want %q", rules[0].Selector, ".btn, .link")
	}

	// The selector key must find its own source text again
	l := NewLocator()
	if line := l.Line("grouped.css", content, rules[0].Selector, LocSelector); line != 1 {
		t.Errorf("locator line = %d, want 1", line)
	}
}

func TestParseNestedAtRuleStaysInMediaBlock(t *testing.T) {
	input := `@media screen {
	.before { color: red; }
	@supports (display: grid) {
		.grid { display: grid; }
	}
	.after { color: blue; }
}
.top { color: green; }`

	sheet, err := NewParser(nil).Parse([]byte(input), "nested.css")
	if err != nil {
		t.Fatalf("unexpected parse error: %v", err)
	}

	media := sheet.MediaBlocks()
	if len(media) != 1 {
		t.Fatalf("got %d media blocks, want 1", len(media))
	}
	var inMedia []string
	for _, r := range media[0].Rules {
		inMedia = append(inMedia, r.Selector)
	}
	want := []string{".before", ".grid", ".after"}
	if !reflect.DeepEqual(inMedia, want) {
		t.Errorf("media rules = %v, want %v", inMedia, want)
	}

	var topLevel []string
	for _, item := range sheet.Items {
		if item.Rule != nil {
			topLevel = append(topLevel, item.Rule.Selector)
		}
	}
	if !reflect.DeepEqual(topLevel, []string{".top"}) {
		t.Errorf("top-level rules = %v, want [.top]", topLevel)
	}
}

func TestParseMalformedInputKeepsGoing(t *testing.T) {
	input := `.ok { color: green; }
.broken { color: ; }
.after { color: black; }`

	sheet, _ := NewParser(nil).Parse([]byte(input), "broken.css")

	var selectors []string
	for _, r := range sheet.StyleRules() {
		selectors = append(selectors, r.Selector)
	}
	found := false
	for _, s := range selectors {
		if s == ".ok" {
			found = true
		}
	}
	if !found {
		t.Errorf("selectors = %v, want .ok to survive a malformed sibling", selectors)
	}
}

func TestFormatRule(t *testing.T) {
	got := FormatRule(".btn", []Declaration{
		{Property: "color", Value: "blue", Important: true},
		{Property: "margin", Value: "0"},
	})
	want := ".btn { color: blue !important; margin: 0; }"
	if got != want {
		t.Errorf("FormatRule = %q, want %q", got, want)
	}
}
