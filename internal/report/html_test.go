package report

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"cssaudit/pkg/analyzer"
)

func TestWriteHTMLCombinedReport(t *testing.T) {
	out := filepath.Join(t.TempDir(), "report.html")

	err := WriteHTML(out, HTMLData{
		Title: "Comprehensive analysis",
		Root:  "/proj",
		Duplicates: &analyzer.DuplicatesResult{
			Selectors: map[string][]analyzer.Location{
				".btn": {{File: "a.css", Line: 1}, {File: "b.css", Line: 1}},
			},
			Merged: map[string]string{".btn": ".btn { color: blue !important; }"},
		},
		Unused: &analyzer.UnusedResult{
			TotalSelectors:  2,
			UsedSelectors:   []string{".btn"},
			UsagePercentage: 50,
		},
		Structure: &analyzer.StructureResult{
			TotalRules: 2,
			Prefixes:   map[string]int{"note": 2},
			PrefixGroups: map[string][]string{
				"note": {".note_pin", ".note_board"},
			},
		},
	})
	if err != nil {
		t.Fatalf("WriteHTML: %v", err)
	}

	data, err := os.ReadFile(out)
	if err != nil {
		t.Fatal(err)
	}
	html := string(data)

	for _, want := range []string{
		"Comprehensive analysis",
		"Duplicate selectors (1)",
		".btn { color: blue !important; }",
		"50.0%",
		"Naming prefixes",
		".note_pin, .note_board",
	} {
		if !strings.Contains(html, want) {
			t.Errorf("report missing %q", want)
		}
	}
}
