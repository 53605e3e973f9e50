package report

import (
	_ "embed"
	"fmt"
	"html/template"
	"os"
	"time"

	sprig "github.com/go-task/slim-sprig/v3"

	"cssaudit/pkg/analyzer"
)

//go:embed report.html.tmpl
var htmlTemplate string

// HTMLData feeds the embedded report template. Single-analysis reports set
// one result field; the combined report sets all three.
type HTMLData struct {
	Title       string
	Root        string
	GeneratedAt time.Time

	Duplicates *analyzer.DuplicatesResult
	Unused     *analyzer.UnusedResult
	Structure  *analyzer.StructureResult
}

// WriteHTML renders the report to a standalone HTML file
func WriteHTML(path string, data HTMLData) error {
	tmpl, err := template.New("report").Funcs(sprig.HtmlFuncMap()).Parse(htmlTemplate)
	if err != nil {
		return fmt.Errorf("report template: %w", err)
	}

	if data.GeneratedAt.IsZero() {
		data.GeneratedAt = time.Now()
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating report file: %w", err)
	}

	if err := tmpl.Execute(f, data); err != nil {
		f.Close()
		return fmt.Errorf("rendering report: %w", err)
	}
	return f.Close()
}
