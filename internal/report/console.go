// Package report renders analysis results for humans: styled console output
// and a standalone HTML report file.
package report

import (
	"fmt"
	"io"
	"path/filepath"
	"sort"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/maruel/natural"

	"cssaudit/pkg/analyzer"
)

var (
	titleStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("205"))
	sectionStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("81"))
	warnStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("208"))
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	dimStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	headerStyle  = lipgloss.NewStyle().Bold(true).Padding(0, 1)
	cellStyle    = lipgloss.NewStyle().Padding(0, 1)
)

// Console writes styled reports to a terminal-ish writer. Paths are shown
// relative to the analysis root where possible.
type Console struct {
	w    io.Writer
	root string
}

// NewConsole creates a console reporter
func NewConsole(w io.Writer, root string) *Console {
	return &Console{w: w, root: root}
}

// Duplicates renders the duplicate-analysis result
func (c *Console) Duplicates(r *analyzer.DuplicatesResult) {
	c.title("Duplicate analysis")

	c.section(fmt.Sprintf("Duplicate selectors (%d)", len(r.Selectors)))
	c.locationTable("Selector", r.Selectors)

	c.section(fmt.Sprintf("Duplicate media queries (%d)", len(r.MediaQueries)))
	c.locationTable("Media query", r.MediaQueries)

	c.section(fmt.Sprintf("Duplicate comments (%d)", len(r.Comments)))
	c.locationTable("Comment", r.Comments)

	if len(r.Merged) > 0 {
		c.section("Merged rules (cascade order)")
		for _, sel := range sortedKeys(r.Merged) {
			fmt.Fprintln(c.w, "  "+r.Merged[sel])
		}
		fmt.Fprintln(c.w)
	}

	for _, page := range sortedKeys(r.MergedPerPage) {
		c.section("Merged rules for " + c.rel(page))
		for _, sel := range sortedKeys(r.MergedPerPage[page]) {
			fmt.Fprintln(c.w, "  "+r.MergedPerPage[page][sel])
		}
		fmt.Fprintln(c.w)
	}

	c.loadOrder(r.LoadOrder)

	if len(r.UnreferencedCSS) > 0 {
		c.section(fmt.Sprintf("Stylesheets no page loads (%d)", len(r.UnreferencedCSS)))
		for _, f := range naturalSorted(r.UnreferencedCSS) {
			fmt.Fprintln(c.w, "  "+dimStyle.Render(c.rel(f)))
		}
		fmt.Fprintln(c.w)
	}

	if len(r.Warnings) > 0 {
		c.section(fmt.Sprintf("Warnings (%d)", len(r.Warnings)))
		t := c.newTable("Type", "Selector", "Property", "Where", "Detail")
		for _, w := range r.Warnings {
			where := c.warnWhere(w.From.File, w.From.Line, w.To.File, w.To.Line, w.Page)
			t.Row(warnStyle.Render(w.Type), w.Selector, w.Property, where, w.Reason)
		}
		fmt.Fprintln(c.w, t.Render())
		fmt.Fprintln(c.w)
	}

	c.errors(r.Errors)
}

// Unused renders the unused-selector result
func (c *Console) Unused(r *analyzer.UnusedResult) {
	c.title("Unused selector analysis")

	t := c.newTable("Total", "Used", "Unused", "Usage")
	t.Row(
		fmt.Sprintf("%d", r.TotalSelectors),
		fmt.Sprintf("%d", len(r.UsedSelectors)),
		fmt.Sprintf("%d", len(r.UnusedSelectors)),
		fmt.Sprintf("%.1f%%", r.UsagePercentage),
	)
	fmt.Fprintln(c.w, t.Render())
	fmt.Fprintln(c.w)

	if len(r.UnusedSelectors) > 0 {
		c.section(fmt.Sprintf("Unused selectors (%d)", len(r.UnusedSelectors)))
		ut := c.newTable("Selector", "Defined at")
		for _, sel := range sortedKeys(r.UnusedSelectors) {
			var sites []string
			for _, loc := range r.UnusedSelectors[sel] {
				sites = append(sites, fmt.Sprintf("%s:%d", c.rel(loc.File), loc.Line))
			}
			ut.Row(sel, strings.Join(naturalSorted(sites), ", "))
		}
		fmt.Fprintln(c.w, ut.Render())
		fmt.Fprintln(c.w)
	}

	if len(r.UnusedFiles) > 0 {
		c.section(fmt.Sprintf("Stylesheets with no used selectors (%d)", len(r.UnusedFiles)))
		for _, f := range naturalSorted(r.UnusedFiles) {
			fmt.Fprintln(c.w, "  "+dimStyle.Render(c.rel(f)))
		}
		fmt.Fprintln(c.w)
	}

	c.errors(r.Errors)
}

// Structure renders the structure result
func (c *Console) Structure(r *analyzer.StructureResult) {
	c.title("Structure analysis")

	t := c.newTable("Rules", "Comments", "Prefixes")
	t.Row(
		fmt.Sprintf("%d", r.TotalRules),
		fmt.Sprintf("%d", r.TotalComments),
		fmt.Sprintf("%d", len(r.Prefixes)),
	)
	fmt.Fprintln(c.w, t.Render())
	fmt.Fprintln(c.w)

	if len(r.Prefixes) > 0 {
		c.section("Naming prefixes")
		pt := c.newTable("Prefix", "Count", "Examples")
		for _, p := range sortedKeys(r.Prefixes) {
			pt.Row(p, fmt.Sprintf("%d", r.Prefixes[p]), strings.Join(truncateList(r.PrefixGroups[p], 5), ", "))
		}
		fmt.Fprintln(c.w, pt.Render())
		fmt.Fprintln(c.w)
	}

	c.loadOrder(r.LoadOrder)

	if len(r.Comments) > 0 {
		c.section(fmt.Sprintf("Comments (%d)", len(r.Comments)))
		for _, text := range r.Comments {
			fmt.Fprintln(c.w, "  "+dimStyle.Render(truncate(text, 100)))
		}
		fmt.Fprintln(c.w)
	}

	c.errors(r.Errors)
}

// Analyze renders the combined result, one section per analysis
func (c *Console) Analyze(r *analyzer.AnalyzeResult) {
	c.title("Comprehensive analysis")
	fmt.Fprintln(c.w)
	c.Duplicates(r.Duplicates)
	c.Unused(r.Unused)
	c.Structure(r.Structure)
}

func (c *Console) title(s string) {
	fmt.Fprintln(c.w, titleStyle.Render(" "+s+" "))
	fmt.Fprintln(c.w)
}

func (c *Console) section(s string) {
	fmt.Fprintln(c.w, sectionStyle.Render(s))
}

func (c *Console) errors(errs []string) {
	if len(errs) == 0 {
		return
	}
	c.section(fmt.Sprintf("Errors (%d)", len(errs)))
	for _, e := range errs {
		fmt.Fprintln(c.w, "  "+errorStyle.Render(e))
	}
	fmt.Fprintln(c.w)
}

func (c *Console) loadOrder(order map[string][]string) {
	if len(order) == 0 {
		return
	}
	c.section(fmt.Sprintf("Page load order (%d pages)", len(order)))
	for _, page := range sortedKeys(order) {
		fmt.Fprintln(c.w, "  "+c.rel(page))
		for i, f := range order[page] {
			fmt.Fprintf(c.w, "    %2d. %s\n", i+1, dimStyle.Render(c.rel(f)))
		}
	}
	fmt.Fprintln(c.w)
}

func (c *Console) locationTable(label string, entries map[string][]analyzer.Location) {
	if len(entries) == 0 {
		fmt.Fprintln(c.w, dimStyle.Render("  none"))
		fmt.Fprintln(c.w)
		return
	}
	t := c.newTable(label, "Count", "Locations")
	for _, key := range sortedKeys(entries) {
		var sites []string
		for _, loc := range entries[key] {
			sites = append(sites, fmt.Sprintf("%s:%d", c.rel(loc.File), loc.Line))
		}
		t.Row(truncate(key, 60), fmt.Sprintf("%d", len(sites)), strings.Join(naturalSorted(sites), ", "))
	}
	fmt.Fprintln(c.w, t.Render())
	fmt.Fprintln(c.w)
}

func (c *Console) newTable(headers ...string) *table.Table {
	return table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(dimStyle).
		StyleFunc(func(row, _ int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return cellStyle
		}).
		Headers(headers...)
}

func (c *Console) warnWhere(fromFile string, fromLine int, toFile string, toLine int, page string) string {
	var parts []string
	if fromFile != "" {
		parts = append(parts, fmt.Sprintf("%s:%d", c.rel(fromFile), fromLine))
	}
	if toFile != "" {
		parts = append(parts, fmt.Sprintf("%s:%d", c.rel(toFile), toLine))
	}
	where := strings.Join(parts, " -> ")
	if page != "" {
		if where != "" {
			where += " "
		}
		where += "(" + c.rel(page) + ")"
	}
	return where
}

func (c *Console) rel(path string) string {
	if c.root == "" {
		return path
	}
	if rel, err := filepath.Rel(c.root, path); err == nil && !strings.HasPrefix(rel, "..") {
		return rel
	}
	return path
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Sort(natural.StringSlice(keys))
	return keys
}

func naturalSorted(items []string) []string {
	out := make([]string, len(items))
	copy(out, items)
	sort.Sort(natural.StringSlice(out))
	return out
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max-3] + "..."
}

func truncateList(items []string, max int) []string {
	if len(items) <= max {
		return items
	}
	kept := make([]string, max+1)
	copy(kept, items[:max])
	kept[max] = fmt.Sprintf("+%d more", len(items)-max)
	return kept
}
