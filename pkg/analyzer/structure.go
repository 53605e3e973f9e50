package analyzer

import (
	"cssaudit/internal/prefix"
	"cssaudit/internal/usage"
)

// StructureResult is the structure report payload: rule and comment totals,
// the naming-prefix hierarchy, and the reconstructed load order.
type StructureResult struct {
	TotalRules    int                 `json:"total_rules"`
	TotalComments int                 `json:"total_comments"`
	Prefixes      map[string]int      `json:"prefixes"`
	PrefixGroups  map[string][]string `json:"prefix_groups"`
	Comments      []string            `json:"comments"`
	LoadOrder     map[string][]string `json:"load_order"`
	Errors        []string            `json:"errors"`
}

// Structure summarizes the project's stylesheet organization: how many rules
// and comments exist, which naming-convention prefixes the selector universe
// decomposes into, and what each page loads.
func (a *Analyzer) Structure(root string) (*StructureResult, error) {
	p, err := a.scan(root)
	if err != nil {
		return nil, err
	}

	result := &StructureResult{
		LoadOrder: make(map[string][]string),
		Errors:    p.errors,
	}

	for _, file := range p.sheetOrder {
		sheet := p.sheets[file]
		result.TotalRules += len(sheet.StyleRules())
		for _, c := range sheet.Comments() {
			result.TotalComments++
			result.Comments = append(result.Comments, c.Text)
		}
	}

	collector := prefix.NewCollector()
	for _, token := range usage.TokenUniverse(p.sheets, p.sheetOrder, a.cfg) {
		collector.Add(token)
	}
	result.Prefixes = collector.Counts
	result.PrefixGroups = collector.Groups

	for _, path := range p.topo.PageOrder {
		result.LoadOrder[path] = p.topo.Pages[path].CSSChain
	}

	return result, nil
}
