package analyzer

import (
	"go.uber.org/zap"

	"cssaudit/internal/usage"
	"cssaudit/internal/walker"
)

// UnusedResult is the unused-selector report payload
type UnusedResult struct {
	TotalSelectors  int                         `json:"total_selectors"`
	UsedSelectors   []string                    `json:"used_selectors"`
	UnusedSelectors map[string][]usage.Location `json:"unused_selectors"`
	UsagePercentage float64                     `json:"usage_percentage"`
	UnusedFiles     []string                    `json:"unused_files"`
	Errors          []string                    `json:"errors"`
}

// Unused classifies every defined class/ID selector as used or unused by
// scanning source files, scoped by page topology when entry documents exist.
func (a *Analyzer) Unused(root string) (*UnusedResult, error) {
	p, err := a.scan(root)
	if err != nil {
		return nil, err
	}

	sources := make(map[string]string, len(p.sourceFiles))
	var sourceOrder []string
	for _, file := range p.sourceFiles {
		content, err := walker.ReadText(file)
		if err != nil {
			a.log.Debug("skipping unreadable source file", zap.String("path", file), zap.Error(err))
			continue
		}
		sources[file] = content
		sourceOrder = append(sourceOrder, file)
	}

	topo := p.topo
	if !p.hasTopology() {
		topo = nil
	}

	index := usage.NewIndex(a.cfg, a.log)
	r := index.Compute(p.sheets, p.sheetOrder, sources, sourceOrder, p.cssContents, topo)

	return &UnusedResult{
		TotalSelectors:  r.TotalSelectors,
		UsedSelectors:   r.UsedSelectors,
		UnusedSelectors: r.UnusedSelectors,
		UsagePercentage: r.UsagePercentage,
		UnusedFiles:     r.UnusedFiles,
		Errors:          p.errors,
	}, nil
}
