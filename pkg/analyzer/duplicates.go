package analyzer

import (
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"cssaudit/internal/cascade"
	"cssaudit/internal/walker"
)

// DuplicatesOptions selects the optional merge outputs
type DuplicatesOptions struct {
	Merge   bool // produce the global merged rule per duplicate selector
	PerPage bool // additionally merge per page, using each page's own order
}

// DuplicatesResult is the duplicate-analysis report payload. The maps hold
// only entries appearing at least twice.
type DuplicatesResult struct {
	Selectors    map[string][]Location `json:"selectors"`
	MediaQueries map[string][]Location `json:"media_queries"`
	Comments     map[string][]Location `json:"comments"`

	Merged        map[string]string            `json:"merged,omitempty"`
	MergedPerPage map[string]map[string]string `json:"merged_per_page,omitempty"`

	Warnings        []cascade.Warning   `json:"warnings"`
	LoadOrder       map[string][]string `json:"load_order"`
	UnreferencedCSS []string            `json:"unreferenced_css"`
	Errors          []string            `json:"errors"`
}

// Duplicates finds selectors, media queries and comments defined more than
// once, optionally merging each duplicate selector's declarations in cascade
// order.
func (a *Analyzer) Duplicates(root string, opts DuplicatesOptions) (*DuplicatesResult, error) {
	p, err := a.scan(root)
	if err != nil {
		return nil, err
	}
	occ := a.collect(p)

	result := &DuplicatesResult{
		Selectors:       make(map[string][]Location),
		MediaQueries:    make(map[string][]Location),
		Comments:        make(map[string][]Location),
		LoadOrder:       make(map[string][]string),
		UnreferencedCSS: p.topo.UnreferencedCSS,
		Errors:          p.errors,
	}

	for _, sel := range occ.selectorOrder {
		sites := occ.selectors[sel]
		if len(sites) < 2 {
			continue
		}
		for _, o := range sites {
			result.Selectors[sel] = append(result.Selectors[sel], Location{File: o.File, Line: o.Line})
		}
	}
	for _, key := range occ.mediaOrder {
		if sites := occ.media[key]; len(sites) >= 2 {
			result.MediaQueries[key] = sites
		}
	}
	for _, key := range occ.commentOrder {
		if sites := occ.comments[key]; len(sites) >= 2 {
			result.Comments[key] = sites
		}
	}

	for _, path := range p.topo.PageOrder {
		result.LoadOrder[path] = p.topo.Pages[path].CSSChain
	}
	result.Warnings = append(result.Warnings, topologyWarnings(p)...)

	if opts.Merge {
		a.mergeGlobal(p, occ, result)
	}
	if opts.PerPage {
		a.mergePerPage(p, occ, result)
	}

	return result, nil
}

// mergeGlobal merges every duplicate selector using the minimum-chain-index
// file order. With topology present, occurrences from stylesheets no page
// loads are excluded from the authoritative merge; they still show up in the
// duplicate location maps.
func (a *Analyzer) mergeGlobal(p *project, occ *occurrences, result *DuplicatesResult) {
	engine := cascade.NewEngine(a.log)
	result.Merged = make(map[string]string)

	var rank map[string]int
	if p.hasTopology() {
		rank = globalRanks(p.topo)
	}

	for _, sel := range occ.selectorOrder {
		sites := occ.selectors[sel]
		if len(sites) < 2 {
			continue
		}
		if rank != nil {
			var kept []cascade.Occurrence
			for _, o := range sites {
				if _, ok := rank[walker.NormalizePath(o.File)]; ok {
					kept = append(kept, o)
				}
			}
			sites = kept
		}
		if len(sites) == 0 {
			continue
		}
		merged, warnings := engine.Merge(sel, cascade.OrderGlobal(sites, rank), "")
		result.Merged[sel] = cascade.FormatMerged(sel, merged)
		result.Warnings = append(result.Warnings, warnings...)
	}
}

// mergePerPage repeats the merge once per page over that page's own chain
// order; occurrences from files outside the chain are excluded entirely.
func (a *Analyzer) mergePerPage(p *project, occ *occurrences, result *DuplicatesResult) {
	engine := cascade.NewEngine(a.log)
	result.MergedPerPage = make(map[string]map[string]string)

	for _, path := range p.topo.PageOrder {
		page := p.topo.Pages[path]
		perSelector := make(map[string]string)
		for _, sel := range occ.selectorOrder {
			sites := occ.selectors[sel]
			if len(sites) < 2 {
				continue
			}
			ordered := cascade.OrderForPage(sites, page.CSSChain)
			if len(ordered) == 0 {
				continue
			}
			merged, warnings := engine.Merge(sel, ordered, path)
			perSelector[sel] = cascade.FormatMerged(sel, merged)
			result.Warnings = append(result.Warnings, warnings...)
		}
		if len(perSelector) > 0 {
			result.MergedPerPage[path] = perSelector
		}
	}
}

// topologyWarnings surfaces the informational page-level findings: pages
// disagreeing on two shared stylesheets' relative order, and script-injected
// stylesheets whose cascade position is unknowable.
func topologyWarnings(p *project) []cascade.Warning {
	var warnings []cascade.Warning

	type ranked struct {
		page string
		rank map[string]int
	}
	var pages []ranked
	for _, path := range p.topo.PageOrder {
		page := p.topo.Pages[path]
		if len(page.CSSChain) > 0 {
			pages = append(pages, ranked{page: path, rank: cascade.ChainRanks(page.CSSChain)})
		}
		if len(page.UncertainCSS) > 0 {
			names := make([]string, len(page.UncertainCSS))
			for i, f := range page.UncertainCSS {
				names[i] = filepath.Base(f)
			}
			warnings = append(warnings, cascade.Warning{
				Type:   cascade.WarnDynamicCSS,
				Page:   path,
				Reason: fmt.Sprintf("Stylesheets injected by script, load position unknown: %s", strings.Join(names, ", ")),
			})
		}
	}

	reported := make(map[string]bool)
	for i := 0; i < len(pages); i++ {
		for j := i + 1; j < len(pages); j++ {
			for f, rf := range pages[i].rank {
				for g, rg := range pages[i].rank {
					if f >= g {
						continue
					}
					of, okF := pages[j].rank[f]
					og, okG := pages[j].rank[g]
					if !okF || !okG {
						continue
					}
					if (rf < rg) == (of < og) {
						continue
					}
					key := f + "|" + g
					if reported[key] {
						continue
					}
					reported[key] = true
					warnings = append(warnings, cascade.Warning{
						Type: cascade.WarnAmbiguousLoadOrder,
						From: cascade.Location{File: f},
						To:   cascade.Location{File: g},
						Reason: fmt.Sprintf("%s and %s load these stylesheets in opposite order",
							pages[i].page, pages[j].page),
					})
				}
			}
		}
	}

	sort.SliceStable(warnings, func(i, j int) bool { return warnings[i].Type < warnings[j].Type })
	return warnings
}
