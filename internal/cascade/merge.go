// Package cascade merges same-selector declarations across stylesheets in
// load order, recording every override decision it makes. Precedence is the
// simplified cascade the analyzers promise: last wins, except that an earlier
// !important declaration cannot be displaced by a later normal one.
package cascade

import (
	"sort"

	"go.uber.org/zap"

	"cssaudit/internal/css"
	"cssaudit/internal/walker"
)

// Warning types emitted during merge and page analysis
const (
	WarnLaterOverridesEarlier         = "later-overrides-earlier"
	WarnLaterImportantOverridesNormal = "later-important-overrides-normal"
	WarnImportantBlocksNormal         = "important-blocks-normal"
	WarnImportantVsImportant          = "important-vs-important"
	WarnAmbiguousLoadOrder            = "ambiguous-load-order"
	WarnDynamicCSS                    = "dynamic-css"
)

// Location identifies a point in a stylesheet. Line 0 means "not found".
type Location struct {
	File string
	Line int
}

// Occurrence is one concrete appearance of a selector: where it is and what
// it declares, declarations in source order.
type Occurrence struct {
	File         string
	Line         int
	Declarations []css.Declaration
}

// MergedProperty is the winning declaration for one property after merging
// all occurrences of a selector in a given order.
type MergedProperty struct {
	Name       string
	Value      string
	Important  bool
	OriginFile string
	OriginLine int
}

// Warning records one override/conflict decision
type Warning struct {
	Type     string
	Selector string
	Property string
	From     Location
	To       Location
	Reason   string
	Page     string
}

// sentinelRank orders occurrences from files absent from every known chain
// after all ranked files
const sentinelRank = 1 << 30

// Engine merges selector occurrences property-by-property
type Engine struct {
	log *zap.Logger
}

// NewEngine creates a merge engine
func NewEngine(log *zap.Logger) *Engine {
	if log == nil {
		log = zap.NewNop()
	}
	return &Engine{log: log.Named("cascade")}
}

// Merge processes occurrences in the given order and returns the surviving
// property set (in the order each property first won) plus one warning per
// override decision. page tags warnings with the page the order came from;
// empty for the global merge.
func (e *Engine) Merge(selector string, ordered []Occurrence, page string) ([]MergedProperty, []Warning) {
	var merged []MergedProperty
	var warnings []Warning
	index := make(map[string]int) // property name -> position in merged

	for _, occ := range ordered {
		for _, decl := range occ.Declarations {
			at, seen := index[decl.Property]
			if !seen {
				index[decl.Property] = len(merged)
				merged = append(merged, MergedProperty{
					Name:       decl.Property,
					Value:      decl.Value,
					Important:  decl.Important,
					OriginFile: occ.File,
					OriginLine: occ.Line,
				})
				continue
			}

			current := merged[at]
			from := Location{File: current.OriginFile, Line: current.OriginLine}
			to := Location{File: occ.File, Line: occ.Line}

			switch {
			case current.Important && !decl.Important:
				// Cascade reality: a later normal declaration cannot override
				// an earlier !important one
				warnings = append(warnings, Warning{
					Type: WarnImportantBlocksNormal, Selector: selector, Property: decl.Property,
					From: from, To: to, Page: page,
					Reason: "Earlier !important blocks later normal declaration",
				})

			case !current.Important && decl.Important:
				merged[at] = winner(current, decl, occ)
				warnings = append(warnings, Warning{
					Type: WarnLaterOverridesEarlier, Selector: selector, Property: decl.Property,
					From: from, To: to, Page: page,
					Reason: "Later !important overrides earlier normal",
				})

			case current.Important && decl.Important:
				merged[at] = winner(current, decl, occ)
				warnings = append(warnings, Warning{
					Type: WarnImportantVsImportant, Selector: selector, Property: decl.Property,
					From: from, To: to, Page: page,
					Reason: "Later !important overrides earlier !important",
				})

			default:
				merged[at] = winner(current, decl, occ)
				warnings = append(warnings, Warning{
					Type: WarnLaterOverridesEarlier, Selector: selector, Property: decl.Property,
					From: from, To: to, Page: page,
					Reason: "Later declaration overrides earlier value",
				})
			}
		}
	}

	return merged, warnings
}

func winner(current MergedProperty, decl css.Declaration, occ Occurrence) MergedProperty {
	current.Value = decl.Value
	current.Important = decl.Important
	current.OriginFile = occ.File
	current.OriginLine = occ.Line
	return current
}

// FormatMerged renders the merged property set as a single rule block
func FormatMerged(selector string, props []MergedProperty) string {
	decls := make([]css.Declaration, 0, len(props))
	for _, p := range props {
		decls = append(decls, css.Declaration{Property: p.Name, Value: p.Value, Important: p.Important})
	}
	return css.FormatRule(selector, decls)
}

// OrderForPage restricts occurrences to files present in the page's chain and
// sorts them by (chain index, line). Files outside the chain are excluded
// entirely for per-page merges.
func OrderForPage(occs []Occurrence, chain []string) []Occurrence {
	rank := ChainRanks(chain)
	var kept []Occurrence
	for _, occ := range occs {
		if _, ok := rank[walker.NormalizePath(occ.File)]; ok {
			kept = append(kept, occ)
		}
	}
	sortByRank(kept, rank)
	return kept
}

// OrderGlobal sorts occurrences by the given file ranks; occurrences from
// unranked files sort last under a large sentinel index. A nil rank map (no
// page topology at all) leaves everything at the sentinel, falling back to
// (file, line) order.
func OrderGlobal(occs []Occurrence, rank map[string]int) []Occurrence {
	ordered := make([]Occurrence, len(occs))
	copy(ordered, occs)
	sortByRank(ordered, rank)
	return ordered
}

// ChainRanks maps each normalized file in a chain to its first position
func ChainRanks(chain []string) map[string]int {
	rank := make(map[string]int, len(chain))
	for i, f := range chain {
		key := walker.NormalizePath(f)
		if _, seen := rank[key]; !seen {
			rank[key] = i
		}
	}
	return rank
}

func sortByRank(occs []Occurrence, rank map[string]int) {
	at := func(o Occurrence) int {
		if r, ok := rank[walker.NormalizePath(o.File)]; ok {
			return r
		}
		return sentinelRank
	}
	sort.SliceStable(occs, func(i, j int) bool {
		ri, rj := at(occs[i]), at(occs[j])
		if ri != rj {
			return ri < rj
		}
		if occs[i].File != occs[j].File {
			return occs[i].File < occs[j].File
		}
		return occs[i].Line < occs[j].Line
	})
}
