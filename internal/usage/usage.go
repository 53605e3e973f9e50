// Package usage builds the class/ID selector universe from parsed stylesheets
// and classifies each token as used or unused by scanning source files for
// class= / id= attribute matches, optionally scoped by page topology.
package usage

import (
	"regexp"
	"sort"
	"strings"

	"go.uber.org/zap"

	"cssaudit/internal/config"
	"cssaudit/internal/css"
	"cssaudit/internal/pageload"
	"cssaudit/internal/walker"
)

var (
	classSelRe = regexp.MustCompile(`\.([a-zA-Z0-9_-]+)`)
	idSelRe    = regexp.MustCompile(`#([a-zA-Z0-9_-]+)`)

	classAttrRe = regexp.MustCompile(`(?i)\bclass\s*=\s*["']([^"']*)["']`)
	idAttrRe    = regexp.MustCompile(`(?i)\bid\s*=\s*["']([^"']*)["']`)
	tokenRe     = regexp.MustCompile(`[a-zA-Z0-9_-]+`)
)

// Location is a selector definition site. Line 0 means the locator could not
// pin the occurrence down.
type Location struct {
	File string `json:"file"`
	Line int    `json:"line"`
}

// Result is the usage classification for one analysis run. Tokens are labeled
// with their sigil (".name" for classes, "#name" for IDs).
type Result struct {
	TotalSelectors  int
	UsedSelectors   []string
	UnusedSelectors map[string][]Location
	UsagePercentage float64

	// UnusedFiles lists stylesheets in which every defined token is unused
	UnusedFiles []string
}

// definition is one appearance of a token inside a style-rule selector
type definition struct {
	file     string
	selector string
}

// Index computes selector usage over parsed stylesheets and raw source text
type Index struct {
	cfg config.Config
	log *zap.Logger
}

// NewIndex creates a usage index
func NewIndex(cfg config.Config, log *zap.Logger) *Index {
	if log == nil {
		log = zap.NewNop()
	}
	return &Index{cfg: cfg, log: log.Named("usage")}
}

// Compute classifies every class/ID token defined by sheets. sources maps
// source-file path to content; sheetContents is used for definition line
// lookup. topo is optional; when present, "used" additionally requires a page
// that both matches the token and loads a stylesheet defining it.
func (x *Index) Compute(sheets map[string]*css.Stylesheet, sheetOrder []string, sources map[string]string, sourceOrder []string, sheetContents map[string]string, topo *pageload.Result) *Result {
	deny := x.cfg.Denylist()

	// Token universe, with every definition site
	defs := make(map[string][]definition)        // labeled token -> sites
	defFiles := make(map[string]map[string]bool) // labeled token -> normalized defining files
	for _, file := range sheetOrder {
		sheet, ok := sheets[file]
		if !ok {
			continue
		}
		norm := walker.NormalizePath(file)
		for _, rule := range sheet.StyleRules() {
			for _, token := range selectorTokens(rule.Selector, deny) {
				defs[token] = append(defs[token], definition{file: file, selector: rule.Selector})
				if defFiles[token] == nil {
					defFiles[token] = make(map[string]bool)
				}
				defFiles[token][norm] = true
			}
		}
	}

	result := &Result{UnusedSelectors: make(map[string][]Location)}
	result.TotalSelectors = len(defs)
	if result.TotalSelectors == 0 {
		return result
	}

	// Attribute-window token sets per source file, lowercased. A heuristic
	// textual match, not an HTML parse.
	fileTokens := make(map[string]attrTokens, len(sources))
	for _, file := range sourceOrder {
		fileTokens[file] = attributeTokens(sources[file])
	}

	used := make(map[string]bool)
	if topo == nil {
		for token := range defs {
			for _, file := range sourceOrder {
				if fileTokens[file].has(token) {
					used[token] = true
					break
				}
			}
		}
	} else {
		// Page-scoped: the matching page must also load a defining stylesheet,
		// through its chain or its uncertain set
		pageLoads := make(map[string]map[string]bool, len(topo.Pages))
		for path, page := range topo.Pages {
			loads := make(map[string]bool, len(page.CSSChain)+len(page.UncertainCSS))
			for _, f := range page.CSSChain {
				loads[walker.NormalizePath(f)] = true
			}
			for _, f := range page.UncertainCSS {
				loads[walker.NormalizePath(f)] = true
			}
			pageLoads[path] = loads
		}
		for token := range defs {
			for _, path := range topo.PageOrder {
				if !fileTokens[path].has(token) {
					continue
				}
				if intersects(pageLoads[path], defFiles[token]) {
					used[token] = true
					break
				}
			}
		}
	}

	locator := css.NewLocator()
	unusedByFile := make(map[string]bool) // normalized file -> has unused token
	usedByFile := make(map[string]bool)
	for token, sites := range defs {
		if used[token] {
			result.UsedSelectors = append(result.UsedSelectors, token)
			for f := range defFiles[token] {
				usedByFile[f] = true
			}
			continue
		}
		for _, site := range sites {
			line := locator.Line(site.file, sheetContents[site.file], site.selector, css.LocSelector)
			result.UnusedSelectors[token] = append(result.UnusedSelectors[token], Location{File: site.file, Line: line})
		}
		for f := range defFiles[token] {
			unusedByFile[f] = true
		}
	}
	sort.Strings(result.UsedSelectors)

	for _, file := range sheetOrder {
		norm := walker.NormalizePath(file)
		if unusedByFile[norm] && !usedByFile[norm] {
			result.UnusedFiles = append(result.UnusedFiles, file)
		}
	}

	result.UsagePercentage = float64(len(result.UsedSelectors)) / float64(result.TotalSelectors) * 100
	return result
}

// TokenUniverse returns the sorted set of labeled class/ID tokens defined
// across sheets, denylist applied. Structure analysis shares this universe
// with usage classification.
func TokenUniverse(sheets map[string]*css.Stylesheet, sheetOrder []string, cfg config.Config) []string {
	deny := cfg.Denylist()
	seen := make(map[string]bool)
	var tokens []string
	for _, file := range sheetOrder {
		sheet, ok := sheets[file]
		if !ok {
			continue
		}
		for _, rule := range sheet.StyleRules() {
			for _, token := range selectorTokens(rule.Selector, deny) {
				if !seen[token] {
					seen[token] = true
					tokens = append(tokens, token)
				}
			}
		}
	}
	sort.Strings(tokens)
	return tokens
}

// selectorTokens extracts labeled class/ID tokens from one selector, denylist
// applied, duplicates within the selector suppressed.
func selectorTokens(selector string, deny map[string]struct{}) []string {
	var tokens []string
	seen := make(map[string]bool)
	add := func(label string, name string) {
		if _, blocked := deny[strings.ToLower(name)]; blocked {
			return
		}
		token := label + name
		if !seen[token] {
			seen[token] = true
			tokens = append(tokens, token)
		}
	}
	for _, m := range classSelRe.FindAllStringSubmatch(selector, -1) {
		add(".", m[1])
	}
	for _, m := range idSelRe.FindAllStringSubmatch(selector, -1) {
		add("#", m[1])
	}
	return tokens
}

// attrTokens holds the token sets found inside class= and id= attribute
// windows of one source file, kept apart so a class selector never matches
// an id value or the other way around.
type attrTokens struct {
	classes map[string]bool
	ids     map[string]bool
}

// has reports whether the labeled token's name appears in the attribute kind
// its sigil selects. The comparison is case-insensitive.
func (a attrTokens) has(token string) bool {
	name := strings.ToLower(token[1:])
	if token[0] == '#' {
		return a.ids[name]
	}
	return a.classes[name]
}

// attributeTokens collects the class= and id= window tokens of one source
// file, lowercased
func attributeTokens(content string) attrTokens {
	return attrTokens{
		classes: windowTokens(content, classAttrRe),
		ids:     windowTokens(content, idAttrRe),
	}
}

func windowTokens(content string, re *regexp.Regexp) map[string]bool {
	tokens := make(map[string]bool)
	for _, m := range re.FindAllStringSubmatch(content, -1) {
		for _, t := range tokenRe.FindAllString(m[1], -1) {
			tokens[strings.ToLower(t)] = true
		}
	}
	return tokens
}

func intersects(a, b map[string]bool) bool {
	for k := range a {
		if b[k] {
			return true
		}
	}
	return false
}
