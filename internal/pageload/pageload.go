// Package pageload reconstructs which stylesheets each entry document
// actually loads, and in what order: static <link> tags, inline <style>
// @imports, server-side register/enqueue calls, and heuristically-detected
// script injection.
package pageload

import (
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"cssaudit/internal/config"
	"cssaudit/internal/html"
	"cssaudit/internal/resolver"
	"cssaudit/internal/walker"
)

// Page is one HTML or PHP entry document and its stylesheet topology
type Page struct {
	Path string

	// CSSChain is the ordered stylesheet sequence the page loads. Duplicates
	// are allowed: one sheet may arrive through several import chains.
	CSSChain []string

	// UncertainCSS holds stylesheets whose inclusion is suspected (script
	// injection) but whose position in load order is unknown
	UncertainCSS []string
}

// Result is the project's page topology
type Result struct {
	Pages           map[string]*Page // key: page absolute path
	PageOrder       []string         // deterministic iteration order
	AllCSS          []string         // every CSS file under root, sorted
	UnreferencedCSS []string         // CSS files no page reaches
}

// Builder produces the per-page load-order map for one analysis run
type Builder struct {
	cfg     config.Config
	assets  *resolver.Assets
	imports *resolver.Imports
	log     *zap.Logger

	contents map[string]string // read cache, keyed by path
	readErrs map[string]bool
}

// NewBuilder creates a page-load-order builder
func NewBuilder(cfg config.Config, assets *resolver.Assets, imports *resolver.Imports, log *zap.Logger) *Builder {
	if log == nil {
		log = zap.NewNop()
	}
	return &Builder{
		cfg:      cfg,
		assets:   assets,
		imports:  imports,
		log:      log.Named("pageload"),
		contents: make(map[string]string),
		readErrs: make(map[string]bool),
	}
}

// Build scans every entry document among sourceFiles and produces the page
// topology. cssFiles is the full CSS universe under root (used for the
// unreferenced set). Building twice over an unchanged tree yields identical
// chains.
func (b *Builder) Build(cssFiles, sourceFiles []string) *Result {
	result := &Result{
		Pages:  make(map[string]*Page),
		AllCSS: cssFiles,
	}

	// Constant pre-pass over all server-side sources, so framework
	// indirection in any page can substitute known path-like constants
	var phpFiles []string
	for _, f := range sourceFiles {
		if isPHPFamily(f) {
			if _, ok := b.content(f); ok {
				phpFiles = append(phpFiles, f)
			}
		}
	}
	b.assets.SetConstants(resolver.ScanConstants(b.contents, phpFiles))

	for _, file := range sourceFiles {
		if !isEntryDocument(file) {
			continue
		}
		page := b.buildPage(file)
		result.Pages[file] = page
		result.PageOrder = append(result.PageOrder, file)
	}

	// Unreferenced = discovered universe minus everything any page touches
	reached := make(map[string]bool)
	for _, page := range result.Pages {
		for _, f := range page.CSSChain {
			reached[walker.NormalizePath(f)] = true
		}
		for _, f := range page.UncertainCSS {
			reached[walker.NormalizePath(f)] = true
		}
	}
	for _, f := range cssFiles {
		if !reached[walker.NormalizePath(f)] {
			result.UnreferencedCSS = append(result.UnreferencedCSS, f)
		}
	}

	return result
}

// buildPage extracts the ordered stylesheet chain for one entry document.
// A page with zero stylesheet references yields an empty chain; that is
// valid, not an error.
func (b *Builder) buildPage(pagePath string) *Page {
	page := &Page{Path: pagePath}

	content, ok := b.content(pagePath)
	if !ok {
		return page
	}

	var links []string
	var styleBlocks []string
	var scriptSrcs []string

	if isPHPFamily(pagePath) {
		links = ExtractLinkHrefs(content)
		styleBlocks = ExtractStyleBlocks(content)
		scriptSrcs = ExtractScriptSrcs(content)
	} else if doc, err := html.Parse(content); err == nil {
		links = doc.StylesheetLinks()
		styleBlocks = doc.StyleBlocks()
		scriptSrcs = doc.ScriptSources()
	} else {
		b.log.Debug("falling back to pattern extraction", zap.String("page", pagePath), zap.Error(err))
		links = ExtractLinkHrefs(content)
		styleBlocks = ExtractStyleBlocks(content)
		scriptSrcs = ExtractScriptSrcs(content)
	}

	// Static <link rel=stylesheet> tags, document order, each expanded
	// through its import chain
	for _, href := range links {
		if path, ok := b.assets.Resolve(href, pagePath); ok {
			page.CSSChain = append(page.CSSChain, b.imports.Resolve(path)...)
		}
	}

	// Inline <style> @import statements
	for _, block := range styleBlocks {
		for _, target := range resolver.ImportTargets(block) {
			if path, ok := b.assets.Resolve(target, pagePath); ok {
				page.CSSChain = append(page.CSSChain, b.imports.Resolve(path)...)
			}
		}
	}

	// Server-side register/enqueue protocol
	if isPHPFamily(pagePath) {
		for _, path := range b.scanServerSide(pagePath) {
			page.CSSChain = append(page.CSSChain, b.imports.Resolve(path)...)
		}
	}

	// Script-injected stylesheets: position unknowable, uncertain set only
	seen := make(map[string]bool)
	for _, src := range scriptSrcs {
		script, ok := b.localScript(src, pagePath)
		if !ok {
			continue
		}
		scriptContent, ok := b.content(script)
		if !ok || !ScriptInjectsStyles(scriptContent) {
			continue
		}
		for _, href := range ExtractInjectedHrefs(scriptContent) {
			if path, ok := b.assets.Resolve(href, script); ok {
				key := walker.NormalizePath(path)
				if !seen[key] {
					seen[key] = true
					page.UncertainCSS = append(page.UncertainCSS, path)
				}
			}
		}
	}

	return page
}

// localScript resolves a script src to a local file; CDN scripts are skipped
func (b *Builder) localScript(src, pagePath string) (string, bool) {
	src = strings.TrimSpace(src)
	if src == "" {
		return "", false
	}
	if i := strings.IndexAny(src, "?#"); i >= 0 {
		src = src[:i]
	}
	lower := strings.ToLower(src)
	if strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://") || strings.HasPrefix(lower, "//") {
		return "", false
	}
	var path string
	if filepath.IsAbs(src) {
		path = src
	} else {
		path = filepath.Join(filepath.Dir(pagePath), strings.TrimPrefix(src, "/"))
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", false
	}
	if _, ok := b.content(abs); !ok {
		return "", false
	}
	return abs, true
}

// content reads a file through the run-scoped cache
func (b *Builder) content(path string) (string, bool) {
	if c, ok := b.contents[path]; ok {
		return c, true
	}
	if b.readErrs[path] {
		return "", false
	}
	c, err := walker.ReadText(path)
	if err != nil {
		b.readErrs[path] = true
		b.log.Debug("unreadable source file", zap.String("path", path), zap.Error(err))
		return "", false
	}
	b.contents[path] = c
	return c, true
}

func isEntryDocument(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".html", ".htm", ".php":
		return true
	}
	return false
}

func isPHPFamily(path string) bool {
	return strings.ToLower(filepath.Ext(path)) == ".php"
}
