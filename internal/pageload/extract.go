package pageload

import (
	"regexp"
	"strings"
)

// Each extraction heuristic lives behind its own named function so the
// patterns can be unit-tested and swapped individually. These are best-effort
// textual scans, not HTML/PHP parsers; PHP-family documents cannot go through
// an HTML tokenizer because server tags inside attributes break it.

var (
	linkTagRe   = regexp.MustCompile(`(?is)<link\b[^>]*>`)
	relAttrRe   = regexp.MustCompile(`(?is)\brel\s*=\s*["']?([^"'>\s]+)`)
	hrefAttrRe  = regexp.MustCompile(`(?is)\bhref\s*=\s*["']?([^"'>\s]+)`)
	styleTagRe  = regexp.MustCompile(`(?is)<style\b[^>]*>(.*?)</style>`)
	scriptSrcRe = regexp.MustCompile(`(?is)<script\b[^>]*\bsrc\s*=\s*["']([^"']+)["']`)

	includeRe = regexp.MustCompile(`(?i)\b(?:include|require)(?:_once)?\s*\(?\s*` +
		`(?:(dirname\s*\(\s*__FILE__\s*\)|__DIR__|plugin_dir_path\s*\(\s*__FILE__\s*\)|get_template_directory\s*\(\s*\)|get_stylesheet_directory\s*\(\s*\))\s*\.\s*)?` +
		`['"]([^'"]+\.php)['"]`)

	registerStyleRe = regexp.MustCompile(`(?is)\bwp_register_style\s*\(\s*['"]([^'"]+)['"]\s*,\s*([^;]+?)\)\s*;`)
	enqueueStyleRe  = regexp.MustCompile(`(?is)\bwp_enqueue_style\s*\(\s*['"]([^'"]+)['"]\s*(?:,\s*([^;]+?))?\)\s*;`)

	createLinkRe    = regexp.MustCompile(`(?i)createElement\s*\(\s*['"]link['"]\s*\)`)
	relStylesheetRe = regexp.MustCompile(`(?i)(?:setAttribute\s*\(\s*['"]rel['"]\s*,\s*['"]stylesheet['"]\s*\)|\.rel\s*=\s*['"]stylesheet['"])`)
	injectedHrefRe  = regexp.MustCompile(`(?i)\.href\s*=\s*['"]([^'"]*\.css[^'"]*)['"]`)
	setAttrHrefRe   = regexp.MustCompile(`(?i)setAttribute\s*\(\s*['"]href['"]\s*,\s*['"]([^'"]*\.css[^'"]*)['"]\s*\)`)
)

// ExtractLinkHrefs returns the href of every <link rel=stylesheet> tag in
// document order, case-insensitively.
func ExtractLinkHrefs(content string) []string {
	var hrefs []string
	for _, tag := range linkTagRe.FindAllString(content, -1) {
		rel := relAttrRe.FindStringSubmatch(tag)
		if rel == nil || !strings.Contains(strings.ToLower(rel[1]), "stylesheet") {
			continue
		}
		if href := hrefAttrRe.FindStringSubmatch(tag); href != nil {
			hrefs = append(hrefs, strings.TrimSpace(href[1]))
		}
	}
	return hrefs
}

// ExtractStyleBlocks returns the body of every <style> block in document order
func ExtractStyleBlocks(content string) []string {
	var blocks []string
	for _, m := range styleTagRe.FindAllStringSubmatch(content, -1) {
		if strings.TrimSpace(m[1]) != "" {
			blocks = append(blocks, m[1])
		}
	}
	return blocks
}

// ExtractScriptSrcs returns every <script src=...> value in document order
func ExtractScriptSrcs(content string) []string {
	var srcs []string
	for _, m := range scriptSrcRe.FindAllStringSubmatch(content, -1) {
		srcs = append(srcs, strings.TrimSpace(m[1]))
	}
	return srcs
}

// IncludeRef is one statically-determinable include/require target
type IncludeRef struct {
	// Base is the PHP directory expression preceding the literal, empty for a
	// plain literal include
	Base string
	Path string
}

// ExtractIncludes returns include/require targets with literal paths,
// including the dirname(__FILE__)/__DIR__/plugin_dir_path concatenation forms.
func ExtractIncludes(content string) []IncludeRef {
	var refs []IncludeRef
	for _, m := range includeRe.FindAllStringSubmatch(content, -1) {
		refs = append(refs, IncludeRef{Base: strings.TrimSpace(m[1]), Path: m[2]})
	}
	return refs
}

// StyleRegistration is one wp_register_style call: handle plus the raw path
// argument expression.
type StyleRegistration struct {
	Handle string
	Expr   string
}

// StyleEnqueue is one wp_enqueue_style call. Expr is empty when the call
// references a previously registered handle.
type StyleEnqueue struct {
	Handle string
	Expr   string
}

// ExtractStyleRegistrations returns register-style calls in source order
func ExtractStyleRegistrations(content string) []StyleRegistration {
	var regs []StyleRegistration
	for _, m := range registerStyleRe.FindAllStringSubmatch(content, -1) {
		regs = append(regs, StyleRegistration{Handle: m[1], Expr: strings.TrimSpace(m[2])})
	}
	return regs
}

// ExtractStyleEnqueues returns enqueue-style calls in source order
func ExtractStyleEnqueues(content string) []StyleEnqueue {
	var enqs []StyleEnqueue
	for _, m := range enqueueStyleRe.FindAllStringSubmatch(content, -1) {
		enqs = append(enqs, StyleEnqueue{Handle: m[1], Expr: strings.TrimSpace(m[2])})
	}
	return enqs
}

// ScriptInjectsStyles reports whether a script's text matches the dynamic
// stylesheet-injection pattern: it creates a link element and marks it as a
// stylesheet.
func ScriptInjectsStyles(content string) bool {
	return createLinkRe.MatchString(content) && relStylesheetRe.MatchString(content)
}

// ExtractInjectedHrefs returns literal .css href assignments found in a
// script that injects styles. Execution-time position in the cascade is
// unknowable statically, so these feed the uncertain set only.
func ExtractInjectedHrefs(content string) []string {
	var hrefs []string
	for _, m := range injectedHrefRe.FindAllStringSubmatch(content, -1) {
		hrefs = append(hrefs, strings.TrimSpace(m[1]))
	}
	for _, m := range setAttrHrefRe.FindAllStringSubmatch(content, -1) {
		hrefs = append(hrefs, strings.TrimSpace(m[1]))
	}
	return hrefs
}
