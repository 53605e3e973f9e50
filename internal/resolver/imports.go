package resolver

import (
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"go.uber.org/zap"

	"cssaudit/internal/config"
	"cssaudit/internal/walker"
)

var importRe = regexp.MustCompile(`(?i)@import\s+(?:url\(\s*)?['"]?([^'")\s;]+)['"]?\s*\)?[^;]*;`)

// Imports flattens a stylesheet's @import graph into a dependency-ordered
// sequence: imported sheets appear before their importer, replicating cascade
// precedence. The resolver is stateless across calls; each Resolve rebuilds
// its visited set.
type Imports struct {
	cfg config.Config
	log *zap.Logger
}

// NewImports creates an import-chain resolver
func NewImports(cfg config.Config, log *zap.Logger) *Imports {
	if log == nil {
		log = zap.NewNop()
	}
	return &Imports{cfg: cfg, log: log.Named("imports")}
}

// Resolve expands entrySheet's import graph depth-first. Every reachable sheet
// appears exactly once; cycles (including self-imports) are broken silently by
// the visited set. Nonexistent and non-CSS-family targets are skipped.
func (r *Imports) Resolve(entrySheet string) []string {
	var chain []string
	visited := make(map[string]bool)
	r.expand(entrySheet, visited, &chain)
	return chain
}

// ImportTargets returns the raw @import target strings found in a CSS text by
// textual scan. Exposed separately so inline <style> blocks can reuse it.
func ImportTargets(content string) []string {
	var targets []string
	for _, m := range importRe.FindAllStringSubmatch(content, -1) {
		if t := strings.TrimSpace(m[1]); t != "" {
			targets = append(targets, t)
		}
	}
	return targets
}

func (r *Imports) expand(sheet string, visited map[string]bool, chain *[]string) {
	key := walker.NormalizePath(sheet)
	if visited[key] {
		return
	}
	visited[key] = true

	content, err := walker.ReadText(sheet)
	if err != nil {
		r.log.Debug("unreadable stylesheet in import chain", zap.String("sheet", sheet), zap.Error(err))
		// Still part of the chain; only its imports are unknowable
		*chain = append(*chain, sheet)
		return
	}

	for _, target := range ImportTargets(content) {
		if isURL(target) {
			continue
		}
		if !r.cfg.IsCSSExtension(strings.ToLower(filepath.Ext(cleanRef(target)))) {
			continue
		}
		resolved, ok := r.resolveTarget(target, sheet)
		if !ok {
			continue
		}
		r.expand(resolved, visited, chain)
	}

	*chain = append(*chain, sheet)
}

// resolveTarget maps an @import target to a file relative to the importing
// sheet. Missing targets are expected noise, not errors.
func (r *Imports) resolveTarget(target, fromSheet string) (string, bool) {
	target = cleanRef(target)
	var path string
	if filepath.IsAbs(target) {
		path = target
	} else {
		path = filepath.Join(filepath.Dir(fromSheet), target)
	}
	info, err := os.Stat(path)
	if err != nil || info.IsDir() {
		return "", false
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", false
	}
	return abs, true
}
