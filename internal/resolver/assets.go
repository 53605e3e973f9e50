// Package resolver maps stylesheet references found in markup and server-side
// code onto concrete files in the project tree, and flattens @import graphs
// into load order.
package resolver

import (
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"go.uber.org/zap"

	"cssaudit/internal/walker"
)

// Assets resolves reference strings (link hrefs, import targets, framework
// call arguments) into absolute filesystem paths. Resolution never fails hard:
// an unresolved reference means "skip, do not include in the chain".
type Assets struct {
	root            string
	cssFiles        []string          // absolute paths of every CSS file under root
	consts          map[string]string // constant name -> path-like value
	maxUpwardLevels int
	log             *zap.Logger
}

// NewAssets creates an asset resolver over the project's CSS file universe
func NewAssets(root string, cssFiles []string, maxUpwardLevels int, log *zap.Logger) *Assets {
	if log == nil {
		log = zap.NewNop()
	}
	return &Assets{
		root:            root,
		cssFiles:        cssFiles,
		consts:          make(map[string]string),
		maxUpwardLevels: maxUpwardLevels,
		log:             log.Named("assets"),
	}
}

// SetConstants installs the constant definitions collected by ScanConstants
func (a *Assets) SetConstants(consts map[string]string) {
	a.consts = consts
}

// Resolve maps a plain reference string to an absolute path.
// Handles absolute filesystem paths, http(s) and protocol-relative URLs via
// path-suffix search, and paths relative to the referencing file.
func (a *Assets) Resolve(ref, fromFile string) (string, bool) {
	ref = cleanRef(ref)
	if ref == "" {
		return "", false
	}

	if isURL(ref) {
		return a.resolveURL(ref)
	}

	if filepath.IsAbs(ref) || strings.HasPrefix(ref, "/") {
		if path, ok := a.candidate(ref); ok {
			return path, true
		}
		// Site-root-relative reference: fall back to suffix search
		return a.suffixSearch(strings.TrimPrefix(ref, "/"))
	}

	if fromFile != "" {
		if path, ok := a.candidate(filepath.Join(filepath.Dir(fromFile), ref)); ok {
			return path, true
		}
	}
	return a.suffixSearch(ref)
}

// ResolveTail resolves a bare path tail from a framework call with no usable
// base: walk up from the referencing file's directory, bounded, checking
// ancestor/tail at each level.
func (a *Assets) ResolveTail(tail, fromFile string) (string, bool) {
	tail = cleanRef(tail)
	if tail == "" || fromFile == "" {
		return "", false
	}
	tail = strings.TrimPrefix(tail, "/")

	dir := filepath.Dir(fromFile)
	for i := 0; i < a.maxUpwardLevels; i++ {
		if path, ok := a.candidate(filepath.Join(dir, tail)); ok {
			return path, true
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return "", false
}

// ResolveConst resolves a CONSTANT . 'tail' concatenation. A known path-like
// constant supplies the base; otherwise the tail goes through the upward walk.
func (a *Assets) ResolveConst(name, tail, fromFile string) (string, bool) {
	if base, ok := a.consts[name]; ok {
		if isURL(base) {
			return a.resolveURL(strings.TrimSuffix(base, "/") + "/" + strings.TrimPrefix(cleanRef(tail), "/"))
		}
		if path, ok := a.candidate(filepath.Join(base, cleanRef(tail))); ok {
			return path, true
		}
	}
	return a.ResolveTail(tail, fromFile)
}

// resolveURL strips a URL down to its path component and matches it against
// the CSS universe by path suffix. Ties are broken deterministically: shortest
// absolute path first, then lexicographic.
func (a *Assets) resolveURL(ref string) (string, bool) {
	path := ref
	if i := strings.Index(path, "://"); i >= 0 {
		path = path[i+3:]
	} else {
		path = strings.TrimPrefix(path, "//")
	}
	// Drop the host component
	if i := strings.Index(path, "/"); i >= 0 {
		path = path[i+1:]
	} else {
		return "", false
	}
	return a.suffixSearch(path)
}

func (a *Assets) suffixSearch(tail string) (string, bool) {
	tail = strings.ToLower(strings.Trim(filepath.ToSlash(tail), "/"))
	if tail == "" || !strings.HasSuffix(tail, ".css") {
		return "", false
	}

	var matches []string
	for _, f := range a.cssFiles {
		norm := walker.NormalizePath(f)
		if norm == tail || strings.HasSuffix(norm, "/"+tail) {
			matches = append(matches, f)
		}
	}
	if len(matches) == 0 {
		return "", false
	}
	sort.Slice(matches, func(i, j int) bool {
		if len(matches[i]) != len(matches[j]) {
			return len(matches[i]) < len(matches[j])
		}
		return matches[i] < matches[j]
	})
	return matches[0], true
}

// candidate accepts a path if it exists as a regular .css file
func (a *Assets) candidate(path string) (string, bool) {
	if !strings.EqualFold(filepath.Ext(path), ".css") {
		return "", false
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

// cleanRef strips quotes, whitespace and any query/fragment suffix
func cleanRef(ref string) string {
	ref = strings.Trim(strings.TrimSpace(ref), `"'`)
	if i := strings.IndexAny(ref, "?#"); i >= 0 {
		ref = ref[:i]
	}
	return ref
}

func isURL(ref string) bool {
	lower := strings.ToLower(ref)
	return strings.HasPrefix(lower, "http://") ||
		strings.HasPrefix(lower, "https://") ||
		strings.HasPrefix(lower, "//")
}

var (
	defineRe = regexp.MustCompile(`(?i)define\s*\(\s*['"]([A-Za-z_][A-Za-z0-9_]*)['"]\s*,\s*['"]([^'"]+)['"]`)
	constRe  = regexp.MustCompile(`(?m)^\s*const\s+([A-Za-z_][A-Za-z0-9_]*)\s*=\s*['"]([^'"]+)['"]`)
)

// ScanConstants collects constant definitions from server-side sources,
// keeping only path-like values usable as resolution bases. First definition
// of a name wins, matching include order.
func ScanConstants(contents map[string]string, order []string) map[string]string {
	consts := make(map[string]string)
	for _, file := range order {
		content := contents[file]
		for _, re := range []*regexp.Regexp{defineRe, constRe} {
			for _, m := range re.FindAllStringSubmatch(content, -1) {
				name, value := m[1], m[2]
				if _, seen := consts[name]; seen {
					continue
				}
				if strings.ContainsAny(value, `/\`) {
					consts[name] = value
				}
			}
		}
	}
	return consts
}
