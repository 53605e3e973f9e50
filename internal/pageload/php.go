package pageload

import (
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"go.uber.org/zap"
)

// Server-side handling: bounded include traversal plus the two-phase
// register/enqueue protocol. Enqueue may name a handle registered in a
// different include, so registrations and enqueue events are collected across
// every reachable file before any handle is resolved.

var (
	constConcatRe  = regexp.MustCompile(`\b([A-Za-z_][A-Za-z0-9_]*)\s*\.\s*['"]([^'"]+\.css)['"]`)
	pluginsURLRe   = regexp.MustCompile(`(?i)\bplugins_url\s*\(\s*['"]([^'"]+\.css)['"]`)
	dirURLConcatRe = regexp.MustCompile(`(?i)\bplugin_dir_(?:url|path)\s*\(\s*__FILE__\s*\)\s*\.\s*['"]([^'"]+\.css)['"]`)
	themeConcatRe  = regexp.MustCompile(`(?i)\bget_(?:template|stylesheet)_directory(?:_uri)?\s*\(\s*\)\s*\.\s*['"]([^'"]+\.css)['"]`)
	literalCSSRe   = regexp.MustCompile(`['"]([^'"]+\.css)['"]`)
)

// enqueueEvent is one resolved-or-pending stylesheet inclusion from the
// server-side scan, in declaration order.
type enqueueEvent struct {
	handle string // set when the enqueue references a registered handle
	path   string // set when the enqueue carried its own path expression
}

// scanServerSide walks a PHP entry document and its statically-determinable
// includes (bounded depth), collecting register/enqueue calls. It returns the
// stylesheet paths to append to the page chain, in enqueue-declaration order.
func (b *Builder) scanServerSide(pagePath string) []string {
	reachable := b.collectIncludes(pagePath, b.cfg.IncludeDepth)

	handles := make(map[string]string) // handle -> resolved path
	var events []enqueueEvent

	for _, file := range reachable {
		content, ok := b.content(file)
		if !ok {
			continue
		}

		for _, reg := range ExtractStyleRegistrations(content) {
			if _, seen := handles[reg.Handle]; seen {
				continue
			}
			if path, ok := b.resolveStyleExpr(reg.Expr, file); ok {
				handles[reg.Handle] = path
			}
		}

		for _, enq := range ExtractStyleEnqueues(content) {
			if enq.Expr != "" {
				if path, ok := b.resolveStyleExpr(enq.Expr, file); ok {
					events = append(events, enqueueEvent{path: path})
					continue
				}
			}
			events = append(events, enqueueEvent{handle: enq.Handle})
		}
	}

	// Second phase: resolve handle-only enqueues now that every reachable
	// registration has been seen
	var chain []string
	for _, ev := range events {
		switch {
		case ev.path != "":
			chain = append(chain, ev.path)
		default:
			if path, ok := handles[ev.handle]; ok {
				chain = append(chain, path)
			} else {
				b.log.Debug("enqueued handle never registered",
					zap.String("page", pagePath), zap.String("handle", ev.handle))
			}
		}
	}
	return chain
}

// collectIncludes returns pagePath plus its include closure up to depth
// levels, in discovery order. Unresolvable includes are skipped silently.
func (b *Builder) collectIncludes(pagePath string, depth int) []string {
	files := []string{pagePath}
	seen := map[string]bool{strings.ToLower(filepath.Clean(pagePath)): true}

	frontier := []string{pagePath}
	for level := 0; level < depth && len(frontier) > 0; level++ {
		var next []string
		for _, file := range frontier {
			content, ok := b.content(file)
			if !ok {
				continue
			}
			for _, ref := range ExtractIncludes(content) {
				target, ok := resolveInclude(ref, file)
				if !ok {
					continue
				}
				key := strings.ToLower(filepath.Clean(target))
				if seen[key] {
					continue
				}
				seen[key] = true
				files = append(files, target)
				next = append(next, target)
			}
		}
		frontier = next
	}
	return files
}

// resolveInclude maps an include reference to an existing file. Every
// supported base expression evaluates to the including file's directory;
// a plain literal resolves relative to it as well.
func resolveInclude(ref IncludeRef, fromFile string) (string, bool) {
	tail := strings.TrimPrefix(ref.Path, "/")
	path := filepath.Join(filepath.Dir(fromFile), tail)
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

// resolveStyleExpr resolves the path-argument blob of a register/enqueue call.
// Recognized shapes, most specific first: CONSTANT . 'tail', plugin dir/url
// concatenation, plugins_url('tail', ...), theme-directory concatenation, and
// a bare quoted literal.
func (b *Builder) resolveStyleExpr(expr, fromFile string) (string, bool) {
	if m := dirURLConcatRe.FindStringSubmatch(expr); m != nil {
		if path, ok := b.assets.Resolve(m[1], fromFile); ok {
			return path, true
		}
		return b.assets.ResolveTail(m[1], fromFile)
	}
	if m := pluginsURLRe.FindStringSubmatch(expr); m != nil {
		if path, ok := b.assets.Resolve(m[1], fromFile); ok {
			return path, true
		}
		return b.assets.ResolveTail(m[1], fromFile)
	}
	if m := themeConcatRe.FindStringSubmatch(expr); m != nil {
		return b.assets.ResolveTail(m[1], fromFile)
	}
	if m := constConcatRe.FindStringSubmatch(expr); m != nil {
		return b.assets.ResolveConst(m[1], m[2], fromFile)
	}
	if m := literalCSSRe.FindStringSubmatch(expr); m != nil {
		if path, ok := b.assets.Resolve(m[1], fromFile); ok {
			return path, true
		}
		return b.assets.ResolveTail(m[1], fromFile)
	}
	return "", false
}
