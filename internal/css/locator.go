package css

import (
	"regexp"
	"strings"
)

// LocKind selects the search pattern used to find a rule's text in raw CSS
type LocKind int

const (
	LocSelector LocKind = iota // selector text followed by "{"
	LocMedia                   // "@media <query>" text
	LocComment                 // raw comment text
)

// Locator finds best-effort line numbers for parsed rule text in raw file
// content. Repeated identical text in one file is disambiguated by a per-file,
// per-key forward cursor: each lookup returns the next occurrence after the
// previous match. Scoped to a single analysis run; 0 signals "not found".
type Locator struct {
	cursors map[string]map[string]int // file -> key -> offset past last match
}

// NewLocator creates an empty locator
func NewLocator() *Locator {
	return &Locator{cursors: make(map[string]map[string]int)}
}

// Line returns the 1-based line of the next occurrence of key in content,
// advancing the cursor for (file, key).
func (l *Locator) Line(file, content, key string, kind LocKind) int {
	re, err := regexp.Compile(l.pattern(key, kind))
	if err != nil {
		return 0
	}

	matches := re.FindAllStringIndex(content, -1)
	if len(matches) == 0 {
		return 0
	}

	fileCursors := l.cursors[file]
	if fileCursors == nil {
		fileCursors = make(map[string]int)
		l.cursors[file] = fileCursors
	}

	last := fileCursors[key]
	for _, m := range matches {
		if m[0] >= last {
			fileCursors[key] = m[1]
			return strings.Count(content[:m[0]], "\n") + 1
		}
	}
	return 0
}

// pattern builds the search regex for a key. Parsed selector text has its
// whitespace collapsed, so literal spaces match any whitespace run in source.
func (l *Locator) pattern(key string, kind LocKind) string {
	quoted := regexp.QuoteMeta(key)
	quoted = strings.ReplaceAll(quoted, " ", `\s+`)
	// Source text may write selector groups without a space after the comma
	quoted = strings.ReplaceAll(quoted, `,\s+`, `,\s*`)
	if kind == LocSelector {
		quoted += `\s*\{`
	}
	return quoted
}
