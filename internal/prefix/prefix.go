// Package prefix decomposes selector tokens into cumulative naming-convention
// prefixes for structural reporting: separator-delimited names split on runs
// of "-"/"_", separator-free names split on camelCase and digit boundaries.
package prefix

import (
	"regexp"
	"strings"
	"unicode"
)

var separatorRe = regexp.MustCompile(`[-_]+`)

// Prefixes returns the cumulative prefixes of one bare token (no sigil),
// shortest first, joined with "_". Single-part tokens yield none. Duplicate
// prefixes within one token are suppressed.
func Prefixes(token string) []string {
	var parts []string
	if strings.ContainsAny(token, "-_") {
		parts = separatorRe.Split(token, -1)
		parts = compact(parts)
	} else {
		parts = chunk(token)
		for i, p := range parts {
			parts[i] = strings.ToLower(p)
		}
	}
	if len(parts) < 2 {
		return nil
	}

	var prefixes []string
	seen := make(map[string]bool, len(parts)-1)
	for i := 1; i < len(parts); i++ {
		p := strings.Join(parts[:i], "_")
		if !seen[p] {
			seen[p] = true
			prefixes = append(prefixes, p)
		}
	}
	return prefixes
}

// Collector aggregates prefix counts and example groups across the token
// universe
type Collector struct {
	Counts map[string]int
	Groups map[string][]string
}

// NewCollector creates an empty collector
func NewCollector() *Collector {
	return &Collector{
		Counts: make(map[string]int),
		Groups: make(map[string][]string),
	}
}

// Add decomposes one labeled token (".name" or "#name") and records its
// prefixes
func (c *Collector) Add(labeled string) {
	bare := labeled
	if strings.HasPrefix(bare, ".") || strings.HasPrefix(bare, "#") {
		bare = bare[1:]
	}
	for _, p := range Prefixes(bare) {
		c.Counts[p]++
		c.Groups[p] = append(c.Groups[p], labeled)
	}
}

// chunk splits a separator-free token on camelCase, PascalCase and digit-run
// boundaries. An uppercase run followed by lowercase leaves its final letter
// to the lowercase chunk ("HTTPServer" yields "HTTP", "Server").
func chunk(token string) []string {
	rs := []rune(token)
	var chunks []string
	i := 0
	for i < len(rs) {
		switch {
		case unicode.IsDigit(rs[i]):
			j := i
			for j < len(rs) && unicode.IsDigit(rs[j]) {
				j++
			}
			chunks = append(chunks, string(rs[i:j]))
			i = j

		case unicode.IsUpper(rs[i]):
			j := i
			for j < len(rs) && unicode.IsUpper(rs[j]) {
				j++
			}
			if j < len(rs) && unicode.IsLower(rs[j]) {
				if j-i > 1 {
					chunks = append(chunks, string(rs[i:j-1]))
					i = j - 1
				}
				k := i + 1
				for k < len(rs) && unicode.IsLower(rs[k]) {
					k++
				}
				chunks = append(chunks, string(rs[i:k]))
				i = k
			} else {
				chunks = append(chunks, string(rs[i:j]))
				i = j
			}

		case unicode.IsLower(rs[i]):
			j := i
			for j < len(rs) && unicode.IsLower(rs[j]) {
				j++
			}
			chunks = append(chunks, string(rs[i:j]))
			i = j

		default:
			i++
		}
	}
	return chunks
}

// compact drops empty parts produced by leading/trailing separators
func compact(parts []string) []string {
	kept := parts[:0]
	for _, p := range parts {
		if p != "" {
			kept = append(kept, p)
		}
	}
	return kept
}
