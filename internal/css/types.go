package css

import (
	"strings"
)

// Declaration represents a single CSS property declaration
type Declaration struct {
	Property  string // CSS property name (lowercased)
	Value     string // CSS property value with any !important suffix stripped
	Important bool   // !important flag
}

// Rule represents a single style rule with its selector text and declarations.
// Selector text is whitespace-collapsed but otherwise kept exactly as parsed,
// so textually different yet equivalent selectors stay distinct keys.
type Rule struct {
	Selector     string
	Declarations []Declaration // source order preserved
}

// MediaBlock represents an @media container rule and its nested style rules
type MediaBlock struct {
	Query string
	Rules []Rule
}

// Comment represents a /* ... */ comment, raw text included
type Comment struct {
	Text string
}

// Item is one entry of a parsed stylesheet. Exactly one field is non-nil,
// so merge-capable rules and plain locations are distinguished by type
// rather than by a runtime key check.
type Item struct {
	Rule    *Rule
	Media   *MediaBlock
	Comment *Comment
	Import  *string
}

// Stylesheet is the parsed form of one CSS file
type Stylesheet struct {
	Items   []Item
	Imports []string // @import targets in source order
}

// StyleRules returns all style rules including those nested in media blocks,
// in source order.
func (s *Stylesheet) StyleRules() []Rule {
	var rules []Rule
	for _, item := range s.Items {
		switch {
		case item.Rule != nil:
			rules = append(rules, *item.Rule)
		case item.Media != nil:
			rules = append(rules, item.Media.Rules...)
		}
	}
	return rules
}

// Comments returns all comments in source order
func (s *Stylesheet) Comments() []Comment {
	var comments []Comment
	for _, item := range s.Items {
		if item.Comment != nil {
			comments = append(comments, *item.Comment)
		}
	}
	return comments
}

// MediaBlocks returns all media container rules in source order
func (s *Stylesheet) MediaBlocks() []MediaBlock {
	var blocks []MediaBlock
	for _, item := range s.Items {
		if item.Media != nil {
			blocks = append(blocks, *item.Media)
		}
	}
	return blocks
}

// FormatRule renders a rule block as "selector { prop: value; ... }" with
// properties in the given declaration order.
func FormatRule(selector string, decls []Declaration) string {
	var b strings.Builder
	b.WriteString(selector)
	b.WriteString(" {")
	for _, d := range decls {
		b.WriteString(" ")
		b.WriteString(d.Property)
		b.WriteString(": ")
		b.WriteString(d.Value)
		if d.Important {
			b.WriteString(" !important")
		}
		b.WriteString(";")
	}
	b.WriteString(" }")
	return b.String()
}
