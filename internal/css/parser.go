package css

import (
	"bytes"
	"io"
	"strings"

	parse "github.com/tdewolff/parse/v2"
	cssparse "github.com/tdewolff/parse/v2/css"
	"go.uber.org/zap"
)

// Parser parses CSS text into the rule/declaration AST the analyzers consume.
// It is a thin adapter over the tdewolff grammar stream; malformed input never
// fails the batch, the parser returns whatever it understood plus the error.
type Parser struct {
	log *zap.Logger
}

// NewParser creates a new CSS parser
func NewParser(log *zap.Logger) *Parser {
	if log == nil {
		log = zap.NewNop()
	}
	return &Parser{log: log.Named("css-parser")}
}

// Parse parses CSS text into a Stylesheet. The source parameter identifies
// what is being parsed for debug logging. A non-nil error means the grammar
// stream ended abnormally; the partial stylesheet is still returned.
func (p *Parser) Parse(data []byte, source string) (*Stylesheet, error) {
	sheet := &Stylesheet{}

	if source != "" {
		p.log.Debug("parsing CSS", zap.String("source", source), zap.Int("bytes", len(data)))
	}

	input := parse.NewInput(bytes.NewReader(data))
	parser := cssparse.NewParser(input, false)

	var selectorParts []string

	for {
		gt, _, tokenData := parser.Next()

		switch gt {
		case cssparse.ErrorGrammar:
			err := parser.Err()
			if err == io.EOF {
				return sheet, nil
			}
			p.log.Debug("CSS parse error", zap.String("source", source), zap.Error(err))
			return sheet, err

		case cssparse.CommentGrammar:
			text := strings.TrimSpace(string(tokenData))
			if text != "" {
				sheet.Items = append(sheet.Items, Item{Comment: &Comment{Text: text}})
			}

		case cssparse.AtRuleGrammar:
			// Simple @-rule without a block, e.g. @import or @charset
			if string(tokenData) == "@import" {
				if url := importTarget(parser.Values()); url != "" {
					sheet.Items = append(sheet.Items, Item{Import: &url})
					sheet.Imports = append(sheet.Imports, url)
				}
			}

		case cssparse.BeginAtRuleGrammar:
			if string(tokenData) == "@media" {
				query := tokensText(parser.Values())
				block := &MediaBlock{Query: query}
				p.parseMediaBlock(parser, block, sheet)
				sheet.Items = append(sheet.Items, Item{Media: block})
			} else {
				skipAtRuleBlock(parser)
			}

		case cssparse.QualifiedRuleGrammar:
			// One selector of a comma-separated group; the final one arrives
			// with BeginRulesetGrammar
			selectorParts = append(selectorParts, selectorText(tokenData, parser.Values()))

		case cssparse.BeginRulesetGrammar:
			selectorParts = append(selectorParts, selectorText(tokenData, parser.Values()))
			rule := Rule{Selector: strings.Join(selectorParts, ", ")}
			rule.Declarations = p.parseDeclarations(parser)
			sheet.Items = append(sheet.Items, Item{Rule: &rule})
			selectorParts = nil
		}
	}
}

// parseMediaBlock consumes rules nested in an @media block until the matching
// end of the block. Nested at-rules (@supports and friends) end with their own
// EndAtRuleGrammar, so the depth count decides which one closes the block.
func (p *Parser) parseMediaBlock(parser *cssparse.Parser, block *MediaBlock, sheet *Stylesheet) {
	var selectorParts []string
	depth := 0

	for {
		gt, _, tokenData := parser.Next()

		switch gt {
		case cssparse.ErrorGrammar:
			return

		case cssparse.BeginAtRuleGrammar:
			depth++

		case cssparse.EndAtRuleGrammar:
			if depth == 0 {
				return
			}
			depth--

		case cssparse.CommentGrammar:
			text := strings.TrimSpace(string(tokenData))
			if text != "" {
				sheet.Items = append(sheet.Items, Item{Comment: &Comment{Text: text}})
			}

		case cssparse.QualifiedRuleGrammar:
			selectorParts = append(selectorParts, selectorText(tokenData, parser.Values()))

		case cssparse.BeginRulesetGrammar:
			selectorParts = append(selectorParts, selectorText(tokenData, parser.Values()))
			rule := Rule{Selector: strings.Join(selectorParts, ", ")}
			rule.Declarations = p.parseDeclarations(parser)
			block.Rules = append(block.Rules, rule)
			selectorParts = nil
		}
	}
}

// parseDeclarations consumes property declarations until the end of a ruleset
func (p *Parser) parseDeclarations(parser *cssparse.Parser) []Declaration {
	var decls []Declaration

	for {
		gt, _, tokenData := parser.Next()

		switch gt {
		case cssparse.ErrorGrammar, cssparse.EndRulesetGrammar:
			return decls

		case cssparse.DeclarationGrammar:
			property := strings.ToLower(strings.TrimSpace(string(tokenData)))
			value, important := declarationValue(parser.Values())
			if property == "" || value == "" {
				continue
			}
			decls = append(decls, Declaration{
				Property:  property,
				Value:     value,
				Important: important,
			})
		}
	}
}

// declarationValue joins value tokens into a string, detecting and stripping a
// trailing !important.
func declarationValue(tokens []cssparse.Token) (string, bool) {
	important := false

	// Trailing "!" ident:"important" pair, whitespace tokens allowed between
	end := len(tokens)
	for i := len(tokens) - 1; i > 0; i-- {
		t := tokens[i]
		if t.TokenType == cssparse.WhitespaceToken {
			continue
		}
		if t.TokenType == cssparse.IdentToken && strings.EqualFold(string(t.Data), "important") {
			for j := i - 1; j >= 0; j-- {
				prev := tokens[j]
				if prev.TokenType == cssparse.WhitespaceToken {
					continue
				}
				if prev.TokenType == cssparse.DelimToken && string(prev.Data) == "!" {
					important = true
					end = j
				}
				break
			}
		}
		break
	}

	return tokensText(tokens[:end]), important
}

// tokensText joins token data with whitespace runs collapsed to single spaces
func tokensText(tokens []cssparse.Token) string {
	var b strings.Builder
	for _, t := range tokens {
		if t.TokenType == cssparse.WhitespaceToken {
			if b.Len() > 0 {
				b.WriteByte(' ')
			}
			continue
		}
		b.Write(t.Data)
	}
	return strings.TrimSpace(b.String())
}

// selectorText builds the selector string for one ruleset prelude. The
// grammar stream drops whitespace after group commas, so a space is
// reinstated behind each comma token.
func selectorText(data []byte, tokens []cssparse.Token) string {
	var b strings.Builder
	b.Write(data)
	for _, t := range tokens {
		if t.TokenType == cssparse.WhitespaceToken {
			b.WriteByte(' ')
			continue
		}
		b.Write(t.Data)
		if t.TokenType == cssparse.CommaToken {
			b.WriteByte(' ')
		}
	}
	s := strings.Join(strings.Fields(strings.TrimSuffix(strings.TrimSpace(b.String()), ",")), " ")
	return strings.ReplaceAll(s, " ,", ",")
}

// importTarget extracts the URL from @import prelude tokens.
// Handles @import "url"; and @import url(url);
func importTarget(tokens []cssparse.Token) string {
	for _, t := range tokens {
		switch t.TokenType {
		case cssparse.StringToken:
			return unquote(string(t.Data))
		case cssparse.URLToken:
			s := string(t.Data)
			s = strings.TrimPrefix(s, "url(")
			s = strings.TrimSuffix(s, ")")
			return unquote(strings.TrimSpace(s))
		}
	}
	return ""
}

// skipAtRuleBlock skips tokens until the matching end of an @-rule block
func skipAtRuleBlock(parser *cssparse.Parser) {
	depth := 1
	for depth > 0 {
		gt, _, _ := parser.Next()
		switch gt {
		case cssparse.ErrorGrammar:
			return
		case cssparse.BeginAtRuleGrammar, cssparse.BeginRulesetGrammar:
			depth++
		case cssparse.EndAtRuleGrammar, cssparse.EndRulesetGrammar:
			depth--
		}
	}
}

// unquote removes surrounding single or double quotes
func unquote(s string) string {
	s = strings.TrimSpace(s)
	if len(s) < 2 {
		return s
	}
	if (s[0] == '"' && s[len(s)-1] == '"') ||
		(s[0] == '\'' && s[len(s)-1] == '\'') {
		return s[1 : len(s)-1]
	}
	return s
}
