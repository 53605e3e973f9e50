// Package analyzer ties file enumeration, CSS parsing, page topology and the
// merge/usage/prefix engines into the three project analyses: duplicates,
// unused selectors and structure.
package analyzer

import (
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"cssaudit/internal/cascade"
	"cssaudit/internal/config"
	"cssaudit/internal/css"
	"cssaudit/internal/pageload"
	"cssaudit/internal/resolver"
	"cssaudit/internal/walker"
)

// Location is a {file, line} pair in a report result. Line 0 means the text
// could not be located in the raw file.
type Location struct {
	File string `json:"file"`
	Line int    `json:"line"`
}

// Analyzer runs project-wide CSS analyses rooted at a directory
type Analyzer struct {
	cfg config.Config
	log *zap.Logger
}

// New creates an analyzer
func New(cfg config.Config, log *zap.Logger) *Analyzer {
	if log == nil {
		log = zap.NewNop()
	}
	return &Analyzer{cfg: cfg, log: log.Named("analyzer")}
}

// project is the shared scan result every analysis starts from
type project struct {
	root        string
	cssFiles    []string
	sourceFiles []string

	sheets      map[string]*css.Stylesheet
	sheetOrder  []string
	cssContents map[string]string

	topo   *pageload.Result
	errors []string
}

// hasTopology reports whether any entry document was found; without one, page
// scoping and chain ordering are unavailable.
func (p *project) hasTopology() bool {
	return len(p.topo.Pages) > 0
}

// scan enumerates and parses the project. The only fatal error is an
// unusable root; per-file read and parse failures are collected and the file
// contributes nothing.
func (a *Analyzer) scan(root string) (*project, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, err
	}
	if _, err := os.Stat(abs); err != nil {
		return nil, fmt.Errorf("analysis root: %w", err)
	}

	p := &project{
		root:        abs,
		sheets:      make(map[string]*css.Stylesheet),
		cssContents: make(map[string]string),
	}

	w := walker.New(a.cfg, a.log)
	p.cssFiles, err = w.CSSFiles(abs)
	if err != nil && p.cssFiles == nil {
		return nil, err
	} else if err != nil {
		a.log.Debug("walk reported errors", zap.String("root", abs), zap.Error(err))
	}
	p.sourceFiles, err = w.SourceFiles(abs)
	if err != nil && p.sourceFiles == nil {
		return nil, err
	} else if err != nil {
		a.log.Debug("walk reported errors", zap.String("root", abs), zap.Error(err))
	}

	parser := css.NewParser(a.log)
	for _, file := range p.cssFiles {
		content, err := walker.ReadText(file)
		if err != nil {
			p.errors = append(p.errors, fmt.Sprintf("%s: %v", file, err))
			continue
		}
		sheet, err := parser.Parse([]byte(content), file)
		if err != nil {
			p.errors = append(p.errors, fmt.Sprintf("%s: %v", file, err))
			continue
		}
		p.cssContents[file] = content
		p.sheets[file] = sheet
		p.sheetOrder = append(p.sheetOrder, file)
	}

	assets := resolver.NewAssets(abs, p.cssFiles, a.cfg.MaxUpwardLevels, a.log)
	imports := resolver.NewImports(a.cfg, a.log)
	p.topo = pageload.NewBuilder(a.cfg, assets, imports, a.log).Build(p.cssFiles, p.sourceFiles)

	a.log.Debug("project scanned",
		zap.Int("css_files", len(p.cssFiles)),
		zap.Int("source_files", len(p.sourceFiles)),
		zap.Int("pages", len(p.topo.Pages)),
		zap.Int("errors", len(p.errors)))
	return p, nil
}

// occurrences is every selector, media query and comment appearance across
// parsed stylesheets, with located lines. Keys keep insertion order for
// deterministic reports.
type occurrences struct {
	selectors     map[string][]cascade.Occurrence
	selectorOrder []string
	media         map[string][]Location
	mediaOrder    []string
	comments      map[string][]Location
	commentOrder  []string
}

func (a *Analyzer) collect(p *project) *occurrences {
	occ := &occurrences{
		selectors: make(map[string][]cascade.Occurrence),
		media:     make(map[string][]Location),
		comments:  make(map[string][]Location),
	}
	locator := css.NewLocator()

	for _, file := range p.sheetOrder {
		sheet := p.sheets[file]
		content := p.cssContents[file]

		for _, rule := range sheet.StyleRules() {
			line := locator.Line(file, content, rule.Selector, css.LocSelector)
			if _, seen := occ.selectors[rule.Selector]; !seen {
				occ.selectorOrder = append(occ.selectorOrder, rule.Selector)
			}
			occ.selectors[rule.Selector] = append(occ.selectors[rule.Selector], cascade.Occurrence{
				File:         file,
				Line:         line,
				Declarations: rule.Declarations,
			})
		}

		for _, block := range sheet.MediaBlocks() {
			key := "@media " + block.Query
			line := locator.Line(file, content, key, css.LocMedia)
			if _, seen := occ.media[key]; !seen {
				occ.mediaOrder = append(occ.mediaOrder, key)
			}
			occ.media[key] = append(occ.media[key], Location{File: file, Line: line})
		}

		for _, comment := range sheet.Comments() {
			line := locator.Line(file, content, comment.Text, css.LocComment)
			if _, seen := occ.comments[comment.Text]; !seen {
				occ.commentOrder = append(occ.commentOrder, comment.Text)
			}
			occ.comments[comment.Text] = append(occ.comments[comment.Text], Location{File: file, Line: line})
		}
	}

	return occ
}

// globalRanks maps each normalized stylesheet path to its minimum position
// across all page chains. Files no page loads stay unranked.
func globalRanks(topo *pageload.Result) map[string]int {
	rank := make(map[string]int)
	for _, path := range topo.PageOrder {
		for i, f := range topo.Pages[path].CSSChain {
			key := walker.NormalizePath(f)
			if r, ok := rank[key]; !ok || i < r {
				rank[key] = i
			}
		}
	}
	return rank
}
