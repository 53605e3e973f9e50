package html

import (
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// Document wraps a parsed HTML entry document and exposes the stylesheet and
// script references the page-load analysis needs, in document order.
type Document struct {
	doc *goquery.Document
}

// Parse parses an HTML string into a Document
func Parse(content string) (*Document, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(content))
	if err != nil {
		return nil, fmt.Errorf("failed to parse HTML: %w", err)
	}
	return &Document{doc: doc}, nil
}

// StylesheetLinks returns the href attribute of every
// <link rel="stylesheet" href=...> in document order. Empty hrefs are skipped.
func (d *Document) StylesheetLinks() []string {
	var hrefs []string
	d.doc.Find("link[href]").Each(func(_ int, s *goquery.Selection) {
		rel, _ := s.Attr("rel")
		if !strings.Contains(strings.ToLower(rel), "stylesheet") {
			return
		}
		href, _ := s.Attr("href")
		href = strings.TrimSpace(href)
		if href != "" {
			hrefs = append(hrefs, href)
		}
	})
	return hrefs
}

// StyleBlocks returns the raw text of every <style> element in document order
func (d *Document) StyleBlocks() []string {
	var blocks []string
	d.doc.Find("style").Each(func(_ int, s *goquery.Selection) {
		text := s.Text()
		if strings.TrimSpace(text) != "" {
			blocks = append(blocks, text)
		}
	})
	return blocks
}

// ScriptSources returns the src attribute of every <script src=...> in
// document order.
func (d *Document) ScriptSources() []string {
	var srcs []string
	d.doc.Find("script[src]").Each(func(_ int, s *goquery.Selection) {
		src, _ := s.Attr("src")
		src = strings.TrimSpace(src)
		if src != "" {
			srcs = append(srcs, src)
		}
	})
	return srcs
}
