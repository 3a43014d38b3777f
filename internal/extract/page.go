package extract

import (
	"fmt"
	"io"
	"maps"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"

	"releasewatch/internal/identity"
	"releasewatch/internal/release"
	"releasewatch/internal/releasedate"
	"releasewatch/internal/textutil"
)

// Page is one parsed author page.
type Page struct {
	URL    string
	Author string
	doc    *goquery.Document
}

// NewPage parses the HTML in r. author is the configured author name and is
// attributed to every draft extracted from the page.
func NewPage(sourceURL, author string, r io.Reader) (*Page, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, fmt.Errorf("parse page html: %w", err)
	}
	return &Page{URL: sourceURL, Author: author, doc: doc}, nil
}

// Document exposes the parsed document.
func (p *Page) Document() *goquery.Document {
	return p.doc
}

func (p *Page) newDraft(title string, date releasedate.Date, confidence release.Confidence, source string, extra map[string]string) release.Draft {
	meta := make(map[string]string, len(extra)+2)
	maps.Copy(meta, extra)
	meta[release.MetaSource] = source
	meta[release.MetaConfidence] = string(confidence)
	d := release.Draft{
		Title:       title,
		Author:      p.Author,
		ReleaseDate: date,
		SourceURL:   p.URL,
		Metadata:    meta,
		Confidence:  confidence,
	}
	d.ID = identity.GenerateID(d.Title, d.Author, identity.YearOf(date))
	return d
}

var skippedElements = map[string]struct{}{
	"script":   {},
	"style":    {},
	"noscript": {},
	"template": {},
}

var blockElements = map[string]struct{}{
	"p": {}, "li": {}, "div": {}, "section": {}, "article": {}, "td": {}, "th": {},
	"dd": {}, "dt": {}, "blockquote": {}, "main": {}, "body": {},
	"h1": {}, "h2": {}, "h3": {}, "h4": {}, "h5": {}, "h6": {},
}

// nodeText returns the visible text beneath n with whitespace collapsed.
// Block boundaries and <br> become spaces; inline markup adds nothing.
func nodeText(n *html.Node) string {
	var b strings.Builder
	var walk func(*html.Node)
	walk = func(node *html.Node) {
		block := false
		if node.Type == html.ElementNode {
			if _, skip := skippedElements[node.Data]; skip {
				return
			}
			_, block = blockElements[node.Data]
			block = block || node.Data == "br"
		}
		if block {
			b.WriteByte(' ')
		}
		if node.Type == html.TextNode {
			b.WriteString(node.Data)
		}
		for c := node.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
		if block {
			b.WriteByte(' ')
		}
	}
	walk(n)
	return textutil.CollapseSpace(b.String())
}

// blockAncestor climbs from n to the nearest block-level element so sentences
// split across inline markup are read whole.
func blockAncestor(n *html.Node) *html.Node {
	for cur := n.Parent; cur != nil; cur = cur.Parent {
		if cur.Type != html.ElementNode {
			continue
		}
		if _, ok := blockElements[cur.Data]; ok {
			return cur
		}
	}
	return n.Parent
}

// textNodes visits every visible text node in document order.
func textNodes(root *html.Node, visit func(*html.Node)) {
	var walk func(*html.Node)
	walk = func(node *html.Node) {
		if node.Type == html.ElementNode {
			if _, skip := skippedElements[node.Data]; skip {
				return
			}
		}
		if node.Type == html.TextNode {
			visit(node)
		}
		for c := node.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(root)
}
