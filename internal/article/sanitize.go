// Package article turns rendered wiki markup into a display value: cleaned
// HTML with a backlink, the related titles found in it and a plain-text
// section outline. Everything here is pure; rendering lives in the caller.
package article

import (
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/pders01/wkpd/internal/wiki"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// DefaultRelatedLimit caps the related titles of one article.
const DefaultRelatedLimit = 5

// removedSelectors match blocks that are dropped unconditionally.
var removedSelectors = strings.Join([]string{
	"sup.reference",
	".mw-editsection",
	".toc",
	".infobox",
	".thumb",
	".navbox",
}, ", ")

// Display is one sanitized article ready to render. It is replaced as a
// whole by the next article, never merged.
type Display struct {
	Title     string
	HTML      string
	Markdown  string
	Related   []string
	Sections  []Section
	SourceURL string
}

// Sanitizer cleans markup for one site.
type Sanitizer struct {
	Site         wiki.Site
	RelatedLimit int
}

// Sanitize cleans raw with the default related limit.
func Sanitize(raw, title string, site wiki.Site) (*Display, error) {
	return Sanitizer{Site: site}.Sanitize(raw, title)
}

// Sanitize parses raw into a detached tree, drops references, edit links,
// tables of contents, infoboxes, thumbnails and navboxes, cuts the
// references section, appends a backlink and extracts related titles.
// Malformed markup is not an error: whatever the parser recovers is used.
func (s Sanitizer) Sanitize(raw, title string) (*Display, error) {
	root, err := parseDetached(raw)
	if err != nil {
		return nil, fmt.Errorf("parsing article markup: %w", err)
	}
	doc := goquery.NewDocumentFromNode(root)

	doc.Find(removedSelectors).Remove()
	removeReferencesSection(doc.Selection)

	sourceURL := s.Site.ArticleURL(title)
	root.AppendChild(backlink(sourceURL))

	limit := s.RelatedLimit
	if limit <= 0 {
		limit = DefaultRelatedLimit
	}

	markup, err := doc.Html()
	if err != nil {
		return nil, fmt.Errorf("rendering cleaned markup: %w", err)
	}

	return &Display{
		Title:     title,
		HTML:      markup,
		Related:   relatedFrom(doc.Selection, title, limit),
		Sections:  sectionsFrom(root, title),
		SourceURL: sourceURL,
	}, nil
}

// parseDetached parses raw as body content and hangs the resulting nodes
// off a fresh container element.
func parseDetached(raw string) (*html.Node, error) {
	body := &html.Node{Type: html.ElementNode, Data: "body", DataAtom: atom.Body}
	nodes, err := html.ParseFragment(strings.NewReader(raw), body)
	if err != nil {
		return nil, err
	}

	root := &html.Node{Type: html.ElementNode, Data: "div", DataAtom: atom.Div}
	for _, n := range nodes {
		root.AppendChild(n)
	}
	return root, nil
}

// removeReferencesSection removes the first h2 or h3 mentioning
// "references" together with every following sibling up to the next
// heading. A heading wrapped in div.mw-heading is removed with its wrapper.
func removeReferencesSection(sel *goquery.Selection) {
	var heading *html.Node
	sel.Find("h2, h3").EachWithBreak(func(_ int, h *goquery.Selection) bool {
		if strings.Contains(strings.ToLower(h.Text()), "references") {
			heading = h.Get(0)
			return false
		}
		return true
	})
	if heading == nil {
		return
	}

	unit := heading
	if p := heading.Parent; p != nil && isHeadingWrapper(p) {
		unit = p
	}
	parent := unit.Parent
	if parent == nil {
		return
	}

	sib := unit.NextSibling
	for sib != nil && !isHeading(sib) {
		next := sib.NextSibling
		parent.RemoveChild(sib)
		sib = next
	}
	parent.RemoveChild(unit)
}

func isHeading(n *html.Node) bool {
	if n.Type != html.ElementNode {
		return false
	}
	switch n.DataAtom {
	case atom.H1, atom.H2, atom.H3, atom.H4, atom.H5, atom.H6:
		return true
	}
	return isHeadingWrapper(n)
}

func isHeadingWrapper(n *html.Node) bool {
	return n.Type == html.ElementNode && n.DataAtom == atom.Div && hasClass(n, "mw-heading")
}

// backlink builds <p class="view-original">🔗 <a ...>View Original Content</a></p>.
func backlink(href string) *html.Node {
	p := &html.Node{
		Type:     html.ElementNode,
		Data:     "p",
		DataAtom: atom.P,
		Attr:     []html.Attribute{{Key: "class", Val: "view-original"}},
	}
	p.AppendChild(&html.Node{Type: html.TextNode, Data: "🔗 "})

	a := &html.Node{
		Type:     html.ElementNode,
		Data:     "a",
		DataAtom: atom.A,
		Attr: []html.Attribute{
			{Key: "href", Val: href},
			{Key: "target", Val: "_blank"},
		},
	}
	a.AppendChild(&html.Node{Type: html.TextNode, Data: "View Original Content"})
	p.AppendChild(a)
	return p
}
