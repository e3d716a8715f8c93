package article

import (
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// Section is the plain text under one heading. Index 0 is the lead, headed
// by the article title.
type Section struct {
	Index   int
	Heading string
	Text    string
}

func sectionsFrom(root *html.Node, title string) []Section {
	var (
		sections []Section
		current  = Section{Index: 0, Heading: title}
		text     strings.Builder
	)

	flush := func() {
		current.Text = collapseSpace(text.String())
		if current.Index == 0 && current.Text == "" {
			return
		}
		sections = append(sections, current)
	}

	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		switch n.Type {
		case html.TextNode:
			text.WriteString(n.Data)
			return
		case html.ElementNode:
			switch n.DataAtom {
			case atom.Script, atom.Style, atom.Link, atom.Meta:
				return
			case atom.H1, atom.H2, atom.H3, atom.H4, atom.H5, atom.H6:
				flush()
				current = Section{Index: len(sections), Heading: collapseSpace(nodeText(n))}
				text.Reset()
				return
			}
			if hasClass(n, "view-original") {
				return
			}
		}
		block := isBlock(n)
		if block {
			text.WriteByte(' ')
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
		if block {
			text.WriteByte(' ')
		}
	}
	walk(root)
	flush()

	for i := range sections {
		sections[i].Index = i
	}
	return sections
}

func isBlock(n *html.Node) bool {
	if n.Type != html.ElementNode {
		return false
	}
	switch n.DataAtom {
	case atom.P, atom.Div, atom.Li, atom.Ul, atom.Ol, atom.Dl, atom.Dt, atom.Dd,
		atom.Table, atom.Tr, atom.Td, atom.Th, atom.Br, atom.Blockquote, atom.Pre:
		return true
	}
	return false
}

func nodeText(n *html.Node) string {
	var b strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			b.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return b.String()
}

func hasClass(n *html.Node, class string) bool {
	for _, a := range n.Attr {
		if a.Key != "class" {
			continue
		}
		for _, c := range strings.Fields(a.Val) {
			if c == class {
				return true
			}
		}
	}
	return false
}

func collapseSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
