package article

import (
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

const articlePathPrefix = "/wiki/"

// ExtractRelated returns up to limit related titles from markup. See
// relatedFrom for the qualifying rules.
func ExtractRelated(markup, title string, limit int) ([]string, error) {
	root, err := parseDetached(markup)
	if err != nil {
		return nil, fmt.Errorf("parsing markup: %w", err)
	}
	return relatedFrom(goquery.NewDocumentFromNode(root).Selection, title, limit), nil
}

// relatedFrom scans anchors in document order. An anchor qualifies when its
// href is an article path without a namespace separator. Texts are trimmed,
// deduplicated exactly and never equal to title ignoring case.
func relatedFrom(sel *goquery.Selection, title string, limit int) []string {
	if limit <= 0 {
		return []string{}
	}
	related := make([]string, 0, limit)

	seen := make(map[string]struct{})
	sel.Find("a").EachWithBreak(func(_ int, a *goquery.Selection) bool {
		href, _ := a.Attr("href")
		if !strings.HasPrefix(href, articlePathPrefix) || strings.Contains(href, ":") {
			return true
		}

		text := strings.TrimSpace(a.Text())
		if text == "" || strings.EqualFold(text, title) {
			return true
		}
		if _, dup := seen[text]; dup {
			return true
		}

		seen[text] = struct{}{}
		related = append(related, text)
		return len(related) < limit
	})
	return related
}
