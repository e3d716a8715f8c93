package wiki

import (
	"bytes"
	"context"
	"fmt"
	"net/url"
	"sort"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/mmcdole/gofeed"
)

// FeaturedArticles reads the site's featured-article Atom feed. Entries
// whose summary carries no article link are skipped.
func (c *Client) FeaturedArticles(ctx context.Context) ([]FeaturedEntry, error) {
	params := url.Values{}
	params.Set("action", "featuredfeed")
	params.Set("feed", "featured")
	params.Set("feedformat", "atom")

	body, err := c.get(ctx, params, "application/atom+xml, application/xml, text/xml")
	if err != nil {
		return nil, fmt.Errorf("fetching featured feed: %w", err)
	}

	feed, err := c.feedParser.Parse(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("parsing featured feed: %w: %v", ErrMalformed, err)
	}

	entries := make([]FeaturedEntry, 0, len(feed.Items))
	for _, item := range feed.Items {
		summary := itemSummary(item)
		title := firstArticleLink(summary)
		if title == "" {
			continue
		}

		entry := FeaturedEntry{
			Title:   title,
			Summary: summaryText(summary),
			Link:    item.Link,
		}
		if item.PublishedParsed != nil {
			entry.Published = *item.PublishedParsed
		} else if item.UpdatedParsed != nil {
			entry.Published = *item.UpdatedParsed
		}
		entries = append(entries, entry)
	}

	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Published.After(entries[j].Published)
	})

	return entries, nil
}

func itemSummary(item *gofeed.Item) string {
	if item.Description != "" {
		return item.Description
	}
	return item.Content
}

// firstArticleLink returns the target title of the first in-wiki article
// link in the fragment, preferring the anchor's title attribute.
func firstArticleLink(fragment string) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(fragment))
	if err != nil {
		return ""
	}

	var title string
	doc.Find("a[href]").EachWithBreak(func(_ int, a *goquery.Selection) bool {
		href, _ := a.Attr("href")
		u, err := url.Parse(href)
		if err != nil {
			return true
		}
		if u.Host != "" && !strings.HasSuffix(u.Host, ".wikipedia.org") {
			return true
		}
		if !strings.HasPrefix(u.Path, "/wiki/") || strings.Contains(u.Path, ":") {
			return true
		}
		if t, ok := a.Attr("title"); ok && strings.TrimSpace(t) != "" {
			title = strings.TrimSpace(t)
		} else {
			title = strings.TrimSpace(a.Text())
		}
		return title == ""
	})
	return title
}

func summaryText(fragment string) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(fragment))
	if err != nil {
		return ""
	}
	// The first paragraph carries the blurb
	p := doc.Find("p").First()
	if p.Length() == 0 {
		return strings.Join(strings.Fields(doc.Text()), " ")
	}
	return strings.Join(strings.Fields(p.Text()), " ")
}
