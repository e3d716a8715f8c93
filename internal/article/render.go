package article

import (
	"fmt"
	"strings"

	htmltomarkdown "github.com/JohannesKaufmann/html-to-markdown/v2"
	"github.com/JohannesKaufmann/html-to-markdown/v2/converter"
	"github.com/pders01/wkpd/internal/wiki"
)

// ToMarkdown converts cleaned markup to Markdown. Relative links are
// resolved against the site so they stay usable outside the page.
func ToMarkdown(markup string, site wiki.Site) (string, error) {
	md, err := htmltomarkdown.ConvertString(markup, converter.WithDomain("https://"+site.Host()))
	if err != nil {
		return "", fmt.Errorf("converting to markdown: %w", err)
	}
	return strings.TrimSpace(md), nil
}

// Prepare sanitizes raw and fills in the Markdown rendition.
func (s Sanitizer) Prepare(raw, title string) (*Display, error) {
	d, err := s.Sanitize(raw, title)
	if err != nil {
		return nil, err
	}
	md, err := ToMarkdown(d.HTML, s.Site)
	if err != nil {
		return nil, err
	}
	d.Markdown = md
	return d, nil
}

// Document is the full Markdown page for d: title, body and the related
// titles as a closing list.
func Document(d *Display) string {
	var b strings.Builder
	b.WriteString("# ")
	b.WriteString(d.Title)
	b.WriteString("\n\n")
	b.WriteString(d.Markdown)
	b.WriteString("\n")

	if len(d.Related) > 0 {
		b.WriteString("\n---\n\n## Related\n\n")
		for _, r := range d.Related {
			b.WriteString("- ")
			b.WriteString(r)
			b.WriteString("\n")
		}
	}
	return b.String()
}
