package main

import (
	"context"
	"fmt"
	"io"

	"github.com/charmbracelet/glamour"
	"github.com/spf13/cobra"

	"github.com/pders01/wkpd/internal/article"
	"github.com/pders01/wkpd/internal/validation"
	"github.com/pders01/wkpd/internal/wiki"
)

var (
	articleRaw   bool
	articleWidth int
)

var articleCmd = &cobra.Command{
	Use:   "article <title>",
	Short: "Print an article rendered for the terminal",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, cleanup, err := setup()
		if err != nil {
			return err
		}
		defer cleanup()

		title, err := validation.ValidateTitle(args[0])
		if err != nil {
			return err
		}

		client := newClient(cfg)
		sanitizer := article.Sanitizer{Site: client.Site(), RelatedLimit: cfg.Wiki.RelatedLimit}

		ctx := cmd.Context()
		if cfg.Wiki.HTTPTimeout > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, cfg.Wiki.HTTPTimeout)
			defer cancel()
		}

		return printArticle(ctx, cmd.OutOrStdout(), client, sanitizer, title, articleRaw, articleWidth)
	},
}

func init() {
	articleCmd.Flags().BoolVar(&articleRaw, "raw", false, "Print Markdown instead of terminal styling")
	articleCmd.Flags().IntVar(&articleWidth, "width", 100, "Word wrap width")
	rootCmd.AddCommand(articleCmd)
}

type articleFetcher interface {
	Parse(ctx context.Context, title string) (*wiki.Article, error)
}

// printArticle writes title as a Markdown document, styled for the
// terminal unless raw is set.
func printArticle(ctx context.Context, w io.Writer, client articleFetcher, sanitizer article.Sanitizer, title string, raw bool, width int) error {
	page, err := client.Parse(ctx, title)
	if err != nil {
		return fmt.Errorf("fetching %q: %w", title, err)
	}

	display, err := sanitizer.Prepare(page.RawMarkup, page.Title)
	if err != nil {
		return err
	}

	doc := article.Document(display)
	if raw {
		_, err = io.WriteString(w, doc)
		return err
	}

	renderer, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return fmt.Errorf("creating renderer: %w", err)
	}
	out, err := renderer.Render(doc)
	if err != nil {
		return fmt.Errorf("rendering %q: %w", title, err)
	}
	_, err = io.WriteString(w, out)
	return err
}
