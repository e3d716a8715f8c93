package tui

import (
	"context"
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"
	"github.com/pders01/wkpd/internal/debuglog"
	"github.com/pders01/wkpd/internal/session"
	"github.com/pders01/wkpd/internal/wiki"
)

// findLimit caps the matches listed by in-article find.
const findLimit = 20

func (a *App) requestContext() (context.Context, context.CancelFunc) {
	timeout := a.config.Wiki.HTTPTimeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return context.WithTimeout(context.Background(), timeout)
}

// loadTrending picks a random most-viewed article to open at startup.
func (a *App) loadTrending() tea.Cmd {
	id := a.session.Requests.Begin(session.PipelineTrending)
	rnd := a.rnd
	return func() tea.Msg {
		ctx, cancel := a.requestContext()
		defer cancel()

		pages, err := a.client.MostViewed(ctx)
		if err != nil {
			return trendingLoadedMsg{id: id, err: wrapErr("loading trending", err)}
		}
		page, ok := wiki.PickRandom(pages, rnd)
		if !ok {
			debuglog.Infof("trending: no article-namespace pages among %d", len(pages))
			return trendingLoadedMsg{id: id}
		}
		return trendingLoadedMsg{id: id, title: page.Title}
	}
}

// debounceSuggest feeds raw into the session debouncer. A query that is too
// short clears the suggestions at once and discards any lookup in flight.
func (a *App) debounceSuggest(raw string) tea.Cmd {
	query, wait := a.session.Debounce.Input(raw)
	if wait == nil {
		a.session.Requests.Invalidate(session.PipelineSuggest)
		a.suggestList.ResetSelected()
		a.suggestList.SetItems(nil)
		return nil
	}
	return func() tea.Msg {
		if !wait() {
			return nil
		}
		return suggestDebounceMsg{query: query}
	}
}

func (a *App) fetchSuggestions(query string) tea.Cmd {
	id := a.session.Requests.Begin(session.PipelineSuggest)
	return func() tea.Msg {
		ctx, cancel := a.requestContext()
		defer cancel()

		candidates, err := a.client.Suggest(ctx, query)
		return suggestionsLoadedMsg{id: id, query: query, candidates: candidates, err: err}
	}
}

// fetchArticle runs the article pipeline: fetch, sanitize, convert to
// Markdown and render for the terminal.
func (a *App) fetchArticle(id uint64, title string, renderer *glamour.TermRenderer) tea.Cmd {
	sanitizer := a.sanitizer
	return func() tea.Msg {
		ctx, cancel := a.requestContext()
		defer cancel()

		raw, err := a.client.Parse(ctx, title)
		if err != nil {
			return articleLoadedMsg{id: id, title: title, err: wrapErr("fetching article", err)}
		}

		display, err := sanitizer.Prepare(raw.RawMarkup, raw.Title)
		if err != nil {
			return articleLoadedMsg{id: id, title: title, err: wrapErr("preparing article", err)}
		}

		content := readerMarkdown(display)
		if renderer != nil {
			if out, err := renderer.Render(content); err == nil {
				content = out
			} else {
				debuglog.Warnf("rendering %q: %v", title, err)
			}
		}

		return articleLoadedMsg{id: id, title: title, display: display, content: content}
	}
}

func (a *App) loadFeatured() tea.Cmd {
	id := a.session.Requests.Begin(session.PipelineFeatured)
	return func() tea.Msg {
		ctx, cancel := a.requestContext()
		defer cancel()

		entries, err := a.client.FeaturedArticles(ctx)
		if err != nil {
			return featuredLoadedMsg{id: id, err: wrapErr("loading featured articles", err)}
		}
		return featuredLoadedMsg{id: id, entries: entries}
	}
}

func (a *App) loadHistory() tea.Cmd {
	if a.store == nil {
		return nil
	}
	site := a.session.Site.Code
	limit := a.config.History.Limit
	return func() tea.Msg {
		visits, err := a.store.RecentVisits(0)
		if err != nil {
			return errorMsg{err: wrapErr("loading history", err)}
		}
		filtered := visits[:0]
		for _, v := range visits {
			if v.Site == site {
				filtered = append(filtered, v)
			}
		}
		if limit > 0 && len(filtered) > limit {
			filtered = filtered[:limit]
		}
		return historyLoadedMsg{visits: filtered}
	}
}

func (a *App) recordVisit(title string) tea.Cmd {
	if a.store == nil {
		return nil
	}
	site := a.session.Site.Code
	return func() tea.Msg {
		if _, err := a.store.RecordVisit(site, title, time.Now()); err != nil {
			debuglog.Warnf("recording visit to %q: %v", title, err)
		}
		return nil
	}
}

func (a *App) deleteVisit(title string) tea.Cmd {
	if a.store == nil {
		return nil
	}
	site := a.session.Site.Code
	return func() tea.Msg {
		if err := a.store.DeleteVisit(site, title); err != nil {
			return errorMsg{err: wrapErr("removing visit", err)}
		}
		return visitDeletedMsg{}
	}
}

func (a *App) performFind(query string) tea.Cmd {
	finder := a.finder
	return func() tea.Msg {
		hits, err := finder.Search(query, findLimit)
		if err != nil {
			return errorMsg{err: wrapErr("find", err)}
		}
		return findResultsMsg{query: query, hits: hits}
	}
}

func (a *App) openURL(target string) tea.Cmd {
	return func() tea.Msg {
		if err := a.launcher.Open(target); err != nil {
			return errorMsg{err: fmt.Errorf("failed to open %s: %w", truncateMiddle(target, 60), err)}
		}
		return statusMsg{text: "Opened " + truncateMiddle(target, 60), kind: StatusSuccess}
	}
}

// wrapErr formats an error with a contextual prefix.
func wrapErr(prefix string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", prefix, err)
}
