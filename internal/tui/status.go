package tui

import (
	"fmt"
	"strings"
)

// Canonical short status messages used across the app.
const (
	MsgLoadingArticle  = "Loading article…"
	MsgLoadingFeatured = "Loading featured articles…"
	MsgLoadingHistory  = "Loading history…"
	MsgNoResults       = "No results"
	MsgHistoryDisabled = "History is disabled"
	MsgVisitDeleted    = "Removed from history"
	MsgNothingToOpen   = "Nothing to open"

	// Shown in the reader in place of the article.
	MsgArticleError  = "Error loading article."
	MsgTrendingError = "Unable to load recent topic."
)

func MsgResultsCount(n int) string {
	if n == 1 {
		return "1 result"
	}
	return fmt.Sprintf("%d results", n)
}

func MsgOpened(title string, site string) string {
	return fmt.Sprintf("%s • %s.wikipedia.org", strings.TrimSpace(title), site)
}

func MsgFindSummary(n int, engine string) string {
	return fmt.Sprintf("%s • %s", MsgResultsCount(n), engine)
}
