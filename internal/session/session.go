// Package session holds the per-user state shared by the search and
// article pipelines: the resolved site, the debounce timer and the
// request id counters.
package session

import (
	"github.com/pders01/wkpd/internal/config"
	"github.com/pders01/wkpd/internal/wiki"
)

type Session struct {
	Site     wiki.Site
	Debounce *Debouncer
	Requests *RequestTracker
}

func New(site wiki.Site, cfg *config.Config) *Session {
	var delay = DefaultDelay
	if cfg != nil && cfg.Wiki.Debounce > 0 {
		delay = cfg.Wiki.Debounce
	}
	return &Session{
		Site:     site,
		Debounce: NewDebouncer(delay),
		Requests: NewRequestTracker(),
	}
}

// ResolveSite picks the site for cfg. A pinned language wins; otherwise
// the environment locale decides between the secondary and default codes.
func ResolveSite(cfg *config.Config, lookup func(string) (string, bool)) wiki.Site {
	if cfg.Wiki.Language != "" {
		return wiki.Site{Code: cfg.Wiki.Language}
	}
	tag := wiki.LocaleFromEnv(lookup)
	return wiki.ResolveSite(tag, cfg.Wiki.SecondaryLanguage, cfg.Wiki.DefaultLanguage)
}

// Close cancels any pending debounce timer.
func (s *Session) Close() {
	s.Debounce.Stop()
}
