package wiki

import (
	"net/url"
	"os"
	"strings"
)

// Site selects a language edition of Wikipedia by its subdomain code.
type Site struct {
	Code string
}

func (s Site) Host() string {
	return s.Code + ".wikipedia.org"
}

// APIURL is the action API endpoint of the site.
func (s Site) APIURL() string {
	return "https://" + s.Host() + "/w/api.php"
}

// ArticleURL is the canonical reader URL of title on the site.
func (s Site) ArticleURL(title string) string {
	return "https://" + s.Host() + "/wiki/" + url.PathEscape(title)
}

// SiteFromAPIURL recovers the site of a Wikipedia action API endpoint. It
// reports false for hosts outside wikipedia.org.
func SiteFromAPIURL(raw string) (Site, bool) {
	u, err := url.Parse(raw)
	if err != nil {
		return Site{}, false
	}
	code, ok := strings.CutSuffix(strings.ToLower(u.Hostname()), ".wikipedia.org")
	if !ok || code == "" || strings.Contains(code, ".") {
		return Site{}, false
	}
	return Site{Code: code}, true
}

// localeVars are consulted in POSIX precedence order.
var localeVars = []string{"LC_ALL", "LC_MESSAGES", "LANG"}

// LocaleFromEnv returns the user's language tag as reported by the
// environment, or "" when none is set.
func LocaleFromEnv(lookup func(string) (string, bool)) string {
	if lookup == nil {
		lookup = os.LookupEnv
	}
	for _, name := range localeVars {
		if v, ok := lookup(name); ok && strings.TrimSpace(v) != "" {
			return strings.TrimSpace(v)
		}
	}
	return ""
}

// ResolveSite picks the secondary site when tag starts with the secondary
// language prefix and falls back to the default otherwise. An absent tag
// resolves to the default.
func ResolveSite(tag, secondary, fallback string) Site {
	if fallback == "" {
		fallback = "en"
	}
	tag = strings.ToLower(strings.TrimSpace(tag))
	if secondary != "" && strings.HasPrefix(tag, strings.ToLower(secondary)) {
		return Site{Code: strings.ToLower(secondary)}
	}
	return Site{Code: strings.ToLower(fallback)}
}
