package wiki

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/mmcdole/gofeed"
	"github.com/pders01/wkpd/internal/config"
	"github.com/pders01/wkpd/internal/debuglog"
)

const (
	defaultUserAgent = "wkpd/1.0 (https://github.com/pders01/wkpd)"
	defaultTimeout   = 30 * time.Second
	maxBodyBytes     = 32 << 20
)

// Client talks to the MediaWiki action API of a single site.
type Client struct {
	client          *http.Client
	site            Site
	apiURL          string
	userAgent       string
	suggestionLimit int
	thumbnailSize   int
	trendingLimit   int
	feedParser      *gofeed.Parser
}

func NewClient(cfg *config.Config, site Site) *Client {
	timeout := cfg.Wiki.HTTPTimeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	userAgent := cfg.Wiki.UserAgent
	if userAgent == "" {
		userAgent = defaultUserAgent
	}
	apiURL := cfg.Wiki.APIURL
	if apiURL == "" {
		apiURL = site.APIURL()
	} else if override, ok := SiteFromAPIURL(apiURL); ok {
		// Links and backlinks follow the edition the API actually serves.
		site = override
	}

	return &Client{
		client:          &http.Client{Timeout: timeout},
		site:            site,
		apiURL:          apiURL,
		userAgent:       userAgent,
		suggestionLimit: positiveOr(cfg.Wiki.SuggestionLimit, 8),
		thumbnailSize:   positiveOr(cfg.Wiki.ThumbnailSize, 80),
		trendingLimit:   positiveOr(cfg.Wiki.TrendingLimit, 10),
		feedParser:      gofeed.NewParser(),
	}
}

func positiveOr(n, fallback int) int {
	if n > 0 {
		return n
	}
	return fallback
}

func (c *Client) Site() Site {
	return c.site
}

// MostViewed lists the site's most viewed pages. Pages of every namespace
// are returned; callers filter with ArticlePages.
func (c *Client) MostViewed(ctx context.Context) ([]TrendingPage, error) {
	params := url.Values{}
	params.Set("action", "query")
	params.Set("list", "mostviewed")
	params.Set("pvimlimit", strconv.Itoa(c.trendingLimit))

	var resp mostViewedResponse
	if err := c.getJSON(ctx, params, &resp); err != nil {
		return nil, fmt.Errorf("fetching most viewed: %w", err)
	}
	if resp.Query == nil {
		return nil, nil
	}
	return resp.Query.MostViewed, nil
}

// PrefixSearch returns article pages whose titles start with query, keyed
// by page id. A response without results yields an empty mapping.
func (c *Client) PrefixSearch(ctx context.Context, query string) (map[string]SearchPage, error) {
	limit := strconv.Itoa(c.suggestionLimit)

	params := url.Values{}
	params.Set("action", "query")
	params.Set("generator", "prefixsearch")
	params.Set("gpssearch", query)
	params.Set("gpslimit", limit)
	params.Set("gpsnamespace", strconv.Itoa(ArticleNamespace))
	params.Set("prop", "pageimages")
	params.Set("piprop", "thumbnail")
	params.Set("pithumbsize", strconv.Itoa(c.thumbnailSize))
	params.Set("pilimit", limit)

	var resp prefixSearchResponse
	if err := c.getJSON(ctx, params, &resp); err != nil {
		return nil, fmt.Errorf("prefix search %q: %w", query, err)
	}
	if resp.Query == nil || resp.Query.Pages == nil {
		return map[string]SearchPage{}, nil
	}
	return resp.Query.Pages, nil
}

// Suggest runs PrefixSearch and orders the result for display.
func (c *Client) Suggest(ctx context.Context, query string) ([]Candidate, error) {
	pages, err := c.PrefixSearch(ctx, query)
	if err != nil {
		return nil, err
	}
	return SortCandidates(pages), nil
}

// Parse fetches the rendered markup of title without edit links or a
// table of contents.
func (c *Client) Parse(ctx context.Context, title string) (*Article, error) {
	params := url.Values{}
	params.Set("action", "parse")
	params.Set("page", title)
	params.Set("prop", "text")
	params.Set("formatversion", "2")
	params.Set("disableeditsection", "true")
	params.Set("disabletoc", "true")

	var resp parseResponse
	if err := c.getJSON(ctx, params, &resp); err != nil {
		return nil, fmt.Errorf("parsing %q: %w", title, err)
	}
	if resp.Parse == nil || resp.Parse.Text == nil {
		return nil, fmt.Errorf("parsing %q: %w", title, ErrNoResult)
	}

	return &Article{Title: title, RawMarkup: *resp.Parse.Text}, nil
}

// getJSON issues a GET against the action API and decodes the body into v.
// The format and open-origin parameters are always set.
func (c *Client) getJSON(ctx context.Context, params url.Values, v any) error {
	params.Set("format", "json")
	params.Set("origin", "*")

	body, err := c.get(ctx, params, "application/json")
	if err != nil {
		return err
	}

	var env envelope
	if err := json.Unmarshal(body, &env); err != nil {
		return fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	if env.Error != nil {
		return &APIError{Code: env.Error.Code, Info: env.Error.Info}
	}

	if err := json.Unmarshal(body, v); err != nil {
		return fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	return nil
}

func (c *Client) get(ctx context.Context, params url.Values, accept string) ([]byte, error) {
	reqURL := c.apiURL + "?" + params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", accept)

	debuglog.WithFields(map[string]interface{}{
		"action": params.Get("action"),
		"site":   c.site.Code,
	}).Debugf("GET %s", reqURL)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTransport, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return nil, fmt.Errorf("%w: HTTP %d", ErrTransport, resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("%w: reading body: %v", ErrTransport, err)
	}
	return body, nil
}
