package wiki

import (
	"math/rand"
	"sort"
	"time"
)

// ArticleNamespace is the MediaWiki namespace of encyclopedia articles.
const ArticleNamespace = 0

// Candidate is one prefix-search suggestion.
type Candidate struct {
	Title        string `json:"title"`
	ThumbnailURL string `json:"thumbnail_url,omitempty"`
	Rank         int    `json:"rank"`
}

// Article is the raw rendered markup of a page as returned by action=parse.
type Article struct {
	Title     string
	RawMarkup string
}

type TrendingPage struct {
	Title     string `json:"title"`
	Namespace int    `json:"ns"`
	Views     int    `json:"count"`
}

// FeaturedEntry is one day of the featured-article feed.
type FeaturedEntry struct {
	Title     string
	Summary   string
	Link      string
	Published time.Time
}

// SearchPage is a page object of a prefixsearch generator response.
type SearchPage struct {
	PageID    int        `json:"pageid"`
	Namespace int        `json:"ns"`
	Title     string     `json:"title"`
	Index     int        `json:"index"`
	Thumbnail *Thumbnail `json:"thumbnail,omitempty"`
}

type Thumbnail struct {
	Source string `json:"source"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
}

type apiError struct {
	Code string `json:"code"`
	Info string `json:"info"`
}

type envelope struct {
	Error *apiError `json:"error,omitempty"`
}

type mostViewedResponse struct {
	Query *struct {
		MostViewed []TrendingPage `json:"mostviewed"`
	} `json:"query"`
}

type prefixSearchResponse struct {
	Query *struct {
		Pages map[string]SearchPage `json:"pages"`
	} `json:"query"`
}

type parseResponse struct {
	Parse *struct {
		Title  string  `json:"title"`
		PageID int     `json:"pageid"`
		Text   *string `json:"text"`
	} `json:"parse"`
}

// SortCandidates flattens a page mapping into candidates ordered by rank
// ascending. Pages without a rank sort as rank 0; ties keep title order.
func SortCandidates(pages map[string]SearchPage) []Candidate {
	candidates := make([]Candidate, 0, len(pages))
	for _, p := range pages {
		c := Candidate{Title: p.Title, Rank: p.Index}
		if p.Thumbnail != nil {
			c.ThumbnailURL = p.Thumbnail.Source
		}
		candidates = append(candidates, c)
	}
	sort.SliceStable(candidates, func(i, j int) bool {
		if candidates[i].Rank != candidates[j].Rank {
			return candidates[i].Rank < candidates[j].Rank
		}
		return candidates[i].Title < candidates[j].Title
	})
	return candidates
}

// ArticlePages keeps only pages in the article namespace.
func ArticlePages(pages []TrendingPage) []TrendingPage {
	out := make([]TrendingPage, 0, len(pages))
	for _, p := range pages {
		if p.Namespace == ArticleNamespace && p.Title != "" {
			out = append(out, p)
		}
	}
	return out
}

// PickRandom selects one article-namespace page uniformly at random.
// It reports false when no page qualifies.
func PickRandom(pages []TrendingPage, rnd *rand.Rand) (TrendingPage, bool) {
	articles := ArticlePages(pages)
	if len(articles) == 0 {
		return TrendingPage{}, false
	}
	var i int
	if rnd != nil {
		i = rnd.Intn(len(articles))
	} else {
		i = rand.Intn(len(articles))
	}
	return articles[i], true
}
