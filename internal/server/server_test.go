package server

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/pders01/wkpd/internal/config"
	"github.com/pders01/wkpd/internal/wiki"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeWiki struct {
	trending    []wiki.TrendingPage
	candidates  []wiki.Candidate
	articles    map[string]string
	err         error
	suggestions []string
}

func (f *fakeWiki) Site() wiki.Site { return wiki.Site{Code: "en"} }

func (f *fakeWiki) MostViewed(ctx context.Context) ([]wiki.TrendingPage, error) {
	return f.trending, f.err
}

func (f *fakeWiki) Suggest(ctx context.Context, query string) ([]wiki.Candidate, error) {
	f.suggestions = append(f.suggestions, query)
	return f.candidates, f.err
}

func (f *fakeWiki) Parse(ctx context.Context, title string) (*wiki.Article, error) {
	if f.err != nil {
		return nil, f.err
	}
	markup, ok := f.articles[title]
	if !ok {
		return nil, fmt.Errorf("parse %q: %w", title, wiki.ErrNoResult)
	}
	return &wiki.Article{Title: title, RawMarkup: markup}, nil
}

func serve(t *testing.T, fw Wiki, path string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	rec := httptest.NewRecorder()
	New(fw, 5, "test").SetupRoutes().ServeHTTP(rec, req)
	return rec
}

func TestHealth(t *testing.T) {
	rec := serve(t, &fakeWiki{}, "/healthz")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))

	var body map[string]string
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	assert.Equal(t, "ok", body["status"])
	assert.Equal(t, "en", body["site"])
}

func TestTrending(t *testing.T) {
	fw := &fakeWiki{trending: []wiki.TrendingPage{
		{Title: "Special:Search", Namespace: -1},
		{Title: "Cat", Namespace: 0},
	}}

	rec := serve(t, fw, "/api/trending")
	require.Equal(t, http.StatusOK, rec.Code)

	var body map[string]string
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	assert.Equal(t, "Cat", body["title"])
}

func TestTrending_NoArticles(t *testing.T) {
	fw := &fakeWiki{trending: []wiki.TrendingPage{{Title: "Special:Search", Namespace: -1}}}

	rec := serve(t, fw, "/api/trending")
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Empty(t, rec.Body.String())
}

func TestSuggest(t *testing.T) {
	fw := &fakeWiki{candidates: []wiki.Candidate{
		{Title: "Cat", Rank: 1},
		{Title: "Catalonia", Rank: 2},
	}}

	rec := serve(t, fw, "/api/suggest?q=%20Cat%20")
	require.Equal(t, http.StatusOK, rec.Code)

	var body suggestResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	require.Len(t, body.Candidates, 2)
	assert.Equal(t, "Cat", body.Candidates[0].Title)
	assert.Equal(t, []string{"Cat"}, fw.suggestions)
}

func TestSuggest_ShortQuery(t *testing.T) {
	for _, q := range []string{"", "c", "%20c%20"} {
		t.Run(q, func(t *testing.T) {
			fw := &fakeWiki{}
			rec := serve(t, fw, "/api/suggest?q="+q)
			require.Equal(t, http.StatusOK, rec.Code)
			assert.JSONEq(t, `{"candidates":[]}`, rec.Body.String())
			assert.Empty(t, fw.suggestions)
		})
	}
}

func TestArticle(t *testing.T) {
	fw := &fakeWiki{articles: map[string]string{
		"Sea otter": `<p>The <a href="/wiki/Otter">otter</a> eats <a href="/wiki/Sea_urchin">urchins</a>.<sup class="reference">[1]</sup></p>` +
			`<h2>References</h2><ol><li>cite</li></ol>`,
	}}

	rec := serve(t, fw, "/api/article/Sea_otter")
	require.Equal(t, http.StatusOK, rec.Code)

	var body articleResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	assert.Equal(t, "Sea otter", body.Title)
	assert.Equal(t, []string{"otter", "urchins"}, body.Related)
	assert.Equal(t, "https://en.wikipedia.org/wiki/Sea%20otter", body.SourceURL)
	assert.NotContains(t, body.HTML, "reference")
	assert.NotContains(t, body.HTML, "cite")
	assert.Contains(t, body.HTML, "View Original Content")
}

func TestArticle_Errors(t *testing.T) {
	tests := []struct {
		name   string
		fw     *fakeWiki
		path   string
		status int
	}{
		{"missing", &fakeWiki{}, "/api/article/Nope", http.StatusNotFound},
		{"upstream", &fakeWiki{err: fmt.Errorf("get: %w", wiki.ErrTransport)}, "/api/article/Cat", http.StatusBadGateway},
		{"malformed", &fakeWiki{err: fmt.Errorf("decode: %w", wiki.ErrMalformed)}, "/api/article/Cat", http.StatusBadGateway},
		{"bad title", &fakeWiki{}, "/api/article/Cat%7CDog", http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := serve(t, tt.fw, tt.path)
			assert.Equal(t, tt.status, rec.Code)

			var body errorResponse
			require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
			assert.NotEmpty(t, body.Error)
		})
	}
}

func TestPreflight(t *testing.T) {
	req := httptest.NewRequest(http.MethodOptions, "/api/suggest", nil)
	rec := httptest.NewRecorder()
	New(&fakeWiki{}, 5, "test").SetupRoutes().ServeHTTP(rec, req)

	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
	assert.Contains(t, rec.Header().Get("Access-Control-Allow-Methods"), "GET")
}

func TestArticle_ThroughClient(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "parse", r.URL.Query().Get("action"))
		assert.Equal(t, "Cat", r.URL.Query().Get("page"))
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"parse":{"title":"Cat","text":"<p>A <a href=\"/wiki/Felidae\">felid</a>.</p>"}}`))
	}))
	defer upstream.Close()

	cfg := config.TestConfig()
	cfg.Wiki.APIURL = upstream.URL
	client := wiki.NewClient(cfg, wiki.Site{Code: "en"})

	rec := serve(t, client, "/api/article/Cat")
	require.Equal(t, http.StatusOK, rec.Code)

	var body articleResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	assert.Equal(t, []string{"felid"}, body.Related)
}
