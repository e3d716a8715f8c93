package wiki

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const featuredAtom = `<?xml version="1.0" encoding="utf-8"?>
<feed xmlns="http://www.w3.org/2005/Atom" xml:lang="en">
  <id>https://en.wikipedia.org/w/api.php?action=featuredfeed&amp;feed=featured&amp;feedformat=atom</id>
  <title>Wikipedia featured articles feed</title>
  <updated>2026-10-14T00:00:00Z</updated>
  <entry>
    <id>https://en.wikipedia.org/wiki/Special:FeedItem/featured/20261013000000/en</id>
    <title>Wikipedia featured article for October 13, 2026</title>
    <link rel="alternate" type="text/html" href="https://en.wikipedia.org/wiki/Special:FeedItem/featured/20261013000000/en"/>
    <updated>2026-10-13T00:00:00Z</updated>
    <summary type="html">&lt;div&gt;&lt;a href="/wiki/File:Otter.jpg"&gt;img&lt;/a&gt;&lt;p&gt;The &lt;b&gt;&lt;a href="/wiki/Sea_otter" title="Sea otter"&gt;sea otter&lt;/a&gt;&lt;/b&gt; is a marine mammal.&lt;/p&gt;&lt;/div&gt;</summary>
  </entry>
  <entry>
    <id>https://en.wikipedia.org/wiki/Special:FeedItem/featured/20261014000000/en</id>
    <title>Wikipedia featured article for October 14, 2026</title>
    <link rel="alternate" type="text/html" href="https://en.wikipedia.org/wiki/Special:FeedItem/featured/20261014000000/en"/>
    <updated>2026-10-14T00:00:00Z</updated>
    <summary type="html">&lt;p&gt;&lt;a href="//en.wikipedia.org/wiki/Halley%27s_Comet"&gt;Halley's Comet&lt;/a&gt; returns every 76 years.&lt;/p&gt;</summary>
  </entry>
  <entry>
    <id>https://en.wikipedia.org/wiki/Special:FeedItem/featured/20261012000000/en</id>
    <title>No link</title>
    <updated>2026-10-12T00:00:00Z</updated>
    <summary type="html">&lt;p&gt;Plain text only.&lt;/p&gt;</summary>
  </entry>
</feed>`

func TestClient_FeaturedArticles(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		assert.Equal(t, "featuredfeed", q.Get("action"))
		assert.Equal(t, "featured", q.Get("feed"))
		assert.Equal(t, "atom", q.Get("feedformat"))
		assert.Empty(t, q.Get("format"))
		w.Header().Set("Content-Type", "application/atom+xml")
		w.Write([]byte(featuredAtom))
	})

	entries, err := client.FeaturedArticles(context.Background())
	require.NoError(t, err)
	require.Len(t, entries, 2)

	assert.Equal(t, "Halley's Comet", entries[0].Title)
	assert.Equal(t, "Halley's Comet returns every 76 years.", entries[0].Summary)
	assert.Equal(t, 14, entries[0].Published.Day())

	assert.Equal(t, "Sea otter", entries[1].Title)
	assert.Equal(t, "The sea otter is a marine mammal.", entries[1].Summary)
	assert.Contains(t, entries[1].Link, "Special:FeedItem")
}

func TestClient_FeaturedArticlesMalformed(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`this is not a feed`))
	})

	_, err := client.FeaturedArticles(context.Background())
	assert.ErrorIs(t, err, ErrMalformed)
}

func TestFirstArticleLink(t *testing.T) {
	tests := []struct {
		name     string
		fragment string
		want     string
	}{
		{"title attribute", `<a href="/wiki/Cat" title="Cat">cats</a>`, "Cat"},
		{"text fallback", `<a href="/wiki/Dog">Dog</a>`, "Dog"},
		{"skips namespaced", `<a href="/wiki/File:X.png">x</a><a href="/wiki/Fox">Fox</a>`, "Fox"},
		{"skips external", `<a href="https://example.com/wiki/Nope">Nope</a>`, ""},
		{"none", `<p>nothing</p>`, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, firstArticleLink(tt.fragment))
		})
	}
}
