package search

import (
	"fmt"
	"strconv"
	"strings"
	"sync"
	"unicode/utf8"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/analysis/analyzer/standard"
	"github.com/blevesearch/bleve/v2/mapping"
	bleveQuery "github.com/blevesearch/bleve/v2/search/query"
	"github.com/pders01/wkpd/internal/article"
)

// BleveEngine keeps an in-memory index of the open article's sections.
// Nothing is written to disk.
type BleveEngine struct {
	mu       sync.RWMutex
	idx      bleve.Index
	sections map[string]article.Section
}

func NewBleveEngine() (*BleveEngine, error) {
	idx, err := bleve.NewMemOnly(buildIndexMapping())
	if err != nil {
		return nil, fmt.Errorf("creating index: %w", err)
	}
	return &BleveEngine{idx: idx, sections: map[string]article.Section{}}, nil
}

func buildIndexMapping() mapping.IndexMapping {
	im := bleve.NewIndexMapping()
	im.DefaultAnalyzer = standard.Name

	dm := bleve.NewDocumentMapping()

	heading := bleve.NewTextFieldMapping()
	heading.Analyzer = standard.Name
	heading.Store = true
	heading.IncludeTermVectors = true

	text := bleve.NewTextFieldMapping()
	text.Analyzer = standard.Name
	text.Store = false

	dm.AddFieldMappingsAt("heading", heading)
	dm.AddFieldMappingsAt("text", text)

	im.DefaultMapping = dm
	return im
}

// Index swaps in a fresh index holding the sections of d.
func (b *BleveEngine) Index(d *article.Display) error {
	idx, err := bleve.NewMemOnly(buildIndexMapping())
	if err != nil {
		return fmt.Errorf("creating index: %w", err)
	}

	sections := map[string]article.Section{}
	if d != nil {
		batch := idx.NewBatch()
		for _, s := range d.Sections {
			id := docIDForSection(s.Index)
			sections[id] = s
			if err := batch.Index(id, map[string]any{
				"heading": s.Heading,
				"text":    s.Text,
			}); err != nil {
				_ = idx.Close()
				return fmt.Errorf("indexing section %d: %w", s.Index, err)
			}
		}
		if err := idx.Batch(batch); err != nil {
			_ = idx.Close()
			return fmt.Errorf("indexing article: %w", err)
		}
	}

	b.mu.Lock()
	old := b.idx
	b.idx = idx
	b.sections = sections
	b.mu.Unlock()

	if old != nil {
		_ = old.Close()
	}
	return nil
}

func (b *BleveEngine) Search(query string, limit int) ([]*Hit, error) {
	if utf8.RuneCountInString(strings.TrimSpace(query)) < 2 {
		return []*Hit{}, nil
	}
	// Tokenize input and build an OR of per-term matches with boosts
	tokens := tokenize(query)
	var qs []bleveQuery.Query
	for _, tok := range tokens {
		// heading^3
		qh := bleve.NewMatchQuery(tok)
		qh.SetField("heading")
		qh.SetBoost(headingWeight)
		qs = append(qs, qh)
		qhp := bleve.NewPrefixQuery(tok)
		qhp.SetField("heading")
		qhp.SetBoost(headingWeight * 0.8)
		qs = append(qs, qhp)
		// text^1
		qt := bleve.NewMatchQuery(tok)
		qt.SetField("text")
		qt.SetBoost(textWeight)
		qs = append(qs, qt)
		qtp := bleve.NewPrefixQuery(tok)
		qtp.SetField("text")
		qtp.SetBoost(textWeight * 0.8)
		qs = append(qs, qtp)
	}
	if len(qs) == 0 {
		return []*Hit{}, nil
	}

	if limit <= 0 {
		limit = 10
	}

	b.mu.RLock()
	defer b.mu.RUnlock()

	req := bleve.NewSearchRequestOptions(bleve.NewDisjunctionQuery(qs...), limit, 0, false)
	req.Fields = []string{"heading"}
	res, err := b.idx.Search(req)
	if err != nil {
		return nil, fmt.Errorf("searching article: %w", err)
	}

	hits := make([]*Hit, 0, len(res.Hits))
	for _, h := range res.Hits {
		s, ok := b.sections[h.ID]
		if !ok {
			continue
		}
		hits = append(hits, &Hit{
			Section: s.Index,
			Heading: s.Heading,
			Snippet: findBestSnippet(s.Text, tokens, snippetLength),
			Score:   h.Score,
		})
	}
	return hits, nil
}

// DocCount reports total documents in the index.
func (b *BleveEngine) DocCount() (int, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	n, err := b.idx.DocCount()
	if err != nil {
		return 0, err
	}
	return int(n), nil
}

func (b *BleveEngine) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.idx.Close()
}

func docIDForSection(i int) string { return "section:" + strconv.Itoa(i) }
