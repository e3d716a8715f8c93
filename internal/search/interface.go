package search

import (
	"fmt"

	"github.com/pders01/wkpd/internal/article"
	"github.com/pders01/wkpd/internal/config"
)

// Hit is one section of the open article matching a find query.
type Hit struct {
	Section int
	Heading string
	Snippet string
	Score   float64
}

// Searcher finds text within the article currently on screen. Index
// replaces whatever was indexed before.
type Searcher interface {
	Index(d *article.Display) error
	Search(query string, limit int) ([]*Hit, error)
}

// DebugStatser provides lightweight stats for visibility/debugging.
// Implemented by engines that can report index doc counts, etc.
type DebugStatser interface {
	DocCount() (int, error)
}

// New returns the engine named by cfg.Search.Engine.
func New(cfg *config.Config) (Searcher, error) {
	switch cfg.Search.Engine {
	case "", "bleve":
		engine, err := NewBleveEngine()
		if err != nil {
			return nil, err
		}
		return engine, nil
	case "basic":
		return NewEngine(), nil
	default:
		return nil, fmt.Errorf("unknown search engine %q", cfg.Search.Engine)
	}
}
