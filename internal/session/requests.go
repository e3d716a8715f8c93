package session

import "sync"

// Pipeline names an independent request stream.
type Pipeline int

const (
	PipelineSuggest Pipeline = iota
	PipelineArticle
	PipelineTrending
	PipelineFeatured
)

func (p Pipeline) String() string {
	switch p {
	case PipelineSuggest:
		return "suggest"
	case PipelineArticle:
		return "article"
	case PipelineTrending:
		return "trending"
	case PipelineFeatured:
		return "featured"
	default:
		return "unknown"
	}
}

// RequestTracker issues monotonically increasing request ids per pipeline
// so that responses to superseded requests can be discarded.
type RequestTracker struct {
	mu     sync.Mutex
	latest map[Pipeline]uint64
}

func NewRequestTracker() *RequestTracker {
	return &RequestTracker{latest: make(map[Pipeline]uint64)}
}

// Begin issues a new id for p, superseding every earlier id.
func (t *RequestTracker) Begin(p Pipeline) uint64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.latest[p]++
	return t.latest[p]
}

// IsLatest reports whether id is the most recent id issued for p.
func (t *RequestTracker) IsLatest(p Pipeline, id uint64) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return id != 0 && t.latest[p] == id
}

// Invalidate supersedes any outstanding request of p without issuing a new
// one. Responses that arrive afterwards are stale.
func (t *RequestTracker) Invalidate(p Pipeline) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.latest[p]++
}
