package tui

type View int

const (
	ViewReader View = iota
	ViewSearch
	ViewFind
	ViewHistory
	ViewFeatured
)

func (v View) String() string {
	switch v {
	case ViewReader:
		return "reader"
	case ViewSearch:
		return "search"
	case ViewFind:
		return "find"
	case ViewHistory:
		return "history"
	case ViewFeatured:
		return "featured"
	default:
		return "unknown"
	}
}
