package storage

import (
	"time"
)

// Visit records that an article was opened. Only the title is kept; the
// article body is always fetched live.
type Visit struct {
	Title     string    `json:"title"`
	Site      string    `json:"site"`
	VisitedAt time.Time `json:"visited_at"`
	Count     int       `json:"count"`
}
