package session

import (
	"context"
	"strings"
	"sync"
	"time"
	"unicode/utf8"
)

// MinQueryLength is the shortest trimmed query that schedules a lookup.
const MinQueryLength = 2

// DefaultDelay is the quiet window used when none is configured.
const DefaultDelay = 300 * time.Millisecond

// Debouncer holds at most one pending timer. Each call to Input cancels the
// previous timer before deciding whether to arm a new one.
type Debouncer struct {
	mu     sync.Mutex
	delay  time.Duration
	cancel context.CancelFunc
}

func NewDebouncer(delay time.Duration) *Debouncer {
	if delay <= 0 {
		delay = DefaultDelay
	}
	return &Debouncer{delay: delay}
}

func (d *Debouncer) Delay() time.Duration {
	return d.delay
}

// Input registers a keystroke. When the trimmed query is too short it
// returns an empty query and a nil wait func, meaning suggestions should be
// cleared. Otherwise wait blocks for the quiet window and reports whether
// this input is still the latest one.
func (d *Debouncer) Input(raw string) (string, func() bool) {
	query := strings.TrimSpace(raw)

	d.mu.Lock()
	defer d.mu.Unlock()

	if d.cancel != nil {
		d.cancel()
		d.cancel = nil
	}

	if utf8.RuneCountInString(query) < MinQueryLength {
		return "", nil
	}

	ctx, cancel := context.WithCancel(context.Background())
	d.cancel = cancel
	delay := d.delay

	wait := func() bool {
		if ctx.Err() != nil {
			return false
		}
		timer := time.NewTimer(delay)
		defer timer.Stop()
		select {
		case <-timer.C:
			return ctx.Err() == nil
		case <-ctx.Done():
			return false
		}
	}
	return query, wait
}

// Stop cancels the pending timer, if any.
func (d *Debouncer) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.cancel != nil {
		d.cancel()
		d.cancel = nil
	}
}

// Pending reports whether a timer is armed.
func (d *Debouncer) Pending() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.cancel != nil
}
