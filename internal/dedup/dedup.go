// Package dedup suppresses repeated deliveries of identical events. A
// crashing loop can produce the same event thousands of times a second;
// collapsing repeats keeps the collector and the network sane.
package dedup

import (
	"strings"
	"sync"
	"time"

	"github.com/wolfer717/raven-go/internal/model"
)

// DefaultWindow groups repeats arriving within five seconds of the first
// occurrence.
const DefaultWindow = 5 * time.Second

// Deduplicator collapses identical events within a time window. Only the
// most recent group is tracked: an event with a different key always
// starts a new group, and the old one is forgotten.
type Deduplicator struct {
	window time.Duration
	now    func() time.Time

	mu      sync.Mutex
	lastKey string
	firstAt time.Time
	repeats int
}

// New creates a Deduplicator. A non-positive window falls back to
// DefaultWindow.
func New(window time.Duration) *Deduplicator {
	if window <= 0 {
		window = DefaultWindow
	}
	return &Deduplicator{window: window, now: time.Now}
}

// Repeated reports whether ev duplicates the previously seen event within
// the window. A duplicate joins the current group and should be dropped;
// anything else starts a new group and should be delivered.
func (d *Deduplicator) Repeated(ev *model.Event) bool {
	key := Key(ev)
	ts := ev.Timestamp
	if ts.IsZero() {
		ts = d.now()
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	if key == d.lastKey && ts.Sub(d.firstAt) <= d.window {
		d.repeats++
		return true
	}
	d.lastKey = key
	d.firstAt = ts
	d.repeats = 0
	return false
}

// Repeats returns how many events the current group has suppressed.
func (d *Deduplicator) Repeats() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.repeats
}

// Key derives the grouping key: the explicit fingerprint when present,
// otherwise the event's level, message, and exception descriptor.
func Key(ev *model.Event) string {
	if len(ev.Fingerprint) > 0 {
		return strings.Join(ev.Fingerprint, "\x00")
	}
	parts := []string{ev.Level, ev.Message}
	if ev.Exception != nil {
		parts = append(parts, ev.Exception.Type, ev.Exception.Value)
	}
	return strings.Join(parts, "\x00")
}
