package search

import (
	"sync"
	"time"
)

// SearchEvent records one completed (or failed) pipeline run. Events are
// emitted to an observer; the pipeline's correctness never depends on them.
type SearchEvent struct {
	ID        string        `json:"id"`
	Query     string        `json:"query"`
	Variants  int           `json:"variants"`
	Retrieved int           `json:"retrieved"`
	Unique    int           `json:"unique"`
	Returned  int           `json:"returned"`
	Degraded  bool          `json:"degraded"`
	Error     string        `json:"error,omitempty"`
	Duration  time.Duration `json:"duration"`
	StartedAt time.Time     `json:"started_at"`
}

// Collector receives pipeline events. Implementations must be safe for
// concurrent use.
type Collector interface {
	Record(event SearchEvent)
}

// NopCollector discards all events.
type NopCollector struct{}

func (NopCollector) Record(SearchEvent) {}

// RingCollector keeps the most recent events in a fixed-size ring plus
// running aggregates, so history stays bounded no matter how long the
// process runs.
type RingCollector struct {
	mu     sync.Mutex
	events []SearchEvent
	next   int
	filled bool

	total         int64
	failures      int64
	degraded      int64
	totalDuration time.Duration
}

func NewRingCollector(capacity int) *RingCollector {
	if capacity <= 0 {
		capacity = 100
	}
	return &RingCollector{events: make([]SearchEvent, capacity)}
}

func (c *RingCollector) Record(event SearchEvent) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.events[c.next] = event
	c.next++
	if c.next == len(c.events) {
		c.next = 0
		c.filled = true
	}
	c.total++
	c.totalDuration += event.Duration
	if event.Error != "" {
		c.failures++
	}
	if event.Degraded {
		c.degraded++
	}
}

// Events returns the retained events, oldest first.
func (c *RingCollector) Events() []SearchEvent {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.filled {
		out := make([]SearchEvent, c.next)
		copy(out, c.events[:c.next])
		return out
	}
	out := make([]SearchEvent, 0, len(c.events))
	out = append(out, c.events[c.next:]...)
	out = append(out, c.events[:c.next]...)
	return out
}

// MetricsSnapshot aggregates collector state for the status endpoint.
type MetricsSnapshot struct {
	TotalSearches   int64         `json:"total_searches"`
	Failures        int64         `json:"failures"`
	DegradedLookups int64         `json:"degraded_reranks"`
	AverageDuration time.Duration `json:"average_duration"`
}

func (c *RingCollector) Snapshot() MetricsSnapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	snap := MetricsSnapshot{
		TotalSearches:   c.total,
		Failures:        c.failures,
		DegradedLookups: c.degraded,
	}
	if c.total > 0 {
		snap.AverageDuration = c.totalDuration / time.Duration(c.total)
	}
	return snap
}
