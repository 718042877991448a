package search

import (
	"fmt"
	"testing"
	"time"
)

func TestRingCollectorBoundedHistory(t *testing.T) {
	c := NewRingCollector(3)
	for i := 0; i < 5; i++ {
		c.Record(SearchEvent{Query: fmt.Sprintf("q%d", i)})
	}
	events := c.Events()
	if len(events) != 3 {
		t.Fatalf("expected history capped at 3, got %d", len(events))
	}
	want := []string{"q2", "q3", "q4"}
	for i, q := range want {
		if events[i].Query != q {
			t.Fatalf("expected oldest-first order, position %d got %q", i, events[i].Query)
		}
	}
}

func TestRingCollectorPartialFill(t *testing.T) {
	c := NewRingCollector(10)
	c.Record(SearchEvent{Query: "only"})
	events := c.Events()
	if len(events) != 1 || events[0].Query != "only" {
		t.Fatalf("unexpected events: %+v", events)
	}
}

func TestRingCollectorSnapshot(t *testing.T) {
	c := NewRingCollector(2)
	c.Record(SearchEvent{Duration: 100 * time.Millisecond})
	c.Record(SearchEvent{Duration: 300 * time.Millisecond, Degraded: true})
	c.Record(SearchEvent{Duration: 200 * time.Millisecond, Error: "boom"})

	snap := c.Snapshot()
	if snap.TotalSearches != 3 {
		t.Fatalf("aggregates must outlive the ring: total %d", snap.TotalSearches)
	}
	if snap.Failures != 1 || snap.DegradedLookups != 1 {
		t.Fatalf("unexpected counters: %+v", snap)
	}
	if snap.AverageDuration != 200*time.Millisecond {
		t.Fatalf("want 200ms average, got %v", snap.AverageDuration)
	}
}
