package reminder

import (
	"fmt"
	"testing"
	"time"
)

func TestSeenStateObserve(t *testing.T) {
	s := newSeenState()
	at := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

	prev, known := s.observe("post_1", "submitted", at)
	if known || prev != "" {
		t.Fatalf("first observation must be unknown, got %q/%v", prev, known)
	}

	prev, known = s.observe("post_1", "accepted", at)
	if !known || prev != "submitted" {
		t.Fatalf("expected previous submitted, got %q/%v", prev, known)
	}

	if len(s.Order) != 1 {
		t.Errorf("re-observing must not duplicate order entries, got %d", len(s.Order))
	}
}

func TestSeenStateEvictsBeyondCap(t *testing.T) {
	s := newSeenState()
	at := time.Now()

	for i := 0; i < seenCap+10; i++ {
		s.observe(fmt.Sprintf("post_%d", i), "submitted", at)
	}

	if len(s.Entries) != seenCap || len(s.Order) != seenCap {
		t.Fatalf("expected cap %d, got %d entries / %d order", seenCap, len(s.Entries), len(s.Order))
	}
	if _, ok := s.Entries["post_0"]; ok {
		t.Error("oldest entry should have been evicted")
	}
	if _, ok := s.Entries[fmt.Sprintf("post_%d", seenCap+9)]; !ok {
		t.Error("newest entry should be retained")
	}
}

func TestNotifiedStateFIFO(t *testing.T) {
	n := &notifiedState{}

	n.add("opp_1")
	n.add("opp_1")
	if len(n.IDs) != 1 {
		t.Fatalf("adding twice must not duplicate, got %d", len(n.IDs))
	}

	for i := 0; i < notifiedCap+5; i++ {
		n.add(fmt.Sprintf("extra_%d", i))
	}
	if len(n.IDs) != notifiedCap {
		t.Fatalf("expected cap %d, got %d", notifiedCap, len(n.IDs))
	}
	if n.contains("opp_1") {
		t.Error("oldest id should have been evicted first")
	}
	if !n.contains(fmt.Sprintf("extra_%d", notifiedCap+4)) {
		t.Error("newest id should be retained")
	}
}
