package reminder

import (
	"fmt"
	"time"
)

// Caps on the persisted dedup structures. Oldest entries are evicted first
// so the state stays bounded across long-lived installs.
const (
	seenCap     = 500
	notifiedCap = 100
)

func seenKey(userID string) string      { return fmt.Sprintf("reminder:seen:%s", userID) }
func notifiedKey(userID string) string  { return fmt.Sprintf("reminder:notified:%s", userID) }
func scheduledKey(userID string) string { return fmt.Sprintf("reminder:scheduled:%s", userID) }

type seenEntry struct {
	Status     string    `json:"status"`
	ObservedAt time.Time `json:"observed_at"`
}

// seenState maps postulation id to the last observed status, FIFO-capped.
type seenState struct {
	Order   []string             `json:"order"`
	Entries map[string]seenEntry `json:"entries"`
}

func newSeenState() *seenState {
	return &seenState{Entries: make(map[string]seenEntry)}
}

// observe records a status observation and returns the previously known
// status, if any.
func (s *seenState) observe(id, status string, at time.Time) (prev string, known bool) {
	if s.Entries == nil {
		s.Entries = make(map[string]seenEntry)
	}
	entry, known := s.Entries[id]
	if !known {
		s.Order = append(s.Order, id)
		for len(s.Order) > seenCap {
			evicted := s.Order[0]
			s.Order = s.Order[1:]
			delete(s.Entries, evicted)
		}
	}
	s.Entries[id] = seenEntry{Status: status, ObservedAt: at}
	return entry.Status, known
}

// notifiedState is the FIFO-capped set of opportunity ids already announced.
type notifiedState struct {
	IDs []string `json:"ids"`
}

func (n *notifiedState) contains(id string) bool {
	for _, existing := range n.IDs {
		if existing == id {
			return true
		}
	}
	return false
}

func (n *notifiedState) add(id string) {
	if n.contains(id) {
		return
	}
	n.IDs = append(n.IDs, id)
	for len(n.IDs) > notifiedCap {
		n.IDs = n.IDs[1:]
	}
}

// scheduleState tracks the currently pending reminder ids and the generation
// counter used to sweep stale reminders that a failed cancel pass left behind.
type scheduleState struct {
	Generation int64    `json:"generation"`
	IDs        []string `json:"ids"`
}
