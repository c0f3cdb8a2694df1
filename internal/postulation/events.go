package postulation

import (
	"context"
	"encoding/json"
	"log"
)

type ChangeType string

const (
	ChangeAdded    ChangeType = "added"
	ChangeModified ChangeType = "modified"
	ChangeRemoved  ChangeType = "removed"
)

// ChangeEvent is the envelope published to the postulations.events topic for
// every write. The reminder daemon consumes these to detect status transitions.
type ChangeEvent struct {
	Type   ChangeType  `json:"type"`
	Record Postulation `json:"record"`
}

// EventPublisher is satisfied by messaging.KafkaProducer.
type EventPublisher interface {
	Publish(ctx context.Context, key string, value []byte) error
}

// publishChange emits a change event keyed by postulation id. Failures are
// logged and absorbed; a missed event must never fail the write itself.
func publishChange(ctx context.Context, pub EventPublisher, typ ChangeType, p Postulation) {
	if pub == nil {
		return
	}
	body, err := json.Marshal(ChangeEvent{Type: typ, Record: p})
	if err != nil {
		log.Printf("Failed to marshal postulation change event: %v", err)
		return
	}
	if err := pub.Publish(ctx, p.ID, body); err != nil {
		log.Printf("Failed to publish postulation change event for %s: %v", p.ID, err)
	}
}
