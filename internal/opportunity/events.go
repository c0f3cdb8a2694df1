package opportunity

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

// ChangeEvent is the envelope published to the opportunities.events topic.
type ChangeEvent struct {
	Type   ChangeType  `json:"type"`
	Record Opportunity `json:"record"`
}

// EventPublisher is satisfied by messaging.KafkaProducer.
type EventPublisher interface {
	Publish(ctx context.Context, key string, value []byte) error
}

func publishChange(ctx context.Context, pub EventPublisher, typ ChangeType, o Opportunity) {
	if pub == nil {
		return
	}
	body, err := json.Marshal(ChangeEvent{Type: typ, Record: o})
	if err != nil {
		log.Printf("Failed to marshal opportunity change event: %v", err)
		return
	}
	if err := pub.Publish(ctx, o.ID, body); err != nil {
		log.Printf("Failed to publish opportunity change event for %s: %v", o.ID, err)
	}
}
