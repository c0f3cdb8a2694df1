package notify

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// EventType represents the type of business event
type EventType string

const (
	EventPostulationStatusChanged EventType = "postulation.status_changed"
	EventOpportunityPublished     EventType = "opportunity.published"
	EventReminderDue              EventType = "reminder.due"
)

// Event is the envelope for all business events
type Event struct {
	ID        string          `json:"id"`
	Type      EventType       `json:"type"`
	Timestamp time.Time       `json:"timestamp"`
	Data      json.RawMessage `json:"data"`
}

// StatusChangeData describes a reviewed postulation decision.
type StatusChangeData struct {
	PostulationID    string `json:"postulation_id"`
	UserID           string `json:"user_id"`
	OpportunityID    string `json:"opportunity_id"`
	OpportunityTitle string `json:"opportunity_title,omitempty"`
	Status           string `json:"status"`
}

// OpportunityPublishedData describes a newly published opportunity.
type OpportunityPublishedData struct {
	OpportunityID string `json:"opportunity_id"`
	Title         string `json:"title"`
	Category      string `json:"category,omitempty"`
}

// ReminderDueData describes a deadline or start reminder that fired.
type ReminderDueData struct {
	UserID        string `json:"user_id"`
	OpportunityID string `json:"opportunity_id"`
	Title         string `json:"title"`
	Body          string `json:"body"`
}

// NewEvent creates a new event with the given type and data
func NewEvent(eventType EventType, data interface{}) (*Event, error) {
	dataBytes, err := json.Marshal(data)
	if err != nil {
		return nil, err
	}

	return &Event{
		ID:        "evt_" + uuid.NewString(),
		Type:      eventType,
		Timestamp: time.Now().UTC(),
		Data:      dataBytes,
	}, nil
}

// ParseStatusChangeData parses the event data as StatusChangeData
func (e *Event) ParseStatusChangeData() (*StatusChangeData, error) {
	var data StatusChangeData
	if err := json.Unmarshal(e.Data, &data); err != nil {
		return nil, err
	}
	return &data, nil
}

// ParseOpportunityPublishedData parses the event data as OpportunityPublishedData
func (e *Event) ParseOpportunityPublishedData() (*OpportunityPublishedData, error) {
	var data OpportunityPublishedData
	if err := json.Unmarshal(e.Data, &data); err != nil {
		return nil, err
	}
	return &data, nil
}

// ParseReminderDueData parses the event data as ReminderDueData
func (e *Event) ParseReminderDueData() (*ReminderDueData, error) {
	var data ReminderDueData
	if err := json.Unmarshal(e.Data, &data); err != nil {
		return nil, err
	}
	return &data, nil
}
