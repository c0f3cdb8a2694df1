package notify

import (
	"time"
)

type Channel string

const (
	Push  Channel = "push"
	Email Channel = "email"
)

type Status string

const (
	StatusPending Status = "pending"
	StatusSent    Status = "sent"
	StatusFailed  Status = "failed"
)

// Payload types carried in the "type" key of every notification's data map.
// Mobile clients switch on this value to route taps.
const (
	TypePostulacionStatus = "postulacion_status"
	TypeNuevaOportunidad  = "nueva_oportunidad"
	TypeRecordatorio      = "recordatorio"
)

// Notification is the delivery record kept for history and auditing.
type Notification struct {
	ID        string            `json:"id"`
	UserID    string            `json:"user_id"`
	Recipient string            `json:"recipient"`
	Channel   Channel           `json:"channel"`
	Title     string            `json:"title,omitempty"`
	Body      string            `json:"body"`
	Data      map[string]string `json:"data,omitempty"`
	Status    Status            `json:"status"`
	CreatedAt time.Time         `json:"created_at"`
	SentAt    *time.Time        `json:"sent_at,omitempty"`
}

// Task is the unit of work consumed by delivery workers from RabbitMQ.
type Task struct {
	ID         string            `json:"id"`
	Channel    Channel           `json:"channel"`
	UserID     string            `json:"user_id"`
	Recipient  string            `json:"recipient"`
	TemplateID string            `json:"template_id"`
	Title      string            `json:"title"`
	Data       map[string]string `json:"data"`
	EventID    string            `json:"event_id"`
	EventType  EventType         `json:"event_type"`
	RetryCount int               `json:"retry_count"`
	MaxRetries int               `json:"max_retries"`
}
