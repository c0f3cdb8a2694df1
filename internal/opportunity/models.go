package opportunity

import "time"

type Status string

const (
	StatusOpen     Status = "open"
	StatusWaitlist Status = "waitlist"
	StatusClosed   Status = "closed"
	StatusFinished Status = "finished"
)

// Opportunity is a volunteer activity listing. EnrollDeadline and StartsAt
// are optional; reminders are derived only from the timestamps that exist.
type Opportunity struct {
	ID             string     `json:"id"`
	OrganizerID    string     `json:"organizer_id"`
	Title          string     `json:"title"`
	Description    string     `json:"description,omitempty"`
	Category       string     `json:"category"`
	Modality       string     `json:"modality,omitempty"` // presencial | remoto | mixto
	Status         Status     `json:"status"`
	Capacity       int        `json:"capacity"`
	Hours          int        `json:"hours"` // credited volunteer hours
	EnrollDeadline *time.Time `json:"enroll_deadline,omitempty"`
	StartsAt       *time.Time `json:"starts_at,omitempty"`
	Lat            *float64   `json:"lat,omitempty"`
	Lng            *float64   `json:"lng,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
}

type CreateRequest struct {
	Title          string     `json:"title"`
	Description    string     `json:"description,omitempty"`
	Category       string     `json:"category"`
	Modality       string     `json:"modality,omitempty"`
	Capacity       int        `json:"capacity"`
	Hours          int        `json:"hours"`
	EnrollDeadline *time.Time `json:"enroll_deadline,omitempty"`
	StartsAt       *time.Time `json:"starts_at,omitempty"`
	Lat            *float64   `json:"lat,omitempty"`
	Lng            *float64   `json:"lng,omitempty"`
}

type Filters struct {
	Status   Status
	Category string
	Limit    int
	Offset   int
}
