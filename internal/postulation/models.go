package postulation

import (
	"time"
)

// Status is the closed set of postulation states. Legacy Spanish synonyms
// coming from older clients are normalized at the ingestion edge, see Normalize.
type Status string

const (
	StatusSubmitted   Status = "submitted"
	StatusUnderReview Status = "under_review"
	StatusAccepted    Status = "accepted"
	StatusRejected    Status = "rejected"
	StatusWaitlisted  Status = "waitlisted"
	StatusCancelled   Status = "cancelled"
	StatusCompleted   Status = "completed"
)

// Active reports whether a postulation in this status still counts toward
// derived reminders (pending or accepted-equivalent).
func (s Status) Active() bool {
	switch s {
	case StatusSubmitted, StatusUnderReview, StatusAccepted:
		return true
	}
	return false
}

type Postulation struct {
	ID            string    `json:"id"`
	UserID        string    `json:"user_id"`
	OpportunityID string    `json:"opportunity_id"`
	Status        Status    `json:"status"`
	Message       string    `json:"message,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

type ApplyRequest struct {
	OpportunityID string `json:"opportunity_id"`
	Message       string `json:"message,omitempty"`
}

type ReviewRequest struct {
	Status string `json:"status"`
}
