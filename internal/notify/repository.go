package notify

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Repository persists the notification delivery history.
type Repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

// Create inserts a new notification into the database.
func (r *Repository) Create(ctx context.Context, n *Notification) error {
	if n.ID == "" {
		n.ID = uuid.NewString()
	}
	n.CreatedAt = time.Now()
	if n.Status == StatusSent {
		now := n.CreatedAt
		n.SentAt = &now
	}

	data, err := json.Marshal(n.Data)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO notifications (id, user_id, recipient, channel, title, body, data, status, created_at, sent_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`
	_, err = r.db.ExecContext(ctx, query,
		n.ID, n.UserID, n.Recipient, n.Channel, n.Title, n.Body, data, n.Status, n.CreatedAt, n.SentAt,
	)
	return err
}

// UpdateStatus updates the status and sent_at timestamp of a notification.
func (r *Repository) UpdateStatus(ctx context.Context, id string, status Status) error {
	query := `UPDATE notifications SET status = $1, sent_at = $2 WHERE id = $3`
	var sentAt *time.Time
	if status == StatusSent {
		now := time.Now()
		sentAt = &now
	}
	_, err := r.db.ExecContext(ctx, query, status, sentAt, id)
	return err
}

// GetByID retrieves a notification by its ID.
func (r *Repository) GetByID(ctx context.Context, id string) (*Notification, error) {
	query := `
		SELECT id, user_id, recipient, channel, title, body, data, status, created_at, sent_at
		FROM notifications WHERE id = $1
	`
	row := r.db.QueryRowContext(ctx, query, id)
	n, err := scanNotification(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return n, nil
}

// ListByUser retrieves all notifications for a given user, newest first.
func (r *Repository) ListByUser(ctx context.Context, userID string) ([]*Notification, error) {
	query := `
		SELECT id, user_id, recipient, channel, title, body, data, status, created_at, sent_at
		FROM notifications WHERE user_id = $1 ORDER BY created_at DESC
	`
	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var notifications []*Notification
	for rows.Next() {
		n, err := scanNotification(rows)
		if err != nil {
			return nil, err
		}
		notifications = append(notifications, n)
	}
	return notifications, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanNotification(row rowScanner) (*Notification, error) {
	var n Notification
	var data []byte
	if err := row.Scan(&n.ID, &n.UserID, &n.Recipient, &n.Channel, &n.Title, &n.Body, &data, &n.Status, &n.CreatedAt, &n.SentAt); err != nil {
		return nil, err
	}
	if len(data) > 0 {
		if err := json.Unmarshal(data, &n.Data); err != nil {
			return nil, err
		}
	}
	return &n, nil
}
