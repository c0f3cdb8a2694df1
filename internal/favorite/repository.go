package favorite

import (
	"context"
	"database/sql"
	"time"
)

// Favorite marks an opportunity a user wants to keep an eye on.
type Favorite struct {
	UserID        string    `json:"user_id"`
	OpportunityID string    `json:"opportunity_id"`
	CreatedAt     time.Time `json:"created_at"`
}

type Repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

// Toggle flips the favorite state and reports the new state.
func (r *Repository) Toggle(ctx context.Context, userID, opportunityID string) (bool, error) {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM favorites WHERE user_id = $1 AND opportunity_id = $2`,
		userID, opportunityID,
	)
	if err != nil {
		return false, err
	}
	deleted, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	if deleted > 0 {
		return false, nil
	}

	_, err = r.db.ExecContext(ctx,
		`INSERT INTO favorites (user_id, opportunity_id, created_at) VALUES ($1, $2, $3)`,
		userID, opportunityID, time.Now(),
	)
	if err != nil {
		return false, err
	}
	return true, nil
}

// ListByUser returns the user's favorited opportunity ids, newest first.
func (r *Repository) ListByUser(ctx context.Context, userID string) ([]string, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT opportunity_id FROM favorites WHERE user_id = $1 ORDER BY created_at DESC`,
		userID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// IsFavorite reports whether the user has favorited the opportunity.
func (r *Repository) IsFavorite(ctx context.Context, userID, opportunityID string) (bool, error) {
	var exists bool
	err := r.db.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM favorites WHERE user_id = $1 AND opportunity_id = $2)`,
		userID, opportunityID,
	).Scan(&exists)
	return exists, err
}
