package postulation

import (
	"context"
	"database/sql"
	"time"
)

// Repository handles database operations for postulations.
type Repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) Create(ctx context.Context, p *Postulation) error {
	query := `
		INSERT INTO postulations (id, user_id, opportunity_id, status, message, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	_, err := r.db.ExecContext(ctx, query,
		p.ID, p.UserID, p.OpportunityID, p.Status, p.Message, p.CreatedAt, p.UpdatedAt,
	)
	return err
}

// GetByID retrieves a postulation by its ID. Returns (nil, nil) when absent.
func (r *Repository) GetByID(ctx context.Context, id string) (*Postulation, error) {
	query := `
		SELECT id, user_id, opportunity_id, status, message, created_at, updated_at
		FROM postulations WHERE id = $1
	`
	row := r.db.QueryRowContext(ctx, query, id)

	var p Postulation
	err := row.Scan(&p.ID, &p.UserID, &p.OpportunityID, &p.Status, &p.Message, &p.CreatedAt, &p.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *Repository) ListByUser(ctx context.Context, userID string) ([]Postulation, error) {
	query := `
		SELECT id, user_id, opportunity_id, status, message, created_at, updated_at
		FROM postulations WHERE user_id = $1 ORDER BY created_at DESC
	`
	return r.queryMany(ctx, query, userID)
}

// ListActiveByUser returns the user's postulations in a reminder-relevant
// status (submitted, under_review, accepted).
func (r *Repository) ListActiveByUser(ctx context.Context, userID string) ([]Postulation, error) {
	query := `
		SELECT id, user_id, opportunity_id, status, message, created_at, updated_at
		FROM postulations
		WHERE user_id = $1 AND status IN ('submitted', 'under_review', 'accepted')
		ORDER BY created_at DESC
	`
	return r.queryMany(ctx, query, userID)
}

// GetByUserAndOpportunity returns the user's postulation for an opportunity,
// or (nil, nil) when none exists.
func (r *Repository) GetByUserAndOpportunity(ctx context.Context, userID, opportunityID string) (*Postulation, error) {
	query := `
		SELECT id, user_id, opportunity_id, status, message, created_at, updated_at
		FROM postulations WHERE user_id = $1 AND opportunity_id = $2
	`
	row := r.db.QueryRowContext(ctx, query, userID, opportunityID)

	var p Postulation
	err := row.Scan(&p.ID, &p.UserID, &p.OpportunityID, &p.Status, &p.Message, &p.CreatedAt, &p.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *Repository) UpdateStatus(ctx context.Context, id string, status Status, updatedAt time.Time) error {
	query := `UPDATE postulations SET status = $1, updated_at = $2 WHERE id = $3`
	_, err := r.db.ExecContext(ctx, query, status, updatedAt, id)
	return err
}

// ListActiveUserIDs returns the distinct users that currently hold at least
// one active postulation. The reminder daemon uses this to bootstrap engines.
func (r *Repository) ListActiveUserIDs(ctx context.Context) ([]string, error) {
	query := `
		SELECT DISTINCT user_id FROM postulations
		WHERE status IN ('submitted', 'under_review', 'accepted')
	`
	rows, err := r.db.QueryContext(ctx, query)
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

func (r *Repository) queryMany(ctx context.Context, query string, args ...any) ([]Postulation, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []Postulation
	for rows.Next() {
		var p Postulation
		if err := rows.Scan(&p.ID, &p.UserID, &p.OpportunityID, &p.Status, &p.Message, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, err
		}
		items = append(items, p)
	}
	return items, rows.Err()
}
