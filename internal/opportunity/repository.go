package opportunity

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/lib/pq"
)

// Repository handles database operations for opportunities.
type Repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

const selectColumns = `
	id, organizer_id, title, description, category, modality, status,
	capacity, hours, enroll_deadline, starts_at, lat, lng, created_at, updated_at
`

func (r *Repository) Create(ctx context.Context, o *Opportunity) error {
	query := `
		INSERT INTO opportunities (id, organizer_id, title, description, category, modality, status,
			capacity, hours, enroll_deadline, starts_at, lat, lng, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
	`
	_, err := r.db.ExecContext(ctx, query,
		o.ID, o.OrganizerID, o.Title, o.Description, o.Category, o.Modality, o.Status,
		o.Capacity, o.Hours, o.EnrollDeadline, o.StartsAt, o.Lat, o.Lng, o.CreatedAt, o.UpdatedAt,
	)
	return err
}

func (r *Repository) Update(ctx context.Context, o *Opportunity) error {
	query := `
		UPDATE opportunities SET title = $1, description = $2, category = $3, modality = $4,
			status = $5, capacity = $6, hours = $7, enroll_deadline = $8, starts_at = $9,
			lat = $10, lng = $11, updated_at = $12
		WHERE id = $13
	`
	_, err := r.db.ExecContext(ctx, query,
		o.Title, o.Description, o.Category, o.Modality, o.Status, o.Capacity, o.Hours,
		o.EnrollDeadline, o.StartsAt, o.Lat, o.Lng, o.UpdatedAt, o.ID,
	)
	return err
}

// GetByID retrieves an opportunity by its ID. Returns (nil, nil) when absent.
func (r *Repository) GetByID(ctx context.Context, id string) (*Opportunity, error) {
	query := `SELECT ` + selectColumns + ` FROM opportunities WHERE id = $1`
	row := r.db.QueryRowContext(ctx, query, id)

	var o Opportunity
	err := scanOpportunity(row.Scan, &o)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &o, nil
}

// GetByIDs retrieves the opportunities for the given ids, in no particular order.
func (r *Repository) GetByIDs(ctx context.Context, ids []string) ([]Opportunity, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	query := `SELECT ` + selectColumns + ` FROM opportunities WHERE id = ANY($1)`
	rows, err := r.db.QueryContext(ctx, query, pq.Array(ids))
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectOpportunities(rows)
}

func (r *Repository) List(ctx context.Context, f Filters) ([]Opportunity, error) {
	limit := f.Limit
	if limit <= 0 || limit > 100 {
		limit = 50
	}

	query := `SELECT ` + selectColumns + ` FROM opportunities WHERE 1=1`
	args := []any{}
	if f.Status != "" {
		args = append(args, f.Status)
		query += fmt.Sprintf(" AND status = $%d", len(args))
	}
	if f.Category != "" {
		args = append(args, f.Category)
		query += fmt.Sprintf(" AND category = $%d", len(args))
	}
	args = append(args, limit, f.Offset)
	query += fmt.Sprintf(" ORDER BY created_at DESC LIMIT $%d OFFSET $%d", len(args)-1, len(args))

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectOpportunities(rows)
}

func scanOpportunity(scan func(dest ...any) error, o *Opportunity) error {
	return scan(
		&o.ID, &o.OrganizerID, &o.Title, &o.Description, &o.Category, &o.Modality, &o.Status,
		&o.Capacity, &o.Hours, &o.EnrollDeadline, &o.StartsAt, &o.Lat, &o.Lng, &o.CreatedAt, &o.UpdatedAt,
	)
}

func collectOpportunities(rows *sql.Rows) ([]Opportunity, error) {
	var items []Opportunity
	for rows.Next() {
		var o Opportunity
		if err := scanOpportunity(rows.Scan, &o); err != nil {
			return nil, err
		}
		items = append(items, o)
	}
	return items, rows.Err()
}
