package push

import (
	"context"
	"database/sql"
	"time"
)

// TokenRepository stores device push tokens. A user may have several active
// devices; tokens are deactivated rather than deleted so history survives.
type TokenRepository struct {
	db *sql.DB
}

func NewTokenRepository(db *sql.DB) *TokenRepository {
	return &TokenRepository{db: db}
}

// RegisterToken upserts a device token for a user. Re-registering an
// existing token reassigns it to the new user and reactivates it.
func (r *TokenRepository) RegisterToken(ctx context.Context, userID, token, platform string) error {
	query := `
		INSERT INTO device_tokens (token, user_id, platform, active, created_at, updated_at)
		VALUES ($1, $2, $3, TRUE, $4, $4)
		ON CONFLICT (token) DO UPDATE
		SET user_id = EXCLUDED.user_id, platform = EXCLUDED.platform, active = TRUE, updated_at = EXCLUDED.updated_at
	`
	_, err := r.db.ExecContext(ctx, query, token, userID, platform, time.Now())
	return err
}

// TokensByUser returns the user's active device tokens.
func (r *TokenRepository) TokensByUser(ctx context.Context, userID string) ([]string, error) {
	query := `SELECT token FROM device_tokens WHERE user_id = $1 AND active = TRUE`
	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tokens []string
	for rows.Next() {
		var token string
		if err := rows.Scan(&token); err != nil {
			return nil, err
		}
		tokens = append(tokens, token)
	}
	return tokens, rows.Err()
}

// Deactivate marks a token inactive, e.g. after the gateway reports it dead.
func (r *TokenRepository) Deactivate(ctx context.Context, token string) error {
	query := `UPDATE device_tokens SET active = FALSE, updated_at = $1 WHERE token = $2`
	_, err := r.db.ExecContext(ctx, query, time.Now(), token)
	return err
}
