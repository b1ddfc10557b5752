package repositories

import (
	"context"
	"fmt"

	"discount-backend/internal/models"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// SessionRepository persists login sessions. Implements auth.SessionStore.
type SessionRepository struct {
	DB *pgxpool.Pool
}

func NewSessionRepository(db *pgxpool.Pool) *SessionRepository {
	return &SessionRepository{DB: db}
}

// Create inserts a session row
func (r *SessionRepository) Create(ctx context.Context, session *models.Session) error {
	_, err := r.DB.Exec(ctx, `
		INSERT INTO sessions(id, user_id, username, role, created_at, expires_at)
		VALUES($1, $2, $3, $4, $5, $6)
	`, session.ID, session.UserID, session.Username, session.Role, session.CreatedAt, session.ExpiresAt)
	if err != nil {
		return fmt.Errorf("failed to create session: %w", err)
	}
	return nil
}

// Get returns a session by ID, nil when unknown
func (r *SessionRepository) Get(ctx context.Context, id string) (*models.Session, error) {
	var s models.Session
	err := r.DB.QueryRow(ctx, `
		SELECT id, user_id, username, role, created_at, expires_at
		FROM sessions WHERE id = $1
	`, id).Scan(&s.ID, &s.UserID, &s.Username, &s.Role, &s.CreatedAt, &s.ExpiresAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return &s, nil
}

// Delete removes a session row
func (r *SessionRepository) Delete(ctx context.Context, id string) error {
	_, err := r.DB.Exec(ctx, `DELETE FROM sessions WHERE id = $1`, id)
	return err
}

// DeleteExpired removes all sessions past their expiry
func (r *SessionRepository) DeleteExpired(ctx context.Context) (int, error) {
	result, err := r.DB.Exec(ctx, `DELETE FROM sessions WHERE expires_at < CURRENT_TIMESTAMP`)
	if err != nil {
		return 0, err
	}
	return int(result.RowsAffected()), nil
}
