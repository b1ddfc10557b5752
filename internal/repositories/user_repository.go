package repositories

import (
	"context"
	"errors"
	"fmt"

	"discount-backend/internal/models"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// isUniqueViolation reports whether err is a PostgreSQL unique constraint
// violation (SQLSTATE 23505)
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

type UserRepository struct {
	DB *pgxpool.Pool
}

func NewUserRepository(db *pgxpool.Pool) *UserRepository {
	return &UserRepository{DB: db}
}

const userColumns = `id, username, email, COALESCE(mobile, '') as mobile, password_hash, role, is_active, created_at`

// GetByID returns a user by ID, nil when not found
func (r *UserRepository) GetByID(ctx context.Context, id int) (*models.User, error) {
	query := fmt.Sprintf(`SELECT %s FROM users WHERE id = $1`, userColumns)

	var u models.User
	err := r.DB.QueryRow(ctx, query, id).Scan(
		&u.ID, &u.Username, &u.Email, &u.Mobile, &u.PasswordHash, &u.Role, &u.IsActive, &u.CreatedAt,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}

	return &u, nil
}

// GetByLogin finds a user by username or email (case-insensitive on email)
func (r *UserRepository) GetByLogin(ctx context.Context, login string) (*models.User, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM users
		WHERE username = $1 OR LOWER(email) = LOWER($1)
		LIMIT 1
	`, userColumns)

	var u models.User
	err := r.DB.QueryRow(ctx, query, login).Scan(
		&u.ID, &u.Username, &u.Email, &u.Mobile, &u.PasswordHash, &u.Role, &u.IsActive, &u.CreatedAt,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}

	return &u, nil
}

// List returns all users ordered by username
func (r *UserRepository) List(ctx context.Context) ([]models.User, error) {
	query := fmt.Sprintf(`SELECT %s FROM users ORDER BY username ASC`, userColumns)

	rows, err := r.DB.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []models.User
	for rows.Next() {
		var u models.User
		if err := rows.Scan(&u.ID, &u.Username, &u.Email, &u.Mobile, &u.PasswordHash, &u.Role, &u.IsActive, &u.CreatedAt); err != nil {
			return nil, err
		}
		users = append(users, u)
	}

	return users, rows.Err()
}

// Create inserts a new user. Returns models.ErrConflict when the username,
// email or mobile is already taken.
func (r *UserRepository) Create(ctx context.Context, u *models.User) error {
	query := `
		INSERT INTO users(username, email, mobile, password_hash, role, is_active)
		VALUES($1, $2, NULLIF($3, ''), $4, $5, $6)
		RETURNING id, created_at
	`

	err := r.DB.QueryRow(ctx, query,
		u.Username, u.Email, u.Mobile, u.PasswordHash, u.Role, u.IsActive,
	).Scan(&u.ID, &u.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("username, email or mobile already in use: %w", models.ErrConflict)
		}
		return fmt.Errorf("failed to create user: %w", err)
	}

	return nil
}

// ListActiveByRole returns active users with the given role
func (r *UserRepository) ListActiveByRole(ctx context.Context, role models.Role) ([]models.User, error) {
	query := fmt.Sprintf(`SELECT %s FROM users WHERE role = $1 AND is_active ORDER BY username ASC`, userColumns)

	rows, err := r.DB.Query(ctx, query, role)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []models.User
	for rows.Next() {
		var u models.User
		if err := rows.Scan(&u.ID, &u.Username, &u.Email, &u.Mobile, &u.PasswordHash, &u.Role, &u.IsActive, &u.CreatedAt); err != nil {
			return nil, err
		}
		users = append(users, u)
	}

	return users, rows.Err()
}
