package repositories

import (
	"context"
	"fmt"

	"discount-backend/internal/models"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type ContactRepository struct {
	DB *pgxpool.Pool
}

func NewContactRepository(db *pgxpool.Pool) *ContactRepository {
	return &ContactRepository{DB: db}
}

// Create inserts a contact. Mobile must already be normalized; a duplicate
// mobile returns models.ErrConflict.
func (r *ContactRepository) Create(ctx context.Context, c *models.Contact) error {
	query := `
		INSERT INTO contacts(full_name, mobile, notes)
		VALUES($1, $2, $3)
		RETURNING id, created_at
	`

	err := r.DB.QueryRow(ctx, query, c.FullName, c.Mobile, c.Notes).Scan(&c.ID, &c.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("mobile %s already registered: %w", c.Mobile, models.ErrConflict)
		}
		return fmt.Errorf("failed to create contact: %w", err)
	}

	return nil
}

// List returns one page of contacts, newest first, plus the total row count
func (r *ContactRepository) List(ctx context.Context, offset, limit int) ([]models.Contact, int, error) {
	var total int
	if err := r.DB.QueryRow(ctx, `SELECT COUNT(*) FROM contacts`).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := `
		SELECT id, COALESCE(full_name, '') as full_name, mobile, COALESCE(notes, '') as notes, created_at
		FROM contacts
		ORDER BY id DESC
		OFFSET $1 LIMIT $2
	`

	rows, err := r.DB.Query(ctx, query, offset, limit)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var contacts []models.Contact
	for rows.Next() {
		var c models.Contact
		if err := rows.Scan(&c.ID, &c.FullName, &c.Mobile, &c.Notes, &c.CreatedAt); err != nil {
			return nil, 0, err
		}
		contacts = append(contacts, c)
	}

	return contacts, total, rows.Err()
}

// GetByMobile returns the contact with the given normalized mobile, nil when
// none exists
func (r *ContactRepository) GetByMobile(ctx context.Context, mobile string) (*models.Contact, error) {
	query := `
		SELECT id, COALESCE(full_name, '') as full_name, mobile, COALESCE(notes, '') as notes, created_at
		FROM contacts
		WHERE mobile = $1
	`

	var c models.Contact
	err := r.DB.QueryRow(ctx, query, mobile).Scan(&c.ID, &c.FullName, &c.Mobile, &c.Notes, &c.CreatedAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}

	return &c, nil
}
