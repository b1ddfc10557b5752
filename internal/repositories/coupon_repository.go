package repositories

import (
	"context"
	"fmt"

	"discount-backend/internal/models"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type CouponRepository struct {
	DB *pgxpool.Pool
}

func NewCouponRepository(db *pgxpool.Pool) *CouponRepository {
	return &CouponRepository{DB: db}
}

// CreateGroup inserts a discount tier. Duplicate names return models.ErrConflict.
func (r *CouponRepository) CreateGroup(ctx context.Context, g *models.CouponGroup) error {
	query := `
		INSERT INTO coupon_groups(name, percent)
		VALUES($1, $2)
		RETURNING id, created_at
	`

	err := r.DB.QueryRow(ctx, query, g.Name, g.Percent).Scan(&g.ID, &g.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("group %q already exists: %w", g.Name, models.ErrConflict)
		}
		return fmt.Errorf("failed to create coupon group: %w", err)
	}

	return nil
}

// GetGroup returns a group by ID, nil when not found
func (r *CouponRepository) GetGroup(ctx context.Context, id int) (*models.CouponGroup, error) {
	query := `SELECT id, name, percent, created_at FROM coupon_groups WHERE id = $1`

	var g models.CouponGroup
	err := r.DB.QueryRow(ctx, query, id).Scan(&g.ID, &g.Name, &g.Percent, &g.CreatedAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}

	return &g, nil
}

// ListGroups returns all groups ordered by discount percent
func (r *CouponRepository) ListGroups(ctx context.Context) ([]models.CouponGroup, error) {
	rows, err := r.DB.Query(ctx, `SELECT id, name, percent, created_at FROM coupon_groups ORDER BY percent ASC, id ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var groups []models.CouponGroup
	for rows.Next() {
		var g models.CouponGroup
		if err := rows.Scan(&g.ID, &g.Name, &g.Percent, &g.CreatedAt); err != nil {
			return nil, err
		}
		groups = append(groups, g)
	}

	return groups, rows.Err()
}

// Enlist bulk-inserts coupon codes into a group inside one transaction.
// A code that already exists anywhere in the inventory aborts the whole
// batch with models.ErrConflict; duplicates inside the batch are skipped.
func (r *CouponRepository) Enlist(ctx context.Context, groupID int, codes []string) (*models.EnlistResult, error) {
	tx, err := r.DB.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	result := &models.EnlistResult{}
	seen := make(map[string]bool, len(codes))

	for _, code := range codes {
		if seen[code] {
			result.Skipped = append(result.Skipped, code)
			continue
		}
		seen[code] = true

		_, err := tx.Exec(ctx,
			`INSERT INTO coupons(code, group_id) VALUES($1, $2)`,
			code, groupID,
		)
		if err != nil {
			if isUniqueViolation(err) {
				return nil, fmt.Errorf("coupon code %q already enlisted: %w", code, models.ErrConflict)
			}
			return nil, fmt.Errorf("failed to enlist coupon %q: %w", code, err)
		}
		result.Added++
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}

	return result, nil
}

// List returns the most recent coupons with group and assignment info
func (r *CouponRepository) List(ctx context.Context, limit int) ([]models.Coupon, error) {
	if limit <= 0 {
		limit = 500
	}

	query := `
		SELECT c.id, c.code, c.group_id, g.name, g.percent, c.enlisted_at,
			c.assigned_request_id, COALESCE(c.assigned_to_name, '') as assigned_to_name,
			COALESCE(c.assigned_to_mobile, '') as assigned_to_mobile,
			c.assigned_by_user_id, c.assigned_at, c.is_active
		FROM coupons c
		JOIN coupon_groups g ON g.id = c.group_id
		ORDER BY c.id DESC
		LIMIT $1
	`

	rows, err := r.DB.Query(ctx, query, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var coupons []models.Coupon
	for rows.Next() {
		var c models.Coupon
		err := rows.Scan(
			&c.ID, &c.Code, &c.GroupID, &c.GroupName, &c.GroupPercent, &c.EnlistedAt,
			&c.AssignedRequestID, &c.AssignedToName, &c.AssignedToMobile,
			&c.AssignedByUserID, &c.AssignedAt, &c.IsActive,
		)
		if err != nil {
			return nil, err
		}
		coupons = append(coupons, c)
	}

	return coupons, rows.Err()
}

// GroupStocks returns the free/assigned coupon counts for every group
func (r *CouponRepository) GroupStocks(ctx context.Context) ([]models.GroupStock, error) {
	query := `
		SELECT g.id, g.name, g.percent, g.created_at,
			COUNT(c.id) FILTER (WHERE c.assigned_request_id IS NULL AND c.is_active) as free,
			COUNT(c.id) FILTER (WHERE c.assigned_request_id IS NOT NULL) as assigned
		FROM coupon_groups g
		LEFT JOIN coupons c ON c.group_id = g.id
		GROUP BY g.id
		ORDER BY g.percent ASC, g.id ASC
	`

	rows, err := r.DB.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var stocks []models.GroupStock
	for rows.Next() {
		var s models.GroupStock
		err := rows.Scan(&s.Group.ID, &s.Group.Name, &s.Group.Percent, &s.Group.CreatedAt, &s.Free, &s.Assigned)
		if err != nil {
			return nil, err
		}
		stocks = append(stocks, s)
	}

	return stocks, rows.Err()
}

// CountFree returns the number of unassigned active coupons in a group
func (r *CouponRepository) CountFree(ctx context.Context, groupID int) (int, error) {
	var count int
	err := r.DB.QueryRow(ctx,
		`SELECT COUNT(*) FROM coupons WHERE group_id = $1 AND assigned_request_id IS NULL AND is_active`,
		groupID,
	).Scan(&count)
	return count, err
}
