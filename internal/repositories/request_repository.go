package repositories

import (
	"context"
	"fmt"
	"strings"

	"discount-backend/internal/models"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type RequestRepository struct {
	DB *pgxpool.Pool
}

func NewRequestRepository(db *pgxpool.Pool) *RequestRepository {
	return &RequestRepository{DB: db}
}

const requestSelect = `
	SELECT r.id, r.request_code, r.customer_name, r.customer_mobile, COALESCE(r.note, '') as note,
		r.discount_percent, r.status,
		r.cashier_user_id, cu.username as cashier_name,
		r.reference_user_id, ru.username as reference_name,
		r.approved_by_user_id, COALESCE(au.username, '') as approved_by_name,
		r.rejected_by_user_id,
		r.group_id, COALESCE(cp.code, '') as coupon_code,
		COALESCE(r.invoice_number, '') as invoice_number, r.discount_amount,
		COALESCE(r.rejection_reason, '') as rejection_reason,
		r.created_at, r.approved_at, r.done_at
	FROM coupon_requests r
	JOIN users cu ON cu.id = r.cashier_user_id
	JOIN users ru ON ru.id = r.reference_user_id
	LEFT JOIN users au ON au.id = r.approved_by_user_id
	LEFT JOIN coupons cp ON cp.assigned_request_id = r.id
`

func scanRequest(row pgx.Row) (*models.CouponRequest, error) {
	var req models.CouponRequest
	err := row.Scan(
		&req.ID, &req.RequestCode, &req.CustomerName, &req.CustomerMobile, &req.Note,
		&req.DiscountPercent, &req.Status,
		&req.CashierUserID, &req.CashierName,
		&req.ReferenceUserID, &req.ReferenceName,
		&req.ApprovedByUserID, &req.ApprovedByName,
		&req.RejectedByUserID,
		&req.GroupID, &req.CouponCode,
		&req.InvoiceNumber, &req.DiscountAmount,
		&req.RejectionReason,
		&req.CreatedAt, &req.ApprovedAt, &req.DoneAt,
	)
	if err != nil {
		return nil, err
	}
	return &req, nil
}

// Create inserts a pending request with the given request code. Returns
// models.ErrConflict when the code is already taken, so the caller can
// regenerate and retry.
func (r *RequestRepository) Create(ctx context.Context, req *models.CouponRequest) error {
	query := `
		INSERT INTO coupon_requests(request_code, customer_name, customer_mobile, note, status, cashier_user_id, reference_user_id)
		VALUES($1, $2, $3, NULLIF($4, ''), 'pending', $5, $6)
		RETURNING id, created_at
	`

	err := r.DB.QueryRow(ctx, query,
		req.RequestCode, req.CustomerName, req.CustomerMobile, req.Note,
		req.CashierUserID, req.ReferenceUserID,
	).Scan(&req.ID, &req.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("request code %s already taken: %w", req.RequestCode, models.ErrConflict)
		}
		return fmt.Errorf("failed to create coupon request: %w", err)
	}

	req.Status = models.RequestStatusPending
	return nil
}

// GetByID returns a request with joined names and bound coupon, nil when
// not found
func (r *RequestRepository) GetByID(ctx context.Context, id int) (*models.CouponRequest, error) {
	req, err := scanRequest(r.DB.QueryRow(ctx, requestSelect+` WHERE r.id = $1`, id))
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return req, nil
}

// List returns requests newest first with optional filters
func (r *RequestRepository) List(ctx context.Context, filter *models.RequestFilter) ([]models.CouponRequest, error) {
	var conditions []string
	var args []interface{}
	argNum := 1

	if filter.Status != "" {
		conditions = append(conditions, fmt.Sprintf("r.status = $%d", argNum))
		args = append(args, filter.Status)
		argNum++
	}

	if filter.CashierUserID > 0 {
		conditions = append(conditions, fmt.Sprintf("r.cashier_user_id = $%d", argNum))
		args = append(args, filter.CashierUserID)
		argNum++
	}

	whereClause := ""
	if len(conditions) > 0 {
		whereClause = "WHERE " + strings.Join(conditions, " AND ")
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = 50
	}

	query := fmt.Sprintf(`%s %s ORDER BY r.id DESC LIMIT $%d OFFSET $%d`,
		requestSelect, whereClause, argNum, argNum+1)
	args = append(args, limit, filter.Offset)

	rows, err := r.DB.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var requests []models.CouponRequest
	for rows.Next() {
		req, err := scanRequest(rows)
		if err != nil {
			return nil, err
		}
		requests = append(requests, *req)
	}

	return requests, rows.Err()
}

// StatusCounts returns pending/approved/done totals for the dashboard
func (r *RequestRepository) StatusCounts(ctx context.Context) (pending, approved, done int, err error) {
	query := `
		SELECT
			COUNT(*) FILTER (WHERE status = 'pending'),
			COUNT(*) FILTER (WHERE status = 'approved'),
			COUNT(*) FILTER (WHERE status = 'done')
		FROM coupon_requests
	`
	err = r.DB.QueryRow(ctx, query).Scan(&pending, &approved, &done)
	return
}

// LastCodeForPrefix returns the most recent request code starting with
// prefix, empty string when there is none
func (r *RequestRepository) LastCodeForPrefix(ctx context.Context, prefix string) (string, error) {
	var code string
	err := r.DB.QueryRow(ctx,
		`SELECT request_code FROM coupon_requests WHERE request_code LIKE $1 ORDER BY id DESC LIMIT 1`,
		prefix+"%",
	).Scan(&code)
	if err != nil {
		if err == pgx.ErrNoRows {
			return "", nil
		}
		return "", err
	}
	return code, nil
}

// Approve atomically binds the lowest-id free coupon of the group to the
// request and flips it to approved. Everything happens inside one
// transaction so two approvals racing for the last coupon cannot both win:
// the row lock on the coupon (FOR UPDATE SKIP LOCKED) makes the loser see
// an empty pool and fail with models.ErrConflict, leaving its request
// pending and untouched.
func (r *RequestRepository) Approve(ctx context.Context, requestID, groupID, actorUserID int) (*models.CouponRequest, error) {
	tx, err := r.DB.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	var status models.RequestStatus
	var customerName, customerMobile string
	err = tx.QueryRow(ctx,
		`SELECT status, customer_name, customer_mobile FROM coupon_requests WHERE id = $1 FOR UPDATE`,
		requestID,
	).Scan(&status, &customerName, &customerMobile)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, fmt.Errorf("coupon request %d: %w", requestID, models.ErrNotFound)
		}
		return nil, err
	}
	if status != models.RequestStatusPending {
		return nil, fmt.Errorf("request is %s, not pending: %w", status, models.ErrConflict)
	}

	var percent int
	err = tx.QueryRow(ctx, `SELECT percent FROM coupon_groups WHERE id = $1`, groupID).Scan(&percent)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, fmt.Errorf("coupon group %d: %w", groupID, models.ErrNotFound)
		}
		return nil, err
	}

	// Oldest enlisted free coupon first; skip rows another approval holds
	var couponID int
	var couponCode string
	err = tx.QueryRow(ctx, `
		SELECT id, code FROM coupons
		WHERE group_id = $1 AND assigned_request_id IS NULL AND is_active
		ORDER BY id ASC
		LIMIT 1
		FOR UPDATE SKIP LOCKED
	`, groupID).Scan(&couponID, &couponCode)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, fmt.Errorf("no free coupon in group %d: %w", groupID, models.ErrConflict)
		}
		return nil, err
	}

	_, err = tx.Exec(ctx, `
		UPDATE coupons
		SET assigned_request_id = $2,
			assigned_to_name = $3,
			assigned_to_mobile = $4,
			assigned_by_user_id = $5,
			assigned_at = CURRENT_TIMESTAMP
		WHERE id = $1
	`, couponID, requestID, customerName, customerMobile, actorUserID)
	if err != nil {
		return nil, fmt.Errorf("failed to assign coupon: %w", err)
	}

	result, err := tx.Exec(ctx, `
		UPDATE coupon_requests
		SET status = 'approved',
			group_id = $2,
			discount_percent = $3,
			approved_by_user_id = $4,
			approved_at = CURRENT_TIMESTAMP
		WHERE id = $1 AND status = 'pending'
	`, requestID, groupID, percent, actorUserID)
	if err != nil {
		return nil, fmt.Errorf("failed to approve request: %w", err)
	}
	if result.RowsAffected() == 0 {
		return nil, fmt.Errorf("request no longer pending: %w", models.ErrConflict)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}

	return r.GetByID(ctx, requestID)
}

// Reject moves a pending or approved request to rejected, releasing any
// bound coupon. Terminal states (done, rejected) fail with models.ErrConflict.
func (r *RequestRepository) Reject(ctx context.Context, requestID, actorUserID int, reason string) error {
	tx, err := r.DB.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	result, err := tx.Exec(ctx, `
		UPDATE coupon_requests
		SET status = 'rejected',
			rejection_reason = $3,
			rejected_by_user_id = $2
		WHERE id = $1 AND status IN ('pending', 'approved')
	`, requestID, actorUserID, reason)
	if err != nil {
		return fmt.Errorf("failed to reject request: %w", err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("request not found or already finished: %w", models.ErrConflict)
	}

	// Rejecting an approved request returns its coupon to the pool
	_, err = tx.Exec(ctx, `
		UPDATE coupons
		SET assigned_request_id = NULL,
			assigned_to_name = NULL,
			assigned_to_mobile = NULL,
			assigned_by_user_id = NULL,
			assigned_at = NULL
		WHERE assigned_request_id = $1
	`, requestID)
	if err != nil {
		return fmt.Errorf("failed to release coupon: %w", err)
	}

	return tx.Commit(ctx)
}

// Finalize records the invoice and moves an approved request to done
func (r *RequestRepository) Finalize(ctx context.Context, requestID int, invoiceNumber string, discountAmount float64) error {
	result, err := r.DB.Exec(ctx, `
		UPDATE coupon_requests
		SET status = 'done',
			invoice_number = $2,
			discount_amount = NULLIF($3, 0),
			done_at = CURRENT_TIMESTAMP
		WHERE id = $1 AND status = 'approved'
	`, requestID, invoiceNumber, discountAmount)
	if err != nil {
		return fmt.Errorf("failed to finalize request: %w", err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("request not found or not approved: %w", models.ErrConflict)
	}

	return nil
}

// Delete removes a request, first releasing any coupon bound to it so the
// code becomes selectable again
func (r *RequestRepository) Delete(ctx context.Context, requestID int) error {
	tx, err := r.DB.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	_, err = tx.Exec(ctx, `
		UPDATE coupons
		SET assigned_request_id = NULL,
			assigned_to_name = NULL,
			assigned_to_mobile = NULL,
			assigned_by_user_id = NULL,
			assigned_at = NULL
		WHERE assigned_request_id = $1
	`, requestID)
	if err != nil {
		return fmt.Errorf("failed to release coupon: %w", err)
	}

	result, err := tx.Exec(ctx, `DELETE FROM coupon_requests WHERE id = $1`, requestID)
	if err != nil {
		return fmt.Errorf("failed to delete request: %w", err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("coupon request %d: %w", requestID, models.ErrNotFound)
	}

	return tx.Commit(ctx)
}
