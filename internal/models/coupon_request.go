package models

import "time"

// RequestStatus represents the lifecycle state of a coupon request
type RequestStatus string

const (
	RequestStatusPending  RequestStatus = "pending"  // Awaiting approval
	RequestStatusApproved RequestStatus = "approved" // Coupon bound, waiting for invoice
	RequestStatusDone     RequestStatus = "done"     // Invoice recorded, terminal
	RequestStatusRejected RequestStatus = "rejected" // Terminal
)

// CouponRequest is a customer's in-flight ask for a discount, owned by the
// cashier who created it. Status only moves forward: pending -> approved ->
// done, or pending -> rejected.
type CouponRequest struct {
	ID               int           `json:"id"`
	RequestCode      string        `json:"request_code"` // YY-MMNNNN, sequence resets monthly
	CustomerName     string        `json:"customer_name"`
	CustomerMobile   string        `json:"customer_mobile"`
	Note             string        `json:"note"`
	DiscountPercent  *int          `json:"discount_percent"` // Copied from the group at approval
	Status           RequestStatus `json:"status"`
	CashierUserID    int           `json:"cashier_user_id"`
	CashierName      string        `json:"cashier_name,omitempty"`
	ReferenceUserID  int           `json:"reference_user_id"`
	ReferenceName    string        `json:"reference_name,omitempty"`
	ApprovedByUserID *int          `json:"approved_by_user_id"`
	ApprovedByName   string        `json:"approved_by_name,omitempty"`
	RejectedByUserID *int          `json:"rejected_by_user_id"`
	GroupID          *int          `json:"group_id"`
	CouponCode       string        `json:"coupon_code,omitempty"` // Bound coupon, if any
	InvoiceNumber    string        `json:"invoice_number"`
	DiscountAmount   *float64      `json:"discount_amount"` // Taka amount recorded at finalize
	RejectionReason  string        `json:"rejection_reason"`
	CreatedAt        time.Time     `json:"created_at"`
	ApprovedAt       *time.Time    `json:"approved_at"`
	DoneAt           *time.Time    `json:"done_at"`
}

// CreateRequestRequest is the cashier's submission form
type CreateRequestRequest struct {
	CustomerName    string `json:"customer_name" validate:"required,max=120"`
	CustomerMobile  string `json:"customer_mobile" validate:"required"`
	Note            string `json:"note"`
	ReferenceUserID int    `json:"reference_user_id" validate:"required,gt=0"`
}

// ApproveRequestRequest picks the discount group to approve against
type ApproveRequestRequest struct {
	GroupID int `json:"group_id" validate:"required,gt=0"`
}

// RejectRequestRequest carries the rejection reason
type RejectRequestRequest struct {
	Reason string `json:"reason" validate:"required"`
}

// FinalizeRequestRequest records the sale invoice
type FinalizeRequestRequest struct {
	InvoiceNumber  string  `json:"invoice_number" validate:"required,max=64"`
	DiscountAmount float64 `json:"discount_amount"`
}

// RequestFilter narrows the request listing
type RequestFilter struct {
	Status        RequestStatus `json:"status"`
	CashierUserID int           `json:"cashier_user_id"`
	Limit         int           `json:"limit"`
	Offset        int           `json:"offset"`
}

// DashboardSummary feeds the landing page
type DashboardSummary struct {
	PendingCount  int             `json:"pending_count"`
	ApprovedCount int             `json:"approved_count"`
	DoneCount     int             `json:"done_count"`
	Latest        []CouponRequest `json:"latest_requests"`
}
