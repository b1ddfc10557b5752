package services

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"discount-backend/internal/models"
	"discount-backend/internal/phone"
)

// RequestStore is the persistence surface the lifecycle needs. Implemented
// by repositories.RequestRepository.
type RequestStore interface {
	Create(ctx context.Context, req *models.CouponRequest) error
	GetByID(ctx context.Context, id int) (*models.CouponRequest, error)
	List(ctx context.Context, filter *models.RequestFilter) ([]models.CouponRequest, error)
	StatusCounts(ctx context.Context) (pending, approved, done int, err error)
	LastCodeForPrefix(ctx context.Context, prefix string) (string, error)
	Approve(ctx context.Context, requestID, groupID, actorUserID int) (*models.CouponRequest, error)
	Reject(ctx context.Context, requestID, actorUserID int, reason string) error
	Finalize(ctx context.Context, requestID int, invoiceNumber string, discountAmount float64) error
	Delete(ctx context.Context, requestID int) error
}

// LifecycleNotifier receives lifecycle events after the transaction has
// committed. Implementations must be best-effort and non-blocking; a failed
// notification never affects the request.
type LifecycleNotifier interface {
	RequestCreated(req *models.CouponRequest)
	RequestApproved(req *models.CouponRequest)
	RequestRejected(req *models.CouponRequest)
	RequestFinalized(req *models.CouponRequest)
}

// RequestService drives the coupon request lifecycle:
// pending -> approved -> done, or pending/approved -> rejected.
type RequestService struct {
	Requests RequestStore
	Notifier LifecycleNotifier

	now func() time.Time
}

func NewRequestService(requests RequestStore, notifier LifecycleNotifier) *RequestService {
	return &RequestService{
		Requests: requests,
		Notifier: notifier,
		now:      time.Now,
	}
}

// createCodeAttempts bounds the regenerate-and-retry loop when two cashiers
// submit in the same instant and collide on the monthly sequence
const createCodeAttempts = 3

// Create submits a new pending request owned by the acting cashier
func (s *RequestService) Create(ctx context.Context, req *models.CreateRequestRequest, actor *models.Session) (*models.CouponRequest, error) {
	mobile, err := phone.NormalizeBD(req.CustomerMobile)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", models.ErrValidation, err)
	}

	request := &models.CouponRequest{
		CustomerName:    strings.TrimSpace(req.CustomerName),
		CustomerMobile:  mobile,
		Note:            strings.TrimSpace(req.Note),
		CashierUserID:   actor.UserID,
		ReferenceUserID: req.ReferenceUserID,
	}

	for attempt := 0; attempt < createCodeAttempts; attempt++ {
		code, err := s.generateRequestCode(ctx)
		if err != nil {
			return nil, err
		}
		request.RequestCode = code

		err = s.Requests.Create(ctx, request)
		if err == nil {
			break
		}
		if errors.Is(err, models.ErrConflict) && attempt < createCodeAttempts-1 {
			continue
		}
		return nil, err
	}

	if s.Notifier != nil {
		s.Notifier.RequestCreated(request)
	}

	return request, nil
}

// generateRequestCode builds the next code in the YY-MMNNNN series. The
// 4-digit sequence restarts every calendar month.
func (s *RequestService) generateRequestCode(ctx context.Context) (string, error) {
	now := s.now().UTC()
	prefix := fmt.Sprintf("%02d-%02d", now.Year()%100, int(now.Month()))

	last, err := s.Requests.LastCodeForPrefix(ctx, prefix)
	if err != nil {
		return "", fmt.Errorf("failed to look up last request code: %w", err)
	}

	seq := 1
	if last != "" && strings.HasPrefix(last, prefix) {
		if n, err := strconv.Atoi(strings.TrimPrefix(last, prefix)); err == nil {
			seq = n + 1
		}
	}

	return fmt.Sprintf("%s%04d", prefix, seq), nil
}

// GetByID loads one request
func (s *RequestService) GetByID(ctx context.Context, id int) (*models.CouponRequest, error) {
	request, err := s.Requests.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if request == nil {
		return nil, fmt.Errorf("coupon request %d: %w", id, models.ErrNotFound)
	}
	return request, nil
}

// List returns requests newest first
func (s *RequestService) List(ctx context.Context, filter *models.RequestFilter) ([]models.CouponRequest, error) {
	return s.Requests.List(ctx, filter)
}

// Dashboard returns the status counts and the ten latest requests
func (s *RequestService) Dashboard(ctx context.Context) (*models.DashboardSummary, error) {
	pending, approved, done, err := s.Requests.StatusCounts(ctx)
	if err != nil {
		return nil, err
	}

	latest, err := s.Requests.List(ctx, &models.RequestFilter{Limit: 10})
	if err != nil {
		return nil, err
	}

	return &models.DashboardSummary{
		PendingCount:  pending,
		ApprovedCount: approved,
		DoneCount:     done,
		Latest:        latest,
	}, nil
}

// canDecide reports whether actor may approve or reject the request:
// superadmins always, everyone else only as the nominated reference user
func canDecide(actor *models.Session, req *models.CouponRequest) bool {
	if actor.Role == models.RoleSuperadmin {
		return true
	}
	return actor.UserID == req.ReferenceUserID
}

// Approve binds a free coupon from the chosen group to the request. The
// request must be pending and the actor must have decision authority.
// Notification of the customer happens after the commit and is best-effort.
func (s *RequestService) Approve(ctx context.Context, requestID, groupID int, actor *models.Session) (*models.CouponRequest, error) {
	request, err := s.GetByID(ctx, requestID)
	if err != nil {
		return nil, err
	}
	if !canDecide(actor, request) {
		return nil, fmt.Errorf("only a superadmin or the reference user may approve: %w", models.ErrForbidden)
	}
	if request.Status != models.RequestStatusPending {
		return nil, fmt.Errorf("request is %s, not pending: %w", request.Status, models.ErrConflict)
	}

	approved, err := s.Requests.Approve(ctx, requestID, groupID, actor.UserID)
	if err != nil {
		return nil, err
	}

	if s.Notifier != nil {
		s.Notifier.RequestApproved(approved)
	}

	return approved, nil
}

// Reject refuses a pending or approved request, releasing any bound coupon
func (s *RequestService) Reject(ctx context.Context, requestID int, reason string, actor *models.Session) error {
	request, err := s.GetByID(ctx, requestID)
	if err != nil {
		return err
	}
	if !canDecide(actor, request) {
		return fmt.Errorf("only a superadmin or the reference user may reject: %w", models.ErrForbidden)
	}
	if request.Status == models.RequestStatusDone || request.Status == models.RequestStatusRejected {
		return fmt.Errorf("request is already %s: %w", request.Status, models.ErrConflict)
	}

	if err := s.Requests.Reject(ctx, requestID, actor.UserID, strings.TrimSpace(reason)); err != nil {
		return err
	}

	request.Status = models.RequestStatusRejected
	request.RejectionReason = reason
	if s.Notifier != nil {
		s.Notifier.RequestRejected(request)
	}

	return nil
}

// Finalize records the invoice number on an approved request and closes it.
// Allowed for the owning cashier and for admins/superadmins.
func (s *RequestService) Finalize(ctx context.Context, requestID int, form *models.FinalizeRequestRequest, actor *models.Session) error {
	request, err := s.GetByID(ctx, requestID)
	if err != nil {
		return err
	}

	allowed := actor.UserID == request.CashierUserID ||
		actor.Role == models.RoleAdmin || actor.Role == models.RoleSuperadmin
	if !allowed {
		return fmt.Errorf("only the owning cashier or an admin may finalize: %w", models.ErrForbidden)
	}
	if request.Status != models.RequestStatusApproved {
		return fmt.Errorf("request is %s, not approved: %w", request.Status, models.ErrConflict)
	}

	invoice := strings.TrimSpace(form.InvoiceNumber)
	if invoice == "" {
		return fmt.Errorf("invoice number is required: %w", models.ErrValidation)
	}

	if err := s.Requests.Finalize(ctx, requestID, invoice, form.DiscountAmount); err != nil {
		return err
	}

	request.Status = models.RequestStatusDone
	request.InvoiceNumber = invoice
	if s.Notifier != nil {
		s.Notifier.RequestFinalized(request)
	}

	return nil
}

// Delete removes a request entirely, releasing its coupon back to the pool.
// Superadmin only.
func (s *RequestService) Delete(ctx context.Context, requestID int, actor *models.Session) error {
	if actor.Role != models.RoleSuperadmin {
		return fmt.Errorf("only a superadmin may delete requests: %w", models.ErrForbidden)
	}

	return s.Requests.Delete(ctx, requestID)
}
