package services

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"discount-backend/internal/models"
)

type mockRequestStore struct {
	requests map[int]*models.CouponRequest
	nextID   int
	lastCode string

	createCalls    int
	conflictUntil  int // Create returns ErrConflict for the first N calls
	approveErr     error
	approvedGroup  int
	rejectedReason string
	finalized      bool
	deleted        bool
}

func newMockRequestStore() *mockRequestStore {
	return &mockRequestStore{requests: make(map[int]*models.CouponRequest), nextID: 1}
}

func (m *mockRequestStore) Create(ctx context.Context, req *models.CouponRequest) error {
	m.createCalls++
	if m.createCalls <= m.conflictUntil {
		return fmt.Errorf("duplicate request code: %w", models.ErrConflict)
	}
	req.ID = m.nextID
	req.Status = models.RequestStatusPending
	m.nextID++
	m.requests[req.ID] = req
	return nil
}

func (m *mockRequestStore) GetByID(ctx context.Context, id int) (*models.CouponRequest, error) {
	req, ok := m.requests[id]
	if !ok {
		return nil, nil
	}
	cp := *req
	return &cp, nil
}

func (m *mockRequestStore) List(ctx context.Context, filter *models.RequestFilter) ([]models.CouponRequest, error) {
	var out []models.CouponRequest
	for _, req := range m.requests {
		out = append(out, *req)
	}
	return out, nil
}

func (m *mockRequestStore) StatusCounts(ctx context.Context) (int, int, int, error) {
	pending, approved, done := 0, 0, 0
	for _, req := range m.requests {
		switch req.Status {
		case models.RequestStatusPending:
			pending++
		case models.RequestStatusApproved:
			approved++
		case models.RequestStatusDone:
			done++
		}
	}
	return pending, approved, done, nil
}

func (m *mockRequestStore) LastCodeForPrefix(ctx context.Context, prefix string) (string, error) {
	return m.lastCode, nil
}

func (m *mockRequestStore) Approve(ctx context.Context, requestID, groupID, actorUserID int) (*models.CouponRequest, error) {
	if m.approveErr != nil {
		return nil, m.approveErr
	}
	req := m.requests[requestID]
	req.Status = models.RequestStatusApproved
	req.ApprovedByUserID = &actorUserID
	req.GroupID = &groupID
	m.approvedGroup = groupID
	cp := *req
	return &cp, nil
}

func (m *mockRequestStore) Reject(ctx context.Context, requestID, actorUserID int, reason string) error {
	m.requests[requestID].Status = models.RequestStatusRejected
	m.rejectedReason = reason
	return nil
}

func (m *mockRequestStore) Finalize(ctx context.Context, requestID int, invoiceNumber string, discountAmount float64) error {
	m.requests[requestID].Status = models.RequestStatusDone
	m.requests[requestID].InvoiceNumber = invoiceNumber
	m.finalized = true
	return nil
}

func (m *mockRequestStore) Delete(ctx context.Context, requestID int) error {
	if _, ok := m.requests[requestID]; !ok {
		return models.ErrNotFound
	}
	delete(m.requests, requestID)
	m.deleted = true
	return nil
}

type recordingNotifier struct {
	created, approved, rejected, finalized int
}

func (n *recordingNotifier) RequestCreated(req *models.CouponRequest)   { n.created++ }
func (n *recordingNotifier) RequestApproved(req *models.CouponRequest)  { n.approved++ }
func (n *recordingNotifier) RequestRejected(req *models.CouponRequest)  { n.rejected++ }
func (n *recordingNotifier) RequestFinalized(req *models.CouponRequest) { n.finalized++ }

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func superadmin() *models.Session {
	return &models.Session{ID: "s1", UserID: 1, Username: "boss", Role: models.RoleSuperadmin}
}

func cashier(id int) *models.Session {
	return &models.Session{ID: "s2", UserID: id, Username: "till", Role: models.RoleCashier}
}

func TestCreateRequestGeneratesMonthlyCode(t *testing.T) {
	store := newMockRequestStore()
	notifier := &recordingNotifier{}
	svc := NewRequestService(store, notifier)
	svc.now = fixedClock(time.Date(2025, time.March, 5, 10, 0, 0, 0, time.UTC))

	req, err := svc.Create(context.Background(), &models.CreateRequestRequest{
		CustomerName:    "Rahim Uddin",
		CustomerMobile:  "01712345678",
		ReferenceUserID: 2,
	}, cashier(7))
	require.NoError(t, err)

	assert.Equal(t, "25-030001", req.RequestCode)
	assert.Equal(t, "+8801712345678", req.CustomerMobile)
	assert.Equal(t, 7, req.CashierUserID)
	assert.Equal(t, 1, notifier.created)
}

func TestCreateRequestContinuesSequence(t *testing.T) {
	store := newMockRequestStore()
	store.lastCode = "25-030041"
	svc := NewRequestService(store, nil)
	svc.now = fixedClock(time.Date(2025, time.March, 20, 0, 0, 0, 0, time.UTC))

	req, err := svc.Create(context.Background(), &models.CreateRequestRequest{
		CustomerName:    "Karim",
		CustomerMobile:  "+8801812345678",
		ReferenceUserID: 2,
	}, cashier(7))
	require.NoError(t, err)

	assert.Equal(t, "25-030042", req.RequestCode)
}

func TestCreateRequestRetriesOnCodeCollision(t *testing.T) {
	store := newMockRequestStore()
	store.conflictUntil = 2
	svc := NewRequestService(store, nil)
	svc.now = fixedClock(time.Date(2025, time.June, 1, 0, 0, 0, 0, time.UTC))

	_, err := svc.Create(context.Background(), &models.CreateRequestRequest{
		CustomerName:    "Karim",
		CustomerMobile:  "01912345678",
		ReferenceUserID: 2,
	}, cashier(7))
	require.NoError(t, err)
	assert.Equal(t, 3, store.createCalls)
}

func TestCreateRequestGivesUpAfterRetries(t *testing.T) {
	store := newMockRequestStore()
	store.conflictUntil = 10
	svc := NewRequestService(store, nil)

	_, err := svc.Create(context.Background(), &models.CreateRequestRequest{
		CustomerName:    "Karim",
		CustomerMobile:  "01912345678",
		ReferenceUserID: 2,
	}, cashier(7))
	assert.ErrorIs(t, err, models.ErrConflict)
	assert.Equal(t, createCodeAttempts, store.createCalls)
}

func TestCreateRequestRejectsBadMobile(t *testing.T) {
	svc := NewRequestService(newMockRequestStore(), nil)

	_, err := svc.Create(context.Background(), &models.CreateRequestRequest{
		CustomerName:    "Karim",
		CustomerMobile:  "12345",
		ReferenceUserID: 2,
	}, cashier(7))
	assert.ErrorIs(t, err, models.ErrValidation)
}

func seedPending(store *mockRequestStore, referenceUserID int) *models.CouponRequest {
	req := &models.CouponRequest{
		ID:              store.nextID,
		RequestCode:     "25-010001",
		CustomerName:    "Rahim",
		CustomerMobile:  "+8801712345678",
		Status:          models.RequestStatusPending,
		CashierUserID:   7,
		ReferenceUserID: referenceUserID,
	}
	store.requests[req.ID] = req
	store.nextID++
	return req
}

func TestApproveBySuperadmin(t *testing.T) {
	store := newMockRequestStore()
	notifier := &recordingNotifier{}
	svc := NewRequestService(store, notifier)
	req := seedPending(store, 2)

	approved, err := svc.Approve(context.Background(), req.ID, 3, superadmin())
	require.NoError(t, err)

	assert.Equal(t, models.RequestStatusApproved, approved.Status)
	assert.Equal(t, 3, store.approvedGroup)
	assert.Equal(t, 1, notifier.approved)
}

func TestApproveByReferenceUser(t *testing.T) {
	store := newMockRequestStore()
	svc := NewRequestService(store, nil)
	req := seedPending(store, 9)

	reference := &models.Session{ID: "s3", UserID: 9, Username: "ref", Role: models.RoleAdmin}
	_, err := svc.Approve(context.Background(), req.ID, 3, reference)
	assert.NoError(t, err)
}

func TestApproveDeniedForUnrelatedUser(t *testing.T) {
	store := newMockRequestStore()
	svc := NewRequestService(store, nil)
	req := seedPending(store, 2)

	other := &models.Session{ID: "s4", UserID: 99, Username: "other", Role: models.RoleAdmin}
	_, err := svc.Approve(context.Background(), req.ID, 3, other)
	assert.ErrorIs(t, err, models.ErrForbidden)
}

func TestApproveFailsWhenNotPending(t *testing.T) {
	store := newMockRequestStore()
	svc := NewRequestService(store, nil)
	req := seedPending(store, 2)
	store.requests[req.ID].Status = models.RequestStatusApproved

	_, err := svc.Approve(context.Background(), req.ID, 3, superadmin())
	assert.ErrorIs(t, err, models.ErrConflict)
}

func TestApproveMissingRequest(t *testing.T) {
	svc := NewRequestService(newMockRequestStore(), nil)

	_, err := svc.Approve(context.Background(), 42, 3, superadmin())
	assert.ErrorIs(t, err, models.ErrNotFound)
}

func TestApproveSurfacesNoFreeCoupon(t *testing.T) {
	store := newMockRequestStore()
	store.approveErr = fmt.Errorf("no free coupon in group 3: %w", models.ErrConflict)
	notifier := &recordingNotifier{}
	svc := NewRequestService(store, notifier)
	req := seedPending(store, 2)

	_, err := svc.Approve(context.Background(), req.ID, 3, superadmin())
	assert.ErrorIs(t, err, models.ErrConflict)
	assert.Zero(t, notifier.approved)
}

func TestRejectPendingRequest(t *testing.T) {
	store := newMockRequestStore()
	notifier := &recordingNotifier{}
	svc := NewRequestService(store, notifier)
	req := seedPending(store, 2)

	err := svc.Reject(context.Background(), req.ID, "out of stock", superadmin())
	require.NoError(t, err)

	assert.Equal(t, models.RequestStatusRejected, store.requests[req.ID].Status)
	assert.Equal(t, "out of stock", store.rejectedReason)
	assert.Equal(t, 1, notifier.rejected)
}

func TestRejectApprovedRequestAllowed(t *testing.T) {
	store := newMockRequestStore()
	svc := NewRequestService(store, nil)
	req := seedPending(store, 2)
	store.requests[req.ID].Status = models.RequestStatusApproved

	err := svc.Reject(context.Background(), req.ID, "customer left", superadmin())
	assert.NoError(t, err)
}

func TestRejectDoneRequestFails(t *testing.T) {
	store := newMockRequestStore()
	svc := NewRequestService(store, nil)
	req := seedPending(store, 2)
	store.requests[req.ID].Status = models.RequestStatusDone

	err := svc.Reject(context.Background(), req.ID, "too late", superadmin())
	assert.ErrorIs(t, err, models.ErrConflict)
}

func TestFinalizeByOwningCashier(t *testing.T) {
	store := newMockRequestStore()
	notifier := &recordingNotifier{}
	svc := NewRequestService(store, notifier)
	req := seedPending(store, 2)
	store.requests[req.ID].Status = models.RequestStatusApproved

	err := svc.Finalize(context.Background(), req.ID, &models.FinalizeRequestRequest{
		InvoiceNumber:  "INV-1009",
		DiscountAmount: 250,
	}, cashier(7))
	require.NoError(t, err)

	assert.Equal(t, models.RequestStatusDone, store.requests[req.ID].Status)
	assert.Equal(t, "INV-1009", store.requests[req.ID].InvoiceNumber)
	assert.Equal(t, 1, notifier.finalized)
}

func TestFinalizeDeniedForOtherCashier(t *testing.T) {
	store := newMockRequestStore()
	svc := NewRequestService(store, nil)
	req := seedPending(store, 2)
	store.requests[req.ID].Status = models.RequestStatusApproved

	err := svc.Finalize(context.Background(), req.ID, &models.FinalizeRequestRequest{
		InvoiceNumber: "INV-1",
	}, cashier(55))
	assert.ErrorIs(t, err, models.ErrForbidden)
}

func TestFinalizeRequiresApprovedStatus(t *testing.T) {
	store := newMockRequestStore()
	svc := NewRequestService(store, nil)
	req := seedPending(store, 2)

	err := svc.Finalize(context.Background(), req.ID, &models.FinalizeRequestRequest{
		InvoiceNumber: "INV-1",
	}, cashier(7))
	assert.ErrorIs(t, err, models.ErrConflict)
}

func TestFinalizeRequiresInvoiceNumber(t *testing.T) {
	store := newMockRequestStore()
	svc := NewRequestService(store, nil)
	req := seedPending(store, 2)
	store.requests[req.ID].Status = models.RequestStatusApproved

	err := svc.Finalize(context.Background(), req.ID, &models.FinalizeRequestRequest{
		InvoiceNumber: "   ",
	}, cashier(7))
	assert.ErrorIs(t, err, models.ErrValidation)
}

func TestDeleteSuperadminOnly(t *testing.T) {
	store := newMockRequestStore()
	svc := NewRequestService(store, nil)
	req := seedPending(store, 2)

	err := svc.Delete(context.Background(), req.ID, cashier(7))
	assert.ErrorIs(t, err, models.ErrForbidden)

	err = svc.Delete(context.Background(), req.ID, superadmin())
	require.NoError(t, err)
	assert.True(t, store.deleted)
}

func TestDashboardCountsAndLatest(t *testing.T) {
	store := newMockRequestStore()
	svc := NewRequestService(store, nil)
	seedPending(store, 2)
	done := seedPending(store, 2)
	store.requests[done.ID].Status = models.RequestStatusDone

	summary, err := svc.Dashboard(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, summary.PendingCount)
	assert.Equal(t, 0, summary.ApprovedCount)
	assert.Equal(t, 1, summary.DoneCount)
	assert.Len(t, summary.Latest, 2)
}
