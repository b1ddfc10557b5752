package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"discount-backend/internal/models"
)

type mockCouponStore struct {
	groups map[int]*models.CouponGroup
	nextID int

	enlistedGroup int
	enlistedCodes []string
}

func newMockCouponStore() *mockCouponStore {
	return &mockCouponStore{groups: make(map[int]*models.CouponGroup), nextID: 1}
}

func (m *mockCouponStore) CreateGroup(ctx context.Context, g *models.CouponGroup) error {
	g.ID = m.nextID
	m.nextID++
	m.groups[g.ID] = g
	return nil
}

func (m *mockCouponStore) GetGroup(ctx context.Context, id int) (*models.CouponGroup, error) {
	return m.groups[id], nil
}

func (m *mockCouponStore) ListGroups(ctx context.Context) ([]models.CouponGroup, error) {
	var out []models.CouponGroup
	for _, g := range m.groups {
		out = append(out, *g)
	}
	return out, nil
}

func (m *mockCouponStore) Enlist(ctx context.Context, groupID int, codes []string) (*models.EnlistResult, error) {
	m.enlistedGroup = groupID
	m.enlistedCodes = codes
	return &models.EnlistResult{Added: len(codes)}, nil
}

func (m *mockCouponStore) List(ctx context.Context, limit int) ([]models.Coupon, error) {
	return nil, nil
}

func (m *mockCouponStore) GroupStocks(ctx context.Context) ([]models.GroupStock, error) {
	return []models.GroupStock{{Group: models.CouponGroup{ID: 1}, Free: 4, Assigned: 2}}, nil
}

func TestCreateGroupValidatesPercent(t *testing.T) {
	svc := NewCouponService(newMockCouponStore())

	_, err := svc.CreateGroup(context.Background(), &models.CreateGroupRequest{Name: "Gold", Percent: 0})
	assert.ErrorIs(t, err, models.ErrValidation)

	_, err = svc.CreateGroup(context.Background(), &models.CreateGroupRequest{Name: "Gold", Percent: 120})
	assert.ErrorIs(t, err, models.ErrValidation)

	group, err := svc.CreateGroup(context.Background(), &models.CreateGroupRequest{Name: " Gold ", Percent: 15})
	require.NoError(t, err)
	assert.Equal(t, "Gold", group.Name)
}

func TestCreateGroupRequiresName(t *testing.T) {
	svc := NewCouponService(newMockCouponStore())

	_, err := svc.CreateGroup(context.Background(), &models.CreateGroupRequest{Name: "  ", Percent: 10})
	assert.ErrorIs(t, err, models.ErrValidation)
}

func TestEnlistTrimsAndDropsEmptyCodes(t *testing.T) {
	store := newMockCouponStore()
	svc := NewCouponService(store)

	group, err := svc.CreateGroup(context.Background(), &models.CreateGroupRequest{Name: "Gold", Percent: 15})
	require.NoError(t, err)

	result, err := svc.Enlist(context.Background(), &models.EnlistRequest{
		GroupID: group.ID,
		Codes:   []string{" GOLD-001 ", "", "GOLD-002", "   "},
	})
	require.NoError(t, err)

	assert.Equal(t, 2, result.Added)
	assert.Equal(t, []string{"GOLD-001", "GOLD-002"}, store.enlistedCodes)
}

func TestEnlistUnknownGroup(t *testing.T) {
	svc := NewCouponService(newMockCouponStore())

	_, err := svc.Enlist(context.Background(), &models.EnlistRequest{
		GroupID: 42,
		Codes:   []string{"X-1"},
	})
	assert.ErrorIs(t, err, models.ErrNotFound)
}

func TestEnlistRejectsEmptyBatch(t *testing.T) {
	store := newMockCouponStore()
	svc := NewCouponService(store)

	group, err := svc.CreateGroup(context.Background(), &models.CreateGroupRequest{Name: "Gold", Percent: 15})
	require.NoError(t, err)

	_, err = svc.Enlist(context.Background(), &models.EnlistRequest{
		GroupID: group.ID,
		Codes:   []string{"  ", ""},
	})
	assert.ErrorIs(t, err, models.ErrValidation)
}
