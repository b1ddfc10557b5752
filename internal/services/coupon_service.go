package services

import (
	"context"
	"fmt"
	"strings"

	"discount-backend/internal/models"
)

// CouponStore is implemented by repositories.CouponRepository
type CouponStore interface {
	CreateGroup(ctx context.Context, g *models.CouponGroup) error
	GetGroup(ctx context.Context, id int) (*models.CouponGroup, error)
	ListGroups(ctx context.Context) ([]models.CouponGroup, error)
	Enlist(ctx context.Context, groupID int, codes []string) (*models.EnlistResult, error)
	List(ctx context.Context, limit int) ([]models.Coupon, error)
	GroupStocks(ctx context.Context) ([]models.GroupStock, error)
}

// CouponService manages discount tiers and the coupon inventory
type CouponService struct {
	Coupons CouponStore
}

func NewCouponService(coupons CouponStore) *CouponService {
	return &CouponService{Coupons: coupons}
}

// CreateGroup adds a discount tier
func (s *CouponService) CreateGroup(ctx context.Context, req *models.CreateGroupRequest) (*models.CouponGroup, error) {
	group := &models.CouponGroup{
		Name:    strings.TrimSpace(req.Name),
		Percent: req.Percent,
	}
	if group.Name == "" {
		return nil, fmt.Errorf("group name is required: %w", models.ErrValidation)
	}
	if group.Percent <= 0 || group.Percent > 100 {
		return nil, fmt.Errorf("percent must be between 1 and 100: %w", models.ErrValidation)
	}

	if err := s.Coupons.CreateGroup(ctx, group); err != nil {
		return nil, err
	}

	return group, nil
}

// ListGroups returns all tiers by ascending percent
func (s *CouponService) ListGroups(ctx context.Context) ([]models.CouponGroup, error) {
	return s.Coupons.ListGroups(ctx)
}

// Enlist bulk-loads codes into a group. Codes are trimmed; empty lines are
// dropped before the insert.
func (s *CouponService) Enlist(ctx context.Context, req *models.EnlistRequest) (*models.EnlistResult, error) {
	group, err := s.Coupons.GetGroup(ctx, req.GroupID)
	if err != nil {
		return nil, err
	}
	if group == nil {
		return nil, fmt.Errorf("coupon group %d: %w", req.GroupID, models.ErrNotFound)
	}

	var codes []string
	for _, code := range req.Codes {
		code = strings.TrimSpace(code)
		if code != "" {
			codes = append(codes, code)
		}
	}
	if len(codes) == 0 {
		return nil, fmt.Errorf("no coupon codes given: %w", models.ErrValidation)
	}

	return s.Coupons.Enlist(ctx, req.GroupID, codes)
}

// Inventory returns the recent coupons plus per-group stock counts
func (s *CouponService) Inventory(ctx context.Context) ([]models.Coupon, []models.GroupStock, error) {
	coupons, err := s.Coupons.List(ctx, 500)
	if err != nil {
		return nil, nil, err
	}

	stocks, err := s.Coupons.GroupStocks(ctx)
	if err != nil {
		return nil, nil, err
	}

	return coupons, stocks, nil
}
