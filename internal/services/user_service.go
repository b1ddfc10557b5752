package services

import (
	"context"
	"fmt"
	"strings"

	"discount-backend/internal/auth"
	"discount-backend/internal/models"
	"discount-backend/internal/phone"
)

// UserStore is implemented by repositories.UserRepository
type UserStore interface {
	List(ctx context.Context) ([]models.User, error)
	Create(ctx context.Context, u *models.User) error
	ListActiveByRole(ctx context.Context, role models.Role) ([]models.User, error)
}

// UserService manages staff accounts
type UserService struct {
	Users UserStore
}

func NewUserService(users UserStore) *UserService {
	return &UserService{Users: users}
}

// List returns all staff accounts ordered by username
func (s *UserService) List(ctx context.Context) ([]models.User, error) {
	return s.Users.List(ctx)
}

// Create adds a staff account. Superadmin only; the handler enforces the
// role, this enforces the data.
func (s *UserService) Create(ctx context.Context, req *models.CreateUserRequest) (*models.User, error) {
	if !models.ValidRole(req.Role) {
		return nil, fmt.Errorf("unknown role %q: %w", req.Role, models.ErrValidation)
	}

	mobile := ""
	if strings.TrimSpace(req.Mobile) != "" {
		normalized, err := phone.NormalizeBD(req.Mobile)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", models.ErrValidation, err)
		}
		mobile = normalized
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &models.User{
		Username:     strings.TrimSpace(req.Username),
		Email:        strings.ToLower(strings.TrimSpace(req.Email)),
		Mobile:       mobile,
		PasswordHash: hash,
		Role:         models.Role(req.Role),
		IsActive:     true,
	}

	if err := s.Users.Create(ctx, user); err != nil {
		return nil, err
	}

	return user, nil
}

// References lists the active users a cashier can nominate on a request,
// superadmins first so the picker shows them on top.
func (s *UserService) References(ctx context.Context) ([]models.User, error) {
	refs, err := s.Users.ListActiveByRole(ctx, models.RoleSuperadmin)
	if err != nil {
		return nil, err
	}

	admins, err := s.Users.ListActiveByRole(ctx, models.RoleAdmin)
	if err != nil {
		return nil, err
	}

	return append(refs, admins...), nil
}
