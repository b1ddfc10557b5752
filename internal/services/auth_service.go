package services

import (
	"context"
	"fmt"

	"discount-backend/internal/auth"
	"discount-backend/internal/models"
)

// AuthUserStore is implemented by repositories.UserRepository
type AuthUserStore interface {
	GetByLogin(ctx context.Context, login string) (*models.User, error)
	GetByID(ctx context.Context, id int) (*models.User, error)
}

// AuthService handles login and logout. All failure modes return the same
// models.ErrAuth so responses never reveal which credential was wrong.
type AuthService struct {
	Users    AuthUserStore
	Sessions *auth.SessionManager
}

func NewAuthService(users AuthUserStore, sessions *auth.SessionManager) *AuthService {
	return &AuthService{
		Users:    users,
		Sessions: sessions,
	}
}

// Login verifies the identifier (username or email) and password, and on
// success opens a session. Returns the signed cookie token.
func (s *AuthService) Login(ctx context.Context, login, password string) (string, *models.Session, error) {
	user, err := s.Users.GetByLogin(ctx, login)
	if err != nil {
		return "", nil, fmt.Errorf("login lookup failed: %w", err)
	}

	// Verify even when the user is unknown or inactive so response timing
	// stays comparable across failure modes.
	hash := ""
	if user != nil {
		hash = user.PasswordHash
	}
	ok := auth.VerifyPassword(password, hash)

	if user == nil || !ok || !user.IsActive {
		return "", nil, models.ErrAuth
	}

	token, session, err := s.Sessions.Login(ctx, user)
	if err != nil {
		return "", nil, fmt.Errorf("failed to open session: %w", err)
	}

	return token, session, nil
}

// Logout destroys the session behind the token; always succeeds
func (s *AuthService) Logout(ctx context.Context, token string) error {
	return s.Sessions.Logout(ctx, token)
}
