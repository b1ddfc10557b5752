package auth

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"time"

	"discount-backend/internal/models"

	"github.com/golang-jwt/jwt/v5"
)

// SessionTTL is how long a login stays valid without re-authenticating
const SessionTTL = 72 * time.Hour

// SessionStore persists server-side session records
type SessionStore interface {
	Create(ctx context.Context, session *models.Session) error
	Get(ctx context.Context, id string) (*models.Session, error)
	Delete(ctx context.Context, id string) error
	DeleteExpired(ctx context.Context) (int, error)
}

// SessionManager issues and resolves login sessions. The browser cookie
// carries only a signed token wrapping the session ID; the store row is
// authoritative, so revoking a session takes effect immediately.
type SessionManager struct {
	store  SessionStore
	secret []byte
}

type sessionClaims struct {
	SessionID string `json:"sid"`
	jwt.RegisteredClaims
}

func NewSessionManager(store SessionStore, secret string) *SessionManager {
	return &SessionManager{
		store:  store,
		secret: []byte(secret),
	}
}

// Login creates a session for user and returns the signed cookie token
func (m *SessionManager) Login(ctx context.Context, user *models.User) (string, *models.Session, error) {
	id, err := newSessionID()
	if err != nil {
		return "", nil, err
	}

	now := time.Now()
	session := &models.Session{
		ID:        id,
		UserID:    user.ID,
		Username:  user.Username,
		Role:      user.Role,
		CreatedAt: now,
		ExpiresAt: now.Add(SessionTTL),
	}

	if err := m.store.Create(ctx, session); err != nil {
		return "", nil, fmt.Errorf("failed to create session: %w", err)
	}

	claims := sessionClaims{
		SessionID: id,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(session.ExpiresAt),
		},
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
	if err != nil {
		return "", nil, fmt.Errorf("failed to sign session token: %w", err)
	}

	return token, session, nil
}

// Resolve verifies the cookie token and loads the backing session.
// Returns nil without error when the token is invalid, unknown or expired.
func (m *SessionManager) Resolve(ctx context.Context, token string) (*models.Session, error) {
	var claims sessionClaims
	parsed, err := jwt.ParseWithClaims(token, &claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return m.secret, nil
	})
	if err != nil || !parsed.Valid || claims.SessionID == "" {
		return nil, nil
	}

	session, err := m.store.Get(ctx, claims.SessionID)
	if err != nil {
		return nil, err
	}
	if session == nil || session.Expired(time.Now()) {
		return nil, nil
	}

	return session, nil
}

// Logout deletes the session behind the token. Unconditional: a bad token
// is simply a no-op.
func (m *SessionManager) Logout(ctx context.Context, token string) error {
	var claims sessionClaims
	parsed, err := jwt.ParseWithClaims(token, &claims, func(t *jwt.Token) (interface{}, error) {
		return m.secret, nil
	})
	if err != nil || !parsed.Valid || claims.SessionID == "" {
		return nil
	}
	return m.store.Delete(ctx, claims.SessionID)
}

// PurgeExpired removes stale session rows, returning how many were deleted
func (m *SessionManager) PurgeExpired(ctx context.Context) (int, error) {
	return m.store.DeleteExpired(ctx)
}

func newSessionID() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("failed to generate session id: %w", err)
	}
	return hex.EncodeToString(b), nil
}
