package auth

import (
	"context"
	"testing"
	"time"

	"discount-backend/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memSessionStore struct {
	sessions map[string]*models.Session
}

func newMemSessionStore() *memSessionStore {
	return &memSessionStore{sessions: make(map[string]*models.Session)}
}

func (s *memSessionStore) Create(ctx context.Context, session *models.Session) error {
	cp := *session
	s.sessions[session.ID] = &cp
	return nil
}

func (s *memSessionStore) Get(ctx context.Context, id string) (*models.Session, error) {
	session, ok := s.sessions[id]
	if !ok {
		return nil, nil
	}
	cp := *session
	return &cp, nil
}

func (s *memSessionStore) Delete(ctx context.Context, id string) error {
	delete(s.sessions, id)
	return nil
}

func (s *memSessionStore) DeleteExpired(ctx context.Context) (int, error) {
	n := 0
	now := time.Now()
	for id, session := range s.sessions {
		if session.Expired(now) {
			delete(s.sessions, id)
			n++
		}
	}
	return n, nil
}

func testUser() *models.User {
	return &models.User{ID: 7, Username: "rafiq", Role: models.RoleCashier}
}

func TestSessionLoginAndResolve(t *testing.T) {
	store := newMemSessionStore()
	mgr := NewSessionManager(store, "test-secret")

	token, session, err := mgr.Login(context.Background(), testUser())
	require.NoError(t, err)
	require.NotEmpty(t, token)
	require.NotNil(t, session)

	resolved, err := mgr.Resolve(context.Background(), token)
	require.NoError(t, err)
	require.NotNil(t, resolved)
	assert.Equal(t, 7, resolved.UserID)
	assert.Equal(t, "rafiq", resolved.Username)
	assert.Equal(t, models.RoleCashier, resolved.Role)
}

func TestSessionResolveBadToken(t *testing.T) {
	mgr := NewSessionManager(newMemSessionStore(), "test-secret")

	for _, token := range []string{"", "garbage", "a.b.c"} {
		session, err := mgr.Resolve(context.Background(), token)
		require.NoError(t, err)
		assert.Nil(t, session, "token %q", token)
	}
}

func TestSessionResolveWrongSecret(t *testing.T) {
	store := newMemSessionStore()
	token, _, err := NewSessionManager(store, "secret-one").Login(context.Background(), testUser())
	require.NoError(t, err)

	// Same store, different signing secret: token must not resolve
	session, err := NewSessionManager(store, "secret-two").Resolve(context.Background(), token)
	require.NoError(t, err)
	assert.Nil(t, session)
}

func TestSessionLogoutRevokes(t *testing.T) {
	store := newMemSessionStore()
	mgr := NewSessionManager(store, "test-secret")

	token, _, err := mgr.Login(context.Background(), testUser())
	require.NoError(t, err)

	require.NoError(t, mgr.Logout(context.Background(), token))

	session, err := mgr.Resolve(context.Background(), token)
	require.NoError(t, err)
	assert.Nil(t, session)
}

func TestSessionExpiredRowNotResolved(t *testing.T) {
	store := newMemSessionStore()
	mgr := NewSessionManager(store, "test-secret")

	token, session, err := mgr.Login(context.Background(), testUser())
	require.NoError(t, err)

	// Force the stored row past its expiry
	store.sessions[session.ID].ExpiresAt = time.Now().Add(-time.Minute)

	resolved, err := mgr.Resolve(context.Background(), token)
	require.NoError(t, err)
	assert.Nil(t, resolved)

	n, err := mgr.PurgeExpired(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}
