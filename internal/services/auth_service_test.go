package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"discount-backend/internal/auth"
	"discount-backend/internal/models"
)

type mockAuthUserStore struct {
	users map[string]*models.User
}

func (m *mockAuthUserStore) GetByLogin(ctx context.Context, login string) (*models.User, error) {
	return m.users[login], nil
}

func (m *mockAuthUserStore) GetByID(ctx context.Context, id int) (*models.User, error) {
	for _, u := range m.users {
		if u.ID == id {
			return u, nil
		}
	}
	return nil, nil
}

type mapSessionStore struct {
	sessions map[string]*models.Session
}

func newMapSessionStore() *mapSessionStore {
	return &mapSessionStore{sessions: make(map[string]*models.Session)}
}

func (s *mapSessionStore) Create(ctx context.Context, session *models.Session) error {
	s.sessions[session.ID] = session
	return nil
}

func (s *mapSessionStore) Get(ctx context.Context, id string) (*models.Session, error) {
	return s.sessions[id], nil
}

func (s *mapSessionStore) Delete(ctx context.Context, id string) error {
	delete(s.sessions, id)
	return nil
}

func (s *mapSessionStore) DeleteExpired(ctx context.Context) (int, error) {
	return 0, nil
}

func authFixture(t *testing.T) (*AuthService, *mapSessionStore) {
	t.Helper()

	hash, err := auth.HashPassword("correct-horse")
	require.NoError(t, err)

	users := &mockAuthUserStore{users: map[string]*models.User{
		"till": {ID: 7, Username: "till", PasswordHash: hash, Role: models.RoleCashier, IsActive: true},
		"gone": {ID: 8, Username: "gone", PasswordHash: hash, Role: models.RoleCashier, IsActive: false},
	}}

	store := newMapSessionStore()
	return NewAuthService(users, auth.NewSessionManager(store, "test-secret")), store
}

func TestLoginSuccess(t *testing.T) {
	svc, store := authFixture(t)

	token, session, err := svc.Login(context.Background(), "till", "correct-horse")
	require.NoError(t, err)

	assert.NotEmpty(t, token)
	assert.Equal(t, 7, session.UserID)
	assert.Equal(t, models.RoleCashier, session.Role)
	assert.Len(t, store.sessions, 1)
}

func TestLoginWrongPassword(t *testing.T) {
	svc, _ := authFixture(t)

	_, _, err := svc.Login(context.Background(), "till", "wrong")
	assert.ErrorIs(t, err, models.ErrAuth)
}

func TestLoginUnknownUser(t *testing.T) {
	svc, _ := authFixture(t)

	_, _, err := svc.Login(context.Background(), "nobody", "correct-horse")
	assert.ErrorIs(t, err, models.ErrAuth)
}

func TestLoginInactiveUser(t *testing.T) {
	svc, _ := authFixture(t)

	_, _, err := svc.Login(context.Background(), "gone", "correct-horse")
	assert.ErrorIs(t, err, models.ErrAuth)
}

// All credential failures must be indistinguishable to the caller
func TestLoginFailuresShareOneError(t *testing.T) {
	svc, _ := authFixture(t)

	_, _, errUnknown := svc.Login(context.Background(), "nobody", "x")
	_, _, errWrongPw := svc.Login(context.Background(), "till", "x")
	_, _, errInactive := svc.Login(context.Background(), "gone", "correct-horse")

	assert.Equal(t, errUnknown.Error(), errWrongPw.Error())
	assert.Equal(t, errWrongPw.Error(), errInactive.Error())
}

func TestLogoutRevokesSession(t *testing.T) {
	svc, store := authFixture(t)

	token, _, err := svc.Login(context.Background(), "till", "correct-horse")
	require.NoError(t, err)
	require.Len(t, store.sessions, 1)

	require.NoError(t, svc.Logout(context.Background(), token))
	assert.Empty(t, store.sessions)
}
