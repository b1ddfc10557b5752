package middleware

import (
	"context"
	"net/http"

	"discount-backend/internal/auth"
	"discount-backend/internal/models"
)

type contextKey string

const (
	sessionKey contextKey = "session"
)

// AuthMiddleware resolves the session cookie into the request context
type AuthMiddleware struct {
	Sessions   *auth.SessionManager
	CookieName string
}

func NewAuthMiddleware(sessions *auth.SessionManager, cookieName string) *AuthMiddleware {
	return &AuthMiddleware{
		Sessions:   sessions,
		CookieName: cookieName,
	}
}

// RequireAuth rejects requests without a valid session
func (m *AuthMiddleware) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		cookie, err := r.Cookie(m.CookieName)
		if err != nil || cookie.Value == "" {
			http.Error(w, "Authentication required", http.StatusUnauthorized)
			return
		}

		session, err := m.Sessions.Resolve(r.Context(), cookie.Value)
		if err != nil {
			http.Error(w, "Session lookup failed", http.StatusInternalServerError)
			return
		}
		if session == nil {
			http.Error(w, "Session expired or invalid", http.StatusUnauthorized)
			return
		}

		ctx := context.WithValue(r.Context(), sessionKey, session)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequireRole rejects sessions whose role is not in the allow list.
// Must run inside RequireAuth.
func (m *AuthMiddleware) RequireRole(roles ...models.Role) func(http.Handler) http.Handler {
	allowed := make(map[models.Role]bool, len(roles))
	for _, role := range roles {
		allowed[role] = true
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			session, ok := GetSessionFromContext(r.Context())
			if !ok {
				http.Error(w, "Authentication required", http.StatusUnauthorized)
				return
			}
			if !allowed[session.Role] {
				http.Error(w, "Forbidden", http.StatusForbidden)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// GetSessionFromContext returns the authenticated session, if any
func GetSessionFromContext(ctx context.Context) (*models.Session, bool) {
	session, ok := ctx.Value(sessionKey).(*models.Session)
	return session, ok
}

// GetUserIDFromContext returns the authenticated user's ID
func GetUserIDFromContext(ctx context.Context) (int, bool) {
	session, ok := GetSessionFromContext(ctx)
	if !ok {
		return 0, false
	}
	return session.UserID, true
}

// GetRoleFromContext returns the authenticated user's role
func GetRoleFromContext(ctx context.Context) (models.Role, bool) {
	session, ok := GetSessionFromContext(ctx)
	if !ok {
		return "", false
	}
	return session.Role, true
}
