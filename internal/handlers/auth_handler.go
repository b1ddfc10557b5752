package handlers

import (
	"net/http"
	"time"

	"discount-backend/internal/auth"
	"discount-backend/internal/middleware"
	"discount-backend/internal/models"
	"discount-backend/internal/services"
)

type AuthHandler struct {
	Service      *services.AuthService
	CookieName   string
	SecureCookie bool
}

func NewAuthHandler(service *services.AuthService, cookieName string, secureCookie bool) *AuthHandler {
	return &AuthHandler{
		Service:      service,
		CookieName:   cookieName,
		SecureCookie: secureCookie,
	}
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req models.LoginRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	token, session, err := h.Service.Login(r.Context(), req.Login, req.Password)
	if err != nil {
		writeError(w, err)
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     h.CookieName,
		Value:    token,
		Path:     "/",
		Expires:  session.ExpiresAt,
		MaxAge:   int(auth.SessionTTL / time.Second),
		HttpOnly: true,
		Secure:   h.SecureCookie,
		SameSite: http.SameSiteLaxMode,
	})

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"user_id":  session.UserID,
		"username": session.Username,
		"role":     session.Role,
	})
}

func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if cookie, err := r.Cookie(h.CookieName); err == nil && cookie.Value != "" {
		if err := h.Service.Logout(r.Context(), cookie.Value); err != nil {
			writeError(w, err)
			return
		}
	}

	// Expire the cookie regardless of whether a session existed
	http.SetCookie(w, &http.Cookie{
		Name:     h.CookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.SecureCookie,
		SameSite: http.SameSiteLaxMode,
	})

	writeJSON(w, http.StatusOK, map[string]string{"status": "logged out"})
}

// Me returns the authenticated session's identity
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	session, ok := middleware.GetSessionFromContext(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "not authenticated"})
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"user_id":  session.UserID,
		"username": session.Username,
		"role":     session.Role,
	})
}
