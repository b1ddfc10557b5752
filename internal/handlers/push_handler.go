package handlers

import (
	"net/http"

	"discount-backend/internal/middleware"
	"discount-backend/internal/models"
	"discount-backend/internal/push"
	"discount-backend/internal/repositories"
)

type PushHandler struct {
	Notifier *push.Notifier
	Repo     *repositories.PushSubscriptionRepository
}

func NewPushHandler(notifier *push.Notifier, repo *repositories.PushSubscriptionRepository) *PushHandler {
	return &PushHandler{
		Notifier: notifier,
		Repo:     repo,
	}
}

// PublicKey hands the browser the VAPID public key it needs to subscribe
func (h *PushHandler) PublicKey(w http.ResponseWriter, r *http.Request) {
	if !h.Notifier.Configured() {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"error": "web push is not configured"})
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"public_key": h.Notifier.PublicKey()})
}

func (h *PushHandler) Subscribe(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "not authenticated"})
		return
	}

	var req models.SubscribeRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	sub := &models.PushSubscription{
		UserID:   userID,
		Endpoint: req.Endpoint,
		P256dh:   req.P256dh,
		Auth:     req.Auth,
	}

	if err := h.Repo.Upsert(r.Context(), sub); err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]string{"status": "subscribed"})
}

type unsubscribeRequest struct {
	Endpoint string `json:"endpoint" validate:"required,url"`
}

func (h *PushHandler) Unsubscribe(w http.ResponseWriter, r *http.Request) {
	var req unsubscribeRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	if err := h.Repo.DeleteByEndpoint(r.Context(), req.Endpoint); err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "unsubscribed"})
}
