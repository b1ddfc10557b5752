package push

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"

	"discount-backend/internal/config"
	"discount-backend/internal/models"

	webpush "github.com/SherClockHolmes/webpush-go"
)

// SubscriptionStore is implemented by repositories.PushSubscriptionRepository
type SubscriptionStore interface {
	ListByRoles(ctx context.Context, roles []models.Role) ([]models.PushSubscription, error)
	DeleteByEndpoint(ctx context.Context, endpoint string) error
}

// Notifier delivers Web Push messages to staff browsers using VAPID keys.
// Endpoints that report themselves gone (404/410) are dropped from the
// store so we stop retrying dead browsers.
type Notifier struct {
	cfg  config.PushConfig
	subs SubscriptionStore
}

func NewNotifier(cfg config.PushConfig, subs SubscriptionStore) *Notifier {
	return &Notifier{cfg: cfg, subs: subs}
}

// Configured reports whether VAPID keys are present
func (n *Notifier) Configured() bool {
	return n.cfg.VAPIDPublicKey != "" && n.cfg.VAPIDPrivateKey != ""
}

// PublicKey returns the VAPID public key browsers need to subscribe
func (n *Notifier) PublicKey() string {
	return n.cfg.VAPIDPublicKey
}

type pushPayload struct {
	Title string `json:"title"`
	Body  string `json:"body"`
	URL   string `json:"url,omitempty"`
}

// SendToRoles pushes to every subscription of active users in the given
// roles. Per-endpoint failures are logged and do not stop the fan-out.
func (n *Notifier) SendToRoles(ctx context.Context, roles []models.Role, title, body, url string) error {
	if !n.Configured() {
		return nil
	}

	subs, err := n.subs.ListByRoles(ctx, roles)
	if err != nil {
		return fmt.Errorf("failed to list push subscriptions: %w", err)
	}

	payload, err := json.Marshal(pushPayload{Title: title, Body: body, URL: url})
	if err != nil {
		return err
	}

	for _, sub := range subs {
		n.send(ctx, &sub, payload)
	}

	return nil
}

func (n *Notifier) send(ctx context.Context, sub *models.PushSubscription, payload []byte) {
	resp, err := webpush.SendNotification(payload, &webpush.Subscription{
		Endpoint: sub.Endpoint,
		Keys: webpush.Keys{
			P256dh: sub.P256dh,
			Auth:   sub.Auth,
		},
	}, &webpush.Options{
		Subscriber:      n.cfg.VAPIDSubject,
		VAPIDPublicKey:  n.cfg.VAPIDPublicKey,
		VAPIDPrivateKey: n.cfg.VAPIDPrivateKey,
		TTL:             60,
	})
	if err != nil {
		log.Printf("Web push to user %d failed: %v", sub.UserID, err)
		return
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound || resp.StatusCode == http.StatusGone {
		// Browser unsubscribed or endpoint expired
		if err := n.subs.DeleteByEndpoint(ctx, sub.Endpoint); err != nil {
			log.Printf("Failed to drop dead push endpoint: %v", err)
		}
	}
}
