package repositories

import (
	"context"
	"fmt"

	"discount-backend/internal/models"

	"github.com/jackc/pgx/v5/pgxpool"
)

type PushSubscriptionRepository struct {
	DB *pgxpool.Pool
}

func NewPushSubscriptionRepository(db *pgxpool.Pool) *PushSubscriptionRepository {
	return &PushSubscriptionRepository{DB: db}
}

// Upsert registers a browser endpoint for a user. Re-subscribing the same
// endpoint (possibly from a different login) takes over the registration.
func (r *PushSubscriptionRepository) Upsert(ctx context.Context, sub *models.PushSubscription) error {
	query := `
		INSERT INTO push_subscriptions(user_id, endpoint, p256dh, auth)
		VALUES($1, $2, $3, $4)
		ON CONFLICT (endpoint) DO UPDATE
			SET user_id = EXCLUDED.user_id, p256dh = EXCLUDED.p256dh, auth = EXCLUDED.auth
		RETURNING id, created_at
	`

	err := r.DB.QueryRow(ctx, query, sub.UserID, sub.Endpoint, sub.P256dh, sub.Auth).
		Scan(&sub.ID, &sub.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to save push subscription: %w", err)
	}

	return nil
}

// ListByRoles returns subscriptions belonging to active users in the given
// roles
func (r *PushSubscriptionRepository) ListByRoles(ctx context.Context, roles []models.Role) ([]models.PushSubscription, error) {
	query := `
		SELECT s.id, s.user_id, s.endpoint, s.p256dh, s.auth, s.created_at
		FROM push_subscriptions s
		JOIN users u ON u.id = s.user_id
		WHERE u.is_active AND u.role = ANY($1)
	`

	roleStrs := make([]string, len(roles))
	for i, role := range roles {
		roleStrs[i] = string(role)
	}

	rows, err := r.DB.Query(ctx, query, roleStrs)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var subs []models.PushSubscription
	for rows.Next() {
		var s models.PushSubscription
		if err := rows.Scan(&s.ID, &s.UserID, &s.Endpoint, &s.P256dh, &s.Auth, &s.CreatedAt); err != nil {
			return nil, err
		}
		subs = append(subs, s)
	}

	return subs, rows.Err()
}

// DeleteByEndpoint drops a dead subscription (endpoint gone or revoked)
func (r *PushSubscriptionRepository) DeleteByEndpoint(ctx context.Context, endpoint string) error {
	_, err := r.DB.Exec(ctx, `DELETE FROM push_subscriptions WHERE endpoint = $1`, endpoint)
	return err
}
