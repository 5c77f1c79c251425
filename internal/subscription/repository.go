package subscription

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"
)

type repository struct {
	db *sqlx.DB
}

func NewRepository(db *sqlx.DB) Repository {
	return &repository{db: db}
}

func (r *repository) Create(ctx context.Context, userID int, subType string, totalSessions int, startDate, endDate time.Time) (*Subscription, error) {
	query := `
		INSERT INTO subscriptions (user_id, subscription_type, total_sessions, used_sessions, start_date, end_date, status)
		VALUES ($1, $2, $3, 0, $4, $5, 'active')
		RETURNING id, user_id, subscription_type, total_sessions, used_sessions, start_date, end_date, status, created_at, updated_at
	`

	var sub Subscription
	err := r.db.GetContext(ctx, &sub, query, userID, subType, totalSessions, startDate, endDate)
	if err != nil {
		return nil, err
	}

	return &sub, nil
}

func (r *repository) ListByUser(ctx context.Context, userID int) ([]SubscriptionWithRemaining, error) {
	query := `
		SELECT id, user_id, subscription_type, total_sessions, used_sessions,
		       (total_sessions - used_sessions) AS remaining_sessions,
		       start_date, end_date, status, created_at, updated_at
		FROM subscriptions
		WHERE user_id = $1
		ORDER BY created_at DESC
	`

	var subs []SubscriptionWithRemaining
	err := r.db.SelectContext(ctx, &subs, query, userID)
	if err != nil {
		return nil, err
	}

	return subs, nil
}
