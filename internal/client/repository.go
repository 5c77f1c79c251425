package client

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"
)

var ErrClientNotFound = errors.New("client not found")

// Clients are users carrying the client role; there is no separate clients
// table.
type repository struct {
	db *sqlx.DB
}

func NewRepository(db *sqlx.DB) Repository {
	return &repository{db: db}
}

func (r *repository) List(ctx context.Context) ([]ClientSummary, error) {
	query := `
		SELECT u.id, u.full_name, u.phone, u.email,
		       COUNT(s.id) AS subscriptions_count
		FROM users u
		LEFT JOIN subscriptions s ON s.user_id = u.id
		WHERE u.role = 'client'
		GROUP BY u.id, u.full_name, u.phone, u.email, u.created_at
		ORDER BY u.created_at DESC
	`

	var clients []ClientSummary
	err := r.db.SelectContext(ctx, &clients, query)
	if err != nil {
		return nil, err
	}

	return clients, nil
}

func (r *repository) GetByID(ctx context.Context, id int) (*ClientWithSubscription, error) {
	query := `
		SELECT u.id, u.full_name, u.phone, u.email, u.role, u.created_at,
		       s.id AS subscription_id,
		       s.subscription_type,
		       s.total_sessions,
		       (s.total_sessions - s.used_sessions) AS remaining_sessions,
		       s.end_date AS valid_until
		FROM users u
		LEFT JOIN subscriptions s ON s.user_id = u.id AND s.end_date >= CURRENT_DATE
		WHERE u.id = $1 AND u.role = 'client'
		ORDER BY s.created_at DESC
		LIMIT 1
	`

	var c ClientWithSubscription
	err := r.db.GetContext(ctx, &c, query, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrClientNotFound
		}
		return nil, err
	}

	return &c, nil
}
