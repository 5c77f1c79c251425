package client

import "time"

// ClientSummary is one row of the admin client list.
type ClientSummary struct {
	ID                 int     `db:"id" json:"id"`
	FullName           string  `db:"full_name" json:"full_name"`
	Phone              *string `db:"phone" json:"phone,omitempty"`
	Email              string  `db:"email" json:"email"`
	SubscriptionsCount int     `db:"subscriptions_count" json:"subscriptions_count"`
}

// ClientWithSubscription is a client joined to their most recent still-valid
// subscription, when one exists.
type ClientWithSubscription struct {
	ID        int       `db:"id" json:"id"`
	FullName  string    `db:"full_name" json:"full_name"`
	Phone     *string   `db:"phone" json:"phone,omitempty"`
	Email     string    `db:"email" json:"email"`
	Role      string    `db:"role" json:"role"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`

	SubscriptionID    *int       `db:"subscription_id" json:"subscription_id,omitempty"`
	SubscriptionType  *string    `db:"subscription_type" json:"subscription_type,omitempty"`
	TotalSessions     *int       `db:"total_sessions" json:"total_sessions,omitempty"`
	RemainingSessions *int       `db:"remaining_sessions" json:"remaining_sessions,omitempty"`
	ValidUntil        *time.Time `db:"valid_until" json:"valid_until,omitempty"`
}

type CreateClientRequest struct {
	FullName string `json:"full_name" validate:"required"`
	Phone    string `json:"phone"`
	Email    string `json:"email" validate:"required,email"`
}
