package subscription

import "time"

type Status string

const (
	StatusActive   Status = "active"
	StatusExpired  Status = "expired"
	StatusCanceled Status = "canceled"
)

type Subscription struct {
	ID            int       `db:"id" json:"id"`
	UserID        int       `db:"user_id" json:"user_id"`
	Type          string    `db:"subscription_type" json:"subscription_type"`
	TotalSessions int       `db:"total_sessions" json:"total_sessions"`
	UsedSessions  int       `db:"used_sessions" json:"used_sessions"`
	StartDate     time.Time `db:"start_date" json:"start_date"`
	EndDate       time.Time `db:"end_date" json:"end_date"`
	Status        Status    `db:"status" json:"status"`
	CreatedAt     time.Time `db:"created_at" json:"created_at"`
	UpdatedAt     time.Time `db:"updated_at" json:"updated_at"`
}

// RemainingSessions is derived, never stored.
func (s *Subscription) RemainingSessions() int {
	return s.TotalSessions - s.UsedSessions
}

// SubscriptionWithRemaining carries the projection used by listings, with the
// remaining count computed by the database.
type SubscriptionWithRemaining struct {
	Subscription
	Remaining int `db:"remaining_sessions" json:"remaining_sessions"`
}

type CreateSubscriptionRequest struct {
	UserID        int    `json:"user_id" binding:"required"`
	Type          string `json:"subscription_type" binding:"required"`
	TotalSessions int    `json:"total_sessions" binding:"required,min=1"`
	StartDate     string `json:"start_date" binding:"required"`
	EndDate       string `json:"end_date" binding:"required"`
}
