package subscription

import (
	"context"
	"time"
)

type Repository interface {
	Create(ctx context.Context, userID int, subType string, totalSessions int, startDate, endDate time.Time) (*Subscription, error)
	ListByUser(ctx context.Context, userID int) ([]SubscriptionWithRemaining, error)
}
