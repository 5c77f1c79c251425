package slot

import (
	"context"
	"time"
)

type Repository interface {
	Create(ctx context.Context, slotDate time.Time, slotTime string, durationMinutes int) (*TrainingSlot, error)
	ListRange(ctx context.Context, startDate, endDate time.Time) ([]SlotWithBooking, error)
	ListByDate(ctx context.Context, date time.Time) ([]TrainingSlot, error)
	FindByDateTime(ctx context.Context, date time.Time, slotTime string) (*TrainingSlot, error)
	Block(ctx context.Context, id int, reason string) error
	Unblock(ctx context.Context, id int) error
}
