package booking

import (
	"context"
	"time"
)

type Repository interface {
	Book(ctx context.Context, userID, slotID int) (*Booking, error)
	Cancel(ctx context.Context, userID, bookingID int, reason string) error
	Reschedule(ctx context.Context, userID, bookingID, newSlotID int) (*Booking, error)
	GetByID(ctx context.Context, id int) (*Booking, error)
	ListByUser(ctx context.Context, userID int) ([]BookingWithSlot, error)
	ListUpcoming(ctx context.Context) ([]BookingWithSlot, error)
	SlotTimeOf(ctx context.Context, bookingID int) (time.Time, string, error)
	GetStatsByDay(ctx context.Context, from, to time.Time) ([]StatsByDay, error)
}
