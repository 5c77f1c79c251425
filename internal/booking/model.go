package booking

import "time"

type Status string

const (
	StatusActive    Status = "active"
	StatusCanceled  Status = "canceled"
	StatusCompleted Status = "completed"
)

type Booking struct {
	ID             int        `db:"id" json:"id"`
	UserID         int        `db:"user_id" json:"user_id"`
	SlotID         int        `db:"slot_id" json:"slot_id"`
	SubscriptionID int        `db:"subscription_id" json:"subscription_id"`
	Status         Status     `db:"status" json:"status"`
	CancelReason   *string    `db:"cancel_reason" json:"cancel_reason,omitempty"`
	CanceledAt     *time.Time `db:"canceled_at" json:"canceled_at,omitempty"`
	CreatedAt      time.Time  `db:"created_at" json:"created_at"`
}

// BookingWithSlot joins a booking to its training slot for listings.
type BookingWithSlot struct {
	Booking
	SlotDate        time.Time `db:"slot_date" json:"slot_date"`
	SlotTime        string    `db:"slot_time" json:"slot_time"`
	DurationMinutes int       `db:"duration_minutes" json:"duration_minutes"`
	UserName        string    `db:"user_name" json:"user_name"`
}

type CreateBookingRequest struct {
	SlotDate string `json:"slot_date" binding:"required"`
	SlotTime string `json:"slot_time" binding:"required"`
}

type CancelBookingRequest struct {
	Reason string `json:"reason"`
}

type RescheduleBookingRequest struct {
	SlotID int `json:"slot_id" binding:"required"`
}

type BookSlotResponse struct {
	Message string   `json:"message" example:"booking created"`
	Booking *Booking `json:"booking"`
}
