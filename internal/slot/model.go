package slot

import "time"

type Status string

const (
	StatusAvailable Status = "available"
	StatusBooked    Status = "booked"
	StatusBlocked   Status = "blocked"
)

type TrainingSlot struct {
	ID              int       `db:"id" json:"id"`
	SlotDate        time.Time `db:"slot_date" json:"slot_date"`
	SlotTime        string    `db:"slot_time" json:"slot_time"`
	DurationMinutes int       `db:"duration_minutes" json:"duration_minutes"`
	Status          Status    `db:"status" json:"status"`
	BlockReason     *string   `db:"block_reason" json:"block_reason,omitempty"`
	CreatedAt       time.Time `db:"created_at" json:"created_at"`
}

// SlotWithBooking annotates a slot with its active booking, if any.
type SlotWithBooking struct {
	TrainingSlot
	BookingID *int    `db:"booking_id" json:"booking_id,omitempty"`
	BookedBy  *string `db:"booked_by" json:"booked_by,omitempty"`
}

// GridHour is one entry of the legacy hourly availability projection.
type GridHour struct {
	Hour      string `json:"hour"`
	SlotID    *int   `json:"slot_id,omitempty"`
	Available bool   `json:"available"`
}

type CreateSlotRequest struct {
	SlotDate        string `json:"slot_date" binding:"required"`
	SlotTime        string `json:"slot_time" binding:"required"`
	DurationMinutes int    `json:"duration_minutes" binding:"required,min=15,max=240"`
}

type BlockSlotRequest struct {
	Reason string `json:"reason" binding:"required"`
}
