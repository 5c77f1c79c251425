package slot

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/jmoiron/sqlx"
)

var (
	ErrSlotNotFound     = errors.New("training slot not found")
	ErrSlotNotBlockable = errors.New("only available slots can be blocked")
	ErrSlotNotBlocked   = errors.New("slot is not blocked")
)

type repository struct {
	db *sqlx.DB
}

func NewRepository(db *sqlx.DB) Repository {
	return &repository{db: db}
}

func (r *repository) Create(ctx context.Context, slotDate time.Time, slotTime string, durationMinutes int) (*TrainingSlot, error) {
	query := `
		INSERT INTO training_slots (slot_date, slot_time, duration_minutes, status)
		VALUES ($1, $2, $3, 'available')
		RETURNING id, slot_date, slot_time, duration_minutes, status, block_reason, created_at
	`

	var s TrainingSlot
	err := r.db.GetContext(ctx, &s, query, slotDate, slotTime, durationMinutes)
	if err != nil {
		return nil, err
	}

	return &s, nil
}

// ListRange returns slots between the two dates inclusive, each annotated
// with its active booking and booker name when present.
func (r *repository) ListRange(ctx context.Context, startDate, endDate time.Time) ([]SlotWithBooking, error) {
	query := `
		SELECT
			ts.id,
			ts.slot_date,
			ts.slot_time,
			ts.duration_minutes,
			ts.status,
			ts.block_reason,
			b.id AS booking_id,
			u.full_name AS booked_by
		FROM training_slots ts
		LEFT JOIN bookings b ON ts.id = b.slot_id AND b.status = 'active'
		LEFT JOIN users u ON b.user_id = u.id
		WHERE ts.slot_date >= $1 AND ts.slot_date <= $2
		ORDER BY ts.slot_date, ts.slot_time
	`

	var slots []SlotWithBooking
	err := r.db.SelectContext(ctx, &slots, query, startDate, endDate)
	if err != nil {
		return nil, err
	}

	return slots, nil
}

func (r *repository) ListByDate(ctx context.Context, date time.Time) ([]TrainingSlot, error) {
	query := `
		SELECT id, slot_date, slot_time, duration_minutes, status, block_reason, created_at
		FROM training_slots
		WHERE slot_date = $1
		ORDER BY slot_time
	`

	var slots []TrainingSlot
	err := r.db.SelectContext(ctx, &slots, query, date)
	if err != nil {
		return nil, err
	}

	return slots, nil
}

func (r *repository) FindByDateTime(ctx context.Context, date time.Time, slotTime string) (*TrainingSlot, error) {
	query := `
		SELECT id, slot_date, slot_time, duration_minutes, status, block_reason, created_at
		FROM training_slots
		WHERE slot_date = $1 AND slot_time = $2
	`

	var s TrainingSlot
	err := r.db.GetContext(ctx, &s, query, date, slotTime)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrSlotNotFound
		}
		return nil, err
	}

	return &s, nil
}

func (r *repository) Block(ctx context.Context, id int, reason string) error {
	result, err := r.db.ExecContext(ctx, `
		UPDATE training_slots
		SET status = 'blocked', block_reason = $1
		WHERE id = $2 AND status = 'available'
	`, reason, id)
	if err != nil {
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}

	if rowsAffected == 0 {
		return ErrSlotNotBlockable
	}

	return nil
}

func (r *repository) Unblock(ctx context.Context, id int) error {
	result, err := r.db.ExecContext(ctx, `
		UPDATE training_slots
		SET status = 'available', block_reason = NULL
		WHERE id = $1 AND status = 'blocked'
	`, id)
	if err != nil {
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}

	if rowsAffected == 0 {
		return ErrSlotNotBlocked
	}

	return nil
}
