package booking

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/jmoiron/sqlx"
)

var (
	ErrSlotNotFound           = errors.New("training slot not found")
	ErrSlotUnavailable        = errors.New("slot is not available")
	ErrNoBookableSubscription = errors.New("no active subscription with remaining sessions")
	ErrBookingNotFound        = errors.New("booking not found")
)

const bookingColumns = `id, user_id, slot_id, subscription_id, status, cancel_reason, canceled_at, created_at`

type repository struct {
	db *sqlx.DB
}

func NewRepository(db *sqlx.DB) Repository {
	return &repository{db: db}
}

// lockedBooking is the row image taken under FOR UPDATE before mutating.
type lockedBooking struct {
	ID             int `db:"id"`
	SlotID         int `db:"slot_id"`
	SubscriptionID int `db:"subscription_id"`
}

// Book atomically claims the slot for the user: the slot and the chosen
// subscription are locked first, then all three writes (booking insert, slot
// flip, session decrement) commit together or not at all.
func (r *repository) Book(ctx context.Context, userID, slotID int) (*Booking, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	var slotStatus string
	err = tx.GetContext(ctx, &slotStatus,
		`SELECT status FROM training_slots WHERE id = $1 FOR UPDATE`, slotID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrSlotNotFound
		}
		return nil, err
	}
	if slotStatus != "available" {
		return nil, ErrSlotUnavailable
	}

	// Prefer the subscription expiring soonest so credit is not stranded.
	var subID int
	err = tx.GetContext(ctx, &subID, `
		SELECT id
		FROM subscriptions
		WHERE user_id = $1
		  AND status = 'active'
		  AND end_date >= CURRENT_DATE
		  AND used_sessions < total_sessions
		ORDER BY end_date ASC
		LIMIT 1
		FOR UPDATE`, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNoBookableSubscription
		}
		return nil, err
	}

	var b Booking
	err = tx.GetContext(ctx, &b, `
		INSERT INTO bookings (user_id, slot_id, subscription_id, status)
		VALUES ($1, $2, $3, 'active')
		RETURNING `+bookingColumns, userID, slotID, subID)
	if err != nil {
		return nil, err
	}

	if _, err = tx.ExecContext(ctx,
		`UPDATE training_slots SET status = 'booked' WHERE id = $1`, slotID); err != nil {
		return nil, err
	}

	if _, err = tx.ExecContext(ctx, `
		UPDATE subscriptions
		SET used_sessions = used_sessions + 1, updated_at = NOW()
		WHERE id = $1`, subID); err != nil {
		return nil, err
	}

	if err = tx.Commit(); err != nil {
		return nil, err
	}

	return &b, nil
}

// Cancel reverses a booking owned by the user: booking marked canceled, slot
// freed, session credit returned, all in one transaction.
func (r *repository) Cancel(ctx context.Context, userID, bookingID int, reason string) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	lb, err := lockActiveBooking(ctx, tx, userID, bookingID)
	if err != nil {
		return err
	}

	if err := cancelLocked(ctx, tx, lb, reason); err != nil {
		return err
	}

	if _, err = tx.ExecContext(ctx, `
		UPDATE subscriptions
		SET used_sessions = used_sessions - 1, updated_at = NOW()
		WHERE id = $1`, lb.SubscriptionID); err != nil {
		return err
	}

	return tx.Commit()
}

// Reschedule moves an active booking to another slot as cancel+rebook inside
// one transaction. The session credit is handed from the old booking to the
// new one, so used_sessions ends unchanged.
func (r *repository) Reschedule(ctx context.Context, userID, bookingID, newSlotID int) (*Booking, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	lb, err := lockActiveBooking(ctx, tx, userID, bookingID)
	if err != nil {
		return nil, err
	}

	var newSlotStatus string
	err = tx.GetContext(ctx, &newSlotStatus,
		`SELECT status FROM training_slots WHERE id = $1 FOR UPDATE`, newSlotID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrSlotNotFound
		}
		return nil, err
	}
	if newSlotStatus != "available" {
		return nil, ErrSlotUnavailable
	}

	if err := cancelLocked(ctx, tx, lb, "rescheduled"); err != nil {
		return nil, err
	}

	var b Booking
	err = tx.GetContext(ctx, &b, `
		INSERT INTO bookings (user_id, slot_id, subscription_id, status)
		VALUES ($1, $2, $3, 'active')
		RETURNING `+bookingColumns, userID, newSlotID, lb.SubscriptionID)
	if err != nil {
		return nil, err
	}

	if _, err = tx.ExecContext(ctx,
		`UPDATE training_slots SET status = 'booked' WHERE id = $1`, newSlotID); err != nil {
		return nil, err
	}

	if err = tx.Commit(); err != nil {
		return nil, err
	}

	return &b, nil
}

func lockActiveBooking(ctx context.Context, tx *sqlx.Tx, userID, bookingID int) (*lockedBooking, error) {
	var lb lockedBooking
	err := tx.GetContext(ctx, &lb, `
		SELECT id, slot_id, subscription_id
		FROM bookings
		WHERE id = $1 AND user_id = $2 AND status = 'active'
		FOR UPDATE`, bookingID, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrBookingNotFound
		}
		return nil, err
	}
	return &lb, nil
}

// cancelLocked marks the already locked booking canceled and frees its slot.
func cancelLocked(ctx context.Context, tx *sqlx.Tx, lb *lockedBooking, reason string) error {
	if _, err := tx.ExecContext(ctx, `
		UPDATE bookings
		SET status = 'canceled', canceled_at = NOW(), cancel_reason = $1
		WHERE id = $2`, reason, lb.ID); err != nil {
		return err
	}

	_, err := tx.ExecContext(ctx,
		`UPDATE training_slots SET status = 'available' WHERE id = $1`, lb.SlotID)
	return err
}

func (r *repository) GetByID(ctx context.Context, id int) (*Booking, error) {
	var b Booking
	err := r.db.GetContext(ctx, &b,
		`SELECT `+bookingColumns+` FROM bookings WHERE id = $1`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrBookingNotFound
		}
		return nil, err
	}

	return &b, nil
}

func (r *repository) ListByUser(ctx context.Context, userID int) ([]BookingWithSlot, error) {
	query := `
		SELECT
			b.id, b.user_id, b.slot_id, b.subscription_id, b.status,
			b.cancel_reason, b.canceled_at, b.created_at,
			ts.slot_date, ts.slot_time, ts.duration_minutes,
			u.full_name AS user_name
		FROM bookings b
		JOIN training_slots ts ON b.slot_id = ts.id
		JOIN users u ON b.user_id = u.id
		WHERE b.user_id = $1
		ORDER BY ts.slot_date DESC, ts.slot_time DESC
	`

	var bookings []BookingWithSlot
	err := r.db.SelectContext(ctx, &bookings, query, userID)
	if err != nil {
		return nil, err
	}

	return bookings, nil
}

func (r *repository) ListUpcoming(ctx context.Context) ([]BookingWithSlot, error) {
	query := `
		SELECT
			b.id, b.user_id, b.slot_id, b.subscription_id, b.status,
			b.cancel_reason, b.canceled_at, b.created_at,
			ts.slot_date, ts.slot_time, ts.duration_minutes,
			u.full_name AS user_name
		FROM bookings b
		JOIN training_slots ts ON b.slot_id = ts.id
		JOIN users u ON b.user_id = u.id
		WHERE b.status = 'active' AND ts.slot_date >= CURRENT_DATE
		ORDER BY ts.slot_date, ts.slot_time
	`

	var bookings []BookingWithSlot
	err := r.db.SelectContext(ctx, &bookings, query)
	if err != nil {
		return nil, err
	}

	return bookings, nil
}

// SlotTimeOf returns the schedule position of the booked slot, for
// notifications.
func (r *repository) SlotTimeOf(ctx context.Context, bookingID int) (time.Time, string, error) {
	var row struct {
		SlotDate time.Time `db:"slot_date"`
		SlotTime string    `db:"slot_time"`
	}
	err := r.db.GetContext(ctx, &row, `
		SELECT ts.slot_date, ts.slot_time
		FROM bookings b
		JOIN training_slots ts ON b.slot_id = ts.id
		WHERE b.id = $1`, bookingID)
	if err != nil {
		return time.Time{}, "", err
	}

	return row.SlotDate, row.SlotTime, nil
}
