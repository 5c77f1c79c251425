package profile

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"

	"ringslot/internal/booking"
	"ringslot/internal/subscription"
	"ringslot/internal/user"
)

// recentBookingsLimit caps the booking history returned with a profile.
const recentBookingsLimit = 20

type Profile struct {
	User          user.PublicUser                          `json:"user"`
	Phone         *string                                  `json:"phone,omitempty"`
	CreatedAt     time.Time                                `json:"created_at"`
	Subscriptions []subscription.SubscriptionWithRemaining `json:"subscriptions"`
	Bookings      []booking.BookingWithSlot                `json:"bookings"`
}

type Repository interface {
	Get(ctx context.Context, userID int) (*Profile, error)
}

type repository struct {
	db       *sqlx.DB
	userRepo user.Repository
	subRepo  subscription.Repository
}

func NewRepository(db *sqlx.DB) Repository {
	return &repository{
		db:       db,
		userRepo: user.NewRepository(db),
		subRepo:  subscription.NewRepository(db),
	}
}

func (r *repository) Get(ctx context.Context, userID int) (*Profile, error) {
	u, err := r.userRepo.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	subs, err := r.subRepo.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	bookings, err := r.recentBookings(ctx, userID)
	if err != nil {
		return nil, err
	}

	return &Profile{
		User:          u.Public(),
		Phone:         u.Phone,
		CreatedAt:     u.CreatedAt,
		Subscriptions: subs,
		Bookings:      bookings,
	}, nil
}

// recentBookings returns the newest active and completed bookings joined to
// their slots. Canceled bookings stay out of the profile.
func (r *repository) recentBookings(ctx context.Context, userID int) ([]booking.BookingWithSlot, error) {
	query := `
		SELECT
			b.id, b.user_id, b.slot_id, b.subscription_id, b.status,
			b.cancel_reason, b.canceled_at, b.created_at,
			ts.slot_date, ts.slot_time, ts.duration_minutes,
			u.full_name AS user_name
		FROM bookings b
		JOIN training_slots ts ON b.slot_id = ts.id
		JOIN users u ON b.user_id = u.id
		WHERE b.user_id = $1 AND b.status IN ('active', 'completed')
		ORDER BY ts.slot_date DESC, ts.slot_time DESC
		LIMIT $2
	`

	var bookings []booking.BookingWithSlot
	err := r.db.SelectContext(ctx, &bookings, query, userID, recentBookingsLimit)
	if err != nil {
		return nil, err
	}

	return bookings, nil
}
