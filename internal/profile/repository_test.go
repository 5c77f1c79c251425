package profile

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"
)

func TestGetProfile(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	sqlxDB := sqlx.NewDb(db, "sqlmock")
	defer sqlxDB.Close()

	repo := NewRepository(sqlxDB)
	now := time.Now()
	start := time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC)

	// user lookup
	mock.ExpectQuery(regexp.QuoteMeta("WHERE id = $1")).
		WithArgs(1).
		WillReturnRows(sqlmock.NewRows([]string{"id", "email", "password_hash", "full_name", "phone", "role", "created_at"}).
			AddRow(1, "anna@example.com", "hash", "Anna K", "+7 900", "client", now))

	// subscriptions
	mock.ExpectQuery(regexp.QuoteMeta("(total_sessions - used_sessions) AS remaining_sessions")).
		WithArgs(1).
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "user_id", "subscription_type", "total_sessions", "used_sessions",
			"remaining_sessions", "start_date", "end_date", "status", "created_at", "updated_at",
		}).AddRow(3, 1, "monthly-8", 8, 5, 3, start, start.AddDate(0, 1, 0), "active", now, now))

	// recent bookings
	mock.ExpectQuery(regexp.QuoteMeta("b.status IN ('active', 'completed')")).
		WithArgs(1, recentBookingsLimit).
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "user_id", "slot_id", "subscription_id", "status",
			"cancel_reason", "canceled_at", "created_at",
			"slot_date", "slot_time", "duration_minutes", "user_name",
		}).AddRow(10, 1, 5, 3, "active", nil, nil, now, start, "18:00:00", 60, "Anna K"))

	p, err := repo.Get(context.Background(), 1)
	require.NoError(t, err)
	require.Equal(t, "Anna K", p.User.FullName)
	require.Equal(t, "+7 900", *p.Phone)
	require.Len(t, p.Subscriptions, 1)
	require.Equal(t, 3, p.Subscriptions[0].Remaining)
	require.Len(t, p.Bookings, 1)
	require.Equal(t, "18:00:00", p.Bookings[0].SlotTime)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestGetProfileUnknownUser(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	sqlxDB := sqlx.NewDb(db, "sqlmock")
	defer sqlxDB.Close()

	repo := NewRepository(sqlxDB)

	mock.ExpectQuery(regexp.QuoteMeta("WHERE id = $1")).
		WithArgs(99).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	_, err = repo.Get(context.Background(), 99)
	require.Error(t, err)
}
