package booking

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"
)

func setupMock(t *testing.T) (Repository, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)

	sqlxDB := sqlx.NewDb(db, "sqlmock")
	repo := NewRepository(sqlxDB)

	cleanup := func() {
		sqlxDB.Close()
	}

	return repo, mock, cleanup
}

func bookingRows(id, userID, slotID, subID int) *sqlmock.Rows {
	return sqlmock.NewRows([]string{
		"id", "user_id", "slot_id", "subscription_id", "status",
		"cancel_reason", "canceled_at", "created_at",
	}).AddRow(id, userID, slotID, subID, "active", nil, nil, time.Now())
}

func TestBookCommitsAllThreeWrites(t *testing.T) {
	repo, mock, cleanup := setupMock(t)
	defer cleanup()

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("SELECT status FROM training_slots WHERE id = $1 FOR UPDATE")).
		WithArgs(2).
		WillReturnRows(sqlmock.NewRows([]string{"status"}).AddRow("available"))
	mock.ExpectQuery(regexp.QuoteMeta("FROM subscriptions")).
		WithArgs(1).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(7))
	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO bookings")).
		WithArgs(1, 2, 7).
		WillReturnRows(bookingRows(10, 1, 2, 7))
	mock.ExpectExec(regexp.QuoteMeta("UPDATE training_slots SET status = 'booked' WHERE id = $1")).
		WithArgs(2).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta("used_sessions + 1")).
		WithArgs(7).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	b, err := repo.Book(context.Background(), 1, 2)
	require.NoError(t, err)
	require.Equal(t, 10, b.ID)
	require.Equal(t, 7, b.SubscriptionID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestBookSlotNotFound(t *testing.T) {
	repo, mock, cleanup := setupMock(t)
	defer cleanup()

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("SELECT status FROM training_slots WHERE id = $1 FOR UPDATE")).
		WithArgs(99).
		WillReturnRows(sqlmock.NewRows([]string{"status"}))
	mock.ExpectRollback()

	_, err := repo.Book(context.Background(), 1, 99)
	require.ErrorIs(t, err, ErrSlotNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestBookSlotAlreadyBooked(t *testing.T) {
	repo, mock, cleanup := setupMock(t)
	defer cleanup()

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("SELECT status FROM training_slots WHERE id = $1 FOR UPDATE")).
		WithArgs(2).
		WillReturnRows(sqlmock.NewRows([]string{"status"}).AddRow("booked"))
	mock.ExpectRollback()

	_, err := repo.Book(context.Background(), 1, 2)
	require.ErrorIs(t, err, ErrSlotUnavailable)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestBookNoUsableSubscription(t *testing.T) {
	repo, mock, cleanup := setupMock(t)
	defer cleanup()

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("SELECT status FROM training_slots WHERE id = $1 FOR UPDATE")).
		WithArgs(2).
		WillReturnRows(sqlmock.NewRows([]string{"status"}).AddRow("available"))
	mock.ExpectQuery(regexp.QuoteMeta("FROM subscriptions")).
		WithArgs(1).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))
	mock.ExpectRollback()

	_, err := repo.Book(context.Background(), 1, 2)
	require.ErrorIs(t, err, ErrNoBookableSubscription)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCancelRestoresSlotAndCredit(t *testing.T) {
	repo, mock, cleanup := setupMock(t)
	defer cleanup()

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, slot_id, subscription_id")).
		WithArgs(10, 1).
		WillReturnRows(sqlmock.NewRows([]string{"id", "slot_id", "subscription_id"}).AddRow(10, 2, 7))
	mock.ExpectExec(regexp.QuoteMeta("SET status = 'canceled'")).
		WithArgs("changed plans", 10).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta("UPDATE training_slots SET status = 'available' WHERE id = $1")).
		WithArgs(2).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta("used_sessions - 1")).
		WithArgs(7).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	err := repo.Cancel(context.Background(), 1, 10, "changed plans")
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCancelUnknownBooking(t *testing.T) {
	repo, mock, cleanup := setupMock(t)
	defer cleanup()

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, slot_id, subscription_id")).
		WithArgs(99, 1).
		WillReturnRows(sqlmock.NewRows([]string{"id", "slot_id", "subscription_id"}))
	mock.ExpectRollback()

	err := repo.Cancel(context.Background(), 1, 99, "whatever")
	require.ErrorIs(t, err, ErrBookingNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCancelNotOwnBooking(t *testing.T) {
	repo, mock, cleanup := setupMock(t)
	defer cleanup()

	// The row lock filters by user_id, so another user's booking looks absent.
	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, slot_id, subscription_id")).
		WithArgs(10, 2).
		WillReturnRows(sqlmock.NewRows([]string{"id", "slot_id", "subscription_id"}))
	mock.ExpectRollback()

	err := repo.Cancel(context.Background(), 2, 10, "not mine")
	require.ErrorIs(t, err, ErrBookingNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRescheduleMovesBooking(t *testing.T) {
	repo, mock, cleanup := setupMock(t)
	defer cleanup()

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, slot_id, subscription_id")).
		WithArgs(10, 1).
		WillReturnRows(sqlmock.NewRows([]string{"id", "slot_id", "subscription_id"}).AddRow(10, 2, 7))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT status FROM training_slots WHERE id = $1 FOR UPDATE")).
		WithArgs(3).
		WillReturnRows(sqlmock.NewRows([]string{"status"}).AddRow("available"))
	mock.ExpectExec(regexp.QuoteMeta("SET status = 'canceled'")).
		WithArgs("rescheduled", 10).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta("UPDATE training_slots SET status = 'available' WHERE id = $1")).
		WithArgs(2).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO bookings")).
		WithArgs(1, 3, 7).
		WillReturnRows(bookingRows(11, 1, 3, 7))
	mock.ExpectExec(regexp.QuoteMeta("UPDATE training_slots SET status = 'booked' WHERE id = $1")).
		WithArgs(3).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	b, err := repo.Reschedule(context.Background(), 1, 10, 3)
	require.NoError(t, err)
	require.Equal(t, 11, b.ID)
	require.Equal(t, 3, b.SlotID)
	require.Equal(t, 7, b.SubscriptionID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRescheduleTargetTaken(t *testing.T) {
	repo, mock, cleanup := setupMock(t)
	defer cleanup()

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, slot_id, subscription_id")).
		WithArgs(10, 1).
		WillReturnRows(sqlmock.NewRows([]string{"id", "slot_id", "subscription_id"}).AddRow(10, 2, 7))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT status FROM training_slots WHERE id = $1 FOR UPDATE")).
		WithArgs(3).
		WillReturnRows(sqlmock.NewRows([]string{"status"}).AddRow("booked"))
	mock.ExpectRollback()

	_, err := repo.Reschedule(context.Background(), 1, 10, 3)
	require.ErrorIs(t, err, ErrSlotUnavailable)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestGetByIDAndListByUser(t *testing.T) {
	repo, mock, cleanup := setupMock(t)
	defer cleanup()

	mock.ExpectQuery(regexp.QuoteMeta("SELECT " + bookingColumns + " FROM bookings WHERE id = $1")).
		WithArgs(10).
		WillReturnRows(bookingRows(10, 1, 2, 7))

	got, err := repo.GetByID(context.Background(), 10)
	require.NoError(t, err)
	require.Equal(t, 10, got.ID)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT " + bookingColumns + " FROM bookings WHERE id = $1")).
		WithArgs(11).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	_, err = repo.GetByID(context.Background(), 11)
	require.ErrorIs(t, err, ErrBookingNotFound)

	rows := sqlmock.NewRows([]string{
		"id", "user_id", "slot_id", "subscription_id", "status",
		"cancel_reason", "canceled_at", "created_at",
		"slot_date", "slot_time", "duration_minutes", "user_name",
	}).
		AddRow(2, 1, 5, 7, "active", nil, nil, time.Now(), time.Now(), "18:00:00", 60, "Anna K").
		AddRow(1, 1, 4, 7, "canceled", "sick", time.Now(), time.Now(), time.Now(), "10:00:00", 60, "Anna K")

	mock.ExpectQuery(regexp.QuoteMeta("WHERE b.user_id = $1")).
		WithArgs(1).
		WillReturnRows(rows)

	list, err := repo.ListByUser(context.Background(), 1)
	require.NoError(t, err)
	require.Len(t, list, 2)
	require.Equal(t, "18:00:00", list[0].SlotTime)
}
