package booking

import (
	"context"
	"time"
)

type StatsByDay struct {
	Day              string `db:"day" json:"day"`
	BookingsCreated  int    `db:"bookings_created" json:"bookings_created"`
	BookingsCanceled int    `db:"bookings_canceled" json:"bookings_canceled"`
}

// GetStatsByDay buckets bookings created and canceled per day in [from, to).
func (r *repository) GetStatsByDay(ctx context.Context, from, to time.Time) ([]StatsByDay, error) {
	query := `
		SELECT
			to_char(date_trunc('day', b.created_at), 'YYYY-MM-DD') AS day,
			COUNT(*) AS bookings_created,
			COUNT(*) FILTER (WHERE b.status = 'canceled') AS bookings_canceled
		FROM bookings b
		WHERE b.created_at >= $1 AND b.created_at < $2
		GROUP BY 1
		ORDER BY 1
	`

	var stats []StatsByDay
	err := r.db.SelectContext(ctx, &stats, query, from, to)
	if err != nil {
		return nil, err
	}

	return stats, nil
}
