package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/iliyamo/b-cinema/internal/model"
)

// BookingRepo reads the `bookings` table.  Bookings are created by the
// customer reservation flow, which is not part of this service; here they
// are only looked up, counted and removed by showtime cascades.
type BookingRepo struct {
	db *sql.DB
}

// NewBookingRepo constructs a BookingRepo with the given DB handle.
func NewBookingRepo(db *sql.DB) *BookingRepo {
	return &BookingRepo{db: db}
}

// GetByID returns a booking or ErrNotFound.
func (r *BookingRepo) GetByID(ctx context.Context, id uint64) (*model.Booking, error) {
	var b model.Booking
	err := r.db.QueryRowContext(ctx,
		"SELECT id, user_id, showtime_id, booking_date FROM bookings WHERE id = ?", id).
		Scan(&b.ID, &b.UserID, &b.ShowtimeID, &b.BookedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &b, nil
}

// Count returns the number of bookings.
func (r *BookingRepo) Count(ctx context.Context) (int64, error) {
	var n int64
	err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM bookings").Scan(&n)
	return n, err
}
