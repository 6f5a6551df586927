package model

import "time"

// Booking records a customer's seat booking for a showtime.  The movie is
// reached through the showtime.  Bookings are removed together with their
// showtime but never together with their user.
type Booking struct {
    ID         uint64    // bookings.id
    UserID     uint64    // bookings.user_id
    ShowtimeID uint64    // bookings.showtime_id
    BookedAt   time.Time // bookings.booking_date
}
