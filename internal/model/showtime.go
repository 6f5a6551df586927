package model

import "time"

// DateLayout and TimeLayout are the canonical formats of a showtime's date
// and time of day.
const (
    DateLayout = "2006-01-02"
    TimeLayout = "15:04:05"
)

// Showtime is a scheduled screening of one movie.  It belongs to exactly
// one movie and owns the bookings made for it.
//
// Fields:
//  ID      – primary key identifier.
//  MovieID – movie being screened (required).
//  Date    – screening day, midnight UTC.
//  Time    – time of day formatted with TimeLayout.
type Showtime struct {
    ID      uint64    // showtimes.id
    MovieID uint64    // showtimes.movie_id
    Date    time.Time // showtimes.movie_date
    Time    string    // showtimes.movie_time
}

// MovieShowtimes groups the showtimes of a single movie for listings.
type MovieShowtimes struct {
    MovieID    uint64
    MovieTitle string
    Showtimes  []Showtime
}
