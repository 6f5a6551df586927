package model

import "time"

// TicketPrefix starts every ticket number.
const TicketPrefix = "TKT-"

// Ticket is a record issued by an administrator, independent of any
// booking.  The user, movie and showtime references are stored separately
// and are not checked against each other; only the showtime reference
// cascades on delete.
//
// Fields:
//  ID           – primary key identifier.
//  UserID       – holder of the ticket.
//  MovieID      – movie on the ticket.
//  ShowtimeID   – showtime on the ticket.
//  TicketNumber – unique number of the form TKT-XXXXXXXX.
//  IssuedAt     – set once when the ticket is created.
type Ticket struct {
    ID           uint64    // tickets.id
    UserID       uint64    // tickets.user_id
    MovieID      uint64    // tickets.movie_id
    ShowtimeID   uint64    // tickets.showtime_id
    TicketNumber string    // tickets.ticket_number
    IssuedAt     time.Time // tickets.issued_at
}

// TicketView is a ticket joined with the names of what it references.
type TicketView struct {
    Ticket
    UserName     string
    UserEmail    string
    MovieTitle   string
    ShowtimeDate time.Time
    ShowtimeTime string
}

// ShowtimeView is a showtime joined with its movie title, used to fill
// ticket forms.
type ShowtimeView struct {
    Showtime
    MovieTitle string
}

// DashboardStats holds the administrator landing counts.  Users excludes
// system accounts.
type DashboardStats struct {
    Users    int64
    Bookings int64
    Movies   int64
    Tickets  int64
}
