// Package cascade computes which rows a delete removes.  The functions work
// on an id-indexed Graph of foreign keys so both the SQL store and the
// in-memory store apply the same rules:
//
//	movie    -> showtimes            (cascade)
//	showtime -> bookings, tickets    (cascade)
//	user     -> bookings, tickets    (no action: delete is refused)
//	movie    -> tickets              (no action: delete is refused)
package cascade

import (
	"errors"
	"sort"
)

// ErrRestricted is returned when a delete would leave a no-action
// reference dangling.
var ErrRestricted = errors.New("delete restricted by existing references")

// BookingRef holds the foreign keys of a booking.
type BookingRef struct {
	UserID     uint64
	ShowtimeID uint64
}

// TicketRef holds the foreign keys of a ticket.
type TicketRef struct {
	UserID     uint64
	MovieID    uint64
	ShowtimeID uint64
}

// Graph is the set of foreign keys relevant to deletes, keyed by the id of
// the referencing row.
type Graph struct {
	Showtimes map[uint64]uint64 // showtime id -> movie id
	Bookings  map[uint64]BookingRef
	Tickets   map[uint64]TicketRef
}

// NewGraph returns an empty graph ready for inserts.
func NewGraph() Graph {
	return Graph{
		Showtimes: map[uint64]uint64{},
		Bookings:  map[uint64]BookingRef{},
		Tickets:   map[uint64]TicketRef{},
	}
}

// Plan lists the ids removed by a delete.  Ids are sorted ascending.
type Plan struct {
	Movies    []uint64
	Showtimes []uint64
	Bookings  []uint64
	Tickets   []uint64
	Users     []uint64
}

// Rows returns the total number of rows the plan removes.
func (p Plan) Rows() int {
	return len(p.Movies) + len(p.Showtimes) + len(p.Bookings) + len(p.Tickets) + len(p.Users)
}

// ShowtimeDelete removes a showtime with its bookings and tickets.
func ShowtimeDelete(g Graph, showtimeID uint64) Plan {
	p := Plan{Showtimes: []uint64{showtimeID}}
	for id, b := range g.Bookings {
		if b.ShowtimeID == showtimeID {
			p.Bookings = append(p.Bookings, id)
		}
	}
	for id, t := range g.Tickets {
		if t.ShowtimeID == showtimeID {
			p.Tickets = append(p.Tickets, id)
		}
	}
	p.sort()
	return p
}

// MovieDelete removes a movie, its showtimes and everything those
// showtimes own.  Tickets naming the movie directly but attached to a
// showtime of another movie are not removed; their presence refuses the
// delete with ErrRestricted.
func MovieDelete(g Graph, movieID uint64) (Plan, error) {
	p := Plan{Movies: []uint64{movieID}}
	doomed := map[uint64]bool{}
	for id, mid := range g.Showtimes {
		if mid == movieID {
			doomed[id] = true
			p.Showtimes = append(p.Showtimes, id)
		}
	}
	for id, b := range g.Bookings {
		if doomed[b.ShowtimeID] {
			p.Bookings = append(p.Bookings, id)
		}
	}
	for id, t := range g.Tickets {
		if doomed[t.ShowtimeID] {
			p.Tickets = append(p.Tickets, id)
			continue
		}
		if t.MovieID == movieID {
			return Plan{}, ErrRestricted
		}
	}
	p.sort()
	return p, nil
}

// UserDelete removes a user that nothing references.  Bookings and tickets
// are never removed with their user.
func UserDelete(g Graph, userID uint64) (Plan, error) {
	for _, b := range g.Bookings {
		if b.UserID == userID {
			return Plan{}, ErrRestricted
		}
	}
	for _, t := range g.Tickets {
		if t.UserID == userID {
			return Plan{}, ErrRestricted
		}
	}
	return Plan{Users: []uint64{userID}}, nil
}

func (p *Plan) sort() {
	for _, ids := range [][]uint64{p.Movies, p.Showtimes, p.Bookings, p.Tickets, p.Users} {
		sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	}
}
