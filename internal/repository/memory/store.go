// Package memory is an in-memory store holding every entity in id-indexed
// maps.  It implements the same contracts as the MySQL repositories and is
// used by tests and by deployments without a database.  Deletes go through
// package cascade exactly like the SQL store.
package memory

import (
	"sync"

	"github.com/iliyamo/b-cinema/internal/cascade"
	"github.com/iliyamo/b-cinema/internal/model"
)

// Store is the arena shared by the per-entity repositories.
type Store struct {
	mu sync.RWMutex

	users     map[uint64]model.User
	movies    map[uint64]model.Movie
	showtimes map[uint64]model.Showtime
	bookings  map[uint64]model.Booking
	tickets   map[uint64]model.Ticket

	nextID map[string]uint64
}

// New returns an empty store.  Ids start at 1 per entity.
func New() *Store {
	return &Store{
		users:     map[uint64]model.User{},
		movies:    map[uint64]model.Movie{},
		showtimes: map[uint64]model.Showtime{},
		bookings:  map[uint64]model.Booking{},
		tickets:   map[uint64]model.Ticket{},
		nextID:    map[string]uint64{},
	}
}

func (s *Store) allocate(table string) uint64 {
	s.nextID[table]++
	return s.nextID[table]
}

// graph snapshots the foreign keys.  Callers hold s.mu.
func (s *Store) graph() cascade.Graph {
	g := cascade.NewGraph()
	for id, st := range s.showtimes {
		g.Showtimes[id] = st.MovieID
	}
	for id, b := range s.bookings {
		g.Bookings[id] = cascade.BookingRef{UserID: b.UserID, ShowtimeID: b.ShowtimeID}
	}
	for id, t := range s.tickets {
		g.Tickets[id] = cascade.TicketRef{UserID: t.UserID, MovieID: t.MovieID, ShowtimeID: t.ShowtimeID}
	}
	return g
}

// apply removes the rows of p.  Callers hold s.mu for writing.
func (s *Store) apply(p cascade.Plan) {
	for _, id := range p.Tickets {
		delete(s.tickets, id)
	}
	for _, id := range p.Bookings {
		delete(s.bookings, id)
	}
	for _, id := range p.Showtimes {
		delete(s.showtimes, id)
	}
	for _, id := range p.Movies {
		delete(s.movies, id)
	}
	for _, id := range p.Users {
		delete(s.users, id)
	}
}

// Users returns the user repository view of the store.
func (s *Store) Users() *UserRepo { return &UserRepo{s: s} }

// Movies returns the movie repository view of the store.
func (s *Store) Movies() *MovieRepo { return &MovieRepo{s: s} }

// Showtimes returns the showtime repository view of the store.
func (s *Store) Showtimes() *ShowtimeRepo { return &ShowtimeRepo{s: s} }

// Bookings returns the booking repository view of the store.
func (s *Store) Bookings() *BookingRepo { return &BookingRepo{s: s} }

// Tickets returns the ticket repository view of the store.
func (s *Store) Tickets() *TicketRepo { return &TicketRepo{s: s} }
