package memory

import (
	"context"
	"sort"

	"github.com/iliyamo/b-cinema/internal/model"
	"github.com/iliyamo/b-cinema/internal/repository"
)

// BookingRepo reads bookings.
type BookingRepo struct{ s *Store }

// Add stores a booking as the external reservation flow would.  The user
// and showtime must exist.
func (r *BookingRepo) Add(_ context.Context, b *model.Booking) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.users[b.UserID]; !ok {
		return repository.ErrNotFound
	}
	if _, ok := r.s.showtimes[b.ShowtimeID]; !ok {
		return repository.ErrNotFound
	}
	b.ID = r.s.allocate("bookings")
	r.s.bookings[b.ID] = *b
	return nil
}

func (r *BookingRepo) GetByID(_ context.Context, id uint64) (*model.Booking, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	b, ok := r.s.bookings[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &b, nil
}

func (r *BookingRepo) Count(_ context.Context) (int64, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	return int64(len(r.s.bookings)), nil
}

// TicketRepo stores tickets.
type TicketRepo struct{ s *Store }

// numberTaken reports whether another ticket than self uses number.
func (r *TicketRepo) numberTaken(number string, self uint64) bool {
	for id, t := range r.s.tickets {
		if id != self && t.TicketNumber == number {
			return true
		}
	}
	return false
}

// refsExist mirrors the foreign keys of the SQL schema.
func (r *TicketRepo) refsExist(t *model.Ticket) bool {
	_, u := r.s.users[t.UserID]
	_, m := r.s.movies[t.MovieID]
	_, st := r.s.showtimes[t.ShowtimeID]
	return u && m && st
}

func (r *TicketRepo) Create(_ context.Context, t *model.Ticket) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if !r.refsExist(t) {
		return repository.ErrNotFound
	}
	if r.numberTaken(t.TicketNumber, 0) {
		return repository.ErrTicketNumberTaken
	}
	t.ID = r.s.allocate("tickets")
	r.s.tickets[t.ID] = *t
	return nil
}

func (r *TicketRepo) GetByID(_ context.Context, id uint64) (*model.Ticket, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	t, ok := r.s.tickets[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &t, nil
}

func (r *TicketRepo) view(t model.Ticket) model.TicketView {
	u := r.s.users[t.UserID]
	st := r.s.showtimes[t.ShowtimeID]
	return model.TicketView{
		Ticket:       t,
		UserName:     u.Name,
		UserEmail:    u.Email,
		MovieTitle:   r.s.movies[t.MovieID].Title,
		ShowtimeDate: st.Date,
		ShowtimeTime: st.Time,
	}
}

func (r *TicketRepo) GetView(_ context.Context, id uint64) (*model.TicketView, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	t, ok := r.s.tickets[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	v := r.view(t)
	return &v, nil
}

func (r *TicketRepo) ListViews(_ context.Context) ([]model.TicketView, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	out := make([]model.TicketView, 0, len(r.s.tickets))
	for _, t := range r.s.tickets {
		out = append(out, r.view(t))
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].IssuedAt.Equal(out[j].IssuedAt) {
			return out[i].IssuedAt.After(out[j].IssuedAt)
		}
		return out[i].ID > out[j].ID
	})
	return out, nil
}

func (r *TicketRepo) Update(_ context.Context, t *model.Ticket) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	cur, ok := r.s.tickets[t.ID]
	if !ok {
		return repository.ErrNotFound
	}
	if !r.refsExist(t) {
		return repository.ErrNotFound
	}
	if r.numberTaken(t.TicketNumber, t.ID) {
		return repository.ErrTicketNumberTaken
	}
	cur.UserID, cur.MovieID, cur.ShowtimeID, cur.TicketNumber = t.UserID, t.MovieID, t.ShowtimeID, t.TicketNumber
	r.s.tickets[t.ID] = cur
	*t = cur
	return nil
}

func (r *TicketRepo) Delete(_ context.Context, id uint64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.tickets[id]; !ok {
		return repository.ErrNotFound
	}
	delete(r.s.tickets, id)
	return nil
}

func (r *TicketRepo) Count(_ context.Context) (int64, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	return int64(len(r.s.tickets)), nil
}
