package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/iliyamo/b-cinema/internal/auth"
	"github.com/iliyamo/b-cinema/internal/logger"
	"github.com/iliyamo/b-cinema/internal/metrics"
	"github.com/iliyamo/b-cinema/internal/model"
	"github.com/iliyamo/b-cinema/internal/queue"
	"github.com/iliyamo/b-cinema/internal/repository"
	"github.com/iliyamo/b-cinema/internal/utils"
)

// numberAttempts bounds retries when a generated ticket number collides.
const numberAttempts = 5

// Reservations issues and manages tickets and reports dashboard counts.
type Reservations struct {
	Users     UserStore
	Movies    MovieStore
	Showtimes ShowtimeStore
	Bookings  BookingStore
	Tickets   TicketStore
	// Events is optional.
	Events EventPublisher

	Now       func() time.Time
	NewNumber func() string
}

// TicketInput is the ticket create/edit form.  An empty number is
// generated on create and kept on edit.
type TicketInput struct {
	UserID       uint64 `json:"userId" validate:"required"`
	MovieID      uint64 `json:"movieId" validate:"required"`
	ShowtimeID   uint64 `json:"showtimeId" validate:"required"`
	TicketNumber string `json:"ticketNumber" validate:"max=32"`
}

// TicketOptions feeds the ticket form's selectors.
type TicketOptions struct {
	Users     []model.User
	Movies    []model.Movie
	Showtimes []model.ShowtimeView
}

func (s *Reservations) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

func (s *Reservations) number() string {
	if s.NewNumber != nil {
		return s.NewNumber()
	}
	return utils.NewTicketNumber()
}

// ListTickets returns every ticket, newest first.
func (s *Reservations) ListTickets(ctx context.Context, p auth.Principal) ([]model.TicketView, error) {
	if err := auth.RequireAdmin(p); err != nil {
		return nil, err
	}
	return s.Tickets.ListViews(ctx)
}

// GetTicket returns a ticket with its holder, movie and showtime.
func (s *Reservations) GetTicket(ctx context.Context, p auth.Principal, id uint64) (*model.TicketView, error) {
	if err := auth.RequireAdmin(p); err != nil {
		return nil, err
	}
	return s.Tickets.GetView(ctx, id)
}

// GetBooking returns a booking.
func (s *Reservations) GetBooking(ctx context.Context, p auth.Principal, id uint64) (*model.Booking, error) {
	if err := auth.RequireAdmin(p); err != nil {
		return nil, err
	}
	return s.Bookings.GetByID(ctx, id)
}

// Options lists the users, movies and showtimes a ticket may reference.
func (s *Reservations) Options(ctx context.Context, p auth.Principal) (*TicketOptions, error) {
	if err := auth.RequireAdmin(p); err != nil {
		return nil, err
	}
	users, err := s.Users.ListManageable(ctx)
	if err != nil {
		return nil, err
	}
	movies, err := s.Movies.List(ctx)
	if err != nil {
		return nil, err
	}
	showtimes, err := s.Showtimes.ListViews(ctx)
	if err != nil {
		return nil, err
	}
	return &TicketOptions{Users: users, Movies: movies, Showtimes: showtimes}, nil
}

// checkRefs validates in and that each referenced row exists.  The three
// references are not checked against each other.
func (s *Reservations) checkRefs(ctx context.Context, in *TicketInput) error {
	in.TicketNumber = utils.NormalizeTicketNumber(in.TicketNumber)
	ve := check(*in)
	if in.UserID != 0 {
		u, err := s.Users.GetByID(ctx, in.UserID)
		switch {
		case errors.Is(err, ErrNotFound):
			ve.add("userId", "user does not exist")
		case err != nil:
			return err
		case u.IsSystem:
			ve.add("userId", "system account cannot hold tickets")
		}
	}
	if in.MovieID != 0 {
		if _, err := s.Movies.GetByID(ctx, in.MovieID); errors.Is(err, ErrNotFound) {
			ve.add("movieId", "movie does not exist")
		} else if err != nil {
			return err
		}
	}
	if in.ShowtimeID != 0 {
		if _, err := s.Showtimes.GetByID(ctx, in.ShowtimeID); errors.Is(err, ErrNotFound) {
			ve.add("showtimeId", "showtime does not exist")
		} else if err != nil {
			return err
		}
	}
	return ve.orNil()
}

func errNumberTaken() error {
	return FieldError("ticketNumber", "ticket number already exists")
}

// CreateTicket issues a ticket stamped with the current time.
func (s *Reservations) CreateTicket(ctx context.Context, p auth.Principal, in TicketInput) (*model.Ticket, error) {
	if err := auth.RequireAdmin(p); err != nil {
		return nil, err
	}
	if err := s.checkRefs(ctx, &in); err != nil {
		return nil, err
	}
	t := &model.Ticket{
		UserID:     in.UserID,
		MovieID:    in.MovieID,
		ShowtimeID: in.ShowtimeID,
		IssuedAt:   s.now().UTC().Truncate(time.Second),
	}

	if in.TicketNumber != "" {
		t.TicketNumber = in.TicketNumber
		if err := s.Tickets.Create(ctx, t); err != nil {
			if errors.Is(err, repository.ErrTicketNumberTaken) {
				return nil, errNumberTaken()
			}
			return nil, fmt.Errorf("create ticket: %w", err)
		}
	} else {
		var err error
		for i := 0; i < numberAttempts; i++ {
			t.TicketNumber = s.number()
			if err = s.Tickets.Create(ctx, t); !errors.Is(err, repository.ErrTicketNumberTaken) {
				break
			}
		}
		if err != nil {
			return nil, fmt.Errorf("create ticket: %w", err)
		}
	}

	metrics.TicketsIssued.Inc()
	s.publish(ctx, p, queue.TicketIssued, t)
	return t, nil
}

// EditTicket changes a ticket's references and number.  IssuedAt never
// changes.
func (s *Reservations) EditTicket(ctx context.Context, p auth.Principal, id uint64, in TicketInput) (*model.Ticket, error) {
	if err := auth.RequireAdmin(p); err != nil {
		return nil, err
	}
	cur, err := s.Tickets.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.checkRefs(ctx, &in); err != nil {
		return nil, err
	}
	t := &model.Ticket{
		ID:           id,
		UserID:       in.UserID,
		MovieID:      in.MovieID,
		ShowtimeID:   in.ShowtimeID,
		TicketNumber: cur.TicketNumber,
	}
	if in.TicketNumber != "" {
		t.TicketNumber = in.TicketNumber
	}
	if err := s.Tickets.Update(ctx, t); err != nil {
		if errors.Is(err, repository.ErrTicketNumberTaken) {
			return nil, errNumberTaken()
		}
		return nil, fmt.Errorf("update ticket: %w", err)
	}
	saved, err := s.Tickets.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	s.publish(ctx, p, queue.TicketUpdated, saved)
	return saved, nil
}

// DeleteTicket removes a ticket.
func (s *Reservations) DeleteTicket(ctx context.Context, p auth.Principal, id uint64) error {
	if err := auth.RequireAdmin(p); err != nil {
		return err
	}
	t, err := s.Tickets.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if err := s.Tickets.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete ticket %d: %w", id, err)
	}
	metrics.CascadeDeleted.WithLabelValues("tickets").Inc()
	s.publish(ctx, p, queue.TicketDeleted, t)
	return nil
}

// Dashboard counts manageable users, bookings, movies and tickets.
func (s *Reservations) Dashboard(ctx context.Context, p auth.Principal) (model.DashboardStats, error) {
	var st model.DashboardStats
	if err := auth.RequireAdmin(p); err != nil {
		return st, err
	}
	var err error
	if st.Users, err = s.Users.CountManageable(ctx); err != nil {
		return st, err
	}
	if st.Bookings, err = s.Bookings.Count(ctx); err != nil {
		return st, err
	}
	if st.Movies, err = s.Movies.Count(ctx); err != nil {
		return st, err
	}
	if st.Tickets, err = s.Tickets.Count(ctx); err != nil {
		return st, err
	}
	return st, nil
}

// publish emits a ticket event.  Failures are logged only.
func (s *Reservations) publish(ctx context.Context, p auth.Principal, kind string, t *model.Ticket) {
	if s.Events == nil {
		return
	}
	ev := queue.TicketEvent{
		Kind:         kind,
		TicketID:     t.ID,
		TicketNumber: t.TicketNumber,
		UserID:       t.UserID,
		MovieID:      t.MovieID,
		ShowtimeID:   t.ShowtimeID,
		ActorID:      p.UserID,
	}
	ev.Stamp(s.now())
	if err := s.Events.Publish(ctx, ev); err != nil {
		logger.WithContext(ctx).Warn("ticket event publish failed", "kind", kind, "ticket_id", t.ID, "error", err)
	}
}
