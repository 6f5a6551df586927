package service

import (
	"context"
	"io"

	"github.com/iliyamo/b-cinema/internal/cascade"
	"github.com/iliyamo/b-cinema/internal/model"
	"github.com/iliyamo/b-cinema/internal/queue"
)

// UserStore persists accounts.
type UserStore interface {
	Create(ctx context.Context, u *model.User) error
	GetByID(ctx context.Context, id uint64) (*model.User, error)
	GetSystem(ctx context.Context) (*model.User, error)
	EmailExists(ctx context.Context, email string) (bool, error)
	FindByCredentials(ctx context.Context, email, passwordHash string) (*model.User, error)
	ListManageable(ctx context.Context) ([]model.User, error)
	CountManageable(ctx context.Context) (int64, error)
	Update(ctx context.Context, u *model.User) error
	Delete(ctx context.Context, id uint64) error
}

// MovieStore persists movies.  Delete returns the rows it removed.
type MovieStore interface {
	Create(ctx context.Context, m *model.Movie) error
	GetByID(ctx context.Context, id uint64) (*model.Movie, error)
	List(ctx context.Context) ([]model.Movie, error)
	Count(ctx context.Context) (int64, error)
	Update(ctx context.Context, m *model.Movie) error
	Delete(ctx context.Context, id uint64) (cascade.Plan, error)
}

// ShowtimeStore persists showtimes.
type ShowtimeStore interface {
	Create(ctx context.Context, s *model.Showtime) error
	GetByID(ctx context.Context, id uint64) (*model.Showtime, error)
	ListViews(ctx context.Context) ([]model.ShowtimeView, error)
	Update(ctx context.Context, s *model.Showtime) error
	Delete(ctx context.Context, id uint64) (cascade.Plan, error)
}

// BookingStore reads bookings.
type BookingStore interface {
	GetByID(ctx context.Context, id uint64) (*model.Booking, error)
	Count(ctx context.Context) (int64, error)
}

// TicketStore persists tickets.
type TicketStore interface {
	Create(ctx context.Context, t *model.Ticket) error
	GetByID(ctx context.Context, id uint64) (*model.Ticket, error)
	GetView(ctx context.Context, id uint64) (*model.TicketView, error)
	ListViews(ctx context.Context) ([]model.TicketView, error)
	Update(ctx context.Context, t *model.Ticket) error
	Delete(ctx context.Context, id uint64) error
	Count(ctx context.Context) (int64, error)
}

// Hasher turns a password into its stored digest.
type Hasher interface {
	Hash(plain string) string
}

// AssetStore keeps uploaded posters and returns their public path.
type AssetStore interface {
	Save(ctx context.Context, r io.Reader, ext string) (string, error)
	Remove(ctx context.Context, path string) error
}

// Invalidator drops cached read responses after catalog changes.
type Invalidator interface {
	Invalidate(ctx context.Context) error
}

// EventPublisher emits ticket lifecycle events.
type EventPublisher interface {
	Publish(ctx context.Context, ev queue.TicketEvent) error
}
