//go:build integration

package repository

// Run with a disposable database:
//   TEST_DB_HOST=127.0.0.1 TEST_DB_USER=root TEST_DB_NAME=bcinema_test go test -tags integration ./internal/repository/

import (
	"context"
	"database/sql"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/b-cinema/internal/database"
	"github.com/iliyamo/b-cinema/internal/model"
)

func openTestDB(t *testing.T) *sql.DB {
	t.Helper()
	host := os.Getenv("TEST_DB_HOST")
	if host == "" {
		t.Skip("TEST_DB_HOST not set")
	}
	port := os.Getenv("TEST_DB_PORT")
	if port == "" {
		port = "3306"
	}
	db, err := database.Open(database.Options{
		User: os.Getenv("TEST_DB_USER"),
		Pass: os.Getenv("TEST_DB_PASS"),
		Host: host,
		Port: port,
		Name: os.Getenv("TEST_DB_NAME"),
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	ctx := context.Background()
	require.NoError(t, database.Migrate(ctx, db))
	for _, table := range []string{"tickets", "bookings", "showtimes", "movies", "users"} {
		_, err := db.ExecContext(ctx, "DELETE FROM "+table)
		require.NoError(t, err)
	}
	return db
}

type fixture struct {
	users     *UserRepo
	movies    *MovieRepo
	showtimes *ShowtimeRepo
	bookings  *BookingRepo
	tickets   *TicketRepo
	db        *sql.DB
}

func newFixture(t *testing.T) *fixture {
	db := openTestDB(t)
	return &fixture{
		users:     NewUserRepo(db),
		movies:    NewMovieRepo(db),
		showtimes: NewShowtimeRepo(db),
		bookings:  NewBookingRepo(db),
		tickets:   NewTicketRepo(db),
		db:        db,
	}
}

func (f *fixture) user(t *testing.T, email string) *model.User {
	u := &model.User{Name: email, Email: email, PasswordHash: "h", Role: model.RoleCustomer}
	require.NoError(t, f.users.Create(context.Background(), u))
	return u
}

func (f *fixture) movie(t *testing.T, title string) *model.Movie {
	m := &model.Movie{Title: title, DurationMin: 90, PriceCents: 1000}
	require.NoError(t, f.movies.Create(context.Background(), m))
	return m
}

func (f *fixture) showtime(t *testing.T, movieID uint64) *model.Showtime {
	s := &model.Showtime{MovieID: movieID, Date: time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC), Time: "19:00:00"}
	require.NoError(t, f.showtimes.Create(context.Background(), s))
	return s
}

func (f *fixture) booking(t *testing.T, userID, showtimeID uint64) uint64 {
	res, err := f.db.ExecContext(context.Background(),
		"INSERT INTO bookings (user_id, showtime_id) VALUES (?, ?)", userID, showtimeID)
	require.NoError(t, err)
	id, err := res.LastInsertId()
	require.NoError(t, err)
	return uint64(id)
}

func (f *fixture) ticket(t *testing.T, number string, userID, movieID, showtimeID uint64) *model.Ticket {
	tk := &model.Ticket{UserID: userID, MovieID: movieID, ShowtimeID: showtimeID, TicketNumber: number,
		IssuedAt: time.Now().UTC().Truncate(time.Second)}
	require.NoError(t, f.tickets.Create(context.Background(), tk))
	return tk
}

func TestMySQLMovieDeleteCascades(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	u := f.user(t, "a@x.com")
	m := f.movie(t, "Heat")
	s := f.showtime(t, m.ID)
	b := f.booking(t, u.ID, s.ID)
	tk := f.ticket(t, "TKT-AAAA0001", u.ID, m.ID, s.ID)

	plan, err := f.movies.Delete(ctx, m.ID)
	require.NoError(t, err)
	assert.Equal(t, []uint64{s.ID}, plan.Showtimes)
	assert.Equal(t, []uint64{b}, plan.Bookings)
	assert.Equal(t, []uint64{tk.ID}, plan.Tickets)

	_, err = f.showtimes.GetByID(ctx, s.ID)
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = f.bookings.GetByID(ctx, b)
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = f.tickets.GetByID(ctx, tk.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMySQLMovieDeleteRestrictedByForeignTicket(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	u := f.user(t, "a@x.com")
	m := f.movie(t, "Heat")
	other := f.movie(t, "Alien")
	s := f.showtime(t, other.ID)
	f.ticket(t, "TKT-AAAA0002", u.ID, m.ID, s.ID)

	_, err := f.movies.Delete(ctx, m.ID)
	assert.ErrorIs(t, err, ErrConflict)
	_, err = f.movies.GetByID(ctx, m.ID)
	assert.NoError(t, err)
}

func TestMySQLUserDeleteRestricted(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	u := f.user(t, "a@x.com")
	m := f.movie(t, "Heat")
	s := f.showtime(t, m.ID)
	f.booking(t, u.ID, s.ID)

	assert.ErrorIs(t, f.users.Delete(ctx, u.ID), ErrConflict)
	_, err := f.users.GetByID(ctx, u.ID)
	assert.NoError(t, err)
}

func TestMySQLTicketNumberTaken(t *testing.T) {
	f := newFixture(t)
	u := f.user(t, "a@x.com")
	m := f.movie(t, "Heat")
	s := f.showtime(t, m.ID)
	f.ticket(t, "VIP-1", u.ID, m.ID, s.ID)

	err := f.tickets.Create(context.Background(), &model.Ticket{UserID: u.ID, MovieID: m.ID, ShowtimeID: s.ID,
		TicketNumber: "VIP-1", IssuedAt: time.Now().UTC()})
	assert.ErrorIs(t, err, ErrTicketNumberTaken)
}
