package service

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/b-cinema/internal/auth"
	"github.com/iliyamo/b-cinema/internal/model"
)

func TestMovieAccess(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	e.addMovies(t, 2)
	customer := auth.Principal{UserID: 2, Role: model.RoleCustomer}

	movies, err := e.catalog.ListMovies(ctx, customer)
	require.NoError(t, err)
	assert.Len(t, movies, 2)
	_, err = e.catalog.GetMovie(ctx, customer, 2)
	assert.NoError(t, err)

	_, err = e.catalog.ListMovies(ctx, auth.Principal{})
	assert.ErrorIs(t, err, ErrUnauthorized)
	_, err = e.catalog.CreateMovie(ctx, customer, MovieInput{Title: "X"}, nil)
	assert.ErrorIs(t, err, ErrUnauthorized)
	_, err = e.catalog.DeleteMovie(ctx, customer, 1)
	assert.ErrorIs(t, err, ErrUnauthorized)
	_, err = e.catalog.GetMovie(ctx, customer, 99)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMoviePoster(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	m, err := e.catalog.CreateMovie(ctx, e.admin, MovieInput{Title: "Dune", PriceCents: 1250, DurationMin: 155},
		&Upload{Body: strings.NewReader("img"), Ext: ".png"})
	require.NoError(t, err)
	require.NotNil(t, m.ImagePath)
	assert.Equal(t, "/movie-posters/poster-1.png", *m.ImagePath)

	// empty upload leaves the poster alone
	m, err = e.catalog.EditMovie(ctx, e.admin, m.ID, MovieInput{Title: "Dune 2", PriceCents: 1300},
		&Upload{Body: strings.NewReader(""), Ext: ".png"})
	require.NoError(t, err)
	require.NotNil(t, m.ImagePath)
	assert.Equal(t, "/movie-posters/poster-1.png", *m.ImagePath)
	assert.Equal(t, "Dune 2", m.Title)

	m, err = e.catalog.EditMovie(ctx, e.admin, m.ID, MovieInput{Title: "Dune 2"}, &Upload{Body: strings.NewReader("new"), Ext: ".jpg"})
	require.NoError(t, err)
	assert.Equal(t, "/movie-posters/poster-2.jpg", *m.ImagePath)

	m, err = e.catalog.CreateMovie(ctx, e.admin, MovieInput{Title: "No poster"}, nil)
	require.NoError(t, err)
	assert.Nil(t, m.ImagePath)
}

func TestMoviePosterFailurePersistsNothing(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	e.assets.fail = true

	_, err := e.catalog.CreateMovie(ctx, e.admin, MovieInput{Title: "Dune"}, &Upload{Body: strings.NewReader("img"), Ext: ".png"})
	assert.Contains(t, fields(t, err), "image")
	n, err := e.store.Movies().Count(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)
}

// brokenMovies fails every write after the poster has been stored.
type brokenMovies struct {
	MovieStore
}

func (brokenMovies) Create(context.Context, *model.Movie) error { return errors.New("db down") }
func (brokenMovies) Update(context.Context, *model.Movie) error { return errors.New("db down") }

func TestMovieWriteFailureRemovesPoster(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	e.addMovies(t, 1)
	e.catalog.Movies = brokenMovies{MovieStore: e.store.Movies()}

	_, err := e.catalog.CreateMovie(ctx, e.admin, MovieInput{Title: "Dune"}, &Upload{Body: strings.NewReader("img"), Ext: ".png"})
	require.Error(t, err)
	_, err = e.catalog.EditMovie(ctx, e.admin, 1, MovieInput{Title: "Dune 2"}, &Upload{Body: strings.NewReader("img"), Ext: ".png"})
	require.Error(t, err)

	require.Len(t, e.assets.saved, 2)
	assert.Equal(t, e.assets.saved, e.assets.removed)

	m, err := e.store.Movies().GetByID(ctx, 1)
	require.NoError(t, err)
	assert.Nil(t, m.ImagePath)
}

func TestMovieValidation(t *testing.T) {
	e := newEnv(t)
	_, err := e.catalog.CreateMovie(context.Background(), e.admin, MovieInput{Title: "  ", DurationMin: -1, PriceCents: -5}, nil)
	f := fields(t, err)
	assert.Contains(t, f, "title")
	assert.Contains(t, f, "duration")
	assert.Contains(t, f, "price")
}

func TestCatalogChangesInvalidateCache(t *testing.T) {
	e := newEnv(t)
	e.addMovies(t, 1)
	assert.Equal(t, 1, e.cache.n)
	e.addShowtimes(t, 1, func(int) uint64 { return 1 })
	_, err := e.catalog.DeleteMovie(context.Background(), e.admin, 1)
	require.NoError(t, err)
	assert.Equal(t, 3, e.cache.n)
}

func TestMovieDeleteCascade(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	e.addUsers(t, 3)
	e.addMovies(t, 5)
	// showtime 10 belongs to movie 5, the others to movie 1
	e.addShowtimes(t, 10, func(i int) uint64 {
		if i == 10 {
			return 5
		}
		return 1
	})
	for i := 1; i <= 20; i++ {
		st := uint64(1)
		if i == 20 {
			st = 10
		}
		require.NoError(t, e.store.Bookings().Add(ctx, &model.Booking{UserID: 2, ShowtimeID: st, BookedAt: e.clock}))
	}
	tk, err := e.res.CreateTicket(ctx, e.admin, TicketInput{UserID: 3, MovieID: 5, ShowtimeID: 10})
	require.NoError(t, err)

	plan, err := e.catalog.DeleteMovie(ctx, e.admin, 5)
	require.NoError(t, err)
	assert.Equal(t, []uint64{5}, plan.Movies)
	assert.Equal(t, []uint64{10}, plan.Showtimes)
	assert.Equal(t, []uint64{20}, plan.Bookings)
	assert.Equal(t, []uint64{tk.ID}, plan.Tickets)

	_, err = e.catalog.GetShowtime(ctx, e.admin, 10)
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = e.res.GetBooking(ctx, e.admin, 20)
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = e.res.GetTicket(ctx, e.admin, tk.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	// unrelated rows survive
	_, err = e.res.GetBooking(ctx, e.admin, 19)
	assert.NoError(t, err)
	_, err = e.catalog.GetShowtime(ctx, e.admin, 9)
	assert.NoError(t, err)
}

func TestMovieDeleteRestrictedByForeignTicket(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	e.addUsers(t, 2)
	e.addMovies(t, 2)
	e.addShowtimes(t, 2, func(i int) uint64 { return uint64(i) })

	// names movie 1 but sits on a showtime of movie 2
	_, err := e.res.CreateTicket(ctx, e.admin, TicketInput{UserID: 2, MovieID: 1, ShowtimeID: 2})
	require.NoError(t, err)

	_, err = e.catalog.DeleteMovie(ctx, e.admin, 1)
	assert.ErrorIs(t, err, ErrConflict)
	_, err = e.catalog.GetMovie(ctx, e.admin, 1)
	assert.NoError(t, err)
	_, err = e.catalog.GetShowtime(ctx, e.admin, 1)
	assert.NoError(t, err, "nothing is removed when the delete is refused")
}

func TestShowtimeDeleteCascade(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	e.addUsers(t, 2)
	e.addMovies(t, 1)
	e.addShowtimes(t, 2, func(int) uint64 { return 1 })
	require.NoError(t, e.store.Bookings().Add(ctx, &model.Booking{UserID: 2, ShowtimeID: 1}))
	require.NoError(t, e.store.Bookings().Add(ctx, &model.Booking{UserID: 2, ShowtimeID: 2}))
	_, err := e.res.CreateTicket(ctx, e.admin, TicketInput{UserID: 2, MovieID: 1, ShowtimeID: 1})
	require.NoError(t, err)

	plan, err := e.catalog.DeleteShowtime(ctx, e.admin, 1)
	require.NoError(t, err)
	assert.Equal(t, []uint64{1}, plan.Bookings)
	assert.Len(t, plan.Tickets, 1)

	stats, err := e.res.Dashboard(ctx, e.admin)
	require.NoError(t, err)
	assert.Equal(t, model.DashboardStats{Users: 1, Bookings: 1, Movies: 1, Tickets: 0}, stats)

	_, err = e.catalog.DeleteShowtime(ctx, e.admin, 1)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestShowtimeValidation(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	e.addMovies(t, 1)

	_, err := e.catalog.CreateShowtime(ctx, e.admin, ShowtimeInput{MovieID: 7, Date: "01/02/2026", Time: "25:00"})
	f := fields(t, err)
	assert.Contains(t, f, "movieId")
	assert.Contains(t, f, "date")
	assert.Contains(t, f, "time")

	_, err = e.catalog.CreateShowtime(ctx, e.admin, ShowtimeInput{})
	f = fields(t, err)
	assert.Len(t, f, 3)

	st, err := e.catalog.CreateShowtime(ctx, e.admin, ShowtimeInput{MovieID: 1, Date: "2026-06-01", Time: "18:30"})
	require.NoError(t, err)
	assert.Equal(t, "18:30:00", st.Time)
	assert.Equal(t, time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC), st.Date)

	_, err = e.catalog.EditShowtime(ctx, e.admin, 42, ShowtimeInput{MovieID: 1, Date: "2026-06-01", Time: "18:30"})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestGroupShowtimes(t *testing.T) {
	d1 := time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)
	d2 := d1.AddDate(0, 0, 1)
	view := func(id, movie uint64, title string, d time.Time, clock string) model.ShowtimeView {
		return model.ShowtimeView{Showtime: model.Showtime{ID: id, MovieID: movie, Date: d, Time: clock}, MovieTitle: title}
	}
	groups := GroupShowtimes([]model.ShowtimeView{
		view(1, 2, "Zodiac", d1, "20:00:00"),
		view(2, 1, "Alien", d2, "10:00:00"),
		view(3, 1, "Alien", d1, "22:00:00"),
		view(4, 1, "Alien", d1, "09:00:00"),
		view(5, 3, "Alien", d1, "08:00:00"),
	})
	require.Len(t, groups, 3)
	assert.Equal(t, uint64(1), groups[0].MovieID)
	var ids []uint64
	for _, s := range groups[0].Showtimes {
		ids = append(ids, s.ID)
	}
	assert.Equal(t, []uint64{4, 3, 2}, ids)
	assert.Equal(t, uint64(3), groups[1].MovieID, "same title, different movie")
	assert.Equal(t, "Zodiac", groups[2].MovieTitle)

	assert.Empty(t, GroupShowtimes(nil))
}
