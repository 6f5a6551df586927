package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/iliyamo/b-cinema/internal/auth"
	"github.com/iliyamo/b-cinema/internal/model"
	"github.com/iliyamo/b-cinema/internal/queue"
	"github.com/iliyamo/b-cinema/internal/repository/memory"
	"github.com/iliyamo/b-cinema/internal/utils"
)

const testSecret = "test-secret"

// env wires the three services over one in-memory store.
type env struct {
	store    *memory.Store
	sessions *countingSessions
	assets   *fakeAssets
	events   *fakeEvents
	cache    *fakeCache
	clock    time.Time

	identity *Identity
	catalog  *Catalog
	res      *Reservations

	system *model.User
	admin  auth.Principal
}

func newEnv(t *testing.T) *env {
	t.Helper()
	h, err := utils.NewPasswordHasher("sha256")
	require.NoError(t, err)

	e := &env{
		store:    memory.New(),
		sessions: &countingSessions{SessionStore: auth.NewMemorySessionStore(30 * time.Minute)},
		assets:   &fakeAssets{},
		events:   &fakeEvents{},
		cache:    &fakeCache{},
		clock:    time.Date(2026, 5, 1, 9, 30, 0, 0, time.UTC),
	}
	e.identity = &Identity{
		Users:    e.store.Users(),
		Sessions: e.sessions,
		Hasher:   h,
		Secret:   testSecret,
		TokenTTL: 12 * time.Hour,
	}
	e.catalog = &Catalog{
		Movies:    e.store.Movies(),
		Showtimes: e.store.Showtimes(),
		Assets:    e.assets,
		Cache:     e.cache,
	}
	e.res = &Reservations{
		Users:     e.store.Users(),
		Movies:    e.store.Movies(),
		Showtimes: e.store.Showtimes(),
		Bookings:  e.store.Bookings(),
		Tickets:   e.store.Tickets(),
		Events:    e.events,
		Now:       func() time.Time { return e.clock },
	}

	e.system, err = e.identity.EnsureSystemAccount(context.Background(), "Root", "root@cinema.local", "root-pass")
	require.NoError(t, err)
	require.Equal(t, uint64(1), e.system.ID)
	e.admin = auth.Principal{SessionID: "s", UserID: e.system.ID, UserName: "Root", Role: model.RoleAdmin}
	return e
}

// addUsers creates customers until the highest user id is n.
func (e *env) addUsers(t *testing.T, n int) {
	t.Helper()
	ctx := context.Background()
	for {
		users, err := e.store.Users().ListManageable(ctx)
		require.NoError(t, err)
		if len(users)+1 >= n {
			return
		}
		i := len(users) + 2
		_, err = e.identity.AddUser(ctx, e.admin, UserInput{
			Name: fmt.Sprintf("User %d", i), Email: fmt.Sprintf("u%d@x.com", i), Password: "pw", Role: model.RoleCustomer,
		})
		require.NoError(t, err)
	}
}

// addMovies creates movies "Movie 1".."Movie n".
func (e *env) addMovies(t *testing.T, n int) {
	t.Helper()
	for i := 1; i <= n; i++ {
		m, err := e.catalog.CreateMovie(context.Background(), e.admin, MovieInput{
			Title: fmt.Sprintf("Movie %d", i), DurationMin: 90, PriceCents: 1000,
		}, nil)
		require.NoError(t, err)
		require.Equal(t, uint64(i), m.ID)
	}
}

// addShowtimes creates showtimes 1..n; showtime i belongs to movieOf(i).
func (e *env) addShowtimes(t *testing.T, n int, movieOf func(i int) uint64) {
	t.Helper()
	for i := 1; i <= n; i++ {
		st, err := e.catalog.CreateShowtime(context.Background(), e.admin, ShowtimeInput{
			MovieID: movieOf(i), Date: "2026-06-01", Time: fmt.Sprintf("%02d:00", 10+i%12),
		})
		require.NoError(t, err)
		require.Equal(t, uint64(i), st.ID)
	}
}

type countingSessions struct {
	auth.SessionStore
	created int
}

func (c *countingSessions) Create(ctx context.Context, s auth.Session) (string, error) {
	c.created++
	return c.SessionStore.Create(ctx, s)
}

type fakeAssets struct {
	fail    bool
	saved   []string
	removed []string
}

func (f *fakeAssets) Remove(_ context.Context, p string) error {
	f.removed = append(f.removed, p)
	return nil
}

func (f *fakeAssets) Save(_ context.Context, r io.Reader, ext string) (string, error) {
	if f.fail {
		return "", errors.New("disk full")
	}
	var buf bytes.Buffer
	if _, err := io.Copy(&buf, r); err != nil {
		return "", err
	}
	if buf.Len() == 0 {
		return "", nil
	}
	p := fmt.Sprintf("/movie-posters/poster-%d%s", len(f.saved)+1, ext)
	f.saved = append(f.saved, p)
	return p, nil
}

type fakeEvents struct {
	fail bool
	got  []queue.TicketEvent
}

func (f *fakeEvents) Publish(_ context.Context, ev queue.TicketEvent) error {
	if f.fail {
		return errors.New("broker down")
	}
	f.got = append(f.got, ev)
	return nil
}

type fakeCache struct{ n int }

func (f *fakeCache) Invalidate(context.Context) error {
	f.n++
	return nil
}

func fields(t *testing.T, err error) map[string]string {
	t.Helper()
	var ve *ValidationError
	require.ErrorAs(t, err, &ve)
	return ve.Fields
}
