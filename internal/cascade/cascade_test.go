package cascade

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fixture() Graph {
	g := NewGraph()
	g.Showtimes[10] = 5
	g.Showtimes[11] = 5
	g.Showtimes[12] = 6
	g.Bookings[20] = BookingRef{UserID: 3, ShowtimeID: 10}
	g.Bookings[21] = BookingRef{UserID: 4, ShowtimeID: 11}
	g.Bookings[22] = BookingRef{UserID: 3, ShowtimeID: 12}
	g.Tickets[30] = TicketRef{UserID: 3, MovieID: 5, ShowtimeID: 10}
	g.Tickets[31] = TicketRef{UserID: 4, MovieID: 6, ShowtimeID: 12}
	return g
}

func TestMovieDeleteCascadesTwoLevels(t *testing.T) {
	p, err := MovieDelete(fixture(), 5)
	require.NoError(t, err)

	assert.Equal(t, []uint64{5}, p.Movies)
	assert.Equal(t, []uint64{10, 11}, p.Showtimes)
	assert.Equal(t, []uint64{20, 21}, p.Bookings)
	assert.Equal(t, []uint64{30}, p.Tickets)
	assert.Empty(t, p.Users)
	assert.Equal(t, 6, p.Rows())
}

func TestMovieDeleteWithoutShowtimes(t *testing.T) {
	p, err := MovieDelete(fixture(), 99)
	require.NoError(t, err)
	assert.Equal(t, []uint64{99}, p.Movies)
	assert.Empty(t, p.Showtimes)
	assert.Empty(t, p.Bookings)
}

func TestMovieDeleteRestrictedByForeignTicket(t *testing.T) {
	g := fixture()
	// ticket names movie 5 but sits on a showtime of movie 6
	g.Tickets[32] = TicketRef{UserID: 3, MovieID: 5, ShowtimeID: 12}

	_, err := MovieDelete(g, 5)
	assert.ErrorIs(t, err, ErrRestricted)
}

func TestShowtimeDelete(t *testing.T) {
	p := ShowtimeDelete(fixture(), 12)
	assert.Equal(t, []uint64{12}, p.Showtimes)
	assert.Equal(t, []uint64{22}, p.Bookings)
	assert.Equal(t, []uint64{31}, p.Tickets)
	assert.Empty(t, p.Movies)
}

func TestUserDeleteNeverCascades(t *testing.T) {
	g := fixture()

	_, err := UserDelete(g, 3)
	assert.ErrorIs(t, err, ErrRestricted, "user with bookings")

	g.Bookings = map[uint64]BookingRef{}
	_, err = UserDelete(g, 4)
	assert.ErrorIs(t, err, ErrRestricted, "user with a ticket")

	p, err := UserDelete(g, 7)
	require.NoError(t, err)
	assert.Equal(t, []uint64{7}, p.Users)
	assert.Empty(t, p.Bookings)
}
