package handler

import (
    "context"
    "net/http"
    "time"

    "github.com/labstack/echo/v4"
)

// Dashboard reports how many users, bookings, movies and tickets exist.
// System accounts are not counted.
func (h *Handler) Dashboard(c echo.Context) error {
    ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
    defer cancel()

    st, err := h.Reservations.Dashboard(ctx, principal(c))
    if err != nil {
        return fail(c, err)
    }
    return c.JSON(http.StatusOK, echo.Map{
        "userCount":    st.Users,
        "bookingCount": st.Bookings,
        "movieCount":   st.Movies,
        "ticketCount":  st.Tickets,
    })
}

// GetBooking returns one booking.
func (h *Handler) GetBooking(c echo.Context) error {
    id, err := parseID(c)
    if err != nil {
        return badRequest(c, err.Error())
    }
    ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
    defer cancel()

    b, err := h.Reservations.GetBooking(ctx, principal(c), id)
    if err != nil {
        return fail(c, err)
    }
    return c.JSON(http.StatusOK, echo.Map{
        "id":         b.ID,
        "userId":     b.UserID,
        "showtimeId": b.ShowtimeID,
        "bookedAt":   b.BookedAt,
    })
}
