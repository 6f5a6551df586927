package handler

import (
    "context"
    "net/http"
    "time"

    "github.com/labstack/echo/v4"

    "github.com/iliyamo/b-cinema/internal/service"
)

// ListShowtimes returns showtimes grouped per movie, ordered by title,
// date and time.
func (h *Handler) ListShowtimes(c echo.Context) error {
    ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
    defer cancel()

    groups, err := h.Catalog.ListShowtimes(ctx, principal(c))
    if err != nil {
        return fail(c, err)
    }
    out := make([]showtimeGroupResp, 0, len(groups))
    for _, g := range groups {
        gr := showtimeGroupResp{MovieID: g.MovieID, MovieTitle: g.MovieTitle, Showtimes: make([]showtimeResp, 0, len(g.Showtimes))}
        for _, s := range g.Showtimes {
            gr.Showtimes = append(gr.Showtimes, toShowtime(s))
        }
        out = append(out, gr)
    }
    return c.JSON(http.StatusOK, out)
}

// GetShowtime returns one showtime.
func (h *Handler) GetShowtime(c echo.Context) error {
    id, err := parseID(c)
    if err != nil {
        return badRequest(c, err.Error())
    }
    ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
    defer cancel()

    s, err := h.Catalog.GetShowtime(ctx, principal(c), id)
    if err != nil {
        return fail(c, err)
    }
    return c.JSON(http.StatusOK, toShowtime(*s))
}

func bindShowtime(c echo.Context) (service.ShowtimeInput, error) {
    var req showtimeReq
    if err := c.Bind(&req); err != nil {
        return service.ShowtimeInput{}, err
    }
    return service.ShowtimeInput{MovieID: req.MovieID, Date: req.Date, Time: req.Time}, nil
}

// CreateShowtime schedules a movie.
func (h *Handler) CreateShowtime(c echo.Context) error {
    in, err := bindShowtime(c)
    if err != nil {
        return badRequest(c, "invalid body")
    }
    ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
    defer cancel()

    if _, err := h.Catalog.CreateShowtime(ctx, principal(c), in); err != nil {
        return fail(c, err)
    }
    return seeOther(c, showtimesPage)
}

// EditShowtime changes a showtime's movie, date or time.
func (h *Handler) EditShowtime(c echo.Context) error {
    id, err := parseID(c)
    if err != nil {
        return badRequest(c, err.Error())
    }
    in, err := bindShowtime(c)
    if err != nil {
        return badRequest(c, "invalid body")
    }
    ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
    defer cancel()

    if _, err := h.Catalog.EditShowtime(ctx, principal(c), id, in); err != nil {
        return fail(c, err)
    }
    return seeOther(c, showtimesPage)
}

// DeleteShowtime removes a showtime with its bookings and tickets.
func (h *Handler) DeleteShowtime(c echo.Context) error {
    id, err := parseID(c)
    if err != nil {
        return badRequest(c, err.Error())
    }
    ctx, cancel := context.WithTimeout(c.Request().Context(), 10*time.Second)
    defer cancel()

    if _, err := h.Catalog.DeleteShowtime(ctx, principal(c), id); err != nil {
        return fail(c, err)
    }
    return seeOther(c, showtimesPage)
}
