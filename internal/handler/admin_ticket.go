package handler

import (
    "context"
    "net/http"
    "time"

    "github.com/labstack/echo/v4"

    "github.com/iliyamo/b-cinema/internal/service"
)

// ListTickets lists every ticket, newest first.
func (h *Handler) ListTickets(c echo.Context) error {
    ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
    defer cancel()

    views, err := h.Reservations.ListTickets(ctx, principal(c))
    if err != nil {
        return fail(c, err)
    }
    out := make([]ticketResp, 0, len(views))
    for _, v := range views {
        out = append(out, toTicket(v))
    }
    return c.JSON(http.StatusOK, out)
}

// GetTicket returns a ticket with holder, movie and showtime details.
func (h *Handler) GetTicket(c echo.Context) error {
    id, err := parseID(c)
    if err != nil {
        return badRequest(c, err.Error())
    }
    ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
    defer cancel()

    v, err := h.Reservations.GetTicket(ctx, principal(c), id)
    if err != nil {
        return fail(c, err)
    }
    return c.JSON(http.StatusOK, toTicket(*v))
}

// TicketOptions returns the users, movies and showtimes a ticket form may
// offer.  System accounts are left out.
func (h *Handler) TicketOptions(c echo.Context) error {
    ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
    defer cancel()

    opts, err := h.Reservations.Options(ctx, principal(c))
    if err != nil {
        return fail(c, err)
    }
    users := make([]userResp, 0, len(opts.Users))
    for _, u := range opts.Users {
        users = append(users, toUser(u))
    }
    movies := make([]movieResp, 0, len(opts.Movies))
    for _, m := range opts.Movies {
        movies = append(movies, toMovie(m))
    }
    showtimes := make([]showtimeResp, 0, len(opts.Showtimes))
    for _, s := range opts.Showtimes {
        r := toShowtime(s.Showtime)
        r.MovieTitle = s.MovieTitle
        showtimes = append(showtimes, r)
    }
    return c.JSON(http.StatusOK, echo.Map{"users": users, "movies": movies, "showtimes": showtimes})
}

func bindTicket(c echo.Context) (service.TicketInput, error) {
    var req ticketReq
    if err := c.Bind(&req); err != nil {
        return service.TicketInput{}, err
    }
    return service.TicketInput{
        UserID:       req.UserID,
        MovieID:      req.MovieID,
        ShowtimeID:   req.ShowtimeID,
        TicketNumber: req.TicketNumber,
    }, nil
}

// CreateTicket issues a ticket.  A number is generated when none is given.
func (h *Handler) CreateTicket(c echo.Context) error {
    in, err := bindTicket(c)
    if err != nil {
        return badRequest(c, "invalid body")
    }
    ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
    defer cancel()

    if _, err := h.Reservations.CreateTicket(ctx, principal(c), in); err != nil {
        return fail(c, err)
    }
    return seeOther(c, ticketsPage)
}

// EditTicket changes a ticket.  The issue time never changes.
func (h *Handler) EditTicket(c echo.Context) error {
    id, err := parseID(c)
    if err != nil {
        return badRequest(c, err.Error())
    }
    in, err := bindTicket(c)
    if err != nil {
        return badRequest(c, "invalid body")
    }
    ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
    defer cancel()

    if _, err := h.Reservations.EditTicket(ctx, principal(c), id, in); err != nil {
        return fail(c, err)
    }
    return seeOther(c, ticketsPage)
}

// DeleteTicket removes a ticket.
func (h *Handler) DeleteTicket(c echo.Context) error {
    id, err := parseID(c)
    if err != nil {
        return badRequest(c, err.Error())
    }
    ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
    defer cancel()

    if err := h.Reservations.DeleteTicket(ctx, principal(c), id); err != nil {
        return fail(c, err)
    }
    return seeOther(c, ticketsPage)
}
