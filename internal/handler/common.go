package handler // handler defines http handlers

import (
    "errors"
    "net/http"
    "strconv"

    "github.com/labstack/echo/v4"

    "github.com/iliyamo/b-cinema/internal/auth"
    "github.com/iliyamo/b-cinema/internal/logger"
    "github.com/iliyamo/b-cinema/internal/service"
)

// Redirect targets.
const (
    loginPage     = "/account/login"
    usersPage     = "/admin/users"
    moviesPage    = "/admin/movies"
    showtimesPage = "/admin/showtimes"
    ticketsPage   = "/admin/tickets"
)

// Handler bundles the services behind the HTTP surface.
type Handler struct {
    Identity     *service.Identity
    Catalog      *service.Catalog
    Reservations *service.Reservations
    Cookie       CookieConfig
}

// CookieConfig controls the session cookie.
type CookieConfig struct {
    Name   string
    Secure bool
}

// New constructs a Handler and panics if any service is nil.
func New(id *service.Identity, cat *service.Catalog, res *service.Reservations, ck CookieConfig) *Handler {
    if id == nil || cat == nil || res == nil {
        panic("nil service passed to handler.New")
    }
    if ck.Name == "" {
        ck.Name = "bcinema_session"
    }
    return &Handler{Identity: id, Catalog: cat, Reservations: res, Cookie: ck}
}

// principal returns the caller loaded by the session middleware.
func principal(c echo.Context) auth.Principal {
    return auth.FromContext(c.Request().Context())
}

// parseID reads the :id path parameter.
func parseID(c echo.Context) (uint64, error) {
    id, err := strconv.ParseUint(c.Param("id"), 10, 64)
    if err != nil || id == 0 {
        return 0, errors.New("invalid id")
    }
    return id, nil
}

// seeOther answers a successful mutation (post/redirect/get).
func seeOther(c echo.Context, path string) error {
    return c.Redirect(http.StatusSeeOther, path)
}

func badRequest(c echo.Context, msg string) error {
    return c.JSON(http.StatusBadRequest, echo.Map{"error": msg})
}

// fail maps a service error to its HTTP response.
func fail(c echo.Context, err error) error {
    var ve *service.ValidationError
    switch {
    case errors.As(err, &ve):
        return c.JSON(http.StatusUnprocessableEntity, echo.Map{"error": "validation failed", "fields": ve.Fields})
    case errors.Is(err, service.ErrUnauthorized):
        return c.Redirect(http.StatusSeeOther, loginPage)
    case errors.Is(err, service.ErrProtectedAccount):
        return c.Redirect(http.StatusSeeOther, usersPage)
    case errors.Is(err, service.ErrDuplicateEmail):
        return c.JSON(http.StatusConflict, echo.Map{"error": "email already exists"})
    case errors.Is(err, service.ErrInvalidCredentials):
        return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid credentials"})
    case errors.Is(err, service.ErrNotFound):
        return c.JSON(http.StatusNotFound, echo.Map{"error": "not found"})
    case errors.Is(err, service.ErrConflict):
        return c.JSON(http.StatusConflict, echo.Map{"error": "still referenced by other records"})
    }
    logger.WithContext(c.Request().Context()).Error("request failed",
        "method", c.Request().Method, "path", c.Path(), "error", err)
    return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal error"})
}
