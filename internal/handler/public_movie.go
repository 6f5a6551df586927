package handler

import (
    "context"
    "net/http"
    "time"

    "github.com/labstack/echo/v4"
)

// ListMovies returns the catalog to any signed-in caller.
func (h *Handler) ListMovies(c echo.Context) error {
    ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
    defer cancel()

    movies, err := h.Catalog.ListMovies(ctx, principal(c))
    if err != nil {
        return fail(c, err)
    }
    out := make([]movieResp, 0, len(movies))
    for _, m := range movies {
        out = append(out, toMovie(m))
    }
    return c.JSON(http.StatusOK, out)
}

// GetMovie returns one movie to any signed-in caller.
func (h *Handler) GetMovie(c echo.Context) error {
    id, err := parseID(c)
    if err != nil {
        return badRequest(c, err.Error())
    }
    ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
    defer cancel()

    m, err := h.Catalog.GetMovie(ctx, principal(c), id)
    if err != nil {
        return fail(c, err)
    }
    return c.JSON(http.StatusOK, toMovie(*m))
}
