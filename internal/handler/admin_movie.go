package handler

import (
    "context"
    "errors"
    "fmt"
    "net/http"
    "path/filepath"
    "time"

    "github.com/labstack/echo/v4"

    "github.com/iliyamo/b-cinema/internal/service"
)

// movieInput binds the movie form.  Price errors surface as field errors.
func movieInput(c echo.Context) (service.MovieInput, error) {
    var req movieReq
    if err := c.Bind(&req); err != nil {
        return service.MovieInput{}, err
    }
    cents, err := parseCents(req.Price)
    if err != nil {
        return service.MovieInput{}, err
    }
    return service.MovieInput{
        Title:       req.Title,
        Description: req.Description,
        DurationMin: req.Duration,
        PriceCents:  cents,
    }, nil
}

// posterUpload opens the optional "image" file.  The returned closer must
// be called once the service is done with the upload.
func posterUpload(c echo.Context) (*service.Upload, func(), error) {
    fh, err := c.FormFile("image")
    if errors.Is(err, http.ErrMissingFile) || errors.Is(err, http.ErrNotMultipart) {
        return nil, func() {}, nil
    }
    if err != nil {
        return nil, func() {}, fmt.Errorf("read image: %w", err)
    }
    if fh.Size == 0 {
        return nil, func() {}, nil
    }
    f, err := fh.Open()
    if err != nil {
        return nil, func() {}, fmt.Errorf("open image: %w", err)
    }
    return &service.Upload{Body: f, Ext: filepath.Ext(fh.Filename)}, func() { _ = f.Close() }, nil
}

// AdminListMovies lists every movie.
func (h *Handler) AdminListMovies(c echo.Context) error {
    return h.ListMovies(c)
}

// AdminGetMovie returns one movie.
func (h *Handler) AdminGetMovie(c echo.Context) error {
    return h.GetMovie(c)
}

// CreateMovie adds a movie from a JSON, urlencoded or multipart form.
func (h *Handler) CreateMovie(c echo.Context) error {
    in, err := movieInput(c)
    var ve *service.ValidationError
    if errors.As(err, &ve) {
        return fail(c, err)
    }
    if err != nil {
        return badRequest(c, "invalid body")
    }
    up, done, err := posterUpload(c)
    if err != nil {
        return badRequest(c, err.Error())
    }
    defer done()

    ctx, cancel := context.WithTimeout(c.Request().Context(), 30*time.Second)
    defer cancel()
    if _, err := h.Catalog.CreateMovie(ctx, principal(c), in, up); err != nil {
        return fail(c, err)
    }
    return seeOther(c, moviesPage)
}

// EditMovie overwrites a movie.  Its poster changes only when a new image
// is uploaded.
func (h *Handler) EditMovie(c echo.Context) error {
    id, err := parseID(c)
    if err != nil {
        return badRequest(c, err.Error())
    }
    in, err := movieInput(c)
    var ve *service.ValidationError
    if errors.As(err, &ve) {
        return fail(c, err)
    }
    if err != nil {
        return badRequest(c, "invalid body")
    }
    up, done, err := posterUpload(c)
    if err != nil {
        return badRequest(c, err.Error())
    }
    defer done()

    ctx, cancel := context.WithTimeout(c.Request().Context(), 30*time.Second)
    defer cancel()
    if _, err := h.Catalog.EditMovie(ctx, principal(c), id, in, up); err != nil {
        return fail(c, err)
    }
    return seeOther(c, moviesPage)
}

// DeleteMovie removes a movie together with its showtimes, their bookings
// and tickets.
func (h *Handler) DeleteMovie(c echo.Context) error {
    id, err := parseID(c)
    if err != nil {
        return badRequest(c, err.Error())
    }
    ctx, cancel := context.WithTimeout(c.Request().Context(), 10*time.Second)
    defer cancel()
    if _, err := h.Catalog.DeleteMovie(ctx, principal(c), id); err != nil {
        return fail(c, err)
    }
    return seeOther(c, moviesPage)
}
