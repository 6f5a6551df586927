package handler

import (
    "context"
    "net/http"
    "time"

    "github.com/labstack/echo/v4"

    "github.com/iliyamo/b-cinema/internal/service"
)

// ListUsers lists every account except system accounts.
func (h *Handler) ListUsers(c echo.Context) error {
    ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
    defer cancel()

    users, err := h.Identity.ListUsers(ctx, principal(c))
    if err != nil {
        return fail(c, err)
    }
    out := make([]userResp, 0, len(users))
    for _, u := range users {
        out = append(out, toUser(u))
    }
    return c.JSON(http.StatusOK, out)
}

// GetUser returns one manageable account.
func (h *Handler) GetUser(c echo.Context) error {
    id, err := parseID(c)
    if err != nil {
        return badRequest(c, err.Error())
    }
    ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
    defer cancel()

    u, err := h.Identity.GetUser(ctx, principal(c), id)
    if err != nil {
        return fail(c, err)
    }
    return c.JSON(http.StatusOK, toUser(*u))
}

func bindUser(c echo.Context) (service.UserInput, error) {
    var req userReq
    if err := c.Bind(&req); err != nil {
        return service.UserInput{}, err
    }
    return service.UserInput{Name: req.Name, Email: req.Email, Password: req.Password, Role: req.Role}, nil
}

// CreateUser adds an account with any role.
func (h *Handler) CreateUser(c echo.Context) error {
    in, err := bindUser(c)
    if err != nil {
        return badRequest(c, "invalid body")
    }
    ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
    defer cancel()

    if _, err := h.Identity.AddUser(ctx, principal(c), in); err != nil {
        return fail(c, err)
    }
    return seeOther(c, usersPage)
}

// EditUser updates an account.  An empty password keeps the current one.
func (h *Handler) EditUser(c echo.Context) error {
    id, err := parseID(c)
    if err != nil {
        return badRequest(c, err.Error())
    }
    in, err := bindUser(c)
    if err != nil {
        return badRequest(c, "invalid body")
    }
    ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
    defer cancel()

    if _, err := h.Identity.EditUser(ctx, principal(c), id, in); err != nil {
        return fail(c, err)
    }
    return seeOther(c, usersPage)
}

// DeleteUser removes an account no booking or ticket references.
func (h *Handler) DeleteUser(c echo.Context) error {
    id, err := parseID(c)
    if err != nil {
        return badRequest(c, err.Error())
    }
    ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
    defer cancel()

    if err := h.Identity.DeleteUser(ctx, principal(c), id); err != nil {
        return fail(c, err)
    }
    return seeOther(c, usersPage)
}
