package handler

import (
    "context"
    "net/http"
    "time"

    "github.com/labstack/echo/v4"

    "github.com/iliyamo/b-cinema/internal/logger"
    "github.com/iliyamo/b-cinema/internal/service"
)

// Register creates a Customer account and sends the client to the login
// page.  No session is opened.
func (h *Handler) Register(c echo.Context) error {
    var req registerReq
    if err := c.Bind(&req); err != nil {
        return badRequest(c, "invalid body")
    }
    ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
    defer cancel()

    if _, err := h.Identity.Register(ctx, service.RegisterInput{
        Name: req.Name, Email: req.Email, Password: req.Password,
    }); err != nil {
        return fail(c, err)
    }
    return seeOther(c, loginPage)
}

// Login opens a session, sets the session cookie and redirects to the
// caller's landing page.
func (h *Handler) Login(c echo.Context) error {
    var req loginReq
    if err := c.Bind(&req); err != nil {
        return badRequest(c, "invalid body")
    }
    ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
    defer cancel()

    res, err := h.Identity.Login(ctx, req.Email, req.Password)
    if err != nil {
        return fail(c, err)
    }
    c.SetCookie(&http.Cookie{
        Name:     h.Cookie.Name,
        Value:    res.Token,
        Path:     "/",
        Expires:  res.ExpiresAt,
        HttpOnly: true,
        Secure:   h.Cookie.Secure,
        SameSite: http.SameSiteLaxMode,
    })
    return seeOther(c, res.Landing)
}

// Logout ends the session, if any, clears the cookie and redirects to the
// login page.
func (h *Handler) Logout(c echo.Context) error {
    ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
    defer cancel()

    if err := h.Identity.Logout(ctx, principal(c)); err != nil {
        logger.WithContext(ctx).Warn("session delete failed", "error", err)
    }
    c.SetCookie(&http.Cookie{
        Name:     h.Cookie.Name,
        Value:    "",
        Path:     "/",
        MaxAge:   -1,
        HttpOnly: true,
        Secure:   h.Cookie.Secure,
        SameSite: http.SameSiteLaxMode,
    })
    return seeOther(c, loginPage)
}

// Me reports the caller's session, or 401 when there is none.
func (h *Handler) Me(c echo.Context) error {
    p := principal(c)
    if p.Anonymous() {
        return c.JSON(http.StatusUnauthorized, echo.Map{"error": "not signed in"})
    }
    return c.JSON(http.StatusOK, echo.Map{
        "userId":   p.UserID,
        "userName": p.UserName,
        "userRole": p.Role,
        "landing":  service.Landing(p.Role),
    })
}
