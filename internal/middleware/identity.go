package middleware

// identity.go defines helpers shared across middleware files that need to
// name the caller, e.g. for rate limit keys.

import (
    "strconv"

    "github.com/labstack/echo/v4"

    "github.com/iliyamo/b-cinema/internal/auth"
)

// userID returns the authenticated user's id as a string, or "anon".
func userID(c echo.Context) string {
    p := auth.FromContext(c.Request().Context())
    if p.Anonymous() {
        return "anon"
    }
    return strconv.FormatUint(p.UserID, 10)
}
