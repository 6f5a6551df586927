package middleware // middleware provides shared request processing for handlers

import (
    "net/http"

    "github.com/labstack/echo/v4"

    "github.com/iliyamo/b-cinema/internal/auth"
)

// LoginPath is where callers without the required role are sent.
const LoginPath = "/account/login"

// RequireLogin lets any authenticated caller through and redirects
// anonymous ones to the login page with 303 See Other.
func RequireLogin() echo.MiddlewareFunc {
    return requireGate(auth.RequireLogin)
}

// RequireAdmin lets administrators through and redirects everyone else to
// the login page.
func RequireAdmin() echo.MiddlewareFunc {
    return requireGate(auth.RequireAdmin)
}

func requireGate(gate func(auth.Principal) error) echo.MiddlewareFunc {
    return func(next echo.HandlerFunc) echo.HandlerFunc {
        return func(c echo.Context) error {
            if err := gate(auth.FromContext(c.Request().Context())); err != nil {
                return c.Redirect(http.StatusSeeOther, LoginPath)
            }
            return next(c)
        }
    }
}
