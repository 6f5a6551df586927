package middleware

import (
    "context"
    "strings"

    "github.com/labstack/echo/v4"

    "github.com/iliyamo/b-cinema/internal/auth"
    "github.com/iliyamo/b-cinema/internal/logger"
)

// SessionResolver maps a session token to the caller's principal.
type SessionResolver interface {
    Resolve(ctx context.Context, token string) (auth.Principal, error)
}

// SessionToken returns the token sent by the client: the session cookie
// when present, else a Bearer Authorization header.
func SessionToken(c echo.Context, cookieName string) string {
    if ck, err := c.Cookie(cookieName); err == nil && ck.Value != "" {
        return ck.Value
    }
    h := c.Request().Header.Get(echo.HeaderAuthorization)
    if strings.HasPrefix(h, "Bearer ") {
        return strings.TrimSpace(strings.TrimPrefix(h, "Bearer "))
    }
    return ""
}

// LoadSession attaches the caller's principal to the request context.  It
// never rejects a request: callers without a valid session continue as
// anonymous and the role middlewares decide what they may reach.
func LoadSession(r SessionResolver, cookieName string) echo.MiddlewareFunc {
    return func(next echo.HandlerFunc) echo.HandlerFunc {
        return func(c echo.Context) error {
            req := c.Request()
            ctx := req.Context()
            p, err := r.Resolve(ctx, SessionToken(c, cookieName))
            if err != nil {
                logger.WithContext(ctx).Warn("session lookup failed", "error", err)
                p = auth.Principal{}
            }
            ctx = auth.WithPrincipal(ctx, p)
            if !p.Anonymous() {
                ctx = logger.ContextWithUserID(ctx, p.UserID)
            }
            c.SetRequest(req.WithContext(ctx))
            return next(c)
        }
    }
}
