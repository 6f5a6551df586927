package middleware

import (
    "time"

    "github.com/labstack/echo/v4"

    "github.com/iliyamo/b-cinema/internal/logger"
)

// RequestLogger assigns every request an X-Request-ID (reusing the
// client's when given) and logs one line when it completes.
func RequestLogger() echo.MiddlewareFunc {
    return func(next echo.HandlerFunc) echo.HandlerFunc {
        return func(c echo.Context) error {
            start := time.Now()
            req := c.Request()
            id := req.Header.Get(echo.HeaderXRequestID)
            if id == "" {
                id = logger.NewRequestID()
            }
            c.Response().Header().Set(echo.HeaderXRequestID, id)
            c.SetRequest(req.WithContext(logger.ContextWithRequestID(req.Context(), id)))

            err := next(c)
            if err != nil {
                c.Error(err)
            }
            // the session middleware runs later, so read the context again
            logger.WithContext(c.Request().Context()).Info("request",
                "method", req.Method,
                "path", req.URL.Path,
                "status", c.Response().Status,
                "latency_ms", time.Since(start).Milliseconds(),
            )
            return nil
        }
    }
}
