package middleware

import (
    "net/http"
    "strconv"
    "strings"
    "time"

    "github.com/labstack/echo/v4"
    "github.com/redis/go-redis/v9"

    "github.com/iliyamo/b-cinema/internal/config"
    "github.com/iliyamo/b-cinema/internal/logger"
)

// NewFixedWindow limits each client to cfg.Limit requests per cfg.Window on
// the routes it wraps.  The counter for a window lives in Redis under
// "<prefix>:<ip>:<user>:<route>:<window start>".  Redis errors let the
// request through.
func NewFixedWindow(cfg config.RateLimitConfig, rdb *redis.Client) echo.MiddlewareFunc {
    if !cfg.Enabled || rdb == nil {
        return func(next echo.HandlerFunc) echo.HandlerFunc { return func(c echo.Context) error { return next(c) } }
    }
    return func(next echo.HandlerFunc) echo.HandlerFunc {
        return func(c echo.Context) error {
            now := time.Now()
            windowStart := now.Truncate(cfg.Window)
            key := buildRateKey(cfg, c, windowStart)
            ctx := c.Request().Context()

            pipe := rdb.TxPipeline()
            incr := pipe.Incr(ctx, key)
            pipe.Expire(ctx, key, cfg.Window+time.Second)
            if _, err := pipe.Exec(ctx); err != nil {
                logger.WithContext(ctx).Warn("rate limit unavailable", "key", key, "error", err)
                return next(c)
            }

            count := int(incr.Val())
            remaining := cfg.Limit - count
            if remaining < 0 { remaining = 0 }
            c.Response().Header().Set("X-RateLimit-Limit", strconv.Itoa(cfg.Limit))
            c.Response().Header().Set("X-RateLimit-Remaining", strconv.Itoa(remaining))

            if count > cfg.Limit {
                secs := int(windowStart.Add(cfg.Window).Sub(now).Seconds()) + 1
                c.Response().Header().Set("Retry-After", strconv.Itoa(secs))
                return c.JSON(http.StatusTooManyRequests, echo.Map{
                    "error":       "too_many_requests",
                    "message":     "rate limit exceeded",
                    "retry_after": secs,
                })
            }
            return next(c)
        }
    }
}

func buildRateKey(cfg config.RateLimitConfig, c echo.Context, window time.Time) string {
    ip := c.RealIP()
    if ip == "" { ip = "unknown" }
    route := c.Request().Method + " " + c.Path()
    return strings.Join([]string{cfg.Prefix, ip, userID(c), route, strconv.FormatInt(window.Unix(), 10)}, ":")
}
