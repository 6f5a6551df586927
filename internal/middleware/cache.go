package middleware

import (
    "bytes"
    "context"
    "crypto/sha1"
    "encoding/binary"
    "encoding/json"
    "fmt"
    "net/http"
    "strings"

    "github.com/labstack/echo/v4"
    "github.com/redis/go-redis/v9"

    "github.com/iliyamo/b-cinema/internal/config"
    "github.com/iliyamo/b-cinema/internal/logger"
)

// captureWriter captures response body/status while forwarding to the client.
type captureWriter struct {
    http.ResponseWriter
    status int
    buf    bytes.Buffer
    size   int64
    limit  int64
}

func (cw *captureWriter) WriteHeader(code int) { cw.status = code; cw.ResponseWriter.WriteHeader(code) }
func (cw *captureWriter) Write(b []byte) (int, error) {
    if cw.limit <= 0 || cw.size < cw.limit {
        cw.buf.Write(b)
    }
    cw.size += int64(len(b))
    return cw.ResponseWriter.Write(b)
}

// ListingCache caches successful GET responses of the movie catalog in
// Redis.  Keys embed a version counter; Invalidate bumps it so every entry
// written before a catalog change is ignored and left to expire.
type ListingCache struct {
    cfg config.CacheConfig
    rdb *redis.Client
}

// NewListingCache returns a cache, disabled when rdb is nil.
func NewListingCache(cfg config.CacheConfig, rdb *redis.Client) *ListingCache {
    return &ListingCache{cfg: cfg, rdb: rdb}
}

func (lc *ListingCache) enabled() bool { return lc != nil && lc.cfg.Enabled && lc.rdb != nil }

func (lc *ListingCache) versionKey() string { return lc.cfg.Prefix + ":version" }

// Invalidate drops every cached listing.
func (lc *ListingCache) Invalidate(ctx context.Context) error {
    if !lc.enabled() {
        return nil
    }
    return lc.rdb.Incr(ctx, lc.versionKey()).Err()
}

func (lc *ListingCache) version(ctx context.Context) (int64, error) {
    v, err := lc.rdb.Get(ctx, lc.versionKey()).Int64()
    if err == redis.Nil {
        return 0, nil
    }
    return v, err
}

// cacheKeyFrom builds "<prefix>:v<version>:<sha1(route, query)>".
func (lc *ListingCache) cacheKeyFrom(c echo.Context, version int64) string {
    tail := strings.Join([]string{"route", c.Request().URL.Path, "q", c.Request().URL.RawQuery}, ":")
    sum := sha1.Sum([]byte(tail))
    return fmt.Sprintf("%s:v%d:%x", lc.cfg.Prefix, version, sum[:])
}

// encodePayload packs: [4 bytes status][4 bytes headerLen][headerJSON][body]
func encodePayload(status int, header http.Header, body []byte) ([]byte, error) {
    hdrJSON, err := json.Marshal(header)
    if err != nil {
        return nil, err
    }
    out := make([]byte, 8+len(hdrJSON)+len(body))
    binary.BigEndian.PutUint32(out[0:4], uint32(status))
    binary.BigEndian.PutUint32(out[4:8], uint32(len(hdrJSON)))
    copy(out[8:], hdrJSON)
    copy(out[8+len(hdrJSON):], body)
    return out, nil
}

func decodePayload(bs []byte) (status int, header http.Header, body []byte, ok bool) {
    if len(bs) < 8 {
        return 0, nil, nil, false
    }
    status = int(binary.BigEndian.Uint32(bs[0:4]))
    hlen := int(binary.BigEndian.Uint32(bs[4:8]))
    if hlen < 0 || 8+hlen > len(bs) {
        return 0, nil, nil, false
    }
    header = make(http.Header)
    if hlen > 0 {
        if err := json.Unmarshal(bs[8:8+hlen], &header); err != nil {
            return 0, nil, nil, false
        }
    }
    return status, header, bs[8+hlen:], true
}

// Middleware serves cached GET responses and stores fresh 200s.  It must
// run after the role check so cached bodies never bypass authorization.
func (lc *ListingCache) Middleware() echo.MiddlewareFunc {
    if !lc.enabled() {
        return func(next echo.HandlerFunc) echo.HandlerFunc { return func(c echo.Context) error { return next(c) } }
    }
    maxBody := int64(lc.cfg.MaxBodyBytes)

    return func(next echo.HandlerFunc) echo.HandlerFunc {
        return func(c echo.Context) error {
            if c.Request().Method != http.MethodGet {
                return next(c)
            }
            ctx := c.Request().Context()
            version, err := lc.version(ctx)
            if err != nil {
                logger.WithContext(ctx).Warn("listing cache unavailable", "error", err)
                return next(c)
            }
            key := lc.cacheKeyFrom(c, version)

            if bs, err := lc.rdb.Get(ctx, key).Bytes(); err == nil {
                if status, hdr, body, ok := decodePayload(bs); ok {
                    for k, vals := range hdr {
                        if strings.EqualFold(k, echo.HeaderContentLength) || strings.EqualFold(k, echo.HeaderXRequestID) {
                            continue
                        }
                        for _, v := range vals {
                            c.Response().Header().Add(k, v)
                        }
                    }
                    c.Response().Header().Set("X-Cache", "HIT")
                    c.Response().WriteHeader(status)
                    _, _ = c.Response().Write(body)
                    return nil
                }
            }

            cw := &captureWriter{ResponseWriter: c.Response().Writer, status: http.StatusOK, limit: maxBody}
            c.Response().Writer = cw
            c.Response().Header().Set("X-Cache", "MISS")

            if err := next(c); err != nil {
                return err
            }
            if cw.status != http.StatusOK || (maxBody > 0 && cw.size > maxBody) {
                return nil
            }
            hdr := c.Response().Header().Clone()
            hdr.Del("X-Cache")
            if payload, err := encodePayload(cw.status, hdr, cw.buf.Bytes()); err == nil {
                if err := lc.rdb.Set(context.WithoutCancel(ctx), key, payload, lc.cfg.TTL).Err(); err != nil {
                    logger.WithContext(ctx).Warn("listing cache write failed", "error", err)
                }
            }
            return nil
        }
    }
}
