package middleware

import (
    "context"
    "errors"
    "net/http"
    "net/http/httptest"
    "testing"

    "github.com/labstack/echo/v4"
    "github.com/stretchr/testify/assert"
    "github.com/stretchr/testify/require"

    "github.com/iliyamo/b-cinema/internal/auth"
    "github.com/iliyamo/b-cinema/internal/config"
    "github.com/iliyamo/b-cinema/internal/model"
)

type stubResolver struct {
    tokens map[string]auth.Principal
    err    error
}

func (s stubResolver) Resolve(_ context.Context, token string) (auth.Principal, error) {
    if s.err != nil {
        return auth.Principal{}, s.err
    }
    return s.tokens[token], nil
}

func newTestEcho(r SessionResolver) *echo.Echo {
    e := echo.New()
    e.Use(RequestLogger(), LoadSession(r, "sid"))
    whoami := func(c echo.Context) error {
        p := auth.FromContext(c.Request().Context())
        return c.JSON(http.StatusOK, echo.Map{"user": p.UserID, "role": p.Role})
    }
    e.GET("/open", whoami)
    e.GET("/movies", whoami, RequireLogin())
    e.GET("/admin", whoami, RequireAdmin())
    return e
}

func TestRoleGates(t *testing.T) {
    e := newTestEcho(stubResolver{tokens: map[string]auth.Principal{
        "admin": {UserID: 1, Role: model.RoleAdmin},
        "cust":  {UserID: 2, Role: model.RoleCustomer},
    }})

    cases := []struct {
        path, cookie, bearer string
        want                 int
    }{
        {"/open", "", "", http.StatusOK},
        {"/movies", "", "", http.StatusSeeOther},
        {"/movies", "cust", "", http.StatusOK},
        {"/movies", "", "cust", http.StatusOK},
        {"/admin", "cust", "", http.StatusSeeOther},
        {"/admin", "bogus", "", http.StatusSeeOther},
        {"/admin", "admin", "", http.StatusOK},
        {"/admin", "", "admin", http.StatusOK},
    }
    for _, tc := range cases {
        req := httptest.NewRequest(http.MethodGet, tc.path, nil)
        if tc.cookie != "" {
            req.AddCookie(&http.Cookie{Name: "sid", Value: tc.cookie})
        }
        if tc.bearer != "" {
            req.Header.Set(echo.HeaderAuthorization, "Bearer "+tc.bearer)
        }
        rec := httptest.NewRecorder()
        e.ServeHTTP(rec, req)
        assert.Equal(t, tc.want, rec.Code, "%s cookie=%q bearer=%q", tc.path, tc.cookie, tc.bearer)
        if rec.Code == http.StatusSeeOther {
            assert.Equal(t, LoginPath, rec.Header().Get(echo.HeaderLocation))
        }
        assert.NotEmpty(t, rec.Header().Get(echo.HeaderXRequestID))
    }
}

func TestResolverErrorIsAnonymous(t *testing.T) {
    e := newTestEcho(stubResolver{err: errors.New("redis down")})
    req := httptest.NewRequest(http.MethodGet, "/movies", nil)
    req.AddCookie(&http.Cookie{Name: "sid", Value: "x"})
    rec := httptest.NewRecorder()
    e.ServeHTTP(rec, req)
    assert.Equal(t, http.StatusSeeOther, rec.Code)
}

func TestRequestIDIsKept(t *testing.T) {
    e := newTestEcho(stubResolver{})
    req := httptest.NewRequest(http.MethodGet, "/open", nil)
    req.Header.Set(echo.HeaderXRequestID, "abc")
    rec := httptest.NewRecorder()
    e.ServeHTTP(rec, req)
    assert.Equal(t, "abc", rec.Header().Get(echo.HeaderXRequestID))
}

func TestDisabledRedisMiddlewaresPassThrough(t *testing.T) {
    e := echo.New()
    lc := NewListingCache(config.CacheConfig{Enabled: true}, nil)
    e.GET("/x", func(c echo.Context) error { return c.String(http.StatusOK, "ok") },
        NewFixedWindow(config.RateLimitConfig{Enabled: true, Limit: 1}, nil), lc.Middleware())

    for i := 0; i < 3; i++ {
        rec := httptest.NewRecorder()
        e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/x", nil))
        assert.Equal(t, http.StatusOK, rec.Code)
        assert.Empty(t, rec.Header().Get("X-Cache"))
    }
    assert.NoError(t, lc.Invalidate(context.Background()))
}

func TestPayloadCodec(t *testing.T) {
    hdr := http.Header{"Content-Type": {"application/json"}}
    bs, err := encodePayload(http.StatusOK, hdr, []byte(`{"a":1}`))
    require.NoError(t, err)

    status, got, body, ok := decodePayload(bs)
    require.True(t, ok)
    assert.Equal(t, http.StatusOK, status)
    assert.Equal(t, "application/json", got.Get("Content-Type"))
    assert.Equal(t, `{"a":1}`, string(body))

    _, _, _, ok = decodePayload(bs[:5])
    assert.False(t, ok)
}
