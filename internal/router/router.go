package router // package router defines how HTTP routes are registered for the API

import (
	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"

	"github.com/iliyamo/b-cinema/internal/config"
	"github.com/iliyamo/b-cinema/internal/handler"
	"github.com/iliyamo/b-cinema/internal/metrics"
	"github.com/iliyamo/b-cinema/internal/middleware"
	"github.com/iliyamo/b-cinema/internal/service"
)

// Deps carries what the routes need beyond the handlers.  Redis may be nil,
// which turns the login rate limit and the listing cache into no-ops.
type Deps struct {
	Identity  *service.Identity
	Redis     *redis.Client
	RateLimit config.RateLimitConfig
	Cache     *middleware.ListingCache
	// UploadDir is served under PosterPrefix.
	UploadDir    string
	PosterPrefix string
}

// RegisterRoutes installs the global middleware and the unauthenticated
// routes: health, metrics, uploaded posters and the account pages.
func RegisterRoutes(e *echo.Echo, h *handler.Handler, d Deps) {
	e.Use(middleware.RequestLogger())
	e.Use(metrics.Middleware())
	e.Use(middleware.LoadSession(d.Identity, h.Cookie.Name))

	e.GET("/healthz", handler.Health)
	e.GET("/metrics", metrics.Handler())
	if d.UploadDir != "" {
		e.Static(d.PosterPrefix, d.UploadDir)
	}

	g := e.Group("/account")
	g.POST("/register", h.Register)
	// Only the login attempt is throttled.
	g.POST("/login", h.Login, middleware.NewFixedWindow(d.RateLimit, d.Redis))
	g.GET("/logout", h.Logout)
	g.POST("/logout", h.Logout)
	g.GET("/me", h.Me)

	// Any signed-in caller may browse the catalog.
	m := e.Group("/movies", middleware.RequireLogin(), d.Cache.Middleware())
	m.GET("", h.ListMovies)
	m.GET("/:id", h.GetMovie)

	registerAdmin(e, h, d)
}
