package router

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/b-cinema/internal/handler"
	"github.com/iliyamo/b-cinema/internal/middleware"
)

// registerAdmin registers the administrator area under /admin.  Every route
// requires the Admin role.  Forms without method override post to
// /:id and /:id/delete; API clients may use PUT and DELETE instead.
func registerAdmin(e *echo.Echo, h *handler.Handler, d Deps) {
	g := e.Group("/admin", middleware.RequireAdmin())

	g.GET("", func(c echo.Context) error { return c.Redirect(http.StatusSeeOther, "/admin/dashboard") })
	g.GET("/dashboard", h.Dashboard)

	// ---- Movies ----
	g.GET("/movies", h.AdminListMovies, d.Cache.Middleware())
	g.POST("/movies", h.CreateMovie)
	g.GET("/movies/:id", h.AdminGetMovie, d.Cache.Middleware())
	g.POST("/movies/:id", h.EditMovie)
	g.PUT("/movies/:id", h.EditMovie)
	g.POST("/movies/:id/delete", h.DeleteMovie)
	g.DELETE("/movies/:id", h.DeleteMovie)

	// ---- Showtimes ----
	g.GET("/showtimes", h.ListShowtimes, d.Cache.Middleware())
	g.POST("/showtimes", h.CreateShowtime)
	g.GET("/showtimes/:id", h.GetShowtime)
	g.POST("/showtimes/:id", h.EditShowtime)
	g.PUT("/showtimes/:id", h.EditShowtime)
	g.POST("/showtimes/:id/delete", h.DeleteShowtime)
	g.DELETE("/showtimes/:id", h.DeleteShowtime)

	// ---- Users ----
	g.GET("/users", h.ListUsers)
	g.POST("/users", h.CreateUser)
	g.GET("/users/:id", h.GetUser)
	g.POST("/users/:id", h.EditUser)
	g.PUT("/users/:id", h.EditUser)
	g.POST("/users/:id/delete", h.DeleteUser)
	g.DELETE("/users/:id", h.DeleteUser)

	// ---- Tickets ----
	g.GET("/tickets", h.ListTickets)
	g.POST("/tickets", h.CreateTicket)
	g.GET("/tickets/options", h.TicketOptions)
	g.GET("/tickets/:id", h.GetTicket)
	g.POST("/tickets/:id", h.EditTicket)
	g.PUT("/tickets/:id", h.EditTicket)
	g.POST("/tickets/:id/delete", h.DeleteTicket)
	g.DELETE("/tickets/:id", h.DeleteTicket)

	g.GET("/bookings/:id", h.GetBooking)
}
