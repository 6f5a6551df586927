// Package metrics declares the Prometheus collectors exported on /metrics.
package metrics

import (
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Registry holds every collector of this process.
var Registry = prometheus.NewRegistry()

var (
	httpRequests = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "cinema_http_requests_total",
		Help: "HTTP requests by route, method and status.",
	}, []string{"route", "method", "status"})

	httpDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "cinema_http_request_duration_seconds",
		Help:    "HTTP request latency by route.",
		Buckets: prometheus.DefBuckets,
	}, []string{"route", "method"})

	// TicketsIssued counts tickets created.
	TicketsIssued = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "cinema_tickets_issued_total",
		Help: "Tickets issued.",
	})

	// CascadeDeleted counts rows removed by delete cascades, by entity.
	CascadeDeleted = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "cinema_cascade_deleted_rows_total",
		Help: "Rows removed by delete operations, including cascaded rows.",
	}, []string{"entity"})

	// Logins counts login attempts by outcome ("ok" or "rejected").
	Logins = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "cinema_logins_total",
		Help: "Login attempts by outcome.",
	}, []string{"outcome"})
)

func init() {
	Registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		httpRequests, httpDuration, TicketsIssued, CascadeDeleted, Logins,
	)
}

// Handler serves the registry in the Prometheus text format.
func Handler() echo.HandlerFunc {
	return echo.WrapHandler(promhttp.HandlerFor(Registry, promhttp.HandlerOpts{}))
}

// Middleware records request count and latency per matched route.
func Middleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			err := next(c)
			status := c.Response().Status
			if err != nil {
				if he, ok := err.(*echo.HTTPError); ok {
					status = he.Code
				}
			}
			route := c.Path()
			if route == "" {
				route = "unmatched"
			}
			method := c.Request().Method
			httpRequests.WithLabelValues(route, method, strconv.Itoa(status)).Inc()
			httpDuration.WithLabelValues(route, method).Observe(time.Since(start).Seconds())
			return err
		}
	}
}
