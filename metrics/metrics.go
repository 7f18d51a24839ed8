// Package metrics exposes Prometheus collectors for the HTTP layer and the
// order and review flows.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/evacurves/storefront-backend-go/apperror"
	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Metrics struct {
	registry *prometheus.Registry

	requests         *prometheus.CounterVec
	latency          *prometheus.HistogramVec
	ordersPlaced     *prometheus.CounterVec
	stockConflicts   prometheus.Counter
	reviewsSubmitted prometheus.Counter
}

// New registers the collectors on a fresh registry, plus the Go and process
// collectors.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "storefront",
			Name:      "http_requests_total",
			Help:      "HTTP requests by method, route and status.",
		}, []string{"method", "route", "status"}),
		latency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "storefront",
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency by method and route.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
		ordersPlaced: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "storefront",
			Name:      "orders_placed_total",
			Help:      "Orders placed by payment method.",
		}, []string{"payment_method"}),
		stockConflicts: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "storefront",
			Name:      "order_stock_conflicts_total",
			Help:      "Orders rejected for insufficient stock.",
		}),
		reviewsSubmitted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "storefront",
			Name:      "reviews_submitted_total",
			Help:      "Product reviews submitted.",
		}),
	}

	m.registry.MustRegister(
		m.requests, m.latency, m.ordersPlaced, m.stockConflicts, m.reviewsSubmitted,
		prometheus.NewGoCollector(),
		prometheus.NewProcessCollector(prometheus.ProcessCollectorOpts{}),
	)
	return m
}

func (m *Metrics) OrderPlaced(paymentMethod string) {
	m.ordersPlaced.WithLabelValues(paymentMethod).Inc()
}

func (m *Metrics) StockConflict() {
	m.stockConflicts.Inc()
}

func (m *Metrics) ReviewSubmitted() {
	m.reviewsSubmitted.Inc()
}

// Middleware records request count and latency, labelled by the route
// pattern rather than the raw path.
func (m *Metrics) Middleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			err := next(c)

			status := c.Response().Status
			if err != nil {
				status = http.StatusInternalServerError
				if ae, ok := apperror.As(err); ok {
					status = ae.Status()
				} else if he, ok := err.(*echo.HTTPError); ok {
					status = he.Code
				}
			}
			route := c.Path()
			if route == "" {
				route = "unmatched"
			}

			m.requests.WithLabelValues(c.Request().Method, route, strconv.Itoa(status)).Inc()
			m.latency.WithLabelValues(c.Request().Method, route).Observe(time.Since(start).Seconds())
			return err
		}
	}
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() echo.HandlerFunc {
	return echo.WrapHandler(promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{}))
}
