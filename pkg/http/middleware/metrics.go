package middleware

import (
	"strconv"
	"sync"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	applogger "GhostSniper/pkg/logger"
)

var (
	httpRequestsTotal   *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec
	httpInFlight        prometheus.Gauge
	regOnce             sync.Once
)

func register() {
	regOnce.Do(func() {
		httpRequestsTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{Name: "ghostsniper_http_requests_total", Help: "HTTP requests by route"},
			[]string{"route", "method", "class"},
		)
		httpRequestDuration = promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "ghostsniper_http_request_duration_seconds",
				Help:    "HTTP request duration in seconds",
				Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
			},
			[]string{"route", "method"},
		)
		httpInFlight = promauto.NewGauge(prometheus.GaugeOpts{
			Name: "ghostsniper_http_in_flight_requests",
			Help: "Current number of in-flight HTTP requests",
		})
	})
}

// Metrics records request metrics labelled by the route template, and logs
// 5xx responses and requests slower than slowThreshold.
func Metrics(l *applogger.Logger, slowThreshold time.Duration) echo.MiddlewareFunc {
	register()
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			httpInFlight.Inc()
			start := time.Now()
			err := next(c)
			if err != nil {
				c.Error(err)
			}
			httpInFlight.Dec()

			route, method := c.Path(), c.Request().Method
			if route == "" {
				route = "unmatched"
			}
			status := c.Response().Status
			dur := time.Since(start)
			httpRequestsTotal.WithLabelValues(route, method, statusClass(status)).Inc()
			httpRequestDuration.WithLabelValues(route, method).Observe(dur.Seconds())

			switch {
			case status >= 500:
				l.Error("http request failed", applogger.String("route", route), applogger.String("method", method),
					applogger.String("status", strconv.Itoa(status)), applogger.Duration("duration", dur))
			case slowThreshold > 0 && dur >= slowThreshold:
				l.Warn("http request slow", applogger.String("route", route), applogger.String("method", method),
					applogger.Duration("duration", dur))
			}
			return nil
		}
	}
}

func statusClass(code int) string {
	switch {
	case code < 200:
		return "1xx"
	case code < 300:
		return "2xx"
	case code < 400:
		return "3xx"
	case code < 500:
		return "4xx"
	default:
		return "5xx"
	}
}
