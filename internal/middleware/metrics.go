package middleware

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// routeUnmatched заменяет путь запроса, не попавшего ни в один маршрут,
// иначе случайные id раздувают число серий
const routeUnmatched = "unmatched"

var (
	httpInFlight = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: "order_lifecycle",
		Subsystem: "http",
		Name:      "in_flight_requests",
		Help:      "Requests being served, by method.",
	}, []string{"method"})

	httpResponses = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "order_lifecycle",
		Subsystem: "http",
		Name:      "responses_total",
		Help:      "Responses by route pattern and status class.",
	}, []string{"method", "route", "class"})

	httpRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "order_lifecycle",
		Subsystem: "http",
		Name:      "request_duration_seconds",
		Help:      "Latency of matched routes.",
		Buckets:   []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5},
	}, []string{"method", "route"})
)

// statusClass maps 204 to "2xx", 503 to "5xx" and so on.
func statusClass(status int) string {
	switch {
	case status >= 500:
		return "5xx"
	case status >= 400:
		return "4xx"
	case status >= 300:
		return "3xx"
	case status >= 200:
		return "2xx"
	default:
		return "1xx"
	}
}

func routeOf(r *http.Request) string {
	rc := chi.RouteContext(r.Context())
	if rc == nil || rc.RoutePattern() == "" {
		return routeUnmatched
	}
	return rc.RoutePattern()
}

func Metrics(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		inFlight := httpInFlight.WithLabelValues(r.Method)
		inFlight.Inc()
		defer inFlight.Dec()

		start := time.Now()
		rw := wrapResponseWriter(w)
		next.ServeHTTP(rw, r)

		route := routeOf(r)
		httpResponses.WithLabelValues(r.Method, route, statusClass(rw.status)).Inc()
		if route != routeUnmatched {
			httpRequestDuration.WithLabelValues(r.Method, route).Observe(time.Since(start).Seconds())
		}
	})
}
