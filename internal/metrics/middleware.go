package metrics

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
)

// HTTP API metrics, labelled by chi route pattern.
var (
	APIRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "Search API request duration in seconds",
			Buckets:   []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		},
		[]string{"method", "route", "code"},
	)

	APIRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Search API requests by route and status code",
		},
		[]string{"method", "route", "code"},
	)

	APIResponseBytes = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "response_bytes_total",
			Help:      "Bytes written in API responses",
		},
		[]string{"route"},
	)

	APIInFlight = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_in_flight",
			Help:      "API requests currently being served",
		},
	)
)

var registerHTTPOnce sync.Once

// RegisterHTTPMetrics registers the API metrics with the default registry.
func RegisterHTTPMetrics() {
	registerHTTPOnce.Do(func() {
		prometheus.MustRegister(APIRequestDuration, APIRequestsTotal, APIResponseBytes, APIInFlight)
	})
}

// Middleware records per-route latency, status codes and response size.
func Middleware() func(next http.Handler) http.Handler {
	RegisterHTTPMetrics()
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			APIInFlight.Inc()
			defer APIInFlight.Dec()

			start := time.Now()
			rw := &recorder{ResponseWriter: w, code: http.StatusOK}
			next.ServeHTTP(rw, r)

			// The pattern is only complete after routing, so read it afterwards.
			route := routeLabel(r)
			code := strconv.Itoa(rw.code)
			APIRequestDuration.WithLabelValues(r.Method, route, code).Observe(time.Since(start).Seconds())
			APIRequestsTotal.WithLabelValues(r.Method, route, code).Inc()
			APIResponseBytes.WithLabelValues(route).Add(float64(rw.bytes))
		})
	}
}

// routeLabel keeps label cardinality bounded: unmatched paths collapse to "unmatched".
func routeLabel(r *http.Request) string {
	rctx := chi.RouteContext(r.Context())
	if rctx == nil || rctx.RoutePattern() == "" {
		return "unmatched"
	}
	return rctx.RoutePattern()
}

type recorder struct {
	http.ResponseWriter
	code        int
	bytes       int
	wroteHeader bool
}

func (w *recorder) WriteHeader(code int) {
	if !w.wroteHeader {
		w.code = code
		w.wroteHeader = true
	}
	w.ResponseWriter.WriteHeader(code)
}

func (w *recorder) Write(b []byte) (int, error) {
	w.wroteHeader = true
	n, err := w.ResponseWriter.Write(b)
	w.bytes += n
	return n, err //nolint:wrapcheck // pass-through writer
}
