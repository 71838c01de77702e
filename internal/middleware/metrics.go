package middleware

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	once sync.Once

	// RequestsTotal counts HTTP requests by route pattern and status code.
	RequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "playground",
		Subsystem: "http",
		Name:      "requests_total",
		Help:      "Total number of HTTP requests, labeled by route pattern, method and status.",
	}, []string{"route", "method", "status"})

	// RequestsInFlight is the number of requests currently being served.
	RequestsInFlight = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "playground",
		Subsystem: "http",
		Name:      "requests_in_flight",
		Help:      "Current number of HTTP requests being served.",
	})

	// RequestDurationSeconds is wall time per request.
	RequestDurationSeconds = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "playground",
		Subsystem: "http",
		Name:      "request_duration_seconds",
		Help:      "HTTP request latency.",
		Buckets:   []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10, 30, 60},
	}, []string{"route"})

	// AnalysesTotal counts analysis results by kind, requested and serving provider.
	AnalysesTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "playground",
		Subsystem: "analysis",
		Name:      "results_total",
		Help:      "Total number of analysis results, labeled by content kind, requested provider and provider that served it.",
	}, []string{"kind", "requested", "served"})

	// FallbacksTotal counts fallbacks to the local analyzer by failing provider and reason class.
	FallbacksTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "playground",
		Subsystem: "analysis",
		Name:      "fallbacks_total",
		Help:      "Total number of fallbacks to the local analyzer, labeled by provider and failure reason.",
	}, []string{"provider", "reason"})

	// ProviderCallSeconds is the latency of outgoing provider calls.
	ProviderCallSeconds = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "playground",
		Subsystem: "analysis",
		Name:      "provider_call_duration_seconds",
		Help:      "Latency of outgoing AI provider calls, labeled by provider and result.",
		Buckets:   []float64{0.1, 0.25, 0.5, 1, 2, 5, 10, 20, 30, 60, 120},
	}, []string{"provider", "result"})
)

// Register registers the collectors with the default registry. Safe to call
// multiple times.
func Register() {
	once.Do(func() {
		prometheus.MustRegister(
			RequestsTotal,
			RequestsInFlight,
			RequestDurationSeconds,
			AnalysesTotal,
			FallbacksTotal,
			ProviderCallSeconds,
		)
	})
}

// AnalysisMetrics feeds dispatcher outcomes into the analysis collectors.
type AnalysisMetrics struct{}

func (AnalysisMetrics) ObserveAnalysis(kind, requested, served string) {
	AnalysesTotal.WithLabelValues(kind, requested, served).Inc()
}

func (AnalysisMetrics) ObserveFallback(provider, reason string) {
	FallbacksTotal.WithLabelValues(provider, reason).Inc()
}

func (AnalysisMetrics) ObserveProviderCall(provider string, d time.Duration, err error) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	ProviderCallSeconds.WithLabelValues(provider, result).Observe(d.Seconds())
}

// MetricsMiddleware tracks request counts and latency by chi route pattern.
func MetricsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		RequestsInFlight.Inc()
		defer RequestsInFlight.Dec()

		wrapped := wrapWriter(w)
		next.ServeHTTP(wrapped, r)

		route := "unmatched"
		if rc := chi.RouteContext(r.Context()); rc != nil && rc.RoutePattern() != "" {
			route = rc.RoutePattern()
		}
		RequestsTotal.WithLabelValues(route, r.Method, strconv.Itoa(wrapped.statusCode)).Inc()
		RequestDurationSeconds.WithLabelValues(route).Observe(time.Since(start).Seconds())
	})
}

// MetricsHandler exposes the default registry in the Prometheus text format.
func MetricsHandler() http.Handler {
	return promhttp.Handler()
}
