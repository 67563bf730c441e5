package observability

import (
	"context"
	"errors"
	"net/http"
	"os"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"
)

const namespace = "reviews"

func counterVec(name, help string, labels ...string) *prometheus.CounterVec {
	return prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: namespace, Name: name, Help: help}, labels)
}

func latencyVec(name, help string, labels ...string) *prometheus.HistogramVec {
	return prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace, Name: name, Help: help, Buckets: prometheus.DefBuckets,
	}, labels)
}

var (
	HTTPRequests = counterVec("http_requests_total", "Dashboard API requests.", "route", "method", "status")
	HTTPLatency  = latencyVec("http_request_duration_seconds", "Dashboard API latency.", "route", "method")

	UpstreamRequests = counterVec("upstream_requests_total", "Calls to review providers.", "service", "endpoint", "status")
	UpstreamLatency  = latencyVec("upstream_request_duration_seconds", "Review provider latency.", "service", "endpoint")

	// outcome: ok|fallback|partial|error|disabled
	SourceFetches = counterVec("source_fetch_total", "Review source fetch outcomes.", "source", "outcome")
	// outcome: ok|timeout|error
	SourceLatency = latencyVec("source_fetch_duration_seconds", "Per-source time inside one aggregation.", "source", "outcome")

	// event: hit|miss|set|del
	CacheEvents = counterVec("cache_events_total", "Aggregate cache events.", "cache", "event")

	PersistFailures = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace, Name: "approval_persist_failures_total",
		Help: "Approval writes that did not reach the durable store.",
	})
)

// InitRegistry registers the service collectors plus the Go runtime and process
// collectors on a fresh registry.
func InitRegistry() *prometheus.Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		HTTPRequests, HTTPLatency,
		UpstreamRequests, UpstreamLatency,
		SourceFetches, SourceLatency,
		CacheEvents, PersistFailures,
	)
	return reg
}

func MetricsHandler(reg *prometheus.Registry) http.Handler {
	return promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg})
}

// Serve exposes /metrics on a side port when METRICS_ADDR is set.
func Serve(reg *prometheus.Registry) {
	addr := os.Getenv("METRICS_ADDR")
	if addr == "" {
		return
	}
	mux := http.NewServeMux()
	mux.Handle("/metrics", MetricsHandler(reg))
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	go func() {
		log.Info().Str("addr", addr).Msg("metrics server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error().Err(err).Msg("metrics server failed")
		}
	}()
}

func ObserveHTTP(route, method string, status int, dur time.Duration) {
	HTTPRequests.WithLabelValues(route, method, strconv.Itoa(status)).Inc()
	HTTPLatency.WithLabelValues(route, method).Observe(dur.Seconds())
}

// ObserveExternal records one upstream attempt; status 0 means no response.
func ObserveExternal(service, endpoint string, status int, dur time.Duration) {
	UpstreamRequests.WithLabelValues(service, endpoint, strconv.Itoa(status)).Inc()
	UpstreamLatency.WithLabelValues(service, endpoint).Observe(dur.Seconds())
}

func ObserveCache(cache, event string) {
	CacheEvents.WithLabelValues(cache, event).Inc()
}

func ObserveSourceFetch(source, outcome string) {
	SourceFetches.WithLabelValues(source, outcome).Inc()
}

func ObserveSourceLatency(source string, err error, dur time.Duration) {
	SourceLatency.WithLabelValues(source, Outcome(err)).Observe(dur.Seconds())
}

func ObservePersistFailure() { PersistFailures.Inc() }

// Outcome collapses an error into a low-cardinality label.
func Outcome(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, context.DeadlineExceeded):
		return "timeout"
	default:
		return "error"
	}
}
