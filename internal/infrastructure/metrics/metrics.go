package metrics

import (
	"errors"
	"net/http"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/lorrc/presence-stats/internal/core/ports"
)

// Outcome label values
const (
	OutcomeSuccess = "success"
	OutcomeError   = "error"
)

// Package-level Prometheus collectors. They are registered via Register.
var (
	regOK atomic.Bool

	computations = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "presence",
			Subsystem: "stats",
			Name:      "computations_total",
			Help:      "Number of statistics computations by outcome.",
		}, []string{"outcome"},
	)
	computeDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "presence",
			Subsystem: "stats",
			Name:      "compute_duration_seconds",
			Help:      "Time spent reading status records and building statistics.",
			Buckets:   prometheus.DefBuckets,
		},
	)
	segments = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "presence",
			Subsystem: "stats",
			Name:      "segments",
			Help:      "Number of timeline segments per successful computation.",
			Buckets:   prometheus.ExponentialBuckets(1, 4, 8),
		},
	)
	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "presence",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "HTTP requests by route pattern and status code.",
		}, []string{"method", "route", "status"},
	)
	httpDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "presence",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request latency by route pattern.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"},
	)
)

// Register registers all metrics with the provided registerer.
// It is safe to call multiple times; subsequent calls after success are no-ops.
func Register(r prometheus.Registerer) error {
	if regOK.Load() {
		return nil
	}
	cs := []prometheus.Collector{computations, computeDuration, segments, httpRequests, httpDuration}
	for _, c := range cs {
		if err := r.Register(c); err != nil {
			var are prometheus.AlreadyRegisteredError
			if errors.As(err, &are) {
				continue
			}
			return err
		}
	}
	regOK.Store(true)
	return nil
}

// Handler returns an http.Handler that serves Prometheus metrics for the DefaultGatherer.
func Handler() http.Handler { return promhttp.Handler() }

// Recorder feeds statistics computations into the collectors.
// It no-ops until Register has succeeded.
type Recorder struct{}

var _ ports.StatisticsObserver = Recorder{}

func (Recorder) ObserveStatistics(segmentCount int, elapsed time.Duration, err error) {
	if !regOK.Load() {
		return
	}
	computeDuration.Observe(elapsed.Seconds())
	if err != nil {
		computations.WithLabelValues(OutcomeError).Inc()
		return
	}
	computations.WithLabelValues(OutcomeSuccess).Inc()
	segments.Observe(float64(segmentCount))
}

// ObserveHTTPRequest records one served request. route is the router
// pattern, not the raw path, to keep label cardinality bounded.
func ObserveHTTPRequest(method, route string, status int, elapsed time.Duration) {
	if !regOK.Load() {
		return
	}
	if route == "" {
		route = "unmatched"
	}
	httpRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	httpDuration.WithLabelValues(method, route).Observe(elapsed.Seconds())
}
