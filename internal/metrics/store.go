// Package metrics exposes the collector's optional Prometheus metrics,
// gated behind GNM_PROMETHEUS=1.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Store owns the collector's Prometheus collectors. A nil *Store is safe
// to call methods on — every method no-ops — so callers don't have to
// branch on whether metrics are enabled.
type Store struct {
	registry *prometheus.Registry

	checksTotal   *prometheus.CounterVec
	checkDuration *prometheus.HistogramVec
	cycleDuration prometheus.Histogram
	startTime     time.Time
}

// NewStore builds a Store registered against its own registry, not the
// global default, so multiple independent stores can coexist in tests.
func NewStore() *Store {
	reg := prometheus.NewRegistry()
	s := &Store{registry: reg, startTime: time.Now()}

	s.checksTotal = promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
		Namespace: "gnmradar",
		Subsystem: "collector",
		Name:      "checks_total",
		Help:      "Total completed checks, by check type and persisted status.",
	}, []string{"type", "status"})

	s.checkDuration = promauto.With(reg).NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "gnmradar",
		Subsystem: "collector",
		Name:      "check_duration_ms",
		Help:      "Latency of individual checks in milliseconds, by check type.",
		Buckets:   []float64{5, 10, 25, 50, 100, 250, 500, 1000, 2500, 5000, 10000},
	}, []string{"type"})

	s.cycleDuration = promauto.With(reg).NewHistogram(prometheus.HistogramOpts{
		Namespace: "gnmradar",
		Subsystem: "collector",
		Name:      "cycle_duration_seconds",
		Help:      "Wall-clock duration of a full collection cycle.",
		Buckets:   prometheus.DefBuckets,
	})

	promauto.With(reg).NewGaugeFunc(prometheus.GaugeOpts{
		Namespace: "gnmradar",
		Subsystem: "collector",
		Name:      "uptime_seconds",
		Help:      "Seconds since process start.",
	}, func() float64 {
		return time.Since(s.startTime).Seconds()
	})

	return s
}

// ObserveCheck records one completed check's outcome and latency.
func (s *Store) ObserveCheck(checkType string, status int, latencyMS int64) {
	if s == nil {
		return
	}
	s.checksTotal.WithLabelValues(checkType, statusLabel(status)).Inc()
	s.checkDuration.WithLabelValues(checkType).Observe(float64(latencyMS))
}

// ObserveCycle records one full cycle's wall-clock duration.
func (s *Store) ObserveCycle(d time.Duration) {
	if s == nil {
		return
	}
	s.cycleDuration.Observe(d.Seconds())
}

// Handler returns the http.Handler to mount at the metrics address.
func (s *Store) Handler() http.Handler {
	if s == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{})
}

func statusLabel(status int) string {
	switch status {
	case 0:
		return "ok"
	case 1:
		return "warn"
	case 2:
		return "crit"
	default:
		return "unknown"
	}
}
