package monitoring

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	requestCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total HTTP requests",
		},
		[]string{"path", "method", "status"},
	)
	latencyHistogram = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Request latency",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"path", "method"},
	)
	capturedEntries = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "logviewer_captured_entries_total",
			Help: "Log lines captured into the viewer buffer",
		},
		[]string{"level"},
	)
)

// Init registers custom collectors with reg.
func Init(reg prometheus.Registerer) error {
	for _, c := range []prometheus.Collector{requestCounter, latencyHistogram, capturedEntries} {
		if err := reg.Register(c); err != nil {
			return err
		}
	}
	return nil
}

// ObserveRequest records metrics.
func ObserveRequest(path, method, status string, seconds float64) {
	requestCounter.WithLabelValues(path, method, status).Inc()
	latencyHistogram.WithLabelValues(path, method).Observe(seconds)
}

// ObserveEntry counts a captured line.
func ObserveEntry(level string) {
	capturedEntries.WithLabelValues(level).Inc()
}
