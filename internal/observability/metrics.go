package observability

import (
	"strconv"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	registerOnce sync.Once

	cmdRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "cmdmon",
			Subsystem: "dispatch",
			Name:      "requests_total",
			Help:      "Total C/M requests dispatched, by opcode and reply status.",
		},
		[]string{"opcode", "status"},
	)
	cmdRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "cmdmon",
			Subsystem: "dispatch",
			Name:      "handler_duration_seconds",
			Help:      "Time spent inside a single opcode handler.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"opcode"},
	)
	droppedPackets = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "cmdmon",
			Subsystem: "dispatch",
			Name:      "dropped_packets_total",
			Help:      "Packets silently dropped by the validation pipeline, by reason.",
		},
		[]string{"reason"},
	)

	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "cmdmon",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Requests served by the debug HTTP surface.",
		},
		[]string{"method", "path", "status"},
	)
	httpDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "cmdmon",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "Debug HTTP request duration in seconds.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)
)

// RegisterMetrics registers every collector exactly once, safe to call
// from multiple entry points (daemon main, tests).
func RegisterMetrics() {
	registerOnce.Do(func() {
		prometheus.MustRegister(cmdRequests, cmdRequestDuration, droppedPackets, httpRequests, httpDuration)
	})
}

// RecordDispatch records one completed opcode dispatch.
func RecordDispatch(opcode string, status string, duration time.Duration) {
	RegisterMetrics()
	cmdRequests.WithLabelValues(opcode, status).Inc()
	cmdRequestDuration.WithLabelValues(opcode).Observe(duration.Seconds())
}

// RecordDrop records one packet dropped by the validation pipeline before
// it reached a handler.
func RecordDrop(reason string) {
	RegisterMetrics()
	droppedPackets.WithLabelValues(reason).Inc()
}

// RecordHTTPRequest records one request served by the debug HTTP surface.
func RecordHTTPRequest(method, path string, status int, duration time.Duration) {
	RegisterMetrics()
	statusLabel := strconv.Itoa(status)
	httpRequests.WithLabelValues(method, path, statusLabel).Inc()
	httpDuration.WithLabelValues(method, path, statusLabel).Observe(duration.Seconds())
}
