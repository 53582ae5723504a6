// Package metrics exposes Prometheus instrumentation for the dispatcher:
// a request counter and a latency histogram, both labeled by resource type
// and HTTP method.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the dispatcher's Prometheus collectors. The zero value is
// not usable; construct with New and Register it with a prometheus.Registerer.
type Metrics struct {
	RequestsTotal   *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec
}

// New builds a Metrics instance. namespace/subsystem follow the usual
// Prometheus naming convention, e.g. New("scim", "server").
func New(namespace, subsystem string) *Metrics {
	return &Metrics{
		RequestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "requests_total",
			Help:      "Total number of SCIM requests handled, labeled by resource, method, and status class.",
		}, []string{"resource", "method", "status"}),
		RequestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "request_duration_seconds",
			Help:      "SCIM request latency in seconds, labeled by resource and method.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"resource", "method"}),
	}
}

// Register registers every collector with reg.
func (m *Metrics) Register(reg prometheus.Registerer) error {
	if err := reg.Register(m.RequestsTotal); err != nil {
		return err
	}
	return reg.Register(m.RequestDuration)
}

// Observe records one completed request.
func (m *Metrics) Observe(resource, method string, status int, elapsed time.Duration) {
	if m == nil {
		return
	}
	statusClass := "2xx"
	switch {
	case status >= 500:
		statusClass = "5xx"
	case status >= 400:
		statusClass = "4xx"
	case status >= 300:
		statusClass = "3xx"
	}
	m.RequestsTotal.WithLabelValues(resource, method, statusClass).Inc()
	m.RequestDuration.WithLabelValues(resource, method).Observe(elapsed.Seconds())
}
