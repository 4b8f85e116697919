// Package metrics holds process-wide Prometheus metrics.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics covers the HTTP serving surface. Methods are nil-safe.
type Metrics struct {
	RequestDuration *prometheus.HistogramVec
}

func New() *Metrics {
	return &Metrics{
		RequestDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "ownidp_http_request_duration_seconds",
			Help:    "HTTP request latency by route",
			Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		}, []string{"route", "method"}),
	}
}

// ObserveRequest records one served request.
func (m *Metrics) ObserveRequest(route, method string, d time.Duration) {
	if m != nil {
		m.RequestDuration.WithLabelValues(route, method).Observe(d.Seconds())
	}
}
