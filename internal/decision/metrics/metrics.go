// Package metrics provides observability for the decision module.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics counts decision outcomes and times full request evaluation. All
// methods are nil-safe so wiring metrics stays optional in tests.
type Metrics struct {
	Outcomes        *prometheus.CounterVec
	EvaluateLatency prometheus.Histogram
}

func New() *Metrics {
	return &Metrics{
		Outcomes: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "ownidp_decision_outcomes_total",
			Help: "Total decision outcomes by state and protocol mode",
		}, []string{"state", "mode"}),

		EvaluateLatency: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "ownidp_decision_evaluate_duration_seconds",
			Help:    "Duration of a full decision evaluation including profile extraction",
			Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		}),
	}
}

// IncOutcome records one decision outcome.
func (m *Metrics) IncOutcome(state, mode string) {
	if m != nil {
		m.Outcomes.WithLabelValues(state, mode).Inc()
	}
}

// ObserveEvaluateLatency records the total evaluation duration.
func (m *Metrics) ObserveEvaluateLatency(d time.Duration) {
	if m != nil {
		m.EvaluateLatency.Observe(d.Seconds())
	}
}
