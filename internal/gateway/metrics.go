package gateway

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics counts gateway calls by table, operation and outcome. A nil
// *Metrics records nothing.
type Metrics struct {
	calls    *prometheus.CounterVec
	duration *prometheus.HistogramVec
}

func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		calls: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "recipes",
			Subsystem: "gateway",
			Name:      "calls_total",
			Help:      "Remote data calls by table, operation and outcome.",
		}, []string{"table", "op", "outcome"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "recipes",
			Subsystem: "gateway",
			Name:      "call_duration_seconds",
			Help:      "Remote data call latency.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"table", "op"}),
	}
	reg.MustRegister(m.calls, m.duration)
	return m
}

func (m *Metrics) observe(table, op string, start time.Time, success bool) {
	if m == nil {
		return
	}
	outcome := "success"
	if !success {
		outcome = "failure"
	}
	m.calls.WithLabelValues(table, op, outcome).Inc()
	m.duration.WithLabelValues(table, op).Observe(time.Since(start).Seconds())
}
