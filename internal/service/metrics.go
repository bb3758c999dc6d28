package service

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	outcomeAnswered = "answered"
	outcomeFailed   = "failed"
	outcomeRejected = "rejected"
)

// Metrics counts query outcomes and provider latency. A nil *Metrics is
// valid and records nothing.
type Metrics struct {
	submissions *prometheus.CounterVec
	latency     prometheus.Histogram
	inflight    prometheus.Gauge
}

func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		submissions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "lexi",
			Name:      "submissions_total",
			Help:      "Queries submitted, by outcome.",
		}, []string{"outcome"}),
		latency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "lexi",
			Name:      "answer_provider_seconds",
			Help:      "Time spent waiting for the answer provider.",
			Buckets:   prometheus.ExponentialBuckets(0.05, 2, 10),
		}),
		inflight: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "lexi",
			Name:      "queries_in_flight",
			Help:      "Queries waiting for an answer.",
		}),
	}
	if reg != nil {
		reg.MustRegister(m.submissions, m.latency, m.inflight)
	}
	return m
}

func (m *Metrics) started() {
	if m != nil {
		m.inflight.Inc()
	}
}

func (m *Metrics) settled(outcome string, took time.Duration) {
	if m == nil {
		return
	}
	m.inflight.Dec()
	m.latency.Observe(took.Seconds())
	m.submissions.WithLabelValues(outcome).Inc()
}

func (m *Metrics) rejected() {
	if m != nil {
		m.submissions.WithLabelValues(outcomeRejected).Inc()
	}
}
