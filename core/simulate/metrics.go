package simulate

import "github.com/prometheus/client_golang/prometheus"

// Metrics counts simulated API traffic. A nil *Metrics is a no-op, so wiring
// a registry stays optional.
type Metrics struct {
	requests         *prometheus.CounterVec
	injectedFailures prometheus.Counter
	duration         *prometheus.HistogramVec
}

func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "osprey",
			Subsystem: "mockapi",
			Name:      "requests_total",
			Help:      "Simulated API calls by operation and outcome.",
		}, []string{"operation", "outcome"}),
		injectedFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "osprey",
			Subsystem: "mockapi",
			Name:      "injected_failures_total",
			Help:      "Calls rejected by the network failure injector.",
		}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "osprey",
			Subsystem: "mockapi",
			Name:      "request_duration_seconds",
			Help:      "Wall time of simulated calls including artificial delay.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"operation"}),
	}
	if reg != nil {
		reg.MustRegister(m.requests, m.injectedFailures, m.duration)
	}
	return m
}

func (m *Metrics) observe(op, outcome string, seconds float64) {
	if m == nil {
		return
	}
	m.requests.WithLabelValues(op, outcome).Inc()
	m.duration.WithLabelValues(op).Observe(seconds)
}

func (m *Metrics) injected() {
	if m == nil {
		return
	}
	m.injectedFailures.Inc()
}
