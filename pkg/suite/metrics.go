package suite

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/aretw0/parley/pkg/domain"
)

// Metrics exposes run outcomes to Prometheus.
type Metrics struct {
	testsTotal  *prometheus.CounterVec
	runsTotal   prometheus.Counter
	runDuration prometheus.Histogram
}

// NewMetrics registers the suite collectors on the given registerer.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		testsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "parley",
			Name:      "tests_total",
			Help:      "Test case results by status.",
		}, []string{"status"}),
		runsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "parley",
			Name:      "runs_total",
			Help:      "Completed test runs.",
		}),
		runDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "parley",
			Name:      "run_duration_seconds",
			Help:      "Wall-clock duration of a full test run.",
			Buckets:   prometheus.ExponentialBuckets(0.5, 2, 12),
		}),
	}
	reg.MustRegister(m.testsTotal, m.runsTotal, m.runDuration)
	return m
}

// ObserveRun records a sealed run.
func (m *Metrics) ObserveRun(run *domain.TestRun) {
	for _, res := range run.Results {
		m.testsTotal.WithLabelValues(res.Status).Inc()
	}
	m.runsTotal.Inc()
	m.runDuration.Observe(run.Duration.Seconds())
}
