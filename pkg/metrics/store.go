package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// StoreMetrics records checkpoint latency and failures of the JSON store.
type StoreMetrics struct {
	duration *prometheus.HistogramVec
	failures prometheus.Counter
}

// NewStoreMetrics registers the store collectors on the provided registerer.
func NewStoreMetrics(reg prometheus.Registerer) *StoreMetrics {
	if reg == nil {
		return &StoreMetrics{}
	}
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "store_checkpoint_duration_seconds",
		Help:    "Duration of document checkpoints in seconds.",
		Buckets: []float64{.001, .0025, .005, .01, .025, .05, .1, .25, .5, 1},
	}, []string{"outcome"})
	failures := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "store_checkpoint_failures_total",
		Help: "Checkpoints that failed to reach disk.",
	})
	reg.MustRegister(duration, failures)
	return &StoreMetrics{
		duration: duration,
		failures: failures,
	}
}

// ObserveCheckpoint implements db.CheckpointObserver.
func (m *StoreMetrics) ObserveCheckpoint(duration time.Duration, err error) {
	if m == nil || m.duration == nil {
		return
	}
	outcome := "success"
	if err != nil {
		outcome = "failure"
		m.failures.Inc()
	}
	m.duration.WithLabelValues(outcome).Observe(duration.Seconds())
}
