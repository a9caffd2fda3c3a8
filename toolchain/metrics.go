package toolchain

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics records build cache activity. A nil *Metrics is a no-op.
type Metrics struct {
	builds   *prometheus.CounterVec
	duration *prometheus.HistogramVec
	lookups  *prometheus.CounterVec
}

// NewMetrics registers the cache collectors with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		builds: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: "toolforge",
			Subsystem: "toolchain",
			Name:      "builds_total",
			Help:      "Toolchain builds by outcome.",
		}, []string{"toolchain", "outcome"}),
		duration: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "toolforge",
			Subsystem: "toolchain",
			Name:      "build_duration_seconds",
			Help:      "Wall-clock time of toolchain builds.",
			Buckets:   []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		}, []string{"toolchain"}),
		lookups: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: "toolforge",
			Subsystem: "toolchain",
			Name:      "lookups_total",
			Help:      "Executable lookups by cached state.",
		}, []string{"toolchain", "result"}),
	}
}

func (m *Metrics) observeBuild(name string, err error, d time.Duration) {
	if m == nil {
		return
	}
	outcome := "success"
	if err != nil {
		outcome = "failure"
	}
	m.builds.WithLabelValues(name, outcome).Inc()
	m.duration.WithLabelValues(name).Observe(d.Seconds())
}

func (m *Metrics) observeLookup(name, result string) {
	if m == nil {
		return
	}
	m.lookups.WithLabelValues(name, result).Inc()
}
