package dispatch

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type metrics struct {
	executions *prometheus.CounterVec
	duration   *prometheus.HistogramVec
}

// newMetrics returns nil when reg is nil; a nil *metrics records nothing.
func newMetrics(reg prometheus.Registerer) *metrics {
	if reg == nil {
		return nil
	}
	f := promauto.With(reg)
	return &metrics{
		executions: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: "toolforge",
			Subsystem: "dispatch",
			Name:      "executions_total",
			Help:      "Tool executions by tool and outcome.",
		}, []string{"tool", "outcome"}),
		duration: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "toolforge",
			Subsystem: "dispatch",
			Name:      "execution_duration_seconds",
			Help:      "Wall-clock time of tool executions, including any build.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"tool"}),
	}
}

func (m *metrics) observe(tool Tool, err error, d time.Duration) {
	if m == nil {
		return
	}
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	m.executions.WithLabelValues(tool.String(), outcome).Inc()
	m.duration.WithLabelValues(tool.String()).Observe(d.Seconds())
}
