package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	once sync.Once

	StageLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "nqflow",
			Subsystem: "pipeline",
			Name:      "stage_seconds",
			Help:      "Latency of pipeline stages",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"stage"},
	)

	StageErrors = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "nqflow",
			Subsystem: "pipeline",
			Name:      "errors_total",
			Help:      "Errors by pipeline stage",
		},
		[]string{"stage"},
	)

	RunsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "nqflow",
			Subsystem: "pipeline",
			Name:      "runs_total",
			Help:      "Pipeline runs by outcome",
		},
		[]string{"outcome"},
	)
)

func Register() {
	once.Do(func() {
		prometheus.MustRegister(StageLatency, StageErrors, RunsTotal)
	})
}
