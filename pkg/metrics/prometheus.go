package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Recorder implements domain.repository.Metrics using Prometheus.
type Recorder struct {
	barsIngested *prometheus.CounterVec
	invalidBars  *prometheus.CounterVec
	signals      *prometheus.CounterVec
	errorsTotal  *prometheus.CounterVec
	lastPrice    *prometheus.GaugeVec
	latency      *prometheus.HistogramVec
}

// New creates a new Prometheus metrics recorder.
func New() *Recorder {
	return &Recorder{
		barsIngested: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "nqflow_bars_ingested_total",
				Help: "Total number of minute bars accepted for storage",
			},
			[]string{"source"},
		),
		invalidBars: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "nqflow_invalid_bars_total",
				Help: "Bars rejected by OHLC validation",
			},
			[]string{"reason"},
		),
		signals: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "nqflow_signals_emitted_total",
				Help: "Signals emitted by the pipeline",
			},
			[]string{"direction"},
		),
		errorsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "nqflow_errors_total",
				Help: "Total number of errors encountered",
			},
			[]string{"type"},
		),
		lastPrice: promauto.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "nqflow_last_price",
				Help: "Last observed close price for a contract",
			},
			[]string{"symbol"},
		),
		latency: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "nqflow_operation_duration_seconds",
				Help:    "Duration of operations in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation"},
		),
	}
}

// RecordBarsIngested counts bars accepted from a source backend.
func (r *Recorder) RecordBarsIngested(source string, n int) {
	r.barsIngested.WithLabelValues(source).Add(float64(n))
}

// RecordInvalidBar counts a rejected bar by reason.
func (r *Recorder) RecordInvalidBar(reason string) {
	r.invalidBars.WithLabelValues(reason).Inc()
}

// RecordSignal counts an emitted signal by direction.
func (r *Recorder) RecordSignal(direction string) {
	r.signals.WithLabelValues(direction).Inc()
}

// RecordError records an error occurrence.
func (r *Recorder) RecordError(kind string) {
	r.errorsTotal.WithLabelValues(kind).Inc()
}

// RecordLastPrice records the last close price for a symbol.
func (r *Recorder) RecordLastPrice(symbol string, price float64) {
	r.lastPrice.WithLabelValues(symbol).Set(price)
}

// RecordLatency records operation latency in seconds.
func (r *Recorder) RecordLatency(op string, seconds float64) {
	r.latency.WithLabelValues(op).Observe(seconds)
}
