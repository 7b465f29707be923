package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "vodstream"

// Ingest outcomes recorded on IngestTotal.
const (
	OutcomeCompleted   = "completed"
	OutcomeValidation  = "validation_failed"
	OutcomeStorage     = "storage_failed"
	OutcomeTranscode   = "transcode_failed"
	OutcomePersistence = "persistence_failed"
)

// Metrics holds the pipeline collectors
type Metrics struct {
	IngestTotal       *prometheus.CounterVec
	TranscodeDuration *prometheus.HistogramVec
	TranscodesActive  prometheus.Gauge
	TranscodesQueued  prometheus.Gauge
	CleanupFailures   *prometheus.CounterVec
	JanitorRemoved    *prometheus.CounterVec
}

// New registers the pipeline collectors with reg
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		IngestTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "ingest_total",
			Help:      "Uploads processed, by outcome.",
		}, []string{"outcome"}),
		TranscodeDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "transcode_duration_seconds",
			Help:      "Wall time of ffmpeg runs.",
			Buckets:   prometheus.ExponentialBuckets(1, 2, 12),
		}, []string{"result"}),
		TranscodesActive: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "transcodes_active",
			Help:      "ffmpeg processes currently running.",
		}),
		TranscodesQueued: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "transcodes_queued",
			Help:      "Jobs waiting for a transcode slot.",
		}),
		CleanupFailures: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cleanup_failures_total",
			Help:      "Failed removals of staged sources or output directories.",
		}, []string{"kind"}),
		JanitorRemoved: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "janitor_removed_total",
			Help:      "Orphans removed by the janitor.",
		}, []string{"kind"}),
	}
}

// NewUnregistered returns collectors that are not exported anywhere.
func NewUnregistered() *Metrics {
	return New(prometheus.NewRegistry())
}
