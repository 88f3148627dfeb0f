package status

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/custodia-labs/mediasync/internal/core/domain"
	"github.com/custodia-labs/mediasync/internal/core/ports/driven"
)

var (
	runsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mediasync_runs_total",
			Help: "Total number of sync cycles by outcome.",
		},
		[]string{"outcome"},
	)

	runActive = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "mediasync_run_active",
			Help: "1 while a sync cycle is running, 0 otherwise.",
		},
	)

	itemsUploaded = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "mediasync_items_uploaded_total",
			Help: "Total number of media files uploaded.",
		},
	)

	runDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "mediasync_run_duration_seconds",
			Help:    "Duration of sync cycles in seconds.",
			Buckets: []float64{1, 5, 15, 60, 300, 900, 1800, 3600},
		},
	)
)

func init() {
	prometheus.MustRegister(runsTotal)
	prometheus.MustRegister(runActive)
	prometheus.MustRegister(itemsUploaded)
	prometheus.MustRegister(runDuration)

	// Pre-initialize outcome labels so they appear in /metrics
	for _, o := range []domain.Outcome{domain.OutcomeCompleted, domain.OutcomeCancelled, domain.OutcomeFailed} {
		runsTotal.WithLabelValues(string(o))
	}
}

// Ensure MetricsSink implements the interface.
var _ driven.StatusSink = MetricsSink{}

// MetricsSink records run events as Prometheus metrics on the default registry.
type MetricsSink struct{}

// NewMetricsSink creates a metrics sink.
func NewMetricsSink() MetricsSink {
	return MetricsSink{}
}

// Publish updates the run metrics.
func (MetricsSink) Publish(event domain.Event) {
	switch event.Kind {
	case domain.EventStarted:
		runActive.Set(1)
	case domain.EventCompleted, domain.EventCancelled, domain.EventFailed:
		runActive.Set(0)
		runsTotal.WithLabelValues(string(event.Kind)).Inc()
		itemsUploaded.Add(float64(event.Items))
		if !event.StartedAt.IsZero() {
			runDuration.Observe(event.At.Sub(event.StartedAt).Seconds())
		}
	}
}
