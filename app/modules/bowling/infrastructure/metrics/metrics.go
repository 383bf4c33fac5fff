package bowlingmetrics

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "bowling"

// BowlingMetrics records service-level counters for the bowling module.
type BowlingMetrics interface {
	RecordOperationAttempt(ctx context.Context, operation string)
	RecordOperationSuccess(ctx context.Context, operation string)
	RecordOperationFailure(ctx context.Context, operation string)
	RecordOperationDuration(ctx context.Context, operation string, duration time.Duration)

	RecordGameStarted(ctx context.Context)
	RecordRollRecorded(ctx context.Context, pins int)
	RecordRollRejected(ctx context.Context, reason string)
	RecordGameCompleted(ctx context.Context, score int)
}

// PrometheusMetrics implements BowlingMetrics on a Prometheus registry.
type PrometheusMetrics struct {
	operations    *prometheus.CounterVec
	durations     *prometheus.HistogramVec
	gamesStarted  prometheus.Counter
	rollsRecorded *prometheus.CounterVec
	rollsRejected *prometheus.CounterVec
	gamesDone     prometheus.Counter
	finalScores   prometheus.Histogram
}

// NewPrometheus registers the bowling collectors on reg.
func NewPrometheus(reg prometheus.Registerer) *PrometheusMetrics {
	factory := promauto.With(reg)
	return &PrometheusMetrics{
		operations: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "operations_total",
			Help:      "Service operations by name and outcome.",
		}, []string{"operation", "outcome"}),
		durations: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "operation_duration_seconds",
			Help:      "Service operation latency.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"operation"}),
		gamesStarted: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "games_started_total",
			Help:      "Games created.",
		}),
		rollsRecorded: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rolls_recorded_total",
			Help:      "Accepted rolls by kind.",
		}, []string{"kind"}),
		rollsRejected: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rolls_rejected_total",
			Help:      "Rejected rolls by reason.",
		}, []string{"reason"}),
		gamesDone: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "games_completed_total",
			Help:      "Games that reached the end of the tenth frame.",
		}),
		finalScores: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "final_score",
			Help:      "Distribution of completed game scores.",
			Buckets:   prometheus.LinearBuckets(0, 30, 11),
		}),
	}
}

func (m *PrometheusMetrics) RecordOperationAttempt(_ context.Context, operation string) {
	m.operations.WithLabelValues(operation, "attempt").Inc()
}

func (m *PrometheusMetrics) RecordOperationSuccess(_ context.Context, operation string) {
	m.operations.WithLabelValues(operation, "success").Inc()
}

func (m *PrometheusMetrics) RecordOperationFailure(_ context.Context, operation string) {
	m.operations.WithLabelValues(operation, "failure").Inc()
}

func (m *PrometheusMetrics) RecordOperationDuration(_ context.Context, operation string, duration time.Duration) {
	m.durations.WithLabelValues(operation).Observe(duration.Seconds())
}

func (m *PrometheusMetrics) RecordGameStarted(_ context.Context) {
	m.gamesStarted.Inc()
}

func (m *PrometheusMetrics) RecordRollRecorded(_ context.Context, pins int) {
	kind := "pins"
	switch pins {
	case 0:
		kind = "miss"
	case 10:
		kind = "strike"
	}
	m.rollsRecorded.WithLabelValues(kind).Inc()
}

func (m *PrometheusMetrics) RecordRollRejected(_ context.Context, reason string) {
	m.rollsRejected.WithLabelValues(reason).Inc()
}

func (m *PrometheusMetrics) RecordGameCompleted(_ context.Context, score int) {
	m.gamesDone.Inc()
	m.finalScores.Observe(float64(score))
}

// NoopMetrics discards every measurement.
type NoopMetrics struct{}

// NewNoop returns metrics that record nothing.
func NewNoop() BowlingMetrics { return NoopMetrics{} }

func (NoopMetrics) RecordOperationAttempt(context.Context, string)                 {}
func (NoopMetrics) RecordOperationSuccess(context.Context, string)                 {}
func (NoopMetrics) RecordOperationFailure(context.Context, string)                 {}
func (NoopMetrics) RecordOperationDuration(context.Context, string, time.Duration) {}
func (NoopMetrics) RecordGameStarted(context.Context)                              {}
func (NoopMetrics) RecordRollRecorded(context.Context, int)                        {}
func (NoopMetrics) RecordRollRejected(context.Context, string)                     {}
func (NoopMetrics) RecordGameCompleted(context.Context, int)                       {}
