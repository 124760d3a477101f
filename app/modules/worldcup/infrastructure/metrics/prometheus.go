package worldcupmetrics

import (
	"context"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "worldcup"

// PrometheusMetrics implements Metrics with Prometheus collectors.
type PrometheusMetrics struct {
	operationAttempts   *prometheus.CounterVec
	operationSuccesses  *prometheus.CounterVec
	operationFailures   *prometheus.CounterVec
	operationDuration   *prometheus.HistogramVec
	tournamentsStarted  *prometheus.CounterVec
	tournamentsFinished *prometheus.CounterVec
	matchesDecided      *prometheus.CounterVec
	ratingConflicts     prometheus.Counter
	eventsConsumed      *prometheus.CounterVec
}

// NewPrometheusMetrics creates the collectors and registers them with reg.
func NewPrometheusMetrics(reg prometheus.Registerer) (*PrometheusMetrics, error) {
	opLabels := []string{"operation", "service"}
	m := &PrometheusMetrics{
		operationAttempts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Name: "operation_attempts_total",
			Help: "Service operations started.",
		}, opLabels),
		operationSuccesses: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Name: "operation_success_total",
			Help: "Service operations that returned without an infrastructure error.",
		}, opLabels),
		operationFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Name: "operation_failure_total",
			Help: "Service operations that failed or panicked.",
		}, opLabels),
		operationDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace, Name: "operation_duration_seconds",
			Help:    "Service operation latency.",
			Buckets: prometheus.DefBuckets,
		}, opLabels),
		tournamentsStarted: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Name: "tournaments_started_total",
			Help: "Tournaments started by bracket size.",
		}, []string{"size"}),
		tournamentsFinished: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Name: "tournaments_completed_total",
			Help: "Tournaments played to a winner by bracket size.",
		}, []string{"size"}),
		matchesDecided: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Name: "matches_decided_total",
			Help: "Decided matches, split by whether the rating update was persisted.",
		}, []string{"rating_applied"}),
		ratingConflicts: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace, Name: "rating_conflicts_total",
			Help: "Rating writes rejected by the version check.",
		}),
		eventsConsumed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Name: "events_consumed_total",
			Help: "Worldcup events handled by the event router.",
		}, []string{"topic"}),
	}

	for _, c := range []prometheus.Collector{
		m.operationAttempts, m.operationSuccesses, m.operationFailures, m.operationDuration,
		m.tournamentsStarted, m.tournamentsFinished, m.matchesDecided, m.ratingConflicts, m.eventsConsumed,
	} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

func (m *PrometheusMetrics) RecordOperationAttempt(_ context.Context, operation, service string) {
	m.operationAttempts.WithLabelValues(operation, service).Inc()
}

func (m *PrometheusMetrics) RecordOperationSuccess(_ context.Context, operation, service string) {
	m.operationSuccesses.WithLabelValues(operation, service).Inc()
}

func (m *PrometheusMetrics) RecordOperationFailure(_ context.Context, operation, service string) {
	m.operationFailures.WithLabelValues(operation, service).Inc()
}

func (m *PrometheusMetrics) RecordOperationDuration(_ context.Context, operation, service string, duration time.Duration) {
	m.operationDuration.WithLabelValues(operation, service).Observe(duration.Seconds())
}

func (m *PrometheusMetrics) RecordTournamentStarted(_ context.Context, size int) {
	m.tournamentsStarted.WithLabelValues(strconv.Itoa(size)).Inc()
}

func (m *PrometheusMetrics) RecordMatchDecided(_ context.Context, ratingApplied bool) {
	m.matchesDecided.WithLabelValues(strconv.FormatBool(ratingApplied)).Inc()
}

func (m *PrometheusMetrics) RecordTournamentCompleted(_ context.Context, size int) {
	m.tournamentsFinished.WithLabelValues(strconv.Itoa(size)).Inc()
}

func (m *PrometheusMetrics) RecordRatingConflict(context.Context) {
	m.ratingConflicts.Inc()
}

func (m *PrometheusMetrics) RecordEventConsumed(_ context.Context, topic string) {
	m.eventsConsumed.WithLabelValues(topic).Inc()
}

var _ Metrics = (*PrometheusMetrics)(nil)
