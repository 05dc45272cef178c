// Package obsmetrics provides Prometheus metrics collection for the
// run coordinator and decision pipeline.
package obsmetrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds every collector the benchmark exposes.
type Metrics struct {
	DecisionsTotal   *prometheus.CounterVec
	DecisionDuration *prometheus.HistogramVec
	RetriesTotal     *prometheus.CounterVec
	FallbacksTotal   *prometheus.CounterVec

	TurnsPlayedTotal prometheus.Counter
	RunsStartedTotal prometheus.Counter
	RunsFinishedTotal *prometheus.CounterVec

	SubscribersConnected prometheus.Gauge
	SubscriberDropsTotal prometheus.Counter

	TransportErrorsTotal *prometheus.CounterVec
}

// New builds a Metrics instance registered against reg. Pass nil to
// use prometheus.DefaultRegisterer.
func New(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}

	m := &Metrics{
		DecisionsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "monopolybench_decisions_total",
				Help: "Total number of decisions resolved by the pipeline, by decision type.",
			},
			[]string{"decision_type"},
		),
		DecisionDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "monopolybench_decision_duration_seconds",
				Help:    "Wall-clock time to resolve one decision, including retries.",
				Buckets: []float64{.05, .1, .25, .5, 1, 2, 5, 10, 20, 40},
			},
			[]string{"decision_type"},
		),
		RetriesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "monopolybench_decision_retries_total",
				Help: "Total number of decisions that needed the single validation-error retry.",
			},
			[]string{"decision_type"},
		),
		FallbacksTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "monopolybench_decision_fallbacks_total",
				Help: "Total number of decisions resolved via the deterministic fallback policy, by reason.",
			},
			[]string{"decision_type", "reason"},
		),
		TurnsPlayedTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "monopolybench_turns_played_total",
				Help: "Total number of turns completed across all runs.",
			},
		),
		RunsStartedTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "monopolybench_runs_started_total",
				Help: "Total number of runs started.",
			},
		),
		RunsFinishedTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "monopolybench_runs_finished_total",
				Help: "Total number of runs finished, by stop reason.",
			},
			[]string{"stop_reason"},
		),
		SubscribersConnected: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "monopolybench_subscribers_connected",
				Help: "Current number of live broadcast subscribers.",
			},
		),
		SubscriberDropsTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "monopolybench_subscriber_drops_total",
				Help: "Total number of subscriber sends dropped because a subscriber's queue was full.",
			},
		),
		TransportErrorsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "monopolybench_transport_errors_total",
				Help: "Total number of model transport errors, by kind.",
			},
			[]string{"kind"},
		),
	}

	reg.MustRegister(
		m.DecisionsTotal,
		m.DecisionDuration,
		m.RetriesTotal,
		m.FallbacksTotal,
		m.TurnsPlayedTotal,
		m.RunsStartedTotal,
		m.RunsFinishedTotal,
		m.SubscribersConnected,
		m.SubscriberDropsTotal,
		m.TransportErrorsTotal,
	)

	return m
}

// RecordDecision records one resolved decision's outcome.
func (m *Metrics) RecordDecision(decisionType string, seconds float64, retryUsed, fallbackUsed bool, fallbackReason string) {
	m.DecisionsTotal.WithLabelValues(decisionType).Inc()
	m.DecisionDuration.WithLabelValues(decisionType).Observe(seconds)
	if retryUsed {
		m.RetriesTotal.WithLabelValues(decisionType).Inc()
	}
	if fallbackUsed {
		m.FallbacksTotal.WithLabelValues(decisionType, fallbackReason).Inc()
	}
}

// RecordRunStarted increments the runs-started counter.
func (m *Metrics) RecordRunStarted() {
	m.RunsStartedTotal.Inc()
}

// RecordRunFinished increments the runs-finished counter for reason.
func (m *Metrics) RecordRunFinished(reason string) {
	m.RunsFinishedTotal.WithLabelValues(reason).Inc()
}

// RecordTurnPlayed increments the turns-played counter.
func (m *Metrics) RecordTurnPlayed() {
	m.TurnsPlayedTotal.Inc()
}

// RecordTransportError increments the transport-errors counter for kind.
func (m *Metrics) RecordTransportError(kind string) {
	m.TransportErrorsTotal.WithLabelValues(kind).Inc()
}

// SetSubscribersConnected sets the live-subscriber gauge.
func (m *Metrics) SetSubscribersConnected(count int) {
	m.SubscribersConnected.Set(float64(count))
}

// AddSubscriberDrops adds n to the subscriber-drops counter.
func (m *Metrics) AddSubscriberDrops(n int) {
	if n <= 0 {
		return
	}
	m.SubscriberDropsTotal.Add(float64(n))
}
