// Package metrics exposes Prometheus counters for the quiz engine.
package metrics

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics groups the engine's collectors.
type Metrics struct {
	Answers         *prometheus.CounterVec
	StorageFailures *prometheus.CounterVec
	LevelsCompleted *prometheus.CounterVec
	Resets          prometheus.Counter
}

// New registers the collectors on reg. A nil reg leaves them unregistered.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		Answers: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "quiz",
			Name:      "answers_total",
			Help:      "Submitted answers by level and correctness.",
		}, []string{"level", "correct"}),
		StorageFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "quiz",
			Name:      "storage_failures_total",
			Help:      "Progress storage operations that failed and fell back to memory.",
		}, []string{"op"}),
		LevelsCompleted: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "quiz",
			Name:      "levels_fully_answered_total",
			Help:      "Levels whose five questions became fully answered.",
		}, []string{"level"}),
		Resets: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "quiz",
			Name:      "resets_total",
			Help:      "Explicit progress resets.",
		}),
	}
	if reg != nil {
		reg.MustRegister(m.Answers, m.StorageFailures, m.LevelsCompleted, m.Resets)
	}
	return m
}

// ObserveAnswer counts one submission.
func (m *Metrics) ObserveAnswer(level string, correct bool) {
	if m == nil {
		return
	}
	m.Answers.WithLabelValues(level, strconv.FormatBool(correct)).Inc()
}

// ObserveStorageFailure counts a failed load, save or clear.
func (m *Metrics) ObserveStorageFailure(op string) {
	if m == nil {
		return
	}
	m.StorageFailures.WithLabelValues(op).Inc()
}

// ObserveLevelAnswered counts a level that just became fully answered.
func (m *Metrics) ObserveLevelAnswered(level string) {
	if m == nil {
		return
	}
	m.LevelsCompleted.WithLabelValues(level).Inc()
}

// ObserveReset counts a reset.
func (m *Metrics) ObserveReset() {
	if m == nil {
		return
	}
	m.Resets.Inc()
}
