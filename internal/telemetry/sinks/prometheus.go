package sinks

import (
	"context"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/citydesk/newspipe/internal/telemetry"
)

// PrometheusSink exports pipeline telemetry via Prometheus. It owns the
// per-stage outcome counters and latency histograms.
type PrometheusSink struct {
	stageOutcomes *prometheus.CounterVec
	stageDuration *prometheus.HistogramVec
	candidates    *prometheus.CounterVec
}

// NewPrometheusSink registers the collectors against the provided registry.
func NewPrometheusSink(reg prometheus.Registerer) (*PrometheusSink, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	s := &PrometheusSink{
		stageOutcomes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "newspipe_stage_outcomes_total",
			Help: "Stage completions partitioned by stage and outcome.",
		}, []string{"stage", "outcome"}),
		stageDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "newspipe_stage_duration_seconds",
			Help:    "Stage latency partitioned by stage.",
			Buckets: []float64{0.001, 0.01, 0.1, 0.5, 1, 5, 15, 30, 60},
		}, []string{"stage"}),
		candidates: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "newspipe_candidates_total",
			Help: "Candidates finished partitioned by terminal outcome.",
		}, []string{"outcome"}),
	}
	for _, collector := range []prometheus.Collector{
		s.stageOutcomes,
		s.stageDuration,
		s.candidates,
	} {
		if err := reg.Register(collector); err != nil {
			return nil, fmt.Errorf("register telemetry collector: %w", err)
		}
	}
	return s, nil
}

// Consume updates the Prometheus collectors using the provided batch. It is
// safe for concurrent use by multiple goroutines.
func (s *PrometheusSink) Consume(_ context.Context, batch []telemetry.Event) error {
	for _, evt := range batch {
		s.stageOutcomes.WithLabelValues(string(evt.Stage), string(evt.Outcome)).Inc()
		if evt.Dur > 0 {
			s.stageDuration.WithLabelValues(string(evt.Stage)).Observe(evt.Dur.Seconds())
		}
		if evt.Stage == telemetry.StageDone {
			s.candidates.WithLabelValues(string(evt.Outcome)).Inc()
		}
	}
	return nil
}

// Close implements the Sink interface; it performs no action.
func (s *PrometheusSink) Close(context.Context) error {
	return nil
}
