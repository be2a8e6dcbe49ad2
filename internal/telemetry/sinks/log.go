// Package sinks contains Sink implementations for the telemetry hub.
package sinks

import (
	"context"

	"go.uber.org/zap"

	"github.com/citydesk/newspipe/internal/telemetry"
)

// LogSink emits structured logs for each telemetry event. Useful during
// development or audits where a durable store is unavailable.
type LogSink struct {
	logger *zap.Logger
}

// NewLogSink wires a Zap logger to the sink interface.
func NewLogSink(logger *zap.Logger) *LogSink {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LogSink{logger: logger}
}

// Consume logs each event in the batch using structured fields.
func (s *LogSink) Consume(_ context.Context, batch []telemetry.Event) error {
	for _, evt := range batch {
		s.logger.Info("pipeline event",
			zap.String("candidate_id", evt.CandidateID),
			zap.String("stage", string(evt.Stage)),
			zap.String("url", evt.URL),
			zap.String("outcome", string(evt.Outcome)),
			zap.Duration("dur", evt.Dur),
			zap.String("detail", evt.Detail),
		)
	}
	return nil
}

// Close implements the Sink interface; it performs no action.
func (s *LogSink) Close(context.Context) error {
	return nil
}
