package sinks

import (
	"context"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"

	"github.com/citydesk/newspipe/internal/telemetry"
)

func TestPrometheusSinkConsume(t *testing.T) {
	t.Parallel()

	reg := prometheus.NewRegistry()
	sink, err := NewPrometheusSink(reg)
	require.NoError(t, err)

	batch := []telemetry.Event{
		{CandidateID: "c1", TS: time.Now(), Stage: telemetry.StageFetch, Outcome: telemetry.OutcomeOK, Dur: 120 * time.Millisecond},
		{CandidateID: "c1", TS: time.Now(), Stage: telemetry.StageExtract, Outcome: telemetry.OutcomeOK, Dur: 40 * time.Millisecond},
		{CandidateID: "c1", TS: time.Now(), Stage: telemetry.StageDone, Outcome: telemetry.OutcomeOK},
		{CandidateID: "c2", TS: time.Now(), Stage: telemetry.StageFetch, Outcome: telemetry.OutcomeBlocked},
		{CandidateID: "c2", TS: time.Now(), Stage: telemetry.StageDone, Outcome: telemetry.OutcomeError},
	}
	require.NoError(t, sink.Consume(context.Background(), batch))

	require.Equal(t, 1.0, testutil.ToFloat64(sink.stageOutcomes.WithLabelValues("FETCH", "ok")))
	require.Equal(t, 1.0, testutil.ToFloat64(sink.stageOutcomes.WithLabelValues("FETCH", "blocked")))
	require.Equal(t, 1.0, testutil.ToFloat64(sink.candidates.WithLabelValues("ok")))
	require.Equal(t, 1.0, testutil.ToFloat64(sink.candidates.WithLabelValues("error")))

	require.NoError(t, sink.Close(context.Background()))
}

func TestPrometheusSinkDoubleRegistrationFails(t *testing.T) {
	t.Parallel()

	reg := prometheus.NewRegistry()
	_, err := NewPrometheusSink(reg)
	require.NoError(t, err)
	_, err = NewPrometheusSink(reg)
	require.Error(t, err)
}
