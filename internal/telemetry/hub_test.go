package telemetry

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// stubSink records consumed batches.
type stubSink struct {
	mu      sync.Mutex
	batches [][]Event
	closed  bool
}

func (s *stubSink) Consume(_ context.Context, batch []Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.batches = append(s.batches, append([]Event(nil), batch...))
	return nil
}

func (s *stubSink) Close(context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}

func (s *stubSink) Batches() [][]Event {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([][]Event, len(s.batches))
	copy(out, s.batches)
	return out
}

func (s *stubSink) Closed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

func sampleEvent() Event {
	return Event{
		CandidateID: "c1",
		TS:          time.Now(),
		Stage:       StageExtract,
		Outcome:     OutcomeOK,
	}
}

func TestHubBatchBySize(t *testing.T) {
	t.Parallel()

	sink := &stubSink{}
	hub := NewHub(Config{
		BufferSize:     8,
		MaxBatchEvents: 2,
		MaxBatchWait:   time.Minute,
	}, sink)
	defer func() {
		require.NoError(t, hub.Close(context.Background()))
	}()

	hub.Emit(sampleEvent())
	hub.Emit(sampleEvent())
	require.Eventually(t, func() bool {
		batches := sink.Batches()
		return len(batches) == 1 && len(batches[0]) == 2
	}, time.Second, 10*time.Millisecond)
}

func TestHubBatchByTimer(t *testing.T) {
	t.Parallel()

	sink := &stubSink{}
	hub := NewHub(Config{
		BufferSize:     4,
		MaxBatchEvents: 10,
		MaxBatchWait:   25 * time.Millisecond,
	}, sink)
	defer func() {
		require.NoError(t, hub.Close(context.Background()))
	}()

	hub.Emit(sampleEvent())
	require.Eventually(t, func() bool {
		return len(sink.Batches()) == 1
	}, time.Second, 5*time.Millisecond)
}

func TestHubDropsInvalidEvents(t *testing.T) {
	t.Parallel()

	sink := &stubSink{}
	hub := NewHub(Config{MaxBatchWait: 10 * time.Millisecond}, sink)
	defer func() {
		require.NoError(t, hub.Close(context.Background()))
	}()

	hub.Emit(Event{}) // fails validation
	hub.Emit(sampleEvent())
	require.Eventually(t, func() bool {
		batches := sink.Batches()
		return len(batches) == 1 && len(batches[0]) == 1
	}, time.Second, 5*time.Millisecond)
}

func TestHubNeverBlocksUnderBackpressure(t *testing.T) {
	t.Parallel()

	// A full buffer with a stopped consumer must drop, not block.
	hub := &Hub{
		cfg:    Config{},
		events: make(chan Event),
		logger: zap.NewNop(),
	}
	start := time.Now()
	hub.Emit(sampleEvent())
	require.Less(t, time.Since(start), 50*time.Millisecond)
	require.EqualValues(t, 1, hub.Dropped())
}

func TestHubCloseDrainsAndClosesSinks(t *testing.T) {
	t.Parallel()

	sink := &stubSink{}
	hub := NewHub(Config{
		BufferSize:     64,
		MaxBatchEvents: 100,
		MaxBatchWait:   time.Minute,
	}, sink)

	for i := 0; i < 10; i++ {
		hub.Emit(sampleEvent())
	}
	require.NoError(t, hub.Close(context.Background()))

	total := 0
	for _, batch := range sink.Batches() {
		total += len(batch)
	}
	require.Equal(t, 10, total)
	require.True(t, sink.Closed())

	// Emit after close is a no-op.
	hub.Emit(sampleEvent())
	require.NoError(t, hub.Close(context.Background()))
}
