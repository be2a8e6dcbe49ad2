// Package memory provides candidate queue implementations for local
// development and tests. Production runs consume the platform's discovery
// queue through the same interface.
package memory

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/citydesk/newspipe/internal/pipeline"
)

// Queue is a bounded in-memory candidate queue with context-aware operations
// and status tracking.
type Queue struct {
	ch chan pipeline.CandidateLink

	mu       sync.Mutex
	statuses map[string]pipeline.LinkStatus
	closed   bool
}

// NewQueue constructs a queue with the provided capacity.
func NewQueue(capacity int) *Queue {
	return &Queue{
		ch:       make(chan pipeline.CandidateLink, capacity),
		statuses: make(map[string]pipeline.LinkStatus),
	}
}

// Enqueue pushes a candidate or returns when the context ends.
func (q *Queue) Enqueue(ctx context.Context, link pipeline.CandidateLink) error {
	select {
	case <-ctx.Done():
		return fmt.Errorf("enqueue canceled: %w", ctx.Err())
	case q.ch <- link:
		q.mu.Lock()
		q.statuses[link.ID] = link.Status
		q.mu.Unlock()
		return nil
	}
}

// Dequeue pops the next candidate, respecting context cancellation.
func (q *Queue) Dequeue(ctx context.Context) (pipeline.CandidateLink, error) {
	select {
	case <-ctx.Done():
		return pipeline.CandidateLink{}, fmt.Errorf("dequeue canceled: %w", ctx.Err())
	case link, ok := <-q.ch:
		if !ok {
			return pipeline.CandidateLink{}, errors.New("queue closed")
		}
		return link, nil
	}
}

// UpdateStatus records the candidate's new lifecycle state.
func (q *Queue) UpdateStatus(_ context.Context, id string, status pipeline.LinkStatus) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	if _, ok := q.statuses[id]; !ok {
		return fmt.Errorf("unknown candidate %s", id)
	}
	q.statuses[id] = status
	return nil
}

// Status returns the recorded state for a candidate (test helper).
func (q *Queue) Status(id string) (pipeline.LinkStatus, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	s, ok := q.statuses[id]
	return s, ok
}

// Close closes the underlying channel for shutdown.
func (q *Queue) Close() {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.closed {
		return
	}
	close(q.ch)
	q.closed = true
}
