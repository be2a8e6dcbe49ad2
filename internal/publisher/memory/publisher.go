// Package memory records completion events in process, for tests and for
// runs without a configured Pub/Sub project.
package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/citydesk/newspipe/internal/pipeline"
)

// Publisher accumulates completion events per topic. It accepts only
// pipeline.CompletionEvent payloads; anything else is a caller bug and is
// rejected rather than silently recorded.
type Publisher struct {
	mu     sync.RWMutex
	seq    int
	events map[string][]pipeline.CompletionEvent
}

// New returns an empty Publisher.
func New() *Publisher {
	return &Publisher{events: make(map[string][]pipeline.CompletionEvent)}
}

// Publish records the event under its topic and returns a local message ID.
func (p *Publisher) Publish(_ context.Context, topic string, payload any) (string, error) {
	event, ok := payload.(pipeline.CompletionEvent)
	if !ok {
		return "", fmt.Errorf("memory publisher: payload must be a completion event, got %T", payload)
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.seq++
	p.events[topic] = append(p.events[topic], event)
	return fmt.Sprintf("local-%d", p.seq), nil
}

// Events returns the completion events recorded for topic, in publish order.
func (p *Publisher) Events(topic string) []pipeline.CompletionEvent {
	p.mu.RLock()
	defer p.mu.RUnlock()
	out := make([]pipeline.CompletionEvent, len(p.events[topic]))
	copy(out, p.events[topic])
	return out
}

// Total returns the number of events recorded across all topics.
func (p *Publisher) Total() int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.seq
}
