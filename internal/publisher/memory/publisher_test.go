package memory

import (
	"context"
	"testing"

	"github.com/citydesk/newspipe/internal/pipeline"
)

func TestPublisherRecordsEventsPerTopic(t *testing.T) {
	t.Parallel()

	p := New()
	ctx := context.Background()

	id1, err := p.Publish(ctx, "article-events", pipeline.CompletionEvent{ArticleID: "a1", Completeness: 0.75})
	if err != nil {
		t.Fatalf("Publish() error = %v", err)
	}
	id2, err := p.Publish(ctx, "article-events", pipeline.CompletionEvent{ArticleID: "a2", Status: pipeline.ArticleStatusWire})
	if err != nil {
		t.Fatalf("Publish() error = %v", err)
	}
	if id1 == id2 {
		t.Fatalf("message ids must be distinct, got %q twice", id1)
	}
	if _, err := p.Publish(ctx, "audit-events", pipeline.CompletionEvent{ArticleID: "a3"}); err != nil {
		t.Fatalf("Publish() error = %v", err)
	}

	events := p.Events("article-events")
	if len(events) != 2 {
		t.Fatalf("expected 2 events, got %d", len(events))
	}
	if events[0].ArticleID != "a1" || events[1].ArticleID != "a2" {
		t.Fatalf("events out of publish order: %+v", events)
	}
	if events[1].Status != pipeline.ArticleStatusWire {
		t.Fatalf("unexpected status: %+v", events[1])
	}
	if p.Total() != 3 {
		t.Fatalf("Total() = %d, want 3", p.Total())
	}
}

func TestPublisherRejectsForeignPayload(t *testing.T) {
	t.Parallel()

	p := New()
	if _, err := p.Publish(context.Background(), "article-events", map[string]any{"article_id": "a1"}); err == nil {
		t.Fatal("expected error for non-event payload")
	}
	if len(p.Events("article-events")) != 0 {
		t.Fatal("rejected payload must not be recorded")
	}
}
