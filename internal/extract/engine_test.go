package extract

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/citydesk/newspipe/internal/pipeline"
)

// fakeStrategy returns canned fields and records invocations.
type fakeStrategy struct {
	name   string
	fields PartialFields
	err    error
	calls  int
}

func (s *fakeStrategy) Name() string { return s.name }

func (s *fakeStrategy) Attempt(_ context.Context, _ Document) (PartialFields, error) {
	s.calls++
	if s.err != nil {
		return PartialFields{}, s.err
	}
	return s.fields, nil
}

func fetched(body string) pipeline.FetchResult {
	return pipeline.FetchResult{Body: []byte(body), FinalURL: "https://example-herald.com/news/story"}
}

func TestEngineMergeNeverOverwrites(t *testing.T) {
	t.Parallel()

	first := &fakeStrategy{name: "one", fields: PartialFields{Title: "Original Title"}}
	second := &fakeStrategy{name: "two", fields: PartialFields{Title: "Competing Title", Author: "Dana Whitfield"}}

	engine := NewEngine(EngineConfig{}, []Strategy{first, second}, nil, nil)
	result, err := engine.Extract(context.Background(), fetched("<html></html>"))
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}
	if result.Title != "Original Title" {
		t.Fatalf("earlier strategy's field was overwritten: %q", result.Title)
	}
	if result.Author != "Dana Whitfield" {
		t.Fatalf("later strategy should fill the gap: %q", result.Author)
	}
	if result.FieldProvenance["title"] != "one" || result.FieldProvenance["author"] != "two" {
		t.Fatalf("unexpected provenance: %v", result.FieldProvenance)
	}
}

func TestEngineCompletenessRecomputed(t *testing.T) {
	t.Parallel()

	s := &fakeStrategy{name: "one", fields: PartialFields{
		Title:  "T",
		Author: "A",
	}}
	engine := NewEngine(EngineConfig{}, []Strategy{s}, nil, nil)
	result, err := engine.Extract(context.Background(), fetched(""))
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}
	if got := result.Completeness(); got != 0.5 {
		t.Fatalf("expected completeness 0.5, got %v", got)
	}
}

func TestEngineLastResortOnlyWhenGapsRemain(t *testing.T) {
	t.Parallel()

	full := PartialFields{
		Title:       "T",
		Author:      "A",
		Content:     "C",
		PublishDate: time.Date(2026, 8, 12, 0, 0, 0, 0, time.UTC),
	}
	primary := &fakeStrategy{name: "one", fields: full}
	lastResort := &fakeStrategy{name: "rendered", fields: full}

	engine := NewEngine(EngineConfig{}, []Strategy{primary}, lastResort, nil)
	if _, err := engine.Extract(context.Background(), fetched("")); err != nil {
		t.Fatalf("Extract() error = %v", err)
	}
	if lastResort.calls != 0 {
		t.Fatal("last-resort strategy should not run when all fields are filled")
	}

	// Leave the author empty and the last resort must be consulted.
	partial := full
	partial.Author = ""
	primary2 := &fakeStrategy{name: "one", fields: partial}
	lastResort2 := &fakeStrategy{name: "rendered", fields: PartialFields{Author: "A"}}
	engine2 := NewEngine(EngineConfig{}, []Strategy{primary2}, lastResort2, nil)
	result, err := engine2.Extract(context.Background(), fetched(""))
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}
	if lastResort2.calls != 1 {
		t.Fatalf("last-resort strategy should run once, ran %d times", lastResort2.calls)
	}
	if result.Author != "A" || result.FieldProvenance["author"] != "rendered" {
		t.Fatalf("last resort should fill the gap: %+v", result)
	}
}

func TestEngineStrategyErrorIsNotFatal(t *testing.T) {
	t.Parallel()

	failing := &fakeStrategy{name: "one", err: errors.New("parse exploded")}
	working := &fakeStrategy{name: "two", fields: PartialFields{Title: "T"}}

	engine := NewEngine(EngineConfig{}, []Strategy{failing, working}, nil, nil)
	result, err := engine.Extract(context.Background(), fetched(""))
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}
	if result.Title != "T" {
		t.Fatalf("later strategy should still run after an error: %+v", result)
	}
	if len(result.MethodsUsed) != 2 {
		t.Fatalf("both attempts should be recorded: %v", result.MethodsUsed)
	}
}

func TestEngineAllEmptyIsNoContentError(t *testing.T) {
	t.Parallel()

	engine := NewEngine(EngineConfig{}, []Strategy{
		&fakeStrategy{name: "one"},
		&fakeStrategy{name: "two"},
	}, nil, nil)

	_, err := engine.Extract(context.Background(), fetched(""))
	var ee *pipeline.ExtractionError
	if !errors.As(err, &ee) {
		t.Fatalf("expected ExtractionError, got %v", err)
	}
	if ee.Kind != pipeline.ExtractErrNoContent {
		t.Fatalf("expected no_content kind, got %s", ee.Kind)
	}
}

func TestEngineStopsEarlyWhenComplete(t *testing.T) {
	t.Parallel()

	full := PartialFields{
		Title:       "T",
		Author:      "A",
		Content:     "C",
		PublishDate: time.Now(),
	}
	first := &fakeStrategy{name: "one", fields: full}
	second := &fakeStrategy{name: "two", fields: full}

	engine := NewEngine(EngineConfig{}, []Strategy{first, second}, nil, nil)
	if _, err := engine.Extract(context.Background(), fetched("")); err != nil {
		t.Fatalf("Extract() error = %v", err)
	}
	if second.calls != 0 {
		t.Fatal("later strategies should be skipped once the result is complete")
	}
}
