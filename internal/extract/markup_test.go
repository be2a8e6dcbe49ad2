package extract

import (
	"context"
	"strings"
	"testing"
	"time"
)

const markupBody = `<html><head><title>Bridge Repairs Begin | Example Herald</title></head>
<body>
<article>
  <h1>Bridge Repairs Begin Monday</h1>
  <div class="byline">By Dana Whitfield</div>
  <time datetime="2026-08-12T09:30:00Z">August 12, 2026</time>
  <p>Crews will close one lane of the Maple Street Bridge starting Monday morning for repairs.</p>
  <p>Share</p>
  <p>The project is expected to take six weeks and is funded by the county road levy approved last fall.</p>
</article>
</body></html>`

func TestMarkupStrategyFullDocument(t *testing.T) {
	t.Parallel()

	s := NewMarkupStrategy()
	fields, err := s.Attempt(context.Background(), Document{Body: []byte(markupBody)})
	if err != nil {
		t.Fatalf("Attempt() error = %v", err)
	}
	if fields.Title != "Bridge Repairs Begin Monday" {
		t.Fatalf("unexpected title: %q", fields.Title)
	}
	if fields.Author != "Dana Whitfield" {
		t.Fatalf("byline prefix should be stripped: %q", fields.Author)
	}
	want := time.Date(2026, 8, 12, 9, 30, 0, 0, time.UTC)
	if !fields.PublishDate.Equal(want) {
		t.Fatalf("unexpected date: %v", fields.PublishDate)
	}
	if !strings.Contains(fields.Content, "close one lane") || !strings.Contains(fields.Content, "county road levy") {
		t.Fatalf("unexpected content: %q", fields.Content)
	}
	if strings.Contains(fields.Content, "Share") {
		t.Fatalf("short boilerplate paragraphs should be filtered: %q", fields.Content)
	}
}

func TestMarkupStrategyTitleFallsBackToTitleTag(t *testing.T) {
	t.Parallel()

	body := `<html><head><title>Bridge Repairs Begin | Example Herald</title></head><body></body></html>`
	s := NewMarkupStrategy()
	fields, err := s.Attempt(context.Background(), Document{Body: []byte(body)})
	if err != nil {
		t.Fatalf("Attempt() error = %v", err)
	}
	if fields.Title != "Bridge Repairs Begin" {
		t.Fatalf("site suffix should be stripped: %q", fields.Title)
	}
}

func TestMarkupStrategyAuthorSelectors(t *testing.T) {
	t.Parallel()

	body := `<html><body><a rel="author" href="/staff/dw">Dana Whitfield</a></body></html>`
	s := NewMarkupStrategy()
	fields, err := s.Attempt(context.Background(), Document{Body: []byte(body)})
	if err != nil {
		t.Fatalf("Attempt() error = %v", err)
	}
	if fields.Author != "Dana Whitfield" {
		t.Fatalf("rel=author should be found: %q", fields.Author)
	}
}

func TestMarkupStrategyEmptyDocument(t *testing.T) {
	t.Parallel()

	s := NewMarkupStrategy()
	fields, err := s.Attempt(context.Background(), Document{Body: []byte("<html><body></body></html>")})
	if err != nil {
		t.Fatalf("Attempt() error = %v", err)
	}
	if !fields.Empty() {
		t.Fatalf("expected no fields, got %+v", fields)
	}
}

func TestParseDateLayouts(t *testing.T) {
	t.Parallel()

	cases := map[string]bool{
		"2026-08-12T09:30:00Z": true,
		"2026-08-12":           true,
		"August 12, 2026":      true,
		"next Tuesday":         false,
	}
	for raw, ok := range cases {
		got := parseDate(raw)
		if ok && got.IsZero() {
			t.Fatalf("expected %q to parse", raw)
		}
		if !ok && !got.IsZero() {
			t.Fatalf("expected %q to fail, got %v", raw, got)
		}
	}
}
