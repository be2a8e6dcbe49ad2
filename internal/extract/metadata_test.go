package extract

import (
	"context"
	"testing"
	"time"
)

func TestMetadataStrategyJSONLD(t *testing.T) {
	t.Parallel()

	body := `<html><head>
<script type="application/ld+json">
{
  "@context": "https://schema.org",
  "@type": "NewsArticle",
  "headline": "Council Approves Stormwater Fee",
  "articleBody": "The council voted 5-2 to approve the fee.",
  "datePublished": "2026-08-12T09:30:00Z",
  "author": {"@type": "Person", "name": "Dana Whitfield"}
}
</script>
</head><body></body></html>`

	s := NewMetadataStrategy()
	fields, err := s.Attempt(context.Background(), Document{Body: []byte(body)})
	if err != nil {
		t.Fatalf("Attempt() error = %v", err)
	}
	if fields.Title != "Council Approves Stormwater Fee" {
		t.Fatalf("unexpected title: %q", fields.Title)
	}
	if fields.Author != "Dana Whitfield" {
		t.Fatalf("unexpected author: %q", fields.Author)
	}
	if fields.Content != "The council voted 5-2 to approve the fee." {
		t.Fatalf("unexpected content: %q", fields.Content)
	}
	want := time.Date(2026, 8, 12, 9, 30, 0, 0, time.UTC)
	if !fields.PublishDate.Equal(want) {
		t.Fatalf("unexpected date: %v", fields.PublishDate)
	}
}

func TestMetadataStrategyJSONLDGraph(t *testing.T) {
	t.Parallel()

	body := `<html><head>
<script type="application/ld+json">
{
  "@graph": [
    {"@type": "WebPage", "headline": "ignored"},
    {"@type": "NewsArticle", "headline": "Graph Headline", "author": "Wire Desk"}
  ]
}
</script>
</head></html>`

	s := NewMetadataStrategy()
	fields, err := s.Attempt(context.Background(), Document{Body: []byte(body)})
	if err != nil {
		t.Fatalf("Attempt() error = %v", err)
	}
	if fields.Title != "Graph Headline" {
		t.Fatalf("expected graph article headline, got %q", fields.Title)
	}
	if fields.Author != "Wire Desk" {
		t.Fatalf("unexpected author: %q", fields.Author)
	}
}

func TestMetadataStrategyAuthorList(t *testing.T) {
	t.Parallel()

	body := `<html><head>
<script type="application/ld+json">
{"@type": "Article", "headline": "H", "author": [{"name": "A One"}, {"name": "B Two"}]}
</script>
</head></html>`

	s := NewMetadataStrategy()
	fields, err := s.Attempt(context.Background(), Document{Body: []byte(body)})
	if err != nil {
		t.Fatalf("Attempt() error = %v", err)
	}
	if fields.Author != "A One, B Two" {
		t.Fatalf("unexpected author list: %q", fields.Author)
	}
}

func TestMetadataStrategyMetaTagFallback(t *testing.T) {
	t.Parallel()

	body := `<html><head>
<meta property="og:title" content="Fallback Title">
<meta name="author" content="Dana Whitfield">
<meta property="article:published_time" content="2026-08-12T09:30:00Z">
</head><body></body></html>`

	s := NewMetadataStrategy()
	fields, err := s.Attempt(context.Background(), Document{Body: []byte(body)})
	if err != nil {
		t.Fatalf("Attempt() error = %v", err)
	}
	if fields.Title != "Fallback Title" || fields.Author != "Dana Whitfield" {
		t.Fatalf("unexpected meta fallback fields: %+v", fields)
	}
	if fields.PublishDate.IsZero() {
		t.Fatal("expected publish date from meta tag")
	}
	if fields.Content != "" {
		t.Fatalf("meta tags carry no body, got %q", fields.Content)
	}
}

func TestMetadataStrategyIgnoresNonArticleTypes(t *testing.T) {
	t.Parallel()

	body := `<html><head>
<script type="application/ld+json">
{"@type": "Organization", "headline": "Not An Article"}
</script>
</head></html>`

	s := NewMetadataStrategy()
	fields, err := s.Attempt(context.Background(), Document{Body: []byte(body)})
	if err != nil {
		t.Fatalf("Attempt() error = %v", err)
	}
	if !fields.Empty() {
		t.Fatalf("non-article JSON-LD should yield nothing: %+v", fields)
	}
}

func TestMetadataStrategyMalformedJSONLDTolerated(t *testing.T) {
	t.Parallel()

	body := `<html><head>
<script type="application/ld+json">{not json at all</script>
<meta property="og:title" content="Recovered Title">
</head></html>`

	s := NewMetadataStrategy()
	fields, err := s.Attempt(context.Background(), Document{Body: []byte(body)})
	if err != nil {
		t.Fatalf("Attempt() error = %v", err)
	}
	if fields.Title != "Recovered Title" {
		t.Fatalf("meta fallback should survive malformed JSON-LD: %+v", fields)
	}
}
