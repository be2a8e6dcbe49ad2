package extract

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// MetadataStrategy reads structured news markup: JSON-LD NewsArticle blocks
// first, then OpenGraph and standard meta tags. It is the cheapest and most
// precise strategy, so it runs first.
type MetadataStrategy struct{}

// NewMetadataStrategy returns the structured-metadata parser.
func NewMetadataStrategy() *MetadataStrategy {
	return &MetadataStrategy{}
}

// Name implements Strategy.
func (s *MetadataStrategy) Name() string { return "metadata" }

// Attempt implements Strategy.
func (s *MetadataStrategy) Attempt(ctx context.Context, doc Document) (PartialFields, error) {
	if err := ctx.Err(); err != nil {
		return PartialFields{}, err
	}
	parsed, err := goquery.NewDocumentFromReader(bytes.NewReader(doc.Body))
	if err != nil {
		return PartialFields{}, fmt.Errorf("parse document: %w", err)
	}

	fields := s.fromJSONLD(parsed)
	s.fillFromMeta(parsed, &fields)
	return fields, nil
}

// jsonLDArticle mirrors the subset of schema.org Article we consume.
type jsonLDArticle struct {
	Type          any               `json:"@type"`
	Headline      string            `json:"headline"`
	ArticleBody   string            `json:"articleBody"`
	DatePublished string            `json:"datePublished"`
	Author        any               `json:"author"`
	Graph         []json.RawMessage `json:"@graph"`
}

func (s *MetadataStrategy) fromJSONLD(parsed *goquery.Document) PartialFields {
	var fields PartialFields
	parsed.Find(`script[type="application/ld+json"]`).EachWithBreak(func(_ int, sel *goquery.Selection) bool {
		raw := sel.Text()
		if raw == "" {
			return true
		}
		for _, blob := range expandJSONLD([]byte(raw)) {
			var art jsonLDArticle
			if err := json.Unmarshal(blob, &art); err != nil {
				continue
			}
			if !isArticleType(art.Type) {
				continue
			}
			fields.Title = strings.TrimSpace(art.Headline)
			fields.Content = strings.TrimSpace(art.ArticleBody)
			fields.Author = authorName(art.Author)
			if art.DatePublished != "" {
				fields.PublishDate = parseDate(art.DatePublished)
			}
			return false
		}
		return true
	})
	return fields
}

// expandJSONLD flattens top-level arrays and @graph containers into the
// individual node objects.
func expandJSONLD(raw []byte) []json.RawMessage {
	trimmed := bytes.TrimSpace(raw)
	var nodes []json.RawMessage
	if bytes.HasPrefix(trimmed, []byte("[")) {
		if err := json.Unmarshal(trimmed, &nodes); err != nil {
			return nil
		}
	} else {
		nodes = []json.RawMessage{trimmed}
	}
	out := make([]json.RawMessage, 0, len(nodes))
	for _, node := range nodes {
		var probe jsonLDArticle
		if err := json.Unmarshal(node, &probe); err != nil {
			continue
		}
		if len(probe.Graph) > 0 {
			out = append(out, probe.Graph...)
			continue
		}
		out = append(out, node)
	}
	return out
}

func isArticleType(t any) bool {
	switch v := t.(type) {
	case string:
		return v == "NewsArticle" || v == "Article" || v == "ReportageNewsArticle"
	case []any:
		for _, item := range v {
			if s, ok := item.(string); ok && isArticleType(s) {
				return true
			}
		}
	}
	return false
}

// authorName handles the three shapes schema.org allows: a plain string, a
// Person object, or a list of either.
func authorName(author any) string {
	switch v := author.(type) {
	case string:
		return strings.TrimSpace(v)
	case map[string]any:
		if name, ok := v["name"].(string); ok {
			return strings.TrimSpace(name)
		}
	case []any:
		names := make([]string, 0, len(v))
		for _, item := range v {
			if name := authorName(item); name != "" {
				names = append(names, name)
			}
		}
		return strings.Join(names, ", ")
	}
	return ""
}

// fillFromMeta fills remaining gaps from OpenGraph and standard meta tags.
func (s *MetadataStrategy) fillFromMeta(parsed *goquery.Document, fields *PartialFields) {
	if fields.Title == "" {
		fields.Title = metaContent(parsed, `meta[property="og:title"]`)
	}
	if fields.Author == "" {
		fields.Author = metaContent(parsed, `meta[name="author"]`)
	}
	if fields.Author == "" {
		fields.Author = metaContent(parsed, `meta[property="article:author"]`)
	}
	if fields.PublishDate.IsZero() {
		if raw := metaContent(parsed, `meta[property="article:published_time"]`); raw != "" {
			fields.PublishDate = parseDate(raw)
		}
	}
	if fields.PublishDate.IsZero() {
		if raw := metaContent(parsed, `meta[name="date"]`); raw != "" {
			fields.PublishDate = parseDate(raw)
		}
	}
}

func metaContent(parsed *goquery.Document, selector string) string {
	content, _ := parsed.Find(selector).First().Attr("content")
	return strings.TrimSpace(content)
}
