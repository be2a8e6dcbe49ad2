package extract

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
)

// minParagraphRunes filters boilerplate fragments (share buttons, captions)
// out of the content scan.
const minParagraphRunes = 40

// MarkupStrategy scrapes the markup tree with heuristic locators for pages
// that carry no usable structured metadata. Runs second.
type MarkupStrategy struct{}

// NewMarkupStrategy returns the generic markup scraper.
func NewMarkupStrategy() *MarkupStrategy {
	return &MarkupStrategy{}
}

// Name implements Strategy.
func (s *MarkupStrategy) Name() string { return "markup" }

// Attempt implements Strategy.
func (s *MarkupStrategy) Attempt(ctx context.Context, doc Document) (PartialFields, error) {
	if err := ctx.Err(); err != nil {
		return PartialFields{}, err
	}
	parsed, err := goquery.NewDocumentFromReader(bytes.NewReader(doc.Body))
	if err != nil {
		return PartialFields{}, fmt.Errorf("parse document: %w", err)
	}
	return PartialFields{
		Title:       s.locateTitle(parsed),
		Author:      s.locateAuthor(parsed),
		Content:     s.locateContent(parsed),
		PublishDate: s.locateDate(parsed),
	}, nil
}

func (s *MarkupStrategy) locateTitle(parsed *goquery.Document) string {
	if h1 := strings.TrimSpace(parsed.Find("h1").First().Text()); h1 != "" {
		return h1
	}
	title := strings.TrimSpace(parsed.Find("title").First().Text())
	// Strip the conventional " | Site Name" suffix.
	if idx := strings.IndexAny(title, "|–"); idx > 0 {
		title = strings.TrimSpace(title[:idx])
	}
	return title
}

// authorSelectors are tried in order; the byline conventions vary widely
// across publisher templates.
var authorSelectors = []string{
	`[rel="author"]`,
	`[itemprop="author"] [itemprop="name"]`,
	`[itemprop="author"]`,
	".byline a",
	".byline",
	".author-name",
	".article-author",
}

func (s *MarkupStrategy) locateAuthor(parsed *goquery.Document) string {
	for _, sel := range authorSelectors {
		text := strings.TrimSpace(parsed.Find(sel).First().Text())
		if text == "" {
			continue
		}
		text = strings.TrimSpace(strings.TrimPrefix(text, "By "))
		text = strings.TrimSpace(strings.TrimPrefix(text, "by "))
		if text != "" {
			return text
		}
	}
	return ""
}

func (s *MarkupStrategy) locateDate(parsed *goquery.Document) time.Time {
	if raw, ok := parsed.Find("time[datetime]").First().Attr("datetime"); ok {
		if t := parseDate(strings.TrimSpace(raw)); !t.IsZero() {
			return t
		}
	}
	if raw, ok := parsed.Find(`[itemprop="datePublished"]`).First().Attr("content"); ok {
		if t := parseDate(strings.TrimSpace(raw)); !t.IsZero() {
			return t
		}
	}
	if raw := strings.TrimSpace(parsed.Find("time").First().Text()); raw != "" {
		return parseDate(raw)
	}
	return time.Time{}
}

// contentContainers are scanned in order; the first container yielding
// substantial paragraph text wins.
var contentContainers = []string{
	"article",
	`[itemprop="articleBody"]`,
	".article-body",
	".story-body",
	"main",
	"body",
}

func (s *MarkupStrategy) locateContent(parsed *goquery.Document) string {
	for _, sel := range contentContainers {
		container := parsed.Find(sel).First()
		if container.Length() == 0 {
			continue
		}
		var paragraphs []string
		container.Find("p").Each(func(_ int, p *goquery.Selection) {
			text := strings.TrimSpace(p.Text())
			if len([]rune(text)) >= minParagraphRunes {
				paragraphs = append(paragraphs, text)
			}
		})
		if len(paragraphs) > 0 {
			return strings.Join(paragraphs, "\n\n")
		}
	}
	return ""
}
