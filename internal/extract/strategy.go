// Package extract converts fetched documents into structured article fields
// by cascading through extraction strategies and merging per field.
package extract

import (
	"context"
	"time"
)

// Document is the input handed to each strategy.
type Document struct {
	URL  string
	Body []byte
}

// PartialFields holds whatever fields one strategy managed to produce.
// Empty values mean the strategy found nothing for that field.
type PartialFields struct {
	Title       string
	Author      string
	Content     string
	PublishDate time.Time
}

// Empty reports whether no field was produced.
func (p PartialFields) Empty() bool {
	return p.Title == "" && p.Author == "" && p.Content == "" && p.PublishDate.IsZero()
}

// Strategy is one interchangeable extraction approach. Implementations are a
// closed set iterated in fixed priority order by the engine; they must treat
// the document as read-only and honor ctx deadlines.
type Strategy interface {
	Name() string
	Attempt(ctx context.Context, doc Document) (PartialFields, error)
}

// dateLayouts are tried in order when parsing publish timestamps out of
// metadata and markup.
var dateLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
	time.RFC1123,
	time.RFC1123Z,
	"January 2, 2006",
	"Jan 2, 2006",
}

func parseDate(raw string) time.Time {
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t
		}
	}
	return time.Time{}
}
