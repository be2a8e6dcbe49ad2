package pipeline

import (
	"context"
	"time"
)

// CandidateQueue is the source of work. Dequeue blocks until a candidate is
// available, the queue closes, or the context ends.
type CandidateQueue interface {
	Dequeue(ctx context.Context) (CandidateLink, error)
	UpdateStatus(ctx context.Context, id string, status LinkStatus) error
}

// ArticleSink persists completed article records.
type ArticleSink interface {
	StoreArticle(ctx context.Context, article Article) error
}

// Archive stores raw fetched documents for replay. PutObject returns the
// stored object's URI.
type Archive interface {
	PutObject(ctx context.Context, path, contentType string, data []byte) (string, error)
}

// Publisher emits completion events. Publish returns the message ID.
type Publisher interface {
	Publish(ctx context.Context, topic string, payload any) (string, error)
}

// Fetcher retrieves one URL's raw content under the global request cadence.
type Fetcher interface {
	Fetch(ctx context.Context, url string) (FetchResult, error)
}

// Extractor turns a fetched document into structured article fields.
type Extractor interface {
	Extract(ctx context.Context, fetched FetchResult) (ExtractionResult, error)
}

// Clock abstracts wall time for deterministic tests.
type Clock interface {
	Now() time.Time
}

// IDGenerator mints identifiers for new records.
type IDGenerator interface {
	NewID() (string, error)
}
