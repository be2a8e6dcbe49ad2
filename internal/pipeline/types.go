// Package pipeline defines the core domain types and the interfaces the
// stage implementations satisfy. Implementations live in subpackages;
// consumers depend on this package only.
package pipeline

import (
	"net/http"
	"time"
)

// LinkStatus tracks a candidate link through its lifecycle. Transitions are
// one-way: pending -> article|filtered, article -> extracted|failed.
type LinkStatus string

// Candidate lifecycle states.
const (
	LinkStatusPending   LinkStatus = "pending"
	LinkStatusArticle   LinkStatus = "article"
	LinkStatusFiltered  LinkStatus = "filtered"
	LinkStatusExtracted LinkStatus = "extracted"
	LinkStatusFailed    LinkStatus = "failed"
)

// ArticleStatus classifies a stored article record.
type ArticleStatus string

// Article statuses. Wire, opinion, and obituary articles are stored with
// their corrected status rather than discarded.
const (
	ArticleStatusExtracted ArticleStatus = "extracted"
	ArticleStatusWire      ArticleStatus = "wire"
	ArticleStatusOpinion   ArticleStatus = "opinion"
	ArticleStatusObituary  ArticleStatus = "obituary"
	ArticleStatusFiltered  ArticleStatus = "filtered"
)

// CandidateLink is one discovered URL awaiting pipeline processing.
type CandidateLink struct {
	ID           string
	URL          string
	SourceDomain string
	Status       LinkStatus
	DiscoveredAt time.Time
}

// FetchResult is the raw outcome of one successful fetch.
type FetchResult struct {
	Body       []byte
	StatusCode int
	FinalURL   string
	Headers    http.Header
	Duration   time.Duration
	// Rendered marks bodies produced by the headless browser rather than a
	// plain HTTP GET.
	Rendered bool
}

// ExtractionResult carries the merged output of the extraction strategies.
// Each field holds the value from the first strategy, in priority order,
// that produced it; FieldProvenance records which.
type ExtractionResult struct {
	Title       string
	Author      string
	Content     string
	PublishDate time.Time

	// MethodsUsed lists every strategy attempted, in order, whether or not
	// it contributed fields.
	MethodsUsed []string
	// FieldProvenance maps field name to the strategy that filled it.
	FieldProvenance map[string]string
}

// Completeness recomputes the filled-field ratio over the four core fields.
// It is derived, never stored alongside stale fields.
func (r ExtractionResult) Completeness() float64 {
	filled := 0
	if r.Title != "" {
		filled++
	}
	if r.Author != "" {
		filled++
	}
	if r.Content != "" {
		filled++
	}
	if !r.PublishDate.IsZero() {
		filled++
	}
	return float64(filled) / 4.0
}

// Article is the persisted extraction record. Records are append-only: a
// re-extraction of the same candidate inserts a new row.
type Article struct {
	ID              string
	CandidateLinkID string
	Title           string
	Author          string
	Content         string
	PublishDate     time.Time
	Status          ArticleStatus
	ExtractedAt     time.Time
}

// ResolvedEntity is the completion-event projection of one gazetteer match.
type ResolvedEntity struct {
	Mention    string  `json:"mention"`
	Canonical  string  `json:"canonical"`
	EntityType string  `json:"entity_type"`
	Score      float64 `json:"score"`
	Kind       string  `json:"kind"`
}

// CompletionEvent is published when a candidate finishes the pipeline with a
// stored article.
type CompletionEvent struct {
	ArticleID       string           `json:"article_id"`
	CandidateLinkID string           `json:"candidate_link_id"`
	Status          ArticleStatus    `json:"status"`
	Completeness    float64          `json:"completeness"`
	Entities        []ResolvedEntity `json:"entities"`
	ExtractedAt     time.Time        `json:"extracted_at"`
}

// OutcomeKind is the terminal disposition of one candidate.
type OutcomeKind string

// Terminal outcomes.
const (
	OutcomeExtracted OutcomeKind = "extracted"
	OutcomeFiltered  OutcomeKind = "filtered"
	OutcomeFailed    OutcomeKind = "failed"
)

// Outcome summarizes how one candidate finished.
type Outcome struct {
	Kind         OutcomeKind
	Completeness float64
	Status       ArticleStatus
	FailureKind  string
}
