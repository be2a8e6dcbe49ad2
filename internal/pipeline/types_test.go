package pipeline

import (
	"errors"
	"testing"
	"time"
)

func TestCompleteness(t *testing.T) {
	t.Parallel()

	var r ExtractionResult
	if got := r.Completeness(); got != 0 {
		t.Fatalf("empty result completeness = %v", got)
	}

	r.Title = "T"
	r.Content = "C"
	if got := r.Completeness(); got != 0.5 {
		t.Fatalf("two fields completeness = %v", got)
	}

	r.Author = "A"
	r.PublishDate = time.Date(2026, 8, 12, 0, 0, 0, 0, time.UTC)
	if got := r.Completeness(); got != 1.0 {
		t.Fatalf("full result completeness = %v", got)
	}
}

func TestFetchErrorUnwrapAndIsBlocked(t *testing.T) {
	t.Parallel()

	cause := errors.New("proxy refused")
	err := &FetchError{Kind: FetchErrNetwork, URL: "https://example.com", Err: cause}
	if !errors.Is(err, cause) {
		t.Fatal("FetchError should unwrap to its cause")
	}
	if IsBlocked(err) {
		t.Fatal("network error is not a block")
	}

	blocked := &FetchError{Kind: FetchErrBlocked, URL: "https://example.com"}
	if !IsBlocked(blocked) {
		t.Fatal("blocked error not recognized")
	}
	if IsBlocked(errors.New("unrelated")) {
		t.Fatal("plain errors are not blocks")
	}
}

func TestExtractionErrorMessage(t *testing.T) {
	t.Parallel()

	err := &ExtractionError{Kind: ExtractErrNoContent, URL: "https://example.com/story"}
	if err.Error() == "" {
		t.Fatal("expected a message")
	}
}
