package pipeline

import (
	"errors"
	"fmt"
)

// FetchErrorKind partitions fetch failures for outcome accounting.
type FetchErrorKind string

// Fetch failure kinds.
const (
	FetchErrNetwork FetchErrorKind = "network"
	FetchErrBlocked FetchErrorKind = "blocked"
	FetchErrTimeout FetchErrorKind = "timeout"
)

// FetchError is the typed terminal error of the fetch stage.
type FetchError struct {
	Kind FetchErrorKind
	URL  string
	Err  error
}

func (e *FetchError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("fetch %s: %s", e.URL, e.Kind)
	}
	return fmt.Sprintf("fetch %s: %s: %v", e.URL, e.Kind, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

// IsBlocked reports whether err is a fetch failure caused by an anti-bot
// block.
func IsBlocked(err error) bool {
	var fe *FetchError
	return errors.As(err, &fe) && fe.Kind == FetchErrBlocked
}

// ExtractionErrorKind partitions extraction failures.
type ExtractionErrorKind string

// Extraction failure kinds.
const (
	ExtractErrNoContent ExtractionErrorKind = "no_content"
	ExtractErrTimeout   ExtractionErrorKind = "timeout"
)

// ExtractionError is the typed terminal error of the extraction stage. It is
// produced only when every strategy together yields nothing.
type ExtractionError struct {
	Kind ExtractionErrorKind
	URL  string
}

func (e *ExtractionError) Error() string {
	return fmt.Sprintf("extract %s: %s", e.URL, e.Kind)
}
