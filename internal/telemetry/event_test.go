package telemetry

import (
	"testing"
	"time"
)

func validEvent() Event {
	return Event{
		CandidateID: "c1",
		TS:          time.Date(2026, 8, 12, 9, 0, 0, 0, time.UTC),
		Stage:       StageFetch,
		URL:         "https://example-herald.com/news/story",
		Outcome:     OutcomeOK,
		Dur:         25 * time.Millisecond,
	}
}

func TestEventValidate(t *testing.T) {
	t.Parallel()

	if err := validEvent().Validate(); err != nil {
		t.Fatalf("valid event rejected: %v", err)
	}

	evt := validEvent()
	evt.CandidateID = ""
	if err := evt.Validate(); err == nil {
		t.Fatal("expected error for missing candidate id")
	}

	evt = validEvent()
	evt.TS = time.Time{}
	if err := evt.Validate(); err == nil {
		t.Fatal("expected error for zero timestamp")
	}

	evt = validEvent()
	evt.Stage = "LAUNDRY"
	if err := evt.Validate(); err == nil {
		t.Fatal("expected error for unknown stage")
	}

	evt = validEvent()
	evt.Outcome = ""
	if err := evt.Validate(); err == nil {
		t.Fatal("expected error for missing outcome")
	}

	evt = validEvent()
	evt.Dur = -time.Second
	if err := evt.Validate(); err == nil {
		t.Fatal("expected error for negative duration")
	}
}
