// Package telemetry defines the append-only event stream emitted by the
// pipeline stages.
package telemetry

import (
	"errors"
	"fmt"
	"time"
)

// Stage identifies which pipeline stage produced an Event.
type Stage string

// Supported stages, in per-candidate execution order.
const (
	StageClassify Stage = "CLASSIFY"
	StageFetch    Stage = "FETCH"
	StageExtract  Stage = "EXTRACT"
	StageWire     Stage = "WIRE"
	StageResolve  Stage = "RESOLVE"
	StageDone     Stage = "DONE"
)

// Outcome is the coarse per-stage result label.
type Outcome string

// Stage outcome labels.
const (
	OutcomeOK       Outcome = "ok"
	OutcomeFiltered Outcome = "filtered"
	OutcomeBlocked  Outcome = "blocked"
	OutcomeError    Outcome = "error"
	OutcomeNoMatch  Outcome = "no_match"
)

// Event captures one pipeline milestone. Events are write-once; the pipeline
// never updates or deletes them.
type Event struct {
	// CandidateID identifies the candidate link being processed.
	CandidateID string
	// TS is the UTC timestamp recorded by the emitter.
	TS time.Time
	// Stage denotes which pipeline stage emitted the event.
	Stage Stage
	// URL is the candidate URL; it should not contain credentials.
	URL string
	// Outcome is the coarse stage result.
	Outcome Outcome
	// Dur captures stage latency.
	Dur time.Duration
	// Detail carries low-volume context (error text, wire reason, etc).
	Detail string
}

// Validate performs coarse validation on Event payloads.
func (e Event) Validate() error {
	if e.CandidateID == "" {
		return errors.New("candidate id is required")
	}
	if e.TS.IsZero() {
		return errors.New("timestamp is required")
	}
	switch e.Stage {
	case StageClassify, StageFetch, StageExtract, StageWire, StageResolve, StageDone:
	default:
		return fmt.Errorf("unknown stage %q", e.Stage)
	}
	if e.Outcome == "" {
		return errors.New("outcome is required")
	}
	if e.Dur < 0 {
		return errors.New("duration must be >= 0")
	}
	return nil
}
