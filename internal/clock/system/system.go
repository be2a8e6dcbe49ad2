// Package system provides the wall-clock implementation of pipeline.Clock.
package system

import "time"

// Clock returns real time.
type Clock struct{}

// New returns a system clock.
func New() Clock { return Clock{} }

// Now implements pipeline.Clock.
func (Clock) Now() time.Time { return time.Now().UTC() }
