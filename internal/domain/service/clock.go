// Package service defines interfaces for core, stateless domain logic.
// These services encapsulate business rules that don't naturally fit within
// a single entity.
package service

import "time"

// Clock supplies the current time. Every time-dependent component takes a
// Clock instead of calling time.Now directly, so expiry windows, session
// timeouts, and reminder deadlines are deterministic under test.
type Clock interface {
	Now() time.Time
}

// SystemClock is the production Clock backed by the wall clock.
type SystemClock struct{}

// NewSystemClock returns the wall-clock implementation of Clock.
func NewSystemClock() Clock {
	return SystemClock{}
}

// Now returns the current local time.
func (SystemClock) Now() time.Time {
	return time.Now()
}
