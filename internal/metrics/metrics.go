// Package metrics counts authentication outcomes and exposes them through
// an OpenTelemetry meter.
package metrics

import "sync/atomic"

// ID indexes a counter in a [Set].
type ID int

const (
	LoginSuccess ID = iota
	LoginFailure
	RegisterSuccess
	RegisterRateLimited
	SessionCreated
	TokenRejected

	numCounters
)

// Def describes one exported counter.
type Def struct {
	ID   ID
	Name string
	Help string
}

// CounterDefs is the full exported counter set.
var CounterDefs = []Def{
	{LoginSuccess, "webauth_login_success_total", "Successful logins."},
	{LoginFailure, "webauth_login_failure_total", "Rejected login attempts."},
	{RegisterSuccess, "webauth_register_success_total", "Completed registrations."},
	{RegisterRateLimited, "webauth_register_rate_limited_total", "Registration requests denied by the rate limiter."},
	{SessionCreated, "webauth_session_created_total", "Login sessions written to the store."},
	{TokenRejected, "webauth_token_rejected_total", "Tokens the middleware could not verify."},
}

// Set holds the process-wide counters. The zero value is ready to use and
// safe for concurrent increments.
type Set struct {
	counters [numCounters]atomic.Uint64
}

// Inc adds one to the counter.
func (s *Set) Inc(id ID) {
	if id < 0 || id >= numCounters {
		return
	}
	s.counters[id].Add(1)
}

// Snapshot returns a point-in-time copy of every counter.
func (s *Set) Snapshot() [numCounters]uint64 {
	var out [numCounters]uint64
	for i := range s.counters {
		out[i] = s.counters[i].Load()
	}
	return out
}
