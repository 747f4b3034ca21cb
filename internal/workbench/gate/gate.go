// Package gate admits at most one judging request at a time.
package gate

import "sync/atomic"

// Kind is the type of judging request.
type Kind int

const (
	Run Kind = iota + 1
	Submit
)

// String returns the lowercase kind name used in logs and errors.
func (k Kind) String() string {
	switch k {
	case Run:
		return "run"
	case Submit:
		return "submit"
	default:
		return "unknown"
	}
}

// State is the request state of a session.
type State int32

const (
	Idle State = iota
	RunPending
	SubmitPending
)

// String returns a human-readable state label.
func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case RunPending:
		return "run pending"
	case SubmitPending:
		return "submit pending"
	default:
		return "unknown"
	}
}

// Gate holds the request state. The zero value is Idle and ready to use.
type Gate struct {
	state atomic.Int32
}

// TryAcquire moves Idle to the pending state for kind.
// It returns false, leaving the state untouched, when a request is already pending.
func (g *Gate) TryAcquire(kind Kind) bool {
	var next State
	switch kind {
	case Run:
		next = RunPending
	case Submit:
		next = SubmitPending
	default:
		return false
	}
	return g.state.CompareAndSwap(int32(Idle), int32(next))
}

// Release returns to Idle unconditionally.
func (g *Gate) Release() {
	g.state.Store(int32(Idle))
}

// State returns the current request state.
func (g *Gate) State() State {
	return State(g.state.Load())
}

// Busy reports whether Run and Submit controls must be disabled.
func (g *Gate) Busy() bool {
	return g.State() != Idle
}
