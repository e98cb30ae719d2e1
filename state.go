package dispatchloop

import "sync/atomic"

// LoopState represents the current state of the event loop.
//
// State machine:
//
//	Idle (0) → Running (1)     [Start]
//	Running (1) → Stopping (2) [Stop]
//	Stopping (2) → Stopped (3) [stop sequence completes]
//
// Stopped is terminal: a Loop is not restartable once stopped, matching the
// core spec's "operations after stop are well-defined no-ops" rule.
type LoopState uint32

const (
	// StateIdle is the state of a freshly constructed Loop that has not
	// yet had Start called on it.
	StateIdle LoopState = iota
	// StateRunning indicates the loop is accepting and dispatching events.
	StateRunning
	// StateStopping indicates Stop has been called but workers are still
	// being joined.
	StateStopping
	// StateStopped is the terminal state; no further dispatch occurs.
	StateStopped
)

func (s LoopState) String() string {
	switch s {
	case StateIdle:
		return "Idle"
	case StateRunning:
		return "Running"
	case StateStopping:
		return "Stopping"
	case StateStopped:
		return "Stopped"
	default:
		return "Unknown"
	}
}

// fastState is a lock-free state machine with cache-line padding, guarding
// the loop's running/idle/stopped transitions with a single CAS instead of a
// mutex, so IsRunning() never contends with Emit() on the hot path.
type fastState struct {
	_ [64]byte
	v atomic.Uint32
	_ [60]byte
}

func newFastState() *fastState {
	s := &fastState{}
	s.v.Store(uint32(StateIdle))
	return s
}

func (s *fastState) Load() LoopState {
	return LoopState(s.v.Load())
}

func (s *fastState) Store(state LoopState) {
	s.v.Store(uint32(state))
}

// TryTransition attempts to atomically move from `from` to `to`.
func (s *fastState) TryTransition(from, to LoopState) bool {
	return s.v.CompareAndSwap(uint32(from), uint32(to))
}

// IsRunning reports whether the loop is actively dispatching.
func (s *fastState) IsRunning() bool {
	return s.Load() == StateRunning
}

// IsStopped reports whether the loop has completed shutdown.
func (s *fastState) IsStopped() bool {
	return s.Load() == StateStopped
}
