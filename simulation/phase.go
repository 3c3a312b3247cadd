package simulation

import "sync/atomic"

// Phase is the engine state within a step.
type Phase int32

const (
	// Idle means no step is running; seeding is allowed
	Idle Phase = iota

	// Planning is the concurrent window in which agents tick
	Planning

	// Modification is the serial window in which queued requests are applied
	Modification

	// Closed means the engine no longer accepts steps
	Closed
)

// String returns a string representation of the phase.
func (p Phase) String() string {
	switch p {
	case Idle:
		return "IDLE"
	case Planning:
		return "PLANNING"
	case Modification:
		return "MODIFICATION"
	case Closed:
		return "CLOSED"
	default:
		return "UNKNOWN"
	}
}

// PhaseMachine holds the current phase. The zero value is Idle.
type PhaseMachine struct {
	v atomic.Int32
}

// Load returns the current phase.
func (m *PhaseMachine) Load() Phase {
	return Phase(m.v.Load())
}

// Transition moves from one phase to another. It returns false and leaves the
// phase unchanged when the machine is not in from.
func (m *PhaseMachine) Transition(from, to Phase) bool {
	return m.v.CompareAndSwap(int32(from), int32(to))
}

// force sets the phase unconditionally. Only used to abort a step.
func (m *PhaseMachine) force(p Phase) {
	m.v.Store(int32(p))
}
