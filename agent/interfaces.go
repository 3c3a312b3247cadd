package agent

import (
	"github.com/ira-ai-automation/agentsim/clone"
	"github.com/ira-ai-automation/agentsim/ident"
	"github.com/ira-ai-automation/agentsim/logging"
	"github.com/ira-ai-automation/agentsim/messaging"
	"github.com/ira-ai-automation/agentsim/space"
)

// Agent represents the core interface that all simulated agents must implement.
//
// Agents are not safe for concurrent use. The engine guarantees that during a
// step each agent is ticked by exactly one goroutine.
type Agent interface {
	// ID returns the unique identifier for this agent
	ID() string

	// Name returns a human-readable name for this agent
	Name() string

	// Tick executes one step of behavior. World mutations must go through the
	// enqueueing methods of w.
	Tick(w World) error

	// Motion returns the movement applied to the agent when the step commits
	Motion() space.Motion

	// IsActive reports whether the agent should stay live after this step
	IsActive() bool

	// Inbox returns the agent's message inbox
	Inbox() *messaging.Inbox

	clone.Cloneable
}

// World is the view of the simulation handed to ticking agents. Read methods
// observe the snapshot taken at the start of the step; Spawn, Remove and
// Deliver enqueue requests applied when the step commits.
type World interface {
	// CurrentStep returns the index of the step being planned
	CurrentStep() uint64

	// Position returns where a is located
	Position(a Agent) (space.Point, bool)

	// FindNeighbours returns the live agents within radius of a, excluding a
	FindNeighbours(a Agent, radius float64) []Agent

	// Spawn requests insertion of a at the given point
	Spawn(a Agent, at space.Point)

	// Remove requests removal of a
	Remove(a Agent)

	// Deliver requests delivery of m to its recipients
	Deliver(m messaging.Message)

	// IDs returns the identity generator of the simulation
	IDs() ident.Generator

	// Logger returns the simulation logger
	Logger() logging.Logger
}

// Lookup finds live agents by id.
type Lookup interface {
	Get(id string) (Agent, bool)
}
