package simulation

import (
	"github.com/ira-ai-automation/agentsim/agent"
	"github.com/ira-ai-automation/agentsim/ident"
	"github.com/ira-ai-automation/agentsim/logging"
	"github.com/ira-ai-automation/agentsim/messaging"
	"github.com/ira-ai-automation/agentsim/space"
)

var _ agent.World = (*Engine)(nil)

// CurrentStep returns the number of completed steps. While agents tick it is
// the index of the step being planned.
func (e *Engine) CurrentStep() uint64 {
	return e.StepCount()
}

// Position returns where a is located.
func (e *Engine) Position(a agent.Agent) (space.Point, bool) {
	return e.space.Position(a)
}

// FindNeighbours returns the live agents within radius of a, excluding a.
func (e *Engine) FindNeighbours(a agent.Agent, radius float64) []agent.Agent {
	return e.space.FindNeighbours(a, radius)
}

// Spawn enqueues insertion of a.
func (e *Engine) Spawn(a agent.Agent, at space.Point) {
	e.AddAgent(a, at)
}

// Remove enqueues removal of a.
func (e *Engine) Remove(a agent.Agent) {
	e.RemoveAgent(a)
}

// Deliver enqueues m. Messages without recipients are dropped with a warning.
func (e *Engine) Deliver(m messaging.Message) {
	if err := e.DeliverMessage(m); err != nil {
		e.logger.Warn("Message dropped", logging.F("message_id", m.ID), logging.F("error", err))
	}
}

// IDs returns the identity generator of the simulation.
func (e *Engine) IDs() ident.Generator {
	return e.ids
}

// Logger returns the simulation logger.
func (e *Engine) Logger() logging.Logger {
	return e.logger
}
