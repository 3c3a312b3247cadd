/*
Package agent defines the agents that populate a simulation and the view of the
world they act upon.

# Overview

The package is built around a few small abstractions:

  - Agent: identity, per-step behavior, motion, liveness and an inbox
  - World: the read and enqueue surface handed to an agent while it ticks
  - BaseAgent: a ready-made Agent assembled from named components
  - Registry: the id index over live agents, also used as message directory

# Ticking

During a step every live agent is ticked exactly once, possibly on different
goroutines. While ticking, an agent may inspect the world snapshot (positions,
neighbours) and enqueue requests through World.Spawn, World.Remove and
World.Deliver. The requests are applied after all agents have ticked, so no
agent observes another agent's effects within the same step.

# Components

A BaseAgent holds a closed set of component kinds, each registered under a
stable name:

  - Action: a function run by its owner on every tick, in registration order
  - Property: bounded numeric state such as energy
  - Trait: a heritable value passed through a mutation function on reproduction

Every component keeps a back-reference to its owner, so an agent and its
components form a cycle. BaseAgent.Reproduce copies that graph with the clone
package; the Prototype is shared between parent and offspring.

# Quick Start

	forager, err := agent.NewBaseAgent(agent.BaseAgentConfig{
		Name:      "forager",
		Prototype: &agent.Prototype{Species: "ant"},
		Motion:    space.Motion{Translation: 1},
		Components: []agent.Component{
			agent.NewProperty("energy", 10, 0, 100),
			agent.NewAction("metabolise", func(self *agent.BaseAgent, w agent.World) error {
				energy, _ := self.Property("energy")
				if energy.Add(-1) == 0 {
					self.Die()
				}
				return nil
			}),
		},
	})
*/
package agent
