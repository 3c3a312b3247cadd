package agent

import (
	"sync/atomic"

	"github.com/ira-ai-automation/agentsim/clone"
	"github.com/ira-ai-automation/agentsim/ident"
	"github.com/ira-ai-automation/agentsim/messaging"
	"github.com/ira-ai-automation/agentsim/simerr"
	"github.com/ira-ai-automation/agentsim/space"
)

// Prototype holds species-level data shared by an agent and all of its
// offspring. It is never cloned.
type Prototype struct {
	Species    string
	Attributes map[string]float64
}

// SharedInstance marks prototypes as shared by clones.
func (*Prototype) SharedInstance() {}

// Attribute returns a named attribute, or fallback if it is not set.
func (p *Prototype) Attribute(name string, fallback float64) float64 {
	if p == nil {
		return fallback
	}
	if v, ok := p.Attributes[name]; ok {
		return v
	}
	return fallback
}

// BaseAgent provides a default implementation of the Agent interface whose
// behavior is assembled from named components.
type BaseAgent struct {
	id         string
	name       string
	prototype  *Prototype
	inbox      *messaging.Inbox
	motion     space.Motion
	active     atomic.Bool
	components []Component
	index      map[componentKey]Component
}

// BaseAgentConfig holds configuration for creating a BaseAgent.
type BaseAgentConfig struct {
	ID         string
	Name       string
	IDs        ident.Generator
	Prototype  *Prototype
	Motion     space.Motion
	Components []Component
}

// NewBaseAgent creates a new BaseAgent with the given configuration.
func NewBaseAgent(config BaseAgentConfig) (*BaseAgent, error) {
	// Set defaults
	if config.IDs == nil {
		config.IDs = ident.UUID()
	}
	if config.ID == "" {
		config.ID = config.IDs.Next()
	}
	if config.Name == "" && config.Prototype != nil {
		config.Name = config.Prototype.Species
	}

	a := &BaseAgent{
		id:        config.ID,
		name:      config.Name,
		prototype: config.Prototype,
		inbox:     messaging.NewInbox(),
		motion:    config.Motion,
		index:     make(map[componentKey]Component),
	}
	a.active.Store(true)

	for _, c := range config.Components {
		if err := a.Add(c); err != nil {
			return nil, err
		}
	}
	return a, nil
}

// ID returns the unique identifier for this agent.
func (a *BaseAgent) ID() string {
	return a.id
}

// Name returns a human-readable name for this agent.
func (a *BaseAgent) Name() string {
	return a.name
}

// Prototype returns the shared species data.
func (a *BaseAgent) Prototype() *Prototype {
	return a.prototype
}

// Inbox returns the agent's message inbox.
func (a *BaseAgent) Inbox() *messaging.Inbox {
	return a.inbox
}

// Motion returns the movement applied when the step commits.
func (a *BaseAgent) Motion() space.Motion {
	return a.motion
}

// SetMotion replaces the movement applied on every following step.
func (a *BaseAgent) SetMotion(m space.Motion) {
	a.motion = m
}

// IsActive reports whether the agent is alive.
func (a *BaseAgent) IsActive() bool {
	return a.active.Load()
}

// Die marks the agent inactive. It is swept from the world when the current
// step commits.
func (a *BaseAgent) Die() {
	a.active.Store(false)
}

// Add registers c under its kind and name and attaches it to a.
func (a *BaseAgent) Add(c Component) error {
	if c == nil {
		return simerr.New(simerr.InvalidConfiguration, "component cannot be nil")
	}
	key := componentKey{kind: c.Kind(), name: c.Name()}
	if _, exists := a.index[key]; exists {
		return simerr.Newf(simerr.InvalidConfiguration, "%s %q already registered", c.Kind(), c.Name()).
			WithContext("agent_id", a.id)
	}
	c.attach(a)
	a.index[key] = c
	a.components = append(a.components, c)
	return nil
}

// Components returns all components in registration order.
func (a *BaseAgent) Components() []Component {
	out := make([]Component, len(a.components))
	copy(out, a.components)
	return out
}

// Action returns the action registered under name.
func (a *BaseAgent) Action(name string) (*Action, bool) {
	c, ok := a.index[componentKey{kind: KindAction, name: name}]
	if !ok {
		return nil, false
	}
	return c.(*Action), true
}

// Property returns the property registered under name.
func (a *BaseAgent) Property(name string) (*Property, bool) {
	c, ok := a.index[componentKey{kind: KindProperty, name: name}]
	if !ok {
		return nil, false
	}
	return c.(*Property), true
}

// Trait returns the trait registered under name.
func (a *BaseAgent) Trait(name string) (*Trait, bool) {
	c, ok := a.index[componentKey{kind: KindTrait, name: name}]
	if !ok {
		return nil, false
	}
	return c.(*Trait), true
}

// Tick runs the agent's actions in registration order. It stops at the first
// failing action. Inactive agents do nothing.
func (a *BaseAgent) Tick(w World) error {
	if !a.IsActive() {
		return nil
	}
	for _, c := range a.components {
		action, ok := c.(*Action)
		if !ok {
			continue
		}
		if err := action.Execute(w); err != nil {
			return simerr.Wrap(simerr.TaskFailed, "action failed", err).
				WithContext("agent_id", a.id).
				WithContext("action", action.name)
		}
		if !a.IsActive() {
			return nil
		}
	}
	return nil
}

// Reproduce deep-clones the agent, passes every trait of the copy through its
// mutation function and asks w to spawn the offspring at the given point.
func (a *BaseAgent) Reproduce(w World, at space.Point) *BaseAgent {
	child := clone.Deep(a, clone.WithIDs(w.IDs()))
	for _, c := range child.components {
		if t, ok := c.(*Trait); ok {
			t.inherit()
		}
	}
	w.Spawn(child, at)
	return child
}

// DeepClone implements clone.Cloneable. The copy gets a fresh id from the
// session and an empty inbox.
func (a *BaseAgent) DeepClone(s *clone.Session) any {
	c := &BaseAgent{
		id:     s.IDs().Next(),
		name:   a.name,
		inbox:  messaging.NewInbox(),
		motion: a.motion,
	}
	c.active.Store(a.active.Load())
	s.Register(a, c)

	c.prototype = clone.Of(s, a.prototype)
	c.components = clone.Slice(s, a.components)
	c.index = make(map[componentKey]Component, len(c.components))
	for _, comp := range c.components {
		c.index[componentKey{kind: comp.Kind(), name: comp.Name()}] = comp
	}
	return c
}
