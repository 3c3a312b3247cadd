package agent

import (
	"github.com/ira-ai-automation/agentsim/clone"
)

// Kind tags the closed set of component variants.
type Kind int

const (
	// KindAction represents behavior run on every tick
	KindAction Kind = iota

	// KindProperty represents mutable numeric state
	KindProperty

	// KindTrait represents a heritable value passed on by reproduction
	KindTrait
)

// String returns a string representation of the component kind.
func (k Kind) String() string {
	switch k {
	case KindAction:
		return "action"
	case KindProperty:
		return "property"
	case KindTrait:
		return "trait"
	default:
		return "unknown"
	}
}

// Component is a named part of a BaseAgent. The set of implementations is
// closed: Action, Property and Trait.
type Component interface {
	clone.Cloneable

	// Kind returns the variant tag
	Kind() Kind

	// Name returns the stable name the component is registered under
	Name() string

	// Owner returns the agent holding this component
	Owner() *BaseAgent

	attach(owner *BaseAgent)
}

type componentKey struct {
	kind Kind
	name string
}

// ActionFunc implements an action. self is the agent owning the action.
type ActionFunc func(self *BaseAgent, w World) error

// Action is behavior executed by its owner on every tick.
type Action struct {
	name  string
	owner *BaseAgent
	run   ActionFunc
}

// NewAction creates an action. The function is shared between clones.
func NewAction(name string, fn ActionFunc) *Action {
	return &Action{name: name, run: fn}
}

// Kind returns KindAction.
func (*Action) Kind() Kind { return KindAction }

// Name returns the action name.
func (a *Action) Name() string { return a.name }

// Owner returns the agent holding the action.
func (a *Action) Owner() *BaseAgent { return a.owner }

func (a *Action) attach(owner *BaseAgent) { a.owner = owner }

// Execute runs the action on behalf of its owner.
func (a *Action) Execute(w World) error {
	if a.run == nil {
		return nil
	}
	return a.run(a.owner, w)
}

// DeepClone implements clone.Cloneable.
func (a *Action) DeepClone(s *clone.Session) any {
	c := &Action{name: a.name, run: a.run}
	s.Register(a, c)
	c.owner = clone.Of(s, a.owner)
	return c
}

// Property is bounded numeric state.
type Property struct {
	name  string
	owner *BaseAgent
	value float64
	min   float64
	max   float64
}

// NewProperty creates a property holding value clamped to [lo, hi].
func NewProperty(name string, value, lo, hi float64) *Property {
	if lo > hi {
		lo, hi = hi, lo
	}
	p := &Property{name: name, min: lo, max: hi}
	p.Set(value)
	return p
}

// Kind returns KindProperty.
func (*Property) Kind() Kind { return KindProperty }

// Name returns the property name.
func (p *Property) Name() string { return p.name }

// Owner returns the agent holding the property.
func (p *Property) Owner() *BaseAgent { return p.owner }

func (p *Property) attach(owner *BaseAgent) { p.owner = owner }

// Value returns the current value.
func (p *Property) Value() float64 { return p.value }

// Set stores v clamped to the property bounds.
func (p *Property) Set(v float64) {
	p.value = min(max(v, p.min), p.max)
}

// Add adjusts the value by delta and returns the result.
func (p *Property) Add(delta float64) float64 {
	p.Set(p.value + delta)
	return p.value
}

// DeepClone implements clone.Cloneable.
func (p *Property) DeepClone(s *clone.Session) any {
	c := &Property{name: p.name, value: p.value, min: p.min, max: p.max}
	s.Register(p, c)
	c.owner = clone.Of(s, p.owner)
	return c
}

// MutateFunc derives an offspring trait value from the parent's.
type MutateFunc func(parent float64) float64

// Trait is a heritable value. Reproduction passes the value through the
// trait's mutation function.
type Trait struct {
	name   string
	owner  *BaseAgent
	value  float64
	mutate MutateFunc
}

// NewTrait creates a trait. mutate may be nil for exact inheritance.
func NewTrait(name string, value float64, mutate MutateFunc) *Trait {
	return &Trait{name: name, value: value, mutate: mutate}
}

// Kind returns KindTrait.
func (*Trait) Kind() Kind { return KindTrait }

// Name returns the trait name.
func (t *Trait) Name() string { return t.name }

// Owner returns the agent holding the trait.
func (t *Trait) Owner() *BaseAgent { return t.owner }

func (t *Trait) attach(owner *BaseAgent) { t.owner = owner }

// Value returns the trait value.
func (t *Trait) Value() float64 { return t.value }

// inherit applies the mutation function in place.
func (t *Trait) inherit() {
	if t.mutate != nil {
		t.value = t.mutate(t.value)
	}
}

// DeepClone implements clone.Cloneable.
func (t *Trait) DeepClone(s *clone.Session) any {
	c := &Trait{name: t.name, value: t.value, mutate: t.mutate}
	s.Register(t, c)
	c.owner = clone.Of(s, t.owner)
	return c
}
