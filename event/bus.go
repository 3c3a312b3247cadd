// Package event provides the publish/subscribe sink the engine announces
// world changes on.
package event

import (
	"sync"
	"time"

	"github.com/ira-ai-automation/agentsim/logging"
	"github.com/ira-ai-automation/agentsim/space"
)

// Kind identifies what happened.
type Kind int

const (
	// AgentAdded is published when an agent becomes live in space
	AgentAdded Kind = iota

	// AgentRemoved is published when an agent leaves the world
	AgentRemoved

	// StepCompleted is published after a step has committed
	StepCompleted

	// StepFailed is published when a step is aborted
	StepFailed
)

// String returns a string representation of the event kind.
func (k Kind) String() string {
	switch k {
	case AgentAdded:
		return "agent_added"
	case AgentRemoved:
		return "agent_removed"
	case StepCompleted:
		return "step_completed"
	case StepFailed:
		return "step_failed"
	default:
		return "unknown"
	}
}

// Event is a notification published by the engine. Step is the index of the
// step that produced it, counting from zero.
type Event struct {
	Kind     Kind
	Step     uint64
	AgentID  string
	Position space.Point
	Agents   int
	Err      error
	At       time.Time
}

// Handler receives published events.
type Handler func(Event)

type subscription struct {
	id      uint64
	handler Handler
}

// Bus delivers events synchronously to subscribers in subscription order.
// Handler panics are recovered and logged; they do not stop delivery to the
// remaining subscribers.
type Bus struct {
	mu     sync.RWMutex
	subs   []subscription
	nextID uint64
	logger logging.Logger
}

// NewBus creates an event bus.
func NewBus(logger logging.Logger) *Bus {
	if logger == nil {
		logger = logging.NewNoOp()
	}
	return &Bus{logger: logger}
}

// Subscribe registers h and returns a function that removes it again.
func (b *Bus) Subscribe(h Handler) (unsubscribe func()) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.nextID++
	id := b.nextID
	b.subs = append(b.subs, subscription{id: id, handler: h})

	var once sync.Once
	return func() {
		once.Do(func() { b.remove(id) })
	}
}

// Publish hands e to every subscriber. A zero At is set to the current time.
func (b *Bus) Publish(e Event) {
	if e.At.IsZero() {
		e.At = time.Now()
	}

	b.mu.RLock()
	subs := b.subs
	b.mu.RUnlock()

	for _, s := range subs {
		b.deliver(s.handler, e)
	}
}

// Len returns the number of subscribers.
func (b *Bus) Len() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subs)
}

func (b *Bus) deliver(h Handler, e Event) {
	defer func() {
		if r := recover(); r != nil {
			b.logger.Error("Event handler panicked",
				logging.F("panic", r),
				logging.F("event", e.Kind.String()),
			)
		}
	}()
	h(e)
}

func (b *Bus) remove(id uint64) {
	b.mu.Lock()
	defer b.mu.Unlock()

	for i, s := range b.subs {
		if s.id == id {
			// Copy so that in-flight Publish calls keep their snapshot.
			next := make([]subscription, 0, len(b.subs)-1)
			next = append(next, b.subs[:i]...)
			b.subs = append(next, b.subs[i+1:]...)
			return
		}
	}
}
