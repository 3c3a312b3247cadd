package agent

import (
	"errors"
	"testing"

	"github.com/ira-ai-automation/agentsim/ident"
	"github.com/ira-ai-automation/agentsim/logging"
	"github.com/ira-ai-automation/agentsim/messaging"
	"github.com/ira-ai-automation/agentsim/simerr"
	"github.com/ira-ai-automation/agentsim/space"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubWorld struct {
	ids     ident.Generator
	spawned []Agent
	removed []Agent
	sent    []messaging.Message
}

func newStubWorld() *stubWorld {
	return &stubWorld{ids: ident.NewSequence("w")}
}

func (w *stubWorld) CurrentStep() uint64                   { return 0 }
func (w *stubWorld) Position(Agent) (space.Point, bool)    { return space.Point{}, true }
func (w *stubWorld) FindNeighbours(Agent, float64) []Agent { return nil }
func (w *stubWorld) Spawn(a Agent, _ space.Point)          { w.spawned = append(w.spawned, a) }
func (w *stubWorld) Remove(a Agent)                        { w.removed = append(w.removed, a) }
func (w *stubWorld) Deliver(m messaging.Message)           { w.sent = append(w.sent, m) }
func (w *stubWorld) IDs() ident.Generator                  { return w.ids }
func (w *stubWorld) Logger() logging.Logger                { return logging.NewNoOp() }

func newForager(t *testing.T, comps ...Component) *BaseAgent {
	t.Helper()
	a, err := NewBaseAgent(BaseAgentConfig{
		IDs:        ident.NewSequence("a"),
		Prototype:  &Prototype{Species: "ant", Attributes: map[string]float64{"speed": 2}},
		Motion:     space.Motion{Translation: 1},
		Components: comps,
	})
	require.NoError(t, err)
	return a
}

func TestNewBaseAgent_Defaults(t *testing.T) {
	a := newForager(t)

	assert.Equal(t, "a-1", a.ID())
	assert.Equal(t, "ant", a.Name())
	assert.True(t, a.IsActive())
	assert.NotNil(t, a.Inbox())
	assert.Equal(t, 2.0, a.Prototype().Attribute("speed", 0))
	assert.Equal(t, 5.0, a.Prototype().Attribute("range", 5))
}

func TestBaseAgent_RejectsDuplicateComponent(t *testing.T) {
	a := newForager(t, NewProperty("energy", 1, 0, 10))

	err := a.Add(NewProperty("energy", 2, 0, 10))
	assert.True(t, simerr.IsCode(err, simerr.InvalidConfiguration))

	// Same name under another kind is a different key.
	require.NoError(t, a.Add(NewTrait("energy", 1, nil)))
	assert.Len(t, a.Components(), 2)
}

func TestBaseAgent_TickRunsActionsInOrder(t *testing.T) {
	var order []string
	record := func(name string) *Action {
		return NewAction(name, func(self *BaseAgent, _ World) error {
			order = append(order, name+"@"+self.ID())
			return nil
		})
	}
	a := newForager(t, record("sense"), NewProperty("energy", 1, 0, 1), record("move"))

	require.NoError(t, a.Tick(newStubWorld()))
	assert.Equal(t, []string{"sense@a-1", "move@a-1"}, order)
}

func TestBaseAgent_TickStopsAfterDeath(t *testing.T) {
	ran := false
	a := newForager(t,
		NewAction("starve", func(self *BaseAgent, _ World) error {
			self.Die()
			return nil
		}),
		NewAction("after", func(*BaseAgent, World) error {
			ran = true
			return nil
		}),
	)

	require.NoError(t, a.Tick(newStubWorld()))
	assert.False(t, a.IsActive())
	assert.False(t, ran)
}

func TestBaseAgent_TickWrapsActionError(t *testing.T) {
	boom := errors.New("boom")
	a := newForager(t, NewAction("explode", func(*BaseAgent, World) error { return boom }))

	err := a.Tick(newStubWorld())
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
	assert.True(t, simerr.IsCode(err, simerr.TaskFailed))
}

func TestProperty_Clamps(t *testing.T) {
	p := NewProperty("energy", 50, 10, 0)
	assert.Equal(t, 10.0, p.Value())
	assert.Equal(t, 0.0, p.Add(-25))
	assert.Equal(t, 7.0, p.Add(7))
}

func TestBaseAgent_DeepClonePreservesOwnerCycle(t *testing.T) {
	energy := NewProperty("energy", 4, 0, 10)
	act := NewAction("noop", func(*BaseAgent, World) error { return nil })
	a := newForager(t, energy, act)
	a.Inbox().Push(messaging.Message{ID: "m"})

	w := newStubWorld()
	child := a.Reproduce(w, space.Point{X: 1})

	require.Equal(t, []Agent{child}, w.spawned)
	assert.NotSame(t, a, child)
	assert.Equal(t, "w-1", child.ID())
	assert.Same(t, a.Prototype(), child.Prototype())
	assert.Equal(t, 0, child.Inbox().Len())
	assert.Equal(t, a.Motion(), child.Motion())

	childEnergy, ok := child.Property("energy")
	require.True(t, ok)
	assert.NotSame(t, energy, childEnergy)
	assert.Same(t, child, childEnergy.Owner())
	assert.Equal(t, 4.0, childEnergy.Value())

	childAct, ok := child.Action("noop")
	require.True(t, ok)
	assert.Same(t, child, childAct.Owner())
	assert.Same(t, a, act.Owner())

	childEnergy.Add(3)
	assert.Equal(t, 4.0, energy.Value())
}

func TestBaseAgent_ReproduceMutatesTraits(t *testing.T) {
	a := newForager(t, NewTrait("size", 1, func(v float64) float64 { return v * 2 }))

	child := a.Reproduce(newStubWorld(), space.Point{})

	parentSize, _ := a.Trait("size")
	childSize, ok := child.Trait("size")
	require.True(t, ok)
	assert.Equal(t, 1.0, parentSize.Value())
	assert.Equal(t, 2.0, childSize.Value())
}

type countingHook struct {
	registered   []string
	unregistered []string
}

func (h *countingHook) OnAgentRegistered(a Agent)     { h.registered = append(h.registered, a.ID()) }
func (h *countingHook) OnAgentUnregistered(id string) { h.unregistered = append(h.unregistered, id) }

func TestRegistry_RegisterLookupUnregister(t *testing.T) {
	r := NewRegistry(nil)
	hook := &countingHook{}
	r.AddHook(hook)
	a := newForager(t)

	require.NoError(t, r.Register(a))
	assert.True(t, simerr.IsCode(r.Register(a), simerr.DuplicateAgent))

	rec, ok := r.Lookup(a.ID())
	require.True(t, ok)
	assert.Same(t, a.Inbox(), rec.Inbox())
	assert.Len(t, r.Find("^an"), 1)
	assert.Empty(t, r.Find("^bee"))

	require.NoError(t, r.Unregister(a.ID()))
	assert.True(t, simerr.IsCode(r.Unregister(a.ID()), simerr.AgentNotFound))
	_, ok = r.Lookup(a.ID())
	assert.False(t, ok)

	assert.Equal(t, []string{"a-1"}, hook.registered)
	assert.Equal(t, []string{"a-1"}, hook.unregistered)
}
