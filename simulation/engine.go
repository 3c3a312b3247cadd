// Package simulation implements the discrete step engine: agents tick
// concurrently in a planning phase and the requests they enqueue are applied
// serially in a modification phase.
package simulation

import (
	"context"
	"fmt"
	"sync/atomic"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/ira-ai-automation/agentsim/agent"
	"github.com/ira-ai-automation/agentsim/event"
	"github.com/ira-ai-automation/agentsim/ident"
	"github.com/ira-ai-automation/agentsim/logging"
	"github.com/ira-ai-automation/agentsim/messaging"
	"github.com/ira-ai-automation/agentsim/simerr"
	"github.com/ira-ai-automation/agentsim/space"
)

const tracerName = "github.com/ira-ai-automation/agentsim/simulation"

// DefaultParallelThreshold is the batch size used when Options leaves it unset.
const DefaultParallelThreshold = 32

// Options configures an Engine.
type Options struct {
	// Index stores agent positions. It must be empty. Defaults to a Grid
	// built from Grid.
	Index space.Index[agent.Agent]
	Grid  space.GridOptions

	// Executor runs tick and movement batches. Defaults to a PoolExecutor
	// with Workers goroutines.
	Executor Executor
	Workers  int

	// ParallelThreshold is the maximum number of agents per batch.
	ParallelThreshold int

	IDs    ident.Generator
	Logger logging.Logger
	Events *event.Bus
	Tracer trace.Tracer

	// RegistryHooks are called synchronously whenever an agent becomes live
	// or leaves the world.
	RegistryHooks []agent.RegistryHook
}

type insertRequest struct {
	agent agent.Agent
	at    space.Point
}

// Engine advances a population of agents in discrete steps.
//
// Step must be called from a single goroutine. The query methods (CountAgents,
// ActiveAgents, Position, FindNeighbours) may be called concurrently while the
// engine is idle or planning, but not while a step is modifying the world.
type Engine struct {
	phase     PhaseMachine
	space     *space.Adapter[agent.Agent]
	registry  *agent.Registry
	router    *messaging.Router
	executor  Executor
	threshold int
	ids       ident.Generator
	logger    logging.Logger
	events    *event.Bus
	tracer    trace.Tracer

	inserts    Queue[insertRequest]
	removals   Queue[agent.Agent]
	deliveries Queue[messaging.Message]

	steps atomic.Uint64
}

// New creates an engine.
func New(opts Options) (*Engine, error) {
	// Set defaults
	if opts.Index == nil {
		opts.Index = space.NewGrid[agent.Agent](opts.Grid)
	}
	if opts.Executor == nil {
		opts.Executor = NewPoolExecutor(opts.Workers)
	}
	if opts.ParallelThreshold < 1 {
		opts.ParallelThreshold = DefaultParallelThreshold
	}
	if opts.IDs == nil {
		opts.IDs = ident.UUID()
	}
	if opts.Logger == nil {
		opts.Logger = logging.NewNoOp()
	}
	if opts.Events == nil {
		opts.Events = event.NewBus(opts.Logger)
	}
	if opts.Tracer == nil {
		opts.Tracer = otel.Tracer(tracerName)
	}

	adapter, err := space.NewAdapter(opts.Index)
	if err != nil {
		return nil, err
	}
	registry := agent.NewRegistry(opts.Logger)
	for _, h := range opts.RegistryHooks {
		registry.AddHook(h)
	}

	return &Engine{
		space:     adapter,
		registry:  registry,
		router:    messaging.NewRouter(registry, opts.Logger),
		executor:  opts.Executor,
		threshold: opts.ParallelThreshold,
		ids:       opts.IDs,
		logger:    opts.Logger,
		events:    opts.Events,
		tracer:    opts.Tracer,
	}, nil
}

// Seed inserts a immediately. It is only allowed while the engine is idle.
func (e *Engine) Seed(a agent.Agent, at space.Point) error {
	if !e.phase.Transition(Idle, Modification) {
		return simerr.Newf(simerr.IllegalPhase, "cannot seed while %s", e.phase.Load())
	}
	defer e.phase.Transition(Modification, Idle)

	if !e.insert(a, at, e.steps.Load()) {
		return simerr.Newf(simerr.DuplicateAgent, "agent %s is already live", a.ID()).
			WithContext("agent_id", a.ID())
	}
	return nil
}

// AddAgent enqueues insertion of a at the given point. It takes effect when the
// next step commits.
func (e *Engine) AddAgent(a agent.Agent, at space.Point) {
	e.inserts.Append(insertRequest{agent: a, at: at})
}

// RemoveAgent enqueues removal of a.
func (e *Engine) RemoveAgent(a agent.Agent) {
	e.removals.Append(a)
}

// DeliverMessage enqueues m for delivery when the next step commits.
func (e *Engine) DeliverMessage(m messaging.Message) error {
	if len(m.Recipients) == 0 {
		return simerr.New(simerr.InvalidMessage, "message has no recipients").
			WithContext("message_id", m.ID)
	}
	e.deliveries.Append(m)
	return nil
}

// Step advances the world by one discrete step.
//
// All live agents tick concurrently against the same snapshot. Afterwards the
// queued requests are applied serially in the order: message delivery,
// removal (explicit requests, then agents that are no longer active),
// movement, insertion. Agents inserted by a step do not move in that step.
//
// If any task fails, the queued requests of the step are discarded, the world
// is left untouched and the step counter is not incremented. Calling Step
// while another step is running fails with an IllegalPhase error.
func (e *Engine) Step(ctx context.Context) error {
	if !e.phase.Transition(Idle, Planning) {
		return simerr.Newf(simerr.IllegalPhase, "step called while %s", e.phase.Load())
	}

	step := e.steps.Load()
	live := e.space.Members()

	ctx, span := e.tracer.Start(ctx, "Engine.Step", trace.WithAttributes(
		attribute.Int64("sim.step", int64(step)),
		attribute.Int("sim.agents", len(live)),
	))
	defer span.End()

	e.logger.Debug("Step started", logging.F("step", step), logging.F("agents", len(live)))

	if err := e.plan(ctx, live); err != nil {
		return e.abort(span, step, Planning, err)
	}

	if !e.phase.Transition(Planning, Modification) {
		return e.abort(span, step, Planning, simerr.New(simerr.IllegalPhase, "phase changed during planning"))
	}
	if err := e.modify(ctx, step); err != nil {
		return e.abort(span, step, Modification, err)
	}

	e.steps.Add(1)
	e.phase.Transition(Modification, Idle)

	count := e.space.Len()
	span.SetAttributes(attribute.Int("sim.agents.after", count))
	e.logger.Debug("Step completed", logging.F("step", step), logging.F("agents", count))
	e.events.Publish(event.Event{Kind: event.StepCompleted, Step: step, Agents: count})
	return nil
}

// Run performs steps until n steps have completed, a step fails or ctx is
// done. n <= 0 runs until ctx is done.
func (e *Engine) Run(ctx context.Context, n int) error {
	for i := 0; n <= 0 || i < n; i++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := e.Step(ctx); err != nil {
			return err
		}
	}
	return nil
}

// plan ticks every live agent in batches.
func (e *Engine) plan(ctx context.Context, live []agent.Agent) error {
	batches := Partition(live, e.threshold)

	ctx, span := e.tracer.Start(ctx, "planning", trace.WithAttributes(
		attribute.Int("sim.batches", len(batches)),
	))
	defer span.End()

	tasks := make([]Task, len(batches))
	for i, batch := range batches {
		tasks[i] = func(ctx context.Context) error {
			for _, a := range batch {
				if err := a.Tick(e); err != nil {
					return simerr.Wrap(simerr.TaskFailed, "agent tick failed", err).
						WithContext("phase", Planning.String()).
						WithContext("batch", i).
						WithContext("agent_id", a.ID())
				}
			}
			return nil
		}
	}

	if err := e.executor.Run(ctx, tasks); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "planning failed")
		return err
	}
	return nil
}

// modify applies the queued requests. Movement projections are computed
// before anything is committed, so a failing movement task leaves the world
// as it was.
func (e *Engine) modify(ctx context.Context, step uint64) error {
	ctx, span := e.tracer.Start(ctx, "modification")
	defer span.End()

	deliveries := e.deliveries.Drain()
	removals := e.removals.Drain()
	inserts := e.inserts.Drain()

	leaving := make(map[agent.Agent]struct{}, len(removals))
	for _, a := range removals {
		if e.space.Contains(a) {
			leaving[a] = struct{}{}
		}
	}
	members := e.space.Members()
	staying := make([]agent.Agent, 0, len(members))
	for _, a := range members {
		if _, gone := leaving[a]; gone || !a.IsActive() {
			continue
		}
		staying = append(staying, a)
	}

	moves, err := e.project(ctx, staying)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "movement failed")
		return err
	}

	// Commit. Nothing below can fail.
	delivered := 0
	for _, m := range deliveries {
		delivered += e.router.Route(m)
	}

	removed := 0
	for _, a := range removals {
		if e.remove(a, step) {
			removed++
		}
	}
	for _, a := range e.space.RemoveInactive(agent.Agent.IsActive) {
		e.unregister(a, step)
		removed++
	}

	moved := 0
	for i, a := range staying {
		if moves[i].ok && e.space.Relocate(a, moves[i].to) {
			moved++
		}
	}

	inserted := 0
	for _, req := range inserts {
		if e.insert(req.agent, req.at, step) {
			inserted++
		}
	}

	span.SetAttributes(
		attribute.Int("sim.delivered", delivered),
		attribute.Int("sim.removed", removed),
		attribute.Int("sim.moved", moved),
		attribute.Int("sim.inserted", inserted),
	)
	return nil
}

type move struct {
	to space.Projection
	ok bool
}

// project computes the target projection of every agent in parallel batches.
func (e *Engine) project(ctx context.Context, agents []agent.Agent) ([]move, error) {
	moves := make([]move, len(agents))
	batches := Partition(agents, e.threshold)

	tasks := make([]Task, len(batches))
	for i, batch := range batches {
		offset := i * e.threshold
		tasks[i] = func(context.Context) error {
			for j, a := range batch {
				m := a.Motion()
				if m.IsZero() {
					continue
				}
				if to, ok := e.space.Destination(a, m); ok {
					moves[offset+j] = move{to: to, ok: true}
				}
			}
			return nil
		}
	}

	if err := e.executor.Run(ctx, tasks); err != nil {
		return nil, simerr.Wrap(simerr.TaskFailed, "movement failed", err).
			WithContext("phase", Modification.String())
	}
	return moves, nil
}

func (e *Engine) abort(span trace.Span, step uint64, phase Phase, err error) error {
	e.deliveries.Reset()
	e.removals.Reset()
	e.inserts.Reset()
	e.phase.force(Idle)

	span.RecordError(err)
	span.SetStatus(codes.Error, phase.String()+" failed")
	e.logger.Error("Step failed",
		logging.F("step", step),
		logging.F("phase", phase.String()),
		logging.F("error", err),
	)
	e.events.Publish(event.Event{Kind: event.StepFailed, Step: step, Err: err, Agents: e.space.Len()})
	return err
}

// insert places a in space and registers it. It returns false, changing
// nothing, if a or its id is already live.
func (e *Engine) insert(a agent.Agent, at space.Point, step uint64) bool {
	if !e.space.Insert(a, at) {
		e.logger.Warn("Insert ignored: agent already live", logging.F("agent_id", a.ID()))
		return false
	}
	if err := e.registry.Register(a); err != nil {
		e.space.Remove(a)
		e.logger.Warn("Insert ignored", logging.F("agent_id", a.ID()), logging.F("error", err))
		return false
	}

	pos, _ := e.space.Position(a)
	e.events.Publish(event.Event{Kind: event.AgentAdded, Step: step, AgentID: a.ID(), Position: pos})
	return true
}

// remove is the inverse of insert.
func (e *Engine) remove(a agent.Agent, step uint64) bool {
	if !e.space.Remove(a) {
		e.logger.Debug("Remove ignored: agent not live", logging.F("agent_id", a.ID()))
		return false
	}
	e.unregister(a, step)
	return true
}

func (e *Engine) unregister(a agent.Agent, step uint64) {
	if err := e.registry.Unregister(a.ID()); err != nil {
		e.logger.Warn("Unregister failed", logging.F("agent_id", a.ID()), logging.F("error", err))
	}
	e.events.Publish(event.Event{Kind: event.AgentRemoved, Step: step, AgentID: a.ID()})
}

// CountAgents returns the number of live agents.
func (e *Engine) CountAgents() int {
	return e.space.Len()
}

// ActiveAgents returns the live agents whose IsActive reports true, in
// insertion order.
func (e *Engine) ActiveAgents() []agent.Agent {
	members := e.space.Members()
	active := members[:0]
	for _, a := range members {
		if a.IsActive() {
			active = append(active, a)
		}
	}
	return active
}

// Agent returns the live agent with the given id.
func (e *Engine) Agent(id string) (agent.Agent, bool) {
	return e.registry.Get(id)
}

// Agents returns the live agents ordered by id.
func (e *Engine) Agents() []agent.Agent {
	return e.registry.List()
}

// FindAgents returns the live agents whose name matches the regular
// expression pattern, ordered by id. An invalid pattern matches nothing.
func (e *Engine) FindAgents(pattern string) []agent.Agent {
	return e.registry.Find(pattern)
}

// StepCount returns the number of completed steps.
func (e *Engine) StepCount() uint64 {
	return e.steps.Load()
}

// Phase returns the current phase.
func (e *Engine) Phase() Phase {
	return e.phase.Load()
}

// StatusInfo returns a one-line progress summary.
func (e *Engine) StatusInfo() string {
	return fmt.Sprintf("step %d, %d agents (%d active), phase %s",
		e.StepCount(), e.CountAgents(), len(e.ActiveAgents()), e.Phase())
}

// Events returns the bus the engine publishes on.
func (e *Engine) Events() *event.Bus {
	return e.events
}

// Close stops the engine from accepting further steps and drops pending
// requests. It fails if a step is running.
func (e *Engine) Close() error {
	if e.phase.Load() == Closed {
		return nil
	}
	if !e.phase.Transition(Idle, Closed) {
		return simerr.Newf(simerr.IllegalPhase, "cannot close while %s", e.phase.Load())
	}
	e.deliveries.Reset()
	e.removals.Reset()
	e.inserts.Reset()
	return nil
}
