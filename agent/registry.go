package agent

import (
	"regexp"
	"sort"
	"sync"

	"github.com/ira-ai-automation/agentsim/logging"
	"github.com/ira-ai-automation/agentsim/messaging"
	"github.com/ira-ai-automation/agentsim/simerr"
)

// RegistryHook allows external code to react to registry events.
type RegistryHook interface {
	OnAgentRegistered(agent Agent)
	OnAgentUnregistered(agentID string)
}

// Registry provides a thread-safe id index over the live agents. It doubles as
// the message directory used to route messages to inboxes.
type Registry struct {
	agents map[string]Agent
	mu     sync.RWMutex
	logger logging.Logger
	hooks  []RegistryHook
}

// NewRegistry creates a new agent registry.
func NewRegistry(logger logging.Logger) *Registry {
	if logger == nil {
		logger = logging.NewNoOp()
	}

	return &Registry{
		agents: make(map[string]Agent),
		logger: logger,
	}
}

// Register adds an agent to the registry.
func (r *Registry) Register(agent Agent) error {
	if agent == nil {
		return simerr.New(simerr.InvalidConfiguration, "agent cannot be nil")
	}

	agentID := agent.ID()
	if agentID == "" {
		return simerr.New(simerr.InvalidConfiguration, "agent ID cannot be empty")
	}

	r.mu.Lock()
	if _, exists := r.agents[agentID]; exists {
		r.mu.Unlock()
		return simerr.Newf(simerr.DuplicateAgent, "agent with ID %s already exists", agentID)
	}
	r.agents[agentID] = agent
	hooks := r.hooks
	r.mu.Unlock()

	r.logger.Debug("Agent registered",
		logging.F("agent_id", agentID),
		logging.F("agent_name", agent.Name()),
	)

	for _, h := range hooks {
		r.safeHook(func() { h.OnAgentRegistered(agent) })
	}
	return nil
}

// Unregister removes an agent from the registry.
func (r *Registry) Unregister(agentID string) error {
	r.mu.Lock()
	if _, exists := r.agents[agentID]; !exists {
		r.mu.Unlock()
		return simerr.Newf(simerr.AgentNotFound, "agent with ID %s not found", agentID)
	}
	delete(r.agents, agentID)
	hooks := r.hooks
	r.mu.Unlock()

	r.logger.Debug("Agent unregistered", logging.F("agent_id", agentID))

	for _, h := range hooks {
		r.safeHook(func() { h.OnAgentUnregistered(agentID) })
	}
	return nil
}

// Get retrieves an agent by ID.
func (r *Registry) Get(agentID string) (Agent, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	agent, exists := r.agents[agentID]
	return agent, exists
}

// Lookup implements messaging.Directory.
func (r *Registry) Lookup(agentID string) (messaging.Recipient, bool) {
	agent, exists := r.Get(agentID)
	if !exists {
		return nil, false
	}
	return agent, true
}

// List returns all registered agents ordered by ID.
func (r *Registry) List() []Agent {
	r.mu.RLock()
	agents := make([]Agent, 0, len(r.agents))
	for _, agent := range r.agents {
		agents = append(agents, agent)
	}
	r.mu.RUnlock()

	sort.Slice(agents, func(i, j int) bool {
		return agents[i].ID() < agents[j].ID()
	})
	return agents
}

// Find searches for agents whose name matches namePattern.
func (r *Registry) Find(namePattern string) []Agent {
	regex, err := regexp.Compile(namePattern)
	if err != nil {
		r.logger.Warn("Invalid regex pattern", logging.F("pattern", namePattern), logging.F("error", err))
		return []Agent{}
	}

	matches := make([]Agent, 0)
	for _, agent := range r.List() {
		if regex.MatchString(agent.Name()) {
			matches = append(matches, agent)
		}
	}
	return matches
}

// Len returns the number of registered agents.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.agents)
}

// AddHook adds a registry hook. Hooks run synchronously after the registry
// has been updated.
func (r *Registry) AddHook(hook RegistryHook) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.hooks = append(r.hooks[:len(r.hooks):len(r.hooks)], hook)
}

func (r *Registry) safeHook(fn func()) {
	defer func() {
		if rec := recover(); rec != nil {
			r.logger.Error("Registry hook panicked", logging.F("panic", rec))
		}
	}()
	fn()
}
