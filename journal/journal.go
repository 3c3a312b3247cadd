// Package journal persists the world changes announced on the engine's event
// bus so that runs can be inspected after the fact.
package journal

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/ira-ai-automation/agentsim/event"
)

// Record is one journal row.
type Record struct {
	Run     string
	Step    uint64
	Kind    string
	AgentID string
	X       float64
	Y       float64
	Agents  int
	Error   string
	At      time.Time
}

// FromEvent converts a bus event into a record of run.
func FromEvent(run string, e event.Event) Record {
	r := Record{
		Run:     run,
		Step:    e.Step,
		Kind:    e.Kind.String(),
		AgentID: e.AgentID,
		X:       e.Position.X,
		Y:       e.Position.Y,
		Agents:  e.Agents,
		At:      e.At,
	}
	if e.Err != nil {
		r.Error = e.Err.Error()
	}
	return r
}

// Store persists records.
type Store interface {
	// Append stores records in order.
	Append(ctx context.Context, records []Record) error

	// ListByStep returns the records of one step of a run in append order.
	ListByStep(ctx context.Context, run string, step uint64) ([]Record, error)
}

// MemoryStore keeps records in memory.
type MemoryStore struct {
	mu      sync.RWMutex
	records []Record
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

// Append implements Store.
func (s *MemoryStore) Append(_ context.Context, records []Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records = append(s.records, records...)
	return nil
}

// ListByStep implements Store.
func (s *MemoryStore) ListByStep(_ context.Context, run string, step uint64) ([]Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []Record
	for _, r := range s.records {
		if r.Run == run && r.Step == step {
			out = append(out, r)
		}
	}
	return out, nil
}

// Len returns the number of stored records.
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records)
}

// Steps returns the distinct step indices recorded for run in ascending order.
func (s *MemoryStore) Steps(run string) []uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()

	seen := make(map[uint64]struct{})
	for _, r := range s.records {
		if r.Run == run {
			seen[r.Step] = struct{}{}
		}
	}
	steps := make([]uint64, 0, len(seen))
	for step := range seen {
		steps = append(steps, step)
	}
	sort.Slice(steps, func(i, j int) bool { return steps[i] < steps[j] })
	return steps
}
