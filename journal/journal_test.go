package journal

import (
	"context"
	"errors"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ira-ai-automation/agentsim/event"
	"github.com/ira-ai-automation/agentsim/space"
)

type failingStore struct {
	calls int
}

func (s *failingStore) Append(context.Context, []Record) error {
	s.calls++
	return errors.New("disk full")
}

func (s *failingStore) ListByStep(context.Context, string, uint64) ([]Record, error) {
	return nil, nil
}

func TestFromEvent(t *testing.T) {
	at := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	r := FromEvent("run-1", event.Event{
		Kind:     event.StepFailed,
		Step:     4,
		AgentID:  "a",
		Position: space.Point{X: 1, Y: 2},
		Err:      errors.New("tick exploded"),
		At:       at,
	})

	assert.Equal(t, Record{
		Run:     "run-1",
		Step:    4,
		Kind:    "step_failed",
		AgentID: "a",
		X:       1,
		Y:       2,
		Error:   "tick exploded",
		At:      at,
	}, r)
}

func TestRecorder_FlushesWhenStepCloses(t *testing.T) {
	store := NewMemoryStore()
	bus := event.NewBus(nil)
	rec := NewRecorder(store, "run-1", nil)
	detach := rec.Attach(bus)
	defer detach()

	bus.Publish(event.Event{Kind: event.AgentAdded, Step: 0, AgentID: "a"})
	bus.Publish(event.Event{Kind: event.AgentAdded, Step: 0, AgentID: "b"})
	assert.Equal(t, 2, rec.Pending())
	assert.Equal(t, 0, store.Len())

	bus.Publish(event.Event{Kind: event.StepCompleted, Step: 0, Agents: 2})
	assert.Equal(t, 0, rec.Pending())
	assert.Equal(t, 3, rec.Flushed())

	records, err := store.ListByStep(context.Background(), "run-1", 0)
	require.NoError(t, err)
	require.Len(t, records, 3)
	assert.Equal(t, "agent_added", records[0].Kind)
	assert.Equal(t, "b", records[1].AgentID)
	assert.Equal(t, "step_completed", records[2].Kind)
	assert.Equal(t, 2, records[2].Agents)

	bus.Publish(event.Event{Kind: event.StepFailed, Step: 1, Err: errors.New("boom")})
	records, err = store.ListByStep(context.Background(), "run-1", 1)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "boom", records[0].Error)
	assert.Equal(t, []uint64{0, 1}, store.Steps("run-1"))
}

func TestRecorder_KeepsRecordsWhenStoreFails(t *testing.T) {
	store := &failingStore{}
	rec := NewRecorder(store, "run-1", nil)

	rec.Handle(event.Event{Kind: event.AgentRemoved, AgentID: "a"})
	rec.Handle(event.Event{Kind: event.StepCompleted})

	assert.Equal(t, 1, store.calls)
	assert.Equal(t, 2, rec.Pending())
	assert.EqualError(t, rec.Err(), "disk full")
}

func TestGormStore_Postgres(t *testing.T) {
	dsn := os.Getenv("AGENTSIM_JOURNAL_DSN")
	if dsn == "" {
		t.Skip("AGENTSIM_JOURNAL_DSN not set")
	}

	store, err := OpenPostgres(dsn)
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	run := fmt.Sprintf("test-%d", time.Now().UnixNano())
	at := time.Now().UTC().Truncate(time.Millisecond)
	require.NoError(t, store.Append(context.Background(), []Record{
		{Run: run, Step: 2, Kind: "agent_added", AgentID: "a", X: 1, Y: 2, At: at},
		{Run: run, Step: 2, Kind: "step_completed", Agents: 1, At: at},
		{Run: run, Step: 3, Kind: "step_completed", Agents: 1, At: at},
	}))

	records, err := store.ListByStep(context.Background(), run, 2)
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "a", records[0].AgentID)
	assert.Equal(t, "step_completed", records[1].Kind)
	assert.True(t, at.Equal(records[0].At))
}
