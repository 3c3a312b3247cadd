package journal

import (
	"context"
	"sync"
	"time"

	"github.com/ira-ai-automation/agentsim/event"
	"github.com/ira-ai-automation/agentsim/logging"
)

// DefaultFlushTimeout bounds a single flush to the store.
const DefaultFlushTimeout = 5 * time.Second

// Recorder subscribes to an event bus and writes every event to a Store.
// Agent events are buffered and written together with the StepCompleted or
// StepFailed event that closes the step.
type Recorder struct {
	store   Store
	run     string
	logger  logging.Logger
	timeout time.Duration

	mu      sync.Mutex
	buf     []Record
	lastErr error
	flushed int
}

// NewRecorder creates a recorder writing records of run to store.
func NewRecorder(store Store, run string, logger logging.Logger) *Recorder {
	if logger == nil {
		logger = logging.NewNoOp()
	}
	return &Recorder{
		store:   store,
		run:     run,
		logger:  logger.With(logging.F("run", run)),
		timeout: DefaultFlushTimeout,
	}
}

// Attach subscribes the recorder to bus and returns the unsubscribe function.
func (r *Recorder) Attach(bus *event.Bus) func() {
	return bus.Subscribe(r.Handle)
}

// Handle records e. It is the bus handler installed by Attach.
func (r *Recorder) Handle(e event.Event) {
	r.mu.Lock()
	r.buf = append(r.buf, FromEvent(r.run, e))
	closesStep := e.Kind == event.StepCompleted || e.Kind == event.StepFailed
	r.mu.Unlock()

	if closesStep {
		ctx, cancel := context.WithTimeout(context.Background(), r.timeout)
		defer cancel()
		if err := r.Flush(ctx); err != nil {
			r.logger.Error("Journal flush failed", logging.F("step", e.Step), logging.F("error", err))
		}
	}
}

// Flush writes the buffered records. On failure the records stay buffered.
func (r *Recorder) Flush(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if len(r.buf) == 0 {
		return nil
	}
	if err := r.store.Append(ctx, r.buf); err != nil {
		r.lastErr = err
		return err
	}
	r.flushed += len(r.buf)
	r.buf = nil
	return nil
}

// Pending returns the number of buffered records.
func (r *Recorder) Pending() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.buf)
}

// Flushed returns the number of records written so far.
func (r *Recorder) Flushed() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.flushed
}

// Err returns the last flush error.
func (r *Recorder) Err() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.lastErr
}
