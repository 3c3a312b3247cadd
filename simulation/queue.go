package simulation

import "sync"

// Queue is an append-only collection written by many goroutines during
// planning and drained by the engine goroutine during modification.
type Queue[T any] struct {
	mu    sync.Mutex
	items []T
}

// Append adds v to the queue.
func (q *Queue[T]) Append(v T) {
	q.mu.Lock()
	q.items = append(q.items, v)
	q.mu.Unlock()
}

// Drain returns the queued items in append order and empties the queue.
func (q *Queue[T]) Drain() []T {
	q.mu.Lock()
	defer q.mu.Unlock()
	items := q.items
	q.items = nil
	return items
}

// Len returns the number of queued items.
func (q *Queue[T]) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items)
}

// Reset discards the queued items.
func (q *Queue[T]) Reset() {
	q.mu.Lock()
	q.items = nil
	q.mu.Unlock()
}
