package simulation

import (
	"context"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/ira-ai-automation/agentsim/simerr"
)

// Task is one unit of batch work.
type Task func(ctx context.Context) error

// Executor runs a set of tasks and blocks until none is outstanding.
// Implementations recover task panics into errors and return the first error
// observed.
type Executor interface {
	Run(ctx context.Context, tasks []Task) error
}

// PoolExecutor runs tasks on a bounded number of goroutines.
type PoolExecutor struct {
	workers int
}

// NewPoolExecutor creates an executor running at most workers tasks at once.
// Values < 1 default to GOMAXPROCS.
func NewPoolExecutor(workers int) *PoolExecutor {
	if workers < 1 {
		workers = runtime.GOMAXPROCS(0)
	}
	return &PoolExecutor{workers: workers}
}

// Workers returns the concurrency limit.
func (p *PoolExecutor) Workers() int {
	return p.workers
}

// Run executes tasks concurrently. After the first failure, tasks that have
// not started yet are skipped; Run still waits for the running ones.
func (p *PoolExecutor) Run(ctx context.Context, tasks []Task) error {
	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(p.workers)

	for i, task := range tasks {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			if gCtx.Err() != nil {
				// A sibling failed; its error is the one reported.
				return nil
			}
			return runTask(gCtx, i, task)
		})
	}
	return g.Wait()
}

// InlineExecutor runs tasks one after another on the calling goroutine.
type InlineExecutor struct{}

// Run executes tasks in order and stops at the first failure.
func (InlineExecutor) Run(ctx context.Context, tasks []Task) error {
	for i, task := range tasks {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := runTask(ctx, i, task); err != nil {
			return err
		}
	}
	return nil
}

func runTask(ctx context.Context, batch int, task Task) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = simerr.Newf(simerr.TaskFailed, "task panicked: %v", r).
				WithContext("batch", batch)
		}
	}()
	return task(ctx)
}

// Partition splits items into contiguous batches of at most threshold
// elements. A threshold < 1 is treated as 1. The batches share items' backing
// array.
func Partition[T any](items []T, threshold int) [][]T {
	if len(items) == 0 {
		return nil
	}
	if threshold < 1 {
		threshold = 1
	}
	batches := make([][]T, 0, (len(items)+threshold-1)/threshold)
	for start := 0; start < len(items); start += threshold {
		end := min(start+threshold, len(items))
		batches = append(batches, items[start:end:end])
	}
	return batches
}
