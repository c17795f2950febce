// Package batch runs per-item work over a worker pool while preserving input order.
package batch

import (
	"context"
	"runtime"
	"sync"

	"fjacquet/spendcat/internal/logging"
)

// DefaultSequentialThreshold is the batch size below which items are
// processed on the calling goroutine.
const DefaultSequentialThreshold = 100

// Processor fans work out to a fixed number of workers.
type Processor struct {
	logger              logging.Logger
	workerCount         int
	sequentialThreshold int
}

// NewProcessor creates a processor. workers <= 0 uses runtime.NumCPU(), and
// threshold <= 0 uses DefaultSequentialThreshold.
func NewProcessor(logger logging.Logger, workers, threshold int) *Processor {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	if threshold <= 0 {
		threshold = DefaultSequentialThreshold
	}
	return &Processor{
		logger:              logging.OrDefault(logger),
		workerCount:         workers,
		sequentialThreshold: threshold,
	}
}

// Workers returns the pool size.
func (p *Processor) Workers() int {
	return p.workerCount
}

type indexed[R any] struct {
	index  int
	result R
}

// Process applies fn to every item and returns the results in input order.
// Once ctx is cancelled no new items are started; their results keep the zero
// value, and ctx.Err() is returned.
func Process[T, R any](ctx context.Context, p *Processor, items []T, fn func(context.Context, T) R) ([]R, error) {
	results := make([]R, len(items))
	if len(items) < p.sequentialThreshold || p.workerCount == 1 {
		for i := range items {
			if err := ctx.Err(); err != nil {
				return results, err
			}
			results[i] = fn(ctx, items[i])
		}
		return results, nil
	}

	jobs := make(chan int, p.workerCount)
	out := make(chan indexed[R], p.workerCount)

	var wg sync.WaitGroup
	for w := 0; w < p.workerCount; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				out <- indexed[R]{index: i, result: fn(ctx, items[i])}
			}
		}()
	}

	go func() {
		defer close(jobs)
		for i := range items {
			if ctx.Err() != nil {
				return
			}
			select {
			case jobs <- i:
			case <-ctx.Done():
				return
			}
		}
	}()

	go func() {
		wg.Wait()
		close(out)
	}()

	for r := range out {
		results[r.index] = r.result
	}

	p.logger.Debug("Concurrent processing completed",
		logging.Field{Key: logging.FieldCount, Value: len(items)},
		logging.Field{Key: "workers", Value: p.workerCount})

	return results, ctx.Err()
}
