package processor

import (
	"context"
	"errors"
	"sync"

	"github.com/cespare/xxhash/v2"
)

// shardQueueSize is the buffer of every shard.
const shardQueueSize = 64

// errDispatcherStopped is returned by Submit after Stop.
var errDispatcherStopped = errors.New("dispatcher stopped")

// Job is one unit of work bound to a key.
type Job func(ctx context.Context)

// Dispatcher runs jobs of the same key sequentially and jobs of different keys in parallel.
type Dispatcher struct {
	shards []chan Job

	// mu guards stopped against sends on closed shards.
	mu      sync.RWMutex
	stopped bool

	wg sync.WaitGroup
}

// NewDispatcher creates a dispatcher with the given number of shards.
func NewDispatcher(workers int) *Dispatcher {
	workers = max(workers, 1)

	shards := make([]chan Job, workers)
	for i := range shards {
		shards[i] = make(chan Job, shardQueueSize)
	}

	return &Dispatcher{shards: shards}
}

// Start launches one worker per shard. Workers run jobs with ctx.
func (d *Dispatcher) Start(ctx context.Context) {
	for _, shard := range d.shards {
		d.wg.Add(1)

		go func() {
			defer d.wg.Done()

			for job := range shard {
				job(ctx)
			}
		}()
	}
}

// Submit queues job on the shard of key. It blocks while the shard is full.
func (d *Dispatcher) Submit(ctx context.Context, key string, job Job) error {
	d.mu.RLock()
	defer d.mu.RUnlock()

	if d.stopped {
		return errDispatcherStopped
	}

	select {
	case d.shards[d.shard(key)] <- job:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Stop rejects new jobs, lets the workers drain their queues and waits for them.
func (d *Dispatcher) Stop() {
	d.mu.Lock()

	if d.stopped {
		d.mu.Unlock()

		return
	}

	d.stopped = true

	for _, shard := range d.shards {
		close(shard)
	}

	d.mu.Unlock()

	d.wg.Wait()
}

func (d *Dispatcher) shard(key string) int {
	return int(xxhash.Sum64String(key) % uint64(len(d.shards)))
}
