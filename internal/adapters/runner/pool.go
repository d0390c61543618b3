package runner

import (
	"EventBus/internal/core/ports"
	"context"

	"github.com/rs/zerolog"
	"github.com/segmentio/fasthash/fnv1a"
	"go.uber.org/multierr"
)

var _ ports.KeyedRunner = (*Pool)(nil)

// Pool is a fixed set of workers. Each key is pinned to one worker, so
// tasks for the same key keep their submission order while different keys
// run in parallel.
type Pool struct {
	workers []*Worker
}

// NewPool starts size workers.
func NewPool(size int, baseLogger *zerolog.Logger, opts ...WorkerOption) *Pool {
	if size < 1 {
		size = 1
	}

	p := &Pool{workers: make([]*Worker, size)}
	for i := range p.workers {
		p.workers[i] = NewWorker(baseLogger, opts...)
	}
	return p
}

// For returns the runner that serves key.
func (p *Pool) For(key string) ports.Runner {
	idx := fnv1a.HashString64(key) % uint64(len(p.workers))
	return p.workers[idx]
}

// Submit runs task on the worker of the empty key.
func (p *Pool) Submit(task func()) {
	p.For("").Submit(task)
}

// Size returns the number of workers.
func (p *Pool) Size() int {
	return len(p.workers)
}

// Close closes every worker and returns the combined errors.
func (p *Pool) Close(ctx context.Context) error {
	var err error
	for _, w := range p.workers {
		err = multierr.Append(err, w.Close(ctx))
	}
	return err
}
