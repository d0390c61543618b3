package runner

import (
	"EventBus/internal/core/ports"
	"context"
	"runtime/debug"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

var _ ports.Runner = (*Worker)(nil)

// Worker runs submitted tasks one at a time, in submission order, on a
// single goroutine. The queue is unbounded: Submit never blocks.
type Worker struct {
	log   zerolog.Logger
	delay time.Duration

	mu     sync.Mutex
	cond   *sync.Cond
	queue  []func()
	closed bool
	done   chan struct{}
}

// WorkerOption configures a Worker.
type WorkerOption func(*Worker)

// WithDelay makes the worker wait d before running each task.
func WithDelay(d time.Duration) WorkerOption {
	return func(w *Worker) {
		if d > 0 {
			w.delay = d
		}
	}
}

// NewWorker starts a new worker goroutine.
func NewWorker(baseLogger *zerolog.Logger, opts ...WorkerOption) *Worker {
	w := &Worker{
		log:  baseLogger.With().Str("component", "runner_worker").Logger(),
		done: make(chan struct{}),
	}
	for _, opt := range opts {
		opt(w)
	}
	w.cond = sync.NewCond(&w.mu)

	go w.loop()
	return w
}

// Submit queues a task. Tasks submitted after Close are dropped.
func (w *Worker) Submit(task func()) {
	if task == nil {
		return
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed {
		w.log.Warn().Msg("Task submitted to a closed worker, dropping it")
		return
	}
	w.queue = append(w.queue, task)
	w.cond.Signal()
}

// Pending returns the number of queued tasks not yet started.
func (w *Worker) Pending() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return len(w.queue)
}

// Close stops accepting tasks and waits until the queued ones have run
// or ctx is done.
func (w *Worker) Close(ctx context.Context) error {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return ErrClosed
	}
	w.closed = true
	w.cond.Signal()
	w.mu.Unlock()

	select {
	case <-w.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (w *Worker) loop() {
	defer close(w.done)

	for {
		w.mu.Lock()
		for len(w.queue) == 0 && !w.closed {
			w.cond.Wait()
		}
		if len(w.queue) == 0 {
			// closed and drained
			w.mu.Unlock()
			return
		}
		task := w.queue[0]
		w.queue[0] = nil
		w.queue = w.queue[1:]
		w.mu.Unlock()

		if w.delay > 0 {
			time.Sleep(w.delay)
		}
		w.run(task)
	}
}

// run keeps the worker alive when a task panics.
func (w *Worker) run(task func()) {
	defer func() {
		if r := recover(); r != nil {
			w.log.Error().
				Interface("panic", r).
				Str("stack", string(debug.Stack())).
				Msg("Task panicked")
		}
	}()
	task()
}
