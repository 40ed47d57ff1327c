package worker

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/okian/mergington/internal/adapters/mq/queue"
	"github.com/okian/mergington/pkg/logger"
	"github.com/okian/mergington/pkg/metrics"
)

const (
	defaultWorkerCount  = 2
	poolShutdownTimeout = 10 * time.Second
)

// Recorder applies a roster change to a downstream view.
type Recorder interface {
	Apply(ctx context.Context, c queue.Change) error
}

// RecorderFunc adapts a function to Recorder.
type RecorderFunc func(ctx context.Context, c queue.Change) error

// Apply calls f.
func (f RecorderFunc) Apply(ctx context.Context, c queue.Change) error { //nolint:gocritic // hugeParam: mirrors Recorder
	return f(ctx, c)
}

// Source is where workers read changes from.
type Source interface {
	Dequeue(ctx context.Context) <-chan queue.Change
}

// Worker consumes roster changes.
type Worker interface {
	// Run consumes changes until ctx is canceled, Shutdown is called or the source closes.
	Run(ctx context.Context)

	// Shutdown stops the worker and waits for it to exit.
	Shutdown(ctx context.Context) error
}

// InMemoryWorker applies changes from a Source to a Recorder.
type InMemoryWorker struct {
	source   Source
	recorder Recorder
	name     string

	shutdown chan struct{}
	done     chan struct{}

	logger logger.Logger
}

// NewInMemoryWorker creates a worker reading from source.
func NewInMemoryWorker(source Source, recorder Recorder, opts ...Option) *InMemoryWorker {
	w := &InMemoryWorker{
		source:   source,
		recorder: recorder,
		name:     "worker",
		shutdown: make(chan struct{}),
		done:     make(chan struct{}),
	}
	for _, opt := range opts {
		opt(w)
	}
	if w.logger == nil {
		w.logger = logger.Named("roster-worker")
	}
	w.logger = w.logger.With(logger.String("worker", w.name))
	return w
}

// Run starts the worker loop.
func (w *InMemoryWorker) Run(ctx context.Context) {
	defer close(w.done)

	changes := w.source.Dequeue(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-w.shutdown:
			return
		case c, ok := <-changes:
			if !ok {
				return
			}
			metrics.RecordQueueDequeue()
			if err := w.apply(ctx, c); err != nil {
				w.logger.Error(ctx, "failed to apply roster change", logger.Error(err))
			}
		}
	}
}

// Shutdown stops the worker and waits for Run to return.
func (w *InMemoryWorker) Shutdown(ctx context.Context) error {
	select {
	case <-w.shutdown:
	default:
		close(w.shutdown)
	}

	select {
	case <-w.done:
		return nil
	case <-ctx.Done():
		w.logger.Warn(ctx, "shutdown timed out")
		return fmt.Errorf("shutdown timed out: %w", ctx.Err())
	}
}

// Done is closed once Run has returned.
func (w *InMemoryWorker) Done() <-chan struct{} {
	return w.done
}

func (w *InMemoryWorker) apply(ctx context.Context, c queue.Change) error { //nolint:gocritic // hugeParam: received by value from the channel
	if err := w.recorder.Apply(ctx, c); err != nil {
		metrics.RecordWorkerError()
		return fmt.Errorf("apply %s change %s: %w", c.Kind, c.ID, err)
	}
	metrics.RecordRosterChangeApplied(string(c.Kind))
	return nil
}

// Pool runs a fixed set of workers over one source.
type Pool struct {
	workers []*InMemoryWorker
	source  Source
	logger  logger.Logger
}

// NewPool creates workerCount workers. A non-positive count falls back to the default.
func NewPool(workerCount int, source Source, recorder Recorder, opts ...Option) *Pool {
	if workerCount < 1 {
		workerCount = defaultWorkerCount
	}

	p := &Pool{
		workers: make([]*InMemoryWorker, workerCount),
		source:  source,
		logger:  logger.Named("roster-pool"),
	}
	for i := range p.workers {
		workerOpts := append([]Option{WithName("worker-" + strconv.Itoa(i))}, opts...)
		p.workers[i] = NewInMemoryWorker(source, recorder, workerOpts...)
	}

	metrics.UpdateWorkerCount(workerCount)
	return p
}

// Size returns the number of workers.
func (p *Pool) Size() int {
	return len(p.workers)
}

// Start launches every worker.
func (p *Pool) Start(ctx context.Context) {
	for _, w := range p.workers {
		go w.Run(ctx)
	}
}

// Shutdown closes the source when it supports it, lets the workers drain
// what is buffered, and waits for them to exit.
func (p *Pool) Shutdown(ctx context.Context) error {
	closed := false
	if closer, ok := p.source.(interface{ Close() error }); ok {
		if err := closer.Close(); err != nil {
			p.logger.Error(ctx, "error closing change queue", logger.Error(err))
		} else {
			closed = true
		}
	}

	shutdownCtx, cancel := context.WithTimeout(ctx, poolShutdownTimeout)
	defer cancel()

	for i, w := range p.workers {
		if closed {
			// Workers exit on their own once the closed queue is drained.
			select {
			case <-w.Done():
				continue
			case <-shutdownCtx.Done():
			}
		}
		if err := w.Shutdown(shutdownCtx); err != nil {
			p.logger.Warn(ctx, "worker shutdown timed out", logger.Int("worker_id", i))
		}
	}
	metrics.UpdateWorkerCount(0)
	return nil
}
