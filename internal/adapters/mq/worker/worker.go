// Package worker evaluates queued search trials concurrently.
package worker

import (
	"context"
	"fmt"
	"runtime"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/okian/batsim/internal/domain/model"
	"github.com/okian/batsim/pkg/logger"
	"github.com/okian/batsim/pkg/metrics"
)

const workerShutdownTimeout = 5 * time.Second

// Trial is what workers read off the queue.
type Trial = model.Trial

// Evaluator scores one trial.
type Evaluator interface {
	Evaluate(ctx context.Context, t Trial) (model.Candidate, error)
}

// Sink receives evaluated candidates.
type Sink interface {
	Offer(ctx context.Context, c model.Candidate) bool
}

// Queue defines how workers receive trials.
type Queue interface {
	Dequeue(ctx context.Context) <-chan Trial
}

// Worker processes trials until its queue is drained or it is stopped.
type Worker interface {
	// Run starts the worker loop until ctx is canceled or the queue closes.
	Run(ctx context.Context)

	// Shutdown stops the worker after its current trial.
	Shutdown(ctx context.Context) error
}

// InMemoryWorker implements Worker.
type InMemoryWorker struct {
	queue     Queue
	evaluator Evaluator
	sink      Sink
	name      string
	pool      *Pool

	shutdown     chan struct{}
	shutdownOnce sync.Once
	done         chan struct{}

	logger logger.Logger
}

// NewInMemoryWorker creates a new worker with configuration options.
func NewInMemoryWorker(q Queue, ev Evaluator, sink Sink, opts ...Option) *InMemoryWorker {
	w := &InMemoryWorker{
		queue:     q,
		evaluator: ev,
		sink:      sink,
		name:      "worker",
		shutdown:  make(chan struct{}),
		done:      make(chan struct{}),
	}
	for _, opt := range opts {
		opt(w)
	}
	if w.logger == nil {
		w.logger = logger.Get().Named("worker")
	}
	w.logger = w.logger.With(logger.String("worker", w.name))
	return w
}

// Run starts the worker loop.
func (w *InMemoryWorker) Run(ctx context.Context) {
	defer close(w.done)

	trials := w.queue.Dequeue(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-w.shutdown:
			return
		case t, ok := <-trials:
			if !ok {
				return
			}
			if err := w.process(ctx, t); err != nil {
				w.logger.Warn(ctx, "trial failed", logger.Int("seq", t.Seq), logger.Error(err))
			}
		}
	}
}

// Shutdown stops the worker and waits for its loop to exit.
func (w *InMemoryWorker) Shutdown(ctx context.Context) error {
	w.shutdownOnce.Do(func() { close(w.shutdown) })
	select {
	case <-w.done:
		return nil
	case <-ctx.Done():
		w.logger.Warn(ctx, "shutdown timed out")
		return fmt.Errorf("shutdown timed out: %w", ctx.Err())
	}
}

// Done is closed when Run returns.
func (w *InMemoryWorker) Done() <-chan struct{} { return w.done }

func (w *InMemoryWorker) process(ctx context.Context, t Trial) error {
	start := time.Now()
	if w.pool != nil {
		w.pool.busy(1)
		defer w.pool.busy(-1)
	}
	defer func() {
		metrics.RecordWorkerProcessingLatency(float64(time.Since(start).Milliseconds()))
	}()

	c, err := w.evaluator.Evaluate(ctx, t)
	if err != nil {
		metrics.RecordWorkerError()
		metrics.RecordErrorByComponent("worker", "evaluation_error")
		if w.pool != nil {
			w.pool.fail(err)
		}
		return fmt.Errorf("evaluate trial %d: %w", t.Seq, err)
	}

	kept := w.sink.Offer(ctx, c)
	if w.pool != nil {
		w.pool.processed.Add(1)
	}
	w.logger.Debug(ctx, "trial evaluated",
		logger.Int("seq", t.Seq),
		logger.String("attributes", c.Attributes.String()),
		logger.Float64("error", c.Error),
		logger.Bool("kept", kept),
	)
	return nil
}

// Pool runs a fixed set of workers over one queue.
type Pool struct {
	id      string
	workers []*InMemoryWorker
	queue   Queue

	active    atomic.Int64
	processed atomic.Int64

	errMu  sync.Mutex
	err    error
	cancel context.CancelFunc

	logger logger.Logger
}

// NewPool creates a pool of workerCount workers. A count below one uses
// runtime.NumCPU().
func NewPool(workerCount int, q Queue, ev Evaluator, sink Sink, opts ...Option) *Pool {
	if workerCount < 1 {
		workerCount = runtime.NumCPU()
	}
	p := &Pool{
		id:      uuid.NewString(),
		workers: make([]*InMemoryWorker, workerCount),
		queue:   q,
	}
	base := &InMemoryWorker{}
	for _, opt := range opts {
		opt(base)
	}
	if base.logger == nil {
		base.logger = logger.Get().Named("worker-pool")
	}
	p.logger = base.logger.With(logger.String("pool", p.id))

	for i := range workerCount {
		w := NewInMemoryWorker(q, ev, sink, WithName("worker-"+strconv.Itoa(i)), WithLogger(p.logger))
		w.pool = p
		p.workers[i] = w
	}

	metrics.UpdateWorkerCount(workerCount)
	metrics.UpdateWorkerActiveCount(0)
	metrics.UpdateWorkerIdleCount(workerCount)

	return p
}

// ID returns the pool's unique identifier.
func (p *Pool) ID() string { return p.id }

// Size returns the number of workers.
func (p *Pool) Size() int { return len(p.workers) }

// Processed returns the number of trials evaluated successfully.
func (p *Pool) Processed() int64 { return p.processed.Load() }

// Err returns the first evaluation error, if any. The first error also
// cancels the context the workers run under.
func (p *Pool) Err() error {
	p.errMu.Lock()
	defer p.errMu.Unlock()
	return p.err
}

// Start starts all workers.
func (p *Pool) Start(ctx context.Context) {
	ctx, cancel := context.WithCancel(ctx)
	p.errMu.Lock()
	p.cancel = cancel
	p.errMu.Unlock()

	p.logger.Debug(ctx, "starting workers", logger.Int("count", len(p.workers)))
	for _, w := range p.workers {
		go w.Run(ctx)
	}
}

// Wait blocks until every worker has exited.
func (p *Pool) Wait() {
	for _, w := range p.workers {
		<-w.done
	}
	p.errMu.Lock()
	defer p.errMu.Unlock()
	if p.cancel != nil {
		p.cancel()
	}
}

// Shutdown stops every worker, waiting at most workerShutdownTimeout each.
func (p *Pool) Shutdown(ctx context.Context) error {
	if closer, ok := p.queue.(interface{ Close() error }); ok {
		if err := closer.Close(); err != nil {
			p.logger.Error(ctx, "error closing queue", logger.Error(err))
		}
	}
	for i, w := range p.workers {
		wctx, cancel := context.WithTimeout(ctx, workerShutdownTimeout)
		if err := w.Shutdown(wctx); err != nil {
			p.logger.Warn(ctx, "worker shutdown timed out", logger.Int("worker_id", i))
		}
		cancel()
	}
	return nil
}

func (p *Pool) busy(delta int64) {
	n := p.active.Add(delta)
	metrics.UpdateWorkerActiveCount(int(n))
	metrics.UpdateWorkerIdleCount(len(p.workers) - int(n))
}

func (p *Pool) fail(err error) {
	p.errMu.Lock()
	defer p.errMu.Unlock()
	if p.err != nil {
		return
	}
	p.err = err
	if p.cancel != nil {
		p.cancel()
	}
}
