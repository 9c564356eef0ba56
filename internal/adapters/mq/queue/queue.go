// Package queue carries search trials from the sampler to the worker pool.
package queue

import (
	"context"
	"sync"
	"time"

	"github.com/okian/batsim/internal/domain/model"
	"github.com/okian/batsim/pkg/metrics"
)

const defaultQueueCapacity = 4096

// Trial is the payload type flowing through the queue.
type Trial = model.Trial

// Queue provides non-blocking enqueue and channel-based dequeue semantics.
type Queue interface {
	// Enqueue adds a trial. It returns false if the queue is full or closed.
	Enqueue(ctx context.Context, t Trial) bool

	// Dequeue returns a channel delivering queued trials. The channel is
	// closed once the queue is closed and drained, or ctx is done.
	Dequeue(ctx context.Context) <-chan Trial

	// Len returns the current number of queued trials.
	Len(ctx context.Context) int

	// Close stops accepting trials. Already queued trials are still delivered.
	Close() error

	// IsClosed returns true if the queue has been closed.
	IsClosed() bool
}

type envelope struct {
	trial    Trial
	enqueued time.Time
}

// InMemoryQueue implements Queue using a buffered channel.
type InMemoryQueue struct {
	items    chan envelope
	capacity int

	mu     sync.RWMutex
	closed bool
}

// NewInMemoryQueue creates a new in-memory queue with configuration options.
func NewInMemoryQueue(opts ...Option) *InMemoryQueue {
	q := &InMemoryQueue{capacity: defaultQueueCapacity}
	for _, opt := range opts {
		opt(q)
	}
	q.items = make(chan envelope, q.capacity)

	metrics.UpdateQueueCapacity(q.capacity)
	q.observe()

	return q
}

// Enqueue adds a trial to the queue without blocking.
func (q *InMemoryQueue) Enqueue(ctx context.Context, t Trial) bool {
	q.mu.RLock()
	defer q.mu.RUnlock()

	if q.closed {
		metrics.RecordQueueEnqueueError()
		metrics.RecordErrorByComponent("queue", "closed")
		return false
	}
	if ctx.Err() != nil {
		metrics.RecordQueueEnqueueError()
		metrics.RecordErrorByComponent("queue", "context_cancelled")
		return false
	}

	select {
	case q.items <- envelope{trial: t, enqueued: time.Now()}:
		metrics.RecordQueueEnqueue()
		q.observe()
		return true
	default:
		metrics.RecordQueueEnqueueError()
		metrics.RecordErrorByComponent("queue", "queue_full")
		return false
	}
}

// Dequeue returns a channel that receives trials as they become available.
func (q *InMemoryQueue) Dequeue(ctx context.Context) <-chan Trial {
	out := make(chan Trial)
	go func() {
		defer close(out)
		for {
			select {
			case <-ctx.Done():
				return
			case env, ok := <-q.items:
				if !ok {
					return
				}
				select {
				case out <- env.trial:
					metrics.RecordQueueDequeue()
					metrics.RecordQueueProcessingLatency(float64(time.Since(env.enqueued).Milliseconds()))
					q.observe()
				case <-ctx.Done():
					return
				}
			}
		}
	}()
	return out
}

// Len returns the current number of queued trials.
func (q *InMemoryQueue) Len(ctx context.Context) int {
	return q.observe()
}

// Close stops accepting new trials.
func (q *InMemoryQueue) Close() error {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return nil
	}
	close(q.items)
	q.closed = true
	return nil
}

// IsClosed returns true if the queue has been closed.
func (q *InMemoryQueue) IsClosed() bool {
	q.mu.RLock()
	defer q.mu.RUnlock()
	return q.closed
}

func (q *InMemoryQueue) observe() int {
	size := len(q.items)
	metrics.UpdateQueueSize(size)
	metrics.UpdateQueueUtilization(float64(size) / float64(q.capacity))
	return size
}
