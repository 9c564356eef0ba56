// Package repository holds the in-memory candidate store used by the search.
package repository

import (
	"container/heap"
	"context"
	"fmt"
	"slices"
	"sync"

	"github.com/okian/batsim/internal/domain/model"
	"github.com/okian/batsim/pkg/metrics"
)

// CandidatePool keeps the best Cap candidates offered to it.
//
// Ordering is ascending (Error, Seq). The heap root is the worst retained
// candidate, so a full pool decides an offer in O(1) and replaces in
// O(log n). Because Seq breaks error ties, the retained set does not depend
// on the order offers arrive in.
type CandidatePool struct {
	mu      sync.Mutex
	items   maxHeap
	cap     int
	metrics bool
}

// NewCandidatePool creates an empty pool holding at most capacity candidates.
func NewCandidatePool(capacity int, opts ...Option) (*CandidatePool, error) {
	if capacity <= 0 {
		return nil, fmt.Errorf("capacity %d: %w", capacity, ErrInvalidCapacity)
	}
	p := &CandidatePool{
		items:   make(maxHeap, 0, capacity),
		cap:     capacity,
		metrics: true,
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.metrics {
		metrics.UpdatePoolCapacity(capacity)
		metrics.UpdatePoolSize(0)
	}
	return p, nil
}

// Offer inserts c when the pool has room, or replaces the worst candidate
// when c orders strictly before it. It reports whether c was retained.
func (p *CandidatePool) Offer(ctx context.Context, c model.Candidate) bool {
	if ctx.Err() != nil {
		return false
	}
	p.mu.Lock()
	defer p.mu.Unlock()

	if len(p.items) < p.cap {
		heap.Push(&p.items, c)
		if p.metrics {
			metrics.UpdatePoolSize(len(p.items))
		}
		return true
	}
	if !c.Less(p.items[0]) {
		if p.metrics {
			metrics.RecordPoolRejected()
		}
		return false
	}
	p.items[0] = c
	heap.Fix(&p.items, 0)
	if p.metrics {
		metrics.RecordPoolEviction()
	}
	return true
}

// Len returns the number of retained candidates.
func (p *CandidatePool) Len() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.items)
}

// Cap returns the pool capacity.
func (p *CandidatePool) Cap() int { return p.cap }

// Worst returns the worst retained candidate.
func (p *CandidatePool) Worst() (model.Candidate, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if len(p.items) == 0 {
		return model.Candidate{}, false
	}
	return p.items[0], true
}

// Sorted returns the retained candidates best first.
func (p *CandidatePool) Sorted() []model.Candidate {
	p.mu.Lock()
	out := slices.Clone([]model.Candidate(p.items))
	p.mu.Unlock()

	slices.SortFunc(out, func(a, b model.Candidate) int {
		switch {
		case a.Less(b):
			return -1
		case b.Less(a):
			return 1
		default:
			return 0
		}
	})
	return out
}

// Reset empties the pool.
func (p *CandidatePool) Reset() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.items = p.items[:0]
	if p.metrics {
		metrics.UpdatePoolSize(0)
	}
}

// maxHeap orders candidates worst first.
type maxHeap []model.Candidate

func (h maxHeap) Len() int           { return len(h) }
func (h maxHeap) Less(i, j int) bool { return h[j].Less(h[i]) }
func (h maxHeap) Swap(i, j int)      { h[i], h[j] = h[j], h[i] }

func (h *maxHeap) Push(x any) { *h = append(*h, x.(model.Candidate)) }

func (h *maxHeap) Pop() any {
	old := *h
	n := len(old)
	x := old[n-1]
	*h = old[:n-1]
	return x
}
