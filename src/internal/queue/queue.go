// FILE: hooklog/src/internal/queue/queue.go
package queue

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
)

// ErrClosed is returned when sending on a queue with no live producers
var ErrClosed = errors.New("queue closed")

// OverflowPolicy decides what a bounded queue does when full
type OverflowPolicy int

const (
	OverflowDropNewest OverflowPolicy = iota
	OverflowDropOldest
	OverflowBlock
)

// ParseOverflow converts a configuration name into a policy
func ParseOverflow(name string) (OverflowPolicy, error) {
	switch name {
	case "", "drop_newest":
		return OverflowDropNewest, nil
	case "drop_oldest":
		return OverflowDropOldest, nil
	case "block":
		return OverflowBlock, nil
	default:
		return 0, fmt.Errorf("unknown overflow policy: %s", name)
	}
}

func (p OverflowPolicy) String() string {
	switch p {
	case OverflowDropNewest:
		return "drop_newest"
	case OverflowDropOldest:
		return "drop_oldest"
	case OverflowBlock:
		return "block"
	default:
		return "unknown"
	}
}

// Options configures a queue. A zero Capacity means unbounded, in which case
// Overflow is ignored and Send never blocks.
type Options struct {
	Capacity int
	Overflow OverflowPolicy
}

// Queue is an ordered multi-producer, single-consumer queue. It closes
// exactly once, when the last producer handle is closed.
type Queue[T any] struct {
	mu        sync.Mutex
	items     []T
	head      int
	producers int
	closed    bool

	capacity int
	overflow OverflowPolicy

	notify chan struct{} // wakes the consumer
	space  chan struct{} // wakes a producer blocked on a full queue
	done   chan struct{} // closed with the queue

	// Statistics
	enqueued atomic.Uint64
	dequeued atomic.Uint64
	dropped  atomic.Uint64
}

// Stats is a snapshot of queue counters
type Stats struct {
	Length    int
	Capacity  int
	Overflow  string
	Producers int
	Closed    bool
	Enqueued  uint64
	Dequeued  uint64
	Dropped   uint64
}

// New creates a queue together with its first producer handle
func New[T any](opts Options) (*Queue[T], *Producer[T]) {
	capacity := opts.Capacity
	if capacity < 0 {
		capacity = 0
	}

	q := &Queue[T]{
		producers: 1,
		capacity:  capacity,
		overflow:  opts.Overflow,
		notify:    make(chan struct{}, 1),
		space:     make(chan struct{}, 1),
		done:      make(chan struct{}),
	}
	return q, &Producer[T]{q: q}
}

// Receive returns the next item in enqueue order, suspending while the queue
// is empty. It returns false once the queue is closed and drained, or when
// ctx is done.
func (q *Queue[T]) Receive(ctx context.Context) (T, bool) {
	var zero T
	for {
		q.mu.Lock()
		if q.lenLocked() > 0 {
			v := q.popLocked()
			q.mu.Unlock()
			q.dequeued.Add(1)
			signal(q.space)
			return v, true
		}
		if q.closed {
			q.mu.Unlock()
			return zero, false
		}
		q.mu.Unlock()

		select {
		case <-q.notify:
		case <-q.done:
		case <-ctx.Done():
			return zero, false
		}
	}
}

// Len returns the number of queued items
func (q *Queue[T]) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.lenLocked()
}

// Closed reports whether the last producer is gone
func (q *Queue[T]) Closed() bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.closed
}

// Done is closed when the queue closes; items may still be pending
func (q *Queue[T]) Done() <-chan struct{} {
	return q.done
}

// GetStats returns a snapshot of the queue counters
func (q *Queue[T]) GetStats() Stats {
	q.mu.Lock()
	length, producers, closed := q.lenLocked(), q.producers, q.closed
	q.mu.Unlock()

	return Stats{
		Length:    length,
		Capacity:  q.capacity,
		Overflow:  q.overflow.String(),
		Producers: producers,
		Closed:    closed,
		Enqueued:  q.enqueued.Load(),
		Dequeued:  q.dequeued.Load(),
		Dropped:   q.dropped.Load(),
	}
}

func (q *Queue[T]) send(v T) error {
	for {
		q.mu.Lock()
		if q.closed {
			q.mu.Unlock()
			return ErrClosed
		}

		if q.capacity == 0 || q.lenLocked() < q.capacity {
			q.items = append(q.items, v)
			q.mu.Unlock()
			q.enqueued.Add(1)
			signal(q.notify)
			return nil
		}

		switch q.overflow {
		case OverflowDropOldest:
			q.popLocked()
			q.items = append(q.items, v)
			q.mu.Unlock()
			q.enqueued.Add(1)
			q.dropped.Add(1)
			signal(q.notify)
			return nil

		case OverflowBlock:
			q.mu.Unlock()
			select {
			case <-q.space:
			case <-q.done:
			}

		default:
			q.mu.Unlock()
			q.dropped.Add(1)
			return nil
		}
	}
}

func (q *Queue[T]) acquire() error {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.closed {
		return ErrClosed
	}
	q.producers++
	return nil
}

func (q *Queue[T]) release() {
	q.mu.Lock()
	q.producers--
	closing := q.producers == 0 && !q.closed
	if closing {
		q.closed = true
	}
	q.mu.Unlock()

	if closing {
		close(q.done)
	}
}

func (q *Queue[T]) lenLocked() int {
	return len(q.items) - q.head
}

// popLocked removes the head item. MUST be called with mutex held and a
// non-empty queue.
func (q *Queue[T]) popLocked() T {
	var zero T
	v := q.items[q.head]
	q.items[q.head] = zero
	q.head++

	// Reclaim the consumed prefix once it dominates the backing array
	if q.head == len(q.items) {
		q.items = q.items[:0]
		q.head = 0
	} else if q.head > 1024 && q.head*2 > len(q.items) {
		n := copy(q.items, q.items[q.head:])
		clear(q.items[n:])
		q.items = q.items[:n]
		q.head = 0
	}
	return v
}

// signal performs a non-blocking wake-up on a 1-slot channel
func signal(ch chan struct{}) {
	select {
	case ch <- struct{}{}:
	default:
	}
}
