// FILE: hooklog/src/internal/queue/producer.go
package queue

import "sync/atomic"

// Producer is one live sending handle. The queue stays open while at least
// one producer is open.
type Producer[T any] struct {
	q      *Queue[T]
	closed atomic.Bool
}

// Send enqueues v. In unbounded mode it never blocks; it fails only with
// ErrClosed.
func (p *Producer[T]) Send(v T) error {
	if p.closed.Load() {
		return ErrClosed
	}
	return p.q.send(v)
}

// Clone registers an additional handle on the same queue
func (p *Producer[T]) Clone() (*Producer[T], error) {
	if p.closed.Load() {
		return nil, ErrClosed
	}
	if err := p.q.acquire(); err != nil {
		return nil, err
	}
	return &Producer[T]{q: p.q}, nil
}

// Close drops this handle. Closing the last handle closes the queue.
// Repeated calls are no-ops.
func (p *Producer[T]) Close() {
	if p.closed.CompareAndSwap(false, true) {
		p.q.release()
	}
}

// Closed reports whether this handle, or the whole queue, is closed
func (p *Producer[T]) Closed() bool {
	return p.closed.Load() || p.q.Closed()
}
