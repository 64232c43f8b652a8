// Package queue provides the fixed-capacity FIFO buffer connecting the
// producer and consumer tasks. All operations are non-blocking: callers
// get an immediate success/failure answer instead of suspending, which
// keeps tick cadence and watchdog petting predictable.
package queue

import (
	"errors"
	"sync"
)

// ErrInvalidCapacity is returned when a queue is created with a
// non-positive capacity.
var ErrInvalidCapacity = errors.New("queue capacity must be positive")

// Queue is a bounded FIFO ring buffer safe for concurrent use.
//
// A Go channel is deliberately not used here: Flush must clear the
// buffer in one atomic step while senders race it, which a channel
// cannot express without observable partial drains.
type Queue[T any] struct {
	mu   sync.Mutex
	buf  []T
	head int
	n    int
}

// New creates a queue holding at most capacity elements.
func New[T any](capacity int) (*Queue[T], error) {
	if capacity <= 0 {
		return nil, ErrInvalidCapacity
	}
	return &Queue[T]{buf: make([]T, capacity)}, nil
}

// TrySend attempts to append v at the tail. It never blocks; on a full
// queue it reports false and the queue is left unchanged.
func (q *Queue[T]) TrySend(v T) bool {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.n == len(q.buf) {
		return false
	}
	q.buf[(q.head+q.n)%len(q.buf)] = v
	q.n++
	return true
}

// TryReceive attempts to remove the head element. It never blocks; on
// an empty queue it reports false and the zero value.
func (q *Queue[T]) TryReceive() (T, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	var zero T
	if q.n == 0 {
		return zero, false
	}
	v := q.buf[q.head]
	q.buf[q.head] = zero
	q.head = (q.head + 1) % len(q.buf)
	q.n--
	return v, true
}

// Flush atomically discards all pending elements. Concurrent senders
// observe either the pre-flush or post-flush state, never a partial
// drain.
func (q *Queue[T]) Flush() {
	q.mu.Lock()
	defer q.mu.Unlock()

	var zero T
	for i := range q.buf {
		q.buf[i] = zero
	}
	q.head = 0
	q.n = 0
}

// Len returns the number of elements currently buffered.
func (q *Queue[T]) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.n
}

// Cap returns the configured capacity.
func (q *Queue[T]) Cap() int {
	return len(q.buf)
}
