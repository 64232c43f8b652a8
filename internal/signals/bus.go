package signals

import (
	"sync/atomic"
	"time"
)

// Bus is a set of one-shot boolean signal flags shared between the
// pipeline tasks. Any task may raise flags concurrently; a single
// observer drains (reads and clears) them. Raises between two drains
// merge by logical OR: occurrence is preserved, multiplicity is not.
type Bus struct {
	bits atomic.Uint32

	// wake carries at most one pending notification for blocking drains.
	wake chan struct{}
}

// NewBus creates an empty signal bus.
func NewBus() *Bus {
	return &Bus{
		wake: make(chan struct{}, 1),
	}
}

// Raise sets the given signal flags. Wait-free and safe from any
// goroutine; raising an already-set flag is a no-op.
func (b *Bus) Raise(s Signal) {
	b.bits.Or(uint32(s))

	select {
	case b.wake <- struct{}{}:
	default:
	}
}

// Drain atomically consumes and clears whichever flags in mask are
// currently set.
//
// With timeout zero it returns immediately, possibly with no flags.
// With a positive timeout it blocks until at least one flag in mask is
// set (match-any) or the timeout elapses, then consumes whatever is
// set at that moment. Flags outside mask are left untouched.
func (b *Bus) Drain(mask Signal, timeout time.Duration) Signal {
	if got := b.take(mask); got != 0 || timeout == 0 {
		return got
	}

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	for {
		select {
		case <-b.wake:
			if got := b.take(mask); got != 0 {
				return got
			}
		case <-timer.C:
			return b.take(mask)
		}
	}
}

// take clears and returns pending∩mask in one atomic step.
func (b *Bus) take(mask Signal) Signal {
	old := b.bits.And(^uint32(mask))
	return Signal(old) & mask
}
