package tasks

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"

	"github.com/vigilsys/vigil/internal/journal"
	"github.com/vigilsys/vigil/internal/queue"
	"github.com/vigilsys/vigil/internal/signals"
	"github.com/vigilsys/vigil/internal/watchdog"
)

// TestPipelineSkewDeterministic drives the producer and consumer on a
// simulated clock: the consumer ticks twice per producer tick over a
// capacity-1 queue, so every producer tick yields exactly one dequeue
// and every other consumer tick misses.
func TestPipelineSkewDeterministic(t *testing.T) {
	q, err := queue.New[int](1)
	require.NoError(t, err)
	bus := signals.NewBus()

	p := NewProducer(q, bus, 0, testLogger())
	c := NewConsumer(q, bus, 0, testConsumerConfig(), journal.Noop{}, uuid.New(), testLogger())

	ctx := context.Background()
	const producerTicks = 50

	dequeues := 0
	for i := 0; i < 2*producerTicks; i++ {
		if i%2 == 0 {
			p.tick()
		}
		require.NoError(t, c.tick(ctx))
		if bus.Drain(signals.ConsumerDequeueOK, 0) != 0 {
			dequeues++
		}
	}

	assert.Equal(t, producerTicks, dequeues)

	// Misses alternate with successes, so the consecutive-failure
	// count never approaches the light threshold.
	assert.LessOrEqual(t, c.FailureCount(), 1)
}

// TestPipelineSkewRealTime runs the two loops on real tickers with the
// consumer at twice the producer rate, per the original deployment
// shape, with compressed intervals. The dequeue count must track the
// producer tick count within a small skew.
func TestPipelineSkewRealTime(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping timing-sensitive test in short mode")
	}

	q, err := queue.New[int](1)
	require.NoError(t, err)
	bus := signals.NewBus()
	monitor := watchdog.NewMonitor(time.Second, nil, testLogger())

	p := NewProducer(q, bus, 30*time.Millisecond, testLogger())
	c := NewConsumer(q, bus, 15*time.Millisecond, testConsumerConfig(), journal.Noop{}, uuid.New(), testLogger())

	ctx, cancel := context.WithCancel(context.Background())

	// The test is the sole drainer of the dequeue flag; draining far
	// more often than the consumer ticks means occurrences cannot
	// collapse between drains.
	dequeueCh := make(chan int, 1)
	go func() {
		count := 0
		ticker := time.NewTicker(2 * time.Millisecond)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				if bus.Drain(signals.ConsumerDequeueOK, 0) != 0 {
					count++
				}
				dequeueCh <- count
				return
			case <-ticker.C:
				if bus.Drain(signals.ConsumerDequeueOK, 0) != 0 {
					count++
				}
			}
		}
	}()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return p.Run(gctx, monitor) })
	g.Go(func() error { return c.Run(gctx, monitor) })

	time.Sleep(500 * time.Millisecond)
	cancel()
	require.ErrorIs(t, g.Wait(), context.Canceled)

	dequeues := <-dequeueCh
	producerTicks := p.value

	assert.Greater(t, producerTicks, 10, "producer should have ticked several times")
	assert.InDelta(t, producerTicks, dequeues, 3,
		"dequeue count must track producer ticks within scheduling skew")
}
