package tasks

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vigilsys/vigil/internal/queue"
	"github.com/vigilsys/vigil/internal/signals"
)

func TestProducerEnqueuesSequentialValues(t *testing.T) {
	q, err := queue.New[int](5)
	require.NoError(t, err)
	bus := signals.NewBus()
	p := NewProducer(q, bus, 0, testLogger())

	for i := 0; i < 3; i++ {
		p.tick()
	}

	for want := 0; want < 3; want++ {
		got, ok := q.TryReceive()
		require.True(t, ok)
		assert.Equal(t, want, got)
	}
	assert.True(t, bus.Drain(signals.All, 0).Has(signals.ProducerEnqueueOK))
}

func TestProducerDropsOnFullQueue(t *testing.T) {
	q, err := queue.New[int](1)
	require.NoError(t, err)
	bus := signals.NewBus()
	p := NewProducer(q, bus, 0, testLogger())

	p.tick() // fills the capacity-1 queue with 0
	bus.Drain(signals.All, 0)

	p.tick() // queue full: 1 is dropped
	drained := bus.Drain(signals.All, 0)
	assert.True(t, drained.Has(signals.ProducerEnqueueFailed))
	assert.False(t, drained.Has(signals.ProducerEnqueueOK))

	// The counter increments regardless of drops: the next successful
	// enqueue carries the next value, not the dropped one.
	got, ok := q.TryReceive()
	require.True(t, ok)
	assert.Equal(t, 0, got)

	p.tick()
	got, ok = q.TryReceive()
	require.True(t, ok)
	assert.Equal(t, 2, got)
}
