package tasks

import (
	"context"
	"log/slog"
	"time"

	"github.com/vigilsys/vigil/internal/queue"
	"github.com/vigilsys/vigil/internal/signals"
	"github.com/vigilsys/vigil/internal/watchdog"
)

// Task names as registered with the watchdog.
const (
	TaskProducer   = "producer"
	TaskConsumer   = "consumer"
	TaskSupervisor = "supervisor"
	TaskReporter   = "reporter"
)

// Producer generates a monotonically increasing integer every tick and
// attempts a non-blocking enqueue. A full queue drops the value; there
// is no retry and no backpressure beyond waiting for the next tick.
type Producer struct {
	queue    *queue.Queue[int]
	bus      *signals.Bus
	interval time.Duration
	logger   *slog.Logger

	// value wraps at the integer width; the process restarts long
	// before that matters in practice.
	value int
}

// NewProducer creates a producer ticking at the given interval.
func NewProducer(q *queue.Queue[int], bus *signals.Bus, interval time.Duration, logger *slog.Logger) *Producer {
	return &Producer{
		queue:    q,
		bus:      bus,
		interval: interval,
		logger:   logger.With("task", TaskProducer),
	}
}

// Run executes the producer loop until ctx is cancelled.
func (p *Producer) Run(ctx context.Context, monitor *watchdog.Monitor) error {
	petter, err := monitor.Register(TaskProducer)
	if err != nil {
		return err
	}

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			p.tick()
			petter.Pet()
		}
	}
}

// tick performs one produce attempt.
func (p *Producer) tick() {
	if p.queue.TrySend(p.value) {
		p.logger.Debug("value enqueued", "value", p.value)
		p.bus.Raise(signals.ProducerEnqueueOK)
	} else {
		p.logger.Warn("queue full, value dropped", "value", p.value)
		p.bus.Raise(signals.ProducerEnqueueFailed)
	}

	p.value++
}
