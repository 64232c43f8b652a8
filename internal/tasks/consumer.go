package tasks

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/vigilsys/vigil/internal/config"
	"github.com/vigilsys/vigil/internal/journal"
	"github.com/vigilsys/vigil/internal/queue"
	"github.com/vigilsys/vigil/internal/signals"
	"github.com/vigilsys/vigil/internal/watchdog"
)

// ErrRestartRequested is returned by the consumer when the aggressive
// recovery tier fires. It is terminal for the run: the whole task group
// is torn down and the daemon starts a fresh run.
var ErrRestartRequested = errors.New("consumer: aggressive recovery requested process restart")

// Consumer drains the queue with one non-blocking attempt per tick and
// tracks consecutive failures. Crossing a threshold escalates the
// recovery action: the light tier only signals, the moderate tier
// flushes the queue, the aggressive tier restarts the process.
//
// Thresholds are exact-match, so each tier fires at most once per
// escalation cycle and a single tick fires at most one tier.
type Consumer struct {
	queue    *queue.Queue[int]
	bus      *signals.Bus
	interval time.Duration
	cfg      config.ConsumerConfig
	journal  journal.Journal
	runID    uuid.UUID
	logger   *slog.Logger

	// failures counts consecutive failed dequeue attempts. Owned
	// exclusively by the consumer loop.
	failures int
}

// NewConsumer creates a consumer ticking at the given interval.
func NewConsumer(
	q *queue.Queue[int],
	bus *signals.Bus,
	interval time.Duration,
	cfg config.ConsumerConfig,
	jrnl journal.Journal,
	runID uuid.UUID,
	logger *slog.Logger,
) *Consumer {
	return &Consumer{
		queue:    q,
		bus:      bus,
		interval: interval,
		cfg:      cfg,
		journal:  jrnl,
		runID:    runID,
		logger:   logger.With("task", TaskConsumer),
	}
}

// Run executes the consumer loop until ctx is cancelled or the
// aggressive tier requests a restart.
func (c *Consumer) Run(ctx context.Context, monitor *watchdog.Monitor) error {
	petter, err := monitor.Register(TaskConsumer)
	if err != nil {
		return err
	}

	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if err := c.tick(ctx); err != nil {
				// Aggressive path: the run is about to be torn down,
				// petting would be moot.
				return err
			}
			petter.Pet()
		}
	}
}

// tick performs one dequeue attempt and evaluates the escalation state
// machine. It returns ErrRestartRequested when the aggressive tier
// fires and nil otherwise.
func (c *Consumer) tick(ctx context.Context) error {
	if v, ok := c.queue.TryReceive(); ok {
		c.failures = 0
		c.logger.Debug("value dequeued", "value", v)
		c.bus.Raise(signals.ConsumerDequeueOK)
		return nil
	}

	c.failures++

	switch c.failures {
	case c.cfg.LightThreshold:
		c.logger.Warn("light recovery: sustained dequeue failures, waiting",
			"consecutive_failures", c.failures)
		c.bus.Raise(signals.ConsumerTimeoutLight)
		c.record(ctx, journal.KindEscalationLight)

	case c.cfg.ModerateThreshold:
		c.logger.Warn("moderate recovery: flushing queue",
			"consecutive_failures", c.failures,
			"flushed_elements", c.queue.Len())
		c.queue.Flush()
		c.bus.Raise(signals.ConsumerTimeoutModerate)
		c.record(ctx, journal.KindEscalationModerate)
		if c.cfg.ResetOnFlush {
			c.failures = 0
		}

	case c.cfg.AggressiveThreshold:
		c.logger.Error("aggressive recovery: requesting process restart",
			"consecutive_failures", c.failures)
		c.bus.Raise(signals.ConsumerTimeoutAggressive)
		c.record(ctx, journal.KindEscalationAggressive)
		return ErrRestartRequested
	}

	return nil
}

// FailureCount returns the current consecutive-failure count. Only
// meaningful between ticks; the counter is owned by the consumer loop.
func (c *Consumer) FailureCount() int {
	return c.failures
}

func (c *Consumer) record(ctx context.Context, kind journal.Kind) {
	detail := fmt.Sprintf("consecutive_failures=%d", c.failures)
	if err := c.journal.Record(ctx, journal.NewEvent(c.runID, kind, detail)); err != nil {
		// Journaling is best-effort; recovery proceeds regardless.
		c.logger.Error("failed to journal escalation", "kind", kind, "error", err)
	}
}
