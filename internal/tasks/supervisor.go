package tasks

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/vigilsys/vigil/internal/signals"
	"github.com/vigilsys/vigil/internal/watchdog"
)

// statusLines maps each signal to the status line the supervisor emits
// for it. The mapping is 1:1 and the signals are independent booleans,
// so emission order carries no meaning.
var statusLines = map[signals.Signal]string{
	signals.ProducerEnqueueOK:         "producer enqueued data",
	signals.ProducerEnqueueFailed:     "producer dropped data, queue full",
	signals.ConsumerDequeueOK:         "consumer received data",
	signals.ConsumerTimeoutLight:      "consumer in light timeout",
	signals.ConsumerTimeoutModerate:   "consumer flushed the queue",
	signals.ConsumerTimeoutAggressive: "consumer requested a restart",
}

// DrainSnapshot captures the outcome of the most recent supervisor
// drain, for the status API.
type DrainSnapshot struct {
	At      time.Time `json:"at"`
	Signals []string  `json:"signals"`

	// Totals counts drains (not raises) per signal since the run
	// started. Raises between drains collapse, so these are occurrence
	// counts per supervisor window.
	Totals map[string]uint64 `json:"totals"`
}

// Supervisor periodically drains all pending signals and emits one
// status line per drained signal. It keeps no state machine; it is a
// projection of the signal bus onto the log stream. Signals raised and
// drained between its ticks are not re-reported: this is a
// latest-status reporter, not an audit log.
type Supervisor struct {
	bus      *signals.Bus
	interval time.Duration
	logger   *slog.Logger

	mu     sync.Mutex
	last   DrainSnapshot
	totals map[string]uint64
}

// NewSupervisor creates a supervisor ticking at the given interval.
func NewSupervisor(bus *signals.Bus, interval time.Duration, logger *slog.Logger) *Supervisor {
	return &Supervisor{
		bus:      bus,
		interval: interval,
		logger:   logger.With("task", TaskSupervisor),
		totals:   make(map[string]uint64),
	}
}

// Run executes the supervisor loop until ctx is cancelled.
func (s *Supervisor) Run(ctx context.Context, monitor *watchdog.Monitor) error {
	petter, err := monitor.Register(TaskSupervisor)
	if err != nil {
		return err
	}

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			s.tick()
			petter.Pet()
		}
	}
}

// tick drains the full mask without blocking and reports each signal.
func (s *Supervisor) tick() {
	drained := s.bus.Drain(signals.All, 0)

	var names []string
	for _, sig := range drained.Split() {
		s.logger.Info(statusLines[sig], "signal", sig.String())
		names = append(names, sig.String())
	}

	s.mu.Lock()
	for _, name := range names {
		s.totals[name]++
	}
	totals := make(map[string]uint64, len(s.totals))
	for name, n := range s.totals {
		totals[name] = n
	}
	s.last = DrainSnapshot{At: time.Now(), Signals: names, Totals: totals}
	s.mu.Unlock()
}

// LastDrain returns a copy of the most recent drain snapshot.
func (s *Supervisor) LastDrain() DrainSnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.last
}
