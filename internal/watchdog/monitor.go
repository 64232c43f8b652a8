// Package watchdog enforces liveness on the pipeline tasks. Every task
// registers once at startup and must pet its registration within the
// configured deadline; a missed deadline trips the monitor, which
// force-restarts the run without any in-process cleanup.
package watchdog

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"
)

// ErrLivenessViolation is the cause reported when a registered task
// misses its petting deadline.
var ErrLivenessViolation = errors.New("watchdog: task missed liveness deadline")

// ErrAlreadyRegistered is returned when a task name is registered twice.
var ErrAlreadyRegistered = errors.New("watchdog: task already registered")

// Monitor tracks the last pet time of every registered task and trips
// when any of them exceeds the deadline.
type Monitor struct {
	deadline time.Duration
	onTrip   func(task string)
	logger   *slog.Logger

	mu      sync.Mutex
	lastPet map[string]time.Time
	tripped bool
}

// NewMonitor creates a monitor with the given petting deadline. onTrip
// is invoked at most once, from the checking goroutine, with the name
// of the first task that missed its deadline.
func NewMonitor(deadline time.Duration, onTrip func(task string), logger *slog.Logger) *Monitor {
	return &Monitor{
		deadline: deadline,
		onTrip:   onTrip,
		logger:   logger.With("component", "watchdog"),
		lastPet:  make(map[string]time.Time),
	}
}

// Register adds a task to the monitored set and returns its petter.
// The registration counts as an initial pet.
func (m *Monitor) Register(task string) (*Petter, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.lastPet[task]; ok {
		return nil, fmt.Errorf("%w: %q", ErrAlreadyRegistered, task)
	}
	m.lastPet[task] = time.Now()
	m.logger.Debug("task registered", "task", task, "deadline", m.deadline)

	return &Petter{monitor: m, task: task}, nil
}

// Run checks all registrations until ctx is cancelled. The check
// period is a quarter of the deadline so a violation is detected well
// within one deadline window of occurring.
func (m *Monitor) Run(ctx context.Context) error {
	ticker := time.NewTicker(m.deadline / 4)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			m.check(time.Now())
		}
	}
}

// PetAges returns, per task, how long ago each registration was last
// petted. Used by the status API.
func (m *Monitor) PetAges() map[string]time.Duration {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := time.Now()
	ages := make(map[string]time.Duration, len(m.lastPet))
	for task, at := range m.lastPet {
		ages[task] = now.Sub(at)
	}
	return ages
}

func (m *Monitor) check(now time.Time) {
	m.mu.Lock()
	if m.tripped {
		m.mu.Unlock()
		return
	}

	var late string
	for task, at := range m.lastPet {
		if now.Sub(at) > m.deadline {
			late = task
			break
		}
	}
	if late == "" {
		m.mu.Unlock()
		return
	}
	m.tripped = true
	m.mu.Unlock()

	m.logger.Error("liveness deadline missed, forcing restart",
		"task", late,
		"deadline", m.deadline)
	if m.onTrip != nil {
		m.onTrip(late)
	}
}

func (m *Monitor) pet(task string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.lastPet[task] = time.Now()
}

// Petter is the handle a registered task uses to confirm progress.
type Petter struct {
	monitor *Monitor
	task    string
}

// Pet records that the task is still making progress. Must be called
// at least once per deadline window.
func (p *Petter) Pet() {
	p.monitor.pet(p.task)
}
