package tasks

import (
	"context"
	"log/slog"
	"runtime"
	"sync"
	"time"

	"github.com/vigilsys/vigil/internal/watchdog"
)

// RuntimeStatus is one observation of the process runtime, the daemon
// equivalent of the original deployment's chip-info report.
type RuntimeStatus struct {
	Cores          int       `json:"cores"`
	RuntimeVersion string    `json:"runtime_version"`
	Goroutines     int       `json:"goroutines"`
	HeapAllocBytes uint64    `json:"heap_alloc_bytes"`
	HeapFreeBytes  uint64    `json:"heap_free_bytes"`
	CollectedAt    time.Time `json:"collected_at"`
}

// Reporter periodically reads process runtime facts and emits them as
// an observational log line. It feeds nothing back into the pipeline.
type Reporter struct {
	interval time.Duration
	logger   *slog.Logger

	mu   sync.Mutex
	last RuntimeStatus
}

// NewReporter creates a reporter ticking at the given interval.
func NewReporter(interval time.Duration, logger *slog.Logger) *Reporter {
	return &Reporter{
		interval: interval,
		logger:   logger.With("task", TaskReporter),
	}
}

// Run executes the reporter loop until ctx is cancelled.
func (r *Reporter) Run(ctx context.Context, monitor *watchdog.Monitor) error {
	petter, err := monitor.Register(TaskReporter)
	if err != nil {
		return err
	}

	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			r.tick()
			petter.Pet()
		}
	}
}

// tick collects and logs one runtime status observation.
func (r *Reporter) tick() {
	status := collect()

	r.logger.Info("system status",
		"cores", status.Cores,
		"runtime_version", status.RuntimeVersion,
		"goroutines", status.Goroutines,
		"heap_alloc_bytes", status.HeapAllocBytes,
		"heap_free_bytes", status.HeapFreeBytes)

	r.mu.Lock()
	r.last = status
	r.mu.Unlock()
}

// LastStatus returns the most recent observation, or the zero value if
// none has been collected yet.
func (r *Reporter) LastStatus() RuntimeStatus {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.last
}

func collect() RuntimeStatus {
	var mem runtime.MemStats
	runtime.ReadMemStats(&mem)

	return RuntimeStatus{
		Cores:          runtime.NumCPU(),
		RuntimeVersion: runtime.Version(),
		Goroutines:     runtime.NumGoroutine(),
		HeapAllocBytes: mem.HeapAlloc,
		HeapFreeBytes:  mem.HeapIdle - mem.HeapReleased,
		CollectedAt:    time.Now(),
	}
}
