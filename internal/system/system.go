// Package system assembles one run of the supervised pipeline: the
// bounded queue, the signal bus, the watchdog and the four task loops,
// constructed once per run and passed to each task explicitly. There
// is no package-global state; a fresh System is built for every
// (re)start, which is also what makes the core testable without a
// running daemon.
package system

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/vigilsys/vigil/internal/api"
	"github.com/vigilsys/vigil/internal/config"
	"github.com/vigilsys/vigil/internal/journal"
	"github.com/vigilsys/vigil/internal/queue"
	"github.com/vigilsys/vigil/internal/signals"
	"github.com/vigilsys/vigil/internal/tasks"
	"github.com/vigilsys/vigil/internal/watchdog"
)

const serverShutdownTimeout = 5 * time.Second

// System owns all components of one pipeline run.
type System struct {
	cfg     *config.Config
	logger  *slog.Logger
	journal journal.Journal
	runID   uuid.UUID

	queue      *queue.Queue[int]
	bus        *signals.Bus
	monitor    *watchdog.Monitor
	producer   *tasks.Producer
	consumer   *tasks.Consumer
	supervisor *tasks.Supervisor
	reporter   *tasks.Reporter
	status     *api.StatusHandler

	mu    sync.Mutex
	abort context.CancelCauseFunc
}

// New constructs a fully wired System. A queue or bus that cannot be
// created is an unrecoverable setup failure; the caller exits rather
// than retrying.
func New(cfg *config.Config, jrnl journal.Journal, logger *slog.Logger) (*System, error) {
	runID := uuid.New()
	logger = logger.With("run_id", runID)

	q, err := queue.New[int](cfg.Pipeline.QueueCapacity)
	if err != nil {
		return nil, fmt.Errorf("failed to create queue: %w", err)
	}
	bus := signals.NewBus()

	s := &System{
		cfg:     cfg,
		logger:  logger,
		journal: jrnl,
		runID:   runID,
		queue:   q,
		bus:     bus,
	}

	s.monitor = watchdog.NewMonitor(cfg.Watchdog.Deadline, s.onWatchdogTrip, logger)
	s.producer = tasks.NewProducer(q, bus, cfg.Pipeline.ProducerInterval, logger)
	s.consumer = tasks.NewConsumer(
		q, bus, cfg.Pipeline.ConsumerInterval, cfg.Consumer, jrnl, runID, logger)
	s.supervisor = tasks.NewSupervisor(bus, cfg.Pipeline.SupervisorInterval, logger)
	s.reporter = tasks.NewReporter(cfg.Pipeline.ReporterInterval, logger)
	s.status = api.NewStatusHandler(s.supervisor, s.reporter, s.monitor, runID, logger)

	return s, nil
}

// RunID identifies this run in logs and journal rows.
func (s *System) RunID() uuid.UUID {
	return s.runID
}

// Run starts every task loop plus the watchdog checker and the status
// listener, and blocks until the run ends. It returns:
//
//   - tasks.ErrRestartRequested when the consumer's aggressive tier
//     fired; the caller should build a fresh System and run again,
//   - an error wrapping watchdog.ErrLivenessViolation when a task
//     missed its liveness deadline; same restart treatment,
//   - nil when ctx was cancelled (normal shutdown),
//   - any other error for failures that should stop the daemon.
func (s *System) Run(ctx context.Context) error {
	runCtx, cancel := context.WithCancelCause(ctx)
	defer cancel(nil)

	s.mu.Lock()
	s.abort = cancel
	s.mu.Unlock()
	defer func() {
		s.mu.Lock()
		s.abort = nil
		s.mu.Unlock()
	}()

	s.logger.Info("run starting",
		"queue_capacity", s.queue.Cap(),
		"watchdog_deadline", s.cfg.Watchdog.Deadline)
	s.recordEvent(journal.KindRunStarted, "")

	g, gctx := errgroup.WithContext(runCtx)

	g.Go(func() error { return s.monitor.Run(gctx) })
	g.Go(func() error { return s.producer.Run(gctx, s.monitor) })
	g.Go(func() error { return s.consumer.Run(gctx, s.monitor) })
	g.Go(func() error { return s.supervisor.Run(gctx, s.monitor) })
	g.Go(func() error { return s.reporter.Run(gctx, s.monitor) })

	if s.cfg.Server.Port > 0 {
		g.Go(func() error { return s.serveStatus(gctx) })
	}

	err := g.Wait()

	// A watchdog trip cancels the group, so the tasks report plain
	// context.Canceled; the recorded cause is authoritative.
	if cause := context.Cause(runCtx); cause != nil && !errors.Is(cause, context.Canceled) {
		err = cause
	}

	switch {
	case errors.Is(err, tasks.ErrRestartRequested):
		s.recordEvent(journal.KindRunEnded, "aggressive escalation")
		return err
	case errors.Is(err, watchdog.ErrLivenessViolation):
		s.recordEvent(journal.KindLivenessViolation, err.Error())
		s.recordEvent(journal.KindRunEnded, "liveness violation")
		return err
	case ctx.Err() != nil:
		s.logger.Info("run stopped, shutdown requested")
		s.recordEvent(journal.KindRunEnded, "shutdown")
		return nil
	default:
		s.recordEvent(journal.KindRunEnded, "error")
		return err
	}
}

// onWatchdogTrip force-aborts the run, bypassing all in-process
// cleanup beyond goroutine teardown.
func (s *System) onWatchdogTrip(task string) {
	s.mu.Lock()
	abort := s.abort
	s.mu.Unlock()

	if abort != nil {
		abort(fmt.Errorf("%w: task %q", watchdog.ErrLivenessViolation, task))
	}
}

func (s *System) serveStatus(ctx context.Context) error {
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", s.cfg.Server.Port),
		Handler:           s.status.Router(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	s.logger.Info("status listener started", "port", s.cfg.Server.Port)

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), serverShutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			s.logger.Error("status listener shutdown failed", "error", err)
		}
		return ctx.Err()
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("status listener failed: %w", err)
	}
}

func (s *System) recordEvent(kind journal.Kind, detail string) {
	// Journal writes use a short independent timeout: the run context
	// is already cancelled on most of these paths.
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	if err := s.journal.Record(ctx, journal.NewEvent(s.runID, kind, detail)); err != nil {
		s.logger.Error("failed to journal run event", "kind", kind, "error", err)
	}
}
