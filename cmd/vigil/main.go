// Package main implements the vigil daemon: a supervised
// producer/consumer pipeline with watchdog-enforced liveness and an
// escalating failure-recovery state machine in the consumer.
package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/vigilsys/vigil/internal/config"
	"github.com/vigilsys/vigil/internal/journal"
	"github.com/vigilsys/vigil/internal/platform/logger"
	"github.com/vigilsys/vigil/internal/system"
	"github.com/vigilsys/vigil/internal/tasks"
	"github.com/vigilsys/vigil/internal/watchdog"
)

// healthyRunAge is how long a run must survive before the restart
// backoff resets to its initial interval.
const healthyRunAge = time.Minute

func main() {
	if err := run(); err != nil {
		log.Fatalf("vigil: %v", err)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	appLogger := logger.Setup(cfg.Server)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	jrnl, err := openJournal(ctx, cfg, appLogger)
	if err != nil {
		// Unrecoverable setup failure: exit non-zero and let the
		// service manager restart the process.
		return err
	}
	defer func() {
		if err := jrnl.Close(); err != nil {
			appLogger.Error("failed to close journal", "error", err)
		}
	}()

	return supervise(ctx, cfg, jrnl, appLogger)
}

// supervise runs Systems back to back: every restart-class exit tears
// the old run down completely and starts a fresh one after an
// exponential-backoff pause. Only context cancellation or a
// non-restart error ends the loop.
func supervise(ctx context.Context, cfg *config.Config, jrnl journal.Journal, appLogger *slog.Logger) error {
	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = cfg.Restart.InitialBackoff
	bo.MaxInterval = cfg.Restart.MaxBackoff
	bo.MaxElapsedTime = 0 // restart indefinitely

	for {
		sys, err := system.New(cfg, jrnl, appLogger)
		if err != nil {
			return fmt.Errorf("unrecoverable setup failure: %w", err)
		}

		started := time.Now()
		err = sys.Run(ctx)

		switch {
		case err == nil:
			return nil

		case errors.Is(err, tasks.ErrRestartRequested),
			errors.Is(err, watchdog.ErrLivenessViolation):
			if time.Since(started) > healthyRunAge {
				bo.Reset()
			}
			pause := bo.NextBackOff()
			appLogger.Warn("restarting pipeline",
				"run_id", sys.RunID(),
				"reason", err.Error(),
				"pause", pause)

			select {
			case <-ctx.Done():
				return nil
			case <-time.After(pause):
			}

		default:
			return err
		}
	}
}

func openJournal(ctx context.Context, cfg *config.Config, appLogger *slog.Logger) (journal.Journal, error) {
	if cfg.Database.URL == "" {
		appLogger.Info("no database configured, recovery journal disabled")
		return journal.Noop{}, nil
	}

	jrnl, err := journal.Open(ctx, cfg.Database.URL, appLogger)
	if err != nil {
		return nil, fmt.Errorf("failed to open recovery journal: %w", err)
	}
	return jrnl, nil
}
