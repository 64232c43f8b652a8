// Package journal records recovery-relevant events (escalations,
// watchdog trips, restarts) in a durable store so that the history of
// self-healing actions survives the very restarts the pipeline is
// built around. The journal is strictly write-side from the daemon's
// point of view; operators query it out of band.
package journal

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Kind classifies a recovery event.
type Kind string

// The recovery event kinds the daemon records.
const (
	KindRunStarted           Kind = "run_started"
	KindRunEnded             Kind = "run_ended"
	KindEscalationLight      Kind = "escalation_light"
	KindEscalationModerate   Kind = "escalation_moderate"
	KindEscalationAggressive Kind = "escalation_aggressive"
	KindLivenessViolation    Kind = "liveness_violation"
)

// Event is one recovery-journal entry.
type Event struct {
	ID        uuid.UUID
	RunID     uuid.UUID
	Kind      Kind
	Detail    string
	CreatedAt time.Time
}

// NewEvent builds an event for the given run with a fresh ID and the
// current timestamp.
func NewEvent(runID uuid.UUID, kind Kind, detail string) Event {
	return Event{
		ID:        uuid.New(),
		RunID:     runID,
		Kind:      kind,
		Detail:    detail,
		CreatedAt: time.Now().UTC(),
	}
}

// Journal persists recovery events. Implementations must tolerate
// being called from multiple goroutines.
type Journal interface {
	// Record persists one event. A failure to record never blocks
	// recovery itself; callers log and continue.
	Record(ctx context.Context, event Event) error

	// Close releases the underlying store.
	Close() error
}

// Noop is the journal used when no database is configured.
type Noop struct{}

// Record discards the event.
func (Noop) Record(context.Context, Event) error { return nil }

// Close does nothing.
func (Noop) Close() error { return nil }
