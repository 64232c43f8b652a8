package system

import (
	"context"
	"sync"

	"github.com/vigilsys/vigil/internal/journal"
)

// recordingJournal captures journaled events for assertions.
type recordingJournal struct {
	mu     sync.Mutex
	events []journal.Event
}

func (r *recordingJournal) Record(_ context.Context, event journal.Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, event)
	return nil
}

func (r *recordingJournal) Close() error { return nil }

func (r *recordingJournal) all() []journal.Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]journal.Event(nil), r.events...)
}

func (r *recordingJournal) kinds() []journal.Kind {
	r.mu.Lock()
	defer r.mu.Unlock()
	kinds := make([]journal.Kind, 0, len(r.events))
	for _, e := range r.events {
		kinds = append(kinds, e.Kind)
	}
	return kinds
}
