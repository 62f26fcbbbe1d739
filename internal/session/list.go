package session

import (
	"context"
	"sync"

	"github.com/wolfman30/apptline/internal/appointments"
	"github.com/wolfman30/apptline/pkg/logging"
)

// Fetcher is the read side of the appointment store the list loads from.
type Fetcher interface {
	SelectAll(ctx context.Context) ([]*appointments.Appointment, error)
}

// List is the session's canonical in-memory appointment collection. It is
// explicitly owned and injected into the handlers that mutate it; the only
// mutations are the reducer-style operations below: load, append,
// replace-by-id. The store remains the durable source of truth across
// sessions.
type List struct {
	fetcher Fetcher
	logger  *logging.Logger

	mu      sync.RWMutex
	appts   []appointments.Appointment
	loaded  bool
	lastErr error
}

// NewList constructs an empty, unloaded list.
func NewList(fetcher Fetcher, logger *logging.Logger) *List {
	if fetcher == nil {
		panic("session: fetcher required")
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &List{fetcher: fetcher, logger: logger}
}

// Load fetches every appointment from the store. On failure the error state
// is recorded and any previously loaded list is kept; recovery is the
// user-initiated Load retry, never automatic.
func (l *List) Load(ctx context.Context) error {
	rows, err := l.fetcher.SelectAll(ctx)

	l.mu.Lock()
	defer l.mu.Unlock()
	if err != nil {
		l.lastErr = err
		l.logger.Error("session list load failed", "error", err)
		return err
	}

	appts := make([]appointments.Appointment, 0, len(rows))
	for _, row := range rows {
		appts = append(appts, *row)
	}
	l.appts = appts
	l.loaded = true
	l.lastErr = nil
	l.logger.Info("session list loaded", "count", len(appts))
	return nil
}

// Append adds a newly created record to the list.
func (l *List) Append(appt *appointments.Appointment) {
	if appt == nil {
		return
	}
	l.mu.Lock()
	l.appts = append(l.appts, *appt)
	l.mu.Unlock()
}

// ReplaceByID swaps in the merged version of an updated record. All other
// records are left untouched; an unknown identifier is ignored.
func (l *List) ReplaceByID(appt appointments.Appointment) {
	l.mu.Lock()
	defer l.mu.Unlock()
	for i := range l.appts {
		if l.appts[i].ID == appt.ID {
			l.appts[i] = appt
			return
		}
	}
}

// Snapshot returns a copy of the current list plus the recorded error state.
func (l *List) Snapshot() ([]appointments.Appointment, bool, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	out := make([]appointments.Appointment, len(l.appts))
	copy(out, l.appts)
	return out, l.loaded, l.lastErr
}
