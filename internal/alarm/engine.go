// Package alarm implements the client-side delivery engine: a polling
// loop that asks the backend for due reminders and surfaces each
// occurrence at most once, with snooze and dismiss actions.
package alarm

import (
	"context"
	"errors"
	"log"
	"sync"
	"time"

	"vital/internal/models"
)

// ErrNotAuthenticated is returned by a Boundary when the session is no
// longer valid. The engine halts instead of polling a rejecting backend.
var ErrNotAuthenticated = errors.New("not authenticated")

// Boundary is the backend the engine polls. Implementations must return
// ErrNotAuthenticated (possibly wrapped) on auth failure so the engine
// can stop; any other error is treated as transient.
type Boundary interface {
	GetDueReminders(ctx context.Context) ([]models.DueReminder, error)
	MarkComplete(ctx context.Context, reminderID int) error
}

// Presenter renders one due occurrence. Implementations decide the
// surface: audio popup, toast, browser push. Present and Clear are
// called with the engine lock held and must not block.
type Presenter interface {
	Present(r models.DueReminder)
	Clear(reminderID int)
}

type Options struct {
	PollInterval   time.Duration
	SnoozeDuration time.Duration
	Clock          func() time.Time // nil means time.Now
}

const (
	DefaultPollInterval   = 10 * time.Second
	DefaultSnoozeDuration = 5 * time.Minute
)

// Engine owns all dedup and snooze state so independent instances never
// interfere. User actions (Dismiss, Snooze) may interleave with an
// in-flight poll; the mutex keeps the state consistent.
type Engine struct {
	boundary   Boundary
	presenters []Presenter
	opts       Options

	mu        sync.Mutex
	dedup     *Deduplicator
	snoozes   *SnoozeRegistry
	presented map[int]models.DueReminder // occurrences currently on screen
	pending   map[int]*time.Timer        // snooze re-alert timers
	closed    bool
}

func NewEngine(boundary Boundary, opts Options, presenters ...Presenter) *Engine {
	if opts.PollInterval <= 0 {
		opts.PollInterval = DefaultPollInterval
	}
	if opts.SnoozeDuration <= 0 {
		opts.SnoozeDuration = DefaultSnoozeDuration
	}
	if opts.Clock == nil {
		opts.Clock = time.Now
	}
	return &Engine{
		boundary:   boundary,
		presenters: presenters,
		opts:       opts,
		dedup:      NewDeduplicator(),
		snoozes:    NewSnoozeRegistry(),
		presented:  make(map[int]models.DueReminder),
		pending:    make(map[int]*time.Timer),
	}
}

// Run polls until ctx is cancelled or the boundary reports
// ErrNotAuthenticated. Transient poll failures are logged and retried on
// the next tick without marking anything as notified.
func (e *Engine) Run(ctx context.Context) error {
	defer e.Close()

	if err := e.CheckNow(ctx); err != nil {
		return err
	}

	ticker := time.NewTicker(e.opts.PollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if err := e.CheckNow(ctx); err != nil {
				return err
			}
		}
	}
}

// CheckNow performs a single poll. It returns a non-nil error only for
// ErrNotAuthenticated; other boundary failures are swallowed after
// logging so the loop survives them.
func (e *Engine) CheckNow(ctx context.Context) error {
	due, err := e.boundary.GetDueReminders(ctx)
	if err != nil {
		if errors.Is(err, ErrNotAuthenticated) {
			log.Printf("[alarm] halting: %v", err)
			return err
		}
		log.Printf("[alarm] poll failed, retrying next tick: %v", err)
		return nil
	}

	now := e.opts.Clock()

	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return nil
	}

	for _, r := range due {
		if e.snoozes.IsSnoozed(r.ID, now) {
			continue
		}
		if !e.dedup.ShouldNotify(r.ID, now) {
			continue
		}
		e.dedup.MarkNotified(r.ID, now)
		e.present(r)
	}
	return nil
}

// present assumes e.mu is held.
func (e *Engine) present(r models.DueReminder) {
	e.presented[r.ID] = r
	for _, p := range e.presenters {
		p.Present(r)
	}
}

// Dismiss acknowledges a presented occurrence: the surface is cleared
// and the backend marks the reminder complete. For once-reminders that
// is terminal; for repeating reminders it acknowledges this occurrence
// only and the series continues.
func (e *Engine) Dismiss(ctx context.Context, reminderID int) error {
	e.mu.Lock()
	delete(e.presented, reminderID)
	e.cancelPendingLocked(reminderID)
	e.snoozes.Cancel(reminderID)
	for _, p := range e.presenters {
		p.Clear(reminderID)
	}
	e.mu.Unlock()

	return e.boundary.MarkComplete(ctx, reminderID)
}

// Snooze suppresses a presented occurrence for the configured duration
// and schedules its own re-alert at expiry. The re-alert does not rely
// on the resolver still reporting the reminder as due: by then the
// matching minute has normally passed.
func (e *Engine) Snooze(reminderID int) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return
	}

	r, ok := e.presented[reminderID]
	if !ok {
		return
	}
	delete(e.presented, reminderID)
	for _, p := range e.presenters {
		p.Clear(reminderID)
	}

	now := e.opts.Clock()
	until := e.snoozes.Snooze(reminderID, now, e.opts.SnoozeDuration)

	e.cancelPendingLocked(reminderID)
	e.pending[reminderID] = time.AfterFunc(until.Sub(now), func() {
		e.realert(r)
	})
}

// realert fires when a snooze window elapses.
func (e *Engine) realert(r models.DueReminder) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return
	}
	delete(e.pending, r.ID)

	now := e.opts.Clock()
	if e.snoozes.IsSnoozed(r.ID, now) {
		return // re-snoozed meanwhile
	}
	e.dedup.MarkNotified(r.ID, now)
	e.present(r)
}

// Realert is the test seam for snooze expiry; production re-alerts come
// from the timer started in Snooze.
func (e *Engine) Realert(r models.DueReminder) { e.realert(r) }

// Presented reports whether the reminder currently has an open surface.
func (e *Engine) Presented(reminderID int) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	_, ok := e.presented[reminderID]
	return ok
}

// Close stops all pending snooze timers. Run calls it on exit.
func (e *Engine) Close() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.closed = true
	for id, t := range e.pending {
		t.Stop()
		delete(e.pending, id)
	}
}

// cancelPendingLocked assumes e.mu is held.
func (e *Engine) cancelPendingLocked(reminderID int) {
	if t, ok := e.pending[reminderID]; ok {
		t.Stop()
		delete(e.pending, reminderID)
	}
}
