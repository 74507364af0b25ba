package autosave

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/debemdeboas/session-editor/internal/client"
	"github.com/debemdeboas/session-editor/internal/events"
	"github.com/debemdeboas/session-editor/internal/model"
)

// Persister is the backend the editor saves to. client.Client implements it.
type Persister interface {
	Get(ctx context.Context, id model.SessionID) (model.Record, error)
	SaveDraft(ctx context.Context, rec model.Record) (model.Record, error)
	Publish(ctx context.Context, rec model.Record) (model.Record, error)
}

// SaveStatus is what the UI shows next to the form.
type SaveStatus struct {
	IsSaving    bool
	LastSavedAt *time.Time
}

// saveTarget is the part of a session the executor reports to.
type saveTarget interface {
	ID() model.SessionID
	adoptID(id model.SessionID)
	canAutoSave() bool
	markUnauthenticated()
	publish(e events.Event)
}

// Executor performs one background save at a time for a session.
type Executor struct {
	persister Persister
	target    saveTarget
	lock      sync.Locker
	now       func() time.Time
	logger    zerolog.Logger

	mu          sync.Mutex
	isSaving    bool
	lastSavedAt *time.Time
}

func newExecutor(p Persister, target saveTarget, lock sync.Locker, now func() time.Time, logger zerolog.Logger) *Executor {
	return &Executor{
		persister: p,
		target:    target,
		lock:      lock,
		now:       now,
		logger:    logger,
	}
}

// Run saves payload as a draft. ctx is the session context: once it is
// cancelled the result is discarded, whatever it was.
func (e *Executor) Run(ctx context.Context, payload model.FormState) {
	e.lock.Lock()
	defer e.lock.Unlock()

	if ctx.Err() != nil {
		e.logger.Debug().Msg("Session closed before auto-save started")
		return
	}
	// A run queued behind another one may find a submit under way.
	if !e.target.canAutoSave() {
		e.logger.Debug().Msg("Skipping auto-save, session is no longer ready")
		return
	}

	e.setSaving(true)
	e.target.publish(events.Event{
		Kind:         events.KindAutoSaveStarted,
		IsAutoSaving: true,
		LastSavedAt:  e.Status().LastSavedAt,
	})

	payload.Status = model.StatusDraft
	rec := payload.Record(e.target.ID())

	saved, err := e.persister.SaveDraft(ctx, rec)
	if ctx.Err() != nil {
		e.setSaving(false)
		e.logger.Debug().Err(err).Msg("Discarding auto-save result for closed session")
		return
	}

	switch {
	case err == nil:
		at := e.now()
		e.finish(&at)
		if rec.ID == "" && saved.ID != "" {
			e.target.adoptID(saved.ID)
		}
		e.logger.Debug().Str("session_id", string(e.target.ID())).Msg("Auto-saved")
		e.target.publish(events.Event{
			Kind:        events.KindAutoSaved,
			LastSavedAt: &at,
			Message:     "Draft saved",
		})
	case client.IsUnauthenticated(err):
		e.finish(nil)
		e.target.markUnauthenticated()
	default:
		e.finish(nil)
		e.logger.Warn().Err(err).Str("session_id", string(rec.ID)).Msg("Auto-save failed")
		e.target.publish(events.Event{
			Kind:        events.KindAutoSaveFailed,
			LastSavedAt: e.Status().LastSavedAt,
			Err:         err,
		})
	}
}

func (e *Executor) Status() SaveStatus {
	e.mu.Lock()
	defer e.mu.Unlock()

	st := SaveStatus{IsSaving: e.isSaving}
	if e.lastSavedAt != nil {
		at := *e.lastSavedAt
		st.LastSavedAt = &at
	}
	return st
}

func (e *Executor) setSaving(v bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.isSaving = v
}

// finish clears isSaving and records a successful save when at is set.
func (e *Executor) finish(at *time.Time) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.isSaving = false
	if at != nil {
		e.lastSavedAt = at
	}
}
