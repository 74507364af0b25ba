package autosave

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/rs/zerolog"

	"github.com/debemdeboas/session-editor/internal/client"
	"github.com/debemdeboas/session-editor/internal/config"
	"github.com/debemdeboas/session-editor/internal/events"
	"github.com/debemdeboas/session-editor/internal/model"
)

var (
	ErrSessionClosed = errors.New("session closed")
	ErrNotReady      = errors.New("session not ready")
)

type State int

const (
	StateLoading State = iota
	StateReady
	StateSaving
	StateUnauthenticated
	StateClosed
)

func (s State) String() string {
	switch s {
	case StateLoading:
		return "loading"
	case StateReady:
		return "ready"
	case StateSaving:
		return "saving"
	case StateUnauthenticated:
		return "unauthenticated"
	case StateClosed:
		return "closed"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Session is one open editor for one session entity.
type Session struct {
	token     string
	persister Persister
	hub       *events.Hub
	logger    zerolog.Logger
	onClose   func(*Session)

	ctx    context.Context
	cancel context.CancelFunc

	scheduler *Scheduler
	executor  *Executor
	autoSave  bool

	mu         sync.Mutex
	id         model.SessionID
	form       model.FormState
	reference  *model.FormState
	state      State
	submitting bool
}

// Token identifies this editing session; events carry it.
func (s *Session) Token() string {
	return s.token
}

func (s *Session) ID() model.SessionID {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.id
}

// Form returns the live form as last reported by the UI.
func (s *Session) Form() model.FormState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.form
}

// Reference returns a copy of the snapshot taken when the session was opened.
func (s *Session) Reference() *model.FormState {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.reference == nil {
		return nil
	}
	ref := *s.reference
	return &ref
}

func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == StateReady && (s.submitting || s.executor.Status().IsSaving) {
		return StateSaving
	}
	return s.state
}

func (s *Session) Status() SaveStatus {
	return s.executor.Status()
}

// Pending reports whether an auto-save is waiting for its delay to pass.
func (s *Session) Pending() bool {
	return s.scheduler.Pending()
}

// OnFormChange records the form after an edit and arms the auto-save when
// the form is worth saving. Edits are ignored unless the session is ready.
// While a submit is running the edit is kept but not scheduled.
func (s *Session) OnFormChange(form model.FormState) {
	s.mu.Lock()
	if s.state != StateReady {
		s.mu.Unlock()
		return
	}
	s.form = form
	eligible := !s.submitting && s.eligible(form)
	s.mu.Unlock()

	if eligible {
		s.scheduler.Schedule(form)
	}
}

// eligible must be called with s.mu held.
func (s *Session) eligible(form model.FormState) bool {
	return s.autoSave && IsEligible(form, HasChanged(form, s.reference))
}

// Submit persists the form right away: published forms go to the publish
// endpoint, everything else is saved as a draft. On success the session is
// closed and a navigate signal is published.
func (s *Session) Submit(ctx context.Context) error {
	s.mu.Lock()
	switch {
	case s.state == StateClosed:
		s.mu.Unlock()
		return ErrSessionClosed
	case s.state == StateUnauthenticated:
		s.mu.Unlock()
		return client.ErrUnauthenticated
	case s.state != StateReady || s.submitting:
		s.mu.Unlock()
		return ErrNotReady
	}
	s.submitting = true
	form := s.form
	id := s.id
	s.mu.Unlock()

	s.scheduler.Cancel()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	stop := context.AfterFunc(s.ctx, cancel)
	defer stop()

	rec := form.Record(id)
	var err error
	if rec.Status == model.StatusPublished {
		_, err = s.persister.Publish(ctx, rec)
	} else {
		_, err = s.persister.SaveDraft(ctx, rec)
	}

	switch {
	case err == nil:
		msg := "Draft saved"
		if rec.Status == model.StatusPublished {
			msg = "Session published"
		}
		s.logger.Info().Str("session_id", string(id)).Str("status", string(rec.Status)).Msg("Session submitted")
		s.publish(events.Event{
			Kind:     events.KindSubmitted,
			Message:  msg,
			Navigate: true,
		})
		s.Close()
		return nil
	case client.IsUnauthenticated(err):
		s.endSubmit()
		s.markUnauthenticated()
		return fmt.Errorf("submit session: %w", err)
	default:
		s.resumeAfterFailedSubmit(form)
		s.logger.Error().Err(err).Str("session_id", string(id)).Msg("Submit failed")
		s.publish(events.Event{
			Kind:    events.KindError,
			Message: fmt.Sprintf(config.ErrSubmitFmt, err),
			Err:     err,
		})
		return fmt.Errorf("submit session: %w", err)
	}
}

// Close cancels the pending auto-save and any request still in flight.
// Calling it again is a no-op.
func (s *Session) Close() {
	s.mu.Lock()
	if s.state == StateClosed {
		s.mu.Unlock()
		return
	}
	s.state = StateClosed
	s.submitting = false
	s.mu.Unlock()

	s.scheduler.Cancel()
	s.cancel()
	s.publish(events.Event{Kind: events.KindClosed})
	if s.onClose != nil {
		s.onClose(s)
	}
}

func (s *Session) endSubmit() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.submitting = false
}

// resumeAfterFailedSubmit ends the submit and arms the auto-save for edits
// made while it was running.
func (s *Session) resumeAfterFailedSubmit(submitted model.FormState) {
	s.mu.Lock()
	s.submitting = false
	form := s.form
	schedule := s.state == StateReady && form != submitted && s.eligible(form)
	s.mu.Unlock()

	if schedule {
		s.scheduler.Schedule(form)
	}
}

// canAutoSave reports whether a background save may still start.
func (s *Session) canAutoSave() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state == StateReady && !s.submitting
}

func (s *Session) adoptID(id model.SessionID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.id == "" {
		s.id = id
	}
}

func (s *Session) markUnauthenticated() {
	s.mu.Lock()
	if s.state == StateClosed || s.state == StateUnauthenticated {
		s.mu.Unlock()
		return
	}
	s.state = StateUnauthenticated
	s.mu.Unlock()

	s.scheduler.Cancel()
	s.logger.Info().Msg("Session is no longer authenticated")
	s.publish(events.Event{
		Kind:    events.KindNotAuthenticated,
		Message: config.ErrNotAuthenticated,
	})
}

func (s *Session) publish(e events.Event) {
	e.Token = s.token
	if e.SessionID == "" {
		e.SessionID = s.ID()
	}
	s.hub.Publish(e)
}

// runAutoSave is the scheduler callback.
func (s *Session) runAutoSave(form model.FormState) {
	if !s.canAutoSave() {
		return
	}
	s.executor.Run(s.ctx, form)
}
