// Package events fans editor signals out to whoever renders them.
package events

import (
	"time"

	"github.com/debemdeboas/session-editor/internal/model"
)

type Kind string

const (
	KindLoading          Kind = "loading"
	KindNotAuthenticated Kind = "not_authenticated"
	KindAutoSaveStarted  Kind = "auto_save_started"
	KindAutoSaved        Kind = "auto_saved"
	KindAutoSaveFailed   Kind = "auto_save_failed"
	KindSubmitted        Kind = "submitted"
	KindError            Kind = "error"
	KindClosed           Kind = "closed"
)

// Event is one upward signal for a session.
//
// KindAutoSaveFailed is informational only: renderers must not show it as an
// error, auto-save failures stay silent.
type Event struct {
	Kind      Kind
	SessionID model.SessionID
	// Token identifies the editing session that produced the event.
	Token string

	Loading      bool
	IsAutoSaving bool
	LastSavedAt  *time.Time

	// Message is user facing text for notifications.
	Message string
	// Navigate is set on KindSubmitted: the editor should be left.
	Navigate bool
	Err      error
}

// Required reports whether the event changes what the user may do next.
// The hub makes room for these when a subscriber falls behind.
func (e Event) Required() bool {
	switch e.Kind {
	case KindNotAuthenticated, KindSubmitted, KindError, KindClosed:
		return true
	}
	return false
}

// Transient reports whether the event is a short-lived notification
// (a toast) rather than a state change.
func (e Event) Transient() bool {
	return e.Kind == KindAutoSaved
}
