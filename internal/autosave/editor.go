package autosave

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/debemdeboas/session-editor/internal/cache"
	"github.com/debemdeboas/session-editor/internal/client"
	"github.com/debemdeboas/session-editor/internal/events"
	"github.com/debemdeboas/session-editor/internal/model"
)

var autosaveLogger zerolog.Logger = zerolog.Nop()

func SetLogger(l zerolog.Logger) {
	autosaveLogger = l
}

// Editor opens sessions against one persister and keeps track of the open ones.
type Editor struct {
	persister Persister
	hub       *events.Hub
	delay     time.Duration
	autoSave  bool
	now       func() time.Time
	afterFunc afterFunc
	logger    *zerolog.Logger

	sessions *cache.Cache[string, *Session]
	// Auto-save lock per editing session, keyed by token.
	locks *cache.Cache[string, *sync.Mutex]
}

type Option func(*Editor)

// WithDelay sets the auto-save quiet period. Non-positive values keep the default.
func WithDelay(d time.Duration) Option {
	return func(e *Editor) {
		if d > 0 {
			e.delay = d
		}
	}
}

func WithAutoSave(enabled bool) Option {
	return func(e *Editor) { e.autoSave = enabled }
}

func WithClock(now func() time.Time) Option {
	return func(e *Editor) { e.now = now }
}

func WithLogger(l zerolog.Logger) Option {
	return func(e *Editor) { e.logger = &l }
}

func withAfterFunc(f afterFunc) Option {
	return func(e *Editor) { e.afterFunc = f }
}

func NewEditor(p Persister, hub *events.Hub, opts ...Option) *Editor {
	if hub == nil {
		hub = events.NewHub()
	}
	e := &Editor{
		persister: p,
		hub:       hub,
		delay:     DefaultDelay,
		autoSave:  true,
		now:       time.Now,
		afterFunc: realAfterFunc,
		sessions:  cache.NewCache[string, *Session](),
		locks:     cache.NewCache[string, *sync.Mutex](),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

func (e *Editor) Hub() *events.Hub {
	return e.hub
}

// Open starts an editing session. An empty id opens a new, blank session
// without calling the backend. When the backend rejects the credentials the
// session is returned in StateUnauthenticated; any other load failure is
// returned and no session is created.
func (e *Editor) Open(ctx context.Context, id model.SessionID) (*Session, error) {
	token := uuid.NewString()
	logger := e.getLogger().With().Str("token", token).Logger()

	sessCtx, cancel := context.WithCancel(context.Background())
	s := &Session{
		token:     token,
		persister: e.persister,
		hub:       e.hub,
		logger:    logger,
		onClose:   e.forget,
		ctx:       sessCtx,
		cancel:    cancel,
		autoSave:  e.autoSave,
		id:        id,
		state:     StateLoading,
	}
	lock := e.locks.GetOrSet(token, func() *sync.Mutex { return &sync.Mutex{} })
	s.executor = newExecutor(e.persister, s, lock, e.now, logger)
	s.scheduler = NewScheduler(e.delay, s.runAutoSave)
	s.scheduler.afterFunc = e.afterFunc

	s.publish(events.Event{Kind: events.KindLoading, Loading: true})

	form := model.EmptyForm()
	if id != "" {
		rec, err := e.persister.Get(ctx, id)
		switch {
		case err == nil:
			form = rec.Form()
			if rec.ID != "" {
				s.id = rec.ID
			}
		case client.IsUnauthenticated(err):
			s.publish(events.Event{Kind: events.KindLoading, Loading: false})
			s.reference = &form
			s.form = form
			s.markUnauthenticated()
			e.sessions.Set(token, s)
			return s, nil
		default:
			s.publish(events.Event{Kind: events.KindLoading, Loading: false})
			cancel()
			e.locks.Delete(token)
			logger.Error().Err(err).Str("session_id", string(id)).Msg("Failed to open session")
			return nil, fmt.Errorf("open session %s: %w", id, err)
		}
	}

	ref := form
	s.reference = &ref
	s.form = form
	s.state = StateReady
	e.sessions.Set(token, s)

	s.publish(events.Event{Kind: events.KindLoading, Loading: false})
	logger.Debug().Str("session_id", string(s.id)).Msg("Session opened")
	return s, nil
}

// Session looks up an open session by token.
func (e *Editor) Session(token string) (*Session, bool) {
	return e.sessions.Get(token)
}

func (e *Editor) Len() int {
	return e.sessions.Len()
}

// CloseAll closes every open session.
func (e *Editor) CloseAll() {
	for _, s := range e.sessions.Values() {
		s.Close()
	}
}

func (e *Editor) forget(s *Session) {
	e.sessions.Delete(s.token)
	e.locks.Delete(s.token)
}

func (e *Editor) getLogger() zerolog.Logger {
	if e.logger != nil {
		return *e.logger
	}
	return autosaveLogger
}
