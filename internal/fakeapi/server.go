// Package fakeapi is an in-memory implementation of the session persistence
// API. It backs the offline editor and the HTTP level tests.
package fakeapi

import (
	"encoding/json"
	"net/http"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/debemdeboas/session-editor/internal/cache"
	"github.com/debemdeboas/session-editor/internal/config"
	"github.com/debemdeboas/session-editor/internal/model"
	"github.com/debemdeboas/session-editor/internal/routes"
)

var apiLogger zerolog.Logger = zerolog.Nop()

func SetLogger(l zerolog.Logger) {
	apiLogger = l
}

// Call is one request the server received.
type Call struct {
	Method string
	Path   string
	Record model.Record
}

type Server struct {
	resourcePath string
	sessions     *cache.Cache[model.SessionID, model.Record]

	mu    sync.Mutex
	calls []Call

	unauthorized atomic.Bool
	failStatus   atomic.Int32
	token        atomic.Value
}

func New(resourcePath string) *Server {
	return &Server{
		resourcePath: "/" + strings.Trim(resourcePath, "/"),
		sessions:     cache.NewCache[model.SessionID, model.Record](),
	}
}

// RequireToken makes every request without "Bearer <token>" fail with 401.
// An empty token lifts the requirement.
func (s *Server) RequireToken(token string) {
	s.token.Store(token)
}

// SetUnauthorized makes every request fail with 401 until cleared.
func (s *Server) SetUnauthorized(v bool) {
	s.unauthorized.Store(v)
}

// FailWith makes every request fail with status until called with 0.
func (s *Server) FailWith(status int) {
	s.failStatus.Store(int32(status))
}

// Seed stores rec, assigning an id when it has none.
func (s *Server) Seed(rec model.Record) model.SessionID {
	if rec.ID == "" {
		rec.ID = model.SessionID(uuid.New().String())
	}
	if rec.Tags == nil {
		rec.Tags = []string{}
	}
	s.sessions.Set(rec.ID, rec)
	return rec.ID
}

func (s *Server) Session(id model.SessionID) (model.Record, bool) {
	return s.sessions.Get(id)
}

func (s *Server) Calls() []Call {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Call, len(s.calls))
	copy(out, s.calls)
	return out
}

// CallsTo returns the recorded calls whose path ends with suffix.
func (s *Server) CallsTo(suffix string) []Call {
	var out []Call
	for _, c := range s.Calls() {
		if strings.HasSuffix(c.Path, suffix) {
			out = append(out, c)
		}
	}
	return out
}

func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc(routes.Pattern(http.MethodGet, s.resourcePath, routes.SessionByID), s.handleGet)
	mux.HandleFunc(routes.Pattern(http.MethodPost, s.resourcePath, routes.SaveDraft), s.handleSave(false))
	mux.HandleFunc(routes.Pattern(http.MethodPost, s.resourcePath, routes.Publish), s.handleSave(true))
	return s.guard(mux)
}

func (s *Server) guard(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, _ := s.token.Load().(string)
		if s.unauthorized.Load() || (token != "" && r.Header.Get(config.HAuthorization) != "Bearer "+token) {
			s.record(Call{Method: r.Method, Path: r.URL.Path})
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}
		if status := int(s.failStatus.Load()); status != 0 {
			s.record(Call{Method: r.Method, Path: r.URL.Path})
			http.Error(w, http.StatusText(status), status)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) handleGet(w http.ResponseWriter, r *http.Request) {
	id := model.SessionID(r.PathValue("id"))
	s.record(Call{Method: r.Method, Path: r.URL.Path, Record: model.Record{ID: id}})

	rec, ok := s.sessions.Get(id)
	if !ok {
		http.Error(w, "Session not found", http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

func (s *Server) handleSave(publish bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var rec model.Record
		if err := json.NewDecoder(r.Body).Decode(&rec); err != nil {
			s.record(Call{Method: r.Method, Path: r.URL.Path})
			http.Error(w, "Bad request", http.StatusBadRequest)
			return
		}
		s.record(Call{Method: r.Method, Path: r.URL.Path, Record: rec})

		if !publish && rec.Status != model.StatusDraft {
			http.Error(w, "save-draft only accepts drafts", http.StatusBadRequest)
			return
		}

		created := rec.ID == ""
		id := s.Seed(rec)
		stored, _ := s.sessions.Get(id)

		apiLogger.Debug().
			Str("session_id", string(id)).
			Bool("created", created).
			Bool("publish", publish).
			Msg("Session saved")

		status := http.StatusOK
		if created {
			status = http.StatusCreated
		}
		writeJSON(w, status, stored)
	}
}

func (s *Server) record(c Call) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = append(s.calls, c)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set(config.HCType, config.CTypeJSON)
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
