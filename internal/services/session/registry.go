// Package session tracks the player connections admitted through the gate.
// The enforcer enumerates them during a sweep and terminates non-members.
package session

import (
	"io"
	"log/slog"
	"slices"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/mcoot/listgate/internal/dependencies/clock"
	"github.com/mcoot/listgate/internal/model"
	"github.com/mcoot/listgate/internal/services/enforcer"
)

// Registry holds the currently active sessions
type Registry struct {
	clock  clock.Clock
	logger *slog.Logger

	mu       sync.RWMutex
	sessions map[string]*Session
}

// Ensure Registry can feed the enforcer
var _ enforcer.SessionSource = (*Registry)(nil)

// New creates an empty registry
func New(clk clock.Clock, logger *slog.Logger) *Registry {
	if logger == nil {
		logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}
	return &Registry{
		clock:    clk,
		logger:   logger.With(slog.String("component", "sessions")),
		sessions: make(map[string]*Session),
	}
}

// Open registers a new active session for identity. Callers are expected to
// have admitted the identity through the gate first.
func (r *Registry) Open(identity model.Identity) *Session {
	sess := &Session{
		ID:          uuid.NewString(),
		identity:    identity,
		ConnectedAt: r.clock.Now(),
		registry:    r,
		state:       StateActive,
		done:        make(chan struct{}),
	}

	r.mu.Lock()
	r.sessions[sess.ID] = sess
	count := len(r.sessions)
	r.mu.Unlock()

	r.logger.Info("session opened",
		slog.String("session_id", sess.ID),
		slog.String("identity", identity),
		slog.Int("online", count))
	return sess
}

// Get returns an active session
func (r *Registry) Get(id string) (*Session, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	sess, ok := r.sessions[id]
	if !ok {
		return nil, model.ErrSessionNotFound
	}
	return sess, nil
}

// Close ends a session as a normal disconnect
func (r *Registry) Close(id string) error {
	sess, err := r.Get(id)
	if err != nil {
		return err
	}
	if !sess.end(StateClosed, "") {
		return model.ErrSessionNotFound
	}
	r.remove(sess, "session closed")
	return nil
}

// Terminate kicks a session with reason. A session that is already gone
// yields ErrSessionNotFound and nothing else happens.
func (r *Registry) Terminate(id, reason string) error {
	sess, err := r.Get(id)
	if err != nil {
		return err
	}
	if err := sess.Terminate(reason); err != nil {
		return model.ErrSessionNotFound
	}
	return nil
}

// CloseAll disconnects every session, used on shutdown
func (r *Registry) CloseAll() int {
	r.mu.Lock()
	sessions := make([]*Session, 0, len(r.sessions))
	for _, sess := range r.sessions {
		sessions = append(sessions, sess)
	}
	r.sessions = make(map[string]*Session)
	r.mu.Unlock()

	closed := 0
	for _, sess := range sessions {
		if sess.end(StateClosed, "") {
			closed++
		}
	}
	if closed > 0 {
		r.logger.Info("sessions closed", slog.Int("count", closed))
	}
	return closed
}

// Active returns a snapshot of the active sessions for a sweep
func (r *Registry) Active() []enforcer.ActiveSession {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]enforcer.ActiveSession, 0, len(r.sessions))
	for _, sess := range r.sessions {
		out = append(out, sess)
	}
	return out
}

// List returns session details ordered by connect time, then ID
func (r *Registry) List() []Info {
	r.mu.RLock()
	infos := make([]Info, 0, len(r.sessions))
	for _, sess := range r.sessions {
		infos = append(infos, sess.Info())
	}
	r.mu.RUnlock()

	slices.SortFunc(infos, func(a, b Info) int {
		if c := a.ConnectedAt.Compare(b.ConnectedAt); c != 0 {
			return c
		}
		return strings.Compare(a.ID, b.ID)
	})
	return infos
}

func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}

func (r *Registry) remove(sess *Session, msg string) {
	r.mu.Lock()
	if r.sessions[sess.ID] == sess {
		delete(r.sessions, sess.ID)
	}
	count := len(r.sessions)
	r.mu.Unlock()

	attrs := []any{
		slog.String("session_id", sess.ID),
		slog.String("identity", sess.identity),
		slog.Int("online", count),
	}
	if reason := sess.Reason(); reason != "" {
		attrs = append(attrs, slog.String("reason", reason))
	}
	r.logger.Info(msg, attrs...)
}
