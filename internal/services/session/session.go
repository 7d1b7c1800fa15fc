package session

import (
	"sync"
	"time"

	"github.com/mcoot/listgate/internal/model"
)

// State is the lifecycle phase of a session
type State string

const (
	StateActive State = "active"
	StateClosed State = "closed" // player disconnected normally
	StateKicked State = "kicked" // terminated by the gate
)

// Session is one admitted player connection
type Session struct {
	ID          string
	identity    model.Identity
	ConnectedAt time.Time

	registry *Registry

	mu     sync.Mutex
	state  State
	reason string
	done   chan struct{}
}

// Info is a point-in-time view of a session
type Info struct {
	ID          string
	Identity    model.Identity
	ConnectedAt time.Time
	State       State
	Reason      string
}

func (s *Session) Identity() string {
	return s.identity
}

// Done is closed when the session ends for any reason
func (s *Session) Done() <-chan struct{} {
	return s.done
}

// Reason returns the termination message, empty unless the session was kicked
func (s *Session) Reason() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.reason
}

func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

func (s *Session) Info() Info {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Info{
		ID:          s.ID,
		Identity:    s.identity,
		ConnectedAt: s.ConnectedAt,
		State:       s.state,
		Reason:      s.reason,
	}
}

// Terminate kicks the session with reason. It returns ErrSessionClosed if the
// session already ended, which callers racing a disconnect can ignore.
func (s *Session) Terminate(reason string) error {
	if !s.end(StateKicked, reason) {
		return model.ErrSessionClosed
	}
	s.registry.remove(s, "session terminated")
	return nil
}

// end moves an active session to state exactly once
func (s *Session) end(state State, reason string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StateActive {
		return false
	}
	s.state = state
	s.reason = reason
	close(s.done)
	return true
}
