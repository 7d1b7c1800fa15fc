// Package enforcer re-validates connected sessions against the whitelist,
// on a timer and on demand, and terminates those that are no longer members.
package enforcer

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/mcoot/listgate/internal/dependencies/clock"
	"github.com/mcoot/listgate/internal/model"
)

// ActiveSession is a connected player as seen by a sweep
type ActiveSession interface {
	Identity() string
	Terminate(reason string) error
}

// SessionSource enumerates the connected players
type SessionSource interface {
	Active() []ActiveSession
	Count() int
}

// Membership answers whitelist lookups
type Membership interface {
	IsMember(identity string) bool
	Size() int
}

// Settings supplies the live gate configuration
type Settings interface {
	Enabled() bool
	KickMessage() string
	Interval() time.Duration
}

// Stats is a read-only snapshot of the scheduler
type Stats struct {
	Running        bool
	Interval       time.Duration
	SessionCount   int
	MembershipSize int
	LastSweepAt    time.Time // zero until the first sweep
	LastKicked     int
}

// IntervalMillis is the recheck interval in milliseconds
func (s Stats) IntervalMillis() int64 {
	return s.Interval.Milliseconds()
}

// Scheduler runs the recurring sweep
type Scheduler struct {
	members  Membership
	sessions SessionSource
	settings Settings
	clock    clock.Clock
	logger   *slog.Logger

	mu       sync.Mutex
	running  bool
	interval time.Duration
	gen      uint64
	stopCh   chan struct{}
	inFlight sync.WaitGroup

	statsMu     sync.Mutex
	lastSweepAt time.Time
	lastKicked  int
}

// New creates a stopped scheduler
func New(members Membership, sessions SessionSource, settings Settings, clk clock.Clock, logger *slog.Logger) *Scheduler {
	if logger == nil {
		logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}
	return &Scheduler{
		members:  members,
		sessions: sessions,
		settings: settings,
		clock:    clk,
		logger:   logger.With(slog.String("component", "enforcer")),
	}
}

// Start begins sweeping at the currently configured interval. A running
// scheduler is stopped first, so Start doubles as restart.
func (s *Scheduler) Start() {
	interval := s.settings.Interval()

	s.mu.Lock()
	defer s.mu.Unlock()

	restarted := s.running
	if s.running {
		s.stopLocked()
	}
	s.gen++
	s.running = true
	s.interval = interval
	s.stopCh = make(chan struct{})
	go s.loop(s.gen, s.stopCh, interval)

	msg := "enforcer started"
	if restarted {
		msg = "enforcer restarted"
	}
	s.logger.Info(msg, slog.Duration("interval", interval))
}

// Restart stops and starts with the current interval
func (s *Scheduler) Restart() {
	s.Start()
}

// Stop cancels the recurring sweep. No sweep begins after Stop returns; one
// already in progress runs to completion. Stopping a stopped scheduler is a no-op.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.running {
		return
	}
	s.stopLocked()
	s.logger.Info("enforcer stopped")
}

// Shutdown stops the scheduler and waits for an in-flight scheduled sweep,
// bounded by ctx
func (s *Scheduler) Shutdown(ctx context.Context) error {
	s.Stop()

	done := make(chan struct{})
	go func() {
		s.inFlight.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("waiting for sweep: %w", ctx.Err())
	}
}

func (s *Scheduler) Running() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running
}

func (s *Scheduler) stopLocked() {
	s.running = false
	close(s.stopCh)
}

func (s *Scheduler) loop(gen uint64, stopCh <-chan struct{}, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-stopCh:
			return
		case <-ticker.C:
			if !s.beginScheduled(gen) {
				return
			}
			s.Sweep()
			s.inFlight.Done()
		}
	}
}

// beginScheduled claims a scheduled sweep for generation gen. It fails once
// Stop or Start has moved on, which is what keeps a late tick from sweeping.
func (s *Scheduler) beginScheduled(gen uint64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.running || s.gen != gen {
		return false
	}
	s.inFlight.Add(1)
	return true
}

// Sweep checks every active session once and terminates non-members with the
// configured message. It returns the number of sessions terminated. When the
// gate is disabled it does nothing.
func (s *Scheduler) Sweep() int {
	if !s.settings.Enabled() {
		s.logger.Debug("sweep skipped, gate disabled")
		return 0
	}

	message := s.settings.KickMessage()
	sessions := s.sessions.Active()
	kicked := 0
	for _, sess := range sessions {
		if s.checkSession(sess, message) {
			kicked++
		}
	}

	s.statsMu.Lock()
	s.lastSweepAt = s.clock.Now()
	s.lastKicked = kicked
	s.statsMu.Unlock()

	level := slog.LevelDebug
	if kicked > 0 {
		level = slog.LevelInfo
	}
	s.logger.Log(context.Background(), level, "sweep complete",
		slog.Int("checked", len(sessions)),
		slog.Int("kicked", kicked))
	return kicked
}

// checkSession isolates one session's check so a failure cannot abort the sweep
func (s *Scheduler) checkSession(sess ActiveSession, message string) (kicked bool) {
	var identity string
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("sweep check panicked",
				slog.String("identity", identity),
				slog.Any("panic", r))
			kicked = false
		}
	}()

	identity = sess.Identity()
	if s.members.IsMember(identity) {
		return false
	}

	err := sess.Terminate(message)
	switch {
	case err == nil:
		s.logger.Info("session kicked", slog.String("identity", identity))
		return true
	case errors.Is(err, model.ErrSessionClosed), errors.Is(err, model.ErrSessionNotFound):
		// disconnected while we were sweeping
		return false
	default:
		s.logger.Error("failed to terminate session",
			slog.String("identity", identity),
			slog.String("error", err.Error()))
		return false
	}
}

// Stats returns a snapshot for status reporting
func (s *Scheduler) Stats() Stats {
	s.mu.Lock()
	running := s.running
	interval := s.interval
	s.mu.Unlock()
	if !running {
		interval = s.settings.Interval()
	}

	s.statsMu.Lock()
	lastSweepAt, lastKicked := s.lastSweepAt, s.lastKicked
	s.statsMu.Unlock()

	return Stats{
		Running:        running,
		Interval:       interval,
		SessionCount:   s.sessions.Count(),
		MembershipSize: s.members.Size(),
		LastSweepAt:    lastSweepAt,
		LastKicked:     lastKicked,
	}
}
