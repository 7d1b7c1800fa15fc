// Package gate makes the admit/deny decision for an incoming connection.
package gate

import (
	"io"
	"log/slog"
)

// Membership answers whitelist lookups
type Membership interface {
	IsMember(identity string) bool
}

// Settings supplies the enabled flag and rejection message
type Settings interface {
	Enabled() bool
	KickMessage() string
}

// Decision is the outcome of a connection check
type Decision struct {
	Allowed bool
	// Message is the rejection text shown to a denied player
	Message string
}

// Gate is consulted exactly once per connection attempt, before the session exists
type Gate struct {
	members  Membership
	settings Settings
	logger   *slog.Logger
}

func New(members Membership, settings Settings, logger *slog.Logger) *Gate {
	if logger == nil {
		logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}
	return &Gate{
		members:  members,
		settings: settings,
		logger:   logger.With(slog.String("component", "gate")),
	}
}

// Check admits everyone while the gate is disabled and only whitelisted
// identities while it is enabled
func (g *Gate) Check(identity string) Decision {
	if !g.settings.Enabled() {
		g.logger.Debug("connection allowed, gate disabled", slog.String("identity", identity))
		return Decision{Allowed: true}
	}
	if g.members.IsMember(identity) {
		g.logger.Debug("connection allowed", slog.String("identity", identity))
		return Decision{Allowed: true}
	}

	g.logger.Info("connection denied", slog.String("identity", identity))
	return Decision{Allowed: false, Message: g.settings.KickMessage()}
}
