package model

import (
	"slices"
	"time"
)

const (
	// DefaultKickMessage is shown to players who are not on the whitelist
	DefaultKickMessage = "You are not whitelisted on this server. Ask an admin to add you!"

	// DefaultAutoCheck is the recheck interval written to fresh settings
	DefaultAutoCheck = "1h"

	// DefaultInterval is the parsed form of DefaultAutoCheck
	DefaultInterval = time.Hour
)

// Settings is the persisted gate configuration
type Settings struct {
	Enabled     bool
	KickMessage string
	// AutoCheck is the raw recheck interval as written in the settings file
	AutoCheck string
	Whitelist []Identity
}

// DefaultSettings returns the settings synthesized on first run
func DefaultSettings() Settings {
	return Settings{
		Enabled:     true,
		KickMessage: DefaultKickMessage,
		AutoCheck:   DefaultAutoCheck,
		Whitelist:   []Identity{},
	}
}

// Clone returns a deep copy
func (s Settings) Clone() Settings {
	out := s
	out.Whitelist = slices.Clone(s.Whitelist)
	if out.Whitelist == nil {
		out.Whitelist = []Identity{}
	}
	return out
}
