// Package admin is the transport-neutral administrative surface. HTTP
// handlers and tests build a Command and render the Result.
package admin

import (
	"time"

	"github.com/mcoot/listgate/internal/model"
)

// Kind selects the administrative operation
type Kind string

const (
	KindEnable      Kind = "enable"
	KindDisable     Kind = "disable"
	KindSetMessage  Kind = "set-message"
	KindSetInterval Kind = "set-interval"
	KindAdd         Kind = "add"
	KindRemove      Kind = "remove"
	KindList        Kind = "list"
	KindClear       Kind = "clear"
	KindReload      Kind = "reload"
	KindStatus      Kind = "status"
	KindCheck       Kind = "check"
)

// Command is one administrative request. Identities is used by add and
// remove; Text by set-message and set-interval.
type Command struct {
	Kind       Kind
	Identities []string
	Text       string
}

// Result is the structured outcome of a Command. OK is false on any failure;
// Err carries the cause for callers that map it to a transport status.
type Result struct {
	OK      bool
	Message string
	Err     error

	// Changed counts identities added or removed
	Changed    int
	Identities []model.Identity
	Status     *Status
	// Kicked counts sessions terminated by a sweep the command triggered
	Kicked int
}

// Status is the gate's current state for reporting
type Status struct {
	Enabled       bool
	KickMessage   string
	AutoCheck     string
	Interval      time.Duration
	WhitelistSize int
	Online        int
	Running       bool
	Location      string
	LastSweepAt   time.Time
	LastKicked    int
}
