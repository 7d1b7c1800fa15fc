package request

// IdentityRequest names a single player
type IdentityRequest struct {
	Identity string `json:"identity"`
}

// IdentitiesRequest is the body of a batch whitelist change
type IdentitiesRequest struct {
	Identities []string `json:"identities"`
}

// SetEnabledRequest toggles the gate
type SetEnabledRequest struct {
	Enabled *bool `json:"enabled"`
}

// SetKickMessageRequest replaces the rejection message
type SetKickMessageRequest struct {
	Message string `json:"message"`
}

// SetIntervalRequest sets the recheck interval, e.g. "30s", "5m", "2h"
type SetIntervalRequest struct {
	Interval string `json:"interval"`
}

// KickRequest terminates a session. An empty reason uses the kick message.
type KickRequest struct {
	Reason string `json:"reason"`
}
