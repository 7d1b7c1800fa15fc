package response

import (
	"time"

	"github.com/mcoot/listgate/internal/admin"
	"github.com/mcoot/listgate/internal/config"
	"github.com/mcoot/listgate/internal/model"
	"github.com/mcoot/listgate/internal/services/gate"
	"github.com/mcoot/listgate/internal/services/session"
)

// HealthResponse is returned by the health endpoint
type HealthResponse struct {
	Status string `json:"status"`
}

// DecisionResponse is the outcome of a gate check
type DecisionResponse struct {
	Identity string `json:"identity"`
	Allowed  bool   `json:"allowed"`
	Message  string `json:"message,omitempty"`
}

// DecisionFromGate converts a gate decision
func DecisionFromGate(identity string, d gate.Decision) DecisionResponse {
	return DecisionResponse{
		Identity: identity,
		Allowed:  d.Allowed,
		Message:  d.Message,
	}
}

// SessionResponse describes one connected player
type SessionResponse struct {
	ID          string    `json:"id"`
	Identity    string    `json:"identity"`
	ConnectedAt time.Time `json:"connected_at"`
	State       string    `json:"state"`
	Reason      string    `json:"reason,omitempty"`
}

// SessionFromInfo converts a session snapshot
func SessionFromInfo(info session.Info) SessionResponse {
	return SessionResponse{
		ID:          info.ID,
		Identity:    info.Identity,
		ConnectedAt: info.ConnectedAt,
		State:       string(info.State),
		Reason:      info.Reason,
	}
}

// SessionsResponse lists the connected players
type SessionsResponse struct {
	Sessions []SessionResponse `json:"sessions"`
	Count    int               `json:"count"`
}

// SessionsFromInfos converts a registry listing
func SessionsFromInfos(infos []session.Info) SessionsResponse {
	out := make([]SessionResponse, len(infos))
	for i, info := range infos {
		out[i] = SessionFromInfo(info)
	}
	return SessionsResponse{Sessions: out, Count: len(out)}
}

// WhitelistResponse is the sorted membership list
type WhitelistResponse struct {
	Identities []model.Identity `json:"identities"`
	Count      int              `json:"count"`
}

// ResultResponse reports a successful administrative change
type ResultResponse struct {
	Message string `json:"message"`
	Changed int    `json:"changed"`
	Kicked  int    `json:"kicked"`
}

// ResultFromAdmin converts a dispatcher result
func ResultFromAdmin(res admin.Result) ResultResponse {
	return ResultResponse{
		Message: res.Message,
		Changed: res.Changed,
		Kicked:  res.Kicked,
	}
}

// StatusResponse is the gate's current state
type StatusResponse struct {
	Enabled        bool       `json:"enabled"`
	KickMessage    string     `json:"kick_message"`
	AutoCheck      string     `json:"auto_check"`
	IntervalMillis int64      `json:"interval_ms"`
	Interval       string     `json:"interval"`
	WhitelistSize  int        `json:"whitelist_size"`
	Online         int        `json:"online"`
	Running        bool       `json:"running"`
	Location       string     `json:"location"`
	LastSweepAt    *time.Time `json:"last_sweep_at,omitempty"`
	LastKicked     int        `json:"last_kicked"`
}

// StatusFromAdmin converts a dispatcher status
func StatusFromAdmin(s admin.Status) StatusResponse {
	resp := StatusResponse{
		Enabled:        s.Enabled,
		KickMessage:    s.KickMessage,
		AutoCheck:      s.AutoCheck,
		IntervalMillis: s.Interval.Milliseconds(),
		Interval:       config.FormatInterval(s.Interval),
		WhitelistSize:  s.WhitelistSize,
		Online:         s.Online,
		Running:        s.Running,
		Location:       s.Location,
		LastKicked:     s.LastKicked,
	}
	if !s.LastSweepAt.IsZero() {
		t := s.LastSweepAt
		resp.LastSweepAt = &t
	}
	return resp
}
