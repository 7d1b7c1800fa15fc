package handler

import (
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/mcoot/listgate/internal/api/apierr"
	"github.com/mcoot/listgate/internal/api/request"
	"github.com/mcoot/listgate/internal/api/response"
	"github.com/mcoot/listgate/internal/model"
	"github.com/mcoot/listgate/internal/services/gate"
	"github.com/mcoot/listgate/internal/services/session"
)

// GateHandler handles connection checks and the session lifecycle
type GateHandler struct {
	gate     *gate.Gate
	sessions *session.Registry
	settings KickMessager
}

// KickMessager supplies the default reason for an admin kick
type KickMessager interface {
	KickMessage() string
}

// NewGateHandler creates a new gate handler
func NewGateHandler(g *gate.Gate, sessions *session.Registry, settings KickMessager) *GateHandler {
	return &GateHandler{
		gate:     g,
		sessions: sessions,
		settings: settings,
	}
}

// Check handles POST /api/v1/gate/check
func (h *GateHandler) Check(w http.ResponseWriter, r *http.Request) {
	var req request.IdentityRequest
	if !decode(w, r, &req) {
		return
	}
	id, ok := model.NormalizeIdentity(req.Identity)
	if !ok {
		apierr.WriteError(w, apierr.NewInvalidRequestError("identity is required"))
		return
	}

	response.JSON(w, http.StatusOK, response.DecisionFromGate(id, h.gate.Check(id)))
}

// Connect handles POST /api/v1/sessions. The gate runs once; a denied
// identity never gets a session.
func (h *GateHandler) Connect(w http.ResponseWriter, r *http.Request) {
	var req request.IdentityRequest
	if !decode(w, r, &req) {
		return
	}
	id, ok := model.NormalizeIdentity(req.Identity)
	if !ok {
		apierr.WriteError(w, apierr.NewInvalidRequestError("identity is required"))
		return
	}

	decision := h.gate.Check(id)
	if !decision.Allowed {
		apierr.WriteError(w, apierr.NewAccessDeniedError(decision.Message))
		return
	}

	sess := h.sessions.Open(id)
	response.JSON(w, http.StatusCreated, response.SessionFromInfo(sess.Info()))
}

// List handles GET /api/v1/sessions
func (h *GateHandler) List(w http.ResponseWriter, r *http.Request) {
	response.JSON(w, http.StatusOK, response.SessionsFromInfos(h.sessions.List()))
}

// Get handles GET /api/v1/sessions/{id}
func (h *GateHandler) Get(w http.ResponseWriter, r *http.Request) {
	sess, err := h.sessions.Get(mux.Vars(r)["id"])
	if err != nil {
		apierr.WriteError(w, err)
		return
	}
	response.JSON(w, http.StatusOK, response.SessionFromInfo(sess.Info()))
}

// Disconnect handles DELETE /api/v1/sessions/{id}
func (h *GateHandler) Disconnect(w http.ResponseWriter, r *http.Request) {
	if err := h.sessions.Close(mux.Vars(r)["id"]); err != nil {
		apierr.WriteError(w, err)
		return
	}
	response.NoContent(w)
}

// Kick handles POST /api/v1/sessions/{id}/kick
func (h *GateHandler) Kick(w http.ResponseWriter, r *http.Request) {
	var req request.KickRequest
	if r.ContentLength != 0 && !decode(w, r, &req) {
		return
	}
	reason := req.Reason
	if reason == "" {
		reason = h.settings.KickMessage()
	}

	if err := h.sessions.Terminate(mux.Vars(r)["id"], reason); err != nil {
		apierr.WriteError(w, err)
		return
	}
	response.NoContent(w)
}

// Events handles GET /api/v1/sessions/{id}/events
func (h *GateHandler) Events(w http.ResponseWriter, r *http.Request) {
	sess, err := h.sessions.Get(mux.Vars(r)["id"])
	if err != nil {
		apierr.WriteError(w, err)
		return
	}

	// The stream lives as long as the session, past the server write timeout
	_ = http.NewResponseController(w).SetWriteDeadline(time.Time{})
	session.ServeEvents(w, r, sess)
}
