package handler

import (
	"context"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/mcoot/listgate/internal/admin"
	"github.com/mcoot/listgate/internal/api/apierr"
	"github.com/mcoot/listgate/internal/api/request"
	"github.com/mcoot/listgate/internal/api/response"
	"github.com/mcoot/listgate/internal/model"
)

// Dispatcher runs administrative commands
type Dispatcher interface {
	Dispatch(ctx context.Context, cmd admin.Command) admin.Result
}

// AdminHandler exposes the administrative commands over HTTP
type AdminHandler struct {
	dispatcher Dispatcher
}

// NewAdminHandler creates a new admin handler
func NewAdminHandler(dispatcher Dispatcher) *AdminHandler {
	return &AdminHandler{dispatcher: dispatcher}
}

// run dispatches cmd, writing the error response if it failed
func (h *AdminHandler) run(w http.ResponseWriter, r *http.Request, cmd admin.Command) (admin.Result, bool) {
	res := h.dispatcher.Dispatch(r.Context(), cmd)
	if !res.OK {
		err := res.Err
		if err == nil {
			err = apierr.NewInternalError()
		}
		apierr.WriteError(w, err)
		return res, false
	}
	return res, true
}

// ListWhitelist handles GET /api/v1/whitelist
func (h *AdminHandler) ListWhitelist(w http.ResponseWriter, r *http.Request) {
	res, ok := h.run(w, r, admin.Command{Kind: admin.KindList})
	if !ok {
		return
	}
	response.JSON(w, http.StatusOK, response.WhitelistResponse{
		Identities: res.Identities,
		Count:      len(res.Identities),
	})
}

// AddMany handles POST /api/v1/whitelist
func (h *AdminHandler) AddMany(w http.ResponseWriter, r *http.Request) {
	var req request.IdentitiesRequest
	if !decode(w, r, &req) {
		return
	}
	h.change(w, r, admin.Command{Kind: admin.KindAdd, Identities: req.Identities})
}

// RemoveMany handles DELETE /api/v1/whitelist
func (h *AdminHandler) RemoveMany(w http.ResponseWriter, r *http.Request) {
	var req request.IdentitiesRequest
	if !decode(w, r, &req) {
		return
	}
	h.change(w, r, admin.Command{Kind: admin.KindRemove, Identities: req.Identities})
}

// Add handles PUT /api/v1/whitelist/{identity}
func (h *AdminHandler) Add(w http.ResponseWriter, r *http.Request) {
	identity := mux.Vars(r)["identity"]
	res, ok := h.run(w, r, admin.Command{Kind: admin.KindAdd, Identities: []string{identity}})
	if !ok {
		return
	}
	if res.Changed == 0 {
		apierr.WriteError(w, model.ErrAlreadyExists)
		return
	}
	response.JSON(w, http.StatusCreated, response.ResultFromAdmin(res))
}

// Remove handles DELETE /api/v1/whitelist/{identity}
func (h *AdminHandler) Remove(w http.ResponseWriter, r *http.Request) {
	identity := mux.Vars(r)["identity"]
	res, ok := h.run(w, r, admin.Command{Kind: admin.KindRemove, Identities: []string{identity}})
	if !ok {
		return
	}
	if res.Changed == 0 {
		apierr.WriteError(w, model.ErrNotFound)
		return
	}
	response.JSON(w, http.StatusOK, response.ResultFromAdmin(res))
}

// Clear handles POST /api/v1/whitelist/clear
func (h *AdminHandler) Clear(w http.ResponseWriter, r *http.Request) {
	h.change(w, r, admin.Command{Kind: admin.KindClear})
}

// SetEnabled handles PUT /api/v1/settings/enabled
func (h *AdminHandler) SetEnabled(w http.ResponseWriter, r *http.Request) {
	var req request.SetEnabledRequest
	if !decode(w, r, &req) {
		return
	}
	if req.Enabled == nil {
		apierr.WriteError(w, apierr.NewInvalidRequestError("enabled is required"))
		return
	}
	kind := admin.KindDisable
	if *req.Enabled {
		kind = admin.KindEnable
	}
	h.change(w, r, admin.Command{Kind: kind})
}

// SetKickMessage handles PUT /api/v1/settings/kick-message
func (h *AdminHandler) SetKickMessage(w http.ResponseWriter, r *http.Request) {
	var req request.SetKickMessageRequest
	if !decode(w, r, &req) {
		return
	}
	h.change(w, r, admin.Command{Kind: admin.KindSetMessage, Text: req.Message})
}

// SetInterval handles PUT /api/v1/settings/interval
func (h *AdminHandler) SetInterval(w http.ResponseWriter, r *http.Request) {
	var req request.SetIntervalRequest
	if !decode(w, r, &req) {
		return
	}
	h.change(w, r, admin.Command{Kind: admin.KindSetInterval, Text: req.Interval})
}

// Reload handles POST /api/v1/reload
func (h *AdminHandler) Reload(w http.ResponseWriter, r *http.Request) {
	h.change(w, r, admin.Command{Kind: admin.KindReload})
}

// Check handles POST /api/v1/check
func (h *AdminHandler) Check(w http.ResponseWriter, r *http.Request) {
	h.change(w, r, admin.Command{Kind: admin.KindCheck})
}

// Status handles GET /api/v1/status
func (h *AdminHandler) Status(w http.ResponseWriter, r *http.Request) {
	res, ok := h.run(w, r, admin.Command{Kind: admin.KindStatus})
	if !ok {
		return
	}
	response.JSON(w, http.StatusOK, response.StatusFromAdmin(*res.Status))
}

func (h *AdminHandler) change(w http.ResponseWriter, r *http.Request, cmd admin.Command) {
	res, ok := h.run(w, r, cmd)
	if !ok {
		return
	}
	response.JSON(w, http.StatusOK, response.ResultFromAdmin(res))
}
