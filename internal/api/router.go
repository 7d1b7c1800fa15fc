package api

import (
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/mcoot/listgate/internal/api/apierr"
	"github.com/mcoot/listgate/internal/api/handler"
	apimw "github.com/mcoot/listgate/internal/api/middleware"
	"github.com/mcoot/listgate/internal/api/response"
	"github.com/mcoot/listgate/internal/middleware"
	"github.com/mcoot/listgate/internal/services/gate"
	"github.com/mcoot/listgate/internal/services/session"
)

// RouterConfig holds configuration for the API router
type RouterConfig struct {
	Logger *slog.Logger
	// TokenHash is the bcrypt hash of the admin token; empty disables auth
	TokenHash  string
	Gate       *gate.Gate
	Sessions   *session.Registry
	Settings   handler.KickMessager
	Dispatcher handler.Dispatcher
}

// NewRouter creates a new API router with all routes configured
func NewRouter(cfg RouterConfig) http.Handler {
	r := mux.NewRouter()

	gateHandler := handler.NewGateHandler(cfg.Gate, cfg.Sessions, cfg.Settings)
	adminHandler := handler.NewAdminHandler(cfg.Dispatcher)

	api := r.PathPrefix("/api/v1").Subrouter()
	api.Use(middleware.Recovery(cfg.Logger, apiPanicHandler))
	api.Use(middleware.Logging(cfg.Logger))

	// Health check endpoint (no auth)
	api.HandleFunc("/health", healthHandler).Methods(http.MethodGet)

	protected := api.NewRoute().Subrouter()
	protected.Use(apimw.TokenAuth(cfg.TokenHash, cfg.Logger))

	// Gate and sessions, called by the game proxy
	protected.HandleFunc("/gate/check", gateHandler.Check).Methods(http.MethodPost)
	protected.HandleFunc("/sessions", gateHandler.Connect).Methods(http.MethodPost)
	protected.HandleFunc("/sessions", gateHandler.List).Methods(http.MethodGet)
	protected.HandleFunc("/sessions/{id}", gateHandler.Get).Methods(http.MethodGet)
	protected.HandleFunc("/sessions/{id}", gateHandler.Disconnect).Methods(http.MethodDelete)
	protected.HandleFunc("/sessions/{id}/kick", gateHandler.Kick).Methods(http.MethodPost)
	protected.HandleFunc("/sessions/{id}/events", gateHandler.Events).Methods(http.MethodGet)

	// Whitelist administration
	protected.HandleFunc("/whitelist", adminHandler.ListWhitelist).Methods(http.MethodGet)
	protected.HandleFunc("/whitelist", adminHandler.AddMany).Methods(http.MethodPost)
	protected.HandleFunc("/whitelist", adminHandler.RemoveMany).Methods(http.MethodDelete)
	protected.HandleFunc("/whitelist/clear", adminHandler.Clear).Methods(http.MethodPost)
	protected.HandleFunc("/whitelist/{identity}", adminHandler.Add).Methods(http.MethodPut)
	protected.HandleFunc("/whitelist/{identity}", adminHandler.Remove).Methods(http.MethodDelete)

	// Settings and enforcement
	protected.HandleFunc("/settings/enabled", adminHandler.SetEnabled).Methods(http.MethodPut)
	protected.HandleFunc("/settings/kick-message", adminHandler.SetKickMessage).Methods(http.MethodPut)
	protected.HandleFunc("/settings/interval", adminHandler.SetInterval).Methods(http.MethodPut)
	protected.HandleFunc("/reload", adminHandler.Reload).Methods(http.MethodPost)
	protected.HandleFunc("/status", adminHandler.Status).Methods(http.MethodGet)
	protected.HandleFunc("/check", adminHandler.Check).Methods(http.MethodPost)

	return r
}

func healthHandler(w http.ResponseWriter, _ *http.Request) {
	response.JSON(w, http.StatusOK, response.HealthResponse{Status: "ok"})
}

func apiPanicHandler(w http.ResponseWriter, _ *http.Request, _ any) {
	apierr.WriteError(w, apierr.NewInternalError())
}
