package factory

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/mcoot/listgate/internal/admin"
	"github.com/mcoot/listgate/internal/api"
	"github.com/mcoot/listgate/internal/config"
	"github.com/mcoot/listgate/internal/dependencies/clock"
	"github.com/mcoot/listgate/internal/services/enforcer"
	"github.com/mcoot/listgate/internal/services/gate"
	"github.com/mcoot/listgate/internal/services/session"
	"github.com/mcoot/listgate/internal/services/whitelist"
	"github.com/mcoot/listgate/internal/storage"
	"github.com/mcoot/listgate/internal/storage/file"
	"github.com/mcoot/listgate/internal/storage/memory"
	redisstorage "github.com/mcoot/listgate/internal/storage/redis"
)

// Storage type constants
const (
	StorageTypeFile   = "file"
	StorageTypeMemory = "memory"
	StorageTypeRedis  = "redis"
)

// App contains all wired application components
type App struct {
	Storage storage.Backend
	Clock   clock.Clock

	Config    *config.Store
	Whitelist *whitelist.Cache
	Sessions  *session.Registry
	Enforcer  *enforcer.Scheduler
	Gate      *gate.Gate
	Admin     *admin.Dispatcher

	logger *slog.Logger
}

// Config holds configuration for the application factory
type Config struct {
	// Logger is the application logger (optional)
	// If nil, a no-op logger is used
	Logger *slog.Logger
	// StorageType selects the settings backend ("file", "memory" or "redis")
	// If empty, defaults to "file"
	StorageType string
	// DataDir holds the settings file for the file backend
	DataDir string
	// RedisConfig holds Redis connection settings (required if StorageType is "redis")
	RedisConfig *redisstorage.Config
}

// New creates the application with all dependencies wired and settings loaded.
// The enforcer is not started; call Start.
func New(ctx context.Context, cfg Config) (*App, error) {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}

	storageType := cfg.StorageType
	if storageType == "" {
		storageType = StorageTypeFile
	}

	var backend storage.Backend
	switch storageType {
	case StorageTypeFile:
		if cfg.DataDir == "" {
			return nil, errors.New("DataDir required when StorageType is file")
		}
		backend = file.New(cfg.DataDir)
	case StorageTypeMemory:
		backend = memory.New()
	case StorageTypeRedis:
		if cfg.RedisConfig == nil {
			return nil, errors.New("RedisConfig required when StorageType is redis")
		}
		redisStore, err := redisstorage.New(*cfg.RedisConfig)
		if err != nil {
			return nil, err
		}
		backend = redisStore
	default:
		return nil, fmt.Errorf("invalid StorageType %q: must be 'file', 'memory' or 'redis'", storageType)
	}

	app, err := newWithDependencies(ctx, backend, clock.New(), logger)
	if err != nil {
		closeBackend(backend)
		return nil, err
	}
	return app, nil
}

// newWithDependencies creates an App with the given dependencies (useful for testing)
func newWithDependencies(ctx context.Context, backend storage.Backend, clk clock.Clock, logger *slog.Logger) (*App, error) {
	store := config.New(backend, logger)
	if err := store.Load(ctx); err != nil {
		return nil, fmt.Errorf("load settings: %w", err)
	}

	cache := whitelist.New(store, logger)
	sessions := session.New(clk, logger)
	scheduler := enforcer.New(cache, sessions, store, clk, logger)

	return &App{
		Storage:   backend,
		Clock:     clk,
		Config:    store,
		Whitelist: cache,
		Sessions:  sessions,
		Enforcer:  scheduler,
		Gate:      gate.New(cache, store, logger),
		Admin:     admin.NewDispatcher(store, cache, scheduler, logger),
		logger:    logger,
	}, nil
}

// Start begins the recurring enforcement sweep
func (a *App) Start() {
	a.Enforcer.Start()
}

// Router builds the HTTP API. An empty tokenHash disables authentication.
func (a *App) Router(tokenHash string) http.Handler {
	return api.NewRouter(api.RouterConfig{
		Logger:     a.logger,
		TokenHash:  tokenHash,
		Gate:       a.Gate,
		Sessions:   a.Sessions,
		Settings:   a.Config,
		Dispatcher: a.Admin,
	})
}

// Shutdown stops the enforcer, disconnects every session, flushes settings
// and releases the backend. It carries on past failures and reports them all.
func (a *App) Shutdown(ctx context.Context) error {
	var errs []error

	if err := a.Enforcer.Shutdown(ctx); err != nil {
		errs = append(errs, err)
	}
	a.Sessions.CloseAll()
	if err := a.Config.Save(ctx); err != nil {
		errs = append(errs, fmt.Errorf("flush settings: %w", err))
	}
	if err := closeBackend(a.Storage); err != nil {
		errs = append(errs, fmt.Errorf("close storage: %w", err))
	}

	if err := errors.Join(errs...); err != nil {
		return err
	}
	a.logger.Info("application stopped")
	return nil
}

func closeBackend(backend storage.Backend) error {
	if c, ok := backend.(io.Closer); ok {
		return c.Close()
	}
	return nil
}
