// Package config owns the persisted gate settings: the enabled flag, the
// rejection message, the recheck interval and the whitelist.
//
// Setters only change the in-memory copy. Persisting is a separate Save call
// so a batch of changes costs one write.
package config

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/mcoot/listgate/internal/model"
	"github.com/mcoot/listgate/internal/storage"
)

// Store holds the current settings and reads/writes them through a storage backend
type Store struct {
	backend storage.Backend
	logger  *slog.Logger

	mu       sync.RWMutex
	settings model.Settings

	// saveMu orders whole saves so the backend always ends up with the
	// snapshot taken by the most recent Save
	saveMu sync.Mutex
}

// New creates a Store holding default settings. Call Load to read the backend.
func New(backend storage.Backend, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}
	return &Store{
		backend:  backend,
		logger:   logger.With(slog.String("component", "config")),
		settings: model.DefaultSettings(),
	}
}

// Load reads settings from the backend. A missing document is replaced by
// defaults which are written before returning; failing that write is a
// persistence error. An unreadable or unparsable document falls back to
// defaults in memory and is only logged.
func (s *Store) Load(ctx context.Context) error {
	data, err := s.backend.Read(ctx)
	if errors.Is(err, storage.ErrNotExist) {
		s.replace(model.DefaultSettings())
		if err := s.Save(ctx); err != nil {
			return err
		}
		s.logger.Info("created default settings", slog.String("location", s.backend.Location()))
		return nil
	}
	if err != nil {
		s.logger.Error("failed to read settings, using defaults",
			slog.String("location", s.backend.Location()),
			slog.String("error", err.Error()))
		s.replace(model.DefaultSettings())
		return nil
	}

	settings, err := decodeSettings(data)
	if err != nil {
		s.logger.Error("failed to parse settings, using defaults",
			slog.String("location", s.backend.Location()),
			slog.String("error", err.Error()))
		s.replace(model.DefaultSettings())
		return nil
	}

	s.replace(settings)
	s.logger.Debug("settings loaded",
		slog.String("location", s.backend.Location()),
		slog.Int("whitelist_size", len(settings.Whitelist)))
	return nil
}

// Reload re-reads the backend, discarding unsaved in-memory changes
func (s *Store) Reload(ctx context.Context) error {
	return s.Load(ctx)
}

// Save writes the full current settings to the backend
func (s *Store) Save(ctx context.Context) error {
	s.saveMu.Lock()
	defer s.saveMu.Unlock()

	data, err := encodeSettings(s.Settings())
	if err != nil {
		return fmt.Errorf("%w: %w", model.ErrPersistence, err)
	}
	if err := s.backend.Write(ctx, data); err != nil {
		s.logger.Error("failed to save settings",
			slog.String("location", s.backend.Location()),
			slog.String("error", err.Error()))
		return fmt.Errorf("%w: write %s: %w", model.ErrPersistence, s.backend.Location(), err)
	}
	s.logger.Debug("settings saved", slog.String("location", s.backend.Location()))
	return nil
}

// Location describes where settings are persisted
func (s *Store) Location() string {
	return s.backend.Location()
}

// Settings returns a copy of the current settings
func (s *Store) Settings() model.Settings {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.settings.Clone()
}

func (s *Store) replace(settings model.Settings) {
	s.mu.Lock()
	s.settings = settings.Clone()
	s.mu.Unlock()
}

// Enabled reports whether the gate enforces the whitelist
func (s *Store) Enabled() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.settings.Enabled
}

// SetEnabled toggles enforcement in memory; call Save to persist
func (s *Store) SetEnabled(enabled bool) {
	s.mu.Lock()
	s.settings.Enabled = enabled
	s.mu.Unlock()
}

// KickMessage returns the message shown to rejected players
func (s *Store) KickMessage() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.settings.KickMessage
}

// SetKickMessage replaces the rejection message in memory
func (s *Store) SetKickMessage(message string) {
	s.mu.Lock()
	s.settings.KickMessage = message
	s.mu.Unlock()
}

// AutoCheck returns the raw recheck interval string
func (s *Store) AutoCheck() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.settings.AutoCheck
}

// SetAutoCheck stores a raw interval string without validating it
func (s *Store) SetAutoCheck(interval string) {
	s.mu.Lock()
	s.settings.AutoCheck = interval
	s.mu.Unlock()
}

// Interval returns the parsed recheck interval, or one hour if the stored value is invalid
func (s *Store) Interval() time.Duration {
	return ParseIntervalOrDefault(s.AutoCheck(), s.logger)
}

// Whitelist returns a copy of the persisted whitelist in stored order
func (s *Store) Whitelist() []model.Identity {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.settings.Whitelist)
}

// SetWhitelist replaces the whitelist with a copy of ids, in memory only
func (s *Store) SetWhitelist(ids []model.Identity) {
	s.mu.Lock()
	s.settings.Whitelist = slices.Clone(ids)
	s.mu.Unlock()
}
